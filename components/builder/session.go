package builder

import (
	"context"
	"errors"
	"fmt"
	"maps"
)

// SessionState enumerates the editor session states.
type SessionState string

const (
	StateClosed          SessionState = "closed"
	StateEditingNew      SessionState = "editing_new"
	StateEditingExisting SessionState = "editing_existing"
	StateEditingVirtual  SessionState = "editing_virtual"
)

// SessionSnapshot is a read-only view of the editor session.
type SessionSnapshot struct {
	State          SessionState   `json:"state"`
	IsOpen         bool           `json:"is_open"`
	WidgetType     WidgetKind     `json:"widget_type,omitempty"`
	WidgetData     map[string]any `json:"widget_data,omitempty"`
	TempBlockID    string         `json:"temp_block_id,omitempty"`
	EditingBlockID string         `json:"editing_block_id,omitempty"`
}

// CommitResult describes what a commit did.
type CommitResult struct {
	Kind       WidgetKind
	BlockID    string
	RemoteSave bool
}

// CancelResult describes what a cancel did.
type CancelResult struct {
	Kind    WidgetKind
	BlockID string
	Removed bool
}

// EditorSession mediates exactly one open edit at a time. It mirrors every
// draft change into the backing block so previews stay live. Edits of an
// existing block land in place and survive a cancel.
// It is not safe for concurrent use.
type EditorSession struct {
	blocks    *BlockList
	registry  WidgetRegistry
	validator DataValidator
	mediator  *Mediator
	gen       IDGenerator
	logger    Logger

	state     SessionState
	kind      WidgetKind
	draft     map[string]any
	seeded    bool
	tempID    string
	editingID string
	dirty     bool
}

// SessionOptions configures an EditorSession.
type SessionOptions struct {
	Blocks    *BlockList
	Registry  WidgetRegistry
	Validator DataValidator
	Mediator  *Mediator
	IDs       IDGenerator
	Logger    Logger
}

// NewEditorSession builds a closed session.
func NewEditorSession(opts SessionOptions) *EditorSession {
	if opts.Blocks == nil {
		opts.Blocks = NewBlockList(nil, opts.IDs)
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Validator == nil {
		opts.Validator = NewDefaultValidator()
	}
	if opts.Mediator == nil {
		opts.Mediator = NewMediator()
	}
	if opts.IDs == nil {
		opts.IDs = NewID
	}
	if opts.Logger == nil {
		opts.Logger = NoOpLogger()
	}
	return &EditorSession{
		blocks:    opts.Blocks,
		registry:  opts.Registry,
		validator: opts.Validator,
		mediator:  opts.Mediator,
		gen:       opts.IDs,
		logger:    opts.Logger,
		state:     StateClosed,
	}
}

// Snapshot returns the current session view.
func (s *EditorSession) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		State:          s.state,
		IsOpen:         s.state != StateClosed,
		WidgetType:     s.kind,
		WidgetData:     CloneMap(s.draft),
		TempBlockID:    s.tempID,
		EditingBlockID: s.editingID,
	}
}

// IsOpen reports whether an edit is in progress.
func (s *EditorSession) IsOpen() bool {
	return s.state != StateClosed
}

// Open starts editing. With a known existingID the block's data is migrated
// and edited in place. Virtual kinds open without a block. Any other kind
// gets a temp block pushed to the list immediately.
func (s *EditorSession) Open(kind WidgetKind, seed map[string]any, existingID string) (SessionSnapshot, error) {
	if s.IsOpen() {
		return s.Snapshot(), errSessionOpen
	}
	if existingID != "" {
		if block, ok := s.blocks.Get(existingID); ok {
			return s.openExisting(block)
		}
	}
	def, ok := s.registry.Definition(kind)
	if !ok {
		return s.Snapshot(), unknownKindError(kind)
	}
	if def.Virtual() {
		s.state = StateEditingVirtual
		s.kind = kind
		s.draft = CloneMap(seed)
		s.seeded = len(seed) > 0
		if s.draft == nil {
			s.draft = map[string]any{}
		}
		s.logger.Debug("editor.open.virtual", "kind", kind)
		return s.Snapshot(), nil
	}

	data := DefaultData(kind, s.gen)
	maps.Copy(data, CloneMap(seed))
	data = applyStyleRules(kind, data, s.gen)
	block := s.blocks.Add(kind, data)
	s.state = StateEditingNew
	s.kind = kind
	s.draft = block.Data
	s.tempID = block.ID
	s.logger.Debug("editor.open.new", "kind", kind, "block_id", block.ID)
	return s.Snapshot(), nil
}

func (s *EditorSession) openExisting(block Block) (SessionSnapshot, error) {
	if _, ok := s.registry.Definition(block.Type); !ok {
		return s.Snapshot(), unknownKindError(block.Type)
	}
	data := MigrateData(block.Type, block.Data, s.gen)
	if block.Type == KindCarousel {
		data = PadShowcase(data, s.gen)
	}
	s.state = StateEditingExisting
	s.kind = block.Type
	s.draft = data
	s.editingID = block.ID
	s.mirror()
	s.logger.Debug("editor.open.existing", "kind", block.Type, "block_id", block.ID)
	return s.Snapshot(), nil
}

// UpdateData shallow-merges partial into the draft and the backing block.
// A style change resizes link lists or pads showcase carousels.
func (s *EditorSession) UpdateData(partial map[string]any) (SessionSnapshot, error) {
	if !s.IsOpen() {
		return s.Snapshot(), errSessionClosed
	}
	next := CloneMap(s.draft)
	if next == nil {
		next = map[string]any{}
	}
	maps.Copy(next, CloneMap(partial))
	if _, styled := partial["style"]; styled {
		next = applyStyleRules(s.kind, next, s.gen)
	}
	s.draft = next
	s.dirty = true
	s.mirror()
	return s.Snapshot(), nil
}

// UpdateLink merges partial into one entry of a link widget.
func (s *EditorSession) UpdateLink(id string, partial map[string]any) (SessionSnapshot, error) {
	if !s.IsOpen() {
		return s.Snapshot(), errSessionClosed
	}
	if s.kind != KindLink {
		return s.Snapshot(), errNotLink
	}
	next, ok := UpdateLinkEntry(s.draft, id, partial)
	if !ok {
		return s.Snapshot(), nil
	}
	s.draft = next
	s.dirty = true
	s.mirror()
	return s.Snapshot(), nil
}

// AttachFile stores a pending upload at a media field of the draft. The
// path must address one of the kind's declared media fields.
func (s *EditorSession) AttachFile(path Path, file *LocalFile) (SessionSnapshot, error) {
	if !s.IsOpen() {
		return s.Snapshot(), errSessionClosed
	}
	if file == nil || len(file.Data) == 0 {
		return s.Snapshot(), validationError(errors.New("pagebuilder: empty upload"), "upload has no content")
	}
	def, _ := s.registry.Definition(s.kind)
	if !isMediaPath(def, path) {
		return s.Snapshot(), validationError(fmt.Errorf("pagebuilder: %s is not a media field of %s", path, s.kind), "field does not accept files")
	}
	next := CloneMap(s.draft)
	if next == nil {
		next = map[string]any{}
	}
	if err := path.Set(next, file); err != nil {
		return s.Snapshot(), validationError(err, "field does not accept files")
	}
	s.draft = next
	s.dirty = true
	s.mirror()
	return s.Snapshot(), nil
}

func isMediaPath(def WidgetDefinition, p Path) bool {
	for _, field := range def.MediaFields {
		switch {
		case field.List == "" && len(p) == 1:
			if !p[0].Array && p[0].Key == field.Field {
				return true
			}
		case field.List != "" && len(p) == 2:
			if p[0].Array && p[0].Key == field.List && !p[1].Array && p[1].Key == field.Field {
				return true
			}
		}
	}
	return false
}

// AddSlide appends a slide copied from the previous one.
func (s *EditorSession) AddSlide() (SessionSnapshot, error) {
	if !s.IsOpen() {
		return s.Snapshot(), errSessionClosed
	}
	if s.kind != KindCarousel {
		return s.Snapshot(), errNotCarousel
	}
	s.draft = AppendSlide(s.draft, s.gen)
	s.dirty = true
	s.mirror()
	return s.Snapshot(), nil
}

// RemoveSlide drops a slide unless that would go below the style minimum,
// in which case it is a no-op.
func (s *EditorSession) RemoveSlide(id string) (SessionSnapshot, bool, error) {
	if !s.IsOpen() {
		return s.Snapshot(), false, errSessionClosed
	}
	if s.kind != KindCarousel {
		return s.Snapshot(), false, errNotCarousel
	}
	next, removed := DropSlide(s.draft, id)
	if !removed {
		return s.Snapshot(), false, nil
	}
	s.draft = next
	s.dirty = true
	s.mirror()
	return s.Snapshot(), true, nil
}

// Commit validates and closes the session, flagging a remote save.
func (s *EditorSession) Commit(ctx context.Context) (CommitResult, error) {
	return s.commit(ctx, true)
}

// CommitLocalOnly closes the session without flagging a remote save.
func (s *EditorSession) CommitLocalOnly(ctx context.Context) (CommitResult, error) {
	return s.commit(ctx, false)
}

func (s *EditorSession) commit(ctx context.Context, remote bool) (CommitResult, error) {
	if !s.IsOpen() {
		return CommitResult{}, errSessionClosed
	}
	def, ok := s.registry.Definition(s.kind)
	if !ok {
		return CommitResult{}, unknownKindError(s.kind)
	}
	if err := s.validator.Validate(def, s.draft); err != nil {
		return CommitResult{}, err
	}
	result := CommitResult{Kind: s.kind, BlockID: s.backingID(), RemoteSave: remote}
	if def.Category == CategoryLeftColumn {
		if err := s.mediator.OnCommit(ctx, s.kind, s.draft); err != nil {
			return CommitResult{}, err
		}
	}
	if def.Category == CategorySelector {
		result.RemoteSave = false
	}
	s.logger.Debug("editor.commit", "kind", s.kind, "block_id", result.BlockID, "remote", result.RemoteSave)
	s.reset()
	return result, nil
}

// Cancel closes the session. A temp block is deleted and a left-column
// widget that was opened empty and never edited is discarded through its
// owner. An existing block keeps whatever was mirrored into it.
func (s *EditorSession) Cancel(ctx context.Context) (CancelResult, error) {
	result := CancelResult{Kind: s.kind, BlockID: s.backingID()}
	switch s.state {
	case StateClosed:
		return result, nil
	case StateEditingNew:
		_, result.Removed = s.blocks.Remove(s.tempID)
	case StateEditingVirtual:
		if def, ok := s.registry.Definition(s.kind); ok && def.Category == CategoryLeftColumn && !s.dirty && !s.seeded {
			if err := s.mediator.OnDiscard(ctx, s.kind); err != nil {
				s.logger.Warn("editor.cancel.discard_failed", "kind", s.kind, "error", err)
			}
		}
	}
	s.logger.Debug("editor.cancel", "kind", s.kind, "block_id", result.BlockID)
	s.reset()
	return result, nil
}

// Abandon drops session state without touching blocks. Used when the block
// list is replaced wholesale.
func (s *EditorSession) Abandon() {
	s.reset()
}

// Reload refreshes the draft from the backing block after the list was
// rewritten underneath the session, e.g. by a save.
func (s *EditorSession) Reload() {
	id := s.backingID()
	if id == "" {
		return
	}
	block, ok := s.blocks.Get(id)
	if !ok {
		s.reset()
		return
	}
	s.draft = block.Data
}

// Kind returns the kind being edited.
func (s *EditorSession) Kind() WidgetKind {
	return s.kind
}

// BackingBlockID returns the temp or edited block id, if any.
func (s *EditorSession) BackingBlockID() string {
	return s.backingID()
}

func (s *EditorSession) backingID() string {
	if s.tempID != "" {
		return s.tempID
	}
	return s.editingID
}

func (s *EditorSession) mirror() {
	if id := s.backingID(); id != "" {
		s.blocks.SetData(id, s.draft)
	}
}

func (s *EditorSession) reset() {
	s.state = StateClosed
	s.kind = ""
	s.draft = nil
	s.seeded = false
	s.tempID = ""
	s.editingID = ""
	s.dirty = false
}
