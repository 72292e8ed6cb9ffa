package builder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	errVirtualBlock = errors.New("pagebuilder: widget kind cannot be added as a block")
	errMissingCache = errors.New("pagebuilder: cache store not configured")
)

// Options configures the builder Service. Collaborators are interfaces so
// hosts can swap storage, transport and logging.
type Options struct {
	Cache             CacheStore
	Registry          WidgetRegistry
	Validator         DataValidator
	Client            SchemaClient
	Mediator          *Mediator
	RefreshHook       RefreshHook
	Telemetry         Telemetry
	LoggerProvider    LoggerProvider
	Logger            Logger
	ProjectID         string
	IDs               IDGenerator
	UploadConcurrency int
	ContentBaseURL    string
}

// Service is the composition root for one project document. Every mutation
// is serialised by a mutex so there is exactly one logical writer.
//
// Widget owners registered on the mediator run while the service lock is
// held and must not call back into the Service.
type Service struct {
	opts   Options
	logger Logger

	mu          sync.Mutex
	blocks      *BlockList
	settings    ProjectSettings
	session     *EditorSession
	saver       *Saver
	deleted     []string
	openedData  map[string]any
	savePending bool
}

// NewService builds a Service with safe defaults. Left-column kinds without
// an owner are bound to the project settings.
func NewService(opts Options) *Service {
	if opts.Cache == nil {
		opts.Cache = NewInMemoryCache()
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
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.IDs == nil {
		opts.IDs = NewID
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)

	logger := opts.Logger
	if logger == nil {
		logger = ModuleLogger(opts.LoggerProvider, rootModule)
	}
	editorLogger := logger
	saveLogger := logger
	if opts.Logger == nil {
		editorLogger = ModuleLogger(opts.LoggerProvider, editorModule)
		saveLogger = ModuleLogger(opts.LoggerProvider, saveModule)
	}

	s := &Service{
		opts:   opts,
		logger: logger,
		blocks: NewBlockList(nil, opts.IDs),
	}
	for _, def := range opts.Registry.Definitions() {
		if def.Category != CategoryLeftColumn {
			continue
		}
		if _, ok := opts.Mediator.Owner(def.Code); ok {
			continue
		}
		opts.Mediator.Register(def.Code, SettingsOwner{Registry: opts.Registry, Apply: s.applySection})
	}
	s.session = NewEditorSession(SessionOptions{
		Blocks:    s.blocks,
		Registry:  opts.Registry,
		Validator: opts.Validator,
		Mediator:  opts.Mediator,
		IDs:       opts.IDs,
		Logger:    editorLogger,
	})
	s.saver = NewSaver(SaverOptions{
		Client:      opts.Client,
		Registry:    opts.Registry,
		IDs:         opts.IDs,
		Logger:      saveLogger,
		Telemetry:   opts.Telemetry,
		ProjectID:   opts.ProjectID,
		Concurrency: opts.UploadConcurrency,
	})
	return s
}

// Registry exposes the widget registry.
func (s *Service) Registry() WidgetRegistry {
	return s.opts.Registry
}

// ProjectID returns the project the service edits.
func (s *Service) ProjectID() string {
	return s.opts.ProjectID
}

// ContentBaseURL is used to resolve remote content paths.
func (s *Service) ContentBaseURL() string {
	return s.opts.ContentBaseURL
}

// Hydrate loads the document from the server, falling back to the local
// cache when the server is unreachable or no client is configured.
func (s *Service) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fetchErr error
	if s.opts.Client != nil && s.opts.ProjectID != "" {
		raw, err := s.opts.Client.FetchSchema(ctx, s.opts.ProjectID)
		if err == nil {
			doc, err := NormalizeSchema(raw)
			if err == nil {
				s.replace(doc)
				s.persist(ctx)
				s.logger.Info("hydrate.remote", "project_id", s.opts.ProjectID, "blocks", s.blocks.Len())
				s.notify(ctx, BlockEvent{Reason: "hydrate"})
				return nil
			}
			fetchErr = err
		} else {
			fetchErr = err
		}
		s.logger.Warn("hydrate.remote_failed", "project_id", s.opts.ProjectID, "error", fetchErr)
	}

	doc, ok, err := s.loadCached(ctx, cacheKeyDocument)
	if err != nil {
		return boundaryError(err, "load cached document", CodeSchemaFetchFailed)
	}
	if !ok {
		if fetchErr != nil {
			return boundaryError(fetchErr, "fetch project schema", CodeSchemaFetchFailed)
		}
		s.replace(Document{})
		return nil
	}
	s.replace(doc)
	s.logger.Info("hydrate.cache", "project_id", s.opts.ProjectID, "blocks", s.blocks.Len())
	s.notify(ctx, BlockEvent{Reason: "hydrate"})
	return nil
}

// Load replaces the document wholesale, e.g. from a file on disk.
func (s *Service) Load(ctx context.Context, doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(doc)
	s.persist(ctx)
	s.notify(ctx, BlockEvent{Reason: "load"})
}

// Document returns a deep copy of the current document.
func (s *Service) Document() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document()
}

// Blocks returns a deep copy of the block list.
func (s *Service) Blocks() []Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocks.Blocks()
}

// Settings returns a deep copy of the project settings.
func (s *Service) Settings() ProjectSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Clone()
}

// UpdateSettings applies fn to a copy of the settings and stores the result.
// Remote media dropped from a section is queued for deletion.
func (s *Service) UpdateSettings(ctx context.Context, fn func(*ProjectSettings)) error {
	if fn == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.settings.Clone()
	fn(&next)
	for _, key := range SectionKeys() {
		s.trackReplaced(s.sectionDefinition(key), s.settings.Section(key), next.Section(key))
	}
	s.settings = next
	s.persist(ctx)
	s.notify(ctx, BlockEvent{Reason: "settings"})
	return nil
}

// AddBlock appends a block of kind. Nil data uses the kind defaults.
func (s *Service) AddBlock(ctx context.Context, kind WidgetKind, data map[string]any) (Block, error) {
	def, ok := s.opts.Registry.Definition(kind)
	if !ok {
		return Block{}, unknownKindError(kind)
	}
	if def.Virtual() {
		return Block{}, errVirtualBlock
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if data == nil {
		data = DefaultData(kind, s.opts.IDs)
	}
	block := s.blocks.Add(kind, data)
	s.persist(ctx)
	s.notify(ctx, BlockEvent{BlockID: block.ID, Kind: kind, Reason: "add"})
	s.record(ctx, EventBlockAdd, map[string]any{"block_id": block.ID, "kind": string(kind)})
	return block, nil
}

// RemoveBlock deletes a block and queues its remote media for deletion.
// Unknown ids are a no-op.
func (s *Service) RemoveBlock(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.BackingBlockID() == id {
		s.session.Abandon()
		s.openedData = nil
	}
	removed, ok := s.blocks.Remove(id)
	if !ok {
		return false, nil
	}
	if def, found := s.opts.Registry.Definition(removed.Type); found {
		s.queueDeleted(ContentFilenames(def, removed.Data)...)
	}
	s.persist(ctx)
	s.notify(ctx, BlockEvent{BlockID: id, Kind: removed.Type, Reason: "remove"})
	s.record(ctx, EventBlockRemove, map[string]any{"block_id": id, "kind": string(removed.Type)})
	return true, nil
}

// ReorderBlocks moves activeID to overID's position.
func (s *Service) ReorderBlocks(ctx context.Context, activeID, overID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.blocks.Reorder(activeID, overID) {
		return false, nil
	}
	s.persist(ctx)
	s.notify(ctx, BlockEvent{BlockID: activeID, Reason: "reorder"})
	s.record(ctx, EventBlockReorder, map[string]any{"active_id": activeID, "over_id": overID})
	return true, nil
}

// OpenEditor starts an edit. Left-column kinds are seeded from their
// settings section when no seed is given.
func (s *Service) OpenEditor(ctx context.Context, kind WidgetKind, seed map[string]any, existingID string) (SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.IsOpen() {
		return s.session.Snapshot(), errSessionOpen
	}
	if seed == nil {
		if def, ok := s.opts.Registry.Definition(kind); ok && def.Category == CategoryLeftColumn {
			seed = CloneMap(s.settings.Section(def.SettingsKey))
		}
	}
	s.openedData = nil
	if existingID != "" {
		if block, ok := s.blocks.Get(existingID); ok {
			s.openedData = block.Data
		}
	}
	snap, err := s.session.Open(kind, seed, existingID)
	if err != nil {
		return snap, err
	}
	s.touched(ctx, "editor.open")
	return snap, nil
}

// UpdateWidget merges partial into the open draft.
func (s *Service) UpdateWidget(ctx context.Context, partial map[string]any) (SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.session.UpdateData(partial)
	if err != nil {
		return snap, err
	}
	s.touched(ctx, "editor.update")
	return snap, nil
}

// UpdateLink merges partial into one link entry of the open draft.
func (s *Service) UpdateLink(ctx context.Context, id string, partial map[string]any) (SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.session.UpdateLink(id, partial)
	if err != nil {
		return snap, err
	}
	s.touched(ctx, "editor.update")
	return snap, nil
}

// AttachFile parses field and stores file there as a pending upload.
func (s *Service) AttachFile(ctx context.Context, field string, file *LocalFile) (SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := ParsePath(field)
	if err != nil {
		return s.session.Snapshot(), validationError(err, "invalid field path")
	}
	snap, err := s.session.AttachFile(path, file)
	if err != nil {
		return snap, err
	}
	s.touched(ctx, "editor.upload")
	return snap, nil
}

// AddSlide appends a carousel slide.
func (s *Service) AddSlide(ctx context.Context) (SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.session.AddSlide()
	if err != nil {
		return snap, err
	}
	s.touched(ctx, "editor.slide.add")
	return snap, nil
}

// RemoveSlide drops a carousel slide unless refused by the style minimum.
func (s *Service) RemoveSlide(ctx context.Context, id string) (SessionSnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, removed, err := s.session.RemoveSlide(id)
	if err != nil || !removed {
		return snap, removed, err
	}
	s.touched(ctx, "editor.slide.remove")
	return snap, true, nil
}

// CommitEditor validates and closes the session. Unless localOnly is set a
// remote save is flagged as pending.
func (s *Service) CommitEditor(ctx context.Context, localOnly bool) (CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kind := s.session.Kind()
	var result CommitResult
	var err error
	if localOnly {
		result, err = s.session.CommitLocalOnly(ctx)
	} else {
		result, err = s.session.Commit(ctx)
	}
	if err != nil {
		s.logger.Debug("editor.commit.rejected", "kind", kind, "error", err)
		return result, err
	}
	if result.BlockID != "" && s.openedData != nil {
		if def, ok := s.opts.Registry.Definition(result.Kind); ok {
			block, _ := s.blocks.Get(result.BlockID)
			s.trackReplaced(def, s.openedData, block.Data)
		}
	}
	s.openedData = nil
	if result.RemoteSave {
		s.savePending = true
	}
	s.persist(ctx)
	s.notify(ctx, BlockEvent{BlockID: result.BlockID, Kind: result.Kind, Reason: "commit"})
	s.record(ctx, EventEditorCommit, map[string]any{
		"block_id": result.BlockID,
		"kind":     string(result.Kind),
		"remote":   result.RemoteSave,
	})
	return result, nil
}

// CancelEditor closes the session and discards temp blocks. In-place edits
// of an existing block stay, so remote media they dropped is queued for
// deletion.
func (s *Service) CancelEditor(ctx context.Context) (CancelResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.IsOpen() {
		return CancelResult{}, nil
	}
	opened := s.openedData
	s.openedData = nil
	result, err := s.session.Cancel(ctx)
	if err != nil {
		return result, err
	}
	if opened != nil && result.BlockID != "" && !result.Removed {
		if def, ok := s.opts.Registry.Definition(result.Kind); ok {
			block, _ := s.blocks.Get(result.BlockID)
			s.trackReplaced(def, opened, block.Data)
		}
	}
	s.persist(ctx)
	s.notify(ctx, BlockEvent{BlockID: result.BlockID, Kind: result.Kind, Reason: "cancel"})
	s.record(ctx, EventEditorCancel, map[string]any{"block_id": result.BlockID, "kind": string(result.Kind)})
	return result, nil
}

// EditorState returns the current session view.
func (s *Service) EditorState() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Snapshot()
}

// SavePending reports whether a commit flagged a remote save.
func (s *Service) SavePending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savePending
}

// DeletedContent lists filenames queued for server-side deletion.
func (s *Service) DeletedContent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.deleted)
}

// Save collapses duplicate backgrounds on a copy and runs the upload
// reconciliation protocol. On failure the in-memory document and the
// deleted-content queue are left as they were.
func (s *Service) Save(ctx context.Context) (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.blocks.Clone()
	deleted := slices.Clone(s.deleted)
	deleted = appendUnique(deleted, s.backgroundFilenames(work.CollapseBackground())...)
	result, err := s.saver.Save(ctx, SaveRequest{
		Document:       Document{Blocks: work.Blocks(), Settings: s.settings.Clone()},
		DeletedContent: deleted,
	})
	if err != nil {
		return SaveResult{}, err
	}
	s.blocks.ReplaceAll(result.Document.Blocks)
	s.settings = result.Document.Settings.Clone()
	s.reloadSession()
	s.deleted = nil
	s.savePending = false
	s.persist(ctx)
	s.notify(ctx, BlockEvent{Reason: "save"})
	return result, nil
}

// PreviewDocument returns the live document with duplicate backgrounds
// collapsed, without touching state.
func (s *Service) PreviewDocument() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.blocks.Clone()
	work.CollapseBackground()
	return Document{Blocks: work.Blocks(), Settings: s.settings.Clone()}
}

// PublishPreview collapses duplicate backgrounds and writes the preview
// snapshot read by the preview view.
func (s *Service) PublishPreview(ctx context.Context) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collapseBackground()
	doc := s.document()
	payload, err := json.Marshal(doc)
	if err != nil {
		return Document{}, fmt.Errorf("pagebuilder: encode preview: %w", err)
	}
	if err := s.opts.Cache.Set(ctx, CacheKey(s.opts.ProjectID, cacheKeyPreview), payload); err != nil {
		return Document{}, fmt.Errorf("pagebuilder: store preview: %w", err)
	}
	s.persist(ctx)
	s.notify(ctx, BlockEvent{Reason: "preview"})
	s.record(ctx, EventPreviewPublish, map[string]any{"blocks": len(doc.Blocks)})
	return doc, nil
}

// PreviewSnapshot reads the last published preview.
func (s *Service) PreviewSnapshot(ctx context.Context) (Document, bool, error) {
	return s.loadCached(ctx, cacheKeyPreview)
}

func (s *Service) document() Document {
	return Document{
		Blocks:   s.blocks.Blocks(),
		Settings: s.settings.Clone(),
	}
}

func (s *Service) replace(doc Document) {
	s.session.Abandon()
	s.openedData = nil
	s.blocks.ReplaceAll(doc.Blocks)
	s.settings = doc.Settings.Clone()
	s.deleted = nil
	s.savePending = false
}

func (s *Service) collapseBackground() {
	removed := s.blocks.CollapseBackground()
	if len(removed) == 0 {
		return
	}
	s.reloadSession()
	s.queueDeleted(s.backgroundFilenames(removed)...)
	s.logger.Debug("background.collapsed", "removed", len(removed))
}

// reloadSession refreshes the draft after the list was rewritten and drops
// the session when its backing block is gone.
func (s *Service) reloadSession() {
	id := s.session.BackingBlockID()
	s.session.Reload()
	if id != "" && !s.session.IsOpen() {
		s.openedData = nil
	}
}

func (s *Service) backgroundFilenames(removed []Block) []string {
	def, ok := s.opts.Registry.Definition(KindBackground)
	if !ok {
		return nil
	}
	var names []string
	for _, block := range removed {
		names = append(names, ContentFilenames(def, block.Data)...)
	}
	return names
}

// applySection is the settings owner callback. It runs with s.mu held.
func (s *Service) applySection(ctx context.Context, key string, data map[string]any) error {
	prev := s.settings.Section(key)
	if !s.settings.SetSection(key, data) {
		return fmt.Errorf("pagebuilder: unknown settings section %s", key)
	}
	s.trackReplaced(s.sectionDefinition(key), prev, data)
	s.logger.Debug("settings.section.applied", "key", key, "cleared", data == nil)
	return nil
}

func (s *Service) sectionDefinition(key string) WidgetDefinition {
	for _, def := range s.opts.Registry.Definitions() {
		if def.Category == CategoryLeftColumn && def.SettingsKey == key {
			return def
		}
	}
	return WidgetDefinition{}
}

// trackReplaced queues remote filenames present in prev but gone from next.
func (s *Service) trackReplaced(def WidgetDefinition, prev, next map[string]any) {
	if len(def.MediaFields) == 0 || prev == nil {
		return
	}
	kept := ContentFilenames(def, next)
	for _, name := range ContentFilenames(def, prev) {
		if !slices.Contains(kept, name) {
			s.queueDeleted(name)
		}
	}
}

func (s *Service) queueDeleted(names ...string) {
	s.deleted = appendUnique(s.deleted, names...)
}

func appendUnique(list []string, names ...string) []string {
	for _, name := range names {
		if name == "" || slices.Contains(list, name) {
			continue
		}
		list = append(list, name)
	}
	return list
}

func (s *Service) touched(ctx context.Context, reason string) {
	s.persist(ctx)
	s.notify(ctx, BlockEvent{BlockID: s.session.BackingBlockID(), Kind: s.session.Kind(), Reason: reason})
}

func (s *Service) persist(ctx context.Context) {
	payload, err := json.Marshal(s.document())
	if err != nil {
		s.logger.Warn("cache.encode_failed", "error", err)
		return
	}
	if err := s.opts.Cache.Set(ctx, CacheKey(s.opts.ProjectID, cacheKeyDocument), payload); err != nil {
		s.logger.Warn("cache.write_failed", "error", err)
	}
}

func (s *Service) loadCached(ctx context.Context, key string) (Document, bool, error) {
	if s.opts.Cache == nil {
		return Document{}, false, errMissingCache
	}
	raw, ok, err := s.opts.Cache.Get(ctx, CacheKey(s.opts.ProjectID, key))
	if err != nil || !ok {
		return Document{}, false, err
	}
	doc, err := NormalizeSchema(raw)
	if err != nil {
		return Document{}, false, err
	}
	return doc, true, nil
}

func (s *Service) notify(ctx context.Context, event BlockEvent) {
	if err := s.opts.RefreshHook.BlocksUpdated(ctx, event); err != nil {
		s.logger.Warn("refresh.failed", "reason", event.Reason, "error", err)
	}
}

func (s *Service) record(ctx context.Context, event string, payload map[string]any) {
	payload["project_id"] = s.opts.ProjectID
	s.opts.Telemetry.Record(ctx, event, actorPayload(ctx, payload))
}
