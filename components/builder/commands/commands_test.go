package commands

import (
	"context"
	"errors"
	"testing"

	builder "github.com/goliatone/go-pagebuilder/components/builder"
)

func TestAddBlockCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewAddBlockCommand(service, telemetry)
	input := AddBlockInput{Kind: builder.KindSectionText, Data: map[string]any{"title": "hi"}, Actor: Actor{UserID: "u1"}}
	if err := cmd.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.addCalls != 1 {
		t.Fatalf("expected add call")
	}
	if service.lastActor.UserID != "u1" {
		t.Fatalf("expected actor on context, got %#v", service.lastActor)
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry event")
	}
}

func TestAddBlockCommandRequiresService(t *testing.T) {
	cmd := NewAddBlockCommand(nil, nil)
	if err := cmd.Execute(context.Background(), AddBlockInput{}); err == nil {
		t.Fatalf("expected error without service")
	}
}

func TestRemoveBlockCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewRemoveBlockCommand(service, nil)
	if err := cmd.Execute(context.Background(), RemoveBlockInput{BlockID: "b1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.removed != "b1" {
		t.Fatalf("expected block id propagation, got %q", service.removed)
	}
}

func TestReorderBlocksCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewReorderBlocksCommand(service, nil)
	if err := cmd.Execute(context.Background(), ReorderBlocksInput{ActiveID: "b2", OverID: "b1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.reorderCalls != 1 {
		t.Fatalf("expected reorder call")
	}
}

func TestSlideCommandDispatches(t *testing.T) {
	service := &stubService{}
	cmd := NewSlideCommand(service)
	if err := cmd.Execute(context.Background(), SlideInput{}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if err := cmd.Execute(context.Background(), SlideInput{SlideID: "s1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.addSlideCalls != 1 || service.removeSlideCalls != 1 {
		t.Fatalf("expected one add and one remove, got %d/%d", service.addSlideCalls, service.removeSlideCalls)
	}
}

func TestUploadFieldCommandBuildsLocalFile(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewUploadFieldCommand(service, telemetry)
	msg := UploadFieldInput{Field: "image", Name: "bg.png", ContentType: "image/png", Data: []byte("png")}
	if err := cmd.Execute(context.Background(), msg); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.attachedField != "image" || service.attached == nil {
		t.Fatalf("expected attach call, got %q %#v", service.attachedField, service.attached)
	}
	if service.attached.Name != "bg.png" || string(service.attached.Data) != "png" {
		t.Fatalf("unexpected file %#v", service.attached)
	}
	if got := telemetry.last["bytes"]; got != 3 {
		t.Fatalf("expected byte count telemetry, got %v", got)
	}
}

func TestCommitEditorCommandPropagatesErrors(t *testing.T) {
	service := &stubService{err: errors.New("invalid")}
	telemetry := &stubTelemetry{}
	cmd := NewCommitEditorCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), CommitEditorInput{LocalOnly: true}); err == nil {
		t.Fatalf("expected commit error")
	}
	if !service.localOnly {
		t.Fatalf("expected local only flag propagation")
	}
	if telemetry.calls != 0 {
		t.Fatalf("expected no telemetry on failure")
	}
}

func TestSaveProjectCommandWaitsForUploads(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewSaveProjectCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), SaveProjectInput{WaitUploads: true}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.saveCalls != 1 {
		t.Fatalf("expected save call")
	}
	if got := telemetry.last["upload_failures"]; got != 0 {
		t.Fatalf("expected zero upload failures, got %v", got)
	}
}

func TestEditorCommandsAgainstService(t *testing.T) {
	ctx := context.Background()
	service := builder.NewService(builder.Options{ProjectID: "p1"})

	open := NewOpenEditorCommand(service, nil)
	if err := open.Execute(ctx, OpenEditorInput{Kind: builder.KindSectionText}); err != nil {
		t.Fatalf("open returned error: %v", err)
	}
	update := NewUpdateWidgetCommand(service)
	if err := update.Execute(ctx, UpdateWidgetInput{Data: map[string]any{"title": "Hello"}}); err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	commit := NewCommitEditorCommand(service, nil)
	if err := commit.Execute(ctx, CommitEditorInput{}); err != nil {
		t.Fatalf("commit returned error: %v", err)
	}
	blocks := service.Blocks()
	if len(blocks) != 1 || blocks[0].Data["title"] != "Hello" {
		t.Fatalf("expected committed block, got %#v", blocks)
	}
	if !service.SavePending() {
		t.Fatalf("expected remote save to be pending")
	}

	if err := open.Execute(ctx, OpenEditorInput{Kind: builder.KindSectionText}); err != nil {
		t.Fatalf("open returned error: %v", err)
	}
	cancel := NewCancelEditorCommand(service, nil)
	if err := cancel.Execute(ctx, CancelEditorInput{}); err != nil {
		t.Fatalf("cancel returned error: %v", err)
	}
	if len(service.Blocks()) != 1 {
		t.Fatalf("expected temp block to be removed on cancel")
	}
}

type stubService struct {
	addCalls         int
	reorderCalls     int
	addSlideCalls    int
	removeSlideCalls int
	saveCalls        int
	removed          string
	localOnly        bool
	attached         *builder.LocalFile
	attachedField    string
	lastActor        builder.ActorContext
	err              error
}

func (s *stubService) AddBlock(ctx context.Context, kind builder.WidgetKind, data map[string]any) (builder.Block, error) {
	s.addCalls++
	s.lastActor = builder.ActorFromContext(ctx)
	return builder.Block{ID: "b1", Type: kind, Data: data}, s.err
}

func (s *stubService) RemoveBlock(_ context.Context, id string) (bool, error) {
	s.removed = id
	return true, s.err
}

func (s *stubService) ReorderBlocks(context.Context, string, string) (bool, error) {
	s.reorderCalls++
	return true, s.err
}

func (s *stubService) OpenEditor(_ context.Context, kind builder.WidgetKind, _ map[string]any, _ string) (builder.SessionSnapshot, error) {
	return builder.SessionSnapshot{WidgetType: kind, IsOpen: true}, s.err
}

func (s *stubService) UpdateWidget(context.Context, map[string]any) (builder.SessionSnapshot, error) {
	return builder.SessionSnapshot{}, s.err
}

func (s *stubService) UpdateLink(context.Context, string, map[string]any) (builder.SessionSnapshot, error) {
	return builder.SessionSnapshot{}, s.err
}

func (s *stubService) AttachFile(_ context.Context, field string, file *builder.LocalFile) (builder.SessionSnapshot, error) {
	s.attachedField = field
	s.attached = file
	return builder.SessionSnapshot{WidgetType: builder.KindBackground}, s.err
}

func (s *stubService) AddSlide(context.Context) (builder.SessionSnapshot, error) {
	s.addSlideCalls++
	return builder.SessionSnapshot{}, s.err
}

func (s *stubService) RemoveSlide(context.Context, string) (builder.SessionSnapshot, bool, error) {
	s.removeSlideCalls++
	return builder.SessionSnapshot{}, true, s.err
}

func (s *stubService) CommitEditor(_ context.Context, localOnly bool) (builder.CommitResult, error) {
	s.localOnly = localOnly
	return builder.CommitResult{}, s.err
}

func (s *stubService) CancelEditor(context.Context) (builder.CancelResult, error) {
	return builder.CancelResult{}, s.err
}

func (s *stubService) Save(context.Context) (builder.SaveResult, error) {
	s.saveCalls++
	return builder.SaveResult{}, s.err
}

type stubTelemetry struct {
	calls int
	last  map[string]any
}

func (s *stubTelemetry) Record(_ context.Context, _ string, payload map[string]any) {
	s.calls++
	s.last = payload
}
