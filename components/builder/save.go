package builder

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultUploadConcurrency bounds concurrent byte uploads per save.
const DefaultUploadConcurrency = 4

// SaveRequest carries the document to persist and the server filenames the
// user removed since the last save.
type SaveRequest struct {
	Document       Document
	DeletedContent []string
}

// SaveResult reports a successful metadata save.
type SaveResult struct {
	Document  Document
	Files     int
	Unmatched []string
	Uploads   *UploadBatch
}

// UploadFailure records one byte upload that did not complete.
type UploadFailure struct {
	Filename string
	Err      error
}

// UploadBatch tracks background byte uploads. Failures are collected for
// logging only; they never affect the save outcome.
type UploadBatch struct {
	done     chan struct{}
	mu       sync.Mutex
	failures []UploadFailure
}

func completedBatch() *UploadBatch {
	b := &UploadBatch{done: make(chan struct{})}
	close(b.done)
	return b
}

// Wait blocks until every upload finished and returns the failures.
func (b *UploadBatch) Wait() []UploadFailure {
	if b == nil {
		return nil
	}
	<-b.done
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]UploadFailure, len(b.failures))
	copy(out, b.failures)
	return out
}

func (b *UploadBatch) fail(filename string, err error) {
	b.mu.Lock()
	b.failures = append(b.failures, UploadFailure{Filename: filename, Err: err})
	b.mu.Unlock()
}

// SaverOptions configures a Saver.
type SaverOptions struct {
	Client      SchemaClient
	Registry    WidgetRegistry
	IDs         IDGenerator
	Logger      Logger
	Telemetry   Telemetry
	ProjectID   string
	Concurrency int
}

// Saver runs the upload reconciliation protocol: extract pending files,
// allocate destinations, rewrite the document, then PATCH the schema while
// bytes upload in the background.
type Saver struct {
	client      SchemaClient
	registry    WidgetRegistry
	gen         IDGenerator
	logger      Logger
	uploadLog   Logger
	telemetry   Telemetry
	projectID   string
	concurrency int
}

// NewSaver builds a saver with safe defaults.
func NewSaver(opts SaverOptions) *Saver {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.IDs == nil {
		opts.IDs = NewID
	}
	if opts.Logger == nil {
		opts.Logger = NoOpLogger()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultUploadConcurrency
	}
	return &Saver{
		client:      opts.Client,
		registry:    opts.Registry,
		gen:         opts.IDs,
		logger:      opts.Logger,
		uploadLog:   WithFields(opts.Logger, map[string]any{"stage": "upload"}),
		telemetry:   normalizeTelemetry(opts.Telemetry),
		projectID:   opts.ProjectID,
		concurrency: opts.Concurrency,
	}
}

// Save persists req.Document. A destination failure aborts before any PATCH
// and leaves the caller's document untouched. A PATCH failure is reported
// even though destinations were already allocated.
func (s *Saver) Save(ctx context.Context, req SaveRequest) (SaveResult, error) {
	if s.client == nil {
		return SaveResult{}, errMissingClient
	}
	if s.projectID == "" {
		return SaveResult{}, errMissingProject
	}

	files := ExtractFiles(req.Document, s.registry, s.gen)
	var destinations []UploadDestination
	if files.Len() > 0 {
		dests, err := s.client.RequestUploadURLs(ctx, s.projectID, files.Items())
		if err != nil {
			s.failed(ctx, "destinations", err)
			return SaveResult{}, boundaryError(err, "request upload destinations", CodeDestinationsFailed)
		}
		destinations = dests
	}

	rewritten, unmatched, err := RewriteDocument(req.Document, files, destinations)
	if err != nil {
		s.failed(ctx, "rewrite", err)
		return SaveResult{}, boundaryError(err, "rewrite content paths", CodeRewriteFailed)
	}
	if len(unmatched) > 0 {
		s.logger.Warn("save.destinations.unmatched", "filenames", unmatched)
	}
	if missing := files.Len() - (len(destinations) - len(unmatched)); missing > 0 {
		s.logger.Warn("save.destinations.missing", "count", missing)
	}

	uploads := s.startUploads(ctx, files, destinations)

	deleted := req.DeletedContent
	if deleted == nil {
		deleted = []string{}
	}
	if err := s.client.PatchSchema(ctx, s.projectID, PatchSchemaRequest{Data: rewritten, DelContent: deleted}); err != nil {
		s.failed(ctx, "patch", err)
		return SaveResult{}, boundaryError(err, "save project schema", CodeSchemaSaveFailed)
	}

	s.logger.Info("save.success", "project_id", s.projectID, "files", files.Len(), "deleted", len(deleted))
	s.telemetry.Record(ctx, EventSaveSuccess, map[string]any{
		"project_id": s.projectID,
		"files":      files.Len(),
		"deleted":    len(deleted),
	})
	return SaveResult{
		Document:  rewritten,
		Files:     files.Len(),
		Unmatched: unmatched,
		Uploads:   uploads,
	}, nil
}

// startUploads PUTs every matched file in a detached goroutine. The upload
// context survives request cancellation and nothing retries.
func (s *Saver) startUploads(ctx context.Context, files *FileRegistry, destinations []UploadDestination) *UploadBatch {
	type job struct {
		dest UploadDestination
		file *LocalFile
	}
	var jobs []job
	for _, dest := range destinations {
		entry, ok := files.Entry(dest.Filename)
		if !ok || dest.UploadURL == "" {
			continue
		}
		jobs = append(jobs, job{dest: dest, file: entry.File})
	}
	if len(jobs) == 0 {
		return completedBatch()
	}

	batch := &UploadBatch{done: make(chan struct{})}
	uploadCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(batch.done)
		g, gctx := errgroup.WithContext(uploadCtx)
		g.SetLimit(s.concurrency)
		for _, j := range jobs {
			g.Go(func() error {
				if err := s.client.Upload(gctx, j.dest, j.file); err != nil {
					batch.fail(j.dest.Filename, err)
					s.uploadLog.Error("upload.failed", "filename", j.dest.Filename, "error", err)
					s.telemetry.Record(uploadCtx, EventUploadFailure, map[string]any{"filename": j.dest.Filename})
					return nil
				}
				s.uploadLog.Debug("upload.done", "filename", j.dest.Filename)
				return nil
			})
		}
		_ = g.Wait()
	}()
	return batch
}

func (s *Saver) failed(ctx context.Context, stage string, err error) {
	s.logger.Error("save.failed", "stage", stage, "error", err)
	s.telemetry.Record(ctx, EventSaveFailure, map[string]any{
		"project_id": s.projectID,
		"stage":      stage,
	})
}
