package schemaclient

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	builder "github.com/goliatone/go-pagebuilder/components/builder"
)

// MemoryClient implements builder.SchemaClient with in-memory storage for
// tests and local demos.
type MemoryClient struct {
	mu         sync.RWMutex
	schemas    map[string]json.RawMessage
	content    map[string][]byte
	deleted    []string
	contentDir string
}

var _ builder.SchemaClient = (*MemoryClient)(nil)

// NewMemoryClient builds an empty in-memory client. Content paths are
// issued under contentDir.
func NewMemoryClient(contentDir string) *MemoryClient {
	if contentDir == "" {
		contentDir = "content"
	}
	return &MemoryClient{
		schemas:    map[string]json.RawMessage{},
		content:    map[string][]byte{},
		contentDir: contentDir,
	}
}

// Seed stores a raw schema for a project.
func (c *MemoryClient) Seed(projectID string, raw json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemas[projectID] = slices.Clone(raw)
}

// FetchSchema returns the stored schema, or nothing for unknown projects.
func (c *MemoryClient) FetchSchema(_ context.Context, projectID string) (json.RawMessage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.schemas[projectID]), nil
}

// PatchSchema stores the document and drops deleted content.
func (c *MemoryClient) PatchSchema(_ context.Context, projectID string, req builder.PatchSchemaRequest) error {
	raw, err := json.Marshal(req.Data)
	if err != nil {
		return fmt.Errorf("schemaclient: encode document: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemas[projectID] = raw
	for _, name := range req.DelContent {
		delete(c.content, c.contentDir+"/"+name)
		c.deleted = append(c.deleted, name)
	}
	return nil
}

// RequestUploadURLs issues relative upload URLs under /upload.
func (c *MemoryClient) RequestUploadURLs(_ context.Context, _ string, items []builder.UploadItem) ([]builder.UploadDestination, error) {
	out := make([]builder.UploadDestination, len(items))
	for i, item := range items {
		out[i] = builder.UploadDestination{
			Filename:    item.Filename,
			ContentPath: c.contentDir + "/" + item.Filename,
			UploadURL:   "/upload/" + item.Filename,
		}
	}
	return out, nil
}

// Upload stores the bytes under the destination's content path.
func (c *MemoryClient) Upload(_ context.Context, dest builder.UploadDestination, file *builder.LocalFile) error {
	if file == nil {
		return fmt.Errorf("schemaclient: upload %s: no file", dest.Filename)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content[dest.ContentPath] = slices.Clone(file.Data)
	return nil
}

// Content returns uploaded bytes by content path.
func (c *MemoryClient) Content(path string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.content[path]
	return slices.Clone(data), ok
}

// Deleted lists every filename a save asked to delete.
func (c *MemoryClient) Deleted() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.deleted)
}
