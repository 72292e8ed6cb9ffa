package builder

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSchemaClient struct {
	mu           sync.Mutex
	schema       json.RawMessage
	fetchErr     error
	destErr      error
	patchErr     error
	uploadErr    map[string]error
	destCalls    int
	requested    []UploadItem
	patches      []PatchSchemaRequest
	uploaded     []string
	uploadedData map[string][]byte
}

func (c *fakeSchemaClient) FetchSchema(context.Context, string) (json.RawMessage, error) {
	return c.schema, c.fetchErr
}

func (c *fakeSchemaClient) PatchSchema(_ context.Context, _ string, req PatchSchemaRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patches = append(c.patches, req)
	return c.patchErr
}

func (c *fakeSchemaClient) RequestUploadURLs(_ context.Context, _ string, items []UploadItem) ([]UploadDestination, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destCalls++
	c.requested = append(c.requested, items...)
	if c.destErr != nil {
		return nil, c.destErr
	}
	out := make([]UploadDestination, len(items))
	for i, item := range items {
		out[i] = UploadDestination{
			Filename:    item.Filename,
			ContentPath: "content/" + item.Filename,
			UploadURL:   "/upload/" + item.Filename,
		}
	}
	return out, nil
}

func (c *fakeSchemaClient) Upload(_ context.Context, dest UploadDestination, file *LocalFile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.uploadErr[dest.Filename]; err != nil {
		return err
	}
	c.uploaded = append(c.uploaded, dest.Filename)
	if c.uploadedData == nil {
		c.uploadedData = map[string][]byte{}
	}
	c.uploadedData[dest.Filename] = file.Data
	return nil
}

func TestSaverUploadsAndPatchesRewrittenDocument(t *testing.T) {
	doc, _ := mediaDocument()
	client := &fakeSchemaClient{}
	saver := NewSaver(SaverOptions{Client: client, ProjectID: "p1", IDs: seqIDs("f")})

	result, err := saver.Save(context.Background(), SaveRequest{Document: doc, DeletedContent: []string{"old.png"}})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Files)
	assert.Empty(t, result.Uploads.Wait())

	assert.Equal(t, 1, client.destCalls)
	require.Len(t, client.patches, 1)
	patch := client.patches[0]
	assert.Equal(t, []string{"old.png"}, patch.DelContent)
	assert.Equal(t, "content/f-3.bin", patch.Data.Blocks[1].Data["video"])
	assert.Equal(t, result.Document, patch.Data)
	assert.ElementsMatch(t, []string{"f-1.png", "f-2.png", "f-3.bin", "f-4.jpg"}, client.uploaded)
	assert.Equal(t, []byte("video"), client.uploadedData["f-3.bin"])
}

func TestSaverSkipsDestinationsWithoutFiles(t *testing.T) {
	client := &fakeSchemaClient{}
	saver := NewSaver(SaverOptions{Client: client, ProjectID: "p1"})
	doc := Document{Blocks: []Block{{ID: "t", Type: KindSectionText, Order: 1, Data: map[string]any{"title": "x"}}}}

	result, err := saver.Save(context.Background(), SaveRequest{Document: doc})
	require.NoError(t, err)
	assert.Zero(t, client.destCalls)
	require.Len(t, client.patches, 1)
	assert.NotNil(t, client.patches[0].DelContent)
	assert.Empty(t, result.Uploads.Wait())
}

func TestSaverDestinationFailureAbortsBeforePatch(t *testing.T) {
	doc, _ := mediaDocument()
	client := &fakeSchemaClient{destErr: errors.New("boom")}
	saver := NewSaver(SaverOptions{Client: client, ProjectID: "p1"})

	_, err := saver.Save(context.Background(), SaveRequest{Document: doc})
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryCommand))
	assert.False(t, IsValidationError(err))
	assert.Empty(t, client.patches)
	assert.Empty(t, client.uploaded)
}

func TestSaverPatchFailureIsReported(t *testing.T) {
	doc, _ := mediaDocument()
	client := &fakeSchemaClient{patchErr: errors.New("down")}
	saver := NewSaver(SaverOptions{Client: client, ProjectID: "p1"})

	_, err := saver.Save(context.Background(), SaveRequest{Document: doc})
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryCommand))
	assert.Equal(t, 1, client.destCalls)
}

func TestSaverUploadFailureDoesNotFailSave(t *testing.T) {
	doc, _ := mediaDocument()
	client := &fakeSchemaClient{uploadErr: map[string]error{"f-1.png": errors.New("403")}}
	telemetry := &recordingTelemetry{}
	saver := NewSaver(SaverOptions{Client: client, ProjectID: "p1", IDs: seqIDs("f"), Telemetry: telemetry, Concurrency: 1})

	result, err := saver.Save(context.Background(), SaveRequest{Document: doc})
	require.NoError(t, err)
	failures := result.Uploads.Wait()
	require.Len(t, failures, 1)
	assert.Equal(t, "f-1.png", failures[0].Filename)
	assert.Len(t, client.uploaded, 3)
	assert.True(t, telemetry.has(EventUploadFailure))
	assert.True(t, telemetry.has(EventSaveSuccess))
}

func TestSaverUploadsSurviveCancelledContext(t *testing.T) {
	doc, _ := mediaDocument()
	client := &fakeSchemaClient{}
	saver := NewSaver(SaverOptions{Client: client, ProjectID: "p1"})
	ctx, cancel := context.WithCancel(context.Background())

	result, err := saver.Save(ctx, SaveRequest{Document: doc})
	require.NoError(t, err)
	cancel()
	assert.Empty(t, result.Uploads.Wait())
	assert.Len(t, client.uploaded, 4)
}

func TestSaverRequiresClientAndProject(t *testing.T) {
	_, err := NewSaver(SaverOptions{ProjectID: "p1"}).Save(context.Background(), SaveRequest{})
	assert.ErrorIs(t, err, errMissingClient)
	_, err = NewSaver(SaverOptions{Client: &fakeSchemaClient{}}).Save(context.Background(), SaveRequest{})
	assert.ErrorIs(t, err, errMissingProject)
}
