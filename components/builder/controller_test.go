package builder

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	name string
	data any
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.name = name
	r.data = data
	for _, w := range out {
		_, _ = io.WriteString(w, "rendered")
	}
	return "rendered", nil
}

func TestBuildPreviewResolvesMedia(t *testing.T) {
	doc := Document{
		Blocks: []Block{
			{ID: "bg1", Type: KindBackground, Order: 1, Data: map[string]any{"color": "#000"}},
			{ID: "link", Type: KindLink, Order: 2, Data: map[string]any{
				"links": []any{
					map[string]any{"id": "l1", "image": "content/a.png"},
					map[string]any{"id": "l2", "image": &LocalFile{Name: "b.png"}},
				},
			}},
			{ID: "bg2", Type: KindBackground, Order: 3, Data: map[string]any{"color": "#fff", "image": "https://cdn.example.com/bg.png", "blur": 4}},
		},
		Settings: ProjectSettings{Circle: true, ProfileData: map[string]any{"avatar": "content/me.png"}},
	}
	view := BuildPreview(doc, NewRegistry(), "https://api.example.com")

	require.NotNil(t, view.Background)
	assert.Equal(t, "#fff", view.Background.Color)
	assert.Equal(t, "https://cdn.example.com/bg.png", view.Background.Image)
	assert.Equal(t, 4.0, view.Background.Blur)
	assert.True(t, view.Circle)

	require.Len(t, view.Blocks, 1)
	media := view.Blocks[0].Media
	require.Len(t, media, 2)
	assert.Equal(t, PreviewMedia{Field: "links[0].image", Kind: "remote", URL: "https://api.example.com/content/a.png"}, media[0])
	assert.Equal(t, "local", media[1].Kind)
	assert.Empty(t, media[1].URL)

	require.Len(t, view.Sections, 1)
	assert.Equal(t, SettingsProfile, view.Sections[0].Key)
}

func TestControllerRenderPreviewUsesSnapshot(t *testing.T) {
	ctx := context.Background()
	svc := NewService(Options{ProjectID: "p1"})
	_, err := svc.AddBlock(ctx, KindSectionText, map[string]any{"title": "published"})
	require.NoError(t, err)
	_, err = svc.PublishPreview(ctx)
	require.NoError(t, err)
	_, err = svc.AddBlock(ctx, KindSectionText, map[string]any{"title": "draft"})
	require.NoError(t, err)

	renderer := &stubRenderer{}
	controller := NewController(svc, renderer)
	var buf bytes.Buffer
	require.NoError(t, controller.RenderPreview(ctx, &buf))
	assert.Equal(t, "rendered", buf.String())
	assert.Equal(t, previewTemplate, renderer.name)

	data := renderer.data.(map[string]any)
	blocks := data["blocks"].([]PreviewBlock)
	require.Len(t, blocks, 1)
	assert.Equal(t, "published", blocks[0].Title)
}

func TestControllerPreviewFallsBackToLiveDocument(t *testing.T) {
	ctx := context.Background()
	svc := NewService(Options{ProjectID: "p1"})
	_, err := svc.AddBlock(ctx, KindSectionText, map[string]any{"title": "live"})
	require.NoError(t, err)
	view, err := NewController(svc, nil).Preview(ctx)
	require.NoError(t, err)
	require.Len(t, view.Blocks, 1)
	assert.Equal(t, "live", view.Blocks[0].Title)
}
