package builder

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mediaDocument() (Document, []*LocalFile) {
	files := []*LocalFile{
		{Name: "one.PNG", ContentType: "image/png", Data: []byte("same")},
		{Name: "two.png", ContentType: "image/png", Data: []byte("same")},
		{Name: "clip", Data: []byte("video")},
		{Name: "avatar.jpg", ContentType: "image/jpeg", Data: []byte("face")},
	}
	doc := Document{
		Blocks: []Block{
			{ID: "link", Type: KindLink, Order: 1, Data: map[string]any{
				"style": LinkStyleCardImage,
				"links": []any{
					map[string]any{"id": "l1", "title": "a", "image": files[0]},
					map[string]any{"id": "l2", "title": "b", "image": files[1]},
				},
			}},
			{ID: "promo", Type: KindPromoVideo, Order: 2, Data: map[string]any{
				"title":     "promo",
				"video":     files[2],
				"thumbnail": "content/existing.jpg",
			}},
			{ID: "text", Type: KindSectionText, Order: 3, Data: map[string]any{"title": "hi"}},
		},
		Settings: ProjectSettings{
			Circle:      true,
			ProfileData: map[string]any{"name": "Ada", "avatar": files[3], "cover": "https://cdn.example.com/c.png"},
		},
	}
	return doc, files
}

func TestExtractFilesGeneratesUniqueNames(t *testing.T) {
	doc, files := mediaDocument()
	reg := ExtractFiles(doc, NewRegistry(), seqIDs("f"))
	require.Equal(t, len(files), reg.Len())

	seen := map[string]bool{}
	for _, entry := range reg.Entries() {
		assert.False(t, seen[entry.Filename], "duplicate filename %s", entry.Filename)
		seen[entry.Filename] = true
	}

	items := reg.Items()
	assert.Equal(t, UploadItem{Filename: "f-1.png", ContentType: "image/png"}, items[0])
	assert.Equal(t, UploadItem{Filename: "f-2.png", ContentType: "image/png"}, items[1])
	assert.Equal(t, UploadItem{Filename: "f-3.bin", ContentType: "application/octet-stream"}, items[2])
	assert.Equal(t, "f-4.jpg", items[3].Filename)

	entry, ok := reg.Entry("f-4.jpg")
	require.True(t, ok)
	assert.Equal(t, SettingsProfile, entry.Location.SettingsKey)
	assert.Equal(t, "avatar", entry.Location.Path.String())
	assert.Equal(t, KindLeftColProfile, entry.Kind)

	entry, _ = reg.Entry("f-2.png")
	assert.Equal(t, "link", entry.Location.BlockID)
	assert.Equal(t, "links[1].image", entry.Location.Path.String())
	assert.Same(t, files[1], entry.File)
}

func TestExtractFilesSurvivesConstantGenerator(t *testing.T) {
	doc, files := mediaDocument()
	reg := ExtractFiles(doc, NewRegistry(), func() string { return "same" })
	assert.Equal(t, len(files), reg.Len())
}

func TestRewriteDocumentRoundTrip(t *testing.T) {
	doc, _ := mediaDocument()
	original, err := json.Marshal(doc)
	require.NoError(t, err)

	reg := ExtractFiles(doc, NewRegistry(), seqIDs("f"))
	var destinations []UploadDestination
	for _, item := range reg.Items() {
		destinations = append(destinations, UploadDestination{
			Filename:    item.Filename,
			ContentPath: "content/" + item.Filename,
			UploadURL:   "/upload/" + item.Filename,
		})
	}

	out, unmatched, err := RewriteDocument(doc, reg, destinations)
	require.NoError(t, err)
	assert.Empty(t, unmatched)

	remaining := 0
	WalkMedia(out, NewRegistry(), func(_ FileLocation, _ WidgetKind, ref MediaRef) {
		if ref.Kind == MediaLocal {
			remaining++
		}
	})
	assert.Zero(t, remaining)

	links := out.Blocks[0].Data["links"].([]any)
	assert.Equal(t, "content/f-1.png", links[0].(map[string]any)["image"])
	assert.Equal(t, "content/f-2.png", links[1].(map[string]any)["image"])
	assert.Equal(t, "content/f-3.bin", out.Blocks[1].Data["video"])
	assert.Equal(t, "content/existing.jpg", out.Blocks[1].Data["thumbnail"])
	assert.Equal(t, "content/f-4.jpg", out.Settings.ProfileData["avatar"])
	assert.Equal(t, "https://cdn.example.com/c.png", out.Settings.ProfileData["cover"])
	assert.Equal(t, doc.Blocks[2].Data, out.Blocks[2].Data)

	after, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, string(original), string(after), "input document must not be mutated")
	_, stillLocal := doc.Settings.ProfileData["avatar"].(*LocalFile)
	assert.True(t, stillLocal)
}

func TestRewriteDocumentReportsUnmatched(t *testing.T) {
	doc, _ := mediaDocument()
	reg := ExtractFiles(doc, NewRegistry(), seqIDs("f"))
	out, unmatched, err := RewriteDocument(doc, reg, []UploadDestination{
		{Filename: "f-1.png", ContentPath: "content/f-1.png"},
		{Filename: "ghost.png", ContentPath: "content/ghost.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost.png"}, unmatched)
	links := out.Blocks[0].Data["links"].([]any)
	assert.Equal(t, "content/f-1.png", links[0].(map[string]any)["image"])
}

func TestClassifyMedia(t *testing.T) {
	file := &LocalFile{Name: "a.png"}
	assert.Equal(t, MediaLocal, ClassifyMedia(file).Kind)
	assert.Equal(t, MediaRemote, ClassifyMedia("content/a.png").Kind)
	assert.Equal(t, MediaAbsolute, ClassifyMedia("https://cdn.example.com/a.png").Kind)
	assert.Equal(t, MediaAbsolute, ClassifyMedia("data:image/png;base64,AAAA").Kind)
	assert.Equal(t, MediaNone, ClassifyMedia("").Kind)
	assert.Equal(t, MediaNone, ClassifyMedia(42).Kind)

	assert.Equal(t, "https://api.example.com/content/a.png", ClassifyMedia("/content/a.png").URL("https://api.example.com/"))
	assert.Equal(t, "a.png", ClassifyMedia("content/a.png").Filename())
	assert.Empty(t, ClassifyMedia(file).URL("https://api.example.com"))
}

func TestContentFilenames(t *testing.T) {
	def, ok := NewRegistry().Definition(KindLink)
	require.True(t, ok)
	names := ContentFilenames(def, map[string]any{
		"links": []any{
			map[string]any{"image": "content/a.png"},
			map[string]any{"image": "https://cdn.example.com/b.png"},
			map[string]any{"image": &LocalFile{Name: "c.png"}},
		},
	})
	assert.Equal(t, []string{"a.png"}, names)
}
