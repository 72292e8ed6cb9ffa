package builder

import (
	"context"
	"io"
)

const previewTemplate = "preview"

// PreviewMedia is one resolved media field.
type PreviewMedia struct {
	Field string
	Kind  string
	URL   string
}

// PreviewBlock is the template view of a block.
type PreviewBlock struct {
	ID    string
	Kind  WidgetKind
	Order int
	Title string
	Media []PreviewMedia
}

// PreviewSection is the template view of a left-column settings section.
type PreviewSection struct {
	Key   string
	Media []PreviewMedia
}

// PreviewBackground carries the authoritative background.
type PreviewBackground struct {
	Color string
	Image string
	Blur  float64
}

// PreviewView is the data handed to the preview template.
type PreviewView struct {
	Title      string
	Circle     bool
	Background *PreviewBackground
	Blocks     []PreviewBlock
	Sections   []PreviewSection
}

// BuildPreview resolves every media field of doc into a displayable URL.
// Only the last background block by position is used; callers collapse first.
func BuildPreview(doc Document, reg WidgetRegistry, base string) PreviewView {
	view := PreviewView{Title: "Preview", Circle: doc.Settings.Circle}
	media := map[string][]PreviewMedia{}
	sections := map[string][]PreviewMedia{}
	WalkMedia(doc, reg, func(loc FileLocation, _ WidgetKind, ref MediaRef) {
		if ref.Kind == MediaNone {
			return
		}
		item := PreviewMedia{Field: loc.Path.String(), Kind: ref.Kind.String(), URL: ref.URL(base)}
		if loc.BlockID != "" {
			media[loc.BlockID] = append(media[loc.BlockID], item)
			return
		}
		sections[loc.SettingsKey] = append(sections[loc.SettingsKey], item)
	})

	for _, block := range doc.Blocks {
		if block.Type == KindBackground {
			bg := &PreviewBackground{}
			bg.Color, _ = block.Data["color"].(string)
			bg.Blur, _ = toFloat(block.Data["blur"])
			bg.Image = ClassifyMedia(block.Data["image"]).URL(base)
			view.Background = bg
			continue
		}
		title, _ := block.Data["title"].(string)
		view.Blocks = append(view.Blocks, PreviewBlock{
			ID:    block.ID,
			Kind:  block.Type,
			Order: block.Order,
			Title: title,
			Media: media[block.ID],
		})
	}
	for _, key := range SectionKeys() {
		if items := sections[key]; len(items) > 0 {
			view.Sections = append(view.Sections, PreviewSection{Key: key, Media: items})
		}
	}
	return view
}

// Controller renders the preview page for the builder.
type Controller struct {
	service  *Service
	renderer Renderer
}

// NewController wires the service and renderer into a controller.
func NewController(service *Service, renderer Renderer) *Controller {
	return &Controller{service: service, renderer: renderer}
}

// Preview returns the preview view, reading the published snapshot and
// falling back to the live document.
func (c *Controller) Preview(ctx context.Context) (PreviewView, error) {
	if c.service == nil {
		return PreviewView{}, nil
	}
	doc, ok, err := c.service.PreviewSnapshot(ctx)
	if err != nil {
		return PreviewView{}, err
	}
	if !ok {
		doc = c.service.PreviewDocument()
	}
	return BuildPreview(doc, c.service.Registry(), c.service.ContentBaseURL()), nil
}

// RenderPreview renders the preview template into out.
func (c *Controller) RenderPreview(ctx context.Context, out io.Writer) error {
	view, err := c.Preview(ctx)
	if err != nil {
		return err
	}
	if c.renderer == nil {
		return nil
	}
	_, err = c.renderer.Render(previewTemplate, map[string]any{
		"title":      view.Title,
		"circle":     view.Circle,
		"background": view.Background,
		"blocks":     view.Blocks,
		"sections":   view.Sections,
	}, out)
	return err
}
