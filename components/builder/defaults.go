package builder

// Link styles and the number of entries each one renders.
const (
	LinkStyleFeatured  = "featured"
	LinkStyleCardImage = "cardImage"
	LinkStyleCardSolid = "cardSolid"
)

// Carousel styles.
const (
	CarouselStyleFeatured = "featured"
	CarouselStyleShowcase = "showcase"
)

// Left-column settings keys.
const (
	SettingsProfile    = "profileData"
	SettingsVideo      = "videoData"
	SettingsSocialLink = "socialLinkData"
	SettingsButton     = "buttonData"
)

var mediaSchema = map[string]any{"type": []string{"string", "null"}}

var defaultWidgetDefinitions = []WidgetDefinition{
	{
		Code:        KindLink,
		Name:        "Links",
		Description: "One or more link cards",
		Category:    CategoryBlock,
		MediaFields: []MediaField{{List: "links", Field: "image"}},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"style": map[string]any{"type": "string", "enum": []string{LinkStyleFeatured, LinkStyleCardImage, LinkStyleCardSolid}},
				"links": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []string{"id"},
						"properties": map[string]any{
							"id":       map[string]any{"type": "string"},
							"image":    mediaSchema,
							"title":    map[string]any{"type": "string"},
							"subtitle": map[string]any{"type": "string"},
							"linkText": map[string]any{"type": "string"},
							"linkUrl":  map[string]any{"type": "string"},
						},
					},
				},
			},
		},
	},
	{
		Code:        KindCarousel,
		Name:        "Carousel",
		Description: "Sliding image gallery",
		Category:    CategoryBlock,
		MediaFields: []MediaField{{List: "slides", Field: "image"}},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"style":           map[string]any{"type": "string"},
				"scheduleContent": map[string]any{"type": "boolean"},
				"slides": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []string{"id"},
						"properties": map[string]any{
							"id":    map[string]any{"type": "string"},
							"image": mediaSchema,
						},
					},
				},
			},
		},
	},
	{
		Code:        KindProducts,
		Name:        "Products",
		Description: "Product list",
		Category:    CategoryBlock,
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"productIds": map[string]any{"type": "array"},
			},
		},
	},
	{
		Code:        KindSectionText,
		Name:        "Text section",
		Description: "Heading and paragraph",
		Category:    CategoryBlock,
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{"type": "string"},
				"text":  map[string]any{"type": "string"},
			},
		},
	},
	{
		Code:        KindEmbed,
		Name:        "Embed",
		Description: "Third-party embed",
		Category:    CategoryBlock,
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"service": map[string]any{"type": "string"},
				"url":     map[string]any{"type": "string"},
			},
		},
	},
	{
		Code:        KindConnect,
		Name:        "Connect",
		Description: "Social feed display",
		Category:    CategoryBlock,
	},
	{
		Code:        KindTablePrice,
		Name:        "Price table",
		Description: "Labelled price rows",
		Category:    CategoryBlock,
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"rows": map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
			},
		},
	},
	{
		Code:        KindPromoVideo,
		Name:        "Promo video",
		Description: "Video with thumbnail",
		Category:    CategoryBlock,
		MediaFields: []MediaField{{Field: "video"}, {Field: "thumbnail"}},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"video":     mediaSchema,
				"thumbnail": mediaSchema,
			},
		},
	},
	{
		Code:        KindBackground,
		Name:        "Background",
		Description: "Page background colour and image",
		Category:    CategoryBlock,
		MediaFields: []MediaField{{Field: "image"}},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"color": map[string]any{"type": "string"},
				"image": mediaSchema,
				"blur":  map[string]any{"type": "number"},
			},
		},
	},
	{
		Code:     KindEmbedSelector,
		Name:     "Embed service selector",
		Category: CategorySelector,
	},
	{
		Code:        KindLeftColProfile,
		Name:        "Profile",
		Category:    CategoryLeftColumn,
		SettingsKey: SettingsProfile,
		MediaFields: []MediaField{{Field: "avatar"}, {Field: "cover"}},
	},
	{
		Code:        KindLeftColVideo,
		Name:        "Sidebar video",
		Category:    CategoryLeftColumn,
		SettingsKey: SettingsVideo,
		MediaFields: []MediaField{{Field: "video"}, {Field: "thumbnail"}},
	},
	{
		Code:        KindLeftColSocialLink,
		Name:        "Social links",
		Category:    CategoryLeftColumn,
		SettingsKey: SettingsSocialLink,
		MediaFields: []MediaField{{List: "links", Field: "icon"}},
	},
	{
		Code:        KindLeftColButtonWidget,
		Name:        "Sidebar button",
		Category:    CategoryLeftColumn,
		SettingsKey: SettingsButton,
		MediaFields: []MediaField{{Field: "icon"}},
	},
}

// DefaultWidgetDefinitions returns the built-in widget kinds.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	copy(out, defaultWidgetDefinitions)
	return out
}

// DefaultData returns the seed data for a newly created widget of kind.
func DefaultData(kind WidgetKind, gen IDGenerator) map[string]any {
	if gen == nil {
		gen = NewID
	}
	switch kind {
	case KindLink:
		return map[string]any{
			"style": LinkStyleFeatured,
			"links": []any{newLinkEntry(gen)},
		}
	case KindCarousel:
		return map[string]any{
			"style":           CarouselStyleFeatured,
			"slides":          []any{newSlide(gen)},
			"scheduleContent": false,
		}
	case KindProducts:
		return map[string]any{"title": "", "style": "grid", "productIds": []any{}}
	case KindSectionText:
		return map[string]any{"title": "", "text": ""}
	case KindEmbed:
		return map[string]any{"service": "", "url": ""}
	case KindConnect:
		return map[string]any{"provider": "", "handle": "", "layout": "grid"}
	case KindTablePrice:
		return map[string]any{
			"title": "",
			"rows":  []any{map[string]any{"id": gen(), "label": "", "price": ""}},
		}
	case KindPromoVideo:
		return map[string]any{"title": "", "video": "", "thumbnail": ""}
	case KindBackground:
		return map[string]any{"color": "#ffffff", "image": "", "blur": 0}
	default:
		return map[string]any{}
	}
}

func newLinkEntry(gen IDGenerator) map[string]any {
	return map[string]any{
		"id":       gen(),
		"image":    "",
		"subtitle": "",
		"title":    "",
		"linkText": "",
		"linkUrl":  "",
	}
}

func newSlide(gen IDGenerator) map[string]any {
	return map[string]any{
		"id":       gen(),
		"image":    "",
		"title":    "",
		"subtitle": "",
		"linkUrl":  "",
	}
}
