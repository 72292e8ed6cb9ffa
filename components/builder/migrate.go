package builder

// MigrateData backfills fields introduced after data was first persisted.
// Old shapes are upgraded silently; nothing here fails.
func MigrateData(kind WidgetKind, data map[string]any, gen IDGenerator) map[string]any {
	switch kind {
	case KindCarousel:
		out := CloneMap(data)
		if out == nil {
			out = map[string]any{}
		}
		if style, ok := out["style"].(string); !ok || style == "" {
			out["style"] = CarouselStyleFeatured
		}
		return out
	case KindLink:
		return migrateLink(data, gen)
	case KindBackground:
		out := CloneMap(data)
		if out == nil {
			out = map[string]any{}
		}
		if _, ok := out["blur"]; !ok {
			out["blur"] = 0
		}
		return out
	default:
		return CloneMap(data)
	}
}

// applyStyleRules keeps list-shaped kinds consistent with their style.
func applyStyleRules(kind WidgetKind, data map[string]any, gen IDGenerator) map[string]any {
	switch kind {
	case KindLink:
		return ResizeLinks(data, gen)
	case KindCarousel:
		return PadShowcase(data, gen)
	default:
		return data
	}
}
