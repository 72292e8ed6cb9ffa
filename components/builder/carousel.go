package builder

// ShowcaseMinSlides is the smallest slide count a showcase carousel renders.
const ShowcaseMinSlides = 3

// MinSlides returns the lower bound on slides for a carousel style.
func MinSlides(style string) int {
	if style == CarouselStyleShowcase {
		return ShowcaseMinSlides
	}
	return 1
}

// PadShowcase returns a copy of data with at least three slides when the
// style is showcase. New slides copy the last slide under fresh ids.
func PadShowcase(data map[string]any, gen IDGenerator) map[string]any {
	out := CloneMap(data)
	if out == nil {
		out = map[string]any{}
	}
	if style, _ := out["style"].(string); style != CarouselStyleShowcase {
		return out
	}
	slides := listValue(out, "slides")
	for len(slides) < ShowcaseMinSlides {
		slides = append(slides, copyEntry(lastEntry(slides), gen, newSlide))
	}
	out["slides"] = slides
	return out
}

// AppendSlide returns a copy of data with one more slide copied from the
// previous one.
func AppendSlide(data map[string]any, gen IDGenerator) map[string]any {
	out := CloneMap(data)
	if out == nil {
		out = map[string]any{}
	}
	slides := listValue(out, "slides")
	out["slides"] = append(slides, copyEntry(lastEntry(slides), gen, newSlide))
	return out
}

// DropSlide removes the slide with id. It refuses, returning data unchanged
// and false, when the id is unknown or removal would go below the style's
// minimum.
func DropSlide(data map[string]any, id string) (map[string]any, bool) {
	style, _ := data["style"].(string)
	slides := listValue(data, "slides")
	if len(slides)-1 < MinSlides(style) {
		return data, false
	}
	idx := -1
	for i, raw := range slides {
		if entry, ok := raw.(map[string]any); ok && entry["id"] == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return data, false
	}
	out := CloneMap(data)
	remaining := make([]any, 0, len(slides)-1)
	for i, slide := range listValue(out, "slides") {
		if i != idx {
			remaining = append(remaining, slide)
		}
	}
	out["slides"] = remaining
	return out, true
}

func slideCount(data map[string]any) int {
	return len(listValue(data, "slides"))
}
