package builder

var linkStyleCounts = map[string]int{
	LinkStyleFeatured:  1,
	LinkStyleCardImage: 2,
	LinkStyleCardSolid: 2,
}

var legacyLinkFields = []string{"image", "title", "subtitle", "linkText", "linkUrl", "url"}

// LinkCount returns the number of link entries a style renders. Unknown
// styles keep the current length, never less than one.
func LinkCount(style string, current int) int {
	if n, ok := linkStyleCounts[style]; ok {
		return n
	}
	if current < 1 {
		return 1
	}
	return current
}

// ResizeLinks returns a copy of data whose links list matches the style's
// required length. Existing entries are kept positionally; missing ones copy
// the last entry's fields under a fresh id.
func ResizeLinks(data map[string]any, gen IDGenerator) map[string]any {
	out := CloneMap(data)
	if out == nil {
		out = map[string]any{}
	}
	style, _ := out["style"].(string)
	links := listValue(out, "links")
	required := LinkCount(style, len(links))

	resized := make([]any, 0, required)
	for i := 0; i < required; i++ {
		if i < len(links) {
			resized = append(resized, links[i])
			continue
		}
		resized = append(resized, copyEntry(lastEntry(links), gen, newLinkEntry))
	}
	out["links"] = resized
	return out
}

// UpdateLinkEntry merges partial into the link entry with the given id.
// It reports false if no entry matched.
func UpdateLinkEntry(data map[string]any, id string, partial map[string]any) (map[string]any, bool) {
	out := CloneMap(data)
	links := listValue(out, "links")
	for i, raw := range links {
		entry, ok := raw.(map[string]any)
		if !ok || entry["id"] != id {
			continue
		}
		for key, value := range partial {
			if key == "id" {
				continue
			}
			entry[key] = value
		}
		links[i] = entry
		out["links"] = links
		return out, true
	}
	return data, false
}

// migrateLink lifts the legacy single-link shape into the links list and
// pads or truncates to the style's required count.
func migrateLink(data map[string]any, gen IDGenerator) map[string]any {
	out := CloneMap(data)
	if out == nil {
		out = map[string]any{}
	}
	if _, ok := out["style"].(string); !ok {
		out["style"] = LinkStyleFeatured
	}
	if len(listValue(out, "links")) == 0 {
		entry := newLinkEntry(gen)
		lifted := false
		for _, key := range legacyLinkFields {
			value, ok := out[key]
			if !ok {
				continue
			}
			lifted = true
			if key == "url" {
				entry["linkUrl"] = value
			} else {
				entry[key] = value
			}
			delete(out, key)
		}
		if lifted || out["links"] == nil {
			out["links"] = []any{entry}
		}
	}
	return ResizeLinks(out, gen)
}

func listValue(data map[string]any, key string) []any {
	switch v := data[key].(type) {
	case []any:
		return v
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out
	default:
		return nil
	}
}

func lastEntry(list []any) map[string]any {
	for i := len(list) - 1; i >= 0; i-- {
		if entry, ok := list[i].(map[string]any); ok {
			return entry
		}
	}
	return nil
}

// copyEntry clones src under a fresh id, or builds a default when src is nil.
func copyEntry(src map[string]any, gen IDGenerator, fallback func(IDGenerator) map[string]any) map[string]any {
	if gen == nil {
		gen = NewID
	}
	if src == nil {
		return fallback(gen)
	}
	entry := CloneMap(src)
	entry["id"] = gen()
	return entry
}
