package builder

import "fmt"

// RewriteDocument returns a deep copy of doc where every destination's
// recorded location holds the server content path. Destinations whose
// filename is not in files are returned as unmatched.
func RewriteDocument(doc Document, files *FileRegistry, destinations []UploadDestination) (Document, []string, error) {
	out := doc.Clone()
	if files.Len() == 0 || len(destinations) == 0 {
		return out, nil, nil
	}
	index := make(map[string]int, len(out.Blocks))
	for i, block := range out.Blocks {
		index[block.ID] = i
	}
	var unmatched []string
	for _, dest := range destinations {
		entry, ok := files.Entry(dest.Filename)
		if !ok {
			unmatched = append(unmatched, dest.Filename)
			continue
		}
		loc := entry.Location
		var target map[string]any
		switch {
		case loc.BlockID != "":
			i, ok := index[loc.BlockID]
			if !ok {
				return doc, nil, fmt.Errorf("pagebuilder: rewrite %s: block %s not found", dest.Filename, loc.BlockID)
			}
			target = out.Blocks[i].Data
		case loc.SettingsKey != "":
			target = out.Settings.Section(loc.SettingsKey)
		}
		if target == nil {
			return doc, nil, fmt.Errorf("pagebuilder: rewrite %s: location %s has no data", dest.Filename, loc.Path)
		}
		if err := loc.Path.Set(target, dest.ContentPath); err != nil {
			return doc, nil, fmt.Errorf("pagebuilder: rewrite %s: %w", dest.Filename, err)
		}
	}
	return out, unmatched, nil
}
