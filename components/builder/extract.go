package builder

// FileLocation addresses a media field either inside a block or inside a
// left-column settings section.
type FileLocation struct {
	BlockID     string
	SettingsKey string
	Path        Path
}

// FileEntry routes a generated filename back to its location.
type FileEntry struct {
	Filename string
	File     *LocalFile
	Location FileLocation
	Kind     WidgetKind
}

// FileRegistry is the transient filename index built before a save.
type FileRegistry struct {
	entries map[string]FileEntry
	order   []string
}

func newFileRegistry() *FileRegistry {
	return &FileRegistry{entries: map[string]FileEntry{}}
}

// Len returns the number of pending files.
func (r *FileRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Entry looks up a generated filename.
func (r *FileRegistry) Entry(filename string) (FileEntry, bool) {
	if r == nil {
		return FileEntry{}, false
	}
	entry, ok := r.entries[filename]
	return entry, ok
}

// Entries returns entries in discovery order.
func (r *FileRegistry) Entries() []FileEntry {
	if r == nil {
		return nil
	}
	out := make([]FileEntry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	return out
}

// Items returns the destination request batch in discovery order.
func (r *FileRegistry) Items() []UploadItem {
	entries := r.Entries()
	items := make([]UploadItem, len(entries))
	for i, entry := range entries {
		items[i] = UploadItem{Filename: entry.Filename, ContentType: entry.File.MimeType()}
	}
	return items
}

func (r *FileRegistry) add(entry FileEntry) {
	r.entries[entry.Filename] = entry
	r.order = append(r.order, entry.Filename)
}

// MediaVisitor receives every enumerated media field of a document.
type MediaVisitor func(loc FileLocation, kind WidgetKind, ref MediaRef)

// WalkMedia visits the media fields each widget definition declares, across
// blocks and left-column settings. Kinds missing from reg are skipped.
func WalkMedia(doc Document, reg WidgetRegistry, visit MediaVisitor) {
	if reg == nil || visit == nil {
		return
	}
	for _, block := range doc.Blocks {
		def, ok := reg.Definition(block.Type)
		if !ok {
			continue
		}
		walkFields(block.Data, def, func(p Path, ref MediaRef) {
			visit(FileLocation{BlockID: block.ID, Path: p}, block.Type, ref)
		})
	}
	for _, def := range reg.Definitions() {
		if def.Category != CategoryLeftColumn {
			continue
		}
		section := doc.Settings.Section(def.SettingsKey)
		walkFields(section, def, func(p Path, ref MediaRef) {
			visit(FileLocation{SettingsKey: def.SettingsKey, Path: p}, def.Code, ref)
		})
	}
}

func walkFields(data map[string]any, def WidgetDefinition, fn func(Path, MediaRef)) {
	if data == nil {
		return
	}
	for _, field := range def.MediaFields {
		if field.List == "" {
			p := Field(field.Field)
			if value, ok := p.Get(data); ok {
				fn(p, ClassifyMedia(value))
			}
			continue
		}
		for i := range listValue(data, field.List) {
			p := Index(field.List, i, field.Field)
			if value, ok := p.Get(data); ok {
				fn(p, ClassifyMedia(value))
			}
		}
	}
}

// ExtractFiles indexes every pending local file under a freshly generated
// filename. Distinct handles with identical content get distinct names.
func ExtractFiles(doc Document, reg WidgetRegistry, gen IDGenerator) *FileRegistry {
	files := newFileRegistry()
	WalkMedia(doc, reg, func(loc FileLocation, kind WidgetKind, ref MediaRef) {
		if ref.Kind != MediaLocal {
			return
		}
		name := GenerateFilename(gen, ref.Local)
		if _, taken := files.entries[name]; taken {
			name = GenerateFilename(NewID, ref.Local)
		}
		files.add(FileEntry{
			Filename: name,
			File:     ref.Local,
			Location: loc,
			Kind:     kind,
		})
	})
	return files
}

// ContentFilenames lists the server filenames referenced by remote media
// values in data.
func ContentFilenames(def WidgetDefinition, data map[string]any) []string {
	var names []string
	walkFields(data, def, func(_ Path, ref MediaRef) {
		if name := ref.Filename(); name != "" {
			names = append(names, name)
		}
	})
	return names
}
