package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	builder "github.com/goliatone/go-pagebuilder/components/builder"
)

const fileKey = "$file"

// decodeDocument parses a document file and replaces {"$file": path} values
// with pending local files. Relative paths resolve against the document's
// directory.
func decodeDocument(data []byte, source string) (builder.Document, error) {
	var doc builder.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return builder.Document{}, fmt.Errorf("pagectl: parse document: %w", err)
	}
	base := filepath.Dir(source)
	for i := range doc.Blocks {
		if _, err := resolveFiles(doc.Blocks[i].Data, base); err != nil {
			return builder.Document{}, err
		}
	}
	for _, key := range builder.SectionKeys() {
		if _, err := resolveFiles(doc.Settings.Section(key), base); err != nil {
			return builder.Document{}, err
		}
	}
	return doc, nil
}

func resolveFiles(value any, base string) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		if path, ok := fileRef(v); ok {
			return loadLocalFile(path, base)
		}
		for key, item := range v {
			next, err := resolveFiles(item, base)
			if err != nil {
				return nil, err
			}
			v[key] = next
		}
		return v, nil
	case []any:
		for i, item := range v {
			next, err := resolveFiles(item, base)
			if err != nil {
				return nil, err
			}
			v[i] = next
		}
		return v, nil
	default:
		return value, nil
	}
}

func fileRef(m map[string]any) (string, bool) {
	if len(m) != 1 {
		return "", false
	}
	path, ok := m[fileKey].(string)
	return path, ok && strings.TrimSpace(path) != ""
}

func loadLocalFile(path, base string) (*builder.LocalFile, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("pagectl: read media %s: %w", path, err)
	}
	name := filepath.Base(path)
	return &builder.LocalFile{
		Name:        name,
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
		Data:        data,
	}, nil
}
