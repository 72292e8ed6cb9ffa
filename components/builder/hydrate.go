package builder

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NormalizeSchema decodes the three schema shapes the server returns:
// {"data": {projectBlocks, projectSettings}}, a bare block array, or a bare
// {projectBlocks, projectSettings} object. Empty bodies yield an empty
// document.
func NormalizeSchema(raw json.RawMessage) (Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Document{Blocks: []Block{}}, nil
	}
	switch trimmed[0] {
	case '[':
		var blocks []Block
		if err := json.Unmarshal(trimmed, &blocks); err != nil {
			return Document{}, fmt.Errorf("pagebuilder: decode block array: %w", err)
		}
		return normalizedDocument(Document{Blocks: blocks}), nil
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return Document{}, fmt.Errorf("pagebuilder: decode schema: %w", err)
		}
		if inner, ok := envelope["data"]; ok {
			if _, blocks := envelope["projectBlocks"]; !blocks {
				return NormalizeSchema(inner)
			}
		}
		var doc Document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return Document{}, fmt.Errorf("pagebuilder: decode document: %w", err)
		}
		return normalizedDocument(doc), nil
	default:
		return Document{}, fmt.Errorf("pagebuilder: unsupported schema payload")
	}
}

func normalizedDocument(doc Document) Document {
	list := NewBlockList(doc.Blocks, nil)
	doc.Blocks = list.Blocks()
	return doc
}
