package builder

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a Path: a map key optionally followed by a
// single array index (name[index]).
type Segment struct {
	Key   string
	Index int
	Array bool
}

// Path addresses a field inside a widget data tree.
type Path []Segment

// ParsePath parses dotted field paths with optional name[index] segments,
// e.g. "links[1].image" or "image".
func ParsePath(raw string) (Path, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("pagebuilder: empty path")
	}
	parts := strings.Split(raw, ".")
	out := make(Path, 0, len(parts))
	for _, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, fmt.Errorf("pagebuilder: path %q: %w", raw, err)
		}
		out = append(out, seg)
	}
	return out, nil
}

// MustPath panics on malformed static paths.
func MustPath(raw string) Path {
	p, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func parseSegment(part string) (Segment, error) {
	if part == "" {
		return Segment{}, fmt.Errorf("empty segment")
	}
	open := strings.IndexByte(part, '[')
	if open < 0 {
		if strings.ContainsAny(part, "]") {
			return Segment{}, fmt.Errorf("unbalanced bracket in %q", part)
		}
		return Segment{Key: part}, nil
	}
	if open == 0 || !strings.HasSuffix(part, "]") {
		return Segment{}, fmt.Errorf("malformed index segment %q", part)
	}
	idx, err := strconv.Atoi(part[open+1 : len(part)-1])
	if err != nil || idx < 0 {
		return Segment{}, fmt.Errorf("invalid index in %q", part)
	}
	return Segment{Key: part[:open], Index: idx, Array: true}, nil
}

// Index returns a Path that addresses name[index].rest.
func Index(name string, index int, rest ...string) Path {
	out := Path{{Key: name, Index: index, Array: true}}
	for _, key := range rest {
		out = append(out, Segment{Key: key})
	}
	return out
}

// Field returns a Path of plain keys.
func Field(keys ...string) Path {
	out := make(Path, len(keys))
	for i, key := range keys {
		out[i] = Segment{Key: key}
	}
	return out
}

func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Key)
		if seg.Array {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteByte(']')
		}
	}
	return b.String()
}

// Get resolves the path against tree.
func (p Path) Get(tree map[string]any) (any, bool) {
	var current any = tree
	for _, seg := range p {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		value, ok := m[seg.Key]
		if !ok {
			return nil, false
		}
		if seg.Array {
			list, ok := value.([]any)
			if !ok || seg.Index >= len(list) {
				return nil, false
			}
			value = list[seg.Index]
		}
		current = value
	}
	return current, true
}

// Set writes value at the path. Intermediate containers must already exist,
// except the final map key which is created when missing.
func (p Path) Set(tree map[string]any, value any) error {
	if len(p) == 0 {
		return fmt.Errorf("pagebuilder: empty path")
	}
	if tree == nil {
		return fmt.Errorf("pagebuilder: set %s on nil tree", p)
	}
	current := tree
	for i, seg := range p {
		last := i == len(p)-1
		if !seg.Array {
			if last {
				current[seg.Key] = value
				return nil
			}
			next, ok := current[seg.Key].(map[string]any)
			if !ok {
				return fmt.Errorf("pagebuilder: set %s: %q is not an object", p, seg.Key)
			}
			current = next
			continue
		}
		list, ok := current[seg.Key].([]any)
		if !ok {
			return fmt.Errorf("pagebuilder: set %s: %q is not a list", p, seg.Key)
		}
		if seg.Index >= len(list) {
			return fmt.Errorf("pagebuilder: set %s: index %d out of range", p, seg.Index)
		}
		if last {
			list[seg.Index] = value
			return nil
		}
		next, ok := list[seg.Index].(map[string]any)
		if !ok {
			return fmt.Errorf("pagebuilder: set %s: %s[%d] is not an object", p, seg.Key, seg.Index)
		}
		current = next
	}
	return nil
}

// CloneValue deep-copies map and slice trees. Leaf values, including
// *LocalFile handles, are shared.
func CloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return CloneMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = CloneValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = CloneMap(item)
		}
		return out
	default:
		return v
	}
}

// CloneMap deep-copies a data tree.
func CloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = CloneValue(value)
	}
	return out
}
