package builder

import (
	"path"
	"strings"
)

const (
	defaultContentType = "application/octet-stream"
	defaultExtension   = "bin"
)

// LocalFile is an in-memory binary handle pending upload.
type LocalFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// MarshalJSON drops the payload; pending files do not survive a cache round trip.
func (f *LocalFile) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Extension returns the lower-cased extension of the declared name.
func (f *LocalFile) Extension() string {
	if f == nil {
		return defaultExtension
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(f.Name)), ".")
	if ext == "" {
		return defaultExtension
	}
	return ext
}

// MimeType returns the declared content type or the generic fallback.
func (f *LocalFile) MimeType() string {
	if f == nil || strings.TrimSpace(f.ContentType) == "" {
		return defaultContentType
	}
	return f.ContentType
}

// MediaKind discriminates the representations a media field can hold.
type MediaKind int

const (
	MediaNone MediaKind = iota
	MediaLocal
	MediaRemote
	MediaAbsolute
)

func (k MediaKind) String() string {
	switch k {
	case MediaLocal:
		return "local"
	case MediaRemote:
		return "remote"
	case MediaAbsolute:
		return "absolute"
	default:
		return "none"
	}
}

// MediaRef is the explicit variant of a media field value.
type MediaRef struct {
	Kind  MediaKind
	Local *LocalFile
	Path  string
	Abs   string
}

// ClassifyMedia inspects a raw field value. It is the only place that
// performs type checks on media values.
func ClassifyMedia(value any) MediaRef {
	switch v := value.(type) {
	case *LocalFile:
		if v == nil {
			return MediaRef{}
		}
		return MediaRef{Kind: MediaLocal, Local: v}
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return MediaRef{}
		}
		if isAbsoluteURL(trimmed) {
			return MediaRef{Kind: MediaAbsolute, Abs: trimmed}
		}
		return MediaRef{Kind: MediaRemote, Path: trimmed}
	default:
		return MediaRef{}
	}
}

// URL returns a displayable URL. Remote paths are resolved against base;
// local files have no URL until uploaded.
func (m MediaRef) URL(base string) string {
	switch m.Kind {
	case MediaAbsolute:
		return m.Abs
	case MediaRemote:
		if base == "" {
			return m.Path
		}
		return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(m.Path, "/")
	default:
		return ""
	}
}

// Filename returns the last path segment of a remote content path.
func (m MediaRef) Filename() string {
	if m.Kind != MediaRemote {
		return ""
	}
	return path.Base(m.Path)
}

func isAbsoluteURL(value string) bool {
	lower := strings.ToLower(value)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(lower, "blob:")
}
