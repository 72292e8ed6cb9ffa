package builder

import "github.com/google/uuid"

// IDGenerator produces opaque identifiers for blocks, list entries and files.
type IDGenerator func() string

// NewID returns a random v4 UUID.
func NewID() string {
	return uuid.NewString()
}

// GenerateFilename names an upload as <random-id>.<extension>.
func GenerateFilename(gen IDGenerator, file *LocalFile) string {
	if gen == nil {
		gen = NewID
	}
	return gen() + "." + file.Extension()
}
