// Package source abstracts where file content comes from so analyzers can
// be fed from the filesystem or from fixtures.
package source

import (
	"fmt"
	"io/fs"
	"os"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MapSource serves content from an in-memory map keyed by path. Reads are
// lock-free since the map is never mutated after construction.
type MapSource struct {
	files map[string][]byte
}

// NewMap creates a source backed by the given path -> content map.
func NewMap(files map[string][]byte) *MapSource {
	return &MapSource{files: files}
}

// Read implements ContentSource. Missing paths return fs.ErrNotExist.
func (m *MapSource) Read(path string) ([]byte, error) {
	content, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	}
	return content, nil
}
