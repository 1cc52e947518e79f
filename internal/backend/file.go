package backend

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// File is a named payload for a multipart upload. Open is called once per
// request, at send time.
type File struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// LocalFile wraps a file on disk.
func LocalFile(path string) File {
	return File{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// MemoryFile wraps an in-memory payload.
func MemoryFile(name string, data []byte) File {
	return File{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
