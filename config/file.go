// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileReader is an io.Reader that handles opening a file for reading automatically.
type FileReader struct {
	path string

	openOnce sync.Once
	open     func(string) (io.ReadCloser, error)
	file     io.ReadCloser
	openErr  error
}

// NewFileReader configures a FileReader which opens path from the given fs.FS.
func NewFileReader(fsys fs.FS, path string) *FileReader {
	return &FileReader{
		path: path,
		open: func(p string) (io.ReadCloser, error) {
			return fsys.Open(p)
		},
	}
}

// OpenFile configures a FileReader for a path on the local file system.
// Relative paths are resolved against the working directory.
func OpenFile(path string) *FileReader {
	return &FileReader{
		path: path,
		open: func(p string) (io.ReadCloser, error) {
			return os.Open(p)
		},
	}
}

// Path returns the path this reader opens.
func (r *FileReader) Path() string {
	return r.path
}

// Read implements the Read interface.
func (r *FileReader) Read(b []byte) (int, error) {
	r.openOnce.Do(func() {
		r.file, r.openErr = r.open(r.path)
	})
	if r.openErr != nil {
		return 0, r.openErr
	}
	return r.file.Read(b)
}

// Close implements the io.Closer interface.
func (r *FileReader) Close() error {
	if r.file == nil {
		return nil
	}

	err := r.file.Close()
	r.file = nil
	return err
}

// FromFile returns a Source for the file at path, picking the document format
// from the file extension: ".yaml" and ".yml" are YAML, anything else is JSON.
func FromFile(path string) Source {
	r := OpenFile(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FromYaml(r)
	default:
		return FromJson(r)
	}
}
