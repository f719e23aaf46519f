// Package site serves the bundled web client's static files to the
// gateway's asset operations.
package site

import (
	"io/fs"
	"os"
	"path"
	"strings"
)

// Dir returns a lookup function over the given directory tree. The
// gateway hands it slash-separated relative names; a missing or
// unreadable file yields nil, which the gateway reports as not found.
func Dir(base string) func(string) []byte {
	root := os.DirFS(base)
	return FS(root)
}

// FS is like Dir but reads from any fs.FS, which lets callers embed the
// client instead of shipping it alongside the binary.
func FS(root fs.FS) func(string) []byte {
	return func(name string) []byte {
		cleaned := path.Clean(strings.TrimPrefix(name, "/"))
		if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
			return nil
		}
		data, err := fs.ReadFile(root, cleaned)
		if err != nil {
			return nil
		}
		return data
	}
}
