// Package extract turns uploaded document bytes into plain text.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrUnsupported = errors.New("unsupported document type")

// Func extracts plain text from a whole document.
type Func func(data []byte) (string, error)

var byExt = map[string]Func{
	"docx": DOCX,
	"pdf":  PDF,
}

// Ext returns the lower-cased extension without the dot, or "" when the name
// has none.
func Ext(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" || ext == "." {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Allowed reports whether filename carries one of the allowed extensions.
func Allowed(filename string, allowed []string) bool {
	ext := Ext(filename)
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimPrefix(a, "."), ext) {
			return true
		}
	}
	return false
}

// Text dispatches on the filename extension.
func Text(filename string, data []byte) (string, error) {
	fn, ok := byExt[Ext(filename)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filename)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty file: %s", filename)
	}
	return fn(data)
}
