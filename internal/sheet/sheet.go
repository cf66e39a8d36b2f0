// Package sheet reads the header row of uploaded spreadsheets.
package sheet

import (
	"errors"
	"strings"
)

// Reader extracts the header row from one spreadsheet format.
type Reader interface {
	CanRead(filename string) bool
	Headers(content []byte) ([]string, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ErrUnsupported indicates the file extension has no reader.
var ErrUnsupported = errors.New("unsupported file type")

// ErrEmpty indicates the spreadsheet has no header row.
var ErrEmpty = errors.New("spreadsheet has no header row")

// Supported reports whether filename has a registered reader.
func Supported(filename string) bool {
	return readerFor(filename) != nil
}

// Headers picks a reader by filename and returns the trimmed header row.
func Headers(filename string, content []byte) ([]string, error) {
	r := readerFor(filename)
	if r == nil {
		return nil, ErrUnsupported
	}
	raw, err := r.Headers(content)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out = append(out, h)
	}
	// trailing blank cells are formatting, not columns
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

func readerFor(filename string) Reader {
	for _, r := range registry {
		if r.CanRead(filename) {
			return r
		}
	}
	return nil
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}
