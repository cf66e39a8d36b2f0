// Package mapper holds the column mapping between the service's required
// fields and the headers of an uploaded spreadsheet.
package mapper

import (
	"fmt"
	"sync"

	"github.com/KaramelBytes/custinsights-cli/internal/segment"
)

// Selector is the render model of one field's column picker.
type Selector struct {
	Field    string
	Label    string
	Options  []string
	Selected string
}

// Mapper owns the current selectors. The zero value is an unloaded mapper.
type Mapper struct {
	mu        sync.Mutex
	selectors []Selector
}

// New returns an unloaded mapper.
func New() *Mapper { return &Mapper{} }

// BuildSelectors is the pure part of Build: one selector per required field,
// in fixed order, each offering every header and defaulting to the first.
func BuildSelectors(headers []string) []Selector {
	if len(headers) == 0 {
		return nil
	}
	out := make([]Selector, 0, len(segment.RequiredFields))
	for _, f := range segment.RequiredFields {
		opts := make([]string, len(headers))
		copy(opts, headers)
		out = append(out, Selector{
			Field:    f.Key,
			Label:    f.Label,
			Options:  opts,
			Selected: headers[0],
		})
	}
	return out
}

// Build replaces any previous selectors with ones built from headers.
func (m *Mapper) Build(headers []string) {
	sel := BuildSelectors(headers)
	m.mu.Lock()
	m.selectors = sel
	m.mu.Unlock()
}

// Reset drops all selectors.
func (m *Mapper) Reset() {
	m.mu.Lock()
	m.selectors = nil
	m.mu.Unlock()
}

// Loaded reports whether selectors exist.
func (m *Mapper) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.selectors) > 0
}

// Selectors returns a copy of the current render model.
func (m *Mapper) Selectors() []Selector {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Selector, len(m.selectors))
	for i, s := range m.selectors {
		s.Options = append([]string(nil), s.Options...)
		out[i] = s
	}
	return out
}

// Select points field at header. The header must be one of the offered options.
func (m *Mapper) Select(field, header string) error {
	if !segment.IsRequiredField(field) {
		return fmt.Errorf("unknown field %q", field)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.selectors) == 0 {
		return segment.ErrIncompleteMapping
	}
	for i := range m.selectors {
		if m.selectors[i].Field != field {
			continue
		}
		for _, opt := range m.selectors[i].Options {
			if opt == header {
				m.selectors[i].Selected = header
				return nil
			}
		}
		return fmt.Errorf("column %q is not in the uploaded file", header)
	}
	return fmt.Errorf("unknown field %q", field)
}

// Current returns the live mapping, or ErrIncompleteMapping before any headers
// are loaded or while a field has no selection.
func (m *Mapper) Current() (segment.FieldMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.selectors) == 0 {
		return nil, segment.ErrIncompleteMapping
	}
	out := make(segment.FieldMapping, len(m.selectors))
	for _, s := range m.selectors {
		out[s.Field] = s.Selected
	}
	if err := out.Complete(); err != nil {
		return nil, err
	}
	return out, nil
}
