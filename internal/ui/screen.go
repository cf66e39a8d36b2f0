// Package ui models every user-visible area of the segmentation screen as
// plain data. Components write to a Screen; front ends read a View.
package ui

import (
	"sync"

	"github.com/KaramelBytes/custinsights-cli/internal/mapper"
	"github.com/KaramelBytes/custinsights-cli/internal/render"
)

// DefaultDropLabel is shown in the drop zone before a file is chosen.
const DefaultDropLabel = "Drag & drop your file here, or click to select"

// View is an immutable snapshot of the screen.
type View struct {
	Status             string
	LoaderVisible      bool
	LoaderMessage      string
	DropLabel          string
	DefaultInfoVisible bool
	UploadAreaVisible  bool
	MappingVisible     bool
	Mapping            []mapper.Selector
	Plot               *render.PlotModel
	Personas           []render.PersonaCard
}

// HasOutput reports whether a plot or persona cards are on screen.
func (v View) HasOutput() bool { return v.Plot != nil || len(v.Personas) > 0 }

// Screen is the mutable screen state. The zero value is not ready; use NewScreen.
type Screen struct {
	mu sync.Mutex
	v  View
}

// NewScreen returns the initial screen: default dataset selected, nothing rendered.
func NewScreen() *Screen {
	return &Screen{v: View{DropLabel: DefaultDropLabel, DefaultInfoVisible: true}}
}

// Snapshot copies the current view.
func (s *Screen) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.v
	v.Mapping = append([]mapper.Selector(nil), s.v.Mapping...)
	v.Personas = append([]render.PersonaCard(nil), s.v.Personas...)
	return v
}

func (s *Screen) SetStatus(text string) {
	s.mu.Lock()
	s.v.Status = text
	s.mu.Unlock()
}

func (s *Screen) ShowLoader(msg string) {
	s.mu.Lock()
	s.v.LoaderVisible = true
	s.v.LoaderMessage = msg
	s.mu.Unlock()
}

func (s *Screen) HideLoader() {
	s.mu.Lock()
	s.v.LoaderVisible = false
	s.mu.Unlock()
}

func (s *Screen) SetDropLabel(text string) {
	s.mu.Lock()
	s.v.DropLabel = text
	s.mu.Unlock()
}

// ShowDataSource toggles the default-data panel against the upload panel.
func (s *Screen) ShowDataSource(useDefault bool) {
	s.mu.Lock()
	s.v.DefaultInfoVisible = useDefault
	s.v.UploadAreaVisible = !useDefault
	s.mu.Unlock()
}

// ShowMapping replaces the mapping area with sel and makes it visible.
func (s *Screen) ShowMapping(sel []mapper.Selector) {
	s.mu.Lock()
	s.v.Mapping = sel
	s.v.MappingVisible = len(sel) > 0
	s.mu.Unlock()
}

// ClearMapping hides and empties the mapping area.
func (s *Screen) ClearMapping() {
	s.mu.Lock()
	s.v.Mapping = nil
	s.v.MappingVisible = false
	s.mu.Unlock()
}

// ClearResults empties the plot and persona areas.
func (s *Screen) ClearResults() {
	s.mu.Lock()
	s.v.Plot = nil
	s.v.Personas = nil
	s.mu.Unlock()
}

// ShowResults replaces the plot and persona areas together.
func (s *Screen) ShowResults(plot render.PlotModel, cards []render.PersonaCard) {
	s.mu.Lock()
	s.v.Plot = &plot
	s.v.Personas = cards
	s.mu.Unlock()
}
