// Package session owns the state of one user session: the selected data
// source, the current file, the column mapper and the screen.
package session

import (
	"sync"

	"github.com/KaramelBytes/custinsights-cli/internal/mapper"
	"github.com/KaramelBytes/custinsights-cli/internal/segment"
	"github.com/KaramelBytes/custinsights-cli/internal/ui"
)

// Session is the single owner of mutable session state.
type Session struct {
	Mapper *mapper.Mapper
	Screen *ui.Screen

	mu      sync.Mutex
	mode    segment.Mode
	file    *segment.UploadedFile
	fileGen uint64
	busy    bool
}

// New starts a session on the built-in dataset.
func New() *Session {
	return &Session{
		Mapper: mapper.New(),
		Screen: ui.NewScreen(),
		mode:   segment.ModeDefault,
	}
}

// Mode returns the selected data source.
func (s *Session) Mode() segment.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches the data source. Going back to the default dataset drops
// the column mapping and invalidates any header discovery still in flight;
// the mapping is not restored when switching to uploaded again.
func (s *Session) SetMode(m segment.Mode) {
	s.mu.Lock()
	s.mode = m
	if m == segment.ModeDefault {
		s.fileGen++
	}
	s.mu.Unlock()

	s.Screen.ShowDataSource(m == segment.ModeDefault)
	if m == segment.ModeDefault {
		s.Mapper.Reset()
		s.Screen.ClearMapping()
	}
}

// SetFile makes f the current file and returns its generation. Header
// responses for older generations are stale.
func (s *Session) SetFile(f segment.UploadedFile) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file = &f
	s.fileGen++
	return s.fileGen
}

// File returns the current file, or nil when none was selected.
func (s *Session) File() *segment.UploadedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file
}

// IsCurrent reports whether gen still identifies the current file.
func (s *Session) IsCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.fileGen
}

// TryBegin marks the session busy. It returns false when a run is already in flight.
func (s *Session) TryBegin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

// End clears the busy flag.
func (s *Session) End() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// Busy reports whether a run is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}
