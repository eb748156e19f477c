// Package extract implements the streaming tag extractor: a small state
// machine fed with XML element events that captures field text while inside
// the container element and yields one capture per closed container.
package extract

import (
	"strings"

	"github.com/dmitrijs2005/camfeed/internal/server/schema"
)

// State of a parse session.
type State int

const (
	// Idle is outside any container.
	Idle State = iota
	// InContainer is inside the container but not inside a field.
	InContainer
	// InField is accumulating text for the current field.
	InField
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InContainer:
		return "in_container"
	case InField:
		return "in_field"
	default:
		return "unknown"
	}
}

// Session is the per-request parse state. It is not safe for concurrent use;
// each request owns its own session.
type Session struct {
	schema *schema.Schema

	state      State
	depth      int // element depth inside the container; the container is 1
	current    string
	fieldDepth int
	buffer     strings.Builder
	captured   map[string]string
}

func NewSession(s *schema.Schema) *Session {
	return &Session{schema: s}
}

func (s *Session) State() State { return s.state }

// CurrentField returns the field accumulating text, if any.
func (s *Session) CurrentField() (string, bool) {
	return s.current, s.state == InField
}

// Open handles a start element.
func (s *Session) Open(name string) {
	switch s.state {
	case Idle:
		if name == s.schema.Container() {
			s.state = InContainer
			s.depth = 1
			s.captured = make(map[string]string)
		}
	case InContainer:
		s.depth++
		if s.depth == 2 {
			if _, ok := s.schema.Lookup(name); ok {
				s.beginField(name)
			}
		}
	case InField:
		s.depth++
		// Last field opened wins: a field nested in another field takes over
		// the buffer.
		if _, ok := s.schema.Lookup(name); ok {
			s.beginField(name)
		}
	}
}

// Text handles character data, including CDATA sections.
func (s *Session) Text(data []byte) {
	if s.state == InField {
		s.buffer.Write(data)
	}
}

// Close handles an end element. When it closes the container, the captured
// values are returned with done=true and the session is reset for reuse.
func (s *Session) Close(name string) (captured map[string]string, done bool) {
	switch s.state {
	case Idle:
		return nil, false
	case InField:
		if s.depth == s.fieldDepth && name == s.current {
			s.captured[s.current] = strings.TrimSpace(s.buffer.String())
			s.endField()
		}
	}

	s.depth--
	if s.depth > 0 {
		return nil, false
	}

	captured = s.captured
	s.Reset()
	return captured, true
}

// Reset returns the session to Idle and drops anything captured.
func (s *Session) Reset() {
	s.state = Idle
	s.depth = 0
	s.endField()
	s.captured = nil
}

func (s *Session) beginField(name string) {
	s.state = InField
	s.current = name
	s.fieldDepth = s.depth
	s.buffer.Reset()
}

func (s *Session) endField() {
	if s.state == InField {
		s.state = InContainer
	}
	s.current = ""
	s.fieldDepth = 0
	s.buffer.Reset()
}
