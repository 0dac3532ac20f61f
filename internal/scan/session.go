// Package scan implements the incremental content-directory scanner: a
// session holding a fixed list of candidate paths and a cursor that
// advances by exactly one file per Step call, so a long scan never blocks
// its caller for more than the cost of one file.
package scan

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hello7893/romdex/internal/status"
)

// Session is one scan over a content directory. The path list is fixed at
// creation; the cursor index only moves forward.
type Session struct {
	id     string
	task   Task
	paths  []string
	ident  ContentIdentifier
	msgs   *status.Queue
	logger *slog.Logger

	mu     sync.Mutex
	pos    int
	status Status
}

// NewSession enumerates candidate files under root (filtered by exts) and
// returns a session positioned at the first one.
func NewSession(root string, exts []string, task Task, ident ContentIdentifier, msgs *status.Queue, logger *slog.Logger) (*Session, error) {
	paths, err := ListContent(root, exts)
	if err != nil {
		return nil, fmt.Errorf("listing content files: %w", err)
	}
	return NewSessionFromPaths(paths, task, ident, msgs, logger), nil
}

// NewSessionFromPaths builds a session over an already-enumerated path
// list. The list is used as-is, in order.
func NewSessionFromPaths(paths []string, task Task, ident ContentIdentifier, msgs *status.Queue, logger *slog.Logger) *Session {
	if paths == nil {
		paths = []string{}
	}
	id := uuid.New().String()
	return &Session{
		id:     id,
		task:   task,
		paths:  paths,
		ident:  ident,
		msgs:   msgs,
		logger: logger.With("component", "scan", "session", id),
	}
}

// ID returns the session identity.
func (s *Session) ID() string { return s.id }

// Progress returns a snapshot of the session state.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Progress{
		ID:      s.id,
		Scanned: s.pos,
		Total:   len(s.paths),
		Done:    s.status == StatusDone,
	}
}

// Step advances the scan by at most one file. Callers invoke it repeatedly
// (typically once per scheduling tick) until it reports Finished or Error.
//
// A nil session or path list is Error. An empty path entry is a defensive
// no-op: Continue without advancing. Identifier failures never abort the
// scan; the cursor advances regardless.
func (s *Session) Step() Outcome {
	if s == nil || s.paths == nil {
		return Error
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos >= len(s.paths) {
		if s.status != StatusDone {
			s.status = StatusDone
			s.msgs.Push("Scanning of directory finished.", 1, 3*time.Second, true)
			s.logger.Info("scan finished", "scanned", s.pos)
		}
		return Finished
	}

	path := s.paths[s.pos]
	if path == "" {
		return Continue
	}

	switch s.task {
	case TaskNone:
		// Nothing to do for this path.
	case TaskBuildCatalog:
		s.msgs.Push(fmt.Sprintf("%d/%d: Scanning %s...", s.pos+1, len(s.paths), path), 1, 3*time.Second, true)
		s.ident.Identify(path)
	}

	s.pos++
	return Continue
}
