// Package runner drives scan sessions cooperatively: one session step per
// rate-limiter token, so scanning shares the process with other work
// without a dedicated busy loop. It also offers a watch mode that re-scans
// when the content root changes.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/hello7893/romdex/internal/scan"
)

// ErrSessionUnusable is returned when a session reports the Error outcome.
var ErrSessionUnusable = errors.New("runner: scan session is unusable")

// SessionFactory builds a fresh scan session. Called once per scan run.
type SessionFactory func(ctx context.Context) (*scan.Session, error)

// Runner paces scan sessions produced by a factory.
type Runner struct {
	newSession SessionFactory
	limiter    *rate.Limiter
	logger     *slog.Logger
	debounce   time.Duration

	mu      sync.Mutex
	current *scan.Session
}

// New creates a runner. stepsPerSecond limits how fast Step is called;
// zero or negative means unpaced.
func New(newSession SessionFactory, stepsPerSecond float64, logger *slog.Logger) *Runner {
	limit := rate.Inf
	if stepsPerSecond > 0 {
		limit = rate.Limit(stepsPerSecond)
	}
	return &Runner{
		newSession: newSession,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger.With("component", "runner"),
		debounce:   time.Second,
	}
}

// SetDebounce overrides the watch-mode debounce interval (for testing).
func (r *Runner) SetDebounce(d time.Duration) {
	r.debounce = d
}

// Progress returns a snapshot of the current or most recent session, or
// nil when no scan has run yet.
func (r *Runner) Progress() *scan.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	p := r.current.Progress()
	return &p
}

// RunOnce drives a fresh session to completion. Cancellation is
// cooperative: the context is checked between steps, never mid-file.
func (r *Runner) RunOnce(ctx context.Context) (*scan.Session, error) {
	sess, err := r.newSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating scan session: %w", err)
	}
	r.mu.Lock()
	r.current = sess
	r.mu.Unlock()

	r.logger.Info("scan starting", "session", sess.ID(), "files", sess.Progress().Total)
	for {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("scan canceled: %w", err)
		}
		switch sess.Step() {
		case scan.Continue:
		case scan.Finished:
			return sess, nil
		case scan.Error:
			return nil, ErrSessionUnusable
		}
	}
}

// Watch blocks until ctx is canceled, re-running a scan whenever entries
// are created, removed, or renamed under root. Bursts of filesystem events
// coalesce into a single scan per debounce window.
func (r *Runner) Watch(ctx context.Context, root string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating filesystem watcher: %w", err)
	}
	defer w.Close() //nolint:errcheck

	if err := w.Add(root); err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}
	r.logger.Info("watching content root", "path", root)

	// Debounce timer starts stopped; reset on each relevant event.
	debounceTimer := time.NewTimer(r.debounce)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	scanPending := false

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("watcher stopping")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
				continue
			}
			r.logger.Debug("content root changed", "path", ev.Name, "op", ev.Op.String())
			if !debounceTimer.Stop() {
				select {
				case <-debounceTimer.C:
				default:
				}
			}
			debounceTimer.Reset(r.debounce)
			scanPending = true

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("filesystem watcher error", "error", err)

		case <-debounceTimer.C:
			if !scanPending {
				continue
			}
			scanPending = false
			if _, err := r.RunOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				r.logger.Error("watch-triggered scan failed", "error", err)
			}
		}
	}
}
