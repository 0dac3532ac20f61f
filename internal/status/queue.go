// Package status carries user-facing scan progress messages from the core
// to whatever front end the host application runs. Delivery is
// fire-and-forget: the core never consumes a return value.
package status

import (
	"log/slog"
	"sync"
	"time"
)

// Message is one user-facing status line.
type Message struct {
	Text      string        `json:"text"`
	Priority  int           `json:"priority"`
	Duration  time.Duration `json:"duration"`
	Urgent    bool          `json:"urgent"` // replace the currently displayed message
	Timestamp time.Time     `json:"timestamp"`
}

// Handler processes a delivered message.
type Handler func(Message)

// Queue is an in-process message queue backed by a buffered channel.
type Queue struct {
	ch     chan Message
	logger *slog.Logger

	mu      sync.RWMutex
	subs    []Handler
	done    chan struct{}
	stopped bool
}

// NewQueue creates a queue with the given buffer size.
func NewQueue(logger *slog.Logger, bufSize int) *Queue {
	if bufSize <= 0 {
		bufSize = 256
	}
	return &Queue{
		ch:     make(chan Message, bufSize),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Subscribe registers a handler for every delivered message.
func (q *Queue) Subscribe(h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.subs = append(q.subs, h)
}

// Push enqueues a message. Non-blocking; drops with a warning if the
// buffer is full.
func (q *Queue) Push(text string, priority int, duration time.Duration, urgent bool) {
	m := Message{
		Text:      text,
		Priority:  priority,
		Duration:  duration,
		Urgent:    urgent,
		Timestamp: time.Now().UTC(),
	}
	select {
	case q.ch <- m:
	default:
		q.logger.Warn("status queue full, dropping message", "text", text)
	}
}

// Start drains the queue and dispatches messages to subscribers. Call in a
// goroutine; blocks until Stop.
func (q *Queue) Start() {
	for {
		select {
		case m := <-q.ch:
			q.dispatch(m)
		case <-q.done:
			// Deliver whatever is still buffered before returning.
			for {
				select {
				case m := <-q.ch:
					q.dispatch(m)
				default:
					return
				}
			}
		}
	}
}

// Stop signals the queue to stop after draining the buffer.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.stopped {
		q.stopped = true
		close(q.done)
	}
}

func (q *Queue) dispatch(m Message) {
	q.mu.RLock()
	handlers := make([]Handler, len(q.subs))
	copy(handlers, q.subs)
	q.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					q.logger.Error("status handler panicked", "panic", r)
				}
			}()
			h(m)
		}()
	}
}
