// Package handler provides a single execution context: closures posted to a
// Handler run one at a time, in posting order, on one goroutine.
package handler

import (
	"sync"

	"go.uber.org/zap"
)

type Handler struct {
	log *zap.Logger

	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	closed bool
	done   chan struct{}
}

func New(logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.L()
	}
	h := &Handler{
		log:  logger.Named("handler"),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go h.loop()
	return h
}

// Post queues fn without blocking. It returns false once the handler is
// closed.
func (h *Handler) Post(fn func()) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.queue = append(h.queue, fn)
	h.mu.Unlock()
	select {
	case h.wake <- struct{}{}:
	default:
	}
	return true
}

// Call posts fn and waits for it to run. It must not be called from a
// closure running on h.
func (h *Handler) Call(fn func()) bool {
	ran := make(chan struct{})
	if !h.Post(func() {
		defer close(ran)
		fn()
	}) {
		return false
	}
	<-ran
	return true
}

// Close runs the closures already queued, stops the loop and waits for it.
func (h *Handler) Close() {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		select {
		case h.wake <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
	<-h.done
	h.log.Debug("handler stopped")
}

func (h *Handler) loop() {
	defer close(h.done)
	for {
		h.mu.Lock()
		queue, closed := h.queue, h.closed
		h.queue = nil
		h.mu.Unlock()

		for _, fn := range queue {
			fn()
		}
		if len(queue) > 0 {
			continue
		}
		if closed {
			return
		}
		<-h.wake
	}
}
