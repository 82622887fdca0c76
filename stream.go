package graphcap

import (
	"sync"
	"sync/atomic"
)

// Stream represents an ordered sequence of operations that execute
// asynchronously. Operations within a stream execute in order, but
// operations in different streams may execute concurrently.
//
// A stream can additionally be placed into capture mode via
// StreamBeginCapture, during which submitted operations are recorded
// instead of executed. Capture and launch calls against the same stream
// must be sequenced by the caller; the stream performs no ordering of
// its own between them.
type Stream struct {
	id    int
	tasks chan func()
	wg    sync.WaitGroup

	mu        sync.Mutex
	destroyed bool
	capStatus CaptureStatus
	capNodes  []func()
}

var streamID atomic.Int32

// NewStream creates a stream with its own worker goroutine.
// The stream must be released with Destroy when no longer needed.
func NewStream() *Stream {
	s := &Stream{
		id:    int(streamID.Add(1)),
		tasks: make(chan func(), StreamQueueDepth),
	}
	go s.worker()
	if defaultContext != nil {
		defaultContext.register(s)
	}
	return s
}

// worker processes tasks for a stream
func (s *Stream) worker() {
	for task := range s.tasks {
		task()
		s.wg.Done()
	}
}

// Submit adds a task to the stream. While the stream is capturing, the
// task is recorded into the pending capture instead of being executed.
// Submitting to a destroyed stream returns ErrStreamDestroyed; a stream
// whose capture has been invalidated rejects work with
// ErrCaptureInvalidated until StreamEndCapture reports the invalidation.
func (s *Stream) Submit(task func()) error {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return ErrStreamDestroyed
	}
	switch s.capStatus {
	case CaptureStatusActive:
		s.capNodes = append(s.capNodes, task)
		s.mu.Unlock()
		return nil
	case CaptureStatusInvalidated:
		s.mu.Unlock()
		return ErrCaptureInvalidated
	}
	s.wg.Add(1)
	s.mu.Unlock()
	s.tasks <- task
	return nil
}

// Synchronize blocks until all previously submitted tasks have completed.
//
// Synchronizing a stream that is in the middle of a capture is illegal:
// the capture is invalidated, its recorded work is discarded, and the
// sticky error state is set to ErrorStreamCaptureInvalidated. The
// subsequent StreamEndCapture reports the invalidation.
func (s *Stream) Synchronize() {
	s.mu.Lock()
	if s.capStatus == CaptureStatusActive {
		s.invalidateCaptureLocked()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Destroy drains the stream and stops its worker. An active capture is
// invalidated first. Destroy is idempotent.
func (s *Stream) Destroy() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	if s.capStatus == CaptureStatusActive {
		s.invalidateCaptureLocked()
	}
	s.destroyed = true
	s.mu.Unlock()

	s.wg.Wait()
	close(s.tasks)
	defaultContext.unregister(s)
}

// invalidateCaptureLocked breaks an active capture. Caller holds s.mu.
func (s *Stream) invalidateCaptureLocked() {
	s.capStatus = CaptureStatusInvalidated
	s.capNodes = nil
	setLastError(ErrorStreamCaptureInvalidated)
}
