package graphcap

import "sync/atomic"

// Graph is an opaque descriptor for a recorded sequence of stream
// operations. It is produced by StreamEndCapture and consumed by
// GraphInstantiate; it is not launchable itself.
type Graph struct {
	nodes     []func()
	destroyed bool
}

// ExecGraph is the instantiated, launchable form of a Graph. Once built
// it is independent of the Graph it came from and of the stream it was
// recorded on: it can be launched on any stream, any number of times.
type ExecGraph struct {
	nodes     []func()
	destroyed bool
}

// Live-handle accounting. Destroy paths decrement exactly once; the
// counters back the double-free guarantees in the tests.
var (
	liveGraphs atomic.Int64
	liveExecs  atomic.Int64
)

// LiveGraphCount returns the number of Graph handles not yet destroyed.
func LiveGraphCount() int64 { return liveGraphs.Load() }

// LiveExecCount returns the number of ExecGraph handles not yet destroyed.
func LiveExecCount() int64 { return liveExecs.Load() }

// StreamBeginCapture places the stream into capture mode. Subsequent
// submissions to the stream are recorded rather than executed, until
// StreamEndCapture is called.
//
// Only CaptureModeGlobal is supported; it is the only mode that yields a
// deterministic, reproducible graph. Any other mode is rejected with
// ErrorStreamCaptureUnsupported.
func StreamBeginCapture(s *Stream, mode CaptureMode) Status {
	if s == nil {
		setLastError(ErrorInvalidValue)
		return ErrorInvalidValue
	}
	if mode != CaptureModeGlobal {
		setLastError(ErrorStreamCaptureUnsupported)
		return ErrorStreamCaptureUnsupported
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || s.capStatus != CaptureStatusNone {
		setLastError(ErrorIllegalState)
		return ErrorIllegalState
	}
	s.capStatus = CaptureStatusActive
	s.capNodes = nil
	return Success
}

// StreamEndCapture finalizes an active capture and returns the recorded
// Graph. If the capture was invalidated, it returns a nil Graph and
// ErrorStreamCaptureInvalidated, and the stream leaves capture mode.
// Ending a capture that was never begun returns ErrorIllegalState.
func StreamEndCapture(s *Stream) (*Graph, Status) {
	if s == nil {
		setLastError(ErrorInvalidValue)
		return nil, ErrorInvalidValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.capStatus {
	case CaptureStatusActive:
		g := &Graph{nodes: s.capNodes}
		s.capNodes = nil
		s.capStatus = CaptureStatusNone
		liveGraphs.Add(1)
		return g, Success
	case CaptureStatusInvalidated:
		s.capStatus = CaptureStatusNone
		setLastError(ErrorStreamCaptureInvalidated)
		return nil, ErrorStreamCaptureInvalidated
	default:
		setLastError(ErrorIllegalState)
		return nil, ErrorIllegalState
	}
}

// StreamCaptureStatus reports whether the stream is currently capturing.
func StreamCaptureStatus(s *Stream) (CaptureStatus, Status) {
	if s == nil {
		setLastError(ErrorInvalidValue)
		return CaptureStatusNone, ErrorInvalidValue
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capStatus, Success
}

// GraphInstantiate compiles a Graph into a launchable ExecGraph. The
// Graph remains valid afterwards and must still be destroyed by the
// caller.
func GraphInstantiate(g *Graph) (*ExecGraph, Status) {
	if g == nil || g.destroyed {
		setLastError(ErrorInvalidValue)
		return nil, ErrorInvalidValue
	}
	e := &ExecGraph{nodes: g.nodes}
	liveExecs.Add(1)
	return e, Success
}

// GraphDestroy releases a Graph descriptor. Destroying a handle twice
// returns ErrorInvalidHandle.
func GraphDestroy(g *Graph) Status {
	if g == nil {
		setLastError(ErrorInvalidValue)
		return ErrorInvalidValue
	}
	if g.destroyed {
		setLastError(ErrorInvalidHandle)
		return ErrorInvalidHandle
	}
	g.destroyed = true
	g.nodes = nil
	liveGraphs.Add(-1)
	return Success
}

// GraphExecDestroy releases an instantiated ExecGraph. Destroying a
// handle twice returns ErrorInvalidHandle.
func GraphExecDestroy(e *ExecGraph) Status {
	if e == nil {
		setLastError(ErrorInvalidValue)
		return ErrorInvalidValue
	}
	if e.destroyed {
		setLastError(ErrorInvalidHandle)
		return ErrorInvalidHandle
	}
	e.destroyed = true
	e.nodes = nil
	liveExecs.Add(-1)
	return Success
}

// GraphLaunch enqueues one replay of the ExecGraph's recorded work on
// the stream. The call returns once the submission is enqueued, not once
// the work completes; completion ordering is governed by the stream.
func GraphLaunch(e *ExecGraph, s *Stream) Status {
	if e == nil || e.destroyed || s == nil {
		setLastError(ErrorInvalidValue)
		return ErrorInvalidValue
	}
	nodes := e.nodes
	err := s.Submit(func() {
		for _, node := range nodes {
			node()
		}
	})
	if err != nil {
		setLastError(ErrorLaunchFailure)
		return ErrorLaunchFailure
	}
	return Success
}
