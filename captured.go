package graphcap

import "log/slog"

// noCopy flags accidental copies to go vet. CapturedGraph owns opaque
// handles whose ownership must not be duplicated.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// CapturedGraph manages the record-once, instantiate-once, launch-many
// lifecycle of a batch of operations submitted to a stream.
//
// The zero value is ready to use. A CapturedGraph must not be copied:
// it is the sole owner of its graph and exec-graph handles, and two
// owners would double-destroy them.
//
// Every failure on the begin/end path terminates the process: a capture
// that cannot be set up or finalized indicates a broken environment, not
// a condition the caller can retry. Launch is the one recoverable
// operation; it reports submission failure as a boolean so the caller
// can implement its own retry policy.
type CapturedGraph struct {
	noCopy noCopy

	graph *Graph
	exec  *ExecGraph
}

// BeginCapture starts recording of subsequently submitted operations on
// the stream. The stream must not already be capturing.
//
// Only the global capture mode is used; modes that permit concurrent,
// non-deterministic capture interleaving are deliberately excluded.
func (cg *CapturedGraph) BeginCapture(s *Stream) {
	check(StreamBeginCapture(s, CaptureModeGlobal), "begin stream capture")
}

// EndCapture finalizes the recording on the stream, instantiates it into
// a launchable exec graph, and releases the intermediate descriptor.
// On return the CapturedGraph is launchable and holds no descriptor.
//
// A CapturedGraph records at most once; re-capture requires a new object.
func (cg *CapturedGraph) EndCapture(s *Stream) {
	assertf(cg.exec == nil, "exec graph already instantiated; re-capture is not supported")

	var st Status
	cg.graph, st = StreamEndCapture(s)
	check(st, "end stream capture")
	cg.exec, st = GraphInstantiate(cg.graph)
	check(st, "instantiate captured graph")
	check(GraphDestroy(cg.graph), "destroy graph descriptor")
	cg.graph = nil
}

// EndCaptureOnError tears down a capture whose recorded work is already
// known to have failed, so finalizing it normally would be unsafe.
//
// There are two ways a capture ends up here:
// (1) the stream is in the invalidated capture state, in which case the
// returned descriptor must be nil;
// (2) the capture itself ended cleanly but the caller observed a failure,
// in which case the descriptor is present, unusable, and destroyed.
// Any other combination is an invariant violation and aborts.
//
// Either way the sticky error state is cleared so an unrelated later
// call does not observe it, and the failure is logged. No instantiation
// occurs; a previously instantiated exec graph is left untouched.
func (cg *CapturedGraph) EndCaptureOnError(s *Stream) {
	var st Status
	cg.graph, st = StreamEndCapture(s)
	if st == ErrorStreamCaptureInvalidated {
		assertf(cg.graph == nil, "invalidated capture produced a graph descriptor")
	} else {
		assertf(st == Success, "ending a failed capture reported %s", st)
		assertf(cg.graph != nil, "capture ended cleanly but produced no graph descriptor")
		check(GraphDestroy(cg.graph), "destroy graph descriptor")
		cg.graph = nil
	}
	// Clean up any sticky error left by the failed capture.
	GetLastError()
	slog.Error("the stream capture has failed; recorded work was discarded")
}

// Launch enqueues one replay of the captured work on the stream and
// reports whether the submission succeeded. It must only be called after
// a successful EndCapture. Completion of the replayed work is governed
// by the stream, not by this call.
func (cg *CapturedGraph) Launch(s *Stream) bool {
	return GraphLaunch(cg.exec, s) == Success
}

// Free releases the exec graph if one was instantiated. The descriptor
// is nil on every reachable path, but is released too if a future code
// path leaves one behind. Free is idempotent.
func (cg *CapturedGraph) Free() {
	if cg.exec != nil {
		check(GraphExecDestroy(cg.exec), "destroy exec graph")
		cg.exec = nil
	}
	if cg.graph != nil {
		check(GraphDestroy(cg.graph), "destroy graph descriptor")
		cg.graph = nil
	}
}
