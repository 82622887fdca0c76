// Package graphcap provides a CUDA-style stream-capture and executable-graph
// runtime for CPU execution.
//
// Work is submitted to streams: ordered queues of operations that execute
// asynchronously on worker goroutines. A stream can be placed into capture
// mode, during which submitted operations are recorded instead of executed.
// Ending the capture yields a Graph, which is instantiated into an ExecGraph
// that can be launched any number of times without re-recording.
//
// The CapturedGraph type wraps this record-once, instantiate-once,
// launch-many lifecycle with strict resource-cleanliness guarantees,
// including a dedicated teardown path for captures that fail mid-flight.
//
// Example usage:
//
//	s := graphcap.NewStream()
//	defer s.Destroy()
//
//	var cg graphcap.CapturedGraph
//	defer cg.Free()
//
//	cg.BeginCapture(s)
//	graphcap.LaunchStream(kernel, grid, block, s) // recorded, not executed
//	cg.EndCapture(s)
//
//	for i := 0; i < iterations; i++ {
//		if !cg.Launch(s) {
//			break
//		}
//	}
//	s.Synchronize()
package graphcap
