package graphcap

import (
	"sync/atomic"
	"testing"
)

// stubExit replaces the fatal-path exit with a panic so tests can assert
// that (or that no) invariant violation occurred.
func stubExit(t *testing.T) *int {
	t.Helper()
	calls := new(int)
	prev := osExit
	osExit = func(code int) {
		*calls++
		panic("fatal exit")
	}
	t.Cleanup(func() { osExit = prev })
	return calls
}

// Empty capture: begin immediately followed by end must still yield a
// launchable handle and no leftover descriptor.
func TestEmptyCaptureIsLaunchable(t *testing.T) {
	s := NewStream()
	defer s.Destroy()

	var cg CapturedGraph
	defer cg.Free()

	cg.BeginCapture(s)
	cg.EndCapture(s)

	if cg.exec == nil {
		t.Fatal("expected a launchable exec graph after EndCapture")
	}
	if cg.graph != nil {
		t.Fatal("expected the graph descriptor to be released after EndCapture")
	}
	if !cg.Launch(s) {
		t.Fatal("launch of an empty captured graph failed")
	}
	s.Synchronize()
}

// A capture records submitted work instead of executing it; the work
// runs only when the instantiated graph is launched, once per launch.
func TestCaptureRecordsWithoutExecuting(t *testing.T) {
	s := NewStream()
	defer s.Destroy()

	var runs atomic.Int64
	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		runs.Add(1)
	})
	grid := Dim3{X: 4, Y: 1, Z: 1}
	block := Dim3{X: 8, Y: 1, Z: 1}

	var cg CapturedGraph
	defer cg.Free()

	cg.BeginCapture(s)
	if err := LaunchStream(kernel, grid, block, s); err != nil {
		t.Fatalf("launch during capture failed: %v", err)
	}
	cg.EndCapture(s)

	if got := runs.Load(); got != 0 {
		t.Fatalf("captured kernel executed %d threads before any launch", got)
	}

	const launches = 5
	for i := 0; i < launches; i++ {
		if !cg.Launch(s) {
			t.Fatalf("launch %d failed", i)
		}
	}
	s.Synchronize()

	want := int64(launches * grid.Size() * block.Size())
	if got := runs.Load(); got != want {
		t.Fatalf("expected %d thread executions after %d launches, got %d", want, launches, got)
	}
}

// Invalidated capture: EndCaptureOnError must observe a nil descriptor,
// never instantiate, and clear the sticky error state.
func TestEndCaptureOnErrorAfterInvalidation(t *testing.T) {
	stubExit(t)

	s := NewStream()
	defer s.Destroy()

	var cg CapturedGraph
	cg.BeginCapture(s)

	// Synchronizing a capturing stream is the invalidation signature.
	s.Synchronize()

	if st := PeekLastError(); st != ErrorStreamCaptureInvalidated {
		t.Fatalf("expected sticky ErrorStreamCaptureInvalidated, got %s", st)
	}

	cg.EndCaptureOnError(s)

	if cg.graph != nil {
		t.Fatal("descriptor must be nil after an invalidated capture")
	}
	if cg.exec != nil {
		t.Fatal("EndCaptureOnError must never instantiate an exec graph")
	}
	if st := PeekLastError(); st != Success {
		t.Fatalf("sticky error state not cleared, got %s", st)
	}
}

// Caller-detected failure with a clean end-capture: the descriptor is
// present, must be destroyed and cleared, and nothing leaks.
func TestEndCaptureOnErrorDestroysDescriptor(t *testing.T) {
	stubExit(t)

	s := NewStream()
	defer s.Destroy()

	graphsBefore := LiveGraphCount()
	execsBefore := LiveExecCount()

	var cg CapturedGraph
	cg.BeginCapture(s)
	if err := LaunchStream(KernelFunc(func(tid ThreadID, args ...interface{}) {}),
		Dim3{X: 1, Y: 1, Z: 1}, Dim3{X: 1, Y: 1, Z: 1}, s); err != nil {
		t.Fatalf("launch during capture failed: %v", err)
	}
	cg.EndCaptureOnError(s)

	if cg.graph != nil {
		t.Fatal("descriptor must be destroyed and cleared")
	}
	if cg.exec != nil {
		t.Fatal("EndCaptureOnError must never instantiate an exec graph")
	}
	if got := LiveGraphCount(); got != graphsBefore {
		t.Fatalf("graph descriptor leaked: live count %d, want %d", got, graphsBefore)
	}
	if got := LiveExecCount(); got != execsBefore {
		t.Fatalf("exec graph leaked: live count %d, want %d", got, execsBefore)
	}
	if st := PeekLastError(); st != Success {
		t.Fatalf("sticky error state not cleared, got %s", st)
	}
}

// Launch is the sole recoverable operation: a failed submission reports
// false and never terminates the process.
func TestLaunchFailureIsRecoverable(t *testing.T) {
	calls := stubExit(t)

	s := NewStream()

	// Never captured: the empty handle fails submission.
	var empty CapturedGraph
	if empty.Launch(s) {
		t.Fatal("launch of an empty captured graph reported success")
	}

	var cg CapturedGraph
	defer cg.Free()
	cg.BeginCapture(s)
	cg.EndCapture(s)

	// Destroyed stream: the submission itself fails.
	s.Destroy()
	if cg.Launch(s) {
		t.Fatal("launch on a destroyed stream reported success")
	}

	if *calls != 0 {
		t.Fatalf("launch failure took the fatal path %d times", *calls)
	}
	GetLastError()
}

// The exec graph is released exactly once, and Free is idempotent.
func TestFreeReleasesExecExactlyOnce(t *testing.T) {
	stubExit(t)

	s := NewStream()
	defer s.Destroy()

	execsBefore := LiveExecCount()

	var cg CapturedGraph
	cg.BeginCapture(s)
	cg.EndCapture(s)

	if got := LiveExecCount(); got != execsBefore+1 {
		t.Fatalf("expected one live exec graph, counter at %d (base %d)", got, execsBefore)
	}

	cg.Free()
	if got := LiveExecCount(); got != execsBefore {
		t.Fatalf("exec graph not released: counter at %d, want %d", got, execsBefore)
	}

	// Second Free must not double-destroy.
	cg.Free()
	if got := LiveExecCount(); got != execsBefore {
		t.Fatalf("double release: counter at %d, want %d", got, execsBefore)
	}
}

// Re-capture on the same object is an invariant violation, not an error.
func TestRecaptureAborts(t *testing.T) {
	calls := stubExit(t)

	s := NewStream()
	defer s.Destroy()

	var cg CapturedGraph
	defer cg.Free()
	cg.BeginCapture(s)
	cg.EndCapture(s)

	cg.BeginCapture(s)
	func() {
		defer func() { recover() }()
		cg.EndCapture(s)
	}()

	if *calls == 0 {
		t.Fatal("re-capture did not take the fatal path")
	}

	// Leave the stream out of capture mode for the remaining tests.
	if g, st := StreamEndCapture(s); st == Success {
		GraphDestroy(g)
	}
	GetLastError()
}

// Independent objects on independent streams complete their lifecycles
// concurrently without sharing state.
func TestConcurrentIndependentCaptures(t *testing.T) {
	const workers = 4
	const n = 1 << 12
	const launches = 8

	results := make(chan error, workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			results <- func() error {
				s := NewStream()
				defer s.Destroy()

				d, err := Malloc(n * 4)
				if err != nil {
					return err
				}
				defer Free(d)
				data := d.Float32()

				kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
					idx := tid.Global()
					if idx < n {
						data[idx] += float32(w + 1)
					}
				})

				var cg CapturedGraph
				defer cg.Free()

				cg.BeginCapture(s)
				if err := LaunchStream(kernel, Dim3{X: (n + 255) / 256, Y: 1, Z: 1},
					Dim3{X: 256, Y: 1, Z: 1}, s); err != nil {
					return err
				}
				cg.EndCapture(s)

				for i := 0; i < launches; i++ {
					if !cg.Launch(s) {
						return NewExecutionError("test", "replay launch failed", nil)
					}
				}
				s.Synchronize()

				want := float32((w + 1) * launches)
				for i := 0; i < n; i++ {
					if data[i] != want {
						return NewExecutionError("test", "replay produced wrong data", nil)
					}
				}
				return nil
			}()
		}(w)
	}

	for w := 0; w < workers; w++ {
		if err := <-results; err != nil {
			t.Fatal(err)
		}
	}
}
