package graphcap

import "sync/atomic"

// Status is the result code returned by the driver-level operations.
// It mirrors the flat status-code convention of hardware runtime APIs:
// Success is zero, everything else names a failure class.
type Status int32

const (
	// Success indicates the operation completed normally.
	Success Status = iota

	// ErrorInvalidValue indicates a nil or out-of-range argument,
	// including launching an ExecGraph that was never instantiated.
	ErrorInvalidValue

	// ErrorInvalidHandle indicates an operation on a handle that has
	// already been destroyed.
	ErrorInvalidHandle

	// ErrorIllegalState indicates an operation that is not legal in the
	// stream's current state, such as ending a capture that was never
	// begun or beginning one that is already active.
	ErrorIllegalState

	// ErrorStreamCaptureUnsupported indicates a capture mode other than
	// CaptureModeGlobal was requested.
	ErrorStreamCaptureUnsupported

	// ErrorStreamCaptureInvalidated indicates the capture sequence was
	// invalidated before it could be finalized; the recorded work is
	// discarded and no graph is produced.
	ErrorStreamCaptureInvalidated

	// ErrorLaunchFailure indicates a submission could not be enqueued,
	// for example because the target stream has been destroyed.
	ErrorLaunchFailure
)

// String returns the canonical name of the status code.
func (s Status) String() string {
	switch s {
	case Success:
		return "Success"
	case ErrorInvalidValue:
		return "ErrorInvalidValue"
	case ErrorInvalidHandle:
		return "ErrorInvalidHandle"
	case ErrorIllegalState:
		return "ErrorIllegalState"
	case ErrorStreamCaptureUnsupported:
		return "ErrorStreamCaptureUnsupported"
	case ErrorStreamCaptureInvalidated:
		return "ErrorStreamCaptureInvalidated"
	case ErrorLaunchFailure:
		return "ErrorLaunchFailure"
	default:
		return "ErrorUnknown"
	}
}

// CaptureMode selects how strict a stream capture is about work reaching
// the stream from other parts of the process. Only the global mode is
// implemented: it is the only mode that guarantees a deterministic,
// reproducible graph.
type CaptureMode int32

const (
	// CaptureModeGlobal is the exclusive capture mode: every operation
	// submitted to the stream during the capture window is recorded.
	CaptureModeGlobal CaptureMode = iota

	// CaptureModeThreadLocal and CaptureModeRelaxed exist for API
	// compatibility. Requesting either yields ErrorStreamCaptureUnsupported.
	CaptureModeThreadLocal
	CaptureModeRelaxed
)

// CaptureStatus reports whether a stream is currently recording.
type CaptureStatus int32

const (
	// CaptureStatusNone means the stream is not capturing.
	CaptureStatusNone CaptureStatus = iota

	// CaptureStatusActive means submitted work is being recorded.
	CaptureStatusActive

	// CaptureStatusInvalidated means an active capture was broken by an
	// illegal operation; StreamEndCapture will report the invalidation
	// and return no graph.
	CaptureStatusInvalidated
)

// String returns the canonical name of the capture status.
func (c CaptureStatus) String() string {
	switch c {
	case CaptureStatusNone:
		return "None"
	case CaptureStatusActive:
		return "Active"
	case CaptureStatusInvalidated:
		return "Invalidated"
	default:
		return "Unknown"
	}
}

// lastError is the context-wide sticky error slot. Every driver operation
// that fails records its status here; it stays set until collected.
var lastError atomic.Int32

func setLastError(s Status) {
	if s != Success {
		lastError.Store(int32(s))
	}
}

// GetLastError returns the status of the most recent failed driver
// operation and resets the sticky error state to Success. A caller that
// wants to discard a stale error calls this and ignores the result.
func GetLastError() Status {
	return Status(lastError.Swap(int32(Success)))
}

// PeekLastError returns the sticky error state without clearing it.
func PeekLastError() Status {
	return Status(lastError.Load())
}
