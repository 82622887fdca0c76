package graphcap

import (
	"errors"
	"testing"
)

func TestStructuredErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantOp   string
		wantMsg  string
		checkFn  func(error) bool
	}{
		{
			name:     "Memory Error",
			err:      ErrOutOfMemory,
			wantType: ErrTypeMemory,
			wantOp:   "Malloc",
			wantMsg:  "out of memory",
			checkFn:  IsMemoryError,
		},
		{
			name:     "Double Free Error",
			err:      ErrDoubleFree,
			wantType: ErrTypeMemory,
			wantOp:   "Free",
			wantMsg:  "double free detected",
			checkFn:  IsMemoryError,
		},
		{
			name:     "Invalid Arg Error",
			err:      ErrInvalidSize,
			wantType: ErrTypeInvalidArg,
			wantOp:   "Malloc",
			wantMsg:  "size must be positive",
			checkFn:  IsInvalidArgError,
		},
		{
			name:     "Stream Destroyed Error",
			err:      ErrStreamDestroyed,
			wantType: ErrTypeExecution,
			wantOp:   "Submit",
			wantMsg:  "stream has been destroyed",
			checkFn:  func(err error) bool { return !IsCaptureError(err) },
		},
		{
			name:     "Capture Invalidated Error",
			err:      ErrCaptureInvalidated,
			wantType: ErrTypeCapture,
			wantOp:   "Submit",
			wantMsg:  "stream capture was invalidated",
			checkFn:  IsCaptureError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rtErr, ok := tt.err.(*RuntimeError)
			if !ok {
				t.Fatalf("Expected RuntimeError, got %T", tt.err)
			}

			if rtErr.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", rtErr.Type, tt.wantType)
			}
			if rtErr.Op != tt.wantOp {
				t.Errorf("Op = %v, want %v", rtErr.Op, tt.wantOp)
			}
			if rtErr.Message != tt.wantMsg {
				t.Errorf("Message = %v, want %v", rtErr.Message, tt.wantMsg)
			}
			if !tt.checkFn(tt.err) {
				t.Errorf("Type check function returned false")
			}
			if tt.err.Error() == "" {
				t.Error("Error string is empty")
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	baseErr := errors.New("base error")
	wrappedErr := NewMemoryError("Test", "wrapped error", baseErr)

	rtErr, ok := wrappedErr.(*RuntimeError)
	if !ok {
		t.Fatal("Expected RuntimeError")
	}

	if unwrapped := rtErr.Unwrap(); unwrapped != baseErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, baseErr)
	}
	if !errors.Is(wrappedErr, baseErr) {
		t.Error("errors.Is() should return true for wrapped error")
	}

	// The wrapped cause appears in the message.
	if got := wrappedErr.Error(); got == "" {
		t.Error("Error string is empty")
	}
}

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    string
	}{
		{ErrTypeMemory, "Memory"},
		{ErrTypeInvalidArg, "InvalidArgument"},
		{ErrTypeExecution, "Execution"},
		{ErrTypeCapture, "Capture"},
		{ErrTypeDevice, "Device"},
		{ErrorType(999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.errType.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCaptureErrorHelpers(t *testing.T) {
	err := NewCaptureError("EndCapture", "capture was broken")
	if !IsCaptureError(err) {
		t.Error("IsCaptureError() = false for a capture error")
	}
	if IsCaptureError(ErrStreamDestroyed) {
		t.Error("IsCaptureError() = true for an execution error")
	}
	if IsCaptureError(errors.New("plain")) {
		t.Error("IsCaptureError() = true for a plain error")
	}
	if IsMemoryError(err) {
		t.Error("IsMemoryError() = true for a capture error")
	}
}
