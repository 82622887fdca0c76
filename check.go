package graphcap

import (
	"fmt"
	"log/slog"
	"os"
)

// osExit is indirected so the fatal path itself can be exercised in tests.
var osExit = os.Exit

// check terminates the process when a driver call that must not fail does.
// Setup and finalization failures indicate a broken environment, not a
// condition the caller can retry, so they are never surfaced as errors.
func check(st Status, op string) {
	if st != Success {
		slog.Error("runtime failure", "op", op, "status", st.String())
		osExit(1)
	}
}

// assertf terminates the process on a violated invariant.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		slog.Error("assertion failure: " + fmt.Sprintf(format, args...))
		osExit(1)
	}
}
