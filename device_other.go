//go:build !linux

package graphcap

// getSystemMemory returns total system memory in bytes. Without a
// portable way to query it, assume a 16GB machine.
func getSystemMemory() uint64 {
	return defaultSystemMemory
}
