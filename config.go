// Package graphcap configuration constants
package graphcap

// Thread and block dimensions
const (
	// Default block size for kernels
	DefaultBlockSize = 256

	// Maximum threads per block (CUDA compatibility)
	MaxThreadsPerBlock = 1024
)

// Memory pool parameters
const (
	// Memory alignment for allocations (cache line)
	MemoryAlignment = 64

	// Minimum allocation size to prevent fragmentation
	MinAllocationSize = 64
)

// Stream parameters
const (
	// Depth of a stream's pending-task queue
	StreamQueueDepth = 1024
)

// Device parameters
const (
	// Fallback total memory when the platform cannot report it
	defaultSystemMemory = 16 * 1024 * 1024 * 1024
)

// Shape parameters
const (
	// MaxDims is the maximum rank of a Dims shape descriptor
	MaxDims = 8
)
