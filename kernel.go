package graphcap

import (
	"fmt"
	"runtime"
	"sync"
)

// Dim3 represents 3D dimensions for grid and block configurations,
// matching the dim3 structure of CUDA kernel launch parameters.
type Dim3 struct {
	X, Y, Z int
}

// Size returns the total number of elements
func (d Dim3) Size() int {
	return d.X * d.Y * d.Z
}

// ThreadID identifies a thread's position within the execution
// hierarchy, with the same indexing semantics as CUDA's built-in
// blockIdx, threadIdx, blockDim and gridDim variables.
type ThreadID struct {
	BlockIdx  Dim3 // Block index within the grid
	ThreadIdx Dim3 // Thread index within the block
	BlockDim  Dim3 // Dimensions of the block
	GridDim   Dim3 // Dimensions of the grid
}

// Global returns the global linear thread index along X.
func (tid ThreadID) Global() int {
	return tid.BlockIdx.X*tid.BlockDim.X + tid.ThreadIdx.X
}

// GlobalY returns the global Y index
func (tid ThreadID) GlobalY() int {
	return tid.BlockIdx.Y*tid.BlockDim.Y + tid.ThreadIdx.Y
}

// GlobalZ returns the global Z index
func (tid ThreadID) GlobalZ() int {
	return tid.BlockIdx.Z*tid.BlockDim.Z + tid.ThreadIdx.Z
}

// Kernel represents a compute kernel that can be executed in parallel.
// Implementations must be thread-safe: Execute is called concurrently
// from multiple worker goroutines, and again on every graph replay.
type Kernel interface {
	Execute(tid ThreadID, args ...interface{})
}

// KernelFunc is a function that can be launched as a kernel.
type KernelFunc func(tid ThreadID, args ...interface{})

// Execute implements Kernel.
func (fn KernelFunc) Execute(tid ThreadID, args ...interface{}) {
	fn(tid, args...)
}

// Launch executes a kernel on the default stream.
func Launch(kernel Kernel, grid, block Dim3, args ...interface{}) error {
	return LaunchStream(kernel, grid, block, defaultContext.defaultStream, args...)
}

// LaunchFunc executes a kernel function on the default stream.
func LaunchFunc(fn KernelFunc, grid, block Dim3, args ...interface{}) error {
	return LaunchStream(fn, grid, block, defaultContext.defaultStream, args...)
}

// LaunchStream executes a kernel on a specific stream. If the stream is
// capturing, the launch is recorded into the pending capture instead of
// being executed.
func LaunchStream(kernel Kernel, grid, block Dim3, stream *Stream, args ...interface{}) error {
	blockSize := block.Size()
	if blockSize > MaxThreadsPerBlock {
		return NewInvalidArgError("Launch",
			fmt.Sprintf("block size %d exceeds maximum %d", blockSize, MaxThreadsPerBlock))
	}

	gridSize := grid.Size()
	if gridSize == 0 {
		// Preserve stream ordering even for an empty launch.
		return stream.Submit(func() {})
	}

	task := func() {
		runGrid(kernel.Execute, grid, block, args...)
	}
	if err := stream.Submit(task); err != nil {
		return NewExecutionError("Launch", "stream submission failed", err)
	}
	return nil
}

// runGrid executes every thread of the grid, spreading blocks across
// CPU workers. Threads within a block run sequentially on one worker to
// keep their memory traffic cache-local.
func runGrid(kernelFunc func(ThreadID, ...interface{}), grid, block Dim3, args ...interface{}) {
	gridSize := grid.Size()
	blockSize := block.Size()

	workers := runtime.NumCPU()
	if gridSize < workers {
		workers = gridSize
	}
	blocksPerWorker := (gridSize + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		start := w * blocksPerWorker
		end := start + blocksPerWorker
		if end > gridSize {
			end = gridSize
		}
		go func(start, end int) {
			defer wg.Done()
			for blockID := start; blockID < end; blockID++ {
				blockIdx := linearTo3D(blockID, grid)
				for threadID := 0; threadID < blockSize; threadID++ {
					tid := ThreadID{
						BlockIdx:  blockIdx,
						ThreadIdx: linearTo3D(threadID, block),
						BlockDim:  block,
						GridDim:   grid,
					}
					kernelFunc(tid, args...)
				}
			}
		}(start, end)
	}
	wg.Wait()
}

// linearTo3D converts a linear index to 3D coordinates
func linearTo3D(linear int, dim Dim3) Dim3 {
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}
