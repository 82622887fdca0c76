package graphcap

import (
	"sync"
)

// Context represents an execution context: the device, its memory pool,
// and the set of live streams. A default context is created at package
// init; the package-level functions operate on it.
type Context struct {
	device *Device

	mu      sync.Mutex
	streams map[int]*Stream

	memory        *MemoryPool
	defaultStream *Stream
}

var (
	defaultContext *Context
	initOnce       sync.Once
)

func init() {
	initOnce.Do(func() {
		defaultContext = &Context{
			device:  detectDevice(),
			streams: make(map[int]*Stream),
			memory:  NewMemoryPool(),
		}
		defaultContext.defaultStream = NewStream()
	})
}

// register tracks a stream for context-wide synchronization.
func (ctx *Context) register(s *Stream) {
	ctx.mu.Lock()
	ctx.streams[s.id] = s
	ctx.mu.Unlock()
}

// unregister removes a destroyed stream from the context.
func (ctx *Context) unregister(s *Stream) {
	ctx.mu.Lock()
	delete(ctx.streams, s.id)
	ctx.mu.Unlock()
}

// Synchronize waits for all work on all live streams to complete.
func (ctx *Context) Synchronize() error {
	ctx.mu.Lock()
	streams := make([]*Stream, 0, len(ctx.streams))
	for _, s := range ctx.streams {
		streams = append(streams, s)
	}
	ctx.mu.Unlock()

	for _, s := range streams {
		s.Synchronize()
	}
	return nil
}

// Malloc allocates device memory of the specified size in bytes.
//
// Example:
//
//	d_data, err := graphcap.Malloc(1024 * 4) // 1024 float32s
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer graphcap.Free(d_data)
func Malloc(size int) (DevicePtr, error) {
	return defaultContext.memory.Allocate(size)
}

// Free releases device memory allocated by Malloc.
// It is safe to call Free with a zero-value DevicePtr.
func Free(ptr DevicePtr) error {
	return defaultContext.memory.Free(ptr)
}

// DefaultStream returns the context's default stream. The default stream
// is never destroyed and must not be captured on; create a dedicated
// stream for capture work.
func DefaultStream() *Stream {
	return defaultContext.defaultStream
}

// Synchronize waits for all operations on all streams of the default
// context to complete.
func Synchronize() error {
	return defaultContext.Synchronize()
}

// GetDevice returns the device of the default context.
func GetDevice() *Device {
	return defaultContext.device
}

// MemoryStats returns the default context's allocation statistics.
func MemoryStats() (inUse, peak int64) {
	return defaultContext.memory.Stats()
}
