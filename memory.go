package graphcap

import (
	"fmt"
	"sync"
	"unsafe"
)

// MemcpyKind specifies the direction of memory transfer. All memory is
// CPU-accessible here; the kinds are kept for API compatibility and are
// treated identically.
type MemcpyKind int

const (
	MemcpyHostToHost     MemcpyKind = iota // Host to host transfer
	MemcpyHostToDevice                     // Host to device transfer
	MemcpyDeviceToHost                     // Device to host transfer
	MemcpyDeviceToDevice                   // Device to device transfer
	MemcpyDefault                          // Default transfer (infer direction)
)

// DevicePtr represents a pointer into device memory. The zero value is
// the null pointer. Use the typed view methods to access the underlying
// data, and Offset for pointer arithmetic.
type DevicePtr struct {
	buf []byte
}

// IsNil reports whether the pointer is null.
func (d DevicePtr) IsNil() bool { return d.buf == nil }

// Size returns the size in bytes of the memory region.
func (d DevicePtr) Size() int { return len(d.buf) }

// Bytes returns the region as a byte slice.
func (d DevicePtr) Bytes() []byte { return d.buf }

// Float32 returns the region viewed as a float32 slice.
func (d DevicePtr) Float32() []float32 {
	if len(d.buf) < 4 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&d.buf[0])), len(d.buf)/4)
}

// Int32 returns the region viewed as an int32 slice.
func (d DevicePtr) Int32() []int32 {
	if len(d.buf) < 4 {
		return nil
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&d.buf[0])), len(d.buf)/4)
}

// Offset returns a pointer advanced by the given number of bytes.
// The returned pointer shares the same underlying memory.
func (d DevicePtr) Offset(bytes int) DevicePtr {
	return DevicePtr{buf: d.buf[bytes:]}
}

// MemoryPool manages device memory allocation with block reuse. Freed
// blocks go onto a free list and satisfy later allocations of equal or
// smaller size, reducing allocation churn during replay-heavy workloads.
type MemoryPool struct {
	mu        sync.Mutex
	allocated map[*byte]int
	freeList  [][]byte
	inUse     int64
	peak      int64
	limit     int64
}

// NewMemoryPool creates an empty pool bounded by the device's total
// memory.
func NewMemoryPool() *MemoryPool {
	return &MemoryPool{
		allocated: make(map[*byte]int),
		limit:     int64(getSystemMemory()),
	}
}

// Allocate returns a zeroed, cache-line-aligned region of at least size
// bytes. Allocating beyond the device's memory reports ErrOutOfMemory.
func (mp *MemoryPool) Allocate(size int) (DevicePtr, error) {
	if size <= 0 {
		return DevicePtr{}, ErrInvalidSize
	}
	aligned := size
	if aligned < MinAllocationSize {
		aligned = MinAllocationSize
	}
	aligned = (aligned + MemoryAlignment - 1) &^ (MemoryAlignment - 1)

	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.limit > 0 && mp.inUse+int64(aligned) > mp.limit {
		return DevicePtr{}, ErrOutOfMemory
	}

	var buf []byte
	for i, blk := range mp.freeList {
		if cap(blk) >= aligned {
			mp.freeList = append(mp.freeList[:i], mp.freeList[i+1:]...)
			buf = blk[:cap(blk)]
			clear(buf)
			break
		}
	}
	if buf == nil {
		buf = make([]byte, aligned)
	}

	mp.allocated[&buf[0]] = cap(buf)
	mp.inUse += int64(cap(buf))
	if mp.inUse > mp.peak {
		mp.peak = mp.inUse
	}
	return DevicePtr{buf: buf[:size]}, nil
}

// Free returns a block to the pool. Freeing a pointer that is not the
// base of a live allocation reports ErrDoubleFree. A null pointer is a
// no-op.
func (mp *MemoryPool) Free(ptr DevicePtr) error {
	if ptr.IsNil() {
		return nil
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()

	base := &ptr.buf[0]
	size, ok := mp.allocated[base]
	if !ok {
		return ErrDoubleFree
	}
	delete(mp.allocated, base)
	mp.inUse -= int64(size)
	mp.freeList = append(mp.freeList, ptr.buf[:0:size])
	return nil
}

// Stats returns the bytes currently allocated and the peak allocation.
func (mp *MemoryPool) Stats() (inUse, peak int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.inUse, mp.peak
}

// asBytes adapts the supported source/destination types to a byte view.
func asBytes(v interface{}, op string) ([]byte, error) {
	switch x := v.(type) {
	case DevicePtr:
		return x.buf, nil
	case []byte:
		return x, nil
	case []float32:
		if len(x) == 0 {
			return nil, nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(&x[0])), len(x)*4), nil
	case []int32:
		if len(x) == 0 {
			return nil, nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(&x[0])), len(x)*4), nil
	default:
		return nil, NewInvalidArgError(op, fmt.Sprintf("unsupported type: %T", v))
	}
}

// Memcpy copies size bytes between host and device synchronously.
// Supported operand types: DevicePtr, []byte, []float32, []int32.
func Memcpy(dst, src interface{}, size int, kind MemcpyKind) error {
	d, err := asBytes(dst, "Memcpy")
	if err != nil {
		return err
	}
	s, err := asBytes(src, "Memcpy")
	if err != nil {
		return err
	}
	if size < 0 {
		return NewInvalidArgError("Memcpy", "negative size")
	}
	if size > len(d) || size > len(s) {
		return NewInvalidArgError("Memcpy", "size exceeds operand bounds")
	}
	copy(d[:size], s[:size])
	return nil
}

// MemcpyAsync enqueues the copy on a stream. The operands are validated
// eagerly but the copy happens in stream order, which makes it a
// recordable operation during stream capture.
func MemcpyAsync(dst, src interface{}, size int, kind MemcpyKind, stream *Stream) error {
	d, err := asBytes(dst, "MemcpyAsync")
	if err != nil {
		return err
	}
	s, err := asBytes(src, "MemcpyAsync")
	if err != nil {
		return err
	}
	if size < 0 {
		return NewInvalidArgError("MemcpyAsync", "negative size")
	}
	if size > len(d) || size > len(s) {
		return NewInvalidArgError("MemcpyAsync", "size exceeds operand bounds")
	}
	return stream.Submit(func() {
		copy(d[:size], s[:size])
	})
}
