package graphcap

import (
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// Device represents the compute device backing the runtime: the CPU with
// its cores, memory and SIMD capabilities.
type Device struct {
	ID         int    // Unique device identifier
	Name       string // Human-readable device name
	TotalMem   uint64 // Total available memory in bytes
	NumCores   int    // Number of CPU cores
	MaxThreads int    // Maximum concurrent threads
	Features   CPUFeatures
}

// CPUFeatures tracks available CPU instruction set extensions
type CPUFeatures struct {
	HasSSE4    bool
	HasAVX     bool
	HasAVX2    bool
	HasAVX512F bool
	HasFMA     bool
	HasNEON    bool
}

func detectDevice() *Device {
	return &Device{
		ID:         0,
		Name:       "CPU (" + runtime.GOARCH + ")",
		TotalMem:   getSystemMemory(),
		NumCores:   runtime.NumCPU(),
		MaxThreads: runtime.NumCPU() * 2,
		Features: CPUFeatures{
			HasSSE4:    cpu.X86.HasSSE41 || cpu.X86.HasSSE42,
			HasAVX:     cpu.X86.HasAVX,
			HasAVX2:    cpu.X86.HasAVX2 && cpu.X86.HasFMA,
			HasAVX512F: cpu.X86.HasAVX512F,
			HasFMA:     cpu.X86.HasFMA,
			HasNEON:    cpu.ARM64.HasASIMD,
		},
	}
}

// String returns a description of the detected SIMD extensions.
func (f CPUFeatures) String() string {
	var features []string
	if f.HasSSE4 {
		features = append(features, "SSE4")
	}
	if f.HasAVX {
		features = append(features, "AVX")
	}
	if f.HasAVX2 {
		features = append(features, "AVX2")
	}
	if f.HasFMA {
		features = append(features, "FMA")
	}
	if f.HasAVX512F {
		features = append(features, "AVX512F")
	}
	if f.HasNEON {
		features = append(features, "NEON")
	}
	if len(features) == 0 {
		return "no SIMD extensions detected"
	}
	return strings.Join(features, ", ")
}
