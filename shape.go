package graphcap

// DataType identifies the element type of a tensor buffer.
type DataType int

const (
	Float DataType = iota // 32-bit float
	Half                  // 16-bit float
	Int8
	Int32
	Bool
	UInt8
	FP8 // 8-bit float
)

// ElementSize returns the size in bytes of one element of the type,
// or 0 for an unknown type.
func ElementSize(t DataType) int {
	switch t {
	case Float, Int32:
		return 4
	case Half:
		return 2
	case Int8, UInt8, Bool, FP8:
		return 1
	}
	return 0
}

// Dims is a bounded tensor shape descriptor: the first Nb entries of D
// are the extents of each dimension.
type Dims struct {
	Nb int
	D  [MaxDims]int64
}

// MakeDims builds a Dims from the given extents.
func MakeDims(extents ...int64) Dims {
	var d Dims
	d.Nb = copy(d.D[:], extents)
	return d
}

// Volume returns the number of elements in the shape, the product of
// its extents. The empty shape has volume 1.
func (d Dims) Volume() int64 {
	v := int64(1)
	for i := 0; i < d.Nb; i++ {
		v *= d.D[i]
	}
	return v
}

// PaddedVolume returns the volume with the vectorized dimension rounded
// up to a multiple of comps components, times the batch size. A negative
// vecDim means no dimension is vectorized. A batch below 1 counts as 1.
func (d Dims) PaddedVolume(vecDim, comps int, batch int64) int64 {
	if vecDim >= 0 {
		d.D[vecDim] = RoundUp(d.D[vecDim], int64(comps))
	}
	if batch < 1 {
		batch = 1
	}
	return d.Volume() * batch
}

// DivUp returns x divided by n, rounded up.
func DivUp(x, n int64) int64 {
	return (x + n - 1) / n
}

// RoundUp returns m rounded up to the nearest multiple of n.
func RoundUp(m, n int64) int64 {
	return ((m + n - 1) / n) * n
}
