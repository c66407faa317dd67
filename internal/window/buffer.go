// Package window provides the fixed-capacity sliding window that backs the
// scrolling time-series chart.
package window

// Number is the set of sample types a Buffer can hold.
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Buffer is a fixed-capacity FIFO. It is pre-filled with zeros, so its length
// always equals its capacity; each Push evicts the oldest sample.
//
// Buffer is not safe for concurrent use; its owner serializes access.
type Buffer[T Number] struct {
	samples []T
	size    int
}

// New returns a Buffer of capacity n holding n zeros. n below 1 is treated as 1.
func New[T Number](n int) *Buffer[T] {
	if n < 1 {
		n = 1
	}
	return &Buffer[T]{
		samples: make([]T, n, n+1),
		size:    n,
	}
}

// Push appends sample and drops samples from the front until the length is
// back to capacity.
func (b *Buffer[T]) Push(sample T) {
	b.samples = append(b.samples, sample)
	for len(b.samples) > b.size {
		// Shift in place so the backing array never grows past size+1.
		copy(b.samples, b.samples[1:])
		b.samples = b.samples[:len(b.samples)-1]
	}
}

// Snapshot returns a copy of the contents, oldest first.
func (b *Buffer[T]) Snapshot() []T {
	out := make([]T, len(b.samples))
	copy(out, b.samples)
	return out
}

// Len returns the number of samples held. It always equals Cap.
func (b *Buffer[T]) Len() int { return len(b.samples) }

// Cap returns the window capacity.
func (b *Buffer[T]) Cap() int { return b.size }
