package utils

import "fmt"

// LinearAllocator is a bump allocator for per call scratch memory. Every worker owns
// its own allocator, it must never be shared between concurrent calls. Slices handed
// out are only valid until the allocator is released past them or reset.
type LinearAllocator struct {
	buf []float64
	top int
}

func NewLinearAllocator(size int) *LinearAllocator {
	return &LinearAllocator{buf: make([]float64, size)}
}

// Allocate returns a zeroed slice of length n
func (la *LinearAllocator) Allocate(n int) (s []float64) {
	if la.top+n > len(la.buf) {
		panic(fmt.Errorf("scratch exhausted: requested %d, available %d of %d",
			n, len(la.buf)-la.top, len(la.buf)))
	}
	s = la.buf[la.top : la.top+n : la.top+n]
	for i := range s {
		s[i] = 0
	}
	la.top += n
	return
}

// Mark returns the current top, to be handed to Release at the end of a scope
func (la *LinearAllocator) Mark() int { return la.top }

// Release frees everything allocated after mark
func (la *LinearAllocator) Release(mark int) {
	if mark < 0 || mark > la.top {
		panic(fmt.Errorf("invalid scratch mark %d, top is %d", mark, la.top))
	}
	la.top = mark
}

func (la *LinearAllocator) Reset()    { la.top = 0 }
func (la *LinearAllocator) Used() int { return la.top }
func (la *LinearAllocator) Cap() int  { return len(la.buf) }
