// Package fenwick provides a list data structure supporting prefix sums
// and prefix search over uint64 weights.
//
// A Fenwick tree, or binary indexed tree, represents a list of numbers as
// an implicit tree where each node holds the sum of a power-of-two sized
// range, so element updates and prefix sums both run in O(log n) time while
// using no more memory than the list itself. The prefix search walks the
// same implicit tree top-down, which is what makes it usable as a
// general-purpose weighted sampler to hold against the digit-binning index.
package fenwick

import "math/bits"

// List represents a list of numbers with support for efficient prefix sum
// computation and prefix search. The zero value is an empty list.
type List struct {
	// tree[i] stores the range sum of the underlying array t ending at i:
	// t[i&(i+1)] + … + t[i].
	tree []uint64
}

// New creates a new list with the given elements.
func New(n ...uint64) *List {
	len := len(n)
	t := make([]uint64, len)
	copy(t, n)
	for i := range t {
		if j := i | (i + 1); j < len {
			t[j] += t[i]
		}
	}
	return &List{
		tree: t,
	}
}

// Len returns the number of elements in the list.
func (l *List) Len() int {
	return len(l.tree)
}

// Get returns the element at index i.
func (l *List) Get(i int) uint64 {
	sum := l.tree[i]
	j := i + 1
	j -= j & -j
	for i > j {
		sum -= l.tree[i-1]
		i -= i & -i
	}
	return sum
}

// Set sets the element at index i to n.
func (l *List) Set(i int, n uint64) {
	n -= l.Get(i)
	for len := len(l.tree); i < len; i |= i + 1 {
		l.tree[i] += n
	}
}

// Add adds n to the element at index i.
func (l *List) Add(i int, n uint64) {
	for len := len(l.tree); i < len; i |= i + 1 {
		l.tree[i] += n
	}
}

// Sum returns the sum of the elements from index 0 to index i-1.
func (l *List) Sum(i int) uint64 {
	var sum uint64
	for i > 0 {
		sum += l.tree[i-1]
		i -= i & -i
	}
	return sum
}

// Find returns the index of the element owning target, i.e. the smallest i
// whose prefix sum through i exceeds target. target must be below the total
// sum; past it, Len() is returned.
func (l *List) Find(target uint64) int {
	n := len(l.tree)
	if n == 0 {
		return 0
	}
	index := 0
	for bitMask := 1 << bits.Len(uint(n)); bitMask > 0; bitMask >>= 1 {
		next := index + bitMask
		if next <= n && target >= l.tree[next-1] {
			target -= l.tree[next-1]
			index = next
		}
	}
	return index
}
