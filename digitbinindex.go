// Package digitbinindex provides an in-memory index over weighted
// individuals that supports weighted random selection and removal in
// O(P) time, where P is the number of decimal digits kept per weight.
//
// The index is a fixed-depth base-10 tree keyed by the decimal digits of
// each (rounded) weight. It makes a deliberate engineering trade-off: a
// small, configurable amount of weight precision is given up by binning, and
// in return the core operations beat the O(log N) of general-purpose
// prefix-sum structures on large populations. It is purpose-built for
// simulations that repeatedly draw individuals proportional to weight and
// remove them as they are drawn, i.e. sequential sampling without
// replacement as in Wallenius' noncentral hypergeometric distribution. A
// rejection-based batched draw covers the simultaneous (Fisher's) flavor as
// well.
//
// The index is not thread-safe; it assumes one sequential owner.
package digitbinindex

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/shopspring/decimal"
)

// The default precision to use if none is specified via options.
const defaultPrecision = 3

// maxPrecision keeps every scaled magnitude, and the root total, inside
// uint64.
const maxPrecision = 18

// ErrCorrupted reports a violated structural or aggregate invariant. It is
// never used for ordinary empty or not-found outcomes; an operation
// returning it means the index can no longer be trusted.
var ErrCorrupted = errors.New("digit bin index corrupted")

// Pick is one selected individual together with its binned weight.
type Pick struct {
	ID     uint32
	Weight decimal.Decimal
}

// DigitBinIndex organizes individuals into bins keyed by the decimal digits
// of their weight. The root is always internal; a root-to-leaf path spells
// out the precision digits of a bin's weight, most significant first.
type DigitBinIndex struct {
	root      *node
	precision uint8
	rng       rng
}

// New builds an empty index. Without options it keeps 3 decimal digits per
// weight and draws randomness from a process-seeded Mersenne Twister; see
// Precision and RandomSource.
func New(options ...indexOption) (*DigitBinIndex, error) {
	idx := &DigitBinIndex{
		root:      newInternal(),
		precision: defaultPrecision,
		rng:       rng{src: newDefaultSource()},
	}

	for _, option := range options {
		if err := option(idx); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

// Count returns the number of individuals currently held.
func (idx *DigitBinIndex) Count() uint32 {
	return idx.root.count
}

// TotalWeight returns the exact sum of all binned weights currently held.
func (idx *DigitBinIndex) TotalWeight() decimal.Decimal {
	return unscale(idx.root.accumulated, idx.precision)
}

// Precision returns the number of decimal digits kept when binning.
func (idx *DigitBinIndex) Precision() uint8 {
	return idx.precision
}

// Add inserts an individual under its binned weight and reports whether it
// was accepted. It returns false, with no mutation, when the weight does not
// bin into (0, 1) (non-positive, collapsing to zero after rounding, or
// rounding up to one), when the id already sits in the destination bin, or
// when the total weight would overflow.
//
// Ids are caller-assigned and must be unique across the whole index; the
// structure itself only detects duplicates that land in the same bin.
func (idx *DigitBinIndex) Add(id uint32, weight decimal.Decimal) bool {
	scaled, ok := binWeight(weight, idx.precision)
	if !ok {
		return false
	}
	if _, carry := bits.Add64(idx.root.accumulated, scaled, 0); carry != 0 {
		return false
	}
	return idx.addScaled(id, scaled)
}

func (idx *DigitBinIndex) addScaled(id uint32, scaled uint64) bool {
	path := make([]*node, 0, idx.precision+1)
	current := idx.root
	path = append(path, current)

	for depth := uint8(1); depth <= idx.precision; depth++ {
		current = current.childAt(digitAt(scaled, depth, idx.precision))
		path = append(path, current)
	}

	if current.kind == internalNode {
		// First use of this bin: commit the placeholder to leaf duty.
		current.kind = leafNode
	}
	if !current.members.add(id) {
		return false
	}

	for _, n := range path {
		n.count++
		n.accumulated += scaled
	}
	return true
}

// Remove deletes the individual added under the given weight and reports
// whether it was found. The digit path is recomputed from the weight, the
// same way Add derived it; the index never searches for an id by content.
// It returns false, with no mutation, when the id is not present at the
// computed bin: a mismatched weight, or an id that was already removed.
func (idx *DigitBinIndex) Remove(id uint32, weight decimal.Decimal) bool {
	scaled, ok := binWeight(weight, idx.precision)
	if !ok {
		return false
	}
	return idx.removeScaled(id, scaled)
}

func (idx *DigitBinIndex) removeScaled(id uint32, scaled uint64) bool {
	path := make([]*node, 0, idx.precision+1)
	current := idx.root
	path = append(path, current)

	for depth := uint8(1); depth <= idx.precision; depth++ {
		digit := digitAt(scaled, depth, idx.precision)
		if digit >= len(current.children) {
			return false
		}
		current = current.children[digit]
		if current.count == 0 {
			return false
		}
		path = append(path, current)
	}

	if current.kind != leafNode || !current.members.remove(id) {
		return false
	}

	for _, n := range path {
		n.count--
		n.accumulated -= scaled
	}
	return true
}

// Select performs one weighted random draw without mutating the index. The
// second return is false when the index is empty. All members of a bin are
// interchangeable up to the kept precision, so the pick inside the
// destination bin is uniform.
func (idx *DigitBinIndex) Select() (Pick, bool, error) {
	id, scaled, ok, err := idx.selectScaled()
	if !ok || err != nil {
		return Pick{}, false, err
	}
	return Pick{ID: id, Weight: unscale(scaled, idx.precision)}, true, nil
}

// SelectAndRemove draws one individual and removes it before returning, so
// the next draw is conditioned on the diminished population. Chaining it is
// exactly Wallenius' noncentral hypergeometric sampling: heavy individuals
// surface disproportionately early, and a long run of draws shows less class
// skew than one-shot proportional sampling but more than uniform sampling.
func (idx *DigitBinIndex) SelectAndRemove() (Pick, bool, error) {
	id, scaled, ok, err := idx.selectScaled()
	if !ok || err != nil {
		return Pick{}, false, err
	}
	if !idx.removeScaled(id, scaled) {
		return Pick{}, false, fmt.Errorf("selected individual %d missing from its bin: %w", id, ErrCorrupted)
	}
	return Pick{ID: id, Weight: unscale(scaled, idx.precision)}, true, nil
}

// SelectMany draws k distinct individuals weighted by the index's current,
// unmodified distribution: aggregates are not decremented between draws,
// which approximates simultaneous (Fisher's) sampling. A draw that lands in
// a bin whose members were all chosen earlier in the same call is rejected
// and retried from the root. The retry loop carries no cap: a bin can only
// refuse once fully exhausted, so while fewer than k ids are collected some
// reachable bin still holds an unchosen member and the loop converges with
// probability one. Inside a bin the smallest unchosen id is taken, for
// determinism.
//
// Returns ok == false, with no draw performed, when k exceeds the
// population. k == 0 yields an empty slice.
func (idx *DigitBinIndex) SelectMany(k uint32) ([]Pick, bool, error) {
	if k > idx.root.count {
		return nil, false, nil
	}

	picks := make([]Pick, 0, k)
	chosen := make(map[uint32]struct{}, k)
	for uint32(len(picks)) < k {
		target := idx.rng.uint64n(idx.root.accumulated)
		leaf, scaled, err := idx.descend(target)
		if err != nil {
			return nil, false, err
		}
		id, ok := leaf.members.firstNotIn(chosen)
		if !ok {
			// Bin exhausted for this call; reject and redraw.
			continue
		}
		chosen[id] = struct{}{}
		picks = append(picks, Pick{ID: id, Weight: unscale(scaled, idx.precision)})
	}
	return picks, true, nil
}

// SelectManyAndRemove runs SelectMany and then removes every drawn
// individual, for simulations that chain rounds and need the simultaneous
// draw to deplete the population afterwards.
func (idx *DigitBinIndex) SelectManyAndRemove(k uint32) ([]Pick, bool, error) {
	picks, ok, err := idx.SelectMany(k)
	if !ok || err != nil {
		return nil, ok, err
	}
	for _, pick := range picks {
		scaled, _ := binWeight(pick.Weight, idx.precision)
		if !idx.removeScaled(pick.ID, scaled) {
			return nil, false, fmt.Errorf("drawn individual %d missing from its bin: %w", pick.ID, ErrCorrupted)
		}
	}
	return picks, true, nil
}

func (idx *DigitBinIndex) selectScaled() (uint32, uint64, bool, error) {
	if idx.root.count == 0 {
		return 0, 0, false, nil
	}
	target := idx.rng.uint64n(idx.root.accumulated)
	leaf, scaled, err := idx.descend(target)
	if err != nil {
		return 0, 0, false, err
	}
	id := leaf.members.at(idx.rng.intn(leaf.members.len()))
	return id, scaled, true, nil
}

// descend walks from the root to the leaf owning target, rebuilding the
// destination bin's scaled weight from the digits chosen on the way down.
// target must be below the root's accumulated value; running past the
// children of any node on the way means the aggregates no longer add up.
func (idx *DigitBinIndex) descend(target uint64) (*node, uint64, error) {
	current := idx.root
	var scaled uint64

	for depth := uint8(1); depth <= idx.precision; depth++ {
		next := -1
		for digit, child := range current.children {
			if child.accumulated == 0 {
				continue
			}
			if target < child.accumulated {
				next = digit
				break
			}
			target -= child.accumulated
		}
		if next < 0 {
			return nil, 0, fmt.Errorf("selection target overran depth %d: %w", depth, ErrCorrupted)
		}
		scaled += uint64(next) * pow10[idx.precision-depth]
		current = current.children[next]
	}

	if current.kind != leafNode || current.members.len() == 0 {
		return nil, 0, fmt.Errorf("selection ended on an empty node at full depth: %w", ErrCorrupted)
	}
	return current, scaled, nil
}

// forEachLeaf visits every materialized, non-empty bin in ascending weight
// order. The visitor returns false to stop early.
func (idx *DigitBinIndex) forEachLeaf(visit func(scaled uint64, members *idSet) bool) {
	walkLeaves(idx.root, 0, idx.precision, visit)
}

func walkLeaves(n *node, scaled uint64, remaining uint8, visit func(uint64, *idSet) bool) bool {
	if remaining == 0 {
		if n.kind == leafNode && n.members.len() > 0 {
			return visit(scaled, &n.members)
		}
		return true
	}
	for digit, child := range n.children {
		if child.count == 0 {
			continue
		}
		if !walkLeaves(child, scaled*10+uint64(digit), remaining-1, visit) {
			return false
		}
	}
	return true
}
