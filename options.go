package digitbinindex

import "errors"

type indexOption func(*DigitBinIndex) error

// Precision sets how many decimal digits are kept when weights are binned.
//
// Precision rules the trade-off at the heart of the index: weights are
// rounded to this many decimal places before storage, so individuals whose
// weights agree on the kept digits become indistinguishable for selection,
// and in exchange every operation costs O(precision) regardless of how many
// individuals are held. The default of 3 is usually enough for simulation
// weights; raising it deepens the tree and slows every operation
// proportionally.
//
// Precision must be between 1 and 18 (inclusive), will error otherwise. The
// upper bound keeps all scaled weight arithmetic inside uint64.
func Precision(p uint8) indexOption {
	return func(idx *DigitBinIndex) error {
		if p == 0 {
			return errors.New("Precision should be >= 1")
		}
		if p > maxPrecision {
			return errors.New("Precision past 18 would overflow scaled weights")
		}
		idx.precision = p
		return nil
	}
}

// RandomSource replaces the process-seeded generator that drives selection.
// Inject a fixed-seed source to make draws reproducible.
func RandomSource(src Source) indexOption {
	return func(idx *DigitBinIndex) error {
		if src == nil {
			return errors.New("RandomSource requires a non-nil source")
		}
		idx.rng = rng{src: src}
		return nil
	}
}
