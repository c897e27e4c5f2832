package digitbinindex

import "github.com/shopspring/decimal"

// pow10 holds 10^i for every admissible precision.
var pow10 = [maxPrecision + 1]uint64{
	1,
	10,
	100,
	1000,
	10000,
	100000,
	1000000,
	10000000,
	100000000,
	1000000000,
	10000000000,
	100000000000,
	1000000000000,
	10000000000000,
	100000000000000,
	1000000000000000,
	10000000000000000,
	100000000000000000,
	1000000000000000000,
}

var one = decimal.New(1, 0)

// binWeight rescales weight to exactly precision decimal digits and returns
// its scaled magnitude, i.e. weight*10^precision as an integer. The second
// return is false when the binned weight falls outside (0, 1): non-positive
// input, input that collapses to zero after rounding, or input that rounds
// up to one or more. A root-to-leaf path holds precision fractional digits
// and nothing else, so such weights have no bin to live in.
func binWeight(weight decimal.Decimal, precision uint8) (uint64, bool) {
	if weight.Sign() <= 0 {
		return 0, false
	}
	binned := weight.Round(int32(precision))
	if binned.Sign() <= 0 || binned.Cmp(one) >= 0 {
		return 0, false
	}
	return uint64(binned.Shift(int32(precision)).IntPart()), true
}

// digitAt returns the decimal digit of a scaled weight at a 1-indexed
// position, counted from just after the decimal point. Positions past the
// weight's actual scale come out as zero, since the scaled magnitude already
// carries the trailing zeros. Everything here is integer arithmetic: the
// same weight and position always produce the same digit, which is what
// makes removal retrace the exact path insertion took.
func digitAt(scaled uint64, position, precision uint8) int {
	return int(scaled / pow10[precision-position] % 10)
}

// unscale converts a scaled magnitude back into its exact decimal weight.
func unscale(scaled uint64, precision uint8) decimal.Decimal {
	return decimal.New(int64(scaled), -int32(precision))
}
