package digitbinindex

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mathext/prng"
	"gonum.org/v1/gonum/stat"
)

// The scenario behind both tests: 1000 light individuals at weight 0.1 and
// 1000 heavy ones at weight 0.2, then 1000 draws. Uniform sampling would
// yield 500 heavy picks on average, one-shot proportional sampling 666.67
// (weight ratio 2:1).
const (
	classSize   = 1000
	drawsPerRun = 1000
)

func populateTwoClasses(t *testing.T, seed uint64) *DigitBinIndex {
	t.Helper()

	src := prng.NewMT19937()
	src.Seed(seed)
	idx, err := New(Precision(3), RandomSource(src))
	require.NoError(t, err)

	for id := uint32(0); id < classSize; id++ {
		require.True(t, idx.Add(id, dec("0.1")))
		require.True(t, idx.Add(classSize+id, dec("0.2")))
	}
	return idx
}

func heavyShare(picks []Pick) float64 {
	heavy := 0
	for _, pick := range picks {
		if pick.ID >= classSize {
			heavy++
		}
	}
	return float64(heavy)
}

// Sequential draw-and-remove conditions every draw on the already diminished
// population, which is Wallenius' noncentral hypergeometric sampling: the
// mean heavy count must land strictly between the uniform mean (500) and the
// proportional mean (666.67).
func TestWalleniusSequentialDraws(t *testing.T) {
	if testing.Short() {
		t.Skipf("Skipping the Monte Carlo run. Short flag is on")
	}

	const trials = 100
	heavyCounts := make([]float64, trials)

	for trial := 0; trial < trials; trial++ {
		idx := populateTwoClasses(t, uint64(0xDB1+trial))

		picks := make([]Pick, 0, drawsPerRun)
		for draw := 0; draw < drawsPerRun; draw++ {
			pick, ok, err := idx.SelectAndRemove()
			require.NoError(t, err)
			require.True(t, ok)
			picks = append(picks, pick)
		}
		heavyCounts[trial] = heavyShare(picks)
	}

	mean := stat.Mean(heavyCounts, nil)
	require.Greater(t, mean, 500.0, "sequential draws should beat uniform sampling")
	require.Less(t, mean, 666.67, "sequential draws should fall short of one-shot proportional sampling")
}

// The batched unique draw keeps sampling against the original distribution,
// approximating Fisher's noncentral hypergeometric sampling, so the mean
// heavy count sits at the proportional 666.67.
func TestFisherBatchedDraws(t *testing.T) {
	if testing.Short() {
		t.Skipf("Skipping the Monte Carlo run. Short flag is on")
	}

	const trials = 100
	heavyCounts := make([]float64, trials)

	for trial := 0; trial < trials; trial++ {
		idx := populateTwoClasses(t, uint64(0xF15E+trial))

		picks, ok, err := idx.SelectManyAndRemove(drawsPerRun)
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, picks, drawsPerRun)
		require.EqualValues(t, classSize, idx.Count())

		heavyCounts[trial] = heavyShare(picks)
	}

	mean := stat.Mean(heavyCounts, nil)
	require.InDelta(t, 666.67, mean, 666.67*0.02)
}
