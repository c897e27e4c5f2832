package digitbinindex

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mathext/prng"
)

func TestEncodeDecode(t *testing.T) {
	testUints := []uint64{0, 10, 100, 1000, 10000, 65535, 2147483647, 1<<63 - 1}
	buf := new(bytes.Buffer)

	for _, i := range testUints {
		encodeUint(buf, i)
	}

	readBuf := bytes.NewReader(buf.Bytes())
	for _, i := range testUints {
		j, err := decodeUint(readBuf)
		require.NoError(t, err)
		require.Equal(t, i, j)
	}
}

func TestSerializationRoundTrip(t *testing.T) {
	idx := seededIndex(t, 4, 21)

	src := prng.NewMT19937()
	src.Seed(0xBEEF)
	r := rng{src: src}
	for id := uint32(0); id < 500; id++ {
		require.True(t, idx.Add(id, unscale(1+r.uint64n(9999), 4)))
	}

	serialized, err := idx.AsBytes()
	require.NoError(t, err)

	restored, err := FromBytes(bytes.NewReader(serialized))
	require.NoError(t, err)

	require.Equal(t, idx.Precision(), restored.Precision())
	require.Equal(t, idx.Count(), restored.Count())
	require.True(t, idx.TotalWeight().Equal(restored.TotalWeight()),
		"total weight must survive the round trip bit for bit: %s != %s",
		idx.TotalWeight(), restored.TotalWeight())

	type bin struct {
		scaled  uint64
		members []uint32
	}
	collect := func(from *DigitBinIndex) []bin {
		var bins []bin
		from.forEachLeaf(func(scaled uint64, members *idSet) bool {
			bins = append(bins, bin{scaled, append([]uint32(nil), members.ids...)})
			return true
		})
		return bins
	}
	require.Equal(t, collect(idx), collect(restored))

	// The restored index must still be fully operational.
	pick, ok, err := restored.SelectAndRemove()
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, restored.Remove(pick.ID, pick.Weight))
}

func TestSerializationEmptyIndex(t *testing.T) {
	idx := seededIndex(t, 3, 22)

	serialized, err := idx.AsBytes()
	require.NoError(t, err)

	restored, err := FromBytes(bytes.NewReader(serialized))
	require.NoError(t, err)
	require.EqualValues(t, 0, restored.Count())
	require.True(t, restored.TotalWeight().IsZero())
}

func TestDeserializationRejectsGarbage(t *testing.T) {
	_, err := FromBytes(bytes.NewReader(nil))
	require.Error(t, err)

	_, err = FromBytes(bytes.NewReader([]byte{0, 0, 0, 99, 3, 0}))
	require.Error(t, err, "unknown encoding versions must be refused")

	idx := seededIndex(t, 3, 23)
	require.True(t, idx.Add(1, dec("0.5")))
	serialized, err := idx.AsBytes()
	require.NoError(t, err)

	_, err = FromBytes(bytes.NewReader(serialized[:len(serialized)-1]))
	require.Error(t, err, "truncated input must be refused")
}
