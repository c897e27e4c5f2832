package digitbinindex

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const encodingVersion int32 = 1

// AsBytes serializes the index: a version header, the precision, and one
// record per non-empty bin carrying the scaled bin weight, the member count
// and the delta-encoded (sorted) member ids. Weights travel as exact scaled
// integers, never as floats, so a round trip preserves every aggregate bit
// for bit.
func (idx *DigitBinIndex) AsBytes() ([]byte, error) {
	buffer := new(bytes.Buffer)

	if err := binary.Write(buffer, binary.BigEndian, encodingVersion); err != nil {
		return nil, err
	}
	if err := buffer.WriteByte(idx.precision); err != nil {
		return nil, err
	}

	var bins uint64
	idx.forEachLeaf(func(uint64, *idSet) bool {
		bins++
		return true
	})
	encodeUint(buffer, bins)

	idx.forEachLeaf(func(scaled uint64, members *idSet) bool {
		encodeUint(buffer, scaled)
		encodeUint(buffer, uint64(members.len()))
		var previous uint32
		for i := 0; i < members.len(); i++ {
			id := members.at(i)
			encodeUint(buffer, uint64(id-previous))
			previous = id
		}
		return true
	})

	return buffer.Bytes(), nil
}

// FromBytes rebuilds an index serialized with AsBytes. Options are applied
// before the bins are replayed, so a RandomSource can be injected. The
// serialized precision always wins over a Precision option.
func FromBytes(buf *bytes.Reader, options ...indexOption) (*DigitBinIndex, error) {
	var version int32
	if err := binary.Read(buf, binary.BigEndian, &version); err != nil {
		return nil, err
	}
	if version != encodingVersion {
		return nil, fmt.Errorf("unsupported encoding version: %d", version)
	}

	precision, err := buf.ReadByte()
	if err != nil {
		return nil, err
	}

	applied := make([]indexOption, 0, len(options)+1)
	applied = append(applied, options...)
	applied = append(applied, Precision(precision))
	idx, err := New(applied...)
	if err != nil {
		return nil, err
	}

	bins, err := decodeUint(buf)
	if err != nil {
		return nil, err
	}
	for b := uint64(0); b < bins; b++ {
		scaled, err := decodeUint(buf)
		if err != nil {
			return nil, err
		}
		if scaled == 0 || scaled >= pow10[precision] {
			return nil, fmt.Errorf("bin weight %d out of range for precision %d", scaled, precision)
		}
		count, err := decodeUint(buf)
		if err != nil {
			return nil, err
		}
		var id uint32
		for i := uint64(0); i < count; i++ {
			delta, err := decodeUint(buf)
			if err != nil {
				return nil, err
			}
			id += uint32(delta)
			if !idx.addScaled(id, scaled) {
				return nil, fmt.Errorf("duplicate id %d in serialized bin %d", id, scaled)
			}
		}
	}

	return idx, nil
}

func encodeUint(buf *bytes.Buffer, n uint64) {
	for n > 0x7f {
		buf.WriteByte(byte(0x80 | (0x7f & n)))
		n >>= 7
	}
	buf.WriteByte(byte(n))
}

func decodeUint(buf *bytes.Reader) (uint64, error) {
	v, err := buf.ReadByte()
	if err != nil {
		return 0, err
	}
	z := uint64(v & 0x7f)
	var shift uint = 7
	for v&0x80 != 0 {
		if shift > 63 {
			return 0, fmt.Errorf("varint does not fit in uint64")
		}
		v, err = buf.ReadByte()
		if err != nil {
			return 0, err
		}
		z += uint64(v&0x7f) << shift
		shift += 7
	}
	return z, nil
}
