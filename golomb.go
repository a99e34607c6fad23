package jpegls

// Golomb-Rice entropy coding with the limited-length escape of ISO/IEC
// 14495-1 A.5.2, plus a 256-entry per-k fast decode table in the style of
// charls' golomb_lut.

// EncodeGolomb Golomb-Rice encodes a mapped (non-negative) error value with
// parameter k, escaping to a fixed-width code per A.5.2 when the unary
// prefix would exceed the scan's LIMIT.
func EncodeGolomb(bw *BitWriter, mapped, k, limit, qbpp int) error {
	highBits := mapped >> uint(k)
	if highBits < limit-qbpp-1 {
		if err := bw.WriteUnary(highBits); err != nil {
			return err
		}
		if k > 0 {
			return bw.WriteBits(uint32(mapped)&((1<<uint(k))-1), k)
		}
		return nil
	}
	if err := bw.WriteUnary(limit - qbpp - 1); err != nil {
		return err
	}
	return bw.WriteBits(uint32(mapped-1), qbpp)
}

// DecodeGolomb reads one Golomb-Rice coded value with parameter k, applying
// the same escape rule as EncodeGolomb.
func DecodeGolomb(br *BitReader, k, limit, qbpp int) (int, error) {
	unaryLen, err := readUnaryBounded(br, limit-qbpp-1)
	if err != nil {
		return 0, err
	}
	if unaryLen < limit-qbpp-1 {
		if k == 0 {
			return unaryLen, nil
		}
		low, err := br.ReadBits(k)
		if err != nil {
			return 0, err
		}
		return (unaryLen << uint(k)) | int(low), nil
	}
	low, err := br.ReadBits(qbpp)
	if err != nil {
		return 0, err
	}
	return int(low) + 1, nil
}

// readUnaryBounded reads zero bits up to and including the terminating one
// bit, but stops counting at bound: a run of exactly bound zero bits is the
// escape prefix, and the one bit the encoder writes after it is consumed
// here as well (anything else is invalid_data), so the escape's structure
// is "bound zeros, 1, then qbpp raw bits".
func readUnaryBounded(br *BitReader, bound int) (int, error) {
	count := 0
	for count < bound {
		bit, err := br.ReadBit()
		if err != nil {
			return count, err
		}
		if bit == 1 {
			return count, nil
		}
		count++
	}
	// Consume the terminating 1 bit of the escape's unary prefix.
	bit, err := br.ReadBit()
	if err != nil {
		return count, err
	}
	if bit != 1 {
		return count, newError(KindInvalidData, "malformed Golomb escape code")
	}
	return count, nil
}

// golombDecodeEntry is one row of a per-k fast decode table: the value and
// total bit length of the code whose first 8 bits (left-justified) are this
// table's index, or ok=false when the code needs more than 8 bits and must
// fall back to DecodeGolomb's bit-by-bit path.
type golombDecodeEntry struct {
	value    int
	bitCount int
	ok       bool
}

// GolombLUT is a precomputed 256-entry fast decode table for one Golomb
// parameter k, used to shortcut the common case where a whole code fits in
// the next byte (charls golomb_lut.cpp).
type GolombLUT struct {
	entries [256]golombDecodeEntry
}

// NewGolombLUT builds the fast decode table for parameter k within the
// scan's (limit, qbpp).
func NewGolombLUT(k, limit, qbpp int) *GolombLUT {
	lut := &GolombLUT{}
	for byteVal := 0; byteVal < 256; byteVal++ {
		lut.entries[byteVal] = decodeFromByte(byte(byteVal), k, limit, qbpp)
	}
	return lut
}

// decodeFromByte attempts to decode a full Golomb code assuming the next
// bits in the stream are exactly byteVal (MSB first), for codes that
// complete within 8 bits.
func decodeFromByte(byteVal byte, k, limit, qbpp int) golombDecodeEntry {
	zeros := 0
	for zeros < 8 && (byteVal>>(7-uint(zeros)))&1 == 0 {
		zeros++
	}
	if zeros >= 8 {
		return golombDecodeEntry{ok: false}
	}
	// zeros is the count of leading 0 bits before the terminating 1.
	if zeros < limit-qbpp-1 {
		needed := 1 + zeros + k
		if needed > 8 {
			return golombDecodeEntry{ok: false}
		}
		low := 0
		if k > 0 {
			shift := 8 - needed
			mask := (1 << uint(k)) - 1
			low = int((byteVal >> uint(shift)) & byte(mask))
		}
		return golombDecodeEntry{value: (zeros << uint(k)) | low, bitCount: needed, ok: true}
	}
	// Escape path needs zeros+1+qbpp bits; rarely fits in 8 bits for real
	// bit depths, so this is intentionally conservative and falls back.
	needed := 1 + zeros + qbpp
	if needed > 8 || zeros != limit-qbpp-1 {
		return golombDecodeEntry{ok: false}
	}
	shift := 8 - needed
	mask := (1 << uint(qbpp)) - 1
	low := int((byteVal >> uint(shift)) & byte(mask))
	return golombDecodeEntry{value: low + 1, bitCount: needed, ok: true}
}

// Decode attempts the fast path via PeekByte, falling back to the bit-exact
// slow path in DecodeGolomb when the next code doesn't fit in one byte.
func (lut *GolombLUT) Decode(br *BitReader, k, limit, qbpp int) (int, error) {
	b := br.PeekByte()
	entry := lut.entries[b]
	if entry.ok && entry.bitCount <= br.bitCountAvailableHint() {
		if err := br.SkipBits(entry.bitCount); err != nil {
			return 0, err
		}
		return entry.value, nil
	}
	return DecodeGolomb(br, k, limit, qbpp)
}

// bitCountAvailableHint reports how many buffered+peekable bits are known
// good without risking a spurious need_more_data from the fast path; a
// conservative lower bound is fine since the slow path is always correct.
func (br *BitReader) bitCountAvailableHint() int {
	return br.bitCount
}
