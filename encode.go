package fpfma

import "math"

// Encode converts a real value x to the nearest encoding of format f using
// round-to-nearest, ties-to-even. Special cases (NaN, overflow, underflow)
// are resolved first; the remaining range is resolved
// by a deterministic bit-by-bit nearest search that needs no separate
// subnormal/normal case split, since Decode already handles both.
func Encode(f Format, x float64) uint16 {
	d := descriptor(f)

	sign := uint16(0)
	if x < 0 {
		sign = 1
	}

	if x != x { // NaN
		return d.CanonicalNaN
	}

	ax := math.Abs(x)

	if d.HasInfinity {
		if ax > d.MaxFinite {
			if ax >= overflowThreshold(d) {
				if sign == 1 {
					return d.NegativeInf
				}
				return d.PositiveInf
			}
			// Strictly between MAX and the midpoint: rounds down to MAX.
			return signExtend(d, sign, d.FiniteMax)
		}
	} else if ax >= d.MaxFinite {
		// E4M3 has no infinity: saturate to the largest finite pattern.
		return signExtend(d, sign, d.FiniteMax)
	}

	if ax <= d.MinPositive/2 {
		return 0 // canonical +0, even for negative input
	}
	if ax <= d.MinPositive {
		return signExtend(d, sign, 1)
	}

	// E5M2 and E4M3 are small enough (256 code points each) that an
	// exhaustively-built lookup table beats a bit-by-bit search; FP16
	// keeps the bit-by-bit search fp.py uses for every format (the table
	// is only built for the 8-bit formats -- see DESIGN.md).
	switch f {
	case E5M2:
		return encodeViaTable(e5m2Table, x)
	case E4M3:
		return encodeViaTable(e4m3Table, x)
	default:
		return nearestSearch(d, sign, x)
	}
}

// overflowThreshold returns the real value at or above which x rounds to
// infinity rather than MAX: MAX plus half the ULP at MAX. For FP16 this
// evaluates to MAX + 2^(15-man_bits-1).
func overflowThreshold(d FormatDescriptor) float64 {
	maxExpField := (1 << uint(d.ExpBits)) - 2
	expOfMax := maxExpField - d.Bias
	halfULPExp := expOfMax - d.ManBits - 1
	return d.MaxFinite + math.Ldexp(1, halfULPExp)
}

// signExtend combines a sign bit with the remaining (exp|man) bits of a
// full-width pattern.
func signExtend(d FormatDescriptor, sign, rest uint16) uint16 {
	return sign<<uint(d.ExpBits+d.ManBits) | rest
}

// nearestSearch performs a bit-by-bit nearest-candidate search: starting
// from the chosen sign bit, each subsequent
// position is resolved by comparing the two full-width candidates obtained
// by filling the remaining bits with all-1s (low) or all-0s (high), ties
// broken to even on the final bit.
func nearestSearch(d FormatDescriptor, sign uint16, x float64) uint16 {
	size := d.ExpBits + d.ManBits
	val := uint64(sign)
	for i := 1; i <= size; i++ {
		remaining := uint(size - i)
		low := (val << (1 + remaining)) | ((uint64(1) << remaining) - 1)
		high := (val << (1 + remaining)) | (uint64(1) << remaining)

		lowDiff := math.Abs(x - Decode(d.Format, uint16(low)))
		highDiff := math.Abs(x - Decode(d.Format, uint16(high)))

		var bit uint64
		switch {
		case lowDiff == highDiff:
			if i == size {
				bit = 0
			} else {
				bit = 1
			}
		case lowDiff < highDiff || math.IsNaN(highDiff):
			bit = 0
		default:
			bit = 1
		}
		val = (val << 1) | bit
	}
	return uint16(val)
}

// EncodeHex is a convenience wrapper producing a hex-string encoding.
func EncodeHex(f Format, x float64) string {
	d := descriptor(f)
	return FormatHex(Encode(f, x), d.Width)
}

// EncodeBin is a convenience wrapper producing a binary-string encoding.
func EncodeBin(f Format, x float64) string {
	d := descriptor(f)
	return FormatBin(Encode(f, x), d.Width)
}
