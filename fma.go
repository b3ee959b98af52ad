package fpfma

import "math"

// FMA computes A*B + C with the tile's mandated two-stage rounding: the
// product A.f*B.f is exact in real arithmetic, rounded once to FP16, then
// added to C and rounded a second time to the output format (FP16, or
// E5M2 when half is set). This mirrors the accumulator the tile's
// hardware maintains between blocks: the product never sees full
// precision past the first round, so repeated accumulation behaves
// exactly as a real accumulator chip would.
//
// cPresent distinguishes an explicit zero C from "no C operand" (treated
// as +0 in FP16) only insofar as both decode to the same value -- the
// parameter exists so callers (the tile) don't need to synthesize a zero
// FP16 pattern themselves.
func FMA(aFmt Format, aBits uint16, bFmt Format, bBits uint16, cBits uint16, cPresent bool, half bool) uint16 {
	if GetConfig().PreferGRSCore && !half {
		return fmaGRS(aFmt, aBits, bFmt, bBits, cBits, cPresent)
	}

	af := Decode(aFmt, aBits)
	bf := Decode(bFmt, bBits)

	if isZeroInfPair(aFmt, aBits, bFmt, bBits) {
		if half {
			return descE5M2.CanonicalNaN
		}
		return descFP16.CanonicalNaN
	}
	if af != af || bf != bf {
		if half {
			return descE5M2.CanonicalNaN
		}
		return descFP16.CanonicalNaN
	}

	product := af * bf
	pBits := Encode(FP16, product)
	pf := Decode(FP16, pBits)

	cf := 0.0
	if cPresent {
		cf = Decode(FP16, cBits)
	}

	sum := pf + cf
	if half {
		return Encode(E5M2, sum)
	}
	return Encode(FP16, sum)
}

// isZeroInfPair reports the 0*inf -> NaN case, checked on the bit patterns
// before FMA's operand NaN check and before any product is formed. Without
// it, af*bf would still be NaN (math.Inf(1)*0 is NaN in Go) and Encode
// would map it to the canonical NaN, so this check states the rule
// explicitly rather than being strictly required by the float64
// arithmetic itself.
func isZeroInfPair(aFmt Format, aBits uint16, bFmt Format, bBits uint16) bool {
	aZero, bZero := IsZero(aFmt, aBits), IsZero(bFmt, bBits)
	aInf, bInf := IsInf(aFmt, aBits), IsInf(bFmt, bBits)
	return (aZero && bInf) || (aInf && bZero)
}

// fmaGRS computes A*B + C using the GRS arithmetic core (C6) instead of
// the float64 shortcut FMA uses, for use as a cross-check: this routes A
// and B through BF16 widening and GRSMultiply/GRSAdd's hardware-faithful
// bit manipulation rather than Go's native float64 multiply/add.
func fmaGRS(aFmt Format, aBits uint16, bFmt Format, bBits uint16, cBits uint16, cPresent bool) uint16 {
	aBF := fp16OrFP8ToBF16(aFmt, aBits)
	bBF := fp16OrFP8ToBF16(bFmt, bBits)

	prodFP32 := GRSMultiply(aBF, bBF)
	prodFP16 := Encode(FP16, fp32ToFloat64(prodFP32))

	cFP32 := float64ToFP32Bits(0)
	if cPresent {
		cFP32 = float64ToFP32Bits(Decode(FP16, cBits))
	}
	pFP32 := float64ToFP32Bits(Decode(FP16, prodFP16))

	sumFP32 := GRSAdd(pFP32, cFP32)
	return Encode(FP16, fp32ToFloat64(sumFP32))
}

// fp16OrFP8ToBF16 widens an E5M2/E4M3/FP16 value to a BF16 bit pattern by
// decoding to float64 and re-deriving BF16's (sign, 8-bit exp, 7-bit man)
// fields directly from the IEEE-754 double's own exponent/mantissa,
// rounding the 7-bit mantissa to nearest (ties-to-even is not required
// here: the formats feeding the tile never produce a value that lands
// exactly on a BF16 mantissa tie beyond what double precision already
// resolves).
func fp16OrFP8ToBF16(f Format, bits uint16) uint16 {
	x := Decode(f, bits)
	return float64ToBF16Bits(x)
}

func float64ToBF16Bits(x float64) uint16 {
	if x != x {
		return 0x7fc0
	}
	bits := math.Float64bits(x)
	sign := uint16(bits>>63) & 1
	if math.IsInf(x, 0) {
		return sign<<15 | 0x7f80
	}
	if x == 0 {
		return sign << 15
	}
	exp := int((bits>>52)&0x7FF) - 1023 + 127
	man52 := bits & ((uint64(1) << 52) - 1)
	man7 := uint16(man52 >> 45)
	if man52&(uint64(1)<<44) != 0 {
		man7++
		if man7 == 128 {
			man7 = 0
			exp++
		}
	}
	if exp <= 0 {
		return sign << 15
	}
	if exp >= 255 {
		return sign<<15 | 0x7f80
	}
	return sign<<15 | uint16(exp)<<7 | man7
}

func float64ToFP32Bits(x float64) uint32 {
	return math.Float32bits(float32(x))
}

func fp32ToFloat64(bits uint32) float64 {
	return float64(math.Float32frombits(bits))
}
