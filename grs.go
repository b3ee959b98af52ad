package fpfma

// This file implements the GRS (guard/round/sticky) arithmetic core: a
// BF16 x BF16 -> FP32 multiply and an FP32 + FP32 -> FP32 add, built on a
// shared 25-bit "Q" mantissa word (a leading two-bit tag -- "01" for
// normal, "00" for subnormal -- followed by the 23-bit FP32 mantissa) and a
// shared round-to-nearest-even primitive. Both operations port the
// bit-string algorithms of grs.py's mul/add/round, rewritten as fixed-width
// unsigned integer shifts rather than dynamic strings.
//
// BF16 bit layout: 1 sign, 8 exponent, 7 mantissa. FP32: 1 sign, 8
// exponent, 23 mantissa. Both use the standard IEEE-754 bias of 127.

const (
	qNormalTag    = uint32(1) << 23 // the '01' prefix of a normal Q word
	qFieldMask    = uint32(1)<<25 - 1
	fp32ManMask   = uint32(1)<<23 - 1
	fp32ExpMask   = uint32(0xFF)
	fp32ImplicitQ = uint32(1) << 24 // bit 24: Q word's MSB
	fp32SecondQ   = uint32(1) << 23 // bit 23: Q word's second-from-top bit
)

func bf16Parts(bits uint16) (sig, exp, man uint32) {
	sig = uint32(bits>>15) & 1
	exp = uint32(bits>>7) & 0xFF
	man = uint32(bits) & 0x7F
	return
}

func fp32Parts(bits uint32) (sig, exp, man uint32) {
	sig = (bits >> 31) & 1
	exp = (bits >> 23) & 0xFF
	man = bits & fp32ManMask
	return
}

func fp32Pack(sig, exp, man uint32) uint32 {
	return sig<<31 | (exp&0xFF)<<23 | (man & fp32ManMask)
}

// grsRound applies the shared round-to-nearest(-even on a tie, via the
// Q word's own LSB parity) rule to a 25-bit Q word, per grs.py's round().
// toInf reports that rounding pushed the exponent past the representable
// range (the result is infinity).
func grsRound(exp, q, grd, rnd, stk uint32) (newExp, newQ uint32, toInf bool) {
	odd := q & 1
	if grd == 1 && (rnd == 1 || stk == 1 || odd == 1) {
		inc := q + 1
		if inc&fp32ImplicitQ != 0 {
			exp++
			if exp == 255 {
				return exp, 0, true
			}
			return exp, inc >> 1, false
		}
		return exp, inc, false
	}
	return exp, q, false
}

// GRSMultiply computes a*b where a and b are BF16-encoded bit patterns,
// returning an FP32-encoded result, using the 25-bit GRS mantissa core.
// Grounded in grs.py's mul().
func GRSMultiply(a, b uint16) uint32 {
	aSig, aExp, aMan := bf16Parts(a)
	bSig, bExp, bMan := bf16Parts(b)

	aNaN, aInf := aExp == 255 && aMan != 0, aExp == 255 && aMan == 0
	aSub, aZero := aExp == 0 && aMan != 0, aExp == 0 && aMan == 0
	bNaN, bInf := bExp == 255 && bMan != 0, bExp == 255 && bMan == 0
	bSub, bZero := bExp == 0 && bMan != 0, bExp == 0 && bMan == 0

	pSig := aSig ^ bSig
	pNaN := fp32Pack(pSig, 255, 1)
	pInf := fp32Pack(pSig, 255, 0)
	pZero := fp32Pack(pSig, 0, 0)

	switch {
	case aNaN || bNaN || (aInf && bZero) || (aZero && bInf):
		return pNaN
	case aInf || bInf:
		return pInf
	case aZero || bZero || (aSub && bSub):
		return pZero
	}

	if aSub {
		aSig, bSig = bSig, aSig
		aExp, bExp = bExp, aExp
		aMan, bMan = bMan, aMan
		aSub, bSub = bSub, aSub
	}

	aQ8 := (uint32(1) << 7) | aMan // '1' + 7-bit man, as an 8-bit field

	var bQ8 uint32
	bExpSigned := int(bExp)
	if bExp == 0 {
		leadZeros := 7 - manBitLen7(bMan)
		bExpSigned = int(bExp) - leadZeros
		bQ8 = bMan << uint(1+leadZeros)
	} else {
		bQ8 = (uint32(1) << 7) | bMan
	}

	pQ16 := aQ8 * bQ8 // product of two 8-bit Q fields, fits in 16 bits
	pExp := int(aExp) + bExpSigned - 127

	var pQ uint32
	switch {
	case pExp <= -8:
		pQ = pQ16
		pExp += 9
	case pExp <= 0:
		pQ = pQ16 << uint(8+pExp)
		pExp = 1
	default:
		pQ = pQ16 << 9
	}

	var grd, rnd, stk uint32
	switch {
	case pExp <= 0:
		shifts := 0
		target := 18
		if v := 1 - pExp; v < target {
			target = v
		}
		for shifts < target {
			stk = orBit(stk, rnd)
			rnd = grd
			grd = pQ & 1
			pQ >>= 1
			pExp++
			shifts++
		}
		pExp = 1
	case (pQ>>24)&1 == 1:
		pQ >>= 1
		pExp++
	}

	if pExp >= 255 {
		return pInf
	}

	newExp, newQ, toInf := grsRound(uint32(pExp), pQ&qFieldMask, grd, rnd, stk)
	if toInf || newExp == 255 {
		return pInf
	}
	pExp = int(newExp)
	pQ = newQ

	var pMan uint32
	if (pQ>>23)&1 == 1 {
		pMan = pQ & fp32ManMask
	} else {
		pExp = 0
		pMan = pQ & fp32ManMask
	}
	return fp32Pack(pSig, uint32(pExp), pMan)
}

// manBitLen7 returns the number of bits needed to represent a nonzero
// 7-bit mantissa field v (1..127): e.g. 1 -> 1, 127 -> 7.
func manBitLen7(v uint32) int {
	n := 0
	for v != 0 {
		n++
		v >>= 1
	}
	return n
}

func orBit(a, b uint32) uint32 {
	if a == 1 || b == 1 {
		return 1
	}
	return 0
}

// GRSAdd computes a+b where a and b are FP32-encoded bit patterns,
// returning an FP32-encoded result, using the same 25-bit GRS mantissa
// core as GRSMultiply. Grounded in grs.py's add() -- specifically the
// conditional add-or-subtract variant it keeps live (grs.py also keeps a
// two's-complement variant commented out; not used here).
func GRSAdd(a, b uint32) uint32 {
	aSig, aExp, aMan := fp32Parts(a)
	bSig, bExp, bMan := fp32Parts(b)

	aNaN, aInf := aExp == 255 && aMan != 0, aExp == 255 && aMan == 0
	aSub, aZero := aExp == 0 && aMan != 0, aExp == 0 && aMan == 0
	bNaN, bInf := bExp == 255 && bMan != 0, bExp == 255 && bMan == 0
	bSub, bZero := bExp == 0 && bMan != 0, bExp == 0 && bMan == 0
	_, _ = aSub, bSub

	if aExp < bExp || (aExp == bExp && aMan < bMan) {
		aSig, bSig = bSig, aSig
		aExp, bExp = bExp, aExp
		aMan, bMan = bMan, aMan
		aNaN, bNaN = bNaN, aNaN
		aInf, bInf = bInf, aInf
		aZero, bZero = bZero, aZero
		a, b = b, a
	}

	sSig := aSig
	sNaN := fp32Pack(sSig, 255, 1)
	sInf := fp32Pack(sSig, 255, 0)
	sZero := fp32Pack(aSig&bSig, 0, 0)

	switch {
	case aNaN || bNaN || (aInf && bInf && aSig != bSig):
		return sNaN
	case aInf || bInf:
		return sInf
	case aZero && bZero:
		return sZero
	case aZero || bZero:
		if aZero {
			return b
		}
		return a
	}

	var aQ, bQ uint32
	if aExp == 0 {
		aQ = aMan
		aExp = 1
	} else {
		aQ = qNormalTag | aMan
	}
	if bExp == 0 {
		bQ = bMan
		bExp = 1
	} else {
		bQ = qNormalTag | bMan
	}

	var grd, rnd, stk uint32
	if aExp != bExp {
		targetShift := aExp - bExp
		for shift := uint32(0); shift < targetShift; shift++ {
			if bQ == 0 && grd == 0 && rnd == 0 {
				break
			}
			stk = orBit(stk, rnd)
			rnd = grd
			grd = bQ & 1
			bQ >>= 1
		}
	}

	var sQ uint32
	sExp := aExp
	if aSig == bSig {
		sQ = aQ + bQ
	} else {
		a28 := uint64(aQ) << 3
		b28 := uint64(bQ)<<3 | uint64(grd)<<2 | uint64(rnd)<<1 | uint64(stk)
		diff := a28 - b28
		sQ = uint32(diff >> 3)
		grd = uint32((diff >> 2) & 1)
		rnd = uint32((diff >> 1) & 1)
		stk = uint32(diff & 1)
	}

	switch {
	case (sQ>>24)&1 == 1:
		stk = orBit(stk, rnd)
		rnd = grd
		grd = sQ & 1
		sQ >>= 1
		sExp++
	case (sQ>>23)&1 == 1:
		// already normalized
	case sExp > 1:
		for (sQ>>23)&1 == 0 && sExp > 1 {
			sExp--
			sQ = ((sQ << 1) | grd) & qFieldMask
			grd = rnd
			rnd = stk
			stk = 0
		}
	}

	if sExp == 255 {
		return sInf
	}

	newExp, newQ, toInf := grsRound(sExp, sQ&qFieldMask, grd, rnd, stk)
	if toInf || newExp == 255 {
		return sInf
	}
	sExp = newExp
	sQ = newQ

	var sMan uint32
	if (sQ>>23)&1 == 1 {
		sMan = sQ & fp32ManMask
	} else {
		sExp = 0
		sMan = sQ & fp32ManMask
		if sMan == 0 {
			sSig = aSig & bSig
		}
	}
	return fp32Pack(sSig, sExp, sMan)
}
