package fpfma

import x448float16 "github.com/x448/float16"

// ToX448 reinterprets an FP16 encoding as an x448/float16 Float16 value, for
// callers that want to hand a decoded result to the wider float16 ecosystem
// (e.g. to print it, or feed it to code already built against that package).
// Only valid for the FP16 format -- E5M2/E4M3 have no x448 counterpart.
func ToX448(bits uint16) x448float16.Float16 {
	return x448float16.Frombits(bits)
}

// FromX448 converts an x448/float16 Float16 value to this package's FP16
// encoding. The two types share an identical bit layout (1/5/10, bias 15),
// so this is a bit-reinterpretation, not a conversion.
func FromX448(f x448float16.Float16) uint16 {
	return f.Bits()
}

// EncodeFP16FromFloat32 rounds a float32 to FP16 via x448/float16's own
// Fromfloat32 and returns x448's bits unchecked. crosscheck_test.go
// compares its result against this package's Encode(FP16, ...); the two
// diverge on NaN payload bits (x448 preserves them, this package's
// canonical NaN does not) and on the sign of a negative input that rounds
// to zero (x448 returns -0, Encode returns +0).
func EncodeFP16FromFloat32(x float32) uint16 {
	return x448float16.Fromfloat32(x).Bits()
}

// DecodeFP16ToFloat32 decodes an FP16 bit pattern via x448/float16's own
// Float32 method, for the same cross-check purpose.
func DecodeFP16ToFloat32(bits uint16) float32 {
	return x448float16.Frombits(bits).Float32()
}
