// Package fpfma implements a bit-exact reference model for a reduced-precision
// tensor-arithmetic tile: encode/decode/round-to-nearest-even conversion
// between FP16, E5M2 and E4M3, a fused multiply-add primitive that mirrors
// the hardware's two-stage (multiply-then-round, add-then-round) pipeline,
// a guard/round/sticky (GRS) BF16*BF16->FP32 multiply and FP32+FP32->FP32
// add used to cross-check that pipeline, and a 2x2 systolic tile driven by a
// nibble-serial packet protocol.
//
// # Formats
//
// Three formats are supported, dispatched on the explicit Format parameter
// rather than through separate Go types:
//   - FP16:  1 sign, 5 exponent, 10 mantissa bits, bias 15, has +/-Inf.
//   - E5M2:  1 sign, 5 exponent,  2 mantissa bits, bias 15, has +/-Inf.
//   - E4M3:  1 sign, 4 exponent,  3 mantissa bits, bias 7, no infinity;
//     0x7e/0xfe saturate to the finite MAX instead of overflowing.
//
// Encoded values travel as a uint16 holding the format's bits right-aligned
// (the unused high bits are zero for the 8-bit formats); Hex/Bin string
// forms are available at the API boundary via ParseHex/ParseBin and
// FormatHex/FormatBin.
//
// # Rounding
//
// Only round-to-nearest, ties-to-even is supported: no alternate rounding
// modes, no exception flags, no signalling-NaN payloads. Decode/Encode
// round-trip under rounding idempotence: Encode(Decode(x)) == x for every
// non-NaN, non-negative-zero code point.
//
// # Error handling
//
// Numeric exceptions (overflow, underflow, invalid multiply) are in-band:
// they show up as +/-Inf, a subnormal, or NaN in the returned bits, never as
// a Go error. The only error path is a programmer error -- a malformed bit
// string, a bit pattern wider than its format, an unrecognized Format or
// tile control address -- which is an invariant violation and panics with
// an *FPError identifying the failing invariant. The GRS core bounds its
// shift loops by construction and makes no invariant check of its own.
// Config.OnInvariantViolation can observe each violation before the panic;
// it does not prevent the panic.
package fpfma

// Version identifies this module's release for diagnostic output.
const Version = "1.0.0"
