// Package fixmath provides fixed-point number formats for integer-only audio paths.
//
// Each format is a distinct integer type named after its layout: QmNn has m
// integer bits and n fractional bits, so the backing integer divided by 2^n is
// the represented real number. Conversions never check for overflow; values
// outside the representable range wrap like any other Go integer.
package fixmath

import "github.com/chewxy/math32"

// Q0n7 is a signed fraction with 7 fractional bits, -1.0 to 0.992.
type Q0n7 int8

// Q0n8 is an unsigned fraction with 8 fractional bits, 0 to 0.996.
type Q0n8 uint8

// Q7n8 is a signed number with 7 integer bits and 8 fractional bits, -128 to 127.996.
type Q7n8 int16

// Q8n8 is an unsigned number with 8 integer bits and 8 fractional bits, 0 to 255.996.
type Q8n8 uint16

// Q1n14 is a signed number with 1 integer bit and 14 fractional bits, -2 to 1.999.
type Q1n14 int16

// Q1n15 is an unsigned number with 1 integer bit and 15 fractional bits, 0 to 1.999.
type Q1n15 uint16

// Q8n24 is an unsigned number with 8 integer bits and 24 fractional bits, 0 to 255.999.
type Q8n24 uint32

// Q16n16 is an unsigned number with 16 integer bits and 16 fractional bits, 0 to 65535.999.
type Q16n16 uint32

// Fractional bit counts.
const (
	Q0n7Bits   = 7
	Q0n8Bits   = 8
	Q7n8Bits   = 8
	Q8n8Bits   = 8
	Q1n14Bits  = 14
	Q1n15Bits  = 15
	Q8n24Bits  = 24
	Q16n16Bits = 16
)

// Representations of 1 (Q0n7 cannot hold 1, so it gets the nearest value).
const (
	Q0n7One   Q0n7   = 127
	Q7n8One   Q7n8   = 1 << Q7n8Bits
	Q8n8One   Q8n8   = 1 << Q8n8Bits
	Q1n14One  Q1n14  = 1 << Q1n14Bits
	Q1n15One  Q1n15  = 1 << Q1n15Bits
	Q8n24One  Q8n24  = 1 << Q8n24Bits
	Q16n16One Q16n16 = 1 << Q16n16Bits
)

// Low15Bits masks the fractional part of a Q1n15.
const Low15Bits Q1n15 = 1<<15 - 1

// scale returns round(x * 2^bits) as int64. Wrapping to the target width is
// left to the caller's conversion.
func scale(x float32, bits int) int64 {
	return int64(math32.Round(math32.Ldexp(x, bits)))
}

// unscale returns v / 2^bits.
func unscale(v int64, bits int) float32 {
	return math32.Ldexp(float32(v), -bits)
}
