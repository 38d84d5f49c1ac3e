package fixmath

// Float to fixed: multiply by 2^n and round to the nearest integer.
// Fixed to float: treat the value as an integer and multiply by 2^-n.

// Q0n7FromFloat converts a float to Q0n7.
func Q0n7FromFloat(x float32) Q0n7 { return Q0n7(scale(x, Q0n7Bits)) }

// Float converts a Q0n7 to float.
func (v Q0n7) Float() float32 { return unscale(int64(v), Q0n7Bits) }

// Q0n8FromFloat converts a float to Q0n8.
func Q0n8FromFloat(x float32) Q0n8 { return Q0n8(scale(x, Q0n8Bits)) }

// Float converts a Q0n8 to float.
func (v Q0n8) Float() float32 { return unscale(int64(v), Q0n8Bits) }

// Q7n8FromInt8 converts a whole number to Q7n8.
func Q7n8FromInt8(a int8) Q7n8 { return Q7n8(int16(a) << Q7n8Bits) }

// Int8 returns the integer part of v, rounding toward negative infinity.
func (v Q7n8) Int8() int8 { return int8(v >> Q7n8Bits) }

// Q7n8FromFloat converts a float to Q7n8.
func Q7n8FromFloat(x float32) Q7n8 { return Q7n8(scale(x, Q7n8Bits)) }

// Float converts a Q7n8 to float.
func (v Q7n8) Float() float32 { return unscale(int64(v), Q7n8Bits) }

// Q8n8FromUint8 converts a whole number to Q8n8.
func Q8n8FromUint8(a uint8) Q8n8 { return Q8n8(uint16(a) << Q8n8Bits) }

// Uint8 returns the integer part of v.
func (v Q8n8) Uint8() uint8 { return uint8(v >> Q8n8Bits) }

// Q8n8FromFloat converts a float to Q8n8.
func Q8n8FromFloat(x float32) Q8n8 { return Q8n8(scale(x, Q8n8Bits)) }

// Float converts a Q8n8 to float.
func (v Q8n8) Float() float32 { return unscale(int64(v), Q8n8Bits) }

// Q1n14FromFloat converts a float to Q1n14.
func Q1n14FromFloat(x float32) Q1n14 { return Q1n14(scale(x, Q1n14Bits)) }

// Float converts a Q1n14 to float.
func (v Q1n14) Float() float32 { return unscale(int64(v), Q1n14Bits) }

// Q1n15FromFloat converts a float to Q1n15.
func Q1n15FromFloat(x float32) Q1n15 { return Q1n15(scale(x, Q1n15Bits)) }

// Float converts a Q1n15 to float.
func (v Q1n15) Float() float32 { return unscale(int64(v), Q1n15Bits) }

// Q8n24FromFloat converts a float to Q8n24.
func Q8n24FromFloat(x float32) Q8n24 { return Q8n24(scale(x, Q8n24Bits)) }

// Float converts a Q8n24 to float. float32 keeps 24 significant bits, so
// values above 1.0 lose the lowest fractional bits.
func (v Q8n24) Float() float32 { return unscale(int64(v), Q8n24Bits) }

// Q16n16FromFloat converts a float to Q16n16.
func Q16n16FromFloat(x float32) Q16n16 { return Q16n16(scale(x, Q16n16Bits)) }

// Float converts a Q16n16 to float.
func (v Q16n16) Float() float32 { return unscale(int64(v), Q16n16Bits) }

// Format-to-format conversions. Widening shifts left by the difference in
// fractional bits and is exact; narrowing shifts right and truncates.

// Q1n14 widens a Q0n7 to Q1n14.
func (v Q0n7) Q1n14() Q1n14 { return Q1n14(v) << (Q1n14Bits - Q0n7Bits) }

// Q0n7 narrows a Q1n14 to Q0n7.
func (v Q1n14) Q0n7() Q0n7 { return Q0n7(v >> (Q1n14Bits - Q0n7Bits)) }

// Q1n15 widens a Q0n8 to Q1n15.
func (v Q0n8) Q1n15() Q1n15 { return Q1n15(v) << (Q1n15Bits - Q0n8Bits) }

// Q0n8 narrows a Q1n15 to Q0n8.
func (v Q1n15) Q0n8() Q0n8 { return Q0n8(v >> (Q1n15Bits - Q0n8Bits)) }

// Q8n24 widens a Q0n8 to Q8n24.
func (v Q0n8) Q8n24() Q8n24 { return Q8n24(v) << (Q8n24Bits - Q0n8Bits) }

// Q0n8 narrows a Q8n24 to Q0n8.
func (v Q8n24) Q0n8() Q0n8 { return Q0n8(v >> (Q8n24Bits - Q0n8Bits)) }

// Q16n16 widens a Q0n8 to Q16n16.
func (v Q0n8) Q16n16() Q16n16 { return Q16n16(v) << (Q16n16Bits - Q0n8Bits) }

// Q0n8 narrows a Q16n16 to Q0n8.
func (v Q16n16) Q0n8() Q0n8 { return Q0n8(v >> (Q16n16Bits - Q0n8Bits)) }
