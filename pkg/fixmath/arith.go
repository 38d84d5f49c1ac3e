package fixmath

// Mul multiplies two Q7n8 numbers. The product is formed at full width before
// shifting back, so only the bits below 2^-8 are lost.
func (v Q7n8) Mul(b Q7n8) Q7n8 {
	return Q7n8((int32(v) * int32(b)) >> Q7n8Bits)
}

// Div divides v by b. b must not be zero.
func (v Q7n8) Div(b Q7n8) Q7n8 {
	return Q7n8((int32(v) << Q7n8Bits) / int32(b))
}

// Sqrt returns the square root of v, truncated to 8 fractional bits.
// Negative inputs return 0.
func (v Q7n8) Sqrt() Q7n8 {
	if v <= 0 {
		return 0
	}
	return Q7n8(isqrt(uint32(v) << Q7n8Bits))
}

// Mul multiplies two Q16n16 numbers, keeping the low 32 bits of the result.
func (v Q16n16) Mul(b Q16n16) Q16n16 {
	return Q16n16((uint64(v) * uint64(b)) >> Q16n16Bits)
}

// isqrt computes floor(sqrt(x)) one result bit at a time.
func isqrt(x uint32) uint32 {
	var root uint32
	bit := uint32(1) << 30
	for bit > x {
		bit >>= 2
	}
	for bit != 0 {
		if x >= root+bit {
			x -= root + bit
			root = root>>1 + bit
		} else {
			root >>= 1
		}
		bit >>= 2
	}
	return root
}
