package sample

// Downsample reduces src to at most maxPoints values by decimation, for
// display. It reuses dst if it has sufficient capacity, otherwise it
// allocates. If len(src) <= maxPoints, all values are copied.
func Downsample[T any](dst []T, src []T, maxPoints int) []T {
	if len(src) <= maxPoints {
		if cap(dst) >= len(src) {
			dst = dst[:len(src)]
			copy(dst, src)
			return dst
		}
		result := make([]T, len(src))
		copy(result, src)
		return result
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0] // Reset length but keep capacity
	} else {
		dst = make([]T, 0, maxPoints)
	}

	// Step size for decimation
	step := float64(len(src)) / float64(maxPoints)

	for i := range maxPoints {
		idx := int(float64(i) * step)
		if idx < len(src) {
			dst = append(dst, src[idx])
		}
	}

	return dst
}
