package math

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates between a and b. t is not clamped.
func Lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}

// Sign returns -1 for negative values and 1 otherwise.
func Sign(v float32) float32 {
	if v < 0 {
		return -1
	}
	return 1
}

// Abs returns the absolute value.
func Abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
