package refine

import gomath "math"

// Deterministic 2D value noise in [0,1] from hashed lattice values.

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func hash2(x, z, seed int64) uint64 {
	v := uint64(x) + (uint64(z) << 1) + uint64(seed)*0x9E3779B97F4A7C15
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

func lattice(x, z, seed int64) float64 {
	return float64(hash2(x, z, seed)&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

func valueNoise(x, z float64, seed int64) float64 {
	x0, z0 := gomath.Floor(x), gomath.Floor(z)
	fx, fz := fade(x-x0), fade(z-z0)
	ix, iz := int64(x0), int64(z0)

	i0 := lerp(lattice(ix, iz, seed), lattice(ix+1, iz, seed), fx)
	i1 := lerp(lattice(ix, iz+1, seed), lattice(ix+1, iz+1, seed), fx)
	return lerp(i0, i1, fz)
}
