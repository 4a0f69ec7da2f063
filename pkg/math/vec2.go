// Package math provides the float32 vector, quaternion and matrix types used by
// the sculpting engine.
package math

import "math"

// Vec2 is a 2D vector. Grid positions use X for the column and Y for the row.
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product.
func (v Vec2) Dot(other Vec2) float32 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z component of the 3D cross product of v and other.
func (v Vec2) Cross(other Vec2) float32 {
	return v.X*other.Y - v.Y*other.X
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Normalize returns a unit vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Distance returns the distance to another point.
func (v Vec2) Distance(other Vec2) float32 {
	return v.Sub(other).Length()
}

// SignedAngle returns the angle from v to other in degrees, in [-180, 180].
// The sign follows the z component of v × other; a zero cross product counts
// as positive. Zero-length inputs yield 0.
func (v Vec2) SignedAngle(other Vec2) float32 {
	a := v.Normalize()
	b := other.Normalize()
	if a == (Vec2{}) || b == (Vec2{}) {
		return 0
	}
	cos := Clamp(a.Dot(b), -1, 1)
	deg := float32(math.Acos(float64(cos)) * 180 / math.Pi)
	return deg * Sign(a.Cross(b))
}
