package common

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Identity returns a 4x4 identity matrix.
// All matrices in this module are stored in column-major order, matching the glTF and mgl32 conventions.
//
// Returns:
//   - mgl32.Mat4: the identity matrix
func Identity() mgl32.Mat4 {
	return mgl32.Ident4()
}

// Mat4FromSlice copies a flat 16-element column-major slice into a Mat4.
//
// Parameters:
//   - values: the source values (must contain exactly 16 elements)
//
// Returns:
//   - mgl32.Mat4: the matrix
//   - error: error if the slice does not hold 16 elements
func Mat4FromSlice(values []float32) (mgl32.Mat4, error) {
	var m mgl32.Mat4
	if len(values) != len(m) {
		return m, fmt.Errorf("matrix must have %d elements, got %d", len(m), len(values))
	}
	copy(m[:], values)
	return m, nil
}

// QuatFromXYZW builds a quaternion from the glTF [x, y, z, w] component order.
// The quaternion is not normalized; callers supply unit quaternions.
//
// Parameters:
//   - r: rotation components in x, y, z, w order
//
// Returns:
//   - mgl32.Quat: the quaternion
func QuatFromXYZW(r [4]float32) mgl32.Quat {
	return mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
}

// ComposeTRS builds a local transform from translation, rotation and scale.
// Result: T * R * S, so scale is applied first and translation last.
//
// Parameters:
//   - t: translation
//   - r: rotation quaternion
//   - s: per-axis scale
//
// Returns:
//   - mgl32.Mat4: the composed matrix
func ComposeTRS(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	translate := mgl32.Translate3D(t[0], t[1], t[2])
	scale := mgl32.Scale3D(s[0], s[1], s[2])
	return translate.Mul4(r.Mat4()).Mul4(scale)
}

// Mul4 multiplies two 4x4 matrices.
// Result: a * b, so b is applied first when transforming a point.
//
// Parameters:
//   - a: left-hand matrix
//   - b: right-hand matrix
//
// Returns:
//   - mgl32.Mat4: the product
func Mul4(a, b mgl32.Mat4) mgl32.Mat4 {
	return a.Mul4(b)
}
