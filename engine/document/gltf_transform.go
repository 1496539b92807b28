package document

import (
	"github.com/Carmen-Shannon/oxy-gltf/common"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a node's local transform: either a MatrixTransform or a TRSTransform.
// The two forms are mutually exclusive in the document.
type Transform interface {
	// Local returns the local transform matrix (column-major).
	Local() mgl32.Mat4
}

// MatrixTransform is a local transform given as an explicit 4x4 matrix.
type MatrixTransform struct {
	M mgl32.Mat4
}

// TRSTransform is a local transform given as translation, rotation and scale components.
type TRSTransform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

var (
	_ Transform = MatrixTransform{}
	_ Transform = TRSTransform{}
)

// DefaultTRS returns the transform used when a node declares no TRS fields:
// zero translation, identity rotation, unit scale.
func DefaultTRS() TRSTransform {
	return TRSTransform{
		Translation: mgl32.Vec3{0, 0, 0},
		Rotation:    mgl32.QuatIdent(),
		Scale:       mgl32.Vec3{1, 1, 1},
	}
}

func (t MatrixTransform) Local() mgl32.Mat4 {
	return t.M
}

func (t TRSTransform) Local() mgl32.Mat4 {
	return common.ComposeTRS(t.Translation, t.Rotation, t.Scale)
}
