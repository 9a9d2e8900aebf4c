package linear

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// A is an affine transform stored as a column-major homogeneous matrix whose
// bottom row is (0, 0, 0, 1). The zero value is not a transform; set it with
// one of the methods below.
type A mgl64.Mat4

func (m *A) mat() mgl64.Mat4 { return mgl64.Mat4(*m) }

// I makes m an identity matrix.
func (m *A) I() { *m = A(mgl64.Ident4()) }

// Mul sets m to contain l ⋅ r.
func (m *A) Mul(l, r *A) { *m = A(l.mat().Mul4(r.mat())) }

// Scale sets m to contain a scale transform.
func (m *A) Scale(s V3) { *m = A(mgl64.Scale3D(s[0], s[1], s[2])) }

// Translate sets m to contain a translation transform.
func (m *A) Translate(t V3) { *m = A(mgl64.Translate3D(t[0], t[1], t[2])) }

// RotateX sets m to contain a right-hand rotation of deg degrees about x.
func (m *A) RotateX(deg float64) { *m = rotation(mgl64.HomogRotate3DX, deg) }

// RotateY sets m to contain a right-hand rotation of deg degrees about y.
func (m *A) RotateY(deg float64) { *m = rotation(mgl64.HomogRotate3DY, deg) }

// RotateZ sets m to contain a right-hand rotation of deg degrees about z.
func (m *A) RotateZ(deg float64) { *m = rotation(mgl64.HomogRotate3DZ, deg) }

// TRS sets m to contain T ⋅ Rz ⋅ Ry ⋅ Rx ⋅ S, where rotate holds the x, y and z
// angles in degrees.
func (m *A) TRS(translate, rotate, scale V3) {
	var t, rx, ry, rz, s A
	t.Translate(translate)
	rx.RotateX(rotate[0])
	ry.RotateY(rotate[1])
	rz.RotateZ(rotate[2])
	s.Scale(scale)
	m.Mul(&rx, &s)
	m.Mul(&ry, m)
	m.Mul(&rz, m)
	m.Mul(&t, m)
}

// Point returns m applied to the position p.
func (m *A) Point(p V3) V3 {
	return V3(mgl64.TransformCoordinate(mgl64.Vec3(p), m.mat()))
}

// Vector returns the linear part of m applied to v.
// Translation does not affect directions.
func (m *A) Vector(v V3) V3 {
	return V3(mgl64.TransformNormal(mgl64.Vec3(v), m.mat()))
}

// rotation returns rotate at deg degrees, exact at multiples of a right
// angle.
func rotation(rotate func(rad float64) mgl64.Mat4, deg float64) A {
	r := rotate(mgl64.DegToRad(deg))

	if q := deg / 90; q == math.Trunc(q) {
		for i := range r {
			r[i] = math.Round(r[i])
		}
	}

	return A(r)
}
