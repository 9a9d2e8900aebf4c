// Package linear implements the double-precision affine math used to place
// scene geometry in world space.
package linear

import "github.com/go-gl/mathgl/mgl64"

// V3 is a 3-component vector of float64. It converts to and from
// [mgl64.Vec3].
type V3 [3]float64

// AddV3 returns v + w.
func AddV3(v, w V3) V3 { return V3(mgl64.Vec3(v).Add(mgl64.Vec3(w))) }

// SubV3 returns v - w.
func SubV3(v, w V3) V3 { return V3(mgl64.Vec3(v).Sub(mgl64.Vec3(w))) }

// ScaleV3 returns s ⋅ v.
func ScaleV3(s float64, v V3) V3 { return V3(mgl64.Vec3(v).Mul(s)) }

// DotV3 returns v ⋅ w.
func DotV3(v, w V3) float64 { return mgl64.Vec3(v).Dot(mgl64.Vec3(w)) }

// LenV3 returns the length of v.
func LenV3(v V3) float64 { return mgl64.Vec3(v).Len() }

// Cross returns v × w.
func Cross(v, w V3) V3 { return V3(mgl64.Vec3(v).Cross(mgl64.Vec3(w))) }

// MinV3 returns the component-wise minimum of v and w.
func MinV3(v, w V3) (u V3) {
	for i := range u {
		u[i] = min(v[i], w[i])
	}
	return
}

// MaxV3 returns the component-wise maximum of v and w.
func MaxV3(v, w V3) (u V3) {
	for i := range u {
		u[i] = max(v[i], w[i])
	}
	return
}

// Clean replaces negative zero components of v with positive zero.
func Clean(v V3) V3 {
	for i := range v {
		if v[i] == 0 {
			v[i] = 0
		}
	}
	return v
}
