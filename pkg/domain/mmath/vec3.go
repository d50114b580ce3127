// 指示: miu200521358
package mmath

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// 軸インデックス。
const (
	AXIS_X = 0
	AXIS_Y = 1
	AXIS_Z = 2
)

// Vec3 は3次元ベクトルを表す。
type Vec3 struct {
	r3.Vec
}

var (
	// ZERO_VEC3 はゼロベクトル。
	ZERO_VEC3 = Vec3{}
	// ONE_VEC3 は全成分1のベクトル。
	ONE_VEC3 = Vec3{Vec: r3.Vec{X: 1, Y: 1, Z: 1}}
)

// NewVec3 は成分からVec3を生成する。
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{Vec: r3.Vec{X: x, Y: y, Z: z}}
}

// NewVec3ByValues はスライス先頭3要素からVec3を生成する。
func NewVec3ByValues(values []float64) Vec3 {
	if len(values) < 3 {
		return ZERO_VEC3
	}
	return NewVec3(values[0], values[1], values[2])
}

// Added は加算結果を返す。
func (v Vec3) Added(other Vec3) Vec3 {
	return Vec3{Vec: r3.Add(v.Vec, other.Vec)}
}

// Subed は減算結果を返す。
func (v Vec3) Subed(other Vec3) Vec3 {
	return Vec3{Vec: r3.Sub(v.Vec, other.Vec)}
}

// MuledScalar はスカラー倍を返す。
func (v Vec3) MuledScalar(s float64) Vec3 {
	return Vec3{Vec: r3.Scale(s, v.Vec)}
}

// Dot は内積を返す。
func (v Vec3) Dot(other Vec3) float64 {
	return r3.Dot(v.Vec, other.Vec)
}

// Length は長さを返す。
func (v Vec3) Length() float64 {
	return r3.Norm(v.Vec)
}

// Lerped は線形補間結果を返す。
func (v Vec3) Lerped(other Vec3, t float64) Vec3 {
	return v.Added(other.Subed(v).MuledScalar(t))
}

// Get は軸インデックスの成分を返す。
func (v Vec3) Get(axis int) float64 {
	switch axis {
	case AXIS_X:
		return v.X
	case AXIS_Y:
		return v.Y
	default:
		return v.Z
	}
}

// MaxAbsAxis は絶対値が最大の成分の軸を返す。同値はX,Y,Zの順で優先する。
func (v Vec3) MaxAbsAxis() int {
	axis := AXIS_X
	best := math.Abs(v.X)
	if math.Abs(v.Y) > best {
		axis = AXIS_Y
		best = math.Abs(v.Y)
	}
	if math.Abs(v.Z) > best {
		axis = AXIS_Z
	}
	return axis
}

// NearEquals は各成分が許容誤差内か判定する。
func (v Vec3) NearEquals(other Vec3, epsilon float64) bool {
	return math.Abs(v.X-other.X) <= epsilon &&
		math.Abs(v.Y-other.Y) <= epsilon &&
		math.Abs(v.Z-other.Z) <= epsilon
}

// ToArray は成分配列を返す。
func (v Vec3) ToArray() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// String は表示用文字列を返す。
func (v Vec3) String() string {
	return fmt.Sprintf("[%.5f, %.5f, %.5f]", v.X, v.Y, v.Z)
}
