// 指示: miu200521358
package mmath

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quaternion は回転クォータニオンを表す。
type Quaternion struct {
	q mgl64.Quat
}

// NewQuaternion は単位クォータニオンを生成する。
func NewQuaternion() Quaternion {
	return Quaternion{q: mgl64.QuatIdent()}
}

// NewQuaternionByValues はx,y,z,w成分からクォータニオンを生成する。
func NewQuaternionByValues(x, y, z, w float64) Quaternion {
	return Quaternion{q: mgl64.Quat{W: w, V: mgl64.Vec3{x, y, z}}}
}

// NewQuaternionFromAxisAngle は軸と角度(ラジアン)からクォータニオンを生成する。
func NewQuaternionFromAxisAngle(axis Vec3, radians float64) Quaternion {
	return Quaternion{q: mgl64.QuatRotate(radians, mgl64.Vec3{axis.X, axis.Y, axis.Z}.Normalize())}
}

// X はx成分を返す。
func (q Quaternion) X() float64 { return q.q.V[0] }

// Y はy成分を返す。
func (q Quaternion) Y() float64 { return q.q.V[1] }

// Z はz成分を返す。
func (q Quaternion) Z() float64 { return q.q.V[2] }

// W はw成分を返す。
func (q Quaternion) W() float64 { return q.q.W }

// Muled は q * other を返す。
func (q Quaternion) Muled(other Quaternion) Quaternion {
	return Quaternion{q: q.q.Mul(other.q)}
}

// Inverted は逆クォータニオンを返す。
func (q Quaternion) Inverted() Quaternion {
	return Quaternion{q: q.q.Inverse()}
}

// Conjugated は共役を返す。
func (q Quaternion) Conjugated() Quaternion {
	return Quaternion{q: q.q.Conjugate()}
}

// Normalized は正規化結果を返す。長さ0の場合は単位クォータニオンとなる。
func (q Quaternion) Normalized() Quaternion {
	return Quaternion{q: q.q.Normalize()}
}

// Length はノルムを返す。
func (q Quaternion) Length() float64 {
	return q.q.Len()
}

// Dot は4成分の内積を返す。
func (q Quaternion) Dot(other Quaternion) float64 {
	return q.q.Dot(other.q)
}

// Negated は全成分の符号を反転する。表す回転は同じ。
func (q Quaternion) Negated() Quaternion {
	return Quaternion{q: q.q.Scale(-1)}
}

// ScaledComponents は成分ごとに係数を掛けた結果を返す。
func (q Quaternion) ScaledComponents(sx, sy, sz, sw float64) Quaternion {
	return NewQuaternionByValues(q.X()*sx, q.Y()*sy, q.Z()*sz, q.W()*sw)
}

// PositiveW はw>=0の半球へ寄せた結果を返す。
func (q Quaternion) PositiveW() Quaternion {
	if q.q.W < 0 {
		return q.Negated()
	}
	return q
}

// Slerp は最短経路の球面線形補間を返す。
func (q Quaternion) Slerp(other Quaternion, t float64) Quaternion {
	target := other
	if q.Dot(other) < 0 {
		target = other.Negated()
	}
	return Quaternion{q: mgl64.QuatSlerp(q.q, target.q, t)}
}

// Rotated はベクトルを回転した結果を返す。
func (q Quaternion) Rotated(v Vec3) Vec3 {
	r := q.q.Rotate(mgl64.Vec3{v.X, v.Y, v.Z})
	return NewVec3(r[0], r[1], r[2])
}

// NearEquals は各成分が許容誤差内か判定する。
func (q Quaternion) NearEquals(other Quaternion, epsilon float64) bool {
	return math.Abs(q.X()-other.X()) <= epsilon &&
		math.Abs(q.Y()-other.Y()) <= epsilon &&
		math.Abs(q.Z()-other.Z()) <= epsilon &&
		math.Abs(q.W()-other.W()) <= epsilon
}

// SameRotation は符号違いを同一視して回転が許容誤差内か判定する。
func (q Quaternion) SameRotation(other Quaternion, epsilon float64) bool {
	return q.NearEquals(other, epsilon) || q.NearEquals(other.Negated(), epsilon)
}

// IsIdent は単位回転か判定する。
func (q Quaternion) IsIdent(epsilon float64) bool {
	return q.SameRotation(NewQuaternion(), epsilon)
}

// ToArray は[x,y,z,w]配列を返す。
func (q Quaternion) ToArray() [4]float64 {
	return [4]float64{q.X(), q.Y(), q.Z(), q.W()}
}

// String は表示用文字列を返す。
func (q Quaternion) String() string {
	return fmt.Sprintf("[x=%.5f, y=%.5f, z=%.5f, w=%.5f]", q.X(), q.Y(), q.Z(), q.W())
}
