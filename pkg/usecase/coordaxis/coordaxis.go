// 指示: miu200521358
// Package coordaxis はアニメーションの上方向軸判定とZ-upからY-upへの変換を提供する。
package coordaxis

import (
	"math"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/mmath"
)

// UpAxis は上方向軸を表す。
type UpAxis string

const (
	// UP_AXIS_Y はY-up。
	UP_AXIS_Y UpAxis = "Y"
	// UP_AXIS_Z はZ-up。
	UP_AXIS_Z UpAxis = "Z"
)

// String は軸名を返す。
func (a UpAxis) String() string {
	return string(a)
}

// IsZUp はZ-upか判定する。
func (a UpAxis) IsZUp() bool {
	return a == UP_AXIS_Z
}

// zUpRootTolerance はルート回転判定の許容差。
const zUpRootTolerance = 0.05

var (
	// zUpToYUp は+X90°回転。
	zUpToYUp    = mmath.NewQuaternionByValues(math.Sqrt2/2, 0, 0, math.Sqrt2/2)
	zUpToYUpInv = zUpToYUp.Inverted()
)

// DetectUpAxis はルート回転から上方向軸を判定する。ローダーが付与した-X90°回転ならZ-up。
func DetectUpAxis(rootRotation mmath.Quaternion) UpAxis {
	if math.Abs(rootRotation.X()+math.Sqrt2/2) < zUpRootTolerance &&
		math.Abs(rootRotation.W()-math.Sqrt2/2) < zUpRootTolerance {
		return UP_AXIS_Z
	}
	return UP_AXIS_Y
}

// DetectPositionUpAxis は絶対値最大の成分を高さとみなして上方向軸を判定する。X最大はY-up扱い。
func DetectPositionUpAxis(position mmath.Vec3) UpAxis {
	if position.MaxAbsAxis() == mmath.AXIS_Z {
		return UP_AXIS_Z
	}
	return UP_AXIS_Y
}

// QuaternionZUpToYUp はZ-up空間の回転をY-up空間へ変換する。
func QuaternionZUpToYUp(q mmath.Quaternion) mmath.Quaternion {
	return zUpToYUp.Muled(q).Muled(zUpToYUpInv)
}

// QuaternionYUpToZUp はQuaternionZUpToYUpの逆変換を行う。
func QuaternionYUpToZUp(q mmath.Quaternion) mmath.Quaternion {
	return zUpToYUpInv.Muled(q).Muled(zUpToYUp)
}

// PositionZUpToYUp は(x, y, z)を(x, z, -y)へ変換する。
func PositionZUpToYUp(v mmath.Vec3) mmath.Vec3 {
	return mmath.NewVec3(v.X, v.Z, -v.Y)
}

// PositionYUpToZUp は(x, y, z)を(x, -z, y)へ変換する。
func PositionYUpToZUp(v mmath.Vec3) mmath.Vec3 {
	return mmath.NewVec3(v.X, -v.Z, v.Y)
}

// ToYUpRotation は軸に応じて回転をY-upへ揃える。Y-upなら変更しない。
func ToYUpRotation(axis UpAxis, q mmath.Quaternion) mmath.Quaternion {
	if axis.IsZUp() {
		return QuaternionZUpToYUp(q)
	}
	return q
}

// ToYUpPosition は軸に応じて位置をY-upへ揃える。Y-upなら変更しない。
func ToYUpPosition(axis UpAxis, v mmath.Vec3) mmath.Vec3 {
	if axis.IsZUp() {
		return PositionZUpToYUp(v)
	}
	return v
}
