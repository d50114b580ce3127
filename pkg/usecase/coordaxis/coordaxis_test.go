// 指示: miu200521358
package coordaxis

import (
	"math"
	"testing"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/mmath"
)

const roundTripEpsilon = 1e-5

func TestDetectUpAxis(t *testing.T) {
	zUpRoot := mmath.NewQuaternionFromAxisAngle(mmath.NewVec3(1, 0, 0), -math.Pi/2)
	if got := DetectUpAxis(zUpRoot); got != UP_AXIS_Z {
		t.Fatalf("z-up root mismatch: got=%s want=%s", got, UP_AXIS_Z)
	}
	if got := DetectUpAxis(mmath.NewQuaternion()); got != UP_AXIS_Y {
		t.Fatalf("identity root mismatch: got=%s want=%s", got, UP_AXIS_Y)
	}
	near := mmath.NewQuaternionByValues(-0.69, 0, 0, 0.73)
	if got := DetectUpAxis(near); got != UP_AXIS_Z {
		t.Fatalf("tolerance mismatch: got=%s want=%s", got, UP_AXIS_Z)
	}
	plusX := mmath.NewQuaternionFromAxisAngle(mmath.NewVec3(1, 0, 0), math.Pi/2)
	if got := DetectUpAxis(plusX); got != UP_AXIS_Y {
		t.Fatalf("+X90 root mismatch: got=%s want=%s", got, UP_AXIS_Y)
	}
}

func TestDetectPositionUpAxis(t *testing.T) {
	if got := DetectPositionUpAxis(mmath.NewVec3(1.2, -3.0, 95.0)); got != UP_AXIS_Z {
		t.Fatalf("z height mismatch: got=%s", got)
	}
	if got := DetectPositionUpAxis(mmath.NewVec3(0.01, 0.98, -0.02)); got != UP_AXIS_Y {
		t.Fatalf("y height mismatch: got=%s", got)
	}
	if got := DetectPositionUpAxis(mmath.NewVec3(5, 0, 0)); got != UP_AXIS_Y {
		t.Fatalf("x height should fall back to y-up: got=%s", got)
	}
}

func TestQuaternionRoundTrip(t *testing.T) {
	samples := []mmath.Quaternion{
		mmath.NewQuaternion(),
		mmath.NewQuaternionFromAxisAngle(mmath.NewVec3(0, 0, 1), 0.7),
		mmath.NewQuaternionFromAxisAngle(mmath.NewVec3(1, 2, -3), -1.9),
		mmath.NewQuaternionByValues(0.1, -0.5, 0.3, 0.8).Normalized(),
	}
	for _, q := range samples {
		back := QuaternionYUpToZUp(QuaternionZUpToYUp(q))
		if !back.NearEquals(q, roundTripEpsilon) {
			t.Fatalf("round trip mismatch: got=%s want=%s", back, q)
		}
		if got := ToYUpRotation(UP_AXIS_Y, q); !got.NearEquals(q, 0) {
			t.Fatalf("y-up should be a no-op: got=%s want=%s", got, q)
		}
	}
}

func TestQuaternionZUpToYUpConjugatesAxis(t *testing.T) {
	// +X90°共役によりZ軸回りの回転は-Y軸回りになる。
	zRot := mmath.NewQuaternionFromAxisAngle(mmath.NewVec3(0, 0, 1), 0.5)
	got := QuaternionZUpToYUp(zRot)
	want := mmath.NewQuaternionFromAxisAngle(mmath.NewVec3(0, -1, 0), 0.5)
	if !got.SameRotation(want, roundTripEpsilon) {
		t.Fatalf("axis mismatch: got=%s want=%s", got, want)
	}
}

func TestPositionConversion(t *testing.T) {
	v := mmath.NewVec3(1, 2, 3)
	got := PositionZUpToYUp(v)
	if !got.NearEquals(mmath.NewVec3(1, 3, -2), 0) {
		t.Fatalf("z->y mismatch: got=%s", got)
	}
	back := PositionYUpToZUp(got)
	if !back.NearEquals(v, roundTripEpsilon) {
		t.Fatalf("round trip mismatch: got=%s want=%s", back, v)
	}
	if got := ToYUpPosition(UP_AXIS_Y, v); !got.NearEquals(v, 0) {
		t.Fatalf("y-up should be a no-op: got=%s", got)
	}
	if got := ToYUpPosition(UP_AXIS_Z, v); !got.NearEquals(mmath.NewVec3(1, 3, -2), 0) {
		t.Fatalf("ToYUpPosition mismatch: got=%s", got)
	}
}
