// 指示: miu200521358
package playback

import (
	"testing"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"
)

func TestSampleRotationInterpolatesAndClamps(t *testing.T) {
	q0, q1, q2 := mmath.NewQuaternion(), rotX(1), rotX(2)
	track := &model.CompiledTrack{
		Bone:    humanoid.HEAD,
		Channel: model.CHANNEL_ROTATION,
		Times:   []float64{0, 1, 2},
		Values: []float64{
			q0.X(), q0.Y(), q0.Z(), q0.W(),
			q1.X(), q1.Y(), q1.Z(), q1.W(),
			q2.X(), q2.Y(), q2.Z(), q2.W(),
		},
	}
	cases := []struct {
		t    float64
		want mmath.Quaternion
	}{
		{-1, q0},
		{0, q0},
		{0.5, rotX(0.5)},
		{1, q1},
		{1.25, rotX(1.25)},
		{5, q2},
	}
	for _, c := range cases {
		got := SampleRotation(track, c.t)
		if !got.SameRotation(c.want, 1e-9) {
			t.Fatalf("sample mismatch: t=%v got=%s want=%s", c.t, got, c.want)
		}
	}
}

func TestSampleRotationTakesShortestArc(t *testing.T) {
	a := rotX(0.2)
	b := rotX(0.4).Negated()
	track := &model.CompiledTrack{
		Channel: model.CHANNEL_ROTATION,
		Times:   []float64{0, 1},
		Values:  []float64{a.X(), a.Y(), a.Z(), a.W(), b.X(), b.Y(), b.Z(), b.W()},
	}
	got := SampleRotation(track, 0.5)
	if !got.SameRotation(rotX(0.3), 1e-9) {
		t.Fatalf("shortest arc mismatch: got=%s", got)
	}
}

func TestSampleVectorLerps(t *testing.T) {
	track := &model.CompiledTrack{
		Bone:    humanoid.HIPS,
		Channel: model.CHANNEL_TRANSLATION,
		Times:   []float64{0, 2},
		Values:  []float64{0, 1, 0, 2, 1, -2},
	}
	got := SampleVector(track, 0.5)
	if !got.NearEquals(mmath.NewVec3(0.5, 1, -0.5), 1e-12) {
		t.Fatalf("lerp mismatch: got=%s", got)
	}
	if got := SampleVector(&model.CompiledTrack{}, 1); !got.NearEquals(mmath.ZERO_VEC3, 1e-12) {
		t.Fatalf("empty track should sample zero: got=%s", got)
	}
}

func TestSampleClipCollectsChannels(t *testing.T) {
	clip := testClip("A", 1,
		constantRotationTrack(humanoid.HIPS, 1, rotX(0.1)),
		model.CompiledTrack{Bone: humanoid.HIPS, Channel: model.CHANNEL_TRANSLATION, Times: []float64{0}, Values: []float64{0, 1, 0}},
		constantRotationTrack(humanoid.HEAD, 1, rotX(0.2)),
	)
	pose := SampleClip(clip, 0.5)
	if len(pose) != 2 {
		t.Fatalf("bone count mismatch: got=%d want=2", len(pose))
	}
	hips := pose[humanoid.HIPS]
	if !hips.HasRotation || !hips.HasTranslation {
		t.Fatalf("hips channels missing: %+v", hips)
	}
	if pose[humanoid.HEAD].HasTranslation {
		t.Fatalf("head should not have translation")
	}
}
