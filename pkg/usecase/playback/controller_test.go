// 指示: miu200521358
package playback

import (
	"testing"
	"time"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/merr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	rest         map[humanoid.BoneName]mmath.Transform
	rotations    map[humanoid.BoneName]mmath.Quaternion
	translations map[humanoid.BoneName]mmath.Vec3
	writes       int
}

func newRecordingWriter() *recordingWriter {
	hipsRest := mmath.NewTransform()
	hipsRest.Translation = mmath.NewVec3(0, 1, 0)
	return &recordingWriter{
		rest:         map[humanoid.BoneName]mmath.Transform{humanoid.HIPS: hipsRest},
		rotations:    map[humanoid.BoneName]mmath.Quaternion{},
		translations: map[humanoid.BoneName]mmath.Vec3{},
	}
}

func (w *recordingWriter) SetLocalRotation(bone humanoid.BoneName, rotation mmath.Quaternion) {
	w.rotations[bone] = rotation
	w.writes++
}

func (w *recordingWriter) SetLocalTranslation(bone humanoid.BoneName, translation mmath.Vec3) {
	w.translations[bone] = translation
	w.writes++
}

func (w *recordingWriter) RestLocalTransform(bone humanoid.BoneName) (mmath.Transform, bool) {
	rest, ok := w.rest[bone]
	return rest, ok
}

type countingObserver struct {
	modes      []string
	crossFades int
}

func (o *countingObserver) RecordModeSwitch(mode string) { o.modes = append(o.modes, mode) }
func (o *countingObserver) IncrementCrossFades()         { o.crossFades++ }

func rotX(rad float64) mmath.Quaternion {
	return mmath.NewQuaternionFromAxisAngle(mmath.NewVec3(1, 0, 0), rad)
}

func rotZ(rad float64) mmath.Quaternion {
	return mmath.NewQuaternionFromAxisAngle(mmath.NewVec3(0, 0, 1), rad)
}

func constantRotationTrack(bone humanoid.BoneName, duration float64, q mmath.Quaternion) model.CompiledTrack {
	return model.CompiledTrack{
		Bone:    bone,
		Channel: model.CHANNEL_ROTATION,
		Times:   []float64{0, duration},
		Values:  []float64{q.X(), q.Y(), q.Z(), q.W(), q.X(), q.Y(), q.Z(), q.W()},
	}
}

func testClip(name string, duration float64, tracks ...model.CompiledTrack) *model.CompiledClip {
	return &model.CompiledClip{Name: name, Duration: duration, Tracks: tracks}
}

func TestPlayInstantWhenEmpty(t *testing.T) {
	writer := newRecordingWriter()
	c := NewController(writer, Options{})
	assert.Equal(t, STATE_EMPTY, c.State().Kind)

	a := testClip("A", 2.0, constantRotationTrack(humanoid.HEAD, 2.0, rotX(0.4)))
	require.NoError(t, c.Play(a))
	state := c.State()
	assert.Equal(t, STATE_IDLE, state.Kind)
	assert.Same(t, a, state.Clip)
	assert.Equal(t, Weights{Outgoing: 0, Incoming: 1}, c.Weights())

	c.Update(100 * time.Millisecond)
	assert.True(t, writer.rotations[humanoid.HEAD].SameRotation(rotX(0.4), 1e-9))
}

func TestCrossfadeWeightsAtMidpoint(t *testing.T) {
	observer := &countingObserver{}
	c := NewController(newRecordingWriter(), Options{Observer: observer})
	a := testClip("A", 2.0, constantRotationTrack(humanoid.HEAD, 2.0, rotX(0.4)))
	b := testClip("B", 1.5, constantRotationTrack(humanoid.HEAD, 1.5, rotX(-0.4)))

	require.NoError(t, c.Play(a))
	c.Update(100 * time.Millisecond)
	require.NoError(t, c.Play(b))
	assert.Equal(t, 1, observer.crossFades)

	c.Update(275 * time.Millisecond)
	w := c.Weights()
	assert.InDelta(t, 0.5, w.Outgoing, 1e-9)
	assert.InDelta(t, 0.5, w.Incoming, 1e-9)

	state := c.State()
	assert.Equal(t, STATE_CROSSFADING, state.Kind)
	assert.Same(t, a, state.From)
	assert.Same(t, b, state.Clip)
	assert.InDelta(t, 0.375, state.FromTime, 1e-9)
	assert.InDelta(t, 0.275, state.ClipTime, 1e-9)
	assert.InDelta(t, 0.55, state.Duration, 1e-9)

	c.Update(300 * time.Millisecond)
	state = c.State()
	assert.Equal(t, STATE_IDLE, state.Kind)
	assert.Same(t, b, state.Clip)
	assert.Equal(t, Weights{Outgoing: 0, Incoming: 1}, c.Weights())
}

func TestCrossfadeWeightsStayNormalized(t *testing.T) {
	c := NewController(newRecordingWriter(), Options{})
	require.NoError(t, c.Play(testClip("A", 2.0, constantRotationTrack(humanoid.HEAD, 2.0, rotX(0.4)))))
	require.NoError(t, c.Play(testClip("B", 1.5, constantRotationTrack(humanoid.HEAD, 1.5, rotX(-0.4)))))

	for i := 0; i < 60; i++ {
		c.Update(16 * time.Millisecond)
		w := c.Weights()
		assert.InDelta(t, 1.0, w.Outgoing+w.Incoming, 1e-12)
		assert.GreaterOrEqual(t, w.Outgoing, 0.0)
		assert.LessOrEqual(t, w.Outgoing, 1.0)
		assert.GreaterOrEqual(t, w.Incoming, 0.0)
		assert.LessOrEqual(t, w.Incoming, 1.0)
	}
}

func TestPlayDuringFadeKeepsIncomingTime(t *testing.T) {
	c := NewController(newRecordingWriter(), Options{})
	a := testClip("A", 2.0, constantRotationTrack(humanoid.HEAD, 2.0, rotX(0.1)))
	b := testClip("B", 1.5, constantRotationTrack(humanoid.HEAD, 1.5, rotX(0.2)))
	d := testClip("D", 1.0, constantRotationTrack(humanoid.HEAD, 1.0, rotX(0.3)))

	require.NoError(t, c.Play(a))
	require.NoError(t, c.Play(b))
	c.Update(200 * time.Millisecond)
	require.NoError(t, c.Play(d))

	state := c.State()
	assert.Equal(t, STATE_CROSSFADING, state.Kind)
	assert.Same(t, b, state.From)
	assert.InDelta(t, 0.2, state.FromTime, 1e-9)
	assert.InDelta(t, 0, state.Elapsed, 1e-12)
}

func TestPlayDuringFadeContinuesFromBlendedPose(t *testing.T) {
	writer := newRecordingWriter()
	c := NewController(writer, Options{})
	a := testClip("A", 2.0, constantRotationTrack(humanoid.HEAD, 2.0, rotX(0.1)))
	b := testClip("B", 1.5, constantRotationTrack(humanoid.HEAD, 1.5, rotX(0.5)))
	d := testClip("D", 1.0, constantRotationTrack(humanoid.HEAD, 1.0, rotX(0.9)))

	require.NoError(t, c.Play(a))
	require.NoError(t, c.Play(b))
	c.Update(275 * time.Millisecond)
	require.True(t, writer.rotations[humanoid.HEAD].SameRotation(rotX(0.3), 1e-9))

	require.NoError(t, c.Play(d))
	c.Update(time.Millisecond)
	assert.True(t, writer.rotations[humanoid.HEAD].SameRotation(rotX(0.3), 1e-2), "got %v", writer.rotations[humanoid.HEAD])

	c.Update(274 * time.Millisecond)
	assert.True(t, writer.rotations[humanoid.HEAD].SameRotation(rotX(0.6), 1e-9), "got %v", writer.rotations[humanoid.HEAD])
	assert.InDelta(t, 0.55, c.State().FromTime, 1e-9)

	c.Update(300 * time.Millisecond)
	assert.True(t, writer.rotations[humanoid.HEAD].SameRotation(rotX(0.9), 1e-9), "got %v", writer.rotations[humanoid.HEAD])
	assert.Equal(t, STATE_IDLE, c.State().Kind)
}

func TestCrossfadeBlendsMissingBoneTowardRest(t *testing.T) {
	writer := newRecordingWriter()
	c := NewController(writer, Options{})
	a := testClip("A", 2.0,
		constantRotationTrack(humanoid.HEAD, 2.0, rotX(0.4)),
		constantRotationTrack(humanoid.HAND.Left(), 2.0, rotX(1.0)),
	)
	b := testClip("B", 1.5, constantRotationTrack(humanoid.HEAD, 1.5, rotX(0.4)))

	require.NoError(t, c.Play(a))
	c.Update(10 * time.Millisecond)
	require.NoError(t, c.Play(b))
	c.Update(275 * time.Millisecond)
	assert.True(t, writer.rotations[humanoid.HAND.Left()].SameRotation(rotX(0.5), 1e-9),
		"got=%s", writer.rotations[humanoid.HAND.Left()])

	c.Update(300 * time.Millisecond)
	assert.True(t, writer.rotations[humanoid.HAND.Left()].IsIdent(1e-12), "bone must return to rest after fade")
}

func TestNoCrossfadeCutsInstantly(t *testing.T) {
	c := NewController(newRecordingWriter(), Options{NoCrossfade: true})
	a := testClip("A", 2.0, constantRotationTrack(humanoid.HEAD, 2.0, rotX(0.1)))
	b := testClip("B", 1.5, constantRotationTrack(humanoid.HEAD, 1.5, rotX(0.2)))
	require.NoError(t, c.Play(a))
	require.NoError(t, c.Play(b))
	assert.Equal(t, STATE_IDLE, c.State().Kind)
	assert.Same(t, b, c.State().Clip)
}

func TestUpdateLoopsClipTime(t *testing.T) {
	c := NewController(newRecordingWriter(), Options{})
	require.NoError(t, c.Play(testClip("A", 2.0, constantRotationTrack(humanoid.HEAD, 2.0, rotX(0.1)))))
	c.Update(2500 * time.Millisecond)
	assert.InDelta(t, 0.5, c.State().ClipTime, 1e-9)
}

func TestRequestModeDebounced(t *testing.T) {
	observer := &countingObserver{}
	c := NewController(newRecordingWriter(), Options{Observer: observer})
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, c.RequestMode(MODE_BAKED, t0), "same mode is not a switch")
	assert.True(t, c.RequestMode(MODE_LIVE, t0))
	assert.False(t, c.RequestMode(MODE_BAKED, t0.Add(500*time.Millisecond)))
	assert.Equal(t, MODE_LIVE, c.Mode())
	assert.True(t, c.RequestMode(MODE_BAKED, t0.Add(time.Second)))
	assert.Equal(t, MODE_BAKED, c.Mode())
	assert.False(t, c.RequestMode(Mode("puppet"), t0.Add(5*time.Second)))
	assert.Equal(t, []string{"live", "baked"}, observer.modes)
}

func TestLiveModeSuppressesTracksAndAcceptsLivePose(t *testing.T) {
	writer := newRecordingWriter()
	c := NewController(writer, Options{})
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := testClip("A", 2.0, constantRotationTrack(humanoid.HEAD, 2.0, rotX(0.4)))
	require.NoError(t, c.Play(a))
	c.Update(700 * time.Millisecond)
	assert.InDelta(t, 0.7, c.State().ClipTime, 1e-9)

	err := c.ApplyLivePose(map[humanoid.BoneName]mmath.Quaternion{humanoid.HEAD: rotZ(0.2)})
	require.Error(t, err)
	assert.Equal(t, merrors.PlaybackModeErrorID, merr.ExtractErrorID(err))

	require.True(t, c.RequestMode(MODE_LIVE, t0))
	state := c.State()
	assert.Equal(t, STATE_LIVE, state.Kind)
	assert.InDelta(t, 0, state.ClipTime, 1e-12)

	require.NoError(t, c.ApplyLivePose(map[humanoid.BoneName]mmath.Quaternion{humanoid.HEAD: rotZ(0.2)}))
	writes := writer.writes
	c.Update(100 * time.Millisecond)
	assert.Equal(t, writes, writer.writes, "live mode must not write from tracks")
	assert.True(t, writer.rotations[humanoid.HEAD].SameRotation(rotZ(0.2), 1e-12))

	require.True(t, c.RequestMode(MODE_BAKED, t0.Add(time.Second)))
	assert.InDelta(t, 0, c.State().ClipTime, 1e-12)
	c.Update(100 * time.Millisecond)
	assert.InDelta(t, 0.1, c.State().ClipTime, 1e-9)
	assert.True(t, writer.rotations[humanoid.HEAD].SameRotation(rotX(0.4), 1e-9))
}

func TestEnteringLiveStopsCrossfade(t *testing.T) {
	c := NewController(newRecordingWriter(), Options{})
	require.NoError(t, c.Play(testClip("A", 2.0, constantRotationTrack(humanoid.HEAD, 2.0, rotX(0.1)))))
	require.NoError(t, c.Play(testClip("B", 1.5, constantRotationTrack(humanoid.HEAD, 1.5, rotX(0.2)))))
	require.True(t, c.RequestMode(MODE_LIVE, time.Now()))
	state := c.State()
	assert.Equal(t, STATE_LIVE, state.Kind)
	assert.Nil(t, state.From)
}

func TestAdditiveLayer(t *testing.T) {
	writer := newRecordingWriter()
	c := NewController(writer, Options{})
	base := testClip("base", 2.0, constantRotationTrack(humanoid.HEAD, 2.0, rotX(0.4)))
	breath := testClip("breath", 2.0, constantRotationTrack(humanoid.HEAD, 2.0, rotZ(0.6)))
	breath.Additive = true

	assert.Error(t, c.Play(breath), "additive clip cannot be played as base")
	assert.Error(t, c.SetAdditive(base, 1), "base clip cannot be additive")

	require.NoError(t, c.Play(base))
	require.NoError(t, c.SetAdditive(breath, 0.5))
	c.Update(100 * time.Millisecond)
	want := rotX(0.4).Muled(rotZ(0.3))
	assert.True(t, writer.rotations[humanoid.HEAD].SameRotation(want, 1e-9), "got=%s want=%s", writer.rotations[humanoid.HEAD], want)

	c.SetAdditiveWeight(2)
	assert.Equal(t, 1.0, c.AdditiveWeight())
	c.SetAdditiveWeight(-1)
	assert.Equal(t, 0.0, c.AdditiveWeight())

	c.ClearAdditive()
	c.Update(100 * time.Millisecond)
	assert.True(t, writer.rotations[humanoid.HEAD].SameRotation(rotX(0.4), 1e-9))
}

func TestHipsTranslationBlendsTowardRest(t *testing.T) {
	writer := newRecordingWriter()
	c := NewController(writer, Options{})
	a := testClip("A", 1.0, model.CompiledTrack{
		Bone:    humanoid.HIPS,
		Channel: model.CHANNEL_TRANSLATION,
		Times:   []float64{0, 1},
		Values:  []float64{0, 2, 0, 0, 2, 0},
	})
	b := testClip("B", 1.0, constantRotationTrack(humanoid.HEAD, 1.0, rotX(0.1)))
	require.NoError(t, c.Play(a))
	c.Update(10 * time.Millisecond)
	assert.True(t, writer.translations[humanoid.HIPS].NearEquals(mmath.NewVec3(0, 2, 0), 1e-12))

	require.NoError(t, c.Play(b))
	c.Update(275 * time.Millisecond)
	assert.True(t, writer.translations[humanoid.HIPS].NearEquals(mmath.NewVec3(0, 1.5, 0), 1e-9),
		"got=%s", writer.translations[humanoid.HIPS])
}
