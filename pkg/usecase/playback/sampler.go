// 指示: miu200521358
package playback

import (
	"sort"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"
)

// BonePose はボーン1件の標本化結果を表す。
type BonePose struct {
	Rotation       mmath.Quaternion
	Translation    mmath.Vec3
	HasRotation    bool
	HasTranslation bool
}

// Pose はボーンごとの標本化結果を表す。
type Pose map[humanoid.BoneName]BonePose

// sampleSpan は時刻tを挟むキー番号と補間係数を返す。範囲外は端のキーに固定する。
func sampleSpan(times []float64, t float64) (int, int, float64) {
	n := len(times)
	if n == 0 {
		return -1, -1, 0
	}
	if t <= times[0] {
		return 0, 0, 0
	}
	if t >= times[n-1] {
		return n - 1, n - 1, 0
	}
	hi := sort.SearchFloat64s(times, t)
	if times[hi] == t {
		return hi, hi, 0
	}
	lo := hi - 1
	span := times[hi] - times[lo]
	if span <= 0 {
		return hi, hi, 0
	}
	return lo, hi, (t - times[lo]) / span
}

// SampleRotation は回転トラックを時刻tで球面線形補間する。
func SampleRotation(track *model.CompiledTrack, t float64) mmath.Quaternion {
	lo, hi, alpha := sampleSpan(track.Times, t)
	if lo < 0 {
		return mmath.NewQuaternion()
	}
	if lo == hi {
		return track.Rotation(lo)
	}
	return track.Rotation(lo).Slerp(track.Rotation(hi), alpha)
}

// SampleVector は移動トラックを時刻tで線形補間する。
func SampleVector(track *model.CompiledTrack, t float64) mmath.Vec3 {
	lo, hi, alpha := sampleSpan(track.Times, t)
	if lo < 0 {
		return mmath.ZERO_VEC3
	}
	if lo == hi {
		return track.Vector(lo)
	}
	return track.Vector(lo).Lerped(track.Vector(hi), alpha)
}

// SampleClip はクリップの全トラックを時刻tで標本化する。
func SampleClip(clip *model.CompiledClip, t float64) Pose {
	pose := Pose{}
	if clip == nil {
		return pose
	}
	for i := range clip.Tracks {
		track := &clip.Tracks[i]
		if track.SampleCount() == 0 {
			continue
		}
		bp := pose[track.Bone]
		switch track.Channel {
		case model.CHANNEL_ROTATION:
			bp.Rotation = SampleRotation(track, t)
			bp.HasRotation = true
		case model.CHANNEL_TRANSLATION:
			bp.Translation = SampleVector(track, t)
			bp.HasTranslation = true
		default:
			continue
		}
		pose[track.Bone] = bp
	}
	return pose
}
