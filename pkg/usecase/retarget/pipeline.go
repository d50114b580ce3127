// 指示: miu200521358
package retarget

import (
	"math"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/skeleton"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/coordaxis"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/rigmap"
)

// heightEpsilon は高さを0とみなす閾値。
const heightEpsilon = 1e-6

// trackContext はクリップ1件分の変換に共通する情報を表す。
type trackContext struct {
	src    *skeleton.Skeleton
	target Target
	table  *rigmap.Table
	upAxis coordaxis.UpAxis
	legacy bool
}

// sourceJoint は元スケルトンから関節を探す。名前空間付きの名前も許容する。
func (tc *trackContext) sourceJoint(jointName string) (*skeleton.Joint, bool) {
	if tc.src == nil {
		return nil, false
	}
	return tc.src.FindByNameSuffix(jointName)
}

// restRotations は補正用の親レストワールド回転と自身のレストワールド回転の逆を返す。
// 元スケルトンに関節が無い場合は単位回転とする。
func (tc *trackContext) restRotations(jointName string) (mmath.Quaternion, mmath.Quaternion) {
	joint, ok := tc.sourceJoint(jointName)
	if !ok {
		logRetargetDebug("元スケルトンに関節がありません。レスト補正なし: %s", jointName)
		return mmath.NewQuaternion(), mmath.NewQuaternion()
	}
	parentRestWorld := tc.src.ParentRestWorldRotation(joint.Handle)
	restInv := tc.src.RestWorldTransform(joint.Handle).Rotation.Inverted()
	return parentRestWorld, restInv
}

// compileRotation は回転トラックを出力先の正規化ボーン空間へ変換する。
func (tc *trackContext) compileRotation(raw *model.RawTrack, bone humanoid.BoneName) model.CompiledTrack {
	parentRestWorld, restInv := tc.restRotations(raw.JointName)
	zUp := tc.upAxis.IsZUp()

	var flip rigmap.SignFlip
	hasFlip := false
	conjugate := false
	if tc.table != nil {
		flip, hasFlip = tc.table.SignFlip(bone, zUp)
		conjugate = !zUp && tc.table.ConjugateOnYUp(bone)
	}

	count := raw.SampleCount()
	values := make([]float64, 0, count*4)
	for i := 0; i < count; i++ {
		q := coordaxis.ToYUpRotation(tc.upAxis, raw.Rotation(i))
		q = parentRestWorld.Muled(q).Muled(restInv)
		if conjugate {
			q = coordaxis.QuaternionZUpToYUp(q)
		}
		if hasFlip {
			q = q.ScaledComponents(flip[0], flip[1], flip[2], flip[3])
		}
		if tc.legacy {
			q = q.ScaledComponents(-1, 1, -1, 1)
		}
		q = q.PositiveW()
		values = append(values, q.X(), q.Y(), q.Z(), q.W())
	}
	return model.CompiledTrack{
		Bone:    bone,
		Channel: model.CHANNEL_ROTATION,
		Times:   append([]float64(nil), raw.Times[:count]...),
		Values:  values,
	}
}

// compileHipsTranslation はhips移動トラックを出力先の高さへ合わせて変換する。
func (tc *trackContext) compileHipsTranslation(raw *model.RawTrack, report *model.Report) model.CompiledTrack {
	count := raw.SampleCount()
	first := raw.Vector(0)

	// 軸はサンプルと同じ親空間の移動量で判定し、高さはルートからの距離で測る。
	reference := first
	heightOffset := first
	if joint, ok := tc.sourceJoint(raw.JointName); ok && joint.Rest.Translation.Length() > heightEpsilon {
		reference = joint.Rest.Translation
		heightOffset = tc.sourceOffsetFromRoot(joint)
	}
	axis := coordaxis.DetectPositionUpAxis(reference)
	sourceHeight := math.Abs(heightOffset.Get(heightOffset.MaxAbsAxis()))
	if sourceHeight <= heightEpsilon {
		sourceHeight = math.Abs(first.Get(first.MaxAbsAxis()))
	}

	scale := 1.0
	targetHeight := tc.targetHipsHeight()
	switch {
	case sourceHeight <= heightEpsilon:
		report.AddWarning(model.RetargetWarningMissingHipsReference, merrors.NewMissingHipsReference("source"))
		logRetargetWarn("元リグのhips高さを取得できないため倍率1.0で変換します: %s", raw.JointName)
	case targetHeight <= heightEpsilon:
		report.AddWarning(model.RetargetWarningMissingHipsReference, merrors.NewMissingHipsReference("target"))
		logRetargetWarn("出力先のhips高さを取得できないため倍率1.0で変換します")
	default:
		scale = targetHeight / sourceHeight
	}
	report.HipsScale = scale

	values := make([]float64, 0, count*3)
	for i := 0; i < count; i++ {
		v := coordaxis.ToYUpPosition(axis, raw.Vector(i)).MuledScalar(scale)
		if tc.legacy {
			v = mmath.NewVec3(-v.X, v.Y, -v.Z)
		}
		values = append(values, v.X, v.Y, v.Z)
	}
	return model.CompiledTrack{
		Bone:    humanoid.HIPS,
		Channel: model.CHANNEL_TRANSLATION,
		Times:   append([]float64(nil), raw.Times[:count]...),
		Values:  values,
	}
}

// sourceOffsetFromRoot は関節のレスト位置をルート空間でのルートからの差として返す。関節自身がルートならその位置。
func (tc *trackContext) sourceOffsetFromRoot(joint *skeleton.Joint) mmath.Vec3 {
	world := tc.src.RestWorldTransform(joint.Handle)
	root, ok := tc.src.Root()
	if !ok || root.Handle == joint.Handle {
		return world.Translation
	}
	rootWorld := tc.src.RestWorldTransform(root.Handle)
	return rootWorld.Rotation.Inverted().Rotated(world.Translation.Subed(rootWorld.Translation))
}

// targetHipsHeight は出力先hipsのルートからの高さを返す。
func (tc *trackContext) targetHipsHeight() float64 {
	handle, ok := tc.target.ResolveBone(humanoid.HIPS)
	if !ok {
		return 0
	}
	hipsY := tc.target.RestWorldTransform(handle).Translation.Y
	rootY := 0.0
	if rp, ok := tc.target.(rootProvider); ok {
		rootY = rp.RootRestWorldTransform().Translation.Y
	}
	return math.Abs(hipsY - rootY)
}
