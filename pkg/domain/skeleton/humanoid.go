// 指示: miu200521358
package skeleton

import (
	"sort"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
)

// Humanoid はVRMヒューマノイドの出力先を表す。
// 姿勢は正規化ボーン空間で保持し、レスト回転は単位回転となる。
type Humanoid struct {
	skeleton       *Skeleton
	version        humanoid.Version
	bones          map[humanoid.BoneName]JointHandle
	normalizedRest map[humanoid.BoneName]mmath.Transform
	pose           map[humanoid.BoneName]mmath.Transform
}

// NewHumanoid はスケルトンとボーン割り当てからHumanoidを生成する。
func NewHumanoid(sk *Skeleton, version humanoid.Version, bones map[humanoid.BoneName]JointHandle) (*Humanoid, error) {
	if sk == nil {
		return nil, merrors.NewSkeletonInvalid("スケルトンが未設定です")
	}
	assigned := make(map[humanoid.BoneName]JointHandle, len(bones))
	for bone, handle := range bones {
		if !bone.IsValid() {
			return nil, merrors.NewSkeletonInvalid("ヒューマノイドボーン名が不正です: %s", bone)
		}
		if _, ok := sk.Joint(handle); !ok {
			return nil, merrors.NewSkeletonInvalid("ヒューマノイドボーンの関節が不正です: %s=%d", bone, handle)
		}
		assigned[bone] = handle
	}
	h := &Humanoid{
		skeleton: sk,
		version:  version,
		bones:    assigned,
	}
	h.normalizedRest = h.buildNormalizedRest()
	h.ResetPose()
	return h, nil
}

// buildNormalizedRest は正規化ボーン空間のレスト変換を算出する。
// 移動は最寄りのヒューマノイド祖先からのワールド差分とする。
func (h *Humanoid) buildNormalizedRest() map[humanoid.BoneName]mmath.Transform {
	byHandle := make(map[JointHandle]humanoid.BoneName, len(h.bones))
	for bone, handle := range h.bones {
		byHandle[handle] = bone
	}
	rest := make(map[humanoid.BoneName]mmath.Transform, len(h.bones))
	for bone, handle := range h.bones {
		origin := mmath.ZERO_VEC3
		if root, ok := h.skeleton.Root(); ok {
			origin = h.skeleton.RestWorldTransform(root.Handle).Translation
		}
		joint, _ := h.skeleton.Joint(handle)
		for parent := joint.Parent; parent != InvalidJoint; {
			if _, ok := byHandle[parent]; ok {
				origin = h.skeleton.RestWorldTransform(parent).Translation
				break
			}
			parentJoint, _ := h.skeleton.Joint(parent)
			parent = parentJoint.Parent
		}
		rest[bone] = mmath.Transform{
			Rotation:    mmath.NewQuaternion(),
			Translation: h.skeleton.RestWorldTransform(handle).Translation.Subed(origin),
		}
	}
	return rest
}

// Skeleton は元スケルトンを返す。
func (h *Humanoid) Skeleton() *Skeleton {
	return h.skeleton
}

// Version は規約バージョンを返す。
func (h *Humanoid) Version() humanoid.Version {
	return h.version
}

// ResolveBone はボーン名から関節参照を返す。
func (h *Humanoid) ResolveBone(bone humanoid.BoneName) (JointHandle, bool) {
	handle, ok := h.bones[bone]
	return handle, ok
}

// RestWorldTransform は関節のレスト姿勢ワールド変換を返す。
func (h *Humanoid) RestWorldTransform(handle JointHandle) mmath.Transform {
	return h.skeleton.RestWorldTransform(handle)
}

// RootRestWorldTransform はスケルトンルートのレスト姿勢ワールド変換を返す。
func (h *Humanoid) RootRestWorldTransform() mmath.Transform {
	root, ok := h.skeleton.Root()
	if !ok {
		return mmath.NewTransform()
	}
	return h.skeleton.RestWorldTransform(root.Handle)
}

// Bones は割り当て済みボーン名を語彙順で返す。
func (h *Humanoid) Bones() []humanoid.BoneName {
	order := map[humanoid.BoneName]int{}
	for i, bone := range humanoid.AllBones() {
		order[bone] = i
	}
	out := make([]humanoid.BoneName, 0, len(h.bones))
	for bone := range h.bones {
		out = append(out, bone)
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i]] < order[out[j]] })
	return out
}

// RestLocalTransform は正規化ボーン空間のレスト変換を返す。
func (h *Humanoid) RestLocalTransform(bone humanoid.BoneName) (mmath.Transform, bool) {
	rest, ok := h.normalizedRest[bone]
	return rest, ok
}

// SetLocalRotation はボーンのローカル回転を書き込む。未割り当てボーンは無視する。
func (h *Humanoid) SetLocalRotation(bone humanoid.BoneName, rotation mmath.Quaternion) {
	current, ok := h.pose[bone]
	if !ok {
		return
	}
	current.Rotation = rotation
	h.pose[bone] = current
}

// SetLocalTranslation はボーンのローカル移動を書き込む。未割り当てボーンは無視する。
func (h *Humanoid) SetLocalTranslation(bone humanoid.BoneName, translation mmath.Vec3) {
	current, ok := h.pose[bone]
	if !ok {
		return
	}
	current.Translation = translation
	h.pose[bone] = current
}

// LocalPose は現在のローカル姿勢を返す。
func (h *Humanoid) LocalPose(bone humanoid.BoneName) (mmath.Transform, bool) {
	pose, ok := h.pose[bone]
	return pose, ok
}

// ResetPose は全ボーンをレスト姿勢へ戻す。
func (h *Humanoid) ResetPose() {
	h.pose = make(map[humanoid.BoneName]mmath.Transform, len(h.normalizedRest))
	for bone, rest := range h.normalizedRest {
		h.pose[bone] = rest
	}
}
