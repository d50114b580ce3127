// 指示: miu200521358
// Package humanoid はVRMヒューマノイドボーンの固定語彙を提供する。
package humanoid

// BoneName はVRMヒューマノイドボーン名を表す。
type BoneName string

// BonePart は左右を持つボーンの部位名を表す。
type BonePart string

// 体幹ボーン。
const (
	HIPS        BoneName = "hips"
	SPINE       BoneName = "spine"
	CHEST       BoneName = "chest"
	UPPER_CHEST BoneName = "upperChest"
	NECK        BoneName = "neck"
	HEAD        BoneName = "head"
)

// 左右を持つ部位。
const (
	SHOULDER  BonePart = "Shoulder"
	UPPER_ARM BonePart = "UpperArm"
	LOWER_ARM BonePart = "LowerArm"
	HAND      BonePart = "Hand"
	UPPER_LEG BonePart = "UpperLeg"
	LOWER_LEG BonePart = "LowerLeg"
	FOOT      BonePart = "Foot"
	TOES      BonePart = "Toes"

	THUMB_METACARPAL    BonePart = "ThumbMetacarpal"
	THUMB_PROXIMAL      BonePart = "ThumbProximal"
	THUMB_DISTAL        BonePart = "ThumbDistal"
	INDEX_PROXIMAL      BonePart = "IndexProximal"
	INDEX_INTERMEDIATE  BonePart = "IndexIntermediate"
	INDEX_DISTAL        BonePart = "IndexDistal"
	MIDDLE_PROXIMAL     BonePart = "MiddleProximal"
	MIDDLE_INTERMEDIATE BonePart = "MiddleIntermediate"
	MIDDLE_DISTAL       BonePart = "MiddleDistal"
	RING_PROXIMAL       BonePart = "RingProximal"
	RING_INTERMEDIATE   BonePart = "RingIntermediate"
	RING_DISTAL         BonePart = "RingDistal"
	LITTLE_PROXIMAL     BonePart = "LittleProximal"
	LITTLE_INTERMEDIATE BonePart = "LittleIntermediate"
	LITTLE_DISTAL       BonePart = "LittleDistal"
)

// Side は左右を表す。
type Side string

const (
	// SIDE_NONE は左右なしを表す。
	SIDE_NONE Side = ""
	// SIDE_LEFT は左を表す。
	SIDE_LEFT Side = "left"
	// SIDE_RIGHT は右を表す。
	SIDE_RIGHT Side = "right"
)

// Left は左側のボーン名を返す。
func (p BonePart) Left() BoneName {
	return BoneName("left" + string(p))
}

// Right は右側のボーン名を返す。
func (p BonePart) Right() BoneName {
	return BoneName("right" + string(p))
}

// With は指定側のボーン名を返す。左右なしの場合は空文字となる。
func (p BonePart) With(side Side) BoneName {
	switch side {
	case SIDE_LEFT:
		return p.Left()
	case SIDE_RIGHT:
		return p.Right()
	default:
		return ""
	}
}

// String はボーン名文字列を返す。
func (b BoneName) String() string {
	return string(b)
}

var torsoBones = []BoneName{HIPS, SPINE, CHEST, UPPER_CHEST, NECK, HEAD}

var sidedParts = []BonePart{
	SHOULDER, UPPER_ARM, LOWER_ARM, HAND,
	UPPER_LEG, LOWER_LEG, FOOT, TOES,
	THUMB_METACARPAL, THUMB_PROXIMAL, THUMB_DISTAL,
	INDEX_PROXIMAL, INDEX_INTERMEDIATE, INDEX_DISTAL,
	MIDDLE_PROXIMAL, MIDDLE_INTERMEDIATE, MIDDLE_DISTAL,
	RING_PROXIMAL, RING_INTERMEDIATE, RING_DISTAL,
	LITTLE_PROXIMAL, LITTLE_INTERMEDIATE, LITTLE_DISTAL,
}

var (
	allBones   []BoneName
	boneLookup map[BoneName]struct{}
)

func init() {
	allBones = make([]BoneName, 0, len(torsoBones)+len(sidedParts)*2)
	allBones = append(allBones, torsoBones...)
	for _, part := range sidedParts {
		allBones = append(allBones, part.Left())
	}
	for _, part := range sidedParts {
		allBones = append(allBones, part.Right())
	}
	boneLookup = make(map[BoneName]struct{}, len(allBones))
	for _, bone := range allBones {
		boneLookup[bone] = struct{}{}
	}
}

// AllBones は語彙の全ボーン名を定義順で返す。
func AllBones() []BoneName {
	return append([]BoneName(nil), allBones...)
}

// IsValid は語彙に含まれるボーン名か判定する。
func (b BoneName) IsValid() bool {
	_, ok := boneLookup[b]
	return ok
}

// Parse は文字列を語彙のボーン名へ変換する。
func Parse(value string) (BoneName, bool) {
	bone := BoneName(value)
	if !bone.IsValid() {
		return "", false
	}
	return bone, true
}
