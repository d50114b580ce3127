// 指示: miu200521358
package model

// SkipReason はトラックを出力しなかった理由IDを表す。
type SkipReason string

const (
	// RetargetWarningUnresolvedJoint はボーン名未対応による除外。
	RetargetWarningUnresolvedJoint SkipReason = "RetargetWarningUnresolvedJoint"
	// RetargetWarningUnresolvableTargetBone は出力先関節不在による除外。
	RetargetWarningUnresolvableTargetBone SkipReason = "RetargetWarningUnresolvableTargetBone"
	// RetargetWarningScaleChannel はスケールチャンネルによる除外。
	RetargetWarningScaleChannel SkipReason = "RetargetWarningScaleChannel"
	// RetargetWarningNonHipsTranslation はhips以外の移動チャンネルによる除外。
	RetargetWarningNonHipsTranslation SkipReason = "RetargetWarningNonHipsTranslation"
	// RetargetWarningEmptyTrack はサンプル無しトラックによる除外。
	RetargetWarningEmptyTrack SkipReason = "RetargetWarningEmptyTrack"
	// RetargetWarningDuplicateBone は同一ボーン・チャンネルの重複による除外。
	RetargetWarningDuplicateBone SkipReason = "RetargetWarningDuplicateBone"
)

// Warning はコンパイル時の非致命警告IDを表す。
type Warning string

const (
	// RetargetWarningMissingHipsReference はhips高さ比率を算出できず1.0とした警告。
	RetargetWarningMissingHipsReference Warning = "RetargetWarningMissingHipsReference"
)
