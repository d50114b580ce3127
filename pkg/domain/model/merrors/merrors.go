// 指示: miu200521358
// Package merrors はリターゲット処理のエラーIDと生成関数を提供する。
package merrors

import "github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/merr"

// エラーID一覧。
const (
	IoFileNotFoundErrorID   = "14101"
	IoExtInvalidErrorID     = "14102"
	IoParseFailedErrorID    = "14103"
	IoFormatUnsupportedID   = "14104"
	UnresolvedJointErrorID  = "15101"
	UnresolvableTargetID    = "15102"
	ScaleChannelRejectedID  = "15103"
	NonHipsTranslationID    = "15104"
	EmptySourceClipErrorID  = "15201"
	ZeroTracksMappedErrorID = "15202"
	MissingHipsReferenceID  = "15203"
	StaleResultErrorID      = "15204"
	PreloaderClosedErrorID  = "15205"
	SkeletonInvalidErrorID  = "15301"
	PlaybackModeErrorID     = "15401"
	ClipCatalogEmptyErrorID = "15501"
)

// NewIoFileNotFound はファイル不在エラーを生成する。
func NewIoFileNotFound(path string, cause error) *merr.MError {
	return merr.NewMError(IoFileNotFoundErrorID, merr.ErrorKindNotFound, "ファイルが見つかりません: %s", cause, path)
}

// NewIoExtInvalid は拡張子不正エラーを生成する。
func NewIoExtInvalid(path string, cause error) *merr.MError {
	return merr.NewMError(IoExtInvalidErrorID, merr.ErrorKindValidate, "拡張子が未対応です: %s", cause, path)
}

// NewIoParseFailed は解析失敗エラーを生成する。
func NewIoParseFailed(format string, cause error, params ...any) *merr.MError {
	return merr.NewMError(IoParseFailedErrorID, merr.ErrorKindExternal, format, cause, params...)
}

// NewIoFormatNotSupported は形式未対応エラーを生成する。
func NewIoFormatNotSupported(format string, cause error, params ...any) *merr.MError {
	return merr.NewMError(IoFormatUnsupportedID, merr.ErrorKindExternal, format, cause, params...)
}

// NewUnresolvedJoint はヒューマノイドボーンへ対応しない関節エラーを生成する。
func NewUnresolvedJoint(jointName string) *merr.MError {
	return merr.NewMError(UnresolvedJointErrorID, merr.ErrorKindNotFound, "ヒューマノイドボーンへ対応しない関節です: %s", nil, jointName)
}

// NewUnresolvableTargetBone は出力先に関節が無いエラーを生成する。
func NewUnresolvableTargetBone(jointName string, bone string) *merr.MError {
	return merr.NewMError(UnresolvableTargetID, merr.ErrorKindNotFound, "出力先にボーンがありません: joint=%s bone=%s", nil, jointName, bone)
}

// NewScaleChannelRejected はスケールチャンネル拒否エラーを生成する。
func NewScaleChannelRejected(jointName string) *merr.MError {
	return merr.NewMError(ScaleChannelRejectedID, merr.ErrorKindValidate, "スケールチャンネルはリターゲット対象外です: %s", nil, jointName)
}

// NewNonHipsTranslation はhips以外の移動チャンネル拒否エラーを生成する。
func NewNonHipsTranslation(jointName string, bone string) *merr.MError {
	return merr.NewMError(NonHipsTranslationID, merr.ErrorKindValidate, "hips以外の移動チャンネルは対象外です: joint=%s bone=%s", nil, jointName, bone)
}

// NewEmptySourceClip はアニメーション無しエラーを生成する。
func NewEmptySourceClip(clipName string) *merr.MError {
	return merr.NewMError(EmptySourceClipErrorID, merr.ErrorKindValidate, "アニメーションデータがありません: %s", nil, clipName)
}

// NewZeroTracksMapped は対応トラック0件エラーを生成する。
func NewZeroTracksMapped(clipName string, total int) *merr.MError {
	return merr.NewMError(ZeroTracksMappedErrorID, merr.ErrorKindValidate, "対応づいたトラックがありません: clip=%s total=%d", nil, clipName, total)
}

// NewMissingHipsReference はhips参照不足警告を生成する。
func NewMissingHipsReference(side string) *merr.MError {
	return merr.NewMError(MissingHipsReferenceID, merr.ErrorKindNotFound, "hipsの高さを参照できません: %s", nil, side)
}

// NewStaleResult は古い要求の結果であることを示すエラーを生成する。
func NewStaleResult(token uint64, current uint64) *merr.MError {
	return merr.NewMError(StaleResultErrorID, merr.ErrorKindInternal, "古い要求の結果を破棄しました: token=%d current=%d", nil, token, current)
}

// NewPreloaderClosed は停止済みの先読みへの要求を示すエラーを生成する。
func NewPreloaderClosed(key string) *merr.MError {
	return merr.NewMError(PreloaderClosedErrorID, merr.ErrorKindInternal, "先読みは停止済みです: %s", nil, key)
}

// NewSkeletonInvalid はスケルトン構築エラーを生成する。
func NewSkeletonInvalid(format string, params ...any) *merr.MError {
	return merr.NewMError(SkeletonInvalidErrorID, merr.ErrorKindValidate, format, nil, params...)
}

// NewPlaybackModeInvalid は再生モード不一致エラーを生成する。
func NewPlaybackModeInvalid(format string, params ...any) *merr.MError {
	return merr.NewMError(PlaybackModeErrorID, merr.ErrorKindValidate, format, nil, params...)
}

// NewClipCatalogEmpty は予定に使えるクリップが無いエラーを生成する。
func NewClipCatalogEmpty() *merr.MError {
	return merr.NewMError(ClipCatalogEmptyErrorID, merr.ErrorKindValidate, "待機・発話に使えるクリップがありません", nil)
}
