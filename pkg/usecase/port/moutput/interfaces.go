// 指示: miu200521358
package moutput

import (
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/skeleton"
)

// IFileReader は入力ファイル共通の判定契約を表す。
type IFileReader interface {
	// CanLoad は拡張子に応じて読み込み可否を判定する。
	CanLoad(path string) bool
	// InferName はパスから表示名を推定する。
	InferName(path string) string
}

// IAnimationReader は元リグとクリップの読み込み契約を表す。
type IAnimationReader interface {
	IFileReader
	// LoadAnimation は元スケルトンとクリップ一覧を読み込む。
	LoadAnimation(path string) (*skeleton.Skeleton, []*model.SourceClip, error)
}

// IAvatarReader は出力先ヒューマノイドの読み込み契約を表す。
type IAvatarReader interface {
	IFileReader
	// LoadHumanoid はヒューマノイド出力先を読み込む。
	LoadHumanoid(path string) (*skeleton.Humanoid, error)
}
