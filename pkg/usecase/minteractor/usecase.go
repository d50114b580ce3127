// 指示: miu200521358
// Package minteractor は読込、変換、先読みをまとめたリターゲットユースケースを提供する。
package minteractor

import (
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/port/moutput"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/preload"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/retarget"
)

// RetargetUsecaseDeps はリターゲットユースケースの依存を表す。
type RetargetUsecaseDeps struct {
	AnimationReader moutput.IAnimationReader
	AvatarReader    moutput.IAvatarReader
	// Compiler はnilなら組込み対応表で生成する。
	Compiler *retarget.Compiler
	// Preloader は先読みを使う場合だけ設定する。
	Preloader *preload.Preloader
}

// RetargetUsecase はアニメーションをアバター用クリップへ変換する処理をまとめたユースケースを表す。
type RetargetUsecase struct {
	animationReader moutput.IAnimationReader
	avatarReader    moutput.IAvatarReader
	compiler        *retarget.Compiler
	preloader       *preload.Preloader
}

// NewRetargetUsecase はリターゲットユースケースを生成する。
func NewRetargetUsecase(deps RetargetUsecaseDeps) *RetargetUsecase {
	compiler := deps.Compiler
	if compiler == nil {
		compiler = retarget.NewCompiler(retarget.Options{})
	}
	return &RetargetUsecase{
		animationReader: deps.AnimationReader,
		avatarReader:    deps.AvatarReader,
		compiler:        compiler,
		preloader:       deps.Preloader,
	}
}

// Compiler は使用中のCompilerを返す。
func (uc *RetargetUsecase) Compiler() *retarget.Compiler {
	return uc.compiler
}
