// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/skeleton"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/port/moutput"
)

// LoadAnimation は元リグとクリップを読み込む。repがnilなら既定の読込先を使う。
// 拡張子の判定は読込先に任せる。
func (uc *RetargetUsecase) LoadAnimation(rep moutput.IAnimationReader, path string) (*AnimationData, error) {
	repo := rep
	if repo == nil {
		repo = uc.animationReader
	}
	if repo == nil {
		return nil, fmt.Errorf("アニメーション読み込みリポジトリが設定されていません")
	}
	sk, clips, err := repo.LoadAnimation(path)
	if err != nil {
		return nil, err
	}
	return &AnimationData{Name: repo.InferName(path), Skeleton: sk, Clips: clips}, nil
}

// LoadAvatar はアバターのヒューマノイドを読み込む。repがnilなら既定の読込先を使う。
func (uc *RetargetUsecase) LoadAvatar(rep moutput.IAvatarReader, path string) (*skeleton.Humanoid, error) {
	repo := rep
	if repo == nil {
		repo = uc.avatarReader
	}
	if repo == nil {
		return nil, fmt.Errorf("アバター読み込みリポジトリが設定されていません")
	}
	if !repo.CanLoad(path) {
		return nil, merrors.NewIoExtInvalid(path, nil)
	}
	return repo.LoadHumanoid(path)
}
