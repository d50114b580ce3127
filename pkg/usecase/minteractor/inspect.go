// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/retarget"
)

// Inspect は選択したクリップの系統、上方向軸、関節ごとの対応付けを返す。
func (uc *RetargetUsecase) Inspect(request InspectRequest) (*InspectResult, error) {
	animation := request.Animation
	if animation == nil {
		if strings.TrimSpace(request.AnimationPath) == "" {
			return nil, fmt.Errorf("入力アニメーションパスが未指定です")
		}
		loaded, err := uc.LoadAnimation(request.Reader, request.AnimationPath)
		if err != nil {
			return nil, err
		}
		animation = loaded
	}
	source, ok := retarget.SelectClip(animation.Clips, request.ClipName)
	if !ok {
		return nil, merrors.NewEmptySourceClip(animation.Name)
	}
	mappings, family, err := uc.compiler.Inspect(source, request.Family)
	if err != nil {
		return nil, err
	}
	jointCount := 0
	if animation.Skeleton != nil {
		jointCount = animation.Skeleton.Len()
	}
	return &InspectResult{
		ClipName:   source.Name,
		ClipNames:  animation.ClipNames(),
		Family:     family,
		UpAxis:     retarget.DetectSourceUpAxis(animation.Skeleton),
		JointCount: jointCount,
		Mappings:   mappings,
	}, nil
}
