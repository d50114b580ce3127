// 指示: miu200521358
package retarget

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"
	"github.com/tiendc/go-deepcopy"
)

// MakeAdditive は先頭フレームからの差分を持つ加算用クリップを複製して返す。
// 回転は conj(先頭)·q、移動は v - 先頭 とする。元のクリップは変更しない。
func MakeAdditive(clip *model.CompiledClip) (*model.CompiledClip, error) {
	if clip == nil {
		return nil, fmt.Errorf("加算用クリップの元が未設定です")
	}
	if clip.Additive {
		return clip, nil
	}
	var tracks []model.CompiledTrack
	if err := deepcopy.Copy(&tracks, clip.Tracks); err != nil {
		return nil, fmt.Errorf("加算用クリップの複製に失敗しました: %w", err)
	}
	additive := model.CompiledClip{
		ID:       uuid.New(),
		Name:     clip.Name,
		Duration: clip.Duration,
		Tracks:   tracks,
		Additive: true,
		Report:   clip.Report,
	}
	for i := range additive.Tracks {
		track := &additive.Tracks[i]
		if track.SampleCount() == 0 {
			continue
		}
		switch track.Channel {
		case model.CHANNEL_ROTATION:
			base := track.Rotation(0).Conjugated()
			for s := 0; s < track.SampleCount(); s++ {
				delta := base.Muled(track.Rotation(s)).Normalized().PositiveW().ToArray()
				copy(track.Values[s*4:s*4+4], delta[:])
			}
		case model.CHANNEL_TRANSLATION:
			base := track.Vector(0)
			for s := 0; s < track.SampleCount(); s++ {
				delta := track.Vector(s).Subed(base).ToArray()
				copy(track.Values[s*3:s*3+3], delta[:])
			}
		}
	}
	return &additive, nil
}
