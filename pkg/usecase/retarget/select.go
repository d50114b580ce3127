// 指示: miu200521358
package retarget

import "github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"

// fallbackClipNames は名前指定が無い場合に探すクリップ名の順序。
var fallbackClipNames = []string{"mixamo.com", "Idle", "idle", "Animation", "Take 001"}

// SelectClip は指定名、既定名の順でクリップを選び、無ければ先頭を返す。
func SelectClip(clips []*model.SourceClip, name string) (*model.SourceClip, bool) {
	if len(clips) == 0 {
		return nil, false
	}
	names := fallbackClipNames
	if name != "" {
		names = append([]string{name}, fallbackClipNames...)
	}
	for _, candidate := range names {
		for _, clip := range clips {
			if clip != nil && clip.Name == candidate {
				return clip, true
			}
		}
	}
	for _, clip := range clips {
		if clip != nil {
			return clip, true
		}
	}
	return nil, false
}
