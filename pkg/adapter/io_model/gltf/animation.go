// 指示: miu200521358
package gltf

import (
	"fmt"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
)

// channelKinds はtarget.pathとチャンネル種別の対応。weightsは扱わない。
var channelKinds = map[string]model.ChannelKind{
	"rotation":    model.CHANNEL_ROTATION,
	"translation": model.CHANNEL_TRANSLATION,
	"scale":       model.CHANNEL_SCALE,
}

// ReadClips はanimations要素をクリップへ変換する。関節名はnode名を使う。
// CUBICSPLINEは制御点の値だけを採り、STEPはキーをそのまま使う。
func (f *File) ReadClips() ([]*model.SourceClip, error) {
	doc := f.Document
	clips := make([]*model.SourceClip, 0, len(doc.Animations))
	for animIndex, anim := range doc.Animations {
		clip := &model.SourceClip{Name: anim.Name}
		if clip.Name == "" {
			clip.Name = fmt.Sprintf("animation_%03d", animIndex)
		}
		for channelIndex, channel := range anim.Channels {
			kind, ok := channelKinds[channel.Target.Path]
			if !ok || channel.Target.Node == nil {
				logGltfDebug("未対応のチャンネルを無視: animation=%s channel=%d path=%s", clip.Name, channelIndex, channel.Target.Path)
				continue
			}
			node := *channel.Target.Node
			if node < 0 || node >= len(doc.Nodes) {
				return nil, merrors.NewIoParseFailed("animation.channel.target.node が不正です: %d", nil, node)
			}
			if channel.Sampler < 0 || channel.Sampler >= len(anim.Samplers) {
				return nil, merrors.NewIoParseFailed("animation.channel.sampler が不正です: %d", nil, channel.Sampler)
			}
			track, err := f.readTrack(anim.Samplers[channel.Sampler], kind)
			if err != nil {
				return nil, merrors.NewIoParseFailed("アニメーション %s のトラック読込に失敗しました", err, clip.Name)
			}
			track.JointName = resolveNodeName(node, doc.Nodes[node].Name)
			if n := len(track.Times); n > 0 && track.Times[n-1] > clip.Duration {
				clip.Duration = track.Times[n-1]
			}
			clip.Tracks = append(clip.Tracks, track)
		}
		clips = append(clips, clip)
	}
	return clips, nil
}

func (f *File) readTrack(sampler AnimationSampler, kind model.ChannelKind) (model.RawTrack, error) {
	times, err := f.ReadAccessorScalars(sampler.Input)
	if err != nil {
		return model.RawTrack{}, err
	}
	outputs, err := f.ReadAccessorFloats(sampler.Output)
	if err != nil {
		return model.RawTrack{}, err
	}
	stride := kind.Stride()
	spline := sampler.Interpolation == INTERPOLATION_CUBICSPLINE
	perKey := 1
	if spline {
		perKey = 3
	}
	if len(outputs) < len(times)*perKey {
		return model.RawTrack{}, merrors.NewIoParseFailed("出力数がキー数に対して不足しています: keys=%d outputs=%d", nil, len(times), len(outputs))
	}

	values := make([]float64, 0, len(times)*stride)
	for i := range times {
		row := outputs[i*perKey]
		if spline {
			row = outputs[i*perKey+1]
		}
		if len(row) != stride {
			return model.RawTrack{}, merrors.NewIoParseFailed("出力の成分数が不正です: got=%d want=%d", nil, len(row), stride)
		}
		values = append(values, row...)
	}
	return model.RawTrack{Channel: kind, Times: times, Values: values}, nil
}
