// 指示: miu200521358
// Package model はアニメーションクリップとリターゲット結果を表す。
package model

import (
	"github.com/google/uuid"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/mmath"
)

// ChannelKind はトラックのチャンネル種別を表す。
type ChannelKind string

const (
	// CHANNEL_ROTATION は回転チャンネル。値はx,y,z,wの4成分。
	CHANNEL_ROTATION ChannelKind = "rotation"
	// CHANNEL_TRANSLATION は移動チャンネル。値はx,y,zの3成分。
	CHANNEL_TRANSLATION ChannelKind = "translation"
	// CHANNEL_SCALE はスケールチャンネル。リターゲット対象外。
	CHANNEL_SCALE ChannelKind = "scale"
)

// Stride は1サンプルあたりの成分数を返す。
func (c ChannelKind) Stride() int {
	if c == CHANNEL_ROTATION {
		return 4
	}
	return 3
}

// RawTrack は元リグの1チャンネル分のアニメーションを表す。
type RawTrack struct {
	JointName string
	Channel   ChannelKind
	Times     []float64
	Values    []float64
}

// SampleCount はサンプル数を返す。
func (t *RawTrack) SampleCount() int {
	stride := t.Channel.Stride()
	count := len(t.Values) / stride
	if len(t.Times) < count {
		return len(t.Times)
	}
	return count
}

// Rotation はi番目の回転サンプルを返す。
func (t *RawTrack) Rotation(i int) mmath.Quaternion {
	base := i * 4
	return mmath.NewQuaternionByValues(t.Values[base], t.Values[base+1], t.Values[base+2], t.Values[base+3])
}

// Vector はi番目の3成分サンプルを返す。
func (t *RawTrack) Vector(i int) mmath.Vec3 {
	base := i * 3
	return mmath.NewVec3(t.Values[base], t.Values[base+1], t.Values[base+2])
}

// SourceClip は元リグのアニメーションクリップを表す。
type SourceClip struct {
	Name     string
	Duration float64
	Tracks   []RawTrack
}

// IsEmpty はアニメーションデータが無いか判定する。
func (c *SourceClip) IsEmpty() bool {
	if c == nil || len(c.Tracks) == 0 {
		return true
	}
	for i := range c.Tracks {
		if c.Tracks[i].SampleCount() > 0 {
			return false
		}
	}
	return true
}

// CompiledTrack はヒューマノイドボーンへ変換済みのトラックを表す。
type CompiledTrack struct {
	Bone    humanoid.BoneName
	Channel ChannelKind
	Times   []float64
	Values  []float64
}

// SampleCount はサンプル数を返す。
func (t *CompiledTrack) SampleCount() int {
	return len(t.Times)
}

// Rotation はi番目の回転サンプルを返す。
func (t *CompiledTrack) Rotation(i int) mmath.Quaternion {
	base := i * 4
	return mmath.NewQuaternionByValues(t.Values[base], t.Values[base+1], t.Values[base+2], t.Values[base+3])
}

// Vector はi番目の移動サンプルを返す。
func (t *CompiledTrack) Vector(i int) mmath.Vec3 {
	base := i * 3
	return mmath.NewVec3(t.Values[base], t.Values[base+1], t.Values[base+2])
}

// CompiledClip はリターゲット済みクリップを表す。生成後は変更しない。
type CompiledClip struct {
	ID       uuid.UUID
	Name     string
	Duration float64
	Tracks   []CompiledTrack
	Additive bool
	Report   *Report
}

// FindTrack はボーンとチャンネルに一致するトラックを返す。
func (c *CompiledClip) FindTrack(bone humanoid.BoneName, channel ChannelKind) (*CompiledTrack, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Tracks {
		if c.Tracks[i].Bone == bone && c.Tracks[i].Channel == channel {
			return &c.Tracks[i], true
		}
	}
	return nil, false
}
