// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/skeleton"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/coordaxis"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/port/moutput"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/retarget"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/rigmap"
)

// AnimationData は読み込んだ元リグとクリップを表す。
type AnimationData struct {
	Name     string
	Skeleton *skeleton.Skeleton
	Clips    []*model.SourceClip
}

// ClipNames はクリップ名を読込順で返す。
func (a *AnimationData) ClipNames() []string {
	if a == nil {
		return nil
	}
	names := make([]string, 0, len(a.Clips))
	for _, clip := range a.Clips {
		if clip != nil {
			names = append(names, clip.Name)
		}
	}
	return names
}

// CompileProgressEventType は変換処理の進捗イベント種別を表す。
type CompileProgressEventType string

const (
	// CompileProgressEventTypeAnimationLoaded はアニメーション読込完了イベントを表す。
	CompileProgressEventTypeAnimationLoaded CompileProgressEventType = "animation_loaded"
	// CompileProgressEventTypeAvatarLoaded はアバター読込完了イベントを表す。
	CompileProgressEventTypeAvatarLoaded CompileProgressEventType = "avatar_loaded"
	// CompileProgressEventTypeClipSelected はクリップ選択完了イベントを表す。
	CompileProgressEventTypeClipSelected CompileProgressEventType = "clip_selected"
	// CompileProgressEventTypeCompiled はクリップ変換完了イベントを表す。
	CompileProgressEventTypeCompiled CompileProgressEventType = "compiled"
)

// CompileProgressEvent は変換処理の進捗イベントを表す。
type CompileProgressEvent struct {
	Type         CompileProgressEventType
	ClipName     string
	TrackCount   int
	MappedTracks int
}

// ICompileProgressReporter は変換処理の進捗通知契約を表す。
type ICompileProgressReporter interface {
	// ReportCompileProgress は変換処理進捗を通知する。
	ReportCompileProgress(event CompileProgressEvent)
}

// CompileRequest はクリップ変換要求を表す。
// Animation/Avatarが設定済みなら対応するパスからは読み込まない。
type CompileRequest struct {
	AnimationPath    string
	AvatarPath       string
	ClipName         string
	Family           rigmap.Family
	Additive         bool
	Animation        *AnimationData
	Avatar           *skeleton.Humanoid
	AnimationReader  moutput.IAnimationReader
	AvatarReader     moutput.IAvatarReader
	ProgressReporter ICompileProgressReporter
}

// CompileResult はクリップ変換結果を表す。
type CompileResult struct {
	Clip           *model.CompiledClip
	Report         *model.Report
	SourceClipName string
	ClipNames      []string
}

// InspectRequest は対応付け確認要求を表す。
type InspectRequest struct {
	AnimationPath string
	ClipName      string
	Family        rigmap.Family
	Animation     *AnimationData
	Reader        moutput.IAnimationReader
}

// InspectResult は対応付け確認結果を表す。
type InspectResult struct {
	ClipName   string
	ClipNames  []string
	Family     rigmap.Family
	UpAxis     coordaxis.UpAxis
	JointCount int
	Mappings   []retarget.JointMapping
}

// MappedCount は対応付けできた関節数を返す。
func (r *InspectResult) MappedCount() int {
	count := 0
	for _, mapping := range r.Mappings {
		if mapping.Source != retarget.MAPPING_NONE {
			count++
		}
	}
	return count
}
