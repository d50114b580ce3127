// 指示: miu200521358
package model

import (
	"sort"

	"github.com/hashicorp/go-multierror"
)

// Report はクリップ1件分の対応付け品質を表す。
type Report struct {
	ClipName            string
	Family              string
	UpAxis              string
	HipsScale           float64
	TracksTotal         int
	TracksMapped        int
	UnmatchedJointNames []string
	Skipped             map[SkipReason]int
	Warnings            []Warning
	Suggestions         map[string]string
	trackErrors         *multierror.Error
}

// NewReport は空のReportを生成する。
func NewReport(clipName string) *Report {
	return &Report{
		ClipName:    clipName,
		HipsScale:   1.0,
		Skipped:     map[SkipReason]int{},
		Suggestions: map[string]string{},
	}
}

// AddMapped は出力トラック数を加算する。
func (r *Report) AddMapped() {
	r.TracksTotal++
	r.TracksMapped++
}

// AddSkipped は除外トラックを記録する。名前未対応の関節は重複なく一覧へ追加する。
func (r *Report) AddSkipped(reason SkipReason, jointName string, err error) {
	r.TracksTotal++
	r.Skipped[reason]++
	if reason == RetargetWarningUnresolvedJoint || reason == RetargetWarningUnresolvableTargetBone {
		r.addUnmatched(jointName)
	}
	if err != nil {
		r.trackErrors = multierror.Append(r.trackErrors, err)
	}
}

// AddWarning は非致命警告を記録する。
func (r *Report) AddWarning(warning Warning, err error) {
	r.Warnings = append(r.Warnings, warning)
	if err != nil {
		r.trackErrors = multierror.Append(r.trackErrors, err)
	}
}

// addUnmatched は未対応関節名を整列済みで重複なく追加する。
func (r *Report) addUnmatched(jointName string) {
	idx := sort.SearchStrings(r.UnmatchedJointNames, jointName)
	if idx < len(r.UnmatchedJointNames) && r.UnmatchedJointNames[idx] == jointName {
		return
	}
	r.UnmatchedJointNames = append(r.UnmatchedJointNames, "")
	copy(r.UnmatchedJointNames[idx+1:], r.UnmatchedJointNames[idx:])
	r.UnmatchedJointNames[idx] = jointName
}

// HasWarning は警告が記録済みか判定する。
func (r *Report) HasWarning(warning Warning) bool {
	for _, w := range r.Warnings {
		if w == warning {
			return true
		}
	}
	return false
}

// MappedRatio は出力トラック比率を返す。
func (r *Report) MappedRatio() float64 {
	if r.TracksTotal == 0 {
		return 0
	}
	return float64(r.TracksMapped) / float64(r.TracksTotal)
}

// TrackErrors はトラック単位の非致命エラーをまとめて返す。無い場合はnil。
func (r *Report) TrackErrors() error {
	return r.trackErrors.ErrorOrNil()
}
