// 指示: miu200521358
package model

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
)

func TestReportCountsAndUnmatchedNames(t *testing.T) {
	r := NewReport("idle")
	r.AddMapped()
	r.AddSkipped(RetargetWarningUnresolvedJoint, "Bone_47", errors.New("unresolved Bone_47"))
	r.AddSkipped(RetargetWarningUnresolvedJoint, "Bone_47", nil)
	r.AddSkipped(RetargetWarningUnresolvedJoint, "Bone_12", nil)
	r.AddSkipped(RetargetWarningScaleChannel, "Hips", errors.New("scale"))

	if r.TracksTotal != 5 || r.TracksMapped != 1 {
		t.Fatalf("count mismatch: total=%d mapped=%d", r.TracksTotal, r.TracksMapped)
	}
	if len(r.UnmatchedJointNames) != 2 || r.UnmatchedJointNames[0] != "Bone_12" {
		t.Fatalf("unmatched mismatch: %v", r.UnmatchedJointNames)
	}
	if r.Skipped[RetargetWarningUnresolvedJoint] != 3 {
		t.Fatalf("skip count mismatch: %v", r.Skipped)
	}

	var merr *multierror.Error
	if !errors.As(r.TrackErrors(), &merr) || len(merr.Errors) != 2 {
		t.Fatalf("track errors mismatch: %v", r.TrackErrors())
	}
}

func TestReportTrackErrorsNilWhenClean(t *testing.T) {
	r := NewReport("idle")
	r.AddMapped()
	if r.TrackErrors() != nil {
		t.Fatalf("expected nil track errors")
	}
	if r.MappedRatio() != 1 {
		t.Fatalf("ratio mismatch: %v", r.MappedRatio())
	}
}

func TestSourceClipIsEmpty(t *testing.T) {
	clip := &SourceClip{Name: "empty", Tracks: []RawTrack{{JointName: "Hips", Channel: CHANNEL_ROTATION}}}
	if !clip.IsEmpty() {
		t.Fatalf("clip without samples should be empty")
	}
	clip.Tracks[0].Times = []float64{0}
	clip.Tracks[0].Values = []float64{0, 0, 0, 1}
	if clip.IsEmpty() {
		t.Fatalf("clip with samples should not be empty")
	}
}
