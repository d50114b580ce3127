// 指示: miu200521358
package rigmap

import (
	"testing"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
)

func TestDefaultRegistryLoadsTables(t *testing.T) {
	registry, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry failed: %v", err)
	}
	mixamo, ok := registry.Table(FAMILY_MIXAMO)
	if !ok {
		t.Fatalf("mixamo table missing")
	}
	if got := len(mixamo.JointNames()); got != 52 {
		t.Fatalf("mixamo joint count mismatch: got=%d want=52", got)
	}
	kawaii, ok := registry.Table(FAMILY_KAWAII)
	if !ok {
		t.Fatalf("kawaii table missing")
	}
	if got := len(kawaii.JointNames()); got != 52 {
		t.Fatalf("kawaii joint count mismatch: got=%d want=52", got)
	}
}

func TestTableLookup(t *testing.T) {
	registry := MustDefaultRegistry()
	mixamo, _ := registry.Table(FAMILY_MIXAMO)
	kawaii, _ := registry.Table(FAMILY_KAWAII)

	cases := []struct {
		table *Table
		joint string
		want  humanoid.BoneName
	}{
		{mixamo, "mixamorigHips", humanoid.HIPS},
		{mixamo, "mixamorigSpine2", humanoid.UPPER_CHEST},
		{mixamo, "mixamorigLeftForeArm", humanoid.LOWER_ARM.Left()},
		{mixamo, "mixamorigRightHandThumb1", humanoid.THUMB_METACARPAL.Right()},
		{mixamo, "mixamorigLeftHandPinky3", humanoid.LITTLE_DISTAL.Left()},
		{mixamo, "mixamorig:LeftToeBase", humanoid.TOES.Left()},
		{mixamo, "Armature|mixamorigHead", humanoid.HEAD},
		{kawaii, "Upper_Chest", humanoid.UPPER_CHEST},
		{kawaii, "Thumb_Proximal_L", humanoid.THUMB_METACARPAL.Left()},
		{kawaii, "Thumb_Intermediate_R", humanoid.THUMB_PROXIMAL.Right()},
		{kawaii, "Lower_Leg_R", humanoid.LOWER_LEG.Right()},
	}
	for _, tc := range cases {
		got, ok := tc.table.Lookup(tc.joint)
		if !ok || got != tc.want {
			t.Fatalf("Lookup(%s) mismatch: got=%s ok=%v want=%s", tc.joint, got, ok, tc.want)
		}
	}

	if _, ok := mixamo.Lookup("mixamorigLeftToe_End"); ok {
		t.Fatalf("end joint should not be in the exact table")
	}
	if _, ok := kawaii.Lookup("Bone_47"); ok {
		t.Fatalf("unknown joint should not resolve")
	}
}

func TestRegistryDetect(t *testing.T) {
	registry := MustDefaultRegistry()
	cases := []struct {
		names []string
		want  Family
	}{
		{[]string{"Root", "mixamorigHips"}, FAMILY_MIXAMO},
		{[]string{"Hips", "Upper_Arm_L"}, FAMILY_KAWAII},
		{[]string{"Upper_Chest", "mixamorigSpine"}, FAMILY_MIXAMO},
		{[]string{"J_Bip_C_Hips", "Bone_47"}, FAMILY_UNKNOWN},
		{nil, FAMILY_UNKNOWN},
	}
	for _, tc := range cases {
		if got := registry.Detect(tc.names); got != tc.want {
			t.Fatalf("Detect(%v) mismatch: got=%s want=%s", tc.names, got, tc.want)
		}
	}
}

func TestKawaiiSignFlipsAndConjugates(t *testing.T) {
	kawaii, _ := MustDefaultRegistry().Table(FAMILY_KAWAII)

	flip, ok := kawaii.SignFlip(humanoid.UPPER_ARM.Left(), true)
	if !ok || flip != (SignFlip{-1, 1, -1, 1}) {
		t.Fatalf("left upper arm flip mismatch: got=%v ok=%v", flip, ok)
	}
	flip, ok = kawaii.SignFlip(humanoid.UPPER_LEG.Right(), true)
	if !ok || flip != (SignFlip{-1, -1, -1, 1}) {
		t.Fatalf("right upper leg flip mismatch: got=%v ok=%v", flip, ok)
	}
	if _, ok := kawaii.SignFlip(humanoid.UPPER_ARM.Left(), false); ok {
		t.Fatalf("y-up flips should be empty")
	}
	if _, ok := kawaii.SignFlip(humanoid.HEAD, true); ok {
		t.Fatalf("head should not be flipped")
	}
	if !kawaii.ConjugateOnYUp(humanoid.LOWER_LEG.Left()) || !kawaii.ConjugateOnYUp(humanoid.LOWER_LEG.Right()) {
		t.Fatalf("lower legs should be conjugated on y-up")
	}
	if kawaii.ConjugateOnYUp(humanoid.UPPER_LEG.Left()) {
		t.Fatalf("upper leg should not be conjugated")
	}
}

func TestWithSignFlipsOverridesCopy(t *testing.T) {
	registry := MustDefaultRegistry()
	kawaii, _ := registry.Table(FAMILY_KAWAII)

	overridden, err := kawaii.WithSignFlips(false, map[humanoid.BoneName]SignFlip{
		humanoid.UPPER_ARM.Left(): {1, -1, 1, 1},
	})
	if err != nil {
		t.Fatalf("WithSignFlips failed: %v", err)
	}
	if flip, ok := overridden.SignFlip(humanoid.UPPER_ARM.Left(), false); !ok || flip != (SignFlip{1, -1, 1, 1}) {
		t.Fatalf("override not applied: got=%v ok=%v", flip, ok)
	}
	if _, ok := kawaii.SignFlip(humanoid.UPPER_ARM.Left(), false); ok {
		t.Fatalf("original table must stay unchanged")
	}

	replaced := registry.Replace(overridden)
	got, _ := replaced.Table(FAMILY_KAWAII)
	if got != overridden {
		t.Fatalf("Replace did not swap the table")
	}

	if _, err := kawaii.WithSignFlips(true, map[humanoid.BoneName]SignFlip{"tail": {1, 1, 1, 1}}); err == nil {
		t.Fatalf("unknown bone should be rejected")
	}
	if _, err := kawaii.WithSignFlips(true, map[humanoid.BoneName]SignFlip{humanoid.HEAD: {2, 1, 1, 1}}); err == nil {
		t.Fatalf("non-unit coefficient should be rejected")
	}
}

func TestParseTableRejectsInvalidBone(t *testing.T) {
	data := []byte("family: custom\nbones:\n  Tail: tail\n")
	if _, err := ParseTable(data); err == nil {
		t.Fatalf("invalid bone should be rejected")
	}
	if _, err := ParseTable([]byte("bones: {}\n")); err == nil {
		t.Fatalf("missing family should be rejected")
	}
}
