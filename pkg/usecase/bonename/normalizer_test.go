// 指示: miu200521358
package bonename

import (
	"reflect"
	"testing"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
)

func TestNormalizeKnownNames(t *testing.T) {
	cases := []struct {
		raw  string
		want humanoid.BoneName
	}{
		{"Upper_Arm_L", "leftUpperArm"},
		{"Lower_Arm_L", "leftLowerArm"},
		{"mixamorigLeftForeArm", "leftLowerArm"},
		{"mixamorig:RightUpLeg", "rightUpperLeg"},
		{"Armature|mixamorigHips", "hips"},
		{"mixamorigLeftHandThumb1", "leftThumbMetacarpal"},
		{"mixamorigLeftHandThumb2", "leftThumbProximal"},
		{"mixamorigRightHandPinky3", "rightLittleDistal"},
		{"Thumb_Proximal_L", "leftThumbMetacarpal"},
		{"Index_Intermediate_R", "rightIndexIntermediate"},
		{"J_Bip_C_UpperChest", "upperChest"},
		{"J_Bip_L_UpperArm", "leftUpperArm"},
		{"Upper_Chest", "upperChest"},
		{"LeftToeBase", "leftToes"},
		{"calf_r", "rightLowerLeg"},
		{"thigh_l", "leftUpperLeg"},
		{"clavicle_l", "leftShoulder"},
		{"pelvis", "hips"},
		{"Neck", "neck"},
		{"Head", "head"},
		{"Ｈｉｐｓ", "hips"},
	}
	for _, c := range cases {
		got := Normalize(c.raw)
		if !got.Matched() || got.Bone != c.want {
			t.Fatalf("normalize mismatch: raw=%s got=%v want=%s", c.raw, got, c.want)
		}
	}
}

func TestNormalizeSpineNumbering(t *testing.T) {
	cases := []struct {
		raw  string
		want humanoid.BoneName
	}{
		{"Spine", "spine"},
		{"mixamorigSpine1", "chest"},
		{"mixamorigSpine2", "upperChest"},
		{"spine_03", "chest"},
		{"spine_04", "upperChest"},
		{"Spine_0", "spine"},
	}
	for _, c := range cases {
		got := Normalize(c.raw)
		if got.Bone != c.want {
			t.Fatalf("spine mismatch: raw=%s got=%v want=%s", c.raw, got, c.want)
		}
	}
}

func TestNormalizeNoMatch(t *testing.T) {
	cases := []struct {
		raw    string
		reason NoMatchReason
	}{
		{"Bone_47", REASON_NO_RULE},
		{"root", REASON_REJECTED},
		{"Armature", REASON_REJECTED},
		{"Reference", REASON_REJECTED},
		{"", REASON_REJECTED},
		{"Upper_Arm", REASON_NO_RULE},
		{"Index_Metacarpal_L", REASON_NOT_IN_VOCABULARY},
	}
	for _, c := range cases {
		got := Normalize(c.raw)
		if got.Matched() {
			t.Fatalf("expected no match: raw=%s got=%v", c.raw, got)
		}
		if got.Reason != c.reason {
			t.Fatalf("reason mismatch: raw=%s got=%s want=%s", c.raw, got.Reason, c.reason)
		}
	}
}

func TestTokenizeAndCompoundFirst(t *testing.T) {
	if got := tokenize("Upper_Arm_L"); !reflect.DeepEqual(got, []string{"upper", "arm", "l"}) {
		t.Fatalf("tokenize mismatch: %v", got)
	}
	if got := tokenize("LeftHandIndex12"); !reflect.DeepEqual(got, []string{"left", "hand", "index", "12"}) {
		t.Fatalf("tokenize mismatch: %v", got)
	}
	if got := mapSynonyms([]string{"lower", "arm"}); !reflect.DeepEqual(got, []string{"lowerarm"}) {
		t.Fatalf("compound mismatch: %v", got)
	}
	if got := mapSynonyms([]string{"arm"}); !reflect.DeepEqual(got, []string{"upperarm"}) {
		t.Fatalf("single mismatch: %v", got)
	}
	side, body := extractSide([]string{"upper", "arm", "l"})
	if side != humanoid.SIDE_LEFT || !reflect.DeepEqual(body, []string{"upper", "arm"}) {
		t.Fatalf("side mismatch: side=%s body=%v", side, body)
	}
}

func TestNameCacheIsPureMemoization(t *testing.T) {
	names := []string{"Upper_Arm_L", "Bone_47", "mixamorigSpine2", "Upper_Arm_L", "Hand_R"}
	want := make([]Result, len(names))
	for i, name := range names {
		want[i] = Normalize(name)
	}

	cache := NewNameCache(nil)
	for i := len(names) - 1; i >= 0; i-- {
		if got := cache.Normalize(names[i]); got != want[i] {
			t.Fatalf("cached mismatch: raw=%s got=%v want=%v", names[i], got, want[i])
		}
	}
	if cache.Len() != 4 {
		t.Fatalf("cache len mismatch: got=%d want=%d", cache.Len(), 4)
	}
	for i, name := range names {
		if got := cache.Normalize(name); got != want[i] {
			t.Fatalf("warm cache mismatch: raw=%s got=%v want=%v", name, got, want[i])
		}
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Fatalf("cache should be empty after clear")
	}
}

func TestCustomSpineNumbering(t *testing.T) {
	numbering, err := NewSpineNumbering([]SpineRule{
		{Expression: "n <= 1", Bone: humanoid.SPINE},
		{Expression: "n == 2", Bone: humanoid.CHEST},
		{Expression: "n >= 3", Bone: humanoid.UPPER_CHEST},
	}, nil)
	if err != nil {
		t.Fatalf("numbering failed: %v", err)
	}
	normalizer := NewNormalizer(numbering)
	if got := normalizer.Normalize("spine_02").Bone; got != humanoid.CHEST {
		t.Fatalf("custom rule mismatch: got=%s", got)
	}
	if _, err := NewSpineNumbering([]SpineRule{{Expression: "n <=", Bone: humanoid.SPINE}}, nil); err == nil {
		t.Fatalf("expected expression error")
	}
	if _, err := NewSpineNumbering([]SpineRule{{Expression: "n > 0", Bone: "leftEye"}}, nil); err == nil {
		t.Fatalf("expected bone error")
	}
}
