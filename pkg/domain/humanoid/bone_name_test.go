// 指示: miu200521358
package humanoid

import "testing"

func TestAllBonesAreUniqueAndValid(t *testing.T) {
	bones := AllBones()
	if len(bones) != 52 {
		t.Fatalf("bone count mismatch: got=%d want=%d", len(bones), 52)
	}
	seen := map[BoneName]struct{}{}
	for _, bone := range bones {
		if !bone.IsValid() {
			t.Fatalf("bone should be valid: %s", bone)
		}
		if _, exists := seen[bone]; exists {
			t.Fatalf("bone should be unique: %s", bone)
		}
		seen[bone] = struct{}{}
	}
}

func TestBonePartSides(t *testing.T) {
	if UPPER_ARM.Left() != "leftUpperArm" {
		t.Fatalf("left mismatch: %s", UPPER_ARM.Left())
	}
	if THUMB_METACARPAL.Right() != "rightThumbMetacarpal" {
		t.Fatalf("right mismatch: %s", THUMB_METACARPAL.Right())
	}
	if TOES.With(SIDE_NONE) != "" {
		t.Fatalf("none side should be empty")
	}
	if _, ok := Parse("leftEye"); ok {
		t.Fatalf("eye bones are outside the vocabulary")
	}
}
