// 指示: miu200521358
// Package bonename は任意リグの関節名をVRMヒューマノイドボーンへ対応づける。
package bonename

import (
	"strings"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
	"github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/logging"
)

// NoMatchReason は対応なしの理由を表す。
type NoMatchReason string

const (
	// REASON_NONE は対応ありを表す。
	REASON_NONE NoMatchReason = ""
	// REASON_REJECTED は除外名または空名を表す。
	REASON_REJECTED NoMatchReason = "rejected"
	// REASON_NO_RULE はどの規則にも一致しないことを表す。
	REASON_NO_RULE NoMatchReason = "no_rule"
	// REASON_NOT_IN_VOCABULARY は語彙外の名前が組み立てられたことを表す。
	REASON_NOT_IN_VOCABULARY NoMatchReason = "not_in_vocabulary"
)

// Result は正規化結果を表す。
type Result struct {
	Bone   humanoid.BoneName
	Reason NoMatchReason
}

// Matched は対応ありか判定する。
func (r Result) Matched() bool {
	return r.Reason == REASON_NONE && r.Bone != ""
}

// noMatch は対応なしの結果を返す。
func noMatch(reason NoMatchReason) Result {
	return Result{Reason: reason}
}

// Normalizer は関節名の正規化規則を表す。状態を持たない。
type Normalizer struct {
	spine *SpineNumbering
}

// NewNormalizer は背骨番号規則を指定してNormalizerを生成する。nilは既定規則とする。
func NewNormalizer(spine *SpineNumbering) *Normalizer {
	if spine == nil {
		spine = DefaultSpineNumbering()
	}
	return &Normalizer{spine: spine}
}

var defaultNormalizer = NewNormalizer(nil)

// Normalize は既定規則で関節名を正規化する。
func Normalize(rawName string) Result {
	return defaultNormalizer.Normalize(rawName)
}

// Normalize は関節名をヒューマノイドボーンへ正規化する。
func (n *Normalizer) Normalize(rawName string) Result {
	name, ok := stripPrefix(rawName)
	if !ok {
		return noMatch(REASON_REJECTED)
	}
	side, body := extractSide(tokenize(name))
	if len(body) == 0 {
		return noMatch(REASON_NO_RULE)
	}
	mapped := mapSynonyms(body)
	candidate, ok := n.matchRules(side, body, mapped)
	if !ok {
		return noMatch(REASON_NO_RULE)
	}
	if !candidate.IsValid() {
		return noMatch(REASON_NOT_IN_VOCABULARY)
	}
	return Result{Bone: candidate}
}

// fingerParts は指名と節名から部位を引く表を保持する。
var fingerParts = map[string]map[string]humanoid.BonePart{
	"thumb": {
		"metacarpal":   humanoid.THUMB_METACARPAL,
		"proximal":     humanoid.THUMB_METACARPAL,
		"intermediate": humanoid.THUMB_PROXIMAL,
		"distal":       humanoid.THUMB_DISTAL,
	},
	"index": {
		"proximal":     humanoid.INDEX_PROXIMAL,
		"intermediate": humanoid.INDEX_INTERMEDIATE,
		"distal":       humanoid.INDEX_DISTAL,
	},
	"middle": {
		"proximal":     humanoid.MIDDLE_PROXIMAL,
		"intermediate": humanoid.MIDDLE_INTERMEDIATE,
		"distal":       humanoid.MIDDLE_DISTAL,
	},
	"ring": {
		"proximal":     humanoid.RING_PROXIMAL,
		"intermediate": humanoid.RING_INTERMEDIATE,
		"distal":       humanoid.RING_DISTAL,
	},
	"little": {
		"proximal":     humanoid.LITTLE_PROXIMAL,
		"intermediate": humanoid.LITTLE_INTERMEDIATE,
		"distal":       humanoid.LITTLE_DISTAL,
	},
}

// fingerOrder は指トークンの探索順を保持する。
var fingerOrder = []string{"thumb", "index", "middle", "ring", "little"}

// segmentNames は節トークンを保持する。
var segmentNames = []string{"metacarpal", "proximal", "intermediate", "distal"}

// limbRules は左右付き部位の判定順を保持する。
var limbRules = []struct {
	token string
	part  humanoid.BonePart
}{
	{"shoulder", humanoid.SHOULDER},
	{"upperarm", humanoid.UPPER_ARM},
	{"lowerarm", humanoid.LOWER_ARM},
	{"hand", humanoid.HAND},
	{"upperleg", humanoid.UPPER_LEG},
	{"lowerleg", humanoid.LOWER_LEG},
	{"foot", humanoid.FOOT},
	{"toes", humanoid.TOES},
}

// torsoRules は左右無し部位の判定順を保持する。spine は番号規則で別途扱う。
var torsoRules = []struct {
	token string
	bone  humanoid.BoneName
}{
	{"hips", humanoid.HIPS},
	{"upperchest", humanoid.UPPER_CHEST},
	{"chest", humanoid.CHEST},
}

// matchRules は変換済みトークンを順序付き規則へ照合する。
func (n *Normalizer) matchRules(side humanoid.Side, body []string, mapped []string) (humanoid.BoneName, bool) {
	if side != humanoid.SIDE_NONE {
		finger, hasFinger := findFirst(mapped, fingerOrder)
		segment, hasSegment := findFirst(mapped, segmentNames)
		if hasFinger && hasSegment {
			part, ok := fingerParts[finger][segment]
			if !ok {
				return humanoid.BoneName(side) + humanoid.BoneName(capitalize(finger)+capitalize(segment)), true
			}
			return part.With(side), true
		}
		for _, rule := range limbRules {
			if contains(mapped, rule.token) {
				return rule.part.With(side), true
			}
		}
	}
	for _, rule := range torsoRules {
		if contains(mapped, rule.token) {
			return rule.bone, true
		}
	}
	if contains(mapped, "spine") {
		return n.spine.resolve(body), true
	}
	if contains(mapped, "neck") {
		return humanoid.NECK, true
	}
	if contains(mapped, "head") {
		return humanoid.HEAD, true
	}
	return "", false
}

// findFirst は mapped 内で候補順に最初に見つかったトークンを返す。
func findFirst(mapped []string, candidates []string) (string, bool) {
	for _, token := range mapped {
		for _, candidate := range candidates {
			if token == candidate {
				return token, true
			}
		}
	}
	return "", false
}

// contains はトークンの有無を判定する。
func contains(tokens []string, target string) bool {
	for _, token := range tokens {
		if token == target {
			return true
		}
	}
	return false
}

// capitalize は先頭を大文字にする。
func capitalize(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}

// logNormalizerDebug は正規化処理のデバッグログを出力する。
func logNormalizerDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}
