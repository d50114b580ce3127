// 指示: miu200521358
package bonename

import (
	"strings"
	"unicode"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
	"golang.org/x/text/width"
)

// stripPrefixes は大文字小文字を無視して除去するリグ接頭辞を保持する。
var stripPrefixes = []string{"mixamorig", "armature|"}

// rejectedNames はボーンとして扱わない名前を保持する。
var rejectedNames = map[string]struct{}{
	"root":      {},
	"reference": {},
	"armature":  {},
}

// sideTokens は左右トークンの対応を保持する。
var sideTokens = map[string]humanoid.Side{
	"l":     humanoid.SIDE_LEFT,
	"left":  humanoid.SIDE_LEFT,
	"r":     humanoid.SIDE_RIGHT,
	"right": humanoid.SIDE_RIGHT,
}

// synonyms は表記揺れを正規部位名へ寄せる対応を保持する。
var synonyms = map[string]string{
	"hips": "hips", "hip": "hips", "pelvis": "hips",
	"spine": "spine", "chest": "chest", "upperchest": "upperchest",
	"neck": "neck", "head": "head",
	"shoulder": "shoulder", "clavicle": "shoulder",
	"upperarm": "upperarm", "arm": "upperarm",
	"lowerarm": "lowerarm", "forearm": "lowerarm",
	"hand":     "hand",
	"upperleg": "upperleg", "upleg": "upperleg", "thigh": "upperleg",
	"lowerleg": "lowerleg", "leg": "lowerleg", "calf": "lowerleg", "shin": "lowerleg",
	"foot": "foot",
	"toes": "toes", "toe": "toes", "toebase": "toes", "ball": "toes",
	"thumb": "thumb", "index": "index", "middle": "middle", "ring": "ring",
	"little": "little", "pinky": "little",
	"metacarpal": "metacarpal",
	"proximal":   "proximal", "1": "proximal", "01": "proximal",
	"intermediate": "intermediate", "2": "intermediate", "02": "intermediate",
	"distal": "distal", "3": "distal", "03": "distal",
}

// stripPrefix はリグ接頭辞と名前空間を除去する。除外名の場合はfalseを返す。
func stripPrefix(raw string) (string, bool) {
	name := trimRigPrefixes(strings.TrimSpace(width.Fold.String(raw)))
	if idx := strings.LastIndex(name, "|"); idx >= 0 {
		name = trimRigPrefixes(name[idx+1:])
	}
	if idx := strings.LastIndex(name, ":"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimLeft(name, "_:.- ")
	if name == "" {
		return "", false
	}
	if _, rejected := rejectedNames[strings.ToLower(name)]; rejected {
		return "", false
	}
	return name, true
}

// trimRigPrefixes は大文字小文字を無視して既知の接頭辞を除去する。
func trimRigPrefixes(name string) string {
	for _, prefix := range stripPrefixes {
		if len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
			name = name[len(prefix):]
		}
	}
	return name
}

// tokenize は区切り文字、キャメルケース境界、英字数字境界で小文字トークンへ分割する。
func tokenize(name string) []string {
	runes := []rune(name)
	tokens := make([]string, 0, 4)
	current := make([]rune, 0, len(runes))
	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, strings.ToLower(string(current)))
			current = current[:0]
		}
	}
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if i > 0 && len(current) > 0 && isTokenBoundary(runes[i-1], r) {
			flush()
		}
		current = append(current, r)
	}
	flush()
	return tokens
}

// isTokenBoundary は前後の文字の間がトークン境界か判定する。
func isTokenBoundary(prev rune, r rune) bool {
	switch {
	case unicode.IsLower(prev) && unicode.IsUpper(r):
		return true
	case unicode.IsLetter(prev) && unicode.IsDigit(r):
		return true
	case unicode.IsDigit(prev) && unicode.IsLetter(r):
		return true
	default:
		return false
	}
}

// extractSide は左右トークンを取り除き、最後に現れた側を返す。
func extractSide(tokens []string) (humanoid.Side, []string) {
	side := humanoid.SIDE_NONE
	body := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if s, ok := sideTokens[token]; ok {
			side = s
			continue
		}
		body = append(body, token)
	}
	return side, body
}

// mapSynonyms は隣接トークンの複合語を優先して正規部位名へ変換する。
// 未知のトークンはそのまま残す。
func mapSynonyms(body []string) []string {
	mapped := make([]string, 0, len(body))
	for i := 0; i < len(body); i++ {
		if i+1 < len(body) {
			if canonical, ok := synonyms[body[i]+body[i+1]]; ok {
				mapped = append(mapped, canonical)
				i++
				continue
			}
		}
		if canonical, ok := synonyms[body[i]]; ok {
			mapped = append(mapped, canonical)
			continue
		}
		mapped = append(mapped, body[i])
	}
	return mapped
}
