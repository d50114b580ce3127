// 指示: miu200521358
package bonename

import (
	"fmt"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
	"gopkg.in/Knetic/govaluate.v3"
)

// SpineRule は背骨番号の判定式と割り当て先を表す。式は変数 n を参照する。
type SpineRule struct {
	Expression string
	Bone       humanoid.BoneName
}

// DefaultSpineRules は既定の背骨番号判定を返す。
func DefaultSpineRules() []SpineRule {
	return []SpineRule{
		{Expression: "n <= 2", Bone: humanoid.SPINE},
		{Expression: "n == 3", Bone: humanoid.CHEST},
		{Expression: "n >= 4", Bone: humanoid.UPPER_CHEST},
	}
}

// DefaultSpineOverrides は spine 直後の番号トークンによる上書きを返す。
func DefaultSpineOverrides() map[string]humanoid.BoneName {
	return map[string]humanoid.BoneName{
		"1": humanoid.CHEST,
		"2": humanoid.UPPER_CHEST,
	}
}

// compiledSpineRule は解析済みの判定式を表す。
type compiledSpineRule struct {
	expression *govaluate.EvaluableExpression
	bone       humanoid.BoneName
}

// SpineNumbering は背骨番号からボーンを決める規則を表す。
type SpineNumbering struct {
	rules     []compiledSpineRule
	overrides map[string]humanoid.BoneName
}

// NewSpineNumbering は判定式を解析して規則を生成する。
func NewSpineNumbering(rules []SpineRule, overrides map[string]humanoid.BoneName) (*SpineNumbering, error) {
	compiled := make([]compiledSpineRule, 0, len(rules))
	for _, rule := range rules {
		if !rule.Bone.IsValid() {
			return nil, fmt.Errorf("背骨規則のボーン名が不正です: %s", rule.Bone)
		}
		expr, err := govaluate.NewEvaluableExpression(rule.Expression)
		if err != nil {
			return nil, fmt.Errorf("背骨規則の式解析に失敗しました: %s: %w", rule.Expression, err)
		}
		compiled = append(compiled, compiledSpineRule{expression: expr, bone: rule.Bone})
	}
	copied := make(map[string]humanoid.BoneName, len(overrides))
	for token, bone := range overrides {
		copied[token] = bone
	}
	return &SpineNumbering{rules: compiled, overrides: copied}, nil
}

// DefaultSpineNumbering は既定規則を返す。
func DefaultSpineNumbering() *SpineNumbering {
	numbering, err := NewSpineNumbering(DefaultSpineRules(), DefaultSpineOverrides())
	if err != nil {
		panic(err)
	}
	return numbering
}

// resolve は番号無しの場合 spine を返し、番号付きの場合は規則を順に評価する。
// spine 直後のトークンが上書き対象なら規則より優先する。
func (s *SpineNumbering) resolve(body []string) humanoid.BoneName {
	bone := humanoid.SPINE
	if number, ok := firstNumber(body); ok {
		for _, rule := range s.rules {
			result, err := rule.expression.Evaluate(map[string]interface{}{"n": float64(number)})
			if err != nil {
				logNormalizerDebug("背骨規則の評価に失敗しました: %v", err)
				continue
			}
			if matched, ok := result.(bool); ok && matched {
				bone = rule.bone
				break
			}
		}
	}
	for i, token := range body {
		if token != "spine" || i+1 >= len(body) {
			continue
		}
		if override, ok := s.overrides[body[i+1]]; ok {
			bone = override
		}
		break
	}
	return bone
}

// firstNumber は最初の数字トークンを返す。
func firstNumber(body []string) (int, bool) {
	for _, token := range body {
		n := 0
		valid := token != ""
		for _, r := range token {
			if r < '0' || r > '9' {
				valid = false
				break
			}
			n = n*10 + int(r-'0')
		}
		if valid {
			return n, true
		}
	}
	return 0, false
}
