// 指示: miu200521358
package retarget

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/rigmap"
)

// suggestionThreshold は候補として提示する類似度の下限。
const suggestionThreshold = 0.8

// attachSuggestions は未対応関節ごとに表の関節名またはボーン名から最も近い候補を記録する。
// 候補は診断表示専用で、対応付けには使わない。
func attachSuggestions(report *model.Report, table *rigmap.Table) {
	if report == nil || len(report.UnmatchedJointNames) == 0 {
		return
	}
	candidates := make([]string, 0, 128)
	if table != nil {
		candidates = append(candidates, table.JointNames()...)
	}
	for _, bone := range humanoid.AllBones() {
		candidates = append(candidates, bone.String())
	}

	metric := metrics.NewJaroWinkler()
	metric.CaseSensitive = false
	for _, joint := range report.UnmatchedJointNames {
		best, score := bestCandidate(joint, candidates, metric)
		if score >= suggestionThreshold {
			report.Suggestions[joint] = best
		}
	}
}

func bestCandidate(joint string, candidates []string, metric *metrics.JaroWinkler) (string, float64) {
	query := strings.TrimSpace(joint)
	best := ""
	bestScore := 0.0
	for _, candidate := range candidates {
		score := strutil.Similarity(query, candidate, metric)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best, bestScore
}
