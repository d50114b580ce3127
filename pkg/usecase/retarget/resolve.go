// 指示: miu200521358
package retarget

import (
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/bonename"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/rigmap"
)

// MappingSource は関節の対応付け方法を表す。
type MappingSource string

const (
	// MAPPING_NONE は未対応。
	MAPPING_NONE MappingSource = ""
	// MAPPING_TABLE は系統の対応表による完全一致。
	MAPPING_TABLE MappingSource = "table"
	// MAPPING_HEURISTIC は名前推定。
	MAPPING_HEURISTIC MappingSource = "heuristic"
)

// JointMapping は関節1件の対応付け結果を表す。
type JointMapping struct {
	JointName string
	Bone      humanoid.BoneName
	Source    MappingSource
	Reason    bonename.NoMatchReason
}

// boneResolver は系統に応じて関節名を解決する。
type boneResolver struct {
	table     *rigmap.Table
	cache     *bonename.NameCache
	heuristic bool
}

// resolve は関節名からボーン名を返す。
func (r *boneResolver) resolve(jointName string) (humanoid.BoneName, bool) {
	mapping := r.mapping(jointName)
	return mapping.Bone, mapping.Source != MAPPING_NONE
}

func (r *boneResolver) mapping(jointName string) JointMapping {
	result := JointMapping{JointName: jointName}
	if r.table != nil {
		if bone, ok := r.table.Lookup(jointName); ok {
			result.Bone = bone
			result.Source = MAPPING_TABLE
			return result
		}
		if !r.heuristic {
			result.Reason = bonename.REASON_NO_RULE
			return result
		}
	}
	normalized := r.cache.Normalize(jointName)
	if !normalized.Matched() {
		result.Reason = normalized.Reason
		return result
	}
	result.Bone = normalized.Bone
	result.Source = MAPPING_HEURISTIC
	return result
}

// resolverFor は変換1回分の解決器を返す。名前推定キャッシュは呼び出しごとに新しく作り、
// 別リグの結果を持ち越さない。
func (c *Compiler) resolverFor(family rigmap.Family) (*boneResolver, error) {
	table, _ := c.registry.Table(family)
	normalizer, err := c.normalizerFor(family)
	if err != nil {
		return nil, err
	}
	return &boneResolver{
		table:     table,
		cache:     bonename.NewNameCache(normalizer),
		heuristic: table == nil || c.fallbackToHeuristic,
	}, nil
}

// normalizerFor は系統別の背骨番号規則を組み込んだNormalizerを返す。規則の解析は系統ごとに1回。
func (c *Compiler) normalizerFor(family rigmap.Family) (*bonename.Normalizer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if normalizer, ok := c.normalizers[family]; ok {
		return normalizer, nil
	}
	numbering := bonename.DefaultSpineNumbering()
	if c.spineNumbering != nil {
		custom, err := c.spineNumbering(family)
		if err != nil {
			return nil, err
		}
		if custom != nil {
			numbering = custom
		}
	}
	normalizer := bonename.NewNormalizer(numbering)
	c.normalizers[family] = normalizer
	return normalizer, nil
}

// Inspect はクリップの関節ごとの対応付けを返す。同名関節は1件にまとめる。
func (c *Compiler) Inspect(clip *model.SourceClip, family rigmap.Family) ([]JointMapping, rigmap.Family, error) {
	if family == "" {
		family = c.DetectFamily(clip)
	}
	resolver, err := c.resolverFor(family)
	if err != nil {
		return nil, family, err
	}
	if clip == nil {
		return nil, family, nil
	}
	seen := map[string]struct{}{}
	mappings := make([]JointMapping, 0, len(clip.Tracks))
	for i := range clip.Tracks {
		name := clip.Tracks[i].JointName
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		mappings = append(mappings, resolver.mapping(name))
	}
	return mappings, family, nil
}
