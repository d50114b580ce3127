// 指示: miu200521358
// Package rigmap は既知リグ系統の関節名対応表と回転符号補正表を提供する。
package rigmap

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
	"gopkg.in/yaml.v3"
)

// Family はリグ系統を表す。
type Family string

const (
	// FAMILY_UNKNOWN は系統不明。
	FAMILY_UNKNOWN Family = "unknown"
	// FAMILY_MIXAMO はMixamo系統。
	FAMILY_MIXAMO Family = "mixamo"
	// FAMILY_KAWAII はKAWAII系統。
	FAMILY_KAWAII Family = "kawaii"
)

// String は系統名を返す。
func (f Family) String() string {
	return string(f)
}

// SignFlip は回転成分ごとの符号係数[x,y,z,w]を表す。
type SignFlip [4]float64

//go:embed tables/*.yaml
var tableFS embed.FS

// tableFile はYAML表の読み込み形式を表す。
type tableFile struct {
	Family            string                          `yaml:"family"`
	Markers           []string                        `yaml:"markers"`
	Bones             map[string]string               `yaml:"bones"`
	SignFlips         map[string]map[string][]float64 `yaml:"sign_flips"`
	YUpConjugateBones []string                        `yaml:"yup_conjugate_bones"`
}

// Table は1系統分の対応表を表す。
type Table struct {
	family     Family
	markers    []string
	bones      map[string]humanoid.BoneName
	zUpFlips   map[humanoid.BoneName]SignFlip
	yUpFlips   map[humanoid.BoneName]SignFlip
	conjugates map[humanoid.BoneName]struct{}
}

// Family は系統を返す。
func (t *Table) Family() Family {
	return t.family
}

// Markers は系統判定用の部分文字列を返す。
func (t *Table) Markers() []string {
	return append([]string(nil), t.markers...)
}

// JointNames は対応表の関節名を昇順で返す。
func (t *Table) JointNames() []string {
	names := make([]string, 0, len(t.bones))
	for name := range t.bones {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup は関節名を完全一致で引く。名前空間付きの名前は末尾要素でも引く。
func (t *Table) Lookup(jointName string) (humanoid.BoneName, bool) {
	if bone, ok := t.bones[jointName]; ok {
		return bone, true
	}
	short := jointName
	if idx := strings.LastIndex(short, "|"); idx >= 0 {
		short = short[idx+1:]
	}
	// "mixamorig:Hips" 形式はコロンを除いて引く。
	short = strings.Replace(short, ":", "", 1)
	if short == jointName {
		return "", false
	}
	bone, ok := t.bones[short]
	return bone, ok
}

// SignFlip はボーンの符号係数を返す。該当しない場合はfalse。
func (t *Table) SignFlip(bone humanoid.BoneName, zUp bool) (SignFlip, bool) {
	flips := t.yUpFlips
	if zUp {
		flips = t.zUpFlips
	}
	flip, ok := flips[bone]
	return flip, ok
}

// ConjugateOnYUp はY-up時に+X90°共役を適用するボーンか判定する。
func (t *Table) ConjugateOnYUp(bone humanoid.BoneName) bool {
	_, ok := t.conjugates[bone]
	return ok
}

// WithSignFlips は符号係数を上書きした複製を返す。
func (t *Table) WithSignFlips(zUp bool, overrides map[humanoid.BoneName]SignFlip) (*Table, error) {
	clone := t.clone()
	target := clone.yUpFlips
	if zUp {
		target = clone.zUpFlips
	}
	for bone, flip := range overrides {
		if !bone.IsValid() {
			return nil, fmt.Errorf("符号補正のボーン名が不正です: %s", bone)
		}
		for _, c := range flip {
			if c != 1 && c != -1 {
				return nil, fmt.Errorf("符号補正の係数は±1のみ指定できます: %s %v", bone, flip)
			}
		}
		target[bone] = flip
	}
	return clone, nil
}

func (t *Table) clone() *Table {
	c := &Table{
		family:     t.family,
		markers:    append([]string(nil), t.markers...),
		bones:      make(map[string]humanoid.BoneName, len(t.bones)),
		zUpFlips:   make(map[humanoid.BoneName]SignFlip, len(t.zUpFlips)),
		yUpFlips:   make(map[humanoid.BoneName]SignFlip, len(t.yUpFlips)),
		conjugates: make(map[humanoid.BoneName]struct{}, len(t.conjugates)),
	}
	for k, v := range t.bones {
		c.bones[k] = v
	}
	for k, v := range t.zUpFlips {
		c.zUpFlips[k] = v
	}
	for k, v := range t.yUpFlips {
		c.yUpFlips[k] = v
	}
	for k := range t.conjugates {
		c.conjugates[k] = struct{}{}
	}
	return c
}

// ParseTable はYAMLから対応表を生成する。
func ParseTable(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("リグ対応表の解析に失敗しました: %w", err)
	}
	family := Family(file.Family)
	if family == "" || family == FAMILY_UNKNOWN {
		return nil, fmt.Errorf("リグ対応表の系統名が不正です: %q", file.Family)
	}
	table := &Table{
		family:     family,
		markers:    file.Markers,
		bones:      make(map[string]humanoid.BoneName, len(file.Bones)),
		zUpFlips:   map[humanoid.BoneName]SignFlip{},
		yUpFlips:   map[humanoid.BoneName]SignFlip{},
		conjugates: map[humanoid.BoneName]struct{}{},
	}
	for joint, value := range file.Bones {
		bone, ok := humanoid.Parse(value)
		if !ok {
			return nil, fmt.Errorf("リグ対応表のボーン名が不正です: %s -> %s", joint, value)
		}
		table.bones[joint] = bone
	}
	for axis, flips := range file.SignFlips {
		var target map[humanoid.BoneName]SignFlip
		switch axis {
		case "zup":
			target = table.zUpFlips
		case "yup":
			target = table.yUpFlips
		default:
			return nil, fmt.Errorf("符号補正の軸名が不正です: %s", axis)
		}
		for value, components := range flips {
			bone, ok := humanoid.Parse(value)
			if !ok {
				return nil, fmt.Errorf("符号補正のボーン名が不正です: %s", value)
			}
			if len(components) != 4 {
				return nil, fmt.Errorf("符号補正は4成分で指定してください: %s", value)
			}
			target[bone] = SignFlip{components[0], components[1], components[2], components[3]}
		}
	}
	for _, value := range file.YUpConjugateBones {
		bone, ok := humanoid.Parse(value)
		if !ok {
			return nil, fmt.Errorf("共役対象のボーン名が不正です: %s", value)
		}
		table.conjugates[bone] = struct{}{}
	}
	return table, nil
}

// Registry は系統判定順に並んだ対応表の集合を表す。
type Registry struct {
	tables []*Table
}

// NewRegistry は判定順に対応表を並べたRegistryを生成する。
func NewRegistry(tables ...*Table) *Registry {
	return &Registry{tables: append([]*Table(nil), tables...)}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// DefaultRegistry は組込みのMixamo/KAWAII表を返す。Mixamoを先に判定する。
func DefaultRegistry() (*Registry, error) {
	defaultOnce.Do(func() {
		tables := make([]*Table, 0, 2)
		for _, name := range []string{"tables/mixamo.yaml", "tables/kawaii.yaml"} {
			data, err := tableFS.ReadFile(name)
			if err != nil {
				defaultErr = err
				return
			}
			table, err := ParseTable(data)
			if err != nil {
				defaultErr = fmt.Errorf("%s: %w", name, err)
				return
			}
			tables = append(tables, table)
		}
		defaultRegistry = NewRegistry(tables...)
	})
	return defaultRegistry, defaultErr
}

// MustDefaultRegistry は組込み表を返す。読み込み失敗時はpanicする。
func MustDefaultRegistry() *Registry {
	registry, err := DefaultRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// Table は系統の対応表を返す。
func (r *Registry) Table(family Family) (*Table, bool) {
	for _, table := range r.tables {
		if table.family == family {
			return table, true
		}
	}
	return nil, false
}

// Replace は同一系統の表を差し替えた新しいRegistryを返す。
func (r *Registry) Replace(table *Table) *Registry {
	tables := make([]*Table, 0, len(r.tables))
	replaced := false
	for _, t := range r.tables {
		if t.family == table.family {
			tables = append(tables, table)
			replaced = true
			continue
		}
		tables = append(tables, t)
	}
	if !replaced {
		tables = append(tables, table)
	}
	return &Registry{tables: tables}
}

// Detect は関節名の集合から系統を判定する。いずれかの名前がマーカーを含む最初の系統を返す。
func (r *Registry) Detect(jointNames []string) Family {
	for _, table := range r.tables {
		for _, name := range jointNames {
			for _, marker := range table.markers {
				if strings.Contains(name, marker) {
					return table.family
				}
			}
		}
	}
	return FAMILY_UNKNOWN
}
