// 指示: miu200521358
// Package config は設定ファイルと環境変数から実行設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
	"github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/logging"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/bonename"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/rigmap"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// ENV_PREFIX は環境変数の接頭辞。
const ENV_PREFIX = "MU_RETARGET"

// defaultSpineKey は系統別の指定が無い場合に使う背骨規則のキー。
const defaultSpineKey = "default"

// SpineRuleSetting は背骨番号規則1件の設定を表す。
type SpineRuleSetting struct {
	Expression string `mapstructure:"expression"`
	Bone       string `mapstructure:"bone"`
}

// Settings は実行設定を表す。
type Settings struct {
	Playback struct {
		CrossfadeSeconds float64 `mapstructure:"crossfade_seconds"`
		ModeDwellSeconds float64 `mapstructure:"mode_dwell_seconds"`
	} `mapstructure:"playback"`
	Schedule struct {
		IdleRotateSeconds float64 `mapstructure:"idle_rotate_seconds"`
	} `mapstructure:"schedule"`
	Normalizer struct {
		SpineRules map[string][]SpineRuleSetting `mapstructure:"spine_rules"`
	} `mapstructure:"normalizer"`
	Rig struct {
		FallbackToHeuristic bool                                       `mapstructure:"fallback_to_heuristic"`
		SignFlips           map[string]map[string]map[string][]float64 `mapstructure:"sign_flips"`
	} `mapstructure:"rig"`
	Log struct {
		Level string `mapstructure:"level"`
		File  string `mapstructure:"file"`
	} `mapstructure:"log"`
	Preload struct {
		Workers int `mapstructure:"workers"`
	} `mapstructure:"preload"`
}

// LoadOptions は読み込み元を表す。空のパスは読み込まない。
type LoadOptions struct {
	ConfigFile string
	EnvFile    string
	Fs         afero.Fs
}

// setDefaults は既定値を登録する。
func setDefaults(v *viper.Viper) {
	v.SetDefault("playback.crossfade_seconds", 0.55)
	v.SetDefault("playback.mode_dwell_seconds", 1.0)
	v.SetDefault("schedule.idle_rotate_seconds", 20.0)
	v.SetDefault("rig.fallback_to_heuristic", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("preload.workers", 2)
}

// Load は.env、設定ファイル、環境変数の順に重ねて設定を読み込む。
func Load(opts LoadOptions) (*Settings, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf(".envの読み込みに失敗しました: %w", err)
		}
	}

	v := viper.New()
	if opts.Fs != nil {
		v.SetFs(opts.Fs)
	}
	setDefaults(v)
	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
			}
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("設定の展開に失敗しました: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Default は既定値のみの設定を返す。
func Default() *Settings {
	v := viper.New()
	setDefaults(v)
	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		panic(err)
	}
	return settings
}

// Validate は値域を検証する。
func (s *Settings) Validate() error {
	if s.Playback.CrossfadeSeconds < 0 {
		return fmt.Errorf("playback.crossfade_seconds は0以上を指定してください: %v", s.Playback.CrossfadeSeconds)
	}
	if s.Playback.ModeDwellSeconds < 0 {
		return fmt.Errorf("playback.mode_dwell_seconds は0以上を指定してください: %v", s.Playback.ModeDwellSeconds)
	}
	if s.Schedule.IdleRotateSeconds <= 0 {
		return fmt.Errorf("schedule.idle_rotate_seconds は正の値を指定してください: %v", s.Schedule.IdleRotateSeconds)
	}
	if s.Preload.Workers <= 0 {
		return fmt.Errorf("preload.workers は1以上を指定してください: %d", s.Preload.Workers)
	}
	return nil
}

// CrossfadeDuration はクロスフェード時間を返す。
func (s *Settings) CrossfadeDuration() time.Duration {
	return secondsToDuration(s.Playback.CrossfadeSeconds)
}

// ModeDwell はモード切替の最短滞在時間を返す。
func (s *Settings) ModeDwell() time.Duration {
	return secondsToDuration(s.Playback.ModeDwellSeconds)
}

// IdleRotateInterval は待機クリップの切替間隔を返す。
func (s *Settings) IdleRotateInterval() time.Duration {
	return secondsToDuration(s.Schedule.IdleRotateSeconds)
}

// LogLevel はログレベルを返す。
func (s *Settings) LogLevel() logging.LogLevel {
	return logging.ParseLogLevel(s.Log.Level)
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// SpineNumbering は系統の背骨番号規則を返す。系統指定が無ければdefault、それも無ければ組込み規則。
func (s *Settings) SpineNumbering(family rigmap.Family) (*bonename.SpineNumbering, error) {
	rules, ok := s.Normalizer.SpineRules[strings.ToLower(family.String())]
	if !ok {
		rules, ok = s.Normalizer.SpineRules[defaultSpineKey]
	}
	if !ok || len(rules) == 0 {
		return bonename.DefaultSpineNumbering(), nil
	}
	parsed := make([]bonename.SpineRule, 0, len(rules))
	for _, rule := range rules {
		bone, ok := parseBoneFold(rule.Bone)
		if !ok {
			return nil, fmt.Errorf("normalizer.spine_rules.%s のボーン名が不正です: %s", family, rule.Bone)
		}
		parsed = append(parsed, bonename.SpineRule{Expression: rule.Expression, Bone: bone})
	}
	return bonename.NewSpineNumbering(parsed, bonename.DefaultSpineOverrides())
}

// ApplySignFlips は符号補正の上書きを反映したRegistryを返す。
func (s *Settings) ApplySignFlips(registry *rigmap.Registry) (*rigmap.Registry, error) {
	result := registry
	for familyName, axes := range s.Rig.SignFlips {
		table, ok := result.Table(rigmap.Family(strings.ToLower(familyName)))
		if !ok {
			return nil, fmt.Errorf("rig.sign_flips の系統が不明です: %s", familyName)
		}
		for axisName, bones := range axes {
			var zUp bool
			switch strings.ToLower(axisName) {
			case "zup":
				zUp = true
			case "yup":
				zUp = false
			default:
				return nil, fmt.Errorf("rig.sign_flips.%s の軸名が不正です: %s", familyName, axisName)
			}
			overrides := make(map[humanoid.BoneName]rigmap.SignFlip, len(bones))
			for boneName, components := range bones {
				bone, ok := parseBoneFold(boneName)
				if !ok {
					return nil, fmt.Errorf("rig.sign_flips.%s.%s のボーン名が不正です: %s", familyName, axisName, boneName)
				}
				if len(components) != 4 {
					return nil, fmt.Errorf("rig.sign_flips.%s.%s.%s は4成分で指定してください", familyName, axisName, boneName)
				}
				overrides[bone] = rigmap.SignFlip{components[0], components[1], components[2], components[3]}
			}
			next, err := table.WithSignFlips(zUp, overrides)
			if err != nil {
				return nil, err
			}
			table = next
		}
		result = result.Replace(table)
	}
	return result, nil
}

var foldedBones = func() map[string]humanoid.BoneName {
	folded := map[string]humanoid.BoneName{}
	for _, bone := range humanoid.AllBones() {
		folded[strings.ToLower(bone.String())] = bone
	}
	return folded
}()

// parseBoneFold は大文字小文字を無視してボーン名を解決する。設定キーは小文字化されるため。
func parseBoneFold(value string) (humanoid.BoneName, bool) {
	bone, ok := foldedBones[strings.ToLower(value)]
	return bone, ok
}
