// 指示: miu200521358
package config

import (
	"testing"
	"time"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
	"github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/logging"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/rigmap"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
playback:
  crossfade_seconds: 0.3
schedule:
  idle_rotate_seconds: 12
normalizer:
  spine_rules:
    kawaii:
      - expression: "n <= 1"
        bone: spine
      - expression: "n >= 2"
        bone: upperChest
rig:
  sign_flips:
    kawaii:
      yup:
        leftUpperArm: [1, -1, 1, 1]
log:
  level: debug
`

func TestDefaultSettings(t *testing.T) {
	s := Default()
	assert.Equal(t, 550*time.Millisecond, s.CrossfadeDuration())
	assert.Equal(t, time.Second, s.ModeDwell())
	assert.Equal(t, 20*time.Second, s.IdleRotateInterval())
	assert.Equal(t, 2, s.Preload.Workers)
	assert.Equal(t, logging.LOG_LEVEL_INFO, s.LogLevel())
	assert.False(t, s.Rig.FallbackToHeuristic)
	require.NoError(t, s.Validate())
}

func TestLoadMergesConfigFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/retarget/config.yaml", []byte(testConfigYAML), 0o644))

	s, err := Load(LoadOptions{ConfigFile: "/etc/retarget/config.yaml", Fs: fs})
	require.NoError(t, err)

	assert.Equal(t, 300*time.Millisecond, s.CrossfadeDuration())
	assert.Equal(t, time.Second, s.ModeDwell())
	assert.Equal(t, 12*time.Second, s.IdleRotateInterval())
	assert.Equal(t, logging.LOG_LEVEL_DEBUG, s.LogLevel())

	numbering, err := s.SpineNumbering(rigmap.FAMILY_KAWAII)
	require.NoError(t, err)
	assert.NotNil(t, numbering)

	registry, err := s.ApplySignFlips(rigmap.MustDefaultRegistry())
	require.NoError(t, err)
	kawaii, ok := registry.Table(rigmap.FAMILY_KAWAII)
	require.True(t, ok)
	flip, ok := kawaii.SignFlip(humanoid.UPPER_ARM.Left(), false)
	require.True(t, ok)
	assert.Equal(t, rigmap.SignFlip{1, -1, 1, 1}, flip)

	builtin, _ := rigmap.MustDefaultRegistry().Table(rigmap.FAMILY_KAWAII)
	_, ok = builtin.SignFlip(humanoid.UPPER_ARM.Left(), false)
	assert.False(t, ok, "built-in table must not be modified")
}

func TestLoadMissingConfigFileUsesDefaults(t *testing.T) {
	s, err := Load(LoadOptions{ConfigFile: "/nowhere/config.yaml", Fs: afero.NewMemMapFs()})
	require.NoError(t, err)
	assert.Equal(t, 550*time.Millisecond, s.CrossfadeDuration())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("MU_RETARGET_PLAYBACK_MODE_DWELL_SECONDS", "2.5")
	t.Setenv("MU_RETARGET_PRELOAD_WORKERS", "4")

	s, err := Load(LoadOptions{Fs: afero.NewMemMapFs()})
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, s.ModeDwell())
	assert.Equal(t, 4, s.Preload.Workers)
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	s := Default()
	s.Preload.Workers = 0
	assert.Error(t, s.Validate())

	s = Default()
	s.Schedule.IdleRotateSeconds = 0
	assert.Error(t, s.Validate())

	s = Default()
	s.Playback.CrossfadeSeconds = -1
	assert.Error(t, s.Validate())
}

func TestSpineNumberingRejectsUnknownBone(t *testing.T) {
	s := Default()
	s.Normalizer.SpineRules = map[string][]SpineRuleSetting{
		"mixamo": {{Expression: "n > 0", Bone: "tail"}},
	}
	_, err := s.SpineNumbering(rigmap.FAMILY_MIXAMO)
	assert.Error(t, err)

	numbering, err := s.SpineNumbering(rigmap.FAMILY_UNKNOWN)
	require.NoError(t, err)
	assert.NotNil(t, numbering)
}

func TestApplySignFlipsRejectsUnknownFamily(t *testing.T) {
	s := Default()
	s.Rig.SignFlips = map[string]map[string]map[string][]float64{
		"rokoko": {"zup": {"hips": {1, 1, 1, 1}}},
	}
	_, err := s.ApplySignFlips(rigmap.MustDefaultRegistry())
	assert.Error(t, err)
}
