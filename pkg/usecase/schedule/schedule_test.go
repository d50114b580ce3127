// 指示: miu200521358
package schedule

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/merr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() Catalog {
	return Classify([]string{
		"anim/Idle.glb",
		"anim/Talking.glb",
		"anim/Disappointed.glb",
		"anim/Telling A Secret.glb",
		"anim/Bashful.glb",
		"anim/Listening To Music.glb",
	})
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(testCatalog(), Options{Source: rand.NewPCG(1, 2)})
	require.NoError(t, err)
	return s
}

func TestClassifyByFileName(t *testing.T) {
	catalog := testCatalog()
	assert.Equal(t, []string{"anim/Idle.glb", "anim/Disappointed.glb", "anim/Bashful.glb", "anim/Listening To Music.glb"}, catalog.Idle)
	assert.Equal(t, []string{"anim/Talking.glb", "anim/Telling A Secret.glb"}, catalog.Speaking)
	assert.False(t, IsSpeakingClip("talking/Idle.glb"), "only the file name is inspected")
}

func TestPreloadPoolDeduplicates(t *testing.T) {
	catalog := Catalog{Idle: []string{"a", "b", "a"}, Speaking: []string{"b", "c"}}
	assert.Equal(t, []string{"a", "b"}, catalog.PreloadPool())
}

func TestFirstIdleIsFixedThenRotatesWithoutRepeat(t *testing.T) {
	s := newTestScheduler(t)
	assert.Equal(t, STATE_IDLE, s.State())
	assert.Equal(t, "anim/Idle.glb", s.Current())

	key, changed := s.Tick(19 * time.Second)
	assert.False(t, changed)
	assert.Equal(t, "anim/Idle.glb", key)

	previous := key
	for i := 0; i < 20; i++ {
		if i > 0 {
			_, changed = s.Tick(19 * time.Second)
			require.False(t, changed)
		}
		key, changed = s.Tick(time.Second)
		require.True(t, changed, "rotation must pick another clip at step %d", i)
		assert.NotEqual(t, previous, key)
		assert.Contains(t, testCatalog().Idle, key)
		previous = key
	}
}

func TestSpeakingUsesFirstSpeakingClip(t *testing.T) {
	s := newTestScheduler(t)
	s.Tick(20 * time.Second)

	s.SetSpeaking(true)
	assert.Equal(t, STATE_SPEAKING, s.State())
	assert.Equal(t, "anim/Talking.glb", s.Current())
	key, changed := s.Tick(time.Minute)
	assert.False(t, changed)
	assert.Equal(t, "anim/Talking.glb", key)

	s.SetSpeaking(false)
	assert.Equal(t, "anim/Idle.glb", s.Current(), "returning to idle restarts from the first idle clip")
}

func TestNextPreloadDiffersFromCurrent(t *testing.T) {
	s := newTestScheduler(t)
	pool := testCatalog().PreloadPool()
	for i := 0; i < 20; i++ {
		next := s.NextPreload()
		assert.NotEqual(t, s.Current(), next)
		assert.Contains(t, pool, next)
	}
	s.SetSpeaking(true)
	assert.NotEqual(t, "anim/Talking.glb", s.NextPreload())
}

func TestSingleClipCatalog(t *testing.T) {
	s, err := New(Catalog{Idle: []string{"only"}}, Options{IdleRotate: time.Second})
	require.NoError(t, err)
	key, changed := s.Tick(2 * time.Second)
	assert.False(t, changed)
	assert.Equal(t, "only", key)
	assert.Equal(t, "only", s.NextPreload())

	s.SetSpeaking(true)
	assert.Equal(t, "only", s.Current(), "speaking falls back to the idle clip")
}

func TestEmptyCatalogFails(t *testing.T) {
	_, err := New(Catalog{}, Options{})
	require.Error(t, err)
	assert.Equal(t, merrors.ClipCatalogEmptyErrorID, merr.ExtractErrorID(err))
}
