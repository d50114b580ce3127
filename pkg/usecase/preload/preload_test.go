// 指示: miu200521358
package preload

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/merr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type staleCounter struct {
	count atomic.Int64
}

func (s *staleCounter) IncrementStaleResults() { s.count.Add(1) }

func clipNamed(name string) CompileFunc {
	return func(context.Context) (*model.CompiledClip, error) {
		return &model.CompiledClip{Name: name, Duration: 1}, nil
	}
}

func pollEventually(t *testing.T, p *Preloader) Result {
	t.Helper()
	var result Result
	require.Eventually(t, func() bool {
		var ok bool
		result, ok = p.Poll()
		return ok
	}, 2*time.Second, time.Millisecond)
	return result
}

func TestRequestDeliversResult(t *testing.T) {
	defer goleak.VerifyNone(t)
	p := New(Options{Workers: 1})
	defer func() { require.NoError(t, p.Close()) }()

	token, err := p.Request(context.Background(), "idle_01", clipNamed("idle_01"))
	require.NoError(t, err)

	result := pollEventually(t, p)
	assert.Equal(t, token, result.Token)
	assert.Equal(t, "idle_01", result.Key)
	require.NoError(t, result.Err)
	require.NotNil(t, result.Clip)
	assert.Equal(t, "idle_01", result.Clip.Name)
	assert.False(t, result.Cached)

	_, ok := p.Poll()
	assert.False(t, ok, "result is handed over once")
}

func TestOlderResultIsDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t)
	observer := &staleCounter{}
	p := New(Options{Workers: 2, Observer: observer})
	defer func() { require.NoError(t, p.Close()) }()

	release := make(chan struct{})
	started := make(chan struct{})
	slow := func(ctx context.Context) (*model.CompiledClip, error) {
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &model.CompiledClip{Name: "slow"}, nil
	}

	first, err := p.Request(context.Background(), "slow", slow)
	require.NoError(t, err)
	<-started
	second, err := p.Request(context.Background(), "fast", clipNamed("fast"))
	require.NoError(t, err)
	assert.Greater(t, second, first)

	result := pollEventually(t, p)
	assert.Equal(t, second, result.Token)
	assert.Equal(t, "fast", result.Clip.Name)

	close(release)
	require.Eventually(t, func() bool { return observer.count.Load() == 1 }, 2*time.Second, time.Millisecond)
	_, ok := p.Poll()
	assert.False(t, ok)

	clip, ok := p.Cached("slow")
	require.True(t, ok, "stale result still warms the cache")
	assert.Equal(t, "slow", clip.Name)
}

func TestRequestUsesCache(t *testing.T) {
	defer goleak.VerifyNone(t)
	p := New(Options{})
	defer func() { require.NoError(t, p.Close()) }()

	var calls atomic.Int64
	compile := func(context.Context) (*model.CompiledClip, error) {
		calls.Add(1)
		return &model.CompiledClip{Name: "talk"}, nil
	}
	_, err := p.Request(context.Background(), "talk", compile)
	require.NoError(t, err)
	pollEventually(t, p)

	token, err := p.Request(context.Background(), "talk", compile)
	require.NoError(t, err)
	result, ok := p.Poll()
	require.True(t, ok, "cached result is available immediately")
	assert.Equal(t, token, result.Token)
	assert.True(t, result.Cached)
	assert.Equal(t, int64(1), calls.Load())

	p.Forget("talk")
	_, ok = p.Cached("talk")
	assert.False(t, ok)
}

func TestFailedCompileIsReportedAndNotCached(t *testing.T) {
	defer goleak.VerifyNone(t)
	p := New(Options{Workers: 1})
	defer func() { require.NoError(t, p.Close()) }()

	failure := errors.New("broken clip")
	_, err := p.Request(context.Background(), "broken", func(context.Context) (*model.CompiledClip, error) {
		return nil, failure
	})
	require.NoError(t, err)

	result := pollEventually(t, p)
	assert.ErrorIs(t, result.Err, failure)
	assert.Nil(t, result.Clip)
	_, ok := p.Cached("broken")
	assert.False(t, ok)
}

func TestPrefetchWarmsCacheWithoutDelivery(t *testing.T) {
	defer goleak.VerifyNone(t)
	p := New(Options{Workers: 1})
	defer func() { require.NoError(t, p.Close()) }()

	require.NoError(t, p.Prefetch(context.Background(), "next", clipNamed("next")))
	require.Eventually(t, func() bool {
		_, ok := p.Cached("next")
		return ok
	}, 2*time.Second, time.Millisecond)
	_, ok := p.Poll()
	assert.False(t, ok)
	assert.Equal(t, uint64(0), p.Latest())
}

func TestCloseCancelsInFlightCompile(t *testing.T) {
	defer goleak.VerifyNone(t)
	p := New(Options{Workers: 1})

	started := make(chan struct{})
	_, err := p.Request(context.Background(), "long", func(ctx context.Context) (*model.CompiledClip, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	require.NoError(t, err)
	<-started

	require.NoError(t, p.Close())
	require.NoError(t, p.Close(), "close is idempotent")

	_, err = p.Request(context.Background(), "after", clipNamed("after"))
	require.Error(t, err)
	assert.Equal(t, merrors.PreloaderClosedErrorID, merr.ExtractErrorID(err))
	err = p.Prefetch(context.Background(), "after", clipNamed("after"))
	assert.Equal(t, merrors.PreloaderClosedErrorID, merr.ExtractErrorID(err))
}
