// 指示: miu200521358
// Package preload は次に再生するクリップを裏で変換し、フレーム処理へ受け渡す。
package preload

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/logging"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// 既定値。
const (
	DEFAULT_WORKERS    = 2
	DEFAULT_QUEUE_SIZE = 16
)

// CompileFunc はクリップ1件を変換する。
type CompileFunc func(ctx context.Context) (*model.CompiledClip, error)

// Result は変換要求の結果を表す。
type Result struct {
	Token  uint64
	Key    string
	Clip   *model.CompiledClip
	Err    error
	Cached bool
}

// Observer は先読みイベントの計測先を表す。
type Observer interface {
	IncrementStaleResults()
}

// Options はPreloaderの設定を表す。
type Options struct {
	Workers   int
	QueueSize int
	Observer  Observer
}

// job は変換待ちの要求を表す。tokenが0の要求は結果を受け渡さない。
type job struct {
	ctx     context.Context
	token   uint64
	key     string
	compile CompileFunc
}

// Preloader は変換要求を処理する。最新の要求以外の結果は破棄する。
type Preloader struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	jobs     chan job
	done     chan struct{}
	closeOne sync.Once

	latest   atomic.Uint64
	observer Observer
	cache    *cache.Cache

	mu    sync.Mutex
	ready *Result
}

// New はPreloaderを生成して作業goroutineを起動する。
func New(opts Options) *Preloader {
	workers := opts.Workers
	if workers <= 0 {
		workers = DEFAULT_WORKERS
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = DEFAULT_QUEUE_SIZE
	}
	base, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(base)
	p := &Preloader{
		ctx:      ctx,
		cancel:   cancel,
		group:    group,
		jobs:     make(chan job, queueSize),
		done:     make(chan struct{}),
		observer: opts.Observer,
		// 期限なし、掃除goroutineなし。
		cache: cache.New(cache.NoExpiration, 0),
	}
	for i := 0; i < workers; i++ {
		group.Go(p.work)
	}
	return p
}

// work は要求を順に処理する。変換の失敗は結果として返し、goroutineは止めない。
func (p *Preloader) work() error {
	for {
		select {
		case <-p.done:
			return nil
		case j := <-p.jobs:
			p.run(j)
		}
	}
}

func (p *Preloader) run(j job) {
	ctx, cancel := context.WithCancel(j.ctx)
	stop := context.AfterFunc(p.ctx, cancel)
	defer stop()
	defer cancel()

	var clip *model.CompiledClip
	err := ctx.Err()
	if err == nil {
		clip, err = j.compile(ctx)
	}
	if err == nil && clip != nil {
		p.cache.Set(j.key, clip, cache.NoExpiration)
		logPreloadDebug("先読み完了: key=%s token=%d", j.key, j.token)
	} else if err != nil {
		logPreloadWarn("先読みに失敗しました: key=%s err=%v", j.key, err)
	}
	if j.token == 0 {
		return
	}
	p.deliver(Result{Token: j.token, Key: j.key, Clip: clip, Err: err})
}

// deliver は最新の要求の結果だけを受け渡し枠へ置く。
func (p *Preloader) deliver(result Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if current := p.latest.Load(); result.Token != current {
		p.discard(result.Token, current)
		return
	}
	p.ready = &result
}

func (p *Preloader) discard(token uint64, current uint64) {
	if p.observer != nil {
		p.observer.IncrementStaleResults()
	}
	logPreloadDebug("%s", merrors.NewStaleResult(token, current).Error())
}

// Request は変換を要求して要求番号を返す。キャッシュ済みのキーは即座に結果を置く。
// それ以前の要求の結果は以後破棄される。
func (p *Preloader) Request(ctx context.Context, key string, compile CompileFunc) (uint64, error) {
	if p.isClosed() {
		return 0, merrors.NewPreloaderClosed(key)
	}
	token := p.latest.Add(1)
	if clip, ok := p.Cached(key); ok {
		p.deliver(Result{Token: token, Key: key, Clip: clip, Cached: true})
		return token, nil
	}
	return token, p.enqueue(ctx, job{ctx: ctx, token: token, key: key, compile: compile})
}

// Prefetch は結果を受け渡さずにキャッシュだけを温める。
func (p *Preloader) Prefetch(ctx context.Context, key string, compile CompileFunc) error {
	if p.isClosed() {
		return merrors.NewPreloaderClosed(key)
	}
	if _, ok := p.cache.Get(key); ok {
		return nil
	}
	return p.enqueue(ctx, job{ctx: ctx, key: key, compile: compile})
}

func (p *Preloader) enqueue(ctx context.Context, j job) error {
	select {
	case p.jobs <- j:
		return nil
	case <-p.done:
		return merrors.NewPreloaderClosed(j.key)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Poll は受け渡し待ちの結果を取り出す。待たずに返す。
func (p *Preloader) Poll() (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready == nil {
		return Result{}, false
	}
	result := *p.ready
	p.ready = nil
	if current := p.latest.Load(); result.Token != current {
		p.discard(result.Token, current)
		return Result{}, false
	}
	return result, true
}

// Latest は最新の要求番号を返す。
func (p *Preloader) Latest() uint64 {
	return p.latest.Load()
}

// Cached はキャッシュ済みのクリップを返す。
func (p *Preloader) Cached(key string) (*model.CompiledClip, bool) {
	value, ok := p.cache.Get(key)
	if !ok {
		return nil, false
	}
	clip, ok := value.(*model.CompiledClip)
	return clip, ok
}

// Forget はキャッシュからキーを外す。
func (p *Preloader) Forget(key string) {
	p.cache.Delete(key)
}

// Close は作業goroutineを止めて終了を待つ。処理中の変換にはキャンセルを通知する。
func (p *Preloader) Close() error {
	p.closeOne.Do(func() {
		close(p.done)
		p.cancel()
	})
	return p.group.Wait()
}

func (p *Preloader) isClosed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func logPreloadDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

func logPreloadWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
