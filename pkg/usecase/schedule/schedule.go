// 指示: miu200521358
// Package schedule は待機と発話の状態に応じて再生するクリップを選ぶ。
package schedule

import (
	"math/rand/v2"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/logging"
)

// DEFAULT_IDLE_ROTATE は待機クリップを切り替える既定間隔。
const DEFAULT_IDLE_ROTATE = 20 * time.Second

// speakingKeywords はファイル名に含まれると発話用とみなす語。
var speakingKeywords = []string{"talking", "telling", "speak"}

// State は配信者の状態を表す。
type State string

const (
	// STATE_IDLE は待機中。
	STATE_IDLE State = "idle"
	// STATE_SPEAKING は発話中。
	STATE_SPEAKING State = "speaking"
)

// Catalog は状態別のクリップキー一覧を表す。
type Catalog struct {
	Idle     []string
	Speaking []string
}

// IsSpeakingClip はキーのファイル名から発話用か判定する。
func IsSpeakingClip(key string) bool {
	base := strings.ToLower(filepath.Base(key))
	for _, keyword := range speakingKeywords {
		if strings.Contains(base, keyword) {
			return true
		}
	}
	return false
}

// Classify はキーを待機用と発話用へ振り分ける。順序は保つ。
func Classify(keys []string) Catalog {
	var catalog Catalog
	for _, key := range keys {
		if IsSpeakingClip(key) {
			catalog.Speaking = append(catalog.Speaking, key)
		} else {
			catalog.Idle = append(catalog.Idle, key)
		}
	}
	return catalog
}

// PreloadPool は先読み対象のキーを返す。待機用全件と先頭の発話用で、重複は除く。
func (c Catalog) PreloadPool() []string {
	pool := make([]string, 0, len(c.Idle)+1)
	seen := map[string]struct{}{}
	add := func(key string) {
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		pool = append(pool, key)
	}
	for _, key := range c.Idle {
		add(key)
	}
	if len(c.Speaking) > 0 {
		add(c.Speaking[0])
	}
	return pool
}

// Options はSchedulerの設定を表す。
type Options struct {
	IdleRotate time.Duration
	// Source は乱数源。未指定時は実行ごとに異なる系列を使う。
	Source rand.Source
}

// Scheduler は待機クリップの巡回と発話クリップへの切替を管理する。
type Scheduler struct {
	mu sync.Mutex

	catalog  Catalog
	interval time.Duration
	rng      *rand.Rand

	state   State
	idle    string
	elapsed time.Duration
}

// New はSchedulerを生成する。最初の待機クリップは一覧の先頭に固定する。
func New(catalog Catalog, opts Options) (*Scheduler, error) {
	if len(catalog.Idle) == 0 && len(catalog.Speaking) == 0 {
		return nil, merrors.NewClipCatalogEmpty()
	}
	interval := opts.IdleRotate
	if interval <= 0 {
		interval = DEFAULT_IDLE_ROTATE
	}
	var rng *rand.Rand
	if opts.Source != nil {
		rng = rand.New(opts.Source)
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s := &Scheduler{
		catalog:  catalog,
		interval: interval,
		rng:      rng,
		state:    STATE_IDLE,
	}
	s.idle = s.firstIdle()
	return s, nil
}

func (s *Scheduler) firstIdle() string {
	if len(s.catalog.Idle) > 0 {
		return s.catalog.Idle[0]
	}
	return s.catalog.Speaking[0]
}

func (s *Scheduler) speaking() string {
	if len(s.catalog.Speaking) > 0 {
		return s.catalog.Speaking[0]
	}
	return s.idle
}

// SetSpeaking は発話状態を切り替える。待機へ戻る時は先頭の待機クリップから始める。
func (s *Scheduler) SetSpeaking(speaking bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := STATE_IDLE
	if speaking {
		next = STATE_SPEAKING
	}
	if next == s.state {
		return
	}
	s.state = next
	s.elapsed = 0
	if next == STATE_IDLE {
		s.idle = s.firstIdle()
	}
	logScheduleDebug("状態切替: %s -> %s", next, s.current())
}

// Tick は経過時間を進める。待機クリップが切り替わった場合はtrueを返す。
func (s *Scheduler) Tick(delta time.Duration) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != STATE_IDLE {
		return s.current(), false
	}
	s.elapsed += delta
	if s.elapsed < s.interval {
		return s.idle, false
	}
	s.elapsed %= s.interval
	next := s.pickOther(s.catalog.Idle, s.idle)
	changed := next != s.idle
	s.idle = next
	if changed {
		logScheduleDebug("待機クリップ切替: %s", next)
	}
	return s.idle, changed
}

// Current は現在再生すべきクリップのキーを返す。
func (s *Scheduler) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

func (s *Scheduler) current() string {
	if s.state == STATE_SPEAKING {
		return s.speaking()
	}
	return s.idle
}

// State は現在の状態を返す。
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// NextPreload は次に切り替わりうるクリップのキーを返す。現在のクリップ以外から選ぶ。
func (s *Scheduler) NextPreload() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pickOther(s.catalog.PreloadPool(), s.current())
}

// pickOther は候補からexcept以外を無作為に選ぶ。候補が無ければexceptを返す。
func (s *Scheduler) pickOther(candidates []string, except string) string {
	others := make([]string, 0, len(candidates))
	for _, key := range candidates {
		if key != except {
			others = append(others, key)
		}
	}
	if len(others) == 0 {
		return except
	}
	return others[s.rng.IntN(len(others))]
}

func logScheduleDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}
