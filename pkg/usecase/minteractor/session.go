// 指示: miu200521358
package minteractor

import (
	"context"
	"fmt"
	"time"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/skeleton"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/playback"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/schedule"
)

// PlaybackOptions は再生セッションの設定を表す。
type PlaybackOptions struct {
	Playback playback.Options
	Schedule schedule.Options
}

// TickResult は1フレーム分の遷移結果を表す。
type TickResult struct {
	// Requested は新たに変換を要求したクリップ。
	Requested string
	// Started は再生を開始したクリップ。
	Started string
	// Failed は変換に失敗した要求のエラー。再生中のクリップは変えない。
	Failed error
}

// PlaybackSession は待機/発話の切替、先読み、再生をアバター1体分まとめて進める。
type PlaybackSession struct {
	usecase    *RetargetUsecase
	avatar     *skeleton.Humanoid
	scheduler  *schedule.Scheduler
	controller *playback.Controller

	pendingToken uint64
	pendingPath  string
	playing      string
	prefetched   map[string]struct{}
}

// NewPlaybackSession は再生セッションを生成し、最初のクリップの変換を要求する。
// clipsはアニメーションのパス一覧で、名前から待機と発話へ振り分ける。
func (uc *RetargetUsecase) NewPlaybackSession(ctx context.Context, avatar *skeleton.Humanoid, clips []string, opts PlaybackOptions) (*PlaybackSession, error) {
	if uc.preloader == nil {
		return nil, fmt.Errorf("先読み器が設定されていません")
	}
	if avatar == nil {
		return nil, fmt.Errorf("再生先アバターが未設定です")
	}
	scheduler, err := schedule.New(schedule.Classify(clips), opts.Schedule)
	if err != nil {
		return nil, err
	}
	s := &PlaybackSession{
		usecase:    uc,
		avatar:     avatar,
		scheduler:  scheduler,
		controller: playback.NewController(avatar, opts.Playback),
		prefetched: map[string]struct{}{},
	}
	if err := s.request(ctx, scheduler.Current()); err != nil {
		return nil, err
	}
	return s, nil
}

// SetSpeaking は発話状態を切り替え、再生すべきクリップが変わればその変換を要求する。
func (s *PlaybackSession) SetSpeaking(ctx context.Context, speaking bool) (string, error) {
	before := s.scheduler.Current()
	s.scheduler.SetSpeaking(speaking)
	after := s.scheduler.Current()
	if after == before || after == s.pendingPath {
		return "", nil
	}
	return after, s.request(ctx, after)
}

// Tick はスケジュールを進め、届いた変換結果を再生へ渡し、姿勢を更新する。
func (s *PlaybackSession) Tick(ctx context.Context, delta time.Duration) (TickResult, error) {
	result := TickResult{}
	if next, changed := s.scheduler.Tick(delta); changed {
		if err := s.request(ctx, next); err != nil {
			return result, err
		}
		result.Requested = next
	}

	if delivered, ok := s.usecase.preloader.Poll(); ok && delivered.Token == s.pendingToken {
		path := s.pendingPath
		s.pendingToken = 0
		s.pendingPath = ""
		if delivered.Err != nil {
			logInteractorWarn("クリップ変換に失敗したため再生を継続: clip=%s err=%v", path, delivered.Err)
			result.Failed = delivered.Err
		} else if err := s.controller.Play(delivered.Clip); err != nil {
			result.Failed = err
		} else {
			s.playing = path
			result.Started = path
		}
	}

	s.controller.Update(delta)
	s.prefetchNext(ctx)
	return result, nil
}

// Playing は再生中クリップのパスを返す。
func (s *PlaybackSession) Playing() string {
	return s.playing
}

// Pending は変換待ちクリップのパスを返す。
func (s *PlaybackSession) Pending() string {
	return s.pendingPath
}

// Controller は再生制御を返す。
func (s *PlaybackSession) Controller() *playback.Controller {
	return s.controller
}

// Scheduler はスケジューラを返す。
func (s *PlaybackSession) Scheduler() *schedule.Scheduler {
	return s.scheduler
}

func (s *PlaybackSession) requestFor(path string) CompileRequest {
	return CompileRequest{AnimationPath: path, Avatar: s.avatar}
}

// request はクリップの変換を要求する。以前の要求の結果は破棄される。
func (s *PlaybackSession) request(ctx context.Context, path string) error {
	token, err := s.usecase.RequestPreload(ctx, s.requestFor(path))
	if err != nil {
		return err
	}
	s.pendingToken = token
	s.pendingPath = path
	return nil
}

// prefetchNext は次に切り替わりうるクリップを一度だけキャッシュへ温める。
func (s *PlaybackSession) prefetchNext(ctx context.Context) {
	next := s.scheduler.NextPreload()
	if next == "" || next == s.playing {
		return
	}
	if _, ok := s.prefetched[next]; ok {
		return
	}
	s.prefetched[next] = struct{}{}
	if err := s.usecase.Prefetch(ctx, s.requestFor(next)); err != nil {
		logInteractorWarn("先読み要求に失敗: clip=%s err=%v", next, err)
	}
}
