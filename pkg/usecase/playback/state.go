// 指示: miu200521358
// Package playback は変換済みクリップの再生、クロスフェード、モード切替を制御する。
package playback

import "github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"

// Mode は駆動モードを表す。
type Mode string

const (
	// MODE_BAKED は変換済みクリップで駆動する。
	MODE_BAKED Mode = "baked"
	// MODE_LIVE は外部の姿勢入力で駆動する。
	MODE_LIVE Mode = "live"
)

// IsValid は既知のモードか判定する。
func (m Mode) IsValid() bool {
	return m == MODE_BAKED || m == MODE_LIVE
}

// StateKind は再生状態の種別を表す。
type StateKind string

const (
	// STATE_EMPTY はクリップ未設定。
	STATE_EMPTY StateKind = "empty"
	// STATE_IDLE は単一クリップを再生中。
	STATE_IDLE StateKind = "idle"
	// STATE_CROSSFADING はクリップ間を遷移中。
	STATE_CROSSFADING StateKind = "crossfading"
	// STATE_LIVE は外部入力で駆動中。
	STATE_LIVE StateKind = "live"
)

// State は再生状態のスナップショットを表す。
// Kind に応じて有効な項目が決まる。
//   - STATE_IDLE: Clip, ClipTime
//   - STATE_CROSSFADING: From, FromTime, Clip, ClipTime, Elapsed, Duration
//   - STATE_LIVE: Clip は復帰時に再生するクリップ
type State struct {
	Kind     StateKind
	Clip     *model.CompiledClip
	ClipTime float64
	From     *model.CompiledClip
	FromTime float64
	Elapsed  float64
	Duration float64
}

// Weights は遷移元と遷移先の混合比を表す。合計は1。
type Weights struct {
	Outgoing float64
	Incoming float64
}
