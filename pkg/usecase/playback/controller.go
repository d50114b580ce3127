// 指示: miu200521358
package playback

import (
	"math"
	"sync"
	"time"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/logging"
	"golang.org/x/time/rate"
)

// 既定値。
const (
	DEFAULT_CROSSFADE  = 550 * time.Millisecond
	DEFAULT_MODE_DWELL = time.Second
)

// PoseWriter は毎フレームの姿勢書き込み先を表す。
type PoseWriter interface {
	SetLocalRotation(bone humanoid.BoneName, rotation mmath.Quaternion)
	SetLocalTranslation(bone humanoid.BoneName, translation mmath.Vec3)
	RestLocalTransform(bone humanoid.BoneName) (mmath.Transform, bool)
}

// Observer は再生イベントの計測先を表す。
type Observer interface {
	RecordModeSwitch(mode string)
	IncrementCrossFades()
}

// Options はControllerの設定を表す。0値の時間は既定値を使う。
type Options struct {
	Crossfade time.Duration
	// NoCrossfade はクリップ切替を常に即時にする。
	NoCrossfade bool
	ModeDwell   time.Duration
	Observer    Observer
}

// layer は再生中クリップと再生位置を表す。
// from があれば、遷移途中で打ち切った遷移元を weight で固定した比率のまま混ぜる。
type layer struct {
	clip   *model.CompiledClip
	time   float64
	from   *layer
	weight float64
}

// sample は現在位置の姿勢を返す。
func (l *layer) sample(rest func(humanoid.BoneName) mmath.Transform) Pose {
	pose := SampleClip(l.clip, l.time)
	if l.from == nil {
		return pose
	}
	return blendPoses(l.from.sample(rest), pose, l.weight, rest)
}

// advance は再生位置をクリップ長で折り返して進める。
func (l *layer) advance(dt float64) {
	if l.from != nil {
		l.from.advance(dt)
	}
	duration := l.clip.Duration
	if duration <= 0 {
		l.time = 0
		return
	}
	l.time = math.Mod(l.time+dt, duration)
	if l.time < 0 {
		l.time += duration
	}
}

// Controller は1体のヒューマノイドの再生を制御する。
type Controller struct {
	mu sync.Mutex

	target    PoseWriter
	crossfade float64
	observer  Observer
	limiter   *rate.Limiter

	mode     Mode
	current  *layer
	outgoing *layer
	elapsed  float64

	additive       *layer
	additiveWeight float64

	written map[humanoid.BoneName]struct{}
}

// NewController はControllerを生成する。初期モードはbaked。
func NewController(target PoseWriter, opts Options) *Controller {
	crossfade := opts.Crossfade
	if crossfade == 0 {
		crossfade = DEFAULT_CROSSFADE
	}
	if opts.NoCrossfade {
		crossfade = 0
	}
	dwell := opts.ModeDwell
	if dwell == 0 {
		dwell = DEFAULT_MODE_DWELL
	}
	return &Controller{
		target:    target,
		crossfade: crossfade.Seconds(),
		observer:  opts.Observer,
		limiter:   rate.NewLimiter(rate.Every(dwell), 1),
		mode:      MODE_BAKED,
		written:   map[humanoid.BoneName]struct{}{},
	}
}

// Play はクリップを再生する。再生中クリップがあればクロスフェードし、無ければ即時に切り替える。
// 遷移中に呼ばれた場合は、その時点の混合比を固定した遷移中の2クリップを遷移元とする。
func (c *Controller) Play(clip *model.CompiledClip) error {
	if clip == nil {
		return merrors.NewPlaybackModeInvalid("再生クリップが未設定です")
	}
	if clip.Additive {
		return merrors.NewPlaybackModeInvalid("加算用クリップは通常再生できません: %s", clip.Name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.current.clip == clip {
		return nil
	}
	if c.current == nil || c.crossfade <= 0 || c.mode == MODE_LIVE {
		c.current = &layer{clip: clip}
		c.outgoing = nil
		c.elapsed = 0
		logPlaybackDebug("クリップを即時再生: %s", clip.Name)
		return nil
	}
	if c.outgoing != nil {
		c.current.from = c.outgoing
		c.current.weight = c.weights().Incoming
	}
	c.outgoing = c.current
	c.current = &layer{clip: clip}
	c.elapsed = 0
	if c.observer != nil {
		c.observer.IncrementCrossFades()
	}
	logPlaybackDebug("クロスフェード開始: %s -> %s (%.3fs)", c.outgoing.clip.Name, clip.Name, c.crossfade)
	return nil
}

// Update は経過時間だけ再生を進めて姿勢を書き込む。liveモードでは何もしない。
func (c *Controller) Update(delta time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == MODE_LIVE || c.current == nil {
		return
	}
	dt := delta.Seconds()
	c.current.advance(dt)
	if c.outgoing != nil {
		c.outgoing.advance(dt)
		c.elapsed += dt
		if c.elapsed >= c.crossfade {
			c.outgoing = nil
			c.elapsed = 0
		}
	}
	if c.additive != nil {
		c.additive.advance(dt)
	}
	c.writePose()
}

// weights は現在の混合比を返す。
func (c *Controller) weights() Weights {
	if c.current == nil {
		return Weights{}
	}
	if c.outgoing == nil || c.crossfade <= 0 {
		return Weights{Outgoing: 0, Incoming: 1}
	}
	incoming := c.elapsed / c.crossfade
	if incoming < 0 {
		incoming = 0
	} else if incoming > 1 {
		incoming = 1
	}
	return Weights{Outgoing: 1 - incoming, Incoming: incoming}
}

// Weights は現在の混合比を返す。
func (c *Controller) Weights() Weights {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weights()
}

// rest はボーンのレスト姿勢を返す。
func (c *Controller) rest(bone humanoid.BoneName) mmath.Transform {
	if rest, ok := c.target.RestLocalTransform(bone); ok {
		return rest
	}
	return mmath.NewTransform()
}

// blend は遷移元と遷移先を混合した姿勢を返す。加算レイヤーは含まない。
func (c *Controller) blend() Pose {
	incoming := c.current.sample(c.rest)
	if c.outgoing == nil {
		return incoming
	}
	return blendPoses(c.outgoing.sample(c.rest), incoming, c.weights().Incoming, c.rest)
}

// blendPoses は outgoing から incoming へ比率 w で混合する。片側にしか無いボーンはレスト姿勢へ向けて混合する。
func blendPoses(outgoing, incoming Pose, w float64, rest func(humanoid.BoneName) mmath.Transform) Pose {
	bones := map[humanoid.BoneName]struct{}{}
	for bone := range incoming {
		bones[bone] = struct{}{}
	}
	for bone := range outgoing {
		bones[bone] = struct{}{}
	}

	blended := make(Pose, len(bones))
	for bone := range bones {
		restPose := rest(bone)
		in, hasIn := incoming[bone]
		out, hasOut := outgoing[bone]
		var bp BonePose
		if (hasIn && in.HasRotation) || (hasOut && out.HasRotation) {
			from := restPose.Rotation
			if hasOut && out.HasRotation {
				from = out.Rotation
			}
			to := restPose.Rotation
			if hasIn && in.HasRotation {
				to = in.Rotation
			}
			bp.Rotation = from.Slerp(to, w)
			bp.HasRotation = true
		}
		if (hasIn && in.HasTranslation) || (hasOut && out.HasTranslation) {
			from := restPose.Translation
			if hasOut && out.HasTranslation {
				from = out.Translation
			}
			to := restPose.Translation
			if hasIn && in.HasTranslation {
				to = in.Translation
			}
			bp.Translation = from.Lerped(to, w)
			bp.HasTranslation = true
		}
		blended[bone] = bp
	}
	return blended
}

// writePose は混合した姿勢に加算レイヤーを重ねて書き込む。
func (c *Controller) writePose() {
	blended := c.blend()
	c.applyAdditive(blended)

	written := make(map[humanoid.BoneName]struct{}, len(blended))
	for bone, bp := range blended {
		if bp.HasRotation {
			c.target.SetLocalRotation(bone, bp.Rotation)
		}
		if bp.HasTranslation {
			c.target.SetLocalTranslation(bone, bp.Translation)
		}
		written[bone] = struct{}{}
	}
	for bone := range c.written {
		if _, ok := written[bone]; !ok {
			rest := c.rest(bone)
			c.target.SetLocalRotation(bone, rest.Rotation)
			c.target.SetLocalTranslation(bone, rest.Translation)
		}
	}
	c.written = written
}

// applyAdditive は加算レイヤーを重ねる。回転は base·slerp(I, delta, w)、移動は base + w·delta。
func (c *Controller) applyAdditive(pose Pose) {
	if c.additive == nil || c.additiveWeight <= 0 {
		return
	}
	deltas := SampleClip(c.additive.clip, c.additive.time)
	identity := mmath.NewQuaternion()
	for bone, delta := range deltas {
		bp := pose[bone]
		if delta.HasRotation {
			if !bp.HasRotation {
				bp.Rotation = c.rest(bone).Rotation
			}
			bp.Rotation = bp.Rotation.Muled(identity.Slerp(delta.Rotation, c.additiveWeight)).Normalized()
			bp.HasRotation = true
		}
		if delta.HasTranslation {
			if !bp.HasTranslation {
				bp.Translation = c.rest(bone).Translation
			}
			bp.Translation = bp.Translation.Added(delta.Translation.MuledScalar(c.additiveWeight))
			bp.HasTranslation = true
		}
		pose[bone] = bp
	}
}

// RequestMode はモード切替を要求する。最短滞在時間内の要求は無視し、切り替えた場合trueを返す。
func (c *Controller) RequestMode(mode Mode, now time.Time) bool {
	if !mode.IsValid() {
		logPlaybackWarn("不明な駆動モードです: %s", mode)
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if mode == c.mode {
		return false
	}
	if !c.limiter.AllowN(now, 1) {
		logPlaybackDebug("モード切替を抑止: %s -> %s", c.mode, mode)
		return false
	}
	c.mode = mode
	c.outgoing = nil
	c.elapsed = 0
	if c.current != nil {
		c.current.time = 0
	}
	if c.additive != nil {
		c.additive.time = 0
	}
	if mode == MODE_BAKED {
		// live入力が書いた姿勢は次フレームで上書きされる。
		c.written = map[humanoid.BoneName]struct{}{}
	}
	if c.observer != nil {
		c.observer.RecordModeSwitch(string(mode))
	}
	logPlaybackInfo("駆動モード切替: %s", mode)
	return true
}

// Mode は現在の駆動モードを返す。
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// ApplyLivePose は外部入力のローカル回転を書き込む。liveモード以外では拒否する。
func (c *Controller) ApplyLivePose(rotations map[humanoid.BoneName]mmath.Quaternion) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != MODE_LIVE {
		return merrors.NewPlaybackModeInvalid("liveモード以外では外部姿勢を受け付けません: mode=%s", c.mode)
	}
	for bone, rotation := range rotations {
		if !bone.IsValid() {
			continue
		}
		c.target.SetLocalRotation(bone, rotation)
	}
	return nil
}

// SetAdditive は加算レイヤーを設定する。クリップは加算用である必要がある。
func (c *Controller) SetAdditive(clip *model.CompiledClip, weight float64) error {
	if clip == nil || !clip.Additive {
		return merrors.NewPlaybackModeInvalid("加算レイヤーには加算用クリップを指定してください")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.additive = &layer{clip: clip}
	c.additiveWeight = clampUnit(weight)
	return nil
}

// SetAdditiveWeight は加算レイヤーの重みを[0,1]へ丸めて設定する。
func (c *Controller) SetAdditiveWeight(weight float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.additiveWeight = clampUnit(weight)
}

// AdditiveWeight は加算レイヤーの重みを返す。
func (c *Controller) AdditiveWeight() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.additiveWeight
}

// ClearAdditive は加算レイヤーを外す。
func (c *Controller) ClearAdditive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.additive = nil
	c.additiveWeight = 0
}

// State は再生状態のスナップショットを返す。
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	var s State
	if c.current != nil {
		s.Clip = c.current.clip
		s.ClipTime = c.current.time
	}
	switch {
	case c.mode == MODE_LIVE:
		s.Kind = STATE_LIVE
	case c.current == nil:
		s.Kind = STATE_EMPTY
	case c.outgoing != nil:
		s.Kind = STATE_CROSSFADING
		s.From = c.outgoing.clip
		s.FromTime = c.outgoing.time
		s.Elapsed = c.elapsed
		s.Duration = c.crossfade
	default:
		s.Kind = STATE_IDLE
	}
	return s
}

func clampUnit(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

// logPlaybackInfo は再生制御の情報ログを出力する。
func logPlaybackInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logPlaybackWarn は再生制御の警告ログを出力する。
func logPlaybackWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}

// logPlaybackDebug は再生制御のデバッグログを出力する。
func logPlaybackDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}
