// 指示: miu200521358
// Package retarget は元リグのクリップをVRMヒューマノイド用のクリップへ変換する。
package retarget

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/skeleton"
	"github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/logging"
	"github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/merr"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/bonename"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/coordaxis"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/rigmap"
)

// Target は出力先ヒューマノイドの契約を表す。
type Target interface {
	ResolveBone(bone humanoid.BoneName) (skeleton.JointHandle, bool)
	RestWorldTransform(handle skeleton.JointHandle) mmath.Transform
	Version() humanoid.Version
}

// rootProvider はルートのレスト姿勢を返せる出力先を表す。
type rootProvider interface {
	RootRestWorldTransform() mmath.Transform
}

// Observer はコンパイル結果の計測先を表す。
type Observer interface {
	RecordCompile(family string, outcome string, durationSeconds float64)
	ObserveMappedRatio(ratio float64)
	AddSkippedTracks(reason string, count int)
}

// コンパイル結果の区分。
const (
	OUTCOME_OK          = "ok"
	OUTCOME_EMPTY_CLIP  = "empty_clip"
	OUTCOME_ZERO_TRACKS = "zero_tracks"
	OUTCOME_CANCELED    = "canceled"
	OUTCOME_ERROR       = "error"
)

// Options はCompilerの設定を表す。
type Options struct {
	// Registry は既知系統の対応表。nilなら組込み表。
	Registry *rigmap.Registry
	// SpineNumbering は系統別の背骨番号規則。nilなら組込み規則。
	SpineNumbering func(family rigmap.Family) (*bonename.SpineNumbering, error)
	// FallbackToHeuristic は既知系統で表に無い関節を推定で補うか。
	FallbackToHeuristic bool
	Observer            Observer
}

// Compiler はクリップ変換を行う。名前推定のキャッシュは変換1回ごとに持つ。
type Compiler struct {
	registry            *rigmap.Registry
	spineNumbering      func(family rigmap.Family) (*bonename.SpineNumbering, error)
	fallbackToHeuristic bool
	observer            Observer
	now                 func() time.Time

	mu          sync.Mutex
	normalizers map[rigmap.Family]*bonename.Normalizer
}

// NewCompiler はCompilerを生成する。
func NewCompiler(opts Options) *Compiler {
	registry := opts.Registry
	if registry == nil {
		registry = rigmap.MustDefaultRegistry()
	}
	return &Compiler{
		registry:            registry,
		spineNumbering:      opts.SpineNumbering,
		fallbackToHeuristic: opts.FallbackToHeuristic,
		observer:            opts.Observer,
		now:                 time.Now,
		normalizers:         map[rigmap.Family]*bonename.Normalizer{},
	}
}

// Registry は使用中の対応表を返す。
func (c *Compiler) Registry() *rigmap.Registry {
	return c.registry
}

// DetectFamily はクリップの関節名から系統を判定する。
func (c *Compiler) DetectFamily(clip *model.SourceClip) rigmap.Family {
	if clip == nil {
		return rigmap.FAMILY_UNKNOWN
	}
	names := make([]string, 0, len(clip.Tracks))
	for i := range clip.Tracks {
		names = append(names, clip.Tracks[i].JointName)
	}
	return c.registry.Detect(names)
}

// Compile はクリップを出力先ヒューマノイド用へ変換する。familyが空なら判定する。
// 失敗時は呼び出し側の再生状態に影響しない。
func (c *Compiler) Compile(ctx context.Context, clip *model.SourceClip, src *skeleton.Skeleton, target Target, family rigmap.Family) (*model.CompiledClip, error) {
	compiled, _, err := c.CompileWithReport(ctx, clip, src, target, family)
	return compiled, err
}

// CompileWithReport はCompileと同じ変換を行い、失敗時も判明した範囲のReportを返す。
func (c *Compiler) CompileWithReport(ctx context.Context, clip *model.SourceClip, src *skeleton.Skeleton, target Target, family rigmap.Family) (*model.CompiledClip, *model.Report, error) {
	started := c.now()
	if family == "" {
		family = c.DetectFamily(clip)
	}
	compiled, report, err := c.compile(ctx, clip, src, target, family)
	c.observe(family, report, err, c.now().Sub(started))
	return compiled, report, err
}

func (c *Compiler) compile(ctx context.Context, clip *model.SourceClip, src *skeleton.Skeleton, target Target, family rigmap.Family) (*model.CompiledClip, *model.Report, error) {
	if clip.IsEmpty() {
		name := ""
		if clip != nil {
			name = clip.Name
		}
		return nil, nil, merrors.NewEmptySourceClip(name)
	}
	if target == nil {
		return nil, nil, merrors.NewSkeletonInvalid("出力先ヒューマノイドが未設定です")
	}

	resolver, err := c.resolverFor(family)
	if err != nil {
		return nil, nil, err
	}

	report := model.NewReport(clip.Name)
	report.Family = family.String()
	upAxis := DetectSourceUpAxis(src)
	report.UpAxis = upAxis.String()

	ctxTrack := trackContext{
		src:    src,
		target: target,
		table:  resolver.table,
		upAxis: upAxis,
		legacy: target.Version().IsLegacy(),
	}

	seen := map[trackKey]struct{}{}
	tracks := make([]model.CompiledTrack, 0, len(clip.Tracks))
	duration := clip.Duration
	for i := range clip.Tracks {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		raw := &clip.Tracks[i]
		if raw.Channel == model.CHANNEL_SCALE {
			report.AddSkipped(model.RetargetWarningScaleChannel, raw.JointName, merrors.NewScaleChannelRejected(raw.JointName))
			logRetargetDebug("スケールトラックを除外: %s", raw.JointName)
			continue
		}
		if raw.SampleCount() == 0 {
			report.AddSkipped(model.RetargetWarningEmptyTrack, raw.JointName, nil)
			continue
		}
		bone, ok := resolver.resolve(raw.JointName)
		if !ok {
			report.AddSkipped(model.RetargetWarningUnresolvedJoint, raw.JointName, merrors.NewUnresolvedJoint(raw.JointName))
			logRetargetDebug("ボーン名未対応: %s", raw.JointName)
			continue
		}
		if raw.Channel == model.CHANNEL_TRANSLATION && bone != humanoid.HIPS {
			report.AddSkipped(model.RetargetWarningNonHipsTranslation, raw.JointName, merrors.NewNonHipsTranslation(raw.JointName, bone.String()))
			continue
		}
		if _, ok := target.ResolveBone(bone); !ok {
			report.AddSkipped(model.RetargetWarningUnresolvableTargetBone, raw.JointName, merrors.NewUnresolvableTargetBone(raw.JointName, bone.String()))
			logRetargetDebug("出力先に関節がありません: %s -> %s", raw.JointName, bone)
			continue
		}
		key := trackKey{bone: bone, channel: raw.Channel}
		if _, dup := seen[key]; dup {
			report.AddSkipped(model.RetargetWarningDuplicateBone, raw.JointName, nil)
			logRetargetDebug("同一ボーンのトラックが重複: %s -> %s", raw.JointName, bone)
			continue
		}
		seen[key] = struct{}{}

		var track model.CompiledTrack
		if raw.Channel == model.CHANNEL_ROTATION {
			track = ctxTrack.compileRotation(raw, bone)
		} else {
			track = ctxTrack.compileHipsTranslation(raw, report)
		}
		tracks = append(tracks, track)
		report.AddMapped()
		if last := track.Times[len(track.Times)-1]; last > duration {
			duration = last
		}
	}

	attachSuggestions(report, resolver.table)
	if report.TracksMapped == 0 {
		return nil, report, merrors.NewZeroTracksMapped(clip.Name, report.TracksTotal)
	}

	logRetargetInfo("クリップ変換完了: clip=%s family=%s up=%s mapped=%d/%d hipsScale=%.4f",
		clip.Name, report.Family, report.UpAxis, report.TracksMapped, report.TracksTotal, report.HipsScale)

	return &model.CompiledClip{
		ID:       uuid.New(),
		Name:     clip.Name,
		Duration: duration,
		Tracks:   tracks,
		Report:   report,
	}, report, nil
}

// observe は計測先へ結果を渡す。
func (c *Compiler) observe(family rigmap.Family, report *model.Report, err error, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.RecordCompile(family.String(), outcomeOf(err), elapsed.Seconds())
	if report == nil {
		return
	}
	if err == nil {
		c.observer.ObserveMappedRatio(report.MappedRatio())
	}
	for reason, count := range report.Skipped {
		c.observer.AddSkippedTracks(string(reason), count)
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return OUTCOME_OK
	}
	switch merr.ExtractErrorID(err) {
	case merrors.EmptySourceClipErrorID:
		return OUTCOME_EMPTY_CLIP
	case merrors.ZeroTracksMappedErrorID:
		return OUTCOME_ZERO_TRACKS
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return OUTCOME_CANCELED
	}
	return OUTCOME_ERROR
}

type trackKey struct {
	bone    humanoid.BoneName
	channel model.ChannelKind
}

// DetectSourceUpAxis はルート関節のレスト回転から上方向軸を判定する。
func DetectSourceUpAxis(src *skeleton.Skeleton) coordaxis.UpAxis {
	if src == nil {
		return coordaxis.UP_AXIS_Y
	}
	root, ok := src.Root()
	if !ok {
		return coordaxis.UP_AXIS_Y
	}
	return coordaxis.DetectUpAxis(root.Rest.Rotation)
}

// logRetargetInfo はリターゲット処理の情報ログを出力する。
func logRetargetInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logRetargetWarn はリターゲット処理の警告ログを出力する。
func logRetargetWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}

// logRetargetDebug はリターゲット処理のデバッグログを出力する。
func logRetargetDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}
