// 指示: miu200521358
package minteractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/skeleton"
	"github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/logging"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/port/moutput"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/preload"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/retarget"
)

// Compile はアニメーションとアバターを解決し、選択したクリップを変換する。
// 致命的な失敗でも判明した範囲のReportを結果に含める。
func (uc *RetargetUsecase) Compile(ctx context.Context, request CompileRequest) (*CompileResult, error) {
	animation, err := uc.resolveAnimation(request.AnimationReader, request.AnimationPath, request.Animation)
	if err != nil {
		return nil, err
	}
	reportCompileProgress(request.ProgressReporter, CompileProgressEvent{
		Type: CompileProgressEventTypeAnimationLoaded,
	})

	avatar, err := uc.resolveAvatar(request.AvatarReader, request.AvatarPath, request.Avatar)
	if err != nil {
		return nil, err
	}
	reportCompileProgress(request.ProgressReporter, CompileProgressEvent{
		Type: CompileProgressEventTypeAvatarLoaded,
	})

	source, ok := retarget.SelectClip(animation.Clips, request.ClipName)
	if !ok {
		return nil, merrors.NewEmptySourceClip(request.ClipName)
	}
	if request.ClipName != "" && source.Name != request.ClipName {
		logInteractorWarn("指定クリップが見つからないため代替を使用: requested=%s used=%s", request.ClipName, source.Name)
	}
	reportCompileProgress(request.ProgressReporter, CompileProgressEvent{
		Type:       CompileProgressEventTypeClipSelected,
		ClipName:   source.Name,
		TrackCount: len(source.Tracks),
	})

	result := &CompileResult{SourceClipName: source.Name, ClipNames: animation.ClipNames()}
	compiled, report, err := uc.compiler.CompileWithReport(ctx, source, animation.Skeleton, avatar, request.Family)
	result.Report = report
	if err != nil {
		return result, err
	}
	if request.Additive {
		compiled, err = retarget.MakeAdditive(compiled)
		if err != nil {
			return result, fmt.Errorf("加算クリップ変換に失敗しました: %w", err)
		}
	}
	result.Clip = compiled
	reportCompileProgress(request.ProgressReporter, CompileProgressEvent{
		Type:         CompileProgressEventTypeCompiled,
		ClipName:     source.Name,
		TrackCount:   report.TracksTotal,
		MappedTracks: report.TracksMapped,
	})
	return result, nil
}

// RequestPreload は変換を先読み器へ投入し、要求トークンを返す。
func (uc *RetargetUsecase) RequestPreload(ctx context.Context, request CompileRequest) (uint64, error) {
	if uc.preloader == nil {
		return 0, fmt.Errorf("先読み器が設定されていません")
	}
	return uc.preloader.Request(ctx, PreloadKey(request), uc.compileFunc(request))
}

// Prefetch は変換結果をキャッシュへ温める。結果は配信しない。
func (uc *RetargetUsecase) Prefetch(ctx context.Context, request CompileRequest) error {
	if uc.preloader == nil {
		return fmt.Errorf("先読み器が設定されていません")
	}
	return uc.preloader.Prefetch(ctx, PreloadKey(request), uc.compileFunc(request))
}

func (uc *RetargetUsecase) compileFunc(request CompileRequest) preload.CompileFunc {
	return func(ctx context.Context) (*model.CompiledClip, error) {
		result, err := uc.Compile(ctx, request)
		if err != nil {
			return nil, err
		}
		return result.Clip, nil
	}
}

// PreloadKey は変換要求のキャッシュキーを返す。
func PreloadKey(request CompileRequest) string {
	return strings.Join([]string{
		request.AnimationPath,
		request.ClipName,
		request.AvatarPath,
		string(request.Family),
		fmt.Sprintf("additive=%t", request.Additive),
	}, "|")
}

// resolveAnimation は変換元アニメーションを解決する。
func (uc *RetargetUsecase) resolveAnimation(rep moutput.IAnimationReader, path string, animation *AnimationData) (*AnimationData, error) {
	if animation != nil {
		return animation, nil
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("入力アニメーションパスが未指定です")
	}
	loaded, err := uc.LoadAnimation(rep, path)
	if err != nil {
		return nil, err
	}
	if len(loaded.Clips) == 0 {
		return nil, merrors.NewEmptySourceClip(loaded.Name)
	}
	return loaded, nil
}

// resolveAvatar は出力先ヒューマノイドを解決する。
func (uc *RetargetUsecase) resolveAvatar(rep moutput.IAvatarReader, path string, avatar *skeleton.Humanoid) (*skeleton.Humanoid, error) {
	if avatar != nil {
		return avatar, nil
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("入力アバターパスが未指定です")
	}
	loaded, err := uc.LoadAvatar(rep, path)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return nil, fmt.Errorf("アバター読み込み結果が空です")
	}
	return loaded, nil
}

// reportCompileProgress は変換処理の進捗を通知する。
func reportCompileProgress(reporter ICompileProgressReporter, event CompileProgressEvent) {
	if reporter == nil {
		return
	}
	reporter.ReportCompileProgress(event)
}

// logInteractorWarn はユースケースの警告ログを出力する。
func logInteractorWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
