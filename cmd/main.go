// 指示: miu200521358
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/miu200521358/mu_vrm_retarget/pkg/adapter/io_model/gltf"
	"github.com/miu200521358/mu_vrm_retarget/pkg/adapter/io_model/vrm"
	"github.com/miu200521358/mu_vrm_retarget/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_retarget/pkg/infra/base/mlogging"
	"github.com/miu200521358/mu_vrm_retarget/pkg/infra/config"
	"github.com/miu200521358/mu_vrm_retarget/pkg/infra/metrics"
	"github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/logging"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/minteractor"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/playback"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/preload"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/retarget"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/rigmap"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/schedule"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// options はCLI共通引数を保持する。
type options struct {
	configPath string
	envPath    string
	logLevel   string
	logFile    string
	family     string
	clipName   string
	additive   bool
	verbose    bool
	fallback   bool
}

// playOptions はplayサブコマンドの引数を保持する。
type playOptions struct {
	seconds  float64
	fps      float64
	speakAt  float64
	speakFor float64
}

// app は1回の実行で使う依存をまとめる。
type app struct {
	usecase  *minteractor.RetargetUsecase
	settings *config.Settings
	metrics  *metrics.RetargetMetrics
	close    func() error
}

// main はリターゲットCLIを実行する。
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(args []string, out io.Writer, errOut io.Writer) error {
	root := newRootCommand(out, errOut)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

// newRootCommand はサブコマンドを束ねたルートコマンドを生成する。
func newRootCommand(out io.Writer, errOut io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "mu_vrm_retarget",
		Short:         messages.CommandRootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", messages.FlagConfig)
	flags.StringVar(&opts.envPath, "env", ".env", messages.FlagEnvFile)
	flags.StringVar(&opts.logLevel, "log-level", "", messages.FlagLogLevel)
	flags.StringVar(&opts.logFile, "log-file", "", messages.FlagLogFile)
	flags.StringVar(&opts.family, "family", "", messages.FlagFamily)
	flags.StringVar(&opts.clipName, "clip", "", messages.FlagClip)
	flags.BoolVar(&opts.fallback, "fallback", false, messages.FlagFallback)

	root.AddCommand(newInspectCommand(opts, errOut), newCompileCommand(opts, errOut), newPlayCommand(opts, errOut))
	return root
}

// newInspectCommand はinspectサブコマンドを生成する。
func newInspectCommand(opts *options, errOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <animation.glb>",
		Short: messages.CommandInspectShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := newApp(opts, errOut, false)
			if err != nil {
				return err
			}
			defer a.finish(&err, errOut)

			result, err := a.usecase.Inspect(minteractor.InspectRequest{
				AnimationPath: args[0],
				ClipName:      opts.clipName,
				Family:        rigmap.Family(opts.family),
			})
			if err != nil {
				return fmt.Errorf("%s: %w", messages.MessageLoadFailed, err)
			}
			printInspect(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

// newCompileCommand はcompileサブコマンドを生成する。
func newCompileCommand(opts *options, errOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <animation.glb> <avatar.vrm>",
		Short: messages.CommandCompileShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := newApp(opts, errOut, false)
			if err != nil {
				return err
			}
			defer a.finish(&err, errOut)

			result, err := a.usecase.Compile(cmd.Context(), minteractor.CompileRequest{
				AnimationPath: args[0],
				AvatarPath:    args[1],
				ClipName:      opts.clipName,
				Family:        rigmap.Family(opts.family),
				Additive:      opts.additive,
			})
			if result != nil {
				printCompile(cmd.OutOrStdout(), result, opts.verbose)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", messages.MessageCompileFailed, err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.additive, "additive", false, messages.FlagAdditive)
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, messages.FlagVerbose)
	return cmd
}

// newPlayCommand はplayサブコマンドを生成する。
func newPlayCommand(opts *options, errOut io.Writer) *cobra.Command {
	playOpts := &playOptions{}
	cmd := &cobra.Command{
		Use:   "play <avatar.vrm> <animation.glb>...",
		Short: messages.CommandPlayShort,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := newApp(opts, errOut, true)
			if err != nil {
				return err
			}
			defer a.finish(&err, errOut)
			return simulatePlayback(cmd.Context(), cmd.OutOrStdout(), a, args[0], args[1:], playOpts)
		},
	}
	cmd.Flags().Float64Var(&playOpts.seconds, "seconds", 10, messages.FlagSeconds)
	cmd.Flags().Float64Var(&playOpts.fps, "fps", 30, messages.FlagFPS)
	cmd.Flags().Float64Var(&playOpts.speakAt, "speak-at", -1, messages.FlagSpeakAt)
	cmd.Flags().Float64Var(&playOpts.speakFor, "speak-for", 3, messages.FlagSpeakFor)
	return cmd
}

// simulatePlayback は固定刻みで再生セッションを進め、遷移を表示する。
// 変換待ちの間は実時間でわずかに待ち、先読みの遅延を模擬する。
func simulatePlayback(ctx context.Context, out io.Writer, a *app, avatarPath string, clips []string, opts *playOptions) error {
	if opts.fps <= 0 {
		return fmt.Errorf("fpsは正の値を指定してください: %v", opts.fps)
	}
	avatar, err := a.usecase.LoadAvatar(nil, avatarPath)
	if err != nil {
		return fmt.Errorf("%s: %w", messages.MessageLoadFailed, err)
	}
	session, err := a.usecase.NewPlaybackSession(ctx, avatar, clips, minteractor.PlaybackOptions{
		Playback: playback.Options{
			Crossfade:   a.settings.CrossfadeDuration(),
			NoCrossfade: a.settings.CrossfadeDuration() <= 0,
			ModeDwell:   a.settings.ModeDwell(),
			Observer:    a.metrics,
		},
		Schedule: schedule.Options{IdleRotate: a.settings.IdleRotateInterval()},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, messages.LogPlayRequested+"\n", 0.0, session.Pending())

	step := time.Duration(float64(time.Second) / opts.fps)
	frames := int(opts.seconds * opts.fps)
	speaking := false
	for frame := 1; frame <= frames; frame++ {
		now := float64(frame) / opts.fps
		if want := opts.speakAt >= 0 && now >= opts.speakAt && now < opts.speakAt+opts.speakFor; want != speaking {
			speaking = want
			fmt.Fprintf(out, messages.LogPlaySpeaking+"\n", now, speaking)
			requested, err := session.SetSpeaking(ctx, speaking)
			if err != nil {
				return err
			}
			if requested != "" {
				fmt.Fprintf(out, messages.LogPlayRequested+"\n", now, requested)
			}
		}
		if session.Pending() != "" {
			time.Sleep(time.Millisecond)
		}
		result, err := session.Tick(ctx, step)
		if err != nil {
			return err
		}
		if result.Requested != "" {
			fmt.Fprintf(out, messages.LogPlayRequested+"\n", now, result.Requested)
		}
		if result.Started != "" {
			fmt.Fprintf(out, messages.LogPlayStarted+"\n", now, result.Started, session.Controller().State().Kind)
		}
		if result.Failed != nil {
			fmt.Fprintf(out, messages.LogPlayFailed+"\n", now, result.Failed)
		}
	}
	fmt.Fprintf(out, messages.LogPlaySummary+"\n", session.Playing(), session.Controller().State().Kind)
	return nil
}

// newApp は設定、ロガー、計測、ユースケースを組み立てる。withPreloadの時は先読み器も起動する。
func newApp(opts *options, errOut io.Writer, withPreload bool) (*app, error) {
	settings, err := config.Load(config.LoadOptions{ConfigFile: opts.configPath, EnvFile: opts.envPath})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", messages.MessageConfigFailed, err)
	}
	if opts.logLevel != "" {
		settings.Log.Level = opts.logLevel
	}
	if opts.logFile != "" {
		settings.Log.File = opts.logFile
	}
	if opts.fallback {
		settings.Rig.FallbackToHeuristic = true
	}

	logger, closeLog, err := newLogger(settings, errOut)
	if err != nil {
		return nil, err
	}
	logging.SetDefaultLogger(logger)

	registry, err := rigmap.DefaultRegistry()
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	registry, err = settings.ApplySignFlips(registry)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("%s: %w", messages.MessageConfigFailed, err)
	}
	retargetMetrics, err := metrics.NewRetargetMetrics(prometheus.NewRegistry())
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	compiler := retarget.NewCompiler(retarget.Options{
		Registry:            registry,
		SpineNumbering:      settings.SpineNumbering,
		FallbackToHeuristic: settings.Rig.FallbackToHeuristic,
		Observer:            retargetMetrics,
	})
	closeAll := closeLog
	var preloader *preload.Preloader
	if withPreload {
		preloader = preload.New(preload.Options{Workers: settings.Preload.Workers, Observer: retargetMetrics})
		closeAll = func() error {
			err := preloader.Close()
			if logErr := closeLog(); err == nil {
				err = logErr
			}
			return err
		}
	}
	usecase := minteractor.NewRetargetUsecase(minteractor.RetargetUsecaseDeps{
		AnimationReader: gltf.NewAnimationRepository(nil),
		AvatarReader:    vrm.NewVrmRepository(nil),
		Compiler:        compiler,
		Preloader:       preloader,
	})
	return &app{usecase: usecase, settings: settings, metrics: retargetMetrics, close: closeAll}, nil
}

// finish は依存を閉じる。処理が成功していれば閉じる際のエラーを返し、失敗済みなら表示だけする。
func (a *app) finish(err *error, errOut io.Writer) {
	if closeErr := a.close(); closeErr != nil {
		if *err == nil {
			*err = fmt.Errorf("%s: %w", messages.MessageCloseFailed, closeErr)
			return
		}
		fmt.Fprintf(errOut, "%s: %v\n", messages.MessageCloseFailed, closeErr)
	}
}

// newLogger は設定に応じて標準エラーまたはローテーション付きファイルのロガーを返す。
func newLogger(settings *config.Settings, errOut io.Writer) (*mlogging.Logger, func() error, error) {
	if settings.Log.File == "" {
		logger := mlogging.NewLogger(errOut)
		logger.SetLevel(settings.LogLevel())
		return logger, func() error { return nil }, nil
	}
	logger, closeLog, err := mlogging.NewFileLogger(mlogging.FileOptions{Path: settings.Log.File, Console: errOut})
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(settings.LogLevel())
	return logger, closeLog, nil
}

// printInspect は対応付け確認結果を表示する。
func printInspect(out io.Writer, result *minteractor.InspectResult) {
	fmt.Fprintf(out, messages.LogInspectSummary+"\n",
		result.ClipName, result.Family, result.UpAxis, result.JointCount, result.MappedCount(), len(result.Mappings))
	fmt.Fprintf(out, messages.LogAvailableClips+"\n", strings.Join(result.ClipNames, ","))
	for _, mapping := range result.Mappings {
		if mapping.Source == retarget.MAPPING_NONE {
			fmt.Fprintf(out, messages.LogInspectNoMatch+"\n", mapping.JointName, mapping.Reason)
			continue
		}
		fmt.Fprintf(out, messages.LogInspectMapping+"\n", mapping.JointName, mapping.Bone, mapping.Source)
	}
}

// printCompile は変換結果を表示する。
func printCompile(out io.Writer, result *minteractor.CompileResult, verbose bool) {
	report := result.Report
	if report == nil {
		return
	}
	duration := 0.0
	if result.Clip != nil {
		duration = result.Clip.Duration
	}
	fmt.Fprintf(out, messages.LogCompileSummary+"\n",
		report.ClipName, report.Family, report.UpAxis, report.TracksMapped, report.TracksTotal, report.HipsScale, duration)
	for _, reason := range sortedReasons(report.Skipped) {
		fmt.Fprintf(out, messages.LogCompileSkipped+"\n", reason, report.Skipped[reason])
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(out, messages.LogCompileWarning+"\n", warning)
	}
	if !verbose {
		return
	}
	fmt.Fprintf(out, messages.LogAvailableClips+"\n", strings.Join(result.ClipNames, ","))
	for _, joint := range report.UnmatchedJointNames {
		fmt.Fprintf(out, messages.LogCompileUnmatch+"\n", joint)
		if suggestion, ok := report.Suggestions[joint]; ok {
			fmt.Fprintf(out, messages.LogCompileSuggest+"\n", joint, suggestion)
		}
	}
}

func sortedReasons(skipped map[model.SkipReason]int) []model.SkipReason {
	reasons := make([]model.SkipReason, 0, len(skipped))
	for reason := range skipped {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	return reasons
}
