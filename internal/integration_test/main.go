// 指示: miu200521358
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/miu200521358/mu_vrm_retarget/pkg/adapter/io_model/gltf"
	"github.com/miu200521358/mu_vrm_retarget/pkg/adapter/io_model/vrm"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/skeleton"
	"github.com/miu200521358/mu_vrm_retarget/pkg/infra/base/mlogging"
	"github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/logging"
	"github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/merr"
	"github.com/miu200521358/mu_vrm_retarget/pkg/usecase/minteractor"
)

// batchConfig はバッチ変換の実行設定を表す。
type batchConfig struct {
	AnimationDir string
	AvatarPath   string
	DryRun       bool
	FailFast     bool
	Verbose      bool
}

// compileEntry は1アニメーション分の変換入力情報を表す。
type compileEntry struct {
	Index         int
	AnimationPath string
	Name          string
}

// compileResult は1アニメーション分の変換結果を表す。
type compileResult struct {
	Entry     compileEntry
	Status    string
	Duration  time.Duration
	Err       error
	Summary   string
	StageInfo string
}

// compileProgressCollector は Compile の進捗イベントを収集する。
type compileProgressCollector struct {
	eventCounts map[minteractor.CompileProgressEventType]int
	trackMax    int
}

// main はアバター1体に対してディレクトリ内の全アニメーションを変換する。
func main() {
	os.Exit(run())
}

// run は実行設定を解決して一括変換を実行し、終了コードを返す。
func run() int {
	config, err := parseBatchConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	logger := mlogging.NewLogger(os.Stderr)
	if config.Verbose {
		logger.SetLevel(logging.LOG_LEVEL_DEBUG)
	} else {
		logger.SetLevel(logging.LOG_LEVEL_WARN)
	}
	logging.SetDefaultLogger(logger)

	entries, err := buildCompileEntries(config.AnimationDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "入力ディレクトリの走査に失敗しました: %v\n", err)
		return 2
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "変換対象アニメーションがありません")
		return 2
	}

	results := executeBatchCompile(config, entries)
	printBatchSummary(results)

	for _, result := range results {
		if result.Status == "failed" {
			return 1
		}
	}
	return 0
}

// parseBatchConfig はコマンドライン引数から実行設定を構築する。
func parseBatchConfig() (batchConfig, error) {
	defaultAnimationDir, err := resolveDefaultAnimationDir()
	if err != nil {
		return batchConfig{}, err
	}
	animationDir := flag.String("anim-dir", defaultAnimationDir, "変換元アニメーションのディレクトリ")
	avatarPath := flag.String("avatar", "", "出力先VRMファイル")
	dryRun := flag.Bool("dry-run", false, "実変換せず、入力解決のみ表示する")
	failFast := flag.Bool("fail-fast", false, "失敗時に即時終了する")
	verbose := flag.Bool("verbose", false, "デバッグログを表示する")
	flag.Parse()

	trimmedDir := strings.TrimSpace(*animationDir)
	if trimmedDir == "" {
		return batchConfig{}, errors.New("anim-dir が空です")
	}
	trimmedAvatar := strings.TrimSpace(*avatarPath)
	if trimmedAvatar == "" && !*dryRun {
		return batchConfig{}, errors.New("avatar が空です")
	}
	return batchConfig{
		AnimationDir: normalizeInputPath(trimmedDir),
		AvatarPath:   normalizeInputPath(trimmedAvatar),
		DryRun:       *dryRun,
		FailFast:     *failFast,
		Verbose:      *verbose,
	}, nil
}

// resolveDefaultAnimationDir はスクリプト配置ディレクトリ基準の既定入力先を返す。
func resolveDefaultAnimationDir() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("実行ファイル位置を取得できません")
	}
	return filepath.Join(filepath.Dir(currentFilePath), "animations"), nil
}

// buildCompileEntries はディレクトリ内のglTF/GLBを名前順に列挙する。
func buildCompileEntries(dir string) ([]compileEntry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	reader := gltf.NewAnimationRepository(nil)
	paths := make([]string, 0, len(files))
	for _, file := range files {
		if file.IsDir() || !reader.CanLoad(file.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, file.Name()))
	}
	sort.Strings(paths)
	entries := make([]compileEntry, 0, len(paths))
	for i, path := range paths {
		entries = append(entries, compileEntry{Index: i + 1, AnimationPath: path, Name: reader.InferName(path)})
	}
	return entries, nil
}

// executeBatchCompile は全アニメーションの変換処理を順次実行する。アバターは1回だけ読み込む。
func executeBatchCompile(config batchConfig, entries []compileEntry) []compileResult {
	results := make([]compileResult, 0, len(entries))
	usecase := minteractor.NewRetargetUsecase(minteractor.RetargetUsecaseDeps{
		AnimationReader: gltf.NewAnimationRepository(nil),
		AvatarReader:    vrm.NewVrmRepository(nil),
	})

	total := len(entries)
	if config.DryRun {
		for _, entry := range entries {
			fmt.Printf("[%d/%d] DRY-RUN: animation=%s avatar=%s\n", entry.Index, total, entry.AnimationPath, config.AvatarPath)
			results = append(results, compileResult{Entry: entry, Status: "dry_run"})
		}
		return results
	}

	avatar, err := usecase.LoadAvatar(nil, config.AvatarPath)
	if err != nil {
		fmt.Printf("アバター読み込みに失敗しました: avatar=%s reason=%v\n", config.AvatarPath, err)
		for _, entry := range entries {
			results = append(results, compileResult{Entry: entry, Status: "failed", Err: err})
		}
		return results
	}

	for _, entry := range entries {
		fmt.Printf("[%d/%d] 変換開始: animation=%s\n", entry.Index, total, entry.Name)
		result := compileAnimationEntry(usecase, entry, avatar)
		results = append(results, result)
		switch result.Status {
		case "succeeded":
			fmt.Printf("[%d/%d] 変換成功: %s elapsed=%s\n", entry.Index, total, result.Summary, result.Duration.Round(time.Millisecond))
			if strings.TrimSpace(result.StageInfo) != "" {
				fmt.Printf("[%d/%d] Compile進捗: %s\n", entry.Index, total, result.StageInfo)
			}
		default:
			fmt.Printf("[%d/%d] 変換失敗: animation=%s id=%s reason=%v %s\n", entry.Index, total, entry.Name, merr.ExtractErrorID(result.Err), result.Err, result.Summary)
			if config.FailFast {
				return results
			}
		}
	}
	return results
}

// compileAnimationEntry は読込済みアバターに対して1アニメーション分の変換を実行する。
func compileAnimationEntry(usecase *minteractor.RetargetUsecase, entry compileEntry, avatar *skeleton.Humanoid) compileResult {
	result := compileResult{Entry: entry, Status: "failed"}

	startedAt := time.Now()
	collector := newCompileProgressCollector()
	compiled, err := usecase.Compile(context.Background(), minteractor.CompileRequest{
		AnimationPath:    entry.AnimationPath,
		Avatar:           avatar,
		ProgressReporter: collector,
	})
	result.Duration = time.Since(startedAt)
	if compiled != nil && compiled.Report != nil {
		report := compiled.Report
		result.Summary = fmt.Sprintf("clip=%s family=%s up=%s mapped=%d/%d hipsScale=%.4f",
			report.ClipName, report.Family, report.UpAxis, report.TracksMapped, report.TracksTotal, report.HipsScale)
	}
	if err != nil {
		result.Err = err
		return result
	}
	result.Status = "succeeded"
	result.StageInfo = collector.Summary()
	return result
}

// printBatchSummary は変換結果の集計を標準出力へ表示する。
func printBatchSummary(results []compileResult) {
	succeeded := 0
	failed := 0
	dryRun := 0
	for _, result := range results {
		switch result.Status {
		case "succeeded":
			succeeded++
		case "dry_run":
			dryRun++
		default:
			failed++
		}
	}
	fmt.Printf("バッチ変換サマリ: total=%d succeeded=%d failed=%d dry_run=%d\n", len(results), succeeded, failed, dryRun)
}

// normalizeInputPath は入力パスを実行環境向けに正規化する。
func normalizeInputPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	return filepath.Clean(convertWindowsPathToWsl(path))
}

// convertWindowsPathToWsl は Linux 実行時に Windows パスを WSL パスへ変換する。
func convertWindowsPathToWsl(path string) string {
	trimmed := strings.TrimSpace(path)
	if runtime.GOOS != "linux" {
		return trimmed
	}
	if len(trimmed) < 2 || trimmed[1] != ':' {
		return trimmed
	}
	drive := strings.ToLower(trimmed[:1])
	rest := strings.ReplaceAll(trimmed[2:], "\\", "/")
	if rest == "" {
		return filepath.ToSlash(filepath.Join("/mnt", drive))
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return filepath.ToSlash(filepath.Join("/mnt", drive) + rest)
}

// newCompileProgressCollector は Compile 進捗収集器を生成する。
func newCompileProgressCollector() *compileProgressCollector {
	return &compileProgressCollector{
		eventCounts: map[minteractor.CompileProgressEventType]int{},
	}
}

// ReportCompileProgress は Compile の進捗イベントを収集する。
func (collector *compileProgressCollector) ReportCompileProgress(event minteractor.CompileProgressEvent) {
	if collector == nil {
		return
	}
	collector.eventCounts[event.Type]++
	if event.TrackCount > collector.trackMax {
		collector.trackMax = event.TrackCount
	}
}

// Summary は収集した Compile 進捗の要約文字列を返す。
func (collector *compileProgressCollector) Summary() string {
	if collector == nil || len(collector.eventCounts) == 0 {
		return ""
	}
	types := make([]string, 0, len(collector.eventCounts))
	for stageType := range collector.eventCounts {
		types = append(types, string(stageType))
	}
	sort.Strings(types)
	return fmt.Sprintf("events=%d trackMax=%d stages=%s", len(collector.eventCounts), collector.trackMax, strings.Join(types, ","))
}
