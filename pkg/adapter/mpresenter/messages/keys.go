// 指示: miu200521358
// Package messages はCLI表示に使うメッセージを提供する。
package messages

// メッセージ一覧。
const (
	CommandRootShort    = "VRMアバター向けアニメーションリターゲット"
	CommandInspectShort = "アニメーションの系統と関節対応を表示する"
	CommandCompileShort = "アニメーションをアバター用クリップへ変換し結果を表示する"
	CommandPlayShort    = "待機と発話の切替を模擬再生し遷移を表示する"

	FlagConfig    = "設定ファイルパス"
	FlagEnvFile   = ".envファイルパス"
	FlagClip      = "変換するクリップ名"
	FlagFamily    = "元リグ系統 (mixamo|kawaii|unknown)。未指定なら判定する"
	FlagAdditive  = "加算用クリップとして変換する"
	FlagLogLevel  = "ログレベル (debug|info|warn|error)"
	FlagVerbose   = "関節ごとの対応を表示する"
	FlagLogFile   = "ログファイルパス"
	FlagFallback  = "既知系統で表に無い関節を名前推定で補う"
	FlagSeconds   = "模擬再生する秒数"
	FlagFPS       = "模擬再生のフレームレート"
	FlagSpeakAt   = "発話を開始する秒数。負値なら発話しない"
	FlagSpeakFor  = "発話を続ける秒数"

	MessageLoadFailed    = "読み込み失敗"
	MessageCompileFailed = "変換失敗"
	MessageConfigFailed  = "設定読み込み失敗"
	MessageCloseFailed   = "終了処理失敗"

	LogInspectSummary = "clip=%s family=%s up=%s joints=%d mapped=%d/%d"
	LogInspectMapping = "  %-32s -> %-24s %s"
	LogInspectNoMatch = "  %-32s -> (none) reason=%s"
	LogCompileSummary = "clip=%s family=%s up=%s mapped=%d/%d hipsScale=%.4f duration=%.3fs"
	LogCompileSkipped = "  skipped %s=%d"
	LogCompileUnmatch = "  unmatched %s"
	LogCompileSuggest = "  suggestion %s -> %s"
	LogCompileWarning = "  warning %s"
	LogAvailableClips = "clips=%s"
	LogPlayRequested  = "t=%.3fs request %s"
	LogPlayStarted    = "t=%.3fs start %s state=%s"
	LogPlayFailed     = "t=%.3fs failed %v"
	LogPlaySpeaking   = "t=%.3fs speaking=%t"
	LogPlaySummary    = "playing=%s state=%s"
)
