// 指示: miu200521358
// Package vrm はVRMファイルからヒューマノイド出力先を読み込む。
package vrm

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_vrm_retarget/pkg/adapter/io_model/gltf"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/humanoid"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/skeleton"
	"github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/logging"
	"github.com/spf13/afero"
)

// 拡張名。
const (
	extensionVrm0 = "VRM"
	extensionVrm1 = "VRMC_vrm"
)

// vrm0ThumbRemap はVRM0の親指名をVRM1語彙へ読み替える。
var vrm0ThumbRemap = map[string]humanoid.BoneName{
	"leftThumbProximal":      humanoid.THUMB_METACARPAL.Left(),
	"leftThumbIntermediate":  humanoid.THUMB_PROXIMAL.Left(),
	"leftThumbDistal":        humanoid.THUMB_DISTAL.Left(),
	"rightThumbProximal":     humanoid.THUMB_METACARPAL.Right(),
	"rightThumbIntermediate": humanoid.THUMB_PROXIMAL.Right(),
	"rightThumbDistal":       humanoid.THUMB_DISTAL.Right(),
}

// LoadProgressEventType はVRM読込進捗イベント種別を表す。
type LoadProgressEventType string

const (
	// LoadProgressEventTypeFileReadComplete はファイル読込完了イベントを表す。
	LoadProgressEventTypeFileReadComplete LoadProgressEventType = "file_read_complete"
	// LoadProgressEventTypeSkeletonBuilt はスケルトン構築完了イベントを表す。
	LoadProgressEventTypeSkeletonBuilt LoadProgressEventType = "skeleton_built"
	// LoadProgressEventTypeCompleted はVRM読込完了イベントを表す。
	LoadProgressEventTypeCompleted LoadProgressEventType = "completed"
)

// LoadProgressEvent はVRM読込進捗イベントを表す。
type LoadProgressEvent struct {
	Type      LoadProgressEventType
	NodeCount int
	BoneCount int
}

// Avatar は読み込んだVRMアバターを表す。
type Avatar struct {
	Name      string
	Generator string
	Humanoid  *skeleton.Humanoid
}

// VrmRepository はVRM入力の読み込みを表す。
type VrmRepository struct {
	fs                   afero.Fs
	loadProgressReporter func(LoadProgressEvent)
}

// NewVrmRepository はVrmRepositoryを生成する。fsがnilの場合はOSのファイルシステムを使う。
func NewVrmRepository(fs afero.Fs) *VrmRepository {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &VrmRepository{fs: fs}
}

// SetLoadProgressReporter はVRM読込進捗受信コールバックを設定する。
func (r *VrmRepository) SetLoadProgressReporter(reporter func(LoadProgressEvent)) {
	if r == nil {
		return
	}
	r.loadProgressReporter = reporter
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *VrmRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".vrm")
}

// InferName はパスから表示名を推定する。
func (r *VrmRepository) InferName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// Load はVRMを読み込む。VRM0/VRM1が同居する場合はVRM1を優先する。
func (r *VrmRepository) Load(path string) (*Avatar, error) {
	if !r.CanLoad(path) {
		return nil, merrors.NewIoExtInvalid(path, nil)
	}
	loadTargetName := filepath.Base(path)
	logVrmInfo("VRM読込開始: file=%s", loadTargetName)

	file, err := gltf.ReadFile(r.fs, path)
	if err != nil {
		return nil, err
	}
	doc := file.Document
	r.reportLoadProgress(LoadProgressEvent{Type: LoadProgressEventTypeFileReadComplete, NodeCount: len(doc.Nodes)})

	version := detectVrmVersion(doc)
	if version == "" {
		return nil, merrors.NewIoFormatNotSupported("VRM拡張が見つかりません: %s", nil, loadTargetName)
	}

	name := r.InferName(path)
	sk, handles, err := file.BuildSkeleton(name)
	if err != nil {
		return nil, err
	}
	r.reportLoadProgress(LoadProgressEvent{Type: LoadProgressEventTypeSkeletonBuilt, NodeCount: len(doc.Nodes)})

	var nodes map[humanoid.BoneName]int
	if version == humanoid.VERSION_VRM1 {
		nodes, err = parseVRM1HumanBones(doc.Extensions)
	} else {
		nodes, err = parseVRM0HumanBones(doc.Extensions)
	}
	if err != nil {
		return nil, err
	}

	bones := make(map[humanoid.BoneName]skeleton.JointHandle, len(nodes))
	for bone, node := range nodes {
		if node < 0 || node >= len(handles) {
			return nil, merrors.NewIoParseFailed("humanBones のnodeが不正です: %s=%d", nil, bone, node)
		}
		bones[bone] = handles[node]
	}
	if _, ok := bones[humanoid.HIPS]; !ok {
		logVrmWarn("hipsが割り当てられていません: file=%s", loadTargetName)
	}
	h, err := skeleton.NewHumanoid(sk, version, bones)
	if err != nil {
		return nil, err
	}

	r.reportLoadProgress(LoadProgressEvent{Type: LoadProgressEventTypeCompleted, NodeCount: len(doc.Nodes), BoneCount: len(bones)})
	logVrmInfo("VRM読込完了: file=%s version=%s bones=%d", loadTargetName, version, len(bones))
	return &Avatar{Name: name, Generator: doc.Asset.Generator, Humanoid: h}, nil
}

// reportLoadProgress は読込進捗イベントを通知する。
func (r *VrmRepository) reportLoadProgress(event LoadProgressEvent) {
	if r == nil || r.loadProgressReporter == nil {
		return
	}
	r.loadProgressReporter(event)
}

// vrm0Extension はVRM0拡張の必要要素を表す。
type vrm0Extension struct {
	Humanoid struct {
		HumanBones []vrm0HumanBone `json:"humanBones"`
	} `json:"humanoid"`
}

// vrm0HumanBone はVRM0 humanBones要素を表す。
type vrm0HumanBone struct {
	Bone string `json:"bone"`
	Node *int   `json:"node"`
}

// vrm1Extension はVRM1拡張の必要要素を表す。
type vrm1Extension struct {
	Humanoid struct {
		HumanBones map[string]vrm1HumanBone `json:"humanBones"`
	} `json:"humanoid"`
}

// vrm1HumanBone はVRM1 humanBones要素を表す。
type vrm1HumanBone struct {
	Node *int `json:"node"`
}

// parseVRM0HumanBones はVRM0のhumanBones一覧を読む。親指は読み替える。
func parseVRM0HumanBones(extensions map[string]json.RawMessage) (map[humanoid.BoneName]int, error) {
	ext := vrm0Extension{}
	if err := json.Unmarshal(extensions[extensionVrm0], &ext); err != nil {
		return nil, merrors.NewIoParseFailed("VRM0拡張のJSON解析に失敗しました", err)
	}
	bones := make(map[humanoid.BoneName]int, len(ext.Humanoid.HumanBones))
	for _, b := range ext.Humanoid.HumanBones {
		if b.Node == nil {
			continue
		}
		bone, ok := vrm0ThumbRemap[b.Bone]
		if !ok {
			bone, ok = humanoid.Parse(b.Bone)
		}
		if !ok {
			logVrmDebug("語彙外のVRM0ボーンを無視: %s", b.Bone)
			continue
		}
		bones[bone] = *b.Node
	}
	return bones, nil
}

// parseVRM1HumanBones はVRM1のhumanBones辞書を読む。
func parseVRM1HumanBones(extensions map[string]json.RawMessage) (map[humanoid.BoneName]int, error) {
	ext := vrm1Extension{}
	if err := json.Unmarshal(extensions[extensionVrm1], &ext); err != nil {
		return nil, merrors.NewIoParseFailed("VRM1拡張のJSON解析に失敗しました", err)
	}
	bones := make(map[humanoid.BoneName]int, len(ext.Humanoid.HumanBones))
	for key, b := range ext.Humanoid.HumanBones {
		if b.Node == nil {
			continue
		}
		bone, ok := humanoid.Parse(key)
		if !ok {
			logVrmDebug("語彙外のVRM1ボーンを無視: %s", key)
			continue
		}
		bones[bone] = *b.Node
	}
	return bones, nil
}

// detectVrmVersion は拡張の実体から優先バージョンを判定する。
func detectVrmVersion(doc *gltf.Document) humanoid.Version {
	if doc.Extensions == nil {
		return ""
	}
	if _, ok := doc.Extensions[extensionVrm1]; ok {
		return humanoid.VERSION_VRM1
	}
	if _, ok := doc.Extensions[extensionVrm0]; ok {
		return humanoid.VERSION_VRM0
	}
	return ""
}

// logVrmInfo はVRM読込のINFOログを出力する。
func logVrmInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logVrmDebug はVRM読込のデバッグログを出力する。
func logVrmDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logVrmWarn はVRM読込の警告ログを出力する。
func logVrmWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}

// LoadHumanoid はヒューマノイド出力先だけを読み込む。
func (r *VrmRepository) LoadHumanoid(path string) (*skeleton.Humanoid, error) {
	avatar, err := r.Load(path)
	if err != nil {
		return nil, err
	}
	return avatar.Humanoid, nil
}
