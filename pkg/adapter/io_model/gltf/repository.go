// 指示: miu200521358
package gltf

import (
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/skeleton"
	"github.com/miu200521358/mu_vrm_retarget/pkg/shared/base/logging"
	"github.com/spf13/afero"
)

// Asset は読み込んだ元リグとクリップを表す。
type Asset struct {
	Name     string
	Skeleton *skeleton.Skeleton
	Clips    []*model.SourceClip
}

// JointNames はスケルトンの関節名を追加順で返す。
func (a *Asset) JointNames() []string {
	if a == nil || a.Skeleton == nil {
		return nil
	}
	joints := a.Skeleton.Joints()
	names := make([]string, len(joints))
	for i, joint := range joints {
		names[i] = joint.Name
	}
	return names
}

// AnimationRepository はglTF/GLBアニメーションの読み込みを表す。
type AnimationRepository struct {
	fs afero.Fs
}

// NewAnimationRepository はAnimationRepositoryを生成する。fsがnilの場合はOSのファイルシステムを使う。
func NewAnimationRepository(fs afero.Fs) *AnimationRepository {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &AnimationRepository{fs: fs}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *AnimationRepository) CanLoad(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".glb" || ext == ".gltf"
}

// InferName はパスから表示名を推定する。
func (r *AnimationRepository) InferName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load は元リグとクリップを読み込む。
func (r *AnimationRepository) Load(path string) (*Asset, error) {
	if strings.EqualFold(filepath.Ext(path), ".fbx") {
		return nil, merrors.NewIoFormatNotSupported("FBXは未対応です。glTF/GLBへ変換してください: %s", nil, path)
	}
	if !r.CanLoad(path) {
		return nil, merrors.NewIoExtInvalid(path, nil)
	}
	logGltfInfo("アニメーション読込開始: file=%s", filepath.Base(path))

	file, err := ReadFile(r.fs, path)
	if err != nil {
		return nil, err
	}
	name := r.InferName(path)
	sk, _, err := file.BuildSkeleton(name)
	if err != nil {
		return nil, err
	}
	clips, err := file.ReadClips()
	if err != nil {
		return nil, err
	}
	logGltfInfo("アニメーション読込完了: file=%s joints=%d clips=%d", filepath.Base(path), sk.Len(), len(clips))
	return &Asset{Name: name, Skeleton: sk, Clips: clips}, nil
}

// logGltfInfo はglTF読込のINFOログを出力する。
func logGltfInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logGltfDebug はglTF読込のデバッグログを出力する。
func logGltfDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// LoadAnimation は元スケルトンとクリップ一覧を読み込む。
func (r *AnimationRepository) LoadAnimation(path string) (*skeleton.Skeleton, []*model.SourceClip, error) {
	asset, err := r.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return asset.Skeleton, asset.Clips, nil
}
