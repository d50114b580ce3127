// 指示: miu200521358
// Package skeleton は関節ツリーとヒューマノイド出力先を提供する。
package skeleton

import (
	"strings"

	"github.com/google/uuid"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
)

// JointHandle はスケルトン内の関節参照を表す。
type JointHandle int

// InvalidJoint は未解決の関節参照を表す。
const InvalidJoint JointHandle = -1

// Joint は関節を表す。
type Joint struct {
	Handle   JointHandle
	Name     string
	Parent   JointHandle
	Children []JointHandle
	Rest     mmath.Transform
}

// IsRoot は親を持たない関節か判定する。
func (j *Joint) IsRoot() bool {
	return j.Parent == InvalidJoint
}

// Skeleton は関節ツリーを表す。関節は親から順に追加する。
type Skeleton struct {
	ID        uuid.UUID
	Name      string
	joints    []*Joint
	byName    map[string]JointHandle
	restWorld []mmath.Transform
}

// NewSkeleton は空のスケルトンを生成する。
func NewSkeleton(name string) *Skeleton {
	return &Skeleton{
		ID:     uuid.New(),
		Name:   name,
		byName: map[string]JointHandle{},
	}
}

// AddJoint は関節を追加する。親は追加済みである必要がある。
func (s *Skeleton) AddJoint(name string, parent JointHandle, rest mmath.Transform) (JointHandle, error) {
	if parent != InvalidJoint && (parent < 0 || int(parent) >= len(s.joints)) {
		return InvalidJoint, merrors.NewSkeletonInvalid("親関節が未登録です: joint=%s parent=%d", name, parent)
	}
	handle := JointHandle(len(s.joints))
	joint := &Joint{
		Handle: handle,
		Name:   name,
		Parent: parent,
		Rest:   rest,
	}
	s.joints = append(s.joints, joint)
	if _, exists := s.byName[name]; !exists {
		s.byName[name] = handle
	}

	world := rest
	if parent != InvalidJoint {
		s.joints[parent].Children = append(s.joints[parent].Children, handle)
		world = s.restWorld[parent].Muled(rest)
	}
	s.restWorld = append(s.restWorld, world)
	return handle, nil
}

// Len は関節数を返す。
func (s *Skeleton) Len() int {
	return len(s.joints)
}

// Joint は参照から関節を返す。
func (s *Skeleton) Joint(handle JointHandle) (*Joint, bool) {
	if handle < 0 || int(handle) >= len(s.joints) {
		return nil, false
	}
	return s.joints[handle], true
}

// Joints は全関節を追加順で返す。
func (s *Skeleton) Joints() []*Joint {
	return append([]*Joint(nil), s.joints...)
}

// FindByName は名前から関節を返す。同名は先に追加した関節を優先する。
func (s *Skeleton) FindByName(name string) (*Joint, bool) {
	handle, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.joints[handle], true
}

// FindByNameSuffix は名前空間区切り以降の名前で関節を探す。
func (s *Skeleton) FindByNameSuffix(name string) (*Joint, bool) {
	if joint, ok := s.FindByName(name); ok {
		return joint, true
	}
	for _, joint := range s.joints {
		if idx := strings.LastIndexAny(joint.Name, "|:"); idx >= 0 && joint.Name[idx+1:] == name {
			return joint, true
		}
	}
	return nil, false
}

// Root は最初に追加されたルート関節を返す。
func (s *Skeleton) Root() (*Joint, bool) {
	for _, joint := range s.joints {
		if joint.IsRoot() {
			return joint, true
		}
	}
	return nil, false
}

// RestWorldTransform は関節のレスト姿勢ワールド変換を返す。
func (s *Skeleton) RestWorldTransform(handle JointHandle) mmath.Transform {
	if handle < 0 || int(handle) >= len(s.restWorld) {
		return mmath.NewTransform()
	}
	return s.restWorld[handle]
}

// ParentRestWorldRotation は親関節のレスト姿勢ワールド回転を返す。ルートは単位回転。
func (s *Skeleton) ParentRestWorldRotation(handle JointHandle) mmath.Quaternion {
	joint, ok := s.Joint(handle)
	if !ok || joint.IsRoot() {
		return mmath.NewQuaternion()
	}
	return s.restWorld[joint.Parent].Rotation
}
