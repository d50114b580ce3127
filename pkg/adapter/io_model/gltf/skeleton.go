// 指示: miu200521358
package gltf

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/skeleton"
)

// BuildSkeleton はnode階層からスケルトンを構築し、node番号から関節参照への対応を返す。
// ルートが複数ある場合は子孫の多いルートを先に追加する。
func (f *File) BuildSkeleton(name string) (*skeleton.Skeleton, []skeleton.JointHandle, error) {
	nodes := f.Document.Nodes
	parents, err := buildNodeParentIndexes(nodes)
	if err != nil {
		return nil, nil, err
	}

	roots := make([]int, 0)
	for i, parent := range parents {
		if parent < 0 {
			roots = append(roots, i)
		}
	}
	sizes := make(map[int]int, len(roots))
	for _, root := range roots {
		sizes[root] = countSubtree(nodes, root, len(nodes))
	}
	sort.SliceStable(roots, func(i, j int) bool { return sizes[roots[i]] > sizes[roots[j]] })

	sk := skeleton.NewSkeleton(name)
	handles := make([]skeleton.JointHandle, len(nodes))
	for i := range handles {
		handles[i] = skeleton.InvalidJoint
	}
	var visit func(index int, parent skeleton.JointHandle) error
	visit = func(index int, parent skeleton.JointHandle) error {
		rest, err := nodeLocalTransform(nodes[index])
		if err != nil {
			return err
		}
		handle, err := sk.AddJoint(resolveNodeName(index, nodes[index].Name), parent, rest)
		if err != nil {
			return err
		}
		handles[index] = handle
		for _, child := range nodes[index].Children {
			if parents[child] != index {
				continue
			}
			if err := visit(child, handle); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range roots {
		if err := visit(root, skeleton.InvalidJoint); err != nil {
			return nil, nil, err
		}
	}
	for i, handle := range handles {
		if handle == skeleton.InvalidJoint {
			return nil, nil, merrors.NewIoParseFailed("node親子関係に循環があります: %d", nil, i)
		}
	}
	return sk, handles, nil
}

// buildNodeParentIndexes はnode配列から親インデックス配列を生成する。
func buildNodeParentIndexes(nodes []Node) ([]int, error) {
	parentIndexes := make([]int, len(nodes))
	for i := range parentIndexes {
		parentIndexes[i] = -1
	}
	for parentIndex, node := range nodes {
		for _, childIndex := range node.Children {
			if childIndex < 0 || childIndex >= len(nodes) {
				return nil, merrors.NewIoParseFailed("node.children のindexが不正です: %d", nil, childIndex)
			}
			if childIndex == parentIndex {
				return nil, merrors.NewIoParseFailed("node親子関係に循環があります: %d", nil, childIndex)
			}
			if parentIndexes[childIndex] == -1 {
				parentIndexes[childIndex] = parentIndex
			}
		}
	}
	return parentIndexes, nil
}

// countSubtree はnode以下の数を返す。limitを超える探索は打ち切る。
func countSubtree(nodes []Node, index int, limit int) int {
	count := 0
	stack := []int{index}
	for len(stack) > 0 && count <= limit {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, nodes[current].Children...)
	}
	return count
}

// resolveNodeName はnode名を返す。空の場合は番号から生成する。
func resolveNodeName(index int, name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed != "" {
		return trimmed
	}
	return fmt.Sprintf("node_%03d", index)
}

// nodeLocalTransform はnodeのローカル変換を返す。スケールは捨てる。
func nodeLocalTransform(node Node) (mmath.Transform, error) {
	if len(node.Matrix) > 0 {
		return matrixTransform(node.Matrix)
	}
	translation, err := parseVec3(node.Translation, "node.translation")
	if err != nil {
		return mmath.Transform{}, err
	}
	rotation, err := parseQuaternion(node.Rotation)
	if err != nil {
		return mmath.Transform{}, err
	}
	return mmath.Transform{Rotation: rotation, Translation: translation}, nil
}

// matrixTransform は列優先の4x4行列を回転と移動へ分解する。
func matrixTransform(values []float64) (mmath.Transform, error) {
	if len(values) != 16 {
		return mmath.Transform{}, merrors.NewIoParseFailed("node.matrix の要素数が不正です: %d", nil, len(values))
	}
	var m mgl64.Mat4
	copy(m[:], values)
	for col := 0; col < 3; col++ {
		length := math.Sqrt(m[col*4]*m[col*4] + m[col*4+1]*m[col*4+1] + m[col*4+2]*m[col*4+2])
		if length <= 1e-12 {
			return mmath.Transform{}, merrors.NewIoParseFailed("node.matrix が退化しています", nil)
		}
		for row := 0; row < 3; row++ {
			m[col*4+row] /= length
		}
	}
	q := mgl64.Mat4ToQuat(m).Normalize()
	return mmath.Transform{
		Rotation:    mmath.NewQuaternionByValues(q.V[0], q.V[1], q.V[2], q.W),
		Translation: mmath.NewVec3(values[12], values[13], values[14]),
	}, nil
}

// parseVec3 はスライスをVec3へ変換する。空はゼロベクトル。
func parseVec3(values []float64, label string) (mmath.Vec3, error) {
	if len(values) == 0 {
		return mmath.ZERO_VEC3, nil
	}
	if len(values) != 3 {
		return mmath.ZERO_VEC3, merrors.NewIoParseFailed("%s の要素数が不正です: %d", nil, label, len(values))
	}
	return mmath.NewVec3(values[0], values[1], values[2]), nil
}

// parseQuaternion はスライスをQuaternionへ変換する。空は単位回転。
func parseQuaternion(values []float64) (mmath.Quaternion, error) {
	if len(values) == 0 {
		return mmath.NewQuaternion(), nil
	}
	if len(values) != 4 {
		return mmath.NewQuaternion(), merrors.NewIoParseFailed("node.rotation の要素数が不正です: %d", nil, len(values))
	}
	return mmath.NewQuaternionByValues(values[0], values[1], values[2], values[3]).Normalized(), nil
}
