// 指示: miu200521358
package mmath

// Transform は回転と移動の組を表す。スケールは扱わない。
type Transform struct {
	Rotation    Quaternion
	Translation Vec3
}

// NewTransform は恒等変換を生成する。
func NewTransform() Transform {
	return Transform{Rotation: NewQuaternion(), Translation: ZERO_VEC3}
}

// Muled は親変換 t に子のローカル変換 local を合成した結果を返す。
func (t Transform) Muled(local Transform) Transform {
	return Transform{
		Rotation:    t.Rotation.Muled(local.Rotation).Normalized(),
		Translation: t.Translation.Added(t.Rotation.Rotated(local.Translation)),
	}
}
