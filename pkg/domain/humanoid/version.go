// 指示: miu200521358
package humanoid

// Version はVRMヒューマノイドの規約バージョンを表す。
type Version string

const (
	// VERSION_VRM0 はVRM 0.x を表す。回転のx,z成分が反転する。
	VERSION_VRM0 Version = "0.0"
	// VERSION_VRM1 はVRM 1.0 を表す。
	VERSION_VRM1 Version = "1.0"
)

// IsLegacy は旧規約か判定する。
func (v Version) IsLegacy() bool {
	return v == VERSION_VRM0
}
