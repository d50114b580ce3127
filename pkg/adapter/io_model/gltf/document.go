// 指示: miu200521358
// Package gltf はglTF/GLBからスケルトンとアニメーションクリップを読み込む。
package gltf

import "encoding/json"

// Document はglTFトップレベル要素のうちリターゲットに必要なものを表す。
type Document struct {
	Asset          AssetInfo                  `json:"asset"`
	Buffers        []Buffer                   `json:"buffers"`
	BufferViews    []BufferView               `json:"bufferViews"`
	Accessors      []Accessor                 `json:"accessors"`
	Animations     []Animation                `json:"animations"`
	Nodes          []Node                     `json:"nodes"`
	Scenes         []Scene                    `json:"scenes"`
	Scene          int                        `json:"scene"`
	ExtensionsUsed []string                   `json:"extensionsUsed"`
	Extensions     map[string]json.RawMessage `json:"extensions"`
}

// AssetInfo はglTF asset要素を表す。
type AssetInfo struct {
	Version   string `json:"version"`
	Generator string `json:"generator"`
}

// Scene はglTF scene要素を表す。
type Scene struct {
	Nodes []int `json:"nodes"`
}

// Node はglTF node要素を表す。
type Node struct {
	Name        string    `json:"name"`
	Children    []int     `json:"children"`
	Matrix      []float64 `json:"matrix"`
	Translation []float64 `json:"translation"`
	Rotation    []float64 `json:"rotation"`
	Scale       []float64 `json:"scale"`
}

// Buffer はglTF buffer要素を表す。
type Buffer struct {
	URI        string `json:"uri"`
	ByteLength int    `json:"byteLength"`
}

// BufferView はglTF bufferView要素を表す。
type BufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride"`
}

// Accessor はglTF accessor要素を表す。
type Accessor struct {
	BufferView    *int   `json:"bufferView"`
	ByteOffset    int    `json:"byteOffset"`
	ComponentType int    `json:"componentType"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
	Normalized    bool   `json:"normalized"`
}

// Animation はglTF animation要素を表す。
type Animation struct {
	Name     string             `json:"name"`
	Channels []AnimationChannel `json:"channels"`
	Samplers []AnimationSampler `json:"samplers"`
}

// AnimationChannel はglTF animation.channel要素を表す。
type AnimationChannel struct {
	Sampler int           `json:"sampler"`
	Target  ChannelTarget `json:"target"`
}

// ChannelTarget はglTF animation.channel.target要素を表す。
type ChannelTarget struct {
	Node *int   `json:"node"`
	Path string `json:"path"`
}

// AnimationSampler はglTF animation.sampler要素を表す。
type AnimationSampler struct {
	Input         int    `json:"input"`
	Output        int    `json:"output"`
	Interpolation string `json:"interpolation"`
}

// componentType値。
const (
	componentTypeByte          = 5120
	componentTypeUnsignedByte  = 5121
	componentTypeShort         = 5122
	componentTypeUnsignedShort = 5123
	componentTypeUnsignedInt   = 5125
	componentTypeFloat         = 5126
)

// 補間方式。
const (
	INTERPOLATION_LINEAR      = "LINEAR"
	INTERPOLATION_STEP        = "STEP"
	INTERPOLATION_CUBICSPLINE = "CUBICSPLINE"
)
