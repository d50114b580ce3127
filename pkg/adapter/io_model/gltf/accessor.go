// 指示: miu200521358
package gltf

import (
	"encoding/binary"
	"math"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
)

// accessorReadPlan は検証済みのaccessor読み取り情報を表す。
type accessorReadPlan struct {
	accessor      Accessor
	data          []byte
	componentNum  int
	componentSize int
	stride        int
	baseOffset    int
}

// ReadAccessorFloats はaccessorを要素ごとのfloat配列として読み取る。
func (f *File) ReadAccessorFloats(accessorIndex int) ([][]float64, error) {
	plan, err := f.prepareAccessorRead(accessorIndex)
	if err != nil {
		return nil, err
	}
	values := make([][]float64, plan.accessor.Count)
	for i := 0; i < plan.accessor.Count; i++ {
		row := make([]float64, plan.componentNum)
		elementBase := plan.baseOffset + i*plan.stride
		for c := 0; c < plan.componentNum; c++ {
			value, err := readComponentAsFloat(plan.accessor, plan.data, elementBase+c*plan.componentSize)
			if err != nil {
				return nil, err
			}
			row[c] = value
		}
		values[i] = row
	}
	return values, nil
}

// ReadAccessorScalars はSCALAR accessorを1次元で読み取る。
func (f *File) ReadAccessorScalars(accessorIndex int) ([]float64, error) {
	rows, err := f.ReadAccessorFloats(accessorIndex)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != 1 {
			return nil, merrors.NewIoParseFailed("accessor[%d] はSCALARではありません", nil, accessorIndex)
		}
		values[i] = row[0]
	}
	return values, nil
}

func (f *File) prepareAccessorRead(accessorIndex int) (accessorReadPlan, error) {
	doc := f.Document
	if accessorIndex < 0 || accessorIndex >= len(doc.Accessors) {
		return accessorReadPlan{}, merrors.NewIoParseFailed("accessor index が不正です: %d", nil, accessorIndex)
	}
	accessor := doc.Accessors[accessorIndex]
	if accessor.BufferView == nil {
		return accessorReadPlan{}, merrors.NewIoFormatNotSupported("sparse accessor は未対応です", nil)
	}
	if accessor.Count < 0 {
		return accessorReadPlan{}, merrors.NewIoParseFailed("accessor.count が不正です: %d", nil, accessor.Count)
	}
	viewIndex := *accessor.BufferView
	if viewIndex < 0 || viewIndex >= len(doc.BufferViews) {
		return accessorReadPlan{}, merrors.NewIoParseFailed("bufferView index が不正です: %d", nil, viewIndex)
	}
	view := doc.BufferViews[viewIndex]
	if view.Buffer < 0 || view.Buffer >= len(f.Buffers) {
		return accessorReadPlan{}, merrors.NewIoParseFailed("bufferView.buffer が不正です: %d", nil, view.Buffer)
	}
	data := f.Buffers[view.Buffer]
	if view.ByteLength < 0 || view.ByteOffset < 0 || view.ByteOffset > len(data) || view.ByteLength > len(data)-view.ByteOffset {
		return accessorReadPlan{}, merrors.NewIoParseFailed("bufferView 範囲がバッファ外です", nil)
	}

	componentNum, err := accessorComponentNum(accessor.Type)
	if err != nil {
		return accessorReadPlan{}, err
	}
	componentSize, err := accessorComponentSize(accessor.ComponentType)
	if err != nil {
		return accessorReadPlan{}, err
	}
	elementSize := componentNum * componentSize
	stride := view.ByteStride
	if stride <= 0 {
		stride = elementSize
	}
	if stride < elementSize {
		return accessorReadPlan{}, merrors.NewIoParseFailed("bufferView.byteStride が要素サイズより小さいです", nil)
	}
	if accessor.ByteOffset < 0 || accessor.ByteOffset > view.ByteLength {
		return accessorReadPlan{}, merrors.NewIoParseFailed("accessor.byteOffset が不正です", nil)
	}
	baseOffset := view.ByteOffset + accessor.ByteOffset
	if accessor.Count > 0 {
		// 乗算せずに収まる要素数の上限と比べる。
		remaining := view.ByteLength - accessor.ByteOffset
		if remaining < elementSize || accessor.Count > (remaining-elementSize)/stride+1 {
			return accessorReadPlan{}, merrors.NewIoParseFailed("accessor 範囲がbufferViewを超えています: count=%d", nil, accessor.Count)
		}
	}
	return accessorReadPlan{
		accessor:      accessor,
		data:          data,
		componentNum:  componentNum,
		componentSize: componentSize,
		stride:        stride,
		baseOffset:    baseOffset,
	}, nil
}

// accessorComponentNum はaccessor.typeから要素次元数を返す。
func accessorComponentNum(typeName string) (int, error) {
	switch typeName {
	case "SCALAR":
		return 1, nil
	case "VEC2":
		return 2, nil
	case "VEC3":
		return 3, nil
	case "VEC4":
		return 4, nil
	default:
		return 0, merrors.NewIoFormatNotSupported("accessor.type が未対応です: %s", nil, typeName)
	}
}

// accessorComponentSize はcomponentTypeのバイト幅を返す。
func accessorComponentSize(componentType int) (int, error) {
	switch componentType {
	case componentTypeByte, componentTypeUnsignedByte:
		return 1, nil
	case componentTypeShort, componentTypeUnsignedShort:
		return 2, nil
	case componentTypeUnsignedInt, componentTypeFloat:
		return 4, nil
	default:
		return 0, merrors.NewIoFormatNotSupported("accessor.componentType が未対応です: %d", nil, componentType)
	}
}

// readComponentAsFloat はcomponentTypeをfloat64へ変換する。正規化整数は[-1,1]または[0,1]へ写す。
func readComponentAsFloat(accessor Accessor, data []byte, offset int) (float64, error) {
	switch accessor.ComponentType {
	case componentTypeByte:
		value := float64(int8(data[offset]))
		if accessor.Normalized {
			return math.Max(value/127.0, -1.0), nil
		}
		return value, nil
	case componentTypeUnsignedByte:
		value := float64(data[offset])
		if accessor.Normalized {
			return value / 255.0, nil
		}
		return value, nil
	case componentTypeShort:
		value := float64(int16(binary.LittleEndian.Uint16(data[offset : offset+2])))
		if accessor.Normalized {
			return math.Max(value/32767.0, -1.0), nil
		}
		return value, nil
	case componentTypeUnsignedShort:
		value := float64(binary.LittleEndian.Uint16(data[offset : offset+2]))
		if accessor.Normalized {
			return value / 65535.0, nil
		}
		return value, nil
	case componentTypeUnsignedInt:
		return float64(binary.LittleEndian.Uint32(data[offset : offset+4])), nil
	case componentTypeFloat:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data[offset : offset+4]))), nil
	default:
		return 0, merrors.NewIoFormatNotSupported("float componentType が未対応です: %d", nil, accessor.ComponentType)
	}
}
