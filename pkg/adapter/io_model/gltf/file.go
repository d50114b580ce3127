// 指示: miu200521358
package gltf

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_vrm_retarget/pkg/domain/model/merrors"
	"github.com/spf13/afero"
)

const (
	glbHeaderLength   = 12
	glbChunkHeadSize  = 8
	glbMagic          = 0x46546C67
	glbJSONChunkType  = 0x4E4F534A
	glbBINChunkType   = 0x004E4942
	glbMinValidLength = glbHeaderLength + glbChunkHeadSize
)

// File は解析済みglTF文書と解決済みバッファを表す。
type File struct {
	Path     string
	Document *Document
	Buffers  [][]byte
}

// ReadFile はglTF/GLB/VRMファイルを読み込み、バッファを解決する。
func ReadFile(fsys afero.Fs, path string) (*File, error) {
	b, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, merrors.NewIoFileNotFound(path, err)
		}
		return nil, merrors.NewIoParseFailed("ファイルの読み取りに失敗しました: %s", err, path)
	}
	return Decode(fsys, path, b)
}

// Decode はバイト列を解析する。GLBマジックで始まる場合はGLB、それ以外はJSONとして扱う。
// 外部URIのバッファはpathからの相対位置で解決する。
func Decode(fsys afero.Fs, path string, b []byte) (*File, error) {
	var jsonChunk, binChunk []byte
	if isGLB(b) {
		var err error
		jsonChunk, binChunk, err = parseGLBChunks(b)
		if err != nil {
			return nil, err
		}
	} else {
		jsonChunk = b
	}

	doc := &Document{}
	if err := json.Unmarshal(jsonChunk, doc); err != nil {
		return nil, merrors.NewIoParseFailed("glTF JSONの解析に失敗しました", err)
	}
	buffers, err := resolveBuffers(fsys, path, doc, binChunk)
	if err != nil {
		return nil, err
	}
	return &File{Path: path, Document: doc, Buffers: buffers}, nil
}

func isGLB(b []byte) bool {
	return len(b) >= 4 && binary.LittleEndian.Uint32(b[0:4]) == glbMagic
}

// parseGLBChunks はGLBバイト列からJSON/BINチャンクを抽出する。
func parseGLBChunks(b []byte) ([]byte, []byte, error) {
	if len(b) < glbMinValidLength {
		return nil, nil, merrors.NewIoParseFailed("GLBヘッダが不足しています", nil)
	}
	if version := binary.LittleEndian.Uint32(b[4:8]); version != 2 {
		return nil, nil, merrors.NewIoFormatNotSupported("GLBバージョンが未対応です: %d", nil, version)
	}
	totalLength := int(binary.LittleEndian.Uint32(b[8:12]))
	if totalLength <= 0 || totalLength > len(b) {
		return nil, nil, merrors.NewIoParseFailed("GLB全体長が不正です", nil)
	}

	var jsonChunk, binChunk []byte
	offset := glbHeaderLength
	for offset+glbChunkHeadSize <= totalLength {
		chunkLength := int(binary.LittleEndian.Uint32(b[offset : offset+4]))
		chunkType := binary.LittleEndian.Uint32(b[offset+4 : offset+8])
		chunkStart := offset + glbChunkHeadSize
		chunkEnd := chunkStart + chunkLength
		if chunkLength < 0 || chunkEnd > totalLength {
			return nil, nil, merrors.NewIoParseFailed("GLBチャンク長が不正です", nil)
		}
		switch chunkType {
		case glbJSONChunkType:
			jsonChunk = b[chunkStart:chunkEnd]
		case glbBINChunkType:
			if binChunk == nil {
				binChunk = b[chunkStart:chunkEnd]
			}
		}
		offset = chunkEnd
	}
	if len(jsonChunk) == 0 {
		return nil, nil, merrors.NewIoParseFailed("GLB JSONチャンクが見つかりません", nil)
	}
	return jsonChunk, binChunk, nil
}

// resolveBuffers はbuffers要素をバイト列へ解決する。URI無しの先頭バッファはBINチャンクを使う。
func resolveBuffers(fsys afero.Fs, path string, doc *Document, binChunk []byte) ([][]byte, error) {
	buffers := make([][]byte, len(doc.Buffers))
	for i, buffer := range doc.Buffers {
		var data []byte
		switch {
		case buffer.URI == "":
			if i != 0 || binChunk == nil {
				return nil, merrors.NewIoParseFailed("buffer[%d] のデータがありません", nil, i)
			}
			data = binChunk
		case strings.HasPrefix(buffer.URI, "data:"):
			decoded, err := decodeDataURI(buffer.URI)
			if err != nil {
				return nil, merrors.NewIoParseFailed("buffer[%d] のdata URIを解析できません", err, i)
			}
			data = decoded
		default:
			external, err := readExternalBuffer(fsys, path, buffer.URI)
			if err != nil {
				return nil, err
			}
			data = external
		}
		if len(data) < buffer.ByteLength {
			return nil, merrors.NewIoParseFailed("buffer[%d] の長さが不足しています: got=%d want=%d", nil, i, len(data), buffer.ByteLength)
		}
		buffers[i] = data
	}
	return buffers, nil
}

// decodeDataURI はbase64のdata URIを復号する。
func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, errors.New("data URIに区切りがありません")
	}
	header := uri[:comma]
	if !strings.HasSuffix(header, ";base64") {
		return nil, errors.New("base64以外のdata URIは未対応です")
	}
	return base64.StdEncoding.DecodeString(uri[comma+1:])
}

func readExternalBuffer(fsys afero.Fs, path string, uri string) ([]byte, error) {
	name, err := url.PathUnescape(uri)
	if err != nil {
		return nil, merrors.NewIoParseFailed("buffer URIが不正です: %s", err, uri)
	}
	bufferPath := filepath.Join(filepath.Dir(path), filepath.FromSlash(name))
	data, err := afero.ReadFile(fsys, bufferPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, merrors.NewIoFileNotFound(bufferPath, err)
		}
		return nil, merrors.NewIoParseFailed("外部バッファの読み取りに失敗しました: %s", err, bufferPath)
	}
	return data, nil
}
