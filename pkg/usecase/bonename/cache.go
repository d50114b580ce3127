// 指示: miu200521358
package bonename

import "sync"

// NameCache はリターゲット1回分の正規化結果を保持する。
// 別リグの処理へ移る前に Clear する。
type NameCache struct {
	normalizer *Normalizer
	mu         sync.Mutex
	entries    map[string]Result
}

// NewNameCache はNormalizerを包んだキャッシュを生成する。nilは既定規則とする。
func NewNameCache(normalizer *Normalizer) *NameCache {
	if normalizer == nil {
		normalizer = defaultNormalizer
	}
	return &NameCache{
		normalizer: normalizer,
		entries:    map[string]Result{},
	}
}

// Normalize はキャッシュ済みならその結果を、未計算なら正規化して保存した結果を返す。
func (c *NameCache) Normalize(rawName string) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if result, ok := c.entries[rawName]; ok {
		return result
	}
	result := c.normalizer.Normalize(rawName)
	c.entries[rawName] = result
	return result
}

// Len はキャッシュ件数を返す。
func (c *NameCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear はキャッシュを破棄する。
func (c *NameCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]Result{}
}
