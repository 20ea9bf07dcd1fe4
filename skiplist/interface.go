package skiplist

import "math"

type K = int64
type V = float64

// 保留的 sentinel key，僅供診斷用的 Nodelike 視圖回報，
// 不可作為一般元素的 key 使用。
const (
	HeadKey K = math.MinInt64
	TailKey K = math.MaxInt64
)

type SkipList interface {
	Contains(key K) bool
	Get(key K) (V, bool)
	Put(key K, value V)
	Delete(key K) (V, bool)
	GetHead() Nodelike
}

// Analyable 提供分析功能的介面
type Analyable interface {
	SkipList
	// GetMaxStats 獲取節點數和最高層級
	GetMaxStats() (maxNodes int, maxLevel int)
}

type Nodelike interface {
	GetKey() K
	GetValue() V
	GetLevel() int32
	GetNextAt(level int32) Nodelike
}
