package skiplist

import "math/rand"

// Source 提供 [0,1) 的均勻隨機數，level generator 每次升階判定消耗一筆。
// 注入而非使用全域亂數，讓層高分配可播種、可重現。
type Source interface {
	Float64() float64
}

// NewSeededSource 以固定種子建立 Source
func NewSeededSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}
