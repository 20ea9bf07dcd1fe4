package datastream

import (
	"math"
	"math/rand"

	"github.com/eratio08/skip-list/skiplist"
)

// UniformDataGenerator 產生符合平均分布的查詢序列，
// 每個索引出現機率皆相同。
type UniformDataGenerator struct {
	n   int
	rng *rand.Rand
}

func NewUniformDataGenerator(n int, seed int64) *UniformDataGenerator {
	return &UniformDataGenerator{
		n:   n,
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (u *UniformDataGenerator) Next() int {
	return u.rng.Intn(u.n)
}

// GenerateSequence 產生指定長度的查詢序列
func (u *UniformDataGenerator) GenerateSequence(seqLen int) []int {
	seq := make([]int, seqLen)
	for i := range seq {
		seq[i] = u.Next()
	}
	return seq
}

func (u *UniformDataGenerator) GetKeyMap() map[skiplist.K]float64 {
	result := make(map[skiplist.K]float64, u.n)
	for i := 0; i < u.n; i++ {
		result[skiplist.K(i)] = 1.0 / float64(u.n)
	}
	return result
}

func (u *UniformDataGenerator) Entropy() float64 {
	return math.Log2(float64(u.n))
}
