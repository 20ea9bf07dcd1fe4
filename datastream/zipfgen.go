package datastream

import (
	"math"
	"math/rand"
	"sort"

	"github.com/eratio08/skip-list/skiplist"
)

// ZipfDataGenerator 產生符合 Zipf 分布的查詢序列。
// weight(i) = 1 / (i+b)^a，經正規化後隨機打散 key 與權重的對應。
type ZipfDataGenerator struct {
	n       int
	a, b    float64
	weights []float64
	cdf     []float64
	rng     *rand.Rand
}

func NewZipfDataGenerator(n int, a, b float64, seed int64) *ZipfDataGenerator {
	rng := rand.New(rand.NewSource(seed))

	weights := make([]float64, n)
	var sum float64
	for i := 1; i <= n; i++ {
		weights[i-1] = 1.0 / math.Pow(float64(i)+b, a)
		sum += weights[i-1]
	}
	for i := range weights {
		weights[i] /= sum
	}
	// 打散 rank 與 key 的對應，避免 key 順序即頻率順序
	rng.Shuffle(len(weights), func(i, j int) {
		weights[i], weights[j] = weights[j], weights[i]
	})

	cdf := make([]float64, n)
	acc := 0.0
	for i, w := range weights {
		acc += w
		cdf[i] = acc
	}

	return &ZipfDataGenerator{
		n:       n,
		a:       a,
		b:       b,
		weights: weights,
		cdf:     cdf,
		rng:     rng,
	}
}

func (z *ZipfDataGenerator) Next() int {
	r := z.rng.Float64()
	idx := sort.SearchFloat64s(z.cdf, r)
	if idx >= z.n {
		idx = z.n - 1
	}
	return idx
}

// GenerateSequence 產生指定長度的查詢序列
func (z *ZipfDataGenerator) GenerateSequence(seqLen int) []int {
	seq := make([]int, seqLen)
	for i := range seq {
		seq[i] = z.Next()
	}
	return seq
}

func (z *ZipfDataGenerator) GetKeyMap() map[skiplist.K]float64 {
	result := make(map[skiplist.K]float64, z.n)
	for i := 0; i < z.n; i++ {
		result[skiplist.K(i)] = z.weights[i]
	}
	return result
}

func (z *ZipfDataGenerator) Entropy() float64 {
	h := 0.0
	for _, p := range z.weights {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}
