package arena

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eratio08/skip-list/skiplist"
	"github.com/eratio08/skip-list/skiplist/analyTool"
)

// stubSource 依序回放固定的 [0,1) 數值，耗盡後回傳 1（不再升階）
type stubSource struct {
	values []float64
	idx    int
}

func (s *stubSource) Float64() float64 {
	if s.idx >= len(s.values) {
		return 1.0
	}
	v := s.values[s.idx]
	s.idx++
	return v
}

func TestInterfaces(t *testing.T) {
	var _ skiplist.SkipList = (*ArenaSkipList)(nil)
	var _ skiplist.Analyable = (*ArenaSkipList)(nil)
	var _ skiplist.Nodelike = nodeView{}
}

func TestNewConfigErrors(t *testing.T) {
	_, err := NewArenaSkipList(0, 42)
	require.Error(t, err)

	_, err = NewArenaSkipList(-5, 42)
	require.Error(t, err)

	_, err = NewWithSource(10, 0.0, skiplist.NewSeededSource(42))
	require.Error(t, err)

	_, err = NewWithSource(10, 1.0, skiplist.NewSeededSource(42))
	require.Error(t, err)

	_, err = NewWithSource(10, 0.5, nil)
	require.Error(t, err)
}

func TestMaxLevelDerivation(t *testing.T) {
	cases := []struct {
		size int
		p    float64
		want int
	}{
		{size: 1, p: 0.5, want: 1},  // log 1 = 0，收斂到下限 1
		{size: 3, p: 0.5, want: 1},  // log2(3) ≈ 1.58
		{size: 20, p: 0.5, want: 4}, // log2(20) ≈ 4.32
		{size: 1000, p: 0.5, want: 9},
		{size: 100, p: 0.25, want: 3}, // log4(100) ≈ 3.32
	}
	for _, c := range cases {
		sl, err := NewWithSource(c.size, c.p, skiplist.NewSeededSource(1))
		require.NoError(t, err)
		assert.Equal(t, c.want, sl.MaxLevel(), "size=%d p=%v", c.size, c.p)

		// active levels 初始即 maxLevel，head forward 全部指向 tail
		_, levels := sl.GetMaxStats()
		assert.Equal(t, c.want, levels)
		for _, fw := range sl.forward {
			assert.Equal(t, tailRef, fw)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	sl, err := NewArenaSkipList(100, 42)
	require.NoError(t, err)

	for i := int64(0); i < 50; i++ {
		sl.Put(i, skiplist.V(i)*1.5)
	}
	for i := int64(0); i < 50; i++ {
		v, ok := sl.Get(i)
		require.True(t, ok, "key %d", i)
		assert.Equal(t, skiplist.V(i)*1.5, v)
	}
	_, ok := sl.Get(50)
	assert.False(t, ok)
}

func TestUpsert(t *testing.T) {
	sl, err := NewArenaSkipList(10, 42)
	require.NoError(t, err)

	sl.Put(7, 1.0)
	sl.Put(7, 2.0)
	sl.Put(7, 2.0)

	v, ok := sl.Get(7)
	require.True(t, ok)
	assert.Equal(t, skiplist.V(2.0), v)

	nodes, _ := sl.GetMaxStats()
	assert.Equal(t, 1, nodes)
	// 覆寫不重建節點，arena 不成長
	assert.Len(t, sl.nodes, 1)
}

func TestDeleteRemoves(t *testing.T) {
	sl, err := NewArenaSkipList(10, 42)
	require.NoError(t, err)

	sl.Put(3, 30)
	v, ok := sl.Delete(3)
	require.True(t, ok)
	assert.Equal(t, skiplist.V(30), v)

	_, ok = sl.Get(3)
	assert.False(t, ok)
	nodes, _ := sl.GetMaxStats()
	assert.Equal(t, 0, nodes)
}

func TestDeleteAbsent(t *testing.T) {
	sl, err := NewArenaSkipList(10, 42)
	require.NoError(t, err)

	sl.Put(1, 10)
	sl.Put(2, 20)

	_, ok := sl.Delete(99)
	assert.False(t, ok)

	nodes, _ := sl.GetMaxStats()
	assert.Equal(t, 2, nodes)
	assert.True(t, analyTool.CheckStruct(sl))
}

// 混合情境：插入 0..19，搜尋與刪除存在與不存在的 key
func TestScenario(t *testing.T) {
	sl, err := NewArenaSkipList(20, 42)
	require.NoError(t, err)

	for i := int64(0); i < 20; i++ {
		sl.Put(i, skiplist.V(i*10+5))
	}

	_, ok := sl.Get(100)
	assert.False(t, ok)

	v, ok := sl.Get(0)
	require.True(t, ok)
	assert.Equal(t, skiplist.V(5), v)

	v, ok = sl.Delete(0)
	require.True(t, ok)
	assert.Equal(t, skiplist.V(5), v)

	_, ok = sl.Delete(21)
	assert.False(t, ok)

	_, ok = sl.Get(0)
	assert.False(t, ok)

	assert.True(t, analyTool.CheckStruct(sl))
}

func TestRandomLevelHeights(t *testing.T) {
	// 三次升階成功、一次失敗 → 高度 4
	src := &stubSource{values: []float64{0.1, 0.1, 0.1, 0.9}}
	sl, err := NewWithSource(1000, 0.5, src) // maxLevel 9
	require.NoError(t, err)

	sl.Put(1, 1)
	require.Len(t, sl.nodes, 1)
	assert.Len(t, sl.nodes[0].forward, 4)

	// 升階直到 maxLevel 上限
	src = &stubSource{values: []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}}
	sl, err = NewWithSource(1000, 0.5, src)
	require.NoError(t, err)

	sl.Put(1, 1)
	assert.Len(t, sl.nodes[0].forward, 9)
}

func TestLevelShrinkAndRegrow(t *testing.T) {
	src := &stubSource{values: []float64{
		0.9, // Put(1): 高度 1
		0.9, // Put(2): 高度 1
	}}
	sl, err := NewWithSource(1000, 0.5, src) // maxLevel 9，初始 active 9
	require.NoError(t, err)

	sl.Put(1, 1)
	sl.Put(2, 2)

	_, levels := sl.GetMaxStats()
	assert.Equal(t, 9, levels)

	// 第一次刪除後，頂端空層收掉，active 降為 1
	_, ok := sl.Delete(2)
	require.True(t, ok)
	_, levels = sl.GetMaxStats()
	assert.Equal(t, 1, levels)

	// 再插入一個高節點，active 由 1 長回 4
	sl.src = &stubSource{values: []float64{0.1, 0.1, 0.1, 0.9}}
	sl.Put(5, 5)
	_, levels = sl.GetMaxStats()
	assert.Equal(t, 4, levels)
	assert.True(t, analyTool.CheckStruct(sl))

	// 刪光所有節點，active 不會低於 1
	_, ok = sl.Delete(5)
	require.True(t, ok)
	_, ok = sl.Delete(1)
	require.True(t, ok)
	_, levels = sl.GetMaxStats()
	assert.Equal(t, 1, levels)
	nodes, _ := sl.GetMaxStats()
	assert.Equal(t, 0, nodes)
}

func TestFreedSlotReuse(t *testing.T) {
	sl, err := NewArenaSkipList(10, 42)
	require.NoError(t, err)

	sl.Put(1, 10)
	require.Len(t, sl.nodes, 1)

	_, ok := sl.Delete(1)
	require.True(t, ok)

	sl.Put(2, 20)
	// 回收的 slot 被重複使用，arena 不成長
	assert.Len(t, sl.nodes, 1)

	v, ok := sl.Get(2)
	require.True(t, ok)
	assert.Equal(t, skiplist.V(20), v)
}

func TestCorruptChainPanics(t *testing.T) {
	sl, err := NewArenaSkipList(10, 42)
	require.NoError(t, err)

	sl.Put(1, 10)
	sl.Put(2, 20)

	// 指向 arena 範圍外
	sl.forward[0] = 99
	require.Panics(t, func() { sl.Get(0) })

	sl, err = NewArenaSkipList(10, 42)
	require.NoError(t, err)
	sl.Put(1, 10)
	sl.Put(2, 20)
	_, ok := sl.Delete(2)
	require.True(t, ok)

	// 指向已回收的 slot
	idx := sl.forward[0]
	sl.nodes[idx].forward[0] = sl.freed[0]
	require.Panics(t, func() { sl.Get(3) })
}

func TestInvariantsUnderRandomOps(t *testing.T) {
	sl, err := NewArenaSkipList(500, 7)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	reference := map[skiplist.K]skiplist.V{}

	for i := 0; i < 5000; i++ {
		key := skiplist.K(rng.Intn(500))
		switch rng.Intn(3) {
		case 0, 1:
			val := skiplist.V(rng.Float64())
			sl.Put(key, val)
			reference[key] = val
		case 2:
			v, ok := sl.Delete(key)
			want, present := reference[key]
			require.Equal(t, present, ok, "delete key %d", key)
			if present {
				require.Equal(t, want, v)
				delete(reference, key)
			}
		}

		if i%500 == 0 {
			require.True(t, analyTool.CheckStruct(sl), "iteration %d", i)
		}
	}
	require.True(t, analyTool.CheckStruct(sl))

	nodes, _ := sl.GetMaxStats()
	require.Equal(t, len(reference), nodes)

	// level 0 是唯一且完整的全序鏈
	wantKeys := make([]skiplist.K, 0, len(reference))
	for k := range reference {
		wantKeys = append(wantKeys, k)
	}
	sort.Slice(wantKeys, func(i, j int) bool { return wantKeys[i] < wantKeys[j] })

	gotKeys := make([]skiplist.K, 0, len(reference))
	node := sl.GetHead().GetNextAt(0)
	for node != nil {
		gotKeys = append(gotKeys, node.GetKey())
		node = node.GetNextAt(0)
	}
	require.Equal(t, wantKeys, gotKeys)

	for _, k := range wantKeys {
		v, ok := sl.Get(k)
		require.True(t, ok)
		require.Equal(t, reference[k], v)
	}
}
