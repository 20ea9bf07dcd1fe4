package arena

import (
	"fmt"
	"math"

	"github.com/eratio08/skip-list/skiplist"
)

// DefaultProbability 是層高升階的預設機率 p
const DefaultProbability = 0.5

// ref 是節點在 arena 中的索引。
// 以索引取代指標，splice 時每層仍是 O(1) 改寫，但不會有指標圖的 aliasing 問題。
type ref int32

const (
	// tailRef 代表「指向 tail sentinel」，所有 chain 的終點
	tailRef ref = -1
	// headRef 僅出現在 update 陣列中，代表 head sentinel 是該層的前驅
	headRef ref = -2
)

type arenaNode struct {
	key     skiplist.K
	value   skiplist.V
	forward []ref // len(forward) 即節點高度，涵蓋 level 0..h-1
	live    bool
}

// ArenaSkipList 是以 arena 儲存節點的 skip list。
// head sentinel 的 forward pointers 由容器本身持有（forward 欄位），
// tail sentinel 只是 tailRef 這個索引值，不佔任何儲存空間。
type ArenaSkipList struct {
	nodes    []arenaNode
	freed    []ref
	forward  []ref // head 的 forward，len(forward) 即當前 active level 數
	maxLevel int
	prob     float64
	src      skiplist.Source
	size     int32
}

// NewArenaSkipList 以預設 p=0.5 與固定種子建立 skip list。
// expectedSize 是預期元素數量，決定 maxLevel = floor(log_{1/p}(expectedSize))。
func NewArenaSkipList(expectedSize int, seed int64) (*ArenaSkipList, error) {
	return NewWithSource(expectedSize, DefaultProbability, skiplist.NewSeededSource(seed))
}

// NewWithSource 指定升階機率與隨機來源建立 skip list
func NewWithSource(expectedSize int, p float64, src skiplist.Source) (*ArenaSkipList, error) {
	if expectedSize <= 0 {
		return nil, fmt.Errorf("arena: expectedSize must be positive, got %d", expectedSize)
	}
	if p <= 0 || p >= 1 {
		return nil, fmt.Errorf("arena: probability must be in (0,1), got %v", p)
	}
	if src == nil {
		return nil, fmt.Errorf("arena: nil random source")
	}

	maxLevel := int(math.Floor(math.Log(float64(expectedSize)) / math.Log(1/p)))
	if maxLevel < 1 {
		maxLevel = 1
	}

	forward := make([]ref, maxLevel)
	for i := range forward {
		forward[i] = tailRef
	}
	return &ArenaSkipList{
		forward:  forward,
		maxLevel: maxLevel,
		prob:     p,
		src:      src,
	}, nil
}

// node 取出 arena 中的節點，索引無效或指向已回收的 slot 即代表結構毀損
func (sl *ArenaSkipList) node(r ref) *arenaNode {
	if r < 0 || int(r) >= len(sl.nodes) {
		panic(fmt.Sprintf("arena: corrupt chain, ref %d out of range", r))
	}
	nd := &sl.nodes[r]
	if !nd.live {
		panic(fmt.Sprintf("arena: corrupt chain, ref %d addresses a freed node", r))
	}
	return nd
}

func (sl *ArenaSkipList) next(r ref, level int) ref {
	if r == headRef {
		return sl.forward[level]
	}
	return sl.node(r).forward[level]
}

func (sl *ArenaSkipList) setNext(r ref, level int, to ref) {
	if r == headRef {
		sl.forward[level] = to
		return
	}
	sl.node(r).forward[level] = to
}

// precedes 回報 r 的 key 是否嚴格小於 key。tail sentinel 不小於任何 key。
func (sl *ArenaSkipList) precedes(r ref, key skiplist.K) bool {
	if r == tailRef {
		return false
	}
	return sl.node(r).key < key
}

// descend 由最高 active level 往下搜尋 key 的插入點。
// update 不為 nil 時，記錄每一層最後停留的前驅。
func (sl *ArenaSkipList) descend(key skiplist.K, update []ref) ref {
	cur := headRef
	for level := len(sl.forward) - 1; level >= 0; level-- {
		for sl.precedes(sl.next(cur, level), key) {
			cur = sl.next(cur, level)
		}
		if update != nil {
			update[level] = cur
		}
	}
	return cur
}

func (sl *ArenaSkipList) newUpdate() []ref {
	update := make([]ref, len(sl.forward))
	for i := range update {
		update[i] = tailRef
	}
	return update
}

// randomLevel 以幾何分布抽出新節點高度，範圍 [1, maxLevel]
func (sl *ArenaSkipList) randomLevel() int {
	height := 1
	for height < sl.maxLevel && sl.src.Float64() < sl.prob {
		height++
	}
	return height
}

func (sl *ArenaSkipList) alloc(key skiplist.K, value skiplist.V, height int) ref {
	fw := make([]ref, height)
	for i := range fw {
		fw[i] = tailRef
	}
	nd := arenaNode{key: key, value: value, forward: fw, live: true}
	if n := len(sl.freed); n > 0 {
		r := sl.freed[n-1]
		sl.freed = sl.freed[:n-1]
		sl.nodes[r] = nd
		return r
	}
	sl.nodes = append(sl.nodes, nd)
	return ref(len(sl.nodes) - 1)
}

func (sl *ArenaSkipList) release(r ref) {
	nd := sl.node(r)
	nd.forward = nil
	nd.live = false
	sl.freed = append(sl.freed, r)
}

// Get 取得 key 對應的 value
func (sl *ArenaSkipList) Get(key skiplist.K) (skiplist.V, bool) {
	cur := sl.descend(key, nil)
	cand := sl.next(cur, 0)
	if cand != tailRef && sl.node(cand).key == key {
		return sl.node(cand).value, true
	}
	return 0, false
}

// Contains 判斷 key 是否存在
func (sl *ArenaSkipList) Contains(key skiplist.K) bool {
	_, found := sl.Get(key)
	return found
}

// Put 插入或更新 key 對應的 value。
// 既有 key 只改寫 value，節點高度與 arena 位置不變。
func (sl *ArenaSkipList) Put(key skiplist.K, value skiplist.V) {
	update := sl.newUpdate()
	cur := sl.descend(key, update)

	cand := sl.next(cur, 0)
	if cand != tailRef && sl.node(cand).key == key {
		sl.node(cand).value = value
		return
	}

	height := sl.randomLevel()
	if height > len(sl.forward) {
		// 新增的層以 head 為前驅，head 的 forward 先補上 tail
		for level := len(sl.forward); level < height; level++ {
			update = append(update, headRef)
			sl.forward = append(sl.forward, tailRef)
		}
	}

	nd := sl.alloc(key, value, height)
	for level := 0; level < height; level++ {
		sl.node(nd).forward[level] = sl.next(update[level], level)
		sl.setNext(update[level], level, nd)
	}
	sl.size++
}

// Delete 刪除 key，回傳被刪除的 value。
// 節點高度自 level 0 起連續，一旦某層的前驅不再指向該節點即可停止。
func (sl *ArenaSkipList) Delete(key skiplist.K) (skiplist.V, bool) {
	update := sl.newUpdate()
	cur := sl.descend(key, update)

	cand := sl.next(cur, 0)
	if cand == tailRef || sl.node(cand).key != key {
		return 0, false
	}

	for level := 0; level < len(sl.forward); level++ {
		if sl.next(update[level], level) != cand {
			break
		}
		sl.setNext(update[level], level, sl.node(cand).forward[level])
	}

	// 收掉頂端變空的層，至少保留一層
	for len(sl.forward) > 1 && sl.forward[len(sl.forward)-1] == tailRef {
		sl.forward = sl.forward[:len(sl.forward)-1]
	}

	value := sl.node(cand).value
	sl.release(cand)
	sl.size--
	return value, true
}

// MaxLevel 回傳建構時由 expectedSize 推得的層數上限
func (sl *ArenaSkipList) MaxLevel() int {
	return sl.maxLevel
}

func (sl *ArenaSkipList) GetMaxStats() (int, int) {
	return int(sl.size), len(sl.forward)
}

func (sl *ArenaSkipList) GetHead() skiplist.Nodelike {
	return nodeView{sl: sl, r: headRef}
}

// nodeView 以 Nodelike 視圖暴露 arena 節點，僅供診斷與分析工具走訪
type nodeView struct {
	sl *ArenaSkipList
	r  ref
}

func (v nodeView) GetKey() skiplist.K {
	if v.r == headRef {
		return skiplist.HeadKey
	}
	return v.sl.node(v.r).key
}

func (v nodeView) GetValue() skiplist.V {
	if v.r == headRef {
		return 0
	}
	return v.sl.node(v.r).value
}

func (v nodeView) GetLevel() int32 {
	if v.r == headRef {
		return int32(len(v.sl.forward) - 1)
	}
	return int32(len(v.sl.node(v.r).forward) - 1)
}

func (v nodeView) GetNextAt(level int32) skiplist.Nodelike {
	if level < 0 {
		return nil
	}
	var nx ref
	if v.r == headRef {
		if int(level) >= len(v.sl.forward) {
			return nil
		}
		nx = v.sl.forward[level]
	} else {
		nd := v.sl.node(v.r)
		if int(level) >= len(nd.forward) {
			return nil
		}
		nx = nd.forward[level]
	}
	if nx == tailRef {
		return nil
	}
	return nodeView{sl: v.sl, r: nx}
}
