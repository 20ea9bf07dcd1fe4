package analyTool

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/eratio08/skip-list/skiplist"
)

// walkLevel 回傳某一層自 head 之後的所有節點
func walkLevel(sl skiplist.Analyable, level int) []skiplist.Nodelike {
	var out []skiplist.Nodelike
	node := sl.GetHead().GetNextAt(int32(level))
	for node != nil {
		out = append(out, node)
		node = node.GetNextAt(int32(level))
	}
	return out
}

// LevelValues 回傳每個 active level 由 head 到 tail 的 value 序列，
// index 0 是 level 0（完整鏈）。僅供診斷，不是穩定介面。
func LevelValues(sl skiplist.Analyable) [][]skiplist.V {
	_, levels := sl.GetMaxStats()
	out := make([][]skiplist.V, levels)
	for level := 0; level < levels; level++ {
		row := []skiplist.V{}
		for _, node := range walkLevel(sl, level) {
			row = append(row, node.GetValue())
		}
		out[level] = row
	}
	return out
}

// FprintSkipList 以表格列印 skip list 的層級結構，最高層在最上面。
// 欄位對齊 level 0 的節點，節點未達該層的欄位留白。
func FprintSkipList(w io.Writer, sl skiplist.Analyable) {
	_, levels := sl.GetMaxStats()
	base := walkLevel(sl, 0)

	header := make([]string, 0, len(base)+1)
	header = append(header, "Level")
	for _, node := range base {
		header = append(header, fmt.Sprintf("%d", node.GetKey()))
	}

	rows := make([][]string, 0, levels)
	for level := levels - 1; level >= 0; level-- {
		row := make([]string, 0, len(base)+1)
		row = append(row, fmt.Sprintf("L%d", level))
		for _, node := range base {
			if int(node.GetLevel()) >= level {
				row = append(row, fmt.Sprintf("%g", node.GetValue()))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

// PrintSkipList 列印 skip list 的結構到 stdout
func PrintSkipList(sl skiplist.Analyable) {
	FprintSkipList(os.Stdout, sl)
}

// CheckStruct 檢查 skip list 的結構是否正確：
// 每一層的 key 嚴格遞增（order invariant），
// 且 level i 的 key 集合是 level i-1 的子集（subset invariant）。
func CheckStruct(sl skiplist.Analyable) bool {
	_, levels := sl.GetMaxStats()

	keysAt := make([]map[skiplist.K]bool, levels)
	for level := 0; level < levels; level++ {
		keysAt[level] = map[skiplist.K]bool{}
		prev := skiplist.HeadKey
		for _, node := range walkLevel(sl, level) {
			key := node.GetKey()
			if key <= prev {
				fmt.Printf("level %d 順序錯誤: %d 接在 %d 之後\n", level, key, prev)
				return false
			}
			if int(node.GetLevel()) < level {
				fmt.Printf("level %d 出現高度不足的節點: key=%d level=%d\n", level, key, node.GetLevel())
				return false
			}
			keysAt[level][key] = true
			prev = key
		}
	}

	for level := 1; level < levels; level++ {
		for key := range keysAt[level] {
			if !keysAt[level-1][key] {
				fmt.Printf("subset 錯誤: key %d 在 level %d 但不在 level %d\n", key, level, level-1)
				return false
			}
		}
	}
	return true
}

// CountLevel 計算每一層的節點數量
func CountLevel(sl skiplist.Analyable) []int {
	_, levels := sl.GetMaxStats()
	counts := make([]int, levels)
	for _, node := range walkLevel(sl, 0) {
		top := int(node.GetLevel())
		for level := 0; level <= top && level < levels; level++ {
			counts[level]++
		}
	}
	return counts
}

// FindStep 計算搜尋指定 key 的總步數（水平前進與下降各算一步）
func FindStep(sl skiplist.Analyable, key skiplist.K) int {
	head := sl.GetHead()
	_, levels := sl.GetMaxStats()

	steps := 0
	cur := head
	for level := levels - 1; level >= 0; level-- {
		for {
			next := cur.GetNextAt(int32(level))
			if next == nil || next.GetKey() >= key {
				break
			}
			cur = next
			steps++
		}
		if next := cur.GetNextAt(int32(level)); next != nil && next.GetKey() == key {
			return steps + 1
		}
		if level > 0 {
			steps++ // 下降
		}
	}
	return steps
}
