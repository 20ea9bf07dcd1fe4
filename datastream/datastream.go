package datastream

import "github.com/eratio08/skip-list/skiplist"

// Generator 產生 key 的抽樣序列，供 workload 建構使用
type Generator interface {
	// Next 產生一筆查詢 (回傳索引 0~n-1)
	Next() int
	// GetKeyMap 回傳每個 key 的機率分布
	GetKeyMap() map[skiplist.K]float64
	// Entropy 回傳分布的熵 (bits)
	Entropy() float64
}

// OperationType 表示操作種類
type OperationType uint8

const (
	OpQuery OperationType = iota
	OpInsert
	OpDelete
)

func (t OperationType) String() string {
	switch t {
	case OpQuery:
		return "Query"
	case OpInsert:
		return "Insert"
	case OpDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// Operation 表示一筆操作
type Operation struct {
	Type OperationType
	Key  skiplist.K
}

// SequenceModel 以既有的 Operation 序列提供順序重播
type SequenceModel struct {
	ops []Operation
	pos int
}

// NewSequenceModelFromOps 由外部供給的操作序列建立模型
func NewSequenceModelFromOps(ops []Operation) *SequenceModel {
	cp := make([]Operation, len(ops))
	copy(cp, ops)
	return &SequenceModel{ops: cp}
}

// Next 回傳下一筆操作，若結束則回傳零值與 false
func (m *SequenceModel) Next() (Operation, bool) {
	if m.pos >= len(m.ops) {
		return Operation{}, false
	}
	op := m.ops[m.pos]
	m.pos++
	return op, true
}

// Len 回傳序列總長度
func (m *SequenceModel) Len() int { return len(m.ops) }

// Reset 游標重置到起點
func (m *SequenceModel) Reset() { m.pos = 0 }
