package datastream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"

	"github.com/eratio08/skip-list/skiplist"
)

// 檔案格式（LittleEndian）：
// [8]byte  Magic: "SLWORK01"
// uint16   Version: 1
// uint16   Reserved: 0
// uint32   DistCount
// 重複 DistCount 次：
//   int64   Key
//   float64 Weight
// uint64   OpCount
// 重複 OpCount 次：
//   uint8   OperationType (0=Query,1=Insert,2=Delete)
//   int64   Key

var (
	workloadMagic   = [8]byte{'S', 'L', 'W', 'O', 'R', 'K', '0', '1'}
	workloadVersion = uint16(1)
)

// Workload 是一份可重播的操作序列與其 key 分布
type Workload struct {
	Dist map[skiplist.K]float64
	Ops  []Operation
}

// ToSequenceModel 轉成可重播的 SequenceModel
func (w *Workload) ToSequenceModel() *SequenceModel {
	return NewSequenceModelFromOps(w.Ops)
}

// BuildWorkload 以兩階段產生操作序列。
// phase 1（佔 phase1Ratio）：首次出現的 key 輸出 Insert，其餘輸出 Query。
// phase 2：deleteRatio 的機率對目前存在的 key 輸出 Delete，
// 不存在的 key 輸出 Insert，其餘輸出 Query。
// 搜尋與刪除僅會在該 key 至少插入過一次之後才可能出現。
func BuildWorkload(gen Generator, seed int64, ops int, phase1Ratio, deleteRatio float64) (*Workload, error) {
	if gen == nil {
		return nil, errors.New("nil generator")
	}
	if ops < 0 {
		return nil, fmt.Errorf("invalid ops: %d", ops)
	}
	if phase1Ratio < 0.0 || phase1Ratio > 1.0 {
		return nil, fmt.Errorf("phase1Ratio (%v) must be between 0.0 and 1.0", phase1Ratio)
	}
	if deleteRatio < 0.0 || deleteRatio > 1.0 {
		return nil, fmt.Errorf("deleteRatio (%v) must be between 0.0 and 1.0", deleteRatio)
	}

	rng := rand.New(rand.NewSource(seed))
	phase1Size := int(float64(ops) * phase1Ratio)
	present := map[skiplist.K]bool{}

	out := make([]Operation, 0, ops)
	for i := 0; i < ops; i++ {
		key := skiplist.K(gen.Next())
		var op OperationType

		switch {
		case !present[key]:
			op = OpInsert
			present[key] = true
		case i >= phase1Size && rng.Float64() < deleteRatio:
			op = OpDelete
			present[key] = false
		default:
			op = OpQuery
		}
		out = append(out, Operation{Type: op, Key: key})
	}

	return &Workload{Dist: gen.GetKeyMap(), Ops: out}, nil
}

// WriteWorkloadFile 將 workload 寫入二進位檔案
func WriteWorkloadFile(w *Workload, filename string) error {
	if w == nil {
		return errors.New("nil workload")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(workloadMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(file, binary.LittleEndian, workloadVersion); err != nil {
		return err
	}
	if err := binary.Write(file, binary.LittleEndian, uint16(0)); err != nil { // reserved
		return err
	}

	// Distribution map（使用升冪 key 輸出，確保可重現）
	keys := make([]int, 0, len(w.Dist))
	for k := range w.Dist {
		keys = append(keys, int(k))
	}
	sort.Ints(keys)

	if err := binary.Write(file, binary.LittleEndian, uint32(len(keys))); err != nil {
		return err
	}
	for _, ik := range keys {
		if err := binary.Write(file, binary.LittleEndian, int64(ik)); err != nil {
			return err
		}
		if err := binary.Write(file, binary.LittleEndian, w.Dist[skiplist.K(ik)]); err != nil {
			return err
		}
	}

	if err := binary.Write(file, binary.LittleEndian, uint64(len(w.Ops))); err != nil {
		return err
	}
	for _, op := range w.Ops {
		if err := binary.Write(file, binary.LittleEndian, uint8(op.Type)); err != nil {
			return err
		}
		if err := binary.Write(file, binary.LittleEndian, int64(op.Key)); err != nil {
			return err
		}
	}
	return nil
}

// ReadWorkloadFile 從二進位檔案讀回 workload
func ReadWorkloadFile(filename string) (*Workload, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var magic [8]byte
	if _, err := io.ReadFull(file, magic[:]); err != nil {
		return nil, err
	}
	if magic != workloadMagic {
		return nil, fmt.Errorf("bad magic: %q", magic[:])
	}
	var version, reserved uint16
	if err := binary.Read(file, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != workloadVersion {
		return nil, fmt.Errorf("unsupported version: %d", version)
	}
	if err := binary.Read(file, binary.LittleEndian, &reserved); err != nil {
		return nil, err
	}

	var distCount uint32
	if err := binary.Read(file, binary.LittleEndian, &distCount); err != nil {
		return nil, err
	}
	dist := make(map[skiplist.K]float64, distCount)
	for i := uint32(0); i < distCount; i++ {
		var k int64
		var weight float64
		if err := binary.Read(file, binary.LittleEndian, &k); err != nil {
			return nil, err
		}
		if err := binary.Read(file, binary.LittleEndian, &weight); err != nil {
			return nil, err
		}
		dist[skiplist.K(k)] = weight
	}

	var opCount uint64
	if err := binary.Read(file, binary.LittleEndian, &opCount); err != nil {
		return nil, err
	}
	ops := make([]Operation, 0, opCount)
	for i := uint64(0); i < opCount; i++ {
		var t uint8
		var k int64
		if err := binary.Read(file, binary.LittleEndian, &t); err != nil {
			return nil, err
		}
		if err := binary.Read(file, binary.LittleEndian, &k); err != nil {
			return nil, err
		}
		ops = append(ops, Operation{Type: OperationType(t), Key: skiplist.K(k)})
	}

	return &Workload{Dist: dist, Ops: ops}, nil
}
