package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/eratio08/skip-list/datastream"
	"github.com/eratio08/skip-list/skiplist"
	"github.com/eratio08/skip-list/skiplist/analyTool"
	"github.com/eratio08/skip-list/skiplist/arena"
)

func main() {
	var config string
	var file string
	var out string

	var dist string
	var keys int
	var a float64
	var b float64
	var ops int
	var phase1Ratio float64
	var deleteRatio float64
	var seed int64

	var runs int
	var size int
	var p float64
	var printList bool
	var check bool

	flag.StringVar(&config, "config", "", "workload spec YAML file")
	flag.StringVar(&file, "file", "", "existing workload file (SLWORK01 format)")
	flag.StringVar(&out, "out", "", "output path to write the generated workload file")

	flag.StringVar(&dist, "dist", datastream.DIST, "key distribution: zipf or uniform")
	flag.IntVar(&keys, "keys", datastream.KEYS, "number of keys")
	flag.Float64Var(&a, "a", datastream.ZIPF_A, "Zipf parameter a")
	flag.Float64Var(&b, "b", datastream.ZIPF_B, "Zipf parameter b")
	flag.IntVar(&ops, "ops", datastream.OPS, "number of operations to generate")
	flag.Float64Var(&phase1Ratio, "phase1Ratio", datastream.PHASE1_RATIO, "ratio of phase1 operations")
	flag.Float64Var(&deleteRatio, "deleteRatio", datastream.DELETE_RATIO, "ratio of delete operations")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "seed for generators and structures")

	flag.IntVar(&runs, "runs", 5, "how many times to repeat the benchmark")
	flag.IntVar(&size, "size", 0, "expected element count for the list (default: keys)")
	flag.Float64Var(&p, "p", arena.DefaultProbability, "level promotion probability")
	flag.BoolVar(&printList, "print", false, "print the final list structure")
	flag.BoolVar(&check, "check", true, "verify structure invariants after each run")
	flag.Parse()

	if runs < 1 {
		log.Fatalf("invalid -runs: %d", runs)
	}

	// 決定 workload 來源：-file 優先於 -config，再來才是 flags
	var workload *datastream.Workload
	var err error

	switch {
	case file != "":
		workload, err = datastream.ReadWorkloadFile(file)
		if err != nil {
			log.Fatalf("read workload %s: %v", file, err)
		}
		fmt.Printf("workload_file: %s\n", file)
	case config != "":
		spec, err := datastream.LoadSpec(config)
		if err != nil {
			log.Fatalf("load spec %s: %v", config, err)
		}
		workload, err = datastream.BuildFromSpec(spec)
		if err != nil {
			log.Fatalf("build workload: %v", err)
		}
		fmt.Printf("workload_spec: %s (dist=%s keys=%d ops=%d)\n", config, spec.Dist, spec.Keys, spec.Ops)
	default:
		spec := datastream.Spec{
			Dist:        dist,
			Keys:        keys,
			A:           a,
			B:           b,
			Ops:         ops,
			Phase1Ratio: phase1Ratio,
			DeleteRatio: deleteRatio,
			Seed:        seed,
		}
		workload, err = datastream.BuildFromSpec(spec)
		if err != nil {
			log.Fatalf("build workload: %v", err)
		}
		fmt.Printf("generated workload: dist=%s keys=%d ops=%d\n", dist, keys, ops)
	}

	if out != "" {
		if err := datastream.WriteWorkloadFile(workload, out); err != nil {
			log.Fatalf("write workload %s: %v", out, err)
		}
		fmt.Printf("workload written to: %s\n", out)
	}

	if size <= 0 {
		size = len(workload.Dist)
		if size <= 0 {
			size = keys
		}
	}

	fmt.Printf("ops: %d\n", len(workload.Ops))

	var last *arena.ArenaSkipList
	rows := make([][]string, 0, runs)
	var totalMs, minMs, maxMs float64

	for run := 0; run < runs; run++ {
		sl, err := arena.NewWithSource(size, p, skiplist.NewSeededSource(seed+int64(run)))
		if err != nil {
			log.Fatalf("new skip list: %v", err)
		}

		model := workload.ToSequenceModel()
		found, missed := 0, 0

		start := time.Now()
		for {
			op, ok := model.Next()
			if !ok {
				break
			}
			switch op.Type {
			case datastream.OpInsert:
				sl.Put(op.Key, skiplist.V(op.Key))
			case datastream.OpQuery:
				if _, ok := sl.Get(op.Key); ok {
					found++
				} else {
					missed++
				}
			case datastream.OpDelete:
				if _, ok := sl.Delete(op.Key); ok {
					found++
				} else {
					missed++
				}
			}
		}
		ms := float64(time.Since(start).Microseconds()) / 1000.0

		if check && !analyTool.CheckStruct(sl) {
			log.Fatalf("run %d: structure check failed", run)
		}

		totalMs += ms
		if run == 0 || ms < minMs {
			minMs = ms
		}
		if run == 0 || ms > maxMs {
			maxMs = ms
		}

		nodes, levels := sl.GetMaxStats()
		rows = append(rows, []string{
			fmt.Sprintf("%d", run),
			fmt.Sprintf("%.3f", ms),
			fmt.Sprintf("%.2f", float64(len(workload.Ops))/(ms/1000.0)),
			fmt.Sprintf("%d", found),
			fmt.Sprintf("%d", missed),
			fmt.Sprintf("%d", nodes),
			fmt.Sprintf("%d", levels),
		})
		last = sl
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Run", "Ms", "Ops/s", "Found", "NotFound", "Nodes", "Levels"})
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()

	fmt.Printf("avg: %.3f ms, min: %.3f ms, max: %.3f ms\n", totalMs/float64(runs), minMs, maxMs)
	fmt.Printf("avg_steps: %.6f\n", weightedSteps(last, workload.Dist))

	if printList {
		analyTool.PrintSkipList(last)
	}
}

// weightedSteps 依分布權重計算搜尋步數期望值
func weightedSteps(sl skiplist.Analyable, dist map[skiplist.K]float64) float64 {
	var steps, prob float64
	for key, w := range dist {
		if !sl.Contains(key) {
			continue
		}
		steps += float64(analyTool.FindStep(sl, key)) * w
		prob += w
	}
	if prob == 0 {
		return 0
	}
	return steps / prob
}
