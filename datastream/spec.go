package datastream

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// default values
const (
	DIST          = "zipf"
	KEYS          = 1000
	ZIPF_A        = 1.07
	ZIPF_B        = 0.0
	OPS           = 10000
	PHASE1_RATIO  = 0.5
	DELETE_RATIO  = 0.1
	WORKLOAD_SEED = 42
)

// Spec 描述一份 workload 的產生參數，可由 YAML 檔載入
type Spec struct {
	Dist        string  `yaml:"dist"` // zipf 或 uniform
	Keys        int     `yaml:"keys"`
	A           float64 `yaml:"a"`
	B           float64 `yaml:"b"`
	Ops         int     `yaml:"ops"`
	Phase1Ratio float64 `yaml:"phase1_ratio"`
	DeleteRatio float64 `yaml:"delete_ratio"`
	Seed        int64   `yaml:"seed"`
}

// DefaultSpec 回傳帶預設值的 Spec
func DefaultSpec() Spec {
	return Spec{
		Dist:        DIST,
		Keys:        KEYS,
		A:           ZIPF_A,
		B:           ZIPF_B,
		Ops:         OPS,
		Phase1Ratio: PHASE1_RATIO,
		DeleteRatio: DELETE_RATIO,
		Seed:        WORKLOAD_SEED,
	}
}

// LoadSpec 由 YAML 檔載入 Spec，缺漏的欄位補預設值
func LoadSpec(path string) (Spec, error) {
	spec := DefaultSpec()

	data, err := os.ReadFile(path)
	if err != nil {
		return spec, err
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return spec, err
	}
	if err := spec.Validate(); err != nil {
		return spec, err
	}
	return spec, nil
}

// Validate 檢查參數合法性
func (s Spec) Validate() error {
	if s.Dist != "zipf" && s.Dist != "uniform" {
		return fmt.Errorf("unknown dist: %q", s.Dist)
	}
	if s.Keys <= 0 {
		return fmt.Errorf("keys must be positive, got %d", s.Keys)
	}
	if s.Ops < 0 {
		return fmt.Errorf("ops must be non-negative, got %d", s.Ops)
	}
	if s.Phase1Ratio < 0.0 || s.Phase1Ratio > 1.0 {
		return fmt.Errorf("phase1_ratio (%v) must be between 0.0 and 1.0", s.Phase1Ratio)
	}
	if s.DeleteRatio < 0.0 || s.DeleteRatio > 1.0 {
		return fmt.Errorf("delete_ratio (%v) must be between 0.0 and 1.0", s.DeleteRatio)
	}
	return nil
}

// NewGenerator 依 Spec 建立對應的 Generator
func (s Spec) NewGenerator() (Generator, error) {
	switch s.Dist {
	case "zipf":
		return NewZipfDataGenerator(s.Keys, s.A, s.B, s.Seed), nil
	case "uniform":
		return NewUniformDataGenerator(s.Keys, s.Seed), nil
	default:
		return nil, fmt.Errorf("unknown dist: %q", s.Dist)
	}
}

// BuildFromSpec 由 Spec 直接建出 workload
func BuildFromSpec(s Spec) (*Workload, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	gen, err := s.NewGenerator()
	if err != nil {
		return nil, err
	}
	return BuildWorkload(gen, s.Seed, s.Ops, s.Phase1Ratio, s.DeleteRatio)
}
