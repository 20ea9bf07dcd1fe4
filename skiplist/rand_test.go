package skiplist

import "testing"

func TestNewSeededSourceDeterministic(t *testing.T) {
	s1 := NewSeededSource(42)
	s2 := NewSeededSource(42)
	for i := 0; i < 100; i++ {
		a, b := s1.Float64(), s2.Float64()
		if a != b {
			t.Fatalf("同種子第 %d 筆不一致: %v != %v", i, a, b)
		}
		if a < 0 || a >= 1 {
			t.Fatalf("第 %d 筆超出 [0,1): %v", i, a)
		}
	}
}

func TestSentinelKeysDoNotOverlap(t *testing.T) {
	if HeadKey >= TailKey {
		t.Errorf("HeadKey (%d) 必須小於 TailKey (%d)", HeadKey, TailKey)
	}
}
