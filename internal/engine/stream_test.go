package engine

import (
	"testing"
)

func TestFloats(t *testing.T) {
	tests := []struct {
		name    string
		seed    string
		label   string
		count   int
		wantLen int
	}{
		{
			name:    "basic float generation",
			seed:    "test_seed",
			label:   "noise",
			count:   1,
			wantLen: 1,
		},
		{
			name:    "multiple floats",
			seed:    "test_seed",
			label:   "mask",
			count:   64,
			wantLen: 64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			floats := Floats(tt.seed, tt.label, tt.count)

			if len(floats) != tt.wantLen {
				t.Errorf("Floats() returned %d floats, want %d", len(floats), tt.wantLen)
			}

			for i, f := range floats {
				if f < 0 || f >= 1 {
					t.Errorf("Float %d is out of range [0, 1): %f", i, f)
				}
			}
		})
	}
}

func TestDeterministicStream(t *testing.T) {
	floats1 := Floats("deterministic_test", "noise", 16)
	floats2 := Floats("deterministic_test", "noise", 16)

	for i := range floats1 {
		if floats1[i] != floats2[i] {
			t.Errorf("Float %d differs: %f != %f", i, floats1[i], floats2[i])
		}
	}
}

func TestLabelSeparation(t *testing.T) {
	a := Floats("shared_seed", "mask", 8)
	b := Floats("shared_seed", "noise", 8)

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("Streams with different labels produced identical floats")
	}
}

func TestFloatDistribution(t *testing.T) {
	s := NewStream("distribution_seed", "noise")
	const n = 10000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += s.Float()
	}
	mean := sum / n
	if mean < 0.45 || mean > 0.55 {
		t.Errorf("Mean of %d floats is %f, expected near 0.5", n, mean)
	}
}

func TestIntn(t *testing.T) {
	s := NewStream("intn_seed", "pick")
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		v := s.Intn(5)
		if v < 0 || v >= 5 {
			t.Fatalf("Intn(5) returned %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 5 {
		t.Errorf("Intn(5) over 1000 draws hit %d distinct values, want 5", len(seen))
	}
}

func TestIntBetween(t *testing.T) {
	s := NewStream("between_seed", "pick")
	for i := 0; i < 1000; i++ {
		v := s.IntBetween(3, 5)
		if v < 3 || v > 5 {
			t.Fatalf("IntBetween(3, 5) returned %d", v)
		}
	}
}

func BenchmarkFloats(b *testing.B) {
	s := NewStream("benchmark_seed", "noise")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Float()
	}
}
