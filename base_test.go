package biteopt

import (
	"math"
	"testing"
)

func newTestBase(low, up []float64, popSize int) *Base {
	b := &Base{}
	b.Prob = NewProblem(func(v []float64) float64 {
		s := 0.0
		for _, x := range v {
			s += x * x
		}
		return s
	}, low, up)
	b.InitBuffers(len(low), popSize)
	return b
}

func TestBaseRealValueMapping(t *testing.T) {
	rnd := NewRnd(1)
	b := newTestBase([]float64{-5, 0, 2}, []float64{5, 10, 4}, 10)
	b.ResetCommonVars(rnd)

	params := make([]Param, 3)

	for i := range params {
		params[i] = 0
	}
	for i := range params {
		if got := b.RealValue(params, i); math.Abs(got-b.MinValues[i]) > 1e-9 {
			t.Errorf("FAIL: RealValue at 0 for axis %v: %v, want %v",
				i, got, b.MinValues[i])
		}
	}

	for i := range params {
		params[i] = MantMult
	}
	for i := range params {
		if got := b.RealValue(params, i); math.Abs(got-b.MaxValues[i]) > 1e-9 {
			t.Errorf("FAIL: RealValue at MantMult for axis %v: %v, want %v",
				i, got, b.MaxValues[i])
		}
	}
}

func TestBaseSetStartRoundTrip(t *testing.T) {
	rnd := NewRnd(2)
	b := newTestBase([]float64{-5, -5}, []float64{5, 5}, 10)
	b.ResetCommonVars(rnd)

	start := []float64{1.25, -3.5}
	b.SetStart(start)
	if !b.UseStartParams {
		t.Fatal("FAIL: SetStart did not flag UseStartParams")
	}

	// The first generated point must be the start itself.
	params := make([]Param, 2)
	b.GenInit(rnd, params)
	for i := range start {
		if math.Abs(b.NewValues[i]-start[i]) > 1e-9 {
			t.Errorf("FAIL: first init point axis %v = %v, want %v",
				i, b.NewValues[i], start[i])
		}
	}
}

func TestBaseGenInitSpread(t *testing.T) {
	rnd := NewRnd(3)
	b := newTestBase([]float64{-1, -1}, []float64{1, 1}, 10)
	b.ResetCommonVars(rnd)

	// Without a start point the cloud centers on the range middle.
	params := make([]Param, 2)
	sum := [2]float64{}
	const n = 5000
	for k := 0; k < n; k++ {
		b.GenInit(rnd, params)
		for i := range params {
			if params[i] < 0 || params[i] > MantMult {
				t.Fatalf("FAIL: init param out of range: %v", params[i])
			}
			sum[i] += b.NewValues[i]
		}
	}
	for i := range sum {
		if math.Abs(sum[i]/n) > 0.03 {
			t.Errorf("FAIL: init cloud mean axis %v = %v, want ~0", i, sum[i]/n)
		}
	}
}

func TestBaseUpdateBest(t *testing.T) {
	rnd := NewRnd(4)
	b := newTestBase([]float64{0}, []float64{1}, 10)
	b.ResetCommonVars(rnd)

	b.UpdateBest(5.0, []float64{0.5}, -1)
	if b.BestCost != 5.0 {
		t.Fatalf("FAIL: BestCost %v, want 5", b.BestCost)
	}

	// Worse cost with unknown position must not replace.
	b.UpdateBest(6.0, []float64{0.6}, -1)
	if b.BestCost != 5.0 || b.BestValues[0] != 0.5 {
		t.Errorf("FAIL: worse cost replaced best: %v / %v", b.BestCost, b.BestValues[0])
	}

	// Position 0 replaces unconditionally (rank 0 means best-ranked).
	b.UpdateBest(4.0, []float64{0.4}, 0)
	if b.BestCost != 4.0 || b.BestValues[0] != 0.4 {
		t.Errorf("FAIL: rank-0 update ignored: %v / %v", b.BestCost, b.BestValues[0])
	}

	// Nonzero position leaves best untouched.
	b.UpdateBest(1.0, []float64{0.1}, 3)
	if b.BestCost != 4.0 {
		t.Errorf("FAIL: rank-3 update replaced best: %v", b.BestCost)
	}
}

func TestBaseWrapReal(t *testing.T) {
	rnd := NewRnd(5)
	b := newTestBase([]float64{-2}, []float64{3}, 10)
	b.ResetCommonVars(rnd)

	for i := 0; i < 10000; i++ {
		v := rnd.Float64()*20 - 10
		got := b.WrapReal(rnd, v, 0)
		if got < -2 || got > 3 {
			t.Fatalf("FAIL: WrapReal(%v) = %v, outside [-2,3]", v, got)
		}
		if v >= -2 && v <= 3 && got != v {
			t.Fatalf("FAIL: WrapReal changed in-range value %v to %v", v, got)
		}
	}
}

func TestBaseSelectorRegistry(t *testing.T) {
	rnd := NewRnd(6)
	b := newTestBase([]float64{0}, []float64{1}, 10)

	s1 := NewSel(2, 1.5)
	s2 := NewSel(3, 1.5)
	b.AddSel(s1, "first")
	b.AddSel(s2, "second")
	b.ResetCommonVars(rnd)

	if len(b.Sels()) != 2 || b.SelNames()[1] != "second" {
		t.Fatalf("FAIL: registry holds %v sels, names %v",
			len(b.Sels()), b.SelNames())
	}

	b.Select(s1, rnd)
	b.Select(s2, rnd)
	if len(b.applySels) != 2 {
		t.Fatalf("FAIL: %v pending selectors, want 2", len(b.applySels))
	}

	b.ApplyIncr(1)
	if len(b.applySels) != 0 {
		t.Error("FAIL: ApplyIncr did not drain the pending list")
	}

	b.Select(s1, rnd)
	b.ApplyDecr()
	if len(b.applySels) != 0 {
		t.Error("FAIL: ApplyDecr did not drain the pending list")
	}
}
