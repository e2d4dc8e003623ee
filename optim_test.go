package biteopt

import (
	"math"
	"testing"
)

func TestFixCost(t *testing.T) {
	if v := FixCost(math.NaN()); v != CostSentinel {
		t.Errorf("FAIL: NaN fixed to %v, want %v", v, CostSentinel)
	}
	if v := FixCost(1.5); v != 1.5 {
		t.Errorf("FAIL: finite cost changed to %v", v)
	}
	if v := FixCost(math.Inf(1)); !math.IsInf(v, 1) {
		t.Errorf("FAIL: +Inf cost changed to %v", v)
	}
}

func TestValidateBounds(t *testing.T) {
	ok := ValidateBounds([]float64{-1, 0}, []float64{1, 0})
	if ok != nil {
		t.Errorf("FAIL: valid bounds rejected: %v", ok)
	}

	cases := []struct {
		name    string
		low, up []float64
	}{
		{"empty", nil, nil},
		{"mismatch", []float64{0}, []float64{1, 2}},
		{"inverted", []float64{2}, []float64{1}},
		{"nan", []float64{math.NaN()}, []float64{1}},
		{"inf", []float64{0}, []float64{math.Inf(1)}},
	}

	for _, c := range cases {
		if err := ValidateBounds(c.low, c.up); err == nil {
			t.Errorf("FAIL: %v bounds accepted", c.name)
		}
	}
}

func TestCalcPopSize(t *testing.T) {
	prev := 0
	for n := 1; n <= 2048; n *= 2 {
		ps := CalcPopSize(n)

		if ps < 10 {
			t.Errorf("FAIL: n=%v gives population %v < 10", n, ps)
		}
		if ps < prev {
			t.Errorf("FAIL: population size not monotone at n=%v (%v < %v)",
				n, ps, prev)
		}
		prev = ps
	}

	// Low dimensions follow the linear ramp.
	if ps := CalcPopSize(1); ps < 11 || ps > 15 {
		t.Errorf("FAIL: n=1 population %v outside linear-ramp range", ps)
	}
}
