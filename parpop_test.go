package biteopt

import "testing"

// fillConst fills every row of p with a constant vector and refreshes
// the centroid.
func fillConst(p *Pop, v Param) {
	p.ResetPos()
	for j := 0; j < p.PopSize(); j++ {
		row := p.Ordered(j)
		for i := range row {
			row[i] = v
		}
	}
	p.UpdateCentroid()
}

func TestParSetNearest(t *testing.T) {
	var ps ParSet
	ps.SetCount(3)
	for i := 0; i < ps.Count(); i++ {
		ps.Pop(i).Init(2, 8)
	}

	fillConst(ps.Pop(0), 0)
	fillConst(ps.Pop(1), MantMult/2)
	fillConst(ps.Pop(2), MantMult)

	cases := []struct {
		v    Param
		want int
	}{
		{MantMult / 16, 0},
		{MantMult/2 + MantMult/16, 1},
		{MantMult - MantMult/16, 2},
	}

	params := make([]Param, 2)
	for _, c := range cases {
		params[0] = c.v
		params[1] = c.v
		if got := ps.Nearest(params); got != c.want {
			t.Errorf("FAIL: Nearest(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestParSetNearestTieLowestIndex(t *testing.T) {
	// Five identical centroids also exercise the 4-wide distance batch
	// plus its remainder.
	var ps ParSet
	ps.SetCount(5)
	for i := 0; i < ps.Count(); i++ {
		ps.Pop(i).Init(3, 8)
		fillConst(ps.Pop(i), MantMult/2)
	}

	params := []Param{MantMult / 4, MantMult / 2, MantMult}
	if got := ps.Nearest(params); got != 0 {
		t.Errorf("FAIL: tied distances routed to %v, want 0", got)
	}
}

func TestParSetSetCountPreservesSurvivors(t *testing.T) {
	var ps ParSet
	ps.SetCount(2)
	ps.Pop(0).Init(2, 8)
	ps.Pop(1).Init(2, 8)
	fillConst(ps.Pop(0), MantMult/4)

	survivor := ps.Pop(0)
	ps.SetCount(4)

	if ps.Count() != 4 {
		t.Fatalf("FAIL: Count %v after grow, want 4", ps.Count())
	}
	if ps.Pop(0) != survivor {
		t.Error("FAIL: grow replaced a surviving population")
	}
	if got := ps.Pop(0).Centroid()[0]; got != MantMult/4 {
		t.Errorf("FAIL: survivor centroid %v, want %v", got, MantMult/4)
	}
}
