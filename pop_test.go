package biteopt

import (
	"math"
	"testing"
)

func fillPop(rnd *Rnd, p *Pop, n int) {
	p.ResetPos()
	for i := 0; i < n; i++ {
		row := p.CurParams()
		for j := range row {
			row[j] = Param(rnd.Float64() * MantMultF)
		}
		p.Update(rnd.Float64()*100, row, false, 0)
	}
}

func TestPopOrdering(t *testing.T) {
	rnd := NewRnd(1)
	var p Pop
	p.Init(4, 20)
	fillPop(rnd, &p, 20)

	for i := 1; i < p.PopSize(); i++ {
		if p.RankOf(i) < p.RankOf(i-1) {
			t.Fatalf("FAIL: rank order broken at %v: %v < %v",
				i, p.RankOf(i), p.RankOf(i-1))
		}
	}

	// Keep inserting; ordering must hold and the worst must only improve.
	for k := 0; k < 200; k++ {
		row := p.CurParams()
		for j := range row {
			row[j] = Param(rnd.Float64() * MantMultF)
		}
		worst := p.RankOf(p.PopSize() - 1)
		p.Update(rnd.Float64()*100, row, false, 0)

		if p.RankOf(p.PopSize()-1) > worst {
			t.Fatalf("FAIL: worst rank rose from %v to %v",
				worst, p.RankOf(p.PopSize()-1))
		}
		for i := 1; i < p.PopSize(); i++ {
			if p.RankOf(i) < p.RankOf(i-1) {
				t.Fatalf("FAIL: rank order broken after insert %v", k)
			}
		}
	}
}

func TestPopUpdateRejectsWorse(t *testing.T) {
	rnd := NewRnd(2)
	var p Pop
	p.Init(3, 8)
	fillPop(rnd, &p, 8)

	worst := p.RankOf(p.PopSize() - 1)
	row := p.CurParams()
	for j := range row {
		row[j] = MantMult / 2
	}
	if got := p.Update(worst+1, row, false, 0); got < p.PopSize() {
		t.Errorf("FAIL: worse cost inserted at %v, want rejection", got)
	}
}

func TestPopUpdateEqualCostSentinel(t *testing.T) {
	rnd := NewRnd(3)
	var p Pop
	p.Init(3, 8)
	p.ResetPos()
	for i := 0; i < 8; i++ {
		row := p.CurParams()
		for j := range row {
			row[j] = Param(rnd.Float64() * MantMultF)
		}
		p.Update(float64(i), row, false, 0)
	}

	row := p.CurParams()
	for j := range row {
		row[j] = Param(rnd.Float64() * MantMultF)
	}
	if got := p.Update(3.0, row, false, 0); got != p.PopSize() {
		t.Errorf("FAIL: equal-cost insert returned %v, want sentinel %v",
			got, p.PopSize())
	}
}

func TestPopRemoveAt(t *testing.T) {
	rnd := NewRnd(4)
	var p Pop
	p.Init(2, 10)
	fillPop(rnd, &p, 10)

	second := p.RankOf(1)
	p.RemoveAt(0)

	if p.CurPopPos() != 9 {
		t.Errorf("FAIL: CurPopPos %v after removal, want 9", p.CurPopPos())
	}
	if p.RankOf(0) != second {
		t.Errorf("FAIL: rank 0 is %v after removal, want %v", p.RankOf(0), second)
	}
	for i := 1; i < p.CurPopPos(); i++ {
		if p.RankOf(i) < p.RankOf(i-1) {
			t.Fatalf("FAIL: rank order broken after removal at %v", i)
		}
	}
}

func TestPopCentroidSmall(t *testing.T) {
	rnd := NewRnd(5)
	var p Pop
	p.Init(3, 10)
	fillPop(rnd, &p, 10)

	p.UpdateCentroid()
	cent := p.Centroid()

	for i := 0; i < 3; i++ {
		sum := int64(0)
		for j := 0; j < p.CurPopSize(); j++ {
			sum += p.Ordered(j)[i]
		}
		want := float64(sum) / float64(p.CurPopSize())
		got := float64(cent[i])
		if math.Abs(got-want) > 2 {
			t.Errorf("FAIL: centroid[%v] = %v, want %v", i, got, want)
		}
	}

	// After a shrink the mean covers only the active rows.
	p.DecrSize()
	p.DecrSize()
	p.UpdateCentroid()
	cent = p.Centroid()

	for i := 0; i < 3; i++ {
		sum := int64(0)
		for j := 0; j < p.CurPopSize(); j++ {
			sum += p.Ordered(j)[i]
		}
		want := float64(sum) / float64(p.CurPopSize())
		got := float64(cent[i])
		if math.Abs(got-want) > 2 {
			t.Errorf("FAIL: shrunk centroid[%v] = %v, want %v", i, got, want)
		}
	}
}

func TestPopCentroidBatched(t *testing.T) {
	rnd := NewRnd(6)
	var p Pop
	p.Init(2, 100) // forces the batched accumulation path
	fillPop(rnd, &p, 100)

	check := func(label string) {
		p.UpdateCentroid()
		cent := p.Centroid()

		for i := 0; i < 2; i++ {
			want := 0.0
			for j := 0; j < p.CurPopSize(); j++ {
				want += float64(p.Ordered(j)[i]) / float64(p.CurPopSize())
			}
			got := float64(cent[i])
			if math.Abs(got-want)/MantMultF > 1e-9 {
				t.Errorf("FAIL: %v centroid[%v] = %v, want ~%v",
					label, i, got, want)
			}
		}
	}

	// Batch boundaries at multiples of the chunk size must neither
	// re-read nor skip rows.
	check("full")

	for p.CurPopSize() > 40 {
		p.DecrSize()
	}
	check("shrunk")
}

func TestPopLeakyCentroid(t *testing.T) {
	rnd := NewRnd(7)
	var p Pop
	p.Init(2, 8)
	fillPop(rnd, &p, 8)
	p.UpdateCentroid()

	row := make([]Param, 2)
	row[0] = MantMult / 3
	row[1] = MantMult / 5

	p.Update(p.RankOf(0)-1, row, true, 0)
	if p.NeedCentUpdate() {
		t.Error("FAIL: running centroid update left centroid stale")
	}

	p.Update(p.RankOf(0)-1, row, false, 0)
	if !p.NeedCentUpdate() {
		t.Error("FAIL: plain update did not mark centroid stale")
	}
}

func TestPopCopyFrom(t *testing.T) {
	rnd := NewRnd(8)
	var p Pop
	p.Init(3, 12)
	fillPop(rnd, &p, 12)
	p.UpdateCentroid()

	var q Pop
	q.CopyFrom(&p)

	if q.PopSize() != p.PopSize() || q.CurPopSize() != p.CurPopSize() {
		t.Fatalf("FAIL: copy dimensions %v/%v, want %v/%v",
			q.PopSize(), q.CurPopSize(), p.PopSize(), p.CurPopSize())
	}
	for i := 0; i < p.PopSize(); i++ {
		if q.RankOf(i) != p.RankOf(i) {
			t.Errorf("FAIL: copy rank %v = %v, want %v", i, q.RankOf(i), p.RankOf(i))
		}
		for j := 0; j < 3; j++ {
			if q.Ordered(i)[j] != p.Ordered(i)[j] {
				t.Fatalf("FAIL: copy params differ at %v/%v", i, j)
			}
		}
	}

	// The copy must own its storage.
	q.Ordered(0)[0]++
	if q.Ordered(0)[0] == p.Ordered(0)[0] {
		t.Error("FAIL: copy shares parameter storage with source")
	}
}

func TestWrapParam(t *testing.T) {
	rnd := NewRnd(9)

	for i := 0; i < 10000; i++ {
		v := Param(rnd.Float64() * MantMultF)
		if got := WrapParam(rnd, v); got != v {
			t.Fatalf("FAIL: in-range value changed: %v -> %v", v, got)
		}
	}

	cases := []Param{
		-1, -MantMult / 2, -MantMult, -MantMult * 3,
		MantMult + 1, MantMult + MantMult/2, MantMult2, MantMult2 * 2,
	}
	for _, v := range cases {
		for i := 0; i < 1000; i++ {
			got := WrapParam(rnd, v)
			if got < 0 || got > MantMult {
				t.Fatalf("FAIL: WrapParam(%v) = %v, out of range", v, got)
			}
		}
	}
}

func TestGaussianInt(t *testing.T) {
	rnd := NewRnd(10)
	mean := MantMult / 2

	sum := 0.0
	const n = 20000
	for i := 0; i < n; i++ {
		v := GaussianInt(rnd, 0.1, mean)
		d := float64(v-mean) / MantMultF
		if d <= -0.8 || d >= 0.8 {
			t.Fatalf("FAIL: GaussianInt beyond 8 sd: %v", d)
		}
		sum += d
	}
	if math.Abs(sum/n) > 0.005 {
		t.Errorf("FAIL: GaussianInt mean offset %v, want ~0", sum/n)
	}
}

func TestCalcLP1Coeff(t *testing.T) {
	prev := 1.1
	for _, n := range []float64{1, 2, 5, 10, 50, 500} {
		c := CalcLP1Coeff(n)
		if c <= 0 || c >= 1 {
			t.Fatalf("FAIL: CalcLP1Coeff(%v) = %v, want (0,1)", n, c)
		}
		if c >= prev {
			t.Errorf("FAIL: CalcLP1Coeff not decreasing at %v: %v >= %v", n, c, prev)
		}
		prev = c
	}
}
