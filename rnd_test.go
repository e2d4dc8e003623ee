package biteopt

import (
	"math"
	"testing"
)

func TestRndDeterminism(t *testing.T) {
	r1 := NewRnd(42)
	r2 := NewRnd(42)
	for i := 0; i < 1000; i++ {
		if r1.Raw() != r2.Raw() {
			t.Fatalf("FAIL: streams with equal seeds diverged at draw %v", i)
		}
	}

	r3 := NewRnd(43)
	same := 0
	r1.Reset(42)
	for i := 0; i < 1000; i++ {
		if r1.Raw() == r3.Raw() {
			same++
		}
	}
	if same > 2 {
		t.Errorf("FAIL: streams with different seeds collide %v/1000 draws", same)
	}
}

func TestRndReset(t *testing.T) {
	r := NewRnd(7)
	want := make([]uint64, 32)
	for i := range want {
		want[i] = r.Raw()
	}

	r.Reset(7)
	for i := range want {
		if got := r.Raw(); got != want[i] {
			t.Fatalf("FAIL: draw %v after reset: got %v, want %v", i, got, want[i])
		}
	}
}

func TestRndFloat64Range(t *testing.T) {
	r := NewRnd(1)
	sum := 0.0
	const n = 100000
	for i := 0; i < n; i++ {
		v := r.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("FAIL: Float64 out of [0,1): %v", v)
		}
		sum += v
	}
	mean := sum / n
	if math.Abs(mean-0.5) > 0.01 {
		t.Errorf("FAIL: Float64 mean %v, want ~0.5", mean)
	}
}

func TestRndIntn(t *testing.T) {
	r := NewRnd(2)
	seen := make([]int, 7)
	for i := 0; i < 70000; i++ {
		v := r.Intn(7)
		if v < 0 || v >= 7 {
			t.Fatalf("FAIL: Intn(7) out of range: %v", v)
		}
		seen[v]++
	}
	for b, c := range seen {
		if c < 8000 || c > 12000 {
			t.Errorf("FAIL: Intn(7) bin %v count %v, want ~10000", b, c)
		}
	}
}

func TestRndSqrBias(t *testing.T) {
	r := NewRnd(3)
	sum := 0.0
	const n = 100000
	for i := 0; i < n; i++ {
		v := r.Sqr()
		if v < 0 || v >= 1 {
			t.Fatalf("FAIL: Sqr out of [0,1): %v", v)
		}
		sum += v
	}
	// E[U^2] = 1/3.
	mean := sum / n
	if math.Abs(mean-1.0/3.0) > 0.01 {
		t.Errorf("FAIL: Sqr mean %v, want ~0.333", mean)
	}

	lo, hi := 0, 0
	for i := 0; i < 10000; i++ {
		if r.SqrIntn(10) < 5 {
			lo++
		}
		if r.SqrIntnInv(10) >= 5 {
			hi++
		}
	}
	if lo < 6000 {
		t.Errorf("FAIL: SqrIntn not biased toward 0: %v/10000 below midpoint", lo)
	}
	if hi < 6000 {
		t.Errorf("FAIL: SqrIntnInv not biased toward n-1: %v/10000 above midpoint", hi)
	}
}

func TestRndPowFastPaths(t *testing.T) {
	powers := []float64{0.25, 0.5, 1.0, 1.5, 1.75, 2.0, 3.0, 4.0}
	for _, p := range powers {
		fast := NewRnd(11)
		ref := NewRnd(11)
		for i := 0; i < 1000; i++ {
			got := fast.Pow(p)
			want := math.Pow(ref.Float64(), p)
			if math.Abs(got-want) > 1e-12 {
				t.Fatalf("FAIL: Pow(%v) draw %v: got %v, want %v", p, i, got, want)
			}
		}
	}
}

func TestRndPowIntn(t *testing.T) {
	r := NewRnd(12)
	for i := 0; i < 10000; i++ {
		v := r.PowIntn(1.5, 9)
		if v < 0 || v >= 9 {
			t.Fatalf("FAIL: PowIntn out of range: %v", v)
		}
	}
}

func TestRndLog(t *testing.T) {
	r := NewRnd(13)
	small := 0
	for i := 0; i < 10000; i++ {
		v := r.Log()
		if v <= -1 || v >= 1 {
			t.Fatalf("FAIL: Log out of (-1,1): %v", v)
		}
		if math.Abs(v) < 0.1 {
			small++
		}
	}
	// Density peaks at zero; well over the uniform 10% should land near it.
	if small < 2000 {
		t.Errorf("FAIL: Log density not concentrated near 0: %v/10000 in (-0.1,0.1)", small)
	}

	for i := 0; i < 10000; i++ {
		v := r.LogIntn(10)
		if v < 0 || v >= 10 {
			t.Fatalf("FAIL: LogIntn out of range: %v", v)
		}
	}
}

func TestRndTPDF(t *testing.T) {
	r := NewRnd(14)
	sum := 0.0
	const n = 100000
	for i := 0; i < n; i++ {
		v := r.TPDF()
		if v <= -1 || v >= 1 {
			t.Fatalf("FAIL: TPDF out of (-1,1): %v", v)
		}
		sum += v
	}
	if math.Abs(sum/n) > 0.01 {
		t.Errorf("FAIL: TPDF mean %v, want ~0", sum/n)
	}
}

func TestRndGaussian(t *testing.T) {
	r := NewRnd(15)
	sum, sumsq := 0.0, 0.0
	const n = 100000
	for i := 0; i < n; i++ {
		v := r.Gaussian()
		sum += v
		sumsq += v * v
	}
	mean := sum / n
	variance := sumsq/n - mean*mean
	if math.Abs(mean) > 0.02 {
		t.Errorf("FAIL: Gaussian mean %v, want ~0", mean)
	}
	if math.Abs(variance-1) > 0.05 {
		t.Errorf("FAIL: Gaussian variance %v, want ~1", variance)
	}
}

func TestRndBit(t *testing.T) {
	r := NewRnd(16)
	ones := 0
	const n = 100000
	for i := 0; i < n; i++ {
		b := r.Bit()
		if b != 0 && b != 1 {
			t.Fatalf("FAIL: Bit returned %v", b)
		}
		ones += b
	}
	if ones < 49000 || ones > 51000 {
		t.Errorf("FAIL: Bit ones %v/%v, want ~50%%", ones, n)
	}
}

type countingSource struct {
	n uint32
}

func (s *countingSource) Uint32() uint32 {
	s.n++
	return s.n
}

func TestRndExternalSource(t *testing.T) {
	r := NewRndSource(&countingSource{})

	// Two 32-bit words per draw, low word first.
	want := uint64(1) | uint64(2)<<32
	if got := r.Raw(); got != want {
		t.Errorf("FAIL: source draw: got %#x, want %#x", got, want)
	}
	want = uint64(3) | uint64(4)<<32
	if got := r.Raw(); got != want {
		t.Errorf("FAIL: source draw: got %#x, want %#x", got, want)
	}
}
