package bench

import (
	"testing"

	"github.com/rwcarlsen/biteopt/bite"
)

const tol = 0.01

func TestOptimaSanity(t *testing.T) {
	for _, fn := range AllFuncs {
		low, up := fn.Bounds()

		if len(low) != len(up) {
			t.Errorf("FAIL:%v bounds length mismatch", fn.Name())
			continue
		}

		for _, opt := range fn.Optima() {
			if len(opt.Pos) != len(low) {
				t.Errorf("FAIL:%v optimum dim %v != %v",
					fn.Name(), len(opt.Pos), len(low))
				continue
			}

			if !InsideBounds(opt.Pos, fn) {
				t.Errorf("FAIL:%v optimum outside bounds", fn.Name())
				continue
			}

			got := fn.Eval(opt.Pos)
			thresh := Thresh(fn, tol)

			if got > opt.Val+thresh || got < opt.Val-thresh {
				t.Errorf("FAIL:%v f(optimum)=%v, catalog says %v",
					fn.Name(), got, opt.Val)
			}
		}
	}
}

func TestAllFuncs(t *testing.T) {
	for _, fn := range AllFuncs {
		iters := 20000
		if len(fn.Optima()[0].Pos) > 2 {
			iters = 100000
		}

		best, neval, err := Benchmark(fn, tol, iters, bite.Attempts(10))
		optimum := fn.Optima()[0].Val

		if err != nil {
			t.Errorf("FAIL:%v %v evals: optimum is %v, got %v",
				fn.Name(), neval, optimum, best.Val)
		} else {
			t.Logf("[pass:%v] %v evals: optimum is %v, got %v",
				fn.Name(), neval, optimum, best.Val)
		}
	}
}

func TestRunStats(t *testing.T) {
	fn := Sphere{NDim: 2}

	s, err := RunStats(fn, tol, 5000, 5)
	if err != nil {
		t.Fatal(err)
	}

	if s.Successes != 5 {
		t.Errorf("FAIL: %v/5 runs converged", s.Successes)
	} else {
		t.Logf("[pass] evals mean %v std %v median %v; cost mean %v",
			s.MeanEvals, s.StdEvals, s.MedianEvals, s.MeanCost)
	}

	if s.MeanEvals <= 0 {
		t.Errorf("FAIL: non-positive mean eval count %v", s.MeanEvals)
	}

	if s.MedianEvals <= 0 {
		t.Errorf("FAIL: non-positive median eval count %v", s.MedianEvals)
	}
}

func TestAsProblem(t *testing.T) {
	fn := Ackley{}
	p := AsProblem(fn)

	low, up := p.Bounds()
	flow, fup := fn.Bounds()

	for i := range low {
		if low[i] != flow[i] || up[i] != fup[i] {
			t.Errorf("FAIL: bounds differ at %v", i)
		}
	}

	x := []float64{1.5, -2.5}
	if p.Objective(x) != fn.Eval(x) {
		t.Errorf("FAIL: objective differs from Eval")
	}
}
