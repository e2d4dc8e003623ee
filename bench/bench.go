// Package bench provides benchmark optimization functions from
// http://en.wikipedia.org/wiki/Test_functions_for_optimization and
// tools for measuring solver performance on them.
package bench

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/rwcarlsen/biteopt"
	"github.com/rwcarlsen/biteopt/bite"
)

var (
	sin  = math.Sin
	cos  = math.Cos
	abs  = math.Abs
	exp  = math.Exp
	sqrt = math.Sqrt
)

var AllFuncs = []Func{
	Sphere{NDim: 2},
	Sphere{NDim: 10},
	Ackley{},
	Rastrigin{NDim: 2},
	Rastrigin{NDim: 10},
	CrossTray{},
	Eggholder{},
	HolderTable{},
	Schaffer2{},
	Styblinski{NDim: 1},
	Styblinski{NDim: 10},
	Rosenbrock{NDim: 2},
	Rosenbrock{NDim: 10},
}

// Point is a position in a function's domain together with its value.
type Point struct {
	Pos []float64
	Val float64
}

type Func interface {
	Eval(v []float64) float64
	Bounds() (low, up []float64)
	Optima() []Point
	Name() string
}

// AsProblem adapts a benchmark function to the solver's Problem
// contract.
func AsProblem(fn Func) biteopt.Problem {
	low, up := fn.Bounds()
	return biteopt.NewProblem(fn.Eval, low, up)
}

type Sphere struct {
	NDim int
}

func (fn Sphere) Name() string { return fmt.Sprintf("Sphere_%vD", fn.NDim) }

func (fn Sphere) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	tot := 0.0
	for _, x := range v {
		tot += x * x
	}
	return tot
}

func (fn Sphere) Bounds() (low, up []float64) {
	low = make([]float64, fn.NDim)
	up = make([]float64, fn.NDim)
	for i := range low {
		low[i] = -100
		up[i] = 100
	}
	return low, up
}

func (fn Sphere) Optima() []Point {
	return []Point{
		{Pos: make([]float64, fn.NDim), Val: 0},
	}
}

type Ackley struct{}

func (fn Ackley) Name() string { return "Ackley" }

func (fn Ackley) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -20*exp(-0.2*sqrt(0.5*(x*x+y*y))) -
		exp(0.5*(cos(2*math.Pi*x)+cos(2*math.Pi*y))) +
		20 + math.E
}

func (fn Ackley) Bounds() (low, up []float64) {
	return []float64{-5, -5}, []float64{5, 5}
}

func (fn Ackley) Optima() []Point {
	return []Point{
		{Pos: []float64{0, 0}, Val: 0},
	}
}

type Rastrigin struct {
	NDim int
}

func (fn Rastrigin) Name() string { return fmt.Sprintf("Rastrigin_%vD", fn.NDim) }

func (fn Rastrigin) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	tot := 10.0 * float64(len(v))
	for _, x := range v {
		tot += x*x - 10*cos(2*math.Pi*x)
	}
	return tot
}

func (fn Rastrigin) Bounds() (low, up []float64) {
	low = make([]float64, fn.NDim)
	up = make([]float64, fn.NDim)
	for i := range low {
		low[i] = -5.12
		up[i] = 5.12
	}
	return low, up
}

func (fn Rastrigin) Optima() []Point {
	return []Point{
		{Pos: make([]float64, fn.NDim), Val: 0},
	}
}

type CrossTray struct{}

func (fn CrossTray) Name() string { return "CrossTray" }

func (fn CrossTray) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -.0001 * math.Pow(abs(sin(x)*sin(y)*exp(abs(100-sqrt(x*x+y*y)/math.Pi)))+1, 0.1)
}

func (fn CrossTray) Bounds() (low, up []float64) {
	return []float64{-10, -10}, []float64{10, 10}
}

func (fn CrossTray) Optima() []Point {
	return []Point{
		{Pos: []float64{1.34941, -1.34941}, Val: -2.06261},
		{Pos: []float64{1.34941, 1.34941}, Val: -2.06261},
		{Pos: []float64{-1.34941, 1.34941}, Val: -2.06261},
		{Pos: []float64{-1.34941, -1.34941}, Val: -2.06261},
	}
}

type Eggholder struct{}

func (fn Eggholder) Name() string { return "Eggholder" }

func (fn Eggholder) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -(y+47)*sin(sqrt(abs(y+x/2+47))) - x*sin(sqrt(abs(x-(y+47))))
}

func (fn Eggholder) Bounds() (low, up []float64) {
	return []float64{-512, -512}, []float64{512, 512}
}

func (fn Eggholder) Optima() []Point {
	return []Point{
		{Pos: []float64{512, 404.2319}, Val: -959.6407},
	}
}

type HolderTable struct{}

func (fn HolderTable) Name() string { return "HolderTable" }

func (fn HolderTable) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -abs(sin(x) * cos(y) * exp(abs(1-sqrt(x*x+y*y)/math.Pi)))
}

func (fn HolderTable) Bounds() (low, up []float64) {
	return []float64{-10, -10}, []float64{10, 10}
}

func (fn HolderTable) Optima() []Point {
	return []Point{
		{Pos: []float64{8.05502, 9.66459}, Val: -19.2085},
		{Pos: []float64{-8.05502, 9.66459}, Val: -19.2085},
		{Pos: []float64{8.05502, -9.66459}, Val: -19.2085},
		{Pos: []float64{-8.05502, -9.66459}, Val: -19.2085},
	}
}

type Schaffer2 struct{}

func (fn Schaffer2) Name() string { return "Schaffer2" }

func (fn Schaffer2) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return 0.5 + (math.Pow(sin(x*x-y*y), 2)-0.5)/math.Pow(1+.0001*(x*x+y*y), 2)
}

func (fn Schaffer2) Bounds() (low, up []float64) {
	return []float64{-100, -100}, []float64{100, 100}
}

func (fn Schaffer2) Optima() []Point {
	return []Point{
		{Pos: []float64{0, 0}, Val: 0},
	}
}

type Styblinski struct {
	NDim int
}

func (fn Styblinski) Name() string { return fmt.Sprintf("Styblinski_%vD", fn.NDim) }

func (fn Styblinski) Eval(x []float64) float64 {
	if !InsideBounds(x, fn) {
		return math.Inf(1)
	}

	tot := 0.0
	for _, v := range x {
		tot += math.Pow(v, 4) - 16*math.Pow(v, 2) + 5*v
	}
	return tot / 2
}

func (fn Styblinski) Bounds() (low, up []float64) {
	low = make([]float64, fn.NDim)
	up = make([]float64, fn.NDim)
	for i := range low {
		low[i] = -5
		up[i] = 5
	}
	return low, up
}

func (fn Styblinski) Optima() []Point {
	pos := make([]float64, fn.NDim)
	for i := range pos {
		pos[i] = -2.903534
	}
	return []Point{
		{Pos: pos, Val: -39.16599 * float64(fn.NDim)},
	}
}

type Rosenbrock struct {
	NDim int
}

func (fn Rosenbrock) Name() string { return fmt.Sprintf("Rosenbrock_%vD", fn.NDim) }

func (fn Rosenbrock) Eval(x []float64) float64 {
	if !InsideBounds(x, fn) {
		return math.Inf(1)
	}

	tot := 0.0
	for i := 0; i < fn.NDim-1; i++ {
		tot += 100*math.Pow(x[i+1]-x[i]*x[i], 2) + math.Pow(x[i]-1, 2)
	}
	return tot
}

func (fn Rosenbrock) Bounds() (low, up []float64) {
	low = make([]float64, fn.NDim)
	up = make([]float64, fn.NDim)
	for i := range low {
		low[i] = -10
		up[i] = 10
	}
	return low, up
}

func (fn Rosenbrock) Optima() []Point {
	pos := make([]float64, fn.NDim)
	for i := range pos {
		pos[i] = 1
	}
	return []Point{
		{Pos: pos, Val: 0},
	}
}

// Thresh returns the convergence threshold for fn at relative
// tolerance tol: tol times the optimum magnitude, floored at 0.001 for
// zero-valued optima.
func Thresh(fn Func, tol float64) float64 {
	thresh := tol * abs(fn.Optima()[0].Val)
	if thresh < 0.001 {
		thresh = 0.001
	}
	return thresh
}

// Benchmark minimizes fn with an iters-per-attempt budget, stopping as
// soon as the known optimum is matched within relative tolerance tol.
// A non-nil error means the budget was exhausted without convergence;
// the best point found is still returned.
func Benchmark(fn Func, tol float64, iters int, opts ...bite.Option) (best Point, neval int, err error) {
	optimum := fn.Optima()[0].Val
	thresh := Thresh(fn, tol)

	low, up := fn.Bounds()

	opts = append(opts, bite.Target(optimum+thresh))

	res, err := bite.Minimize(fn.Eval, low, up, iters, opts...)
	if err != nil {
		return Point{}, 0, err
	}

	best = Point{Pos: res.X, Val: res.Cost}

	if abs(optimum-res.Cost) > thresh {
		return best, res.Evals, fmt.Errorf(
			"bench: %v did not converge: optimum %v, got %v",
			fn.Name(), optimum, res.Cost)
	}

	return best, res.Evals, nil
}

// Stats summarizes repeated Benchmark runs of one function.
type Stats struct {
	Runs      int
	Successes int

	// Evaluation count statistics over the successful runs.
	MeanEvals   float64
	StdEvals    float64
	MedianEvals float64

	// Best-cost statistics over all runs.
	MeanCost float64
	StdCost  float64
}

// RunStats benchmarks fn over runs independent seeded runs and
// summarizes the outcomes.
func RunStats(fn Func, tol float64, iters, runs int, opts ...bite.Option) (Stats, error) {
	s := Stats{Runs: runs}

	costs := make([]float64, 0, runs)
	evals := make([]float64, 0, runs)

	for k := 0; k < runs; k++ {
		ko := append([]bite.Option{bite.Seed(int64(k + 1))}, opts...)

		best, neval, err := Benchmark(fn, tol, iters, ko...)
		if err == nil {
			s.Successes++
			evals = append(evals, float64(neval))
		} else if best.Pos == nil {
			return s, err // setup error, not a convergence failure
		}

		costs = append(costs, best.Val)
	}

	s.MeanCost = stat.Mean(costs, nil)
	s.StdCost = stat.StdDev(costs, nil)

	if len(evals) > 0 {
		s.MeanEvals = stat.Mean(evals, nil)
		s.StdEvals = stat.StdDev(evals, nil)

		sort.Float64s(evals)
		s.MedianEvals = stat.Quantile(0.5, stat.Empirical, evals, nil)
	}

	return s, nil
}

func InsideBounds(p []float64, fn Func) bool {
	low, up := fn.Bounds()
	for i := range p {
		if p[i] < low[i] || p[i] > up[i] {
			return false
		}
	}
	return true
}
