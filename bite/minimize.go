package bite

import (
	"database/sql"
	"fmt"
	"math"

	"github.com/petar/GoLLRB/llrb"

	"github.com/rwcarlsen/biteopt"
)

// Table names used for recording minimization progress to a database.
var (
	TblAttempts = "biteattempts"
	TblBest     = "bitebest"
)

// Option modifies a Minimizer prior to the run.
type Option func(*Minimizer)

// Depth sets the number of coupled optimizers in the ensemble.  It
// depends on the complexity of the objective function; if the default
// does not produce a good solution, it should be increased together
// with the iteration count.  Values over 32 are not useful.
func Depth(m int) Option {
	return func(mz *Minimizer) {
		mz.Depth = m
	}
}

// Attempts sets the number of independent restarts.  The best solution
// over all attempts is returned.
func Attempts(n int) Option {
	return func(mz *Minimizer) {
		mz.Attempts = n
	}
}

// StopCrit enables early attempt termination after
// 128*N*stopc consecutive non-improving iterations.  Values below 5
// are usually too aggressive.
func StopCrit(stopc int) Option {
	return func(mz *Minimizer) {
		mz.StopCrit = stopc
	}
}

// Target stops the whole run as soon as a cost not exceeding cost is
// found.
func Target(cost float64) Option {
	return func(mz *Minimizer) {
		mz.Target = cost
		mz.UseTarget = true
	}
}

// Seed sets the seed of the default random stream.
func Seed(s int64) Option {
	return func(mz *Minimizer) {
		mz.Seed = s
	}
}

// WithSource substitutes an external random generator for the default
// stream.  Seed is ignored when a source is set.
func WithSource(src biteopt.Source) Option {
	return func(mz *Minimizer) {
		mz.Src = src
	}
}

// DB enables recording of per-attempt outcomes and global-best
// improvements into db.
func DB(db *sql.DB) Option {
	return func(mz *Minimizer) {
		mz.Db = db
	}
}

// StartX sets the initial point around which the initial populations
// are sampled.  The default is the center of the bounds.
func StartX(x []float64) Option {
	return func(mz *Minimizer) {
		mz.Start = x
	}
}

// Radius scales the initial sampling spread, relative to the default.
func Radius(r float64) Option {
	return func(mz *Minimizer) {
		mz.Radius = r
	}
}

// PopSize overrides the default population size formula.
func PopSize(n int) Option {
	return func(mz *Minimizer) {
		mz.PopSize = n
	}
}

// Result holds the outcome of a minimization run.
type Result struct {
	// X and Cost are the best solution over all attempts.
	X    []float64
	Cost float64

	// Evals is the total number of iterations performed; each involved
	// at most one objective evaluation.
	Evals int

	// AttemptCosts are the best costs of the individual attempts, in
	// ascending order.  Early termination on Target leaves it shorter
	// than the configured attempt count.
	AttemptCosts []float64
}

// Minimizer runs repeated ensemble optimizations of a problem.  Zero
// fields are given defaults by Minimize; most callers use the
// top-level Minimize function and Options instead of filling this
// struct directly.
type Minimizer struct {
	Prob  biteopt.Problem
	Iters int

	Depth    int
	Attempts int
	StopCrit int

	Target    float64
	UseTarget bool

	Seed int64
	Src  biteopt.Source

	Db *sql.DB

	Start   []float64
	Radius  float64
	PopSize int
}

// Minimize finds a minimum of f within the low/up box bounds using
// iters iterations per attempt.  It is self-optimizing and requires
// no tuning beyond the iteration budget; Options cover restarts,
// ensemble depth, early stopping, and progress recording.
func Minimize(f func([]float64) float64, low, up []float64, iters int, opts ...Option) (*Result, error) {
	if err := biteopt.ValidateBounds(low, up); err != nil {
		return nil, err
	}

	mz := &Minimizer{
		Prob:     biteopt.NewProblem(f, low, up),
		Iters:    iters,
		Depth:    1,
		Attempts: 10,
		Seed:     1,
		Radius:   1.0,
	}

	for _, opt := range opts {
		opt(mz)
	}

	return mz.Run()
}

// attempt is an llrb tree record of one restart's outcome.
type attempt struct {
	cost float64
	x    []float64
}

func (a attempt) Less(than llrb.Item) bool {
	return a.cost < than.(attempt).cost
}

// Run executes the configured minimization and returns the best
// solution over all attempts.
func (mz *Minimizer) Run() (*Result, error) {
	low, up := mz.Prob.Bounds()

	if err := biteopt.ValidateBounds(low, up); err != nil {
		return nil, err
	}
	if mz.Iters < 1 {
		return nil, fmt.Errorf("bite: iteration count %v < 1", mz.Iters)
	}
	if mz.Depth < 1 {
		return nil, fmt.Errorf("bite: depth %v < 1", mz.Depth)
	}
	if mz.Attempts < 1 {
		return nil, fmt.Errorf("bite: attempt count %v < 1", mz.Attempts)
	}
	if mz.Start != nil && len(mz.Start) != len(low) {
		return nil, fmt.Errorf("bite: start point length %v != %v",
			len(mz.Start), len(low))
	}

	var rnd *biteopt.Rnd
	if mz.Src != nil {
		rnd = biteopt.NewRndSource(mz.Src)
	} else {
		rnd = biteopt.NewRnd(mz.Seed)
	}

	opt := NewDeepSized(mz.Prob, mz.Depth, mz.PopSize)

	n := len(low)

	sct := 0
	if mz.StopCrit > 0 {
		sct = 128 * n * mz.StopCrit
	}

	// The per-attempt budget grows with ensemble depth, which needs
	// more iterations to develop its members.
	useIter := int(float64(mz.Iters) * math.Sqrt(float64(mz.Depth)))

	mz.initdb(n)

	res := &Result{X: make([]float64, n)}
	attempts := llrb.New()

	evals := 0
	finished := false

	for k := 0; k < mz.Attempts; k++ {
		opt.Init(rnd, mz.Start, mz.Radius)

		recCost := math.Inf(1)

		var i int
		for i = 0; i < useIter; i++ {
			sc := opt.Optimize(rnd)

			x, cost := opt.Best()

			if mz.Db != nil && cost < recCost {
				recCost = cost
				mz.recordBest(k, evals+i, cost, x)
			}

			if mz.UseTarget && cost <= mz.Target {
				evals++
				finished = true
				break
			}

			if sct > 0 && sc >= sct {
				evals++
				break
			}
		}

		evals += i

		x, cost := opt.Best()

		xc := make([]float64, n)
		copy(xc, x)
		attempts.InsertNoReplace(attempt{cost: cost, x: xc})

		mz.recordAttempt(k, evals, cost, x)

		if k == 0 || cost <= res.Cost {
			copy(res.X, x)
			res.Cost = cost
		}

		if finished {
			break
		}
	}

	res.Evals = evals

	res.AttemptCosts = make([]float64, 0, attempts.Len())
	for attempts.Len() > 0 {
		a := attempts.DeleteMin().(attempt)
		res.AttemptCosts = append(res.AttemptCosts, a.cost)
	}

	return res, nil
}

func (mz *Minimizer) initdb(n int) {
	if mz.Db == nil {
		return
	}

	s := "CREATE TABLE IF NOT EXISTS " + TblAttempts + " (attempt INTEGER,evals INTEGER,val REAL"
	s += xdbsql("define", n)
	s += ");"

	_, err := mz.Db.Exec(s)
	panicif(err)

	s = "CREATE TABLE IF NOT EXISTS " + TblBest + " (attempt INTEGER,iter INTEGER,val REAL"
	s += xdbsql("define", n)
	s += ");"

	_, err = mz.Db.Exec(s)
	panicif(err)
}

func (mz *Minimizer) recordAttempt(k, evals int, cost float64, x []float64) {
	if mz.Db == nil {
		return
	}

	n := len(x)
	s := "INSERT INTO " + TblAttempts + " (attempt,evals,val" + xdbsql("x", n) +
		") VALUES (?,?,?" + xdbsql("?", n) + ");"

	args := []interface{}{k, evals, cost}
	args = append(args, pos2iface(x)...)

	_, err := mz.Db.Exec(s, args...)
	panicif(err)
}

func (mz *Minimizer) recordBest(k, iter int, cost float64, x []float64) {
	if mz.Db == nil {
		return
	}

	n := len(x)
	s := "INSERT INTO " + TblBest + " (attempt,iter,val" + xdbsql("x", n) +
		") VALUES (?,?,?" + xdbsql("?", n) + ");"

	args := []interface{}{k, iter, cost}
	args = append(args, pos2iface(x)...)

	_, err := mz.Db.Exec(s, args...)
	panicif(err)
}

func xdbsql(op string, n int) string {
	s := ""
	for i := 0; i < n; i++ {
		if op == "?" {
			s += ",?"
		} else if op == "define" {
			s += fmt.Sprintf(",x%v REAL", i)
		} else if op == "x" {
			s += fmt.Sprintf(",x%v", i)
		} else {
			panic("invalid db op " + op)
		}
	}
	return s
}

func pos2iface(pos []float64) []interface{} {
	iface := []interface{}{}
	for _, v := range pos {
		iface = append(iface, v)
	}
	return iface
}

func panicif(err error) {
	if err != nil {
		panic(err.Error())
	}
}
