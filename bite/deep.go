package bite

import "github.com/rwcarlsen/biteopt"

// Deep runs an ensemble of M coupled optimizers: the newly-obtained
// solution of the current optimizer is pushed into another one, which
// becomes current when the first stalls.  Compared to a single
// optimizer with M attempts, the ensemble trades raw convergence
// speed for a much better chance on complex multi-modal functions.
type Deep struct {
	opts []*Opt

	bestOpt *Opt
	curOpt  *Opt
	lastOpt *Opt
	pushOpt *Opt

	stallCount int
}

// NewDeep returns an ensemble of m optimizers for p.  m depends on
// the complexity of the objective; if the default iteration budget
// does not produce a good solution, it should be increased together
// with the iteration count.  m of 1 degrades to a plain optimizer.
func NewDeep(p biteopt.Problem, m int) *Deep {
	return NewDeepSized(p, m, 0)
}

// NewDeepSized is NewDeep with a population size override, applied to
// every member optimizer when positive.
func NewDeepSized(p biteopt.Problem, m, popSize0 int) *Deep {
	if m < 1 {
		m = 1
	}

	d := &Deep{opts: make([]*Opt, m)}

	for i := range d.opts {
		d.opts[i] = NewSized(p, popSize0)
	}

	return d
}

// OptCount returns the number of member optimizers.
func (d *Deep) OptCount() int { return len(d.opts) }

// Init (re)starts every member optimizer.  No objective evaluations
// are performed.
func (d *Deep) Init(rnd *biteopt.Rnd, start []float64, radius float64) {
	for _, o := range d.opts {
		o.Init(rnd, start, radius)
	}

	d.bestOpt = d.opts[0]
	d.curOpt = d.opts[0]
	d.lastOpt = d.curOpt
	d.stallCount = 0

	if len(d.opts) == 1 {
		d.pushOpt = d.curOpt
		return
	}

	for {
		d.pushOpt = d.opts[rnd.Intn(len(d.opts))]

		if d.pushOpt != d.curOpt {
			break
		}
	}
}

// Optimize performs one iteration with at most one objective
// evaluation, and returns the number of consecutive iterations in
// which no member optimizer improved.  The suggested plateau
// threshold is ParamCount*64.
func (d *Deep) Optimize(rnd *biteopt.Rnd) int {
	if len(d.opts) == 1 {
		d.stallCount = d.opts[0].Optimize(rnd)

		return d.stallCount
	}

	sc := d.curOpt.OptimizePush(rnd, d.pushOpt)
	d.lastOpt = d.curOpt

	if d.curOpt.BestCost <= d.bestOpt.BestCost {
		d.bestOpt = d.curOpt
	}

	if sc == 0 {
		d.stallCount = 0

		return 0
	}

	d.stallCount++

	// Rotate: continue from the push target and pick a new one.

	d.curOpt = d.pushOpt

	if len(d.opts) == 2 {
		if d.curOpt == d.opts[0] {
			d.pushOpt = d.opts[1]
		} else {
			d.pushOpt = d.opts[0]
		}
	} else {
		for {
			d.pushOpt = d.opts[rnd.Intn(len(d.opts))]

			if d.pushOpt != d.curOpt {
				break
			}
		}
	}

	return d.stallCount
}

// Best returns the best solution found by any member optimizer.
func (d *Deep) Best() (x []float64, cost float64) {
	return d.bestOpt.Best()
}

// Last returns the most recently evaluated solution.
func (d *Deep) Last() (x []float64, cost float64) {
	return d.lastOpt.Last()
}

// Sels returns the current member optimizer's selectors.
func (d *Deep) Sels() []*biteopt.Sel { return d.curOpt.Sels() }

// SelNames returns the current member optimizer's selector names.
func (d *Deep) SelNames() []string { return d.curOpt.SelNames() }
