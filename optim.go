// Package biteopt implements a stochastic derivative-free solver for
// bound-constrained global minimization of black-box objective
// functions.  The root package holds the contracts and machinery
// shared by every solver variant: the pseudo-random stream (Rnd), the
// adaptive choice selector (Sel), the rank-sorted population (Pop)
// with its parallel-population bank (ParSet), and the common optimizer
// substrate (Base).  The solvers themselves live in the sphere, de,
// and bite subpackages; bite.Minimize is the usual entry point.
package biteopt

import (
	"fmt"
	"math"
)

// CostSentinel is the large finite cost substituted for NaN objective
// values.  Using a finite value keeps population ordering a valid
// total order and keeps NaN out of centroid and selector arithmetic.
const CostSentinel = 1e300

// FixCost returns v, or CostSentinel if v is NaN.
func FixCost(v float64) float64 {
	if math.IsNaN(v) {
		return CostSentinel
	}
	return v
}

// Problem defines a minimization problem: axis-aligned box bounds and
// an objective function.  The objective must be framed so that lower
// values are better.  It must be callable any number of times with any
// vector inside (or near) the bounds, and should return NaN rather
// than panic if it cannot produce a finite value.
type Problem interface {
	// Bounds returns the lower and upper bound vectors.  Both must
	// have the same length; equal bounds on a coordinate are legal but
	// fix that coordinate.
	Bounds() (low, up []float64)

	// Objective evaluates the variables in v and returns the cost.
	Objective(v []float64) float64
}

// Optimizer is the stepping contract shared by all solver variants in
// this module.  An Optimizer is single-threaded: it must never be
// stepped from two goroutines at once, but independent instances are
// safe to run in parallel when each owns its Rnd.
type Optimizer interface {
	// Init (re)starts the optimizer.  If start is non-nil it is used
	// as the center of the initial sampling cloud; radius scales the
	// initial standard deviation relative to the default.
	Init(rnd *Rnd, start []float64, radius float64)

	// Optimize performs one iteration involving (at most) one
	// objective evaluation and returns the number of consecutive
	// non-improving iterations so far.
	Optimize(rnd *Rnd) int

	// Best returns the best parameter vector and cost seen since Init.
	// The returned slice is owned by the optimizer.
	Best() (x []float64, cost float64)

	// Last returns the most recently evaluated parameter vector and
	// its cost.  The returned slice is owned by the optimizer.
	Last() (x []float64, cost float64)
}

type boxProblem struct {
	f       func([]float64) float64
	low, up []float64
}

func (p *boxProblem) Bounds() (low, up []float64)   { return p.low, p.up }
func (p *boxProblem) Objective(v []float64) float64 { return p.f(v) }

// NewProblem wraps a plain objective function and bound vectors as a
// Problem.  The bound slices are retained, not copied.
func NewProblem(f func([]float64) float64, low, up []float64) Problem {
	return &boxProblem{f: f, low: low, up: up}
}

// ValidateBounds checks the caller-facing preconditions on a problem's
// bounds.  The solvers themselves do not re-check these per step.
func ValidateBounds(low, up []float64) error {
	if len(low) == 0 {
		return fmt.Errorf("biteopt: empty bounds")
	}
	if len(low) != len(up) {
		return fmt.Errorf("biteopt: bounds length mismatch: %v != %v", len(low), len(up))
	}
	for i := range low {
		if math.IsNaN(low[i]) || math.IsInf(low[i], 0) ||
			math.IsNaN(up[i]) || math.IsInf(up[i], 0) {
			return fmt.Errorf("biteopt: non-finite bound at index %v", i)
		}
		if low[i] > up[i] {
			return fmt.Errorf("biteopt: low[%v] > up[%v] (%v > %v)", i, i, low[i], up[i])
		}
	}
	return nil
}

// CalcPopSize returns the default population size for the core solver
// given the parameter count: a blend of a linear ramp (good for low
// dimensions) and a sqrt ramp (good for high dimensions).
func CalcPopSize(n int) int {
	cx := math.Tanh(0.008 * float64(n))
	psl := 10 + float64(n)*3
	psh := 11.0 * math.Sqrt(float64(n))
	return int(psl*(1-cx) + psh*cx + 0.5)
}

// ObjectivePrinter wraps a Problem and prints every evaluation.
// Useful when watching a run converge.
type ObjectivePrinter struct {
	Problem
	Count int
}

func NewObjectivePrinter(p Problem) *ObjectivePrinter {
	return &ObjectivePrinter{Problem: p}
}

func (op *ObjectivePrinter) Objective(v []float64) float64 {
	val := op.Problem.Objective(v)

	op.Count++
	fmt.Print(op.Count, " ")
	for _, x := range v {
		fmt.Print(x, " ")
	}
	fmt.Println("    ", val)

	return val
}
