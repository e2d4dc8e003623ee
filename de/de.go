// Package de implements a differential-evolution-alike solver: new
// solutions are composed from a rank-biased base vector plus an
// attenuated sum of random population member differences.  It suits
// multi-modal objectives where the population must stay spread out,
// and serves as a helper strategy of the core solver.
package de

import (
	"github.com/rwcarlsen/biteopt"
)

const pairCount = 3

// Opt is the differential-evolution optimizer.  Create with New, then
// call Init before stepping with Optimize.
type Opt struct {
	biteopt.Base

	popIdx [1 + 2*pairCount]int
}

// New returns an optimizer for p with the default population size.
func New(p biteopt.Problem) *Opt {
	o := &Opt{}
	o.Prob = p

	low, _ := p.Bounds()
	o.UpdateDims(len(low), 0)

	return o
}

// UpdateDims resizes the optimizer for paramCount dimensions.
// popSize0 overrides the default population size when positive.
func (o *Opt) UpdateDims(paramCount, popSize0 int) {
	popSize := popSize0
	if popSize <= 0 {
		popSize = 30 * paramCount
	}

	if paramCount == o.ParamCount && popSize == o.PopSize() {
		return
	}

	o.InitBuffers(paramCount, popSize)
}

// Init (re)starts the optimizer, seeding the whole population as a
// Gaussian cloud around start (or the range center), with spread
// proportional to radius.  The seeded solutions are evaluated lazily
// by the first PopSize Optimize calls.
func (o *Opt) Init(rnd *biteopt.Rnd, start []float64, radius float64) {
	o.ResetCommonVars(rnd)

	sd := 0.125 * radius

	if start == nil {
		for j := 0; j < o.PopSize(); j++ {
			row := o.Ordered(j)
			for i := range row {
				row[i] = biteopt.WrapParam(rnd,
					biteopt.GaussianInt(rnd, sd, biteopt.MantMult>>1))
			}
		}
	} else {
		o.SetStart(start)

		p0 := o.Ordered(0)
		for i := range p0 {
			p0[i] = biteopt.WrapParam(rnd, o.StartParams[i])
		}

		for j := 1; j < o.PopSize(); j++ {
			row := o.Ordered(j)
			for i := range row {
				row[i] = biteopt.WrapParam(rnd,
					biteopt.GaussianInt(rnd, sd, p0[i]))
			}
		}
	}

	o.DoInitEvals = true
}

// Optimize performs one iteration with a single objective evaluation
// and returns the number of non-improving iterations so far.
func (o *Opt) Optimize(rnd *biteopt.Rnd) int {
	if o.DoInitEvals {
		p := o.Ordered(o.CurPopPos())

		for i := range o.NewValues {
			o.NewValues[i] = o.RealValue(p, i)
		}

		cost := biteopt.FixCost(o.Prob.Objective(o.NewValues))
		o.LastCost = cost

		o.UpdateBest(cost, o.NewValues, o.Update(cost, p, false, 0))

		if o.CurPopPos() == o.PopSize() {
			o.DoInitEvals = false
		}

		return 0
	}

	tmp := o.CurParams()
	for i := range tmp {
		tmp[i] = 0
	}

	// Rank-biased base vector, strongly preferring the best.

	r1 := rnd.Sqr()
	si1 := int(r1 * r1 * float64(o.CurPopSize()))
	rp1 := o.Ordered(si1)

	pc := len(o.popIdx)
	o.popIdx[0] = si1
	pp := 1

	if o.CurPopSize()-1 <= pc {
		for pp < pc {
			o.popIdx[pp] = rnd.Intn(o.CurPopSize())
			pp++
		}
	} else {
		for pp < pc {
			sii := rnd.Intn(o.CurPopSize())

			collides := false
			for j := 0; j < pp; j++ {
				if o.popIdx[j] == sii {
					collides = true
					break
				}
			}

			if !collides {
				o.popIdx[pp] = sii
				pp++
			}
		}
	}

	for j := 0; j < pairCount; j++ {
		rp2 := o.Ordered(o.popIdx[1+j*2])
		rp3 := o.Ordered(o.popIdx[2+j*2])

		for i := range tmp {
			tmp[i] += rp2[i] - rp3[i]
		}
	}

	// TPDF bit randomization of a single coordinate.

	if rnd.Bit() != 0 {
		k := rnd.Intn(o.ParamCount)
		b := rnd.Intn(biteopt.MantBits)

		tmp[k] += (biteopt.Param(rnd.Bit()) << b) -
			(biteopt.Param(rnd.Bit()) << b)
	}

	for i := range tmp {
		tmp[i] = rp1[i] + (tmp[i] >> 2)
	}

	for i := range tmp {
		tmp[i] = biteopt.WrapParam(rnd, tmp[i])
		o.NewValues[i] = o.RealValue(tmp, i)
	}

	cost := biteopt.FixCost(o.Prob.Objective(o.NewValues))
	o.LastCost = cost

	p := o.Update(cost, tmp, false, 0)

	if p < o.CurPopSize() {
		o.UpdateBest(cost, o.NewValues, p)

		// A population collapsed to a single cost level has stopped
		// making progress even though insertions succeed.
		if o.RankOf(0) == o.RankOf(o.CurPopSize()-1) {
			o.StallCount++
		} else {
			o.StallCount = 0
		}
	} else {
		o.StallCount++
	}

	return o.StallCount
}
