// Package sphere implements a converging hyper-spheroid optimizer: a
// simple strategy that samples on a sphere around a weighted centroid
// whose radius contracts as the population improves.  It converges
// quickly on smooth problems and serves as a helper strategy of the
// core solver.
package sphere

import (
	"math"

	"github.com/rwcarlsen/biteopt"
)

// Opt is the hyper-spheroid optimizer.  Create with New, then call
// Init before stepping with Optimize.
type Opt struct {
	biteopt.Base

	cent []float64 // working centroid, normalized [0,1] space
	dir  []float64 // sampling direction scratch

	wCent []float64 // weighting coefficients for the centroid
	wRad  []float64 // weighting coefficients for the radius

	jitMult float64
	jitOffs float64

	radius  float64
	evalFac float64
	cure    int // evaluations done in the current batch
	curem   int // batch length

	centPowSel *biteopt.Sel
	radPowSel  *biteopt.Sel
	evalFacSel *biteopt.Sel
}

// New returns an optimizer for p with the default population size.
func New(p biteopt.Problem) *Opt {
	o := &Opt{
		centPowSel: biteopt.NewSel(4, 1.5),
		radPowSel:  biteopt.NewSel(4, 1.5),
		evalFacSel: biteopt.NewSel(3, 1.5),
	}
	o.Prob = p
	o.AddSel(o.centPowSel, "CentPowSel")
	o.AddSel(o.radPowSel, "RadPowSel")
	o.AddSel(o.evalFacSel, "EvalFacSel")

	low, _ := p.Bounds()
	o.UpdateDims(len(low), 0)

	return o
}

// UpdateDims resizes the optimizer for paramCount dimensions.
// popSize0 overrides the default population size when positive.
func (o *Opt) UpdateDims(paramCount, popSize0 int) {
	popSize := popSize0
	if popSize <= 0 {
		popSize = 14 + paramCount
	}

	if paramCount == o.ParamCount && popSize == o.PopSize() {
		return
	}

	o.InitBuffers(paramCount, popSize)

	o.cent = make([]float64, paramCount)
	o.dir = make([]float64, paramCount)
	o.wCent = make([]float64, popSize)
	o.wRad = make([]float64, popSize)

	o.jitMult = 5.0 / float64(paramCount)
	o.jitOffs = 1.0 - o.jitMult*0.5
}

// Init (re)starts the optimizer.  A non-nil start becomes the initial
// centroid and is evaluated first; radius scales the initial sphere
// radius relative to the default.
func (o *Opt) Init(rnd *biteopt.Rnd, start []float64, radius float64) {
	o.ResetCommonVars(rnd)

	o.radius = 0.5 * radius
	o.evalFac = 2.0
	o.cure = 0
	o.curem = int(math.Ceil(float64(o.CurPopSize()) * o.evalFac))

	if start == nil {
		for i := range o.cent {
			o.cent[i] = 0.5
		}

		o.DoInitEvals = false
		return
	}

	for i := range o.cent {
		d := o.MaxValues[i] - o.MinValues[i]
		o.cent[i] = wrapNorm(rnd, (start[i]-o.MinValues[i])/d)
	}
}

// Optimize performs one iteration with a single objective evaluation
// and returns the number of non-improving iterations so far.
func (o *Opt) Optimize(rnd *biteopt.Rnd) int {
	params := o.CurParams()

	if o.DoInitEvals {
		o.DoInitEvals = false

		for i := range params {
			params[i] = biteopt.Param(o.cent[i] * biteopt.MantMultF)
			o.NewValues[i] = o.RealValue(params, i)
		}
	} else {
		s2 := 1e-300

		for i := range o.dir {
			o.dir[i] = rnd.Float64() - 0.5
			s2 += o.dir[i] * o.dir[i]
		}

		d := o.radius / math.Sqrt(s2)

		if o.ParamCount > 4 {
			for i := range params {
				v := wrapNorm(rnd, o.cent[i]+o.dir[i]*d)
				params[i] = biteopt.Param(v * biteopt.MantMultF)
				o.NewValues[i] = o.RealValue(params, i)
			}
		} else {
			// Low dimensions get per-coordinate radius jitter, to
			// break the sphere's symmetry.
			for i := range params {
				m := o.jitOffs + rnd.Float64()*o.jitMult
				v := wrapNorm(rnd, o.cent[i]+o.dir[i]*d*m)
				params[i] = biteopt.Param(v * biteopt.MantMultF)
				o.NewValues[i] = o.RealValue(params, i)
			}
		}
	}

	cost := biteopt.FixCost(o.Prob.Objective(o.NewValues))
	o.LastCost = cost

	o.Update(cost, params, false, 0)
	o.UpdateBest(cost, o.NewValues, -1)

	o.AvgCost += cost
	o.cure++

	if o.cure >= o.curem {
		o.AvgCost /= float64(o.cure)

		if o.AvgCost < o.HiBound {
			o.HiBound = o.AvgCost
			o.ApplyIncr(1)
		} else {
			o.ApplyDecr()
		}

		o.ResetPos()
		o.AvgCost = 0
		o.cure = 0

		o.updateSphere(rnd)

		o.curem = int(math.Ceil(float64(o.CurPopSize()) * o.evalFac))
	}

	if cost < o.HiBound {
		o.StallCount = 0
	} else {
		o.StallCount++
	}

	return o.StallCount
}

// updateSphere recalculates the centroid and radius from the ranked
// population, with rank weighting chosen by the selectors.
func (o *Opt) updateSphere(rnd *biteopt.Rnd) {
	wCentTab := [4]float64{4.5, 6.0, 7.5, 10.0}
	wRadTab := [4]float64{14.0, 16.0, 18.0, 20.0}
	evalFacs := [3]float64{2.1, 2.0, 1.9}

	centFac := wCentTab[o.Select(o.centPowSel, rnd)]
	radFac := wRadTab[o.Select(o.radPowSel, rnd)]
	o.evalFac = evalFacs[o.Select(o.evalFacSel, rnd)]

	n := o.CurPopSize()
	lm := 1.0 / float64(o.curem)
	s1 := 0.0
	s2 := 0.0

	for i := 0; i < n; i++ {
		l := 1.0 - float64(i)*lm

		v1 := math.Pow(l, centFac)
		o.wCent[i] = v1
		s1 += v1

		v2 := math.Pow(l, radFac)
		o.wRad[i] = v2
		s2 += v2
	}

	s1 = 1.0 / s1
	s2 = 1.0 / s2

	row := o.Ordered(0)
	w := o.wCent[0] * s1

	for i := range o.cent {
		o.cent[i] = float64(row[i]) * biteopt.MantMultIF * w
	}

	for j := 1; j < n; j++ {
		row = o.Ordered(j)
		w = o.wCent[j] * s1

		for i := range o.cent {
			o.cent[i] += float64(row[i]) * biteopt.MantMultIF * w
		}
	}

	o.radius = 0.0

	for j := 0; j < n; j++ {
		row = o.Ordered(j)
		s := 0.0

		for i := range o.cent {
			d := float64(row[i])*biteopt.MantMultIF - o.cent[i]
			s += d * d
		}

		o.radius += s * o.wRad[j]
	}

	o.radius = math.Sqrt(o.radius * s2)
}

// wrapNorm keeps a normalized coordinate within [0, 1] by random
// reflection over the violated boundary.
func wrapNorm(rnd *biteopt.Rnd, v float64) float64 {
	if v < 0 {
		if v > -1 {
			return rnd.Float64() * -v
		}

		return rnd.Float64()
	}

	if v > 1 {
		if v < 2 {
			return 1 - rnd.Float64()*(v-1)
		}

		return rnd.Float64()
	}

	return v
}
