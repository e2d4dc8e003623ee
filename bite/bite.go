// Package bite implements the core adaptive solver and its ensemble
// and driver layers.  The solver maintains a ranked population and a
// tree of probabilistic selectors that routes every step to one of a
// set of solution generators, rewarding generators whose solutions
// enter the population.  Minimize is the usual top-level entry point.
package bite

import (
	"math"

	"github.com/rwcarlsen/biteopt"
	"github.com/rwcarlsen/biteopt/de"
	"github.com/rwcarlsen/biteopt/sphere"
)

// Opt is the core optimizer.  Create with New, call Init, then step
// with Optimize.  The suggested plateau threshold for the returned
// stall count is ParamCount*128, but a hard iteration limit should
// always accompany it.
type Opt struct {
	biteopt.Base

	// Method-routing selector tree.
	methodSel *biteopt.Sel
	m1Sel     *biteopt.Sel
	m1aSel    *biteopt.Sel
	m1bSel    *biteopt.Sel
	m1cSel    *biteopt.Sel
	m2Sel     *biteopt.Sel
	m2bSel    *biteopt.Sel

	popChangeIncrSel *biteopt.Sel
	popChangeDecrSel *biteopt.Sel
	auxOpt2Sel       *biteopt.Sel
	parPopPSel       [8]*biteopt.Sel
	altPopPSel       *biteopt.Sel
	altPopSel        [4]*biteopt.Sel
	oldPopSel        *biteopt.Sel
	minSolPwrSel     [4]*biteopt.Sel
	minSolMulSel     [4]*biteopt.Sel

	// Per-generator tuning selectors.
	bitmaskAllpSel      *biteopt.Sel
	bitmaskMoveAsyncSel *biteopt.Sel
	bitmaskMoveSpanSel  *biteopt.Sel
	diffBestModeSel     *biteopt.Sel
	diffAltModeSel      *biteopt.Sel
	diffPairsModeSel    *biteopt.Sel
	diffOldModeSel      *biteopt.Sel
	centroidMixModeSel  *biteopt.Sel
	entropyMixFacSel    *biteopt.Sel
	paramCrossModeSel   *biteopt.Sel
	oldMixPowSel        *biteopt.Sel
	clusterModeSel      *biteopt.Sel
	clusterNumSel       *biteopt.Sel
	clusterSpanSel      [2]*biteopt.Sel

	// Older solutions, retained probabilistically; a diversity
	// reservoir for some generators.
	oldPops [2]*biteopt.Pop

	doEval bool

	auxOpt     *sphere.Opt // spheroid helper optimizer
	auxOptPop  *biteopt.Pop
	auxOpt2    *de.Opt // differential-evolution helper optimizer
	auxOpt2Pop *biteopt.Pop
	useAuxOpt  int

	popIdx  [7]int
	crossRp [8][]biteopt.Param
}

// New returns an optimizer for p with the default population size.
func New(p biteopt.Problem) *Opt {
	return NewSized(p, 0)
}

// NewSized returns an optimizer for p.  popSize0 overrides the
// default population size when positive.
func NewSized(p biteopt.Problem, popSize0 int) *Opt {
	o := &Opt{}
	o.Prob = p

	o.methodSel = o.newSel(4, "MethodSel")
	o.m1Sel = o.newSel(4, "M1Sel")
	o.m1aSel = o.newSel(3, "M1ASel")
	o.m1bSel = o.newSel(4, "M1BSel")
	o.m1cSel = o.newSel(3, "M1CSel")
	o.m2Sel = o.newSel(2, "M2Sel")
	o.m2bSel = o.newSel(5, "M2BSel")
	o.popChangeIncrSel = o.newSel(2, "PopChangeIncrSel")
	o.popChangeDecrSel = o.newSel(2, "PopChangeDecrSel")
	o.auxOpt2Sel = o.newSel(2, "AuxOpt2Sel")
	for i := range o.parPopPSel {
		o.parPopPSel[i] = o.newSel(2, "ParPopPSel")
	}
	o.altPopPSel = o.newSel(2, "AltPopPSel")
	for i := range o.altPopSel {
		o.altPopSel[i] = o.newSel(2, "AltPopSel")
	}
	o.oldPopSel = o.newSel(2, "OldPopSel")
	for i := range o.minSolPwrSel {
		o.minSolPwrSel[i] = o.newSel(4, "MinSolPwrSel")
	}
	for i := range o.minSolMulSel {
		o.minSolMulSel[i] = o.newSel(4, "MinSolMulSel")
	}
	o.bitmaskAllpSel = o.newSel(2, "BitmaskAllpSel")
	o.bitmaskMoveAsyncSel = o.newSel(2, "BitmaskMoveAsyncSel")
	o.bitmaskMoveSpanSel = o.newSel(4, "BitmaskMoveSpanSel")
	o.diffBestModeSel = o.newSel(2, "DiffBestModeSel")
	o.diffAltModeSel = o.newSel(2, "DiffAltModeSel")
	o.diffPairsModeSel = o.newSel(2, "DiffPairsModeSel")
	o.diffOldModeSel = o.newSel(2, "DiffOldModeSel")
	o.centroidMixModeSel = o.newSel(4, "CentroidMixModeSel")
	o.entropyMixFacSel = o.newSel(4, "EntropyMixFacSel")
	o.paramCrossModeSel = o.newSel(2, "ParamCrossModeSel")
	o.oldMixPowSel = o.newSel(4, "OldMixPowSel")
	o.clusterModeSel = o.newSel(2, "ClusterModeSel")
	o.clusterNumSel = o.newSel(4, "ClusterNumSel")
	o.clusterSpanSel[0] = o.newSel(4, "ClusterSpanSel")
	o.clusterSpanSel[1] = o.newSel(4, "ClusterSpanSel")

	o.oldPops[0] = &biteopt.Pop{}
	o.oldPops[1] = &biteopt.Pop{}
	o.auxOptPop = &biteopt.Pop{}
	o.auxOpt2Pop = &biteopt.Pop{}

	low, _ := p.Bounds()
	o.updateDims(len(low), popSize0)

	return o
}

func (o *Opt) newSel(count int, name string) *biteopt.Sel {
	s := biteopt.NewSel(count, 1.5)
	o.AddSel(s, name)
	return s
}

func (o *Opt) updateDims(paramCount, popSize0 int) {
	popSize := popSize0
	if popSize <= 0 {
		popSize = biteopt.CalcPopSize(paramCount)
	}

	o.InitBuffers(paramCount, popSize)
	o.Pars.SetCount(5)

	o.auxOpt = sphere.New(o.Prob)
	o.auxOpt.UpdateDims(paramCount, 11+popSize/3)
	o.auxOptPop.Init(paramCount, popSize)

	o.auxOpt2 = de.New(o.Prob)
	o.auxOpt2.UpdateDims(paramCount, popSize)
	o.auxOpt2Pop.Init(paramCount, popSize)

	o.oldPops[0].Init(paramCount, popSize)
	o.oldPops[1].Init(paramCount, popSize)

	for i := range o.crossRp {
		o.crossRp[i] = nil
	}
}

// Init (re)starts the optimizer.  No objective evaluations are
// performed; the first PopSize Optimize calls evaluate the initial
// population.
func (o *Opt) Init(rnd *biteopt.Rnd, start []float64, radius float64) {
	o.ResetCommonVars(rnd)

	o.StartSD = 0.25 * radius
	o.SetStart(start)

	o.auxOpt.Init(rnd, start, radius)
	o.auxOpt2.Init(rnd, start, radius)
	o.useAuxOpt = 0

	o.auxOptPop.ResetPos()
	o.auxOpt2Pop.ResetPos()
	o.oldPops[0].ResetPos()
	o.oldPops[1].ResetPos()
}

// Optimize performs one iteration with at most one objective
// evaluation, and returns the number of non-improving iterations so
// far.
func (o *Opt) Optimize(rnd *biteopt.Rnd) int {
	return o.OptimizePush(rnd, nil)
}

// OptimizePush is Optimize with cross-pollination: a successful
// solution is also pushed into push's population, which the ensemble
// uses to couple its member optimizers.
func (o *Opt) OptimizePush(rnd *biteopt.Rnd, push *Opt) int {
	if o.DoInitEvals {
		params := o.CurParams()
		o.GenInit(rnd, params)

		cost := biteopt.FixCost(o.Prob.Objective(o.NewValues))
		o.LastCost = cost
		o.UpdateBest(cost, o.NewValues, o.Update(cost, params, false, 0))

		if o.CurPopPos() == o.PopSize() {
			o.UpdateCentroid()

			for i := 0; i < o.Pars.Count(); i++ {
				o.Pars.Pop(i).CopyFrom(&o.Pop)
			}

			o.DoInitEvals = false
		}

		return 0
	}

	o.doEval = true

	switch o.Select(o.methodSel, rnd) {
	case 0:
		o.genDiffBest(rnd)

	case 1:
		switch o.Select(o.m1Sel, rnd) {
		case 0:
			switch o.Select(o.m1aSel, rnd) {
			case 0:
				o.genDiffAlt(rnd)
			case 1:
				o.genDiffPairs(rnd)
			default:
				o.genDiffOld(rnd)
			}
		case 1:
			switch o.Select(o.m1bSel, rnd) {
			case 0:
				o.genEntropyMix(rnd)
			case 1:
				o.genParamCross(rnd)
			case 2:
				o.genSpliceCross(rnd)
			default:
				o.genRealDiff(rnd)
			}
		case 2:
			switch o.Select(o.m1cSel, rnd) {
			case 0:
				o.genBitCross(rnd)
			case 1:
				o.genSpheroid(rnd)
			default:
				o.genDirectedMove(rnd)
			}
		default:
			o.genShortcut(rnd)
		}

	case 2:
		if o.Select(o.m2Sel, rnd) != 0 {
			o.genBitmask(rnd)
		} else {
			switch o.Select(o.m2bSel, rnd) {
			case 0:
				o.genCentroidMix(rnd)
			case 1:
				o.genOldMix(rnd)
			case 2:
				o.genClusterMove(rnd)
			case 3:
				o.genDrain(rnd)
			default:
				o.genGaussianSpread(rnd)
			}
		}

	default:
		o.genAux(rnd)
	}

	tmp := o.CurParams()

	if o.doEval {
		// Evaluate the objective with the generated parameters,
		// wrapped into the [0, 1] range; aux-generated solutions
		// arrive already evaluated.
		for i := range tmp {
			tmp[i] = biteopt.WrapParam(rnd, tmp[i])
			o.NewValues[i] = o.RealValue(tmp, i)
		}

		o.LastCost = biteopt.FixCost(o.Prob.Objective(o.NewValues))
	}

	p := o.Update(o.LastCost, tmp, true, 3)

	if p > o.CurPopSize()-1 {
		// Cost bound not met: the solution was rejected.

		o.ApplyDecr()
		o.StallCount++

		if o.doEval && o.CurPopSize() < o.PopSize() {
			if o.Select(o.popChangeIncrSel, rnd) != 0 {
				// Raising diversity after a failure.
				o.IncrSize()
			}
		}
	} else {
		o.UpdateBest(o.LastCost, o.NewValues, p)
		o.ApplyIncr(1.0 - float64(p)/float64(o.CurPopSize()))

		o.StallCount = 0

		// Feed the evicted worst solution to the old-solution
		// reservoirs, with dimension-scaled probability.

		oldParams := o.Ordered(o.CurPopSize() - 1)
		pci := 1.0 / float64(o.ParamCount)

		if rnd.Float64() < pci {
			o.oldPops[0].Update(o.CostOf(o.CurPopSize()-1), oldParams, false, 0)
		}

		if rnd.Float64() < 2.0*pci {
			o.oldPops[1].Update(o.CostOf(o.CurPopSize()-1), oldParams, false, 0)
		}

		if push != nil && push != o && !push.DoInitEvals && p > 1 {
			push.Update(o.LastCost, tmp, true, 3)
			push.updateParPop(o.LastCost, tmp)
		}

		if o.doEval && o.CurPopSize() > o.PopSize()/2 {
			if o.Select(o.popChangeDecrSel, rnd) != 0 {
				// Tightening the focus after a success.
				o.DecrSize()
			}
		}
	}

	// Route the solution into the nearest diverging population.

	o.updateParPop(o.LastCost, tmp)

	return o.StallCount
}

func (o *Opt) updateParPop(cost float64, params []biteopt.Param) {
	p := o.Pars.Nearest(params)
	o.Pars.Pop(p).Update(cost, params, true, 0)
}

// selectParPop picks one of the diverging populations, or the main
// one, as a solution source for generator gi.
func (o *Opt) selectParPop(gi int, rnd *biteopt.Rnd) *biteopt.Pop {
	if o.Select(o.parPopPSel[gi], rnd) != 0 {
		return o.Pars.Pop(rnd.Intn(o.Pars.Count()))
	}

	return &o.Pop
}

// selectAltPop picks an aux optimizer's solution population, when
// filled enough, or the main one.
func (o *Opt) selectAltPop(gi int, rnd *biteopt.Rnd) *biteopt.Pop {
	if o.Select(o.altPopPSel, rnd) != 0 {
		if o.Select(o.altPopSel[gi], rnd) != 0 {
			if o.auxOptPop.CurPopPos() >= o.CurPopSize() {
				return o.auxOptPop
			}
		} else {
			if o.auxOpt2Pop.CurPopPos() >= o.CurPopSize() {
				return o.auxOpt2Pop
			}
		}
	}

	return &o.Pop
}

// minSolIndex returns a rank index biased toward the best solutions,
// with the bias strength adapted by selectors.
func (o *Opt) minSolIndex(gi int, rnd *biteopt.Rnd, ps int) int {
	pp := [4]float64{0.05, 0.125, 0.25, 0.5}
	r := float64(ps) * rnd.Pow(float64(ps)*
		pp[o.Select(o.minSolPwrSel[gi], rnd)])

	rm := [4]float64{0.0, 0.125, 0.25, 0.5}

	return int(r * rm[o.Select(o.minSolMulSel[gi], rnd)])
}

// genBitmask is the bitmask-inversion-with-random-move generator.
// Most of the time it adjusts a single parameter of a better
// solution, yet produces excellent reference points.
func (o *Opt) genBitmask(rnd *biteopt.Rnd) {
	params := o.CurParams()

	parPop := o.selectParPop(0, rnd)
	parPopSize := parPop.CurPopSize()

	copy(params, parPop.Ordered(o.minSolIndex(0, rnd, parPopSize)))

	pci := 1.0 / float64(o.ParamCount)

	// A single random parameter, or occasionally all of them.

	var a, b int
	doAllp := false

	if rnd.Float64() < 1.8*pci {
		if o.Select(o.bitmaskAllpSel, rnd) != 0 {
			doAllp = true
		}
	}

	if doAllp {
		a = 0
		b = o.ParamCount
	} else {
		a = rnd.Intn(o.ParamCount)
		b = a + 1
	}

	// Bitmask inversion, the main driver of the optimization process.

	r1 := rnd.Float64()
	r12 := r1 * r1
	ims := int(r12 * r12 * 48.0)
	var imask biteopt.Param
	if ims <= biteopt.MantBits {
		imask = biteopt.MantMask >> ims
	}

	im2s := rnd.SqrIntn(96)
	var imask2 biteopt.Param
	if im2s <= biteopt.MantBits {
		imask2 = biteopt.MantMask >> im2s
	}

	si1 := int(r1 * r12 * float64(parPopSize))
	rp1 := parPop.Ordered(si1)

	for i := a; i < b; i++ {
		params[i] = ((params[i] ^ imask) + (rp1[i] ^ imask2)) >> 1
	}

	if rnd.Float64() < 1.0-pci {
		rp2 := parPop.Ordered(rnd.SqrIntn(parPopSize))

		if rnd.Float64() < math.Sqrt(pci) {
			if o.Select(o.bitmaskMoveAsyncSel, rnd) != 0 {
				a = 0
				b = o.ParamCount
			}
		}

		// Random move around a random previous solution.

		spanMults := [4]float64{0.5, 1.5, 2.0, 2.5}

		m := spanMults[o.Select(o.bitmaskMoveSpanSel, rnd)]
		m1 := rnd.TPDF() * m
		m2 := rnd.TPDF() * m

		for i := a; i < b; i++ {
			params[i] += biteopt.Param(float64(rp2[i]-params[i]) * m1)
			params[i] += biteopt.Param(float64(rp2[i]-params[i]) * m2)
		}
	}
}

// genDiffBest makes a differential-evolution step toward one or two
// of the best solutions and away from the worst, plus a random-pair
// difference.  Unlike classic DE there is no crossover.
func (o *Opt) genDiffBest(rnd *biteopt.Rnd) {
	params := o.CurParams()

	size := o.CurPopSize()
	size1 := size - 1

	si1 := o.minSolIndex(1, rnd, size)
	rp1 := o.Ordered(si1)
	rp3 := o.Ordered(size1 - si1)

	si2 := 1 + rnd.Intn(size1)
	rp2 := o.Ordered(si2)

	si4 := rnd.SqrIntn(size)
	rp4 := o.Ordered(si4)
	rp5 := o.Ordered(size1 - si4)

	if o.Select(o.diffBestModeSel, rnd) == 0 {
		for i := range params {
			params[i] = rp1[i] + (((rp2[i] - rp3[i]) +
				(rp4[i] - rp5[i])) >> 1)
		}
	} else {
		rp1b := o.Ordered(rnd.SqrIntn(size))

		for i := range params {
			params[i] = ((rp1[i] + rp1b[i]) +
				(rp2[i] - rp3[i]) + (rp4[i] - rp5[i])) >> 1
		}
	}
}

// genDiffAlt is a rand/2/none DE-alike mutation that can draw one
// difference pair from an aux optimizer's population.
func (o *Opt) genDiffAlt(rnd *biteopt.Rnd) {
	params := o.CurParams()

	size := o.CurPopSize()
	size1 := size - 1

	si1 := o.minSolIndex(2, rnd, size)
	rp1 := o.Ordered(si1)

	si2 := rnd.Intn(size)
	rp2 := o.Ordered(si2)
	rp3 := o.Ordered(size1 - si2)

	altPop := o.selectAltPop(0, rnd)

	si4 := rnd.Intn(size)
	rp4 := altPop.Ordered(si4)
	rp5 := altPop.Ordered(size1 - si4)

	if o.Select(o.diffAltModeSel, rnd) == 0 {
		for i := range params {
			params[i] = rp1[i] + (((rp2[i] - rp3[i]) +
				(rp4[i] - rp5[i])) >> 1)
		}
	} else {
		rp1b := o.Ordered(rnd.SqrIntn(size))

		for i := range params {
			params[i] = (rp1[i] + rp1b[i] +
				(rp2[i] - rp3[i]) + (rp4[i] - rp5[i])) >> 1
		}
	}
}

// genDiffPairs sums three non-colliding difference pairs around a
// strongly best-biased base, with occasional sparse bit-string
// randomization of one coordinate.
func (o *Opt) genDiffPairs(rnd *biteopt.Rnd) {
	params := o.CurParams()
	for i := range params {
		params[i] = 0
	}

	size := o.CurPopSize()

	si1 := rnd.PowIntn(4.0, size/2)
	rp1 := o.Ordered(si1)

	pc := len(o.popIdx)
	o.popIdx[0] = si1
	pp := 1

	if size-1 <= pc {
		for pp < pc {
			o.popIdx[pp] = rnd.Intn(size)
			pp++
		}
	} else {
		for pp < pc {
			sii := rnd.Intn(size)

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

	rp2 := o.Ordered(o.popIdx[1])
	rp3 := o.Ordered(o.popIdx[2])
	rp4 := o.Ordered(o.popIdx[3])
	rp5 := o.Ordered(o.popIdx[4])
	rp6 := o.Ordered(o.popIdx[5])
	rp7 := o.Ordered(o.popIdx[6])

	for i := range params {
		params[i] = (rp2[i] - rp3[i]) + (rp4[i] - rp5[i]) +
			(rp6[i] - rp7[i])
	}

	if rnd.Bit() != 0 && rnd.Bit() != 0 {
		k := rnd.Intn(o.ParamCount)

		// Sparsely-random bit-strings, applied in TPDF manner.

		v1 := biteopt.Param(rnd.Raw()&rnd.Raw()&rnd.Raw()&
			rnd.Raw()&rnd.Raw()) & biteopt.MantMask

		v2 := biteopt.Param(rnd.Raw()&rnd.Raw()&rnd.Raw()&
			rnd.Raw()&rnd.Raw()) & biteopt.MantMask

		params[k] += v1 - v2
	}

	if o.Select(o.diffPairsModeSel, rnd) == 0 {
		si2 := si1 + rnd.Bit()*2 - 1
		if si2 < 0 {
			si2 = 1
		}

		rp1b := o.Ordered(si2)

		for i := range params {
			params[i] = (rp1[i] + rp1b[i] + params[i]) >> 1
		}
	} else {
		for i := range params {
			params[i] = rp1[i] + (params[i] >> 1)
		}
	}
}

// genDiffOld is a DE-alike mutation whose subtrahend comes from an
// old-solution reservoir.  Falls back to genDiffPairs while the
// reservoir is nearly empty.
func (o *Opt) genDiffOld(rnd *biteopt.Rnd) {
	oldPop := o.oldPops[o.Select(o.oldPopSel, rnd)]

	if oldPop.CurPopPos() < 3 {
		o.genDiffPairs(rnd)
		return
	}

	params := o.CurParams()

	rp1 := o.Ordered(rnd.SqrIntn(o.CurPopSize()))
	rp2 := o.Ordered(rnd.Intn(o.CurPopSize()))
	rp3 := oldPop.Ordered(rnd.Intn(oldPop.CurPopPos()))

	if o.Select(o.diffOldModeSel, rnd) == 0 {
		for i := range params {
			params[i] = rp1[i] + ((rp2[i] - rp3[i]) >> 1)
		}
	} else {
		rp1b := o.Ordered(rnd.SqrIntn(o.CurPopSize()))

		for i := range params {
			params[i] = ((rp1[i] + rp1b[i]) + (rp2[i] - rp3[i])) >> 1
		}
	}
}

// genCentroidMix extrapolates a better solution away from a worse
// one, optionally mixing in centroid coordinates.  Works well on
// convex functions.
func (o *Opt) genCentroidMix(rnd *biteopt.Rnd) {
	params := o.CurParams()

	parPop := o.selectParPop(2, rnd)
	parPopSize := parPop.CurPopSize()

	rp1 := parPop.Ordered(o.minSolIndex(3, rnd, parPopSize))
	rp2 := parPop.Ordered(rnd.SqrIntnInv(parPopSize))

	mode := o.Select(o.centroidMixModeSel, rnd)

	if mode == 0 {
		for i := range params {
			params[i] = rp1[i] + (rp1[i] - rp2[i])
		}
	} else {
		centProb := [4]float64{0.0, 0.25, 0.5, 0.75}
		p := centProb[mode]

		cp := o.Centroid()

		for i := range params {
			if rnd.Float64() < p {
				params[i] = cp[i]
			} else {
				params[i] = rp1[i] + (rp1[i] - rp2[i])
			}
		}
	}
}

// genEntropyMix crosses over an odd number of random solutions via
// XOR.  Slightly less effective than DE mixing but adds diversity.
func (o *Opt) genEntropyMix(rnd *biteopt.Rnd) {
	params := o.CurParams()

	var usePops [2]*biteopt.Pop
	usePops[0] = o.selectAltPop(1, rnd)
	usePops[1] = o.selectParPop(3, rnd)

	var useSize [2]int
	useSize[0] = o.CurPopSize()
	useSize[1] = usePops[1].CurPopSize()

	km := 3 + (o.Select(o.entropyMixFacSel, rnd) << 1)

	p := rnd.Bit()
	rp1 := usePops[p].Ordered(rnd.SqrIntn(useSize[p]))

	copy(params, rp1)

	for k := 1; k < km; k++ {
		p = rnd.Bit()
		rp1 = usePops[p].Ordered(rnd.SqrIntn(useSize[p]))

		for i := range params {
			params[i] ^= rp1[i]
		}
	}

	// Simple XOR randomize.

	b := rnd.SqrIntn(54)
	if b > biteopt.MantBits {
		b = biteopt.MantBits
	}

	params[rnd.Intn(o.ParamCount)] ^=
		(biteopt.Param(rnd.Raw()) & biteopt.MantMask) >> b
}

// genBitCross completely mixes the bits of two randomly-selected
// solutions and flips one random bit per coordinate, in TPDF manner.
// Similar to single-bit-scale DNA crossover; effective, but cannot
// stand coordinate offsets on its own.
func (o *Opt) genBitCross(rnd *biteopt.Rnd) {
	params := o.CurParams()

	parPop := o.selectParPop(4, rnd)
	cross1 := parPop.Ordered(rnd.SqrIntn(parPop.CurPopSize()))

	altPop := o.selectAltPop(2, rnd)
	cross2 := altPop.Ordered(rnd.SqrIntn(o.CurPopSize()))

	for i := range params {
		crpl := biteopt.Param(rnd.Raw()) & biteopt.MantMask

		params[i] = (cross1[i] & crpl) | (cross2[i] &^ crpl)

		b := rnd.Intn(biteopt.MantBits)

		params[i] += (biteopt.Param(rnd.Bit()) << b) -
			(biteopt.Param(rnd.Bit()) << b)
	}
}

// genParamCross crosses over whole parameter values of two or four
// randomly-selected solutions.
func (o *Opt) genParamCross(rnd *biteopt.Rnd) {
	params := o.CurParams()
	var cross [4][]biteopt.Param

	parPop := o.selectParPop(5, rnd)
	parPopSize := parPop.CurPopSize()

	cross[0] = parPop.Ordered(rnd.SqrIntn(parPopSize))

	altPop := o.selectAltPop(3, rnd)

	if rnd.Bit() != 0 {
		cross[1] = altPop.Ordered(rnd.SqrIntnInv(o.CurPopSize()))
	} else {
		cross[1] = altPop.Ordered(rnd.SqrIntn(o.CurPopSize()))
	}

	if o.Select(o.paramCrossModeSel, rnd) == 0 {
		for i := range params {
			params[i] = cross[rnd.Bit()][i]
		}
	} else {
		cross[2] = parPop.Ordered(rnd.SqrIntn(parPopSize))
		cross[3] = altPop.Ordered(rnd.SqrIntn(o.CurPopSize()))

		for i := range params {
			params[i] = cross[rnd.Bit()<<1|rnd.Bit()][i]
		}
	}

	// Simple XOR randomize.

	b := rnd.SqrIntn(54)
	if b > biteopt.MantBits {
		b = biteopt.MantBits
	}

	params[rnd.Intn(o.ParamCount)] ^=
		(biteopt.Param(rnd.Raw()) & biteopt.MantMask) >> b
}

// genSpliceCross mixes parameter parts of two solutions at a random
// crossover point, plus a difference-scaled random step.
func (o *Opt) genSpliceCross(rnd *biteopt.Rnd) {
	params := o.CurParams()

	parPop := o.selectParPop(6, rnd)
	parPopSize := parPop.CurPopSize()

	rp1 := parPop.Ordered(rnd.SqrIntn(parPopSize))
	rp2 := parPop.Ordered(rnd.SqrIntn(parPopSize))
	rp3 := parPop.Ordered(rnd.SqrIntnInv(parPopSize))

	for i := range params {
		crm := (biteopt.Param(1) << rnd.Intn(biteopt.MantBits)) - 1

		if rnd.Bit() != 0 {
			crm ^= biteopt.MantMask
		}

		params[i] = (rp1[i] & crm) | (rp2[i] &^ crm)

		// Randomize by the better-to-worse difference.

		params[i] += biteopt.Param(float64(rp1[i]-rp3[i]) * rnd.TPDF())
	}
}

// genShortcut fills all coordinates from one or two values of an
// existing solution, slightly pulled toward real zero.  Considerably
// shortens convergence on some separable functions.
func (o *Opt) genShortcut(rnd *biteopt.Rnd) {
	params := o.CurParams()

	r := rnd.Pow(4.0)
	si := int(r * float64(o.CurPopSize()))

	var v [2]float64
	v[0] = o.RealValue(o.Ordered(si), rnd.Intn(o.ParamCount))

	if rnd.Bit() != 0 {
		v[1] = o.RealValue(o.Ordered(si), rnd.Intn(o.ParamCount))
	} else {
		v[1] = v[0]
	}

	m := 1.0 - r*r
	v[0] *= m
	v[1] *= m

	for i := range params {
		params[i] = biteopt.Param((v[rnd.Bit()] - o.MinValues[i]) *
			o.DiffValuesI[i])
	}
}

// genOldMix is a weighted-random crossover combining coordinates from
// the main population and the old-solution reservoir.
func (o *Opt) genOldMix(rnd *biteopt.Rnd) {
	params := o.CurParams()

	oldPop := o.oldPops[1]
	oldPopPos := oldPop.CurPopPos()

	pows := [4]float64{1.5, 1.75, 2.0, 2.25}
	pwr := pows[o.Select(o.oldMixPowSel, rnd)]

	if oldPopPos < 3 {
		for i := range params {
			params[i] = o.Ordered(rnd.PowIntn(pwr, o.CurPopSize()))[i]
		}
		return
	}

	for i := range params {
		if rnd.Bit() != 0 && rnd.Bit() != 0 {
			params[i] = oldPop.Ordered(rnd.PowIntn(pwr, oldPopPos))[i]
		} else {
			params[i] = o.Ordered(rnd.PowIntn(pwr, o.CurPopSize()))[i]
		}
	}
}

// genClusterMove computes a centroid of several better solutions and
// applies Gaussian mutation moves between the centroid and those
// solutions.
func (o *Opt) genClusterMove(rnd *biteopt.Rnd) {
	params := o.CurParams()

	mode := o.Select(o.clusterModeSel, rnd)
	numSols := 5 + o.Select(o.clusterNumSel, rnd)

	rp0 := o.Ordered(rnd.SqrIntn(o.CurPopSize()))
	o.crossRp[0] = rp0
	copy(params, rp0)

	for j := 1; j < numSols; j++ {
		rp0 = o.Ordered(rnd.SqrIntn(o.CurPopSize()))
		o.crossRp[j] = rp0

		for i := range params {
			params[i] += rp0[i]
		}
	}

	m := 1.0 / float64(numSols)

	for i := range params {
		o.NewValues[i] = float64(params[i]) * m // cluster centroid
		params[i] = biteopt.Param(o.NewValues[i])
	}

	if mode == 0 {
		spans := [4]float64{1.5, 2.5, 3.5, 4.5}
		gm := spans[o.Select(o.clusterSpanSel[mode], rnd)] * math.Sqrt(m)

		for j := 0; j < numSols; j++ {
			r := rnd.Gaussian() * gm
			rp0 = o.crossRp[j]

			for i := range params {
				params[i] += biteopt.Param(
					(o.NewValues[i] - float64(rp0[i])) * r)
			}
		}
	} else {
		spans := [4]float64{0.5, 1.5, 2.5, 3.5}
		gm := spans[o.Select(o.clusterSpanSel[mode], rnd)]

		for j := 0; j < numSols; j++ {
			r := rnd.Gaussian() * gm
			rp0 = o.crossRp[j]

			for i := range params {
				params[i] += biteopt.Param(float64(params[i]-rp0[i]) * r)
			}
		}
	}
}

// genDrain makes a fixed-multiplier step from a better random
// solution toward or away from a worse one.
func (o *Opt) genDrain(rnd *biteopt.Rnd) {
	params := o.CurParams()

	rp1 := o.Ordered(rnd.Intn(o.CurPopSize()))
	rp2 := o.Ordered(rnd.SqrIntnInv(o.CurPopSize()))

	// The overall sign inversion looks unuseful, but benefits in
	// practice.

	if rnd.Bit() != 0 {
		for i := range params {
			params[i] = rp1[i] - ((rp2[i]-rp1[i])>>1)*
				biteopt.Param(1-2*rnd.Bit())
		}
	} else {
		for i := range params {
			params[i] = rp1[i] + ((rp2[i]-rp1[i])>>1)*
				biteopt.Param(1-2*rnd.Bit())
		}
	}
}

// genSpheroid samples a point on a hyper-spheroid spanned between a
// better and a worse solution.
func (o *Opt) genSpheroid(rnd *biteopt.Rnd) {
	params := o.CurParams()

	rp1 := o.Ordered(rnd.SqrIntn(o.CurPopSize()))
	rp2 := o.Ordered(rnd.SqrIntnInv(o.CurPopSize()))

	for i := range params {
		params[i] = (rp1[i] + rp2[i]) >> 1
	}

	radius := 0.0

	for i := range params {
		v1 := float64(rp1[i] - params[i])
		v2 := float64(rp2[i] - params[i])
		radius += v1*v1 + 0.45*v2*v2
	}

	s2 := 1e-300

	for i := range params {
		o.NewValues[i] = rnd.Float64() - 0.5
		s2 += o.NewValues[i] * o.NewValues[i]
	}

	d := math.Sqrt(radius / s2)

	for i := range params {
		params[i] += biteopt.Param(o.NewValues[i] * d)
	}
}

// genDirectedMove is a stochastic PSO-alike generator: moves a random
// solution toward a better one, plus a random-direction step whose
// magnitude is bounded by the current solution basin.
func (o *Opt) genDirectedMove(rnd *biteopt.Rnd) {
	params := o.CurParams()

	rp0 := o.Ordered(rnd.Intn(o.CurPopSize()))
	rp1 := o.Ordered(rnd.PowIntn(4.0, o.CurPopSize()))
	rp2 := o.Ordered(rnd.SqrIntnInv(o.CurPopSize()))

	pci := 1.0 / float64(o.ParamCount)
	s1 := 1e-300
	s2 := 1e-300

	for i := range params {
		d := float64(rp1[i] - rp2[i])
		s1 += d * d

		o.NewValues[i] = rnd.Float64() - 0.5
		s2 += o.NewValues[i] * o.NewValues[i]
	}

	m1 := math.Sqrt(pci) * 0.5
	m0 := 1.0 - m1
	d := math.Sqrt(s1*pci/s2) * 2.0

	for i := range params {
		params[i] = biteopt.Param(float64(rp0[i])*m0 +
			float64(rp1[i])*m1 + o.NewValues[i]*d)
	}
}

// genGaussianSpread estimates the population's standard deviation
// from a better and a worse solution and samples a Gaussian around
// the centroid.
func (o *Opt) genGaussianSpread(rnd *biteopt.Rnd) {
	params := o.CurParams()

	rp1 := o.Ordered(rnd.SqrIntn(o.CurPopSize()))
	rp2 := o.Ordered(rnd.SqrIntnInv(o.CurPopSize()))

	cp := o.Centroid()
	r := 0.0

	for i := range params {
		d1 := float64(rp2[i] - rp1[i])
		r += d1 * d1
	}

	r = math.Sqrt(r / float64(o.ParamCount))

	for i := range params {
		params[i] = cp[i] + biteopt.Param(rnd.Gaussian()*r)
	}
}

// genRealDiff applies DE in real value space, each coordinate
// receiving the difference of a randomly-chosen coordinate of
// better/worse solution pairs.
func (o *Opt) genRealDiff(rnd *biteopt.Rnd) {
	params := o.CurParams()

	parPop := o.selectParPop(7, rnd)
	parPopSize := parPop.CurPopSize()

	rp1 := o.Ordered(rnd.SqrIntn(o.CurPopSize()))

	const kc = 4
	var rp2, rp3 [kc][]biteopt.Param

	for i := 0; i < kc; i++ {
		rp2[i] = parPop.Ordered(rnd.LogIntn(parPopSize))
		rp3[i] = parPop.Ordered(parPopSize - 1 - rnd.LogIntn(parPopSize))
	}

	for i := range params {
		j := rnd.Intn(o.ParamCount)
		k := rnd.Intn(kc)

		params[i] = biteopt.Param((o.RealValue(rp1, i) +
			(o.RealValue(rp2[k], j)-o.RealValue(rp3[k], j))*0.5 -
			o.MinValues[i]) * o.DiffValuesI[i])
	}
}

// genAux obtains an already-evaluated solution from one of the
// independently-running helper optimizers, switching between them on
// stalls and reseeding them around the best solution on long
// plateaus.
func (o *Opt) genAux(rnd *biteopt.Rnd) {
	o.doEval = false
	var updPop *biteopt.Pop
	var lastX []float64

	if o.useAuxOpt == 1 {
		// Re-assign the second helper based on its efficiency
		// relative to the first.
		o.useAuxOpt = o.Select(o.auxOpt2Sel, rnd)
	}

	if o.useAuxOpt == 0 {
		sc := o.auxOpt.Optimize(rnd)

		var cost float64
		lastX, cost = o.auxOpt.Last()
		o.LastCost = cost

		if sc != 0 {
			o.useAuxOpt = 1 // on stall, switch to the second helper

			if sc > o.ParamCount*64 {
				best, _ := o.Best()
				o.auxOpt.Init(rnd, best, o.StartSD*2.0)
				o.auxOptPop.ResetPos()
			}
		}

		updPop = o.auxOptPop
	} else {
		sc := o.auxOpt2.Optimize(rnd)

		var cost float64
		lastX, cost = o.auxOpt2.Last()
		o.LastCost = cost

		if sc != 0 {
			o.useAuxOpt = 0 // on stall, switch back to the first

			if sc > o.ParamCount*128 {
				best, _ := o.Best()
				o.auxOpt2.Init(rnd, best, o.StartSD*4.0)
				o.auxOpt2Pop.ResetPos()
			}
		}

		updPop = o.auxOpt2Pop
	}

	params := o.CurParams()

	for i := range params {
		o.NewValues[i] = lastX[i]
		params[i] = biteopt.Param((lastX[i] - o.MinValues[i]) *
			o.DiffValuesI[i])
	}

	updPop.Update(o.LastCost, params, false, 0)
}
