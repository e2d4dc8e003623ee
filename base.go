package biteopt

// Base is the common substrate embedded by every solver: the main
// population plus a parallel-population bank, the real-value bounds
// mapping, best/last solution tracking, and the selector registry.
type Base struct {
	Pop
	Pars ParSet

	Prob Problem

	ParamCount int

	// Real-value bounds and their per-axis ranges.  DiffValues is
	// pre-divided by MantMult so that RealValue is a single
	// multiply-add from parameter scale.
	MinValues   []float64
	MaxValues   []float64
	DiffValues  []float64
	DiffValuesI []float64

	StartParams    []Param
	UseStartParams bool
	StartSD        float64

	BestValues []float64
	BestCost   float64

	// NewValues holds the real values of the latest evaluated
	// solution; LastCost its cost.
	NewValues []float64
	LastCost  float64

	DoInitEvals bool
	StallCount  int
	HiBound     float64
	AvgCost     float64

	sels      []*Sel
	selNames  []string
	applySels []*Sel
}

// InitBuffers sizes the population and the value buffers for
// paramCount dimensions.  Must be called before ResetCommonVars.
func (b *Base) InitBuffers(paramCount, popSize int) {
	b.Pop.Init(paramCount, popSize)

	b.ParamCount = paramCount
	b.MinValues = make([]float64, paramCount)
	b.MaxValues = make([]float64, paramCount)
	b.DiffValues = make([]float64, paramCount)
	b.DiffValuesI = make([]float64, paramCount)
	b.StartParams = make([]Param, paramCount)
	b.BestValues = make([]float64, paramCount)
	b.NewValues = make([]float64, paramCount)
}

// ResetCommonVars pulls the bounds from the problem and resets all
// shared state to pre-init defaults, including registered selectors.
// Called at the start of every solver's Init.
func (b *Base) ResetCommonVars(rnd *Rnd) {
	low, up := b.Prob.Bounds()
	copy(b.MinValues, low)
	copy(b.MaxValues, up)
	b.UpdateDiffValues()

	b.ResetPos()

	b.UseStartParams = false
	b.StartSD = 0.25
	b.BestCost = CostSentinel
	b.LastCost = CostSentinel
	b.DoInitEvals = true
	b.StallCount = 0
	b.HiBound = CostSentinel
	b.AvgCost = 0.0
	b.applySels = b.applySels[:0]

	for _, s := range b.sels {
		s.Reset(rnd)
	}
}

// UpdateDiffValues recalculates the per-axis ranges from the bound
// vectors.
func (b *Base) UpdateDiffValues() {
	for i := range b.DiffValues {
		d := b.MaxValues[i] - b.MinValues[i]
		b.DiffValues[i] = d * MantMultIF
		b.DiffValuesI[i] = MantMultF / d
	}
}

// UpdateBest records cost and values as the best solution when the
// solution's population position p is 0, or when p is negative and
// the cost does not exceed the current best.
func (b *Base) UpdateBest(cost float64, values []float64, p int) {
	if p < 0 && cost <= b.BestCost {
		p = 0
	}

	if p == 0 {
		b.BestCost = cost
		copy(b.BestValues, values)
	}
}

// RealValue maps coordinate i of a normalized parameter vector to its
// real range.
func (b *Base) RealValue(params []Param, i int) float64 {
	return b.MinValues[i] + b.DiffValues[i]*float64(params[i])
}

// WrapReal keeps a real coordinate value within its bounds by random
// reflection over the violated boundary, like WrapParam but in real
// space.
func (b *Base) WrapReal(rnd *Rnd, v float64, i int) float64 {
	minv := b.MinValues[i]

	if v < minv {
		dv := b.DiffValues[i] * MantMultF

		if v > minv-dv {
			return minv + rnd.Float64()*(minv-v)
		}

		return minv + rnd.Float64()*dv
	}

	maxv := b.MaxValues[i]

	if v > maxv {
		dv := b.DiffValues[i] * MantMultF

		if v < maxv+dv {
			return maxv - rnd.Float64()*(v-maxv)
		}

		return maxv - rnd.Float64()*dv
	}

	return v
}

// SetStart records a starting point, given in real space, around
// which the initial population is sampled.  A nil argument leaves the
// default centered sampling in place.
func (b *Base) SetStart(start []float64) {
	if start == nil {
		return
	}

	for i := range b.StartParams {
		b.StartParams[i] = Param((start[i] - b.MinValues[i]) /
			b.DiffValues[i])
	}

	b.UseStartParams = true
}

// GenInit fills params with an initial solution: the exact starting
// point for the first population slot when one was set, otherwise a
// Gaussian cloud with StartSD spread around the start (or the range
// center).  NewValues receives the real values alongside.
func (b *Base) GenInit(rnd *Rnd, params []Param) {
	if b.UseStartParams {
		if b.CurPopPos() == 0 {
			for i := range params {
				params[i] = WrapParam(rnd, b.StartParams[i])
				b.NewValues[i] = b.RealValue(params, i)
			}
			return
		}

		for i := range params {
			params[i] = WrapParam(rnd,
				GaussianInt(rnd, b.StartSD, b.StartParams[i]))
			b.NewValues[i] = b.RealValue(params, i)
		}
		return
	}

	for i := range params {
		params[i] = WrapParam(rnd,
			GaussianInt(rnd, b.StartSD, MantMult>>1))
		b.NewValues[i] = b.RealValue(params, i)
	}
}

// GenInitReal is GenInit in real space, for callers that bypass the
// fixed-point representation.  NewValues is left untouched.
func (b *Base) GenInitReal(rnd *Rnd, out []float64) {
	if b.UseStartParams {
		if b.CurPopPos() == 0 {
			for i := range out {
				out[i] = b.WrapReal(rnd, float64(b.StartParams[i])*
					b.DiffValues[i]+b.MinValues[i], i)
			}
			return
		}

		for i := range out {
			v := rnd.Gaussian()*b.StartSD*b.DiffValues[i]*MantMultF +
				float64(b.StartParams[i])*b.DiffValues[i] + b.MinValues[i]
			out[i] = b.WrapReal(rnd, v, i)
		}
		return
	}

	for i := range out {
		dv := b.DiffValues[i] * MantMultF
		v := rnd.Gaussian()*b.StartSD*dv + b.MinValues[i] + dv*0.5
		out[i] = b.WrapReal(rnd, v, i)
	}
}

// AddSel registers a selector under a name, for introspection and the
// shared reset in ResetCommonVars.
func (b *Base) AddSel(s *Sel, name string) {
	b.sels = append(b.sels, s)
	b.selNames = append(b.selNames, name)
}

// Select draws from s and remembers it, so the outcome of the step
// can be applied to every selector consulted.
func (b *Base) Select(s *Sel, rnd *Rnd) int {
	b.applySels = append(b.applySels, s)
	return s.Select(rnd)
}

// ApplyIncr promotes every selector consulted since the last apply,
// with success score v in [0, 1].
func (b *Base) ApplyIncr(v float64) {
	for _, s := range b.applySels {
		s.Incr(v)
	}
	b.applySels = b.applySels[:0]
}

// ApplyDecr demotes every selector consulted since the last apply.
func (b *Base) ApplyDecr() {
	for _, s := range b.applySels {
		s.Decr()
	}
	b.applySels = b.applySels[:0]
}

// Sels returns the registered selectors, in registration order.
func (b *Base) Sels() []*Sel { return b.sels }

// SelNames returns the registered selector names, aligned with Sels.
func (b *Base) SelNames() []string { return b.selNames }

// Stall returns the number of consecutive non-improving iterations.
func (b *Base) Stall() int { return b.StallCount }

// Best returns the best solution seen since the last reset.
func (b *Base) Best() (x []float64, cost float64) {
	return b.BestValues, b.BestCost
}

// Last returns the most recently evaluated solution.
func (b *Base) Last() (x []float64, cost float64) {
	return b.NewValues, b.LastCost
}
