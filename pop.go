package biteopt

import "math"

// Param is an internal parameter value.  Solvers work on fixed-point
// parameters: the [0, 1] normalized range maps to [0, MantMult], with
// OverBits of headroom above the mantissa so that centroid batching
// and intermediate sums cannot overflow.
type Param = int64

const (
	// OverBits is the precision headroom reserved for integer
	// centroid accumulation.
	OverBits = 5

	// MantBits is the mantissa size of parameter values.  One extra
	// bit effectively exists for the real value 1.0; a sign bit and
	// OverBits are accounted for.
	MantBits = 63 - OverBits

	// MantMult scales a normalized [0, 1] value to parameter scale.
	MantMult Param = 1 << MantBits

	// MantMult2 is twice MantMult.
	MantMult2 Param = MantMult << 1

	// MantMask selects the mantissa portion of a parameter value.
	MantMask Param = MantMult - 1
)

// MantMultF and MantMultIF are float mirrors of MantMult, for scaling
// in and out of parameter space.
const (
	MantMultF  = float64(MantMult)
	MantMultIF = 1.0 / float64(MantMult)
)

type popItem struct {
	params []Param
	cost   float64
	rank   float64
}

// Pop stores a population of parameter vectors with costs and ranks,
// kept sorted in ascending rank order, together with the population's
// centroid.  It is the shared storage layer of all solvers.
type Pop struct {
	paramCount int
	popSize    int

	curPopSize int // active portion of the population
	curPopPos  int // fill position during initial seeding

	items []*popItem // sorted ascending by rank
	tmp   *popItem   // scratch row, not part of the ordering

	cent           []Param
	needCentUpdate bool
	centLPC        float64
}

// Init allocates the population for paramCount dimensions and popSize
// rows, plus one scratch row.  It must be called before any other
// method, and again whenever the dimensions change.
func (p *Pop) Init(paramCount, popSize int) {
	p.paramCount = paramCount
	p.popSize = popSize
	p.needCentUpdate = false
	p.centLPC = CalcLP1Coeff(float64(popSize))

	p.items = make([]*popItem, popSize)
	for i := range p.items {
		p.items[i] = &popItem{params: make([]Param, paramCount)}
	}
	p.tmp = &popItem{params: make([]Param, paramCount)}
	p.cent = make([]Param, paramCount)
}

// CopyFrom makes this population an exact copy of s, reallocating if
// the dimensions differ.
func (p *Pop) CopyFrom(s *Pop) {
	if p.paramCount != s.paramCount || p.popSize != s.popSize {
		p.Init(s.paramCount, s.popSize)
	}

	p.curPopSize = s.curPopSize
	p.curPopPos = s.curPopPos
	p.needCentUpdate = s.needCentUpdate
	p.centLPC = s.centLPC

	for i := range p.items {
		dst := p.items[i]
		src := s.items[i]
		copy(dst.params, src.params)
		dst.cost = src.cost
		dst.rank = src.rank
	}

	if !p.needCentUpdate {
		copy(p.cent, s.cent)
	}
}

// UpdateCentroid recalculates the centroid as the mean of the active
// rows.  The summation is batched so that fixed-point accumulation
// stays within the OverBits headroom.  Should only be called after
// the population is filled.
func (p *Pop) UpdateCentroid() {
	p.needCentUpdate = false

	const batchCount = (1 << OverBits) - 1
	n := p.curPopSize
	cm := 1.0 / float64(n)
	tp := p.tmp.params

	if n <= batchCount {
		copy(tp, p.items[0].params)

		for j := 1; j < n; j++ {
			row := p.items[j].params
			for i := range tp {
				tp[i] += row[i]
			}
		}

		for i := range p.cent {
			p.cent[i] = Param(float64(tp[i]) * cm)
		}

		return
	}

	pl := n
	j := 0
	doCopy := true

	for pl > 0 {
		c := pl
		if c > batchCount {
			c = batchCount
		}
		pl -= c

		copy(tp, p.items[j].params)
		j++

		for c--; c > 0; c-- {
			row := p.items[j].params
			j++
			for i := range tp {
				tp[i] += row[i]
			}
		}

		if doCopy {
			doCopy = false
			for i := range p.cent {
				p.cent[i] = Param(float64(tp[i]) * cm)
			}
		} else {
			for i := range p.cent {
				p.cent[i] += Param(float64(tp[i]) * cm)
			}
		}
	}
}

// Centroid returns the centroid vector.  Call UpdateCentroid first if
// NeedCentUpdate reports true.
func (p *Pop) Centroid() []Param { return p.cent }

// NeedCentUpdate reports whether the centroid is stale.
func (p *Pop) NeedCentUpdate() bool { return p.needCentUpdate }

// MarkCentUpdate marks the centroid stale, for callers that changed
// the active population size.
func (p *Pop) MarkCentUpdate() { p.needCentUpdate = true }

// Ordered returns the parameter vector at rank position i (0 is the
// best solution).
func (p *Pop) Ordered(i int) []Param { return p.items[i].params }

// RankOf returns the rank (cost) of the solution at position i.
func (p *Pop) RankOf(i int) float64 { return p.items[i].rank }

// CostOf returns the objective value of the solution at position i.
func (p *Pop) CostOf(i int) float64 { return p.items[i].cost }

// CurParams returns the next free parameter vector during initial
// seeding, or the scratch row once the population is filled.
func (p *Pop) CurParams() []Param {
	if p.curPopPos < p.popSize {
		return p.items[p.curPopPos].params
	}
	return p.tmp.params
}

// PopSize returns the allocated population size.
func (p *Pop) PopSize() int { return p.popSize }

// CurPopSize returns the active population size.
func (p *Pop) CurPopSize() int { return p.curPopSize }

// CurPopPos returns the current fill position.
func (p *Pop) CurPopPos() int { return p.curPopPos }

// ResetPos rewinds the fill position to zero and restores the active
// size to the full population.  Called when the population is to be
// refilled from scratch.
func (p *Pop) ResetPos() {
	p.curPopSize = p.popSize
	p.curPopPos = 0
	p.needCentUpdate = false
	p.centLPC = CalcLP1Coeff(float64(p.curPopSize))
}

// IncrSize grows the active population size by one.  Only valid when
// the population was filled and the active size is below the
// allocated size.
func (p *Pop) IncrSize() {
	p.curPopSize++
	p.centLPC = CalcLP1Coeff(float64(p.curPopSize))
}

// DecrSize shrinks the active population size by one.  Only valid
// when the active size is above one.
func (p *Pop) DecrSize() {
	p.curPopSize--
	p.centLPC = CalcLP1Coeff(float64(p.curPopSize))
}

// RemoveAt removes the solution at rank position i, in the
// [0, CurPopPos-1] range.
func (p *Pop) RemoveAt(i int) {
	if p.curPopPos == 0 {
		return
	}

	ri := p.curPopPos - 1

	if i < ri {
		rp := p.items[i]
		copy(p.items[i:ri], p.items[i+1:ri+1])
		p.items[ri] = rp
	}

	p.curPopPos--
}

// Update inserts a solution into the population, replacing the
// highest-cost resident once the population is filled.  While the
// fill position is below the allocated size the solution is added
// unconditionally.
//
// cost must already be NaN-fixed.  If updateCentroid is set and the
// centroid is fresh, the centroid follows the insertion with a leaky
// integrator step instead of going stale.  replaceThrN8 is the
// same-cost replacement threshold in eighths of the active size: an
// equal-cost solution landing at a position below
// CurPopSize*replaceThrN8/8 replaces a resident that sits farther
// from the best solution, trimming diversity among tied best
// solutions.
//
// The return value is the insertion position; a value greater than or
// equal to PopSize means the cost constraint was not met or the cost
// tied an existing solution.
func (p *Pop) Update(cost float64, params []Param, updateCentroid bool, replaceThrN8 int) int {
	var ri int // rank position whose storage gets reused

	if p.curPopPos < p.popSize {
		ri = p.curPopPos
	} else {
		ri = p.popSize - 1

		if cost > p.items[ri].rank {
			return p.popSize
		}
	}

	// Binary search of the cost within the ordered population.

	pos := 0
	i := ri

	for pos < i {
		mid := (pos + i) >> 1

		if p.items[mid].rank >= cost {
			i = mid
		} else {
			pos = mid + 1
		}
	}

	doReplace := false
	isEqualCost := false

	if p.curPopPos < p.popSize {
		p.curPopPos++
	} else if isEqual(cost, p.items[pos].rank) {
		isEqualCost = true

		if pos != 0 && pos < p.curPopSize*replaceThrN8/8 &&
			p.fartherThan(p.items[pos].params, params, p.items[0].params) {

			doReplace = true
		}
	}

	var rp *popItem

	if doReplace {
		rp = p.items[pos]
	} else {
		rp = p.items[ri]
		copy(p.items[pos+1:ri+1], p.items[pos:ri])
		p.items[pos] = rp
	}

	rp.cost = cost
	rp.rank = cost

	inPlace := len(params) > 0 && &rp.params[0] == &params[0]

	if updateCentroid && !p.needCentUpdate {
		lpc := p.centLPC
		for i := range p.cent {
			p.cent[i] += Param(float64(params[i]-p.cent[i]) * lpc)
		}
		if !inPlace {
			copy(rp.params, params)
		}
	} else {
		if !inPlace {
			copy(rp.params, params)
		}
		p.needCentUpdate = true
	}

	if isEqualCost {
		return p.popSize
	}

	return pos
}

// fartherThan reports whether p1 lies farther from ref than p2 does,
// by squared distance.
func (p *Pop) fartherThan(p1, p2, ref []Param) bool {
	s0 := 0.0
	s1 := 0.0

	for i := 0; i < p.paramCount; i++ {
		v := ref[i]
		d0 := float64(p1[i] - v)
		d1 := float64(p2[i] - v)
		s0 += d0 * d0
		s1 += d1 * d1
	}

	return s0 > s1
}

// isEqual compares two costs for equality within a relative
// tolerance.
func isEqual(a, b float64) bool {
	d := math.Abs(b - a)

	if d == 0 {
		return true
	}

	return d < (math.Abs(b)+math.Abs(a))*0x1p-52
}

// WrapParam keeps a parameter value within the [0, MantMult] range by
// reflecting it over the violated boundary with a random magnitude.
// Values past twice the range are replaced with uniform draws.  This
// converges better than clamping.
func WrapParam(rnd *Rnd, v Param) Param {
	if v < 0 {
		if v > -MantMult {
			return Param(rnd.Float64() * float64(-v))
		}

		return Param(rnd.Raw()) & MantMask
	}

	if v > MantMult {
		if v < MantMult2 {
			return MantMult - Param(rnd.Float64()*float64(v-MantMult))
		}

		return Param(rnd.Raw()) & MantMask
	}

	return v
}

// GaussianInt returns a Gaussian-distributed value in parameter
// scale, with the given standard deviation multiplier and mean.
// Draws beyond 8 standard units are rejected to stay within the
// fixed-point headroom.
func GaussianInt(rnd *Rnd, sd float64, mean Param) Param {
	for {
		r := rnd.Gaussian() * sd

		if r > -8.0 && r < 8.0 {
			return Param(r*MantMultF) + mean
		}
	}
}

// CalcLP1Coeff returns the averaging coefficient of a leaky
// integrator first-order low-pass filter that averages approximately
// count samples.
func CalcLP1Coeff(count float64) float64 {
	theta := 2.8 / count
	costheta2 := 2.0 - math.Cos(theta)

	return 1.0 - (costheta2 - math.Sqrt(costheta2*costheta2-1.0))
}
