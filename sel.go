package biteopt

// Sel is a probabilistic choice selector.  It keeps a small set of
// sparse choice vectors ("slots") and updates them bubble-sort style
// on success or failure of the latest choice, so that historically
// useful choices are drawn more often.  Compared to statistical
// accumulation this carries no long-term memory effects.
type Sel struct {
	count    int
	selPower float64

	countSp int // count * sparseMul, length of each slot vector
	slots   [selSlotCount][]int
	buf     []int

	sel      int // latest choice
	selp     int // its position in the slot vector
	slot     int // slot the choice was drawn from
	selected bool
}

const (
	selSlotCount = 5
	selSparseMul = 5
)

// NewSel returns a selector over count choices (count > 1).  power is
// the draw skew: at 1.0 all choices are equally probable, at 1.5 the
// best choice may be drawn up to twice as often as any other.  Reset
// must be called before first use.
func NewSel(count int, power float64) *Sel {
	return &Sel{
		count:    count,
		selPower: power,
	}
}

// Count returns the number of choices.
func (s *Sel) Count() int { return s.count }

// Reset reinitializes the slot vectors with shuffled replicas of all
// choices and makes an initial draw.
func (s *Sel) Reset(rnd *Rnd) {
	s.countSp = s.count * selSparseMul

	need := selSlotCount * s.countSp
	if cap(s.buf) < need {
		s.buf = make([]int, need)
	}

	for j := 0; j < selSlotCount; j++ {
		sp := s.buf[j*s.countSp : (j+1)*s.countSp]
		s.slots[j] = sp

		for i := 0; i < s.count; i++ {
			for k := 0; k < selSparseMul; k++ {
				sp[i*selSparseMul+k] = i
			}
		}

		for i := 0; i < s.countSp*5; i++ {
			i1 := rnd.Intn(s.countSp)
			i2 := rnd.Intn(s.countSp)
			sp[i1], sp[i2] = sp[i2], sp[i1]
		}
	}

	s.Select(rnd)
	s.selected = false
}

// Select draws the next choice index.  Call at most once per
// optimization step for a given selector.
func (s *Sel) Select(rnd *Rnd) int {
	s.slot = rnd.PowIntn(1.5, selSlotCount)
	s.selp = rnd.PowIntn(s.selPower, s.countSp)

	s.sel = s.slots[s.slot][s.selp]
	s.selected = true

	return s.sel
}

// Latest returns the latest drawn choice.
func (s *Sel) Latest() int { return s.sel }

// IsSelected reports whether a draw was made since the last Incr or
// Decr.
func (s *Sel) IsSelected() bool { return s.selected }

func (s *Sel) unsetSelected() { s.selected = false }

// Incr promotes the latest choice after a success.  v is the success
// score in [0, 1]; larger scores promote further.
func (s *Sel) Incr(v float64) {
	dp := int(-float64(s.selp) * v * v)

	if dp < 0 {
		sp := s.slots[s.slot]

		if dp == -1 {
			sp[s.selp] = sp[s.selp-1]
			sp[s.selp-1] = s.sel
		} else {
			np := s.selp + dp
			copy(sp[np+1:s.selp+1], sp[np:s.selp])
			sp[np] = s.sel
		}
	}

	if s.slot > 0 {
		s.slots[s.slot], s.slots[s.slot-1] =
			s.slots[s.slot-1], s.slots[s.slot]
	}
}

// Decr demotes the latest choice after a failure.
func (s *Sel) Decr() {
	if s.selp < s.countSp-1 {
		sp := s.slots[s.slot]
		sp[s.selp] = sp[s.selp+1]
		sp[s.selp+1] = s.sel
	}

	if s.slot < selSlotCount-1 {
		s.slots[s.slot], s.slots[s.slot+1] =
			s.slots[s.slot+1], s.slots[s.slot]
	}
}
