package biteopt

import "math"

// Source is an externally supplied random generator that can replace
// the default PRNG.  It must produce uniformly distributed 32-bit
// words and should be seeded by the caller; two words are concatenated
// to form each 64-bit draw.
type Source interface {
	Uint32() uint32
}

// Rnd is the pseudo-random stream consumed by every solver component.
// The default generator is a deterministic, seed-reproducible 64-bit
// construction with a very long period; see
// https://github.com/avaneev/prvhash for the underlying design.  Rnd
// is not safe for concurrent use; give each optimizer instance its
// own.
type Rnd struct {
	src Source

	seed uint64
	lcg  uint64
	hash uint64

	bitPool  uint64
	bitsLeft int
}

// NewRnd returns a stream seeded with seed.  Five draws are discarded
// up front so short-term correlations in small seeds settle down.
func NewRnd(seed int64) *Rnd {
	rnd := &Rnd{}
	rnd.Reset(seed)
	return rnd
}

// NewRndSource returns a stream that delegates to an external 32-bit
// source instead of the default generator.
func NewRndSource(src Source) *Rnd {
	return &Rnd{src: src}
}

// Reset re-seeds the stream.  It has no effect on the delegate of a
// source-backed stream.
func (r *Rnd) Reset(seed int64) {
	r.seed = uint64(seed)
	r.lcg = 0
	r.hash = 0
	r.bitPool = 0
	r.bitsLeft = 0

	for i := 0; i < 5; i++ {
		r.advance()
	}
}

func (r *Rnd) advance() uint64 {
	if r.src != nil {
		v := uint64(r.src.Uint32())
		return v | uint64(r.src.Uint32())<<32
	}

	r.seed *= r.lcg*2 + 1
	rs := r.seed>>32 | r.seed<<32
	r.hash += rs + 0xAAAAAAAAAAAAAAAA
	r.lcg += r.seed + 0x5555555555555555
	r.seed ^= r.hash

	return r.lcg ^ rs
}

// Raw returns the next uniformly distributed 64-bit value.
func (r *Rnd) Raw() uint64 { return r.advance() }

// Float64 returns a uniform value in [0, 1).
func (r *Rnd) Float64() float64 {
	return float64(r.advance()>>11) * 0x1p-53
}

// Intn returns a uniform integer in [0, n).  n is a bin count, not a
// maximal value.
func (r *Rnd) Intn(n int) int {
	return int(r.Float64() * float64(n))
}

// Sqr returns a value in [0, 1) with Beta(0.5, 1) density, obtained by
// squaring a uniform draw.
func (r *Rnd) Sqr() float64 {
	v := r.Float64()
	return v * v
}

// SqrIntn returns an integer in [0, n) with Beta(0.5, 1) density,
// biased toward 0.
func (r *Rnd) SqrIntn(n int) int {
	return int(r.Sqr() * float64(n))
}

// SqrIntnInv returns an integer in [0, n) with Beta(0.5, 1) density,
// biased toward n-1.
func (r *Rnd) SqrIntnInv(n int) int {
	return n - int(r.Sqr()*float64(n)) - 1
}

// Pow returns a uniform draw raised to power p.  Common powers take
// closed-form fast paths.
func (r *Rnd) Pow(p float64) float64 {
	v := r.Float64()

	if p < 2.0 {
		if p < 1.0 {
			if p == 0.5 {
				return math.Sqrt(v)
			}
			if p == 0.25 {
				return math.Sqrt(math.Sqrt(v))
			}
		} else {
			if p == 1.5 {
				return v * math.Sqrt(v)
			}
			if p == 1.75 {
				sv := math.Sqrt(v)
				return v * sv * math.Sqrt(sv)
			}
			if p == 1.0 {
				return v
			}
		}
	} else {
		if p == 4.0 {
			v2 := v * v
			return v2 * v2
		}
		if p == 3.0 {
			return v * v * v
		}
		if p == 2.0 {
			return v * v
		}
	}

	return math.Pow(v, p)
}

// PowIntn returns an integer in [0, n) distributed as a uniform draw
// raised to power p.
func (r *Rnd) PowIntn(p float64, n int) int {
	return int(r.Pow(p) * float64(n))
}

// Log returns a value in (-1, 1) with an approximately logarithmic
// two-lobe density peaking at 0.
func (r *Rnd) Log() float64 {
	return r.Float64() * math.Sin(r.Float64()*6.28318530717958648)
}

// LogIntn returns an integer in [0, n) with approximately logarithmic
// density, peak at 0.
func (r *Rnd) LogIntn(n int) int {
	return int(math.Abs(r.Log()) * float64(n))
}

// TPDF returns a triangular-density value in (-1, 1), the difference
// of two independent uniform draws.
func (r *Rnd) TPDF() float64 {
	v1 := int64(r.advance() >> 11)
	v2 := int64(r.advance() >> 11)
	return float64(v1-v2) * 0x1p-53
}

// Gaussian returns a normally distributed value with mean 0 and
// standard deviation 1.
//
// Algorithm is adopted from: Leva, J. L. 1992. "A Fast Normal Random
// Number Generator", ACM Transactions on Mathematical Software,
// vol. 18, no. 4, pp. 449-453.
func (r *Rnd) Gaussian() float64 {
	var q, u, v float64

	for {
		u = r.Float64()
		v = r.Float64()

		if u == 0 || v == 0 {
			u = 1
			v = 1
		}

		v = 1.7156 * (v - 0.5)
		x := u - 0.449871
		y := math.Abs(v) + 0.386595
		q = x*x + y*(0.19600*y-0.25472*x)

		if q < 0.27597 {
			break
		}
		if q <= 0.27846 && v*v <= -4.0*math.Log(u)*u*u {
			break
		}
	}

	return v / u
}

// Bit returns a single random bit, amortized from a cached word.
func (r *Rnd) Bit() int {
	if r.bitsLeft == 0 {
		r.bitPool = r.advance()

		b := int(r.bitPool & 1)
		r.bitsLeft = 63
		r.bitPool >>= 1

		return b
	}

	b := int(r.bitPool & 1)
	r.bitsLeft--
	r.bitPool >>= 1

	return b
}
