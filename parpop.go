package biteopt

// ParSet manages a group of parallel populations orbiting a main one.
// Incoming solutions are routed to the population whose centroid is
// nearest by squared distance.
type ParSet struct {
	pops []*Pop
	dist []float64
}

// SetCount grows or shrinks the set to n populations.  Grown
// populations are uninitialized; the caller sizes them.
func (ps *ParSet) SetCount(n int) {
	for len(ps.pops) > n {
		ps.pops = ps.pops[:len(ps.pops)-1]
	}

	for len(ps.pops) < n {
		ps.pops = append(ps.pops, &Pop{})
	}

	if cap(ps.dist) < n {
		ps.dist = make([]float64, n)
	}
	ps.dist = ps.dist[:n]
}

// Count returns the number of parallel populations.
func (ps *ParSet) Count() int { return len(ps.pops) }

// Pop returns the i-th parallel population.
func (ps *ParSet) Pop(i int) *Pop { return ps.pops[i] }

// centroidDists fills ps.dist with squared distances from params to
// every population's centroid.  Distances are accumulated four
// populations at a time so the parameter vector is streamed once per
// group.
func (ps *ParSet) centroidDists(params []Param) {
	n := len(ps.pops)
	k := 0

	for k < n {
		pc := n - k
		if pc > 4 {
			pc = 4
		}

		switch pc {
		case 4:
			c0 := ps.pops[k].Centroid()
			c1 := ps.pops[k+1].Centroid()
			c2 := ps.pops[k+2].Centroid()
			c3 := ps.pops[k+3].Centroid()
			var s0, s1, s2, s3 float64

			for i, v := range params {
				d0 := float64(c0[i] - v)
				d1 := float64(c1[i] - v)
				s0 += d0 * d0
				s1 += d1 * d1

				d2 := float64(c2[i] - v)
				d3 := float64(c3[i] - v)
				s2 += d2 * d2
				s3 += d3 * d3
			}

			ps.dist[k] = s0
			ps.dist[k+1] = s1
			ps.dist[k+2] = s2
			ps.dist[k+3] = s3

		case 3:
			c0 := ps.pops[k].Centroid()
			c1 := ps.pops[k+1].Centroid()
			c2 := ps.pops[k+2].Centroid()
			var s0, s1, s2 float64

			for i, v := range params {
				d0 := float64(c0[i] - v)
				d1 := float64(c1[i] - v)
				s0 += d0 * d0
				s1 += d1 * d1

				d2 := float64(c2[i] - v)
				s2 += d2 * d2
			}

			ps.dist[k] = s0
			ps.dist[k+1] = s1
			ps.dist[k+2] = s2

		case 2:
			c0 := ps.pops[k].Centroid()
			c1 := ps.pops[k+1].Centroid()
			var s0, s1 float64

			for i, v := range params {
				d0 := float64(c0[i] - v)
				d1 := float64(c1[i] - v)
				s0 += d0 * d0
				s1 += d1 * d1
			}

			ps.dist[k] = s0
			ps.dist[k+1] = s1

		default:
			c0 := ps.pops[k].Centroid()
			var s0 float64

			for i, v := range params {
				d0 := float64(c0[i] - v)
				s0 += d0 * d0
			}

			ps.dist[k] = s0
		}

		k += pc
	}
}

// Nearest returns the index of the parallel population whose centroid
// is closest to params.  Distance ties resolve to the lowest-indexed
// population.
func (ps *ParSet) Nearest(params []Param) int {
	ps.centroidDists(params)

	pp := 0
	d := ps.dist[0]

	for i := 1; i < len(ps.pops); i++ {
		if ps.dist[i] < d {
			pp = i
			d = ps.dist[i]
		}
	}

	return pp
}
