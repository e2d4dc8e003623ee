package biteopt

import "testing"

func TestSelResetComposition(t *testing.T) {
	rnd := NewRnd(1)
	s := NewSel(4, 1.5)
	s.Reset(rnd)

	for j := 0; j < selSlotCount; j++ {
		counts := make([]int, 4)
		for _, c := range s.slots[j] {
			if c < 0 || c >= 4 {
				t.Fatalf("FAIL: slot %v holds out-of-range choice %v", j, c)
			}
			counts[c]++
		}
		for c, n := range counts {
			if n != selSparseMul {
				t.Errorf("FAIL: slot %v choice %v replicated %v times, want %v",
					j, c, n, selSparseMul)
			}
		}
	}
}

func TestSelSelectRange(t *testing.T) {
	rnd := NewRnd(2)
	s := NewSel(3, 1.5)
	s.Reset(rnd)

	for i := 0; i < 10000; i++ {
		c := s.Select(rnd)
		if c < 0 || c >= 3 {
			t.Fatalf("FAIL: Select returned %v, want [0,3)", c)
		}
		if c != s.Latest() {
			t.Fatalf("FAIL: Latest %v disagrees with Select %v", s.Latest(), c)
		}
		if !s.IsSelected() {
			t.Fatal("FAIL: IsSelected false right after Select")
		}
	}
}

func TestSelAdaptation(t *testing.T) {
	rnd := NewRnd(3)
	s := NewSel(2, 1.5)
	s.Reset(rnd)

	// Reward choice 0, punish choice 1; the draw frequency of choice 0
	// should clearly dominate afterwards.
	for i := 0; i < 2000; i++ {
		c := s.Select(rnd)
		if c == 0 {
			s.Incr(1)
		} else {
			s.Decr()
		}
	}

	zero := 0
	const n = 2000
	for i := 0; i < n; i++ {
		c := s.Select(rnd)
		if c == 0 {
			zero++
			s.Incr(1)
		} else {
			s.Decr()
		}
	}
	if zero < n*6/10 {
		t.Errorf("FAIL: rewarded choice drawn %v/%v times, want clear majority", zero, n)
	}
}

func TestSelResetClearsAdaptation(t *testing.T) {
	rnd := NewRnd(4)
	s := NewSel(2, 1.5)
	s.Reset(rnd)

	for i := 0; i < 500; i++ {
		if s.Select(rnd) == 0 {
			s.Incr(1)
		} else {
			s.Decr()
		}
	}

	s.Reset(rnd)
	if s.IsSelected() {
		t.Error("FAIL: IsSelected true right after Reset")
	}

	for j := 0; j < selSlotCount; j++ {
		counts := make([]int, 2)
		for _, c := range s.slots[j] {
			counts[c]++
		}
		if counts[0] != counts[1] {
			t.Errorf("FAIL: slot %v unbalanced after Reset: %v", j, counts)
		}
	}
}
