package game

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

func testShoe(t *testing.T, decks int, seed int64) *Shoe {
	t.Helper()
	s, err := NewShoe(decks, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("NewShoe(%d) error = %v", decks, err)
	}
	return s
}

func TestNewShoeRejectsBadDeckCount(t *testing.T) {
	if _, err := NewShoe(0, nil); err == nil {
		t.Fatal("NewShoe(0) expected error, got nil")
	}
	if _, err := NewShoe(-3, nil); err == nil {
		t.Fatal("NewShoe(-3) expected error, got nil")
	}
}

func TestShoeIntegrityAcrossOperations(t *testing.T) {
	for _, decks := range []int{1, 2, 6, 8} {
		s := testShoe(t, decks, 42)
		for i := 0; i < decks*20; i++ {
			if _, err := s.Deal(true); err != nil {
				t.Fatalf("deal %d: %v", i, err)
			}
		}
		s.Cut(0.3)
		s.Shuffle()
		if v := s.IntegrityCheck(); len(v) != 0 {
			t.Fatalf("decks=%d violations after deal/cut/shuffle: %v", decks, v)
		}
		s.Reshuffle()
		if v := s.IntegrityCheck(); len(v) != 0 {
			t.Fatalf("decks=%d violations after reshuffle: %v", decks, v)
		}
		if s.Remaining() != decks*52 {
			t.Fatalf("decks=%d remaining after reshuffle = %d, want %d", decks, s.Remaining(), decks*52)
		}
	}
}

func TestShuffleIsAPermutation(t *testing.T) {
	s := testShoe(t, 4, 7)
	before := map[Card]int{}
	for _, c := range s.cards {
		before[c]++
	}
	s.Shuffle()
	after := map[Card]int{}
	for _, c := range s.cards {
		after[c]++
	}
	for c, n := range before {
		if after[c] != n {
			t.Fatalf("card %s count changed: %d -> %d", c, n, after[c])
		}
	}
}

func TestShufflePreservesDealtPrefix(t *testing.T) {
	s := testShoe(t, 2, 11)
	var dealt []Card
	for i := 0; i < 10; i++ {
		c, err := s.Deal(false)
		if err != nil {
			t.Fatal(err)
		}
		dealt = append(dealt, c)
	}
	s.Shuffle()
	for i, c := range dealt {
		if s.cards[i] != c {
			t.Fatalf("dealt card %d moved: got %s, want %s", i, s.cards[i], c)
		}
	}
}

func TestDealExhaustion(t *testing.T) {
	s := testShoe(t, 1, 3)
	for i := 0; i < 52; i++ {
		if _, err := s.Deal(true); err != nil {
			t.Fatalf("deal %d: %v", i, err)
		}
	}
	if _, err := s.Deal(true); !errors.Is(err, ErrShoeExhausted) {
		t.Fatalf("deal past end: err = %v, want ErrShoeExhausted", err)
	}
}

func TestNeedsShuffleAndReshuffleIdempotent(t *testing.T) {
	s := testShoe(t, 1, 9)
	s.ShuffleThreshold = 0.25
	if s.NeedsShuffle() {
		t.Fatal("fresh shoe should not need shuffle")
	}
	for i := 0; i < 40; i++ {
		if _, err := s.Deal(true); err != nil {
			t.Fatal(err)
		}
	}
	if !s.NeedsShuffle() {
		t.Fatalf("remaining %d of 52 should need shuffle", s.Remaining())
	}
	s.Reshuffle()
	s.Reshuffle() // calling again when not needed must be safe
	if s.NeedsShuffle() {
		t.Fatal("reshuffled shoe should not need shuffle")
	}
	if v := s.IntegrityCheck(); len(v) != 0 {
		t.Fatalf("violations after double reshuffle: %v", v)
	}
}

func TestCutRotatesWithoutChangingMembership(t *testing.T) {
	s := testShoe(t, 1, 5)
	before := make([]Card, len(s.cards))
	copy(before, s.cards)
	s.Cut(0.5)
	if s.cards[0] != before[26] {
		t.Fatalf("cut at 0.5: first card = %s, want %s", s.cards[0], before[26])
	}
	if v := s.IntegrityCheck(); len(v) != 0 {
		t.Fatalf("violations after cut: %v", v)
	}
	// Degenerate fractions are no-ops.
	snapshot := make([]Card, len(s.cards))
	copy(snapshot, s.cards)
	s.Cut(0)
	s.Cut(1)
	for i := range snapshot {
		if s.cards[i] != snapshot[i] {
			t.Fatalf("degenerate cut moved card %d", i)
		}
	}
}

func TestRemainingByPointValue(t *testing.T) {
	s := testShoe(t, 1, 1)
	// One deck: value 0 covers T/J/Q/K of 4 suits = 16 cards; every other
	// value has 4.
	if got := s.RemainingByPointValue(0); got != 16 {
		t.Fatalf("value 0 count = %d, want 16", got)
	}
	for v := 1; v <= 9; v++ {
		if got := s.RemainingByPointValue(v); got != 4 {
			t.Fatalf("value %d count = %d, want 4", v, got)
		}
	}
}

func TestReshuffleClearsRevealFlags(t *testing.T) {
	s := testShoe(t, 1, 4)
	for i := 0; i < 5; i++ {
		if _, err := s.Deal(true); err != nil {
			t.Fatal(err)
		}
	}
	for _, rec := range s.History() {
		if !rec.Revealed {
			t.Fatalf("seq %d not marked revealed", rec.Seq)
		}
	}
	s.Reshuffle()
	// History reveal flags track the current shoe, not the all-time log.
	for _, rec := range s.History() {
		if rec.Revealed {
			t.Fatalf("seq %d still revealed after reshuffle", rec.Seq)
		}
	}
}

func TestDealHistoryBounded(t *testing.T) {
	s := testShoe(t, 8, 2)
	s.now = func() time.Time { return time.Unix(0, 0) }
	const total = 1200
	for i := 0; i < total; i++ {
		if s.Remaining() == 0 {
			s.Reshuffle()
		}
		if _, err := s.Deal(i%2 == 0); err != nil {
			t.Fatal(err)
		}
	}
	h := s.History()
	if len(h) != dealHistorySize {
		t.Fatalf("history length = %d, want %d", len(h), dealHistorySize)
	}
	if h[len(h)-1].Seq != total {
		t.Fatalf("last seq = %d, want %d", h[len(h)-1].Seq, total)
	}
	if h[0].Seq != total-dealHistorySize+1 {
		t.Fatalf("first seq = %d, want %d", h[0].Seq, total-dealHistorySize+1)
	}
}
