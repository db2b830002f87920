package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

var ErrShoeExhausted = errors.New("shoe_exhausted")

const dealHistorySize = 1000

// DealRecord is one entry in the shoe's bounded deal history.
type DealRecord struct {
	Seq      int
	Card     Card
	Revealed bool
	DealtAt  time.Time
}

// Shoe is the multi-deck card stack for a table session. Cards before the
// cursor have been dealt; the dealt set is retained separately until the
// next reshuffle folds it back in. All randomness comes from the injected
// *rand.Rand so shuffles are reproducible under test.
type Shoe struct {
	decks   int
	cards   []Card
	cursor  int
	used    []Card
	history []DealRecord
	dealSeq int
	rnd     *rand.Rand
	now     func() time.Time

	// ShuffleThreshold is the remaining fraction below which NeedsShuffle
	// reports true. Zero disables the check.
	ShuffleThreshold float64
}

// NewShoe builds a shuffled shoe of decks*52 cards.
func NewShoe(decks int, rnd *rand.Rand) (*Shoe, error) {
	if decks <= 0 {
		return nil, fmt.Errorf("shoe: deck count must be positive, got %d", decks)
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Shoe{decks: decks, rnd: rnd, now: time.Now}
	s.build()
	s.Shuffle()
	return s, nil
}

func (s *Shoe) build() {
	s.cards = make([]Card, 0, s.decks*52)
	for d := 0; d < s.decks; d++ {
		for suit := Diamonds; suit <= Spades; suit++ {
			for rank := Ace; rank <= King; rank++ {
				s.cards = append(s.cards, Card{Suit: suit, Rank: rank})
			}
		}
	}
	s.cursor = 0
	s.used = s.used[:0]
}

// Shuffle runs Fisher-Yates over the undealt remainder only; cards already
// dealt keep their relative order.
func (s *Shoe) Shuffle() {
	rest := s.cards[s.cursor:]
	for i := len(rest) - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		rest[i], rest[j] = rest[j], rest[i]
	}
}

// Deal returns the card at the cursor and advances it. The revealed flag is
// recorded in the deal history for the presentation layer.
func (s *Shoe) Deal(revealed bool) (Card, error) {
	if s.cursor >= len(s.cards) {
		return Card{}, ErrShoeExhausted
	}
	c := s.cards[s.cursor]
	s.cursor++
	s.used = append(s.used, c)
	s.dealSeq++
	s.history = append(s.history, DealRecord{
		Seq:      s.dealSeq,
		Card:     c,
		Revealed: revealed,
		DealtAt:  s.now(),
	})
	if len(s.history) > dealHistorySize {
		s.history = s.history[len(s.history)-dealHistorySize:]
	}
	return c, nil
}

// NeedsShuffle reports whether the remaining fraction of the shoe has
// dropped below the shuffle threshold. Callers check this before dealing
// and trigger Reshuffle proactively.
func (s *Shoe) NeedsShuffle() bool {
	if s.ShuffleThreshold <= 0 {
		return false
	}
	return float64(s.Remaining())/float64(len(s.cards)) < s.ShuffleThreshold
}

// Reshuffle folds the used set back into the pool, resets the cursor and
// re-shuffles. Reveal flags on the deal history are cleared: they track
// the current shoe, not the all-time log. Safe to call when not strictly
// needed.
func (s *Shoe) Reshuffle() {
	s.cursor = 0
	s.used = s.used[:0]
	for i := range s.history {
		s.history[i].Revealed = false
	}
	s.Shuffle()
}

// Cut rotates the undealt pool: the first round(n*fraction) cards move to
// the tail. Pure reordering, no cards enter or leave.
func (s *Shoe) Cut(fraction float64) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	rest := s.cards[s.cursor:]
	idx := int(math.Round(float64(len(rest)) * fraction))
	if idx <= 0 || idx >= len(rest) {
		return
	}
	rotated := make([]Card, 0, len(rest))
	rotated = append(rotated, rest[idx:]...)
	rotated = append(rotated, rest[:idx]...)
	copy(rest, rotated)
}

func (s *Shoe) Remaining() int {
	return len(s.cards) - s.cursor
}

func (s *Shoe) Decks() int {
	return s.decks
}

// RemainingByPointValue counts undealt cards with the given baccarat value.
func (s *Shoe) RemainingByPointValue(v int) int {
	n := 0
	for _, c := range s.cards[s.cursor:] {
		if c.PointValue() == v {
			n++
		}
	}
	return n
}

// History returns a copy of the bounded deal history, oldest first. The
// Revealed flags reflect the current shoe only: Reshuffle clears them, so
// records from before the last reshuffle read as unrevealed.
func (s *Shoe) History() []DealRecord {
	out := make([]DealRecord, len(s.history))
	copy(out, s.history)
	return out
}

// IntegrityCheck recomputes the full-shoe multiset invariant: every
// (suit, rank) pair must appear exactly decks times across the dealt and
// undealt partitions. Returns a description per violation. Meant for
// property tests, not runtime control flow.
func (s *Shoe) IntegrityCheck() []string {
	var violations []string
	if got, want := len(s.cards), s.decks*52; got != want {
		violations = append(violations, fmt.Sprintf("shoe holds %d cards, want %d", got, want))
	}
	if got, want := len(s.used), s.cursor; got != want {
		violations = append(violations, fmt.Sprintf("used set holds %d cards, cursor at %d", got, want))
	}
	counts := map[Card]int{}
	for _, c := range s.cards {
		counts[c]++
	}
	for suit := Diamonds; suit <= Spades; suit++ {
		for rank := Ace; rank <= King; rank++ {
			c := Card{Suit: suit, Rank: rank}
			if counts[c] != s.decks {
				violations = append(violations, fmt.Sprintf("%s appears %d times, want %d", c, counts[c], s.decks))
			}
		}
	}
	return violations
}
