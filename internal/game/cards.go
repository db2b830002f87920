package game

type Suit int

type Rank int

const (
	Diamonds Suit = 1
	Clubs    Suit = 2
	Hearts   Suit = 3
	Spades   Suit = 4
)

const (
	Ace   Rank = 1
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

type Card struct {
	Suit Suit
	Rank Rank
}

// PointValue returns the baccarat value of the card: ace counts 1,
// ten and face cards count 0, everything else face value.
func (c Card) PointValue() int {
	switch {
	case c.Rank == Ace:
		return 1
	case c.Rank >= Ten:
		return 0
	default:
		return int(c.Rank)
	}
}

func (c Card) String() string {
	r := map[Rank]string{
		Ace: "A", Two: "2", Three: "3", Four: "4", Five: "5", Six: "6", Seven: "7",
		Eight: "8", Nine: "9", Ten: "T", Jack: "J", Queen: "Q", King: "K",
	}[c.Rank]
	s := map[Suit]string{Diamonds: "d", Clubs: "c", Hearts: "h", Spades: "s"}[c.Suit]
	return r + s
}
