package game

type Side string

const (
	SidePlayer Side = "player"
	SideBanker Side = "banker"
)

// Hand is one side's cards for a single round, in deal order.
type Hand struct {
	Side  Side
	Cards []Card
}

func NewHand(side Side) *Hand {
	return &Hand{Side: side, Cards: make([]Card, 0, 3)}
}

func (h *Hand) Add(c Card) {
	h.Cards = append(h.Cards, c)
}

// Points is the baccarat score: sum of card values mod 10.
func (h *Hand) Points() int {
	total := 0
	for _, c := range h.Cards {
		total += c.PointValue()
	}
	return total % 10
}

// Natural reports a two-card hand totaling 8 or 9, which ends the round
// without further draws.
func (h *Hand) Natural() bool {
	if len(h.Cards) != 2 {
		return false
	}
	p := h.Points()
	return p == 8 || p == 9
}

// Pair reports whether the first two cards share a rank. Third cards never
// count toward pair bets.
func (h *Hand) Pair() bool {
	return len(h.Cards) >= 2 && h.Cards[0].Rank == h.Cards[1].Rank
}

func (h *Hand) Strings() []string {
	out := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		out[i] = c.String()
	}
	return out
}
