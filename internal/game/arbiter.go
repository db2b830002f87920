package game

import (
	"errors"
	"fmt"
)

type DealState string

const (
	StateAwaitingInitial DealState = "awaiting_initial"
	StateInitialDealt    DealState = "initial_dealt"
	StateDrawDecided     DealState = "draw_decided"
	StateComplete        DealState = "complete"
)

type Winner string

const (
	WinnerBanker Winner = "banker"
	WinnerPlayer Winner = "player"
	WinnerTie    Winner = "tie"
)

// DrawVariant selects among third-card rule variants. Only the standard
// table is dispatched today; the other names are accepted as extension
// points and currently resolve to standard behavior.
type DrawVariant string

const (
	VariantStandard    DrawVariant = "standard"
	VariantSimplified  DrawVariant = "simplified"
	VariantNoThirdCard DrawVariant = "no_third_card"
	VariantAlwaysDraw  DrawVariant = "always_draw"
)

var ErrBadDealState = errors.New("bad_deal_state")

// DrawDecision is the outcome of the third-card arbitration.
type DrawDecision struct {
	PlayerDraws bool   `json:"player_draws"`
	BankerDraws bool   `json:"banker_draws"`
	Reason      string `json:"reason"`
}

// Outcome carries the core round fields derived from the finished hands.
type Outcome struct {
	Winner     Winner
	BankerPts  int
	PlayerPts  int
	BankerPair bool
	PlayerPair bool
	CardCount  int
}

// Arbiter runs the deal of a single round: initial four cards, third-card
// arbitration, final outcome. One Arbiter per round.
type Arbiter struct {
	Variant DrawVariant

	state    DealState
	player   *Hand
	banker   *Hand
	decision DrawDecision
}

func NewArbiter(variant DrawVariant) *Arbiter {
	if variant == "" {
		variant = VariantStandard
	}
	return &Arbiter{
		Variant: variant,
		state:   StateAwaitingInitial,
		player:  NewHand(SidePlayer),
		banker:  NewHand(SideBanker),
	}
}

func (a *Arbiter) State() DealState { return a.state }
func (a *Arbiter) Player() *Hand    { return a.player }
func (a *Arbiter) Banker() *Hand    { return a.banker }

// DealInitial pulls the opening four cards in the fixed live-table order:
// player, banker, player, banker.
func (a *Arbiter) DealInitial(shoe *Shoe, onCard func(Card, Side)) error {
	if a.state != StateAwaitingInitial {
		return fmt.Errorf("%w: deal_initial in %s", ErrBadDealState, a.state)
	}
	order := []*Hand{a.player, a.banker, a.player, a.banker}
	for _, h := range order {
		c, err := shoe.Deal(true)
		if err != nil {
			return err
		}
		h.Add(c)
		if onCard != nil {
			onCard(c, h.Side)
		}
	}
	a.state = StateInitialDealt
	return nil
}

// DecideDraws applies the third-card table to the initial two-card hands.
func (a *Arbiter) DecideDraws() (DrawDecision, error) {
	if a.state != StateInitialDealt {
		return DrawDecision{}, fmt.Errorf("%w: decide_draws in %s", ErrBadDealState, a.state)
	}
	a.decision = decideDraws(a.banker, a.player, a.Variant)
	a.state = StateDrawDecided
	return a.decision, nil
}

func decideDraws(banker, player *Hand, variant DrawVariant) DrawDecision {
	// Extension point for rule variants; everything currently routes to
	// the standard table.
	switch variant {
	default:
		return standardDraws(banker, player)
	}
}

func standardDraws(banker, player *Hand) DrawDecision {
	if banker.Natural() || player.Natural() {
		return DrawDecision{Reason: "natural"}
	}
	d := DrawDecision{Reason: "table"}
	d.PlayerDraws = player.Points() <= 5
	if !d.PlayerDraws {
		// Player stood: banker draws on 0-5.
		d.BankerDraws = banker.Points() <= 5
		return d
	}
	// Banker's decision is resolved against the player's third card once
	// it is dealt; ApplyDraws fills it in.
	return d
}

// BankerDrawsOn is the standard banker third-card table: bankerPoints is
// the banker's two-card score, playerThird the point value of the player's
// third card.
func BankerDrawsOn(bankerPoints, playerThird int) bool {
	switch bankerPoints {
	case 0, 1, 2:
		return true
	case 3:
		return playerThird != 8
	case 4:
		return playerThird >= 2 && playerThird <= 7
	case 5:
		return playerThird >= 4 && playerThird <= 7
	case 6:
		return playerThird == 6 || playerThird == 7
	default:
		return false
	}
}

// ApplyDraws deals the decided third cards, player before banker. When the
// player drew, the banker leg of the decision is resolved here against the
// player's third card.
func (a *Arbiter) ApplyDraws(shoe *Shoe, onCard func(Card, Side)) (DrawDecision, error) {
	if a.state != StateDrawDecided {
		return DrawDecision{}, fmt.Errorf("%w: apply_draws in %s", ErrBadDealState, a.state)
	}
	if a.decision.PlayerDraws {
		c, err := shoe.Deal(true)
		if err != nil {
			return DrawDecision{}, err
		}
		a.player.Add(c)
		if onCard != nil {
			onCard(c, SidePlayer)
		}
		a.decision.BankerDraws = BankerDrawsOn(a.banker.Points(), c.PointValue())
	}
	if a.decision.BankerDraws {
		c, err := shoe.Deal(true)
		if err != nil {
			return DrawDecision{}, err
		}
		a.banker.Add(c)
		if onCard != nil {
			onCard(c, SideBanker)
		}
	}
	a.state = StateComplete
	return a.decision, nil
}

// Finalize compares the finished hands. Higher points win, equal is a tie.
func (a *Arbiter) Finalize() (Outcome, error) {
	if a.state != StateComplete {
		return Outcome{}, fmt.Errorf("%w: finalize in %s", ErrBadDealState, a.state)
	}
	bp, pp := a.banker.Points(), a.player.Points()
	w := WinnerTie
	if bp > pp {
		w = WinnerBanker
	} else if pp > bp {
		w = WinnerPlayer
	}
	return Outcome{
		Winner:     w,
		BankerPts:  bp,
		PlayerPts:  pp,
		BankerPair: a.banker.Pair(),
		PlayerPair: a.player.Pair(),
		CardCount:  len(a.banker.Cards) + len(a.player.Cards),
	}, nil
}
