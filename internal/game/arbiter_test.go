package game

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

// riggedShoe builds a shoe whose undealt order is exactly the given cards.
func riggedShoe(cards ...Card) *Shoe {
	return &Shoe{
		decks: 1,
		cards: cards,
		rnd:   rand.New(rand.NewSource(1)),
		now:   time.Now,
	}
}

// handOf builds a two-card hand whose points equal the given values.
func handOf(side Side, values ...int) *Hand {
	h := NewHand(side)
	for _, v := range values {
		r := Rank(v)
		if v == 0 {
			r = King
		}
		h.Add(Card{Suit: Spades, Rank: r})
	}
	return h
}

func TestBankerDrawTableExhaustive(t *testing.T) {
	want := func(banker, third int) bool {
		switch banker {
		case 0, 1, 2:
			return true
		case 3:
			return third != 8
		case 4:
			return third >= 2 && third <= 7
		case 5:
			return third >= 4 && third <= 7
		case 6:
			return third == 6 || third == 7
		default:
			return false
		}
	}
	for banker := 0; banker <= 7; banker++ {
		for third := 0; third <= 9; third++ {
			if got := BankerDrawsOn(banker, third); got != want(banker, third) {
				t.Fatalf("BankerDrawsOn(%d, %d) = %v, want %v", banker, third, got, want(banker, third))
			}
		}
	}
	// Spot-check the off-by-one hot spots.
	if BankerDrawsOn(3, 8) {
		t.Fatal("banker 3 must stand against player third 8")
	}
	if !BankerDrawsOn(6, 7) {
		t.Fatal("banker 6 must draw against player third 7")
	}
	if BankerDrawsOn(6, 5) {
		t.Fatal("banker 6 must stand against player third 5")
	}
}

func TestStandardDrawsWhenPlayerStands(t *testing.T) {
	for bankerPts := 0; bankerPts <= 7; bankerPts++ {
		banker := handOf(SideBanker, bankerPts, 0)
		player := handOf(SidePlayer, 6, 0) // player stands on 6
		d := standardDraws(banker, player)
		if d.PlayerDraws {
			t.Fatalf("player on 6 must stand")
		}
		if want := bankerPts <= 5; d.BankerDraws != want {
			t.Fatalf("banker %d vs standing player: draws = %v, want %v", bankerPts, d.BankerDraws, want)
		}
	}
}

func TestNaturalShortCircuits(t *testing.T) {
	banker := handOf(SideBanker, 9, 0) // natural 9
	player := handOf(SidePlayer, 2, 1) // 3 points, would otherwise draw
	d := standardDraws(banker, player)
	if d.PlayerDraws || d.BankerDraws {
		t.Fatalf("natural must stop all draws, got %+v", d)
	}
	if d.Reason != "natural" {
		t.Fatalf("reason = %q, want natural", d.Reason)
	}
	// Player natural stops the banker too.
	d = standardDraws(handOf(SideBanker, 2, 0), handOf(SidePlayer, 8, 0))
	if d.PlayerDraws || d.BankerDraws {
		t.Fatalf("player natural must stop all draws, got %+v", d)
	}
}

func TestDealInitialOrder(t *testing.T) {
	p1 := card(Hearts, Two)
	b1 := card(Clubs, Three)
	p2 := card(Spades, Four)
	b2 := card(Diamonds, Five)
	a := NewArbiter(VariantStandard)
	var seen []Side
	err := a.DealInitial(riggedShoe(p1, b1, p2, b2), func(_ Card, side Side) {
		seen = append(seen, side)
	})
	if err != nil {
		t.Fatal(err)
	}
	wantOrder := []Side{SidePlayer, SideBanker, SidePlayer, SideBanker}
	for i, side := range wantOrder {
		if seen[i] != side {
			t.Fatalf("deal %d went to %s, want %s", i, seen[i], side)
		}
	}
	if a.Player().Cards[0] != p1 || a.Player().Cards[1] != p2 {
		t.Fatalf("player hand = %v", a.Player().Cards)
	}
	if a.Banker().Cards[0] != b1 || a.Banker().Cards[1] != b2 {
		t.Fatalf("banker hand = %v", a.Banker().Cards)
	}
	if a.State() != StateInitialDealt {
		t.Fatalf("state = %s, want %s", a.State(), StateInitialDealt)
	}
}

func TestApplyDrawsPlayerBeforeBanker(t *testing.T) {
	// Player 2+3=5 draws; third card 8 forces banker 3 to stand.
	a := NewArbiter(VariantStandard)
	shoe := riggedShoe(
		card(Hearts, Two), card(Clubs, Three), // p1, b1
		card(Spades, Three), card(Diamonds, King), // p2, b2 -> player 5, banker 3
		card(Hearts, Eight), // player third
	)
	if err := a.DealInitial(shoe, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := a.DecideDraws(); err != nil {
		t.Fatal(err)
	}
	d, err := a.ApplyDraws(shoe, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !d.PlayerDraws || d.BankerDraws {
		t.Fatalf("decision = %+v, want player draw only", d)
	}
	if len(a.Player().Cards) != 3 || len(a.Banker().Cards) != 2 {
		t.Fatalf("cards: player %d banker %d", len(a.Player().Cards), len(a.Banker().Cards))
	}
	out, err := a.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	// Player 2+3+3+8 mod 10 = ... 2+3=5, +8 = 13 -> 3; banker 3: tie.
	if out.Winner != WinnerTie {
		t.Fatalf("winner = %s, want tie (player %d banker %d)", out.Winner, out.PlayerPts, out.BankerPts)
	}
	if out.CardCount != 5 {
		t.Fatalf("card count = %d, want 5", out.CardCount)
	}
}

func TestFinalizeWinnerAndPairs(t *testing.T) {
	a := NewArbiter(VariantStandard)
	shoe := riggedShoe(
		card(Hearts, Four), card(Clubs, Nine), // p1, b1
		card(Spades, Four), card(Diamonds, King), // p2, b2 -> player 8 natural, banker 9 natural
	)
	if err := a.DealInitial(shoe, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := a.DecideDraws(); err != nil {
		t.Fatal(err)
	}
	if _, err := a.ApplyDraws(shoe, nil); err != nil {
		t.Fatal(err)
	}
	out, err := a.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if out.Winner != WinnerBanker {
		t.Fatalf("winner = %s, want banker", out.Winner)
	}
	if !out.PlayerPair {
		t.Fatal("player 4,4 should flag a pair")
	}
	if out.BankerPair {
		t.Fatal("banker 9,K is not a pair")
	}
	if out.CardCount != 4 {
		t.Fatalf("card count = %d, want 4", out.CardCount)
	}
}

func TestArbiterStateGuards(t *testing.T) {
	a := NewArbiter(VariantStandard)
	if _, err := a.DecideDraws(); !errors.Is(err, ErrBadDealState) {
		t.Fatalf("decide before deal: err = %v", err)
	}
	if _, err := a.ApplyDraws(riggedShoe(), nil); !errors.Is(err, ErrBadDealState) {
		t.Fatalf("apply before decide: err = %v", err)
	}
	if _, err := a.Finalize(); !errors.Is(err, ErrBadDealState) {
		t.Fatalf("finalize before complete: err = %v", err)
	}
}

func TestShoeExhaustionPropagates(t *testing.T) {
	a := NewArbiter(VariantStandard)
	shoe := riggedShoe(card(Hearts, Two), card(Clubs, Three)) // only two cards
	if err := a.DealInitial(shoe, nil); !errors.Is(err, ErrShoeExhausted) {
		t.Fatalf("err = %v, want ErrShoeExhausted", err)
	}
	if a.State() != StateAwaitingInitial {
		t.Fatalf("state advanced on failure: %s", a.State())
	}
}
