package game

import (
	"errors"
	"time"
)

type BetType int

const (
	BetBanker     BetType = 1
	BetPlayer     BetType = 2
	BetTie        BetType = 3
	BetBankerPair BetType = 4
	BetPlayerPair BetType = 5
	BetBig        BetType = 6
	BetSmall      BetType = 7
)

var betTypeNames = map[BetType]string{
	BetBanker:     "banker",
	BetPlayer:     "player",
	BetTie:        "tie",
	BetBankerPair: "banker_pair",
	BetPlayerPair: "player_pair",
	BetBig:        "big",
	BetSmall:      "small",
}

func (b BetType) String() string {
	if s, ok := betTypeNames[b]; ok {
		return s
	}
	return "unknown"
}

func (b BetType) Valid() bool {
	_, ok := betTypeNames[b]
	return ok
}

// BetTypes lists every bet type in id order.
func BetTypes() []BetType {
	return []BetType{BetBanker, BetPlayer, BetTie, BetBankerPair, BetPlayerPair, BetBig, BetSmall}
}

// ParseBetType resolves a bet type by its wire name.
func ParseBetType(s string) (BetType, bool) {
	for bt, name := range betTypeNames {
		if name == s {
			return bt, true
		}
	}
	return 0, false
}

// OddsTable maps bet type to payout odds (profit per unit staked).
type OddsTable map[BetType]float64

// StandardOdds is the commission table: banker pays 0.95:1, the house
// taking its rake from the difference.
var StandardOdds = OddsTable{
	BetBanker:     0.95,
	BetPlayer:     1,
	BetTie:        8,
	BetBankerPair: 11,
	BetPlayerPair: 11,
	BetBig:        0.54,
	BetSmall:      1.5,
}

// NoCommissionOdds pays banker even money; the Super Six override claws the
// edge back when banker wins on exactly six points.
var NoCommissionOdds = OddsTable{
	BetBanker:     1,
	BetPlayer:     1,
	BetTie:        8,
	BetBankerPair: 11,
	BetPlayerPair: 11,
	BetBig:        0.54,
	BetSmall:      1.5,
}

const Super6Odds = 0.5

type BetLimit struct {
	Min int64
	Max int64
}

var (
	ErrInvalidBetType      = errors.New("invalid_bet_type")
	ErrBelowMinBet         = errors.New("below_min_bet")
	ErrAboveMaxBet         = errors.New("above_max_bet")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrFeatureDisabled     = errors.New("feature_disabled")
)

// BetRequest is a caller-owned bet before it is accepted into the round's
// ledger.
type BetRequest struct {
	Type     BetType
	Amount   int64
	PlacedAt time.Time
}

// BetLedger accumulates accepted amounts per bet type for the active round.
type BetLedger map[BetType]int64

func (l BetLedger) Total() int64 {
	var sum int64
	for _, v := range l {
		sum += v
	}
	return sum
}

// RulesConfig is the rule surface recognized by the engine.
type RulesConfig struct {
	CommissionEnabled  bool
	CommissionRate     float64
	EnableSuper6       bool
	EnablePairBets     bool
	EnableBigSmallBets bool
	Variant            DrawVariant

	// BigCardThreshold is the total card count (both hands) at or above
	// which the round counts as Big. House rules differ on the cutoff, so
	// it is configuration, not a constant.
	BigCardThreshold int

	Limits map[BetType]BetLimit
}

// RoundResult is the immutable outcome of one completed dealing phase.
type RoundResult struct {
	RoundID     string             `json:"round_id"`
	BankerCards []string           `json:"banker_cards"`
	PlayerCards []string           `json:"player_cards"`
	BankerPts   int                `json:"banker_points"`
	PlayerPts   int                `json:"player_points"`
	Winner      Winner             `json:"winner"`
	BankerPair  bool               `json:"banker_pair"`
	PlayerPair  bool               `json:"player_pair"`
	IsBig       bool               `json:"is_big"`
	CardCount   int                `json:"card_count"`
	Payouts     map[BetType]Payout `json:"payouts,omitempty"`
}

// Payout is the settled arithmetic for a single bet.
type Payout struct {
	Type       BetType `json:"type"`
	Amount     int64   `json:"amount"`
	IsWin      bool    `json:"is_win"`
	Odds       float64 `json:"odds"`
	Gross      float64 `json:"gross"`
	Commission float64 `json:"commission"`
	Net        float64 `json:"net"`
	Profit     float64 `json:"profit"`
}

// Rules owns the bet catalog, odds selection and payout arithmetic.
type Rules struct {
	cfg RulesConfig
}

func NewRules(cfg RulesConfig) *Rules {
	if cfg.BigCardThreshold <= 0 {
		cfg.BigCardThreshold = 5
	}
	if cfg.CommissionRate == 0 {
		cfg.CommissionRate = 0.05
	}
	return &Rules{cfg: cfg}
}

func (r *Rules) Config() RulesConfig { return r.cfg }

// ValidateBet runs the ordered checks: recognized type, limits, balance,
// feature toggles. The first failure is returned and nothing is applied.
func (r *Rules) ValidateBet(req BetRequest, ledger BetLedger, balance int64) error {
	if !req.Type.Valid() {
		return ErrInvalidBetType
	}
	if lim, ok := r.cfg.Limits[req.Type]; ok {
		if req.Amount < lim.Min {
			return ErrBelowMinBet
		}
		// The limit caps the accumulated stake on the target, not the
		// single request.
		if ledger[req.Type]+req.Amount > lim.Max {
			return ErrAboveMaxBet
		}
	}
	if req.Amount > balance-ledger.Total() {
		return ErrInsufficientBalance
	}
	switch req.Type {
	case BetBankerPair, BetPlayerPair:
		if !r.cfg.EnablePairBets {
			return ErrFeatureDisabled
		}
	case BetBig, BetSmall:
		if !r.cfg.EnableBigSmallBets {
			return ErrFeatureDisabled
		}
	}
	return nil
}

// Odds returns the payout odds for a bet type under the current rule
// toggles. The Super Six override beats the banker column in either table
// when banker wins on exactly six points.
func (r *Rules) Odds(bt BetType, out Outcome) float64 {
	if bt == BetBanker && r.cfg.EnableSuper6 && out.Winner == WinnerBanker && out.BankerPts == 6 {
		return Super6Odds
	}
	table := StandardOdds
	if !r.cfg.CommissionEnabled {
		table = NoCommissionOdds
	}
	return table[bt]
}

// IsBig applies the configured card-count cutoff.
func (r *Rules) IsBig(cardCount int) bool {
	return cardCount >= r.cfg.BigCardThreshold
}

func (r *Rules) betWins(bt BetType, res *RoundResult) bool {
	switch bt {
	case BetBanker:
		return res.Winner == WinnerBanker
	case BetPlayer:
		return res.Winner == WinnerPlayer
	case BetTie:
		return res.Winner == WinnerTie
	case BetBankerPair:
		return res.BankerPair
	case BetPlayerPair:
		return res.PlayerPair
	case BetBig:
		return res.IsBig
	case BetSmall:
		return !res.IsBig
	}
	return false
}

// ComputePayout settles a single bet against a round result. Commission is
// charged only on winning banker bets in commission mode.
func (r *Rules) ComputePayout(bt BetType, amount int64, res *RoundResult) Payout {
	p := Payout{Type: bt, Amount: amount}
	if !r.betWins(bt, res) {
		p.Profit = -float64(amount)
		return p
	}
	out := Outcome{Winner: res.Winner, BankerPts: res.BankerPts}
	p.IsWin = true
	p.Odds = r.Odds(bt, out)
	p.Gross = float64(amount) * (1 + p.Odds)
	if bt == BetBanker && r.cfg.CommissionEnabled {
		p.Commission = float64(amount) * p.Odds * r.cfg.CommissionRate
	}
	p.Net = p.Gross - p.Commission
	p.Profit = p.Net - float64(amount)
	return p
}

// SettleLedger computes payouts for every entry in the ledger.
func (r *Rules) SettleLedger(ledger BetLedger, res *RoundResult) map[BetType]Payout {
	out := make(map[BetType]Payout, len(ledger))
	for bt, amount := range ledger {
		out[bt] = r.ComputePayout(bt, amount, res)
	}
	return out
}

// CheckDrawCompliance re-derives the third-card decision from the observed
// hands and reports whether the card counts match what the table would
// have produced. Used to audit externally supplied results, independent of
// the arbiter that dealt them.
func (r *Rules) CheckDrawCompliance(banker, player *Hand) bool {
	if len(player.Cards) < 2 || len(banker.Cards) < 2 || len(player.Cards) > 3 || len(banker.Cards) > 3 {
		return false
	}
	initPlayer := &Hand{Side: SidePlayer, Cards: player.Cards[:2]}
	initBanker := &Hand{Side: SideBanker, Cards: banker.Cards[:2]}
	if initPlayer.Natural() || initBanker.Natural() {
		return len(player.Cards) == 2 && len(banker.Cards) == 2
	}
	wantPlayerDraw := initPlayer.Points() <= 5
	if wantPlayerDraw != (len(player.Cards) == 3) {
		return false
	}
	var wantBankerDraw bool
	if wantPlayerDraw {
		wantBankerDraw = BankerDrawsOn(initBanker.Points(), player.Cards[2].PointValue())
	} else {
		wantBankerDraw = initBanker.Points() <= 5
	}
	return wantBankerDraw == (len(banker.Cards) == 3)
}

// RecommendChips decomposes a bet amount into chip stacks from the catalog.
func (r *Rules) RecommendChips(amount int64, catalog ChipCatalog) ([]ChipStack, int64) {
	return ConvertChips(amount, catalog)
}
