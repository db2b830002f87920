package game

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"baccarat-table/internal/wallet"
)

type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhaseBetting Phase = "betting"
	PhaseDealing Phase = "dealing"
	PhaseResult  Phase = "result"
)

var (
	ErrBettingClosed     = errors.New("betting_closed")
	ErrBetDebounced      = errors.New("bet_debounced")
	ErrAlreadyConfirming = errors.New("already_confirming")
	ErrNothingToConfirm  = errors.New("nothing_to_confirm")
	ErrNotDealing        = errors.New("not_dealing")
)

// SessionConfig carries everything a table needs at construction. The
// session owns no global state; one config, one table.
type SessionConfig struct {
	TableID   string
	AccountID string

	DeckCount        int
	ShuffleThreshold float64
	CutFraction      float64

	WaitingDuration time.Duration
	BettingDuration time.Duration
	ResultDuration  time.Duration
	DebounceWindow  time.Duration
	ConfirmTimeout  time.Duration
	EarlyClose      bool

	Rules   RulesConfig
	Catalog ChipCatalog
}

func (c *SessionConfig) applyDefaults() {
	if c.DeckCount <= 0 {
		c.DeckCount = 8
	}
	if c.ShuffleThreshold <= 0 {
		c.ShuffleThreshold = 0.2
	}
	if c.WaitingDuration <= 0 {
		c.WaitingDuration = 10 * time.Second
	}
	if c.BettingDuration <= 0 {
		c.BettingDuration = 20 * time.Second
	}
	if c.ResultDuration <= 0 {
		c.ResultDuration = 10 * time.Second
	}
	if c.DebounceWindow <= 0 {
		c.DebounceWindow = 300 * time.Millisecond
	}
	if c.ConfirmTimeout <= 0 {
		c.ConfirmTimeout = 5 * time.Second
	}
}

// ConfirmationReceipt acknowledges a confirmed bet ledger.
type ConfirmationReceipt struct {
	ID          string    `json:"id"`
	RoundID     string    `json:"round_id"`
	Total       int64     `json:"total"`
	Balance     int64     `json:"balance"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// Session is the per-table state machine: waiting → betting → dealing →
// result, cycling. All mutation happens under one mutex; a table is
// expected to be driven by a single goroutine, the lock only guards
// against stray concurrent callers from the transport side.
type Session struct {
	mu      sync.Mutex
	cfg     SessionConfig
	rules   *Rules
	shoe    *Shoe
	arbiter *Arbiter
	wallet  wallet.Service
	log     zerolog.Logger

	phase      Phase
	phaseStart time.Time
	roundID    string

	ledger     BetLedger
	confirmed  BetLedger
	lastBet    map[BetType]time.Time
	confirming bool

	lastResult *RoundResult
	handlers   []EventHandler

	now func() time.Time
	rnd *rand.Rand
}

// SessionOption tweaks construction, mainly for tests.
type SessionOption func(*Session)

// WithClock replaces the session's time source.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithRand replaces the shuffle RNG.
func WithRand(rnd *rand.Rand) SessionOption {
	return func(s *Session) { s.rnd = rnd }
}

func NewSession(cfg SessionConfig, w wallet.Service, log zerolog.Logger, opts ...SessionOption) (*Session, error) {
	cfg.applyDefaults()
	s := &Session{
		cfg:       cfg,
		rules:     NewRules(cfg.Rules),
		wallet:    w,
		log:       log.With().Str("table_id", cfg.TableID).Logger(),
		phase:     PhaseWaiting,
		ledger:    BetLedger{},
		confirmed: BetLedger{},
		lastBet:   map[BetType]time.Time{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	shoe, err := NewShoe(cfg.DeckCount, s.rnd)
	if err != nil {
		return nil, err
	}
	shoe.ShuffleThreshold = cfg.ShuffleThreshold
	if cfg.CutFraction > 0 {
		shoe.Cut(cfg.CutFraction)
	}
	s.shoe = shoe
	s.phaseStart = s.now()
	return s, nil
}

// OnEvent registers an outbound event handler. Handlers run synchronously
// on the calling goroutine and must not block.
func (s *Session) OnEvent(h EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, h)
}

func (s *Session) emit(ev Event) {
	for _, h := range s.handlers {
		h(ev)
	}
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) Rules() *Rules { return s.rules }

func (s *Session) Catalog() ChipCatalog { return s.cfg.Catalog }

// Snapshot is the transport-facing view of a table.
type Snapshot struct {
	TableID    string       `json:"table_id"`
	Phase      Phase        `json:"phase"`
	PhaseEndIn int64        `json:"phase_end_in_ms"`
	RoundID    string       `json:"round_id,omitempty"`
	Bets       BetLedger    `json:"bets,omitempty"`
	Confirmed  int64        `json:"confirmed"`
	Remaining  int          `json:"shoe_remaining"`
	LastResult *RoundResult `json:"last_result,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	endIn := int64(0)
	if d := s.phaseDuration(); d > 0 {
		left := d - s.now().Sub(s.phaseStart)
		if left > 0 {
			endIn = left.Milliseconds()
		}
	}
	bets := make(BetLedger, len(s.ledger))
	for k, v := range s.ledger {
		bets[k] = v
	}
	return Snapshot{
		TableID:    s.cfg.TableID,
		Phase:      s.phase,
		PhaseEndIn: endIn,
		RoundID:    s.roundID,
		Bets:       bets,
		Confirmed:  s.confirmed.Total(),
		Remaining:  s.shoe.Remaining(),
		LastResult: s.lastResult,
	}
}

func (s *Session) phaseDuration() time.Duration {
	switch s.phase {
	case PhaseWaiting:
		return s.cfg.WaitingDuration
	case PhaseBetting:
		return s.cfg.BettingDuration
	case PhaseResult:
		return s.cfg.ResultDuration
	}
	// Dealing completes on arbiter state, not on a timer.
	return 0
}

// PlaceBet validates and accepts a bet into the active round's ledger.
// Rejections are non-mutating; debounced requests are rejected, never
// queued or merged.
func (s *Session) PlaceBet(ctx context.Context, bt BetType, amount int64) error {
	// The balance read may hit a remote wallet; it stays outside the lock
	// so a slow backend cannot stall the driver tick.
	balance, balErr := s.wallet.Balance(ctx, s.cfg.AccountID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseBetting {
		return s.rejectBet(bt, amount, ErrBettingClosed)
	}
	now := s.now()
	if last, ok := s.lastBet[bt]; ok && now.Sub(last) < s.cfg.DebounceWindow {
		return s.rejectBet(bt, amount, ErrBetDebounced)
	}
	if balErr != nil {
		return s.rejectBet(bt, amount, balErr)
	}
	// Confirmed amounts are already debited from the wallet balance; add
	// them back so the ledger-total check does not count them twice.
	balance += s.confirmed.Total()
	req := BetRequest{Type: bt, Amount: amount, PlacedAt: now}
	if err := s.rules.ValidateBet(req, s.ledger, balance); err != nil {
		return s.rejectBet(bt, amount, err)
	}
	s.ledger[bt] += amount
	s.lastBet[bt] = now
	s.log.Debug().Str("bet_type", bt.String()).Int64("amount", amount).Msg("bet accepted")
	return nil
}

func (s *Session) rejectBet(bt BetType, amount int64, err error) error {
	s.emit(Event{Type: EventBetRejected, RoundID: s.roundID, Data: BetRejectedData{
		Type: bt, Amount: amount, Reason: err.Error(),
	}})
	return err
}

// CancelBet removes the unconfirmed portion of a bet from the ledger.
// Confirmed money is committed and stays.
func (s *Session) CancelBet(bt BetType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseBetting {
		return
	}
	if kept := s.confirmed[bt]; kept > 0 {
		s.ledger[bt] = kept
	} else {
		delete(s.ledger, bt)
	}
}

// CancelAll clears every unconfirmed bet.
func (s *Session) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseBetting {
		return
	}
	for bt := range s.ledger {
		if kept := s.confirmed[bt]; kept > 0 {
			s.ledger[bt] = kept
		} else {
			delete(s.ledger, bt)
		}
	}
}

// ConfirmBets reserves the unconfirmed ledger total at the wallet. At most
// one confirm may be in flight per session; a second request is rejected
// immediately. On backend rejection or timeout nothing stays applied.
func (s *Session) ConfirmBets(ctx context.Context) (ConfirmationReceipt, error) {
	s.mu.Lock()
	if s.confirming {
		s.mu.Unlock()
		return ConfirmationReceipt{}, ErrAlreadyConfirming
	}
	if s.phase != PhaseBetting {
		s.mu.Unlock()
		return ConfirmationReceipt{}, ErrBettingClosed
	}
	total := s.ledger.Total() - s.confirmed.Total()
	if total <= 0 {
		s.mu.Unlock()
		return ConfirmationReceipt{}, ErrNothingToConfirm
	}
	s.confirming = true
	snapshot := make(BetLedger, len(s.ledger))
	for k, v := range s.ledger {
		snapshot[k] = v
	}
	roundID := s.roundID
	accountID := s.cfg.AccountID
	timeout := s.cfg.ConfirmTimeout
	s.mu.Unlock()

	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	balance, err := s.wallet.Reserve(rctx, accountID, roundID, total)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirming = false
	if err != nil {
		if rctx.Err() != nil && !errors.Is(err, wallet.ErrTimeout) {
			err = wallet.ErrTimeout
		}
		s.log.Warn().Err(err).Int64("total", total).Msg("confirm failed")
		return ConfirmationReceipt{}, err
	}
	if s.phase != PhaseBetting || s.roundID != roundID {
		// The wallet answered after the round moved on. The debit cannot
		// ride a round that has already been dealt, so it goes straight
		// back.
		if _, rerr := s.wallet.Release(ctx, accountID, roundID, total); rerr != nil {
			s.log.Error().Err(rerr).Int64("total", total).Msg("late confirm refund failed")
		}
		s.log.Warn().Int64("total", total).Str("round_id", roundID).Msg("confirm landed after betting closed")
		return ConfirmationReceipt{}, ErrBettingClosed
	}
	s.confirmed = snapshot
	receipt := ConfirmationReceipt{
		ID:          uuid.New().String(),
		RoundID:     roundID,
		Total:       total,
		Balance:     balance,
		ConfirmedAt: s.now(),
	}
	s.log.Info().Int64("total", total).Str("receipt_id", receipt.ID).Msg("bets confirmed")
	return receipt, nil
}

// Confirming reports whether a confirm call is in flight.
func (s *Session) Confirming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirming
}

// AdvancePhase is the tick driver. Calling it before a phase's guard is
// satisfied is a silent no-op. It returns the phase in effect after the
// call so the driver can react to transitions.
func (s *Session) AdvancePhase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := s.now().Sub(s.phaseStart)
	switch s.phase {
	case PhaseWaiting:
		if elapsed >= s.cfg.WaitingDuration {
			s.enterBetting()
		}
	case PhaseBetting:
		if elapsed >= s.cfg.BettingDuration || (s.cfg.EarlyClose && s.ledger.Total() == 0) {
			s.enterDealing()
		}
	case PhaseDealing:
		// Leaves via DealRound completing, not via a timer.
	case PhaseResult:
		if elapsed >= s.cfg.ResultDuration {
			s.transition(PhaseWaiting)
		}
	}
	return s.phase
}

func (s *Session) enterBetting() {
	s.roundID = NewRoundID()
	s.ledger = BetLedger{}
	s.confirmed = BetLedger{}
	s.lastBet = map[BetType]time.Time{}
	s.transition(PhaseBetting)
	s.log.Info().Str("round_id", s.roundID).Msg("betting open")
}

func (s *Session) enterDealing() {
	s.arbiter = NewArbiter(s.cfg.Rules.Variant)
	s.transition(PhaseDealing)
}

func (s *Session) transition(p Phase) {
	s.phase = p
	s.phaseStart = s.now()
	s.emit(Event{Type: EventPhaseChanged, RoundID: s.roundID, Data: PhaseChangedData{Phase: p}})
}

// DealRound runs one complete deal: reshuffle check, initial four cards,
// third-card arbitration, settlement. Only valid while dealing. A shoe
// exhaustion mid-deal is fatal to the round; no partial hands are exposed.
func (s *Session) DealRound(ctx context.Context) (*RoundResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseDealing {
		return nil, ErrNotDealing
	}
	if s.shoe.NeedsShuffle() {
		s.log.Info().Int("remaining", s.shoe.Remaining()).Msg("reshuffling shoe")
		s.shoe.Reshuffle()
	}

	onCard := func(c Card, side Side) {
		s.emit(Event{Type: EventCardDealt, RoundID: s.roundID, Data: CardDealtData{
			Card: c.String(), Side: side,
		}})
	}
	if err := s.arbiter.DealInitial(s.shoe, onCard); err != nil {
		return nil, err
	}
	if _, err := s.arbiter.DecideDraws(); err != nil {
		return nil, err
	}
	// The banker leg of the decision can depend on the player's third
	// card, so the resolved decision comes back from ApplyDraws.
	decision, err := s.arbiter.ApplyDraws(s.shoe, onCard)
	if err != nil {
		return nil, err
	}
	s.emit(Event{Type: EventDrawDecided, RoundID: s.roundID, Data: decision})

	outcome, err := s.arbiter.Finalize()
	if err != nil {
		return nil, err
	}
	res := &RoundResult{
		RoundID:     s.roundID,
		BankerCards: s.arbiter.Banker().Strings(),
		PlayerCards: s.arbiter.Player().Strings(),
		BankerPts:   outcome.BankerPts,
		PlayerPts:   outcome.PlayerPts,
		Winner:      outcome.Winner,
		BankerPair:  outcome.BankerPair,
		PlayerPair:  outcome.PlayerPair,
		IsBig:       s.rules.IsBig(outcome.CardCount),
		CardCount:   outcome.CardCount,
	}

	res.Payouts = s.settleLedger(ctx, res)

	s.lastResult = res
	s.emit(Event{Type: EventRoundCompleted, RoundID: s.roundID, Data: res})
	s.transition(PhaseResult)
	s.log.Info().
		Str("round_id", res.RoundID).
		Str("winner", string(res.Winner)).
		Int("banker_points", res.BankerPts).
		Int("player_points", res.PlayerPts).
		Msg("round completed")
	return res, nil
}

// AbortRound is the escape hatch for a fatal deal failure: confirmed
// money is refunded, the ledger dropped, and the table returns to waiting.
func (s *Session) AbortRound(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if total := s.confirmed.Total(); total > 0 {
		if _, err := s.wallet.Release(ctx, s.cfg.AccountID, s.roundID, total); err != nil {
			s.log.Error().Err(err).Int64("total", total).Msg("abort refund failed")
		}
	}
	s.log.Warn().Str("round_id", s.roundID).Msg("round aborted")
	s.ledger = BetLedger{}
	s.confirmed = BetLedger{}
	s.transition(PhaseWaiting)
}

// settleLedger computes payouts for the confirmed ledger and credits net
// winnings back to the wallet. Unconfirmed bets never reached the wallet
// and are simply dropped with the round.
func (s *Session) settleLedger(ctx context.Context, res *RoundResult) map[BetType]Payout {
	if len(s.confirmed) == 0 {
		return nil
	}
	payouts := s.rules.SettleLedger(s.confirmed, res)
	var winnings float64
	for _, p := range payouts {
		s.emit(Event{Type: EventPayoutComputed, RoundID: res.RoundID, Data: p})
		if p.IsWin {
			winnings += p.Net
		}
	}
	if winnings > 0 {
		if _, err := s.wallet.Credit(ctx, s.cfg.AccountID, res.RoundID, int64(math.Round(winnings))); err != nil {
			s.log.Error().Err(err).Msg("payout credit failed")
		}
	}
	return payouts
}
