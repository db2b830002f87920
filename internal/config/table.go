package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"baccarat-table/internal/game"
)

type TableConfig struct {
	DeckCount        int     `env:"DECK_COUNT" envDefault:"8"`
	ShuffleThreshold float64 `env:"SHUFFLE_THRESHOLD" envDefault:"0.2"`
	CutFraction      float64 `env:"CUT_FRACTION" envDefault:"0"`

	WaitingDuration time.Duration `env:"WAITING_DURATION" envDefault:"10s"`
	BettingDuration time.Duration `env:"BETTING_DURATION" envDefault:"20s"`
	ResultDuration  time.Duration `env:"RESULT_DURATION" envDefault:"10s"`
	DebounceWindow  time.Duration `env:"BET_DEBOUNCE" envDefault:"300ms"`
	ConfirmTimeout  time.Duration `env:"CONFIRM_TIMEOUT" envDefault:"5s"`
	EarlyClose      bool          `env:"EARLY_CLOSE" envDefault:"false"`

	CommissionEnabled  bool    `env:"COMMISSION_ENABLED" envDefault:"true"`
	CommissionRate     float64 `env:"COMMISSION_RATE" envDefault:"0.05"`
	EnableSuper6       bool    `env:"ENABLE_SUPER6" envDefault:"false"`
	EnablePairBets     bool    `env:"ENABLE_PAIR_BETS" envDefault:"true"`
	EnableBigSmallBets bool    `env:"ENABLE_BIG_SMALL_BETS" envDefault:"true"`
	DrawVariant        string  `env:"DRAW_VARIANT" envDefault:"standard"`
	BigCardThreshold   int     `env:"BIG_CARD_THRESHOLD" envDefault:"5"`

	MainBetMin int64 `env:"MAIN_BET_MIN" envDefault:"10"`
	MainBetMax int64 `env:"MAIN_BET_MAX" envDefault:"100000"`
	SideBetMin int64 `env:"SIDE_BET_MIN" envDefault:"10"`
	SideBetMax int64 `env:"SIDE_BET_MAX" envDefault:"10000"`

	ChipValues []int64 `env:"CHIP_VALUES" envDefault:"1,5,10,50,100,500,1000"`
}

func LoadTable() (TableConfig, error) {
	var cfg TableConfig
	if err := env.Parse(&cfg); err != nil {
		return TableConfig{}, err
	}
	if cfg.DeckCount <= 0 {
		return TableConfig{}, fmt.Errorf("config: DECK_COUNT must be positive, got %d", cfg.DeckCount)
	}
	return cfg, nil
}

// Limits expands the main/side ranges into the per-type limit table.
func (c TableConfig) Limits() map[game.BetType]game.BetLimit {
	main := game.BetLimit{Min: c.MainBetMin, Max: c.MainBetMax}
	side := game.BetLimit{Min: c.SideBetMin, Max: c.SideBetMax}
	return map[game.BetType]game.BetLimit{
		game.BetBanker:     main,
		game.BetPlayer:     main,
		game.BetTie:        side,
		game.BetBankerPair: side,
		game.BetPlayerPair: side,
		game.BetBig:        side,
		game.BetSmall:      side,
	}
}

// Catalog builds the chip catalog from the configured face values.
func (c TableConfig) Catalog() game.ChipCatalog {
	cat := make(game.ChipCatalog, 0, len(c.ChipValues))
	for _, v := range c.ChipValues {
		cat = append(cat, game.ChipDenomination{
			Value:   v,
			Label:   fmt.Sprintf("%d", v),
			Enabled: true,
		})
	}
	return cat
}

// SessionConfig converts the table config into the engine's construction
// struct for one table.
func (c TableConfig) SessionConfig(tableID, accountID string) game.SessionConfig {
	return game.SessionConfig{
		TableID:          tableID,
		AccountID:        accountID,
		DeckCount:        c.DeckCount,
		ShuffleThreshold: c.ShuffleThreshold,
		CutFraction:      c.CutFraction,
		WaitingDuration:  c.WaitingDuration,
		BettingDuration:  c.BettingDuration,
		ResultDuration:   c.ResultDuration,
		DebounceWindow:   c.DebounceWindow,
		ConfirmTimeout:   c.ConfirmTimeout,
		EarlyClose:       c.EarlyClose,
		Rules: game.RulesConfig{
			CommissionEnabled:  c.CommissionEnabled,
			CommissionRate:     c.CommissionRate,
			EnableSuper6:       c.EnableSuper6,
			EnablePairBets:     c.EnablePairBets,
			EnableBigSmallBets: c.EnableBigSmallBets,
			Variant:            game.DrawVariant(c.DrawVariant),
			BigCardThreshold:   c.BigCardThreshold,
			Limits:             c.Limits(),
		},
		Catalog: c.Catalog(),
	}
}
