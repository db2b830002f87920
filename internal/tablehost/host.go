package tablehost

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"baccarat-table/internal/game"
)

const historySize = 50

var ErrTableNotFound = errors.New("table_not_found")

// Table binds one engine session to its event buffer and result history.
type Table struct {
	ID      string
	Session *game.Session
	Buffer  *EventBuffer

	mu      sync.Mutex
	history []*game.RoundResult
}

func (t *Table) recordResult(res *game.RoundResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = append(t.history, res)
	if len(t.history) > historySize {
		t.history = t.history[len(t.history)-historySize:]
	}
}

// History returns recent round results, newest first.
func (t *Table) History() []*game.RoundResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*game.RoundResult, 0, len(t.history))
	for i := len(t.history) - 1; i >= 0; i-- {
		out = append(out, t.history[i])
	}
	return out
}

// Host owns every table on this server and drives their phase machines.
type Host struct {
	mu     sync.RWMutex
	tables map[string]*Table
	tick   time.Duration
}

func New(tick time.Duration) *Host {
	if tick <= 0 {
		tick = 100 * time.Millisecond
	}
	return &Host{
		tables: map[string]*Table{},
		tick:   tick,
	}
}

// AddTable registers a session and wires its events onto the table's
// buffer and history.
func (h *Host) AddTable(id string, sess *game.Session) *Table {
	t := &Table{
		ID:      id,
		Session: sess,
		Buffer:  NewEventBuffer(500),
	}
	sess.OnEvent(func(ev game.Event) {
		t.Buffer.Append(string(ev.Type), t.ID, ev.RoundID, ev.Data)
		if ev.Type == game.EventRoundCompleted {
			if res, ok := ev.Data.(*game.RoundResult); ok {
				t.recordResult(res)
			}
		}
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tables[id] = t
	return t
}

func (h *Host) Table(id string) (*Table, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	t, ok := h.tables[id]
	if !ok {
		return nil, ErrTableNotFound
	}
	return t, nil
}

// Tables returns registered tables in id order.
func (h *Host) Tables() []*Table {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Table, 0, len(h.tables))
	for _, t := range h.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Run drives every table until the context is cancelled. One goroutine per
// table: a table's session is never ticked concurrently.
func (h *Host) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, t := range h.Tables() {
		wg.Add(1)
		go func(t *Table) {
			defer wg.Done()
			h.runTable(ctx, t)
		}(t)
	}
	wg.Wait()
}

func (h *Host) runTable(ctx context.Context, t *Table) {
	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			t.Buffer.Close()
			return
		case <-ticker.C:
			if t.Session.AdvancePhase() == game.PhaseDealing {
				if _, err := t.Session.DealRound(ctx); err != nil {
					log.Error().Err(err).Str("table_id", t.ID).Msg("deal round failed")
					t.Session.AbortRound(ctx)
				}
			}
		}
	}
}
