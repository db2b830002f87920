package game

type EventType string

const (
	EventPhaseChanged   EventType = "phase_changed"
	EventCardDealt      EventType = "card_dealt"
	EventDrawDecided    EventType = "draw_decided"
	EventRoundCompleted EventType = "round_completed"
	EventBetRejected    EventType = "bet_rejected"
	EventPayoutComputed EventType = "payout_computed"
)

// Event is one outbound engine event. Delivery is the handler's problem:
// handlers run synchronously on the session's goroutine and must not block.
type Event struct {
	Type    EventType `json:"type"`
	RoundID string    `json:"round_id,omitempty"`
	Data    any       `json:"data,omitempty"`
}

type EventHandler func(Event)

// CardDealtData accompanies EventCardDealt.
type CardDealtData struct {
	Card string `json:"card"`
	Side Side   `json:"side"`
}

// PhaseChangedData accompanies EventPhaseChanged.
type PhaseChangedData struct {
	Phase Phase `json:"phase"`
}

// BetRejectedData accompanies EventBetRejected.
type BetRejectedData struct {
	Type   BetType `json:"bet_type"`
	Amount int64   `json:"amount"`
	Reason string  `json:"reason"`
}
