// Package wallet is the engine's view of the external balance backend.
// Only the confirm call is asynchronous from the table's point of view;
// the engine needs a success/failure/timeout outcome and nothing else.
package wallet

import (
	"context"
	"errors"
)

var (
	ErrRejected = errors.New("wallet_rejected")
	ErrTimeout  = errors.New("wallet_timeout")
)

// Service is the balance backend a table session settles against.
type Service interface {
	// Balance returns the account's available balance.
	Balance(ctx context.Context, accountID string) (int64, error)
	// Reserve debits the confirmed bet total for a round. Returns the new
	// balance.
	Reserve(ctx context.Context, accountID, roundID string, amount int64) (int64, error)
	// Release returns a previously reserved amount after a failed confirm
	// or a cancelled round.
	Release(ctx context.Context, accountID, roundID string, amount int64) (int64, error)
	// Credit pays out winnings for a settled round.
	Credit(ctx context.Context, accountID, roundID string, amount int64) (int64, error)
}
