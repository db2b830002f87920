package wallet

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-memory Service used by tests and the local server. Fail
// and Delay let tests force the rejection and timeout paths.
type Memory struct {
	mu       sync.Mutex
	balances map[string]int64

	// Fail, when set, is returned by Reserve instead of debiting.
	Fail error
	// Delay is applied before Reserve answers, so a short ctx deadline
	// exercises the timeout path.
	Delay time.Duration
}

func NewMemory() *Memory {
	return &Memory{balances: make(map[string]int64)}
}

func (m *Memory) SetBalance(accountID string, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[accountID] = balance
}

func (m *Memory) Balance(ctx context.Context, accountID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[accountID], nil
}

func (m *Memory) Reserve(ctx context.Context, accountID, roundID string, amount int64) (int64, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return 0, ErrTimeout
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return 0, m.Fail
	}
	if m.balances[accountID] < amount {
		return 0, ErrRejected
	}
	m.balances[accountID] -= amount
	return m.balances[accountID], nil
}

func (m *Memory) Release(ctx context.Context, accountID, roundID string, amount int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[accountID] += amount
	return m.balances[accountID], nil
}

func (m *Memory) Credit(ctx context.Context, accountID, roundID string, amount int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[accountID] += amount
	return m.balances[accountID], nil
}
