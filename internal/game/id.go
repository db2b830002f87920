package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	roundEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	roundEntropyMu sync.Mutex
)

// NewRoundID returns a sortable round identifier.
func NewRoundID() string {
	roundEntropyMu.Lock()
	defer roundEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), roundEntropy).String()
}
