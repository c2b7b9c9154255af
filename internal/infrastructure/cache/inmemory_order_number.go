package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tablekit/backoffice/internal/domain/order"
)

// InMemoryOrderNumberGenerator issues order numbers from a per-second counter
// held in process memory. Numbers are unique within one instance only.
type InMemoryOrderNumberGenerator struct {
	mu       sync.Mutex
	loc      *time.Location
	second   string
	sequence int64
}

// NewInMemoryOrderNumberGenerator creates a generator that stamps numbers in loc
func NewInMemoryOrderNumberGenerator(loc *time.Location) *InMemoryOrderNumberGenerator {
	if loc == nil {
		loc = time.Local
	}
	return &InMemoryOrderNumberGenerator{loc: loc}
}

// Next returns the next number for the second containing at
func (g *InMemoryOrderNumberGenerator) Next(_ context.Context, at time.Time) (string, error) {
	at = at.In(g.loc)
	stamp := at.Format(order.NumberTimeLayout)

	g.mu.Lock()
	defer g.mu.Unlock()

	if stamp != g.second {
		g.second = stamp
		g.sequence = 0
	}
	g.sequence++
	return order.FormatNumber(at, g.sequence), nil
}

var _ order.NumberGenerator = (*InMemoryOrderNumberGenerator)(nil)
