package checkout

import (
	"context"
	"time"
)

// DefaultFallback is how long confirmation waits for the payment return.
const DefaultFallback = 30 * time.Second

type Trigger int

const (
	TriggerNone Trigger = iota
	TriggerReturned
	TriggerTimeout
)

func (t Trigger) String() string {
	switch t {
	case TriggerReturned:
		return "returned"
	case TriggerTimeout:
		return "timeout"
	default:
		return "none"
	}
}

// Await races the one-shot return signal against the fallback timer. Whichever
// resolves first cancels the other. A nil signal never fires. If ctx ends
// first, Await returns TriggerNone and ctx.Err().
func Await(ctx context.Context, signal <-chan struct{}, fallback time.Duration) (Trigger, error) {
	if fallback <= 0 {
		fallback = DefaultFallback
	}

	timer, cancel := context.WithTimeout(ctx, fallback)
	defer cancel()

	select {
	case <-signal:
		return TriggerReturned, nil
	case <-timer.Done():
		if err := ctx.Err(); err != nil {
			return TriggerNone, err
		}
		return TriggerTimeout, nil
	}
}
