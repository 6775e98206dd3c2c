package checkout

import (
	"context"
	"strconv"
	"time"

	"github.com/Skotchmaster/pawtopia/pkg/logging"
)

const (
	EventOrderPlaced       = "order_placed"
	EventPaymentLinkFailed = "payment_link_failed"
	EventCartClearPartial  = "cart_clear_partial"
)

type Event struct {
	Type          string    `json:"type"`
	OrderID       int       `json:"orderId"`
	UserID        int64     `json:"userId,omitempty"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	TotalPrice    float64   `json:"totalPrice,omitempty"`
	CartItemIDs   []int     `json:"cartItemIds,omitempty"`
	Error         string    `json:"error,omitempty"`
	At            time.Time `json:"at"`
}

// publish is best effort; a broker outage never fails a checkout.
func (f *Flow) publish(ctx context.Context, ev Event) {
	if f.Events == nil {
		return
	}
	ev.At = f.now().UTC()
	if err := f.Events.PublishEvent(ctx, strconv.Itoa(ev.OrderID), ev); err != nil {
		logging.FromContext(ctx).Warn("checkout_event_publish_failed", "type", ev.Type, "error", err)
	}
}
