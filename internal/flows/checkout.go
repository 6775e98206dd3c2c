package flows

import (
	"context"
	"time"

	"github.com/samber/mo"

	"github.com/Skotchmaster/pawtopia/internal/checkout"
	"github.com/Skotchmaster/pawtopia/internal/mykafka"
)

// NewCheckout wires the checkout flow to the repositories in d.
func NewCheckout(d *Deps, opener checkout.Opener, events mykafka.Publisher, arm func() <-chan struct{}, fallback time.Duration) *checkout.Flow {
	return &checkout.Flow{
		Session:   d.Session,
		Orders:    d.Orders,
		Payments:  d.Payments,
		Cart:      d.Carts,
		Addresses: d.Users,
		Opener:    opener,
		Events:    events,
		Arm:       arm,
		Fallback:  fallback,
	}
}

// CheckoutCart loads the user's cart and checks out every item in it.
func CheckoutCart(ctx context.Context, d *Deps, flow *checkout.Flow, method string) mo.Result[checkout.Confirmation] {
	cart := NewCart(d).Get(ctx)
	if cart.IsError() {
		return mo.Err[checkout.Confirmation](cart.Error())
	}
	return flow.Checkout(ctx, cart.MustGet().CartItems, method)
}
