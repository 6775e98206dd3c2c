package checkout

import (
	"context"
	"time"

	"github.com/samber/mo"

	"github.com/Skotchmaster/pawtopia/internal/models"
	"github.com/Skotchmaster/pawtopia/internal/mykafka"
	"github.com/Skotchmaster/pawtopia/internal/screen"
	"github.com/Skotchmaster/pawtopia/internal/session"
	"github.com/Skotchmaster/pawtopia/pkg/apiclient"
	"github.com/Skotchmaster/pawtopia/pkg/logging"
)

const (
	MsgPlaced             = "Order placed successfully!"
	MsgPlacedGCash        = "Order placed successfully! Please complete your GCash payment."
	MsgPaymentLinkFailed  = "Order placed successfully, but payment link creation failed. Please contact support."
	msgNoAddress          = "Please add your address before placing an order"
	msgEmptyCart          = "Your cart is empty"
	msgUnsupportedPayment = "Please select a payment method"
)

type OrderPlacer interface {
	Place(ctx context.Context, order models.Order) mo.Result[models.Order]
}

type PaymentLinker interface {
	CreateLink(ctx context.Context, totalPrice float64) mo.Result[models.PaymentLink]
}

type CartClearer interface {
	DeleteItem(ctx context.Context, cartItemID int) mo.Result[struct{}]
}

type AddressLookup interface {
	GetAddress(ctx context.Context, userID int64) mo.Result[models.AddressResponse]
}

// Confirmation is what the confirmation screen shows.
type Confirmation struct {
	Order       models.Order
	Message     string
	CheckoutURL string
	Reference   string
	Trigger     Trigger
	// Uncleared lists cart item ids whose deletion failed.
	Uncleared []int
	// PaymentErr is set when the order exists but the payment link could not be created.
	PaymentErr error
}

type Flow struct {
	Session   *session.Store
	Orders    OrderPlacer
	Payments  PaymentLinker
	Cart      CartClearer
	Addresses AddressLookup
	Opener    Opener
	Events    mykafka.Publisher

	// Arm returns the one-shot "user came back" signal for a GCash redirect.
	// Nil means only the fallback timer can confirm.
	Arm      func() <-chan struct{}
	Fallback time.Duration
	Now      func() time.Time

	action screen.Action[Confirmation]
}

func (f *Flow) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// State reports the place-order control state.
func (f *Flow) State() screen.State { return f.action.State() }

// Cancel aborts an in-flight checkout, including a pending confirmation wait.
func (f *Flow) Cancel() { f.action.Cancel() }

// Checkout places the order for items and runs the payment branch for method.
// A second call while one is running fails with screen.ErrBusy.
func (f *Flow) Checkout(ctx context.Context, items []models.CartItem, method string) mo.Result[Confirmation] {
	return f.action.Run(ctx, func(ctx context.Context) mo.Result[Confirmation] {
		return f.run(ctx, items, method)
	})
}

func (f *Flow) run(ctx context.Context, items []models.CartItem, method string) mo.Result[Confirmation] {
	l := logging.FromContext(ctx)

	sess, err := f.Session.Current(ctx)
	if err != nil {
		return mo.Err[Confirmation](&apiclient.Error{Kind: apiclient.KindAuth, Message: "Please log in to continue", Err: err})
	}
	if len(items) == 0 {
		return apiclient.Invalid[Confirmation](msgEmptyCart)
	}
	if method == "" {
		method = models.PaymentCOD
	}
	if method != models.PaymentCOD && method != models.PaymentGCash {
		return apiclient.Invalid[Confirmation](msgUnsupportedPayment)
	}
	if res := f.Addresses.GetAddress(ctx, sess.UserID); res.IsError() {
		return apiclient.Invalid[Confirmation](msgNoAddress)
	}

	order := BuildOrder(items, method, models.User{
		UserID:   sess.UserID,
		Username: sess.Username,
		Email:    sess.Email,
	})

	placed := f.Orders.Place(ctx, order)
	if placed.IsError() {
		e := apiclient.ErrorOf(placed)
		l.Warn("order_place_failed", "error", e)
		return mo.Err[Confirmation](&apiclient.Error{
			Kind:    e.Kind,
			Status:  e.Status,
			Message: "Error placing order: " + e.Message,
			Err:     e,
		})
	}
	created := placed.MustGet()
	l = l.With("order_id", created.OrderID, "payment_method", method)
	l.Info("order_placed", "total", created.TotalPrice)
	f.publish(ctx, Event{Type: EventOrderPlaced, OrderID: created.OrderID, UserID: sess.UserID, PaymentMethod: method, TotalPrice: created.TotalPrice})

	if method == models.PaymentCOD {
		return mo.Ok(Confirmation{
			Order:     created,
			Message:   MsgPlaced,
			Uncleared: f.clearCart(ctx, created.OrderID, items),
		})
	}
	return mo.Ok(f.gcash(logging.IntoContext(ctx, l), created, items))
}

func (f *Flow) gcash(ctx context.Context, order models.Order, items []models.CartItem) Confirmation {
	l := logging.FromContext(ctx)

	link := f.Payments.CreateLink(ctx, order.TotalPrice)
	if link.IsError() {
		// The order stays; the customer is told to contact support.
		l.Error("payment_link_failed", "error", link.Error())
		f.publish(ctx, Event{Type: EventPaymentLinkFailed, OrderID: order.OrderID, TotalPrice: order.TotalPrice, Error: link.Error().Error()})
		return Confirmation{Order: order, Message: MsgPaymentLinkFailed, PaymentErr: link.Error()}
	}
	pl := link.MustGet()

	if err := f.Session.SavePendingPayment(ctx, session.PendingPayment{
		OrderID:         order.OrderID,
		ReferenceNumber: pl.ReferenceNumber,
		CreatedAt:       f.now().UTC(),
	}); err != nil {
		l.Error("pending_payment_save_failed", "error", err)
	}

	var signal <-chan struct{}
	if f.Arm != nil {
		signal = f.Arm()
	}

	conf := Confirmation{
		Order:       order,
		Message:     MsgPlacedGCash,
		CheckoutURL: pl.CheckoutURL,
		Reference:   pl.ReferenceNumber,
		Uncleared:   f.clearCart(ctx, order.OrderID, items),
	}

	if f.Opener != nil {
		if err := f.Opener.Open(ctx, pl.CheckoutURL); err != nil {
			l.Warn("checkout_url_open_failed", "error", err)
		}
	}

	trigger, err := Await(ctx, signal, f.Fallback)
	if err != nil {
		l.Warn("payment_wait_aborted", "error", err)
	}
	conf.Trigger = trigger
	l.Info("payment_confirmation", "trigger", trigger.String(), "reference", pl.ReferenceNumber)
	return conf
}

// clearCart deletes the ordered items one call at a time. Failures are logged
// and reported back; nothing is retried or rolled back.
func (f *Flow) clearCart(ctx context.Context, orderID int, items []models.CartItem) []int {
	l := logging.FromContext(ctx)

	var failed []int
	for _, it := range items {
		if res := f.Cart.DeleteItem(ctx, it.CartItemID); res.IsError() {
			l.Error("cart_item_delete_failed", "cart_item_id", it.CartItemID, "error", res.Error())
			failed = append(failed, it.CartItemID)
		}
	}
	if len(failed) > 0 {
		f.publish(ctx, Event{Type: EventCartClearPartial, OrderID: orderID, CartItemIDs: failed})
	}
	return failed
}
