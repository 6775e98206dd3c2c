package checkout

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pawtopia/internal/models"
	"github.com/Skotchmaster/pawtopia/internal/session"
	"github.com/Skotchmaster/pawtopia/pkg/apiclient"
)

type fakeBackend struct {
	mu sync.Mutex

	placed     []models.Order
	placeErr   error
	linkErr    error
	linkCalls  int
	deleted    []int
	failDelete map[int]bool
	noAddress  bool
	events     []Event
	opened     []string
}

func (b *fakeBackend) Place(_ context.Context, o models.Order) mo.Result[models.Order] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.placeErr != nil {
		return apiclient.Fail[models.Order](b.placeErr)
	}
	b.placed = append(b.placed, o)
	o.OrderID = 100 + len(b.placed)
	o.OrderDate = "2026-10-16"
	return mo.Ok(o)
}

func (b *fakeBackend) CreateLink(_ context.Context, total float64) mo.Result[models.PaymentLink] {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.linkCalls++
	if b.linkErr != nil {
		return apiclient.Fail[models.PaymentLink](b.linkErr)
	}
	return mo.Ok(models.PaymentLink{CheckoutURL: "https://pay.example/c/1", ReferenceNumber: "REF-1", Success: true})
}

func (b *fakeBackend) DeleteItem(_ context.Context, id int) mo.Result[struct{}] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failDelete[id] {
		return apiclient.Fail[struct{}](apiclient.FromStatus(500, nil))
	}
	b.deleted = append(b.deleted, id)
	return mo.Ok(struct{}{})
}

func (b *fakeBackend) GetAddress(context.Context, int64) mo.Result[models.AddressResponse] {
	if b.noAddress {
		return apiclient.Fail[models.AddressResponse](apiclient.FromStatus(404, nil))
	}
	return mo.Ok(models.AddressResponse{AddressID: 1, City: "Makati"})
}

func (b *fakeBackend) PublishEvent(_ context.Context, _ string, event any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event.(Event))
	return nil
}

func (b *fakeBackend) Close() error { return nil }

func (b *fakeBackend) Open(_ context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opened = append(b.opened, url)
	return nil
}

func (b *fakeBackend) eventTypes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return lo.Map(b.events, func(e Event, _ int) string { return e.Type })
}

func loggedIn(t *testing.T) *session.Store {
	t.Helper()
	s := session.New(session.NewMemoryKV())
	require.NoError(t, s.Save(context.Background(), session.Session{
		Token: "tok", UserID: 42, Email: "kai@example.com", Username: "kai",
	}))
	return s
}

func cartItems() []models.CartItem {
	return []models.CartItem{
		{CartItemID: 1, Quantity: 2, Product: models.Product{ProductID: 10, ProductName: "Bone", ProductPrice: 25.5}},
		{CartItemID: 2, Quantity: 1, Product: models.Product{ProductID: 11, ProductName: "Leash", ProductPrice: 199}},
	}
}

func newFlow(t *testing.T, b *fakeBackend) *Flow {
	return &Flow{
		Session:   loggedIn(t),
		Orders:    b,
		Payments:  b,
		Cart:      b,
		Addresses: b,
		Opener:    b,
		Events:    b,
		Fallback:  20 * time.Millisecond,
	}
}

func TestTotal_SumPlusShipping(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(7))
	for n := 0; n < 20; n++ {
		items := make([]models.CartItem, n)
		want := 0.0
		for i := range items {
			price := float64(r.Intn(100000)) / 100
			qty := 1 + r.Intn(5)
			items[i] = models.CartItem{Quantity: qty, Product: models.Product{ProductPrice: price}}
			want += price * float64(qty)
		}
		want += 30.0

		assert.Equal(t, want, Total(items), "n=%d", n)
		order := BuildOrder(items, models.PaymentCOD, models.User{UserID: 1})
		assert.Equal(t, want, order.TotalPrice)
		assert.Equal(t, want, OrderTotal(order))
	}
}

func TestBuildOrder(t *testing.T) {
	t.Parallel()

	o := BuildOrder(cartItems(), models.PaymentGCash, models.User{UserID: 42, Username: "kai"})
	assert.Equal(t, models.PaymentStatusPending, o.PaymentStatus)
	assert.Equal(t, models.OrderStatusToReceive, o.OrderStatus)
	require.Len(t, o.OrderItems, 2)
	assert.Equal(t, models.FlexString("10"), o.OrderItems[0].ProductID)
	assert.InDelta(t, 25.5*2+199+30, o.TotalPrice, 1e-9)
	assert.EqualValues(t, 42, o.User.UserID)
}

func TestCheckout_CashOnDelivery(t *testing.T) {
	t.Parallel()

	b := &fakeBackend{}
	res := newFlow(t, b).Checkout(context.Background(), cartItems(), models.PaymentCOD)

	require.True(t, res.IsOk())
	conf := res.MustGet()
	assert.Equal(t, MsgPlaced, conf.Message)
	assert.Equal(t, 101, conf.Order.OrderID)
	assert.Equal(t, []int{1, 2}, b.deleted)
	assert.Zero(t, b.linkCalls)
	assert.Empty(t, b.opened)
	assert.Equal(t, []string{EventOrderPlaced}, b.eventTypes())
}

func TestCheckout_GCashPaymentLinkFailureStillConfirms(t *testing.T) {
	t.Parallel()

	b := &fakeBackend{linkErr: apiclient.FromStatus(502, nil)}
	f := newFlow(t, b)
	res := f.Checkout(context.Background(), cartItems(), models.PaymentGCash)

	require.True(t, res.IsOk())
	conf := res.MustGet()
	assert.Equal(t, MsgPaymentLinkFailed, conf.Message)
	assert.Error(t, conf.PaymentErr)
	assert.Len(t, b.placed, 1, "order is not rolled back")
	assert.Equal(t, 1, b.linkCalls)
	assert.Empty(t, b.opened)
	assert.Equal(t, []string{EventOrderPlaced, EventPaymentLinkFailed}, b.eventTypes())

	_, pending := f.Session.PendingPayment(context.Background())
	assert.False(t, pending)
}

func TestCheckout_GCashReturnSignalWins(t *testing.T) {
	t.Parallel()

	b := &fakeBackend{}
	f := newFlow(t, b)
	f.Fallback = time.Hour
	f.Arm = func() <-chan struct{} {
		ch := make(chan struct{})
		close(ch)
		return ch
	}

	start := time.Now()
	res := f.Checkout(context.Background(), cartItems(), models.PaymentGCash)
	require.True(t, res.IsOk())
	assert.Less(t, time.Since(start), time.Minute)

	conf := res.MustGet()
	assert.Equal(t, TriggerReturned, conf.Trigger)
	assert.Equal(t, MsgPlacedGCash, conf.Message)
	assert.Equal(t, "REF-1", conf.Reference)
	assert.Equal(t, []string{"https://pay.example/c/1"}, b.opened)
	assert.Equal(t, []int{1, 2}, b.deleted)

	p, ok := f.Session.PendingPayment(context.Background())
	require.True(t, ok)
	assert.Equal(t, conf.Order.OrderID, p.OrderID)
	assert.Equal(t, "REF-1", p.ReferenceNumber)
}

func TestCheckout_GCashFallbackTimer(t *testing.T) {
	t.Parallel()

	b := &fakeBackend{}
	res := newFlow(t, b).Checkout(context.Background(), cartItems(), models.PaymentGCash)
	require.True(t, res.IsOk())
	assert.Equal(t, TriggerTimeout, res.MustGet().Trigger)
}

func TestCheckout_PartialCartClearIsKept(t *testing.T) {
	t.Parallel()

	b := &fakeBackend{failDelete: map[int]bool{1: true}}
	res := newFlow(t, b).Checkout(context.Background(), cartItems(), models.PaymentCOD)

	require.True(t, res.IsOk())
	assert.Equal(t, []int{1}, res.MustGet().Uncleared)
	assert.Equal(t, []int{2}, b.deleted)
	assert.Equal(t, []string{EventOrderPlaced, EventCartClearPartial}, b.eventTypes())
}

func TestCheckout_Preconditions(t *testing.T) {
	t.Parallel()

	t.Run("no address", func(t *testing.T) {
		t.Parallel()
		b := &fakeBackend{noAddress: true}
		res := newFlow(t, b).Checkout(context.Background(), cartItems(), models.PaymentCOD)
		require.True(t, res.IsError())
		assert.ErrorIs(t, res.Error(), apiclient.ErrValidation)
		assert.Equal(t, "Please add your address before placing an order", res.Error().Error())
		assert.Empty(t, b.placed)
	})

	t.Run("logged out", func(t *testing.T) {
		t.Parallel()
		b := &fakeBackend{}
		f := newFlow(t, b)
		f.Session = session.New(session.NewMemoryKV())
		res := f.Checkout(context.Background(), cartItems(), models.PaymentCOD)
		assert.ErrorIs(t, res.Error(), apiclient.ErrAuth)
		assert.Empty(t, b.placed)
	})

	t.Run("order rejected", func(t *testing.T) {
		t.Parallel()
		b := &fakeBackend{placeErr: apiclient.FromStatus(400, []byte(`{"message":"Out of stock"}`))}
		res := newFlow(t, b).Checkout(context.Background(), cartItems(), models.PaymentGCash)
		require.True(t, res.IsError())
		assert.Equal(t, "Error placing order: Out of stock (400)", res.Error().Error())
		assert.Zero(t, b.linkCalls)
		assert.Empty(t, b.deleted)
	})

	t.Run("empty cart", func(t *testing.T) {
		t.Parallel()
		res := newFlow(t, &fakeBackend{}).Checkout(context.Background(), nil, models.PaymentCOD)
		assert.ErrorIs(t, res.Error(), apiclient.ErrValidation)
	})
}

func TestAwait(t *testing.T) {
	t.Parallel()

	fired := make(chan struct{})
	close(fired)

	tests := []struct {
		name     string
		signal   <-chan struct{}
		fallback time.Duration
		cancel   bool
		want     Trigger
		wantErr  bool
	}{
		{name: "signal first", signal: fired, fallback: time.Hour, want: TriggerReturned},
		{name: "timer first", signal: make(chan struct{}), fallback: 10 * time.Millisecond, want: TriggerTimeout},
		{name: "nil signal", signal: nil, fallback: 10 * time.Millisecond, want: TriggerTimeout},
		{name: "canceled", signal: nil, fallback: time.Hour, cancel: true, want: TriggerNone, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancel {
				cancel()
			}

			got, err := Await(ctx, tt.signal, tt.fallback)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.True(t, errors.Is(err, context.Canceled))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFirstOf(t *testing.T) {
	t.Parallel()

	var used string
	failing := OpenerFunc(func(context.Context, string) error { return errors.New("no custom tabs") })
	browser := OpenerFunc(func(_ context.Context, url string) error { used = url; return nil })

	require.NoError(t, FirstOf(failing, browser).Open(context.Background(), "https://pay.example"))
	assert.Equal(t, "https://pay.example", used)

	assert.Error(t, FirstOf(failing).Open(context.Background(), "x"))
	assert.Error(t, FirstOf().Open(context.Background(), "x"))
}
