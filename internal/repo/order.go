package repo

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/Skotchmaster/pawtopia/internal/models"
	"github.com/Skotchmaster/pawtopia/pkg/apiclient"
)

type OrderRepo struct {
	Client *apiclient.Client
	Tokens apiclient.TokenSource
	Now    func() time.Time
}

type placeOrderItem struct {
	OrderItemName  string  `json:"orderItemName"`
	OrderItemImage string  `json:"orderItemImage"`
	Price          float64 `json:"price"`
	Quantity       int     `json:"quantity"`
	ProductID      string  `json:"productId"`
}

type placeOrderUser struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

type placeOrderBody struct {
	OrderDate     string           `json:"orderDate"`
	PaymentMethod string           `json:"paymentMethod"`
	PaymentStatus string           `json:"paymentStatus"`
	OrderStatus   string           `json:"orderStatus"`
	TotalPrice    float64          `json:"totalPrice"`
	OrderItems    []placeOrderItem `json:"orderItems"`
	User          placeOrderUser   `json:"user"`
}

func (o *OrderRepo) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

var orderFields = []string{"orderID", "orderDate", "paymentMethod", "paymentStatus", "orderStatus", "totalPrice"}

func decodeOrderHeader(body []byte) (models.Order, error) {
	r, err := object(body)
	if err != nil {
		return models.Order{}, err
	}
	if err := requireFields(r, orderFields...); err != nil {
		return models.Order{}, err
	}
	return models.Order{
		OrderID:       int(r.Get("orderID").Int()),
		OrderDate:     r.Get("orderDate").String(),
		PaymentMethod: r.Get("paymentMethod").String(),
		PaymentStatus: r.Get("paymentStatus").String(),
		OrderStatus:   r.Get("orderStatus").String(),
		TotalPrice:    r.Get("totalPrice").Float(),
	}, nil
}

// Place creates the order with status PENDING / "To Receive" dated today.
// The returned order keeps the caller's items and user.
func (o *OrderRepo) Place(ctx context.Context, order models.Order) mo.Result[models.Order] {
	if order.User == nil || order.User.UserID == 0 {
		return apiclient.Invalid[models.Order]("User not found")
	}
	if len(order.OrderItems) == 0 {
		return apiclient.Invalid[models.Order]("Order has no items")
	}

	body := placeOrderBody{
		OrderDate:     o.now().Format("2006-01-02"),
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: models.PaymentStatusPending,
		OrderStatus:   models.OrderStatusToReceive,
		TotalPrice:    order.TotalPrice,
		OrderItems: lo.Map(order.OrderItems, func(it models.OrderItem, _ int) placeOrderItem {
			return placeOrderItem{
				OrderItemName:  it.OrderItemName,
				OrderItemImage: it.OrderItemImage,
				Price:          it.Price,
				Quantity:       it.Quantity,
				ProductID:      string(it.ProductID),
			}
		}),
		User: placeOrderUser{UserID: order.User.UserID, Username: order.User.Username},
	}

	return apiclient.Call(ctx, o.Client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/order/postOrderRecord",
		Body:   body,
	}, func(b []byte) (models.Order, error) {
		created, err := decodeOrderHeader(b)
		if err != nil {
			return models.Order{}, err
		}
		created.OrderItems = order.OrderItems
		created.User = order.User
		return created, nil
	})
}

// ListByUser returns order headers; items are not included.
func (o *OrderRepo) ListByUser(ctx context.Context, userID int64) mo.Result[[]models.Order] {
	return apiclient.Call(ctx, o.Client, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/order/getAllOrdersByUserId",
		Query:  url.Values{"userId": {strconv.FormatInt(userID, 10)}},
	}, func(b []byte) ([]models.Order, error) {
		orders, err := apiclient.JSON[[]models.Order](b)
		if err != nil {
			return nil, err
		}
		for i := range orders {
			orders[i].OrderItems = nil
			orders[i].User = nil
		}
		return orders, nil
	})
}

func (o *OrderRepo) Details(ctx context.Context, orderID int) mo.Result[models.Order] {
	if o.Tokens == nil || o.Tokens.Token(ctx) == "" {
		return mo.Err[models.Order](&apiclient.Error{Kind: apiclient.KindAuth, Message: "Authentication required"})
	}

	res := apiclient.Call(ctx, o.Client, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/order/getOrderDetails/" + apiclient.Segment(orderID),
	}, func(b []byte) (models.Order, error) {
		r, err := object(b)
		if err != nil {
			return models.Order{}, err
		}
		if err := requireFields(r, "orderItems", "user", "user.userId", "user.username"); err != nil {
			return models.Order{}, err
		}
		order, err := apiclient.JSON[models.Order](b)
		if err != nil {
			return models.Order{}, err
		}
		order.User.Password = ""
		if order.User.Role == "" {
			order.User.Role = "USER"
		}
		return order, nil
	})

	if e := apiclient.ErrorOf(res); e != nil && e.Status == http.StatusForbidden {
		e.Message = "You don't have permission to view this order"
	}
	return res
}
