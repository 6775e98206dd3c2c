// Package checkout turns a cart into an order and walks the payment branch.
package checkout

import (
	"strconv"

	"github.com/samber/lo"

	"github.com/Skotchmaster/pawtopia/internal/models"
)

// Subtotal is the sum of unit price times quantity over the items.
func Subtotal(items []models.CartItem) float64 {
	return lo.SumBy(items, func(it models.CartItem) float64 { return it.LineTotal() })
}

// Total adds the fixed shipping fee to the subtotal.
func Total(items []models.CartItem) float64 {
	return Subtotal(items) + models.ShippingFee
}

// BuildOrder snapshots the cart into an order body. Date and statuses are set
// by the repository when the order is placed.
func BuildOrder(items []models.CartItem, method string, user models.User) models.Order {
	return models.Order{
		PaymentMethod: method,
		PaymentStatus: models.PaymentStatusPending,
		OrderStatus:   models.OrderStatusToReceive,
		TotalPrice:    Total(items),
		OrderItems: lo.Map(items, func(it models.CartItem, _ int) models.OrderItem {
			return models.OrderItem{
				OrderItemName:  it.Product.ProductName,
				OrderItemImage: it.Product.ProductImage,
				Price:          it.Product.ProductPrice,
				Quantity:       it.Quantity,
				ProductID:      models.FlexString(strconv.Itoa(it.Product.ProductID)),
			}
		}),
		User: &user,
	}
}

// OrderTotal recomputes the total from the order lines.
func OrderTotal(o models.Order) float64 {
	return lo.SumBy(o.OrderItems, func(it models.OrderItem) float64 {
		return it.Price * float64(it.Quantity)
	}) + models.ShippingFee
}
