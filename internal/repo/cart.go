package repo

import (
	"context"
	"net/http"

	"github.com/samber/mo"

	"github.com/Skotchmaster/pawtopia/internal/models"
	"github.com/Skotchmaster/pawtopia/pkg/apiclient"
)

type CartRepo struct {
	Client *apiclient.Client
}

func (c *CartRepo) GetByUserID(ctx context.Context, userID int64) mo.Result[models.Cart] {
	return apiclient.Call(ctx, c.Client, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/cart/getCartById/" + apiclient.Segment(userID),
	}, func(body []byte) (models.Cart, error) {
		r, err := object(body)
		if err != nil {
			return models.Cart{}, err
		}
		if !r.Get("cartItems").IsArray() {
			return models.Cart{}, &apiclient.Error{Kind: apiclient.KindParse, Message: "Invalid response format: missing cartItems"}
		}
		cart, err := apiclient.JSON[models.Cart](body)
		if err != nil {
			return models.Cart{}, err
		}
		if cart.CartID == 0 {
			cart.CartID = userID
		}
		for i := range cart.CartItems {
			cart.CartItems[i].CartID = cart.CartID
		}
		return cart, nil
	})
}

type addCartItemBody struct {
	Quantity int `json:"quantity"`
	Cart     struct {
		CartID int64 `json:"cartId"`
	} `json:"cart"`
	Product struct {
		ProductID int `json:"productID"`
	} `json:"product"`
}

// AddItem puts a product into a persisted cart. The returned item carries the
// server-assigned id and the caller's product.
func (c *CartRepo) AddItem(ctx context.Context, cartID int64, product models.Product, quantity int) mo.Result[models.CartItem] {
	if cartID == 0 {
		return apiclient.Invalid[models.CartItem]("Cart is null")
	}
	if quantity <= 0 {
		return apiclient.Invalid[models.CartItem]("Quantity must be at least 1")
	}

	var body addCartItemBody
	body.Quantity = quantity
	body.Cart.CartID = cartID
	body.Product.ProductID = product.ProductID

	return apiclient.Call(ctx, c.Client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/cartItem/postCartItem",
		Body:   body,
	}, func(b []byte) (models.CartItem, error) {
		r, err := object(b)
		if err != nil {
			return models.CartItem{}, err
		}
		if err := requireFields(r, "cartItemId", "quantity"); err != nil {
			return models.CartItem{}, err
		}
		return models.CartItem{
			CartItemID: int(r.Get("cartItemId").Int()),
			Quantity:   int(r.Get("quantity").Int()),
			CartID:     cartID,
			Product:    product,
		}, nil
	})
}

func (c *CartRepo) UpdateQuantity(ctx context.Context, cartItemID, quantity int) mo.Result[struct{}] {
	if quantity <= 0 {
		return apiclient.Invalid[struct{}]("Quantity must be at least 1")
	}
	return apiclient.Call(ctx, c.Client, apiclient.Request{
		Method: http.MethodPut,
		Path:   "/api/cartItem/updateCartItem/" + apiclient.Segment(cartItemID),
		Body:   map[string]int{"quantity": quantity},
	}, apiclient.Discard)
}

func (c *CartRepo) DeleteItem(ctx context.Context, cartItemID int) mo.Result[struct{}] {
	return apiclient.Call(ctx, c.Client, apiclient.Request{
		Method: http.MethodDelete,
		Path:   "/api/cartItem/deleteCartItem/" + apiclient.Segment(cartItemID),
	}, apiclient.Discard)
}
