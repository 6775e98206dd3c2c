package flows

import (
	"context"

	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/Skotchmaster/pawtopia/internal/catalog"
	"github.com/Skotchmaster/pawtopia/internal/models"
	"github.com/Skotchmaster/pawtopia/internal/screen"
	"github.com/Skotchmaster/pawtopia/internal/session"
	"github.com/Skotchmaster/pawtopia/pkg/apiclient"
)

// Products fetches the catalog once and serves every filter and page from memory.
type Products struct {
	*Deps
	Browser *catalog.Browser
	loaded  bool
}

func NewProducts(d *Deps) *Products {
	return &Products{Deps: d, Browser: catalog.NewBrowser(nil)}
}

func (p *Products) Show(ctx context.Context, q catalog.Query) mo.Result[catalog.View] {
	if !p.loaded {
		if err := p.Browser.Load(ctx, p.Products); err != nil {
			return apiclient.Fail[catalog.View](err)
		}
		p.loaded = true
	}
	return mo.Ok(p.Browser.Render(q))
}

// Refresh drops the in-memory list so the next Show fetches again.
func (p *Products) Refresh() { p.loaded = false }

type Cart struct {
	*Deps
	action screen.Action[models.Cart]
}

func NewCart(d *Deps) *Cart { return &Cart{Deps: d} }

func (c *Cart) Get(ctx context.Context) mo.Result[models.Cart] {
	return withSession(ctx, c.Deps, func(s session.Session) mo.Result[models.Cart] {
		return c.action.Run(ctx, func(ctx context.Context) mo.Result[models.Cart] {
			return c.Carts.GetByUserID(ctx, s.UserID)
		})
	})
}

// Add puts productID into the user's cart, looking the product up in the catalog.
func (c *Cart) Add(ctx context.Context, productID, quantity int) mo.Result[models.CartItem] {
	cart := c.Get(ctx)
	if cart.IsError() {
		return mo.Err[models.CartItem](cart.Error())
	}
	products := c.Products.List(ctx, "")
	if products.IsError() {
		return mo.Err[models.CartItem](products.Error())
	}
	product, ok := lo.Find(products.MustGet(), func(p models.Product) bool { return p.ProductID == productID })
	if !ok {
		return apiclient.Invalid[models.CartItem]("Product not found")
	}
	return c.Carts.AddItem(ctx, cart.MustGet().CartID, product, quantity)
}

func (c *Cart) SetQuantity(ctx context.Context, cartItemID, quantity int) mo.Result[struct{}] {
	return withSession(ctx, c.Deps, func(session.Session) mo.Result[struct{}] {
		return c.Carts.UpdateQuantity(ctx, cartItemID, quantity)
	})
}

func (c *Cart) Remove(ctx context.Context, cartItemID int) mo.Result[struct{}] {
	return withSession(ctx, c.Deps, func(session.Session) mo.Result[struct{}] {
		return c.Carts.DeleteItem(ctx, cartItemID)
	})
}

type Orders struct {
	*Deps
}

func NewOrders(d *Deps) *Orders { return &Orders{Deps: d} }

func (o *Orders) List(ctx context.Context) mo.Result[[]models.Order] {
	return withSession(ctx, o.Deps, func(s session.Session) mo.Result[[]models.Order] {
		return o.Orders.ListByUser(ctx, s.UserID)
	})
}

func (o *Orders) Details(ctx context.Context, orderID int) mo.Result[models.Order] {
	return o.Orders.Details(ctx, orderID)
}
