package repo

import (
	"context"
	"net/http"
	"net/url"

	"github.com/samber/mo"

	"github.com/Skotchmaster/pawtopia/internal/models"
	"github.com/Skotchmaster/pawtopia/pkg/apiclient"
)

type ProductRepo struct {
	Client *apiclient.Client
}

// List fetches the catalog, optionally narrowed server-side by product type.
func (p *ProductRepo) List(ctx context.Context, productType string) mo.Result[[]models.Product] {
	req := apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/product/getProduct",
	}
	if productType != "" {
		req.Query = url.Values{"type": {productType}}
	}
	return apiclient.Call(ctx, p.Client, req, apiclient.JSON[[]models.Product])
}
