package repo

import (
	"context"
	"net/http"

	"github.com/samber/mo"

	"github.com/Skotchmaster/pawtopia/internal/models"
	"github.com/Skotchmaster/pawtopia/pkg/apiclient"
)

const (
	paymentDescription = "A Great Way to Spend Money to your Pets!"
	paymentRemarks     = "Shop Again!"
)

type PaymentRepo struct {
	Client *apiclient.Client
}

// CreateLink asks the backend for a GCash checkout page for the given amount.
func (p *PaymentRepo) CreateLink(ctx context.Context, totalPrice float64) mo.Result[models.PaymentLink] {
	if totalPrice <= 0 {
		return apiclient.Invalid[models.PaymentLink]("Payment amount must be positive")
	}
	return apiclient.Call(ctx, p.Client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/payment/create-payment",
		Body: models.PaymentRequest{
			TotalPrice:  totalPrice,
			Description: paymentDescription,
			Remarks:     paymentRemarks,
		},
	}, func(b []byte) (models.PaymentLink, error) {
		r, err := object(b)
		if err != nil {
			return models.PaymentLink{}, err
		}
		u := r.Get("checkoutUrl").String()
		if u == "" {
			return models.PaymentLink{}, &apiclient.Error{Kind: apiclient.KindParse, Message: "Error parsing payment response: missing checkoutUrl"}
		}
		return models.PaymentLink{
			CheckoutURL:     u,
			ReferenceNumber: r.Get("referenceNumber").String(),
			Success:         true,
		}, nil
	})
}
