package repo

import (
	"context"
	"net/http"

	"github.com/samber/mo"

	"github.com/Skotchmaster/pawtopia/internal/models"
	"github.com/Skotchmaster/pawtopia/pkg/apiclient"
)

type UserRepo struct {
	Client *apiclient.Client
}

func decodeAddress(body []byte) (models.AddressResponse, error) {
	r, err := object(body)
	if err != nil {
		return models.AddressResponse{}, err
	}
	if err := requireFields(r, "addressId", "region", "province", "city", "barangay", "postalCode"); err != nil {
		return models.AddressResponse{}, err
	}
	return apiclient.JSON[models.AddressResponse](body)
}

func (u *UserRepo) GetAddress(ctx context.Context, userID int64) mo.Result[models.AddressResponse] {
	return apiclient.Call(ctx, u.Client, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/adresses/get-users/" + apiclient.Segment(userID),
	}, decodeAddress)
}

func (u *UserRepo) UpdateAddress(ctx context.Context, userID int64, addr models.AddressRequest) mo.Result[struct{}] {
	return apiclient.Call(ctx, u.Client, apiclient.Request{
		Method: http.MethodPut,
		Path:   "/adresses/users/" + apiclient.Segment(userID),
		Body:   addr,
	}, apiclient.Discard)
}
