package repo

import (
	"context"
	"net/http"
	"strings"

	"github.com/samber/mo"

	"github.com/Skotchmaster/pawtopia/internal/models"
	"github.com/Skotchmaster/pawtopia/pkg/apiclient"
)

// AdminRepo talks to the admin-scoped user endpoints. Client must be built
// against the admin base URL with the admin token source.
type AdminRepo struct {
	Client *apiclient.Client
	Tokens apiclient.TokenSource
}

func errNoAdminToken() *apiclient.Error {
	return &apiclient.Error{Kind: apiclient.KindAuth, Message: "Unauthorized: No admin token found"}
}

func (a *AdminRepo) authorized(ctx context.Context) bool {
	return a.Tokens != nil && a.Tokens.Token(ctx) != ""
}

// Login returns the raw admin token; the backend answers with a plain-text body.
func (a *AdminRepo) Login(ctx context.Context, username, password string) mo.Result[string] {
	if username == "" || password == "" {
		return apiclient.Invalid[string]("Please enter both username and password")
	}
	return apiclient.Call(ctx, a.Client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/login",
		Body:   models.LoginRequest{Username: username, Password: password},
	}, func(b []byte) (string, error) {
		if _, err := apiclient.RequireBody(b); err != nil {
			return "", err
		}
		tok := strings.Trim(strings.TrimSpace(string(b)), `"`)
		if tok == "" {
			return "", apiclient.EmptyBody()
		}
		return tok, nil
	})
}

func (a *AdminRepo) ListUsers(ctx context.Context) mo.Result[[]models.User] {
	if !a.authorized(ctx) {
		return mo.Err[[]models.User](errNoAdminToken())
	}
	return apiclient.Call(ctx, a.Client, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/all",
	}, apiclient.JSON[[]models.User])
}

func (a *AdminRepo) UpdateUser(ctx context.Context, userID int64, upd models.AdminUserUpdate) mo.Result[struct{}] {
	if !a.authorized(ctx) {
		return mo.Err[struct{}](errNoAdminToken())
	}
	return apiclient.Call(ctx, a.Client, apiclient.Request{
		Method: http.MethodPut,
		Path:   "/update/" + apiclient.Segment(userID),
		Body:   upd,
	}, apiclient.Discard)
}

func (a *AdminRepo) DeleteUser(ctx context.Context, userID int64) mo.Result[struct{}] {
	if !a.authorized(ctx) {
		return mo.Err[struct{}](errNoAdminToken())
	}
	return apiclient.Call(ctx, a.Client, apiclient.Request{
		Method: http.MethodDelete,
		Path:   "/delete/" + apiclient.Segment(userID),
	}, apiclient.Discard)
}
