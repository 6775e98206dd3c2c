package repo

import (
	"context"
	"net/http"

	"github.com/samber/mo"

	"github.com/Skotchmaster/pawtopia/internal/models"
	"github.com/Skotchmaster/pawtopia/pkg/apiclient"
)

type AuthRepo struct {
	Client *apiclient.Client
}

func decodeLogin(body []byte) (models.LoginResponse, error) {
	r, err := object(body)
	if err != nil {
		return models.LoginResponse{}, err
	}
	if e := r.Get("error"); e.Exists() {
		return models.LoginResponse{}, &apiclient.Error{Kind: apiclient.KindAuth, Message: "Login failed: " + e.String()}
	}
	if err := requireFields(r, "token", "userId", "email", "username"); err != nil {
		return models.LoginResponse{}, err
	}
	return apiclient.JSON[models.LoginResponse](body)
}

func (a *AuthRepo) Login(ctx context.Context, username, password string) mo.Result[models.LoginResponse] {
	res := apiclient.Call(ctx, a.Client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/users/login",
		Body:   models.LoginRequest{Username: username, Password: password},
	}, decodeLogin)

	if e := apiclient.ErrorOf(res); e != nil && e.Kind == apiclient.KindAuth && e.Status != 0 {
		e.Message = "Invalid username or password"
	}
	return res
}

func (a *AuthRepo) Signup(ctx context.Context, req models.SignupRequest) mo.Result[struct{}] {
	if req.Role == "" {
		req.Role = models.RoleCustomer
	}
	return apiclient.Call(ctx, a.Client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/users/signup",
		Body:   req,
	}, apiclient.Discard)
}

func (a *AuthRepo) Me(ctx context.Context) mo.Result[models.User] {
	return apiclient.Call(ctx, a.Client, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/users/me",
	}, apiclient.JSON[models.User])
}

func decodeGoogle(body []byte) (models.LoginResponse, error) {
	r, err := object(body)
	if err != nil {
		return models.LoginResponse{}, err
	}
	if !r.Get("token").Exists() {
		msg := r.Get("message").String()
		if msg == "" {
			msg = "Authentication failed"
		}
		return models.LoginResponse{}, &apiclient.Error{Kind: apiclient.KindAuth, Message: msg}
	}
	if err := requireFields(r, "userId", "email", "username"); err != nil {
		return models.LoginResponse{}, err
	}
	return apiclient.JSON[models.LoginResponse](body)
}

// GoogleExchange trades a Google ID token for a backend session token.
func (a *AuthRepo) GoogleExchange(ctx context.Context, idToken string) mo.Result[models.LoginResponse] {
	if idToken == "" {
		return apiclient.Invalid[models.LoginResponse]("Authentication error: No token received")
	}
	return apiclient.Call(ctx, a.Client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/google",
		Body:   models.GoogleAuthRequest{Token: idToken, Platform: "android"},
	}, decodeGoogle)
}
