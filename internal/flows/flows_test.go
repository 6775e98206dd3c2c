package flows

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/Skotchmaster/pawtopia/internal/catalog"
	"github.com/Skotchmaster/pawtopia/internal/models"
	"github.com/Skotchmaster/pawtopia/internal/session"
	"github.com/Skotchmaster/pawtopia/internal/validate"
	"github.com/Skotchmaster/pawtopia/pkg/apiclient"
)

type harness struct {
	e     *echo.Echo
	deps  *Deps
	calls atomic.Int32
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{e: echo.New()}
	h.e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h.calls.Add(1)
			return next(c)
		}
	})
	srv := httptest.NewServer(h.e)
	t.Cleanup(srv.Close)

	store := session.New(session.NewMemoryKV())
	api, err := apiclient.New(apiclient.Options{BaseURL: srv.URL, Tokens: store, Timeout: 2 * time.Second})
	require.NoError(t, err)
	admin, err := apiclient.New(apiclient.Options{BaseURL: srv.URL + "/admin", Tokens: store.Admin(), Timeout: 2 * time.Second})
	require.NoError(t, err)

	h.deps = NewDeps(store, api, admin)
	return h
}

func (h *harness) loginRoute() {
	h.e.POST("/users/login", func(c echo.Context) error {
		var req models.LoginRequest
		if err := c.Bind(&req); err != nil {
			return err
		}
		if req.Password != "secret1" {
			return c.NoContent(http.StatusUnauthorized)
		}
		return c.JSON(http.StatusOK, models.LoginResponse{
			Token: "tok-" + req.Username, UserID: 42, Username: req.Username, Email: req.Username + "@example.com", Role: models.RoleCustomer,
		})
	})
}

func signed(t *testing.T, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "root", "role": role}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func TestLogin_PopulatesSessionOnlyOnSuccess(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.loginRoute()
	ctx := context.Background()
	login := NewLogin(h.deps)

	res := login.Submit(ctx, validate.LoginForm{Username: "kai", Password: "secret1"})
	require.True(t, res.IsOk())
	assert.True(t, h.deps.Session.IsLoggedIn(ctx))
	assert.Equal(t, "tok-kai", h.deps.Session.Token(ctx))
	assert.EqualValues(t, 42, h.deps.Session.UserID(ctx))
	assert.Equal(t, "kai@example.com", h.deps.Session.Email(ctx))
	assert.Equal(t, "kai", h.deps.Session.Username(ctx))

	bad := login.Submit(ctx, validate.LoginForm{Username: "mo", Password: "nope"})
	require.True(t, bad.IsError())
	assert.True(t, apiclient.IsAuth(bad.Error()))
	assert.Equal(t, "tok-kai", h.deps.Session.Token(ctx))
	assert.Equal(t, "kai", h.deps.Session.Username(ctx))

	require.NoError(t, login.Logout(ctx))
	assert.False(t, h.deps.Session.IsLoggedIn(ctx))
	assert.Empty(t, h.deps.Session.Token(ctx))
	assert.Zero(t, h.deps.Session.UserID(ctx))
	assert.Empty(t, h.deps.Session.Email(ctx))
	assert.Empty(t, h.deps.Session.Username(ctx))
}

func TestLogin_EmptyFieldsNeverReachBackend(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.loginRoute()

	res := NewLogin(h.deps).Submit(context.Background(), validate.LoginForm{Username: "kai"})
	require.True(t, res.IsError())
	assert.Equal(t, "Password cannot be empty", res.Error().Error())
	assert.Zero(t, h.calls.Load())
}

func TestSignup_MismatchSendsNothing(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.e.POST("/users/signup", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })

	res := NewSignup(h.deps).Submit(context.Background(), validate.SignupForm{
		Username: "kai", FirstName: "Kai", LastName: "Reyes", Email: "kai@example.com",
		Password: "secret1", ConfirmPassword: "secret2",
	})
	require.True(t, res.IsError())
	assert.ErrorIs(t, res.Error(), apiclient.ErrValidation)
	assert.Equal(t, "Passwords don't match", res.Error().Error())
	assert.Zero(t, h.calls.Load())
	assert.False(t, h.deps.Session.IsLoggedIn(context.Background()))
}

func TestSignup_RegistersThenLogsIn(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.loginRoute()
	var role string
	h.e.POST("/users/signup", func(c echo.Context) error {
		body, _ := io.ReadAll(c.Request().Body)
		role = gjson.GetBytes(body, "role").String()
		if gjson.GetBytes(body, "username").String() == "taken" {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Username already registered"})
		}
		return c.NoContent(http.StatusCreated)
	})

	form := validate.SignupForm{
		Username: " kai ", FirstName: "Kai", LastName: "Reyes", Email: "kai@example.com",
		Password: "secret1", ConfirmPassword: "secret1",
	}
	res := NewSignup(h.deps).Submit(context.Background(), form)
	require.True(t, res.IsOk())
	assert.Equal(t, models.RoleCustomer, role)
	assert.Equal(t, "kai", res.MustGet().Username)
	assert.True(t, h.deps.Session.IsLoggedIn(context.Background()))

	form.Username = "taken"
	dup := NewSignup(h.deps).Submit(context.Background(), form)
	require.True(t, dup.IsError())
	assert.Equal(t, "Username is already taken", dup.Error().Error())
}

func TestLogin_GoogleStoresProvider(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.e.POST("/auth/google", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"token": "g-tok", "userId": 9, "email": "g@example.com", "username": "gee", "googleId": "1077",
		})
	})

	ctx := context.Background()
	res := NewLogin(h.deps).Google(ctx, "id-token")
	require.True(t, res.IsOk())
	assert.Equal(t, models.ProviderGoogle, h.deps.Session.AuthProvider(ctx))
	assert.Equal(t, "1077", h.deps.Session.ProviderID(ctx))
}

func TestBooking_SendsNestedUser(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.loginRoute()
	var sent []byte
	var auth string
	h.e.POST("/appointments/postAppointment", func(c echo.Context) error {
		sent, _ = io.ReadAll(c.Request().Body)
		auth = c.Request().Header.Get("Authorization")
		return c.JSONBlob(http.StatusOK, []byte(`{"appId":7}`))
	})

	ctx := context.Background()
	form := validate.AppointmentForm{
		Contact: "09171234567",
		Date:    time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC),
		Time:    "10:00",
		Service: models.ServiceGrooming,
		Price:   500,
	}

	anon := NewBooking(h.deps).Book(ctx, form)
	assert.ErrorIs(t, anon.Error(), apiclient.ErrAuth)

	require.True(t, NewLogin(h.deps).Submit(ctx, validate.LoginForm{Username: "kai", Password: "secret1"}).IsOk())

	res := NewBooking(h.deps).Book(ctx, form)
	require.True(t, res.IsOk())
	assert.EqualValues(t, 7, res.MustGet().AppointmentID)
	assert.EqualValues(t, 42, gjson.GetBytes(sent, "user.userId").Int())
	assert.Equal(t, "kai@example.com", gjson.GetBytes(sent, "email").String())
	assert.Equal(t, "Bearer tok-kai", auth)
}

func TestProducts_FetchOnceThenFilterInMemory(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.e.GET("/api/product/getProduct", func(c echo.Context) error {
		items := make([]models.Product, 10)
		for i := range items {
			items[i] = models.Product{ProductID: i + 1, ProductName: "Chew Toy", ProductType: "Toys"}
		}
		items[9].ProductType = "Food"
		return c.JSON(http.StatusOK, items)
	})

	p := NewProducts(h.deps)
	ctx := context.Background()

	all := p.Show(ctx, catalog.Query{Page: 1})
	require.True(t, all.IsOk())
	assert.Equal(t, 2, all.MustGet().Pages)
	assert.Len(t, all.MustGet().Items, 8)

	toys := p.Show(ctx, catalog.Query{Type: "Toys", Page: 2})
	require.True(t, toys.IsOk())
	assert.Len(t, toys.MustGet().Items, 1)

	none := p.Show(ctx, catalog.Query{Text: "no such thing"})
	require.True(t, none.IsOk())
	assert.Zero(t, none.MustGet().Pages)
	assert.Empty(t, none.MustGet().Items)

	assert.EqualValues(t, 1, h.calls.Load())
}

func TestAdmin_RoleGate(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	adminTok := signed(t, models.RoleAdmin)
	customerTok := signed(t, models.RoleCustomer)
	h.e.POST("/admin/login", func(c echo.Context) error {
		var req models.LoginRequest
		if err := c.Bind(&req); err != nil {
			return err
		}
		if req.Username == "root" {
			return c.String(http.StatusOK, adminTok)
		}
		return c.String(http.StatusOK, customerTok)
	})
	h.e.GET("/admin/all", func(c echo.Context) error {
		if c.Request().Header.Get("Authorization") != "Bearer "+adminTok {
			return c.NoContent(http.StatusForbidden)
		}
		return c.JSON(http.StatusOK, []models.User{{UserID: 1, Username: "kai"}})
	})

	ctx := context.Background()
	a := NewAdmin(h.deps)

	users := a.Users(ctx)
	assert.Equal(t, "Unauthorized: No admin token found", users.Error().Error())

	denied := a.Login(ctx, "kai", "pw")
	require.True(t, denied.IsError())
	assert.True(t, apiclient.IsAuth(denied.Error()))
	assert.Empty(t, h.deps.Session.Admin().Token(ctx))

	require.True(t, a.Login(ctx, "root", "pw").IsOk())
	assert.Equal(t, "root", h.deps.Session.AdminUsername(ctx))
	assert.False(t, h.deps.Session.IsLoggedIn(ctx), "admin login does not create a customer session")

	users = a.Users(ctx)
	require.True(t, users.IsOk())
	assert.Len(t, users.MustGet(), 1)

	bad := a.Update(ctx, 1, models.AdminUserUpdate{Username: "kai", Email: "nope"})
	assert.ErrorIs(t, bad.Error(), apiclient.ErrValidation)
}
