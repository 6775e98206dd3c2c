package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, e *echo.Echo, tokens TokenSource, retries int) *Client {
	t.Helper()

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	c, err := New(Options{
		BaseURL: srv.URL,
		Tokens:  tokens,
		Timeout: 2 * time.Second,
		Retries: retries,
	})
	require.NoError(t, err)
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	t.Parallel()

	_, err := New(Options{BaseURL: "/api"})
	require.Error(t, err)
}

func TestDo_AddsBearerOnlyWhenTokenPresent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tokens TokenSource
		want   string
	}{
		{name: "with token", tokens: StaticToken("abc"), want: "Bearer abc"},
		{name: "empty token", tokens: StaticToken(""), want: ""},
		{name: "no source", tokens: nil, want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := echo.New()
			var got, rid string
			e.GET("/users/me", func(c echo.Context) error {
				got = c.Request().Header.Get("Authorization")
				rid = c.Request().Header.Get("X-Request-ID")
				return c.JSON(http.StatusOK, item{ID: 1})
			})

			c := newTestClient(t, e, tt.tokens, 0)
			res := Call(context.Background(), c, Request{Method: http.MethodGet, Path: "/users/me"}, JSON[item])
			require.True(t, res.IsOk())
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, rid)
		})
	}
}

func TestDo_StatusClassification(t *testing.T) {
	t.Parallel()

	e := echo.New()
	e.GET("/401", func(c echo.Context) error { return c.NoContent(http.StatusUnauthorized) })
	e.GET("/403", func(c echo.Context) error { return c.NoContent(http.StatusForbidden) })
	e.GET("/400", func(c echo.Context) error {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Email already exists"})
	})
	e.GET("/409", func(c echo.Context) error {
		return c.JSON(http.StatusConflict, map[string]string{"error": "duplicate"})
	})
	e.GET("/500", func(c echo.Context) error { return c.String(http.StatusInternalServerError, "boom") })

	c := newTestClient(t, e, nil, 0)
	ctx := context.Background()

	tests := []struct {
		path    string
		kind    Kind
		status  int
		message string
	}{
		{path: "/401", kind: KindAuth, status: 401, message: "Unauthorized - Please login again"},
		{path: "/403", kind: KindAuth, status: 403},
		{path: "/400", kind: KindHTTP, status: 400, message: "Email already exists (400)"},
		{path: "/409", kind: KindHTTP, status: 409, message: "duplicate (409)"},
		{path: "/500", kind: KindHTTP, status: 500, message: "Request failed: 500"},
	}

	for _, tt := range tests {
		res := Call(ctx, c, Request{Method: http.MethodGet, Path: tt.path}, JSON[item])
		require.True(t, res.IsError(), tt.path)

		apiErr := ErrorOf(res)
		require.NotNil(t, apiErr)
		assert.Equal(t, tt.kind, apiErr.Kind, tt.path)
		assert.Equal(t, tt.status, apiErr.Status, tt.path)
		if tt.message != "" {
			assert.Equal(t, tt.message, apiErr.Error(), tt.path)
		}
	}
}

func TestCall_EmptyBodyIsParseError(t *testing.T) {
	t.Parallel()

	e := echo.New()
	e.GET("/empty", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/garbage", func(c echo.Context) error { return c.String(http.StatusOK, "{not json") })

	c := newTestClient(t, e, nil, 0)

	res := Call(context.Background(), c, Request{Method: http.MethodGet, Path: "/empty"}, JSON[item])
	require.True(t, res.IsError())
	assert.True(t, errors.Is(res.Error(), ErrParse))
	assert.Equal(t, "Empty response body", res.Error().Error())

	res = Call(context.Background(), c, Request{Method: http.MethodGet, Path: "/garbage"}, JSON[item])
	require.True(t, res.IsError())
	assert.Equal(t, KindParse, KindOf(res.Error()))

	ok := Call(context.Background(), c, Request{Method: http.MethodGet, Path: "/empty"}, Discard)
	assert.True(t, ok.IsOk())
}

func TestDo_RetriesIdempotentOnGatewayErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	e := echo.New()
	e.GET("/flaky", func(c echo.Context) error {
		if calls.Add(1) < 3 {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.JSON(http.StatusOK, item{ID: 7, Name: "ok"})
	})

	c := newTestClient(t, e, nil, 2)
	res := Call(context.Background(), c, Request{Method: http.MethodGet, Path: "/flaky"}, JSON[item])
	require.True(t, res.IsOk())
	assert.Equal(t, 7, res.MustGet().ID)
	assert.EqualValues(t, 3, calls.Load())
}

func TestDo_NeverRetriesPost(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	e := echo.New()
	e.POST("/orders", func(c echo.Context) error {
		calls.Add(1)
		return c.NoContent(http.StatusServiceUnavailable)
	})

	c := newTestClient(t, e, nil, 3)
	res := Call(context.Background(), c, Request{Method: http.MethodPost, Path: "/orders", Body: item{ID: 1}}, JSON[item])
	require.True(t, res.IsError())
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, 503, ErrorOf(res).Status)
}

func TestDo_NetworkErrorIsWrapped(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: base, Timeout: time.Second})
	require.NoError(t, err)

	res := Call(context.Background(), c, Request{Method: http.MethodPost, Path: "/x"}, JSON[item])
	require.True(t, res.IsError())
	assert.True(t, errors.Is(res.Error(), ErrNetwork))
}

func TestDo_QueryAndEscapedSegment(t *testing.T) {
	t.Parallel()

	e := echo.New()
	var gotParam, gotQuery string
	e.GET("/appointments/byUserEmail/:email", func(c echo.Context) error {
		gotParam, _ = url.PathUnescape(c.Param("email"))
		gotQuery = c.QueryParam("type")
		return c.JSON(http.StatusOK, []item{})
	})

	c := newTestClient(t, e, nil, 0)
	res := Call(context.Background(), c, Request{
		Method: http.MethodGet,
		Path:   "/appointments/byUserEmail/" + Segment("a b@x.com"),
		Query:  url.Values{"type": {"Toys"}},
	}, JSON[[]item])
	require.True(t, res.IsOk())
	assert.Equal(t, "a b@x.com", gotParam)
	assert.Equal(t, "Toys", gotQuery)
}
