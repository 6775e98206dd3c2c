package apiclient

import (
	"bytes"
	"context"

	"github.com/goccy/go-json"
	"github.com/samber/mo"
)

// Decoder turns a 2xx body into a value. Returned errors are reported as parse errors.
type Decoder[T any] func(body []byte) (T, error)

// Call runs one request and folds every outcome into a Result. It never panics
// and never returns a non-*Error failure.
func Call[T any](ctx context.Context, c *Client, r Request, decode Decoder[T]) mo.Result[T] {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return mo.Err[T](As(err))
	}
	v, err := decode(resp.Body)
	if err != nil {
		if e, ok := err.(*Error); ok {
			return mo.Err[T](e)
		}
		return mo.Err[T](Parse(err))
	}
	return mo.Ok(v)
}

// JSON decodes a non-empty body into T.
func JSON[T any](body []byte) (T, error) {
	var v T
	if len(bytes.TrimSpace(body)) == 0 {
		return v, EmptyBody()
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return v, err
	}
	return v, nil
}

// RequireBody rejects an empty body and otherwise ignores it.
func RequireBody(body []byte) ([]byte, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, EmptyBody()
	}
	return body, nil
}

// Discard accepts any 2xx body, including an empty one.
func Discard([]byte) (struct{}, error) {
	return struct{}{}, nil
}

func Fail[T any](err error) mo.Result[T] {
	return mo.Err[T](As(err))
}

func Invalid[T any](msg string) mo.Result[T] {
	return mo.Err[T](Validation(msg))
}

// ErrorOf returns the *Error held by a failed result, or nil.
func ErrorOf[T any](r mo.Result[T]) *Error {
	if r.IsOk() {
		return nil
	}
	return As(r.Error())
}
