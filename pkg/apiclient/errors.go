package apiclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNetwork
	KindHTTP
	KindParse
	KindAuth
)

var (
	ErrValidation = errors.New("validation")
	ErrNetwork    = errors.New("network")
	ErrHTTP       = errors.New("http")
	ErrParse      = errors.New("parse")
	ErrAuth       = errors.New("auth")
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindParse:
		return "parse"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindNetwork:
		return ErrNetwork
	case KindHTTP:
		return ErrHTTP
	case KindParse:
		return ErrParse
	case KindAuth:
		return ErrAuth
	default:
		return nil
	}
}

// Error is the only error type that leaves a repository.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	default:
		return e.Kind.String() + " error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Message: fmt.Sprintf("Network error: %v", err), Err: err}
}

func Parse(err error) *Error {
	return &Error{Kind: KindParse, Message: fmt.Sprintf("Invalid response from server: %v", err), Err: err}
}

var errEmptyBody = errors.New("empty response body")

func EmptyBody() *Error {
	return &Error{Kind: KindParse, Message: "Empty response body", Err: errEmptyBody}
}

// FromStatus classifies a non-2xx response. body may be nil.
func FromStatus(status int, body []byte) *Error {
	switch status {
	case http.StatusUnauthorized:
		return &Error{Kind: KindAuth, Status: status, Message: "Unauthorized - Please login again"}
	case http.StatusForbidden:
		return &Error{Kind: KindAuth, Status: status, Message: "You don't have permission to perform this action"}
	}

	e := &Error{Kind: KindHTTP, Status: status, Message: fmt.Sprintf("Request failed: %d", status)}
	if msg := ServerMessage(body); msg != "" {
		e.Message = fmt.Sprintf("%s (%d)", msg, status)
	}
	return e
}

// ServerMessage extracts the backend's "message" or "error" field from a JSON body.
func ServerMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"message", "error"} {
		if r := gjson.GetBytes(body, path); r.Exists() && r.String() != "" {
			return r.String()
		}
	}
	return ""
}

// As normalizes any error into *Error; unknown errors are treated as network failures.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Network(err)
}

func KindOf(err error) Kind {
	if e := As(err); e != nil {
		return e.Kind
	}
	return 0
}

func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}
