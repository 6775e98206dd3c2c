package repo

import "errors"

var (
	errInvalidJSON = errors.New("malformed json")
	errNotObject   = errors.New("expected a json object")
)
