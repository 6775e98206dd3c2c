// Package repo holds one repository per backend resource. Every method returns a
// mo.Result and never lets an error escape in any other form.
package repo

import (
	"github.com/tidwall/gjson"

	"github.com/Skotchmaster/pawtopia/pkg/apiclient"
)

// object validates a non-empty JSON object body.
func object(body []byte) (gjson.Result, error) {
	if _, err := apiclient.RequireBody(body); err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, apiclient.Parse(errInvalidJSON)
	}
	r := gjson.ParseBytes(body)
	if !r.IsObject() {
		return gjson.Result{}, apiclient.Parse(errNotObject)
	}
	return r, nil
}

// requireFields reports the first missing field as a parse error.
func requireFields(r gjson.Result, fields ...string) error {
	for _, f := range fields {
		if !r.Get(f).Exists() {
			return &apiclient.Error{Kind: apiclient.KindParse, Message: "Invalid response format: missing " + f}
		}
	}
	return nil
}
