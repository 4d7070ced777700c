package provider

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ricirt/sms-engine/internal/domain"
)

// DefaultBatchMessage is used when the gateway gives no error text of its own.
const DefaultBatchMessage = "No status returned by gateway"

// Response is the gateway answer after defensive parsing.
type Response struct {
	// Readable is false when the body was not a JSON object.
	Readable     bool
	Status       string
	StatusCode   string
	ErrorMessage string
	Items        []domain.GatewayItemOutcome
}

// BatchMessage is the batch-level text attributed to recipients the
// gateway did not report on.
func (r *Response) BatchMessage() string {
	if r.ErrorMessage != "" {
		return r.ErrorMessage
	}
	return DefaultBatchMessage
}

// ParseResponse never fails: every field is looked up with a default, so a
// missing or malformed field only degrades that field. A body that is not
// a JSON object yields a Response with Readable=false and no items.
func ParseResponse(body []byte) *Response {
	if !gjson.ValidBytes(body) {
		return &Response{}
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return &Response{}
	}

	resp := &Response{
		Readable:     true,
		Status:       statusField(root, "status", ""),
		StatusCode:   stringField(root, "status_code", ""),
		ErrorMessage: stringField(root, "error_message", ""),
	}

	info := root.Get("smsinfo")
	entries := info.Array() // a lone object is returned as a one-element slice
	for _, e := range entries {
		if !e.IsObject() {
			continue
		}
		resp.Items = append(resp.Items, domain.GatewayItemOutcome{
			Recipient:          stringField(e, "msisdn", ""),
			GatewayReferenceID: stringField(e, "reference_id", ""),
			CsmsID:             stringField(e, "csms_id", ""),
			StatusCode:         statusField(e, "sms_status", domain.StatusFailed),
			StatusMessage:      stringField(e, "status_message", ""),
			EchoedBody:         stringField(e, "sms_body", ""),
			EchoedType:         stringField(e, "sms_type", ""),
		})
	}
	return resp
}

// stringField returns obj[key] as text. Strings and numbers are accepted;
// a missing, null, blank or structured value yields def.
func stringField(obj gjson.Result, key, def string) string {
	v := obj.Get(gjson.Escape(key))
	switch v.Type {
	case gjson.String:
		if s := strings.TrimSpace(v.Str); s != "" {
			return s
		}
	case gjson.Number:
		return v.Raw
	}
	return def
}

// statusField is stringField upper-cased, so "Success" and "SUCCESS" compare equal.
func statusField(obj gjson.Result, key, def string) string {
	return strings.ToUpper(stringField(obj, key, def))
}
