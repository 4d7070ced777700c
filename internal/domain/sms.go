package domain

import (
	"bytes"
	"encoding/json"
)

// Status values reported by the gateway and by this service.
const (
	StatusSuccess        = "SUCCESS"
	StatusFailed         = "FAILED"
	StatusError          = "ERROR"
	StatusPartialSuccess = "PARTIAL_SUCCESS"
)

// MaxBodyLength is the longest message body accepted, counted in characters.
const MaxBodyLength = 1000

// OutboundMessage is one (recipient, body) pair ready for dispatch.
// Every dispatch mode flattens its request into a slice of these.
type OutboundMessage struct {
	Recipient       string
	Body            string
	ClientReference string
}

// GatewayItemOutcome is one entry of the gateway's smsinfo array.
// Empty strings mean the gateway did not supply the field.
type GatewayItemOutcome struct {
	Recipient          string
	GatewayReferenceID string
	CsmsID             string
	StatusCode         string
	StatusMessage      string
	EchoedBody         string
	EchoedType         string
}

// ItemResult is the outcome reported for a single requested recipient.
type ItemResult struct {
	Recipient          string `json:"recipient"`
	ReferenceID        string `json:"referenceId"`
	GatewayReferenceID string `json:"gatewayReferenceId,omitempty"`
	CsmsID             string `json:"csmsId,omitempty"`
	ClientReference    string `json:"clientReference,omitempty"`
	Status             string `json:"status"`
	Message            string `json:"message"`
	SmsType            string `json:"smsType,omitempty"`
	SmsBody            string `json:"smsBody,omitempty"`
}

// DispatchResult is returned for bulk and dynamic sends.
//
// Success is true when at least one item was accepted by the gateway.
// A partially failed batch is therefore reported as Success=true with
// Status=PARTIAL_SUCCESS; callers must inspect Items for per-recipient
// outcomes. Items always has one entry per requested recipient, in
// request order.
type DispatchResult struct {
	Success bool         `json:"success"`
	Status  string       `json:"status"`
	Message string       `json:"message"`
	BatchID string       `json:"batchId"`
	Items   []ItemResult `json:"items"`
}

// SuccessCount returns the number of items with status SUCCESS.
func (r *DispatchResult) SuccessCount() int {
	return CountSuccess(r.Items)
}

// CountSuccess returns the number of items with status SUCCESS.
func CountSuccess(items []ItemResult) int {
	n := 0
	for _, it := range items {
		if it.Status == StatusSuccess {
			n++
		}
	}
	return n
}

// SingleResult is returned for single sends.
type SingleResult struct {
	Success            bool   `json:"success"`
	Status             string `json:"status"`
	StatusCode         string `json:"statusCode,omitempty"`
	Message            string `json:"message"`
	ReferenceID        string `json:"referenceId"`
	Recipient          string `json:"recipient"`
	CsmsID             string `json:"csmsId,omitempty"`
	ClientReference    string `json:"clientReference,omitempty"`
	GatewayReferenceID string `json:"gatewayReferenceId,omitempty"`
	EchoedType         string `json:"echoedType,omitempty"`
	EchoedBody         string `json:"echoedBody,omitempty"`
}

// SingleRequest is the inbound payload for POST /sms/single.
type SingleRequest struct {
	Recipient       string `json:"recipient" validate:"required"`
	Body            string `json:"body" validate:"required,max=1000"`
	ClientReference string `json:"clientReference,omitempty"`
}

// BulkRequest is the inbound payload for POST /sms/bulk: one body, many recipients.
type BulkRequest struct {
	Recipients []BulkRecipient `json:"recipients" validate:"required,min=1,max=1000,dive"`
	Body       string          `json:"body" validate:"required,max=1000"`
}

// BulkRecipient is one bulk recipient. It decodes from either a bare
// phone number string or an object {"recipient": "...", "clientReference": "..."}.
type BulkRecipient struct {
	Recipient       string `json:"recipient" validate:"required"`
	ClientReference string `json:"clientReference,omitempty"`
}

func (r *BulkRecipient) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.Recipient)
	}
	type plain BulkRecipient
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = BulkRecipient(p)
	return nil
}

// DynamicRequest is the inbound payload for POST /sms/dynamic: a distinct body per recipient.
type DynamicRequest struct {
	Messages []DynamicMessage `json:"messages" validate:"required,min=1,max=1000,dive"`
}

// DynamicMessage is one (recipient, body) pair of a dynamic request.
type DynamicMessage struct {
	Recipient       string `json:"recipient" validate:"required"`
	Body            string `json:"body" validate:"required,max=1000"`
	ClientReference string `json:"clientReference,omitempty"`
}
