package provider

import (
	"context"

	"github.com/ricirt/sms-engine/internal/domain"
)

// Credentials authenticate every gateway call. They travel in the JSON body.
type Credentials struct {
	APIToken string
	SID      string
}

// SingleSendRequest is the JSON body posted to /send-sms.
type SingleSendRequest struct {
	APIToken string `json:"api_token"`
	SID      string `json:"sid"`
	MSISDN   string `json:"msisdn"`
	SMS      string `json:"sms"`
	CsmsID   string `json:"csms_id"`
}

// BulkSendRequest is the JSON body posted to /send-sms/bulk.
// Every number in MSISDN receives the same text.
type BulkSendRequest struct {
	APIToken    string   `json:"api_token"`
	SID         string   `json:"sid"`
	MSISDN      []string `json:"msisdn"`
	SMS         string   `json:"sms"`
	BatchCsmsID string   `json:"batch_csms_id"`
}

// DynamicSendRequest is the JSON body posted to /send-sms/dynamic.
type DynamicSendRequest struct {
	APIToken string        `json:"api_token"`
	SID      string        `json:"sid"`
	SMS      []DynamicItem `json:"sms"`
}

// DynamicItem is one per-recipient message of a dynamic send.
type DynamicItem struct {
	MSISDN string `json:"msisdn"`
	Text   string `json:"text"`
	CsmsID string `json:"csms_id"`
}

// Gateway abstracts the upstream SMS gateway.
// Each method issues exactly one HTTP request. A transport-level failure is
// returned as *TransportError; a 2xx answer is returned parsed, whatever its
// content.
type Gateway interface {
	SendSingle(ctx context.Context, batch domain.BatchContext, msg domain.OutboundMessage) (*Response, error)
	SendBulk(ctx context.Context, batch domain.BatchContext, msgs []domain.OutboundMessage) (*Response, error)
	SendDynamic(ctx context.Context, batch domain.BatchContext, msgs []domain.OutboundMessage) (*Response, error)
}
