package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ricirt/sms-engine/internal/domain"
)

const (
	singlePath  = "/send-sms"
	bulkPath    = "/send-sms/bulk"
	dynamicPath = "/send-sms/dynamic"

	// maxResponseBytes bounds how much of a gateway body is read.
	maxResponseBytes = 1 << 20
	// maxLoggedBody bounds the body excerpt attached to warning logs.
	maxLoggedBody = 512
)

// SSLWireless sends SMS through the SSL Wireless JSON API.
// The base URL is injected from config so tests can point to a local mock.
// One client is shared by every request so connections are pooled.
type SSLWireless struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	logger     *zap.Logger
}

func NewSSLWireless(baseURL string, creds Credentials, timeout time.Duration, logger *zap.Logger) *SSLWireless {
	return &SSLWireless{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SendSingle posts one message with csms_id set to the batch reference.
func (p *SSLWireless) SendSingle(ctx context.Context, batch domain.BatchContext, msg domain.OutboundMessage) (*Response, error) {
	return p.post(ctx, singlePath, SingleSendRequest{
		APIToken: p.creds.APIToken,
		SID:      p.creds.SID,
		MSISDN:   msg.Recipient,
		SMS:      msg.Body,
		CsmsID:   batch.ItemReference(0),
	})
}

// SendBulk posts one text to every recipient. Callers guarantee that all
// messages carry the same body; the first one is used.
func (p *SSLWireless) SendBulk(ctx context.Context, batch domain.BatchContext, msgs []domain.OutboundMessage) (*Response, error) {
	numbers := make([]string, len(msgs))
	for i, m := range msgs {
		numbers[i] = m.Recipient
	}
	var text string
	if len(msgs) > 0 {
		text = msgs[0].Body
	}
	return p.post(ctx, bulkPath, BulkSendRequest{
		APIToken:    p.creds.APIToken,
		SID:         p.creds.SID,
		MSISDN:      numbers,
		SMS:         text,
		BatchCsmsID: batch.BatchID,
	})
}

// SendDynamic posts a distinct text per recipient, each tagged with its
// positional reference.
func (p *SSLWireless) SendDynamic(ctx context.Context, batch domain.BatchContext, msgs []domain.OutboundMessage) (*Response, error) {
	items := make([]DynamicItem, len(msgs))
	for i, m := range msgs {
		items[i] = DynamicItem{
			MSISDN: m.Recipient,
			Text:   m.Body,
			CsmsID: batch.ItemReference(i),
		}
	}
	return p.post(ctx, dynamicPath, DynamicSendRequest{
		APIToken: p.creds.APIToken,
		SID:      p.creds.SID,
		SMS:      items,
	})
}

func (p *SSLWireless) post(ctx context.Context, path string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	// one byte past the limit tells a truncated body from one that fits
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	truncated := len(raw) > maxResponseBytes
	if truncated {
		raw = raw[:maxResponseBytes]
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.logger.Warn("gateway returned non-success status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", excerpt(raw)),
		)
		return nil, &TransportError{StatusCode: resp.StatusCode}
	}
	if err != nil {
		return nil, &TransportError{Err: errors.Wrap(err, "read response")}
	}

	if truncated {
		p.logger.Warn("gateway response truncated",
			zap.String("path", path),
			zap.Int("limit_bytes", maxResponseBytes),
		)
		return &Response{}, nil
	}

	parsed := ParseResponse(raw)
	if !parsed.Readable {
		p.logger.Warn("gateway response is not a JSON object",
			zap.String("path", path),
			zap.String("body", excerpt(raw)),
		)
	}
	p.logger.Debug("gateway call completed",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("items", len(parsed.Items)),
	)
	return parsed, nil
}

func excerpt(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "..."
	}
	return string(b)
}

// compile-time check that SSLWireless implements Gateway
var _ Gateway = (*SSLWireless)(nil)
