package provider_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ricirt/sms-engine/internal/domain"
	"github.com/ricirt/sms-engine/internal/provider"
)

var creds = provider.Credentials{APIToken: "test-token", SID: "TESTSID"}

func newGateway(url string, timeout time.Duration) *provider.SSLWireless {
	return provider.NewSSLWireless(url, creds, timeout, zap.NewNop())
}

func batchAt(mode domain.Mode) domain.BatchContext {
	return domain.NewBatchContext(mode, time.Date(2025, 3, 7, 14, 5, 9, 0, time.Local))
}

func TestSSLWireless_SendSingle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/send-sms", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body provider.SingleSendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-token", body.APIToken)
		assert.Equal(t, "TESTSID", body.SID)
		assert.Equal(t, "8801700000001", body.MSISDN)
		assert.Equal(t, "Hello", body.SMS)
		assert.Equal(t, "sms_20250307", body.CsmsID)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"SUCCESS","status_code":200,"smsinfo":[{"sms_status":"SUCCESS","status_message":"Success","msisdn":"8801700000001","reference_id":"R1","csms_id":"sms_20250307"}]}`)
	}))
	defer server.Close()

	resp, err := newGateway(server.URL+"/", time.Second).SendSingle(context.Background(), batchAt(domain.ModeSingle),
		domain.OutboundMessage{Recipient: "8801700000001", Body: "Hello"})
	require.NoError(t, err)
	require.True(t, resp.Readable)
	assert.Equal(t, "SUCCESS", resp.Status)
	assert.Equal(t, "200", resp.StatusCode)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "R1", resp.Items[0].GatewayReferenceID)
	assert.Equal(t, domain.StatusSuccess, resp.Items[0].StatusCode)
}

func TestSSLWireless_SendBulk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send-sms/bulk", r.URL.Path)

		var body provider.BulkSendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"8801700000001", "8801700000002"}, body.MSISDN)
		assert.Equal(t, "Notice", body.SMS)
		assert.Equal(t, "bulk_20250307_140509", body.BatchCsmsID)

		_, _ = io.WriteString(w, `{"status":"SUCCESS","status_code":"200","smsinfo":[]}`)
	}))
	defer server.Close()

	resp, err := newGateway(server.URL, time.Second).SendBulk(context.Background(), batchAt(domain.ModeBulk), []domain.OutboundMessage{
		{Recipient: "8801700000001", Body: "Notice"},
		{Recipient: "8801700000002", Body: "Notice"},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestSSLWireless_SendDynamic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send-sms/dynamic", r.URL.Path)

		var body provider.DynamicSendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.SMS, 2)
		assert.Equal(t, provider.DynamicItem{MSISDN: "8801700000001", Text: "Hi A", CsmsID: "dyn_20250307_140509_0000"}, body.SMS[0])
		assert.Equal(t, provider.DynamicItem{MSISDN: "8801700000001", Text: "Hi B", CsmsID: "dyn_20250307_140509_0001"}, body.SMS[1])

		_, _ = io.WriteString(w, `{"status":"SUCCESS"}`)
	}))
	defer server.Close()

	_, err := newGateway(server.URL, time.Second).SendDynamic(context.Background(), batchAt(domain.ModeDynamic), []domain.OutboundMessage{
		{Recipient: "8801700000001", Body: "Hi A"},
		{Recipient: "8801700000001", Body: "Hi B"},
	})
	require.NoError(t, err)
}

func TestSSLWireless_TransportErrors(t *testing.T) {
	msg := domain.OutboundMessage{Recipient: "8801700000001", Body: "Hello"}

	t.Run("non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream down", http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := newGateway(server.URL, time.Second).SendSingle(context.Background(), batchAt(domain.ModeSingle), msg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrGatewayTransport))

		var te *provider.TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, http.StatusBadGateway, te.StatusCode)
		assert.Equal(t, provider.ReasonHTTPStatus, te.Reason())
		assert.Equal(t, "gateway returned HTTP 502", te.Description())
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		_, err := newGateway(server.URL, 50*time.Millisecond).SendSingle(context.Background(), batchAt(domain.ModeSingle), msg)
		var te *provider.TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, provider.ReasonTimeout, te.Reason())
		assert.Equal(t, "gateway request timed out", te.Description())
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := newGateway(url, time.Second).SendSingle(context.Background(), batchAt(domain.ModeSingle), msg)
		var te *provider.TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, provider.ReasonConnection, te.Reason())
		assert.Equal(t, "gateway unreachable", te.Description())
	})
}

func TestSSLWireless_UnreadableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>maintenance</html>")
	}))
	defer server.Close()

	resp, err := newGateway(server.URL, time.Second).SendSingle(context.Background(), batchAt(domain.ModeSingle),
		domain.OutboundMessage{Recipient: "8801700000001", Body: "Hello"})
	require.NoError(t, err)
	assert.False(t, resp.Readable)
	assert.Empty(t, resp.Items)
}

func TestSSLWireless_OversizedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"SUCCESS","padding":"`+strings.Repeat("a", 1<<20)+`"}`)
	}))
	defer server.Close()

	core, logs := observer.New(zap.WarnLevel)
	gw := provider.NewSSLWireless(server.URL, creds, time.Second, zap.New(core))

	resp, err := gw.SendSingle(context.Background(), batchAt(domain.ModeSingle),
		domain.OutboundMessage{Recipient: "8801700000001", Body: "Hello"})
	require.NoError(t, err)
	assert.False(t, resp.Readable)
	assert.Equal(t, 1, logs.FilterMessage("gateway response truncated").Len())
	assert.Zero(t, logs.FilterMessage("gateway response is not a JSON object").Len())
}

func TestSSLWireless_BodyAtLimitIsParsed(t *testing.T) {
	const head, tail = `{"status":"SUCCESS","padding":"`, `"}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, head+strings.Repeat("a", 1<<20-len(head)-len(tail))+tail)
	}))
	defer server.Close()

	resp, err := newGateway(server.URL, time.Second).SendSingle(context.Background(), batchAt(domain.ModeSingle),
		domain.OutboundMessage{Recipient: "8801700000001", Body: "Hello"})
	require.NoError(t, err)
	assert.True(t, resp.Readable)
	assert.Equal(t, "SUCCESS", resp.Status)
}
