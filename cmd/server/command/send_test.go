package command

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessages(t *testing.T) {
	req, err := parseMessages([]string{"8801700000001=hello", "8801700000002=a=b"})
	require.NoError(t, err)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "a=b", req.Messages[1].Body)

	_, err = parseMessages([]string{"8801700000001"})
	assert.Error(t, err)
}

func TestSend_Bulk(t *testing.T) {
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send-sms/bulk", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":"SUCCESS","smsinfo":[{"msisdn":"8801700000001","sms_status":"SUCCESS"}]}`)
	}))
	defer gw.Close()

	t.Setenv("SMS_GATEWAY_BASE_URL", gw.URL)
	t.Setenv("SMS_GATEWAY_API_TOKEN", "token")
	t.Setenv("SMS_GATEWAY_SID", "SID")
	t.Setenv("SMS_LOG_FILE", filepath.Join(t.TempDir(), "sms.log"))

	var out bytes.Buffer
	cmd := Send{App: &App{}, Out: &out}.Command()
	cmd.SetArgs([]string{"bulk", "--to", "8801700000001,8801700000002", "--body", "Notice"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), `"status": "PARTIAL_SUCCESS"`)
	assert.Contains(t, out.String(), `"message": "Sent 1 of 2 messages successfully"`)
}

func TestSend_SingleValidationFails(t *testing.T) {
	t.Setenv("SMS_GATEWAY_BASE_URL", "http://127.0.0.1:1")
	t.Setenv("SMS_GATEWAY_API_TOKEN", "token")
	t.Setenv("SMS_GATEWAY_SID", "SID")
	t.Setenv("SMS_LOG_FILE", filepath.Join(t.TempDir(), "sms.log"))

	var out bytes.Buffer
	cmd := Send{App: &App{}, Out: &out}.Command()
	cmd.SetArgs([]string{"single", "--body", "hi"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	assert.Error(t, cmd.ExecuteContext(context.Background()))
	assert.Empty(t, out.String())
}
