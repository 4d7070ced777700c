package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricirt/sms-engine/internal/domain"
)

var callTime = time.Date(2025, 3, 7, 14, 5, 9, 0, time.Local)

func TestNewBatchContext(t *testing.T) {
	tests := []struct {
		mode domain.Mode
		want string
	}{
		{domain.ModeSingle, "sms_20250307"},
		{domain.ModeBulk, "bulk_20250307_140509"},
		{domain.ModeDynamic, "dyn_20250307_140509"},
	}

	for _, tc := range tests {
		t.Run(string(tc.mode), func(t *testing.T) {
			b := domain.NewBatchContext(tc.mode, callTime)
			assert.Equal(t, tc.want, b.BatchID)
			assert.Equal(t, tc.mode, b.Mode)
		})
	}
}

func TestBatchContext_ItemReference(t *testing.T) {
	t.Run("dynamic references are zero padded and unique", func(t *testing.T) {
		b := domain.NewBatchContext(domain.ModeDynamic, callTime)

		seen := map[string]bool{}
		for i := 0; i < 12; i++ {
			ref := b.ItemReference(i)
			assert.Regexp(t, `^dyn_\d{8}_\d{6}_\d{4}$`, ref)
			assert.False(t, seen[ref], "duplicate reference %q", ref)
			seen[ref] = true
		}
		assert.Equal(t, "dyn_20250307_140509_0007", b.ItemReference(7))
	})

	t.Run("bulk items share the batch id", func(t *testing.T) {
		b := domain.NewBatchContext(domain.ModeBulk, callTime)
		assert.Equal(t, b.BatchID, b.ItemReference(0))
		assert.Equal(t, b.BatchID, b.ItemReference(3))
	})

	t.Run("single reference is date grained", func(t *testing.T) {
		morning := domain.NewBatchContext(domain.ModeSingle, callTime.Add(-10*time.Hour))
		evening := domain.NewBatchContext(domain.ModeSingle, callTime.Add(5*time.Hour))
		assert.Equal(t, morning.ItemReference(0), evening.ItemReference(0))
	})
}

func TestBulkRecipient_UnmarshalJSON(t *testing.T) {
	var req domain.BulkRequest
	raw := `{"body":"hi","recipients":["8801700000001",{"recipient":"8801700000002","clientReference":"c-2"}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &req))

	assert.Equal(t, []domain.BulkRecipient{
		{Recipient: "8801700000001"},
		{Recipient: "8801700000002", ClientReference: "c-2"},
	}, req.Recipients)

	t.Run("rejects numbers", func(t *testing.T) {
		var r domain.BulkRecipient
		assert.Error(t, json.Unmarshal([]byte(`8801700000001`), &r))
	})
}

func TestValidationError(t *testing.T) {
	err := error(&domain.ValidationError{Fields: []domain.FieldError{
		{Field: "recipient", Message: "is required"},
		{Field: "body", Message: "must be at most 1000 characters"},
	}})

	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.EqualError(t, err, "validation failed: recipient: is required; body: must be at most 1000 characters")
}

func TestDispatchResult_SuccessCount(t *testing.T) {
	r := domain.DispatchResult{Items: []domain.ItemResult{
		{Status: domain.StatusSuccess},
		{Status: domain.StatusFailed},
		{Status: domain.StatusSuccess},
		{Status: domain.StatusError},
	}}
	assert.Equal(t, 2, r.SuccessCount())
	assert.Equal(t, 0, domain.CountSuccess(nil))
}
