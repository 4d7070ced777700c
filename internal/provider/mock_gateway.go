package provider

import (
	"context"
	"sync"
	"time"

	"github.com/ricirt/sms-engine/internal/domain"
)

// Call records one request made to MockGateway.
type Call struct {
	Mode     domain.Mode
	Batch    domain.BatchContext
	Messages []domain.OutboundMessage
	// Deadline is the context deadline, zero when none was set.
	Deadline time.Time
}

// MockGateway is a hand-written, in-memory Gateway used in unit tests.
// Respond builds the answer for each call; when nil every recipient is
// reported as SUCCESS.
type MockGateway struct {
	mu    sync.Mutex
	calls []Call

	Respond func(call Call) (*Response, error)
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) SendSingle(ctx context.Context, batch domain.BatchContext, msg domain.OutboundMessage) (*Response, error) {
	return m.record(ctx, Call{Mode: domain.ModeSingle, Batch: batch, Messages: []domain.OutboundMessage{msg}})
}

func (m *MockGateway) SendBulk(ctx context.Context, batch domain.BatchContext, msgs []domain.OutboundMessage) (*Response, error) {
	return m.record(ctx, Call{Mode: domain.ModeBulk, Batch: batch, Messages: msgs})
}

func (m *MockGateway) SendDynamic(ctx context.Context, batch domain.BatchContext, msgs []domain.OutboundMessage) (*Response, error) {
	return m.record(ctx, Call{Mode: domain.ModeDynamic, Batch: batch, Messages: msgs})
}

// Calls returns a copy of every recorded call.
func (m *MockGateway) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockGateway) record(ctx context.Context, c Call) (*Response, error) {
	c.Deadline, _ = ctx.Deadline()

	m.mu.Lock()
	m.calls = append(m.calls, c)
	respond := m.Respond
	m.mu.Unlock()

	if respond != nil {
		return respond(c)
	}
	return AcceptAll(c), nil
}

// AcceptAll answers a call as if the gateway accepted every message.
func AcceptAll(c Call) *Response {
	resp := &Response{Readable: true, Status: domain.StatusSuccess, StatusCode: "200"}
	for i, m := range c.Messages {
		resp.Items = append(resp.Items, domain.GatewayItemOutcome{
			Recipient:          m.Recipient,
			CsmsID:             c.Batch.ItemReference(i),
			GatewayReferenceID: "gw-" + c.Batch.ItemReference(i),
			StatusCode:         domain.StatusSuccess,
			StatusMessage:      "Success",
		})
	}
	return resp
}

var _ Gateway = (*MockGateway)(nil)
