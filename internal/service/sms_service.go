package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ricirt/sms-engine/internal/domain"
	"github.com/ricirt/sms-engine/internal/provider"
)

// MetricHooks are optional callbacks invoked after every dispatch.
// Using function fields instead of importing the metrics package keeps the
// service independent of Prometheus.
type MetricHooks struct {
	OnDispatched   func(mode domain.Mode, status string, items []domain.ItemResult, elapsed time.Duration)
	OnGatewayError func(mode domain.Mode, reason string)
}

// SMSService validates requests, sends them through the gateway and turns
// whatever comes back into a per-recipient result. It holds no state
// between calls and is safe for concurrent use.
type SMSService struct {
	gateway    provider.Gateway
	normalizer *Normalizer
	timeout    time.Duration
	logger     *zap.Logger
	hooks      MetricHooks
	now        func() time.Time
}

// NewSMSService wires the service. timeout bounds each whole dispatch;
// zero disables the bound.
func NewSMSService(gateway provider.Gateway, timeout time.Duration, logger *zap.Logger, hooks MetricHooks) *SMSService {
	return &SMSService{
		gateway:    gateway,
		normalizer: NewNormalizer(),
		timeout:    timeout,
		logger:     logger,
		hooks:      hooks,
		now:        time.Now,
	}
}

// SendSingle sends one message.
//
// Validation failures return a *domain.ValidationError and no result.
// Otherwise a result is always returned; a non-nil error alongside it wraps
// ErrGatewayRejected, ErrGatewayTransport or ErrInternal.
func (s *SMSService) SendSingle(ctx context.Context, req domain.SingleRequest) (*domain.SingleResult, error) {
	msg, err := s.normalizer.Single(req)
	if err != nil {
		return nil, err
	}
	batch := domain.NewBatchContext(domain.ModeSingle, s.now())
	msgs := []domain.OutboundMessage{msg}

	send := func(ctx context.Context) (*provider.Response, error) {
		return s.gateway.SendSingle(ctx, batch, msg)
	}
	items, statusCode, _, dispatchErr := s.dispatch(ctx, batch, msgs, send)

	result := singleFromItem(items[0], statusCode)
	if dispatchErr != nil {
		return result, dispatchErr
	}
	if !result.Success {
		return result, errors.Wrap(domain.ErrGatewayRejected, result.Message)
	}
	return result, nil
}

// SendBulk sends one body to many recipients. The error is non-nil only
// for validation failures; gateway problems are reported in the result.
func (s *SMSService) SendBulk(ctx context.Context, req domain.BulkRequest) (*domain.DispatchResult, error) {
	msgs, err := s.normalizer.Bulk(req)
	if err != nil {
		return nil, err
	}
	batch := domain.NewBatchContext(domain.ModeBulk, s.now())
	return s.dispatchBatch(ctx, batch, msgs, func(ctx context.Context) (*provider.Response, error) {
		return s.gateway.SendBulk(ctx, batch, msgs)
	}), nil
}

// SendDynamic sends a distinct body per recipient. The error is non-nil
// only for validation failures; gateway problems are reported in the result.
func (s *SMSService) SendDynamic(ctx context.Context, req domain.DynamicRequest) (*domain.DispatchResult, error) {
	msgs, err := s.normalizer.Dynamic(req)
	if err != nil {
		return nil, err
	}
	batch := domain.NewBatchContext(domain.ModeDynamic, s.now())
	return s.dispatchBatch(ctx, batch, msgs, func(ctx context.Context) (*provider.Response, error) {
		return s.gateway.SendDynamic(ctx, batch, msgs)
	}), nil
}

func (s *SMSService) dispatchBatch(
	ctx context.Context,
	batch domain.BatchContext,
	msgs []domain.OutboundMessage,
	send func(context.Context) (*provider.Response, error),
) *domain.DispatchResult {
	items, _, failure, _ := s.dispatch(ctx, batch, msgs, send)
	return summarize(batch, items, failure)
}

// dispatch performs one gateway call and always returns one item per
// message. failure explains a call in which nothing succeeded; err is set
// when the call produced no usable answer at all.
// Panics are recovered here and reported as ERROR items.
func (s *SMSService) dispatch(
	ctx context.Context,
	batch domain.BatchContext,
	msgs []domain.OutboundMessage,
	send func(context.Context) (*provider.Response, error),
) (items []domain.ItemResult, statusCode, failure string, err error) {
	start := time.Now()
	log := s.logger.With(
		zap.String("batch_id", batch.BatchID),
		zap.String("mode", string(batch.Mode)),
		zap.Int("recipients", len(msgs)),
	)

	defer func() {
		if p := recover(); p != nil {
			log.Error("dispatch panicked", zap.Any("panic", p), zap.Stack("stack"))
			failure = domain.ErrInternal.Error()
			items = failAll(batch, msgs, domain.StatusError, failure)
			statusCode = ""
			err = errors.Wrap(domain.ErrInternal, fmt.Sprint(p))
		}
		status := dispatchStatus(batch.Mode, items)
		if s.hooks.OnDispatched != nil {
			s.hooks.OnDispatched(batch.Mode, status, items, time.Since(start))
		}
		log.Info("dispatch completed",
			zap.String("status", status),
			zap.Duration("elapsed", time.Since(start)),
		)
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, sendErr := send(ctx)
	if sendErr != nil {
		var te *provider.TransportError
		if errors.As(sendErr, &te) {
			log.Warn("gateway transport failure",
				zap.String("reason", te.Reason()),
				zap.Error(sendErr),
			)
			if s.hooks.OnGatewayError != nil {
				s.hooks.OnGatewayError(batch.Mode, te.Reason())
			}
			failure = te.Description()
			return failAll(batch, msgs, domain.StatusError, failure), "", failure, sendErr
		}
		log.Error("gateway call failed", zap.Error(sendErr))
		failure = domain.ErrInternal.Error()
		return failAll(batch, msgs, domain.StatusError, failure), "", failure,
			errors.Wrap(domain.ErrInternal, sendErr.Error())
	}

	if !resp.Readable {
		log.Warn("gateway answer could not be read")
	}
	return reconcile(batch, msgs, resp), resp.StatusCode, batchFailure(resp), nil
}
