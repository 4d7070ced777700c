package handler

import (
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/ricirt/sms-engine/internal/api/middleware"
	"github.com/ricirt/sms-engine/internal/domain"
	"github.com/ricirt/sms-engine/internal/service"
)

// SMSHandler exposes the three dispatch modes over HTTP.
type SMSHandler struct {
	svc    *service.SMSService
	logger *zap.Logger
}

func NewSMSHandler(svc *service.SMSService, logger *zap.Logger) *SMSHandler {
	return &SMSHandler{svc: svc, logger: logger}
}

// SendSingle handles POST /sms/single
//
// @Summary     Send one SMS
// @Tags        sms
// @Accept      json
// @Produce     json
// @Param       body  body      domain.SingleRequest  true  "Recipient and text"
// @Success     200   {object}  domain.SingleResult
// @Failure     400   {object}  domain.SingleResult   "Validation failure or gateway rejection"
// @Failure     500   {object}  domain.SingleResult   "Gateway unreachable or internal error"
// @Router      /sms/single [post]
func (h *SMSHandler) SendSingle(w http.ResponseWriter, r *http.Request) {
	var req domain.SingleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.SendSingle(r.Context(), req)
	if err != nil {
		h.logger.Warn("send single sms failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		if res == nil {
			mapError(w, err)
			return
		}
		respondJSON(w, statusFor(err), res)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// SendBulk handles POST /sms/bulk
//
// Gateway failures are reported in the body with 200; only malformed or
// invalid requests are rejected.
//
// @Summary     Send one text to many recipients
// @Tags        sms
// @Accept      json
// @Produce     json
// @Param       body  body      domain.BulkRequest  true  "Recipients and text"
// @Success     200   {object}  domain.DispatchResult
// @Failure     400   {object}  map[string]any
// @Router      /sms/bulk [post]
func (h *SMSHandler) SendBulk(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.SendBulk(r.Context(), req)
	h.respondDispatch(w, r, res, err)
}

// SendDynamic handles POST /sms/dynamic
//
// @Summary     Send a distinct text per recipient
// @Tags        sms
// @Accept      json
// @Produce     json
// @Param       body  body      domain.DynamicRequest  true  "Messages"
// @Success     200   {object}  domain.DispatchResult
// @Failure     400   {object}  map[string]any
// @Router      /sms/dynamic [post]
func (h *SMSHandler) SendDynamic(w http.ResponseWriter, r *http.Request) {
	var req domain.DynamicRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.SendDynamic(r.Context(), req)
	h.respondDispatch(w, r, res, err)
}

func (h *SMSHandler) respondDispatch(w http.ResponseWriter, r *http.Request, res *domain.DispatchResult, err error) {
	if err != nil {
		h.logger.Warn("dispatch rejected",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}
