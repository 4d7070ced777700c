package service

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/ricirt/sms-engine/internal/domain"
)

// Normalizer validates inbound requests and flattens them into an ordered
// list of outbound messages. Order and duplicates are preserved.
type Normalizer struct {
	validate *validator.Validate
}

func NewNormalizer() *Normalizer {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Normalizer{validate: v}
}

func (n *Normalizer) Single(req domain.SingleRequest) (domain.OutboundMessage, error) {
	req.Recipient = strings.TrimSpace(req.Recipient)
	if err := n.check(req); err != nil {
		return domain.OutboundMessage{}, err
	}
	return domain.OutboundMessage{
		Recipient:       req.Recipient,
		Body:            req.Body,
		ClientReference: req.ClientReference,
	}, nil
}

func (n *Normalizer) Bulk(req domain.BulkRequest) ([]domain.OutboundMessage, error) {
	recipients := make([]domain.BulkRecipient, len(req.Recipients))
	for i, r := range req.Recipients {
		r.Recipient = strings.TrimSpace(r.Recipient)
		recipients[i] = r
	}
	req.Recipients = recipients
	if err := n.check(req); err != nil {
		return nil, err
	}

	msgs := make([]domain.OutboundMessage, len(req.Recipients))
	for i, r := range req.Recipients {
		msgs[i] = domain.OutboundMessage{
			Recipient:       r.Recipient,
			Body:            req.Body,
			ClientReference: r.ClientReference,
		}
	}
	return msgs, nil
}

func (n *Normalizer) Dynamic(req domain.DynamicRequest) ([]domain.OutboundMessage, error) {
	messages := make([]domain.DynamicMessage, len(req.Messages))
	for i, m := range req.Messages {
		m.Recipient = strings.TrimSpace(m.Recipient)
		messages[i] = m
	}
	req.Messages = messages
	if err := n.check(req); err != nil {
		return nil, err
	}

	msgs := make([]domain.OutboundMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = domain.OutboundMessage{
			Recipient:       m.Recipient,
			Body:            m.Body,
			ClientReference: m.ClientReference,
		}
	}
	return msgs, nil
}

func (n *Normalizer) check(req any) error {
	err := n.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate request")
	}
	fields := make([]domain.FieldError, len(verrs))
	for i, fe := range verrs {
		fields[i] = domain.FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)}
	}
	return &domain.ValidationError{Fields: fields}
}

// fieldPath drops the root struct name: "BulkRequest.recipients[2].recipient"
// becomes "recipients[2].recipient".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array
	switch fe.Tag() {
	case "required":
		if isList {
			return "must contain at least 1 item"
		}
		return "is required"
	case "min":
		if isList {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if isList {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
