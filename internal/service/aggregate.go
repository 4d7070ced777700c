package service

import (
	"fmt"
	"strings"

	"github.com/ricirt/sms-engine/internal/domain"
	"github.com/ricirt/sms-engine/internal/provider"
)

const (
	unreadableMessage = "gateway returned an unreadable response"
	sentMessage       = "SMS sent successfully"

	// msisdnKeyDigits is how many trailing digits identify a number, so
	// 8801712345678, +8801712345678 and 01712345678 compare equal.
	msisdnKeyDigits = 10
)

// reconcile maps the gateway answer back onto the requested messages and
// returns exactly one ItemResult per message, in request order.
//
// Matching runs in two passes. In dynamic mode every position has its own
// reference, so outcomes carrying a csms_id are first paired with that
// position. Remaining messages then fall back to the recipient number,
// skipping outcomes tagged with another position's reference. Each outcome
// is consumed at most once, so duplicate recipients pair up one to one.
// Messages left without an outcome are reported FAILED with the gateway's
// batch-level message.
func reconcile(batch domain.BatchContext, msgs []domain.OutboundMessage, resp *provider.Response) []domain.ItemResult {
	fallback := resp.BatchMessage()
	if !resp.Readable {
		fallback = unreadableMessage
	}

	// position owning each local reference; only dynamic refs are distinct
	owner := make(map[string]int)
	if batch.Mode == domain.ModeDynamic {
		for i := range msgs {
			owner[batch.ItemReference(i)] = i
		}
	}

	used := make([]bool, len(resp.Items))
	matched := make([]int, len(msgs))
	for i := range matched {
		matched[i] = -1
	}

	// pass 1: csms_id
	for j, o := range resp.Items {
		if i, ok := owner[o.CsmsID]; ok && matched[i] < 0 {
			matched[i] = j
			used[j] = true
		}
	}

	// pass 2: recipient number over what is left
	byRecipient := make(map[string][]int)
	for j, o := range resp.Items {
		if used[j] {
			continue
		}
		if k := msisdnKey(o.Recipient); k != "" {
			byRecipient[k] = append(byRecipient[k], j)
		}
	}
	for i, msg := range msgs {
		if matched[i] >= 0 {
			continue
		}
		for _, j := range byRecipient[msisdnKey(msg.Recipient)] {
			if used[j] {
				continue
			}
			if pos, tagged := owner[resp.Items[j].CsmsID]; tagged && pos != i {
				continue
			}
			matched[i] = j
			used[j] = true
			break
		}
	}

	// a single send may come back with the number omitted
	if batch.Mode == domain.ModeSingle && len(msgs) == 1 && matched[0] < 0 {
		for j, o := range resp.Items {
			if !used[j] && o.Recipient == "" {
				matched[0] = j
				used[j] = true
				break
			}
		}
	}

	items := make([]domain.ItemResult, len(msgs))
	for i, msg := range msgs {
		ref := batch.ItemReference(i)
		if j := matched[i]; j >= 0 {
			items[i] = itemFromOutcome(msg, ref, resp.Items[j], fallback)
		} else {
			items[i] = failedItem(msg, ref, domain.StatusFailed, fallback)
		}
	}
	return items
}

func itemFromOutcome(msg domain.OutboundMessage, ref string, o domain.GatewayItemOutcome, fallback string) domain.ItemResult {
	it := domain.ItemResult{
		Recipient:          msg.Recipient,
		ReferenceID:        ref,
		GatewayReferenceID: o.GatewayReferenceID,
		CsmsID:             o.CsmsID,
		ClientReference:    msg.ClientReference,
		Status:             o.StatusCode,
		Message:            o.StatusMessage,
		SmsType:            o.EchoedType,
		SmsBody:            o.EchoedBody,
	}
	if it.GatewayReferenceID != "" {
		it.ReferenceID = it.GatewayReferenceID
	}
	if it.CsmsID == "" {
		it.CsmsID = ref
	}
	if it.Message == "" {
		it.Message = fallback
		if it.Status == domain.StatusSuccess {
			it.Message = sentMessage
		}
	}
	return it
}

func failedItem(msg domain.OutboundMessage, ref, status, message string) domain.ItemResult {
	return domain.ItemResult{
		Recipient:       msg.Recipient,
		ReferenceID:     ref,
		CsmsID:          ref,
		ClientReference: msg.ClientReference,
		Status:          status,
		Message:         message,
	}
}

// failAll reports every message with the same status and message.
func failAll(batch domain.BatchContext, msgs []domain.OutboundMessage, status, message string) []domain.ItemResult {
	items := make([]domain.ItemResult, len(msgs))
	for i, msg := range msgs {
		items[i] = failedItem(msg, batch.ItemReference(i), status, message)
	}
	return items
}

// summarize derives the overall outcome from per-item results.
// failure is the reason reported when nothing succeeded.
func summarize(batch domain.BatchContext, items []domain.ItemResult, failure string) *domain.DispatchResult {
	ok := domain.CountSuccess(items)
	r := &domain.DispatchResult{
		Success: ok > 0,
		Status:  batchStatus(items),
		BatchID: batch.BatchID,
		Items:   items,
	}
	if ok > 0 {
		r.Message = fmt.Sprintf("Sent %d of %d messages successfully", ok, len(items))
	} else {
		r.Message = "Failed to send messages: " + failure
	}
	return r
}

// batchStatus is SUCCESS when every item succeeded, PARTIAL_SUCCESS when
// some did and FAILED when none did.
func batchStatus(items []domain.ItemResult) string {
	ok := domain.CountSuccess(items)
	switch {
	case ok > 0 && ok == len(items):
		return domain.StatusSuccess
	case ok > 0:
		return domain.StatusPartialSuccess
	default:
		return domain.StatusFailed
	}
}

// dispatchStatus is the status a call reports to logs and metrics: the
// item's own status for a single send, batchStatus otherwise. It always
// equals the Status of the result handed back to the caller.
func dispatchStatus(mode domain.Mode, items []domain.ItemResult) string {
	if mode == domain.ModeSingle && len(items) == 1 {
		return items[0].Status
	}
	return batchStatus(items)
}

// batchFailure picks the text explaining why a readable or unreadable
// gateway answer produced no success.
func batchFailure(resp *provider.Response) string {
	if !resp.Readable {
		return unreadableMessage
	}
	return resp.BatchMessage()
}

func singleFromItem(it domain.ItemResult, statusCode string) *domain.SingleResult {
	return &domain.SingleResult{
		Success:            it.Status == domain.StatusSuccess,
		Status:             it.Status,
		StatusCode:         statusCode,
		Message:            it.Message,
		ReferenceID:        it.ReferenceID,
		Recipient:          it.Recipient,
		CsmsID:             it.CsmsID,
		ClientReference:    it.ClientReference,
		GatewayReferenceID: it.GatewayReferenceID,
		EchoedType:         it.SmsType,
		EchoedBody:         it.SmsBody,
	}
}

// msisdnKey reduces a phone number to its trailing digits.
func msisdnKey(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	if len(d) > msisdnKeyDigits {
		d = d[len(d)-msisdnKeyDigits:]
	}
	return d
}
