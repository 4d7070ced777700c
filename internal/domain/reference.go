package domain

import (
	"fmt"
	"time"
)

// Mode is the dispatch mode of one API call.
type Mode string

const (
	ModeSingle  Mode = "single"
	ModeBulk    Mode = "bulk"
	ModeDynamic Mode = "dynamic"
)

const (
	dayLayout   = "20060102"
	stampLayout = "20060102_150405"
)

// prefix returns the batch/reference prefix used on the wire for the mode.
func (m Mode) prefix() string {
	switch m {
	case ModeBulk:
		return "bulk"
	case ModeDynamic:
		return "dyn"
	default:
		return "sms"
	}
}

// BatchContext identifies one dispatch call. It is created once per call
// and seeds every locally generated reference.
type BatchContext struct {
	BatchID   string
	Mode      Mode
	CreatedAt time.Time
}

// NewBatchContext builds the context for a call made at now.
//
// Single-mode ids are date-grained (sms_20060102), so every single send on
// the same day shares a reference. Bulk and dynamic ids carry the second.
func NewBatchContext(mode Mode, now time.Time) BatchContext {
	id := mode.prefix() + "_" + now.Format(stampLayout)
	if mode == ModeSingle {
		id = mode.prefix() + "_" + now.Format(dayLayout)
	}
	return BatchContext{BatchID: id, Mode: mode, CreatedAt: now}
}

// ItemReference returns the local reference for the message at index.
// Dynamic batches get a unique <batchId>_<0000> per position so duplicate
// recipients stay distinguishable; other modes share the batch id.
func (b BatchContext) ItemReference(index int) string {
	if b.Mode == ModeDynamic {
		return fmt.Sprintf("%s_%04d", b.BatchID, index)
	}
	return b.BatchID
}
