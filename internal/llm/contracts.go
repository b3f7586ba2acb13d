package llm

import (
	"context"
	"errors"
	"fmt"
)

// TariffRow is the normalized row shape we want from the extraction model.
// Rate fields come back as decimal strings so the model cannot smuggle in
// NaNs or locale-formatted numbers.
type TariffRow struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Unit  string `json:"unit,omitempty"`
	Rate  string `json:"rate,omitempty"` // percent, decimal string
	Notes string `json:"notes,omitempty"`
}

// ExtractRequest is one unit of extraction work: either chunk text or a
// page image, never both.
type ExtractRequest struct {
	Text      string
	Image     []byte // raster page payload; when set, Text is ignored
	ImageMIME string // e.g. "image/png"

	SourceRef    string // provenance, e.g. "doc.xlsx#chunk-3"
	DocumentHint string // original filename, a weak signal for the model
}

// ExtractResult is the parsed response for one unit.
type ExtractResult struct {
	Rows []TariffRow
	// PageText is the transcribed page text for image units; empty for
	// text units. Aggregated by the page pipeline.
	PageText string
	// Raw is the raw JSON content the model returned, kept for audit logs.
	Raw []byte
}

// RowExtractor is the narrow interface the orchestrator depends on, so the
// model can be swapped for a deterministic stub in tests.
type RowExtractor interface {
	ExtractRows(ctx context.Context, req ExtractRequest) (ExtractResult, error)
}

// FailReason classifies extraction failures; the orchestrator's retry
// policy keys off this.
type FailReason string

const (
	ReasonRateLimited FailReason = "RATE_LIMITED"
	ReasonAuthError   FailReason = "AUTH_ERROR"
	ReasonMalformed   FailReason = "MALFORMED_RESPONSE"
	ReasonUpstream    FailReason = "UPSTREAM_ERROR"
)

// ExtractError carries the failure classification across the client
// boundary.
type ExtractError struct {
	Reason FailReason
	Status int // HTTP status when known, 0 otherwise
	Err    error
}

func (e *ExtractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s (status %d): %v", e.Reason, e.Status, e.Err)
	}
	return fmt.Sprintf("extract %s (status %d)", e.Reason, e.Status)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// ClassifyStatus maps an HTTP status class to a failure reason.
func ClassifyStatus(status int) FailReason {
	switch {
	case status == 429:
		return ReasonRateLimited
	case status == 401 || status == 403:
		return ReasonAuthError
	case status >= 500:
		return ReasonUpstream
	default:
		return ReasonUpstream
	}
}

// ReasonOf extracts the failure reason from an error chain, defaulting to
// ReasonUpstream for unclassified errors (timeouts, dial failures).
func ReasonOf(err error) FailReason {
	var xe *ExtractError
	if errors.As(err, &xe) {
		return xe.Reason
	}
	return ReasonUpstream
}
