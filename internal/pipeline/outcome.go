package pipeline

import (
	"github.com/tariffhub/tariff-ingest/internal/entity"
	"github.com/tariffhub/tariff-ingest/internal/llm"
)

// Outcome is the per-unit (chunk or page) result. Created once when the
// unit resolves, consumed by the quality aggregator, never mutated after.
type Outcome struct {
	Unit       int
	SourceRef  string
	Success    bool
	Candidates []entity.Candidate
	Reason     llm.FailReason // set when Success is false
	Err        string
	Retries    int
	LowYield   bool // low-yield re-issue triggered
	SourceLen  int
	PageText   string // transcription for page units
}

// Result is what one orchestrator run hands back to the caller.
type Result struct {
	Records  []entity.TariffRecord
	Report   QualityReport
	Outcomes []Outcome
	// Errors collects non-fatal unit failures and validation warnings.
	// A populated Errors with a nil run error means a degraded, usable run.
	Errors []string
	// CombinedText is the page-order transcription for page runs.
	CombinedText string
}
