package pipeline

import "time"

// QualityReport is the aggregate quality signal for one run. Read-only
// after creation.
type QualityReport struct {
	UnitsTotal        int     `json:"units_total"`
	UnitsProcessed    int     `json:"units_processed"`
	UnitsFailed       int     `json:"units_failed"`
	RecordsExtracted  int     `json:"records_extracted"` // pre-merge candidates
	RecordsFinal      int     `json:"records_final"`
	EstimatedAccuracy float64 `json:"estimated_accuracy"` // heuristic 0..1
	ProcessingTimeMs  int64   `json:"processing_time_ms"`
}

// Summarize computes the report from per-unit outcomes. It never fails: an
// all-failed run produces a zero-accuracy report rather than an error.
//
// EstimatedAccuracy is a heuristic, not measured ground truth: the ratio of
// processed units to total units, penalized when the low-yield re-issue
// fired on a large share of the processed units.
func Summarize(outcomes []Outcome, unitsTotal, recordsExtracted, recordsFinal int, elapsed time.Duration) QualityReport {
	rep := QualityReport{
		UnitsTotal:       unitsTotal,
		RecordsExtracted: recordsExtracted,
		RecordsFinal:     recordsFinal,
		ProcessingTimeMs: elapsed.Milliseconds(),
	}

	lowYield := 0
	for _, oc := range outcomes {
		if oc.Success {
			rep.UnitsProcessed++
			if oc.LowYield {
				lowYield++
			}
		} else {
			rep.UnitsFailed++
		}
	}

	if rep.UnitsTotal == 0 || rep.UnitsProcessed == 0 {
		return rep // degenerate run, accuracy stays 0
	}

	ratio := float64(rep.UnitsProcessed) / float64(rep.UnitsTotal)
	penalty := 0.25 * float64(lowYield) / float64(rep.UnitsProcessed)
	acc := ratio * (1 - penalty)
	if acc < 0 {
		acc = 0
	}
	if acc > 1 {
		acc = 1
	}
	rep.EstimatedAccuracy = acc
	return rep
}
