package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeCleanRun(t *testing.T) {
	outcomes := []Outcome{
		{Unit: 0, Success: true},
		{Unit: 1, Success: true},
		{Unit: 2, Success: true},
	}
	rep := Summarize(outcomes, 3, 12, 9, 1500*time.Millisecond)

	assert.Equal(t, 3, rep.UnitsTotal)
	assert.Equal(t, 3, rep.UnitsProcessed)
	assert.Equal(t, 0, rep.UnitsFailed)
	assert.Equal(t, 12, rep.RecordsExtracted)
	assert.Equal(t, 9, rep.RecordsFinal)
	assert.InDelta(t, 1.0, rep.EstimatedAccuracy, 1e-9)
	assert.Equal(t, int64(1500), rep.ProcessingTimeMs)
}

func TestSummarizePartialFailure(t *testing.T) {
	outcomes := []Outcome{
		{Unit: 0, Success: true},
		{Unit: 1, Success: false},
		{Unit: 2, Success: true},
		{Unit: 3, Success: false},
	}
	rep := Summarize(outcomes, 4, 5, 5, time.Second)

	assert.Equal(t, 2, rep.UnitsProcessed)
	assert.Equal(t, 2, rep.UnitsFailed)
	assert.InDelta(t, 0.5, rep.EstimatedAccuracy, 1e-9)
}

func TestSummarizeLowYieldPenalty(t *testing.T) {
	outcomes := []Outcome{
		{Unit: 0, Success: true, LowYield: true},
		{Unit: 1, Success: true},
		{Unit: 2, Success: true},
		{Unit: 3, Success: true},
	}
	rep := Summarize(outcomes, 4, 8, 8, time.Second)

	// 4/4 processed with one low-yield unit: 1 * (1 - 0.25*1/4)
	assert.InDelta(t, 0.9375, rep.EstimatedAccuracy, 1e-9)
}

func TestSummarizeAllFailedIsZeroAccuracyNotError(t *testing.T) {
	outcomes := []Outcome{
		{Unit: 0, Success: false},
		{Unit: 1, Success: false},
	}
	rep := Summarize(outcomes, 2, 0, 0, time.Second)

	assert.Equal(t, 0, rep.UnitsProcessed)
	assert.Equal(t, 2, rep.UnitsFailed)
	assert.Zero(t, rep.EstimatedAccuracy)
}

func TestSummarizeEmptyRun(t *testing.T) {
	rep := Summarize(nil, 0, 0, 0, 0)
	assert.Zero(t, rep.UnitsTotal)
	assert.Zero(t, rep.EstimatedAccuracy)
}

func TestSummarizeCappedPageRun(t *testing.T) {
	// 2 dispatched out of 5 total: truncation drags accuracy down
	outcomes := []Outcome{
		{Unit: 0, Success: true},
		{Unit: 1, Success: true},
	}
	rep := Summarize(outcomes, 5, 3, 3, time.Second)

	assert.Equal(t, 5, rep.UnitsTotal)
	assert.Equal(t, 2, rep.UnitsProcessed)
	assert.InDelta(t, 0.4, rep.EstimatedAccuracy, 1e-9)
}
