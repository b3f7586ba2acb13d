package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/tariffhub/tariff-ingest/internal/chunk"
	"github.com/tariffhub/tariff-ingest/internal/common"
	"github.com/tariffhub/tariff-ingest/internal/entity"
	"github.com/tariffhub/tariff-ingest/internal/llm"
	"github.com/tariffhub/tariff-ingest/internal/merge"
	"github.com/tariffhub/tariff-ingest/internal/validate"
)

// Orchestrator owns one extraction run end to end: it schedules units in
// bounded batches, applies the retry policy, and funnels every candidate
// through the validator and merge stages. Chunks, outcomes, and the
// candidate list are owned exclusively by the run invocation.
type Orchestrator struct {
	logger    *slog.Logger
	extractor llm.RowExtractor
	opts      Options
}

func NewOrchestrator(logger *slog.Logger, extractor llm.RowExtractor, opts Options) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{logger: logger, extractor: extractor, opts: opts.withDefaults()}
}

// unit is one schedulable piece of work.
type unit struct {
	index     int
	req       llm.ExtractRequest
	sourceLen int
}

// RunText drives the text path: chunks in, final records out. The returned
// error is non-nil only for fatal conditions (auth failure, context
// cancellation); everything else degrades into Result.Errors.
func (o *Orchestrator) RunText(ctx context.Context, chunks []chunk.Chunk, document string) (*Result, error) {
	started := time.Now()
	units := make([]unit, len(chunks))
	for i, ch := range chunks {
		units[i] = unit{
			index:     ch.Index,
			sourceLen: len(ch.Content),
			req: llm.ExtractRequest{
				Text:         ch.Content,
				SourceRef:    ch.SourceRef,
				DocumentHint: document,
			},
		}
	}

	o.logger.Info("pipeline.run.start",
		"document", document, "units", len(units),
		"concurrency", o.opts.Concurrency,
	)
	outcomes, fatal := o.run(ctx, units)
	res := o.finish(outcomes, len(units), started)
	if fatal != nil {
		o.logger.Error("pipeline.run.fatal", "document", document, "error", fatal)
		return res, fatal
	}
	o.logger.Info("pipeline.run.ok",
		"document", document,
		"records_final", len(res.Records),
		"units_failed", res.Report.UnitsFailed,
		"elapsed_ms", res.Report.ProcessingTimeMs,
	)
	return res, nil
}

// run processes units in batches of Concurrency. Within a batch completion
// order is unspecified; across batches dispatch follows unit index order,
// which the merge tie-break depends on.
func (o *Orchestrator) run(ctx context.Context, units []unit) ([]Outcome, error) {
	outcomes := make([]Outcome, len(units))
	for start := 0; start < len(units); start += o.opts.Concurrency {
		if err := ctx.Err(); err != nil {
			return outcomes, common.WrapError(err, "run cancelled")
		}
		end := start + o.opts.Concurrency
		if end > len(units) {
			end = len(units)
		}

		fatals := make([]error, end-start)
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				outcomes[i], fatals[i-start] = o.processUnit(ctx, units[i])
			}(i)
		}
		wg.Wait()

		for _, err := range fatals {
			if err != nil {
				return outcomes, err
			}
		}
		if o.opts.Progress != nil {
			o.opts.Progress(end, len(units))
		}
		if end < len(units) && !sleepCtx(ctx, o.opts.BatchDelay) {
			return outcomes, common.WrapError(ctx.Err(), "run cancelled")
		}
	}
	return outcomes, nil
}

// processUnit runs one unit to completion: rate-limit retries with linear
// backoff, one low-yield re-issue, everything else a single shot. The
// returned error is non-nil only when the whole run must abort.
func (o *Orchestrator) processUnit(ctx context.Context, u unit) (Outcome, error) {
	out := Outcome{Unit: u.index, SourceRef: u.req.SourceRef, SourceLen: u.sourceLen}
	var best llm.ExtractResult
	haveBest := false
	lowYieldRetried := false

	for {
		callCtx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
		res, err := o.extractor.ExtractRows(callCtx, u.req)
		cancel()

		if err != nil {
			reason := llm.ReasonOf(err)
			switch reason {
			case llm.ReasonAuthError:
				out.Reason = reason
				out.Err = err.Error()
				return out, common.NewAppError("EXTRACT_AUTH", "extraction credentials rejected", common.ErrUnauthorized)
			case llm.ReasonRateLimited:
				if out.Retries < o.opts.MaxRetries {
					out.Retries++
					wait := o.opts.BackoffBase * time.Duration(out.Retries)
					o.logger.Warn("pipeline.unit.rate_limited",
						"source_ref", u.req.SourceRef, "retry", out.Retries, "wait", wait.String())
					if !sleepCtx(ctx, wait) {
						out.Reason = reason
						out.Err = err.Error()
						return out, common.WrapError(ctx.Err(), "run cancelled")
					}
					continue
				}
				out.Reason = reason
				out.Err = err.Error()
				o.logger.Error("pipeline.unit.failed",
					"source_ref", u.req.SourceRef, "reason", string(reason), "retries", out.Retries)
				return out, nil
			default:
				// malformed, upstream, timeout: skip the unit, keep the run
				out.Reason = reason
				out.Err = err.Error()
				o.logger.Error("pipeline.unit.failed",
					"source_ref", u.req.SourceRef, "reason", string(reason), "retries", out.Retries)
				return out, nil
			}
		}

		// extraction output is not deterministic across calls: keep the
		// attempt that yielded more rows
		if !haveBest || len(res.Rows) > len(best.Rows) {
			best = res
			haveBest = true
		}

		if !lowYieldRetried && out.Retries < o.opts.MaxRetries &&
			len(best.Rows) < o.opts.MinCandidates && u.sourceLen >= o.opts.SubstantialLen {
			lowYieldRetried = true
			out.LowYield = true
			out.Retries++
			o.logger.Info("pipeline.unit.low_yield_retry",
				"source_ref", u.req.SourceRef, "rows", len(best.Rows), "source_len", u.sourceLen)
			continue
		}
		break
	}

	out.Success = true
	out.PageText = best.PageText
	out.Candidates = toCandidates(best.Rows, u)
	return out, nil
}

// finish is the deterministic tail of a run: validate every candidate in
// unit order, merge, summarize. Given the same outcomes it always produces
// the same result.
func (o *Orchestrator) finish(outcomes []Outcome, unitsTotal int, started time.Time) *Result {
	res := &Result{Outcomes: outcomes}

	var candidates []entity.Candidate
	for _, oc := range outcomes {
		if !oc.Success {
			if oc.Err != "" {
				res.Errors = append(res.Errors, fmt.Sprintf("%s: %s: %s", oc.SourceRef, oc.Reason, oc.Err))
			}
			continue
		}
		candidates = append(candidates, oc.Candidates...)
	}

	valid := make([]entity.TariffRecord, 0, len(candidates))
	for _, c := range candidates {
		rec, warnings := validate.Validate(c)
		for _, w := range warnings {
			res.Errors = append(res.Errors, "warn: "+w)
		}
		if rec == nil {
			continue
		}
		valid = append(valid, *rec)
	}

	res.Records = merge.Merge(valid)
	res.Report = Summarize(outcomes, unitsTotal, len(candidates), len(res.Records), time.Since(started))
	return res
}

func toCandidates(rows []llm.TariffRow, u unit) []entity.Candidate {
	if len(rows) == 0 {
		return nil
	}
	out := make([]entity.Candidate, 0, len(rows))
	for _, r := range rows {
		var rate *float64
		if r.Rate != "" {
			if f, ok := parseRate(r.Rate); ok {
				rate = &f
			}
		}
		out = append(out, entity.Candidate{
			RawCode:    r.Code,
			Label:      r.Label,
			Unit:       r.Unit,
			Rate:       rate,
			Notes:      r.Notes,
			ChunkIndex: u.index,
			SourceRef:  u.req.SourceRef,
		})
	}
	return out
}

func parseRate(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// sleepCtx waits d or until ctx is done; reports whether the full wait
// elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
