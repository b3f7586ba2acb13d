package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tariffhub/tariff-ingest/internal/entity"
	"github.com/tariffhub/tariff-ingest/internal/llm"
)

// pageBreak separates per-page transcriptions in the combined text.
const pageBreak = "\n\f\n"

// RunPages drives the image path: each rendered page is one unit under the
// same retry policy as text chunks, and the candidate pool converges on the
// same validate/merge tail. Page-level failures reduce unitsProcessed in
// the report; they never abort the run.
//
// Pages beyond the MaxPages cap are not dispatched; the truncation shows up
// in the quality report's unit totals and in Result.Errors.
func (o *Orchestrator) RunPages(ctx context.Context, pages []entity.PageImage, document string) (*Result, error) {
	started := time.Now()

	totalPages := len(pages)
	capped := pages
	if totalPages > o.opts.MaxPages {
		capped = pages[:o.opts.MaxPages]
	}

	units := make([]unit, len(capped))
	for i, pg := range capped {
		units[i] = unit{
			index:     i,
			sourceLen: len(pg.Data),
			req: llm.ExtractRequest{
				Image:        pg.Data,
				ImageMIME:    pg.MIMEType,
				SourceRef:    fmt.Sprintf("%s#page-%d", document, pg.Number),
				DocumentHint: document,
			},
		}
	}

	o.logger.Info("pipeline.pages.start",
		"document", document,
		"pages_total", totalPages, "pages_dispatched", len(units),
		"concurrency", o.opts.Concurrency,
	)
	outcomes, fatal := o.run(ctx, units)
	res := o.finish(outcomes, totalPages, started)

	var texts []string
	for _, oc := range outcomes {
		if oc.Success && oc.PageText != "" {
			texts = append(texts, oc.PageText)
		}
	}
	res.CombinedText = strings.Join(texts, pageBreak)

	if len(capped) < totalPages {
		res.Errors = append(res.Errors,
			fmt.Sprintf("page cap: processed %d of %d pages", len(capped), totalPages))
	}

	if fatal != nil {
		o.logger.Error("pipeline.pages.fatal", "document", document, "error", fatal)
		return res, fatal
	}
	o.logger.Info("pipeline.pages.ok",
		"document", document,
		"records_final", len(res.Records),
		"units_failed", res.Report.UnitsFailed,
		"elapsed_ms", res.Report.ProcessingTimeMs,
	)
	return res, nil
}
