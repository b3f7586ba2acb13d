package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tariffhub/tariff-ingest/constants"
	"github.com/tariffhub/tariff-ingest/internal/chunk"
	"github.com/tariffhub/tariff-ingest/internal/common"
	"github.com/tariffhub/tariff-ingest/internal/entity"
	"github.com/tariffhub/tariff-ingest/internal/ingest"
	"github.com/tariffhub/tariff-ingest/internal/llm"
	"github.com/tariffhub/tariff-ingest/internal/pipeline"
	"github.com/tariffhub/tariff-ingest/internal/repository"
)

// Options are the per-request pipeline knobs; zero values fall back to the
// service defaults from configuration.
type Options struct {
	MaxChunkSize int `json:"max_chunk_size,omitempty"`
	Overlap      int `json:"overlap,omitempty"`
	Concurrency  int `json:"concurrency,omitempty"`
	MaxRetries   int `json:"max_retries,omitempty"`
	MaxPages     int `json:"max_pages,omitempty"`
}

// Request is the single entry point's input: document text, rendered page
// images, or a path to ingest. Exactly one content source is used, checked
// in that order.
type Request struct {
	DocumentText string
	Pages        []entity.PageImage
	FilePath     string

	Filename string
	Options  Options
	Progress pipeline.Progress
}

// Result is the best-effort outcome of one run. A run that extracted zero
// records is still a successful run with a low estimated accuracy; callers
// must look at Report and Errors, not at len(Records).
type Result struct {
	RunID   uuid.UUID              `json:"run_id"`
	Status  constants.RunStatus    `json:"status"`
	Records []entity.TariffRecord  `json:"records"`
	Report  pipeline.QualityReport `json:"report"`
	Errors  []string               `json:"errors"`
}

type Service struct {
	logger    *slog.Logger
	extractor llm.RowExtractor
	repo      repository.RecordRepository // nil disables persistence
	defaults  common.PipelineConfig
}

func New(logger *slog.Logger, extractor llm.RowExtractor, repo repository.RecordRepository, defaults common.PipelineConfig) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, extractor: extractor, repo: repo, defaults: defaults}
}

// ExtractDocument runs the whole pipeline for one document. The returned
// error is non-nil only for fatal conditions (bad input, auth failure
// against the extraction model, storage failure); degraded runs come back
// with a nil error and a populated Errors list.
func (s *Service) ExtractDocument(ctx context.Context, req Request) (*Result, error) {
	runID := uuid.New()
	started := time.Now()
	doc := req.Filename
	if doc == "" {
		doc = req.FilePath
	}
	if doc == "" {
		doc = "document"
	}

	s.logger.Info("service.extract.start",
		"run_id", runID,
		"document", doc,
		"text_len", len(req.DocumentText),
		"pages", len(req.Pages),
		"file_path", req.FilePath,
	)

	orch := pipeline.NewOrchestrator(s.logger, s.extractor, s.pipelineOptions(req))

	var (
		res *pipeline.Result
		err error
	)
	switch {
	case req.DocumentText != "":
		res, err = s.runText(ctx, orch, req.DocumentText, doc, req.Options)
	case len(req.Pages) > 0:
		res, err = orch.RunPages(ctx, req.Pages, doc)
	case req.FilePath != "":
		var text string
		text, err = ingest.ReadDocument(req.FilePath, s.logger)
		if err != nil {
			return nil, err
		}
		res, err = s.runText(ctx, orch, text, doc, req.Options)
	default:
		return nil, common.NewAppError("EXTRACT_INPUT",
			"request carries no document text, pages, or file path", common.ErrInvalidInput)
	}

	out := &Result{RunID: runID}
	if res != nil {
		out.Records = res.Records
		out.Report = res.Report
		out.Errors = res.Errors
	}
	if err != nil {
		// fatal abort: partial telemetry, no usable record set
		out.Status = constants.RunStatusFailed
		out.Records = nil
		s.logger.Error("service.extract.fatal", "run_id", runID, "document", doc, "error", err)
		return out, err
	}

	if s.repo != nil && len(out.Records) > 0 {
		if _, uerr := s.repo.UpsertBatch(ctx, doc, out.Records); uerr != nil {
			out.Status = constants.RunStatusFailed
			return out, common.NewAppError("EXTRACT_PERSIST", "persist final records", common.ErrDatabase)
		}
	}

	out.Status = constants.RunStatusOK
	if out.Report.UnitsFailed > 0 || len(out.Errors) > 0 {
		out.Status = constants.RunStatusDegraded
	}

	s.logger.Info("service.extract.ok",
		"run_id", runID,
		"document", doc,
		"status", string(out.Status),
		"records_final", len(out.Records),
		"estimated_accuracy", out.Report.EstimatedAccuracy,
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
	return out, nil
}

func (s *Service) runText(ctx context.Context, orch *pipeline.Orchestrator, text, doc string, opts Options) (*pipeline.Result, error) {
	maxSize := opts.MaxChunkSize
	if maxSize <= 0 {
		maxSize = s.defaults.MaxChunkSize
	}
	overlap := opts.Overlap
	if overlap <= 0 {
		overlap = s.defaults.Overlap
	}
	chunks := chunk.Stamp(chunk.Split(text, maxSize, overlap), doc)
	return orch.RunText(ctx, chunks, doc)
}

func (s *Service) pipelineOptions(req Request) pipeline.Options {
	o := pipeline.Options{
		Concurrency:    s.defaults.Concurrency,
		MaxRetries:     s.defaults.MaxRetries,
		BackoffBase:    s.defaults.BackoffBase,
		BatchDelay:     s.defaults.BatchDelay,
		MinCandidates:  s.defaults.MinCandidates,
		SubstantialLen: s.defaults.SubstantialLen,
		MaxPages:       s.defaults.MaxPages,
		Progress:       req.Progress,
	}
	if req.Options.Concurrency > 0 {
		o.Concurrency = req.Options.Concurrency
	}
	if req.Options.MaxRetries > 0 {
		o.MaxRetries = req.Options.MaxRetries
	}
	if req.Options.MaxPages > 0 {
		o.MaxPages = req.Options.MaxPages
	}
	return o
}
