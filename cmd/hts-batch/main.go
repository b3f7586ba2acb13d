package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tariffhub/tariff-ingest/constants"
	"github.com/tariffhub/tariff-ingest/internal/common"
	"github.com/tariffhub/tariff-ingest/internal/export"
	"github.com/tariffhub/tariff-ingest/internal/llm/openai"
	"github.com/tariffhub/tariff-ingest/internal/repository"
	"github.com/tariffhub/tariff-ingest/internal/service"
)

var (
	flagDir   string
	flagFile  string
	flagOut   string
	flagInmem bool
	flagDB    string
)

func main() {
	root := &cobra.Command{
		Use:   "hts-batch",
		Short: "Extract tariff records from documents in batch",
		Long: "Runs the chunk/extract/merge pipeline over one file or every supported " +
			"file in a directory, stores the records, and writes an XLSX summary.",
		RunE: runBatch,
	}
	root.Flags().StringVar(&flagDir, "dir", "", "directory of documents to process")
	root.Flags().StringVar(&flagFile, "file", "", "single document to process")
	root.Flags().StringVar(&flagOut, "out", "", "output XLSX path (defaults next to the input)")
	root.Flags().BoolVar(&flagInmem, "inmem", false, "use an in-memory SQLite database")
	root.Flags().StringVar(&flagDB, "db", "", "SQLite database path (ignored with --inmem)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runBatch(cmd *cobra.Command, _ []string) error {
	if flagDir == "" && flagFile == "" {
		return fmt.Errorf("one of --dir or --file is required")
	}

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Local storage: in-memory by default when no path is given.
	dsn := flagDB
	if flagInmem || dsn == "" {
		dsn = ":memory:"
	}
	db, err := repository.OpenSQLite(dsn, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()
	if err := repository.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	repo := repository.NewSQLiteRecordRepository(db, logger)

	extractor := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	svc := service.New(logger, extractor, repo, cfg.Pipeline)

	files, err := collectInputs()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported documents found")
	}

	exporter := export.NewService(logger)
	processed, failures := 0, 0
	for _, path := range files {
		logger.Info("processing document", "path", path)
		res, err := svc.ExtractDocument(ctx, service.Request{
			FilePath: path,
			Filename: filepath.Base(path),
			Progress: func(done, total int) {
				logger.Info("progress", "path", path, "done", done, "total", total)
			},
		})
		if err != nil {
			logger.Error("document failed", "path", path, "error", err)
			failures++
			continue
		}
		processed++

		out := flagOut
		if out == "" {
			out = trimExt(path) + ".records.xlsx"
		}
		xlsx, err := exporter.RecordsXLSX(res.Records, res.Report)
		if err != nil {
			logger.Error("export failed", "path", path, "error", err)
			failures++
			continue
		}
		if err := os.WriteFile(out, xlsx, 0o644); err != nil {
			logger.Error("write output failed", "path", out, "error", err)
			failures++
			continue
		}
		logger.Info("document complete",
			"path", path,
			"status", string(res.Status),
			"records", len(res.Records),
			"estimated_accuracy", res.Report.EstimatedAccuracy,
			"output", out,
		)
	}

	fmt.Printf("Batch complete: %d processed, %d failed\n", processed, failures)
	if failures > 0 && processed == 0 {
		return fmt.Errorf("all documents failed")
	}
	return nil
}

func collectInputs() ([]string, error) {
	if flagFile != "" {
		return []string{flagFile}, nil
	}
	entries, err := os.ReadDir(flagDir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := constants.NormalizeExt(filepath.Ext(e.Name()))
		if _, ok := constants.AllowedExtensions[ext]; ok {
			out = append(out, filepath.Join(flagDir, e.Name()))
		}
	}
	return out, nil
}

func trimExt(path string) string {
	return path[:len(path)-len(filepath.Ext(path))]
}
