package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tariffhub/tariff-ingest/constants"
	"github.com/tariffhub/tariff-ingest/internal/common"
	"github.com/tariffhub/tariff-ingest/internal/entity"
	"github.com/tariffhub/tariff-ingest/internal/llm"
)

type fixedExtractor struct {
	res llm.ExtractResult
	err error
}

func (f fixedExtractor) ExtractRows(context.Context, llm.ExtractRequest) (llm.ExtractResult, error) {
	return f.res, f.err
}

type fakeRepo struct {
	document string
	records  []entity.TariffRecord
	err      error
}

func (r *fakeRepo) UpsertBatch(_ context.Context, document string, records []entity.TariffRecord) (int, error) {
	r.document = document
	r.records = records
	return len(records), r.err
}

func (r *fakeRepo) ListByChapter(context.Context, string) ([]entity.TariffRecord, error) {
	return nil, nil
}

func testDefaults() common.PipelineConfig {
	return common.PipelineConfig{
		MaxChunkSize:   6000,
		Overlap:        300,
		Concurrency:    2,
		MaxRetries:     1,
		BackoffBase:    time.Millisecond,
		BatchDelay:     -1,
		MinCandidates:  1,
		SubstantialLen: 400,
		MaxPages:       30,
	}
}

func twoRows() llm.ExtractResult {
	return llm.ExtractResult{Rows: []llm.TariffRow{
		{Code: "0101.21.00", Label: "Pure-bred breeding horses"},
		{Code: "0202.30.00", Label: "Boneless bovine cuts, frozen"},
	}}
}

func TestExtractDocumentRequiresSomeInput(t *testing.T) {
	svc := New(nil, fixedExtractor{res: twoRows()}, nil, testDefaults())
	_, err := svc.ExtractDocument(context.Background(), Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestExtractDocumentTextPath(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(nil, fixedExtractor{res: twoRows()}, repo, testDefaults())

	res, err := svc.ExtractDocument(context.Background(), Request{
		DocumentText: "0101.21.00\tPure-bred breeding horses",
		Filename:     "tariff.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, constants.RunStatusOK, res.Status)
	assert.Len(t, res.Records, 2)
	assert.Equal(t, "tariff.txt", repo.document, "final records persisted under the document name")
	assert.Len(t, repo.records, 2)
}

func TestExtractDocumentFilePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.txt")
	require.NoError(t, os.WriteFile(path, []byte("0101.21.00\tPure-bred breeding horses"), 0o644))

	svc := New(nil, fixedExtractor{res: twoRows()}, nil, testDefaults())
	res, err := svc.ExtractDocument(context.Background(), Request{FilePath: path})
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
}

func TestExtractDocumentPersistFailureIsFatal(t *testing.T) {
	repo := &fakeRepo{err: errors.New("connection refused")}
	svc := New(nil, fixedExtractor{res: twoRows()}, repo, testDefaults())

	res, err := svc.ExtractDocument(context.Background(), Request{DocumentText: "0101.21.00 Horses"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDatabase)
	require.NotNil(t, res)
	assert.Equal(t, constants.RunStatusFailed, res.Status)
}

func TestExtractDocumentFatalClearsRecords(t *testing.T) {
	svc := New(nil, fixedExtractor{
		err: &llm.ExtractError{Reason: llm.ReasonAuthError, Status: 401},
	}, nil, testDefaults())

	res, err := svc.ExtractDocument(context.Background(), Request{DocumentText: "0101.21.00 Horses"})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, constants.RunStatusFailed, res.Status)
	assert.Nil(t, res.Records)
}

func TestExtractDocumentDegradedStatus(t *testing.T) {
	svc := New(nil, fixedExtractor{
		err: &llm.ExtractError{Reason: llm.ReasonUpstream, Status: 503},
	}, nil, testDefaults())

	res, err := svc.ExtractDocument(context.Background(), Request{DocumentText: "0101.21.00 Horses"})
	require.NoError(t, err)
	assert.Equal(t, constants.RunStatusDegraded, res.Status)
	assert.Empty(t, res.Records)
	assert.NotEmpty(t, res.Errors)
}

func TestExtractDocumentPagePath(t *testing.T) {
	res2 := twoRows()
	res2.PageText = "page transcription"
	svc := New(nil, fixedExtractor{res: res2}, nil, testDefaults())

	res, err := svc.ExtractDocument(context.Background(), Request{
		Pages: []entity.PageImage{
			{Number: 1, Data: []byte("png"), MIMEType: "image/png"},
		},
		Filename: "scan.pdf",
	})
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.Report.UnitsTotal)
}
