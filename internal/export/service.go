package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tariffhub/tariff-ingest/internal/entity"
	"github.com/tariffhub/tariff-ingest/internal/pipeline"
)

// Service produces XLSX bytes for extraction results: one sheet of records,
// one sheet with the run's quality summary.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// RecordsXLSX returns a workbook with the final records and the quality
// report of the run that produced them.
func (s *Service) RecordsXLSX(records []entity.TariffRecord, report pipeline.QualityReport) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Records"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Code",
		"Extended Code",
		"Description",
		"Unit",
		"Rate (%)",
		"Notes",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range records {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.Code)
		write(2, r.ExtendedCode)
		write(3, r.Label)
		write(4, r.Unit)
		if r.Rate != nil {
			write(5, *r.Rate)
		}
		write(6, r.Notes)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "B", 16)
	_ = f.SetColWidth(sheet, "C", "C", 60)
	_ = f.SetColWidth(sheet, "D", "E", 12)
	_ = f.SetColWidth(sheet, "F", "F", 40)

	if err := writeSummarySheet(f, report); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, report pipeline.QualityReport) error {
	const sheet = "Quality"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	lines := [][2]any{
		{"Units total", report.UnitsTotal},
		{"Units processed", report.UnitsProcessed},
		{"Units failed", report.UnitsFailed},
		{"Records extracted (pre-merge)", report.RecordsExtracted},
		{"Records final", report.RecordsFinal},
		{"Estimated accuracy", report.EstimatedAccuracy},
		{"Processing time (ms)", report.ProcessingTimeMs},
	}
	for i, kv := range lines {
		a, _ := excelize.CoordinatesToCellName(1, i+1)
		b, _ := excelize.CoordinatesToCellName(2, i+1)
		_ = f.SetCellValue(sheet, a, kv[0])
		_ = f.SetCellValue(sheet, b, kv[1])
	}
	_ = f.SetColWidth(sheet, "A", "A", 30)
	return nil
}
