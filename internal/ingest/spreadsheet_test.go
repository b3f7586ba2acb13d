package ingest

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "0101.21.00"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Pure-bred breeding horses"))
	require.NoError(t, f.SetCellValue(sheet, "C1", "No."))
	// row 2 left blank on purpose
	require.NoError(t, f.SetCellValue(sheet, "A3", "0202.30.00"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "Boneless bovine cuts, frozen"))

	_, err := f.NewSheet("Chapter 2")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Chapter 2", "A1", "0203.11.00"))
	require.NoError(t, f.SetCellValue("Chapter 2", "B1", "Swine carcasses, fresh"))

	path := filepath.Join(t.TempDir(), "schedule.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestFlattenXLSX(t *testing.T) {
	text, err := FlattenXLSX(writeWorkbook(t))
	require.NoError(t, err)

	assert.Contains(t, text, "0101.21.00\tPure-bred breeding horses\tNo.")
	assert.Contains(t, text, "0202.30.00\tBoneless bovine cuts, frozen")
	assert.Contains(t, text, "# Sheet: Chapter 2")
	assert.Contains(t, text, "0203.11.00\tSwine carcasses, fresh")
	assert.NotContains(t, text, "\t\t\n", "blank rows are dropped")
}

func TestFlattenXLSXSheetOrderPreserved(t *testing.T) {
	text, err := FlattenXLSX(writeWorkbook(t))
	require.NoError(t, err)

	first := strings.Index(text, "0101.21.00")
	second := strings.Index(text, "0203.11.00")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first, "sheets flatten in workbook order")
}

func TestFlattenXLSXMissingFile(t *testing.T) {
	_, err := FlattenXLSX(filepath.Join(t.TempDir(), "absent.xlsx"))
	require.Error(t, err)
}
