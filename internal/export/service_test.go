package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tariffhub/tariff-ingest/internal/entity"
	"github.com/tariffhub/tariff-ingest/internal/pipeline"
)

func TestRecordsXLSXRoundTrip(t *testing.T) {
	rate := 26.4
	records := []entity.TariffRecord{
		{Code: "0101210000", Label: "Pure-bred breeding horses", Unit: "No."},
		{Code: "0202300000", ExtendedCode: "02023000000000", Label: "Boneless bovine cuts, frozen", Rate: &rate},
	}
	report := pipeline.QualityReport{
		UnitsTotal: 4, UnitsProcessed: 4,
		RecordsExtracted: 6, RecordsFinal: 2,
		EstimatedAccuracy: 1,
	}

	data, err := NewService(nil).RecordsXLSX(records, report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Records")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per record")
	assert.Equal(t, "Code", rows[0][0])
	assert.Equal(t, "0101210000", rows[1][0])
	assert.Equal(t, "02023000000000", rows[2][1])
	assert.Equal(t, "26.4", rows[2][4])

	quality, err := f.GetRows("Quality")
	require.NoError(t, err)
	require.NotEmpty(t, quality)
	assert.Equal(t, "Units total", quality[0][0])
	assert.Equal(t, "4", quality[0][1])
}

func TestRecordsXLSXEmptyRecords(t *testing.T) {
	data, err := NewService(nil).RecordsXLSX(nil, pipeline.QualityReport{UnitsTotal: 1, UnitsFailed: 1})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Records")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}
