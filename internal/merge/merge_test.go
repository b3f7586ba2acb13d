package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tariffhub/tariff-ingest/internal/entity"
)

func ptr(f float64) *float64 { return &f }

func TestScore(t *testing.T) {
	assert.Equal(t, 0, Score(entity.TariffRecord{Code: "0101210000", Label: "short"}))
	full := entity.TariffRecord{
		Code:         "0101210000",
		ExtendedCode: "01012100000000",
		Label:        "Pure-bred breeding horses",
		Unit:         "No.",
		Rate:         ptr(6.5),
		Notes:        "See chapter note 1",
	}
	assert.Equal(t, 6, Score(full))
}

func TestMergeDominance(t *testing.T) {
	sparse := entity.TariffRecord{Code: "0101210000", Label: "Pure-bre"}
	complete := entity.TariffRecord{
		Code:  "0101210000",
		Label: "Pure-bred breeding horses, live",
		Unit:  "No.",
		Rate:  ptr(0),
	}

	out := Merge([]entity.TariffRecord{sparse, complete})
	require.Len(t, out, 1)
	assert.Equal(t, complete.Label, out[0].Label)
	assert.Equal(t, "No.", out[0].Unit)
}

func TestMergeTieKeepsFirstEncountered(t *testing.T) {
	first := entity.TariffRecord{Code: "0202300000", Label: "Boneless cuts, frozen A"}
	second := entity.TariffRecord{Code: "0202300000", Label: "Boneless cuts, frozen B"}

	out := Merge([]entity.TariffRecord{first, second})
	require.Len(t, out, 1)
	assert.Equal(t, first.Label, out[0].Label)
}

func TestMergePreservesFirstSeenOrder(t *testing.T) {
	records := []entity.TariffRecord{
		{Code: "0302000000", Label: "Fish, fresh or chilled"},
		{Code: "0101210000", Label: "Horses"},
		{Code: "0302000000", Label: "Fish, fresh or chilled duplicate"},
	}
	out := Merge(records)
	require.Len(t, out, 2)
	assert.Equal(t, "0302000000", out[0].Code)
	assert.Equal(t, "0101210000", out[1].Code)
}

func TestMergeIsIdempotent(t *testing.T) {
	records := []entity.TariffRecord{
		{Code: "0101210000", Label: "Pure-bre"},
		{Code: "0101210000", Label: "Pure-bred breeding horses, live", Unit: "No."},
		{Code: "0202300000", Label: "Boneless cuts", Rate: ptr(4.4)},
	}
	once := Merge(records)
	twice := Merge(once)
	assert.Equal(t, once, twice)
}
