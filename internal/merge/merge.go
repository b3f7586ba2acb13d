package merge

import (
	"github.com/tariffhub/tariff-ingest/constants"
	"github.com/tariffhub/tariff-ingest/internal/entity"
)

// Score rates how complete a record is. Chunk overlap and low-yield retries
// deliberately produce duplicates; when several records share a code, the
// one carrying the most information wins.
func Score(r entity.TariffRecord) int {
	s := 0
	if r.ExtendedCode != "" {
		s += 2
	}
	if r.Unit != "" {
		s++
	}
	if r.Rate != nil {
		s++
	}
	if r.Notes != "" {
		s++
	}
	if len(r.Label) > constants.ShortLabelLength {
		s++
	}
	return s
}

// Merge collapses records sharing a primary code into one, keeping the
// highest-scoring member. Ties keep the first encountered, so the output is
// a pure, order-stable reduction of the input: running Merge twice yields
// the same result, and input order (chunk dispatch order) decides ties.
func Merge(records []entity.TariffRecord) []entity.TariffRecord {
	out := make([]entity.TariffRecord, 0, len(records))
	byCode := make(map[string]int, len(records))

	for _, r := range records {
		r.Score = Score(r)
		i, seen := byCode[r.Code]
		if !seen {
			byCode[r.Code] = len(out)
			out = append(out, r)
			continue
		}
		if r.Score > out[i].Score {
			out[i] = r
		}
	}
	return out
}
