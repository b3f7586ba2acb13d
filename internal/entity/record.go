package entity

// Candidate is one structured entity proposed by the extraction model for a
// chunk or page. It is never persisted directly; it must pass through the
// validator and merge stages first.
type Candidate struct {
	RawCode string   `json:"raw_code"`
	Label   string   `json:"label"`
	Unit    string   `json:"unit,omitempty"`
	Rate    *float64 `json:"rate,omitempty"` // ad-valorem percent
	Notes   string   `json:"notes,omitempty"`

	// Provenance.
	ChunkIndex int    `json:"chunk_index"`
	SourceRef  string `json:"source_ref,omitempty"` // e.g. "doc.xlsx#chunk-3"
}

// TariffRecord is a validated, normalized, deduplicated record.
// Code is always exactly 10 digits; ExtendedCode, when present, is a
// 14-digit zero-padded superset sharing Code's prefix.
type TariffRecord struct {
	Code         string   `json:"code"`
	ExtendedCode string   `json:"extended_code,omitempty"`
	Label        string   `json:"label"`
	Unit         string   `json:"unit,omitempty"`
	Rate         *float64 `json:"rate,omitempty"`
	Notes        string   `json:"notes,omitempty"`

	// Score is the merge-time information score. It is derived, used only
	// to pick a winner among duplicates, and not persisted downstream.
	Score int `json:"-"`
}

// Chapter returns the leading 2-digit chapter prefix of the code.
func (r TariffRecord) Chapter() string {
	if len(r.Code) < 2 {
		return ""
	}
	return r.Code[:2]
}
