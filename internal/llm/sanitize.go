package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// NormalizeAndSanitizeJSON
// - Renames known synonyms (hs_code -> code, description -> label)
// - Drops rows missing both a code and a label
// - Coerces numeric -> string for the rate field
// - Removes unknown keys (strict additionalProperties = false friendliness)
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)

	rowsAny, ok := doc["rows"]
	if !ok {
		// some models answer with a bare array
		var arr []any
		if err := json.Unmarshal(raw, &arr); err == nil {
			rowsAny = arr
			doc = map[string]any{"rows": arr}
		} else {
			return nil, nil, fmt.Errorf("sanitize: response has no rows")
		}
	}

	arr, ok := rowsAny.([]any)
	if !ok {
		return nil, nil, fmt.Errorf("sanitize: rows is not an array")
	}

	clean := make([]any, 0, len(arr))
	for i, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("row[%d](not-object)", i))
			continue
		}
		row, why := sanitizeRow(m)
		if row == nil {
			dropped = append(dropped, fmt.Sprintf("row[%d](%s)", i, why))
			continue
		}
		clean = append(clean, row)
	}

	out := map[string]any{"rows": clean}
	if pt, ok := doc["page_text"].(string); ok && strings.TrimSpace(pt) != "" {
		out["page_text"] = pt
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return b, dropped, nil
}

var rowSynonyms = map[string]string{
	"hs_code":     "code",
	"tariff_code": "code",
	"description": "label",
	"name":        "label",
	"duty_rate":   "rate",
	"rate_pct":    "rate",
	"uom":         "unit",
	"note":        "notes",
}

func sanitizeRow(m map[string]any) (map[string]any, string) {
	// 1) rename synonyms to our schema; never overwrite an existing key
	for from, to := range rowSynonyms {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
		}
	}

	out := map[string]any{}

	// 2) trim plain strings, drop empties
	for _, k := range []string{"code", "label", "unit", "notes"} {
		if v, ok := m[k].(string); ok {
			if s := strings.TrimSpace(v); s != "" {
				out[k] = s
			}
		}
	}

	// 3) coerce rate to a decimal string
	if v, ok := m["rate"]; ok {
		switch t := v.(type) {
		case float64:
			out["rate"] = strconv.FormatFloat(t, 'f', -1, 64)
		case string:
			s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%"))
			if s != "" && !strings.EqualFold(s, "null") && !strings.EqualFold(s, "free") {
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					out["rate"] = strconv.FormatFloat(f, 'f', -1, 64)
				}
			}
			if strings.EqualFold(strings.TrimSpace(t), "free") {
				out["rate"] = "0"
			}
		}
	}

	// 4) a row with neither code nor label carries no signal
	if out["code"] == nil && out["label"] == nil {
		return nil, "no-code-no-label"
	}
	return out, ""
}
