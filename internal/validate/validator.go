package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tariffhub/tariff-ingest/constants"
	"github.com/tariffhub/tariff-ingest/internal/entity"
)

// NormalizeCode strips every non-digit character from a raw code.
func NormalizeCode(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate turns a candidate into a normalized record, or rejects it.
//
// Rejections (nil record): digit string shorter than the minimum, or a "00"
// chapter prefix. Soft warnings (record still returned): short label,
// implausible rate. Warnings are strings so the caller can surface them in
// the run's error list without failing the unit.
func Validate(c entity.Candidate) (*entity.TariffRecord, []string) {
	digits := NormalizeCode(c.RawCode)
	if len(digits) < constants.MinCodeDigits {
		return nil, nil
	}

	var code, extended string
	switch {
	case len(digits) <= constants.CodeLength:
		code = padRight(digits, constants.CodeLength)
	default:
		code = digits[:constants.CodeLength]
		if len(digits) > constants.ExtendedCodeLength {
			digits = digits[:constants.ExtendedCodeLength]
		}
		extended = padRight(digits, constants.ExtendedCodeLength)
	}

	chapter, err := strconv.Atoi(code[:2])
	if err != nil || chapter < constants.MinChapter || chapter > constants.MaxChapter {
		// codes outside the chapter range cannot be legitimate
		return nil, nil
	}

	var warnings []string

	label := strings.TrimSpace(c.Label)
	if len(label) > constants.MaxLabelLength {
		label = label[:constants.MaxLabelLength]
	}
	if len(label) < constants.MinLabelLength {
		warnings = append(warnings, fmt.Sprintf("code %s: label %q is too short to be readable", code, label))
	}

	rate := c.Rate
	if rate != nil && (*rate < constants.MinRatePercent || *rate > constants.MaxRatePercent) {
		warnings = append(warnings, fmt.Sprintf("code %s: rate %.2f outside plausible percent range", code, *rate))
	}

	rec := &entity.TariffRecord{
		Code:         code,
		ExtendedCode: extended,
		Label:        label,
		Unit:         strings.TrimSpace(c.Unit),
		Rate:         rate,
		Notes:        strings.TrimSpace(c.Notes),
	}
	return rec, warnings
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat("0", width-len(s))
}
