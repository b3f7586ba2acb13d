package constants

// Tariff code geometry. Codes are stored as fixed-width digit strings:
// a 10-digit primary code, optionally accompanied by a 14-digit extended
// code when the source lists finer subdivisions.
const (
	MinCodeDigits     = 6
	CodeLength        = 10
	ExtendedCodeLength = 14
)

// Chapter is the leading 2-digit prefix of a tariff code. "00" is not a
// legitimate chapter; everything from 01 through 99 is.
const (
	MinChapter = 1
	MaxChapter = 99
)

// Label bounds. Labels shorter than MinLabelLength are suspicious (usually
// a truncated cell); labels longer than MaxLabelLength are capped. Labels
// longer than ShortLabelLength count as "full" descriptions during merge.
const (
	MinLabelLength   = 3
	ShortLabelLength = 12
	MaxLabelLength   = 512
)

// Plausible ad-valorem duty rate range, in percent.
const (
	MinRatePercent = 0.0
	MaxRatePercent = 100.0
)
