package constants

import "strings"

// Document formats accepted by the ingestion layer.
const (
	TEXT        = "TEXT"
	SPREADSHEET = "SPREADSHEET"
)

// AllowedExtensions holds the default allowed file extensions for document ingestion.
var AllowedExtensions = map[string]struct{}{
	"txt":  {},
	"csv":  {},
	"tsv":  {},
	"xlsx": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to a document format, or "" if unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "txt", "csv", "tsv":
		return TEXT
	case "xlsx":
		return SPREADSHEET
	default:
		return ""
	}
}
