package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tariffhub/tariff-ingest/constants"
	"github.com/tariffhub/tariff-ingest/internal/common"
)

// ReadDocument loads a document from disk and flattens it to plain text for
// the chunker. Strategy is picked by file extension, the way the rest of
// the system picks handlers by format.
func ReadDocument(path string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))

	var text string
	var err error
	switch constants.MapExtToFormat(ext) {
	case constants.TEXT:
		var b []byte
		b, err = os.ReadFile(path)
		text = string(b)
	case constants.SPREADSHEET:
		text, err = FlattenXLSX(path)
	default:
		return "", common.NewAppError("INGEST_ERROR",
			fmt.Sprintf("unsupported extension: %q", ext), common.ErrInvalidInput)
	}
	if err != nil {
		return "", common.WrapError(err, "read document")
	}

	logger.Info("ingest.read.ok",
		"path", path, "format", constants.MapExtToFormat(ext),
		"bytes", len(text), "elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
