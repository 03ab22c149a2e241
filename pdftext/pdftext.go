// Package pdftext turns uploaded PDF quotes into plain text for the
// classifier. Two engines are available: a pure Go reader and the poppler
// pdftotext command.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Jurgenvdlecq/seatemail/config"
)

// Converter extracts the text layer of a PDF.
type Converter interface {
	Text(ctx context.Context, r io.ReaderAt, size int64) (string, error)
}

var magic = []byte("%PDF-")

// IsPDF reports whether head, the first bytes of a file, carries the PDF
// header. Readers accept the header anywhere in the first 1024 bytes.
func IsPDF(head []byte) bool {
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, magic)
}

// New returns the converter selected by cfg.Engine.
func New(cfg *config.PDFConfig, logger *slog.Logger) (Converter, error) {
	switch cfg.Engine {
	case "", config.EngineNative:
		return NewReaderConverter(), nil
	case config.EnginePdftotext:
		return NewCommandConverter(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown pdf engine %q", cfg.Engine)
	}
}
