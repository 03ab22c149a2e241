package pdftext

import (
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// ReaderConverter reads the text layer in process.
type ReaderConverter struct{}

func NewReaderConverter() *ReaderConverter {
	return &ReaderConverter{}
}

func (c *ReaderConverter) Text(ctx context.Context, r io.ReaderAt, size int64) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	// The parser panics on some malformed files.
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("read pdf: %v", p)
		}
	}()

	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	return string(b), nil
}
