package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Jurgenvdlecq/seatemail/model"
	"github.com/Jurgenvdlecq/seatemail/pdftext"
	"github.com/Jurgenvdlecq/seatemail/pkg/logger"
	"github.com/Jurgenvdlecq/seatemail/quote"
)

var (
	ErrEmptyUpload = errors.New("empty upload")
	ErrNotPDF      = errors.New("not a pdf")
)

const cleanupTimeout = 10 * time.Second

// QuoteService runs uploaded quotes through staging, text extraction and
// analysis.
type QuoteService struct {
	stager    Stager
	converter pdftext.Converter
	metrics   *Metrics
}

func NewQuoteService(stager Stager, converter pdftext.Converter, metrics *Metrics) *QuoteService {
	return &QuoteService{
		stager:    stager,
		converter: converter,
		metrics:   metrics,
	}
}

// Process stages the upload, extracts its text and analyzes it. The staged
// copy is removed before Process returns.
func (s *QuoteService) Process(ctx context.Context, filename string, r io.Reader, size int64) (model.Record, error) {
	if size == 0 {
		return nil, ErrEmptyUpload
	}

	br := bufio.NewReaderSize(r, 1024)
	head, err := br.Peek(1024)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyUpload
	}
	if !pdftext.IsPDF(head) {
		return nil, ErrNotPDF
	}

	staged, err := s.stager.Stage(ctx, filename, br, size)
	if err != nil {
		s.metrics.fail(StageUpload)
		return nil, fmt.Errorf("stage upload: %w", err)
	}
	defer s.remove(ctx, staged)

	attrs := []any{"key", staged.Key(), "size", staged.Size(), "filename", filename}
	if loc, ok := s.stager.(objectLocator); ok {
		attrs = append(attrs, "url", loc.ObjectURL(staged.Key()))
	}
	logger.Debug(ctx, "upload staged", attrs...)

	blob, err := staged.Open(ctx)
	if err != nil {
		s.metrics.fail(StageOpen)
		return nil, fmt.Errorf("open staged upload: %w", err)
	}
	defer blob.Close()

	text, err := s.converter.Text(ctx, blob, staged.Size())
	if err != nil {
		s.metrics.fail(StageConvert)
		return nil, fmt.Errorf("convert pdf: %w", err)
	}

	rec, _ := s.Analyze(ctx, text)
	return rec, nil
}

// Analyze runs the classifier and extractor on text that is already
// extracted. Dropped fields are logged and counted.
func (s *QuoteService) Analyze(ctx context.Context, text string) (model.Record, []quote.Drop) {
	rec, drops := quote.Analyze(text)
	for _, d := range drops {
		logger.Debug(ctx, "field dropped", "variant", rec.Variant(), "field", d.Field, "reason", d.Reason)
	}
	s.metrics.observe(rec.Variant(), drops)
	logger.Info(ctx, "quote analyzed", "variant", rec.Variant(), "dropped", len(drops))
	return rec, drops
}

func (s *QuoteService) remove(ctx context.Context, staged Staged) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := staged.Remove(ctx); err != nil {
		logger.Warn(ctx, "failed to remove staged upload", "key", staged.Key(), "error", err)
	}
}
