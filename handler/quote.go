package handler

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Jurgenvdlecq/seatemail/config"
	"github.com/Jurgenvdlecq/seatemail/model"
	"github.com/Jurgenvdlecq/seatemail/pkg/logger"
	"github.com/Jurgenvdlecq/seatemail/quote"
	"github.com/Jurgenvdlecq/seatemail/render"
	"github.com/Jurgenvdlecq/seatemail/service"
)

// Error messages shown to the sales desk.
const (
	msgNoFile         = `Geen bestand ontvangen under key "offerte".`
	msgEmptyFile      = "Leeg bestand ontvangen."
	msgOnlyPDF        = "Alleen PDF-bestanden zijn toegestaan."
	msgTooLarge       = "Bestand is te groot."
	msgInternal       = "Interne serverfout bij verwerken offerte."
	msgInvalidText    = `Geen tekst ontvangen under key "tekst".`
	msgInvalidRecord  = "Ongeldige offertegegevens ontvangen."
	msgUnknownVariant = "Onbekend type offerte ontvangen van de server."
)

// multipartOverhead allows for the form framing around the file itself.
const multipartOverhead = 1 << 20

// QuoteProcessor is implemented by service.QuoteService.
type QuoteProcessor interface {
	Process(ctx context.Context, filename string, r io.Reader, size int64) (model.Record, error)
	Analyze(ctx context.Context, text string) (model.Record, []quote.Drop)
}

type QuoteHandler struct {
	processor QuoteProcessor
	upload    *config.UploadConfig
	signature render.Signature
}

func NewQuoteHandler(p QuoteProcessor, upload *config.UploadConfig, sig render.Signature) *QuoteHandler {
	return &QuoteHandler{processor: p, upload: upload, signature: sig}
}

// Upload handles a quote PDF upload and answers with the extracted record.
func (h *QuoteHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	if h.upload.MaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.upload.MaxBytes+multipartOverhead)
	}

	file, header, err := c.Request.FormFile(h.upload.Field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": msgTooLarge})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoFile})
		return
	}
	defer file.Close()

	ctx = logger.WithValue(ctx, logger.UploadKey, header.Filename)
	c.Request = c.Request.WithContext(ctx)

	if h.upload.MaxBytes > 0 && header.Size > h.upload.MaxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": msgTooLarge})
		return
	}
	if !acceptsContentType(header.Header.Get("Content-Type")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgOnlyPDF})
		return
	}

	rec, err := h.processor.Process(ctx, header.Filename, file, header.Size)
	switch {
	case errors.Is(err, service.ErrEmptyUpload):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgEmptyFile})
	case errors.Is(err, service.ErrNotPDF):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgOnlyPDF})
	case err != nil:
		logger.Error(ctx, "failed to process quote", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	default:
		c.JSON(http.StatusOK, rec)
	}
}

// acceptsContentType rejects parts declared as something other than a PDF.
// Generic or missing types pass; the service sniffs the %PDF- header either
// way. The file name is not consulted.
func acceptsContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch mediaType {
	case "", "application/octet-stream", "binary/octet-stream":
		return true
	}
	return strings.Contains(mediaType, "pdf")
}

type TextRequest struct {
	Text string `json:"tekst" binding:"required"`
}

// Text analyzes text that was already extracted from a quote.
func (h *QuoteHandler) Text(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidText})
		return
	}

	rec, _ := h.processor.Analyze(c.Request.Context(), req.Text)
	c.JSON(http.StatusOK, rec)
}

// Email renders the form values and the draft email for a record.
func (h *QuoteHandler) Email(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidRecord})
		return
	}

	rec, err := model.DecodeRecord(body)
	if err != nil {
		if errors.Is(err, model.ErrUnknownVariant) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msgUnknownVariant})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidRecord})
		return
	}

	view, err := render.Render(rec, h.signature)
	if err != nil {
		if errors.Is(err, render.ErrUnknownVariant) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msgUnknownVariant})
			return
		}
		logger.Error(c.Request.Context(), "failed to render email", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}

	c.JSON(http.StatusOK, view)
}
