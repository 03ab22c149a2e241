package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Jurgenvdlecq/seatemail/config"
	"github.com/Jurgenvdlecq/seatemail/model"
	"github.com/Jurgenvdlecq/seatemail/quote"
	"github.com/Jurgenvdlecq/seatemail/render"
	"github.com/Jurgenvdlecq/seatemail/service"
)

type textConverter string

func (t textConverter) Text(context.Context, io.ReaderAt, int64) (string, error) {
	return string(t), nil
}

type failingProcessor struct {
	err error
}

func (p failingProcessor) Process(context.Context, string, io.Reader, int64) (model.Record, error) {
	return nil, p.err
}

func (p failingProcessor) Analyze(_ context.Context, text string) (model.Record, []quote.Drop) {
	return quote.Analyze(text)
}

func newTestQuoteHandler(t *testing.T, text string) *QuoteHandler {
	t.Helper()
	stager, err := service.NewLocalStager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := service.NewQuoteService(stager, textConverter(text), nil)
	return NewQuoteHandler(svc, &config.UploadConfig{Field: "offerte", MaxBytes: 1 << 20}, render.Signature{})
}

func multipartBody(t *testing.T, field, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	w.Close()
	return &body, w.FormDataContentType()
}

func doUpload(h *QuoteHandler, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	router := gin.New()
	router.POST("/api/verwerk-offerte", h.Upload)

	req := httptest.NewRequest("POST", "/api/verwerk-offerte", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response %q: %v", w.Body.String(), err)
	}
	msg, _ := resp["error"].(string)
	return msg
}

func TestQuoteHandlerUploadTradeIn(t *testing.T) {
	h := newTestQuoteHandler(t, "Inruilauto\nKenteken: AB-123-C\nInruilprijs: € 8.500,00\nTotaal te betalen: € 26.500,00")

	body, ct := multipartBody(t, "offerte", "offerte.pdf", "application/pdf", []byte("%PDF-1.4 trade-in"))
	w := doUpload(h, body, ct)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["typeOfferte"] != "koopMetInruil" {
		t.Errorf("Expected koopMetInruil, got %v", resp["typeOfferte"])
	}
	if resp["totaalTeBetalen"] != 26500.0 {
		t.Errorf("Expected totaalTeBetalen 26500, got %v", resp["totaalTeBetalen"])
	}
	inruil, _ := resp["inruilAuto"].(map[string]any)
	if inruil["kenteken"] != "AB-123-C" || inruil["inruilprijs"] != 8500.0 {
		t.Errorf("Unexpected inruilAuto %v", inruil)
	}
}

func TestQuoteHandlerUploadErrors(t *testing.T) {
	tests := []struct {
		name           string
		field          string
		filename       string
		contentType    string
		content        []byte
		expectedStatus int
		expectedError  string
	}{
		{"wrong field", "file", "offerte.pdf", "application/pdf", []byte("%PDF-1.4"), http.StatusBadRequest, msgNoFile},
		{"pdf extension but docx inside", "offerte", "offerte.pdf", "", []byte("PK\x03\x04"), http.StatusBadRequest, msgOnlyPDF},
		{"wrong content type", "offerte", "offerte.pdf", "image/png", []byte("%PDF-1.4"), http.StatusBadRequest, msgOnlyPDF},
		{"not a pdf inside", "offerte", "offerte.pdf", "application/octet-stream", []byte("just text"), http.StatusBadRequest, msgOnlyPDF},
		{"empty file", "offerte", "offerte.pdf", "application/pdf", nil, http.StatusBadRequest, msgEmptyFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestQuoteHandler(t, "")
			body, ct := multipartBody(t, tt.field, tt.filename, tt.contentType, tt.content)
			w := doUpload(h, body, ct)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if got := decodeError(t, w); got != tt.expectedError {
				t.Errorf("Expected error %q, got %q", tt.expectedError, got)
			}
		})
	}
}

func TestQuoteHandlerUploadNoMultipart(t *testing.T) {
	h := newTestQuoteHandler(t, "")
	w := doUpload(h, bytes.NewBufferString("{}"), "application/json")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if got := decodeError(t, w); got != `Geen bestand ontvangen under key "offerte".` {
		t.Errorf("Unexpected error %q", got)
	}
}

func TestQuoteHandlerUploadTooLarge(t *testing.T) {
	h := newTestQuoteHandler(t, "")
	h.upload.MaxBytes = 16

	body, ct := multipartBody(t, "offerte", "offerte.pdf", "application/pdf", append([]byte("%PDF-1.4"), bytes.Repeat([]byte("x"), 64)...))
	w := doUpload(h, body, ct)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", w.Code)
	}
}

func TestQuoteHandlerUploadBodyOverLimit(t *testing.T) {
	h := newTestQuoteHandler(t, "")
	h.upload.MaxBytes = 16

	// larger than the limit plus the multipart allowance, so reading the form fails
	content := append([]byte("%PDF-1.4"), bytes.Repeat([]byte("x"), multipartOverhead+1024)...)
	body, ct := multipartBody(t, "offerte", "offerte.pdf", "application/pdf", content)
	w := doUpload(h, body, ct)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", w.Code)
	}
	if got := decodeError(t, w); got != msgTooLarge {
		t.Errorf("Expected %q, got %q", msgTooLarge, got)
	}
}

func TestQuoteHandlerUploadInternalError(t *testing.T) {
	h := NewQuoteHandler(failingProcessor{err: errors.New("minio: connection refused")},
		&config.UploadConfig{Field: "offerte", MaxBytes: 1 << 20}, render.Signature{})

	body, ct := multipartBody(t, "offerte", "offerte.pdf", "application/pdf", []byte("%PDF-1.4"))
	w := doUpload(h, body, ct)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	if got := decodeError(t, w); got != msgInternal {
		t.Errorf("Expected %q, got %q", msgInternal, got)
	}
	if strings.Contains(w.Body.String(), "minio") {
		t.Error("Internal cause must not be relayed")
	}
}

func TestQuoteHandlerUploadIgnoresFileName(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
	}{
		{"pdf type without extension", "offerte", "application/pdf"},
		{"pdf type with other extension", "offerte.docx", "application/pdf"},
		{"generic type without extension", "scan", "application/octet-stream"},
		{"no type at all", "Offerte Leon", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestQuoteHandler(t, "Te betalen bedrag: € 32.990,00")
			body, ct := multipartBody(t, "offerte", tt.filename, tt.contentType, []byte("%PDF-1.7 offerte"))
			w := doUpload(h, body, ct)

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), `"aanschafprijs":32990.00`) {
				t.Errorf("Unexpected body %s", w.Body.String())
			}
		})
	}
}

func TestAcceptsContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"application/pdf", true},
		{"Application/PDF", true},
		{"application/x-pdf", true},
		{"application/pdf; name=offerte.pdf", true},
		{"", true},
		{"application/octet-stream", true},
		{"text/plain", false},
		{"image/png", false},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", false},
	}
	for _, tt := range tests {
		if got := acceptsContentType(tt.contentType); got != tt.want {
			t.Errorf("acceptsContentType(%q) = %v, want %v", tt.contentType, got, tt.want)
		}
	}
}

func TestQuoteHandlerText(t *testing.T) {
	h := newTestQuoteHandler(t, "")
	router := gin.New()
	router.POST("/api/offerte/tekst", h.Text)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedType   string
	}{
		{"lease", `{"tekst":"Private Lease Leaseprijs: € 399,00"}`, http.StatusOK, "privateLease"},
		{"purchase", `{"tekst":"Totaal te betalen: € 35.000,00"}`, http.StatusOK, "koopsansInruil"},
		{"missing tekst", `{}`, http.StatusBadRequest, ""},
		{"invalid json", `{"tekst":`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/offerte/tekst", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedType == "" {
				return
			}
			var resp map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp["typeOfferte"] != tt.expectedType {
				t.Errorf("Expected %s, got %v", tt.expectedType, resp["typeOfferte"])
			}
		})
	}
}

func TestQuoteHandlerEmail(t *testing.T) {
	h := newTestQuoteHandler(t, "")
	router := gin.New()
	router.POST("/api/offerte/email", h.Email)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedError  string
		expectedInMail string
	}{
		{
			name:           "purchase",
			body:           `{"typeOfferte":"koopsansInruil","aanschafprijs":35000}`,
			expectedStatus: http.StatusOK,
			expectedInMail: "€ 35.000,00",
		},
		{
			name:           "lease with nulls",
			body:           `{"typeOfferte":"privateLease","maandprijs":399,"kmPerJaar":null,"looptijdMaanden":48,"eigenRisico":null,"banden":null}`,
			expectedStatus: http.StatusOK,
			expectedInMail: "• Looptijd: 48 maanden",
		},
		{
			name:           "unknown variant",
			body:           `{"typeOfferte":"zakelijkeLease"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  msgUnknownVariant,
		},
		{
			name:           "missing variant",
			body:           `{"aanschafprijs":35000}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  msgUnknownVariant,
		},
		{
			name:           "malformed",
			body:           `not json`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  msgInvalidRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/offerte/email", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedError != "" {
				if got := decodeError(t, w); got != tt.expectedError {
					t.Errorf("Expected error %q, got %q", tt.expectedError, got)
				}
				return
			}

			var view render.View
			if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(view.Email, tt.expectedInMail) {
				t.Errorf("Expected %q in email:\n%s", tt.expectedInMail, view.Email)
			}
		})
	}
}
