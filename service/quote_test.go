package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Jurgenvdlecq/seatemail/model"
)

type fakeConverter struct {
	text string
	err  error
	got  []byte
}

func (f *fakeConverter) Text(_ context.Context, r io.ReaderAt, size int64) (string, error) {
	f.got, _ = io.ReadAll(io.NewSectionReader(r, 0, size))
	return f.text, f.err
}

// trackingStager wraps LocalStager and remembers what it staged.
type trackingStager struct {
	*LocalStager
	staged []Staged
	err    error
}

func (s *trackingStager) Stage(ctx context.Context, name string, r io.Reader, size int64) (Staged, error) {
	if s.err != nil {
		return nil, s.err
	}
	st, err := s.LocalStager.Stage(ctx, name, r, size)
	if err == nil {
		s.staged = append(s.staged, st)
	}
	return st, err
}

func newTestService(t *testing.T, conv *fakeConverter) (*QuoteService, *trackingStager, *Metrics) {
	t.Helper()
	local, err := NewLocalStager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	stager := &trackingStager{LocalStager: local}
	metrics := NewMetrics(prometheus.NewRegistry())
	return NewQuoteService(stager, conv, metrics), stager, metrics
}

func assertRemoved(t *testing.T, stager *trackingStager) {
	t.Helper()
	for _, st := range stager.staged {
		if _, err := st.Open(context.Background()); err == nil {
			t.Errorf("Expected staged upload %s to be removed", st.Key())
		}
	}
}

func TestProcessLease(t *testing.T) {
	conv := &fakeConverter{text: "Private Lease\nLeaseprijs incl. BTW: € 399,00\nLooptijd: 48 maanden\nKm/jaar: 15.000"}
	svc, stager, metrics := newTestService(t, conv)

	pdf := []byte("%PDF-1.4 lease quote")
	rec, err := svc.Process(context.Background(), "offerte.pdf", bytes.NewReader(pdf), int64(len(pdf)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	lease, ok := rec.(*model.LeaseQuote)
	if !ok {
		t.Fatalf("Expected lease quote, got %T", rec)
	}
	if lease.MonthlyPrice == nil || lease.MonthlyPrice.String() != "399.00" {
		t.Errorf("Unexpected monthly price %v", lease.MonthlyPrice)
	}
	if !bytes.Equal(conv.got, pdf) {
		t.Errorf("Converter saw %q", conv.got)
	}
	if len(stager.staged) != 1 {
		t.Fatalf("Expected one staged upload, got %d", len(stager.staged))
	}
	assertRemoved(t, stager)

	if got := testutil.ToFloat64(metrics.processed.WithLabelValues("privateLease")); got != 1 {
		t.Errorf("Expected processed count 1, got %v", got)
	}
	// eigen risico and banden are missing
	if got := testutil.ToFloat64(metrics.dropped.WithLabelValues("eigenRisico", "label_not_found")); got != 1 {
		t.Errorf("Expected dropped eigenRisico count 1, got %v", got)
	}
}

func TestProcessConvertFailureCleansUp(t *testing.T) {
	conv := &fakeConverter{err: errors.New("broken xref")}
	svc, stager, metrics := newTestService(t, conv)

	pdf := []byte("%PDF-1.4 broken")
	_, err := svc.Process(context.Background(), "offerte.pdf", bytes.NewReader(pdf), int64(len(pdf)))
	if err == nil || !strings.Contains(err.Error(), "broken xref") {
		t.Fatalf("Expected convert error, got %v", err)
	}
	assertRemoved(t, stager)

	if got := testutil.ToFloat64(metrics.failures.WithLabelValues(StageConvert)); got != 1 {
		t.Errorf("Expected convert failure count 1, got %v", got)
	}
}

func TestProcessStageFailure(t *testing.T) {
	svc, stager, metrics := newTestService(t, &fakeConverter{})
	stager.err = errors.New("bucket unavailable")

	pdf := []byte("%PDF-1.4")
	if _, err := svc.Process(context.Background(), "offerte.pdf", bytes.NewReader(pdf), int64(len(pdf))); err == nil {
		t.Fatal("Expected stage error")
	}
	if got := testutil.ToFloat64(metrics.failures.WithLabelValues(StageUpload)); got != 1 {
		t.Errorf("Expected stage failure count 1, got %v", got)
	}
}

func TestProcessRejects(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		size    int64
		want    error
	}{
		{"empty by size", nil, 0, ErrEmptyUpload},
		{"empty body", nil, 10, ErrEmptyUpload},
		{"not a pdf", []byte("PK\x03\x04 docx"), 8, ErrNotPDF},
		{"html", []byte("<html><body>offerte</body></html>"), 33, ErrNotPDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, stager, _ := newTestService(t, &fakeConverter{})
			_, err := svc.Process(context.Background(), "offerte.pdf", bytes.NewReader(tt.content), tt.size)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
			if len(stager.staged) != 0 {
				t.Error("Rejected uploads must not be staged")
			}
		})
	}
}

func TestAnalyzeText(t *testing.T) {
	svc, _, metrics := newTestService(t, &fakeConverter{})

	rec, drops := svc.Analyze(context.Background(), "Te betalen bedrag: € 32.990,00")
	purchase, ok := rec.(*model.PurchaseQuote)
	if !ok {
		t.Fatalf("Expected purchase quote, got %T", rec)
	}
	if purchase.PurchasePrice == nil || purchase.PurchasePrice.String() != "32990.00" {
		t.Errorf("Unexpected price %v", purchase.PurchasePrice)
	}
	if len(drops) != 0 {
		t.Errorf("Expected no drops, got %v", drops)
	}
	if got := testutil.ToFloat64(metrics.processed.WithLabelValues("koopsansInruil")); got != 1 {
		t.Errorf("Expected processed count 1, got %v", got)
	}
}

func TestMetricsNil(t *testing.T) {
	var m *Metrics
	m.observe(model.VariantPurchase, nil)
	m.fail(StageConvert)
}
