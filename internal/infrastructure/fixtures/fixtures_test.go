package fixtures

import (
	"strings"
	"testing"

	"github.com/kirillkom/docestate/internal/core/domain"
	"github.com/kirillkom/docestate/internal/core/store"
)

func TestDemoCatalog(t *testing.T) {
	catalog, err := Demo()
	if err != nil {
		t.Fatalf("Demo() error = %v", err)
	}
	if len(catalog.Documents) != 3 {
		t.Fatalf("expected 3 demo documents, got %d", len(catalog.Documents))
	}

	first := catalog.Documents[0]
	if first.ExtractedData == nil || first.ExtractedData.Buyer != "John Smith" || first.ExtractedData.Rent != "$2,500/month" {
		t.Fatalf("unexpected first fixture: %+v", first.ExtractedData)
	}
	if first.Summary == nil || !strings.HasPrefix(*first.Summary, "This rental agreement is between John Smith") {
		t.Fatalf("expected viewer summary on first fixture")
	}
	if strings.Contains(*first.Summary, "\n") {
		t.Fatalf("expected folded summary without newlines")
	}
	if catalog.Documents[1].Status != domain.StatusProcessing || catalog.Documents[1].ExtractedData != nil {
		t.Fatalf("expected second fixture to be processing without data")
	}
	if got := len(catalog.Completed()); got != 2 {
		t.Fatalf("expected 2 completed fixtures, got %d", got)
	}
}

func TestSeedKeepsCatalogOrder(t *testing.T) {
	catalog, err := Demo()
	if err != nil {
		t.Fatalf("Demo() error = %v", err)
	}
	s := store.New()
	if n := catalog.Seed(s); n != 3 {
		t.Fatalf("expected 3 seeded documents, got %d", n)
	}

	docs := s.Documents()
	for i, want := range []string{"1", "2", "3"} {
		if docs[i].ID != want {
			t.Fatalf("expected id %s at %d, got %s", want, i, docs[i].ID)
		}
	}
	stats := s.Stats()
	if stats.Total != 3 || stats.Completed != 2 || stats.Processing != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestParseRejectsUnknownStatus(t *testing.T) {
	_, err := Parse([]byte("documents:\n  - id: x\n    status: queued\n"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
