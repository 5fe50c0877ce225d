package shared_test

import (
	"testing"

	"github.com/retailpro/retailpro/internal/shared"
	_ "github.com/retailpro/retailpro/testing"
)

func TestNewPaginationClampsInput(t *testing.T) {
	p := shared.NewPagination(0, 0, 60)
	if p.Page != 1 || p.PerPage != 25 {
		t.Fatalf("expected clamped defaults, got %+v", p)
	}
	if p.TotalPages != 3 {
		t.Fatalf("expected 3 pages for 60 entries, got %d", p.TotalPages)
	}
}

func TestPaginationWindow(t *testing.T) {
	p := shared.NewPagination(2, 10, 25)
	start, end := p.Window(25)
	if start != 10 || end != 20 {
		t.Fatalf("expected [10,20), got [%d,%d)", start, end)
	}

	last := shared.NewPagination(3, 10, 25)
	start, end = last.Window(25)
	if start != 20 || end != 25 {
		t.Fatalf("expected partial last page [20,25), got [%d,%d)", start, end)
	}

	past := shared.NewPagination(9, 10, 25)
	start, end = past.Window(25)
	if start != end {
		t.Fatalf("expected empty window past the end, got [%d,%d)", start, end)
	}
}
