package quotes

import (
	"context"
	"testing"

	"github.com/angelmondragon/paperledger/pkg/logger"
)

type recordingRepository struct {
	Repository
	terms []string
	limit int
}

func (r *recordingRepository) Search(ctx context.Context, terms []string, limit int) ([]Match, error) {
	r.terms = terms
	r.limit = limit
	return nil, nil
}

func TestSearchDropsBlankTermsAndDefaultsLimit(t *testing.T) {
	repo := &recordingRepository{}
	svc, err := NewService(repo, logger.Nop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	rows, err := svc.Search(context.Background(), []string{"  glossy ", "", "   ", "poster"}, -1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty non-nil rows, got %#v", rows)
	}
	if repo.limit != DefaultLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultLimit, repo.limit)
	}
	if len(repo.terms) != 2 || repo.terms[0] != "glossy" || repo.terms[1] != "poster" {
		t.Fatalf("unexpected terms %q", repo.terms)
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(nil, logger.Nop()); err == nil {
		t.Fatal("expected error without repository")
	}
	if _, err := NewService(&recordingRepository{}, nil); err == nil {
		t.Fatal("expected error without logger")
	}
}
