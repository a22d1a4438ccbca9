// Package quotes searches the historical quote reference data.
package quotes

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/paperledger/pkg/errors"
	"github.com/angelmondragon/paperledger/pkg/logger"
)

// DefaultLimit caps a search when the caller passes no limit.
const DefaultLimit = 5

type Service interface {
	Search(ctx context.Context, terms []string, limit int) ([]Match, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quote repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Search returns quotes where every non-blank term appears in the request
// text or the explanation, most recent first. No terms matches everything.
func (s *service) Search(ctx context.Context, terms []string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	cleaned := make([]string, 0, len(terms))
	for _, term := range terms {
		if t := strings.TrimSpace(term); t != "" {
			cleaned = append(cleaned, t)
		}
	}

	rows, err := s.repo.Search(ctx, cleaned, limit)
	if err != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"terms": cleaned, "limit": limit})
		ctx = s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
		s.logg.Error(ctx, "quote search failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "search quote history")
	}
	if rows == nil {
		rows = []Match{}
	}
	return rows, nil
}
