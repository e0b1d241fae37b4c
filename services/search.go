package services

import (
	"context"
	"log"
	"strings"

	"roomsizes/models"
)

const (
	minQueryLength        = 2
	maxStreetMatches      = 50
	maxDevelopmentMatches = 20

	// Label for streets with no postcode area when grouping results.
	otherAreaLabel = "Other"
)

// SearchStore is the slice of storage the search service reads from.
type SearchStore interface {
	SearchStreets(ctx context.Context, upperTerm string, limit int) ([]models.StreetMatch, error)
	SearchDevelopmentStreets(ctx context.Context, term string, devLimit int) ([]models.StreetMatch, error)
}

// SearchService resolves a free-text postcode or development-name query to
// streets, grouped by postcode area.
type SearchService struct {
	store  SearchStore
	events Emitter
}

func NewSearchService(store SearchStore, events Emitter) *SearchService {
	return &SearchService{store: store, events: events}
}

// SearchResult is the search payload: flat deduplicated matches plus the
// same matches grouped by postcode area.
type SearchResult struct {
	Results []models.StreetMatch            `json:"results"`
	Grouped map[string][]models.StreetMatch `json:"grouped"`
	Total   int                             `json:"total"`
}

// Search runs the two-pass match: postcode/postcode-area substring against
// streets, then development-name substring expanded to streets. Results are
// deduplicated by street id, first pass wins. A failure on the development
// pass degrades to street-only results; a failure on the street pass is
// returned as a DatastoreError after the search event is still recorded.
func (s *SearchService) Search(ctx context.Context, query string) (*SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if len(trimmed) < minQueryLength {
		return nil, ValidationError("Search query must be at least 2 characters")
	}

	term := strings.ToUpper(trimmed)

	streetMatches, streetErr := s.store.SearchStreets(ctx, term, maxStreetMatches)
	if streetErr != nil {
		log.Printf("Search: street query failed: %v", streetErr)
		s.events.PublishPayload(models.SearchedEvent{Query: term, ResultsCount: 0}, nil, nil)
		return nil, &DatastoreError{Op: "search streets", Err: streetErr}
	}

	devMatches, devErr := s.store.SearchDevelopmentStreets(ctx, trimmed, maxDevelopmentMatches)
	if devErr != nil {
		// Degrade to street-only results.
		log.Printf("Search: development query failed: %v", devErr)
	}

	seen := make(map[string]bool, len(streetMatches))
	results := make([]models.StreetMatch, 0, len(streetMatches))
	for _, m := range streetMatches {
		if seen[m.StreetID.String()] {
			continue
		}
		seen[m.StreetID.String()] = true
		results = append(results, m)
	}
	for _, m := range devMatches {
		if seen[m.StreetID.String()] {
			continue
		}
		seen[m.StreetID.String()] = true
		results = append(results, m)
	}

	grouped := make(map[string][]models.StreetMatch)
	for _, m := range results {
		area := m.PostcodeArea
		if area == "" {
			area = otherAreaLabel
		}
		grouped[area] = append(grouped[area], m)
	}

	s.events.PublishPayload(models.SearchedEvent{Query: term, ResultsCount: len(results)}, nil, nil)

	return &SearchResult{
		Results: results,
		Grouped: grouped,
		Total:   len(results),
	}, nil
}
