package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"roomsizes/models"
)

type recordingEmitter struct {
	payloads []models.EventPayload
}

func (e *recordingEmitter) PublishPayload(p models.EventPayload, pageURL, userAgent *string) {
	e.payloads = append(e.payloads, p)
}

func (e *recordingEmitter) last(t *testing.T) models.EventPayload {
	t.Helper()
	if len(e.payloads) == 0 {
		t.Fatalf("expected an event to be published")
	}
	return e.payloads[len(e.payloads)-1]
}

type fakeSearchStore struct {
	streets     []models.StreetMatch
	devStreets  []models.StreetMatch
	streetErr   error
	devErr      error
	streetCalls int
	lastTerm    string
}

func (f *fakeSearchStore) SearchStreets(ctx context.Context, upperTerm string, limit int) ([]models.StreetMatch, error) {
	f.streetCalls++
	f.lastTerm = upperTerm
	return f.streets, f.streetErr
}

func (f *fakeSearchStore) SearchDevelopmentStreets(ctx context.Context, term string, devLimit int) ([]models.StreetMatch, error) {
	return f.devStreets, f.devErr
}

func streetMatch(name, postcode, area string) models.StreetMatch {
	return models.StreetMatch{
		StreetID:     uuid.New(),
		StreetName:   name,
		Postcode:     postcode,
		PostcodeArea: area,
	}
}

func TestSearchRejectsShortQuery(t *testing.T) {
	store := &fakeSearchStore{}
	emitter := &recordingEmitter{}
	svc := NewSearchService(store, emitter)

	_, err := svc.Search(context.Background(), "  a  ")
	var vErr ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.streetCalls != 0 {
		t.Fatalf("store should not be queried for a short query")
	}
	if len(emitter.payloads) != 0 {
		t.Fatalf("no event should be published for a rejected query")
	}
}

func TestSearchDedupesAndGroups(t *testing.T) {
	shared := streetMatch("Oak Avenue", "CM1 2AB", "CM1")
	store := &fakeSearchStore{
		streets: []models.StreetMatch{
			shared,
			streetMatch("Elm Close", "CM1 3CD", "CM1"),
			streetMatch("Mystery Lane", "XX0 0XX", ""),
		},
		devStreets: []models.StreetMatch{
			shared, // matched by both passes
			streetMatch("Birch Road", "CM1 4EF", "CM1"),
		},
	}
	emitter := &recordingEmitter{}
	svc := NewSearchService(store, emitter)

	result, err := svc.Search(context.Background(), "cm1")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if result.Total != 4 {
		t.Fatalf("expected 4 deduplicated results, got %d", result.Total)
	}
	if store.lastTerm != "CM1" {
		t.Fatalf("expected uppercased term CM1, got %s", store.lastTerm)
	}
	if len(result.Grouped["CM1"]) != 3 {
		t.Fatalf("expected 3 streets in CM1, got %d", len(result.Grouped["CM1"]))
	}
	if len(result.Grouped["Other"]) != 1 {
		t.Fatalf("expected 1 street under Other, got %d", len(result.Grouped["Other"]))
	}

	event, ok := emitter.last(t).(models.SearchedEvent)
	if !ok {
		t.Fatalf("expected SearchedEvent, got %T", emitter.last(t))
	}
	if event.Query != "CM1" || event.ResultsCount != 4 {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestSearchDegradesOnDevelopmentError(t *testing.T) {
	store := &fakeSearchStore{
		streets: []models.StreetMatch{streetMatch("Oak Avenue", "CM1 2AB", "CM1")},
		devErr:  errors.New("timeout"),
	}
	svc := NewSearchService(store, &recordingEmitter{})

	result, err := svc.Search(context.Background(), "CM1")
	if err != nil {
		t.Fatalf("development failure should not fail the search: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected street-only results, got %d", result.Total)
	}
}

func TestSearchStreetErrorStillPublishes(t *testing.T) {
	store := &fakeSearchStore{streetErr: errors.New("connection refused")}
	emitter := &recordingEmitter{}
	svc := NewSearchService(store, emitter)

	_, err := svc.Search(context.Background(), "CM1")
	var dsErr *DatastoreError
	if !errors.As(err, &dsErr) {
		t.Fatalf("expected datastore error, got %v", err)
	}

	event, ok := emitter.last(t).(models.SearchedEvent)
	if !ok || event.ResultsCount != 0 {
		t.Fatalf("expected zero-count search event, got %+v", emitter.last(t))
	}
}
