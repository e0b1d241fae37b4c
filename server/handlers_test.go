package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"roomsizes/config"
	"roomsizes/models"
	"roomsizes/services"
	"roomsizes/storage"
)

// fakeStore backs every service interface for handler tests.
type fakeStore struct {
	streets  []models.StreetMatch
	schema   *models.SchemaDetail
	rooms    []models.Room
	existing *models.MailingListEntry
	inserted []*models.AnalyticsEvent
}

func (f *fakeStore) SearchStreets(ctx context.Context, upperTerm string, limit int) ([]models.StreetMatch, error) {
	return f.streets, nil
}

func (f *fakeStore) SearchDevelopmentStreets(ctx context.Context, term string, devLimit int) ([]models.StreetMatch, error) {
	return nil, nil
}

func (f *fakeStore) GetStreetInfo(ctx context.Context, streetID uuid.UUID) (*models.StreetInfo, error) {
	return nil, nil
}

func (f *fakeStore) GetHousesForStreet(ctx context.Context, streetID uuid.UUID) ([]models.House, error) {
	return nil, nil
}

func (f *fakeStore) GetSchema(ctx context.Context, schemaID uuid.UUID) (*models.SchemaDetail, error) {
	return f.schema, nil
}

func (f *fakeStore) GetRoomsForSchema(ctx context.Context, schemaID uuid.UUID) ([]models.Room, error) {
	return f.rooms, nil
}

func (f *fakeStore) GetStreetsForSchema(ctx context.Context, schemaID uuid.UUID) ([]models.StreetMatch, error) {
	return f.streets, nil
}

func (f *fakeStore) InsertSchemaRequest(ctx context.Context, r *models.SchemaRequest) error {
	return nil
}

func (f *fakeStore) InsertProblemReport(ctx context.Context, r *models.ProblemReport) error {
	return nil
}

func (f *fakeStore) GetMailingListEntry(ctx context.Context, email string) (*models.MailingListEntry, error) {
	return f.existing, nil
}

func (f *fakeStore) InsertMailingListEntry(ctx context.Context, e *models.MailingListEntry) error {
	return nil
}

func (f *fakeStore) InsertAnalyticsEvent(ctx context.Context, e *models.AnalyticsEvent) error {
	f.inserted = append(f.inserted, e)
	return nil
}

func (f *fakeStore) GetEventsSince(ctx context.Context, since time.Time) ([]models.AnalyticsEvent, error) {
	return nil, nil
}

func (f *fakeStore) GetRecentSchemaRequests(ctx context.Context, since time.Time, limit int) ([]models.SchemaRequest, error) {
	return nil, nil
}

func (f *fakeStore) GetRecentProblemReports(ctx context.Context, since time.Time, limit int) ([]models.ProblemReport, error) {
	return nil, nil
}

func (f *fakeStore) GetRecentMailingListEntries(ctx context.Context, since time.Time, limit int) ([]models.MailingListEntry, error) {
	return nil, nil
}

func newTestServer(t *testing.T, store *fakeStore, adminKey string) http.Handler {
	t.Helper()

	digests, err := storage.NewDigestStore(filepath.Join(t.TempDir(), "digests.db"))
	if err != nil {
		t.Fatalf("open digest store: %v", err)
	}
	t.Cleanup(func() { digests.Close() })

	emitter := services.NoOpEmitter{}
	handler := NewHandler(
		services.NewSearchService(store, emitter),
		services.NewCatalogService(store, emitter, services.NewAssetPolicy(nil)),
		services.NewSubmissionService(store, emitter),
		services.NewAnalyticsService(store),
		digests,
		adminKey,
	)

	srv := NewServer(config.ServerConfig{Port: "0", AllowedOrigins: []string{"*"}}, handler)
	return srv.httpServer.Handler
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return body
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &fakeStore{}, "")

	rec := doRequest(t, h, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "ok" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestSearchLocationShortQuery(t *testing.T) {
	h := newTestServer(t, &fakeStore{}, "")

	rec := doRequest(t, h, http.MethodGet, "/api/search-location?query=a", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSearchLocationReturnsGroupedResults(t *testing.T) {
	store := &fakeStore{streets: []models.StreetMatch{
		{StreetID: uuid.New(), StreetName: "Oak Avenue", Postcode: "CM1 2AB", PostcodeArea: "CM1"},
	}}
	h := newTestServer(t, store, "")

	rec := doRequest(t, h, http.MethodGet, "/api/search-location?query=CM1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["total"] != float64(1) {
		t.Fatalf("expected total 1, got %v", body["total"])
	}
	if _, ok := body["grouped"].(map[string]interface{})["CM1"]; !ok {
		t.Fatalf("expected CM1 group, got %v", body["grouped"])
	}
}

func TestGetHousesRequiresStreetID(t *testing.T) {
	h := newTestServer(t, &fakeStore{}, "")

	rec := doRequest(t, h, http.MethodGet, "/api/get-houses", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing street_id, got %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/get-houses?street_id=not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed street_id, got %d", rec.Code)
	}
}

func TestGetSchemaNotFound(t *testing.T) {
	h := newTestServer(t, &fakeStore{}, "")

	rec := doRequest(t, h, http.MethodGet, "/api/get-schema?schema_id="+uuid.NewString(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetSchemaDecoratedRooms(t *testing.T) {
	length, width := 400, 350
	store := &fakeStore{
		schema: &models.SchemaDetail{ID: uuid.New(), ModelName: "Aspen"},
		rooms:  []models.Room{{RoomName: "Kitchen", LengthCM: &length, WidthCM: &width}},
	}
	h := newTestServer(t, store, "")

	rec := doRequest(t, h, http.MethodGet, "/api/get-schema?schema_id="+store.schema.ID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	rooms := body["rooms"].([]interface{})
	room := rooms[0].(map[string]interface{})
	if room["floor_area_sqm"] != float64(14) {
		t.Fatalf("expected derived floor area, got %v", room["floor_area_sqm"])
	}
	if room["wall_area_sqm"] != float64(36) {
		t.Fatalf("expected derived wall area, got %v", room["wall_area_sqm"])
	}
}

func TestAnalyticsRequiresEventType(t *testing.T) {
	h := newTestServer(t, &fakeStore{}, "")

	rec := doRequest(t, h, http.MethodPost, "/api/analytics", `{"event_data":{"a":1}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAnalyticsRecordsEvent(t *testing.T) {
	store := &fakeStore{}
	h := newTestServer(t, store, "")

	rec := doRequest(t, h, http.MethodPost, "/api/analytics", `{"event_type":"page_view","page_url":"/search"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(store.inserted) != 1 || store.inserted[0].EventType != "page_view" {
		t.Fatalf("event not recorded: %+v", store.inserted)
	}
}

func TestSchemaRequestShortPostcode(t *testing.T) {
	h := newTestServer(t, &fakeStore{}, "")

	rec := doRequest(t, h, http.MethodPost, "/api/schema-request", `{"postcode":"cm"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWaitlistDuplicateConflict(t *testing.T) {
	store := &fakeStore{existing: &models.MailingListEntry{Email: "jo@example.com"}}
	h := newTestServer(t, store, "")

	rec := doRequest(t, h, http.MethodPost, "/api/waitlist-signup", `{"email":"jo@example.com"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAdminStatsUnauthorized(t *testing.T) {
	h := newTestServer(t, &fakeStore{}, "sekret")

	rec := doRequest(t, h, http.MethodGet, "/api/admin/stats?key=wrong", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminDisabledWithoutKey(t *testing.T) {
	// No configured key means no access, even with an empty key param.
	h := newTestServer(t, &fakeStore{}, "")

	rec := doRequest(t, h, http.MethodGet, "/api/admin/stats", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminStatsAuthorized(t *testing.T) {
	h := newTestServer(t, &fakeStore{}, "sekret")

	rec := doRequest(t, h, http.MethodGet, "/api/admin/stats?key=sekret&period=30d", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["period"] != "30d" {
		t.Fatalf("expected period echoed, got %v", body["period"])
	}
	if _, ok := body["stats"]; !ok {
		t.Fatalf("expected stats block, got %v", body)
	}
}

func TestAdminDigests(t *testing.T) {
	h := newTestServer(t, &fakeStore{}, "sekret")

	rec := doRequest(t, h, http.MethodGet, "/api/admin/digests?key=sekret", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if digests, ok := body["digests"].([]interface{}); !ok || len(digests) != 0 {
		t.Fatalf("expected empty digest list, got %v", body["digests"])
	}
}
