package services

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"
	"time"

	"roomsizes/models"
)

const recentRowsLimit = 50

// AnalyticsStore is the slice of storage the analytics paths use.
type AnalyticsStore interface {
	InsertAnalyticsEvent(ctx context.Context, e *models.AnalyticsEvent) error
	GetEventsSince(ctx context.Context, since time.Time) ([]models.AnalyticsEvent, error)
	GetRecentSchemaRequests(ctx context.Context, since time.Time, limit int) ([]models.SchemaRequest, error)
	GetRecentProblemReports(ctx context.Context, since time.Time, limit int) ([]models.ProblemReport, error)
	GetRecentMailingListEntries(ctx context.Context, since time.Time, limit int) ([]models.MailingListEntry, error)
}

// AnalyticsService ingests browser telemetry and aggregates the admin
// report. Ingested event_data is stored opaque; no schema is enforced on
// its contents.
type AnalyticsService struct {
	store AnalyticsStore
	now   func() time.Time
}

func NewAnalyticsService(store AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{store: store, now: time.Now}
}

// Record stores one event. Only event_type is mandatory.
func (s *AnalyticsService) Record(ctx context.Context, eventType string, eventData json.RawMessage, pageURL, userAgent *string) error {
	if eventType == "" {
		return ValidationError("event_type is required")
	}

	event := &models.AnalyticsEvent{
		EventType: eventType,
		EventData: eventData,
		PageURL:   pageURL,
		UserAgent: userAgent,
	}
	if err := s.store.InsertAnalyticsEvent(ctx, event); err != nil {
		return &DatastoreError{Op: "log event", Err: err}
	}
	return nil
}

// PeriodCutoff maps a report period to its start date. Unrecognized values
// fall back to the all-time cutoff.
func (s *AnalyticsService) PeriodCutoff(period string) time.Time {
	switch period {
	case models.Period7D:
		return s.now().Add(-7 * 24 * time.Hour)
	case models.Period30D:
		return s.now().Add(-30 * 24 * time.Hour)
	default:
		return models.AllTimeCutoff
	}
}

// Report aggregates events and recent submissions for the admin dashboard.
// Each underlying fetch degrades independently: a failure is logged and its
// slice comes back empty, but the report is still produced.
func (s *AnalyticsService) Report(ctx context.Context, period string) (*models.StatsReport, error) {
	cutoff := s.PeriodCutoff(period)

	events, err := s.store.GetEventsSince(ctx, cutoff)
	if err != nil {
		log.Printf("Stats: events fetch failed: %v", err)
		events = nil
	}

	schemaRequests, err := s.store.GetRecentSchemaRequests(ctx, cutoff, recentRowsLimit)
	if err != nil {
		log.Printf("Stats: schema requests fetch failed: %v", err)
		schemaRequests = nil
	}

	problemReports, err := s.store.GetRecentProblemReports(ctx, cutoff, recentRowsLimit)
	if err != nil {
		log.Printf("Stats: problem reports fetch failed: %v", err)
		problemReports = nil
	}

	waitlist, err := s.store.GetRecentMailingListEntries(ctx, cutoff, recentRowsLimit)
	if err != nil {
		log.Printf("Stats: waitlist fetch failed: %v", err)
		waitlist = nil
	}

	report := &models.StatsReport{
		SchemaRequests: emptyIfNil(schemaRequests),
		ProblemReports: emptyIfNil(problemReports),
		Waitlist:       emptyIfNil(waitlist),
		Period:         period,
	}

	searchCounter := newCounter()
	houseTypeCounter := newCounter()
	roomCounter := newCounter()
	reasonCounter := newCounter()
	uniquePostcodes := make(map[string]bool)

	for _, e := range events {
		switch e.EventType {
		case models.EventSearch:
			report.Stats.TotalSearches++
			if q := eventDataString(e, "query"); q != "" {
				upper := strings.ToUpper(q)
				uniquePostcodes[upper] = true
				searchCounter.add(upper)
			}
		case models.EventPageView:
			report.Stats.TotalPageViews++
		case models.EventRoomExpanded:
			report.Stats.TotalRoomViews++
			if name := eventDataString(e, "room_name"); name != "" {
				roomCounter.add(name)
			}
		case models.EventSchemaPageView:
			report.Stats.TotalSchemaViews++
			if model := eventDataString(e, "model_name"); model != "" {
				houseTypeCounter.add(model)
			}
		case models.EventReasonSubmitted:
			if reason := eventDataString(e, "reason"); reason != "" {
				reasonCounter.add(reason)
			}
		}
	}

	report.Stats.UniquePostcodes = len(uniquePostcodes)
	report.Stats.WaitlistSignups = len(report.Waitlist)
	report.Stats.SchemaRequestsCount = len(report.SchemaRequests)
	report.Stats.ProblemReportsCount = len(report.ProblemReports)

	report.TopPostcodes = make([]models.PostcodeCount, 0)
	for _, kc := range searchCounter.top(10) {
		report.TopPostcodes = append(report.TopPostcodes, models.PostcodeCount{Postcode: kc.key, Count: kc.count})
	}
	report.TopHouseTypes = make([]models.HouseTypeCount, 0)
	for _, kc := range houseTypeCounter.top(10) {
		report.TopHouseTypes = append(report.TopHouseTypes, models.HouseTypeCount{Model: kc.key, Count: kc.count})
	}
	report.TopRooms = make([]models.RoomCount, 0)
	for _, kc := range roomCounter.top(10) {
		report.TopRooms = append(report.TopRooms, models.RoomCount{Room: kc.key, Count: kc.count})
	}
	report.TopReasons = make([]models.ReasonCount, 0)
	for _, kc := range reasonCounter.top(0) {
		report.TopReasons = append(report.TopReasons, models.ReasonCount{Reason: kc.key, Count: kc.count})
	}

	return report, nil
}

// counter tallies string keys while remembering first-seen order so that
// equal counts sort stably.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

type keyCount struct {
	key   string
	count int
}

// top returns keys by descending count; n <= 0 means no cap.
func (c *counter) top(n int) []keyCount {
	result := make([]keyCount, 0, len(c.order))
	for _, key := range c.order {
		result = append(result, keyCount{key: key, count: c.counts[key]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].count > result[j].count
	})
	if n > 0 && len(result) > n {
		result = result[:n]
	}
	return result
}

func eventDataString(e models.AnalyticsEvent, field string) string {
	if len(e.EventData) == 0 {
		return ""
	}
	var data map[string]interface{}
	if err := json.Unmarshal(e.EventData, &data); err != nil {
		return ""
	}
	if v, ok := data[field].(string); ok {
		return v
	}
	return ""
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
