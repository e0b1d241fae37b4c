package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by this service. Browser-side events (page_view,
// room_expanded, reason_submitted, search, ...) arrive through the ingest
// endpoint as free-form strings.
const (
	EventPostcodeSearched = "postcode_searched"
	EventHousesPageView   = "houses_page_view"
	EventSchemaPageView   = "schema_page_view"
	EventSchemaRequested  = "schema_requested"
	EventProblemReported  = "problem_reported"
	EventWaitlistSignup   = "waitlist_signup"
	EventSearch           = "search"
	EventPageView         = "page_view"
	EventRoomExpanded     = "room_expanded"
	EventReasonSubmitted  = "reason_submitted"
)

// AnalyticsEvent is a write-once telemetry row. event_data stays opaque on
// the read side; writers use the typed payloads below.
type AnalyticsEvent struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	EventType string          `json:"event_type" db:"event_type"`
	EventData json.RawMessage `json:"event_data" db:"event_data"`
	PageURL   *string         `json:"page_url" db:"page_url"`
	UserAgent *string         `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// EventPayload is implemented by every typed event body, so that internal
// emitters cannot mislabel a payload.
type EventPayload interface {
	EventType() string
}

type SearchedEvent struct {
	Query        string `json:"query"`
	ResultsCount int    `json:"results_count"`
}

func (SearchedEvent) EventType() string { return EventPostcodeSearched }

type HousesPageViewEvent struct {
	StreetID    string `json:"street_id"`
	StreetName  string `json:"street_name,omitempty"`
	HousesCount int    `json:"houses_count"`
}

func (HousesPageViewEvent) EventType() string { return EventHousesPageView }

type SchemaPageViewEvent struct {
	SchemaID    string `json:"schema_id"`
	ModelName   string `json:"model_name"`
	BuilderName string `json:"builder_name,omitempty"`
	RoomsCount  int    `json:"rooms_count"`
}

func (SchemaPageViewEvent) EventType() string { return EventSchemaPageView }

type SchemaRequestedEvent struct {
	Postcode           string `json:"postcode"`
	HasStreetName      bool   `json:"has_street_name"`
	HasDevelopmentName bool   `json:"has_development_name"`
	Reason             string `json:"reason,omitempty"`
	Source             string `json:"source,omitempty"`
}

func (SchemaRequestedEvent) EventType() string { return EventSchemaRequested }

type ProblemReportedEvent struct {
	SchemaID    string `json:"schema_id,omitempty"`
	BuilderName string `json:"builder_name,omitempty"`
	HouseType   string `json:"house_type,omitempty"`
	RoomName    string `json:"room_name,omitempty"`
	HasEmail    bool   `json:"has_email"`
}

func (ProblemReportedEvent) EventType() string { return EventProblemReported }

type WaitlistSignupEvent struct {
	Source   string `json:"source"`
	PagePath string `json:"page_path,omitempty"`
}

func (WaitlistSignupEvent) EventType() string { return EventWaitlistSignup }

type RoomExpandedEvent struct {
	SchemaID string `json:"schema_id,omitempty"`
	RoomName string `json:"room_name"`
}

func (RoomExpandedEvent) EventType() string { return EventRoomExpanded }

type ReasonSubmittedEvent struct {
	Reason string `json:"reason"`
}

func (ReasonSubmittedEvent) EventType() string { return EventReasonSubmitted }
