package models

import (
	"encoding/json"
	"time"
)

// StatsPeriod values accepted by the admin report. Anything unrecognized
// falls back to the all-time cutoff.
const (
	Period7D  = "7d"
	Period30D = "30d"
	PeriodAll = "all"
)

// AllTimeCutoff is the fixed epoch used for the "all" period.
var AllTimeCutoff = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// StatsSummary carries the headline counters on the admin dashboard.
type StatsSummary struct {
	TotalSearches       int `json:"totalSearches"`
	UniquePostcodes     int `json:"uniquePostcodes"`
	TotalPageViews      int `json:"totalPageViews"`
	TotalSchemaViews    int `json:"totalSchemaViews"`
	TotalRoomViews      int `json:"totalRoomViews"`
	WaitlistSignups     int `json:"waitlistSignups"`
	SchemaRequestsCount int `json:"schemaRequestsCount"`
	ProblemReportsCount int `json:"problemReportsCount"`
}

type PostcodeCount struct {
	Postcode string `json:"postcode"`
	Count    int    `json:"count"`
}

type HouseTypeCount struct {
	Model string `json:"model"`
	Count int    `json:"count"`
}

type RoomCount struct {
	Room  string `json:"room"`
	Count int    `json:"count"`
}

type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// StatsReport is the full admin dashboard payload.
type StatsReport struct {
	Stats          StatsSummary       `json:"stats"`
	SchemaRequests []SchemaRequest    `json:"schemaRequests"`
	ProblemReports []ProblemReport    `json:"problemReports"`
	Waitlist       []MailingListEntry `json:"waitlist"`
	TopPostcodes   []PostcodeCount    `json:"topPostcodes"`
	TopHouseTypes  []HouseTypeCount   `json:"topHouseTypes"`
	TopRooms       []RoomCount        `json:"topRooms"`
	TopReasons     []ReasonCount      `json:"topReasons"`
	Period         string             `json:"period"`
}

// StatsDigest is one scheduled snapshot of the 7d report, kept locally for
// operational history.
type StatsDigest struct {
	ID         int64           `json:"id"`
	Period     string          `json:"period"`
	ComputedAt time.Time       `json:"computed_at"`
	Payload    json.RawMessage `json:"payload"`
}
