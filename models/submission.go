package models

import (
	"time"

	"github.com/google/uuid"
)

// SchemaRequest statuses. Rows are inserted as pending; later transitions
// happen in the curation tooling, not here.
const (
	RequestStatusPending    = "pending"
	RequestStatusInProgress = "in_progress"
	RequestStatusCompleted  = "completed"
	RequestStatusRejected   = "rejected"
)

// ProblemReport statuses.
const (
	ReportStatusOpen          = "open"
	ReportStatusInvestigating = "investigating"
	ReportStatusResolved      = "resolved"
	ReportStatusClosed        = "closed"
)

// DefaultWaitlistSource tags signups that arrive without an explicit source.
const DefaultWaitlistSource = "roomsize_footer"

// SchemaRequest is a visitor's ask to map an unmapped property.
type SchemaRequest struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Postcode        *string   `json:"postcode" db:"postcode"`
	HouseType       string    `json:"house_type" db:"house_type"`
	BuilderName     string    `json:"builder_name" db:"builder_name"`
	DevelopmentName *string   `json:"development_name" db:"development_name"`
	AdditionalInfo  *string   `json:"additional_info" db:"additional_info"`
	UserEmail       *string   `json:"user_email" db:"user_email"`
	Status          string    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// ProblemReport flags incorrect dimensions on a schema.
type ProblemReport struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	SchemaID           *uuid.UUID `json:"schema_id" db:"schema_id"`
	BuilderName        string     `json:"builder_name" db:"builder_name"`
	HouseType          string     `json:"house_type" db:"house_type"`
	ProblemDescription string     `json:"problem_description" db:"problem_description"`
	UserEmail          *string    `json:"user_email" db:"user_email"`
	Status             string     `json:"status" db:"status"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// MailingListEntry is a waitlist signup. Email is unique at the database
// level; the lowercased form is what gets stored.
type MailingListEntry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Source    string    `json:"source" db:"source"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
