package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"roomsizes/models"
	"roomsizes/storage"
)

const (
	minPostcodeLength    = 3
	minDescriptionLength = 10

	// Source tag for schema requests that came from the reverse flow: a
	// visitor found the house model first and supplied a postcode for it.
	SourceHouseSearch = "house_search"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SubmissionStore is the slice of storage the write paths use.
type SubmissionStore interface {
	InsertSchemaRequest(ctx context.Context, r *models.SchemaRequest) error
	InsertProblemReport(ctx context.Context, r *models.ProblemReport) error
	GetMailingListEntry(ctx context.Context, email string) (*models.MailingListEntry, error)
	InsertMailingListEntry(ctx context.Context, e *models.MailingListEntry) error
}

// SubmissionService handles the three user write paths: schema requests,
// problem reports, and waitlist signups. Each validates, inserts one row,
// and emits a best-effort analytics event afterwards. The insert and the
// event are never transactional.
type SubmissionService struct {
	store  SubmissionStore
	events Emitter
}

func NewSubmissionService(store SubmissionStore, events Emitter) *SubmissionService {
	return &SubmissionService{store: store, events: events}
}

// SchemaRequestInput covers both request modes. Source == "house_search"
// switches StreetName/Reason semantics to ModelName/SchemaID.
type SchemaRequestInput struct {
	Postcode        string
	StreetName      string
	DevelopmentName string
	Reason          string
	Email           string
	SchemaID        string
	ModelName       string
	BuilderName     string
	Source          string
}

type SubmissionResult struct {
	Success  bool   `json:"success"`
	SchemaID string `json:"schema_id,omitempty"`
	Message  string `json:"message"`
}

// SubmitSchemaRequest validates the postcode, stores the request as
// pending, and reports which mode produced it.
func (s *SubmissionService) SubmitSchemaRequest(ctx context.Context, in SchemaRequestInput) (*SubmissionResult, error) {
	postcode := strings.ToUpper(strings.TrimSpace(in.Postcode))
	if len(postcode) < minPostcodeLength {
		return nil, ValidationError("Postcode is required")
	}

	req := &models.SchemaRequest{
		Postcode:    &postcode,
		BuilderName: "Unknown",
		Status:      models.RequestStatusPending,
	}

	houseSearch := in.Source == SourceHouseSearch
	if houseSearch {
		req.HouseType = orDefault(in.ModelName, "Not specified")
		if in.BuilderName != "" {
			req.BuilderName = in.BuilderName
		}
		info := fmt.Sprintf("Requested via house search for schema %s", in.SchemaID)
		req.AdditionalInfo = &info
	} else {
		req.HouseType = orDefault(in.StreetName, "Not specified")
		req.AdditionalInfo = nilIfEmpty(in.Reason)
	}
	req.DevelopmentName = nilIfEmpty(in.DevelopmentName)
	req.UserEmail = nilIfEmpty(in.Email)

	if err := s.store.InsertSchemaRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("insert schema request: %w", err)
	}

	s.events.PublishPayload(models.SchemaRequestedEvent{
		Postcode:           postcode,
		HasStreetName:      in.StreetName != "",
		HasDevelopmentName: in.DevelopmentName != "",
		Reason:             in.Reason,
		Source:             in.Source,
	}, nil, nil)

	if houseSearch {
		return &SubmissionResult{
			Success:  true,
			SchemaID: in.SchemaID,
			Message:  "Thanks! We'll link this house model to your postcode.",
		}, nil
	}
	return &SubmissionResult{
		Success: true,
		Message: "Thanks! We'll add this schema soon and notify you.",
	}, nil
}

// ProblemReportInput is a visitor's report of wrong dimensions.
type ProblemReportInput struct {
	SchemaID           string
	BuilderName        string
	HouseType          string
	RoomName           string
	ProblemDescription string
	Email              string
}

// ReportProblem validates the description and files the report as open.
// A supplied room name is folded into the stored description.
func (s *SubmissionService) ReportProblem(ctx context.Context, in ProblemReportInput) (*SubmissionResult, error) {
	description := strings.TrimSpace(in.ProblemDescription)
	if len(description) < minDescriptionLength {
		return nil, ValidationError("Please provide a detailed description of the problem (at least 10 characters)")
	}

	if in.RoomName != "" {
		description = "Room: " + in.RoomName + "\n\n" + description
	}

	report := &models.ProblemReport{
		BuilderName:        orDefault(in.BuilderName, "Unknown"),
		HouseType:          orDefault(in.HouseType, "Unknown"),
		ProblemDescription: description,
		UserEmail:          nilIfEmpty(in.Email),
		Status:             models.ReportStatusOpen,
	}
	if id, err := uuid.Parse(in.SchemaID); err == nil {
		report.SchemaID = &id
	}

	if err := s.store.InsertProblemReport(ctx, report); err != nil {
		return nil, fmt.Errorf("insert problem report: %w", err)
	}

	s.events.PublishPayload(models.ProblemReportedEvent{
		SchemaID:    in.SchemaID,
		BuilderName: in.BuilderName,
		HouseType:   in.HouseType,
		RoomName:    in.RoomName,
		HasEmail:    in.Email != "",
	}, nil, nil)

	return &SubmissionResult{
		Success: true,
		Message: "Thanks for reporting. We'll investigate and get back to you.",
	}, nil
}

// WaitlistInput is an email signup with its originating page.
type WaitlistInput struct {
	Email    string
	Source   string
	PagePath string
}

// JoinWaitlist stores the lowercased email. The existence check is a
// fast-path courtesy; the mailing_list unique constraint is what actually
// guarantees one row per email, so a lost race still comes back as
// ErrAlreadyRegistered.
func (s *SubmissionService) JoinWaitlist(ctx context.Context, in WaitlistInput) (*SubmissionResult, error) {
	if !emailPattern.MatchString(in.Email) {
		return nil, ValidationError("Please enter a valid email address")
	}

	email := strings.ToLower(in.Email)
	existing, err := s.store.GetMailingListEntry(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check mailing list: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}

	entry := &models.MailingListEntry{
		Email:  email,
		Source: orDefault(in.Source, models.DefaultWaitlistSource),
	}
	if err := s.store.InsertMailingListEntry(ctx, entry); err != nil {
		if err == storage.ErrDuplicate {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("insert mailing list entry: %w", err)
	}

	s.events.PublishPayload(models.WaitlistSignupEvent{
		Source:   entry.Source,
		PagePath: in.PagePath,
	}, nilIfEmpty(in.PagePath), nil)

	return &SubmissionResult{
		Success: true,
		Message: "Successfully joined the waitlist",
	}, nil
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func nilIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
