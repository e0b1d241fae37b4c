package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"roomsizes/models"
	"roomsizes/services"
	"roomsizes/storage"
)

const digestHistoryLimit = 30

// Handler holds the service layer behind the HTTP surface.
type Handler struct {
	search      *services.SearchService
	catalog     *services.CatalogService
	submissions *services.SubmissionService
	analytics   *services.AnalyticsService
	digests     *storage.DigestStore
	adminKey    string
}

func NewHandler(
	search *services.SearchService,
	catalog *services.CatalogService,
	submissions *services.SubmissionService,
	analytics *services.AnalyticsService,
	digests *storage.DigestStore,
	adminKey string,
) *Handler {
	return &Handler{
		search:      search,
		catalog:     catalog,
		submissions: submissions,
		analytics:   analytics,
		digests:     digests,
		adminKey:    adminKey,
	}
}

func (h *Handler) SearchLocation(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	result, err := h.search.Search(r.Context(), query)
	if err != nil {
		var vErr services.ValidationError
		if errors.As(err, &vErr) {
			respondError(w, http.StatusBadRequest, vErr.Error())
			return
		}
		// Non-throwing error shape: the client renders it as an empty
		// result set with a notice.
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"error":   "Database error searching streets",
			"details": err.Error(),
			"results": []models.StreetMatch{},
			"total":   0,
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) GetHouses(w http.ResponseWriter, r *http.Request) {
	streetID, ok := requireUUID(w, r, "street_id")
	if !ok {
		return
	}

	result, err := h.catalog.HousesForStreet(r.Context(), streetID)
	if err != nil {
		var street *models.StreetInfo
		if result != nil {
			street = result.Street
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"error":   "Failed to load house types",
			"details": err.Error(),
			"houses":  []models.House{},
			"street":  street,
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) GetSchema(w http.ResponseWriter, r *http.Request) {
	schemaID, ok := requireUUID(w, r, "schema_id")
	if !ok {
		return
	}

	result, err := h.catalog.Schema(r.Context(), schemaID)
	if err != nil {
		if errors.Is(err, services.ErrSchemaNotFound) {
			respondError(w, http.StatusNotFound, "Schema not found")
			return
		}
		log.Printf("HTTP: get-schema failed for %s: %v", schemaID, err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "An unexpected error occurred",
			"details": err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) SchemaStreets(w http.ResponseWriter, r *http.Request) {
	schemaID, ok := requireUUID(w, r, "schema_id")
	if !ok {
		return
	}

	streets, err := h.catalog.StreetsForSchema(r.Context(), schemaID)
	if err != nil {
		log.Printf("HTTP: schema-streets failed for %s: %v", schemaID, err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch streets")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"streets": streets})
}

type analyticsRequest struct {
	EventType string          `json:"event_type"`
	EventData json.RawMessage `json:"event_data"`
	PageURL   *string         `json:"page_url"`
}

func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	var body analyticsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	err := h.analytics.Record(r.Context(), body.EventType, body.EventData, body.PageURL, userAgent(r))
	if err != nil {
		var vErr services.ValidationError
		if errors.As(err, &vErr) {
			respondError(w, http.StatusBadRequest, vErr.Error())
			return
		}
		log.Printf("HTTP: analytics insert failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to log event")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type schemaRequestBody struct {
	Postcode        string `json:"postcode"`
	StreetName      string `json:"street_name"`
	DevelopmentName string `json:"development_name"`
	Reason          string `json:"reason"`
	Email           string `json:"email"`
	SchemaID        string `json:"schema_id"`
	ModelName       string `json:"model_name"`
	BuilderName     string `json:"builder_name"`
	Source          string `json:"source"`
}

func (h *Handler) SchemaRequest(w http.ResponseWriter, r *http.Request) {
	var body schemaRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := h.submissions.SubmitSchemaRequest(r.Context(), services.SchemaRequestInput{
		Postcode:        body.Postcode,
		StreetName:      body.StreetName,
		DevelopmentName: body.DevelopmentName,
		Reason:          body.Reason,
		Email:           body.Email,
		SchemaID:        body.SchemaID,
		ModelName:       body.ModelName,
		BuilderName:     body.BuilderName,
		Source:          body.Source,
	})
	if err != nil {
		var vErr services.ValidationError
		if errors.As(err, &vErr) {
			respondError(w, http.StatusBadRequest, vErr.Error())
			return
		}
		log.Printf("HTTP: schema request failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to submit request. Please try again.")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type problemReportBody struct {
	SchemaID           string `json:"schema_id"`
	BuilderName        string `json:"builder_name"`
	HouseType          string `json:"house_type"`
	RoomName           string `json:"room_name"`
	ProblemDescription string `json:"problem_description"`
	Email              string `json:"email"`
}

func (h *Handler) ReportProblem(w http.ResponseWriter, r *http.Request) {
	var body problemReportBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := h.submissions.ReportProblem(r.Context(), services.ProblemReportInput{
		SchemaID:           body.SchemaID,
		BuilderName:        body.BuilderName,
		HouseType:          body.HouseType,
		RoomName:           body.RoomName,
		ProblemDescription: body.ProblemDescription,
		Email:              body.Email,
	})
	if err != nil {
		var vErr services.ValidationError
		if errors.As(err, &vErr) {
			respondError(w, http.StatusBadRequest, vErr.Error())
			return
		}
		log.Printf("HTTP: problem report failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to submit report. Please try again.")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type waitlistBody struct {
	Email    string `json:"email"`
	Source   string `json:"source"`
	PagePath string `json:"page_path"`
}

func (h *Handler) WaitlistSignup(w http.ResponseWriter, r *http.Request) {
	var body waitlistBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := h.submissions.JoinWaitlist(r.Context(), services.WaitlistInput{
		Email:    body.Email,
		Source:   body.Source,
		PagePath: body.PagePath,
	})
	if err != nil {
		var vErr services.ValidationError
		switch {
		case errors.As(err, &vErr):
			respondError(w, http.StatusBadRequest, vErr.Error())
		case errors.Is(err, services.ErrAlreadyRegistered):
			respondError(w, http.StatusConflict, "This email is already on the waitlist")
		default:
			log.Printf("HTTP: waitlist signup failed: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to join waitlist. Please try again.")
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = models.Period7D
	}

	report, err := h.analytics.Report(r.Context(), period)
	if err != nil {
		log.Printf("HTTP: admin stats failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (h *Handler) AdminDigests(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	digests, err := h.digests.GetRecentDigests(digestHistoryLimit)
	if err != nil {
		log.Printf("HTTP: digest fetch failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch digests")
		return
	}
	if digests == nil {
		digests = []models.StatsDigest{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"digests": digests})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authorized gates the admin surface. An unconfigured key locks it shut
// rather than falling back to a default.
func (h *Handler) authorized(r *http.Request) bool {
	if h.adminKey == "" {
		return false
	}
	return r.URL.Query().Get("key") == h.adminKey
}

func requireUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		respondError(w, http.StatusBadRequest, param+" is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

func userAgent(r *http.Request) *string {
	if ua := r.Header.Get("User-Agent"); ua != "" {
		return &ua
	}
	return nil
}
