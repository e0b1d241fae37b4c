package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"roomsizes/models"
)

// ErrDuplicate reports a unique-constraint violation on insert. The
// mailing_list email uniqueness is enforced here, not by the application's
// fast-path existence check.
var ErrDuplicate = errors.New("duplicate row")

const uniqueViolation = "23505"

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// =============================================================================
// Streets & Developments
// =============================================================================

// SearchStreets matches the uppercased term as a substring of postcode or
// postcode_area, capped at limit rows in datastore order.
func (s *PostgresStore) SearchStreets(ctx context.Context, upperTerm string, limit int) ([]models.StreetMatch, error) {
	query := `
		SELECT s.id, s.street_name, s.postcode, s.postcode_area, s.development_id, d.name
		FROM streets s
		LEFT JOIN developments d ON d.id = s.development_id
		WHERE upper(s.postcode) LIKE '%' || $1 || '%'
		   OR upper(s.postcode_area) LIKE '%' || $1 || '%'
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, upperTerm, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []models.StreetMatch
	for rows.Next() {
		var m models.StreetMatch
		if err := rows.Scan(
			&m.StreetID, &m.StreetName, &m.Postcode, &m.PostcodeArea,
			&m.DevelopmentID, &m.DevelopmentName,
		); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// SearchDevelopmentStreets expands developments whose name contains the raw
// term (case-insensitive) into their streets. The development cap applies
// before expansion, so the street count is not bounded by it.
func (s *PostgresStore) SearchDevelopmentStreets(ctx context.Context, term string, devLimit int) ([]models.StreetMatch, error) {
	query := `
		SELECT s.id, s.street_name, s.postcode, s.postcode_area, d.id, d.name
		FROM developments d
		JOIN streets s ON s.development_id = d.id
		WHERE d.id IN (
			SELECT id FROM developments WHERE name ILIKE '%' || $1 || '%' LIMIT $2
		)`

	rows, err := s.pool.Query(ctx, query, term, devLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []models.StreetMatch
	for rows.Next() {
		var m models.StreetMatch
		var devID uuid.UUID
		var devName string
		if err := rows.Scan(
			&m.StreetID, &m.StreetName, &m.Postcode, &m.PostcodeArea,
			&devID, &devName,
		); err != nil {
			return nil, err
		}
		m.DevelopmentID = &devID
		m.DevelopmentName = &devName
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *PostgresStore) GetStreetInfo(ctx context.Context, streetID uuid.UUID) (*models.StreetInfo, error) {
	query := `SELECT street_name, postcode, postcode_area FROM streets WHERE id = $1`

	var info models.StreetInfo
	err := s.pool.QueryRow(ctx, query, streetID).Scan(
		&info.StreetName, &info.Postcode, &info.PostcodeArea,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// =============================================================================
// Schemas & Rooms
// =============================================================================

// GetHousesForStreet joins the junction table out to schemas and builders.
// Junction rows whose schema is gone are dropped by the inner join, matching
// the filter the UI used to do client-side.
func (s *PostgresStore) GetHousesForStreet(ctx context.Context, streetID uuid.UUID) ([]models.House, error) {
	query := `
		SELECT hs.id, hs.model_name, COALESCE(b.name, $2), hs.bedrooms,
			hs.property_type, hs.exterior_photo_url, hs.verified
		FROM house_schema_streets hss
		JOIN house_schemas hs ON hs.id = hss.house_schema_id
		LEFT JOIN builders b ON b.id = hs.builder_id
		WHERE hss.street_id = $1`

	rows, err := s.pool.Query(ctx, query, streetID, models.UnknownBuilder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var houses []models.House
	for rows.Next() {
		var h models.House
		if err := rows.Scan(
			&h.SchemaID, &h.ModelName, &h.BuilderName, &h.Bedrooms,
			&h.PropertyType, &h.ExteriorPhotoURL, &h.Verified,
		); err != nil {
			return nil, err
		}
		houses = append(houses, h)
	}
	return houses, rows.Err()
}

func (s *PostgresStore) GetSchema(ctx context.Context, schemaID uuid.UUID) (*models.SchemaDetail, error) {
	query := `
		SELECT hs.id, hs.model_name, COALESCE(b.name, $2), hs.builder_id,
			hs.bedrooms, hs.property_type, hs.year_from, hs.year_to,
			hs.floor_plan_url, hs.exterior_photo_url, hs.verified, hs.notes
		FROM house_schemas hs
		LEFT JOIN builders b ON b.id = hs.builder_id
		WHERE hs.id = $1`

	var d models.SchemaDetail
	err := s.pool.QueryRow(ctx, query, schemaID, models.UnknownBuilder).Scan(
		&d.ID, &d.ModelName, &d.BuilderName, &d.BuilderID,
		&d.Bedrooms, &d.PropertyType, &d.YearFrom, &d.YearTo,
		&d.FloorPlanURL, &d.ExteriorPhotoURL, &d.Verified, &d.Notes,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *PostgresStore) GetRoomsForSchema(ctx context.Context, schemaID uuid.UUID) ([]models.Room, error) {
	query := `
		SELECT id, room_name, room_type, floor_level, length_cm, width_cm,
			height_cm, floor_area_sqm, notes, dimensions_need_verification,
			verification_reason
		FROM rooms
		WHERE house_schema_id = $1
		ORDER BY floor_level, room_name`

	rows, err := s.pool.Query(ctx, query, schemaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Room
	for rows.Next() {
		var r models.Room
		if err := rows.Scan(
			&r.ID, &r.RoomName, &r.RoomType, &r.FloorLevel, &r.LengthCM, &r.WidthCM,
			&r.HeightCM, &r.FloorAreaSqM, &r.Notes, &r.DimensionsNeedVerification,
			&r.VerificationReason,
		); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// GetStreetsForSchema walks the junction table the other way: every street a
// given schema is known to have been built on.
func (s *PostgresStore) GetStreetsForSchema(ctx context.Context, schemaID uuid.UUID) ([]models.StreetMatch, error) {
	query := `
		SELECT st.id, st.street_name, st.postcode, st.postcode_area,
			st.development_id, d.name
		FROM house_schema_streets hss
		JOIN streets st ON st.id = hss.street_id
		LEFT JOIN developments d ON d.id = st.development_id
		WHERE hss.house_schema_id = $1`

	rows, err := s.pool.Query(ctx, query, schemaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var streets []models.StreetMatch
	for rows.Next() {
		var m models.StreetMatch
		if err := rows.Scan(
			&m.StreetID, &m.StreetName, &m.Postcode, &m.PostcodeArea,
			&m.DevelopmentID, &m.DevelopmentName,
		); err != nil {
			return nil, err
		}
		streets = append(streets, m)
	}
	return streets, rows.Err()
}

// =============================================================================
// Submissions
// =============================================================================

func (s *PostgresStore) InsertSchemaRequest(ctx context.Context, r *models.SchemaRequest) error {
	query := `
		INSERT INTO schema_requests (
			postcode, house_type, builder_name, development_name,
			additional_info, user_email, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return s.pool.QueryRow(ctx, query,
		r.Postcode, r.HouseType, r.BuilderName, r.DevelopmentName,
		r.AdditionalInfo, r.UserEmail, r.Status,
	).Scan(&r.ID, &r.CreatedAt)
}

func (s *PostgresStore) InsertProblemReport(ctx context.Context, r *models.ProblemReport) error {
	query := `
		INSERT INTO schema_problem_reports (
			schema_id, builder_name, house_type, problem_description,
			user_email, status
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return s.pool.QueryRow(ctx, query,
		r.SchemaID, r.BuilderName, r.HouseType, r.ProblemDescription,
		r.UserEmail, r.Status,
	).Scan(&r.ID, &r.CreatedAt)
}

func (s *PostgresStore) GetMailingListEntry(ctx context.Context, email string) (*models.MailingListEntry, error) {
	query := `SELECT id, email, source, created_at FROM mailing_list WHERE email = $1`

	var e models.MailingListEntry
	err := s.pool.QueryRow(ctx, query, email).Scan(&e.ID, &e.Email, &e.Source, &e.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *PostgresStore) InsertMailingListEntry(ctx context.Context, e *models.MailingListEntry) error {
	query := `
		INSERT INTO mailing_list (email, source)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query, e.Email, e.Source).Scan(&e.ID, &e.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

// =============================================================================
// Analytics
// =============================================================================

func (s *PostgresStore) InsertAnalyticsEvent(ctx context.Context, e *models.AnalyticsEvent) error {
	data := e.EventData
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO analytics_events (event_type, event_data, page_url, user_agent)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return s.pool.QueryRow(ctx, query,
		e.EventType, data, e.PageURL, e.UserAgent,
	).Scan(&e.ID, &e.CreatedAt)
}

func (s *PostgresStore) GetEventsSince(ctx context.Context, since time.Time) ([]models.AnalyticsEvent, error) {
	query := `
		SELECT id, event_type, event_data, page_url, user_agent, created_at
		FROM analytics_events
		WHERE created_at >= $1
		ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.AnalyticsEvent
	for rows.Next() {
		var e models.AnalyticsEvent
		if err := rows.Scan(
			&e.ID, &e.EventType, &e.EventData, &e.PageURL, &e.UserAgent, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *PostgresStore) GetRecentSchemaRequests(ctx context.Context, since time.Time, limit int) ([]models.SchemaRequest, error) {
	query := `
		SELECT id, postcode, house_type, builder_name, development_name,
			additional_info, user_email, status, created_at, updated_at
		FROM schema_requests
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.SchemaRequest
	for rows.Next() {
		var r models.SchemaRequest
		if err := rows.Scan(
			&r.ID, &r.Postcode, &r.HouseType, &r.BuilderName, &r.DevelopmentName,
			&r.AdditionalInfo, &r.UserEmail, &r.Status, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s *PostgresStore) GetRecentProblemReports(ctx context.Context, since time.Time, limit int) ([]models.ProblemReport, error) {
	query := `
		SELECT id, schema_id, builder_name, house_type, problem_description,
			user_email, status, created_at, updated_at
		FROM schema_problem_reports
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.ProblemReport
	for rows.Next() {
		var r models.ProblemReport
		if err := rows.Scan(
			&r.ID, &r.SchemaID, &r.BuilderName, &r.HouseType, &r.ProblemDescription,
			&r.UserEmail, &r.Status, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *PostgresStore) GetRecentMailingListEntries(ctx context.Context, since time.Time, limit int) ([]models.MailingListEntry, error) {
	query := `
		SELECT id, email, source, created_at
		FROM mailing_list
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.MailingListEntry
	for rows.Next() {
		var e models.MailingListEntry
		if err := rows.Scan(&e.ID, &e.Email, &e.Source, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
