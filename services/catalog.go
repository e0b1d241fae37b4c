package services

import (
	"context"
	"log"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"roomsizes/geometry"
	"roomsizes/models"
)

// CatalogStore is the slice of storage the catalog reads from.
type CatalogStore interface {
	GetStreetInfo(ctx context.Context, streetID uuid.UUID) (*models.StreetInfo, error)
	GetHousesForStreet(ctx context.Context, streetID uuid.UUID) ([]models.House, error)
	GetSchema(ctx context.Context, schemaID uuid.UUID) (*models.SchemaDetail, error)
	GetRoomsForSchema(ctx context.Context, schemaID uuid.UUID) ([]models.Room, error)
	GetStreetsForSchema(ctx context.Context, schemaID uuid.UUID) ([]models.StreetMatch, error)
}

// CatalogService lists house schemas for a street and room dimensions for a
// schema. Every call re-queries the datastore; there is no caching layer.
type CatalogService struct {
	store  CatalogStore
	events Emitter
	assets *AssetPolicy
}

func NewCatalogService(store CatalogStore, events Emitter, assets *AssetPolicy) *CatalogService {
	return &CatalogService{store: store, events: events, assets: assets}
}

type HousesResult struct {
	Houses []models.House     `json:"houses"`
	Street *models.StreetInfo `json:"street"`
	Total  int                `json:"total"`
}

type SchemaResult struct {
	Schema *models.SchemaDetail `json:"schema"`
	Rooms  []models.RoomView    `json:"rooms"`
}

// HousesForStreet resolves the junction rows for a street into house cards,
// verified models first, then model name in case-insensitive locale order.
// A failed street-info fetch only costs the street header.
func (c *CatalogService) HousesForStreet(ctx context.Context, streetID uuid.UUID) (*HousesResult, error) {
	street, err := c.store.GetStreetInfo(ctx, streetID)
	if err != nil {
		log.Printf("Catalog: street fetch failed for %s: %v", streetID, err)
	}

	houses, err := c.store.GetHousesForStreet(ctx, streetID)
	if err != nil {
		return &HousesResult{Houses: []models.House{}, Street: street},
			&DatastoreError{Op: "load house types", Err: err}
	}

	SortHouses(houses)
	for i := range houses {
		houses[i].ExteriorPhotoURL = c.assets.Sanitize(houses[i].ExteriorPhotoURL)
	}

	streetName := ""
	if street != nil {
		streetName = street.StreetName
	}
	c.events.PublishPayload(models.HousesPageViewEvent{
		StreetID:    streetID.String(),
		StreetName:  streetName,
		HousesCount: len(houses),
	}, nil, nil)

	return &HousesResult{Houses: houses, Street: street, Total: len(houses)}, nil
}

// SortHouses orders verified houses strictly before unverified ones and
// breaks ties by model name, case-insensitive and locale-aware.
func SortHouses(houses []models.House) {
	col := collate.New(language.BritishEnglish, collate.IgnoreCase)
	sort.SliceStable(houses, func(i, j int) bool {
		if houses[i].Verified != houses[j].Verified {
			return houses[i].Verified
		}
		return col.CompareString(houses[i].ModelName, houses[j].ModelName) < 0
	})
}

// Schema returns the schema detail plus its rooms in floor order, each room
// decorated with derived floor and wall areas.
func (c *CatalogService) Schema(ctx context.Context, schemaID uuid.UUID) (*SchemaResult, error) {
	schema, err := c.store.GetSchema(ctx, schemaID)
	if err != nil {
		return nil, &DatastoreError{Op: "load schema", Err: err}
	}
	if schema == nil {
		return nil, ErrSchemaNotFound
	}
	schema.FloorPlanURL = c.assets.Sanitize(schema.FloorPlanURL)
	schema.ExteriorPhotoURL = c.assets.Sanitize(schema.ExteriorPhotoURL)

	rooms, err := c.store.GetRoomsForSchema(ctx, schemaID)
	if err != nil {
		// Degrade to an empty room list; the schema header is still useful.
		log.Printf("Catalog: rooms fetch failed for %s: %v", schemaID, err)
		rooms = nil
	}

	views := make([]models.RoomView, 0, len(rooms))
	for _, r := range rooms {
		views = append(views, decorateRoom(r))
	}

	c.events.PublishPayload(models.SchemaPageViewEvent{
		SchemaID:    schemaID.String(),
		ModelName:   schema.ModelName,
		BuilderName: schema.BuilderName,
		RoomsCount:  len(views),
	}, nil, nil)

	return &SchemaResult{Schema: schema, Rooms: views}, nil
}

func decorateRoom(r models.Room) models.RoomView {
	v := models.RoomView{Room: r, FloorAreaSqM: r.FloorAreaSqM}
	if r.LengthCM == nil || r.WidthCM == nil {
		return v
	}

	if v.FloorAreaSqM == nil {
		area := geometry.FloorAreaSqM(*r.LengthCM, *r.WidthCM)
		v.FloorAreaSqM = &area
	}
	wall := geometry.WallAreaSqM(*r.LengthCM, *r.WidthCM, geometry.CeilingHeightM(r.HeightCM))
	v.WallAreaSqM = &wall
	return v
}

// StreetsForSchema lists every street a schema is linked to, for the
// "where else is this model built" panel.
func (c *CatalogService) StreetsForSchema(ctx context.Context, schemaID uuid.UUID) ([]models.StreetMatch, error) {
	streets, err := c.store.GetStreetsForSchema(ctx, schemaID)
	if err != nil {
		return nil, &DatastoreError{Op: "fetch streets", Err: err}
	}
	if streets == nil {
		streets = []models.StreetMatch{}
	}
	return streets, nil
}
