package models

import (
	"github.com/google/uuid"
)

// UnknownBuilder is the display fallback when a schema's builder row is
// missing or the reference is dangling.
const UnknownBuilder = "Unknown Builder"

// Builder is a house-builder company. Reference data, read-only here.
type Builder struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}

// HouseSchema is a builder's named house model with its floor plan and
// per-room dimensions. "Verified" is set by data curators, never by this
// service.
type HouseSchema struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	ModelName        string     `json:"model_name" db:"model_name"`
	Bedrooms         int        `json:"bedrooms" db:"bedrooms"`
	PropertyType     string     `json:"property_type" db:"property_type"`
	YearFrom         *int       `json:"year_from" db:"year_from"`
	YearTo           *int       `json:"year_to" db:"year_to"`
	FloorPlanURL     *string    `json:"floor_plan_url" db:"floor_plan_url"`
	ExteriorPhotoURL *string    `json:"exterior_photo_url" db:"exterior_photo_url"`
	Verified         bool       `json:"verified" db:"verified"`
	Notes            *string    `json:"notes" db:"notes"`
	BuilderID        *uuid.UUID `json:"builder_id" db:"builder_id"`
}

// House is the card shape shown on the houses-for-street page.
type House struct {
	SchemaID         uuid.UUID `json:"schema_id"`
	ModelName        string    `json:"model_name"`
	BuilderName      string    `json:"builder_name"`
	Bedrooms         int       `json:"bedrooms"`
	PropertyType     string    `json:"property_type"`
	ExteriorPhotoURL *string   `json:"exterior_photo_url"`
	Verified         bool      `json:"verified"`
}

// SchemaDetail is the full schema payload for the rooms page.
type SchemaDetail struct {
	ID               uuid.UUID  `json:"id"`
	ModelName        string     `json:"model_name"`
	BuilderName      string     `json:"builder_name"`
	BuilderID        *uuid.UUID `json:"builder_id"`
	Bedrooms         int        `json:"bedrooms"`
	PropertyType     string     `json:"property_type"`
	YearFrom         *int       `json:"year_from"`
	YearTo           *int       `json:"year_to"`
	FloorPlanURL     *string    `json:"floor_plan_url"`
	ExteriorPhotoURL *string    `json:"exterior_photo_url"`
	Verified         bool       `json:"verified"`
	Notes            *string    `json:"notes"`
}

// Room holds one room's stored dimensions. floor_level 0 is the ground
// floor; rooms order by floor_level then room_name.
type Room struct {
	ID                         uuid.UUID `json:"id" db:"id"`
	RoomName                   string    `json:"room_name" db:"room_name"`
	RoomType                   string    `json:"room_type" db:"room_type"`
	FloorLevel                 int       `json:"floor_level" db:"floor_level"`
	LengthCM                   *int      `json:"length_cm" db:"length_cm"`
	WidthCM                    *int      `json:"width_cm" db:"width_cm"`
	HeightCM                   *int      `json:"height_cm" db:"height_cm"`
	FloorAreaSqM               *float64  `json:"floor_area_sqm" db:"floor_area_sqm"`
	Notes                      *string   `json:"notes" db:"notes"`
	DimensionsNeedVerification bool      `json:"dimensions_need_verification" db:"dimensions_need_verification"`
	VerificationReason         *string   `json:"verification_reason" db:"verification_reason"`
}

// RoomView is a Room decorated with derived geometry for display.
type RoomView struct {
	Room
	FloorAreaSqM *float64 `json:"floor_area_sqm"`
	WallAreaSqM  *float64 `json:"wall_area_sqm"`
}
