package models

import (
	"github.com/google/uuid"
)

// Development is a named group of streets built by one or more builders.
// Reference data curated out of band; this service never writes it.
type Development struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}

// Street is a named road within a postcode area, optionally part of a
// Development. Linked many-to-many to house schemas via house_schema_streets.
type Street struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	StreetName    string     `json:"street_name" db:"street_name"`
	Postcode      string     `json:"postcode" db:"postcode"`
	PostcodeArea  string     `json:"postcode_area" db:"postcode_area"`
	DevelopmentID *uuid.UUID `json:"development_id" db:"development_id"`
}

// StreetMatch is a search hit: a street plus its resolved development name.
type StreetMatch struct {
	StreetID        uuid.UUID  `json:"street_id"`
	StreetName      string     `json:"street_name"`
	Postcode        string     `json:"postcode"`
	PostcodeArea    string     `json:"postcode_area"`
	DevelopmentID   *uuid.UUID `json:"development_id"`
	DevelopmentName *string    `json:"development_name"`
}

// StreetInfo is the slim street header shown on the houses page.
type StreetInfo struct {
	StreetName   string `json:"street_name"`
	Postcode     string `json:"postcode"`
	PostcodeArea string `json:"postcode_area"`
}
