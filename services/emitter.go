package services

import "roomsizes/models"

// Emitter is the fire-and-forget analytics hook the services publish
// through. Implemented by workers.Dispatcher; delivery is at-most-effort
// and a publish must never fail a user-facing call.
type Emitter interface {
	PublishPayload(p models.EventPayload, pageURL, userAgent *string)
}

// NoOpEmitter drops everything. Used in tests and as a safe default.
type NoOpEmitter struct{}

func (NoOpEmitter) PublishPayload(p models.EventPayload, pageURL, userAgent *string) {}
