package model

import "time"

// Vehicle represents the core business entity of a tracked fleet vehicle.
// It is decoupled from the storage schema to keep the engine independent of
// the relational layer that owns persistence.
type Vehicle struct {
	// ID is the surrogate identifier assigned by the storage layer.
	ID int64

	// Plate is the unique natural key (license plate string).
	Plate string

	// ClientID references the owning client account.
	ClientID int64

	// Ignition is the authoritative "is the engine considered running" flag.
	// The classifier infers it from movement; ignition commands set it directly.
	Ignition bool

	// LastContact is the timestamp of the last communication from the tracker.
	LastContact time.Time

	// Active indicates whether the vehicle subscription is active.
	Active bool
}

// Position is a single append-only tracker sample.
type Position struct {
	ID        int64
	Plate     string
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}
