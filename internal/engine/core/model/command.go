package model

import "time"

// CommandType defines the type of a remote ignition command.
type CommandType string

const (
	CommandTypeCut        CommandType = "Cut"
	CommandTypeReactivate CommandType = "Reactivate"
)

// Valid reports whether the command type is part of the enumerated set.
func (t CommandType) Valid() bool {
	return t == CommandTypeCut || t == CommandTypeReactivate
}

// CommandOrigin identifies where an ignition command was issued from.
type CommandOrigin string

const (
	CommandOriginApp     CommandOrigin = "App"
	CommandOriginCentral CommandOrigin = "Central"
)

// CommandStatus defines the recorded outcome of a command.
type CommandStatus string

const (
	CommandStatusConfirmed CommandStatus = "Confirmed"
	CommandStatusError     CommandStatus = "Error"
)

// CommandLogEntry is the append-only audit record written once per accepted
// ignition command.
type CommandLogEntry struct {
	ID        int64
	VehicleID int64
	Command   CommandType
	Origin    CommandOrigin
	Status    CommandStatus
	Timestamp time.Time
}
