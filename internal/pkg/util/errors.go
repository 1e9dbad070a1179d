// Package util holds small shared helpers and the sentinel errors the
// repository adapters translate storage-specific failures into.
package util

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPinNotSet is returned when a client has never configured a security code.
	ErrPinNotSet = errors.New("security code not configured")
)
