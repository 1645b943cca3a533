package colo

import "errors"

var (
	// ErrColoNotFound is returned when no snapshot is stored for a colo ID.
	ErrColoNotFound = errors.New("colo not found")

	// ErrInvalidSnapshot is returned when a snapshot fails validation.
	ErrInvalidSnapshot = errors.New("invalid colo snapshot")

	// ErrDataCenterNotFound is returned when a data center or colo is absent from the catalog.
	ErrDataCenterNotFound = errors.New("data center not found")

	// ErrInvalidRack is returned when a rack record fails validation.
	ErrInvalidRack = errors.New("invalid rack")
)
