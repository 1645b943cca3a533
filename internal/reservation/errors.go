package reservation

import "errors"

var (
	// ErrGroupNotFound is returned when a group ID is not in the index.
	ErrGroupNotFound = errors.New("group reservation not found")

	// ErrInvalidReservation is returned when reservation data fails validation.
	ErrInvalidReservation = errors.New("invalid reservation")

	// ErrDataCenterNotFound is returned when no reservations are stored for a data center.
	ErrDataCenterNotFound = errors.New("no reservations for data center")
)
