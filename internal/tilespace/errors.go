package tilespace

import "errors"

var (
	// ErrInvalidLabel is returned when a column label is not exactly two ASCII letters.
	ErrInvalidLabel = errors.New("invalid column label")

	// ErrLabelRange is returned when an offset falls outside AA..ZZ.
	ErrLabelRange = errors.New("column offset out of range")

	// ErrInvalidRow is returned when a row label is not an integer.
	ErrInvalidRow = errors.New("invalid row label")

	// ErrInvalidFrame is returned when a GridFrame fails validation.
	ErrInvalidFrame = errors.New("invalid grid frame")

	// ErrDiagonalSpan is returned when a span's tiles share neither row nor column.
	ErrDiagonalSpan = errors.New("span tiles share neither row nor column")
)
