package tilespace

import "fmt"

const (
	// labelBase is the number of letters per label position.
	labelBase = 26

	// labelSpace is the number of distinct two-letter labels (AA..ZZ).
	labelSpace = labelBase * labelBase

	// FirstColumn is the label with ordinal zero.
	FirstColumn = "AA"
)

// parseLabel returns the ordinal of a two-letter label within AA..ZZ.
// Lower-case letters are folded to upper case.
func parseLabel(label string) (int, error) {
	if len(label) != 2 {
		return 0, fmt.Errorf("%w: %q must be two letters", ErrInvalidLabel, label)
	}
	hi, ok := letterValue(label[0])
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	lo, ok := letterValue(label[1])
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	return hi*labelBase + lo, nil
}

func letterValue(c byte) (int, bool) {
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c - 'A'), true
	case c >= 'a' && c <= 'z':
		return int(c - 'a'), true
	default:
		return 0, false
	}
}

// LabelToIndex returns the zero-based offset of label from origin.
// "AA" to "AB" is 1, "AA" to "BA" is 26. The result is negative when label
// sorts before origin.
func LabelToIndex(origin, label string) (int, error) {
	o, err := parseLabel(origin)
	if err != nil {
		return 0, fmt.Errorf("origin: %w", err)
	}
	l, err := parseLabel(label)
	if err != nil {
		return 0, err
	}
	return l - o, nil
}

// IndexToLabel returns the label offset columns from origin.
// It is the inverse of LabelToIndex for every valid label.
func IndexToLabel(origin string, offset int) (string, error) {
	o, err := parseLabel(origin)
	if err != nil {
		return "", fmt.Errorf("origin: %w", err)
	}
	v := o + offset
	if v < 0 || v >= labelSpace {
		return "", fmt.Errorf("%w: %s%+d", ErrLabelRange, origin, offset)
	}
	return string([]byte{byte('A' + v/labelBase), byte('A' + v%labelBase)}), nil
}

// ColumnIndex returns the ordinal of label counted from "AA", or -1 if the
// label is malformed.
func ColumnIndex(label string) int {
	v, err := parseLabel(label)
	if err != nil {
		return -1
	}
	return v
}
