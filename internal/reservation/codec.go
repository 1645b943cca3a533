package reservation

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// envelope is the facility API's response shape.
type envelope struct {
	GroupReservations []GroupReservation `json:"GroupReservations"`
}

// Decode reads group reservations from r. It accepts the facility API's
// {"GroupReservations": [...]} envelope or a bare array, and validates
// every group.
func Decode(r io.Reader) ([]GroupReservation, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReservation, err)
	}

	var groups []GroupReservation
	dec := json.NewDecoder(br)
	if first == '[' {
		err = dec.Decode(&groups)
	} else {
		var env envelope
		err = dec.Decode(&env)
		groups = env.GroupReservations
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decoding: %v", ErrInvalidReservation, err)
	}

	for _, g := range groups {
		if err := g.Validate(); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			if _, err := br.ReadByte(); err != nil {
				return 0, err
			}
		default:
			return b[0], nil
		}
	}
}

// assignmentPayload is the wire shape of assignment events.
type assignmentPayload struct {
	TileID  *int64 `json:"tileId"`
	OrderID string `json:"orderId"`
}

// DecodeAssignment parses an assignment-add payload {"tileId", "orderId"}.
func DecodeAssignment(payload []byte) (Assignment, error) {
	var p assignmentPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return Assignment{}, fmt.Errorf("%w: assignment: %v", ErrInvalidReservation, err)
	}
	if p.TileID == nil {
		return Assignment{}, fmt.Errorf("%w: assignment: tileId is required", ErrInvalidReservation)
	}
	if strings.TrimSpace(p.OrderID) == "" {
		return Assignment{}, fmt.Errorf("%w: assignment: orderId is required", ErrInvalidReservation)
	}
	return Assignment{TileID: *p.TileID, OrderID: p.OrderID}, nil
}

// DecodeUnassignment parses an assignment-remove payload. Both {"tileId": n}
// and a bare tile id are accepted.
func DecodeUnassignment(payload []byte) (int64, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		id, err := strconv.ParseInt(string(trimmed), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: unassignment: %v", ErrInvalidReservation, err)
		}
		return id, nil
	}

	var p assignmentPayload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return 0, fmt.Errorf("%w: unassignment: %v", ErrInvalidReservation, err)
	}
	if p.TileID == nil {
		return 0, fmt.Errorf("%w: unassignment: tileId is required", ErrInvalidReservation)
	}
	return *p.TileID, nil
}
