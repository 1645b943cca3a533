package reservation

import (
	"fmt"
	"strings"
)

// Type distinguishes tentative reservations from committed ones.
type Type string

// Reservation types.
const (
	TypePreliminary Type = "Preliminary"
	TypeFinal       Type = "Final"
)

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	return t == TypePreliminary || t == TypeFinal
}

// RackReservation holds one tile for one rack.
type RackReservation struct {
	TileID          int64   `json:"TileId"`
	MsfPartNumber   string  `json:"MsfPartNumber"`
	RackID          int64   `json:"RackId"`
	PowerNeeded     float64 `json:"PowerNeeded"`
	CoolingReserved float64 `json:"CoolingReserved"`
}

// Order is one order of a group reservation.
type Order struct {
	OrderID          string            `json:"OrderId"`
	RackReservations []RackReservation `json:"RackReservations"`
}

// GroupReservation is a demand's reservation within one colo.
type GroupReservation struct {
	GroupID           string  `json:"GroupId"`
	DemandID          string  `json:"DemandId"`
	ColoID            string  `json:"ColocationId"`
	PropertyGroupName string  `json:"PropertyGroupName"`
	Type              Type    `json:"Type"`
	Orders            []Order `json:"OrderReservations"`
}

// Validate checks identifiers and the reservation type.
func (g GroupReservation) Validate() error {
	var errs []string
	if strings.TrimSpace(g.GroupID) == "" {
		errs = append(errs, "GroupId is required")
	}
	if !g.Type.Valid() {
		errs = append(errs, fmt.Sprintf("Type %q must be Preliminary or Final", g.Type))
	}
	for _, o := range g.Orders {
		if strings.TrimSpace(o.OrderID) == "" {
			errs = append(errs, "OrderId is required")
			break
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: group %q: %s", ErrInvalidReservation, g.GroupID, strings.Join(errs, "; "))
	}
	return nil
}

// Held is a rack reservation together with its group's type.
type Held struct {
	RackReservation
	Type    Type   `json:"type"`
	GroupID string `json:"groupId"`
	OrderID string `json:"orderId"`
}

// Assignment ties a tile to the order it is assigned to.
type Assignment struct {
	TileID  int64  `json:"tileId"`
	OrderID string `json:"orderId"`
}
