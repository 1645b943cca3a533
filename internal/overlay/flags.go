package overlay

import (
	"fmt"
	"strconv"
	"strings"
)

// Flags is a set of overlays.
type Flags uint8

// Overlay flags.
const (
	None               Flags = 0
	ColdAisle          Flags = 1 << 0
	DeviceTiles        Flags = 1 << 1
	PropertyGroups     Flags = 1 << 2
	ReservationDemands Flags = 1 << 3
	Power              Flags = 1 << 4

	All = ColdAisle | DeviceTiles | PropertyGroups | ReservationDemands | Power
)

// overlays lists every single flag in render order.
var overlays = []Flags{ColdAisle, DeviceTiles, PropertyGroups, ReservationDemands, Power}

var flagNames = map[Flags]string{
	ColdAisle:          "coldAisle",
	DeviceTiles:        "deviceTiles",
	PropertyGroups:     "propertyGroups",
	ReservationDemands: "reservationDemands",
	Power:              "power",
}

// Has reports whether every flag of o is set in f.
func (f Flags) Has(o Flags) bool {
	return f&o == o
}

// Diff returns the overlays that next turns on and the ones it turns off
// relative to f.
func (f Flags) Diff(next Flags) (shown, hidden Flags) {
	return next &^ f, f &^ next
}

func (f Flags) String() string {
	if f == None {
		return "none"
	}
	var names []string
	for _, o := range overlays {
		if f.Has(o) {
			names = append(names, flagNames[o])
		}
	}
	return strings.Join(names, ",")
}

// ParseFlags accepts a decimal bit mask or a comma separated list of
// overlay names ("coldAisle,power"). Names are case-insensitive; "all"
// and "none" are accepted.
func ParseFlags(s string) (Flags, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return None, nil
	}
	if n, err := strconv.ParseUint(s, 10, 8); err == nil {
		if Flags(n)&^All != 0 {
			return None, fmt.Errorf("overlay mask %d has unknown bits", n)
		}
		return Flags(n), nil
	}

	var f Flags
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		switch strings.ToLower(name) {
		case "all":
			f |= All
			continue
		case "none", "":
			continue
		}
		found := false
		for flag, n := range flagNames {
			if strings.EqualFold(n, name) {
				f |= flag
				found = true
				break
			}
		}
		if !found {
			return None, fmt.Errorf("unknown overlay %q", name)
		}
	}
	return f, nil
}
