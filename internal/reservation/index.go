package reservation

import (
	"github.com/nerrad567/colo-planner-core/internal/tilespace"
)

// TileLookup resolves rack tile IDs within one colo.
type TileLookup interface {
	Tile(id int64) (tilespace.Tile, bool)
}

// Index answers lookups over the group reservations of one data center.
// It is immutable after construction. A nil *Index behaves as an index
// with no reservations.
type Index struct {
	groups      []GroupReservation
	byGroup     map[string]int
	byTile      map[int64]Held
	partNumbers []string
}

// NewIndex indexes groups. When two rack reservations name the same tile,
// the later one wins.
func NewIndex(groups []GroupReservation) *Index {
	idx := &Index{
		groups:  groups,
		byGroup: make(map[string]int, len(groups)),
		byTile:  make(map[int64]Held),
	}
	seenPart := make(map[string]bool)
	for gi, g := range groups {
		idx.byGroup[g.GroupID] = gi
		for _, o := range g.Orders {
			for _, rr := range o.RackReservations {
				idx.byTile[rr.TileID] = Held{RackReservation: rr, Type: g.Type, GroupID: g.GroupID, OrderID: o.OrderID}
				if rr.MsfPartNumber != "" && !seenPart[rr.MsfPartNumber] {
					seenPart[rr.MsfPartNumber] = true
					idx.partNumbers = append(idx.partNumbers, rr.MsfPartNumber)
				}
			}
		}
	}
	return idx
}

// Groups returns every group reservation in input order.
func (idx *Index) Groups() []GroupReservation {
	if idx == nil {
		return nil
	}
	return idx.groups
}

// Group returns the group reservation with the given ID.
func (idx *Index) Group(groupID string) (GroupReservation, bool) {
	if idx == nil {
		return GroupReservation{}, false
	}
	i, ok := idx.byGroup[groupID]
	if !ok {
		return GroupReservation{}, false
	}
	return idx.groups[i], true
}

// ByTile returns the rack reservation holding a tile.
func (idx *Index) ByTile(tileID int64) (Held, bool) {
	if idx == nil {
		return Held{}, false
	}
	h, ok := idx.byTile[tileID]
	return h, ok
}

// PartNumbers returns the distinct part numbers in first-seen order.
func (idx *Index) PartNumbers() []string {
	if idx == nil {
		return nil
	}
	return idx.partNumbers
}

// Assignments lists every tile of a group with the order holding it.
// ok is false when the group is unknown.
func (idx *Index) Assignments(groupID string) ([]Assignment, bool) {
	g, ok := idx.Group(groupID)
	if !ok {
		return nil, false
	}
	var out []Assignment
	for _, o := range g.Orders {
		for _, rr := range o.RackReservations {
			out = append(out, Assignment{TileID: rr.TileID, OrderID: o.OrderID})
		}
	}
	return out, true
}

// OrderGroup is the tiles one order occupies in a colo, grouped into spans.
type OrderGroup struct {
	DemandID          string           `json:"demandId"`
	GroupID           string           `json:"groupId"`
	ColoID            string           `json:"coloId"`
	PropertyGroupName string           `json:"propertyGroupName"`
	OrderID           string           `json:"orderId"`
	Type              Type             `json:"type"`
	Spans             []tilespace.Span `json:"spans"`
}

type orderKey struct {
	demandID string
	typ      Type
	orderID  string
}

// OrderGroups groups reserved tiles by (demand, type, order) in first-seen
// order. Tiles missing from lookup, such as those in another colo, are
// skipped, and orders left without tiles are dropped.
func (idx *Index) OrderGroups(lookup TileLookup) []OrderGroup {
	type pending struct {
		group OrderGroup
		sets  tilespace.RowSets
	}
	if idx == nil {
		return nil
	}
	var order []*pending
	byKey := make(map[orderKey]*pending)

	for _, g := range idx.groups {
		for _, o := range g.Orders {
			key := orderKey{g.DemandID, g.Type, o.OrderID}
			p := byKey[key]
			if p == nil {
				p = &pending{group: OrderGroup{
					DemandID:          g.DemandID,
					GroupID:           g.GroupID,
					ColoID:            g.ColoID,
					PropertyGroupName: g.PropertyGroupName,
					OrderID:           o.OrderID,
					Type:              g.Type,
				}}
				byKey[key] = p
				order = append(order, p)
			}
			for _, rr := range o.RackReservations {
				if t, ok := lookup.Tile(rr.TileID); ok {
					p.sets.Add(t)
				}
			}
		}
	}

	var out []OrderGroup
	for _, p := range order {
		if p.sets.Len() == 0 {
			continue
		}
		p.group.Spans = p.sets.Spans()
		out = append(out, p.group)
	}
	return out
}
