package overlay

import (
	"github.com/nerrad567/colo-planner-core/internal/colo"
	"github.com/nerrad567/colo-planner-core/internal/reservation"
	"github.com/nerrad567/colo-planner-core/internal/tilespace"
)

// StatusPaths holds one SVG path per rack status.
type StatusPaths struct {
	Available string `json:"available"`
	Reserved  string `json:"reserved"`
	Used      string `json:"used"`
	Error     string `json:"error"`
}

// RackStatusPaths draws every Server and Network tile footprint into the
// path of its status. Tiles with any other status are not drawn.
func RackStatusPaths(tiles []tilespace.Tile, f tilespace.GridFrame) StatusPaths {
	var available, reserved, used, failed []tilespace.TileRect
	for _, t := range tiles {
		if !t.Class.IsRack() {
			continue
		}
		r := tilespace.TileToRect(t, f)
		switch t.Status {
		case tilespace.StatusAvailable:
			available = append(available, r)
		case tilespace.StatusReserved:
			reserved = append(reserved, r)
		case tilespace.StatusUsed:
			used = append(used, r)
		case tilespace.StatusError:
			failed = append(failed, r)
		}
	}
	return StatusPaths{
		Available: tilespace.PathData(available),
		Reserved:  tilespace.PathData(reserved),
		Used:      tilespace.PathData(used),
		Error:     tilespace.PathData(failed),
	}
}

// ColdAislePath draws every cold aisle tile as a single cell.
func ColdAislePath(tiles []tilespace.Tile, f tilespace.GridFrame) string {
	var cells []tilespace.Rect
	for _, t := range tiles {
		if t.Class == tilespace.ClassCold {
			cells = append(cells, tilespace.CellRect(t, f))
		}
	}
	return tilespace.PathData(cells)
}

// PropertyGroup is one labelled run of tiles of the same brand.
type PropertyGroup struct {
	tilespace.Rect
	Label    string `json:"label"`
	Family   string `json:"family"`
	CSSClass string `json:"cssClass"`
}

// PropertyGroupRects groups deployed rack tiles by brand, in the order each
// brand first appears, and returns one rect per adjacent run.
func PropertyGroupRects(tiles []tilespace.Tile, f tilespace.GridFrame, fc *FamilyClassifier) []PropertyGroup {
	var brands []string
	sets := make(map[string]*tilespace.RowSets)
	for _, t := range tiles {
		if t.PermittedBrand == "" || t.Status != tilespace.StatusUsed || !t.Class.IsRack() {
			continue
		}
		s, ok := sets[t.PermittedBrand]
		if !ok {
			s = &tilespace.RowSets{}
			sets[t.PermittedBrand] = s
			brands = append(brands, t.PermittedBrand)
		}
		s.Add(t)
	}

	var out []PropertyGroup
	for _, brand := range brands {
		family := fc.Family(brand)
		for _, r := range tilespace.SpanRects(sets[brand].Spans(), f) {
			out = append(out, PropertyGroup{
				Rect:     r,
				Label:    brand,
				Family:   family,
				CSSClass: "property-group-" + family,
			})
		}
	}
	return out
}

// Demand is one reservation order drawn as rects.
type Demand struct {
	DemandID          string           `json:"demandId"`
	GroupID           string           `json:"groupId"`
	ColoID            string           `json:"coloId"`
	PropertyGroupName string           `json:"propertyGroupName"`
	OrderID           string           `json:"orderId"`
	Rects             []tilespace.Rect `json:"rects"`
}

// Demands splits reservation orders by type.
type Demands struct {
	Preliminary []Demand `json:"preliminary"`
	Final       []Demand `json:"final"`
}

// DemandRects renders the reservation orders that have tiles in data.
func DemandRects(idx *reservation.Index, data *colo.Data, f tilespace.GridFrame) Demands {
	var d Demands
	if idx == nil {
		return d
	}
	for _, og := range idx.OrderGroups(data) {
		demand := Demand{
			DemandID:          og.DemandID,
			GroupID:           og.GroupID,
			ColoID:            og.ColoID,
			PropertyGroupName: og.PropertyGroupName,
			OrderID:           og.OrderID,
			Rects:             tilespace.SpanRects(og.Spans, f),
		}
		if og.Type == reservation.TypePreliminary {
			d.Preliminary = append(d.Preliminary, demand)
		} else {
			d.Final = append(d.Final, demand)
		}
	}
	return d
}

// PowerRect is a rack footprint with its power draw. Known is false when
// the rack, reservation or SKU behind the tile could not be found.
type PowerRect struct {
	tilespace.Rect
	TileID int64   `json:"tileId"`
	Watts  float64 `json:"watts"`
	Known  bool    `json:"known"`
}

// PowerSources are the lookups behind the power overlay. Any of them may
// be nil, which leaves the affected tiles unknown.
type PowerSources struct {
	Racks        *colo.RackIndex
	Reservations *reservation.Index
	SKUs         colo.SKUCatalog
}

// PowerOverlay is the power draw of deployed and reserved racks.
type PowerOverlay struct {
	Deployed []PowerRect `json:"deployed"`
	Reserved []PowerRect `json:"reserved"`
}

// Totals sums the known draws and counts the unknown ones.
func (p PowerOverlay) Totals() (deployedW, reservedW float64, unknown int) {
	for _, r := range p.Deployed {
		if r.Known {
			deployedW += r.Watts
		} else {
			unknown++
		}
	}
	for _, r := range p.Reserved {
		if r.Known {
			reservedW += r.Watts
		} else {
			unknown++
		}
	}
	return deployedW, reservedW, unknown
}

// RackPower reports consumed power for deployed racks and SKU power at
// full load for reserved ones.
func RackPower(data *colo.Data, f tilespace.GridFrame, src PowerSources) PowerOverlay {
	var p PowerOverlay
	for _, t := range data.DeployedTiles() {
		pr := PowerRect{Rect: tilespace.TileToRect(t, f).Rect, TileID: t.ID}
		if rack, ok := src.Racks.ByTileName(data.ColoID(), t.Name); ok {
			pr.Watts, pr.Known = rack.PowerConsumed, true
		}
		p.Deployed = append(p.Deployed, pr)
	}
	for _, t := range data.ReservedTiles() {
		pr := PowerRect{Rect: tilespace.TileToRect(t, f).Rect, TileID: t.ID}
		if held, ok := src.Reservations.ByTile(t.ID); ok {
			if sku, ok := src.SKUs.Lookup(held.MsfPartNumber); ok {
				pr.Watts, pr.Known = sku.SkuPowerAt100pctLoadW, true
			}
		}
		p.Reserved = append(p.Reserved, pr)
	}
	return p
}
