package colo

import (
	"sort"
	"strconv"
	"strings"

	lev "github.com/agnivade/levenshtein"
)

// Rack is a deployed rack as reported by the facility API.
type Rack struct {
	Name          string  `json:"Name"`
	RackID        int64   `json:"RackId"`
	RackSize      int     `json:"RackSize"`
	Tile          string  `json:"Tile"`
	ColocationID  int64   `json:"ColocationId"`
	DatacenterID  int64   `json:"DatacenterId"`
	PowerConsumed float64 `json:"PowerConsumed"`
}

// RackIndex finds racks by colocation and tile name.
type RackIndex struct {
	byColo map[string][]Rack
	byTile map[string]map[string]Rack
}

// NewRackIndex indexes racks. A later rack on the same tile replaces an
// earlier one.
func NewRackIndex(racks []Rack) *RackIndex {
	idx := &RackIndex{
		byColo: make(map[string][]Rack),
		byTile: make(map[string]map[string]Rack),
	}
	for _, r := range racks {
		colo := strconv.FormatInt(r.ColocationID, 10)
		idx.byColo[colo] = append(idx.byColo[colo], r)
		if idx.byTile[colo] == nil {
			idx.byTile[colo] = make(map[string]Rack)
		}
		idx.byTile[colo][r.Tile] = r
	}
	return idx
}

// RacksAt returns the racks in a colocation.
func (idx *RackIndex) RacksAt(coloID string) []Rack {
	if idx == nil {
		return nil
	}
	return idx.byColo[coloID]
}

// ByTileName returns the rack on the named tile of a colocation.
func (idx *RackIndex) ByTileName(coloID, tileName string) (Rack, bool) {
	if idx == nil {
		return Rack{}, false
	}
	r, ok := idx.byTile[coloID][tileName]
	return r, ok
}

// SKU is the power rating of one part number.
type SKU struct {
	MsfID                 int64   `json:"MsfId"`
	SkuPowerAt100pctLoadW float64 `json:"SkuPowerAt100pctLoadW"`
}

// SKUCatalog maps part numbers to SKU details.
type SKUCatalog map[string]SKU

// NewSKUCatalog indexes skus by part number.
func NewSKUCatalog(skus []SKU) SKUCatalog {
	c := make(SKUCatalog, len(skus))
	for _, s := range skus {
		c[strconv.FormatInt(s.MsfID, 10)] = s
	}
	return c
}

// Lookup returns the SKU for a part number.
func (c SKUCatalog) Lookup(partNumber string) (SKU, bool) {
	s, ok := c[strings.TrimSpace(partNumber)]
	return s, ok
}

// Colocation is one colo room within a data center.
type Colocation struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

// DataCenter lists its colocations.
type DataCenter struct {
	ID          string       `json:"Id"`
	Name        string       `json:"Name"`
	Colocations []Colocation `json:"Colocations"`
}

// Catalog is the data-center and colo directory.
type Catalog struct {
	DataCenters []DataCenter
}

// NewCatalog builds a catalog.
func NewCatalog(dcs []DataCenter) *Catalog {
	return &Catalog{DataCenters: dcs}
}

// DataCenter returns a data center by ID.
func (c *Catalog) DataCenter(id string) (DataCenter, bool) {
	for _, dc := range c.DataCenters {
		if dc.ID == id {
			return dc, true
		}
	}
	return DataCenter{}, false
}

// DataCenterForColo returns the data center that contains coloID.
func (c *Catalog) DataCenterForColo(coloID string) (DataCenter, bool) {
	for _, dc := range c.DataCenters {
		for _, colo := range dc.Colocations {
			if colo.ID == coloID {
				return dc, true
			}
		}
	}
	return DataCenter{}, false
}

// Colocation returns the colo record for coloID.
func (c *Catalog) Colocation(coloID string) (Colocation, bool) {
	for _, dc := range c.DataCenters {
		for _, colo := range dc.Colocations {
			if colo.ID == coloID {
				return colo, true
			}
		}
	}
	return Colocation{}, false
}

// maxSuggestDistance is the largest edit distance offered as a suggestion.
const maxSuggestDistance = 3

// Suggest returns up to limit known colo IDs or names closest to query,
// nearest first.
func (c *Catalog) Suggest(query string, limit int) []string {
	var candidates []string
	for _, dc := range c.DataCenters {
		for _, colo := range dc.Colocations {
			candidates = append(candidates, colo.ID)
			if colo.Name != "" {
				candidates = append(candidates, colo.Name)
			}
		}
	}
	return Closest(query, candidates, limit)
}

// Closest returns up to limit candidates within a small edit distance of
// query, nearest first. Comparison ignores case.
func Closest(query string, candidates []string, limit int) []string {
	type scored struct {
		name string
		dist int
	}
	q := strings.ToLower(query)
	seen := make(map[string]bool)
	var hits []scored
	for _, cand := range candidates {
		if seen[cand] {
			continue
		}
		seen[cand] = true
		d := lev.ComputeDistance(q, strings.ToLower(cand))
		if d <= maxSuggestDistance {
			hits = append(hits, scored{cand, d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].name < hits[j].name
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}
