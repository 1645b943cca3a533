package reservation

import (
	"errors"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/nerrad567/colo-planner-core/internal/tilespace"
)

// mapLookup resolves tiles from a fixed set.
type mapLookup map[int64]tilespace.Tile

func (m mapLookup) Tile(id int64) (tilespace.Tile, bool) {
	t, ok := m[id]
	return t, ok
}

func testTiles() mapLookup {
	tiles := []tilespace.Tile{
		{ID: 1004, Name: "AC02", X: "AC", Y: "2", Class: tilespace.ClassServer, AssocDirection: tilespace.DirectionRight, Status: tilespace.StatusReserved},
		{ID: 1005, Name: "AC03", X: "AC", Y: "3", Class: tilespace.ClassServer, AssocDirection: tilespace.DirectionRight, Status: tilespace.StatusReserved},
		{ID: 1006, Name: "AE01", X: "AE", Y: "1", Class: tilespace.ClassServer, AssocDirection: tilespace.DirectionUp, Status: tilespace.StatusAvailable},
		{ID: 1007, Name: "AF01", X: "AF", Y: "1", Class: tilespace.ClassServer, AssocDirection: tilespace.DirectionUp, Status: tilespace.StatusAvailable},
	}
	m := make(mapLookup, len(tiles))
	for _, t := range tiles {
		m[t.ID] = t
	}
	return m
}

func loadTestGroups(t *testing.T) []GroupReservation {
	t.Helper()
	f, err := os.Open("testdata/reservations-dc1.json")
	if err != nil {
		t.Fatalf("opening fixture: %v", err)
	}
	defer f.Close()

	groups, err := Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return groups
}

func TestDecode(t *testing.T) {
	groups := loadTestGroups(t)
	if len(groups) != 2 {
		t.Fatalf("Decode() = %d groups, want 2", len(groups))
	}
	if groups[1].Type != TypeFinal || groups[1].Orders[1].OrderID != "O-3" {
		t.Errorf("groups[1] = %+v", groups[1])
	}

	t.Run("bare array", func(t *testing.T) {
		got, err := Decode(strings.NewReader(` [{"GroupId":"G","Type":"Final"}]`))
		if err != nil || len(got) != 1 {
			t.Errorf("Decode() = %v, %v, want 1 group", got, err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		inputs := map[string]string{
			"empty":        "",
			"not json":     "{nope",
			"missing id":   `[{"Type":"Final"}]`,
			"unknown type": `[{"GroupId":"G","Type":"Maybe"}]`,
			"missing order": `{"GroupReservations":[{"GroupId":"G","Type":"Final",
				"OrderReservations":[{"RackReservations":[]}]}]}`,
		}
		for name, in := range inputs {
			if _, err := Decode(strings.NewReader(in)); !errors.Is(err, ErrInvalidReservation) {
				t.Errorf("%s: Decode() error = %v, want ErrInvalidReservation", name, err)
			}
		}
	})
}

func TestIndex_Lookups(t *testing.T) {
	idx := NewIndex(loadTestGroups(t))

	held, ok := idx.ByTile(1004)
	if !ok {
		t.Fatal("ByTile(1004) not found")
	}
	if held.Type != TypePreliminary || held.GroupID != "G-100" || held.OrderID != "O-1" || held.MsfPartNumber != "PN-7" {
		t.Errorf("ByTile(1004) = %+v", held)
	}
	if _, ok := idx.ByTile(1001); ok {
		t.Error("ByTile(1001) found, want unreserved")
	}

	var nilIdx *Index
	if _, ok := nilIdx.ByTile(1004); ok {
		t.Error("nil Index ByTile() found a tile")
	}

	if g, ok := idx.Group("G-200"); !ok || g.DemandID != "D-2" {
		t.Errorf("Group(G-200) = %+v, %v", g, ok)
	}

	want := []string{"PN-7", "PN-9", "PN-11"}
	if got := idx.PartNumbers(); !slices.Equal(got, want) {
		t.Errorf("PartNumbers() = %v, want %v", got, want)
	}
}

func TestIndex_Assignments(t *testing.T) {
	idx := NewIndex(loadTestGroups(t))

	got, ok := idx.Assignments("G-200")
	if !ok {
		t.Fatal("Assignments(G-200) not found")
	}
	want := []Assignment{{1006, "O-2"}, {1007, "O-2"}, {4242, "O-3"}}
	if !slices.Equal(got, want) {
		t.Errorf("Assignments(G-200) = %v, want %v", got, want)
	}

	if got, ok := idx.Assignments("nope"); ok || len(got) != 0 {
		t.Errorf("Assignments(nope) = %v, %v, want empty, false", got, ok)
	}
}

func TestIndex_OrderGroups(t *testing.T) {
	idx := NewIndex(loadTestGroups(t))
	groups := idx.OrderGroups(testTiles())

	if len(groups) != 2 {
		t.Fatalf("OrderGroups() = %d groups, want 2 (O-3 has no tiles in this colo)", len(groups))
	}

	first := groups[0]
	if first.OrderID != "O-1" || first.Type != TypePreliminary || first.PropertyGroupName != "Azure Compute" {
		t.Errorf("groups[0] = %+v", first)
	}
	// AC02 and AC03 face right, so they join down the AC column.
	if len(first.Spans) != 1 || first.Spans[0].Start.ID != 1004 || first.Spans[0].End.ID != 1005 {
		t.Errorf("groups[0].Spans = %+v, want one span 1004..1005", first.Spans)
	}

	second := groups[1]
	if second.OrderID != "O-2" || second.ColoID != "201" {
		t.Errorf("groups[1] = %+v", second)
	}
	if len(second.Spans) != 1 || second.Spans[0].Len() != 2 {
		t.Errorf("groups[1].Spans = %+v, want one span of 2", second.Spans)
	}
}

func TestIndex_OrderGroupsMergesRepeatedOrders(t *testing.T) {
	groups := []GroupReservation{
		{GroupID: "A", DemandID: "D", Type: TypeFinal, PropertyGroupName: "first", Orders: []Order{
			{OrderID: "O", RackReservations: []RackReservation{{TileID: 1006}}},
		}},
		{GroupID: "B", DemandID: "D", Type: TypeFinal, PropertyGroupName: "second", Orders: []Order{
			{OrderID: "O", RackReservations: []RackReservation{{TileID: 1007}}},
		}},
	}
	got := NewIndex(groups).OrderGroups(testTiles())
	if len(got) != 1 {
		t.Fatalf("OrderGroups() = %d groups, want 1", len(got))
	}
	if got[0].GroupID != "A" || got[0].PropertyGroupName != "first" {
		t.Errorf("merged group = %+v, want first occurrence's fields", got[0])
	}
	if len(got[0].Spans) != 1 || got[0].Spans[0].Len() != 2 {
		t.Errorf("merged spans = %+v, want one span of 2", got[0].Spans)
	}
}

func TestDecodeAssignment(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Assignment
		wantErr bool
	}{
		{"valid", `{"tileId":1006,"orderId":"O-9"}`, Assignment{1006, "O-9"}, false},
		{"zero tile id", `{"tileId":0,"orderId":"O-9"}`, Assignment{0, "O-9"}, false},
		{"missing tile", `{"orderId":"O-9"}`, Assignment{}, true},
		{"missing order", `{"tileId":1006}`, Assignment{}, true},
		{"blank order", `{"tileId":1006,"orderId":"  "}`, Assignment{}, true},
		{"not json", `tile 1006`, Assignment{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeAssignment([]byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeAssignment() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidReservation) {
				t.Errorf("DecodeAssignment() error = %v, want ErrInvalidReservation", err)
			}
			if got != tt.want {
				t.Errorf("DecodeAssignment() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeUnassignment(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int64
		wantErr bool
	}{
		{"object", `{"tileId":1004}`, 1004, false},
		{"bare id", "1004", 1004, false},
		{"bare id with newline", "1004\n", 1004, false},
		{"missing tile", `{}`, 0, true},
		{"not a number", "AC02", 0, true},
		{"empty", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeUnassignment([]byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeUnassignment() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DecodeUnassignment() = %d, want %d", got, tt.want)
			}
		})
	}
}
