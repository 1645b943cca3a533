package overlay

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/nerrad567/colo-planner-core/internal/colo"
	"github.com/nerrad567/colo-planner-core/internal/reservation"
	"github.com/nerrad567/colo-planner-core/internal/tilespace"
)

func loadTestData(t *testing.T) *colo.Data {
	t.Helper()
	f, err := os.Open("../colo/testdata/colo-201.json")
	if err != nil {
		t.Fatalf("opening fixture: %v", err)
	}
	defer f.Close()

	snap, err := colo.DecodeSnapshot(f, "")
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	return colo.NewData(snap)
}

func testFrame(data *colo.Data) tilespace.GridFrame {
	return data.Frame(tilespace.DefaultFrame("AA", 1, 0, 0))
}

func testSources() Sources {
	groups := []reservation.GroupReservation{
		{GroupID: "G1", DemandID: "D1", ColoID: "201", Type: reservation.TypePreliminary, Orders: []reservation.Order{
			{OrderID: "O1", RackReservations: []reservation.RackReservation{
				{TileID: 1004, MsfPartNumber: "5001"},
				{TileID: 1005, MsfPartNumber: "5002"},
			}},
		}},
		{GroupID: "G2", DemandID: "D2", ColoID: "201", Type: reservation.TypeFinal, Orders: []reservation.Order{
			{OrderID: "O2", RackReservations: []reservation.RackReservation{{TileID: 1006}}},
		}},
	}
	return Sources{
		Reservations: reservation.NewIndex(groups),
		Racks: colo.NewRackIndex([]colo.Rack{
			{Name: "r1", Tile: "AA01", ColocationID: 201, PowerConsumed: 4200},
			{Name: "r3", Tile: "AC01", ColocationID: 201, PowerConsumed: 800},
			{Name: "elsewhere", Tile: "AA02", ColocationID: 999, PowerConsumed: 1},
		}),
		SKUs: colo.NewSKUCatalog([]colo.SKU{{MsfID: 5001, SkuPowerAt100pctLoadW: 9000}}),
	}
}

func TestFlags(t *testing.T) {
	shown, hidden := (ColdAisle | DeviceTiles).Diff(DeviceTiles | Power)
	if shown != Power || hidden != ColdAisle {
		t.Errorf("Diff() = %v, %v, want power, coldAisle", shown, hidden)
	}

	if got := (ColdAisle | Power).String(); got != "coldAisle,power" {
		t.Errorf("String() = %q, want %q", got, "coldAisle,power")
	}

	tests := []struct {
		in      string
		want    Flags
		wantErr bool
	}{
		{"", None, false},
		{"17", ColdAisle | Power, false},
		{"coldaisle, Power", ColdAisle | Power, false},
		{"all", All, false},
		{"none", None, false},
		{"64", None, true},
		{"heat", None, true},
	}
	for _, tt := range tests {
		got, err := ParseFlags(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFlags(%q) = %v, %v, want %v, err %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestFamilyClassifier(t *testing.T) {
	fc := NewFamilyClassifier()
	tests := map[string]string{
		"Azure Compute": "azure",
		"ap":            "azure",
		"APX":           "other",
		"Office 365":    "office",
		"O365 Exchange": "office",
		"Exchange":      "exchange",
		"Xbox Live":     "xbox",
		"Cosmos DB":     "cosmos",
		"SharePoint":    "sharepoint",
		"Contoso":       "other",
	}
	for brand, want := range tests {
		if got := fc.Family(brand); got != want {
			t.Errorf("Family(%q) = %q, want %q", brand, got, want)
		}
	}
	if got := fc.CSSClass("Azure Compute"); got != "property-group-azure" {
		t.Errorf("CSSClass() = %q", got)
	}
	if fc.Len() != len(tests) {
		t.Errorf("Len() = %d, want %d", fc.Len(), len(tests))
	}
}

func TestRackStatusPaths(t *testing.T) {
	data := loadTestData(t)
	paths := RackStatusPaths(data.Tiles(), testFrame(data))

	if want := "M 160 80 L 190 80 L 190 100 L 160 100 Z "; paths.Error != want {
		t.Errorf("Error path = %q, want %q", paths.Error, want)
	}
	if n := strings.Count(paths.Used, "Z"); n != 3 {
		t.Errorf("Used path has %d rects, want 3", n)
	}
	if n := strings.Count(paths.Available, "Z"); n != 2 {
		t.Errorf("Available path has %d rects, want 2", n)
	}
	if strings.Contains(paths.Available, "M 40 100") {
		t.Error("cold aisle tile drawn as a rack tile")
	}
}

func TestColdAislePath(t *testing.T) {
	data := loadTestData(t)
	want := "M 40 100 L 70 100 L 70 120 L 40 120 Z M 70 100 L 100 100 L 100 120 L 70 120 Z "
	if got := ColdAislePath(data.Tiles(), testFrame(data)); got != want {
		t.Errorf("ColdAislePath() = %q, want %q", got, want)
	}
}

func TestPropertyGroupRects(t *testing.T) {
	data := loadTestData(t)
	groups := PropertyGroupRects(data.Tiles(), testFrame(data), NewFamilyClassifier())

	want := []PropertyGroup{
		{Rect: tilespace.Rect{X: 40, Y: 40, Width: 60, Height: 40}, Label: "Azure Compute", Family: "azure", CSSClass: "property-group-azure"},
		{Rect: tilespace.Rect{X: 100, Y: 40, Width: 60, Height: 20}, Label: "O365 Exchange", Family: "office", CSSClass: "property-group-office"},
	}
	if len(groups) != len(want) {
		t.Fatalf("PropertyGroupRects() = %+v, want %d groups", groups, len(want))
	}
	for i := range want {
		if groups[i] != want[i] {
			t.Errorf("groups[%d] = %+v, want %+v", i, groups[i], want[i])
		}
	}
}

func TestDemandRects(t *testing.T) {
	data := loadTestData(t)
	d := DemandRects(testSources().Reservations, data, testFrame(data))

	if len(d.Preliminary) != 1 || len(d.Final) != 1 {
		t.Fatalf("DemandRects() = %+v", d)
	}
	if got, want := d.Preliminary[0].Rects, []tilespace.Rect{{X: 100, Y: 60, Width: 60, Height: 40}}; len(got) != 1 || got[0] != want[0] {
		t.Errorf("preliminary rects = %v, want %v", got, want)
	}
	if got, want := d.Final[0].Rects, []tilespace.Rect{{X: 160, Y: 40, Width: 30, Height: 20}}; len(got) != 1 || got[0] != want[0] {
		t.Errorf("final rects = %v, want %v", got, want)
	}

	if empty := DemandRects(nil, data, testFrame(data)); len(empty.Preliminary)+len(empty.Final) != 0 {
		t.Errorf("DemandRects(nil) = %+v, want empty", empty)
	}
}

func TestRackPower(t *testing.T) {
	data := loadTestData(t)
	src := testSources()
	p := RackPower(data, testFrame(data), PowerSources{Racks: src.Racks, Reservations: src.Reservations, SKUs: src.SKUs})

	if len(p.Deployed) != 3 || len(p.Reserved) != 2 {
		t.Fatalf("RackPower() = %d deployed, %d reserved, want 3, 2", len(p.Deployed), len(p.Reserved))
	}
	if !p.Deployed[0].Known || p.Deployed[0].Watts != 4200 {
		t.Errorf("AA01 power = %+v, want 4200 W", p.Deployed[0])
	}
	if p.Deployed[1].Known {
		t.Errorf("AA02 power = %+v, want unknown (rack is in another colo)", p.Deployed[1])
	}
	if !p.Reserved[0].Known || p.Reserved[0].Watts != 9000 {
		t.Errorf("AC02 power = %+v, want 9000 W", p.Reserved[0])
	}
	if p.Reserved[1].Known {
		t.Errorf("AC03 power = %+v, want unknown (no SKU)", p.Reserved[1])
	}

	deployed, reserved, unknown := p.Totals()
	if deployed != 5000 || reserved != 9000 || unknown != 2 {
		t.Errorf("Totals() = %v, %v, %d, want 5000, 9000, 2", deployed, reserved, unknown)
	}

	t.Run("no sources", func(t *testing.T) {
		p := RackPower(data, testFrame(data), PowerSources{})
		if _, _, unknown := p.Totals(); unknown != 5 {
			t.Errorf("unknown = %d, want 5", unknown)
		}
	})
}

func TestLayout_SetOverlays(t *testing.T) {
	data := loadTestData(t)
	l := New(data, tilespace.DefaultFrame("AA", 1, 0, 0), testSources())

	shown, hidden := l.SetOverlays(ColdAisle | Power)
	if shown != ColdAisle|Power || hidden != None {
		t.Errorf("SetOverlays() = %v, %v", shown, hidden)
	}
	v := l.View()
	if v.ColdAisle == "" || v.Power == nil {
		t.Errorf("View() missing shown overlays: coldAisle %q, power %v", v.ColdAisle, v.Power)
	}
	if _, ok := l.Power(); !ok {
		t.Error("Power() not rendered")
	}

	shown, hidden = l.SetOverlays(DeviceTiles)
	if shown != DeviceTiles || hidden != ColdAisle|Power {
		t.Errorf("SetOverlays() = %v, %v", shown, hidden)
	}
	v = l.View()
	if v.ColdAisle != "" || v.Power != nil {
		t.Error("View() still holds hidden overlays")
	}
	if len(v.DeviceTiles) != 1 || v.DeviceTiles[0].Rect != (tilespace.Rect{X: 160, Y: 80, Width: 30, Height: 20}) {
		t.Errorf("DeviceTiles = %+v", v.DeviceTiles)
	}
	if v.Overlays != DeviceTiles {
		t.Errorf("Overlays = %v, want deviceTiles", v.Overlays)
	}
}

func TestLayout_SetSourcesRerenders(t *testing.T) {
	data := loadTestData(t)
	l := New(data, tilespace.DefaultFrame("AA", 1, 0, 0), Sources{})
	l.SetOverlays(ReservationDemands)
	if d := l.View().Demands; d == nil || len(d.Preliminary) != 0 {
		t.Fatalf("Demands before sources = %+v", d)
	}

	l.SetSources(testSources())
	if d := l.View().Demands; len(d.Preliminary) != 1 {
		t.Errorf("Demands after SetSources = %+v", d)
	}
}

func TestLayout_Zoom(t *testing.T) {
	data := loadTestData(t)
	l := New(data, tilespace.DefaultFrame("AA", 1, 0, 0), Sources{})

	if w, h := l.ViewSize(); w != 260 || h != 160 {
		t.Errorf("ViewSize() = %v, %v, want 260, 160", w, h)
	}
	l.SetZoom(1.1)
	if w, h := l.ViewSize(); w != 286 || h != 176 {
		t.Errorf("ViewSize() at 1.1 = %v, %v, want 286, 176", w, h)
	}
	l.SetZoom(0)
	if l.Zoom() != 1.1 {
		t.Errorf("SetZoom(0) changed zoom to %v", l.Zoom())
	}
}

func TestLayout_WriteSVG(t *testing.T) {
	data := loadTestData(t)
	l := New(data, tilespace.DefaultFrame("AA", 1, 0, 0), testSources())
	l.SetOverlays(All)

	var buf bytes.Buffer
	if err := l.WriteSVG(&buf); err != nil {
		t.Fatalf("WriteSVG() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`viewBox="0 0 260 160"`,
		`class="property-group property-group-azure"`,
		`<title>O1</title>`,
		`class="demand-final"`,
		`>4.2 kW<`,
		`>n/a<`,
		`>AF<`,
		`</svg>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteSVG() output missing %q", want)
		}
	}
}

func TestFormatWatts(t *testing.T) {
	tests := map[float64]string{
		800:   "800 W",
		4200:  "4.2 kW",
		12000: "12 kW",
	}
	for in, want := range tests {
		if got := FormatWatts(in); got != want {
			t.Errorf("FormatWatts(%v) = %q, want %q", in, got, want)
		}
	}
}
