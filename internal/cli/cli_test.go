package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/nerrad567/colo-planner-core/internal/colo"
	"github.com/nerrad567/colo-planner-core/internal/infrastructure/database"
	"github.com/nerrad567/colo-planner-core/migrations"
)

const (
	coloFixture        = "../colo/testdata/colo-201.json"
	reservationFixture = "../reservation/testdata/reservations-dc1.json"
)

// execute runs colomap with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := New()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// seedDB stores the colo fixture in a fresh planner database and returns
// its path.
func seedDB(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "planner.db")
	db, err := database.Open(ctx, database.Config{Path: path})
	if err != nil {
		t.Fatalf("database.Open: %v", err)
	}
	defer db.Close()
	if _, err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	f, err := os.Open(coloFixture)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()
	snap, err := colo.DecodeSnapshot(f, "")
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	repo := colo.NewSQLiteRepository(db.DB)
	if _, _, err := repo.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	dcs := []colo.DataCenter{{ID: "dc1", Name: "West", Colocations: []colo.Colocation{{ID: "201", Name: "Hall A"}}}}
	if err := repo.ReplaceCatalog(ctx, dcs); err != nil {
		t.Fatalf("ReplaceCatalog: %v", err)
	}
	return path
}

func TestRender(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		out, _, err := execute(t, "render", coloFixture, "--overlays", "all")
		if err != nil {
			t.Fatalf("render error = %v", err)
		}
		if !strings.Contains(out, "<svg") || !strings.HasSuffix(strings.TrimSpace(out), "</svg>") {
			t.Errorf("output is not SVG: %.60q", out)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "201.svg")
		_, stderr, err := execute(t, "render", coloFixture, "-o", path, "--zoom", "2")
		if err != nil {
			t.Fatalf("render error = %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil || !bytes.Contains(data, []byte("<svg")) {
			t.Errorf("rendered file unreadable or not SVG: %v", err)
		}
		if !strings.Contains(stderr, "wrote "+path) {
			t.Errorf("stderr = %q, want write notice", stderr)
		}
	})

	tests := []struct {
		name string
		args []string
	}{
		{"unknown overlay", []string{"render", coloFixture, "--overlays", "sparkles"}},
		{"bad zoom", []string{"render", coloFixture, "--zoom", "0"}},
		{"missing file", []string{"render", "/nonexistent/colo.json"}},
		{"no argument", []string{"render"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, tt.args...); err == nil {
				t.Error("render error = nil, want error")
			}
		})
	}
}

func TestInspect(t *testing.T) {
	racks := writeFile(t, "racks.json", `[{"Name":"R1","RackId":1,"Tile":"AA01","ColocationId":201,"DatacenterId":1,"PowerConsumed":4200}]`)

	out, _, err := execute(t, "inspect", coloFixture, "--reservations", reservationFixture, "--racks", racks)
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	for _, want := range []string{"201", "AA01", "6 x 4", "Available", "Cold", "4.2 kW", "G-100", "G-200", "O-2"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestInspect_FromDatabase(t *testing.T) {
	db := seedDB(t)

	out, _, err := execute(t, "inspect", "--db", db, "201")
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	if !strings.Contains(out, "201") {
		t.Errorf("inspect output = %q", out)
	}

	_, _, err = execute(t, "inspect", "--db", db, "2O1")
	if err == nil || !strings.Contains(err.Error(), "did you mean 201") {
		t.Errorf("inspect unknown colo error = %v, want suggestion", err)
	}

	_, _, err = execute(t, "inspect", "--db", filepath.Join(t.TempDir(), "absent.db"), "201")
	if err == nil {
		t.Error("inspect with missing database error = nil")
	}
}

func TestTiles(t *testing.T) {
	out, _, err := execute(t, "tiles", coloFixture, "AE01", "af01")
	if err != nil {
		t.Fatalf("tiles error = %v", err)
	}
	if !strings.Contains(out, "160,40 30x40") || !strings.Contains(out, "AF01") {
		t.Errorf("tiles output = %q", out)
	}

	_, stderr, err := execute(t, "tiles", coloFixture, "AE01", "AE0")
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("tiles error = %v, want 1 of 2 not found", err)
	}
	if !strings.Contains(stderr, "did you mean AE01") {
		t.Errorf("stderr = %q, want suggestion", stderr)
	}
}

func TestView(t *testing.T) {
	orig := newScreen
	t.Cleanup(func() { newScreen = orig })

	newScreen = func() (tcell.Screen, error) {
		s := tcell.NewSimulationScreen("UTF-8")
		if err := s.Init(); err != nil {
			return nil, err
		}
		s.SetSize(80, 24)
		s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
		return s, nil
	}

	if _, _, err := execute(t, "view", coloFixture); err != nil {
		t.Errorf("view error = %v", err)
	}
	if _, _, err := execute(t, "view", coloFixture, "--overlays", "sparkles"); err == nil {
		t.Error("view with unknown overlay error = nil")
	}
}

func TestLoad_SourceFiles(t *testing.T) {
	skus := writeFile(t, "skus.json", `[{"MsfId":7,"SkuPowerAt100pctLoadW":9000}]`)
	so := &SourceOptions{Reservations: reservationFixture, SKUs: skus}

	l, err := so.load(context.Background(), coloFixture)
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	if l.sources.Reservations == nil || l.sources.Families == nil {
		t.Errorf("sources = %+v", l.sources)
	}
	if _, ok := l.sources.SKUs.Lookup("7"); !ok {
		t.Error("SKU 7 not loaded")
	}

	bad := writeFile(t, "skus.json", `{"MsfId":7}`)
	so = &SourceOptions{SKUs: bad}
	if _, err := so.load(context.Background(), coloFixture); err == nil {
		t.Error("load with non-array SKUs error = nil")
	}
}
