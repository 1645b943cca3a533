package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"

	"github.com/nerrad567/colo-planner-core/internal/colo"
	"github.com/nerrad567/colo-planner-core/internal/infrastructure/database"
	"github.com/nerrad567/colo-planner-core/internal/overlay"
	"github.com/nerrad567/colo-planner-core/internal/reservation"
	"github.com/nerrad567/colo-planner-core/migrations"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// suggestionLimit caps "did you mean" lists.
const suggestionLimit = 3

// SourceOptions says where colo data comes from: a snapshot file, or a
// colo ID in the planner database. Reservation, rack and SKU files add to
// or replace what the database holds.
type SourceOptions struct {
	DB           string
	Reservations string
	Racks        string
	SKUs         string
}

// loaded is a colo with its overlay sources.
type loaded struct {
	data    *colo.Data
	sources overlay.Sources
	// names are every colo ID the database knows, for suggestions.
	names []string
}

// load reads the colo named by arg. With a database, arg is a colo ID;
// otherwise it is a snapshot file.
func (o *SourceOptions) load(ctx context.Context, arg string) (*loaded, error) {
	var (
		l   *loaded
		err error
	)
	if o.DB != "" {
		l, err = o.loadFromDB(ctx, arg)
	} else {
		l, err = o.loadFromFile(arg)
	}
	if err != nil {
		return nil, err
	}
	if l.sources.Families == nil {
		l.sources.Families = overlay.NewFamilyClassifier()
	}
	if err := o.applyFiles(l); err != nil {
		return nil, err
	}
	return l, nil
}

func (o *SourceOptions) loadFromFile(arg string) (*loaded, error) {
	f, err := openExpanded(arg)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	snap, err := colo.DecodeSnapshot(f, "")
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", arg, err)
	}
	return &loaded{data: colo.NewData(snap)}, nil
}

func (o *SourceOptions) loadFromDB(ctx context.Context, coloID string) (*loaded, error) {
	path, err := homedir.Expand(o.DB)
	if err != nil {
		return nil, fmt.Errorf("expanding %s: %w", o.DB, err)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db, err := database.Open(ctx, database.Config{Path: path})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	if _, err := db.Migrate(ctx, migrations.FS); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	colos := colo.NewSQLiteRepository(db.DB)
	snap, _, err := colos.GetSnapshot(ctx, coloID)
	if errors.Is(err, colo.ErrColoNotFound) {
		return nil, notFound(ctx, colos, coloID)
	}
	if err != nil {
		return nil, err
	}

	l := &loaded{data: colo.NewData(snap)}
	skus, err := colos.ListSKUs(ctx)
	if err != nil {
		return nil, err
	}
	l.sources.SKUs = colo.NewSKUCatalog(skus)

	catalog, err := colos.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	dc, ok := catalog.DataCenterForColo(coloID)
	if !ok {
		return l, nil
	}
	groups, err := reservation.NewSQLiteRepository(db.DB).Load(ctx, dc.ID)
	switch {
	case errors.Is(err, reservation.ErrDataCenterNotFound):
	case err != nil:
		return nil, err
	default:
		l.sources.Reservations = reservation.NewIndex(groups)
	}
	racks, err := colos.ListRacks(ctx, dc.ID)
	if err != nil {
		return nil, err
	}
	l.sources.Racks = colo.NewRackIndex(racks)
	return l, nil
}

// notFound builds a not-found error with the closest stored and
// catalogued colo IDs.
func notFound(ctx context.Context, colos colo.Repository, coloID string) error {
	var candidates []string
	if infos, err := colos.ListSnapshots(ctx); err == nil {
		for _, info := range infos {
			candidates = append(candidates, info.ColoID)
		}
	}
	suggestions := colo.Closest(coloID, candidates, suggestionLimit)
	if catalog, err := colos.LoadCatalog(ctx); err == nil {
		suggestions = append(suggestions, catalog.Suggest(coloID, suggestionLimit)...)
	}
	suggestions = dedupe(suggestions)
	if len(suggestions) == 0 {
		return fmt.Errorf("%w: %s", colo.ErrColoNotFound, coloID)
	}
	return fmt.Errorf("%w: %s (did you mean %s?)", colo.ErrColoNotFound, coloID, strings.Join(suggestions, ", "))
}

func (o *SourceOptions) applyFiles(l *loaded) error {
	if o.Reservations != "" {
		f, err := openExpanded(o.Reservations)
		if err != nil {
			return err
		}
		groups, err := reservation.Decode(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("reading %s: %w", o.Reservations, err)
		}
		l.sources.Reservations = reservation.NewIndex(groups)
	}
	if o.Racks != "" {
		var racks []colo.Rack
		if err := decodeFile(o.Racks, &racks); err != nil {
			return err
		}
		l.sources.Racks = colo.NewRackIndex(racks)
	}
	if o.SKUs != "" {
		var skus []colo.SKU
		if err := decodeFile(o.SKUs, &skus); err != nil {
			return err
		}
		l.sources.SKUs = colo.NewSKUCatalog(skus)
	}
	return nil
}

func openExpanded(path string) (*os.File, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expanding %s: %w", path, err)
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func decodeFile(path string, v any) error {
	f, err := openExpanded(path)
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
