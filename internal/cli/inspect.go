package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/nerrad567/colo-planner-core/internal/overlay"
	"github.com/nerrad567/colo-planner-core/internal/tilespace"
)

func addInspect(topLevel *cobra.Command, so *SourceOptions) {
	cmd := &cobra.Command{
		Use:   "inspect <snapshot.json | colo-id>",
		Short: "Summarise a colo's tiles, power draw and reservations",
		Example: `
colomap inspect colo-201.json --reservations reservations.json
colomap inspect --db ./data/coloplanner.db 201
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := so.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			inspect(cmd.OutOrStdout(), l)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func inspect(w io.Writer, l *loaded) {
	bold := color.New(color.Bold)
	stats := l.data.Stats()
	frame := l.data.Frame(baseFrame())

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Colo"), l.data.ColoID())
	tbl.AddRow(bold.Sprint("Origin"), fmt.Sprintf("%s%02d", frame.OriginColumn, frame.OriginRow))
	tbl.AddRow(bold.Sprint("Grid"), fmt.Sprintf("%d x %d", frame.Columns, frame.Rows))
	tbl.AddRow(bold.Sprint("Tiles"), humanize.Comma(int64(stats.Tiles)))
	fmt.Fprintln(w, tbl)
	fmt.Fprintln(w)

	tbl = uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Status"), bold.Sprint("Tiles"))
	for _, s := range sortedKeys(stats.ByStatus) {
		tbl.AddRow(statusColor(s).Sprint(s), humanize.Comma(int64(stats.ByStatus[s])))
	}
	tbl.AddRow("", "")
	tbl.AddRow(bold.Sprint("Class"), bold.Sprint("Tiles"))
	for _, c := range sortedKeys(stats.ByClass) {
		tbl.AddRow(string(c), humanize.Comma(int64(stats.ByClass[c])))
	}
	tbl.RightAlign(1)
	fmt.Fprintln(w, tbl)

	layout := overlay.New(l.data, baseFrame(), l.sources)
	layout.SetOverlays(overlay.Power)
	if p, ok := layout.Power(); ok && len(p.Deployed)+len(p.Reserved) > 0 {
		deployed, reserved, unknown := p.Totals()
		fmt.Fprintln(w)
		tbl = uitable.New()
		tbl.Separator = "  "
		tbl.AddRow(bold.Sprint("Power"), "")
		tbl.AddRow("deployed", humanize.SIWithDigits(deployed, 1, "W"))
		tbl.AddRow("reserved", humanize.SIWithDigits(reserved, 1, "W"))
		if unknown > 0 {
			tbl.AddRow("unknown", color.YellowString("%d tiles", unknown))
		}
		fmt.Fprintln(w, tbl)
	}

	if l.sources.Reservations == nil {
		return
	}
	groups := l.sources.Reservations.OrderGroups(l.data)
	if len(groups) == 0 {
		return
	}
	fmt.Fprintln(w)
	tbl = uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Group"), bold.Sprint("Order"), bold.Sprint("Type"), bold.Sprint("Spans"), bold.Sprint("Tiles"))
	for _, g := range groups {
		tiles := 0
		for _, s := range g.Spans {
			tiles += s.Len()
		}
		tbl.AddRow(g.GroupID, g.OrderID, string(g.Type), len(g.Spans), tiles)
	}
	fmt.Fprintln(w, tbl)
}

func statusColor(s tilespace.Status) *color.Color {
	switch s {
	case tilespace.StatusAvailable:
		return color.New(color.FgGreen)
	case tilespace.StatusReserved:
		return color.New(color.FgYellow)
	case tilespace.StatusError:
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
