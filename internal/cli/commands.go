// Package cli implements the colomap command line: SVG rendering, colo
// summaries, tile lookups and an interactive terminal map.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nerrad567/colo-planner-core/internal/tilespace"
)

// New returns the colomap root command.
func New() *cobra.Command {
	so := &SourceOptions{}
	var noColor bool

	cmd := &cobra.Command{
		Use:   "colomap",
		Short: "Render, inspect and explore colo tile maps.",
		Long: `colomap works on a colo snapshot file, or with --db on a colo ID stored in
the planner database. Reservation, rack and SKU files feed the overlays.`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if noColor {
				color.NoColor = true
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&so.DB, "db", "", "planner database; colo arguments are then colo IDs")
	flags.StringVar(&so.Reservations, "reservations", "", "group reservations JSON file")
	flags.StringVar(&so.Racks, "racks", "", "racks JSON file")
	flags.StringVar(&so.SKUs, "skus", "", "SKU power ratings JSON file")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")

	addRender(cmd, so)
	addInspect(cmd, so)
	addTiles(cmd, so)
	addView(cmd, so)
	return cmd
}

// baseFrame is the tile size and margin every command renders with.
func baseFrame() tilespace.GridFrame {
	return tilespace.DefaultFrame("", 0, 0, 0)
}
