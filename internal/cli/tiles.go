package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/nerrad567/colo-planner-core/internal/colo"
	"github.com/nerrad567/colo-planner-core/internal/tilespace"
)

func addTiles(topLevel *cobra.Command, so *SourceOptions) {
	cmd := &cobra.Command{
		Use:   "tiles <snapshot.json | colo-id> <tile>...",
		Short: "Show the placement of tiles by name",
		Example: `
colomap tiles colo-201.json AE01 AF01
`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := so.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			frame := l.data.Frame(baseFrame())

			byName := make(map[string]tilespace.Tile)
			names := make([]string, 0, len(l.data.Tiles()))
			for _, t := range l.data.Tiles() {
				byName[strings.ToUpper(t.Name)] = t
				names = append(names, t.Name)
			}

			bold := color.New(color.Bold)
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(bold.Sprint("Tile"), bold.Sprint("Id"), bold.Sprint("Class"), bold.Sprint("Status"),
				bold.Sprint("Direction"), bold.Sprint("Rect"))

			missing := 0
			for _, name := range args[1:] {
				t, ok := byName[strings.ToUpper(name)]
				if !ok {
					missing++
					msg := fmt.Sprintf("unknown tile %q", name)
					if s := colo.Closest(name, names, suggestionLimit); len(s) > 0 {
						msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(s, ", "))
					}
					fmt.Fprintln(cmd.ErrOrStderr(), color.RedString(msg))
					continue
				}
				r := tilespace.TileToRect(t, frame).Rect
				tbl.AddRow(t.Name, t.ID, string(t.Class), statusColor(t.Status).Sprint(t.Status), string(t.AssocDirection),
					fmt.Sprintf("%s,%s %sx%s", tilespace.FormatNumber(r.X), tilespace.FormatNumber(r.Y),
						tilespace.FormatNumber(r.Width), tilespace.FormatNumber(r.Height)))
			}
			if missing < len(args)-1 {
				fmt.Fprintln(cmd.OutOrStdout(), tbl)
			}
			if missing > 0 {
				return fmt.Errorf("%d of %d tiles not found", missing, len(args)-1)
			}
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}
