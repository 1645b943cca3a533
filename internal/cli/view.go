package cli

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/nerrad567/colo-planner-core/internal/overlay"
	"github.com/nerrad567/colo-planner-core/internal/termview"
)

// newScreen returns an initialised terminal screen.
var newScreen = func() (tcell.Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

func addView(topLevel *cobra.Command, so *SourceOptions) {
	var (
		overlays string
		zoomRate float64
	)

	cmd := &cobra.Command{
		Use:   "view <snapshot.json | colo-id>",
		Short: "Explore a colo map in the terminal",
		Long: `Draws the colo in the terminal. Drag with the right mouse button to
select tiles, or press s to arm selection for the left button.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := overlay.ParseFlags(overlays)
			if err != nil {
				return err
			}
			l, err := so.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			screen, err := newScreen()
			if err != nil {
				return fmt.Errorf("opening terminal: %w", err)
			}

			v := termview.New(screen, l.data, baseFrame(), termview.Options{
				Sources:  l.sources,
				Overlays: flags,
				ZoomRate: zoomRate,
			})
			if err := v.Run(cmd.Context()); err != nil {
				return err
			}
			if ids := v.Selected(); len(ids) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "selected tiles: %v\n", ids)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&overlays, "overlays", "none", "overlays the session renders")
	cmd.Flags().Float64Var(&zoomRate, "zoom-rate", 1.1, "zoom factor of one step")

	topLevel.AddCommand(cmd)
}
