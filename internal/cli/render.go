package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/nerrad567/colo-planner-core/internal/overlay"
)

func addRender(topLevel *cobra.Command, so *SourceOptions) {
	var (
		out      string
		overlays string
		zoom     float64
	)

	cmd := &cobra.Command{
		Use:   "render <snapshot.json | colo-id>",
		Short: "Render a colo layout as SVG",
		Example: `
colomap render colo-201.json -o ~/maps/201.svg
colomap render colo-201.json --overlays coldAisle,power --skus skus.json --racks racks.json
colomap render --db ./data/coloplanner.db 201 --overlays all > 201.svg
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := overlay.ParseFlags(overlays)
			if err != nil {
				return err
			}
			if zoom <= 0 {
				return fmt.Errorf("zoom must be positive, got %v", zoom)
			}
			l, err := so.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			layout := overlay.New(l.data, baseFrame(), l.sources)
			layout.SetZoom(zoom)
			layout.SetOverlays(flags)

			var buf bytes.Buffer
			if err := layout.WriteSVG(&buf); err != nil {
				return fmt.Errorf("rendering colo %s: %w", l.data.ColoID(), err)
			}

			if out == "" || out == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			path, err := homedir.Expand(out)
			if err != nil {
				return fmt.Errorf("expanding %s: %w", out, err)
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s)\n", path, humanize.Bytes(uint64(buf.Len())))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output file; stdout when empty or -")
	cmd.Flags().StringVar(&overlays, "overlays", "coldAisle,deviceTiles", "overlays to draw: names joined by commas, a mask, all or none")
	cmd.Flags().Float64Var(&zoom, "zoom", 1, "zoom level")

	topLevel.AddCommand(cmd)
}
