package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"timeframe-chart/internal/aggregation"
	"timeframe-chart/internal/config"
	"timeframe-chart/internal/export"
	"timeframe-chart/internal/render"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the chart and save it as an image",
		Long: `Export renders the aggregated series as a line chart and writes it to
<out>/chart.<format>. An empty series has no chart and exports nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.granularity()
			if err != nil {
				return err
			}
			format, err := export.ParseFormat(a.v.GetString("export.format"))
			if err != nil {
				return err
			}

			width, height := a.v.GetInt("export.width"), a.v.GetInt("export.height")
			if err := config.ValidateChartSize(width, height); err != nil {
				return err
			}

			input, err := a.readInput(cmd)
			if err != nil {
				return err
			}

			renderer := render.Renderer{
				Width:  width,
				Height: height,
				Title:  a.v.GetString("export.title"),
			}
			surface, err := renderer.Render(aggregation.Aggregate(input, g))
			if err != nil && !errors.Is(err, render.ErrNoSurface) {
				return err
			}

			res, err := export.Export(surface, format, export.Options{Scale: a.v.GetFloat64("export.scale")})
			if errors.Is(err, export.ErrNoSurface) {
				a.logger.Println("No chart to export")
				return nil
			}
			if err != nil {
				return err
			}

			path, err := export.Save(a.v.GetString("export.out"), res)
			if err != nil {
				return err
			}

			a.logger.Printf("Exported %dx%d %s", res.Width, res.Height, format)
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringP("format", "f", "png", "image format (png, jpg)")
	flags.String("out", ".", "output directory")
	flags.Float64("scale", 1, "resampling factor")
	flags.Int("width", render.DefaultWidth, "chart width in pixels")
	flags.Int("height", render.DefaultHeight, "chart height in pixels")
	flags.String("title", "", "chart title")

	for _, name := range []string{"format", "out", "scale", "width", "height", "title"} {
		_ = a.v.BindPFlag("export."+name, flags.Lookup(name))
	}

	return cmd
}
