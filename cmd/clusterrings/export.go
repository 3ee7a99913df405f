package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaPhanBaoMinh/clusterrings/internal/export"
	"github.com/HaPhanBaoMinh/clusterrings/internal/infrastructure"
	"github.com/HaPhanBaoMinh/clusterrings/internal/layout"
)

var exportCmd = &cobra.Command{
	Use:   "export svg|json|prom|snapshot",
	Short: "Render the chart without the TUI",
	Long: `export loads one snapshot and writes it out:

  svg       standalone SVG chart with hover styling and tooltips
  json      arc layout, summary and date as JSON
  prom      node_exporter textfile (requires --output)
  snapshot  the snapshot itself in stats file form`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"svg", "json", "prom", "snapshot"},
	RunE:      runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	closer, err := setupLogging(cfg.Log, false)
	if err != nil {
		return err
	}
	defer closer.Close()

	format := args[0]
	out, _ := cmd.Flags().GetString("output")
	if format == "prom" && out == "" {
		return fmt.Errorf("export prom: --output is required")
	}

	ctx := cmd.Context()
	src, err := infrastructure.New(ctx, cfg.Source)
	if err != nil {
		return err
	}
	snap, err := src.Load(ctx)
	if err != nil {
		return err
	}
	chart := layout.Build(snap, cfg)
	log.WithFields(log.Fields{"source": src.Name(), "format": format, "arcs": len(chart.Arcs)}).Info("exporting")

	if format == "prom" {
		return export.Prometheus(out, snap, chart)
	}

	var w io.Writer = cmd.OutOrStdout()
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "svg":
		return export.SVG(w, chart, cfg)
	case "json":
		return export.JSON(w, chart)
	case "snapshot":
		return export.Snapshot(w, snap)
	}
	return fmt.Errorf("export: unknown format %q", format)
}
