package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/HaPhanBaoMinh/clusterrings/internal/config"
)

var version = "dev"

// settings shared by every command, filled in by PersistentPreRunE
var (
	v   *viper.Viper
	cfg config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clusterrings [stats-file]",
	Short: "Three-ring view of cluster CPU, memory and disk usage",
	Long: `clusterrings lays out a cluster snapshot as three concentric rings
(resource, node, VM) and shows it in an interactive terminal chart.

Examples:
  clusterrings proxmox_stats.json
  clusterrings --url https://stats.lan/proxmox_stats.json
  clusterrings --s3 s3://bucket/proxmox_stats.json
  clusterrings --kubernetes --context prod
  CLUSTERRINGS_SOURCE_MOCK=true clusterrings`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: setup,
	RunE:              runTUI,
	SilenceUsage:      true,
}

var flagKeys = map[string]string{
	"file":          "source.file",
	"url":           "source.url",
	"timeout":       "source.timeout",
	"s3":            "source.s3.uri",
	"s3-region":     "source.s3.region",
	"s3-endpoint":   "source.s3.endpoint",
	"s3-path-style": "source.s3.path_style",
	"kubernetes":    "source.kubernetes.enabled",
	"kubeconfig":    "source.kubernetes.kubeconfig",
	"context":       "source.kubernetes.context",
	"usage":         "source.kubernetes.usage",
	"mock":          "source.mock",
	"log-level":     "log.level",
	"log-json":      "log.json",
	"log-file":      "log.file",
	"width":         "chart.width",
	"height":        "chart.height",
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("config", "", "config file (default ./clusterrings.yaml or ~/.config/clusterrings/clusterrings.yaml)")
	f.StringP("file", "f", "", "local stats file")
	f.String("url", "", "HTTP(S) URL of a stats document")
	f.Duration("timeout", 0, "timeout for remote sources")
	f.String("s3", "", "s3://bucket/key of a stats document")
	f.String("s3-region", "", "AWS region")
	f.String("s3-endpoint", "", "S3-compatible endpoint URL")
	f.Bool("s3-path-style", false, "use path-style S3 addressing")
	f.Bool("kubernetes", false, "read the snapshot from a Kubernetes cluster")
	f.String("kubeconfig", "", "path to kubeconfig")
	f.String("context", "", "kube context")
	f.String("usage", "", "kubernetes usage: requests or metrics")
	f.Bool("mock", false, "use a random mock cluster")
	f.String("log-level", "", "log level")
	f.Bool("log-json", false, "log as JSON")
	f.String("log-file", "", "log file (the TUI discards logs without one)")
	f.Float64("width", 0, "chart width")
	f.Float64("height", 0, "chart height")

	rootCmd.AddCommand(exportCmd, configCmd, versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	v = config.NewViper(path)
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("bind %s: %w", flag, err)
		}
	}
	if len(args) == 1 && v.GetString("source.file") == "" {
		v.Set("source.file", args[0])
	}
	var err error
	cfg, err = config.Load(v)
	return err
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.Dump(cmd.OutOrStdout(), cfg)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "clusterrings version %s\n", version)
	},
}
