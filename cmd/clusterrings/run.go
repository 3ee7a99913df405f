package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaPhanBaoMinh/clusterrings/help"
	"github.com/HaPhanBaoMinh/clusterrings/internal/app"
	"github.com/HaPhanBaoMinh/clusterrings/internal/config"
	"github.com/HaPhanBaoMinh/clusterrings/internal/domain"
	"github.com/HaPhanBaoMinh/clusterrings/internal/infrastructure"
)

// setupLogging configures the standard logrus logger. The alternate screen
// owns the terminal, so the TUI logs only to a file.
func setupLogging(c config.Log, tui bool) (io.Closer, error) {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)
	if c.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	switch {
	case c.File != "":
		f, err := os.OpenFile(help.ExpandHome(c.File), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		log.SetOutput(f)
		return f, nil
	case tui:
		log.SetOutput(io.Discard)
	default:
		log.SetOutput(os.Stderr)
	}
	return nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func runTUI(cmd *cobra.Command, args []string) error {
	closer, err := setupLogging(cfg.Log, true)
	if err != nil {
		return err
	}
	defer closer.Close()
	log.WithField("version", version).Info("starting clusterrings")

	ctx := cmd.Context()
	src, err := infrastructure.New(ctx, cfg.Source)
	if err != nil {
		return err
	}
	open := func(path string) domain.SnapshotSource {
		s, err := infrastructure.Open(ctx, cfg.Source, path)
		if err != nil {
			return failedSource{name: path, err: err}
		}
		return s
	}

	m := app.New(cfg, src, open)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		return err
	}
	return nil
}

// failedSource reports a source construction error on every load, so the
// TUI shows it like any other load failure.
type failedSource struct {
	name string
	err  error
}

func (f failedSource) Name() string { return f.name }

func (f failedSource) Load(context.Context) (*domain.ClusterSnapshot, error) { return nil, f.err }
