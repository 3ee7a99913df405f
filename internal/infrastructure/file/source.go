package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/HaPhanBaoMinh/clusterrings/internal/domain"
)

// Source reads a stats document from the local filesystem.
type Source struct {
	path     string
	fallback bool
}

// New reads path; a missing file is an error.
func New(path string) *Source { return &Source{path: path} }

// Default reads path, reporting domain.ErrNoData when it does not exist so
// the caller can ask for a file instead.
func Default(path string) *Source { return &Source{path: path, fallback: true} }

func (s *Source) Name() string { return "file:" + s.path }

func (s *Source) Load(ctx context.Context) (*domain.ClusterSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		if s.fallback && errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.path, domain.ErrNoData)
		}
		return nil, fmt.Errorf("reading file: %w", err)
	}
	defer f.Close()

	snap, err := domain.DecodeSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("processing %s: %w", s.path, err)
	}
	log.WithFields(log.Fields{"path": s.path, "nodes": len(snap.Nodes())}).Debug("snapshot read")
	return snap, nil
}
