// Package infrastructure picks the snapshot source a configuration asks for.
package infrastructure

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/HaPhanBaoMinh/clusterrings/help"
	"github.com/HaPhanBaoMinh/clusterrings/internal/config"
	"github.com/HaPhanBaoMinh/clusterrings/internal/domain"
	"github.com/HaPhanBaoMinh/clusterrings/internal/infrastructure/file"
	"github.com/HaPhanBaoMinh/clusterrings/internal/infrastructure/k8s"
	"github.com/HaPhanBaoMinh/clusterrings/internal/infrastructure/mock"
	"github.com/HaPhanBaoMinh/clusterrings/internal/infrastructure/remote"
	"github.com/HaPhanBaoMinh/clusterrings/internal/infrastructure/s3"
)

// New returns the first configured of mock, kubernetes, s3, url and file,
// falling back to config.DefaultFile in the working directory.
func New(ctx context.Context, cfg config.Source) (domain.SnapshotSource, error) {
	var (
		src domain.SnapshotSource
		err error
	)
	switch {
	case cfg.Mock:
		src = mock.New()
	case cfg.Kubernetes.Enabled:
		src, err = k8s.New(help.ExpandHome(cfg.Kubernetes.Kubeconfig), cfg.Kubernetes.Context, cfg.Kubernetes.Usage)
	case cfg.S3.URI != "":
		src, err = s3.New(ctx, cfg.S3)
	case cfg.URL != "":
		src, err = remote.New(cfg.URL, cfg.Timeout, remote.WithCacheBusting())
	case cfg.File != "":
		src = file.New(help.ExpandHome(cfg.File))
	default:
		src = file.Default(config.DefaultFile)
	}
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	log.WithField("source", src.Name()).Debug("source selected")
	return src, nil
}

// Open is the source for a path typed at runtime: a URL, an s3:// URI or a
// local file.
func Open(ctx context.Context, cfg config.Source, path string) (domain.SnapshotSource, error) {
	switch {
	case strings.HasPrefix(path, "s3://"):
		cfg.S3.URI = path
		return s3.New(ctx, cfg.S3)
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return remote.New(path, cfg.Timeout, remote.WithCacheBusting())
	}
	return file.New(help.ExpandHome(path)), nil
}
