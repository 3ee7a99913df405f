package domain

import (
	"context"
	"errors"
)

// ErrNoData is returned by a source when there is nothing to load, e.g. the
// default stats file does not exist.
var ErrNoData = errors.New("no data file found")

type SnapshotSource interface {
	Name() string
	Load(ctx context.Context) (*ClusterSnapshot, error)
}
