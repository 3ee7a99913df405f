package export

import (
	"io"

	"github.com/HaPhanBaoMinh/clusterrings/internal/domain"
)

// Snapshot re-encodes snap in the stats file shape, so mock or cluster data
// can be captured and replayed through the file source.
func Snapshot(w io.Writer, snap *domain.ClusterSnapshot) error {
	return domain.EncodeSnapshot(w, snap)
}
