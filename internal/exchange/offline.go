package exchange

import (
	"context"

	"github.com/ipfs/go-cid"

	"github.com/quartzite/blockgate/internal/storage"
)

// Offline is the exchange used when the node runs without a network
// layer: every fetch misses. It keeps the store's fallback seam wired so
// a real exchange can be swapped in without touching the stores.
type Offline struct{}

func NewOffline() Offline { return Offline{} }

func (Offline) FetchBlock(ctx context.Context, _ cid.Cid) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, storage.ErrNotFound
}
