package storage

import (
	"context"
	"errors"

	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
)

var ErrNotFound = errors.New("block not found")

// Store is the node-local block store the request pipelines operate
// against. Implementations are safe for concurrent use.
type Store interface {
	Put(ctx context.Context, b blocks.Block) error
	Get(ctx context.Context, c cid.Cid) (blocks.Block, error)
	Remove(ctx context.Context, c cid.Cid) error
	Has(ctx context.Context, c cid.Cid) (bool, error)

	// Stats returns the number of stored blocks and the total bytes occupied by them.
	Stats(ctx context.Context) (blocks int, bytes int64, err error)
}

// Exchange fetches blocks that are not available locally. The network
// protocol behind it lives outside this layer.
type Exchange interface {
	FetchBlock(ctx context.Context, c cid.Cid) ([]byte, error)
}
