package service

import (
	"context"
	"io"

	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"

	"github.com/quartzite/blockgate/configuration"
	"github.com/quartzite/blockgate/internal/exchange"
	"github.com/quartzite/blockgate/internal/storage"
)

// Service owns the node's block store and exposes the operations the API
// surface is built from. All per-request state lives with the request;
// the store handle itself is the only shared resource.
type Service struct {
	store storage.Store
	conf  *configuration.UserConfig
}

// WithStore overrides the store built from the config. Used by tests to
// inject instrumented stores.
func WithStore(st storage.Store) func(*Service) {
	return func(s *Service) { s.store = st }
}

func New(conf *configuration.UserConfig, options ...func(*Service)) (*Service, error) {
	s := &Service{conf: conf}
	for _, o := range options {
		o(s)
	}
	if s.store == nil {
		ex := exchange.NewOffline()
		if conf.InMemory {
			s.store = storage.NewMemStore(storage.WithExchange(ex))
		} else {
			st, err := storage.NewDiskStore(conf.BlockstorePath, storage.DiskWithExchange(ex))
			if err != nil {
				return nil, err
			}
			s.store = st
		}
	}
	return s, nil
}

func (s *Service) Get(ctx context.Context, c cid.Cid) (blocks.Block, error) {
	return s.store.Get(ctx, c)
}

func (s *Service) Put(ctx context.Context, b blocks.Block) error {
	return s.store.Put(ctx, b)
}

func (s *Service) Remove(ctx context.Context, c cid.Cid) error {
	return s.store.Remove(ctx, c)
}

func (s *Service) Has(ctx context.Context, c cid.Cid) (bool, error) {
	return s.store.Has(ctx, c)
}

func (s *Service) Stats(ctx context.Context) (int, int64, error) {
	return s.store.Stats(ctx)
}

func (s *Service) Close() error {
	if c, ok := s.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
