package storage

import (
	"context"
	"errors"
	"sync"

	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"

	"github.com/quartzite/blockgate/internal/block"
)

type MemStore struct {
	mu       sync.RWMutex
	store    map[cid.Cid][]byte
	exchange Exchange
}

func WithExchange(ex Exchange) func(*MemStore) {
	return func(s *MemStore) {
		s.exchange = ex
	}
}

func NewMemStore(options ...func(*MemStore)) *MemStore {
	m := &MemStore{
		store: make(map[cid.Cid][]byte),
	}
	for _, o := range options {
		o(m)
	}

	return m
}

func (s *MemStore) Put(ctx context.Context, b blocks.Block) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b == nil {
		return errors.New("nil block")
	}

	raw := b.RawData()
	cpy := make([]byte, len(raw))
	copy(cpy, raw)
	s.mu.Lock()
	s.store[b.Cid()] = cpy
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Get(ctx context.Context, c cid.Cid) (blocks.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	raw, ok := s.store[c]
	s.mu.RUnlock()
	if ok {
		cpy := make([]byte, len(raw))
		copy(cpy, raw)
		return blocks.NewBlockWithCid(cpy, c)
	}

	if s.exchange == nil {
		return nil, ErrNotFound
	}
	fetched, err := s.exchange.FetchBlock(ctx, c)
	if err != nil || len(fetched) == 0 {
		return nil, ErrNotFound
	}
	if !block.Verify(c, fetched) {
		return nil, errors.New("fetched bytes digest mismatch")
	}
	cached := make([]byte, len(fetched))
	copy(cached, fetched)
	s.mu.Lock()
	s.store[c] = cached
	s.mu.Unlock()
	return blocks.NewBlockWithCid(fetched, c)
}

func (s *MemStore) Remove(ctx context.Context, c cid.Cid) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store[c]; !ok {
		return ErrNotFound
	}
	delete(s.store, c)
	return nil
}

func (s *MemStore) Has(ctx context.Context, c cid.Cid) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	_, ok := s.store[c]
	s.mu.RUnlock()
	return ok, nil
}

func (s *MemStore) Stats(ctx context.Context) (int, int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var bytes int64
	for _, raw := range s.store {
		bytes += int64(len(raw))
	}
	return len(s.store), bytes, nil
}
