package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ipfs/go-cid"
)

func newTestDiskStore(t *testing.T, options ...func(*DiskStore)) *DiskStore {
	t.Helper()
	s, err := NewDiskStore(t.TempDir(), options...)
	if err != nil {
		t.Fatalf("NewDiskStore error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDiskStorePutGetRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestDiskStore(t)
	b := testBlock(t, []byte("on disk"))

	if err := s.Put(ctx, b); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	got, err := s.Get(ctx, b.Cid())
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(got.RawData()) != "on disk" {
		t.Fatalf("payload mismatch: %q", got.RawData())
	}

	if err := s.Remove(ctx, b.Cid()); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if _, err := s.Get(ctx, b.Cid()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
	if err := s.Remove(ctx, b.Cid()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double remove, got %v", err)
	}
}

func TestDiskStorePutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestDiskStore(t)
	b := testBlock(t, []byte("twice"))

	if err := s.Put(ctx, b); err != nil {
		t.Fatalf("Put #1 error: %v", err)
	}
	if err := s.Put(ctx, b); err != nil {
		t.Fatalf("Put #2 error: %v", err)
	}
	n, _, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if n != 1 {
		t.Fatalf("duplicate put created %d index rows", n)
	}
}

func TestDiskStoreStats(t *testing.T) {
	ctx := context.Background()
	s := newTestDiskStore(t)
	for _, payload := range []string{"aa", "bbb"} {
		if err := s.Put(ctx, testBlock(t, []byte(payload))); err != nil {
			t.Fatalf("Put error: %v", err)
		}
	}
	n, bytes, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if n != 2 || bytes != 5 {
		t.Fatalf("Stats: got %d blocks %d bytes, want 2 blocks 5 bytes", n, bytes)
	}
}

func TestDiskStoreRejectsTamperedFile(t *testing.T) {
	ctx := context.Background()
	s := newTestDiskStore(t)
	b := testBlock(t, []byte("trust but verify"))
	if err := s.Put(ctx, b); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	rel, err := s.blockRelPath(b.Cid())
	if err != nil {
		t.Fatalf("blockRelPath error: %v", err)
	}
	abs := filepath.Join(s.baseDir, rel)
	if err := os.WriteFile(abs, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("tamper write error: %v", err)
	}

	_, err = s.Get(ctx, b.Cid())
	if err == nil {
		t.Fatalf("expected error for tampered bytes")
	}
	if !strings.Contains(err.Error(), "digest mismatch") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDiskStoreExchangeFallbackCaches(t *testing.T) {
	ctx := context.Background()
	b := testBlock(t, []byte("fetched"))
	ex := &fakeExchange{data: map[cid.Cid][]byte{b.Cid(): b.RawData()}}
	s := newTestDiskStore(t, DiskWithExchange(ex))

	got, err := s.Get(ctx, b.Cid())
	if err != nil {
		t.Fatalf("Get via exchange error: %v", err)
	}
	if string(got.RawData()) != "fetched" {
		t.Fatalf("payload mismatch: %q", got.RawData())
	}
	ok, err := s.Has(ctx, b.Cid())
	if err != nil || !ok {
		t.Fatalf("fetched block not indexed: %v, %v", ok, err)
	}
}

func TestDiskStoreExchangeRejectsMismatch(t *testing.T) {
	ctx := context.Background()
	b := testBlock(t, []byte("expected"))
	ex := &fakeExchange{data: map[cid.Cid][]byte{b.Cid(): []byte("tampered")}}
	s := newTestDiskStore(t, DiskWithExchange(ex))

	if _, err := s.Get(ctx, b.Cid()); err == nil || !strings.Contains(err.Error(), "digest mismatch") {
		t.Fatalf("expected digest mismatch error, got %v", err)
	}

	// mismatched bytes must not be cached either
	ok, err := s.Has(ctx, b.Cid())
	if err != nil {
		t.Fatalf("Has error: %v", err)
	}
	if ok {
		t.Fatalf("mismatched exchange bytes were indexed")
	}
}
