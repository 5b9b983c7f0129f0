package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	mbase "github.com/multiformats/go-multibase"
	"github.com/syndtr/goleveldb/leveldb"
	lutil "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/quartzite/blockgate/internal/block"
)

// DiskStore keeps block payloads as sharded files under baseDir and an
// index of them in leveldb. Index values are canonical-CBOR meta records
// so the layout stays stable across encoder versions.
type DiskStore struct {
	db       *leveldb.DB
	baseDir  string
	exchange Exchange
}

type blockMeta struct {
	RelPath string `cbor:"rel"`
	Size    int64  `cbor:"size"`
}

var metaEnc cbor.EncMode

func init() {
	var err error
	metaEnc, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

func DiskWithExchange(ex Exchange) func(*DiskStore) {
	return func(s *DiskStore) { s.exchange = ex }
}

func NewDiskStore(baseDir string, options ...func(*DiskStore)) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	dbPath := filepath.Join(baseDir, "index")
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, err
	}
	s := &DiskStore{db: db, baseDir: baseDir}
	for _, o := range options {
		o(s)
	}
	return s, nil
}

func (s *DiskStore) Close() error { return s.db.Close() }

func blockKey(c cid.Cid) []byte {
	cidb := c.Bytes()
	b := make([]byte, 1+len(cidb))
	b[0] = 'b'
	copy(b[1:], cidb)
	return b
}

func (s *DiskStore) blockRelPath(c cid.Cid) (string, error) {
	enc, err := mbase.Encode(mbase.Base32, c.Bytes())
	if err != nil {
		return "", err
	}
	if len(enc) >= 5 {
		return filepath.Join("blocks", enc[1:3], enc[3:5], enc), nil
	}
	return filepath.Join("blocks", enc), nil
}

func (s *DiskStore) Put(ctx context.Context, b blocks.Block) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b == nil {
		return errors.New("nil block")
	}
	rel, err := s.blockRelPath(b.Cid())
	if err != nil {
		return err
	}
	abs := filepath.Join(s.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return err
	}

	// if the process crashes mid-write, only the temp file is affected
	tmp := abs + ".tmp"
	if err := os.WriteFile(tmp, b.RawData(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, abs); err != nil {
		return err
	}
	meta, err := metaEnc.Marshal(blockMeta{RelPath: rel, Size: int64(len(b.RawData()))})
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	return s.db.Put(blockKey(b.Cid()), meta, nil)
}

func (s *DiskStore) Get(ctx context.Context, c cid.Cid) (blocks.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if blk, err := s.getLocal(c); err == nil {
		return blk, nil
	}
	if s.exchange != nil {
		raw, err := s.exchange.FetchBlock(ctx, c)
		if err != nil || len(raw) == 0 {
			return nil, ErrNotFound
		}
		if !block.Verify(c, raw) {
			return nil, errors.New("fetched bytes digest mismatch")
		}
		blk, err := blocks.NewBlockWithCid(raw, c)
		if err != nil {
			return nil, err
		}
		_ = s.Put(ctx, blk)
		return blk, nil
	}
	return nil, ErrNotFound
}

func (s *DiskStore) getLocal(c cid.Cid) (blocks.Block, error) {
	meta, err := s.readMeta(c)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filepath.Join(s.baseDir, meta.RelPath))
	if err != nil {
		return nil, ErrNotFound
	}
	if !block.Verify(c, raw) {
		return nil, errors.New("stored bytes digest mismatch")
	}
	return blocks.NewBlockWithCid(raw, c)
}

func (s *DiskStore) readMeta(c cid.Cid) (blockMeta, error) {
	val, err := s.db.Get(blockKey(c), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return blockMeta{}, ErrNotFound
		}
		return blockMeta{}, err
	}
	var meta blockMeta
	if err := cbor.Unmarshal(val, &meta); err != nil {
		return blockMeta{}, fmt.Errorf("decode meta: %w", err)
	}
	return meta, nil
}

func (s *DiskStore) Remove(ctx context.Context, c cid.Cid) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	meta, err := s.readMeta(c)
	if err != nil {
		return err
	}
	_ = os.Remove(filepath.Join(s.baseDir, meta.RelPath))
	return s.db.Delete(blockKey(c), nil)
}

func (s *DiskStore) Has(ctx context.Context, c cid.Cid) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.db.Has(blockKey(c), nil)
}

func (s *DiskStore) Stats(ctx context.Context) (int, int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	it := s.db.NewIterator(lutil.BytesPrefix([]byte{'b'}), nil)
	defer it.Release()
	var count int
	var bytes int64
	for it.Next() {
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}
		var meta blockMeta
		if err := cbor.Unmarshal(it.Value(), &meta); err != nil {
			continue
		}
		count++
		bytes += meta.Size
	}
	if err := it.Error(); err != nil {
		return 0, 0, err
	}
	return count, bytes, nil
}
