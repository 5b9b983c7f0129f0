package block

import (
	"errors"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
)

var (
	ErrUnknownCodec      = errors.New("unknown codec")
	ErrUnknownHash       = errors.New("unknown hash")
	ErrInvalidCidVersion = errors.New("invalid cid version")
)

// Options carries the raw addressing choices of a put request, exactly as
// supplied in the query string. Empty fields mean "use the default".
type Options struct {
	Format  string
	MhType  string
	Version string
}

// Codec maps the "format" option onto a cid codec tag. The mapping is a
// closed set; anything outside it is a validation error.
func (o Options) Codec() (uint64, error) {
	switch o.Format {
	case "", "dag-pb":
		return cid.DagProtobuf, nil
	case "dag-cbor":
		return cid.DagCBOR, nil
	case "dag-json":
		return cid.DagJSON, nil
	case "raw":
		return cid.Raw, nil
	default:
		return 0, ErrUnknownCodec
	}
}

// Digest maps the "mhtype" option onto a multihash code.
func (o Options) Digest() (uint64, error) {
	switch o.MhType {
	case "", "sha2-256":
		return mh.SHA2_256, nil
	case "sha2-512":
		return mh.SHA2_512, nil
	default:
		return 0, ErrUnknownHash
	}
}

// CidVersion maps the "version" option onto a cid version number.
func (o Options) CidVersion() (uint64, error) {
	switch o.Version {
	case "", "0":
		return 0, nil
	case "1":
		return 1, nil
	default:
		return 0, ErrInvalidCidVersion
	}
}

// Prefix is the fully resolved addressing triple.
type Prefix struct {
	Version uint64
	Codec   uint64
	MhType  uint64
}

// Resolve validates all three choices up front, before any request body
// byte is consumed. A malformed request must never trigger body ingestion.
func (o Options) Resolve() (Prefix, error) {
	codec, err := o.Codec()
	if err != nil {
		return Prefix{}, err
	}
	digest, err := o.Digest()
	if err != nil {
		return Prefix{}, err
	}
	version, err := o.CidVersion()
	if err != nil {
		return Prefix{}, err
	}
	return Prefix{Version: version, Codec: codec, MhType: digest}, nil
}
