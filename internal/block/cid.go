package block

import (
	"fmt"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
)

// BuildCid digests data with the resolved hash function and assembles a
// content identifier from the prefix. Deterministic: the same bytes with
// the same prefix always produce the same identifier.
//
// Version 0 identifiers only exist for dag-pb content hashed with
// sha2-256. go-cid's NewCidV0 does not check the codec, so the invariant
// is enforced here as a construction error instead of a silent rewrite.
func BuildCid(p Prefix, data []byte) (cid.Cid, error) {
	sum, err := mh.Sum(data, p.MhType, -1)
	if err != nil {
		return cid.Undef, fmt.Errorf("digest: %w", err)
	}
	switch p.Version {
	case 0:
		if p.Codec != cid.DagProtobuf {
			return cid.Undef, fmt.Errorf("%w: v0 requires dag-pb", ErrInvalidCidVersion)
		}
		if p.MhType != mh.SHA2_256 {
			return cid.Undef, fmt.Errorf("%w: v0 requires sha2-256", ErrInvalidCidVersion)
		}
		return cid.NewCidV0(sum), nil
	case 1:
		return cid.NewCidV1(p.Codec, sum), nil
	default:
		return cid.Undef, ErrInvalidCidVersion
	}
}

// Verify recomputes the digest of data under c's own prefix and reports
// whether it matches. Used to validate bytes that arrive from disk or
// from an exchange before they are trusted.
func Verify(c cid.Cid, data []byte) bool {
	sum, err := c.Prefix().Sum(data)
	if err != nil {
		return false
	}
	return sum.Equals(c)
}
