package types

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
)

// BlobID identifies scanned content by its Git blob hash, so results can be
// cross-referenced with `git hash-object`.
type BlobID [sha1.Size]byte

// ComputeBlobID hashes content the way Git does: SHA-1("blob {len}\0{content}").
func ComputeBlobID(content []byte) BlobID {
	h := sha1.New()
	h.Write([]byte("blob " + strconv.Itoa(len(content)) + "\x00"))
	h.Write(content)

	var id BlobID
	h.Sum(id[:0])
	return id
}

// Hex returns the 40-character lowercase hex form.
func (id BlobID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id BlobID) String() string {
	return id.Hex()
}

// IsZero reports whether id is unset.
func (id BlobID) IsZero() bool {
	return id == BlobID{}
}

// ParseBlobID parses the hex form produced by Hex.
func ParseBlobID(s string) (BlobID, error) {
	var id BlobID
	if len(s) != 2*len(id) {
		return BlobID{}, fmt.Errorf("invalid blob ID length: expected %d, got %d", 2*len(id), len(s))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return BlobID{}, fmt.Errorf("invalid hex string: %w", err)
	}
	return id, nil
}

// MarshalText implements encoding.TextMarshaler.
func (id BlobID) MarshalText() ([]byte, error) {
	return []byte(id.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *BlobID) UnmarshalText(text []byte) error {
	parsed, err := ParseBlobID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
