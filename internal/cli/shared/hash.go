package shared

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/zeebo/blake3"
)

const (
	DigestAlgorithmBLAKE3 = "blake3"
	DigestAlgorithmSHA256 = "sha256"
	DigestAlgorithmMD5    = "md5"
)

// Digest is an expected checksum in algorithm:hex form.
type Digest struct {
	Algorithm string
	Hex       string
}

func (d Digest) String() string {
	return d.Algorithm + ":" + d.Hex
}

// ParseDigest parses "algorithm:hex". An empty value yields the zero Digest.
// The hex must be a full sum of a supported algorithm.
func ParseDigest(value string) (Digest, error) {
	raw := strings.TrimSpace(strings.ToLower(value))
	if raw == "" {
		return Digest{}, nil
	}
	algorithm, digest, ok := strings.Cut(raw, ":")
	if !ok || strings.TrimSpace(algorithm) == "" || strings.TrimSpace(digest) == "" {
		return Digest{}, fmt.Errorf("invalid checksum format %q", value)
	}
	sum, err := hex.DecodeString(digest)
	if err != nil {
		return Digest{}, fmt.Errorf("invalid checksum hex %q", value)
	}
	h, err := NewHash(algorithm)
	if err != nil {
		return Digest{}, err
	}
	if len(sum) != h.Size() {
		return Digest{}, fmt.Errorf("%s checksum must be %d hex characters, got %d", algorithm, 2*h.Size(), len(digest))
	}
	return Digest{Algorithm: algorithm, Hex: digest}, nil
}

// IsZero reports whether no checksum is expected.
func (d Digest) IsZero() bool {
	return d.Algorithm == ""
}

// NewHash returns a streaming hash for algorithm.
func NewHash(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case DigestAlgorithmBLAKE3:
		return blake3.New(), nil
	case DigestAlgorithmSHA256:
		return sha256.New(), nil
	case DigestAlgorithmMD5:
		return md5.New(), nil
	default:
		return nil, fmt.Errorf("unsupported checksum algorithm %q", algorithm)
	}
}

// Verify compares the sum of h with d.
func (d Digest) Verify(h hash.Hash) error {
	if got := hex.EncodeToString(h.Sum(nil)); got != d.Hex {
		return fmt.Errorf("checksum mismatch: want %s, got %s:%s", d, d.Algorithm, got)
	}
	return nil
}

// VerifyFile hashes the file at path and compares it with d.
func (d Digest) VerifyFile(path string) error {
	if d.IsZero() {
		return nil
	}
	h, err := NewHash(d.Algorithm)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}
	return d.Verify(h)
}

// SHA256Hex returns lowercase hex encoded digest for content.
func SHA256Hex(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// BLAKE3Hex returns lowercase hex encoded digest for content.
func BLAKE3Hex(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}
