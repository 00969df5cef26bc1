// Package host connects the verifier to its environment: a content-addressed
// store the two updates are fetched from and a sink the verdict is written to.
package host

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/eth2030/lightcheck/crypto"
)

var (
	// ErrPreimageNotFound is returned when no blob is stored under a hash.
	ErrPreimageNotFound = errors.New("host: preimage not found")
	// ErrPreimageCorrupt is returned when a stored blob does not hash to the
	// key it was stored under.
	ErrPreimageCorrupt = errors.New("host: preimage does not match its hash")
)

// PreimageStore resolves a keccak-256 content hash to the blob it commits to.
type PreimageStore interface {
	Preimage(hash common.Hash) ([]byte, error)
}

// DirStore is a PreimageStore backed by a flat directory. Each blob lives in
// a file named after its hash in 0x-prefixed lowercase hex. Files named by
// the bare hex digits, as older caches wrote them, are read as well.
//
// Layout:
//
//	<dir>/
//	  0x<keccak256(blob)>   - blob contents
//	  <keccak256(blob)>     - blob contents (read only)
type DirStore struct {
	dir string
}

// NewDirStore returns a store rooted at dir. The directory need not exist
// until the first Put.
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

// Dir returns the cache directory.
func (s *DirStore) Dir() string { return s.dir }

func (s *DirStore) path(hash common.Hash) string {
	return filepath.Join(s.dir, hash.Hex())
}

func (s *DirStore) barePath(hash common.Hash) string {
	return filepath.Join(s.dir, hash.Hex()[2:])
}

// read returns the contents of the file stored for hash, preferring the
// prefixed name.
func (s *DirStore) read(hash common.Hash) ([]byte, error) {
	blob, err := os.ReadFile(s.path(hash))
	if os.IsNotExist(err) {
		return os.ReadFile(s.barePath(hash))
	}
	return blob, err
}

// Preimage reads the blob stored under hash and checks that it hashes back
// to hash.
func (s *DirStore) Preimage(hash common.Hash) ([]byte, error) {
	blob, err := s.read(hash)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrPreimageNotFound, "%s in %s", hash.Hex(), s.dir)
		}
		return nil, errors.Wrap(err, "host: read preimage")
	}
	if got := crypto.Keccak256Hash(blob); got != hash {
		return nil, errors.Wrapf(ErrPreimageCorrupt, "file %s hashes to %s", hash.Hex(), got.Hex())
	}
	return blob, nil
}

// Has reports whether a file exists for hash. Its contents are not checked.
func (s *DirStore) Has(hash common.Hash) bool {
	if _, err := os.Stat(s.path(hash)); err == nil {
		return true
	}
	_, err := os.Stat(s.barePath(hash))
	return err == nil
}

// Put stores blob under its keccak-256 hash and returns the hash. The file is
// written to a temporary name first and renamed into place. Storing a blob
// that is already present is a no-op.
func (s *DirStore) Put(blob []byte) (common.Hash, error) {
	hash := crypto.Keccak256Hash(blob)
	if s.Has(hash) {
		return hash, nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return common.Hash{}, errors.Wrap(err, "host: create cache dir")
	}
	path := s.path(hash)
	tmp, err := os.CreateTemp(s.dir, ".put-*.tmp")
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "host: create temp file")
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return common.Hash{}, errors.Wrap(err, "host: write temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return common.Hash{}, errors.Wrap(err, "host: close temp file")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Best-effort cleanup.
		return common.Hash{}, errors.Wrap(err, "host: rename")
	}
	return hash, nil
}

// Hashes lists the hashes of all blobs in the directory, skipping files
// whose names are not hashes. A hash stored under both names is listed once.
func (s *DirStore) Hashes() ([]common.Hash, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "host: list cache dir")
	}
	var out []common.Hash
	seen := make(map[common.Hash]bool)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		h, err := ParseHash(e.Name())
		if err != nil || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out, nil
}

// ParseHash parses a 32-byte hash given as 64 hex digits, with or without a
// 0x prefix.
func ParseHash(s string) (common.Hash, error) {
	hex := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(hex) != 2*common.HashLength {
		return common.Hash{}, errors.Errorf("host: hash %q must have %d hex digits", s, 2*common.HashLength)
	}
	for _, c := range hex {
		if !isHexDigit(c) {
			return common.Hash{}, errors.Errorf("host: hash %q is not hex", s)
		}
	}
	return common.HexToHash(hex), nil
}

func isHexDigit(c rune) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// MemoryStore is an in-memory PreimageStore. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[common.Hash][]byte
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[common.Hash][]byte)}
}

// Put stores a copy of blob and returns its keccak-256 hash.
func (s *MemoryStore) Put(blob []byte) common.Hash {
	hash := crypto.Keccak256Hash(blob)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[hash] = common.CopyBytes(blob)
	return hash
}

// Preimage returns a copy of the blob stored under hash.
func (s *MemoryStore) Preimage(hash common.Hash) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[hash]
	if !ok {
		return nil, errors.Wrap(ErrPreimageNotFound, hash.Hex())
	}
	return common.CopyBytes(blob), nil
}
