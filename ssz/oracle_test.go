package ssz

import (
	"encoding/binary"
	"math/rand"
	"testing"

	karalabe "github.com/karalabe/ssz"
	"github.com/stretchr/testify/require"
)

// headerShape is a five-field container with the layout of a beacon block
// header, hashed independently by karalabe/ssz.
type headerShape struct {
	Slot, Proposer uint64
	A, B, C        [32]byte
}

func (h *headerShape) DefineSSZ(codec *karalabe.Codec) {
	karalabe.DefineUint64(codec, &h.Slot)
	karalabe.DefineUint64(codec, &h.Proposer)
	karalabe.DefineStaticBytes(codec, &h.A)
	karalabe.DefineStaticBytes(codec, &h.B)
	karalabe.DefineStaticBytes(codec, &h.C)
}

func (h *headerShape) LeafChunks() ([][32]byte, error) {
	return [][32]byte{Uint64Chunk(h.Slot), Uint64Chunk(h.Proposer), h.A, h.B, h.C}, nil
}

// forkShape carries a 4-byte version as a little-endian uint32, which has the
// same leaf chunk.
type forkShape struct {
	Version uint32
	Root    [32]byte
}

func (f *forkShape) DefineSSZ(codec *karalabe.Codec) {
	karalabe.DefineUint32(codec, &f.Version)
	karalabe.DefineStaticBytes(codec, &f.Root)
}

type keyShape struct {
	Key [48]byte
	Sig [96]byte
}

func (k *keyShape) DefineSSZ(codec *karalabe.Codec) {
	karalabe.DefineStaticBytes(codec, &k.Key)
	karalabe.DefineStaticBytes(codec, &k.Sig)
}

func TestHashTreeRootMatchesKaralabe(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 32; i++ {
		h := &headerShape{Slot: rng.Uint64(), Proposer: rng.Uint64()}
		rng.Read(h.A[:])
		rng.Read(h.B[:])
		rng.Read(h.C[:])

		ours, err := HashTreeRoot(h)
		require.NoError(t, err)
		require.Equal(t, karalabe.HashSequential(h), ours)
	}
}

func TestFixedBytesRootsMatchKaralabe(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 16; i++ {
		f := &forkShape{Version: rng.Uint32()}
		rng.Read(f.Root[:])
		var version [4]byte
		binary.LittleEndian.PutUint32(version[:], f.Version)
		ours := Merkleize([][32]byte{Bytes4Chunk(version), f.Root}, 0)
		require.Equal(t, karalabe.HashSequential(f), ours)

		k := &keyShape{}
		rng.Read(k.Key[:])
		rng.Read(k.Sig[:])
		ours = Merkleize([][32]byte{Bytes48Root(k.Key), Bytes96Root(k.Sig)}, 0)
		require.Equal(t, karalabe.HashSequential(k), ours)
	}
}
