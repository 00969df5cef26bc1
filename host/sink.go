package host

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/eth2030/lightcheck/light"
	"github.com/eth2030/lightcheck/params"
)

// ResultSink receives the verdict of a run. Exactly one of Accept or Reject
// is called per run.
type ResultSink interface {
	Accept() error
	Reject(reason error) error
}

// MarkerSink writes the 64-byte success marker (the validators root twice)
// on acceptance and nothing on rejection.
type MarkerSink struct {
	w    io.Writer
	root light.Root
}

// NewMarkerSink returns a sink writing the marker for root to w.
func NewMarkerSink(w io.Writer, root light.Root) *MarkerSink {
	return &MarkerSink{w: w, root: root}
}

// Accept writes the marker.
func (s *MarkerSink) Accept() error {
	var marker [2 * params.RootSize]byte
	copy(marker[:params.RootSize], s.root[:])
	copy(marker[params.RootSize:], s.root[:])
	if _, err := s.w.Write(marker[:]); err != nil {
		return errors.Wrap(err, "host: write marker")
	}
	return nil
}

// Reject writes nothing.
func (s *MarkerSink) Reject(error) error { return nil }

// Verdict words written by WordSink.
var (
	AcceptWord = [32]byte(bytes.Repeat([]byte{0xff}, 32))
	RejectWord = [32]byte{}
)

// WordSink writes a single 32-byte word: all 0xff on acceptance, all zero on
// rejection.
type WordSink struct {
	w io.Writer
}

// NewWordSink returns a sink writing verdict words to w.
func NewWordSink(w io.Writer) *WordSink {
	return &WordSink{w: w}
}

// Accept writes AcceptWord.
func (s *WordSink) Accept() error { return s.write(AcceptWord) }

// Reject writes RejectWord.
func (s *WordSink) Reject(error) error { return s.write(RejectWord) }

func (s *WordSink) write(word [32]byte) error {
	if _, err := s.w.Write(word[:]); err != nil {
		return errors.Wrap(err, "host: write verdict")
	}
	return nil
}
