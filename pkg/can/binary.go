package can

import (
	"context"
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
	ecan "go.einride.tech/can"
	"golang.org/x/sync/errgroup"
)

// Binary capture layout: 512-byte blocks, each a 4-byte header followed by
// 19 records of 25 bytes. The last 4 bytes of a block are unused.
const (
	BlockSize       = 512
	RecordSize      = 25
	RecordsPerBlock = 19
	blockHeaderSize = 4
)

// Record field offsets.
const (
	recChannel = 0
	recSeconds = 1
	recID      = 9
	recMicros  = 13
	recPayload = 17

	// The top byte of the microseconds word overlaps the DLC and is ignored.
	microsMask = 0x00FFFFFF
)

// DecodeRecord decodes one 25-byte capture record.
func DecodeRecord(rec []byte) Frame {
	_ = rec[RecordSize-1]

	var (
		seconds = binary.LittleEndian.Uint32(rec[recSeconds : recSeconds+4])
		micros  = binary.LittleEndian.Uint32(rec[recMicros:recMicros+4]) & microsMask
		id      = binary.LittleEndian.Uint32(rec[recID : recID+4])
		data    ecan.Data
	)
	copy(data[:], rec[recPayload:recPayload+PayloadLength])

	ts := float64(seconds) + float64(micros)*0.000001
	return NewFrame(ts, rec[recChannel], id, data)
}

// DecodeBlock decodes the records of one block. A block shorter than
// BlockSize yields only the records it fully contains.
func DecodeBlock(block []byte) []Frame {
	frames := make([]Frame, 0, RecordsPerBlock)
	for k := 0; k < RecordsPerBlock; k++ {
		start := blockHeaderSize + k*RecordSize
		end := start + RecordSize
		if end > len(block) {
			break
		}
		frames = append(frames, DecodeRecord(block[start:end]))
	}
	return frames
}

// BinaryReader streams frames out of a binary capture, one block at a time.
type BinaryReader struct {
	r       io.Reader
	block   [BlockSize]byte
	pending []Frame
	blocks  uint64
	eof     bool
}

// NewBinaryReader creates a new binary capture reader
func NewBinaryReader(r io.Reader) *BinaryReader {
	return &BinaryReader{r: r}
}

// ReadFrame returns the next frame in block-then-record order, or io.EOF.
func (r *BinaryReader) ReadFrame() (*Frame, error) {
	for len(r.pending) == 0 {
		if r.eof {
			return nil, io.EOF
		}
		if err := r.readBlock(); err != nil {
			return nil, err
		}
	}

	f := r.pending[0]
	r.pending = r.pending[1:]
	return &f, nil
}

func (r *BinaryReader) readBlock() error {
	n, err := io.ReadFull(r.r, r.block[:])
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		r.eof = true
	default:
		return errors.Wrapf(err, "read block %d", r.blocks)
	}
	if n > 0 {
		r.blocks++
		r.pending = DecodeBlock(r.block[:n])
	}
	return nil
}

// BlockCount returns the number of blocks read so far.
func (r *BinaryReader) BlockCount() uint64 {
	return r.blocks
}

// DecodeBlocks decodes a whole capture held in memory using up to workers
// goroutines. Frames are returned in the same order BinaryReader yields them.
func DecodeBlocks(ctx context.Context, data []byte, workers int) ([]Frame, error) {
	if workers < 1 {
		workers = 1
	}

	nBlocks := (len(data) + BlockSize - 1) / BlockSize
	results := make([][]Frame, nBlocks)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < nBlocks; i++ {
		start := i * BlockSize
		end := min(start+BlockSize, len(data))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = DecodeBlock(data[start:end])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "decode blocks")
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	frames := make([]Frame, 0, total)
	for _, r := range results {
		frames = append(frames, r...)
	}
	return frames, nil
}
