package mcap

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"
	"sync"

	"github.com/foxglove/mcap/go/mcap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/BIwashi/cangps/pkg/signal"
)

const (
	schemaName  = "google.protobuf.DoubleValue"
	topicPrefix = "/cangps/"
)

// Options configures the MCAP output.
type Options struct {
	// Compression is "zstd", "lz4" or "none".
	Compression string
	ChunkSize   int64
}

func (o Options) compression() (mcap.CompressionFormat, error) {
	switch o.Compression {
	case "", "zstd":
		return mcap.CompressionZSTD, nil
	case "lz4":
		return mcap.CompressionLZ4, nil
	case "none":
		return mcap.CompressionNone, nil
	}
	return "", fmt.Errorf("unsupported compression %q", o.Compression)
}

// Writer writes decoded signal samples into an MCAP file.
//
// Every signal gets its own channel on /cangps/<signal>, created on its first
// sample and sharing the google.protobuf.DoubleValue schema. Channel metadata
// carries the unit when there is one; log and publish time are both the
// sample timestamp.
type Writer struct {
	mu         sync.Mutex
	writer     *mcap.Writer
	schemaID   uint16
	nextChanID uint16
	channels   map[string]uint16
	sequences  map[uint16]uint32
}

// NewWriter writes the MCAP header and the DoubleValue schema to out.
// Closing out is left to the caller.
func NewWriter(out io.Writer, opts Options) (*Writer, error) {
	compression, err := opts.compression()
	if err != nil {
		return nil, err
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 2 * 1024 * 1024
	}

	w, err := mcap.NewWriter(out, &mcap.WriterOptions{
		Chunked:     true,
		ChunkSize:   chunkSize,
		Compression: compression,
	})
	if err != nil {
		return nil, fmt.Errorf("create MCAP writer: %w", err)
	}

	if err := w.WriteHeader(&mcap.Header{
		Profile: "",
		Library: "cangps",
	}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	fds := &descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{
			protodesc.ToFileDescriptorProto(wrapperspb.File_google_protobuf_wrappers_proto),
		},
	}
	data, err := proto.Marshal(fds)
	if err != nil {
		return nil, fmt.Errorf("marshal schema descriptor: %w", err)
	}

	schemaID := uint16(1)
	if err := w.WriteSchema(&mcap.Schema{
		ID:       schemaID,
		Name:     schemaName,
		Encoding: "protobuf",
		Data:     data,
	}); err != nil {
		return nil, fmt.Errorf("write schema: %w", err)
	}

	return &Writer{
		writer:    w,
		schemaID:  schemaID,
		channels:  make(map[string]uint16),
		sequences: make(map[uint16]uint32),
	}, nil
}

// Topic returns the MCAP topic of a signal.
func Topic(name string) string {
	return topicPrefix + name
}

func (w *Writer) ensureChannel(name, unit string) (uint16, error) {
	if id, ok := w.channels[name]; ok {
		return id, nil
	}

	w.nextChanID++
	chID := w.nextChanID

	metadata := map[string]string{"signal": name}
	if unit != "" {
		metadata["unit"] = unit
	}

	if err := w.writer.WriteChannel(&mcap.Channel{
		ID:              chID,
		SchemaID:        w.schemaID,
		Topic:           Topic(name),
		MessageEncoding: "protobuf",
		Metadata:        metadata,
	}); err != nil {
		return 0, fmt.Errorf("write channel (topic=%s): %w", Topic(name), err)
	}

	w.channels[name] = chID
	return chID, nil
}

// toNanos converts sample seconds to MCAP time. Negative times map to 0.
func toNanos(ts float64) uint64 {
	if ts <= 0 || math.IsNaN(ts) {
		return 0
	}
	return uint64(math.Round(ts * 1e9))
}

// WriteSample writes one sample of a signal.
func (w *Writer) WriteSample(name, unit string, ts, value float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	channelID, err := w.ensureChannel(name, unit)
	if err != nil {
		return err
	}
	data, err := proto.Marshal(wrapperspb.Double(value))
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}

	seq := w.sequences[channelID]
	w.sequences[channelID] = seq + 1

	if err := w.writer.WriteMessage(&mcap.Message{
		ChannelID:   channelID,
		Sequence:    seq,
		LogTime:     toNanos(ts),
		PublishTime: toNanos(ts),
		Data:        data,
	}); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

type sample struct {
	channel int
	index   int
	ts      float64
}

// WriteBundle writes every sample of b in timestamp order and returns the
// number of messages written. Samples with equal timestamps keep their
// channel order.
func (w *Writer) WriteBundle(b *signal.Bundle) (int, error) {
	channels := b.Channels()

	var samples []sample
	for c, ch := range channels {
		for i, ts := range ch.Timestamps {
			samples = append(samples, sample{channel: c, index: i, ts: ts})
		}
	}
	slices.SortStableFunc(samples, func(a, b sample) int {
		return cmp.Compare(a.ts, b.ts)
	})

	for n, s := range samples {
		ch := channels[s.channel]
		if err := w.WriteSample(ch.Name, ch.Unit, s.ts, ch.Values[s.index]); err != nil {
			return n, err
		}
	}
	return len(samples), nil
}

// Close finalizes the MCAP file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writer.Close()
}
