package vecdex

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/aifocal/vecdex/index"
	"github.com/aifocal/vecdex/index/flat"
	"github.com/aifocal/vecdex/index/hnsw"
)

const (
	// snapshotMagic identifies vecdex snapshot streams (ASCII: "VDX0").
	snapshotMagic = 0x56445830

	// snapshotVersion is the current snapshot format version.
	snapshotVersion = 1

	// fileBufferSize batches file reads and writes.
	fileBufferSize = 256 * 1024
)

// Compression names accepted by WithCompression and recorded in
// snapshot headers.
const (
	CompressionZstd = "zstd"
	CompressionLZ4  = "lz4"
	CompressionNone = "none"
)

// SnapshotInfo is the self-describing envelope header written in front
// of every snapshot payload. It identifies the snapshot and what is
// needed to decode it without loading the index first.
type SnapshotInfo struct {
	UUID        string // unique id minted for this snapshot
	Kind        string // engine kind, index.KindFlat or index.KindHNSW
	Dimension   int    // vector dimensionality
	Metric      string // distance metric name
	Compression string // payload compression name
}

type saveOptions struct {
	compression string
}

// SaveOption configures snapshot writing.
type SaveOption func(*saveOptions)

// WithCompression selects the snapshot payload compression:
// CompressionZstd (the default), CompressionLZ4, or CompressionNone.
func WithCompression(name string) SaveOption {
	return func(o *saveOptions) {
		o.compression = name
	}
}

// SaveToWriter writes a snapshot of the index to w.
//
// The stream is an envelope (magic, version, SnapshotInfo) followed by
// the engine state, compressed per the chosen compression. Snapshots
// taken while other goroutines mutate the index are internally
// consistent; they capture some serialized point in time.
func (v *Vecdex) SaveToWriter(w io.Writer, optFns ...SaveOption) error {
	opts := saveOptions{compression: CompressionZstd}
	for _, fn := range optFns {
		fn(&opts)
	}

	payload, err := v.engine.GobEncode()
	if err != nil {
		return translateError(err)
	}

	compressed, err := compressPayload(payload, opts.compression)
	if err != nil {
		return err
	}

	stats := v.engine.Stats()
	info := SnapshotInfo{
		UUID:        uuid.NewString(),
		Kind:        stats.Kind,
		Dimension:   stats.Dimension,
		Metric:      stats.Metric,
		Compression: opts.compression,
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(snapshotMagic)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(snapshotVersion)); err != nil {
		return err
	}

	encoder := gob.NewEncoder(w)
	if err := encoder.Encode(info); err != nil {
		return err
	}
	return encoder.Encode(compressed)
}

// SaveToFile writes a snapshot to filename. The snapshot is written to
// a temp file in the same directory and renamed into place, so a crash
// mid-save never leaves a truncated snapshot behind.
func (v *Vecdex) SaveToFile(ctx context.Context, filename string, optFns ...SaveOption) error {
	err := writeFileAtomic(filename, func(w io.Writer) error {
		return v.SaveToWriter(w, optFns...)
	})
	v.logger.LogSnapshot(ctx, filename, err)
	return err
}

// LoadFromReader reads a snapshot from r and returns a ready index.
// The engine kind, metric, and parameters come from the snapshot;
// optFns configure the ambient stack (logger, metrics) of the new
// instance.
func LoadFromReader(r io.Reader, optFns ...Option) (*Vecdex, error) {
	info, decoder, err := readSnapshotHeader(r)
	if err != nil {
		return nil, err
	}

	var compressed []byte
	if err := decoder.Decode(&compressed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	payload, err := decompressPayload(compressed, info.Compression)
	if err != nil {
		return nil, err
	}

	var engine index.Index
	switch info.Kind {
	case index.KindFlat:
		engine = &flat.Flat{}
	case index.KindHNSW:
		engine = &hnsw.HNSW{}
	default:
		return nil, fmt.Errorf("%w: unknown engine kind %q", ErrInvalidSnapshot, info.Kind)
	}

	if err := engine.GobDecode(payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	if stats := engine.Stats(); stats.Dimension != info.Dimension || stats.Metric != info.Metric {
		return nil, fmt.Errorf("%w: header does not match payload", ErrInvalidSnapshot)
	}

	return newVecdex(engine, optFns...), nil
}

// LoadFromFile reads a snapshot from filename and returns a ready index.
func LoadFromFile(ctx context.Context, filename string, optFns ...Option) (*Vecdex, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	db, err := LoadFromReader(bufio.NewReaderSize(f, fileBufferSize), optFns...)
	if err != nil {
		applyOptions(optFns).logger.LogRestore(ctx, filename, err)
		return nil, err
	}

	db.logger.LogRestore(ctx, filename, nil)
	return db, nil
}

// ReadSnapshotInfo reads just the envelope header from r, so a snapshot
// can be inspected without loading it. The reader is left at an
// unspecified position afterwards.
func ReadSnapshotInfo(r io.Reader) (SnapshotInfo, error) {
	info, _, err := readSnapshotHeader(r)
	return info, err
}

func readSnapshotHeader(r io.Reader) (SnapshotInfo, *gob.Decoder, error) {
	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return SnapshotInfo{}, nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if magic != snapshotMagic {
		return SnapshotInfo{}, nil, fmt.Errorf("%w: bad magic 0x%08x", ErrInvalidSnapshot, magic)
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return SnapshotInfo{}, nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if version != snapshotVersion {
		return SnapshotInfo{}, nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, version)
	}

	decoder := gob.NewDecoder(r)

	var info SnapshotInfo
	if err := decoder.Decode(&info); err != nil {
		return SnapshotInfo{}, nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	return info, decoder, nil
}

func compressPayload(payload []byte, name string) ([]byte, error) {
	switch name {
	case CompressionNone:
		return payload, nil
	case CompressionLZ4:
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(payload); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(payload, nil), nil
	default:
		return nil, fmt.Errorf("%w: unknown compression %q", ErrInvalidSnapshot, name)
	}
}

func decompressPayload(data []byte, name string) ([]byte, error) {
	switch name {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		payload, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
		return payload, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		payload, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
		return payload, nil
	default:
		return nil, fmt.Errorf("%w: unknown compression %q", ErrInvalidSnapshot, name)
	}
}

// writeFileAtomic writes through a temp file in the target directory
// and renames it into place.
func writeFileAtomic(filename string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	// Match typical file permissions (best-effort).
	_ = tmp.Chmod(0644)

	buf := bufio.NewWriterSize(tmp, fileBufferSize)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""
	return nil
}
