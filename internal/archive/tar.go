package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// TarSink writes a tar stream through a compressor. Tar headers need the
// entry size, so entries of unknown length are spooled to a temporary file
// and emitted when the next entry starts or the sink closes.
type TarSink struct {
	tw         *tar.Writer
	compressor io.WriteCloser
	pending    *spooledEntry
}

type spooledEntry struct {
	header *tar.Header
	file   *os.File
}

// NewTarGzSink starts a gzip-compressed tar archive on w.
func NewTarGzSink(w io.Writer) (*TarSink, error) {
	gz, err := gzip.NewWriterLevel(w, gzip.DefaultCompression)
	if err != nil {
		return nil, err
	}
	return newTarSink(gz), nil
}

// NewTarZstSink starts a zstd-compressed tar archive on w.
func NewTarZstSink(w io.Writer) (*TarSink, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	return newTarSink(enc), nil
}

func newTarSink(compressor io.WriteCloser) *TarSink {
	return &TarSink{tw: tar.NewWriter(compressor), compressor: compressor}
}

// CreateEntry implements Sink.
func (s *TarSink) CreateEntry(name string, size int64, modified time.Time) (io.Writer, error) {
	if err := s.flushPending(); err != nil {
		return nil, err
	}

	header := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Mode:     0o644,
		ModTime:  modified,
		Format:   tar.FormatPAX,
	}
	if size >= 0 {
		header.Size = size
		if err := s.tw.WriteHeader(header); err != nil {
			return nil, err
		}
		return s.tw, nil
	}

	file, err := os.CreateTemp("", "iron-browser-entry-*")
	if err != nil {
		return nil, fmt.Errorf("spool entry %q: %w", name, err)
	}
	s.pending = &spooledEntry{header: header, file: file}
	return file, nil
}

// flushPending copies a spooled entry into the tar stream and removes its
// temporary file.
func (s *TarSink) flushPending() error {
	if s.pending == nil {
		return nil
	}
	entry := s.pending
	s.pending = nil
	defer func() {
		_ = entry.file.Close()
		_ = os.Remove(entry.file.Name())
	}()

	size, err := entry.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := entry.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	entry.header.Size = size
	if err := s.tw.WriteHeader(entry.header); err != nil {
		return err
	}
	_, err = io.CopyN(s.tw, entry.file, size)
	return err
}

// Close flushes any spooled entry, then finalizes tar and compressor.
func (s *TarSink) Close() error {
	flushErr := s.flushPending()
	tarErr := s.tw.Close()
	compErr := s.compressor.Close()
	return errors.Join(flushErr, tarErr, compErr)
}

// Abort drops a spooled entry without writing the archive trailer.
func (s *TarSink) Abort() {
	if s.pending == nil {
		return
	}
	_ = s.pending.file.Close()
	_ = os.Remove(s.pending.file.Name())
	s.pending = nil
}
