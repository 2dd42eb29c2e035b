package archive

import (
	"io"
	"time"

	"github.com/klauspost/compress/zip"
)

// ZipSink writes a deflate-compressed zip stream. Entries carry a data
// descriptor so sizes need not be known up front.
type ZipSink struct {
	zw *zip.Writer
}

// NewZipSink starts a zip archive on w.
func NewZipSink(w io.Writer) *ZipSink {
	return &ZipSink{zw: zip.NewWriter(w)}
}

// CreateEntry implements Sink.
func (s *ZipSink) CreateEntry(name string, _ int64, modified time.Time) (io.Writer, error) {
	return s.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
}

// Close writes the central directory.
func (s *ZipSink) Close() error {
	return s.zw.Close()
}
