// Package archive provides streaming archive writers for exports.
package archive

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Format identifies an archive container.
type Format string

const (
	FormatZip    Format = "zip"
	FormatTarGz  Format = "tar.gz"
	FormatTarZst Format = "tar.zst"
)

// Sink is a streaming archive writer. The writer returned by CreateEntry
// is valid until the next CreateEntry or Close.
type Sink interface {
	CreateEntry(name string, size int64, modified time.Time) (io.Writer, error)
	Close() error
}

// ParseFormat resolves a user-supplied format name. Blank selects zip.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "zip":
		return FormatZip, nil
	case "tar.gz", "tgz", "gzip":
		return FormatTarGz, nil
	case "tar.zst", "tzst", "zstd":
		return FormatTarZst, nil
	}
	return "", fmt.Errorf("unsupported archive format %q", name)
}

// Extension returns the file extension including the leading dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatTarGz:
		return "application/gzip"
	case FormatTarZst:
		return "application/zstd"
	}
	return "application/zip"
}

// NewSink creates a sink of the given format writing to w. Closing the sink
// does not close w.
func NewSink(f Format, w io.Writer) (Sink, error) {
	switch f {
	case FormatZip:
		return NewZipSink(w), nil
	case FormatTarGz:
		return NewTarGzSink(w)
	case FormatTarZst:
		return NewTarZstSink(w)
	}
	return nil, fmt.Errorf("unsupported archive format %q", string(f))
}

// FileName builds "<base>-<yyyyMMdd-HHmmss><ext>".
func FileName(base string, f Format, now time.Time) string {
	return fmt.Sprintf("%s-%s%s", base, now.Format("20060102-150405"), f.Extension())
}

// Abort releases temporary resources held by a sink that will not be
// closed. The archive written so far is left truncated.
func Abort(s Sink) {
	if a, ok := s.(interface{ Abort() }); ok {
		a.Abort()
	}
}
