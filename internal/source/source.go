// Package source opens a game archive as a single forward-only byte stream,
// transparently decoding a compression envelope recognized by its magic
// bytes.
package source

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"errors"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Format identifies the envelope detected at the head of an archive.
type Format string

const (
	FormatPlain Format = "plain"
	FormatZstd  Format = "zstd"
	FormatGzip  Format = "gzip"
	FormatBzip2 Format = "bzip2"
	FormatXz    Format = "xz"
	FormatLz4   Format = "lz4"
)

// readBufferSize is the read-ahead between the file and the decoder.
const readBufferSize = 1 << 20

var signatures = []struct {
	format Format
	magic  []byte
}{
	{FormatZstd, []byte{0x28, 0xB5, 0x2F, 0xFD}},
	{FormatXz, []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}},
	{FormatGzip, []byte{0x1F, 0x8B}},
	{FormatBzip2, []byte{'B', 'Z', 'h'}},
	{FormatLz4, []byte{0x04, 0x22, 0x4D, 0x18}},
}

// maxMagic is the number of bytes Detect needs to see.
const maxMagic = 6

// Detect classifies head (the first bytes of a file) by signature. Anything
// unrecognized, including an empty head, is plain text.
func Detect(head []byte) Format {
	for _, s := range signatures {
		if bytes.HasPrefix(head, s.magic) {
			return s.format
		}
	}
	return FormatPlain
}

// Stream is the decoded archive byte stream. It holds the open file and, for
// compressed archives, one decoder until Close.
type Stream struct {
	path     string
	file     *os.File
	raw      *countingReader
	r        io.Reader
	closeDec func() error
	format   Format
	size     int64
	err      error
	closed   bool
}

// Open opens path and sniffs its envelope. Open failures are StageSource
// errors; a decoder that rejects the stream header is a StageDecompress
// error. Corruption further into the stream surfaces from Read.
func Open(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Stage: StageSource, Path: path, Err: err}
	}
	var size int64
	if fi, err := f.Stat(); err == nil {
		size = fi.Size()
	}

	raw := &countingReader{r: f}
	br := bufio.NewReaderSize(raw, readBufferSize)
	head, err := br.Peek(maxMagic)
	if err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, &Error{Stage: StageSource, Path: path, Err: err}
	}

	format := Detect(head)
	r, closeDec, err := newDecoder(format, br)
	if err != nil {
		f.Close()
		stage := StageDecompress
		if raw.err != nil {
			stage = StageSource
		}
		return nil, &Error{Stage: stage, Path: path, Err: err}
	}

	return &Stream{
		path:     path,
		file:     f,
		raw:      raw,
		r:        r,
		closeDec: closeDec,
		format:   format,
		size:     size,
	}, nil
}

func newDecoder(format Format, br *bufio.Reader) (io.Reader, func() error, error) {
	noop := func() error { return nil }
	switch format {
	case FormatZstd:
		d, err := zstd.NewReader(br,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true))
		if err != nil {
			return nil, nil, err
		}
		return d, func() error { d.Close(); return nil }, nil
	case FormatGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return gz, gz.Close, nil
	case FormatBzip2:
		return bzip2.NewReader(br), noop, nil
	case FormatXz:
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return xr, noop, nil
	case FormatLz4:
		return lz4.NewReader(br), noop, nil
	default:
		return br, noop, nil
	}
}

// Read reads decoded bytes. Any failure other than io.EOF is returned as an
// *Error: StageSource when the file read failed, StageDecompress when the
// decoder rejected the data. Once failed, the stream keeps returning the same
// error.
func (s *Stream) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.closed {
		return 0, &Error{Stage: StageSource, Path: s.path, Err: os.ErrClosed}
	}
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		stage := StageDecompress
		if s.format == FormatPlain || s.raw.err != nil {
			stage = StageSource
		}
		s.err = &Error{Stage: stage, Path: s.path, Err: err}
		return n, s.err
	}
	return n, err
}

// Close releases the decoder and the file. It is safe to call more than once.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	decErr := s.closeDec()
	fileErr := s.file.Close()
	if decErr != nil {
		return decErr
	}
	return fileErr
}

// Format reports the detected envelope.
func (s *Stream) Format() Format { return s.format }

// Path returns the archive path.
func (s *Stream) Path() string { return s.path }

// Size is the on-disk (possibly compressed) size of the archive, or 0 when
// it could not be determined.
func (s *Stream) Size() int64 { return s.size }

// BytesRead is the number of on-disk bytes consumed so far, including the
// decoder's read-ahead.
func (s *Stream) BytesRead() int64 { return s.raw.n }

// countingReader tracks bytes read from the file and remembers the file's
// own read error so Read can tell source failures from decoder failures.
type countingReader struct {
	r   io.Reader
	n   int64
	err error
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if err != nil && !errors.Is(err, io.EOF) {
		c.err = err
	}
	return n, err
}
