package source

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

const sampleGame = `[Event "Rated Blitz game"]
[White "alice"]
[Black "bob"]
[Result "1-0"]
[TimeControl "180+2"]

1. e4 { [%clk 0:03:00] } 1... e5 { [%clk 0:03:00] } 2. Qh5 { [%clk 0:02:58] } 1-0

`

func sampleArchive() []byte {
	return []byte(strings.Repeat(sampleGame, 200))
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want Format
	}{
		{"zstd", []byte{0x28, 0xB5, 0x2F, 0xFD, 0x04, 0x00}, FormatZstd},
		{"gzip", []byte{0x1F, 0x8B, 0x08, 0x00}, FormatGzip},
		{"bzip2", []byte("BZh91AY"), FormatBzip2},
		{"xz", []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}, FormatXz},
		{"lz4", []byte{0x04, 0x22, 0x4D, 0x18, 0x64}, FormatLz4},
		{"pgn text", []byte(`[Event "x"]`), FormatPlain},
		{"empty", nil, FormatPlain},
		{"short gzip prefix", []byte{0x1F}, FormatPlain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.head); got != tt.want {
				t.Errorf("Detect(%x) = %q, want %q", tt.head, got, tt.want)
			}
		})
	}
}

func TestOpen_RoundTripsEveryEnvelope(t *testing.T) {
	data := sampleArchive()
	tests := []struct {
		name     string
		format   Format
		compress func(t *testing.T, data []byte) []byte
	}{
		{"plain", FormatPlain, func(t *testing.T, data []byte) []byte { return data }},
		{"zstd", FormatZstd, zstdBytes},
		{"gzip", FormatGzip, gzipBytes},
		{"xz", FormatXz, xzBytes},
		{"lz4", FormatLz4, lz4Bytes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "archive.pgn", tt.compress(t, data))

			s, err := Open(path)
			require.NoError(t, err)
			defer s.Close()

			assert.Equal(t, tt.format, s.Format())
			got, err := io.ReadAll(s)
			require.NoError(t, err)
			assert.Equal(t, data, got)
			assert.Equal(t, s.Size(), s.BytesRead(), "whole file should be consumed")
		})
	}
}

// bzip2SampleGame is sampleGame compressed with `bzip2 -9`. The standard
// library only decodes bzip2, so the stream is kept as bytes.
var bzip2SampleGame = []byte{
	0x42, 0x5a, 0x68, 0x39, 0x31, 0x41, 0x59, 0x26, 0x53, 0x59, 0xd7, 0xe4,
	0x79, 0x9c, 0x00, 0x00, 0x33, 0x5f, 0x80, 0x00, 0x10, 0x52, 0x0b, 0x7e,
	0x50, 0x1a, 0x00, 0x34, 0x8a, 0x3e, 0xef, 0x9f, 0x1a, 0x20, 0x00, 0x92,
	0x8c, 0xc1, 0x01, 0xa1, 0x90, 0x00, 0x1a, 0x03, 0xd4, 0xd1, 0xb5, 0x06,
	0x44, 0x93, 0x65, 0x1e, 0x93, 0xd4, 0xd0, 0x6d, 0x4c, 0x80, 0xf5, 0x34,
	0xc9, 0x91, 0xb5, 0x39, 0xb9, 0x55, 0x10, 0xe5, 0x7a, 0x78, 0xbc, 0x09,
	0x99, 0x42, 0x65, 0x04, 0xec, 0xb1, 0x1e, 0x60, 0x79, 0x3f, 0xd5, 0x6b,
	0x40, 0x91, 0x64, 0x45, 0x28, 0xf0, 0x91, 0x16, 0xdc, 0x43, 0x8b, 0x42,
	0x46, 0x2a, 0xb6, 0xad, 0x06, 0xac, 0x11, 0xbb, 0x2b, 0xe8, 0x29, 0x30,
	0xdd, 0xad, 0xca, 0xaf, 0x52, 0xa6, 0xa2, 0x18, 0x46, 0xd6, 0x8b, 0x99,
	0x84, 0x9a, 0x70, 0xed, 0x84, 0x99, 0x81, 0xe2, 0x9e, 0x29, 0xc5, 0x28,
	0x06, 0xa9, 0xb8, 0x9a, 0x42, 0x91, 0x60, 0xa2, 0xa0, 0x82, 0x7a, 0x17,
	0x06, 0xce, 0xf6, 0x97, 0xd2, 0xe8, 0xa3, 0x31, 0x84, 0x5b, 0xc4, 0x1f,
	0xe2, 0xee, 0x48, 0xa7, 0x0a, 0x12, 0x1a, 0xfc, 0x8f, 0x33, 0x80,
}

func TestOpen_Bzip2ConcatenatedStreams(t *testing.T) {
	data := append(append([]byte{}, bzip2SampleGame...), bzip2SampleGame...)
	path := writeFile(t, "archive.pgn.bz2", data)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, FormatBzip2, s.Format())
	got, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, sampleGame+sampleGame, string(got))
	assert.Equal(t, s.Size(), s.BytesRead())
}

func TestRead_TruncatedBzip2IsDecompressionError(t *testing.T) {
	path := writeFile(t, "archive.pgn.bz2", bzip2SampleGame[:len(bzip2SampleGame)/2])
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = io.ReadAll(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecompression)
	assert.Equal(t, StageDecompress, StageOf(err))
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.pgn.zst"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, StageSource, StageOf(err))
}

func TestOpen_EmptyFileIsPlain(t *testing.T) {
	path := writeFile(t, "empty.pgn", nil)
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, FormatPlain, s.Format())
	got, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRead_TruncatedStreamIsDecompressionError(t *testing.T) {
	for _, tt := range []struct {
		name     string
		compress func(t *testing.T, data []byte) []byte
	}{
		{"gzip", gzipBytes},
		{"zstd", zstdBytes},
		{"xz", xzBytes},
	} {
		t.Run(tt.name, func(t *testing.T) {
			full := tt.compress(t, sampleArchive())
			path := writeFile(t, "cut.pgn", full[:len(full)/2])

			err := drain(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecompression)
			assert.Equal(t, StageDecompress, StageOf(err))
		})
	}
}

func TestRead_ErrorIsSticky(t *testing.T) {
	full := gzipBytes(t, sampleArchive())
	path := writeFile(t, "cut.pgn.gz", full[:len(full)-20])

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, first := io.ReadAll(s)
	require.Error(t, first)
	_, second := s.Read(make([]byte, 16))
	assert.Same(t, first, second)
}

func TestClose_Idempotent(t *testing.T) {
	path := writeFile(t, "a.pgn.zst", zstdBytes(t, sampleArchive()))
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Read(make([]byte, 8))
	assert.ErrorIs(t, err, ErrIO)
}

func TestError_Message(t *testing.T) {
	err := &Error{Stage: StageOutput, Path: "out.csv", Err: errors.New("disk full")}
	assert.Equal(t, "output: out.csv: disk full", err.Error())
	assert.ErrorIs(t, err, ErrIO)
	assert.NotErrorIs(t, err, ErrDecompression)
	assert.Equal(t, Stage(""), StageOf(errors.New("plain")))
}

// drain opens path and reads it to the end, returning the first error from
// either step.
func drain(path string) error {
	s, err := Open(path)
	if err != nil {
		return err
	}
	defer s.Close()
	_, err = io.Copy(io.Discard, s)
	return err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func zstdBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func xzBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func lz4Bytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}
