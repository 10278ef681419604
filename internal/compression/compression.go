package compression

import (
	"compress/gzip"
	"compress/zlib"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
)

type CompressionType byte

const (
	Compress_none   CompressionType = iota //0
	Compress_zlib                          //1
	Compress_snappy                        //2
	Compress_gzip                          //3
)

var ErrInvalidCompressionType = errors.New("invalid compression type")

var (
	CompressionMethods = map[string]CompressionType{
		"none":   Compress_none,
		"zlib":   Compress_zlib,
		"snappy": Compress_snappy,
		"gzip":   Compress_gzip,
	}

	// manifest file extensions recognised by DetectByName
	extensions = map[string]CompressionType{
		".zz": Compress_zlib,
		".sz": Compress_snappy,
		".gz": Compress_gzip,
	}
)

func (t CompressionType) String() string {
	for name, ct := range CompressionMethods {
		if ct == t {
			return name
		}
	}
	return "unknown"
}

// DetectByName picks the codec from a manifest's or report's file extension.
// Names without a known extension are read as plain text.
func DetectByName(name string) CompressionType {
	if ct, ok := extensions[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return Compress_none
}

// NewReader wraps r with a streaming decompressor. Closing the returned
// reader does not close r.
func NewReader(r io.Reader, t CompressionType) (io.ReadCloser, error) {
	switch t {
	case Compress_none:
		return io.NopCloser(r), nil
	case Compress_zlib:
		return zlib.NewReader(r)
	case Compress_snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case Compress_gzip:
		return gzip.NewReader(r)
	default:
		return nil, ErrInvalidCompressionType
	}
}

// NewWriter is the inverse of NewReader. Report files named *.gz, *.zz or
// *.sz are written through it.
func NewWriter(w io.Writer, t CompressionType) (io.WriteCloser, error) {
	switch t {
	case Compress_none:
		return nopWriteCloser{w}, nil
	case Compress_zlib:
		return zlib.NewWriter(w), nil
	case Compress_snappy:
		return snappy.NewBufferedWriter(w), nil
	case Compress_gzip:
		return gzip.NewWriter(w), nil
	default:
		return nil, ErrInvalidCompressionType
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
