package moviestat

import (
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// CompressionType represents the compression type
type CompressionType int

const (
	// CompressionNone represents no compression
	CompressionNone CompressionType = iota
	// CompressionGZ represents gzip compression
	CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD
)

// Compression extensions
const (
	extGZ   = ".gz"
	extBZ2  = ".bz2"
	extXZ   = ".xz"
	extZSTD = ".zst"
)

// nopClose is the cleanup of streams that hold no resources.
func nopClose() error { return nil }

// codec describes one compression type. newWriter is nil for read-only codecs.
type codec struct {
	name      string
	aliases   []string
	ext       string
	newReader func(r io.Reader) (io.Reader, func() error, error)
	newWriter func(w io.Writer) (io.Writer, func() error, error)
}

var codecs = map[CompressionType]codec{
	CompressionNone: {
		name:      "none",
		newReader: func(r io.Reader) (io.Reader, func() error, error) { return r, nopClose, nil },
		newWriter: func(w io.Writer) (io.Writer, func() error, error) { return w, nopClose, nil },
	},
	CompressionGZ: {
		name:    "gz",
		aliases: []string{"gzip"},
		ext:     extGZ,
		newReader: func(r io.Reader) (io.Reader, func() error, error) {
			zr, err := gzip.NewReader(r)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
			}
			return zr, zr.Close, nil
		},
		newWriter: func(w io.Writer) (io.Writer, func() error, error) {
			zw := gzip.NewWriter(w)
			return zw, zw.Close, nil
		},
	},
	CompressionBZ2: {
		name:    "bz2",
		aliases: []string{"bzip2"},
		ext:     extBZ2,
		newReader: func(r io.Reader) (io.Reader, func() error, error) {
			return bzip2.NewReader(r), nopClose, nil
		},
	},
	CompressionXZ: {
		name: "xz",
		ext:  extXZ,
		newReader: func(r io.Reader) (io.Reader, func() error, error) {
			zr, err := xz.NewReader(r)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
			}
			return zr, nopClose, nil
		},
		newWriter: func(w io.Writer) (io.Writer, func() error, error) {
			zw, err := xz.NewWriter(w)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create xz writer: %w", err)
			}
			return zw, zw.Close, nil
		},
	},
	CompressionZSTD: {
		name:    "zstd",
		aliases: []string{"zst"},
		ext:     extZSTD,
		newReader: func(r io.Reader) (io.Reader, func() error, error) {
			zr, err := zstd.NewReader(r)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
			}
			return zr, func() error { zr.Close(); return nil }, nil
		},
		newWriter: func(w io.Writer) (io.Writer, func() error, error) {
			zw, err := zstd.NewWriter(w)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create zstd writer: %w", err)
			}
			return zw, zw.Close, nil
		},
	},
}

// compressedExtensions are checked in this order when a path is inspected.
var compressedExtensions = []CompressionType{CompressionGZ, CompressionBZ2, CompressionXZ, CompressionZSTD}

// String returns the configuration name of the compression type.
func (c CompressionType) String() string {
	if cd, ok := codecs[c]; ok {
		return cd.name
	}
	return "none"
}

// Extension returns the file extension for the compression type
func (c CompressionType) Extension() string {
	return codecs[c].ext
}

// ParseCompressionType converts a configuration name ("none", "gz", "bz2", "xz", "zstd")
// to a CompressionType.
func ParseCompressionType(s string) (CompressionType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CompressionNone, nil
	}
	for ct, cd := range codecs {
		if s == cd.name {
			return ct, nil
		}
		for _, alias := range cd.aliases {
			if s == alias {
				return ct, nil
			}
		}
	}
	return CompressionNone, fmt.Errorf("%w: compression %q", ErrUnsupportedFormat, s)
}

// detectCompressionType detects the compression type from a file path
func detectCompressionType(path string) CompressionType {
	path = strings.ToLower(path)
	for _, ct := range compressedExtensions {
		if strings.HasSuffix(path, codecs[ct].ext) {
			return ct
		}
	}
	return CompressionNone
}

// removeCompressionExtension removes the compression extension from a file path if present
func removeCompressionExtension(path string) string {
	if ct := detectCompressionType(path); ct != CompressionNone {
		return path[:len(path)-len(codecs[ct].ext)]
	}
	return path
}

// openDecompressed opens a file and returns a reader that decompresses it
// according to its extension. The cleanup closes the decoder and the file.
func openDecompressed(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return nil, nil, err
	}

	reader, closeReader, err := codecs[detectCompressionType(path)].newReader(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}

	return reader, func() error {
		return errors.Join(closeReader(), f.Close())
	}, nil
}

// createCompressed creates path and returns a writer that compresses into it.
// The cleanup flushes the encoder, then syncs and closes the file. A read-only
// codec fails before any file is created.
func createCompressed(path string, compressionType CompressionType) (io.Writer, func() error, error) {
	cd, ok := codecs[compressionType]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported compression type for writing: %v", compressionType)
	}
	if cd.newWriter == nil {
		return nil, nil, fmt.Errorf("%s compression is not supported for writing", cd.name)
	}

	f, err := os.Create(path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file: %w", err)
	}

	writer, closeWriter, err := cd.newWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}

	return writer, func() error {
		// the encoder must flush before the file is synced
		if err := closeWriter(); err != nil {
			_ = f.Close()
			return err
		}
		return errors.Join(f.Sync(), f.Close())
	}, nil
}
