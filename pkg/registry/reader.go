// Copyright 2025 zhengshuai.xiao@outlook.com
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
package registry

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/zhengshuai-xiao/chunkshare/internal"
)

var logger = internal.GetLogger("chunkshare_registry")

// maxLineSize bounds a single manifest line; hash,size lines are far shorter.
// Longer lines are drained and skipped as noise.
const maxLineSize = 1 << 20

// Opener resolves a manifest location to a byte stream.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// FileOpener opens manifests from the local filesystem.
type FileOpener struct{}

func (FileOpener) Open(_ context.Context, location string) (io.ReadCloser, error) {
	return os.Open(location)
}

// ManifestStats describes one manifest read.
type ManifestStats struct {
	Owner     int
	Name      string
	Lines     int
	Records   int
	Skipped   int
	NewChunks int
}

// Reader folds manifests into a Registry one at a time, in call order.
// The n-th manifest read is owner n. After any error the Reader refuses
// further input and no longer exposes its registry.
type Reader struct {
	reg    *Registry
	opener Opener
	err    error
}

// NewReader returns a Reader with an empty registry. A nil opener reads
// local files.
func NewReader(opener Opener) *Reader {
	if opener == nil {
		opener = FileOpener{}
	}
	return &Reader{
		reg:    NewRegistry(),
		opener: opener,
	}
}

// FilesRead is the run counter: manifests started so far.
func (r *Reader) FilesRead() int {
	return r.reg.Manifests()
}

// Registry returns the accumulated registry, or nil if ingestion failed.
func (r *Reader) Registry() *Registry {
	if r.err != nil {
		return nil
	}
	return r.reg
}

// Err returns the error that aborted ingestion, if any.
func (r *Reader) Err() error {
	return r.err
}

// Ingest reads every location in order and returns the final registry and
// the number of manifests processed. The first failure aborts the run and
// no registry is returned.
func (r *Reader) Ingest(ctx context.Context, locations []string) (*Registry, int, error) {
	for _, loc := range locations {
		if _, err := r.ReadManifest(ctx, loc); err != nil {
			return nil, 0, err
		}
	}
	return r.reg, r.reg.Manifests(), nil
}

// ReadManifest opens one manifest through the Opener and reads it.
func (r *Reader) ReadManifest(ctx context.Context, location string) (ManifestStats, error) {
	if r.err != nil {
		return ManifestStats{}, fmt.Errorf("%w: %w", ErrReaderFailed, r.err)
	}
	if err := ctx.Err(); err != nil {
		return ManifestStats{}, r.fail(&ManifestIOError{Path: location, Err: err})
	}

	f, err := r.opener.Open(ctx, location)
	if err != nil {
		var ioErr *ManifestIOError
		if errors.As(err, &ioErr) {
			return ManifestStats{}, r.fail(err)
		}
		return ManifestStats{}, r.fail(&ManifestIOError{Path: location, Err: err})
	}
	defer f.Close()

	return r.ReadFrom(location, f)
}

// ReadFrom reads one manifest stream under the next owner id. name labels
// the owner in errors and reports.
func (r *Reader) ReadFrom(name string, in io.Reader) (ManifestStats, error) {
	if r.err != nil {
		return ManifestStats{}, fmt.Errorf("%w: %w", ErrReaderFailed, r.err)
	}

	owner := r.reg.addOwner(name)
	stats := ManifestStats{Owner: owner, Name: name}

	br := bufio.NewReaderSize(in, 64*1024)
	for {
		line, tooLong, err := readLine(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, r.fail(&ManifestIOError{Path: name, Err: err})
		}
		stats.Lines++
		if tooLong {
			stats.Skipped++
			logger.Debugf("%s:%d: skipping line longer than %d bytes", name, stats.Lines, maxLineSize)
			continue
		}

		hash, size, ok, err := parseLine(line)
		if err != nil {
			var mf *MalformedFieldError
			if errors.As(err, &mf) {
				mf.Path = name
				mf.Line = stats.Lines
			}
			return stats, r.fail(err)
		}
		if !ok {
			stats.Skipped++
			logger.Debugf("%s:%d: skipping line that is not hash,size", name, stats.Lines)
			continue
		}

		created, err := r.reg.observe(owner, hash, size)
		if err != nil {
			var conflict *ChunkSizeConflictError
			if errors.As(err, &conflict) {
				conflict.Path = name
				conflict.Line = stats.Lines
			}
			return stats, r.fail(err)
		}
		stats.Records++
		if created {
			stats.NewChunks++
		}
	}

	logger.Infof("Read manifest %s as owner %d: %d lines, %d records, %d skipped, %d new chunks, %d distinct total",
		name, owner, stats.Lines, stats.Records, stats.Skipped, stats.NewChunks, r.reg.Len())
	return stats, nil
}

// readLine returns the next line without its line ending. A line longer
// than maxLineSize is consumed whole and reported as tooLong, with no text.
func readLine(br *bufio.Reader) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		frag, more, err := br.ReadLine()
		if err != nil {
			if err == io.EOF && (len(buf) > 0 || tooLong) {
				return string(buf), tooLong, nil
			}
			return "", false, err
		}
		if !tooLong {
			if len(buf)+len(frag) > maxLineSize {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, frag...)
			}
		}
		if !more {
			return string(buf), tooLong, nil
		}
	}
}

func (r *Reader) fail(err error) error {
	r.err = err
	logger.Errorf("Ingestion aborted: %v", err)
	return err
}

// parseLine splits a manifest line into hash and size. ok is false for
// lines that are not exactly two comma separated fields; those are noise.
// A two-field line with a bad hash or size is an error.
func parseLine(line string) (hash string, size uint64, ok bool, err error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 2 {
		return "", 0, false, nil
	}

	hash = strings.TrimSpace(fields[0])
	sizeField := strings.TrimSpace(fields[1])
	if hash == "" {
		return "", 0, false, &MalformedFieldError{Field: "hash", Value: hash, Kind: ErrEmptyHash}
	}
	size, err = strconv.ParseUint(sizeField, 10, 64)
	if err != nil {
		return "", 0, false, &MalformedFieldError{Field: "size", Value: sizeField, Kind: ErrMalformedNumericField, Err: err}
	}
	return hash, size, true, nil
}
