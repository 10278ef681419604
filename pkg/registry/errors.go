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
	"errors"
	"fmt"
)

var (
	ErrManifestIO            = errors.New("manifest io failure")
	ErrMalformedNumericField = errors.New("malformed numeric field")
	ErrEmptyHash             = errors.New("empty chunk hash")
	ErrChunkSizeConflict     = errors.New("chunk size conflict")
	ErrReaderFailed          = errors.New("reader already failed")
)

// ManifestIOError reports a manifest that could not be opened or read.
// Both ErrManifestIO and the underlying cause match with errors.Is.
type ManifestIOError struct {
	Path string
	Err  error
}

func (e *ManifestIOError) Error() string {
	return fmt.Sprintf("failed to read manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestIOError) Unwrap() []error {
	return []error{ErrManifestIO, e.Err}
}

// MalformedFieldError reports a two-field line whose hash or size is unusable.
type MalformedFieldError struct {
	Path  string
	Line  int
	Field string
	Value string
	Kind  error // ErrMalformedNumericField or ErrEmptyHash
	Err   error
}

func (e *MalformedFieldError) Error() string {
	msg := fmt.Sprintf("%s:%d: malformed %s field %q", e.Path, e.Line, e.Field, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedFieldError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ChunkSizeConflictError means one hash was seen with two sizes: either a
// hash collision or a corrupt manifest.
type ChunkSizeConflictError struct {
	Hash          string
	Recorded      uint64
	Observed      uint64
	RecordedOwner int
	Owner         int
	Path          string
	Line          int
}

func (e *ChunkSizeConflictError) Error() string {
	where := fmt.Sprintf("owner %d", e.Owner)
	if e.Path != "" {
		where = fmt.Sprintf("%s:%d (owner %d)", e.Path, e.Line, e.Owner)
	}
	return fmt.Sprintf("chunk %s has different sizes: %d recorded by owner %d, %d observed in %s",
		e.Hash, e.Recorded, e.RecordedOwner, e.Observed, where)
}

func (e *ChunkSizeConflictError) Is(target error) bool {
	return target == ErrChunkSizeConflict
}
