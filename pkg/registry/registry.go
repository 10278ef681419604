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
	"fmt"
	"sort"
)

// Registry is the deduplicated chunk index of one analysis run, keyed by
// content hash. It only grows while manifests are read and is read-only
// once handed to the aggregator. It is not safe for concurrent use.
type Registry struct {
	chunks map[string]*ChunkRecord
	// owner names by id-1; id i is the i-th manifest read
	owners []string
}

func NewRegistry() *Registry {
	return &Registry{
		chunks: make(map[string]*ChunkRecord),
	}
}

// Len is the number of distinct hashes.
func (r *Registry) Len() int {
	return len(r.chunks)
}

// Manifests is the number of owners registered so far (N).
func (r *Registry) Manifests() int {
	return len(r.owners)
}

// OwnerName returns the source name of an owner id, or "" if unknown.
func (r *Registry) OwnerName(id int) string {
	if id < 1 || id > len(r.owners) {
		return ""
	}
	return r.owners[id-1]
}

func (r *Registry) Get(hash string) (*ChunkRecord, bool) {
	c, ok := r.chunks[hash]
	return c, ok
}

// Range calls fn for every record in unspecified order until fn returns false.
func (r *Registry) Range(fn func(c *ChunkRecord) bool) {
	for _, c := range r.chunks {
		if !fn(c) {
			return
		}
	}
}

// Hashes returns all hashes sorted, mostly for stable output and tests.
func (r *Registry) Hashes() []string {
	hashes := make([]string, 0, len(r.chunks))
	for h := range r.chunks {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)
	return hashes
}

// addOwner registers the next manifest and returns its owner id.
func (r *Registry) addOwner(name string) int {
	r.owners = append(r.owners, name)
	return len(r.owners)
}

// observe folds one (hash, size) observation by owner into the registry.
// New hashes create a record; known hashes must match the recorded size,
// gain owner idempotently and count one more occurrence.
func (r *Registry) observe(owner int, hash string, size uint64) (created bool, err error) {
	if owner < 1 || owner > len(r.owners) {
		return false, fmt.Errorf("owner id %d out of range 1..%d", owner, len(r.owners))
	}

	c, ok := r.chunks[hash]
	if !ok {
		r.chunks[hash] = newChunkRecord(hash, size, owner)
		return true, nil
	}

	if c.size != size {
		return false, &ChunkSizeConflictError{
			Hash:          hash,
			Recorded:      c.size,
			Observed:      size,
			RecordedOwner: c.firstOwner(),
			Owner:         owner,
		}
	}
	c.owners.Add(owner)
	c.frequency++
	return false, nil
}
