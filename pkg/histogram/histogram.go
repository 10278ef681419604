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

// Package histogram derives distributions from a completed chunk registry.
// Every function is a pure read of the registry.
package histogram

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zhengshuai-xiao/chunkshare/pkg/registry"
)

var ErrManifestCount = errors.New("invalid manifest count")

// Bin is one histogram bar: Count distinct chunks have value K.
type Bin struct {
	K     uint64 `json:"k"`
	Count int    `json:"count"`
}

// Kind names what a histogram buckets by.
type Kind string

const (
	KindSharing   Kind = "sharing"
	KindFrequency Kind = "frequency"
)

// Histogram is a run of bins in ascending K. Sharing bins cover every k in
// 1..N; frequency bins are sparse.
type Histogram struct {
	Kind      Kind  `json:"kind"`
	Manifests int   `json:"manifests"`
	Bins      []Bin `json:"bins"`
}

// Total is the sum of all counts, the number of distinct chunks.
func (h *Histogram) Total() int {
	total := 0
	for _, b := range h.Bins {
		total += b.Count
	}
	return total
}

// Sharing counts, for k = 1..n, the chunks held by exactly k manifests.
// n is the number of manifests read; a chunk with more owners than n means
// the caller passed the wrong n.
func Sharing(reg *registry.Registry, n int) (*Histogram, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrManifestCount, n)
	}

	// index 0 stays empty: every chunk has at least one owner
	counts := make([]int, n+1)
	var err error
	reg.Range(func(c *registry.ChunkRecord) bool {
		k := c.OwnerCount()
		if k > n {
			err = fmt.Errorf("%w: chunk %s has %d owners but only %d manifests were read", ErrManifestCount, c.Hash(), k, n)
			return false
		}
		counts[k]++
		return true
	})
	if err != nil {
		return nil, err
	}

	return &Histogram{Kind: KindSharing, Manifests: n, Bins: toBins(counts)}, nil
}

// Frequency counts the chunks observed exactly f times across all
// manifests. Only frequencies that occur get a bin, in ascending order, so
// one hot chunk seen a million times adds one bin and not a million.
func Frequency(reg *registry.Registry) *Histogram {
	counts := make(map[uint64]int)
	reg.Range(func(c *registry.ChunkRecord) bool {
		counts[c.Frequency()]++
		return true
	})

	bins := make([]Bin, 0, len(counts))
	for f, n := range counts {
		bins = append(bins, Bin{K: f, Count: n})
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].K < bins[j].K })
	return &Histogram{Kind: KindFrequency, Manifests: reg.Manifests(), Bins: bins}
}

func toBins(counts []int) []Bin {
	bins := make([]Bin, 0, len(counts))
	for k := 1; k < len(counts); k++ {
		bins = append(bins, Bin{K: uint64(k), Count: counts[k]})
	}
	return bins
}
