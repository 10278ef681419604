package histogram

import "github.com/zhengshuai-xiao/chunkshare/pkg/registry"

// Summary is the fleet-wide dedup effect of a registry.
type Summary struct {
	Manifests      int     `json:"manifests"`
	Records        uint64  `json:"records"`
	DistinctChunks int     `json:"distinct_chunks"`
	LogicalBytes   uint64  `json:"logical_bytes"`
	PhysicalBytes  uint64  `json:"physical_bytes"`
	DedupRatio     float64 `json:"dedup_ratio"`
	// chunks held by exactly one manifest
	UniqueChunks int    `json:"unique_chunks"`
	UniqueBytes  uint64 `json:"unique_bytes"`
}

// Summarize totals the registry. Logical bytes count every observation,
// physical bytes each distinct chunk once. DedupRatio is logical/physical,
// or 0 when nothing was stored.
func Summarize(reg *registry.Registry) Summary {
	s := Summary{
		Manifests:      reg.Manifests(),
		DistinctChunks: reg.Len(),
	}
	reg.Range(func(c *registry.ChunkRecord) bool {
		s.Records += c.Frequency()
		s.LogicalBytes += c.Size() * c.Frequency()
		s.PhysicalBytes += c.Size()
		if c.OwnerCount() == 1 {
			s.UniqueChunks++
			s.UniqueBytes += c.Size()
		}
		return true
	})
	if s.PhysicalBytes > 0 {
		s.DedupRatio = float64(s.LogicalBytes) / float64(s.PhysicalBytes)
	}
	return s
}
