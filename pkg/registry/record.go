package registry

import "github.com/zhengshuai-xiao/chunkshare/internal"

// ChunkRecord holds everything known about one content hash. Records are
// only mutated by the Registry that owns them.
type ChunkRecord struct {
	hash      string
	size      uint64
	owners    *internal.IntSet
	frequency uint64
}

func newChunkRecord(hash string, size uint64, owner int) *ChunkRecord {
	return &ChunkRecord{
		hash:      hash,
		size:      size,
		owners:    internal.NewIntSet(owner),
		frequency: 1,
	}
}

func (c *ChunkRecord) Hash() string { return c.hash }

// Size is the byte length recorded on first observation.
func (c *ChunkRecord) Size() uint64 { return c.size }

// Frequency counts every observation, repeats within a manifest included.
func (c *ChunkRecord) Frequency() uint64 { return c.frequency }

// OwnerCount is the sharing degree of the chunk.
func (c *ChunkRecord) OwnerCount() int { return c.owners.Len() }

func (c *ChunkRecord) HasOwner(id int) bool { return c.owners.Contains(id) }

// Owners returns the owner ids in ascending order.
func (c *ChunkRecord) Owners() []int { return c.owners.Sorted() }

func (c *ChunkRecord) firstOwner() int {
	owners := c.owners.Sorted()
	if len(owners) == 0 {
		return 0
	}
	return owners[0]
}
