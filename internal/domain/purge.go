package domain

import (
	"context"
	"slices"
)

// PurgeFailed marks a partition whose purge failed while the remaining
// partitions were still processed.
const PurgeFailed = -1

// PurgeResult maps partition name to records removed or PurgeFailed.
type PurgeResult map[string]int

// Failed lists, sorted, the partitions that reported PurgeFailed.
func (r PurgeResult) Failed() []string {
	var out []string
	for name, n := range r {
		if n == PurgeFailed {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// Partition is a collection of user-owned records addressed by an owner
// reference column.
type Partition struct {
	Name       string
	Table      string
	OwnerField string
}

// PartitionRepository deletes at most limit records of p owned by uid in one
// atomic step and reports how many were removed.
type PartitionRepository interface {
	DeleteOwned(ctx context.Context, p Partition, uid string, limit int) (int, error)
}

// BlobStore deletes every object under a path prefix. Deleting an empty
// prefix is not an error.
type BlobStore interface {
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}
