package model

// ShardDescriptor is one manifest line: the declared identity, size and
// checksum of a shard. Ordering within the manifest is significant and is
// fixed at submission.
type ShardDescriptor struct {
	ID       string
	Size     int64
	Checksum string
}

// Manifest declares the full shard list for a model plus the aggregate
// checksum over the ordered per-shard checksums. Additive while the model is
// Pending, frozen the instant the status leaves Pending.
type Manifest struct {
	ModelID           ModelID
	Shards            []ShardDescriptor
	TotalSize         int64
	AggregateChecksum string
}

func (m *Manifest) Descriptor(shardID string) (ShardDescriptor, bool) {
	for _, d := range m.Shards {
		if d.ID == shardID {
			return d, true
		}
	}

	return ShardDescriptor{}, false
}

func (m *Manifest) DeclaredSize() int64 {
	var total int64
	for _, d := range m.Shards {
		total += d.Size
	}

	return total
}
