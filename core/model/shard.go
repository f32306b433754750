package model

// Shard is the stored-chunk record for one (model id, shard id). The raw
// bytes live in the datastore; Checksum is measured at store time and never
// trusted from the caller.
type Shard struct {
	ModelID  ModelID
	ID       string
	Size     int64
	Checksum string
	StoredAt int64
}

type ShardKey struct {
	ModelID ModelID
	ShardID string
}
