package registry

import (
	"context"
	"fmt"

	ds "github.com/ipfs/go-datastore"

	"github.com/modelvault/modelvault/core/constants"
	"github.com/modelvault/modelvault/core/model"
	"github.com/modelvault/modelvault/lib/checksum"
	"github.com/modelvault/modelvault/lib/cmap"
)

// ShardService stores shard bytes in the datastore and keeps an in-memory
// index of measured sizes and checksums for reconciliation.
type ShardService struct {
	store  ds.Datastore
	Shards cmap.Map[model.ShardKey, model.Shard]
}

func NewShardService(store ds.Datastore) *ShardService {
	return &ShardService{
		store:  store,
		Shards: cmap.NewMap[model.ShardKey, model.Shard](),
	}
}

func shardDataKey(modelID model.ModelID, shardID string) ds.Key {
	return ds.NewKey(fmt.Sprintf("/shards/%s/%s", modelID, shardID))
}

// PutShard measures and verifies the chunk, then stores or replaces it. The
// declared checksum comes from the manifest descriptor; the measured one is
// always recomputed here.
func (ss *ShardService) PutShard(ctx context.Context, modelID model.ModelID, shardID string, data []byte, declaredChecksum string, now int64) (*model.Shard, error) {
	if int64(len(data)) > constants.MAX_SHARD_SIZE_BYTES {
		return nil, &CapacityError{
			ModelID: modelID,
			ShardID: shardID,
			Size:    int64(len(data)),
			Limit:   constants.MAX_SHARD_SIZE_BYTES,
		}
	}

	if len(data) == 0 {
		return nil, &ValidationError{ModelID: modelID, Reason: fmt.Sprintf("shard %s is empty", shardID)}
	}

	measured := checksum.Digest(data)
	if measured != declaredChecksum {
		return nil, &IntegrityError{
			ModelID: modelID,
			ShardID: shardID,
			Reason:  fmt.Sprintf("measured checksum %s does not match declared %s", measured, declaredChecksum),
		}
	}

	err := ss.store.Put(ctx, shardDataKey(modelID, shardID), data)
	if err != nil {
		return nil, err
	}

	shard := model.Shard{
		ModelID:  modelID,
		ID:       shardID,
		Size:     int64(len(data)),
		Checksum: measured,
		StoredAt: now,
	}
	ss.Shards.Set(model.ShardKey{ModelID: modelID, ShardID: shardID}, shard)

	return &shard, nil
}

func (ss *ShardService) GetShard(modelID model.ModelID, shardID string) (*model.Shard, bool) {
	return ss.Shards.Get(model.ShardKey{ModelID: modelID, ShardID: shardID})
}

func (ss *ShardService) GetShardBytes(ctx context.Context, modelID model.ModelID, shardID string) ([]byte, error) {
	data, err := ss.store.Get(ctx, shardDataKey(modelID, shardID))
	if err == ds.ErrNotFound {
		return nil, &NotFoundError{Kind: "shard", ID: shardID}
	}

	if err != nil {
		return nil, err
	}

	return data, nil
}

// ShardStats returns the stored shard count and total bytes across models.
func (ss *ShardService) ShardStats() (count int, totalBytes int64) {
	ss.Shards.Range(func(k, v any) bool {
		shard := v.(model.Shard)
		count++
		totalBytes += shard.Size

		return true
	})

	return count, totalBytes
}
