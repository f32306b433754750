package registry

import (
	"context"
	"encoding/json"

	ds "github.com/ipfs/go-datastore"

	"github.com/modelvault/modelvault/core/model"
)

var snapshotKey = ds.NewKey("/state/registry")

// snapshotState is the serialized metadata state. Shard bytes and audit
// entries persist incrementally at write time and are not duplicated here;
// the shard index is carried so reconciliation survives a restart without
// rehashing every chunk.
type snapshotState struct {
	Models    []model.ModelRecord
	Manifests []model.Manifest
	Shards    []model.Shard
	Uploaders []string
	Admins    []string
	Grants    []model.AccessGrant
}

// Snapshot serializes engine state to the datastore. Called before
// teardown; the constructor rehydrates from it.
func (r *Registry) Snapshot(ctx context.Context) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	state := snapshotState{
		Models:    r.Models.Values(),
		Manifests: r.Manifests.Values(),
		Shards:    r.Shards.Values(),
		Grants:    r.Grants.Values(),
	}

	r.Uploaders.Range(func(k, v any) bool {
		state.Uploaders = append(state.Uploaders, k.(string))
		return true
	})

	r.Admins.Range(func(k, v any) bool {
		state.Admins = append(state.Admins, k.(string))
		return true
	})

	b, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return r.store.Put(ctx, snapshotKey, b)
}

func (r *Registry) restore(ctx context.Context) error {
	b, err := r.store.Get(ctx, snapshotKey)
	if err == ds.ErrNotFound {
		return nil
	}

	if err != nil {
		return err
	}

	var state snapshotState
	err = json.Unmarshal(b, &state)
	if err != nil {
		return err
	}

	for _, record := range state.Models {
		r.Models.Set(record.ID, record)
	}

	for _, manifest := range state.Manifests {
		r.Manifests.Set(manifest.ModelID, manifest)
	}

	for _, shard := range state.Shards {
		r.Shards.Set(model.ShardKey{ModelID: shard.ModelID, ShardID: shard.ID}, shard)
	}

	for _, uploader := range state.Uploaders {
		r.Uploaders.Set(uploader, true)
	}

	for _, admin := range state.Admins {
		r.Admins.Set(admin, true)
	}

	for _, grant := range state.Grants {
		r.Grants.Set(model.GrantKey{ModelID: grant.ModelID, Grantee: grant.Grantee}, grant)
	}

	return nil
}
