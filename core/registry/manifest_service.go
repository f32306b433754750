package registry

import (
	"fmt"

	"github.com/modelvault/modelvault/core/constants"
	"github.com/modelvault/modelvault/core/model"
	"github.com/modelvault/modelvault/lib/checksum"
	"github.com/modelvault/modelvault/lib/cmap"
)

// ManifestService holds the declared shard list per model and reconciles it
// against the shard store.
type ManifestService struct {
	Manifests cmap.Map[model.ModelID, model.Manifest]
}

func NewManifestService() *ManifestService {
	return &ManifestService{
		Manifests: cmap.NewMap[model.ModelID, model.Manifest](),
	}
}

func (ms *ManifestService) GetManifest(id model.ModelID) (*model.Manifest, bool) {
	return ms.Manifests.Get(id)
}

func (ms *ManifestService) AddManifest(manifest model.Manifest) error {
	err := validateManifest(&manifest)
	if err != nil {
		return err
	}

	ms.Manifests.Set(manifest.ModelID, manifest)

	return nil
}

// ExtendManifest appends descriptors while the model is Pending. Existing
// descriptors are never removed or altered; the declared aggregate must
// match the extended checksum sequence.
func (ms *ManifestService) ExtendManifest(id model.ModelID, descriptors []model.ShardDescriptor, newAggregate string) error {
	manifest, exists := ms.Manifests.Get(id)
	if !exists {
		return &NotFoundError{Kind: "manifest", ID: id}
	}

	extended := *manifest
	extended.Shards = append(append([]model.ShardDescriptor{}, manifest.Shards...), descriptors...)
	extended.TotalSize = extended.DeclaredSize()
	extended.AggregateChecksum = newAggregate

	err := validateManifest(&extended)
	if err != nil {
		return err
	}

	ms.Manifests.Set(id, extended)

	return nil
}

func validateManifest(manifest *model.Manifest) error {
	if len(manifest.Shards) == 0 {
		return &ValidationError{ModelID: manifest.ModelID, Reason: "manifest declares no shards"}
	}

	seen := make(map[string]bool, len(manifest.Shards))
	declared := make([]string, 0, len(manifest.Shards))

	for _, d := range manifest.Shards {
		if d.ID == "" {
			return &ValidationError{ModelID: manifest.ModelID, Reason: "manifest declares a shard with no id"}
		}

		if seen[d.ID] {
			return &ValidationError{ModelID: manifest.ModelID, Reason: fmt.Sprintf("duplicate shard id %s", d.ID)}
		}
		seen[d.ID] = true

		if d.Size <= 0 || d.Size > constants.MAX_SHARD_SIZE_BYTES {
			return &ValidationError{
				ModelID: manifest.ModelID,
				Reason:  fmt.Sprintf("shard %s declares size %d outside (0, %d]", d.ID, d.Size, constants.MAX_SHARD_SIZE_BYTES),
			}
		}

		if !checksum.IsHexDigest(d.Checksum) {
			return &ValidationError{ModelID: manifest.ModelID, Reason: fmt.Sprintf("shard %s checksum is not a hex digest", d.ID)}
		}

		declared = append(declared, d.Checksum)
	}

	if manifest.TotalSize != manifest.DeclaredSize() {
		return &ValidationError{
			ModelID: manifest.ModelID,
			Reason:  fmt.Sprintf("declared total size %d does not equal shard sum %d", manifest.TotalSize, manifest.DeclaredSize()),
		}
	}

	if manifest.AggregateChecksum != checksum.Aggregate(declared) {
		return &ValidationError{ModelID: manifest.ModelID, Reason: "aggregate checksum is not derivable from declared shard checksums"}
	}

	return nil
}

// Reconcile recomputes size and aggregate checksum from stored shards in
// declared order and compares them to the manifest. It mutates nothing and
// names the first divergent shard on failure.
func (ms *ManifestService) Reconcile(id model.ModelID, shards *ShardService) error {
	manifest, exists := ms.Manifests.Get(id)
	if !exists {
		return &NotFoundError{Kind: "manifest", ID: id}
	}

	var totalSize int64
	measured := make([]string, 0, len(manifest.Shards))

	for _, d := range manifest.Shards {
		shard, stored := shards.GetShard(id, d.ID)
		if !stored {
			return &IntegrityError{ModelID: id, ShardID: d.ID, Reason: "shard missing"}
		}

		if shard.Size != d.Size {
			return &IntegrityError{
				ModelID: id,
				ShardID: d.ID,
				Reason:  fmt.Sprintf("stored size %d does not match declared %d", shard.Size, d.Size),
			}
		}

		if shard.Checksum != d.Checksum {
			return &IntegrityError{
				ModelID: id,
				ShardID: d.ID,
				Reason:  fmt.Sprintf("stored checksum %s does not match declared %s", shard.Checksum, d.Checksum),
			}
		}

		totalSize += shard.Size
		measured = append(measured, shard.Checksum)
	}

	if totalSize != manifest.TotalSize {
		return &IntegrityError{
			ModelID: id,
			Reason:  fmt.Sprintf("stored total %d does not match declared %d", totalSize, manifest.TotalSize),
		}
	}

	if aggregate := checksum.Aggregate(measured); aggregate != manifest.AggregateChecksum {
		return &IntegrityError{
			ModelID: id,
			Reason:  fmt.Sprintf("aggregate checksum %s does not match declared %s", aggregate, manifest.AggregateChecksum),
		}
	}

	return nil
}
