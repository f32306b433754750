package registry

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelvault/modelvault/core/constants"
	"github.com/modelvault/modelvault/core/model"
	"github.com/modelvault/modelvault/lib/checksum"
)

func validManifest(id model.ModelID, blobs ...[]byte) model.Manifest {
	manifest, _ := buildUploads(id, blobs...)
	return manifest
}

func TestAddManifestValidation(t *testing.T) {
	goodChecksum := checksum.Digest([]byte("x"))

	cases := []struct {
		name   string
		mutate func(m *model.Manifest)
		reason string
	}{
		{
			name:   "no shards",
			mutate: func(m *model.Manifest) { m.Shards = nil },
			reason: "no shards",
		},
		{
			name:   "empty shard id",
			mutate: func(m *model.Manifest) { m.Shards[0].ID = "" },
			reason: "no id",
		},
		{
			name: "duplicate shard id",
			mutate: func(m *model.Manifest) {
				m.Shards = append(m.Shards, m.Shards[0])
				m.TotalSize = m.DeclaredSize()
			},
			reason: "duplicate",
		},
		{
			name:   "zero size",
			mutate: func(m *model.Manifest) { m.Shards[0].Size = 0 },
			reason: "outside",
		},
		{
			name: "size over ceiling",
			mutate: func(m *model.Manifest) {
				m.Shards[0].Size = constants.MAX_SHARD_SIZE_BYTES + 1
				m.TotalSize = m.DeclaredSize()
			},
			reason: "outside",
		},
		{
			name:   "non-hex checksum",
			mutate: func(m *model.Manifest) { m.Shards[0].Checksum = "not-a-digest" },
			reason: "hex digest",
		},
		{
			name:   "total size mismatch",
			mutate: func(m *model.Manifest) { m.TotalSize++ },
			reason: "total size",
		},
		{
			name:   "aggregate mismatch",
			mutate: func(m *model.Manifest) { m.AggregateChecksum = goodChecksum },
			reason: "aggregate",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ms := NewManifestService()
			manifest := validManifest("m1", []byte("alpha"), []byte("beta"))
			tc.mutate(&manifest)

			err := ms.AddManifest(manifest)
			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Contains(t, strings.ToLower(valErr.Reason), tc.reason)
		})
	}
}

func TestExtendManifestAppendOnly(t *testing.T) {
	ms := NewManifestService()
	manifest := validManifest("m1", []byte("alpha"))
	require.NoError(t, ms.AddManifest(manifest))

	extra := []byte("beta")
	extraDigest := checksum.Digest(extra)
	newAggregate := checksum.Aggregate([]string{manifest.Shards[0].Checksum, extraDigest})

	err := ms.ExtendManifest("m1", []model.ShardDescriptor{
		{ID: "shard-extra", Size: int64(len(extra)), Checksum: extraDigest},
	}, newAggregate)
	require.NoError(t, err)

	extended, exists := ms.GetManifest("m1")
	require.True(t, exists)
	require.Len(t, extended.Shards, 2)
	assert.Equal(t, manifest.Shards[0], extended.Shards[0])
	assert.Equal(t, extended.DeclaredSize(), extended.TotalSize)

	// Re-using an existing shard id is rejected and leaves the manifest alone.
	err = ms.ExtendManifest("m1", []model.ShardDescriptor{
		{ID: manifest.Shards[0].ID, Size: 1, Checksum: extraDigest},
	}, newAggregate)
	assert.ErrorIs(t, err, ErrValidation)

	unchanged, _ := ms.GetManifest("m1")
	assert.Len(t, unchanged.Shards, 2)
}

func TestReconcileNamesFirstDivergentShard(t *testing.T) {
	ctx := context.Background()
	ms := NewManifestService()
	ss := NewShardService(newTestStore())

	blobs := [][]byte{[]byte("alpha"), []byte("beta"), []byte("gamma")}
	manifest := validManifest("m1", blobs...)
	require.NoError(t, ms.AddManifest(manifest))

	// Store only the first and third shards; the second stays missing.
	for _, i := range []int{0, 2} {
		d := manifest.Shards[i]
		_, err := ss.PutShard(ctx, "m1", d.ID, blobs[i], d.Checksum, 1)
		require.NoError(t, err)
	}

	err := ms.Reconcile("m1", ss)
	var intErr *IntegrityError
	require.ErrorAs(t, err, &intErr)
	assert.Equal(t, manifest.Shards[1].ID, intErr.ShardID)
	assert.Contains(t, intErr.Reason, "missing")

	// Fill the gap and reconciliation must pass.
	d := manifest.Shards[1]
	_, err = ss.PutShard(ctx, "m1", d.ID, blobs[1], d.Checksum, 1)
	require.NoError(t, err)
	require.NoError(t, ms.Reconcile("m1", ss))
}

func TestReconcileUnknownManifest(t *testing.T) {
	ms := NewManifestService()
	ss := NewShardService(newTestStore())

	err := ms.Reconcile("ghost", ss)
	assert.ErrorIs(t, err, ErrNotFound)
}
