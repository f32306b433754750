package registry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelvault/modelvault/core/constants"
	"github.com/modelvault/modelvault/lib/checksum"
)

func TestPutShardRoundTrip(t *testing.T) {
	ctx := context.Background()
	ss := NewShardService(newTestStore())

	data := []byte("shard contents")
	digest := checksum.Digest(data)

	shard, err := ss.PutShard(ctx, "m1", "s1", data, digest, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), shard.Size)
	assert.Equal(t, digest, shard.Checksum)
	assert.Equal(t, int64(42), shard.StoredAt)

	got, err := ss.GetShardBytes(ctx, "m1", "s1")
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, digest, checksum.Digest(got))
}

func TestPutShardAtCeiling(t *testing.T) {
	ctx := context.Background()
	ss := NewShardService(newTestStore())

	// Exactly at the ceiling is accepted.
	atLimit := bytes.Repeat([]byte{0x5A}, constants.MAX_SHARD_SIZE_BYTES)
	_, err := ss.PutShard(ctx, "m1", "s1", atLimit, checksum.Digest(atLimit), 1)
	require.NoError(t, err)

	// One byte over is not.
	over := append(atLimit, 0x5A)
	_, err = ss.PutShard(ctx, "m1", "s2", over, checksum.Digest(over), 1)
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, int64(constants.MAX_SHARD_SIZE_BYTES+1), capErr.Size)
	assert.Equal(t, int64(constants.MAX_SHARD_SIZE_BYTES), capErr.Limit)
}

func TestPutShardRejectsEmpty(t *testing.T) {
	ctx := context.Background()
	ss := NewShardService(newTestStore())

	_, err := ss.PutShard(ctx, "m1", "s1", nil, checksum.Digest(nil), 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPutShardChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	ss := NewShardService(newTestStore())

	_, err := ss.PutShard(ctx, "m1", "s1", []byte("actual"), checksum.Digest([]byte("declared")), 1)
	var intErr *IntegrityError
	require.ErrorAs(t, err, &intErr)
	assert.Equal(t, "s1", intErr.ShardID)

	// The failed write stored nothing.
	_, exists := ss.GetShard("m1", "s1")
	assert.False(t, exists)
	_, err = ss.GetShardBytes(ctx, "m1", "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutShardReplace(t *testing.T) {
	ctx := context.Background()
	ss := NewShardService(newTestStore())

	first := []byte("first")
	second := []byte("second version")

	_, err := ss.PutShard(ctx, "m1", "s1", first, checksum.Digest(first), 1)
	require.NoError(t, err)
	_, err = ss.PutShard(ctx, "m1", "s1", second, checksum.Digest(second), 2)
	require.NoError(t, err)

	got, err := ss.GetShardBytes(ctx, "m1", "s1")
	require.NoError(t, err)
	assert.Equal(t, second, got)

	count, total := ss.ShardStats()
	assert.Equal(t, 1, count)
	assert.Equal(t, int64(len(second)), total)
}

func TestGetShardBytesUnknown(t *testing.T) {
	ss := NewShardService(newTestStore())

	_, err := ss.GetShardBytes(context.Background(), "m1", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
