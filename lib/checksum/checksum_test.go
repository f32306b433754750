package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigest(t *testing.T) {
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", Digest([]byte("abc")))
	assert.Len(t, Digest(nil), 64)
}

func TestAggregateOrderSensitive(t *testing.T) {
	c1 := Digest([]byte("one"))
	c2 := Digest([]byte("two"))

	assert.Equal(t, Aggregate([]string{c1, c2}), Aggregate([]string{c1, c2}))
	assert.NotEqual(t, Aggregate([]string{c1, c2}), Aggregate([]string{c2, c1}))
	assert.NotEqual(t, Aggregate([]string{c1}), Aggregate([]string{c1, c2}))
}

func TestIsHexDigest(t *testing.T) {
	assert.True(t, IsHexDigest(Digest([]byte("x"))))
	assert.False(t, IsHexDigest("abc"))
	assert.False(t, IsHexDigest("zz7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"))
}
