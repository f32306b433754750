package constants

const (
	// MAX_SHARD_SIZE_BYTES is the hard per-chunk ceiling. The serving
	// transport has its own message-size limit; shards above this are
	// rejected regardless of caller identity.
	MAX_SHARD_SIZE_BYTES = 2 * 1024 * 1024

	// CHECKSUM_HEX_LEN is the length of a hex-encoded 256-bit digest.
	CHECKSUM_HEX_LEN = 64

	// DEFAULT_RATE_LIMIT is requests per identity per window; zero disables
	// rate limiting.
	DEFAULT_RATE_LIMIT        = 60
	DEFAULT_RATE_WINDOW_SECS  = 60
	DEFAULT_ACCESS_GRANT_SECS = 24 * 60 * 60
)
