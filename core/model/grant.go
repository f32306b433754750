package model

import "github.com/google/uuid"

// AccessGrant is a time-bounded permission for one identity to read one
// model's shards. A new grant for the same (model, grantee) pair supersedes
// the old one; grants expire by timestamp comparison and are never revoked.
type AccessGrant struct {
	ID        uuid.UUID
	ModelID   ModelID
	Grantee   string
	GrantedAt int64
	ExpiresAt int64
}

func NewAccessGrant(modelID ModelID, grantee string, now, expiresAt int64) AccessGrant {
	return AccessGrant{
		ID:        uuid.New(),
		ModelID:   modelID,
		Grantee:   grantee,
		GrantedAt: now,
		ExpiresAt: expiresAt,
	}
}

func (g *AccessGrant) IsExpired(now int64) bool {
	return g.ExpiresAt <= now
}

type GrantKey struct {
	ModelID ModelID
	Grantee string
}
