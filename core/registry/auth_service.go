package registry

import (
	"github.com/modelvault/modelvault/core/model"
	"github.com/modelvault/modelvault/lib/cmap"
	"github.com/modelvault/modelvault/lib/ratelimit"
)

// AuthService is the authorization gate: the authorized-uploader set, the
// admin set, time-scoped access grants, and the rate-limit policy hook.
type AuthService struct {
	Uploaders cmap.Map[string, bool]
	Admins    cmap.Map[string, bool]
	Grants    cmap.Map[model.GrantKey, model.AccessGrant]
	Limiter   *ratelimit.Limiter
}

func NewAuthService(limiter *ratelimit.Limiter) *AuthService {
	return &AuthService{
		Uploaders: cmap.NewMap[string, bool](),
		Admins:    cmap.NewMap[string, bool](),
		Grants:    cmap.NewMap[model.GrantKey, model.AccessGrant](),
		Limiter:   limiter,
	}
}

func (as *AuthService) IsAuthorizedUploader(identity string) bool {
	_, exists := as.Uploaders.Get(identity)
	return exists
}

func (as *AuthService) IsAdmin(identity string) bool {
	_, exists := as.Admins.Get(identity)
	return exists
}

func (as *AuthService) AddUploader(identity string) {
	as.Uploaders.Set(identity, true)
}

func (as *AuthService) RemoveUploader(identity string) {
	as.Uploaders.Delete(identity)
}

func (as *AuthService) AddAdmin(identity string) {
	as.Admins.Set(identity, true)
	as.Uploaders.Set(identity, true)
}

// GrantAccess issues a grant expiring at now + durationSecs, superseding any
// prior grant for the same (model, grantee) pair.
func (as *AuthService) GrantAccess(modelID model.ModelID, grantee string, durationSecs, now int64) model.AccessGrant {
	grant := model.NewAccessGrant(modelID, grantee, now, now+durationSecs)
	as.Grants.Set(model.GrantKey{ModelID: modelID, Grantee: grantee}, grant)

	return grant
}

func (as *AuthService) HasLiveGrant(modelID model.ModelID, grantee string, now int64) bool {
	grant, exists := as.Grants.Get(model.GrantKey{ModelID: modelID, Grantee: grantee})
	if !exists {
		return false
	}

	return !grant.IsExpired(now)
}

// Allow applies the rate-limit policy hook for one request.
func (as *AuthService) Allow(identity string, now int64) bool {
	return as.Limiter.Allow(identity, now)
}

func (as *AuthService) UploaderList() []string {
	uploaders := make([]string, 0)
	as.Uploaders.Range(func(k, v any) bool {
		uploaders = append(uploaders, k.(string))
		return true
	})

	return uploaders
}
