package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	ds "github.com/ipfs/go-datastore"

	"github.com/modelvault/modelvault/core/model"
	"github.com/modelvault/modelvault/lib/ratelimit"
)

// Registry is the storage engine facade. It exclusively owns all mutable
// state; callers reach it only through the operations below. Operations are
// serialized by one mutex and are atomic unless they await the governance
// oracle, which is guarded by the per-model activation in-flight marker.
type Registry struct {
	*LifecycleService
	*ManifestService
	*ShardService
	*AuthService

	Audit  *AuditService
	Cfg    *Config
	Oracle GovernanceOracle

	store ds.Datastore
	mutex sync.Mutex
	nowFn func() int64
}

// ShardUpload is one shard submission: caller-declared checksum, bytes to
// measure.
type ShardUpload struct {
	ShardID  string
	Data     []byte
	Checksum string
}

// readableStatuses are the statuses whose shards may be served. Pending and
// Validation are withheld until reconciliation; Rejected and Withdrawn never
// reconciled or were retracted.
var readableStatuses = map[model.Status]bool{
	model.StatusGovernanceReview: true,
	model.StatusApproved:         true,
	model.StatusActive:           true,
	model.StatusSecurityReview:   true,
	model.StatusDeprecated:       true,
}

func NewRegistry(ctx context.Context, cfg *Config, store ds.Datastore, oracle GovernanceOracle) (*Registry, error) {
	audit, err := NewAuditService(ctx, store)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		LifecycleService: NewLifecycleService(),
		ManifestService:  NewManifestService(),
		ShardService:     NewShardService(store),
		AuthService:      NewAuthService(ratelimit.NewLimiter(cfg.RateLimit.Limit, cfg.RateLimit.WindowSecs)),
		Audit:            audit,
		Cfg:              cfg,
		Oracle:           oracle,
		store:            store,
		nowFn:            func() int64 { return time.Now().Unix() },
	}

	err = r.restore(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.Admin.Identity != "" {
		r.AuthService.AddAdmin(cfg.Admin.Identity)
	}

	return r, nil
}

// rejectOp audit-logs a rejected mutating attempt and hands the error back.
func (r *Registry) rejectOp(ctx context.Context, actor string, modelID model.ModelID, err error) error {
	r.Audit.Record(ctx, model.EventOperationRejected, actor, modelID, err.Error(), r.nowFn())

	return err
}

func (r *Registry) ensureNoInFlight(record *model.ModelRecord) error {
	if record.ActivationInFlight {
		return &ConcurrencyError{ModelID: record.ID}
	}

	return nil
}

// SubmitModel registers a new Pending model with its manifest. The manifest
// shard ordering is fixed here and never changes afterwards.
func (r *Registry) SubmitModel(ctx context.Context, actor string, id model.ModelID, meta model.ModelMeta, manifest model.Manifest) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.IsAuthorizedUploader(actor) {
		return r.rejectOp(ctx, actor, id, &AuthorizationError{Actor: actor, Reason: "not an authorized uploader"})
	}

	if _, exists := r.GetModel(id); exists {
		return r.rejectOp(ctx, actor, id, &ValidationError{ModelID: id, Reason: "duplicate model id"})
	}

	err := validateMeta(id, &meta)
	if err != nil {
		return r.rejectOp(ctx, actor, id, err)
	}

	manifest.ModelID = id
	err = r.AddManifest(manifest)
	if err != nil {
		return r.rejectOp(ctx, actor, id, err)
	}

	now := r.nowFn()
	r.AddModel(model.NewModelRecord(id, meta, actor, now))
	r.Audit.Record(ctx, model.EventModelSubmitted, actor, id,
		fmt.Sprintf("manifest declares %d shards, %d bytes", len(manifest.Shards), manifest.TotalSize), now)

	return nil
}

func validateMeta(id model.ModelID, meta *model.ModelMeta) error {
	if meta.Name == "" {
		return &ValidationError{ModelID: id, Reason: "model name is empty"}
	}

	if meta.Architecture == "" {
		return &ValidationError{ModelID: id, Reason: "model architecture is empty"}
	}

	if meta.ParamCount <= 0 {
		return &ValidationError{ModelID: id, Reason: "parameter count must be positive"}
	}

	return nil
}

// SubmitShards stores manifest-declared shards while the model is Pending.
// Resubmitting a shard id replaces the prior chunk; once the model leaves
// Pending every shard write is rejected, whoever the caller is.
func (r *Registry) SubmitShards(ctx context.Context, actor string, id model.ModelID, uploads []ShardUpload) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.IsAuthorizedUploader(actor) {
		return r.rejectOp(ctx, actor, id, &AuthorizationError{Actor: actor, Reason: "not an authorized uploader"})
	}

	record, exists := r.GetModel(id)
	if !exists {
		return r.rejectOp(ctx, actor, id, &NotFoundError{Kind: "model", ID: id})
	}

	if err := r.ensureNoInFlight(record); err != nil {
		return r.rejectOp(ctx, actor, id, err)
	}

	if record.Status != model.StatusPending {
		return r.rejectOp(ctx, actor, id, &StateTransitionError{ModelID: id, From: record.Status, To: model.StatusPending})
	}

	manifest, _ := r.GetManifest(id)
	now := r.nowFn()

	for _, upload := range uploads {
		descriptor, declared := manifest.Descriptor(upload.ShardID)
		if !declared {
			return r.rejectOp(ctx, actor, id, &ValidationError{
				ModelID: id,
				Reason:  fmt.Sprintf("shard %s is not declared in the manifest", upload.ShardID),
			})
		}

		if upload.Checksum != descriptor.Checksum {
			return r.rejectOp(ctx, actor, id, &IntegrityError{
				ModelID: id,
				ShardID: upload.ShardID,
				Reason:  "submitted checksum does not match the manifest descriptor",
			})
		}

		_, err := r.PutShard(ctx, id, upload.ShardID, upload.Data, descriptor.Checksum, now)
		if err != nil {
			return r.rejectOp(ctx, actor, id, err)
		}
	}

	r.Audit.Record(ctx, model.EventShardStored, actor, id, fmt.Sprintf("stored %d shards", len(uploads)), now)

	return nil
}

// ExtendManifest appends shard descriptors while the model is Pending.
func (r *Registry) ExtendManifest(ctx context.Context, actor string, id model.ModelID, descriptors []model.ShardDescriptor, newAggregate string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.IsAuthorizedUploader(actor) {
		return r.rejectOp(ctx, actor, id, &AuthorizationError{Actor: actor, Reason: "not an authorized uploader"})
	}

	record, exists := r.GetModel(id)
	if !exists {
		return r.rejectOp(ctx, actor, id, &NotFoundError{Kind: "model", ID: id})
	}

	if record.Status != model.StatusPending {
		return r.rejectOp(ctx, actor, id, &StateTransitionError{ModelID: id, From: record.Status, To: model.StatusPending})
	}

	err := r.ManifestService.ExtendManifest(id, descriptors, newAggregate)
	if err != nil {
		return r.rejectOp(ctx, actor, id, err)
	}

	r.Audit.Record(ctx, model.EventManifestExtended, actor, id,
		fmt.Sprintf("manifest extended by %d shards", len(descriptors)), r.nowFn())

	return nil
}

// CompleteSubmission moves a Pending model into Validation, reconciles the
// stored shards against the manifest, and lands on GovernanceReview or
// Rejected in the same call.
func (r *Registry) CompleteSubmission(ctx context.Context, actor string, id model.ModelID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.IsAuthorizedUploader(actor) {
		return r.rejectOp(ctx, actor, id, &AuthorizationError{Actor: actor, Reason: "not an authorized uploader"})
	}

	now := r.nowFn()
	_, err := r.Transition(id, model.StatusValidation, now)
	if err != nil {
		return r.rejectOp(ctx, actor, id, err)
	}

	err = r.Reconcile(id, r.ShardService)
	if err != nil {
		_, _ = r.Transition(id, model.StatusRejected, now)
		r.Audit.Record(ctx, model.EventValidationFailed, actor, id, err.Error(), now)

		return err
	}

	_, _ = r.Transition(id, model.StatusGovernanceReview, now)
	r.Audit.Record(ctx, model.EventValidationPassed, actor, id, "integrity reconciliation succeeded", now)

	return nil
}

// ValidateModelIntegrity is the idempotent, side-effect-free reconciliation
// query. A divergence on an Active model is fatal storage corruption.
func (r *Registry) ValidateModelIntegrity(id model.ModelID) error {
	if _, exists := r.GetModel(id); !exists {
		return &NotFoundError{Kind: "model", ID: id}
	}

	return r.Reconcile(id, r.ShardService)
}

// ResolveGovernance consults the oracle for a model in GovernanceReview and
// applies the verdict. A Pending verdict changes nothing; callers retry.
func (r *Registry) ResolveGovernance(ctx context.Context, actor string, id model.ModelID, proposalID string) (model.Verdict, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	record, exists := r.GetModel(id)
	if !exists {
		return "", r.rejectOp(ctx, actor, id, &NotFoundError{Kind: "model", ID: id})
	}

	if err := r.ensureNoInFlight(record); err != nil {
		return "", r.rejectOp(ctx, actor, id, err)
	}

	if record.Status != model.StatusGovernanceReview {
		return "", r.rejectOp(ctx, actor, id, &StateTransitionError{ModelID: id, From: record.Status, To: model.StatusApproved})
	}

	verdict, err := r.Oracle.VerdictFor(proposalID, id)
	if err != nil {
		return "", r.rejectOp(ctx, actor, id, err)
	}

	now := r.nowFn()
	switch verdict {
	case model.VerdictApproved:
		updated, _ := r.Transition(id, model.StatusApproved, now)
		updated.ProposalID = proposalID
		r.UpdateModel(*updated)
		r.Audit.Record(ctx, model.EventModelApproved, actor, id, fmt.Sprintf("proposal %s approved", proposalID), now)
	case model.VerdictRejected:
		updated, _ := r.Transition(id, model.StatusRejected, now)
		updated.ProposalID = proposalID
		r.UpdateModel(*updated)
		r.Audit.Record(ctx, model.EventModelRejected, actor, id, fmt.Sprintf("proposal %s rejected", proposalID), now)
	}

	return verdict, nil
}

// ActivateModel confirms the approved verdict with the oracle and moves an
// Approved model to Active. The oracle call is a suspension point: the
// in-flight marker is set before it and the status is re-checked after,
// so no other operation on this model can race the await.
func (r *Registry) ActivateModel(ctx context.Context, actor string, id model.ModelID, proposalID string) error {
	r.mutex.Lock()

	record, exists := r.GetModel(id)
	if !exists {
		defer r.mutex.Unlock()
		return r.rejectOp(ctx, actor, id, &NotFoundError{Kind: "model", ID: id})
	}

	if err := r.ensureNoInFlight(record); err != nil {
		defer r.mutex.Unlock()
		return r.rejectOp(ctx, actor, id, err)
	}

	if record.Status != model.StatusApproved {
		defer r.mutex.Unlock()
		return r.rejectOp(ctx, actor, id, &StateTransitionError{ModelID: id, From: record.Status, To: model.StatusActive})
	}

	if record.ProposalID != proposalID {
		defer r.mutex.Unlock()
		return r.rejectOp(ctx, actor, id, &AuthorizationError{
			Actor:  actor,
			Reason: fmt.Sprintf("proposal %s is not the approving proposal for model %s", proposalID, id),
		})
	}

	record.ActivationInFlight = true
	r.UpdateModel(*record)
	r.mutex.Unlock()

	verdict, oracleErr := r.Oracle.VerdictFor(proposalID, id)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	record, exists = r.GetModel(id)
	if !exists {
		return r.rejectOp(ctx, actor, id, &NotFoundError{Kind: "model", ID: id})
	}

	record.ActivationInFlight = false
	r.UpdateModel(*record)

	if oracleErr != nil {
		return r.rejectOp(ctx, actor, id, oracleErr)
	}

	if verdict != model.VerdictApproved {
		return r.rejectOp(ctx, actor, id, &AuthorizationError{
			Actor:  actor,
			Reason: fmt.Sprintf("proposal %s does not carry an approved verdict", proposalID),
		})
	}

	// Re-check after the suspension point: the marker may have been cleared
	// administratively and the state moved while we awaited the oracle.
	if record.Status != model.StatusApproved {
		return r.rejectOp(ctx, actor, id, &StateTransitionError{ModelID: id, From: record.Status, To: model.StatusActive})
	}

	now := r.nowFn()
	updated, err := r.Transition(id, model.StatusActive, now)
	if err != nil {
		return r.rejectOp(ctx, actor, id, err)
	}

	updated.ActivatedAt = now
	r.UpdateModel(*updated)
	r.Audit.Record(ctx, model.EventModelActivated, actor, id, fmt.Sprintf("activated under proposal %s", proposalID), now)

	return nil
}

// ClearActivationMarker is the administrative escape hatch for a verdict
// that never arrives. It does not transition the model.
func (r *Registry) ClearActivationMarker(ctx context.Context, admin string, id model.ModelID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.IsAdmin(admin) {
		return r.rejectOp(ctx, admin, id, &AuthorizationError{Actor: admin, Reason: "not an administrator"})
	}

	record, exists := r.GetModel(id)
	if !exists {
		return r.rejectOp(ctx, admin, id, &NotFoundError{Kind: "model", ID: id})
	}

	record.ActivationInFlight = false
	r.UpdateModel(*record)
	r.Audit.Record(ctx, model.EventMarkerCleared, admin, id, "activation in-flight marker cleared", r.nowFn())

	return nil
}

// DeprecateModel retires an Active model voluntarily, or confirms a
// security issue on a model under SecurityReview.
func (r *Registry) DeprecateModel(ctx context.Context, actor string, id model.ModelID, reason string, replacementID model.ModelID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	record, exists := r.GetModel(id)
	if !exists {
		return r.rejectOp(ctx, actor, id, &NotFoundError{Kind: "model", ID: id})
	}

	if err := r.ensureNoInFlight(record); err != nil {
		return r.rejectOp(ctx, actor, id, err)
	}

	now := r.nowFn()
	updated, err := r.Transition(id, model.StatusDeprecated, now)
	if err != nil {
		return r.rejectOp(ctx, actor, id, err)
	}

	updated.DeprecateReason = reason
	updated.ReplacedBy = replacementID
	r.UpdateModel(*updated)
	r.Audit.Record(ctx, model.EventModelDeprecated, actor, id, reason, now)

	return nil
}

// EmergencySuspend is the administrative override moving Active to
// SecurityReview immediately, independent of any governance verdict.
func (r *Registry) EmergencySuspend(ctx context.Context, admin string, id model.ModelID, reason string, durationHours int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.IsAdmin(admin) {
		return r.rejectOp(ctx, admin, id, &AuthorizationError{Actor: admin, Reason: "not an administrator"})
	}

	record, exists := r.GetModel(id)
	if !exists {
		return r.rejectOp(ctx, admin, id, &NotFoundError{Kind: "model", ID: id})
	}

	if err := r.ensureNoInFlight(record); err != nil {
		return r.rejectOp(ctx, admin, id, err)
	}

	now := r.nowFn()
	updated, err := r.Transition(id, model.StatusSecurityReview, now)
	if err != nil {
		return r.rejectOp(ctx, admin, id, err)
	}

	updated.SuspendReason = reason
	updated.SuspendedUntil = now + durationHours*3600
	r.UpdateModel(*updated)
	r.Audit.Record(ctx, model.EventSecurityHold, admin, id, reason, now)

	return nil
}

// ClearSecurityHold returns a model under SecurityReview to Active. Any
// other status is rejected: re-entering Active from Approved goes through
// ActivateModel and its verdict confirmation, never through here.
func (r *Registry) ClearSecurityHold(ctx context.Context, admin string, id model.ModelID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.IsAdmin(admin) {
		return r.rejectOp(ctx, admin, id, &AuthorizationError{Actor: admin, Reason: "not an administrator"})
	}

	record, exists := r.GetModel(id)
	if !exists {
		return r.rejectOp(ctx, admin, id, &NotFoundError{Kind: "model", ID: id})
	}

	if err := r.ensureNoInFlight(record); err != nil {
		return r.rejectOp(ctx, admin, id, err)
	}

	if record.Status != model.StatusSecurityReview {
		return r.rejectOp(ctx, admin, id, &StateTransitionError{ModelID: id, From: record.Status, To: model.StatusActive})
	}

	now := r.nowFn()
	updated, err := r.Transition(id, model.StatusActive, now)
	if err != nil {
		return r.rejectOp(ctx, admin, id, err)
	}

	updated.SuspendReason = ""
	updated.SuspendedUntil = 0
	r.UpdateModel(*updated)
	r.Audit.Record(ctx, model.EventSecurityCleared, admin, id, "security concern cleared", now)

	return nil
}

// WithdrawModel retracts a Pending model before validation. Only the
// submitter or an administrator may withdraw.
func (r *Registry) WithdrawModel(ctx context.Context, actor string, id model.ModelID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	record, exists := r.GetModel(id)
	if !exists {
		return r.rejectOp(ctx, actor, id, &NotFoundError{Kind: "model", ID: id})
	}

	if actor != record.Submitter && !r.IsAdmin(actor) {
		return r.rejectOp(ctx, actor, id, &AuthorizationError{Actor: actor, Reason: "only the submitter or an administrator may withdraw"})
	}

	now := r.nowFn()
	_, err := r.Transition(id, model.StatusWithdrawn, now)
	if err != nil {
		return r.rejectOp(ctx, actor, id, err)
	}

	r.Audit.Record(ctx, model.EventModelWithdrawn, actor, id, "withdrawn before validation", now)

	return nil
}

// GrantBadge appends a badge to a model record. Badges are governance
// bookkeeping and are exempt from the Active-metadata freeze.
func (r *Registry) GrantBadge(ctx context.Context, admin string, id model.ModelID, badgeType model.BadgeType) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.IsAdmin(admin) {
		return r.rejectOp(ctx, admin, id, &AuthorizationError{Actor: admin, Reason: "not an administrator"})
	}

	record, exists := r.GetModel(id)
	if !exists {
		return r.rejectOp(ctx, admin, id, &NotFoundError{Kind: "model", ID: id})
	}

	now := r.nowFn()
	record.Badges = append(record.Badges, model.Badge{
		Type:      badgeType,
		GrantedAt: now,
		GrantedBy: admin,
	})
	r.UpdateModel(*record)
	r.Audit.Record(ctx, model.EventBadgeGranted, admin, id, string(badgeType), now)

	return nil
}

// AddAuthorizedUploader and RemoveAuthorizedUploader mutate the uploader
// set; administrative only.
func (r *Registry) AddAuthorizedUploader(ctx context.Context, admin, identity string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.IsAdmin(admin) {
		return r.rejectOp(ctx, admin, "", &AuthorizationError{Actor: admin, Reason: "not an administrator"})
	}

	r.AddUploader(identity)
	r.Audit.Record(ctx, model.EventUploaderAdded, admin, "", identity, r.nowFn())

	return nil
}

func (r *Registry) RemoveAuthorizedUploader(ctx context.Context, admin, identity string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.IsAdmin(admin) {
		return r.rejectOp(ctx, admin, "", &AuthorizationError{Actor: admin, Reason: "not an administrator"})
	}

	r.RemoveUploader(identity)
	r.Audit.Record(ctx, model.EventUploaderRemoved, admin, "", identity, r.nowFn())

	return nil
}

// RequestModelAccess issues a time-bounded grant to read an Active model's
// shards, superseding any prior grant for the same pair.
func (r *Registry) RequestModelAccess(ctx context.Context, grantee string, id model.ModelID, durationSecs int64) (*model.AccessGrant, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := r.nowFn()
	if !r.Allow(grantee, now) {
		return nil, r.rejectOp(ctx, grantee, id, &AuthorizationError{Actor: grantee, Reason: "rate limit exceeded"})
	}

	record, exists := r.GetModel(id)
	if !exists {
		return nil, r.rejectOp(ctx, grantee, id, &NotFoundError{Kind: "model", ID: id})
	}

	if record.Status != model.StatusActive {
		return nil, r.rejectOp(ctx, grantee, id, &StateTransitionError{ModelID: id, From: record.Status, To: model.StatusActive})
	}

	grant := r.GrantAccess(id, grantee, durationSecs, now)
	r.Audit.Record(ctx, model.EventAccessGranted, grantee, id, fmt.Sprintf("grant expires at %d", grant.ExpiresAt), now)

	return &grant, nil
}

// GetShardData serves one shard's bytes. Unreconciled and retracted models
// are withheld; restricted models additionally require a live grant.
// Not serialized by r.mutex: it writes no registry state, and everything it
// touches (cmap indexes, limiter, audit log, datastore) carries its own lock,
// so shard reads never queue behind mutating operations.
func (r *Registry) GetShardData(ctx context.Context, actor string, id model.ModelID, shardID string) ([]byte, error) {
	now := r.nowFn()
	if !r.Allow(actor, now) {
		return nil, r.rejectOp(ctx, actor, id, &AuthorizationError{Actor: actor, Reason: "rate limit exceeded"})
	}

	record, exists := r.GetModel(id)
	if !exists {
		return nil, r.rejectOp(ctx, actor, id, &NotFoundError{Kind: "model", ID: id})
	}

	if !readableStatuses[record.Status] {
		return nil, r.rejectOp(ctx, actor, id, &AuthorizationError{
			Actor:  actor,
			Reason: fmt.Sprintf("model in status %s is not served", record.Status),
		})
	}

	if record.Meta.Restricted && !r.HasLiveGrant(id, actor, now) {
		return nil, r.rejectOp(ctx, actor, id, &AuthorizationError{Actor: actor, Reason: "no live access grant for restricted model"})
	}

	data, err := r.GetShardBytes(ctx, id, shardID)
	if err != nil {
		return nil, r.rejectOp(ctx, actor, id, err)
	}

	r.Audit.Record(ctx, model.EventShardAccess, actor, id, fmt.Sprintf("shard %s read", shardID), now)

	return data, nil
}

// GetManifestRecord and GetModelMeta are plain lookups.
func (r *Registry) GetManifestRecord(id model.ModelID) (*model.Manifest, error) {
	manifest, exists := r.GetManifest(id)
	if !exists {
		return nil, &NotFoundError{Kind: "manifest", ID: id}
	}

	return manifest, nil
}

func (r *Registry) GetModelMeta(id model.ModelID) (*model.ModelRecord, error) {
	record, exists := r.GetModel(id)
	if !exists {
		return nil, &NotFoundError{Kind: "model", ID: id}
	}

	return record, nil
}

// GetAuditLog proxies the audit query interface.
func (r *Registry) GetAuditLog(filter AuditFilter) []model.AuditEntry {
	return r.Audit.Query(filter)
}
