package registry

import (
	"github.com/google/uuid"

	"github.com/modelvault/modelvault/core/model"
)

// Registry is the RPC surface the engine exposes.
type Registry interface {
	// SubmitModel ...
	SubmitModel(args SubmitModelArgs, reply *SubmitModelReply) error
	// SubmitShards ...
	SubmitShards(args SubmitShardsArgs, reply *SubmitShardsReply) error
	// ExtendManifest ...
	ExtendManifest(args ExtendManifestArgs, reply *ExtendManifestReply) error
	// CompleteSubmission ...
	CompleteSubmission(args CompleteSubmissionArgs, reply *CompleteSubmissionReply) error
	// ValidateModelIntegrity ...
	ValidateModelIntegrity(args ValidateArgs, reply *ValidateReply) error
	// ResolveGovernance ...
	ResolveGovernance(args ResolveGovernanceArgs, reply *ResolveGovernanceReply) error
	// ActivateModel ...
	ActivateModel(args ActivateModelArgs, reply *ActivateModelReply) error
	// ClearActivationMarker ...
	ClearActivationMarker(args ClearMarkerArgs, reply *ClearMarkerReply) error
	// DeprecateModel ...
	DeprecateModel(args DeprecateModelArgs, reply *DeprecateModelReply) error
	// EmergencySuspend ...
	EmergencySuspend(args EmergencySuspendArgs, reply *EmergencySuspendReply) error
	// ClearSecurityHold ...
	ClearSecurityHold(args ClearSecurityHoldArgs, reply *ClearSecurityHoldReply) error
	// WithdrawModel ...
	WithdrawModel(args WithdrawModelArgs, reply *WithdrawModelReply) error
	// GrantBadge ...
	GrantBadge(args GrantBadgeArgs, reply *GrantBadgeReply) error
	// GetManifest ...
	GetManifest(args GetManifestArgs, reply *GetManifestReply) error
	// GetModelMeta ...
	GetModelMeta(args GetModelMetaArgs, reply *GetModelMetaReply) error
	// GetShard ...
	GetShard(args GetShardArgs, reply *GetShardReply) error
	// ListModels ...
	ListModels(args ListModelsArgs, reply *ListModelsReply) error
	// AddAuthorizedUploader ...
	AddAuthorizedUploader(args UploaderArgs, reply *UploaderReply) error
	// RemoveAuthorizedUploader ...
	RemoveAuthorizedUploader(args UploaderArgs, reply *UploaderReply) error
	// RequestModelAccess ...
	RequestModelAccess(args RequestAccessArgs, reply *RequestAccessReply) error
	// GetAuditLog ...
	GetAuditLog(args GetAuditLogArgs, reply *GetAuditLogReply) error
	// Metrics ...
	Metrics(args MetricsArgs, reply *MetricsReply) error
	// Health ...
	Health(args HealthArgs, reply *HealthReply) error
}

type SubmitModelArgs struct {
	Actor    string
	ModelID  string
	Meta     model.ModelMeta
	Manifest model.Manifest
}

type SubmitModelReply struct {
}

type ShardUpload struct {
	ShardID  string
	Data     []byte
	Checksum string
}

type SubmitShardsArgs struct {
	Actor   string
	ModelID string
	Shards  []ShardUpload
}

type SubmitShardsReply struct {
	Stored int
}

type ExtendManifestArgs struct {
	Actor             string
	ModelID           string
	Shards            []model.ShardDescriptor
	AggregateChecksum string
}

type ExtendManifestReply struct {
}

type CompleteSubmissionArgs struct {
	Actor   string
	ModelID string
}

type CompleteSubmissionReply struct {
	Status string
}

type ValidateArgs struct {
	ModelID string
}

type ValidateReply struct {
}

type ResolveGovernanceArgs struct {
	Actor      string
	ModelID    string
	ProposalID string
}

type ResolveGovernanceReply struct {
	Verdict string
}

type ActivateModelArgs struct {
	Actor      string
	ModelID    string
	ProposalID string
}

type ActivateModelReply struct {
}

type ClearMarkerArgs struct {
	Admin   string
	ModelID string
}

type ClearMarkerReply struct {
}

type DeprecateModelArgs struct {
	Actor         string
	ModelID       string
	Reason        string
	ReplacementID string
}

type DeprecateModelReply struct {
}

type EmergencySuspendArgs struct {
	Admin         string
	ModelID       string
	Reason        string
	DurationHours int64
}

type EmergencySuspendReply struct {
}

type ClearSecurityHoldArgs struct {
	Admin   string
	ModelID string
}

type ClearSecurityHoldReply struct {
}

type WithdrawModelArgs struct {
	Actor   string
	ModelID string
}

type WithdrawModelReply struct {
}

type GrantBadgeArgs struct {
	Admin   string
	ModelID string
	Badge   string
}

type GrantBadgeReply struct {
}

type GetManifestArgs struct {
	ModelID string
}

type GetManifestReply struct {
	Manifest model.Manifest
}

type GetModelMetaArgs struct {
	ModelID string
}

type GetModelMetaReply struct {
	Record model.ModelRecord
}

type GetShardArgs struct {
	Actor   string
	ModelID string
	ShardID string
}

type GetShardReply struct {
	Data []byte
}

type ListModelsArgs struct {
	Status string
	Limit  int
}

type ListModelsReply struct {
	ModelIDs []string
}

type UploaderArgs struct {
	Admin    string
	Identity string
}

type UploaderReply struct {
}

type RequestAccessArgs struct {
	Grantee      string
	ModelID      string
	DurationSecs int64
}

type RequestAccessReply struct {
	GrantID   uuid.UUID
	ExpiresAt int64
}

type GetAuditLogArgs struct {
	ModelID string
	Kinds   []string
	From    int64
	To      int64
}

type GetAuditLogReply struct {
	Entries []model.AuditEntry
}

type MetricsArgs struct {
}

type MetricsReply struct {
	TotalModels     int
	ModelsByStatus  map[string]int
	TotalShards     int
	TotalShardBytes int64
	AuditEntries    int
}

type HealthArgs struct {
}

type HealthReply struct {
	Status string
}
