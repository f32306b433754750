package main

import (
	"context"

	"github.com/modelvault/modelvault/core/model"
	registryCore "github.com/modelvault/modelvault/core/registry"
	registryRPC "github.com/modelvault/modelvault/rpc/registry"
)

type RegistryAPI struct {
	Registry *registryCore.Registry
}

func NewRegistryAPI(r *registryCore.Registry) *RegistryAPI {
	return &RegistryAPI{
		Registry: r,
	}
}

func (a *RegistryAPI) SubmitModel(args *registryRPC.SubmitModelArgs, _ *registryRPC.SubmitModelReply) error {
	log.Infow("rpc", "event", "RegistryAPI.SubmitModel", "modelID", args.ModelID, "actor", args.Actor)

	return a.Registry.SubmitModel(context.Background(), args.Actor, args.ModelID, args.Meta, args.Manifest)
}

func (a *RegistryAPI) SubmitShards(args *registryRPC.SubmitShardsArgs, reply *registryRPC.SubmitShardsReply) error {
	log.Infow("rpc", "event", "RegistryAPI.SubmitShards", "modelID", args.ModelID, "shards", len(args.Shards))

	uploads := make([]registryCore.ShardUpload, 0, len(args.Shards))
	for _, s := range args.Shards {
		uploads = append(uploads, registryCore.ShardUpload{
			ShardID:  s.ShardID,
			Data:     s.Data,
			Checksum: s.Checksum,
		})
	}

	err := a.Registry.SubmitShards(context.Background(), args.Actor, args.ModelID, uploads)
	if err != nil {
		return err
	}

	reply.Stored = len(uploads)

	return nil
}

func (a *RegistryAPI) ExtendManifest(args *registryRPC.ExtendManifestArgs, _ *registryRPC.ExtendManifestReply) error {
	log.Infow("rpc", "event", "RegistryAPI.ExtendManifest", "modelID", args.ModelID, "shards", len(args.Shards))

	return a.Registry.ExtendManifest(context.Background(), args.Actor, args.ModelID, args.Shards, args.AggregateChecksum)
}

func (a *RegistryAPI) CompleteSubmission(args *registryRPC.CompleteSubmissionArgs, reply *registryRPC.CompleteSubmissionReply) error {
	log.Infow("rpc", "event", "RegistryAPI.CompleteSubmission", "modelID", args.ModelID)

	err := a.Registry.CompleteSubmission(context.Background(), args.Actor, args.ModelID)
	if err != nil {
		return err
	}

	record, lookupErr := a.Registry.GetModelMeta(args.ModelID)
	if lookupErr == nil {
		reply.Status = string(record.Status)
	}

	return nil
}

func (a *RegistryAPI) ValidateModelIntegrity(args *registryRPC.ValidateArgs, _ *registryRPC.ValidateReply) error {
	log.Infow("rpc", "event", "RegistryAPI.ValidateModelIntegrity", "modelID", args.ModelID)

	return a.Registry.ValidateModelIntegrity(args.ModelID)
}

func (a *RegistryAPI) ResolveGovernance(args *registryRPC.ResolveGovernanceArgs, reply *registryRPC.ResolveGovernanceReply) error {
	log.Infow("rpc", "event", "RegistryAPI.ResolveGovernance", "modelID", args.ModelID, "proposalID", args.ProposalID)

	verdict, err := a.Registry.ResolveGovernance(context.Background(), args.Actor, args.ModelID, args.ProposalID)
	if err != nil {
		return err
	}

	reply.Verdict = string(verdict)

	return nil
}

func (a *RegistryAPI) ActivateModel(args *registryRPC.ActivateModelArgs, _ *registryRPC.ActivateModelReply) error {
	log.Infow("rpc", "event", "RegistryAPI.ActivateModel", "modelID", args.ModelID, "proposalID", args.ProposalID)

	return a.Registry.ActivateModel(context.Background(), args.Actor, args.ModelID, args.ProposalID)
}

func (a *RegistryAPI) ClearActivationMarker(args *registryRPC.ClearMarkerArgs, _ *registryRPC.ClearMarkerReply) error {
	log.Infow("rpc", "event", "RegistryAPI.ClearActivationMarker", "modelID", args.ModelID)

	return a.Registry.ClearActivationMarker(context.Background(), args.Admin, args.ModelID)
}

func (a *RegistryAPI) DeprecateModel(args *registryRPC.DeprecateModelArgs, _ *registryRPC.DeprecateModelReply) error {
	log.Infow("rpc", "event", "RegistryAPI.DeprecateModel", "modelID", args.ModelID)

	return a.Registry.DeprecateModel(context.Background(), args.Actor, args.ModelID, args.Reason, args.ReplacementID)
}

func (a *RegistryAPI) EmergencySuspend(args *registryRPC.EmergencySuspendArgs, _ *registryRPC.EmergencySuspendReply) error {
	log.Infow("rpc", "event", "RegistryAPI.EmergencySuspend", "modelID", args.ModelID, "reason", args.Reason)

	return a.Registry.EmergencySuspend(context.Background(), args.Admin, args.ModelID, args.Reason, args.DurationHours)
}

func (a *RegistryAPI) ClearSecurityHold(args *registryRPC.ClearSecurityHoldArgs, _ *registryRPC.ClearSecurityHoldReply) error {
	log.Infow("rpc", "event", "RegistryAPI.ClearSecurityHold", "modelID", args.ModelID)

	return a.Registry.ClearSecurityHold(context.Background(), args.Admin, args.ModelID)
}

func (a *RegistryAPI) WithdrawModel(args *registryRPC.WithdrawModelArgs, _ *registryRPC.WithdrawModelReply) error {
	log.Infow("rpc", "event", "RegistryAPI.WithdrawModel", "modelID", args.ModelID)

	return a.Registry.WithdrawModel(context.Background(), args.Actor, args.ModelID)
}

func (a *RegistryAPI) GrantBadge(args *registryRPC.GrantBadgeArgs, _ *registryRPC.GrantBadgeReply) error {
	log.Infow("rpc", "event", "RegistryAPI.GrantBadge", "modelID", args.ModelID, "badge", args.Badge)

	badge, ok := model.ParseBadgeType(args.Badge)
	if !ok {
		return &registryCore.ValidationError{ModelID: args.ModelID, Reason: "unknown badge type"}
	}

	return a.Registry.GrantBadge(context.Background(), args.Admin, args.ModelID, badge)
}

func (a *RegistryAPI) GetManifest(args *registryRPC.GetManifestArgs, reply *registryRPC.GetManifestReply) error {
	manifest, err := a.Registry.GetManifestRecord(args.ModelID)
	if err != nil {
		return err
	}

	reply.Manifest = *manifest

	return nil
}

func (a *RegistryAPI) GetModelMeta(args *registryRPC.GetModelMetaArgs, reply *registryRPC.GetModelMetaReply) error {
	record, err := a.Registry.GetModelMeta(args.ModelID)
	if err != nil {
		return err
	}

	reply.Record = *record

	return nil
}

func (a *RegistryAPI) GetShard(args *registryRPC.GetShardArgs, reply *registryRPC.GetShardReply) error {
	log.Infow("rpc", "event", "RegistryAPI.GetShard", "modelID", args.ModelID, "shardID", args.ShardID)

	data, err := a.Registry.GetShardData(context.Background(), args.Actor, args.ModelID, args.ShardID)
	if err != nil {
		return err
	}

	reply.Data = data

	return nil
}

func (a *RegistryAPI) ListModels(args *registryRPC.ListModelsArgs, reply *registryRPC.ListModelsReply) error {
	var filter *model.Status
	if args.Status != "" {
		status, ok := model.ParseStatus(args.Status)
		if !ok {
			return &registryCore.ValidationError{Reason: "unknown status filter"}
		}

		filter = &status
	}

	records := a.Registry.ListModels(filter, args.Limit)
	reply.ModelIDs = make([]string, 0, len(records))
	for _, record := range records {
		reply.ModelIDs = append(reply.ModelIDs, record.ID)
	}

	return nil
}

func (a *RegistryAPI) AddAuthorizedUploader(args *registryRPC.UploaderArgs, _ *registryRPC.UploaderReply) error {
	log.Infow("rpc", "event", "RegistryAPI.AddAuthorizedUploader", "identity", args.Identity)

	return a.Registry.AddAuthorizedUploader(context.Background(), args.Admin, args.Identity)
}

func (a *RegistryAPI) RemoveAuthorizedUploader(args *registryRPC.UploaderArgs, _ *registryRPC.UploaderReply) error {
	log.Infow("rpc", "event", "RegistryAPI.RemoveAuthorizedUploader", "identity", args.Identity)

	return a.Registry.RemoveAuthorizedUploader(context.Background(), args.Admin, args.Identity)
}

func (a *RegistryAPI) RequestModelAccess(args *registryRPC.RequestAccessArgs, reply *registryRPC.RequestAccessReply) error {
	log.Infow("rpc", "event", "RegistryAPI.RequestModelAccess", "modelID", args.ModelID, "grantee", args.Grantee)

	grant, err := a.Registry.RequestModelAccess(context.Background(), args.Grantee, args.ModelID, args.DurationSecs)
	if err != nil {
		return err
	}

	reply.GrantID = grant.ID
	reply.ExpiresAt = grant.ExpiresAt

	return nil
}

func (a *RegistryAPI) GetAuditLog(args *registryRPC.GetAuditLogArgs, reply *registryRPC.GetAuditLogReply) error {
	filter := registryCore.AuditFilter{
		ModelID: args.ModelID,
		From:    args.From,
		To:      args.To,
	}

	for _, k := range args.Kinds {
		kind, ok := model.ParseEventKind(k)
		if !ok {
			return &registryCore.ValidationError{Reason: "unknown event kind"}
		}

		filter.Kinds = append(filter.Kinds, kind)
	}

	reply.Entries = a.Registry.GetAuditLog(filter)

	return nil
}

func (a *RegistryAPI) Metrics(_ *registryRPC.MetricsArgs, reply *registryRPC.MetricsReply) error {
	m := a.Registry.Metrics()

	reply.TotalModels = m.TotalModels
	reply.TotalShards = m.TotalShards
	reply.TotalShardBytes = m.TotalShardBytes
	reply.AuditEntries = m.AuditEntries
	reply.ModelsByStatus = make(map[string]int, len(m.ModelsByStatus))
	for status, count := range m.ModelsByStatus {
		reply.ModelsByStatus[string(status)] = count
	}

	return nil
}

func (a *RegistryAPI) Health(_ *registryRPC.HealthArgs, reply *registryRPC.HealthReply) error {
	reply.Status = "OK"

	return nil
}
