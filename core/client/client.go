package client

import (
	"fmt"
	"net/rpc"

	"github.com/modelvault/modelvault/core/constants"
	"github.com/modelvault/modelvault/core/model"
	"github.com/modelvault/modelvault/lib/checksum"
	registryRPC "github.com/modelvault/modelvault/rpc/registry"
)

// Client wraps the registry RPC surface for uploader and operator tooling.
type Client struct {
	Actor     string
	RpcClient *rpc.Client
}

func NewClient(registryAddr, actor string) (*Client, error) {
	rpcClient, err := rpc.DialHTTP("tcp", registryAddr)
	if err != nil {
		return nil, err
	}

	return &Client{
		Actor:     actor,
		RpcClient: rpcClient,
	}, nil
}

func (c *Client) Close() error {
	return c.RpcClient.Close()
}

// BuildManifest slices artifact bytes into ceiling-sized shards and derives
// the descriptors and aggregate checksum the registry expects.
func BuildManifest(modelID string, artifact []byte) (model.Manifest, []registryRPC.ShardUpload) {
	descriptors := make([]model.ShardDescriptor, 0)
	uploads := make([]registryRPC.ShardUpload, 0)
	checksums := make([]string, 0)

	for offset, index := 0, 0; offset < len(artifact); index++ {
		end := offset + constants.MAX_SHARD_SIZE_BYTES
		if end > len(artifact) {
			end = len(artifact)
		}

		data := artifact[offset:end]
		digest := checksum.Digest(data)
		shardID := fmt.Sprintf("%s-shard-%05d", modelID, index)

		descriptors = append(descriptors, model.ShardDescriptor{
			ID:       shardID,
			Size:     int64(len(data)),
			Checksum: digest,
		})
		uploads = append(uploads, registryRPC.ShardUpload{
			ShardID:  shardID,
			Data:     data,
			Checksum: digest,
		})
		checksums = append(checksums, digest)

		offset = end
	}

	manifest := model.Manifest{
		ModelID:           modelID,
		Shards:            descriptors,
		TotalSize:         int64(len(artifact)),
		AggregateChecksum: checksum.Aggregate(checksums),
	}

	return manifest, uploads
}

func (c *Client) SubmitModel(modelID string, meta model.ModelMeta, manifest model.Manifest) error {
	args := registryRPC.SubmitModelArgs{
		Actor:    c.Actor,
		ModelID:  modelID,
		Meta:     meta,
		Manifest: manifest,
	}

	var reply registryRPC.SubmitModelReply
	return c.RpcClient.Call("RegistryAPI.SubmitModel", args, &reply)
}

func (c *Client) SubmitShards(modelID string, uploads []registryRPC.ShardUpload) (int, error) {
	args := registryRPC.SubmitShardsArgs{
		Actor:   c.Actor,
		ModelID: modelID,
		Shards:  uploads,
	}

	var reply registryRPC.SubmitShardsReply
	err := c.RpcClient.Call("RegistryAPI.SubmitShards", args, &reply)
	if err != nil {
		return 0, err
	}

	return reply.Stored, nil
}

func (c *Client) CompleteSubmission(modelID string) (string, error) {
	args := registryRPC.CompleteSubmissionArgs{Actor: c.Actor, ModelID: modelID}

	var reply registryRPC.CompleteSubmissionReply
	err := c.RpcClient.Call("RegistryAPI.CompleteSubmission", args, &reply)
	if err != nil {
		return "", err
	}

	return reply.Status, nil
}

func (c *Client) ValidateModelIntegrity(modelID string) error {
	args := registryRPC.ValidateArgs{ModelID: modelID}

	var reply registryRPC.ValidateReply
	return c.RpcClient.Call("RegistryAPI.ValidateModelIntegrity", args, &reply)
}

func (c *Client) ResolveGovernance(modelID, proposalID string) (string, error) {
	args := registryRPC.ResolveGovernanceArgs{Actor: c.Actor, ModelID: modelID, ProposalID: proposalID}

	var reply registryRPC.ResolveGovernanceReply
	err := c.RpcClient.Call("RegistryAPI.ResolveGovernance", args, &reply)
	if err != nil {
		return "", err
	}

	return reply.Verdict, nil
}

func (c *Client) ActivateModel(modelID, proposalID string) error {
	args := registryRPC.ActivateModelArgs{Actor: c.Actor, ModelID: modelID, ProposalID: proposalID}

	var reply registryRPC.ActivateModelReply
	return c.RpcClient.Call("RegistryAPI.ActivateModel", args, &reply)
}

func (c *Client) DeprecateModel(modelID, reason, replacementID string) error {
	args := registryRPC.DeprecateModelArgs{
		Actor:         c.Actor,
		ModelID:       modelID,
		Reason:        reason,
		ReplacementID: replacementID,
	}

	var reply registryRPC.DeprecateModelReply
	return c.RpcClient.Call("RegistryAPI.DeprecateModel", args, &reply)
}

func (c *Client) EmergencySuspend(modelID, reason string, durationHours int64) error {
	args := registryRPC.EmergencySuspendArgs{
		Admin:         c.Actor,
		ModelID:       modelID,
		Reason:        reason,
		DurationHours: durationHours,
	}

	var reply registryRPC.EmergencySuspendReply
	return c.RpcClient.Call("RegistryAPI.EmergencySuspend", args, &reply)
}

func (c *Client) ClearSecurityHold(modelID string) error {
	args := registryRPC.ClearSecurityHoldArgs{Admin: c.Actor, ModelID: modelID}

	var reply registryRPC.ClearSecurityHoldReply
	return c.RpcClient.Call("RegistryAPI.ClearSecurityHold", args, &reply)
}

func (c *Client) ClearActivationMarker(modelID string) error {
	args := registryRPC.ClearMarkerArgs{Admin: c.Actor, ModelID: modelID}

	var reply registryRPC.ClearMarkerReply
	return c.RpcClient.Call("RegistryAPI.ClearActivationMarker", args, &reply)
}

func (c *Client) WithdrawModel(modelID string) error {
	args := registryRPC.WithdrawModelArgs{Actor: c.Actor, ModelID: modelID}

	var reply registryRPC.WithdrawModelReply
	return c.RpcClient.Call("RegistryAPI.WithdrawModel", args, &reply)
}

func (c *Client) GetManifest(modelID string) (*model.Manifest, error) {
	args := registryRPC.GetManifestArgs{ModelID: modelID}

	var reply registryRPC.GetManifestReply
	err := c.RpcClient.Call("RegistryAPI.GetManifest", args, &reply)
	if err != nil {
		return nil, err
	}

	return &reply.Manifest, nil
}

func (c *Client) GetModelMeta(modelID string) (*model.ModelRecord, error) {
	args := registryRPC.GetModelMetaArgs{ModelID: modelID}

	var reply registryRPC.GetModelMetaReply
	err := c.RpcClient.Call("RegistryAPI.GetModelMeta", args, &reply)
	if err != nil {
		return nil, err
	}

	return &reply.Record, nil
}

func (c *Client) GetShard(modelID, shardID string) ([]byte, error) {
	args := registryRPC.GetShardArgs{Actor: c.Actor, ModelID: modelID, ShardID: shardID}

	var reply registryRPC.GetShardReply
	err := c.RpcClient.Call("RegistryAPI.GetShard", args, &reply)
	if err != nil {
		return nil, err
	}

	return reply.Data, nil
}

// DownloadModel pulls every manifest-declared shard in order and reassembles
// the artifact, verifying each chunk against its declared checksum.
func (c *Client) DownloadModel(modelID string) ([]byte, error) {
	manifest, err := c.GetManifest(modelID)
	if err != nil {
		return nil, err
	}

	artifact := make([]byte, 0, manifest.TotalSize)
	for _, d := range manifest.Shards {
		data, err := c.GetShard(modelID, d.ID)
		if err != nil {
			return nil, err
		}

		if checksum.Digest(data) != d.Checksum {
			return nil, fmt.Errorf("shard %s failed checksum verification", d.ID)
		}

		artifact = append(artifact, data...)
	}

	return artifact, nil
}

func (c *Client) ListModels(status string, limit int) ([]string, error) {
	args := registryRPC.ListModelsArgs{Status: status, Limit: limit}

	var reply registryRPC.ListModelsReply
	err := c.RpcClient.Call("RegistryAPI.ListModels", args, &reply)
	if err != nil {
		return nil, err
	}

	return reply.ModelIDs, nil
}

func (c *Client) AddAuthorizedUploader(identity string) error {
	args := registryRPC.UploaderArgs{Admin: c.Actor, Identity: identity}

	var reply registryRPC.UploaderReply
	return c.RpcClient.Call("RegistryAPI.AddAuthorizedUploader", args, &reply)
}

func (c *Client) RemoveAuthorizedUploader(identity string) error {
	args := registryRPC.UploaderArgs{Admin: c.Actor, Identity: identity}

	var reply registryRPC.UploaderReply
	return c.RpcClient.Call("RegistryAPI.RemoveAuthorizedUploader", args, &reply)
}

func (c *Client) RequestModelAccess(modelID string, durationSecs int64) (*registryRPC.RequestAccessReply, error) {
	args := registryRPC.RequestAccessArgs{
		Grantee:      c.Actor,
		ModelID:      modelID,
		DurationSecs: durationSecs,
	}

	var reply registryRPC.RequestAccessReply
	err := c.RpcClient.Call("RegistryAPI.RequestModelAccess", args, &reply)
	if err != nil {
		return nil, err
	}

	return &reply, nil
}

func (c *Client) GrantBadge(modelID, badge string) error {
	args := registryRPC.GrantBadgeArgs{Admin: c.Actor, ModelID: modelID, Badge: badge}

	var reply registryRPC.GrantBadgeReply
	return c.RpcClient.Call("RegistryAPI.GrantBadge", args, &reply)
}

func (c *Client) GetAuditLog(modelID string, kinds []string, from, to int64) ([]model.AuditEntry, error) {
	args := registryRPC.GetAuditLogArgs{ModelID: modelID, Kinds: kinds, From: from, To: to}

	var reply registryRPC.GetAuditLogReply
	err := c.RpcClient.Call("RegistryAPI.GetAuditLog", args, &reply)
	if err != nil {
		return nil, err
	}

	return reply.Entries, nil
}
