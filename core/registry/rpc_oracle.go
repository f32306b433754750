package registry

import (
	"net/rpc"

	"github.com/modelvault/modelvault/core/model"
	governanceRPC "github.com/modelvault/modelvault/rpc/governance"
)

// RPCOracle resolves verdicts against an external governance service over
// net/rpc, dialing per call since verdict requests are rare and may follow
// long external latency.
type RPCOracle struct {
	Addr string
}

func NewRPCOracle(addr string) *RPCOracle {
	return &RPCOracle{Addr: addr}
}

func (o *RPCOracle) VerdictFor(proposalID string, modelID model.ModelID) (model.Verdict, error) {
	client, err := rpc.DialHTTP("tcp", o.Addr)
	if err != nil {
		return model.VerdictPending, err
	}

	defer client.Close()

	args := governanceRPC.VerdictForArgs{
		ProposalID: proposalID,
		ModelID:    modelID,
	}

	reply := governanceRPC.VerdictForReply{}
	err = client.Call("GovernanceAPI.VerdictFor", args, &reply)
	if err != nil {
		return model.VerdictPending, err
	}

	switch model.Verdict(reply.Verdict) {
	case model.VerdictApproved, model.VerdictRejected:
		return model.Verdict(reply.Verdict), nil
	}

	return model.VerdictPending, nil
}
