package governance

// Governance is the RPC surface an external governance service exposes to
// the engine.
type Governance interface {
	// VerdictFor ...
	VerdictFor(args VerdictForArgs, reply *VerdictForReply) error
}

type VerdictForArgs struct {
	ProposalID string
	ModelID    string
}

type VerdictForReply struct {
	Verdict string
}
