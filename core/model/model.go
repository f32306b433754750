package model

type ModelID = string

// Status is the lifecycle state of a model record.
type Status string

const (
	StatusPending          Status = "pending"
	StatusValidation       Status = "validation"
	StatusGovernanceReview Status = "governance_review"
	StatusApproved         Status = "approved"
	StatusActive           Status = "active"
	StatusSecurityReview   Status = "security_review"
	StatusDeprecated       Status = "deprecated"
	StatusRejected         Status = "rejected"
	StatusWithdrawn        Status = "withdrawn"
)

// Terminal reports whether no further transitions leave the status.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusDeprecated || s == StatusWithdrawn
}

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusValidation, StatusGovernanceReview, StatusApproved,
		StatusActive, StatusSecurityReview, StatusDeprecated, StatusRejected, StatusWithdrawn:
		return Status(s), true
	}

	return "", false
}

// ModelMeta is submitter-declared metadata. The engine stores it verbatim
// and never interprets it beyond the Restricted distribution flag.
type ModelMeta struct {
	Name             string
	Description      string
	SourceRef        string
	Architecture     string
	ParamCount       int64
	QuantBits        int
	CompressionRatio float64
	PerplexityDelta  float64
	Restricted       bool
}

type BadgeType string

const (
	BadgeVerifiedQuant      BadgeType = "verified_quant"
	BadgeReproducible       BadgeType = "reproducible"
	BadgeGovernanceApproved BadgeType = "governance_approved"
	BadgeCommunityTested    BadgeType = "community_tested"
)

func ParseBadgeType(s string) (BadgeType, bool) {
	switch BadgeType(s) {
	case BadgeVerifiedQuant, BadgeReproducible, BadgeGovernanceApproved, BadgeCommunityTested:
		return BadgeType(s), true
	}

	return "", false
}

type Badge struct {
	Type      BadgeType
	GrantedAt int64
	GrantedBy string
}

// ModelRecord is the engine-owned record for one model id. Records are never
// physically deleted; terminal states are kept for audit.
type ModelRecord struct {
	ID               ModelID
	Status           Status
	Meta             ModelMeta
	Submitter        string
	CreatedAt        int64
	LastTransitionAt int64

	// Governance bookkeeping.
	ProposalID         string
	ActivationInFlight bool
	ActivatedAt        int64
	Badges             []Badge

	// Suspension / deprecation bookkeeping.
	SuspendReason   string
	SuspendedUntil  int64
	DeprecateReason string
	ReplacedBy      ModelID
}

func NewModelRecord(id ModelID, meta ModelMeta, submitter string, now int64) ModelRecord {
	return ModelRecord{
		ID:               id,
		Status:           StatusPending,
		Meta:             meta,
		Submitter:        submitter,
		CreatedAt:        now,
		LastTransitionAt: now,
	}
}
