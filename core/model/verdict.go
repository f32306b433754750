package model

// Verdict is the governance oracle's answer for a (proposal, model) pair.
type Verdict string

const (
	VerdictApproved Verdict = "approved"
	VerdictRejected Verdict = "rejected"
	VerdictPending  Verdict = "pending"
)
