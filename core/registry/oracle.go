package registry

import (
	"fmt"

	"github.com/modelvault/modelvault/core/model"
	"github.com/modelvault/modelvault/lib/cmap"
)

// GovernanceOracle answers whether a proposal carries an approved verdict
// for a model. Voting itself happens outside the engine; only the verdict
// crosses this boundary. Calls may block on external latency.
type GovernanceOracle interface {
	VerdictFor(proposalID string, modelID model.ModelID) (model.Verdict, error)
}

// StaticOracle serves verdicts from a configured table. Unknown pairs are
// Pending. Used by tests and standalone deployments without a governance
// service.
type StaticOracle struct {
	verdicts cmap.Map[string, model.Verdict]
}

func NewStaticOracle() *StaticOracle {
	return &StaticOracle{
		verdicts: cmap.NewMap[string, model.Verdict](),
	}
}

func verdictKey(proposalID string, modelID model.ModelID) string {
	return fmt.Sprintf("%s/%s", proposalID, modelID)
}

func (o *StaticOracle) SetVerdict(proposalID string, modelID model.ModelID, verdict model.Verdict) {
	o.verdicts.Set(verdictKey(proposalID, modelID), verdict)
}

func (o *StaticOracle) VerdictFor(proposalID string, modelID model.ModelID) (model.Verdict, error) {
	verdict, exists := o.verdicts.Get(verdictKey(proposalID, modelID))
	if !exists {
		return model.VerdictPending, nil
	}

	return *verdict, nil
}
