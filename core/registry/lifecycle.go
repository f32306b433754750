package registry

import (
	"sort"

	"github.com/modelvault/modelvault/core/model"
	"github.com/modelvault/modelvault/lib/cmap"
)

// transitions is the full lifecycle edge set. Any (from, to) pair absent
// here fails with a StateTransitionError and leaves the record unchanged.
var transitions = map[model.Status][]model.Status{
	model.StatusPending:          {model.StatusValidation, model.StatusWithdrawn},
	model.StatusValidation:       {model.StatusGovernanceReview, model.StatusRejected},
	model.StatusGovernanceReview: {model.StatusApproved, model.StatusRejected},
	model.StatusApproved:         {model.StatusActive},
	model.StatusActive:           {model.StatusSecurityReview, model.StatusDeprecated},
	model.StatusSecurityReview:   {model.StatusActive, model.StatusDeprecated},
}

// LifecycleService owns every ModelRecord and is the only writer of model
// status. Records are never deleted; terminal states stay for audit.
type LifecycleService struct {
	Models cmap.Map[model.ModelID, model.ModelRecord]
}

func NewLifecycleService() *LifecycleService {
	return &LifecycleService{
		Models: cmap.NewMap[model.ModelID, model.ModelRecord](),
	}
}

func (ls *LifecycleService) GetModel(id model.ModelID) (*model.ModelRecord, bool) {
	return ls.Models.Get(id)
}

func (ls *LifecycleService) AddModel(record model.ModelRecord) {
	ls.Models.Set(record.ID, record)
}

func (ls *LifecycleService) UpdateModel(record model.ModelRecord) {
	ls.Models.Set(record.ID, record)
}

func CanTransition(from, to model.Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}

	return false
}

// Transition moves a model along one lifecycle edge, stamping the
// last-transition time. Illegal edges fail without touching the record.
func (ls *LifecycleService) Transition(id model.ModelID, to model.Status, now int64) (*model.ModelRecord, error) {
	record, exists := ls.Models.Get(id)
	if !exists {
		return nil, &NotFoundError{Kind: "model", ID: id}
	}

	if !CanTransition(record.Status, to) {
		return nil, &StateTransitionError{ModelID: id, From: record.Status, To: to}
	}

	record.Status = to
	record.LastTransitionAt = now
	ls.Models.Set(id, *record)

	return record, nil
}

// ListModels returns records filtered by status, ordered by creation time
// then id. A nil filter matches everything; limit 0 means no cap.
func (ls *LifecycleService) ListModels(filter *model.Status, limit int) []model.ModelRecord {
	records := make([]model.ModelRecord, 0)

	ls.Models.Range(func(k, v any) bool {
		record := v.(model.ModelRecord)
		if filter != nil && record.Status != *filter {
			return true
		}

		records = append(records, record)
		return true
	})

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt != records[j].CreatedAt {
			return records[i].CreatedAt < records[j].CreatedAt
		}

		return records[i].ID < records[j].ID
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return records
}
