package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelvault/modelvault/core/model"
)

var allStatuses = []model.Status{
	model.StatusPending, model.StatusValidation, model.StatusGovernanceReview,
	model.StatusApproved, model.StatusActive, model.StatusSecurityReview,
	model.StatusDeprecated, model.StatusRejected, model.StatusWithdrawn,
}

func TestCanTransitionGraph(t *testing.T) {
	legal := map[model.Status][]model.Status{
		model.StatusPending:          {model.StatusValidation, model.StatusWithdrawn},
		model.StatusValidation:       {model.StatusGovernanceReview, model.StatusRejected},
		model.StatusGovernanceReview: {model.StatusApproved, model.StatusRejected},
		model.StatusApproved:         {model.StatusActive},
		model.StatusActive:           {model.StatusSecurityReview, model.StatusDeprecated},
		model.StatusSecurityReview:   {model.StatusActive, model.StatusDeprecated},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := false
			for _, edge := range legal[from] {
				if edge == to {
					want = true
				}
			}

			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatesHaveNoEdges(t *testing.T) {
	for _, from := range []model.Status{model.StatusRejected, model.StatusDeprecated, model.StatusWithdrawn} {
		assert.True(t, from.Terminal())
		for _, to := range allStatuses {
			assert.False(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTransitionStampsTime(t *testing.T) {
	ls := NewLifecycleService()
	ls.AddModel(model.NewModelRecord("m1", model.ModelMeta{Name: "n", Architecture: "a", ParamCount: 1}, "alice", 100))

	record, err := ls.Transition("m1", model.StatusValidation, 200)
	require.NoError(t, err)
	assert.Equal(t, model.StatusValidation, record.Status)
	assert.Equal(t, int64(200), record.LastTransitionAt)
	assert.Equal(t, int64(100), record.CreatedAt)
}

func TestIllegalTransitionLeavesRecordUnchanged(t *testing.T) {
	ls := NewLifecycleService()
	ls.AddModel(model.NewModelRecord("m1", model.ModelMeta{Name: "n", Architecture: "a", ParamCount: 1}, "alice", 100))

	_, err := ls.Transition("m1", model.StatusActive, 200)
	var stErr *StateTransitionError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, model.StatusPending, stErr.From)

	record, exists := ls.GetModel("m1")
	require.True(t, exists)
	assert.Equal(t, model.StatusPending, record.Status)
	assert.Equal(t, int64(100), record.LastTransitionAt)
}

func TestTransitionUnknownModel(t *testing.T) {
	ls := NewLifecycleService()

	_, err := ls.Transition("nope", model.StatusValidation, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListModelsOrderAndLimit(t *testing.T) {
	ls := NewLifecycleService()
	ls.AddModel(model.NewModelRecord("m-b", model.ModelMeta{}, "alice", 200))
	ls.AddModel(model.NewModelRecord("m-a", model.ModelMeta{}, "alice", 200))
	ls.AddModel(model.NewModelRecord("m-c", model.ModelMeta{}, "alice", 100))

	records := ls.ListModels(nil, 0)
	require.Len(t, records, 3)
	assert.Equal(t, "m-c", records[0].ID)
	assert.Equal(t, "m-a", records[1].ID)
	assert.Equal(t, "m-b", records[2].ID)

	records = ls.ListModels(nil, 2)
	assert.Len(t, records, 2)

	pending := model.StatusPending
	records = ls.ListModels(&pending, 0)
	assert.Len(t, records, 3)

	active := model.StatusActive
	records = ls.ListModels(&active, 0)
	assert.Len(t, records, 0)
}
