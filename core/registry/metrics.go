package registry

import "github.com/modelvault/modelvault/core/model"

// Metrics is a point-in-time counter snapshot. Dashboards live outside the
// engine; this is the query they pull from.
type Metrics struct {
	TotalModels     int
	ModelsByStatus  map[model.Status]int
	TotalShards     int
	TotalShardBytes int64
	Uploaders       int
	Grants          int
	AuditEntries    int
}

func (r *Registry) Metrics() Metrics {
	m := Metrics{
		ModelsByStatus: make(map[model.Status]int),
	}

	r.Models.Range(func(k, v any) bool {
		record := v.(model.ModelRecord)
		m.TotalModels++
		m.ModelsByStatus[record.Status]++

		return true
	})

	m.TotalShards, m.TotalShardBytes = r.ShardStats()
	m.Uploaders = r.Uploaders.Len()
	m.Grants = r.Grants.Len()
	m.AuditEntries = r.Audit.Len()

	return m
}
