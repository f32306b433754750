package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	ds "github.com/ipfs/go-datastore"
	dsq "github.com/ipfs/go-datastore/query"

	"github.com/modelvault/modelvault/core/model"
	"github.com/modelvault/modelvault/lib/utils"
)

// AuditService is the append-only audit log. Entries are totally ordered by
// sequence number, mirrored to the datastore at append time, and never
// mutated or removed.
type AuditService struct {
	mutex   sync.Mutex
	store   ds.Datastore
	entries []model.AuditEntry
	nextSeq uint64
}

func NewAuditService(ctx context.Context, store ds.Datastore) (*AuditService, error) {
	as := &AuditService{
		store:   store,
		entries: make([]model.AuditEntry, 0),
		nextSeq: 1,
	}

	err := as.rehydrate(ctx)
	if err != nil {
		return nil, err
	}

	return as, nil
}

func auditKey(seq uint64) ds.Key {
	return ds.NewKey(fmt.Sprintf("/audit/%020d", seq))
}

// Record is the sole write entry point. Every state-affecting or
// access-affecting operation appends exactly one entry, rejections included.
func (as *AuditService) Record(ctx context.Context, kind model.EventKind, actor string, modelID model.ModelID, details string, now int64) model.AuditEntry {
	as.mutex.Lock()
	defer as.mutex.Unlock()

	entry := model.AuditEntry{
		Seq:       as.nextSeq,
		ModelID:   modelID,
		Kind:      kind,
		Actor:     actor,
		Timestamp: now,
		Details:   details,
	}

	as.nextSeq++
	as.entries = append(as.entries, entry)

	b, err := json.Marshal(entry)
	if err == nil {
		// Mirror write; the in-memory log stays authoritative if it fails.
		_ = as.store.Put(ctx, auditKey(entry.Seq), b)
	}

	return entry
}

// AuditFilter narrows a query. Zero values match everything.
type AuditFilter struct {
	ModelID model.ModelID
	Kinds   []model.EventKind
	From    int64
	To      int64
}

// Query returns matching entries in ascending sequence order.
func (as *AuditService) Query(filter AuditFilter) []model.AuditEntry {
	as.mutex.Lock()
	defer as.mutex.Unlock()

	matched := make([]model.AuditEntry, 0)
	for _, entry := range as.entries {
		if filter.ModelID != "" && entry.ModelID != filter.ModelID {
			continue
		}

		if len(filter.Kinds) > 0 && !utils.Contains(filter.Kinds, entry.Kind) {
			continue
		}

		if filter.From != 0 && entry.Timestamp < filter.From {
			continue
		}

		if filter.To != 0 && entry.Timestamp > filter.To {
			continue
		}

		matched = append(matched, entry)
	}

	return matched
}

func (as *AuditService) Len() int {
	as.mutex.Lock()
	defer as.mutex.Unlock()

	return len(as.entries)
}

func (as *AuditService) rehydrate(ctx context.Context) error {
	res, err := as.store.Query(ctx, dsq.Query{Prefix: "/audit"})
	if err != nil {
		return err
	}

	for {
		r, hasNext := res.NextSync()
		if !hasNext {
			break
		}

		var entry model.AuditEntry
		err = json.Unmarshal(r.Value, &entry)
		if err != nil {
			return err
		}

		as.entries = append(as.entries, entry)
	}

	sort.Slice(as.entries, func(i, j int) bool {
		return as.entries[i].Seq < as.entries[j].Seq
	})

	if n := len(as.entries); n > 0 {
		as.nextSeq = as.entries[n-1].Seq + 1
	}

	return nil
}
