// Package query implements the fixed-priority strategy planner and
// executor spec.md §4.6 describes: pick one index to drive the scan,
// collect candidates into a ResultSet, then post-filter, sort, and limit.
package query

import (
	"time"

	"github.com/Hakkadaikon/nostrdb/errs"
	"github.com/Hakkadaikon/nostrdb/eventlog"
	"github.com/Hakkadaikon/nostrdb/index"
	"github.com/Hakkadaikon/nostrdb/metrics"
	"github.com/Hakkadaikon/nostrdb/nostrfilter"
)

// Execute runs filter against the given log and index set, returning a
// sorted, limited ResultSet. Callers must hold whatever lock serializes
// access to log/idx; Execute itself does no locking (spec.md §5 places
// that in the relay facade).
func Execute(filter *nostrfilter.Filter, idx *index.Set, log *eventlog.Log) (*nostrfilter.ResultSet, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	strategy := Select(filter)
	rs := nostrfilter.NewResultSet()
	limit := filter.EffectiveLimit()

	var err error
	switch strategy {
	case ByID:
		err = executeByID(filter, idx, log, rs)
	case ByTag:
		err = executeByTag(filter, idx, rs, limit)
	case ByPubkeyKind:
		err = executeByPubkeyKind(filter, idx, rs, limit)
	case ByPubkey:
		err = executeByPubkey(filter, idx, rs, limit)
	case ByKind:
		err = executeByKind(filter, idx, rs, limit)
	default:
		err = idx.Timeline.Iterate(nil, filter.Since, filter.Until, remaining(rs, limit), addTo(rs))
	}
	if err != nil {
		return nil, err
	}

	if err := postFilter(filter, log, rs); err != nil {
		return nil, err
	}
	rs.Sort()
	rs.ApplyLimit(limit)

	metrics.QueryDuration.WithLabelValues(strategy.String()).Observe(time.Since(start).Seconds())
	return rs, nil
}

func remaining(rs *nostrfilter.ResultSet, limit int) int {
	left := limit - rs.Len()
	if left < 0 {
		return 0
	}
	return left
}

func addTo(rs *nostrfilter.ResultSet) index.IterateFunc {
	return func(offset uint64, createdAt int64) bool {
		rs.Add(offset, createdAt)
		return true
	}
}

func executeByID(filter *nostrfilter.Filter, idx *index.Set, log *eventlog.Log, rs *nostrfilter.ResultSet) error {
	for _, id := range filter.IDs {
		offset, err := idx.ID.Lookup(id[:])
		if err == errs.ErrNotFound {
			continue
		}
		if err != nil {
			return err
		}
		createdAt, _, _, _, live, err := log.CreatedAtKindAuthor(offset)
		if err != nil {
			return err
		}
		if !live || !filter.MatchesTime(createdAt) {
			continue
		}
		rs.Add(offset, createdAt)
	}
	return nil
}

func executeByTag(filter *nostrfilter.Filter, idx *index.Set, rs *nostrfilter.ResultSet, limit int) error {
	for _, tf := range filter.Tags {
		for _, value := range tf.Values {
			key := index.TagKey(tf.Name, value)
			left := remaining(rs, limit)
			if left == 0 {
				return nil
			}
			if err := idx.Tag.Iterate(key, filter.Since, filter.Until, left, addTo(rs)); err != nil {
				return err
			}
		}
	}
	return nil
}

func executeByPubkeyKind(filter *nostrfilter.Filter, idx *index.Set, rs *nostrfilter.ResultSet, limit int) error {
	for _, author := range filter.Authors {
		for _, kind := range filter.Kinds {
			left := remaining(rs, limit)
			if left == 0 {
				return nil
			}
			key := index.PubkeyKindKey(author, kind)
			if err := idx.PubkeyKind.Iterate(key, filter.Since, filter.Until, left, addTo(rs)); err != nil {
				return err
			}
		}
	}
	return nil
}

func executeByPubkey(filter *nostrfilter.Filter, idx *index.Set, rs *nostrfilter.ResultSet, limit int) error {
	for _, author := range filter.Authors {
		left := remaining(rs, limit)
		if left == 0 {
			return nil
		}
		a := author
		if err := idx.Pubkey.Iterate(a[:], filter.Since, filter.Until, left, addTo(rs)); err != nil {
			return err
		}
	}
	return nil
}

func executeByKind(filter *nostrfilter.Filter, idx *index.Set, rs *nostrfilter.ResultSet, limit int) error {
	for _, kind := range filter.Kinds {
		left := remaining(rs, limit)
		if left == 0 {
			return nil
		}
		if err := idx.Kind.Iterate(index.KindKey(kind), filter.Since, filter.Until, left, addTo(rs)); err != nil {
			return err
		}
	}
	return nil
}

// postFilter drops entries whose record is DELETED, outside [since,
// until], or fails any still-unchecked id/author/kind constraint — the
// chosen primary strategy only guarantees one dimension. Tag
// post-filtering is deliberately not applied (spec.md §4.6, §9): the
// primary strategy has already constrained tags, and deserializing tags
// again here would dominate cost.
func postFilter(filter *nostrfilter.Filter, log *eventlog.Log, rs *nostrfilter.ResultSet) error {
	kept := 0
	for i := 0; i < rs.Len(); i++ {
		offset := rs.Offset(i)
		createdAt, kind, pubkey, id, live, err := log.CreatedAtKindAuthor(offset)
		if err != nil {
			return err
		}
		if !live {
			continue
		}
		if !filter.MatchesTime(createdAt) {
			continue
		}
		if !filter.MatchesKind(kind) || !filter.MatchesAuthor(pubkey) || !filter.MatchesID(id) {
			continue
		}
		if kept != i {
			rs.Overwrite(kept, offset, createdAt)
		}
		kept++
	}
	rs.ApplyLimit(kept)
	return nil
}
