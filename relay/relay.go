// Package relay is the single entry point into the store: it owns the
// events log, all six indices, and the mutex that serializes every
// operation against them (spec.md §5 — the core is single-threaded
// cooperative; this facade is where that single owner lives).
package relay

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/Hakkadaikon/nostrdb/binfmt"
	"github.com/Hakkadaikon/nostrdb/config"
	"github.com/Hakkadaikon/nostrdb/errs"
	"github.com/Hakkadaikon/nostrdb/event"
	"github.com/Hakkadaikon/nostrdb/eventlog"
	"github.com/Hakkadaikon/nostrdb/index"
	"github.com/Hakkadaikon/nostrdb/logger"
	"github.com/Hakkadaikon/nostrdb/metrics"
	"github.com/Hakkadaikon/nostrdb/nostrfilter"
	"github.com/Hakkadaikon/nostrdb/query"
)

// Relay is the handle spec.md §6's init/shutdown describe. Every method
// is safe for concurrent use; they all take mu, so callers see the
// single-writer semantics the core promises without needing their own
// locking.
type Relay struct {
	mu  sync.Mutex
	cfg *config.Config
	log *eventlog.Log
	idx *index.Set
}

// Stats mirrors spec.md §6's stats surface.
type Stats struct {
	EventCount       uint64
	DeletedCount     uint64
	EventsFileSize   uint64
	IndexEntryCounts map[string]uint64
}

// Open creates the data directory if missing, opens/creates all seven
// files, and validates headers. There is no WAL, so nothing is replayed.
func Open(cfg *config.Config) (*Relay, error) {
	if cfg == nil {
		return nil, errs.ErrNullParam
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, errs.ErrFileCreate
	}

	log, err := eventlog.Open(filepath.Join(cfg.DataDir, "events.dat"), cfg.InitialEventsSize)
	if err != nil {
		return nil, err
	}

	counts := map[index.Kind]uint64{
		index.KindID:         cfg.BucketCountID,
		index.KindPubkey:     cfg.BucketCountPubkey,
		index.KindKind:       cfg.BucketCountKind,
		index.KindPubkeyKind: cfg.BucketCountPubkeyKind,
		index.KindTag:        cfg.BucketCountTag,
	}
	idx, err := index.OpenSet(cfg.DataDir, counts, cfg.InitialPoolSize, cfg.BloomAccelerated)
	if err != nil {
		log.Close()
		return nil, err
	}

	logger.L().Infow("relay opened", "data_dir", cfg.DataDir)
	return &Relay{cfg: cfg, log: log, idx: idx}, nil
}

// Close msyncs and unmaps every file. A nil receiver is a no-op, matching
// spec.md §6's "NULL is a no-op" for shutdown.
func (r *Relay) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var first error
	if err := r.log.Sync(false); err != nil && first == nil {
		first = err
	}
	if err := r.idx.Sync(false); err != nil && first == nil {
		first = err
	}
	if err := r.log.Close(); err != nil && first == nil {
		first = err
	}
	if err := r.idx.Close(); err != nil && first == nil {
		first = err
	}
	logger.L().Infow("relay closed")
	return first
}

// WriteEvent validates e, appends it to the log, and inserts it into
// every applicable index, per spec.md §4.3.
func (r *Relay) WriteEvent(e *event.Event) error {
	if e == nil {
		metrics.WriteErrors.WithLabelValues("null_param").Inc()
		return errs.ErrNullParam
	}
	if err := event.Validate(e); err != nil {
		metrics.WriteErrors.WithLabelValues("invalid_event").Inc()
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tagBuf := make([]byte, binfmt.TagSetSize(e.Tags))
	n, err := binfmt.SerializeTags(e.Tags, tagBuf)
	if err != nil {
		metrics.WriteErrors.WithLabelValues("invalid_event").Inc()
		return errs.ErrInvalidEvent
	}

	offset, err := r.log.Append(e, tagBuf[:n])
	if err != nil {
		metrics.WriteErrors.WithLabelValues("full").Inc()
		return err
	}

	if err := r.idx.ID.Insert(e.ID[:], offset, e.CreatedAt); err != nil {
		if err == errs.ErrDuplicate {
			r.log.Rollback(offset)
			metrics.WriteErrors.WithLabelValues("duplicate").Inc()
		} else {
			metrics.WriteErrors.WithLabelValues("index_error").Inc()
		}
		return err
	}

	if err := r.insertSecondaryIndices(e, offset); err != nil {
		logger.L().Warnw("secondary index insert failed, record remains durable", "err", err)
		metrics.WriteErrors.WithLabelValues("secondary_index_full").Inc()
		return errs.ErrFull
	}

	if err := r.log.Sync(r.cfg.SyncAsync); err != nil {
		logger.L().Warnw("events log msync after write failed", "err", err)
	}
	return nil
}

func (r *Relay) insertSecondaryIndices(e *event.Event, offset uint64) error {
	if err := r.idx.Pubkey.Insert(e.PubKey[:], offset, e.CreatedAt); err != nil {
		return err
	}
	if err := r.idx.Kind.Insert(index.KindKey(e.Kind), offset, e.CreatedAt); err != nil {
		return err
	}
	if err := r.idx.PubkeyKind.Insert(index.PubkeyKindKey(e.PubKey, e.Kind), offset, e.CreatedAt); err != nil {
		return err
	}
	for _, tag := range e.Tags {
		if len(tag.Name) != 1 {
			continue // only single-letter tag names are indexed, per spec.md §4.4
		}
		for _, v := range tag.Values {
			key := index.TagKey(tag.Name[0], []byte(v))
			if err := r.idx.Tag.Insert(key, offset, e.CreatedAt); err != nil {
				return err
			}
		}
	}
	if err := r.idx.Timeline.Insert(nil, offset, e.CreatedAt); err != nil {
		return err
	}
	return nil
}

// GetEventByID performs an id-index lookup, rejecting deleted records.
func (r *Relay) GetEventByID(id [32]byte) (*event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	offset, err := r.idx.ID.Lookup(id[:])
	if err != nil {
		return nil, err
	}
	return r.log.ReadEvent(offset, binfmt.DeserializeTags)
}

// DeleteEvent looks up id, marks the record and its id-index entry
// deleted/tombstoned, and leaves every other index untouched; the query
// post-filter suppresses the record from then on.
func (r *Relay) DeleteEvent(id [32]byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	offset, err := r.idx.ID.Lookup(id[:])
	if err != nil {
		return err
	}
	if err := r.log.MarkDeleted(offset); err != nil {
		return err
	}
	return r.idx.ID.MarkTombstone(id[:], offset)
}

// Query runs filter through the planner/executor and returns a sorted,
// limited ResultSet.
func (r *Relay) Query(filter *nostrfilter.Filter) (*nostrfilter.ResultSet, error) {
	if filter == nil {
		return nil, errs.ErrNullParam
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if filter.Limit == 0 && r.cfg.DefaultQueryLimit != 0 {
		f := *filter
		f.Limit = r.cfg.DefaultQueryLimit
		filter = &f
	}
	return query.Execute(filter, r.idx, r.log)
}

// Stats surfaces event_count, deleted_count, events_file_size, and every
// index's entry_count, per spec.md §6.
func (r *Relay) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	eventCount, deletedCount, fileSize := r.log.Stats()
	return Stats{
		EventCount:     eventCount,
		DeletedCount:   deletedCount,
		EventsFileSize: fileSize,
		IndexEntryCounts: map[string]uint64{
			"id":          r.idx.ID.EntryCount(),
			"pubkey":      r.idx.Pubkey.EntryCount(),
			"kind":        r.idx.Kind.EntryCount(),
			"pubkey_kind": r.idx.PubkeyKind.EntryCount(),
			"tag":         r.idx.Tag.EntryCount(),
			"timeline":    r.idx.Timeline.EntryCount(),
		},
	}
}
