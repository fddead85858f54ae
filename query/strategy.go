package query

import "github.com/Hakkadaikon/nostrdb/nostrfilter"

// Strategy names the index a query dispatches to, in the fixed priority
// order the planner selects from. Ties are broken by this order, not by
// data-dependent cost — the design trades optimal planning for
// determinism and zero runtime statistics.
type Strategy int

const (
	ByID Strategy = iota
	ByTag
	ByPubkeyKind
	ByPubkey
	ByKind
	TimelineScan
)

func (s Strategy) String() string {
	switch s {
	case ByID:
		return "by_id"
	case ByTag:
		return "by_tag"
	case ByPubkeyKind:
		return "by_pubkey_kind"
	case ByPubkey:
		return "by_pubkey"
	case ByKind:
		return "by_kind"
	case TimelineScan:
		return "timeline_scan"
	default:
		return "unknown"
	}
}

// Select picks the strategy for f: first match wins, checked in priority
// order (ids, tags, authors+kinds, authors, kinds, timeline fallback).
func Select(f *nostrfilter.Filter) Strategy {
	switch {
	case len(f.IDs) > 0:
		return ByID
	case len(f.Tags) > 0:
		return ByTag
	case len(f.Authors) > 0 && len(f.Kinds) > 0:
		return ByPubkeyKind
	case len(f.Authors) > 0:
		return ByPubkey
	case len(f.Kinds) > 0:
		return ByKind
	default:
		return TimelineScan
	}
}
