package nostrfilter

import (
	"testing"

	"github.com/Hakkadaikon/nostrdb/errs"
	"github.com/stretchr/testify/require"
)

func TestFilter_ValidateRejectsTooManyIDs(t *testing.T) {
	f := &Filter{IDs: make([][32]byte, MaxIDs+1)}
	require.ErrorIs(t, f.Validate(), errs.ErrInvalidEvent)
}

func TestFilter_ValidateRejectsInvertedSinceUntil(t *testing.T) {
	f := &Filter{Since: 200, Until: 100}
	require.ErrorIs(t, f.Validate(), errs.ErrInvalidEvent)
}

func TestFilter_ValidateAcceptsOpenBounds(t *testing.T) {
	f := &Filter{Since: 0, Until: 0}
	require.NoError(t, f.Validate())
}

func TestFilter_EffectiveLimitDefaultsWhenZero(t *testing.T) {
	f := &Filter{}
	require.Equal(t, DefaultLimit, f.EffectiveLimit())
	f.Limit = 10
	require.Equal(t, 10, f.EffectiveLimit())
}

func TestFilter_MatchesKindVacuouslyTrueWhenEmpty(t *testing.T) {
	f := &Filter{}
	require.True(t, f.MatchesKind(1))
	f.Kinds = []uint32{1, 2}
	require.True(t, f.MatchesKind(2))
	require.False(t, f.MatchesKind(3))
}

func TestFilter_MatchesTimeBounds(t *testing.T) {
	f := &Filter{Since: 100, Until: 200}
	require.True(t, f.MatchesTime(150))
	require.False(t, f.MatchesTime(99))
	require.False(t, f.MatchesTime(201))
}
