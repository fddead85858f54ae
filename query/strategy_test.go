package query

import (
	"testing"

	"github.com/Hakkadaikon/nostrdb/nostrfilter"
	"github.com/stretchr/testify/require"
)

func TestSelect_PriorityOrder(t *testing.T) {
	id := [32]byte{1}
	author := [32]byte{2}

	require.Equal(t, ByID, Select(&nostrfilter.Filter{IDs: [][32]byte{id}, Tags: []nostrfilter.TagFilter{{Name: 'e'}}}))
	require.Equal(t, ByTag, Select(&nostrfilter.Filter{Tags: []nostrfilter.TagFilter{{Name: 'e'}}, Authors: [][32]byte{author}, Kinds: []uint32{1}}))
	require.Equal(t, ByPubkeyKind, Select(&nostrfilter.Filter{Authors: [][32]byte{author}, Kinds: []uint32{1}}))
	require.Equal(t, ByPubkey, Select(&nostrfilter.Filter{Authors: [][32]byte{author}}))
	require.Equal(t, ByKind, Select(&nostrfilter.Filter{Kinds: []uint32{1}}))
	require.Equal(t, TimelineScan, Select(&nostrfilter.Filter{}))
}
