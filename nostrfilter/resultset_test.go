package nostrfilter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResultSet_AddDeduplicatesByOffset(t *testing.T) {
	rs := NewResultSet()
	require.True(t, rs.Add(100, 1))
	require.False(t, rs.Add(100, 999)) // same offset, dropped regardless of created_at
	require.Equal(t, 1, rs.Len())
}

func TestResultSet_SortDescendingByCreatedAtIsStable(t *testing.T) {
	rs := NewResultSet()
	rs.Add(1, 100)
	rs.Add(2, 300)
	rs.Add(3, 200)
	rs.Add(4, 300) // ties with offset 2; must preserve relative insertion order

	rs.Sort()

	require.Equal(t, []int64{300, 300, 200, 100}, []int64{
		rs.CreatedAt(0), rs.CreatedAt(1), rs.CreatedAt(2), rs.CreatedAt(3),
	})
	require.EqualValues(t, 2, rs.Offset(0))
	require.EqualValues(t, 4, rs.Offset(1))
}

func TestResultSet_ApplyLimitTruncates(t *testing.T) {
	rs := NewResultSet()
	for i := uint64(1); i <= 10; i++ {
		rs.Add(i, int64(i))
	}
	rs.ApplyLimit(3)
	require.Equal(t, 3, rs.Len())
}

func TestResultSet_ApplyLimitNoopWhenLargerThanLen(t *testing.T) {
	rs := NewResultSet()
	rs.Add(1, 1)
	rs.ApplyLimit(100)
	require.Equal(t, 1, rs.Len())
}
