package pagedfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenOrCreate_CreatesNewFileWithHeader(t *testing.T) {
	dir := t.TempDir()
	header := make([]byte, 16)
	copy(header, "TESTHDR0")

	f, created, err := OpenOrCreate(filepath.Join(dir, "f.dat"), "test", 16, 256, header)
	require.NoError(t, err)
	require.True(t, created)
	defer f.Close()

	require.Equal(t, header, f.Header())
	require.EqualValues(t, 256, f.Size())
}

func TestOpenOrCreate_ReopenDoesNotOverwriteHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.dat")
	header := make([]byte, 16)
	copy(header, "TESTHDR0")

	f1, _, err := OpenOrCreate(path, "test", 16, 256, header)
	require.NoError(t, err)
	copy(f1.Data()[16:20], []byte{1, 2, 3, 4})
	require.NoError(t, f1.Close())

	f2, created, err := OpenOrCreate(path, "test", 16, 256, header)
	require.NoError(t, err)
	require.False(t, created)
	defer f2.Close()
	require.Equal(t, []byte{1, 2, 3, 4}, f2.Data()[16:20])
}

func TestEnsureCapacity_GrowsAndPreservesData(t *testing.T) {
	dir := t.TempDir()
	header := make([]byte, 8)
	f, _, err := OpenOrCreate(filepath.Join(dir, "f.dat"), "test", 8, 64, header)
	require.NoError(t, err)
	defer f.Close()

	copy(f.Data()[8:12], []byte{9, 9, 9, 9})

	require.NoError(t, f.EnsureCapacity(10000))
	require.GreaterOrEqual(t, f.Size(), int64(10000))
	require.Equal(t, []byte{9, 9, 9, 9}, f.Data()[8:12])
}

func TestEnsureCapacity_NoopWhenAlreadyLargeEnough(t *testing.T) {
	dir := t.TempDir()
	f, _, err := OpenOrCreate(filepath.Join(dir, "f.dat"), "test", 8, 4096, make([]byte, 8))
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.EnsureCapacity(100))
	require.EqualValues(t, 4096, f.Size())
}

func TestSync_SucceedsOnMappedFile(t *testing.T) {
	dir := t.TempDir()
	f, _, err := OpenOrCreate(filepath.Join(dir, "f.dat"), "test", 8, 64, make([]byte, 8))
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.Sync(true))
	require.NoError(t, f.Sync(false))
}
