package eventlog

import (
	"path/filepath"
	"testing"

	"github.com/Hakkadaikon/nostrdb/binfmt"
	"github.com/Hakkadaikon/nostrdb/errs"
	"github.com/Hakkadaikon/nostrdb/event"
	"github.com/stretchr/testify/require"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	dir := t.TempDir()
	l, err := Open(filepath.Join(dir, "events.dat"), 1<<16)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func sampleEvent(id byte) *event.Event {
	e := &event.Event{Kind: 1, CreatedAt: 1704067200, Content: "Hello"}
	e.ID[0] = id
	e.PubKey[0] = 0x02
	return e
}

func TestLog_AppendAndReadEvent(t *testing.T) {
	l := newTestLog(t)
	e := sampleEvent(0x01)

	tagBuf := make([]byte, binfmt.TagSetSize(e.Tags))
	n, err := binfmt.SerializeTags(e.Tags, tagBuf)
	require.NoError(t, err)

	offset, err := l.Append(e, tagBuf[:n])
	require.NoError(t, err)

	got, err := l.ReadEvent(offset, binfmt.DeserializeTags)
	require.NoError(t, err)
	require.Equal(t, e.ID, got.ID)
	require.Equal(t, "Hello", got.Content)

	count, deleted, _ := l.Stats()
	require.EqualValues(t, 1, count)
	require.EqualValues(t, 0, deleted)
}

func TestLog_MarkDeleted(t *testing.T) {
	l := newTestLog(t)
	e := sampleEvent(0x02)
	offset, err := l.Append(e, nil)
	require.NoError(t, err)

	require.NoError(t, l.MarkDeleted(offset))
	_, err = l.ReadEvent(offset, binfmt.DeserializeTags)
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, deleted, _ := l.Stats()
	require.EqualValues(t, 1, deleted)
}

func TestLog_GrowsPastInitialSize(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(filepath.Join(dir, "events.dat"), 128)
	require.NoError(t, err)
	defer l.Close()

	content := make([]byte, 4096)
	for i := 0; i < 50; i++ {
		e := sampleEvent(byte(i))
		e.Content = string(content)
		_, err := l.Append(e, nil)
		require.NoError(t, err)
	}
	count, _, fileSize := l.Stats()
	require.EqualValues(t, 50, count)
	require.Greater(t, fileSize, uint64(128))
}

func TestRecordSize_IsEightByteAligned(t *testing.T) {
	size := RecordSize(3, 5)
	require.Zero(t, size%8)
}
