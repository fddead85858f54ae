package binfmt

import (
	"strings"
	"testing"

	"github.com/Hakkadaikon/nostrdb/errs"
	"github.com/Hakkadaikon/nostrdb/event"
	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializeTags_RoundTrip(t *testing.T) {
	tags := []event.Tag{
		{Name: "e", Values: []string{strings.Repeat("a", 32)}},
		{Name: "p", Values: []string{"one", "two", "three"}},
		{Name: "x", Values: nil},
	}

	buf := make([]byte, TagSetSize(tags))
	n, err := SerializeTags(tags, buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)

	got, consumed, err := DeserializeTags(buf)
	require.NoError(t, err)
	require.Equal(t, n, consumed)
	require.Equal(t, tags, got)
}

func TestSerializeTags_BufferTooSmall(t *testing.T) {
	tags := []event.Tag{{Name: "e", Values: []string{"v"}}}
	buf := make([]byte, 2)
	_, err := SerializeTags(tags, buf)
	require.ErrorIs(t, err, errs.ErrInvalidEvent)
}

func TestSerializeTags_NameTooLongForWire(t *testing.T) {
	tags := []event.Tag{{Name: strings.Repeat("n", 256), Values: nil}}
	buf := make([]byte, TagSetSize(tags))
	_, err := SerializeTags(tags, buf)
	require.ErrorIs(t, err, errs.ErrInvalidEvent)
}

func TestDeserializeTags_EnforcesConfiguredMaxima(t *testing.T) {
	// Hand-build a buffer whose name_len (40) exceeds event.MaxTagNameLen (31).
	buf := make([]byte, 2+1+1+40)
	PutU16(buf, 1)
	buf[2] = 0  // value_count
	buf[3] = 40 // name_len, exceeds configured max
	_, _, err := DeserializeTags(buf)
	require.ErrorIs(t, err, errs.ErrInvalidEvent)
}

func TestDeserializeTags_TruncatedInput(t *testing.T) {
	buf := []byte{0x01, 0x00, 0x00}
	_, _, err := DeserializeTags(buf)
	require.ErrorIs(t, err, errs.ErrInvalidEvent)
}

func TestDeserializeTags_EmptyTagSet(t *testing.T) {
	buf := make([]byte, 2)
	tags, n, err := DeserializeTags(buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Empty(t, tags)
}

func TestTagSetSize_MatchesWrittenLength(t *testing.T) {
	tags := []event.Tag{
		{Name: "t", Values: []string{"a", "bb", "ccc"}},
	}
	want := 2 + (1 + 1 + 1) + (2 + 1) + (2 + 2) + (2 + 3)
	require.Equal(t, want, TagSetSize(tags))
}
