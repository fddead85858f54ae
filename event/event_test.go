package event

import (
	"testing"

	"github.com/Hakkadaikon/nostrdb/errs"
	"github.com/stretchr/testify/require"
)

func TestValidate_RejectsNil(t *testing.T) {
	require.ErrorIs(t, Validate(nil), errs.ErrNullParam)
}

func TestValidate_AcceptsMinimalEvent(t *testing.T) {
	e := &Event{Kind: 1, CreatedAt: 1704067200, Content: "hi"}
	require.NoError(t, Validate(e))
}

func TestValidate_RejectsOversizedContent(t *testing.T) {
	e := &Event{Content: string(make([]byte, MaxContentLength+1))}
	require.ErrorIs(t, Validate(e), errs.ErrInvalidEvent)
}

func TestValidate_RejectsTooManyTags(t *testing.T) {
	e := &Event{Tags: make([]Tag, MaxTagCount+1)}
	require.ErrorIs(t, Validate(e), errs.ErrInvalidEvent)
}

func TestValidate_RejectsEmptyOrOversizedTagName(t *testing.T) {
	require.ErrorIs(t, Validate(&Event{Tags: []Tag{{Name: ""}}}), errs.ErrInvalidEvent)

	longName := string(make([]byte, MaxTagNameLen+1))
	require.ErrorIs(t, Validate(&Event{Tags: []Tag{{Name: longName}}}), errs.ErrInvalidEvent)
}

func TestValidate_RejectsOversizedTagValue(t *testing.T) {
	e := &Event{Tags: []Tag{{Name: "e", Values: []string{string(make([]byte, MaxTagValueLen+1))}}}}
	require.ErrorIs(t, Validate(e), errs.ErrInvalidEvent)
}
