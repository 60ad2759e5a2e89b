package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterEvent(t *testing.T) {
	ev := &ParameterEvent{
		Node:              "/robot",
		NewParameters:     []Parameter{IntegerParameter("a", 1), IntegerParameter("b", 2)},
		ChangedParameters: []Parameter{IntegerParameter("a", 3)},
		DeletedParameters: []Parameter{IntegerParameter("c", 0)},
	}

	got := FilterEvent(ev, []string{"a"}, []EventType{EventTypeNew, EventTypeChanged})
	require.Len(t, got, 2)
	assert.Equal(t, EventTypeNew, got[0].Type)
	assert.Equal(t, int64(1), got[0].Parameter.Value.IntegerValue)
	assert.Equal(t, EventTypeChanged, got[1].Type)
	assert.Equal(t, int64(3), got[1].Parameter.Value.IntegerValue)

	got = FilterEvent(ev, []string{"c"}, []EventType{EventTypeDeleted})
	require.Len(t, got, 1)
	assert.Equal(t, EventTypeDeleted, got[0].Type)

	got = FilterEvent(ev, []string{"a", "b"}, []EventType{EventTypeNew})
	assert.Len(t, got, 2)

	assert.Empty(t, FilterEvent(ev, []string{"nope"}, []EventType{EventTypeNew, EventTypeChanged, EventTypeDeleted}))
	assert.Empty(t, FilterEvent(ev, nil, []EventType{EventTypeNew}))
}

func TestMatchParameter(t *testing.T) {
	ev := &ParameterEvent{
		Node:          "/robot",
		NewParameters: []Parameter{StringParameter("mode", "auto")},
	}

	p, ok := matchParameter(ev, "mode", "/robot")
	require.True(t, ok)
	assert.Equal(t, "auto", p.Value.StringValue)

	// Exact node match only.
	_, ok = matchParameter(ev, "mode", "/robot2")
	assert.False(t, ok)
	_, ok = matchParameter(ev, "mode", "robot")
	assert.False(t, ok)
}
