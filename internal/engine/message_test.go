package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageKind_Known(t *testing.T) {
	tests := []struct {
		kind  MessageKind
		known bool
		name  string
	}{
		{InternalError, true, "InternalError"},
		{AsyncCallInfo, true, "AsyncCallInfo"},
		{TaskChainStopped, true, "TaskChainStopped"},
		{SubTaskExtraInfo, true, "SubTaskExtraInfo"},
		{5, false, "MessageKind(5)"},
		{10005, false, "MessageKind(10005)"},
		{-1, false, "MessageKind(-1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.known, tt.kind.Known())
			assert.Equal(t, tt.name, tt.kind.String())
		})
	}
}

func TestMessageKind_Ranges(t *testing.T) {
	assert.True(t, TaskChainStart.IsTaskChain())
	assert.False(t, TaskChainStart.IsSubTask())
	assert.True(t, SubTaskStopped.IsSubTask())
	assert.False(t, ConnectionInfo.IsTaskChain())
	assert.False(t, ConnectionInfo.IsSubTask())
}

func TestRejected(t *testing.T) {
	err := Rejected("AsstStart")
	assert.True(t, errors.Is(err, ErrRejected))
	assert.Contains(t, err.Error(), "AsstStart")
	assert.Equal(t, "TouchMode", OptionTouchMode.String())
	assert.Equal(t, "OptionKey(9)", OptionKey(9).String())
}
