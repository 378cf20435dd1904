package engine

import "fmt"

// MessageKind is the numeric message id passed to the engine callback.
type MessageKind int32

const (
	InternalError     MessageKind = 0
	InitFailed        MessageKind = 1
	ConnectionInfo    MessageKind = 2
	AllTasksCompleted MessageKind = 3
	AsyncCallInfo     MessageKind = 4

	TaskChainError     MessageKind = 10000
	TaskChainStart     MessageKind = 10001
	TaskChainCompleted MessageKind = 10002
	TaskChainExtraInfo MessageKind = 10003
	TaskChainStopped   MessageKind = 10004

	SubTaskError     MessageKind = 20000
	SubTaskStart     MessageKind = 20001
	SubTaskCompleted MessageKind = 20002
	SubTaskExtraInfo MessageKind = 20003
	SubTaskStopped   MessageKind = 20004
)

var kindNames = map[MessageKind]string{
	InternalError:      "InternalError",
	InitFailed:         "InitFailed",
	ConnectionInfo:     "ConnectionInfo",
	AllTasksCompleted:  "AllTasksCompleted",
	AsyncCallInfo:      "AsyncCallInfo",
	TaskChainError:     "TaskChainError",
	TaskChainStart:     "TaskChainStart",
	TaskChainCompleted: "TaskChainCompleted",
	TaskChainExtraInfo: "TaskChainExtraInfo",
	TaskChainStopped:   "TaskChainStopped",
	SubTaskError:       "SubTaskError",
	SubTaskStart:       "SubTaskStart",
	SubTaskCompleted:   "SubTaskCompleted",
	SubTaskExtraInfo:   "SubTaskExtraInfo",
	SubTaskStopped:     "SubTaskStopped",
}

// Known reports whether k is one of the message kinds the engine documents.
func (k MessageKind) Known() bool {
	_, ok := kindNames[k]
	return ok
}

func (k MessageKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("MessageKind(%d)", int32(k))
}

// IsTaskChain reports whether k belongs to the 10000 range.
func (k MessageKind) IsTaskChain() bool {
	return k >= TaskChainError && k <= TaskChainStopped
}

// IsSubTask reports whether k belongs to the 20000 range.
func (k MessageKind) IsSubTask() bool {
	return k >= SubTaskError && k <= SubTaskStopped
}
