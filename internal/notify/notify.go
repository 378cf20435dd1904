// Package notify decodes the JSON payloads attached to engine notifications.
//
// Each decoder checks that the fields the engine always sends are present
// before unmarshalling, so a truncated or foreign payload is reported instead
// of silently producing zero values.
package notify

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrMissingField is returned when a required payload field is absent.
var ErrMissingField = errors.New("missing required field")

// ErrInvalidJSON is returned for payloads that are not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON payload")

func decode(raw []byte, v any, required ...string) error {
	if !gjson.ValidBytes(raw) {
		return ErrInvalidJSON
	}
	for _, path := range required {
		if !gjson.GetBytes(raw, path).Exists() {
			return fmt.Errorf("%w: %s", ErrMissingField, path)
		}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// AsyncCallInfo reports completion of an asynchronous engine call.
type AsyncCallInfo struct {
	UUID        string           `json:"uuid"`
	What        string           `json:"what"`
	AsyncCallID int32            `json:"async_call_id"`
	Details     AsyncCallDetails `json:"details"`
}

// AsyncCallDetails carries the call result. Ret is whatever JSON value the
// engine produced; connect calls return a boolean.
type AsyncCallDetails struct {
	Ret  any   `json:"ret"`
	Cost int64 `json:"cost"`
}

// DecodeAsyncCallInfo decodes an AsyncCallInfo payload.
func DecodeAsyncCallInfo(raw []byte) (AsyncCallInfo, error) {
	var info AsyncCallInfo
	err := decode(raw, &info, "uuid", "what", "async_call_id", "details.ret", "details.cost")
	return info, err
}

// InitFailed reports that the engine could not initialise.
type InitFailed struct {
	What    string          `json:"what"`
	Why     string          `json:"why"`
	Details json.RawMessage `json:"details"`
}

// DecodeInitFailed decodes an InitFailed payload.
func DecodeInitFailed(raw []byte) (InitFailed, error) {
	var info InitFailed
	err := decode(raw, &info, "what", "why", "details")
	return info, err
}

// TaskChainInfo is the payload shared by every TaskChain notification.
type TaskChainInfo struct {
	TaskChain string `json:"taskchain"`
	TaskID    int32  `json:"taskid"`
	UUID      string `json:"uuid"`
}

// DecodeTaskChainInfo decodes a TaskChain payload.
func DecodeTaskChainInfo(raw []byte) (TaskChainInfo, error) {
	var info TaskChainInfo
	err := decode(raw, &info, "taskchain", "taskid", "uuid")
	return info, err
}

// SubTaskStart reports that a sub task began.
type SubTaskStart struct {
	Class     string         `json:"class"`
	SubTask   string         `json:"subtask"`
	TaskChain string         `json:"taskchain"`
	TaskID    int32          `json:"taskid"`
	UUID      string         `json:"uuid"`
	PreTask   string         `json:"pre_task,omitempty"`
	First     []string       `json:"first,omitempty"`
	Details   SubTaskDetails `json:"details"`
}

// SubTaskDetails describes the action a sub task performs.
type SubTaskDetails struct {
	Action    string `json:"action,omitempty"`
	Algorithm string `json:"algorithm,omitempty"`
	ExecTimes int    `json:"exec_times,omitempty"`
	MaxTimes  int    `json:"max_times,omitempty"`
	Task      string `json:"task,omitempty"`
}

// DecodeSubTaskStart decodes a SubTaskStart payload.
func DecodeSubTaskStart(raw []byte) (SubTaskStart, error) {
	var info SubTaskStart
	err := decode(raw, &info, "class", "subtask", "taskchain", "taskid", "uuid")
	return info, err
}
