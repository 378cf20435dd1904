package notify

import (
	"encoding/json"
	"strings"
)

// SubTaskExtraInfo is the envelope of SubTaskExtraInfo notifications. Details
// is decoded further depending on Variant.
type SubTaskExtraInfo struct {
	Class     string          `json:"class"`
	What      string          `json:"what"`
	SubTask   string          `json:"subtask"`
	TaskChain string          `json:"taskchain"`
	TaskID    int32           `json:"taskid"`
	UUID      string          `json:"uuid"`
	Details   json.RawMessage `json:"details"`
}

// ExtraVariant classifies the details of a SubTaskExtraInfo.
type ExtraVariant int

const (
	ExtraOther ExtraVariant = iota
	ExtraStageDrops
	ExtraRecruitResult
)

const stageDropsPlugin = "asst::StageDropsTaskPlugin"

// Variant returns which details shape the envelope carries.
func (s SubTaskExtraInfo) Variant() ExtraVariant {
	switch {
	case s.What == "StageDrops" || s.What == stageDropsPlugin || s.Class == stageDropsPlugin:
		return ExtraStageDrops
	case s.What == "RecruitResult":
		return ExtraRecruitResult
	default:
		return ExtraOther
	}
}

// DecodeSubTaskExtraInfo decodes the envelope only.
func DecodeSubTaskExtraInfo(raw []byte) (SubTaskExtraInfo, error) {
	var info SubTaskExtraInfo
	err := decode(raw, &info, "taskchain", "what", "details")
	return info, err
}

// StageDrops is the battle-drop report emitted after each fight.
type StageDrops struct {
	Stars int         `json:"stars"`
	Stage Stage       `json:"stage"`
	Drops []Drop      `json:"drops"`
	Stats []DropStats `json:"stats,omitempty"`
}

// Stage identifies a battle stage.
type Stage struct {
	StageCode string `json:"stageCode"`
	StageID   string `json:"stageId"`
}

// Drop is one item dropped by a single fight.
type Drop struct {
	DropType string `json:"dropType"`
	ItemID   string `json:"itemId"`
	ItemName string `json:"itemName"`
	Quantity int    `json:"quantity"`
}

// DropStats is the running total for one item across the task.
type DropStats struct {
	ItemID      string `json:"itemId"`
	ItemName    string `json:"itemName"`
	Quantity    int    `json:"quantity"`
	AddQuantity int    `json:"addQuantity"`
}

// DecodeStageDrops decodes the details of a battle-drop report.
func DecodeStageDrops(details []byte) (StageDrops, error) {
	var drops StageDrops
	err := decode(details, &drops, "stars", "stage.stageCode", "drops")
	return drops, err
}

// RecruitResult is the tag recognition result of a recruitment slot.
type RecruitResult struct {
	Tags   []string             `json:"tags"`
	Level  int                  `json:"level"`
	Result []RecruitCombination `json:"result"`
}

// RecruitCombination is a tag combination and the operators it guarantees.
type RecruitCombination struct {
	Tags  []string          `json:"tags"`
	Level int               `json:"level"`
	Opers []RecruitOperator `json:"opers"`
}

// RecruitOperator is an operator obtainable from a tag combination.
type RecruitOperator struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// DecodeRecruitResult decodes the details of a recruitment report.
func DecodeRecruitResult(details []byte) (RecruitResult, error) {
	var result RecruitResult
	err := decode(details, &result, "tags", "level", "result")
	return result, err
}

// HasTag reports whether the recognized tags contain tag.
func (r RecruitResult) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
