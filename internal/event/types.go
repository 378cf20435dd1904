package event

// ConnectionChangedData is the data for connection.info events.
type ConnectionChangedData struct {
	Session uint64 `json:"session"`
	What    string `json:"what"`
	Why     string `json:"why,omitempty"`
	UUID    string `json:"uuid,omitempty"`
	Address string `json:"address"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// InitFailedData is the data for init.failed events.
type InitFailedData struct {
	Session uint64 `json:"session"`
	What    string `json:"what"`
	Why     string `json:"why"`
}

// AsyncCallCompletedData is the data for async.completed events.
type AsyncCallCompletedData struct {
	Session uint64 `json:"session"`
	CallID  int32  `json:"callID"`
	What    string `json:"what"`
	Result  any    `json:"result"`
	CostMs  int64  `json:"costMs"`
}

// TaskChainData is the data for taskchain.* events.
type TaskChainData struct {
	Session   uint64 `json:"session"`
	TaskChain string `json:"taskchain"`
	TaskID    int32  `json:"taskID"`
}

// TasksCompletedData is the data for tasks.completed events.
type TasksCompletedData struct {
	Session uint64 `json:"session"`
}

// ItemCount is an item id with its resolved name and a quantity.
type ItemCount struct {
	ItemID   string `json:"itemID"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// StageDropsData is the data for stage.drops events.
type StageDropsData struct {
	Session   uint64      `json:"session"`
	StageCode string      `json:"stageCode"`
	Stars     int         `json:"stars"`
	Drops     []ItemCount `json:"drops"`
	Totals    []ItemCount `json:"totals,omitempty"`
}

// RecruitReportedData is the data for recruit.result events.
type RecruitReportedData struct {
	Session uint64   `json:"session"`
	Tags    []string `json:"tags"`
	Level   int      `json:"level"`
}

// EngineDiagnosticData is the data for internal.error events.
type EngineDiagnosticData struct {
	Session uint64 `json:"session"`
	Payload string `json:"payload"`
}

// ItemsReloadedData is the data for items.reloaded events.
type ItemsReloadedData struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}
