package store

// RunState is the in-memory snapshot of a generation run while it is still
// moving through the pipeline. The database row is the durable record; this
// is what progress queries and websocket pushes read without touching it.
type RunState struct {
	ID      string `json:"id"` // GenerationRun ID
	UserID  string `json:"user_id"`
	BotName string `json:"bot_name"`
	Stage   string `json:"stage"`

	// Flow progress within the run
	FlowsTotal int    `json:"flows_total"`
	FlowsDone  int    `json:"flows_done"`
	ActiveFlow string `json:"active_flow"`

	// Repair loop progress
	RepairRound int `json:"repair_round"`
	BrokenRows  int `json:"broken_rows"`
}

const (
	StageSerializing = "SERIALIZING"
	StageValidating  = "VALIDATING"
	StageRepairing   = "REPAIRING"
	StageDone        = "DONE"
	StageFailed      = "FAILED"
)
