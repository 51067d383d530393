package dto

import (
	"encoding/json"
	"time"

	"ai-botbuilder-be/pkg/flowtable"

	"github.com/google/uuid"
)

type GenerateBotRequest struct {
	BotName string                `json:"bot_name" validate:"required"`
	Nodes   []flowtable.NodeInput `json:"nodes" validate:"required,min=1"`
	// Validate runs the compiled artifact through the external validator and
	// the repair loop. Off by default so pure serialization stays cheap.
	Validate          bool `json:"validate"`
	MaxRepairAttempts int  `json:"max_repair_attempts" validate:"omitempty,min=0,max=5"`
}

type RepairRequest struct {
	Artifact string          `json:"artifact" validate:"required"`
	Errors   json.RawMessage `json:"errors" validate:"required"`
}

type BuildResponse struct {
	RunId              uuid.UUID `json:"run_id"`
	Artifact           string    `json:"artifact"`
	CorrectionsApplied []string  `json:"corrections_applied,omitempty"`
	FixesApplied       []string  `json:"fixes_applied,omitempty"`
	StillBroken        []string  `json:"still_broken,omitempty"`
	RepairRounds       int       `json:"repair_rounds"`
	Status             string    `json:"status"`
}

type RepairResponse struct {
	Artifact     string   `json:"artifact"`
	FixesApplied []string `json:"fixes_applied,omitempty"`
	StillBroken  []string `json:"still_broken,omitempty"`
}

type RunSummaryResponse struct {
	Id        uuid.UUID `json:"id"`
	BotName   string    `json:"bot_name"`
	Status    string    `json:"status"`
	NodeCount int       `json:"node_count"`
	CreatedAt time.Time `json:"created_at"`
}

type RepairAttemptResponse struct {
	Round        int    `json:"round"`
	Mode         string `json:"mode"`
	FixedCount   int    `json:"fixed_count"`
	BrokenCount  int    `json:"broken_count"`
	ErrorSummary string `json:"error_summary,omitempty"`
}

type RunDetailResponse struct {
	Id              uuid.UUID               `json:"id"`
	BotName         string                  `json:"bot_name"`
	Status          string                  `json:"status"`
	NodeCount       int                     `json:"node_count"`
	Artifact        string                  `json:"artifact,omitempty"`
	CorrectionNotes []string                `json:"correction_notes,omitempty"`
	RepairRounds    int                     `json:"repair_rounds"`
	Attempts        []RepairAttemptResponse `json:"attempts,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
}

// RunProgressEnvelope is the bus payload carrying a progress update to the
// consumer that fans it out over websockets.
type RunProgressEnvelope struct {
	UserId   uuid.UUID       `json:"user_id"`
	Progress ProgressMessage `json:"progress"`
}

// ProgressMessage is pushed over the websocket while a run is in flight.
type ProgressMessage struct {
	RunId       string `json:"run_id"`
	Stage       string `json:"stage"`
	FlowsTotal  int    `json:"flows_total,omitempty"`
	FlowsDone   int    `json:"flows_done,omitempty"`
	ActiveFlow  string `json:"active_flow,omitempty"`
	RepairRound int    `json:"repair_round,omitempty"`
	BrokenRows  int    `json:"broken_rows,omitempty"`
}
