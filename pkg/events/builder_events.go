package events

import "time"

// Event type codes published on the internal bus.
const (
	TypeRunCompleted  = "RUN_COMPLETED"
	TypeRepairApplied = "REPAIR_APPLIED"
)

// NewRunCompleted is published when a generation run reaches a terminal
// status, valid or not.
func NewRunCompleted(runId, userId, botName, status string, repairRounds int) Event {
	return BaseEvent{
		Type: TypeRunCompleted,
		Data: map[string]interface{}{
			"run_id":        runId,
			"user_id":       userId,
			"bot_name":      botName,
			"status":        status,
			"repair_rounds": repairRounds,
		},
		OccurredAt: time.Now(),
	}
}

// NewRepairApplied is published after each repair round, successful or not.
func NewRepairApplied(runId string, round, fixedCount, brokenCount int, mode string) Event {
	return BaseEvent{
		Type: TypeRepairApplied,
		Data: map[string]interface{}{
			"run_id":       runId,
			"round":        round,
			"fixed_count":  fixedCount,
			"broken_count": brokenCount,
			"mode":         mode,
		},
		OccurredAt: time.Now(),
	}
}
