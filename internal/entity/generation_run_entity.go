package entity

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	RunStatusPending   = "pending"
	RunStatusGenerated = "generated"
	RunStatusValid     = "valid"
	RunStatusBroken    = "broken"
	RunStatusFailed    = "failed"
)

// GenerationRun is one build of a bot flow table, from plan intake through
// the validate-repair loop.
type GenerationRun struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	BotName         string
	Status          string
	NodeCount       int
	Artifact        string
	CorrectionNotes []string
	RepairRounds    int
	CreatedAt       time.Time
	UpdatedAt       *time.Time
	DeletedAt       *time.Time
	IsDeleted       bool
}

// RepairAttempt records one pass of the repair engine against a run.
type RepairAttempt struct {
	Id           uuid.UUID
	RunId        uuid.UUID
	Round        int
	Mode         string // "row" or "whole"
	FixedCount   int
	BrokenCount  int
	ErrorSummary string
	CreatedAt    time.Time
}
