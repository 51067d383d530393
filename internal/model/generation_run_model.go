package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GenerationRun struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID      `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	BotName         string         `gorm:"type:text;not null"`
	Status          string         `gorm:"type:varchar(20);not null;index"`
	NodeCount       int            `gorm:"not null"`
	Artifact        string         `gorm:"type:text"`
	CorrectionNotes string         `gorm:"type:text"` // newline-joined serializer notes
	RepairRounds    int            `gorm:"not null;default:0"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (GenerationRun) TableName() string {
	return "generation_runs"
}

type RepairAttempt struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RunId        uuid.UUID `gorm:"type:uuid;not null;index"`
	Round        int       `gorm:"not null"`
	Mode         string    `gorm:"type:varchar(10);not null"`
	FixedCount   int       `gorm:"not null;default:0"`
	BrokenCount  int       `gorm:"not null;default:0"`
	ErrorSummary string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (RepairAttempt) TableName() string {
	return "repair_attempts"
}
