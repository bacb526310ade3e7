package logs_ingestion

import (
	"time"

	"github.com/google/uuid"
)

type IngestionStatus string

const (
	IngestionStatusCompleted         IngestionStatus = "COMPLETED"
	IngestionStatusSourceUnavailable IngestionStatus = "SOURCE_UNAVAILABLE"
	IngestionStatusSourceEmpty       IngestionStatus = "SOURCE_EMPTY"
)

type IngestionResultDTO struct {
	CycleID         uuid.UUID       `json:"cycleId"`
	Status          IngestionStatus `json:"status"`
	RequestedProbes int             `json:"requestedProbes"`
	FailedProbes    int             `json:"failedProbes"`
	TotalLines      int             `json:"totalLines"`
	BlankLines      int             `json:"blankLines"`
	SkippedLines    int             `json:"skippedLines"`
	SavedRecords    int             `json:"savedRecords"`
	ErrorRecords    int             `json:"errorRecords"`
	StartedAt       time.Time       `json:"startedAt"`
	FinishedAt      time.Time       `json:"finishedAt"`
	// Joined is set when the caller attached to a cycle another caller started.
	Joined bool `json:"joined"`
}

type IngestLogsResponseDTO struct {
	Message string              `json:"message"`
	Result  *IngestionResultDTO `json:"result"`
}
