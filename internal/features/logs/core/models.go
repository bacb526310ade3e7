package logs_core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LogRecord is one parsed line of the upstream log stream.
type LogRecord struct {
	ID        uuid.UUID  `json:"id"        gorm:"column:id;type:uuid;primaryKey"`
	Timestamp *time.Time `json:"timestamp" gorm:"column:date_time"`
	Message   string     `json:"message"   gorm:"column:log_message;not null"`
	IsError   bool       `json:"isError"   gorm:"column:is_error;index"`
}

func (LogRecord) TableName() string {
	return "server_logs"
}

const (
	errorPrefix   = "ERROR"
	warningPrefix = "WARNING"
)

// IsErrorMessage reports whether a trimmed message is an error or warning line.
// The prefixes are matched case-sensitively.
func IsErrorMessage(message string) bool {
	return strings.HasPrefix(message, errorPrefix) || strings.HasPrefix(message, warningPrefix)
}
