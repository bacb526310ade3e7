package logs_core

import (
	"sync"

	"logpulse/internal/storage"
)

var (
	repositoryOnce      sync.Once
	logRecordRepository *LogRecordRepository
)

func GetLogRecordRepository() *LogRecordRepository {
	repositoryOnce.Do(func() {
		logRecordRepository = NewLogRecordRepository(storage.GetDb())
	})

	return logRecordRepository
}
