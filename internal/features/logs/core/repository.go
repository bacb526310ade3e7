package logs_core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const createBatchSize = 500

type LogRecordRepository struct {
	db *gorm.DB
}

func NewLogRecordRepository(db *gorm.DB) *LogRecordRepository {
	return &LogRecordRepository{db: db}
}

func (r *LogRecordRepository) EnsureSchema() error {
	if err := r.db.AutoMigrate(&LogRecord{}); err != nil {
		return fmt.Errorf("failed to create %s table: %w", LogRecord{}.TableName(), err)
	}

	return nil
}

func (r *LogRecordRepository) DeleteAll(ctx context.Context) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&LogRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete log records: %w", err)
	}

	return nil
}

func (r *LogRecordRepository) CreateBatch(ctx context.Context, records []*LogRecord) error {
	if len(records) == 0 {
		return nil
	}

	for _, record := range records {
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
	}

	if err := r.db.WithContext(ctx).CreateInBatches(records, createBatchSize).Error; err != nil {
		return fmt.Errorf("failed to save %d log records: %w", len(records), err)
	}

	return nil
}

func (r *LogRecordRepository) FindByError(ctx context.Context, isError bool) ([]*LogRecord, error) {
	records := make([]*LogRecord, 0)

	err := r.db.WithContext(ctx).
		Where("is_error = ?", isError).
		Order("date_time ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query log records: %w", err)
	}

	return records, nil
}
