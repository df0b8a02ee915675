package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLiteSlot persists the collection as one keyed row in SQLite.
type SQLiteSlot struct {
	db  *gorm.DB
	key string
}

func NewSQLiteSlot(db *gorm.DB, key string) *SQLiteSlot {
	return &SQLiteSlot{db: db, key: key}
}

func (s *SQLiteSlot) Read(ctx context.Context) ([]byte, bool, error) {
	var rec slotRecord
	err := s.db.WithContext(ctx).First(&rec, "key = ?", s.key).Error
	switch {
	case err == nil:
		return rec.Value, true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("read slot: %w", err)
	}
}

func (s *SQLiteSlot) Write(ctx context.Context, data []byte) error {
	rec := slotRecord{Key: s.key, Value: data}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("write slot: %w", err)
	}
	return nil
}
