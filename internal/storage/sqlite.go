package storage

import (
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SlotRecord is one row of the slots table.
type SlotRecord struct {
	Key       string `gorm:"column:slot_key;primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

// TableName pins the table name regardless of gorm naming strategy.
func (SlotRecord) TableName() string { return "slots" }

// SQLiteSlot stores slot values in a SQLite database.
type SQLiteSlot struct {
	db *gorm.DB
}

// OpenSQLiteSlot opens (or creates) the database at path and migrates the slots table.
func OpenSQLiteSlot(path string) (*SQLiteSlot, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return NewSQLiteSlot(db)
}

// NewSQLiteSlot wraps an open gorm connection.
func NewSQLiteSlot(db *gorm.DB) (*SQLiteSlot, error) {
	if err := db.AutoMigrate(&SlotRecord{}); err != nil {
		return nil, err
	}
	return &SQLiteSlot{db: db}, nil
}

func (s *SQLiteSlot) Read(key string) ([]byte, error) {
	var rec SlotRecord
	err := s.db.Where("slot_key = ?", key).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec.Value, nil
}

func (s *SQLiteSlot) Write(key string, data []byte) error {
	rec := SlotRecord{Key: key, Value: data, UpdatedAt: time.Now()}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

func (s *SQLiteSlot) Delete(key string) error {
	return s.db.Where("slot_key = ?", key).Delete(&SlotRecord{}).Error
}

// Close releases the underlying database handle.
func (s *SQLiteSlot) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
