// Package storage journals settled fills and user configuration to SQLite.
// The journal is write-mostly audit data: the engine never reloads
// simulation state from it.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/domain"
)

// Storage wraps the SQLite journal database.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the journal at path.
func NewStorage(path string) (*Storage, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.FillRecord{}, &domain.AppConfig{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal database: %w", err)
	}

	return &Storage{db: db}, nil
}

// ======================================================================================
// Fill Journal
// ======================================================================================

// SaveFill appends a settled order to the journal.
func (s *Storage) SaveFill(rec *domain.FillRecord) error {
	return s.db.Create(rec).Error
}

// RecentFills returns the most recent fills, newest first.
func (s *Storage) RecentFills(limit int) ([]domain.FillRecord, error) {
	var fills []domain.FillRecord
	err := s.db.Order("id DESC").Limit(limit).Find(&fills).Error
	return fills, err
}

// CountFills returns the total number of journaled fills.
func (s *Storage) CountFills() (int64, error) {
	var count int64
	err := s.db.Model(&domain.FillRecord{}).Count(&count).Error
	return count, err
}

// ======================================================================================
// Config Operations
// ======================================================================================

// SaveConfig saves a user configuration value.
func (s *Storage) SaveConfig(key, value string) error {
	config := domain.AppConfig{
		Key:   key,
		Value: value,
	}
	return s.db.Save(&config).Error
}

// LoadConfigMap loads all user configurations as a map.
func (s *Storage) LoadConfigMap() (map[string]string, error) {
	var configs []domain.AppConfig
	if err := s.db.Find(&configs).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, cfg := range configs {
		result[cfg.Key] = cfg.Value
	}
	return result, nil
}
