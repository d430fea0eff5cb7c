/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package history persists the log of executed playback events.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/friendsincode/radioport/internal/models"
)

// Store records played events in a local sqlite database.
type Store struct {
	db *gorm.DB
}

// Open connects to the sqlite database at dsn and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.PlayHistory{}); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Record stores one executed event. The ID is assigned here.
func (s *Store) Record(ctx context.Context, entry models.PlayHistory) error {
	entry.ID = uuid.NewString()
	return s.db.WithContext(ctx).Create(&entry).Error
}

// Recent returns the latest entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.PlayHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.PlayHistory
	err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// Prune deletes entries older than the retention window.
func (s *Store) Prune(ctx context.Context, retention time.Duration) error {
	cutoff := time.Now().Add(-retention)
	return s.db.WithContext(ctx).
		Where("started_at < ?", cutoff).
		Delete(&models.PlayHistory{}).Error
}

// Close releases database resources.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
