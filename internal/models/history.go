/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// PlayHistory stores executed playback events.
type PlayHistory struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Station   string `gorm:"index"`
	Kind      string `gorm:"type:varchar(16);index"`
	Artist    string `gorm:"index"`
	Title     string `gorm:"index"`
	ClipCount int
	Skipped   bool
	StartedAt time.Time
	EndedAt   time.Time
}
