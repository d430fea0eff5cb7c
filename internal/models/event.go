/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"errors"
	"time"
)

// EventKind enumerates playback event categories.
type EventKind string

const (
	KindTune    EventKind = "tune"
	KindJingle  EventKind = "jingle"
	KindLink    EventKind = "link"
	KindAdBreak EventKind = "ad_break"
)

// ErrCaptionMismatch indicates the caption list does not line up with the clip list.
var ErrCaptionMismatch = errors.New("caption count does not match clip count")

// Event is one entry in a station's playback stream. Kind determines which of
// the variant fields are meaningful.
type Event struct {
	Kind EventKind

	// Clips are resolved audio file paths, played back to back.
	Clips []string

	// Captions hold per-clip display text. Either empty or the same length as Clips.
	Captions []string

	StartDelay time.Duration
	InnerDelay time.Duration
	EndDelay   time.Duration

	// Tune fields.
	Artist string
	Title  string
	// StartPoint is the percentage through the track to begin playback from.
	// Zero means play from the beginning.
	StartPoint int

	// Link fields.
	NodeID int

	// AdBreak fields.
	AdCount int
}

// Validate checks the clip/caption invariant.
func (e Event) Validate() error {
	if len(e.Captions) > 0 && len(e.Captions) != len(e.Clips) {
		return ErrCaptionMismatch
	}
	return nil
}

// Caption returns the caption for clip idx, or "" if none.
func (e Event) Caption(idx int) string {
	if idx < len(e.Captions) {
		return e.Captions[idx]
	}
	return ""
}
