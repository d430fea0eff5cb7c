/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package player defines the audio player capability the playout layer
// consumes, plus a backend that drives an external player process.
package player

// Player is the transport surface of an audio player. Implementations own a
// single loaded clip at a time; loading a new clip replaces the previous one.
type Player interface {
	// Load prepares a clip for playback without starting it.
	Load(path string) error
	// Play starts playback of the loaded clip.
	Play() error
	Pause() error
	Resume() error
	// Seek jumps to an absolute position, in seconds, within the loaded clip.
	Seek(seconds float64) error
	// Volume returns the current volume in [0,1].
	Volume() float64
	SetVolume(v float64) error
	// Playing reports whether the clip is still active. Paused clips count
	// as active.
	Playing() bool
	// Position returns the playback position in seconds.
	Position() float64
	// Duration returns the loaded clip's duration in seconds, or 0 if unknown.
	Duration() float64
	// Stop aborts playback of the loaded clip.
	Stop() error
}
