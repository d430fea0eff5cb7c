/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

// DJProfile describes a station's DJ and where the pre-extracted dialogue
// data for them lives.
type DJProfile struct {
	// Name is the DJ's display name.
	Name string `yaml:"name"`
	// SceneFile is the stem of the scene-graph file the dialogue was extracted from.
	SceneFile string `yaml:"scene_file"`
	// AudioPrefix is the filename prefix of the DJ's extracted audio and data files.
	AudioPrefix string `yaml:"audio_prefix"`
}

// StationProfile is the static description of one radio station.
// Profiles are immutable once loaded from the catalog.
type StationProfile struct {
	Name       string     `yaml:"name"`
	DJ         *DJProfile `yaml:"dj,omitempty"`
	HasAds     bool       `yaml:"has_ads"`
	HasJingles bool       `yaml:"has_jingles"`
}

// HasDJ reports whether the station has a DJ.
func (s StationProfile) HasDJ() bool {
	return s.DJ != nil
}

// Track describes one song in a station's rotation.
type Track struct {
	Artist string `yaml:"artist"`
	Title  string `yaml:"title"`
	// FileStub is the clip filename without directory or extension.
	FileStub string `yaml:"file"`
}
