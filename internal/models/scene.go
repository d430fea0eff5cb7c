/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

// DialogueEvent is one spoken line within a DJ scene node.
type DialogueEvent struct {
	// SubtitleRUID keys into the station's subtitle table.
	SubtitleRUID string `json:"subtitle_ruid"`
}

// SceneData is the pre-extracted dialogue data for one DJ.
type SceneData struct {
	// Subtitles maps subtitle resource ids to caption text.
	Subtitles map[string]string
	// AudioEvents maps scene node ids to their dialogue events.
	AudioEvents map[int][]DialogueEvent
	// LinkPaths are ordered node-id sequences the DJ speaks as one link.
	LinkPaths [][]int
	// EndNodes are terminal nodes usable as DJ-voiced jingles.
	EndNodes []int
}
