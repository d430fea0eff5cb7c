/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package catalog loads the pre-extracted station content the sequencer
// draws from: station profiles, track lists, advert and jingle identifiers,
// and DJ scene data.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/friendsincode/radioport/internal/models"
)

// ErrUnknownStation indicates a station name not present in the catalog.
var ErrUnknownStation = errors.New("unknown station")

// stationEntry is the on-disk shape of one station in stations.yaml.
type stationEntry struct {
	models.StationProfile `yaml:",inline"`
	Tracks                []models.Track `yaml:"tracks"`
	Jingles               []int          `yaml:"jingles"`
}

type catalogFile struct {
	Stations []stationEntry `yaml:"stations"`
	Adverts  []string       `yaml:"adverts"`
}

// Station bundles one station's profile with its content pools.
type Station struct {
	Profile models.StationProfile
	Tracks  []models.Track
	Adverts []string
	Jingles []int
	Scene   *models.SceneData
}

// Catalog holds all stations and resolves content ids to clip paths.
type Catalog struct {
	dataRoot string
	stations map[string]Station
	names    []string
}

// Load reads stations.yaml and, for DJ-equipped stations, the DJ's extracted
// scene data from the data root.
func Load(stationsFile, dataRoot string) (*Catalog, error) {
	raw, err := os.ReadFile(stationsFile)
	if err != nil {
		return nil, fmt.Errorf("read stations file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse stations file: %w", err)
	}
	if len(file.Stations) == 0 {
		return nil, errors.New("stations file declares no stations")
	}

	c := &Catalog{dataRoot: dataRoot, stations: make(map[string]Station, len(file.Stations))}
	for _, entry := range file.Stations {
		if entry.Name == "" {
			return nil, errors.New("station with empty name in stations file")
		}
		if _, exists := c.stations[entry.Name]; exists {
			return nil, fmt.Errorf("duplicate station %q", entry.Name)
		}

		station := Station{
			Profile: entry.StationProfile,
			Tracks:  entry.Tracks,
			Adverts: file.Adverts,
			Jingles: entry.Jingles,
		}

		if entry.DJ != nil {
			scene, err := c.loadScene(entry.DJ)
			if err != nil {
				return nil, fmt.Errorf("station %q: %w", entry.Name, err)
			}
			station.Scene = scene
		}

		c.stations[entry.Name] = station
		c.names = append(c.names, entry.Name)
	}
	sort.Strings(c.names)

	return c, nil
}

// Names returns all station names, sorted.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Station looks up one station's content.
func (c *Catalog) Station(name string) (Station, error) {
	station, ok := c.stations[name]
	if !ok {
		return Station{}, fmt.Errorf("%w: %q", ErrUnknownStation, name)
	}
	return station, nil
}

// sceneFile is the on-disk shape of a DJ's extracted data JSON.
type sceneFile struct {
	Subtitles   map[string]string                 `json:"subtitles"`
	AudioEvents map[string][]models.DialogueEvent `json:"audio_events"`
	LinkPaths   [][]int                           `json:"link_paths"`
	EndNodes    []int                             `json:"end_nodes"`
}

func (c *Catalog) loadScene(dj *models.DJProfile) (*models.SceneData, error) {
	path := filepath.Join(c.dataRoot, "dj_data", dj.AudioPrefix+"_data.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dj data: %w", err)
	}

	var file sceneFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse dj data: %w", err)
	}

	scene := &models.SceneData{
		Subtitles:   file.Subtitles,
		AudioEvents: make(map[int][]models.DialogueEvent, len(file.AudioEvents)),
		LinkPaths:   file.LinkPaths,
		EndNodes:    file.EndNodes,
	}
	// JSON object keys are strings; node ids are numeric.
	for key, dialogue := range file.AudioEvents {
		node, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("non-numeric audio event node %q", key)
		}
		scene.AudioEvents[node] = dialogue
	}

	return scene, nil
}

// TrackClip resolves a station track to its extracted clip path.
func (c *Catalog) TrackClip(station string, track models.Track) string {
	return filepath.Join(c.dataRoot, "stations", station, track.FileStub+".mp3")
}

// AdvertClip resolves an advert identifier to its clip path.
func (c *Catalog) AdvertClip(id string) string {
	return filepath.Join(c.dataRoot, "adverts", id+".mp3")
}

// JingleClip resolves a standalone jingle id to its clip path.
func (c *Catalog) JingleClip(station string, id int) string {
	return filepath.Join(c.dataRoot, "stations", station, fmt.Sprintf("jingle_%d.mp3", id))
}

// DJClip resolves a DJ scene node to its concatenated dialogue clip path.
// eventCount is encoded in the extracted filename.
func (c *Catalog) DJClip(station string, node, eventCount int) string {
	return filepath.Join(c.dataRoot, "dj_audio", station, fmt.Sprintf("%d_%d.mp3", node, eventCount))
}

// LogoPath resolves a station's logo, used for now-playing notifications.
func (c *Catalog) LogoPath(station string) string {
	return filepath.Join(c.dataRoot, "logos", station+".png")
}
