/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playout

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/radioport/internal/models"
)

// fakePlayer reports each clip as finished after two Playing polls.
type fakePlayer struct {
	mu      sync.Mutex
	loaded  []string
	playing bool
	polls   int
	volume  float64
	volumes []float64
	seeks   []float64
	stops   int
	dur     float64
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{volume: 1.0, dur: 200}
}

func (f *fakePlayer) Load(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = append(f.loaded, path)
	return nil
}

func (f *fakePlayer) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = true
	f.polls = 0
	return nil
}

func (f *fakePlayer) Pause() error  { return nil }
func (f *fakePlayer) Resume() error { return nil }

func (f *fakePlayer) Seek(seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, seconds)
	return nil
}

func (f *fakePlayer) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

func (f *fakePlayer) SetVolume(v float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = v
	f.volumes = append(f.volumes, v)
	return nil
}

func (f *fakePlayer) Playing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.playing {
		return false
	}
	f.polls++
	if f.polls >= 2 {
		f.playing = false
	}
	return true
}

func (f *fakePlayer) Position() float64 { return 0 }
func (f *fakePlayer) Duration() float64 { return f.dur }

func (f *fakePlayer) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
	f.stops++
	return nil
}

func writeClips(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		if err := os.WriteFile(paths[i], []byte("audio"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return paths
}

func TestPlayEvent_PlaysAllClipsInOrder(t *testing.T) {
	fp := newFakePlayer()
	var captions []string
	driver := NewDriver(fp, func(_ models.Event, _ int, text string) {
		captions = append(captions, text)
	}, nil, zerolog.Nop())
	driver.poll = time.Millisecond

	clips := writeClips(t, "one.mp3", "two.mp3", "three.mp3")
	event := models.Event{
		Kind:     models.KindAdBreak,
		Clips:    clips,
		Captions: []string{"ad one", "ad two", "ad three"},
		AdCount:  3,
	}

	if err := driver.PlayEvent(context.Background(), event); err != nil {
		t.Fatalf("PlayEvent() error = %v", err)
	}

	if len(fp.loaded) != 3 {
		t.Fatalf("loaded %d clips, want 3", len(fp.loaded))
	}
	for i, clip := range clips {
		if fp.loaded[i] != clip {
			t.Errorf("clip %d loaded out of order: %s", i, fp.loaded[i])
		}
	}
	if len(captions) != 3 || captions[0] != "ad one" {
		t.Errorf("captions = %v", captions)
	}
	if driver.Skipped() {
		t.Error("event reported as skipped")
	}
}

func TestPlayEvent_SkipAbortsRemainingClipsAndEndDelay(t *testing.T) {
	fp := newFakePlayer()
	var driver *Driver
	driver = NewDriver(fp, func(_ models.Event, idx int, _ string) {
		if idx == 0 {
			// Skip arrives while the first clip is playing.
			driver.Skip()
		}
	}, nil, zerolog.Nop())
	driver.poll = time.Millisecond

	clips := writeClips(t, "one.mp3", "two.mp3", "three.mp3")
	event := models.Event{
		Kind:     models.KindAdBreak,
		Clips:    clips,
		Captions: []string{"a", "b", "c"},
		EndDelay: 5 * time.Second,
		AdCount:  3,
	}

	start := time.Now()
	if err := driver.PlayEvent(context.Background(), event); err != nil {
		t.Fatalf("PlayEvent() error = %v", err)
	}
	elapsed := time.Since(start)

	if len(fp.loaded) != 1 {
		t.Fatalf("loaded %d clips after skip, want 1", len(fp.loaded))
	}
	if !driver.Skipped() {
		t.Error("Skipped() = false after skip")
	}
	if elapsed > time.Second {
		t.Errorf("end delay applied despite skip (took %s)", elapsed)
	}
}

func TestPlayEvent_SkipResetsOnNextEvent(t *testing.T) {
	fp := newFakePlayer()
	driver := NewDriver(fp, nil, nil, zerolog.Nop())
	driver.poll = time.Millisecond

	clips := writeClips(t, "one.mp3")
	event := models.Event{Kind: models.KindJingle, Clips: clips}

	driver.Skip()
	if err := driver.PlayEvent(context.Background(), event); err != nil {
		t.Fatalf("PlayEvent() error = %v", err)
	}
	if driver.Skipped() {
		t.Error("skip flag survived into the next event")
	}
	if len(fp.loaded) != 1 {
		t.Errorf("loaded %d clips, want 1", len(fp.loaded))
	}
}

func TestPlayEvent_MissingClipSurfacesMediaNotFound(t *testing.T) {
	fp := newFakePlayer()
	driver := NewDriver(fp, nil, nil, zerolog.Nop())
	driver.poll = time.Millisecond

	present := writeClips(t, "one.mp3")
	event := models.Event{
		Kind:  models.KindAdBreak,
		Clips: []string{present[0], filepath.Join(t.TempDir(), "gone.mp3")},
		Captions: []string{
			"here", "gone",
		},
		AdCount: 2,
	}

	err := driver.PlayEvent(context.Background(), event)
	if !errors.Is(err, ErrMediaNotFound) {
		t.Fatalf("PlayEvent() error = %v, want ErrMediaNotFound", err)
	}
	if len(fp.loaded) != 1 {
		t.Errorf("loaded %d clips, want only the one before the gap", len(fp.loaded))
	}
}

func TestPlayEvent_TuneFiresNowPlayingBeforePlayback(t *testing.T) {
	fp := newFakePlayer()
	notified := false
	driver := NewDriver(fp, nil, func(event models.Event) {
		notified = true
		if len(fp.loaded) != 0 {
			t.Error("now-playing fired after clip load")
		}
		if event.Artist != "Artemis Delta" {
			t.Errorf("artist = %q", event.Artist)
		}
	}, zerolog.Nop())
	driver.poll = time.Millisecond

	clips := writeClips(t, "tune.mp3")
	event := models.Event{
		Kind:   models.KindTune,
		Clips:  clips,
		Artist: "Artemis Delta",
		Title:  "Neon Rain",
	}

	if err := driver.PlayEvent(context.Background(), event); err != nil {
		t.Fatalf("PlayEvent() error = %v", err)
	}
	if !notified {
		t.Error("now-playing callback never fired")
	}
}

func TestPlayEvent_MidTuneStartSeeksWithVolumeDip(t *testing.T) {
	fp := newFakePlayer()
	driver := NewDriver(fp, nil, nil, zerolog.Nop())
	driver.poll = time.Millisecond

	clips := writeClips(t, "tune.mp3")
	event := models.Event{
		Kind:       models.KindTune,
		Clips:      clips,
		Artist:     "a",
		Title:      "t",
		StartPoint: 60,
	}

	if err := driver.PlayEvent(context.Background(), event); err != nil {
		t.Fatalf("PlayEvent() error = %v", err)
	}

	if len(fp.seeks) != 1 || fp.seeks[0] != 120 {
		t.Errorf("seeks = %v, want [120] (60%% of 200s)", fp.seeks)
	}
	// Muted for the seek, then restored.
	if len(fp.volumes) != 2 || fp.volumes[0] != 0 || fp.volumes[1] != 1.0 {
		t.Errorf("volume changes = %v, want [0 1]", fp.volumes)
	}
}

func TestPlayEvent_CaptionMismatchRejected(t *testing.T) {
	fp := newFakePlayer()
	driver := NewDriver(fp, nil, nil, zerolog.Nop())
	driver.poll = time.Millisecond

	clips := writeClips(t, "one.mp3", "two.mp3")
	event := models.Event{
		Kind:     models.KindAdBreak,
		Clips:    clips,
		Captions: []string{"only one"},
		AdCount:  2,
	}

	if err := driver.PlayEvent(context.Background(), event); !errors.Is(err, models.ErrCaptionMismatch) {
		t.Fatalf("PlayEvent() error = %v, want ErrCaptionMismatch", err)
	}
	if len(fp.loaded) != 0 {
		t.Error("clips loaded despite invalid event")
	}
}

func TestPlayEvent_ContextCancellationStopsPlayback(t *testing.T) {
	fp := newFakePlayer()
	driver := NewDriver(fp, nil, nil, zerolog.Nop())
	driver.poll = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	clips := writeClips(t, "one.mp3", "two.mp3")
	event := models.Event{Kind: models.KindAdBreak, Clips: clips, AdCount: 2}

	if err := driver.PlayEvent(ctx, event); !errors.Is(err, context.Canceled) {
		t.Fatalf("PlayEvent() error = %v, want context.Canceled", err)
	}
	if len(fp.loaded) != 0 {
		t.Errorf("loaded %d clips under cancelled context, want 0", len(fp.loaded))
	}
}
