/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playout

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/radioport/internal/models"
	"github.com/friendsincode/radioport/internal/player"
)

// ErrMediaNotFound indicates a clip referenced by an event is missing on
// disk. The driver aborts the rest of the event; the stream continues.
var ErrMediaNotFound = errors.New("media file not found")

const defaultPollInterval = 100 * time.Millisecond

// CaptionFunc receives per-clip caption text as clips begin playing.
type CaptionFunc func(event models.Event, clipIdx int, text string)

// NowPlayingFunc is invoked for tune events before their clip starts.
type NowPlayingFunc func(event models.Event)

// Driver executes events against the player: delays, per-clip playback,
// captions and the skip flag. One driver serves one station session; no two
// events ever play concurrently.
type Driver struct {
	player     player.Player
	logger     zerolog.Logger
	poll       time.Duration
	captions   CaptionFunc
	nowPlaying NowPlayingFunc

	skip atomic.Bool
}

// NewDriver creates a playback driver. captions and nowPlaying may be nil.
func NewDriver(p player.Player, captions CaptionFunc, nowPlaying NowPlayingFunc, logger zerolog.Logger) *Driver {
	return &Driver{
		player:     p,
		logger:     logger,
		poll:       defaultPollInterval,
		captions:   captions,
		nowPlaying: nowPlaying,
	}
}

// Skip aborts the remaining clips and delays of the event currently playing.
// It only affects the current event; the flag resets when the next one starts.
func (d *Driver) Skip() {
	d.skip.Store(true)
	if err := d.player.Stop(); err != nil {
		d.logger.Debug().Err(err).Msg("stop on skip failed")
	}
}

// Skipped reports whether the last event was cut short.
func (d *Driver) Skipped() bool {
	return d.skip.Load()
}

// Pause suspends the clip currently playing.
func (d *Driver) Pause() error {
	return d.player.Pause()
}

// Resume continues a paused clip.
func (d *Driver) Resume() error {
	return d.player.Resume()
}

// PlayEvent plays one event to completion, honoring its delays. Clip files
// missing on disk surface ErrMediaNotFound and abort the event early, like a
// skip. Player backend failures are logged and swallowed.
func (d *Driver) PlayEvent(ctx context.Context, event models.Event) error {
	d.skip.Store(false)

	if err := event.Validate(); err != nil {
		return err
	}

	switch event.Kind {
	case models.KindAdBreak:
		d.logger.Info().Int("ads", event.AdCount).Msg("ad break")
	case models.KindJingle:
		d.logger.Info().Msg("jingle")
	case models.KindLink:
		d.logger.Info().Int("node", event.NodeID).Msg("dj link")
	}

	d.sleep(ctx, event.StartDelay)

	for idx, clip := range event.Clips {
		if d.skip.Load() || ctx.Err() != nil {
			break
		}

		if _, err := os.Stat(clip); err != nil {
			d.logger.Warn().Str("clip", clip).Msg("clip missing, aborting event")
			return fmt.Errorf("%w: %s", ErrMediaNotFound, clip)
		}

		if event.Kind == models.KindTune && idx == 0 && d.nowPlaying != nil {
			d.nowPlaying(event)
		}

		if err := d.playClip(ctx, event, idx, clip); err != nil {
			d.logger.Warn().Err(err).Str("clip", clip).Msg("player failure, continuing")
		}

		if !d.skip.Load() && idx < len(event.Clips)-1 {
			d.sleep(ctx, event.InnerDelay)
		}
	}

	if !d.skip.Load() {
		d.sleep(ctx, event.EndDelay)
	}

	return ctx.Err()
}

func (d *Driver) playClip(ctx context.Context, event models.Event, idx int, clip string) error {
	midTune := event.Kind == models.KindTune && event.StartPoint > 0 && idx == 0

	lastVolume := d.player.Volume()
	if midTune {
		// Mute while seeking so the first moments at position zero are
		// not audible.
		if err := d.player.SetVolume(0); err != nil {
			d.logger.Debug().Err(err).Msg("mute before seek failed")
		}
	}

	if err := d.player.Load(clip); err != nil {
		return fmt.Errorf("load clip: %w", err)
	}
	if err := d.player.Play(); err != nil {
		return fmt.Errorf("play clip: %w", err)
	}

	if d.captions != nil {
		if text := event.Caption(idx); text != "" {
			d.captions(event, idx, text)
		}
	}

	if midTune {
		target := d.player.Duration() / 100 * float64(event.StartPoint)
		if err := d.player.Seek(target); err != nil {
			d.logger.Debug().Err(err).Msg("mid-tune seek failed")
		}
		if err := d.player.SetVolume(lastVolume); err != nil {
			d.logger.Debug().Err(err).Msg("volume restore failed")
		}
	}

	d.wait(ctx)
	return nil
}

// wait polls the player's playing predicate cooperatively until the clip
// finishes, the event is skipped, or the context is cancelled.
func (d *Driver) wait(ctx context.Context) {
	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()

	for d.player.Playing() {
		if d.skip.Load() {
			return
		}
		select {
		case <-ctx.Done():
			if err := d.player.Stop(); err != nil {
				d.logger.Debug().Err(err).Msg("stop on cancel failed")
			}
			return
		case <-ticker.C:
		}
	}
}

// sleep waits for the given delay, returning early on skip or cancellation.
func (d *Driver) sleep(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}

	deadline := time.Now().Add(delay)
	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		if d.skip.Load() {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
