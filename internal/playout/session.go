/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playout

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/friendsincode/radioport/internal/catalog"
	"github.com/friendsincode/radioport/internal/events"
	"github.com/friendsincode/radioport/internal/history"
	"github.com/friendsincode/radioport/internal/models"
	"github.com/friendsincode/radioport/internal/notify"
	"github.com/friendsincode/radioport/internal/player"
	"github.com/friendsincode/radioport/internal/sequencer"
	"github.com/friendsincode/radioport/internal/telemetry"
)

// ErrNotTuned indicates Run was called before any station was tuned.
var ErrNotTuned = errors.New("no station tuned")

// NowPlaying is a snapshot of the event currently being played.
type NowPlaying struct {
	Station   string           `json:"station"`
	Kind      models.EventKind `json:"kind"`
	Artist    string           `json:"artist,omitempty"`
	Title     string           `json:"title,omitempty"`
	ClipCount int              `json:"clip_count"`
	StartedAt time.Time        `json:"started_at"`
}

// Session drives one station at a time: it owns the sequencer for the tuned
// station, executes its events through the driver, and reflects progress onto
// the bus, the metrics registry and the history store. All transport commands
// (skip, retune) funnel through here, so player mutation stays single-threaded.
type Session struct {
	catalog  *catalog.Catalog
	bus      *events.Bus
	store    *history.Store // optional
	notifier notify.Notifier
	logger   zerolog.Logger
	bias     float64
	driver   *Driver

	mu      sync.Mutex
	seq     *sequencer.Sequencer
	profile models.StationProfile
	pending string
	now     NowPlaying
}

// NewSession wires a session around the shared player. store may be nil to
// disable history.
func NewSession(cat *catalog.Catalog, p player.Player, bus *events.Bus, store *history.Store, notifier notify.Notifier, repeatBias float64, logger zerolog.Logger) *Session {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	s := &Session{
		catalog:  cat,
		bus:      bus,
		store:    store,
		notifier: notifier,
		logger:   logger,
		bias:     repeatBias,
	}
	s.driver = NewDriver(p, s.emitCaption, s.emitNowPlaying, logger)
	return s
}

// Tune switches the session to a station, replacing the current sequencer.
// The abandoned sequencer holds no resources beyond the player's loaded clip.
func (s *Session) Tune(name string, forceJingle bool) error {
	station, err := s.catalog.Station(name)
	if err != nil {
		return err
	}

	seq, err := sequencer.New(sequencer.Config{
		Profile:     station.Profile,
		Tracks:      station.Tracks,
		Adverts:     station.Adverts,
		Jingles:     station.Jingles,
		Scene:       station.Scene,
		Resolver:    s.catalog,
		RNG:         rand.New(rand.NewSource(time.Now().UnixNano())),
		RepeatBias:  s.bias,
		ForceJingle: forceJingle,
		Logger:      s.logger,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.seq = seq
	s.profile = station.Profile
	s.now = NowPlaying{Station: name}
	s.mu.Unlock()

	telemetry.StationChanges.Inc()
	s.bus.Publish(events.EventStationChange, events.Payload{"station": name})
	s.logger.Info().Str("station", name).Bool("dj", station.Profile.HasDJ()).Msg("tuned")
	return nil
}

// Retune requests a station switch. The in-flight event is cancelled via the
// skip flag; the switch happens before the next event plays.
func (s *Session) Retune(name string) error {
	if _, err := s.catalog.Station(name); err != nil {
		return err
	}

	s.mu.Lock()
	s.pending = name
	s.mu.Unlock()

	s.driver.Skip()
	return nil
}

// Skip cuts the current event short.
func (s *Session) Skip() {
	s.driver.Skip()
}

// Pause suspends playback. The event loop keeps waiting on the paused clip.
func (s *Session) Pause() error {
	return s.driver.Pause()
}

// Resume continues paused playback.
func (s *Session) Resume() error {
	return s.driver.Resume()
}

// NowPlaying returns a snapshot of the current event.
func (s *Session) NowPlaying() NowPlaying {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Run executes the event stream until the context is cancelled. A station
// must be tuned first.
func (s *Session) Run(ctx context.Context) error {
	tracer := telemetry.Tracer("radioport/playout")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.mu.Lock()
		if s.pending != "" {
			name := s.pending
			s.pending = ""
			s.mu.Unlock()
			// Mid-tune start on retune, same as the first tune-in.
			if err := s.Tune(name, false); err != nil {
				s.logger.Error().Err(err).Str("station", name).Msg("retune failed")
			}
			continue
		}
		seq := s.seq
		profile := s.profile
		s.mu.Unlock()

		if seq == nil {
			return ErrNotTuned
		}

		event, err := seq.Next()
		if err != nil {
			return err
		}

		s.mu.Lock()
		s.now = NowPlaying{
			Station:   profile.Name,
			Kind:      event.Kind,
			Artist:    event.Artist,
			Title:     event.Title,
			ClipCount: len(event.Clips),
			StartedAt: time.Now(),
		}
		s.mu.Unlock()

		s.bus.Publish(events.EventPlaybackStarted, events.Payload{
			"station": profile.Name,
			"kind":    string(event.Kind),
			"clips":   len(event.Clips),
		})

		spanCtx, span := tracer.Start(ctx, "play_event", trace.WithAttributes(
			attribute.String("station", profile.Name),
			attribute.String("kind", string(event.Kind)),
			attribute.Int("clips", len(event.Clips)),
		))
		started := time.Now()
		playErr := s.driver.PlayEvent(spanCtx, event)
		span.End()

		skipped := s.driver.Skipped()
		switch {
		case errors.Is(playErr, ErrMediaNotFound):
			telemetry.MediaMissing.Inc()
			s.bus.Publish(events.EventMediaMissing, events.Payload{
				"station": profile.Name,
				"kind":    string(event.Kind),
			})
			skipped = true
		case playErr != nil && ctx.Err() != nil:
			return ctx.Err()
		}

		s.finishEvent(ctx, profile, event, started, skipped)
	}
}

func (s *Session) finishEvent(ctx context.Context, profile models.StationProfile, event models.Event, started time.Time, skipped bool) {
	telemetry.EventsPlayed.WithLabelValues(profile.Name, string(event.Kind)).Inc()

	eventType := events.EventPlaybackEnded
	if skipped {
		telemetry.EventsSkipped.WithLabelValues(profile.Name).Inc()
		eventType = events.EventPlaybackSkipped
	}
	s.bus.Publish(eventType, events.Payload{
		"station": profile.Name,
		"kind":    string(event.Kind),
	})

	if s.store == nil {
		return
	}
	entry := models.PlayHistory{
		Station:   profile.Name,
		Kind:      string(event.Kind),
		Artist:    event.Artist,
		Title:     event.Title,
		ClipCount: len(event.Clips),
		Skipped:   skipped,
		StartedAt: started,
		EndedAt:   time.Now(),
	}
	if err := s.store.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("record play history failed")
	}
}

func (s *Session) emitCaption(event models.Event, clipIdx int, text string) {
	s.logger.Info().Msg(text)
	s.bus.Publish(events.EventCaption, events.Payload{
		"kind":    string(event.Kind),
		"caption": text,
		"clip":    clipIdx,
	})
}

func (s *Session) emitNowPlaying(event models.Event) {
	s.mu.Lock()
	station := s.profile.Name
	s.mu.Unlock()

	s.bus.Publish(events.EventNowPlaying, events.Payload{
		"station": station,
		"artist":  event.Artist,
		"title":   event.Title,
	})
	s.notifier.Send(station, event.Artist+" – "+event.Title, s.catalog.LogoPath(station))
}
