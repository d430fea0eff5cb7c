/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package sequencer

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/radioport/internal/models"
	"github.com/friendsincode/radioport/internal/rotation"
)

var (
	// ErrNoDJ indicates a DJ-only operation was requested on a station
	// without DJ data. The candidate-set construction prevents this in
	// normal operation, so hitting it is a programming error.
	ErrNoDJ = errors.New("station has no DJ data")

	// ErrEmptyCatalog indicates a required content pool was empty.
	ErrEmptyCatalog = errors.New("station catalog is missing required content")
)

// ClipResolver maps content identifiers to playable clip paths.
type ClipResolver interface {
	TrackClip(station string, track models.Track) string
	AdvertClip(id string) string
	JingleClip(station string, id int) string
	DJClip(station string, node int, eventCount int) string
}

// Config assembles everything a station session needs to generate events.
type Config struct {
	Profile  models.StationProfile
	Tracks   []models.Track
	Adverts  []string
	Jingles  []int
	Scene    *models.SceneData // nil unless the station has a DJ
	Resolver ClipResolver
	RNG      *rand.Rand
	// RepeatBias is the down-weight applied to the previous break kind.
	// Zero means DefaultRepeatBias.
	RepeatBias float64
	// ForceJingle starts the stream with a jingle instead of the random
	// mid-tune / jingle opening draw.
	ForceJingle bool
	Logger      zerolog.Logger
}

// Sequencer generates the lazy, infinite event stream for one station
// session. It is pull-driven: abandoning it has no side effects beyond
// dropping the struct.
type Sequencer struct {
	profile  models.StationProfile
	resolver ClipResolver
	rng      *rand.Rand
	bias     float64
	logger   zerolog.Logger

	tracks  *rotation.Pool[models.Track]
	adverts *rotation.Pool[string]
	jingles *rotation.Pool[int]
	links   *rotation.Pool[[]int]
	scene   *models.SceneData

	forceJingle bool
	started     bool
	lastBreak   models.EventKind
	queue       []models.Event
}

// New builds a sequencer for one station session. Pools are created here and
// owned exclusively by the sequencer.
func New(cfg Config) (*Sequencer, error) {
	if cfg.Resolver == nil {
		return nil, errors.New("clip resolver is required")
	}
	if cfg.RNG == nil {
		return nil, errors.New("rand source is required")
	}

	bias := cfg.RepeatBias
	if bias == 0 {
		bias = DefaultRepeatBias
	}

	s := &Sequencer{
		profile:     cfg.Profile,
		resolver:    cfg.Resolver,
		rng:         cfg.RNG,
		bias:        bias,
		logger:      cfg.Logger,
		scene:       cfg.Scene,
		forceJingle: cfg.ForceJingle,
		// The opening draw counts as a jingle for anti-repetition purposes.
		lastBreak: models.KindJingle,
	}

	if cfg.Profile.HasDJ() && cfg.Scene == nil {
		return nil, fmt.Errorf("%w: station %q declares a DJ", ErrEmptyCatalog, cfg.Profile.Name)
	}

	var err error
	if s.tracks, err = rotation.New(cfg.RNG, cfg.Tracks); err != nil {
		return nil, fmt.Errorf("%w: station %q has no tracks", ErrEmptyCatalog, cfg.Profile.Name)
	}

	if cfg.Profile.HasAds {
		if s.adverts, err = rotation.New(cfg.RNG, cfg.Adverts); err != nil {
			return nil, fmt.Errorf("%w: station %q allows ads but has none", ErrEmptyCatalog, cfg.Profile.Name)
		}
	}

	jingles := cfg.Jingles
	if cfg.Scene != nil {
		jingles = cfg.Scene.EndNodes
	}
	if s.jingles, err = rotation.New(cfg.RNG, jingles); err != nil {
		return nil, fmt.Errorf("%w: station %q has no jingles", ErrEmptyCatalog, cfg.Profile.Name)
	}

	if cfg.Scene != nil && len(cfg.Scene.LinkPaths) > 0 {
		if s.links, err = rotation.New(cfg.RNG, cfg.Scene.LinkPaths); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Next returns the next event in the stream. It never runs out; errors are
// limited to logic errors in the station data.
func (s *Sequencer) Next() (models.Event, error) {
	for len(s.queue) == 0 {
		if err := s.refill(); err != nil {
			return models.Event{}, err
		}
	}
	next := s.queue[0]
	s.queue = s.queue[1:]
	return next, nil
}

func (s *Sequencer) refill() error {
	if !s.started {
		s.started = true
		return s.emitOpening()
	}
	return s.emitBreakAndTunes()
}

// emitOpening produces the once-per-session start block: either a jingle then
// tunes, or a tune block whose first entry may start part way through to
// simulate tuning in mid-song.
func (s *Sequencer) emitOpening() error {
	startWithJingle := s.forceJingle || s.rng.Intn(4) == 0
	if startWithJingle {
		if err := s.emitJingle(); err != nil {
			return err
		}
		s.emitTunes(0)
		return nil
	}

	offsets := []int{
		0,
		25 + s.rng.Intn(11), // ~30%
		55 + s.rng.Intn(12), // ~60%
		85 + s.rng.Intn(6),  // ~90%
	}
	s.emitTunes(offsets[s.rng.Intn(len(offsets))])
	return nil
}

// emitBreakAndTunes runs one steady-state iteration: a weighted non-music
// event followed by a fresh block of tunes.
func (s *Sequencer) emitBreakAndTunes() error {
	weights := applyRepeatBias(breakWeights(s.profile), s.lastBreak, s.bias)
	choice := pickWeighted(s.rng, weights)
	s.logger.Debug().Str("station", s.profile.Name).Str("break", string(choice)).Msg("break selected")
	s.lastBreak = choice

	switch choice {
	case models.KindLink:
		if err := s.emitLink(); err != nil {
			return err
		}
	case models.KindAdBreak:
		s.emitAdBreak()
		if s.rng.Intn(4) == 0 {
			if err := s.emitJingle(); err != nil {
				return err
			}
		}
	case models.KindJingle:
		if err := s.emitJingle(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unexpected break kind %q", choice)
	}

	s.emitTunes(0)
	return nil
}

// emitTunes queues 3-5 songs back to back. A nonzero startPoint marks the
// first tune to begin that percentage into the clip.
func (s *Sequencer) emitTunes(startPoint int) {
	count := 3 + s.rng.Intn(3)
	for i := 0; i < count; i++ {
		track := s.tracks.Pop()
		event := models.Event{
			Kind:     models.KindTune,
			Clips:    []string{s.resolver.TrackClip(s.profile.Name, track)},
			Captions: []string{fmt.Sprintf("%s – %s", track.Artist, track.Title)},
			Artist:   track.Artist,
			Title:    track.Title,
		}
		if i == 0 {
			event.StartPoint = startPoint
		}
		s.queue = append(s.queue, event)
	}
}

// emitJingle queues one station jingle. DJ-equipped stations with scene-node
// jingles speak them, so those expand through the link path machinery.
func (s *Sequencer) emitJingle() error {
	node := s.jingles.Pop()
	if s.scene != nil && len(s.scene.AudioEvents) > 0 {
		if !s.profile.HasDJ() {
			return ErrNoDJ
		}
		return s.emitLinkNodes([]int{node})
	}

	s.queue = append(s.queue, models.Event{
		Kind:       models.KindJingle,
		Clips:      []string{s.resolver.JingleClip(s.profile.Name, node)},
		StartDelay: 500 * time.Millisecond,
	})
	return nil
}

// emitLink queues one DJ link: every node in the popped link path becomes its
// own Link event.
func (s *Sequencer) emitLink() error {
	if !s.profile.HasDJ() || s.links == nil {
		return ErrNoDJ
	}
	return s.emitLinkNodes(s.links.Pop())
}

func (s *Sequencer) emitLinkNodes(nodes []int) error {
	if s.scene == nil {
		return ErrNoDJ
	}
	for _, node := range nodes {
		dialogue := s.scene.AudioEvents[node]
		captions := make([]string, 0, len(dialogue))
		for _, event := range dialogue {
			captions = append(captions, s.scene.Subtitles[event.SubtitleRUID])
		}
		s.queue = append(s.queue, models.Event{
			Kind:       models.KindLink,
			Clips:      []string{s.resolver.DJClip(s.profile.Name, node, len(dialogue))},
			Captions:   []string{strings.Join(captions, "\n")},
			StartDelay: 500 * time.Millisecond,
			InnerDelay: 500 * time.Millisecond,
			NodeID:     node,
		})
	}
	return nil
}

// emitAdBreak queues 2-3 adverts bundled into a single event.
func (s *Sequencer) emitAdBreak() {
	count := 2 + s.rng.Intn(2)
	clips := make([]string, 0, count)
	captions := make([]string, 0, count)
	for i := 0; i < count; i++ {
		advert := s.adverts.Pop()
		clips = append(clips, s.resolver.AdvertClip(advert))
		captions = append(captions, advert)
	}

	s.queue = append(s.queue, models.Event{
		Kind:       models.KindAdBreak,
		Clips:      clips,
		Captions:   captions,
		StartDelay: time.Second,
		InnerDelay: 500 * time.Millisecond,
		EndDelay:   500 * time.Millisecond,
		AdCount:    count,
	})
}
