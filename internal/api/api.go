/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes the HTTP control surface for a running session.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/friendsincode/radioport/internal/catalog"
	"github.com/friendsincode/radioport/internal/events"
	"github.com/friendsincode/radioport/internal/history"
	"github.com/friendsincode/radioport/internal/playout"
)

// streamedEvents are the bus event types forwarded to SSE clients.
var streamedEvents = []events.EventType{
	events.EventNowPlaying,
	events.EventCaption,
	events.EventPlaybackStarted,
	events.EventPlaybackEnded,
	events.EventPlaybackSkipped,
	events.EventStationChange,
	events.EventMediaMissing,
}

// API exposes HTTP handlers.
type API struct {
	catalog *catalog.Catalog
	session *playout.Session
	store   *history.Store // optional
	bus     *events.Bus
	logger  zerolog.Logger
}

// New creates the API router wrapper. store may be nil when history is
// disabled.
func New(cat *catalog.Catalog, session *playout.Session, store *history.Store, bus *events.Bus, logger zerolog.Logger) *API {
	return &API{
		catalog: cat,
		session: session,
		store:   store,
		bus:     bus,
		logger:  logger,
	}
}

// Routes mounts all API endpoints.
func (a *API) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/stations", a.handleStations)
		r.Get("/nowplaying", a.handleNowPlaying)
		r.Get("/history", a.handleHistory)
		r.Post("/skip", a.handleSkip)
		r.Post("/pause", a.handlePause)
		r.Post("/resume", a.handleResume)
		r.Post("/station", a.handleStationChange)
		r.Get("/events", a.handleEvents)
	})
}

type stationInfo struct {
	Name       string `json:"name"`
	HasDJ      bool   `json:"has_dj"`
	DJName     string `json:"dj_name,omitempty"`
	HasAds     bool   `json:"has_ads"`
	HasJingles bool   `json:"has_jingles"`
	Tracks     int    `json:"tracks"`
}

func (a *API) handleStations(w http.ResponseWriter, r *http.Request) {
	names := a.catalog.Names()
	stations := make([]stationInfo, 0, len(names))
	for _, name := range names {
		station, err := a.catalog.Station(name)
		if err != nil {
			continue
		}
		info := stationInfo{
			Name:       station.Profile.Name,
			HasDJ:      station.Profile.HasDJ(),
			HasAds:     station.Profile.HasAds,
			HasJingles: station.Profile.HasJingles,
			Tracks:     len(station.Tracks),
		}
		if station.Profile.DJ != nil {
			info.DJName = station.Profile.DJ.Name
		}
		stations = append(stations, info)
	}
	writeJSON(w, http.StatusOK, stations)
}

func (a *API) handleNowPlaying(w http.ResponseWriter, r *http.Request) {
	now := a.session.NowPlaying()
	if now.Station == "" {
		writeError(w, http.StatusNotFound, "not_tuned")
		return
	}
	writeJSON(w, http.StatusOK, now)
}

func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeError(w, http.StatusNotFound, "history_disabled")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = parsed
	}
	entries, err := a.store.Recent(r.Context(), limit)
	if err != nil {
		a.logger.Error().Err(err).Msg("history query failed")
		writeError(w, http.StatusInternalServerError, "history_query_failed")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) handleSkip(w http.ResponseWriter, r *http.Request) {
	a.session.Skip()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "skipping"})
}

func (a *API) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := a.session.Pause(); err != nil {
		a.logger.Error().Err(err).Msg("pause failed")
		writeError(w, http.StatusInternalServerError, "pause_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "paused"})
}

func (a *API) handleResume(w http.ResponseWriter, r *http.Request) {
	if err := a.session.Resume(); err != nil {
		a.logger.Error().Err(err).Msg("resume failed")
		writeError(w, http.StatusInternalServerError, "resume_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "playing"})
}

type stationChangeRequest struct {
	Name string `json:"name"`
}

func (a *API) handleStationChange(w http.ResponseWriter, r *http.Request) {
	var req stationChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := a.session.Retune(req.Name); err != nil {
		if errors.Is(err, catalog.ErrUnknownStation) {
			writeError(w, http.StatusNotFound, "unknown_station")
			return
		}
		a.logger.Error().Err(err).Str("station", req.Name).Msg("retune request failed")
		writeError(w, http.StatusInternalServerError, "retune_failed")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "retuning", "station": req.Name})
}

// handleEvents streams bus events to the client as server-sent events.
func (a *API) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	type busEvent struct {
		Type    events.EventType
		Payload events.Payload
	}
	merged := make(chan busEvent, 16)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for _, eventType := range streamedEvents {
		sub := a.bus.Subscribe(eventType)
		go func(eventType events.EventType, sub events.Subscriber) {
			defer a.bus.Unsubscribe(eventType, sub)
			for {
				select {
				case <-ctx.Done():
					return
				case payload := <-sub:
					select {
					case merged <- busEvent{Type: eventType, Payload: payload}:
					case <-ctx.Done():
						return
					}
				}
			}
		}(eventType, sub)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-merged:
			data, err := json.Marshal(ev.Payload)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
