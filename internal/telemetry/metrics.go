/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventsPlayed counts executed playback events by station and kind.
	EventsPlayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radioport_events_played_total",
		Help: "Playback events executed, by station and event kind.",
	}, []string{"station", "kind"})

	// EventsSkipped counts events cut short by a skip or station change.
	EventsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "radioport_events_skipped_total",
		Help: "Playback events cut short, by station.",
	}, []string{"station"})

	// MediaMissing counts clips that were absent at play time.
	MediaMissing = promauto.NewCounter(prometheus.CounterOpts{
		Name: "radioport_media_missing_total",
		Help: "Clips referenced by events but missing on disk.",
	})

	// StationChanges counts retunes.
	StationChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "radioport_station_changes_total",
		Help: "Station retunes performed.",
	})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
