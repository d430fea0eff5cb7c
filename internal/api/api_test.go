/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/friendsincode/radioport/internal/catalog"
	"github.com/friendsincode/radioport/internal/events"
	"github.com/friendsincode/radioport/internal/notify"
	"github.com/friendsincode/radioport/internal/playout"
)

const stationsYAML = `
stations:
  - name: "92.9 Night FM"
    has_ads: true
    has_jingles: true
    jingles: [1]
    tracks:
      - artist: "Artemis Delta"
        title: "Neon Rain"
        file: "neon_rain"
      - artist: "The Bastards"
        title: "Chrome"
        file: "chrome"
adverts: ["sojasil"]
`

// stubPlayer satisfies player.Player without touching any process.
type stubPlayer struct {
	volume float64
}

func (s *stubPlayer) Load(string) error       { return nil }
func (s *stubPlayer) Play() error             { return nil }
func (s *stubPlayer) Pause() error            { return nil }
func (s *stubPlayer) Resume() error           { return nil }
func (s *stubPlayer) Seek(float64) error      { return nil }
func (s *stubPlayer) Volume() float64         { return s.volume }
func (s *stubPlayer) SetVolume(float64) error { return nil }
func (s *stubPlayer) Playing() bool           { return false }
func (s *stubPlayer) Position() float64       { return 0 }
func (s *stubPlayer) Duration() float64       { return 0 }
func (s *stubPlayer) Stop() error             { return nil }

func newTestRouter(t *testing.T) (chi.Router, *playout.Session) {
	t.Helper()
	root := t.TempDir()
	stationsFile := filepath.Join(root, "stations.yaml")
	if err := os.WriteFile(stationsFile, []byte(stationsYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cat, err := catalog.Load(stationsFile, root)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	bus := events.NewBus()
	session := playout.NewSession(cat, &stubPlayer{volume: 1}, bus, nil, notify.Nop{}, 0.25, zerolog.Nop())

	router := chi.NewRouter()
	New(cat, session, nil, bus, zerolog.Nop()).Routes(router)
	return router, session
}

func doRequest(t *testing.T, router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleStations(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/stations", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var stations []stationInfo
	if err := json.NewDecoder(rec.Body).Decode(&stations); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(stations) != 1 {
		t.Fatalf("stations = %v", stations)
	}
	if stations[0].Name != "92.9 Night FM" || !stations[0].HasAds || stations[0].Tracks != 2 {
		t.Errorf("station info = %+v", stations[0])
	}
}

func TestHandleNowPlaying_NotTuned(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/nowplaying", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleNowPlaying_AfterTune(t *testing.T) {
	router, session := newTestRouter(t)
	if err := session.Tune("92.9 Night FM", false); err != nil {
		t.Fatalf("tune: %v", err)
	}

	rec := doRequest(t, router, http.MethodGet, "/api/nowplaying", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var now playout.NowPlaying
	if err := json.NewDecoder(rec.Body).Decode(&now); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if now.Station != "92.9 Night FM" {
		t.Errorf("station = %q", now.Station)
	}
}

func TestHandleSkip(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/skip", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
}

func TestHandlePauseResume(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/pause", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("pause status = %d", rec.Code)
	}
	rec = doRequest(t, router, http.MethodPost, "/api/resume", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("resume status = %d", rec.Code)
	}
}

func TestHandleStationChange(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/station", `{"name":"92.9 Night FM"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
}

func TestHandleStationChange_Unknown(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/station", `{"name":"90.1 Nowhere"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleStationChange_BadBody(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/station", `{`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/station", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleHistory_Disabled(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/history", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
