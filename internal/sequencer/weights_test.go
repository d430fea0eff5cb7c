/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package sequencer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/friendsincode/radioport/internal/models"
)

func TestBreakWeights_CapabilityFlags(t *testing.T) {
	dj := &models.DJProfile{Name: "Ash", SceneFile: "radio_growl", AudioPrefix: "ash_radio_growl"}

	tests := []struct {
		name    string
		profile models.StationProfile
		want    map[models.EventKind]float64
	}{
		{
			name:    "plain station",
			profile: models.StationProfile{Name: "a", HasAds: true, HasJingles: true},
			want:    map[models.EventKind]float64{models.KindJingle: 1.0, models.KindAdBreak: 1.0},
		},
		{
			name:    "no ads",
			profile: models.StationProfile{Name: "b", HasAds: false, HasJingles: true},
			want:    map[models.EventKind]float64{models.KindJingle: 1.0},
		},
		{
			name:    "dj station without ads",
			profile: models.StationProfile{Name: "c", DJ: dj, HasAds: false, HasJingles: true},
			want:    map[models.EventKind]float64{models.KindJingle: 1.0, models.KindLink: 2.0},
		},
		{
			name:    "dj station with ads",
			profile: models.StationProfile{Name: "d", DJ: dj, HasAds: true, HasJingles: true},
			want:    map[models.EventKind]float64{models.KindJingle: 1.0, models.KindLink: 2.0, models.KindAdBreak: 1.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := breakWeights(tt.profile)
			if len(got) != len(tt.want) {
				t.Fatalf("breakWeights() = %v, want %v", got, tt.want)
			}
			for kind, weight := range tt.want {
				if got[kind] != weight {
					t.Errorf("breakWeights()[%s] = %v, want %v", kind, got[kind], weight)
				}
			}
		})
	}
}

func TestApplyRepeatBias(t *testing.T) {
	weights := map[models.EventKind]float64{
		models.KindJingle:  1.0,
		models.KindLink:    2.0,
		models.KindAdBreak: 1.0,
	}

	adjusted := applyRepeatBias(weights, models.KindLink, 0.25)
	if adjusted[models.KindLink] != 0.25 {
		t.Errorf("previous kind weight = %v, want 0.25", adjusted[models.KindLink])
	}
	if adjusted[models.KindJingle] != 1.0 || adjusted[models.KindAdBreak] != 1.0 {
		t.Errorf("other weights changed: %v", adjusted)
	}
	if weights[models.KindLink] != 2.0 {
		t.Errorf("input map mutated: %v", weights)
	}
}

func TestApplyRepeatBias_AbsentKindIgnored(t *testing.T) {
	weights := map[models.EventKind]float64{models.KindJingle: 1.0}

	adjusted := applyRepeatBias(weights, models.KindAdBreak, 0.25)
	if _, ok := adjusted[models.KindAdBreak]; ok {
		t.Errorf("bias introduced a candidate that was not in the set: %v", adjusted)
	}
}

func TestPickWeighted_MatchesBiasLaw(t *testing.T) {
	// With the previous choice down-weighted to 0.25 against a 1.0
	// alternative, the repeat probability is 0.25/1.25 = 0.2.
	rng := rand.New(rand.NewSource(1234))
	weights := map[models.EventKind]float64{
		models.KindJingle:  1.0,
		models.KindAdBreak: 0.25,
	}

	const draws = 10000
	adBreaks := 0
	for i := 0; i < draws; i++ {
		if pickWeighted(rng, weights) == models.KindAdBreak {
			adBreaks++
		}
	}

	got := float64(adBreaks) / draws
	if math.Abs(got-0.2) > 0.02 {
		t.Errorf("biased kind frequency = %v, want ~0.2", got)
	}
}

func TestPickWeighted_ImmediateRepetitionFrequency(t *testing.T) {
	// Chain draws the way the steady-state loop does and check that
	// immediate repetitions happen about as often as the bias law predicts.
	rng := rand.New(rand.NewSource(77))
	profile := models.StationProfile{Name: "x", HasAds: true, HasJingles: true}

	previous := models.KindJingle
	repeats := 0
	const draws = 10000
	for i := 0; i < draws; i++ {
		choice := pickWeighted(rng, applyRepeatBias(breakWeights(profile), previous, 0.25))
		if choice == previous {
			repeats++
		}
		previous = choice
	}

	// Two candidates, previous at 0.25 vs 1.0: repeat chance is 0.2 each draw.
	got := float64(repeats) / draws
	if math.Abs(got-0.2) > 0.02 {
		t.Errorf("immediate repetition frequency = %v, want ~0.2", got)
	}
}
