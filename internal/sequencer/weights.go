/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package sequencer

import (
	"math/rand"

	"github.com/friendsincode/radioport/internal/models"
)

// DefaultRepeatBias is the weight assigned to the previously chosen break
// kind. The constant is a tuning heuristic; override via Config.RepeatBias.
const DefaultRepeatBias = 0.25

// breakKindOrder fixes iteration order for the weighted draw so a seeded rand
// source yields reproducible streams.
var breakKindOrder = []models.EventKind{models.KindJingle, models.KindLink, models.KindAdBreak}

// breakWeights builds the candidate set for "what plays between tune blocks"
// from the station's capability flags. Stations without ads never have the
// ad-break candidate at all; same for DJ-less stations and links.
func breakWeights(profile models.StationProfile) map[models.EventKind]float64 {
	weights := map[models.EventKind]float64{models.KindJingle: 1.0}
	if profile.HasDJ() {
		weights[models.KindLink] = 2.0
	}
	if profile.HasAds {
		weights[models.KindAdBreak] = 1.0
	}
	return weights
}

// applyRepeatBias down-weights the previously chosen kind. It is a bias, not
// an exclusion: the same kind can still repeat, just rarely.
func applyRepeatBias(weights map[models.EventKind]float64, previous models.EventKind, bias float64) map[models.EventKind]float64 {
	adjusted := make(map[models.EventKind]float64, len(weights))
	for kind, weight := range weights {
		adjusted[kind] = weight
	}
	if _, ok := adjusted[previous]; ok {
		adjusted[previous] = bias
	}
	return adjusted
}

// pickWeighted draws one kind proportionally to its weight.
func pickWeighted(rng *rand.Rand, weights map[models.EventKind]float64) models.EventKind {
	total := 0.0
	for _, kind := range breakKindOrder {
		total += weights[kind]
	}

	draw := rng.Float64() * total
	for _, kind := range breakKindOrder {
		weight, ok := weights[kind]
		if !ok {
			continue
		}
		if draw < weight {
			return kind
		}
		draw -= weight
	}
	return models.KindJingle
}
