/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package notify sends desktop now-playing notifications. Delivery is best
// effort: failures are logged and never interrupt playback.
package notify

import (
	"os"
	"os/exec"

	"github.com/rs/zerolog"
)

// Urgency levels understood by the desktop notification service.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

// Notifier delivers a notification with a summary line, body and icon.
type Notifier interface {
	Send(summary, body, iconPath string)
}

// Desktop shells out to notify-send.
type Desktop struct {
	bin     string
	urgency Urgency
	logger  zerolog.Logger
}

// NewDesktop creates a notifier around notify-send (or a compatible binary).
func NewDesktop(bin string, urgency Urgency, logger zerolog.Logger) *Desktop {
	if bin == "" {
		bin = "notify-send"
	}
	if urgency == "" {
		urgency = UrgencyNormal
	}
	return &Desktop{bin: bin, urgency: urgency, logger: logger}
}

// Send delivers the notification, swallowing any failure.
func (d *Desktop) Send(summary, body, iconPath string) {
	args := []string{"--urgency", string(d.urgency)}
	if iconPath != "" {
		if _, err := os.Stat(iconPath); err == nil {
			args = append(args, "--icon", iconPath)
		}
	}
	args = append(args, summary, body)

	if err := exec.Command(d.bin, args...).Run(); err != nil {
		d.logger.Debug().Err(err).Msg("notification delivery failed")
	}
}

// Nop discards notifications.
type Nop struct{}

// Send does nothing.
func (Nop) Send(summary, body, iconPath string) {}
