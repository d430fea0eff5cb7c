/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package player

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// ExecPlayer plays clips by launching an external ffplay-style process per
// clip and probing durations with ffprobe. Pause and resume are delivered as
// stop/continue signals to the child process.
type ExecPlayer struct {
	playerBin string
	probeBin  string
	logger    zerolog.Logger

	mu       sync.Mutex
	path     string
	duration float64
	volume   float64
	offset   float64
	started  time.Time
	pausedAt time.Time
	paused   time.Duration
	cmd      *exec.Cmd
	done     chan struct{} // closed when the child process exits
}

// NewExecPlayer creates a player around the given binaries. Empty values
// default to ffplay/ffprobe.
func NewExecPlayer(playerBin, probeBin string, logger zerolog.Logger) *ExecPlayer {
	if playerBin == "" {
		playerBin = "ffplay"
	}
	if probeBin == "" {
		probeBin = "ffprobe"
	}
	return &ExecPlayer{playerBin: playerBin, probeBin: probeBin, logger: logger, volume: 1.0}
}

// Load stops any running clip and prepares path for playback.
func (p *ExecPlayer) Load(path string) error {
	if err := p.Stop(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.path = path
	p.offset = 0
	p.duration = p.probeDuration(path)
	return nil
}

// Play starts playback of the loaded clip from the current offset.
func (p *ExecPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.startLocked()
}

func (p *ExecPlayer) startLocked() error {
	if p.path == "" {
		return fmt.Errorf("no clip loaded")
	}

	args := []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}
	args = append(args, "-volume", strconv.Itoa(int(p.volume*100)))
	if p.offset > 0 {
		args = append(args, "-ss", strconv.FormatFloat(p.offset, 'f', 3, 64))
	}
	args = append(args, p.path)

	cmd := exec.Command(p.playerBin, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start player: %w", err)
	}

	p.cmd = cmd
	p.done = make(chan struct{})
	p.started = time.Now()
	p.paused = 0
	p.pausedAt = time.Time{}

	go func(done chan struct{}, c *exec.Cmd) {
		err := c.Wait()
		close(done)
		if err != nil {
			p.logger.Debug().Err(err).Str("clip", p.path).Msg("player process exited")
		}
	}(p.done, cmd)

	return nil
}

// Pause suspends the child process.
func (p *ExecPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	if err := p.cmd.Process.Signal(syscall.SIGSTOP); err != nil {
		return err
	}
	p.pausedAt = time.Now()
	return nil
}

// Resume continues a paused child process.
func (p *ExecPlayer) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	if err := p.cmd.Process.Signal(syscall.SIGCONT); err != nil {
		return err
	}
	if !p.pausedAt.IsZero() {
		p.paused += time.Since(p.pausedAt)
		p.pausedAt = time.Time{}
	}
	return nil
}

// Seek restarts the clip at the requested position. The external player has
// no live seek channel, so a running clip is relaunched with a start offset.
func (p *ExecPlayer) Seek(seconds float64) error {
	p.mu.Lock()
	running := p.runningLocked()
	p.offset = seconds
	p.mu.Unlock()

	if !running {
		return nil
	}
	if err := p.Stop(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.offset = seconds
	return p.startLocked()
}

// Volume returns the current volume in [0,1].
func (p *ExecPlayer) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume stores the volume for the next launch. Running clips keep their
// volume until reloaded.
func (p *ExecPlayer) SetVolume(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("volume %v out of range", v)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = v
	return nil
}

// Playing reports whether the child process is alive. Paused processes count
// as playing.
func (p *ExecPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runningLocked()
}

func (p *ExecPlayer) runningLocked() bool {
	if p.cmd == nil || p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Position returns the playback position in seconds, derived from wall clock
// time since launch plus the seek offset.
func (p *ExecPlayer) Position() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started.IsZero() {
		return 0
	}
	elapsed := time.Since(p.started) - p.paused
	if !p.pausedAt.IsZero() {
		elapsed -= time.Since(p.pausedAt)
	}
	pos := p.offset + elapsed.Seconds()
	if p.duration > 0 && pos > p.duration {
		return p.duration
	}
	return pos
}

// Duration returns the probed clip duration in seconds.
func (p *ExecPlayer) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// Stop terminates the child process, escalating from interrupt to kill.
func (p *ExecPlayer) Stop() error {
	p.mu.Lock()
	cmd := p.cmd
	done := p.done
	p.mu.Unlock()

	if cmd == nil || done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	default:
	}

	if cmd.Process != nil {
		// A stopped process cannot handle the interrupt; wake it first.
		_ = cmd.Process.Signal(syscall.SIGCONT)
		_ = cmd.Process.Signal(os.Interrupt)
	}

	select {
	case <-time.After(2 * time.Second):
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-done
	case <-done:
	}

	return nil
}

func (p *ExecPlayer) probeDuration(path string) float64 {
	out := &bytes.Buffer{}
	cmd := exec.Command(p.probeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	cmd.Stdout = out
	if err := cmd.Run(); err != nil {
		p.logger.Debug().Err(err).Str("clip", path).Msg("duration probe failed")
		return 0
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(out.String()), 64)
	if err != nil {
		return 0
	}
	return seconds
}
