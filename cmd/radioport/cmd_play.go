package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/friendsincode/radioport/internal/catalog"
	"github.com/friendsincode/radioport/internal/events"
	"github.com/friendsincode/radioport/internal/history"
	"github.com/friendsincode/radioport/internal/notify"
	"github.com/friendsincode/radioport/internal/player"
	"github.com/friendsincode/radioport/internal/playout"
)

var playForceJingle bool

var playCmd = &cobra.Command{
	Use:   "play <station>",
	Short: "Play a station in the terminal",
	Long:  "Tune a station and play it until interrupted, printing captions and now-playing lines as events run",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playForceJingle, "jingle", false, "force a station jingle as the first event")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.StationsFile, cfg.DataRoot)
	if err != nil {
		return err
	}

	var store *history.Store
	if cfg.HistoryDSN != "" {
		store, err = history.Open(cfg.HistoryDSN)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer store.Close()
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.NotifyEnabled {
		notifier = notify.NewDesktop(cfg.NotifyBin, notify.Urgency(cfg.NotifyUrgency), logger)
	}

	p := player.NewExecPlayer(cfg.PlayerBin, cfg.ProbeBin, logger)
	defer p.Stop()

	session := playout.NewSession(cat, p, events.NewBus(), store, notifier, cfg.RepeatBias, logger)
	if err := session.Tune(args[0], playForceJingle); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
