package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pcahill/strum/internal/flow"
	"github.com/pcahill/strum/internal/notify"
	"github.com/pcahill/strum/internal/player"
	"github.com/pcahill/strum/internal/store"
)

// session bundles the collaborators of an interactive playback run: the
// local audio device, the playback controller, the coordinator, and the
// persistent history store.
type session struct {
	flow    *flow.Flow
	device  *player.MPVDevice
	history *store.HistoryStore
	cancel  context.CancelFunc
}

// newSession wires up a playback session from the loaded config. The caller
// must close it.
func newSession(ctx context.Context, notifier notify.Notifier) (*session, error) {
	device, err := player.NewMPVDevice(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to start audio device: %w", err)
	}

	controller := player.NewController(device,
		player.WithLogger(logger),
		player.WithNotifier(notifier),
	)
	controller.SetVolume(cfg.Defaults.Volume)

	opts := []flow.Option{
		flow.WithLogger(logger),
		flow.WithNotifier(notifier),
		flow.WithPollInterval(time.Duration(cfg.Poller.IntervalMS) * time.Millisecond),
		flow.WithHistoryLimit(cfg.History.Limit),
	}

	var history *store.HistoryStore
	if cfg.History.DBPath != "" {
		history, err = store.Open(cfg.History.DBPath)
		if err != nil {
			logger.Warn("history store unavailable", "err", err)
		} else {
			if err := history.Prune(cfg.History.Limit); err != nil {
				logger.Warn("history prune failed", "err", err)
			}
			opts = append(opts, flow.WithStore(history))
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	opts = append(opts, flow.WithContext(runCtx))

	f := flow.New(newClient(), controller, opts...)
	if cfg.Defaults.Shuffle {
		f.ToggleShuffle()
	}
	if cfg.Defaults.Repeat {
		f.ToggleRepeat()
	}

	go controller.Run(runCtx)

	if err := f.Load(runCtx); err != nil {
		logger.Warn("failed to load remote playlist", "err", err)
	}

	return &session{flow: f, device: device, history: history, cancel: cancel}, nil
}

func (s *session) close() {
	s.flow.Stop()
	s.cancel()
	if s.history != nil {
		s.history.Close()
	}
	s.device.Close()
}

// waitForInterrupt blocks until Ctrl+C or SIGTERM.
func waitForInterrupt(ctx context.Context) {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
}
