package discord

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/KirkDiggler/promile/internal/services/tracker"
	"github.com/rs/zerolog"
)

// Default refresher intervals
const (
	DefaultRefreshInterval = time.Minute
	DefaultSaveInterval    = time.Hour
)

// RefresherConfig holds configuration for the background refresher
type RefresherConfig struct {
	Tracker tracker.Service

	// Boards is optional; without it only the ledgers are pruned
	Boards *Boards

	RefreshInterval time.Duration
	SaveInterval    time.Duration
	Logger          zerolog.Logger
}

// Refresher periodically prunes ledgers, updates the live boards and saves
type Refresher struct {
	tracker         tracker.Service
	boards          *Boards
	refreshInterval time.Duration
	saveInterval    time.Duration
	logger          zerolog.Logger

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewRefresher creates a refresher
func NewRefresher(cfg *RefresherConfig) (*Refresher, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Tracker == nil {
		return nil, errors.New("tracker service cannot be nil")
	}

	refreshInterval := cfg.RefreshInterval
	if refreshInterval <= 0 {
		refreshInterval = DefaultRefreshInterval
	}
	saveInterval := cfg.SaveInterval
	if saveInterval <= 0 {
		saveInterval = DefaultSaveInterval
	}

	return &Refresher{
		tracker:         cfg.Tracker,
		boards:          cfg.Boards,
		refreshInterval: refreshInterval,
		saveInterval:    saveInterval,
		logger:          cfg.Logger,
	}, nil
}

// Start runs the refresher in the background until Stop is called
func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})

	go r.loop(r.stopCh, r.doneCh)
}

// Stop halts the refresher and waits for the running tick to finish
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopCh)
	doneCh := r.doneCh
	r.mu.Unlock()

	<-doneCh
}

func (r *Refresher) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	refreshTicker := time.NewTicker(r.refreshInterval)
	defer refreshTicker.Stop()
	saveTicker := time.NewTicker(r.saveInterval)
	defer saveTicker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		select {
		case <-stopCh:
			return
		case <-refreshTicker.C:
			if err := r.RefreshOnce(ctx); err != nil {
				r.logger.Error().Err(err).Msg("refresh failed")
			}
		case <-saveTicker.C:
			if err := r.tracker.Save(ctx); err != nil {
				r.logger.Error().Err(err).Msg("periodic save failed")
			}
		}
	}
}

// RefreshOnce prunes every ledger and updates the boards of every guild.
// Board failures are logged per guild and do not stop the pass.
func (r *Refresher) RefreshOnce(ctx context.Context) error {
	output, err := r.tracker.Refresh(ctx)
	if err != nil {
		return err
	}
	if output.Malformed > 0 {
		r.logger.Warn().Int("malformed", output.Malformed).Msg("dropped events with unreadable timestamps")
	}

	if r.boards == nil {
		return nil
	}

	guilds, err := r.tracker.ListGuilds(ctx)
	if err != nil {
		return err
	}

	for _, guildID := range guilds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.boards.Update(ctx, guildID); err != nil {
			r.logger.Warn().Err(err).Str("guild_id", guildID).Msg("failed to update boards")
		}
	}
	return nil
}
