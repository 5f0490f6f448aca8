// internal/games/sweeper.go

package games

import (
	"context"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
)

// Sweeper periodically expires overdue invitations
type Sweeper struct {
	service  *Service
	interval time.Duration
	log      *logger.Logger
	stopCh   chan struct{}
}

// NewSweeper creates a sweeper; interval defaults to one minute
func NewSweeper(service *Service, interval time.Duration, log *logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		service:  service,
		interval: interval,
		log:      log.With("component", "invite_sweeper"),
		stopCh:   make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled or Stop is called
func (s *Sweeper) Start(ctx context.Context) {
	s.log.Info("starting invitation sweeper", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopCh:
			s.log.Info("stopping invitation sweeper")
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the sweeper
func (s *Sweeper) Stop() {
	close(s.stopCh)
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.service.ExpirePending(ctx)
	if err != nil {
		s.log.Error("invitation sweep failed", "error", err.Error())
		return
	}
	if n > 0 {
		s.log.Info("expired invitations", "count", n)
	}
}
