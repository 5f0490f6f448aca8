// internal/compatibility/service.go

package compatibility

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/imadgeboyega/kiekky-couples/internal/common/clock"
	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
	"github.com/imadgeboyega/kiekky-couples/internal/matches"
)

const (
	rebuildTimeout   = 90 * time.Second
	narrativeTimeout = 60 * time.Second
)

// Service keeps couple aggregates in step with completed games
type Service struct {
	sessions   games.Repository
	repo       Repository
	narrator   Narrator
	clock      clock.Clock
	staleAfter time.Duration
	group      singleflight.Group
	tracer     trace.Tracer
	log        *logger.Logger

	// runs the rebuild that follows a completion event
	async func(func())
}

// NewService creates the aggregator. narrator may be nil to disable narratives.
func NewService(sessions games.Repository, repo Repository, narrator Narrator, clk clock.Clock, staleAfter time.Duration, log *logger.Logger) *Service {
	return &Service{
		sessions:   sessions,
		repo:       repo,
		narrator:   narrator,
		clock:      clk,
		staleAfter: staleAfter,
		tracer:     otel.Tracer("compatibility"),
		log:        log.With("component", "compatibility"),
		async:      func(fn func()) { go fn() },
	}
}

// Get returns the pair's aggregate, rebuilding it when missing or stale
func (s *Service) Get(ctx context.Context, pair matches.Pair) (*Aggregate, error) {
	stored, err := s.repo.Get(ctx, pair)
	if err != nil && !errors.Is(err, ErrAggregateNotFound) {
		return nil, err
	}
	latest, err := s.sessions.LatestCompleted(ctx, pair)
	if err != nil {
		return nil, err
	}
	if stored != nil && !IsStale(stored, latest, s.clock.Now(), s.staleAfter) {
		return stored, nil
	}

	reason := "stale"
	if stored == nil {
		reason = "missing"
	}
	return s.rebuild(ctx, pair, reason)
}

// Refresh rebuilds the aggregate regardless of freshness
func (s *Service) Refresh(ctx context.Context, pair matches.Pair) (*Aggregate, error) {
	return s.rebuild(ctx, pair, "forced")
}

// Clear drops the stored aggregate; the next Get regenerates it
func (s *Service) Clear(ctx context.Context, pair matches.Pair) error {
	return s.repo.Delete(ctx, pair)
}

// OnGameCompleted rebuilds the pair's aggregate in the background
func (s *Service) OnGameCompleted(e games.CompletedEvent) {
	s.async(func() {
		if _, err := s.rebuild(context.Background(), e.Pair, "game_completed"); err != nil {
			s.log.Warn("failed to rebuild compatibility after game", "pair", e.Pair.String(), "session_id", e.SessionID, "error", err.Error())
		}
	})
}

// rebuild collapses concurrent rebuilds of one pair into a single run
func (s *Service) rebuild(ctx context.Context, pair matches.Pair, reason string) (*Aggregate, error) {
	v, err, shared := s.group.Do(pair.String(), func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rebuildTimeout)
		defer cancel()
		return s.build(runCtx, pair, reason)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug("joined in-flight compatibility rebuild", "pair", pair.String())
	}
	return v.(*Aggregate), nil
}

func (s *Service) build(ctx context.Context, pair matches.Pair, reason string) (agg *Aggregate, err error) {
	ctx, span := s.tracer.Start(ctx, "compatibility.Rebuild",
		trace.WithAttributes(
			attribute.String("pair", pair.String()),
			attribute.String("reason", reason),
		))
	started := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		rebuildDuration.Observe(time.Since(started).Seconds())
	}()

	latest, err := s.sessions.LatestCompleted(ctx, pair)
	if err != nil {
		return nil, err
	}
	agg = Merge(pair, latest, s.clock.Now())
	span.SetAttributes(attribute.Int("games_included", agg.TotalGamesIncluded))

	if agg.TotalGamesIncluded >= MinGamesForNarrative && s.narrator != nil {
		s.attachNarrative(ctx, agg)
	}

	if err := s.repo.Save(ctx, agg); err != nil {
		return nil, err
	}
	rebuildsTotal.WithLabelValues(reason).Inc()
	s.log.Info("compatibility rebuilt", "pair", pair.String(), "reason", reason,
		"games_included", agg.TotalGamesIncluded, "narrative", agg.AIInsightsAvailable)
	return agg, nil
}

// attachNarrative leaves the aggregate without a narrative when the model fails
func (s *Service) attachNarrative(ctx context.Context, agg *Aggregate) {
	ctx, cancel := context.WithTimeout(ctx, narrativeTimeout)
	defer cancel()

	n, err := s.narrator.Narrate(ctx, agg)
	if err != nil {
		narrativesTotal.WithLabelValues("failed").Inc()
		s.log.Warn("compatibility narrative unavailable", "pair", agg.Pair.String(), "error", err.Error())
		return
	}
	n.GeneratedAt = s.clock.Now()
	agg.AIInsights = n
	agg.AIInsightsAvailable = true
	narrativesTotal.WithLabelValues("ok").Inc()
}
