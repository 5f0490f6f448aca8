// internal/readiness/service.go

package readiness

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/imadgeboyega/kiekky-couples/internal/common/clock"
	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/compatibility"
	"github.com/imadgeboyega/kiekky-couples/internal/dateplan"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
	"github.com/imadgeboyega/kiekky-couples/internal/matches"
	notifications "github.com/imadgeboyega/kiekky-couples/internal/notification"
	"github.com/imadgeboyega/kiekky-couples/internal/profile"
	"github.com/imadgeboyega/kiekky-couples/internal/psychometric"
)

const evaluateTimeout = 90 * time.Second

// Analyses loads psychometric analyses; missing users are absent from the map
type Analyses interface {
	GetAnalyses(ctx context.Context, userIDs []int64) (map[int64]*psychometric.Analysis, error)
}

// Aggregates returns a fresh couple aggregate
type Aggregates interface {
	Get(ctx context.Context, pair matches.Pair) (*compatibility.Aggregate, error)
}

// Signals exposes match interaction facts
type Signals interface {
	Signals(ctx context.Context, pair matches.Pair) (matches.Signals, error)
}

// Planner builds date plans
type Planner interface {
	Generate(ctx context.Context, in dateplan.Input) (*dateplan.Plan, error)
}

// Deps are the collaborators of the decider
type Deps struct {
	Analyses   Analyses
	Aggregates Aggregates
	Signals    Signals
	Users      profile.Repository
	Sessions   games.Repository
	Planner    Planner
	Repo       Repository
	Cache      Cache
	Notifier   notifications.Notifier
	Clock      clock.Clock
	TTL        time.Duration
}

// Service decides whether a couple is ready for a first date
type Service struct {
	deps   Deps
	group  singleflight.Group
	tracer trace.Tracer
	log    *logger.Logger
}

// NewService creates the decider. Cache and Notifier may be nil.
func NewService(deps Deps, log *logger.Logger) *Service {
	if deps.Cache == nil {
		deps.Cache = NopCache{}
	}
	if deps.Notifier == nil {
		deps.Notifier = notifications.Nop{}
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.TTL <= 0 {
		deps.TTL = 24 * time.Hour
	}
	return &Service{
		deps:   deps,
		tracer: otel.Tracer("readiness"),
		log:    log.With("component", "readiness"),
	}
}

// GetReadiness returns the cached decision when still fresh, otherwise recomputes it
func (s *Service) GetReadiness(ctx context.Context, pair matches.Pair) (*Result, error) {
	stored, source, err := s.load(ctx, pair)
	if err != nil && !errors.Is(err, ErrDecisionNotFound) {
		return nil, err
	}
	if stored != nil {
		stale, err := s.isStale(ctx, stored)
		if err != nil {
			return nil, err
		}
		if !stale {
			cacheLookups.WithLabelValues(source).Inc()
			if source == "database" {
				s.cache(ctx, stored)
			}
			return stored, nil
		}
	}
	cacheLookups.WithLabelValues("miss").Inc()
	return s.evaluate(ctx, pair, stored)
}

// Refresh drops any cached decision and recomputes
func (s *Service) Refresh(ctx context.Context, pair matches.Pair) (*Result, error) {
	if err := s.deps.Cache.Delete(ctx, pair); err != nil {
		s.log.Warn("failed to drop cached decision", "pair", pair.String(), "error", err.Error())
	}
	previous, _, err := s.load(ctx, pair)
	if err != nil && !errors.Is(err, ErrDecisionNotFound) {
		return nil, err
	}
	return s.evaluate(ctx, pair, previous)
}

// GetDatePlan returns the plan of the current decision without recomputing it
func (s *Service) GetDatePlan(ctx context.Context, pair matches.Pair) (*dateplan.Plan, error) {
	res, _, err := s.load(ctx, pair)
	if errors.Is(err, ErrDecisionNotFound) {
		return nil, ErrReadinessCheckRequired
	}
	if err != nil {
		return nil, err
	}
	if !res.DatePlanAvailable || res.DatePlan == nil {
		return nil, ErrDatePlanNotAvailable
	}
	return res.DatePlan, nil
}

// Status is the compact view of the stored decision
func (s *Service) Status(ctx context.Context, pair matches.Pair) (*Status, error) {
	res, _, err := s.load(ctx, pair)
	if errors.Is(err, ErrDecisionNotFound) {
		return nil, ErrReadinessCheckRequired
	}
	if err != nil {
		return nil, err
	}
	stale, err := s.isStale(ctx, res)
	if err != nil {
		return nil, err
	}
	return &Status{
		Decision:          res.Decision,
		ReadinessScore:    res.ReadinessScore,
		DatePlanAvailable: res.DatePlanAvailable,
		Stale:             stale,
		GeneratedAt:       res.GeneratedAt,
	}, nil
}

// SubmitFeedback records a participant's feedback on the current decision
func (s *Service) SubmitFeedback(ctx context.Context, pair matches.Pair, userID int64, req FeedbackRequest) (*Feedback, error) {
	res, _, err := s.load(ctx, pair)
	if errors.Is(err, ErrDecisionNotFound) {
		return nil, ErrFeedbackWithoutDecision
	}
	if err != nil {
		return nil, err
	}
	fb := &Feedback{
		UserLow:    pair.Low,
		UserHigh:   pair.High,
		UserID:     userID,
		Decision:   res.Decision,
		Helpful:    *req.Helpful,
		WentOnDate: req.WentOnDate,
		Notes:      req.Notes,
		CreatedAt:  s.deps.Clock.Now(),
	}
	if err := s.deps.Repo.SaveFeedback(ctx, fb); err != nil {
		return nil, err
	}
	s.log.Info("readiness feedback recorded", "pair", pair.String(), "user_id", userID,
		"decision", string(res.Decision), "helpful", fb.Helpful, "went_on_date", fb.WentOnDate)
	return fb, nil
}

// OnGameCompleted invalidates the cached decision of the pair
func (s *Service) OnGameCompleted(e games.CompletedEvent) {
	if err := s.deps.Cache.Delete(context.Background(), e.Pair); err != nil {
		s.log.Warn("failed to invalidate decision", "pair", e.Pair.String(), "session_id", e.SessionID, "error", err.Error())
	}
}

// load reads cache first, then the database
func (s *Service) load(ctx context.Context, pair matches.Pair) (*Result, string, error) {
	res, err := s.deps.Cache.Get(ctx, pair)
	if err != nil {
		s.log.Warn("decision cache read failed", "pair", pair.String(), "error", err.Error())
	}
	if res != nil {
		res.Pair = pair
		return res, "cache", nil
	}
	res, err = s.deps.Repo.Get(ctx, pair)
	if err != nil {
		return nil, "", err
	}
	return res, "database", nil
}

func (s *Service) cache(ctx context.Context, res *Result) {
	ttl := s.deps.TTL - s.deps.Clock.Now().Sub(res.GeneratedAt)
	if ttl <= 0 {
		return
	}
	if err := s.deps.Cache.Set(ctx, res, ttl); err != nil {
		s.log.Warn("decision cache write failed", "pair", res.Pair.String(), "error", err.Error())
	}
}

// isStale reports an expired decision or one that predates the latest completed game
func (s *Service) isStale(ctx context.Context, res *Result) (bool, error) {
	if s.deps.Clock.Now().Sub(res.GeneratedAt) >= s.deps.TTL {
		return true, nil
	}
	latest, err := s.deps.Sessions.LatestCompleted(ctx, res.Pair)
	if err != nil {
		return false, err
	}
	count, newest := summarize(latest)
	if count != res.GamesCount {
		return true, nil
	}
	if newest != nil && (res.LatestCompletion == nil || newest.After(*res.LatestCompletion)) {
		return true, nil
	}
	return false, nil
}

func summarize(latest map[games.GameType]*games.Session) (int, *time.Time) {
	var count int
	var newest *time.Time
	for _, sess := range latest {
		if sess == nil || sess.Result == nil {
			continue
		}
		count++
		at := sess.Result.CompletedAt
		if newest == nil || at.After(*newest) {
			newest = &at
		}
	}
	return count, newest
}

// evaluate collapses concurrent evaluations of one pair
func (s *Service) evaluate(ctx context.Context, pair matches.Pair, previous *Result) (*Result, error) {
	v, err, shared := s.group.Do(pair.String(), func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), evaluateTimeout)
		defer cancel()
		return s.compute(runCtx, pair, previous)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug("joined in-flight readiness evaluation", "pair", pair.String())
	}
	return v.(*Result), nil
}

type gathered struct {
	inputs   Inputs
	users    map[int64]*profile.User
	sessions map[games.GameType]*games.Session
}

// gather reads every input in parallel; the result is a point-in-time merge
func (s *Service) gather(ctx context.Context, pair matches.Pair) (*gathered, error) {
	out := &gathered{inputs: Inputs{Pair: pair, Now: s.deps.Clock.Now()}}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		analyses, err := s.deps.Analyses.GetAnalyses(gctx, []int64{pair.Low, pair.High})
		out.inputs.Analyses = analyses
		return err
	})
	g.Go(func() error {
		agg, err := s.deps.Aggregates.Get(gctx, pair)
		if errors.Is(err, compatibility.ErrAggregateNotFound) {
			return nil
		}
		out.inputs.Aggregate = agg
		return err
	})
	g.Go(func() error {
		sig, err := s.deps.Signals.Signals(gctx, pair)
		if err != nil {
			return err
		}
		out.inputs.Match = &sig
		return nil
	})
	g.Go(func() error {
		blocked, err := s.deps.Users.IsBlockedEitherWay(gctx, pair.Low, pair.High)
		out.inputs.Blocked = blocked
		return err
	})
	g.Go(func() error {
		n, err := s.deps.Sessions.CountForPair(gctx, pair)
		out.inputs.GamesInitiated = n
		return err
	})
	g.Go(func() error {
		users, err := s.deps.Users.GetUsers(gctx, []int64{pair.Low, pair.High})
		out.users = users
		return err
	})
	g.Go(func() error {
		latest, err := s.deps.Sessions.LatestCompleted(gctx, pair)
		out.sessions = latest
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if out.inputs.Analyses == nil {
		out.inputs.Analyses = map[int64]*psychometric.Analysis{}
	}
	return out, nil
}

func (s *Service) compute(ctx context.Context, pair matches.Pair, previous *Result) (res *Result, err error) {
	ctx, span := s.tracer.Start(ctx, "readiness.Evaluate", trace.WithAttributes(attribute.String("pair", pair.String())))
	started := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		evaluationDuration.Observe(time.Since(started).Seconds())
	}()

	in, err := s.gather(ctx, pair)
	if err != nil {
		return nil, err
	}
	res = Evaluate(in.inputs)
	_, res.LatestCompletion = summarize(in.sessions)
	span.SetAttributes(
		attribute.String("decision", string(res.Decision)),
		attribute.Int("readiness_score", res.ReadinessScore),
	)

	if res.DatePlanAvailable && s.deps.Planner != nil {
		plan, err := s.deps.Planner.Generate(ctx, dateplan.Input{
			Pair:      pair,
			Users:     in.users,
			Aggregate: in.inputs.Aggregate,
			Sessions:  in.sessions,
			Concerns:  concerns(res.Cautions),
		})
		if err != nil {
			return nil, err
		}
		res.DatePlan = plan
	}
	res.DatePlanAvailable = res.DatePlan != nil

	if err := s.deps.Repo.Save(ctx, res); err != nil {
		return nil, err
	}
	s.cache(ctx, res)
	decisionsTotal.WithLabelValues(string(res.Decision)).Inc()

	s.log.Info("readiness evaluated",
		"pair", pair.String(),
		"decision", string(res.Decision),
		"readiness_score", res.ReadinessScore,
		"blockers", len(res.Blockers),
		"cautions", len(res.Cautions),
		"games", res.GamesCount,
	)

	if res.DatePlanAvailable && (previous == nil || !previous.DatePlanAvailable) {
		if err := s.deps.Notifier.DatePlanReady(ctx, pair.Low, pair.High, res.DatePlan.PrimaryVenue.Name); err != nil {
			s.log.Warn("date plan notification failed", "pair", pair.String(), "error", err.Error())
		}
	}
	return res, nil
}

func concerns(cautions []Caution) []dateplan.Concern {
	out := make([]dateplan.Concern, 0, len(cautions))
	for _, c := range cautions {
		out = append(out, dateplan.Concern{Type: c.Type, Description: c.Description, RelatedDimension: c.RelatedDimension})
	}
	return out
}
