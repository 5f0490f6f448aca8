package readiness

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/common/clock"
	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/compatibility"
	"github.com/imadgeboyega/kiekky-couples/internal/dateplan"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
	"github.com/imadgeboyega/kiekky-couples/internal/games/gamestest"
	"github.com/imadgeboyega/kiekky-couples/internal/llm"
	"github.com/imadgeboyega/kiekky-couples/internal/matches"
	notifications "github.com/imadgeboyega/kiekky-couples/internal/notification"
	"github.com/imadgeboyega/kiekky-couples/internal/profile"
	"github.com/imadgeboyega/kiekky-couples/internal/psychometric"
)

type stubAnalyses map[int64]*psychometric.Analysis

func (s stubAnalyses) GetAnalyses(_ context.Context, ids []int64) (map[int64]*psychometric.Analysis, error) {
	out := map[int64]*psychometric.Analysis{}
	for _, id := range ids {
		if a, ok := s[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

type stubAggregates struct{ agg *compatibility.Aggregate }

func (s *stubAggregates) Get(context.Context, matches.Pair) (*compatibility.Aggregate, error) {
	if s.agg == nil {
		return nil, compatibility.ErrAggregateNotFound
	}
	return s.agg, nil
}

type stubSignals struct{ sig matches.Signals }

func (s stubSignals) Signals(context.Context, matches.Pair) (matches.Signals, error) { return s.sig, nil }

type stubUsers struct {
	users   map[int64]*profile.User
	blocked bool
}

func (s *stubUsers) GetUser(_ context.Context, id int64) (*profile.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, apperr.ErrUserNotFound
}

func (s *stubUsers) GetUsers(_ context.Context, ids []int64) (map[int64]*profile.User, error) {
	out := map[int64]*profile.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (s *stubUsers) IsBlockedEitherWay(context.Context, int64, int64) (bool, error) {
	return s.blocked, nil
}

type memoryDecisions struct {
	mu       sync.Mutex
	docs     map[matches.Pair]Result
	feedback []Feedback
	saves    int
}

func (m *memoryDecisions) Get(_ context.Context, p matches.Pair) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.docs[p]
	if !ok {
		return nil, ErrDecisionNotFound
	}
	return &res, nil
}

func (m *memoryDecisions) Save(_ context.Context, res *Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[res.Pair] = *res
	m.saves++
	return nil
}

func (m *memoryDecisions) SaveFeedback(_ context.Context, fb *Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fb.ID = int64(len(m.feedback) + 1)
	m.feedback = append(m.feedback, *fb)
	return nil
}

type memoryCache struct {
	mu      sync.Mutex
	docs    map[matches.Pair]Result
	deletes int
}

func (c *memoryCache) Get(_ context.Context, p matches.Pair) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.docs[p]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

func (c *memoryCache) Set(_ context.Context, res *Result, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[res.Pair] = *res
	return nil
}

func (c *memoryCache) Delete(_ context.Context, p matches.Pair) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, p)
	c.deletes++
	return nil
}

type recordingNotifier struct {
	notifications.Nop
	mu     sync.Mutex
	venues []string
}

func (n *recordingNotifier) DatePlanReady(_ context.Context, _, _ int64, venue string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.venues = append(n.venues, venue)
	return nil
}

type serviceFixture struct {
	svc        *Service
	sessions   *gamestest.Repository
	aggregates *stubAggregates
	users      *stubUsers
	decisions  *memoryDecisions
	cache      *memoryCache
	notifier   *recordingNotifier
	clock      *clock.Manual
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		sessions:   gamestest.NewRepository(),
		aggregates: &stubAggregates{},
		users: &stubUsers{users: map[int64]*profile.User{
			1: {ID: 1, City: "Lagos"},
			2: {ID: 2, City: "Lagos"},
		}},
		decisions: &memoryDecisions{docs: map[matches.Pair]Result{}},
		cache:     &memoryCache{docs: map[matches.Pair]Result{}},
		notifier:  &recordingNotifier{},
		clock:     clock.NewManual(t0),
	}
	planner := dateplan.NewGenerator(llm.NewFake(), dateplan.DistanceLimits{StandardKM: 50, PremiumKM: 100}, f.clock, logger.NewNop())
	f.svc = NewService(Deps{
		Analyses:   stubAnalyses{1: analysis(1, 90, ""), 2: analysis(2, 85, "")},
		Aggregates: f.aggregates,
		Signals:    stubSignals{sig: *engaged()},
		Users:      f.users,
		Sessions:   f.sessions,
		Planner:    planner,
		Repo:       f.decisions,
		Cache:      f.cache,
		Notifier:   f.notifier,
		Clock:      f.clock,
		TTL:        24 * time.Hour,
	}, logger.NewNop())
	return f
}

// play completes n games and points the aggregate stub at them
func (f *serviceFixture) play(n, overall int) {
	for i := 0; i < n; i++ {
		gt := games.AllGameTypes[i]
		f.clock.Advance(time.Minute)
		f.sessions.Put(gamestest.CompletedSession(string(gt), pair, games.NewResultView(gt, f.clock.Now(), 80)))
	}
	f.aggregates.agg = aggregate(n, overall, 80)
}

func TestReadinessIsIdempotentWithinTTL(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	f.play(5, 82)

	first, err := f.svc.GetReadiness(ctx, pair)
	if err != nil {
		t.Fatalf("GetReadiness: %v", err)
	}
	if first.Decision != DecisionReady || first.ReadinessScore != 93 {
		t.Fatalf("decision: want=ready/93 got=%s/%d", first.Decision, first.ReadinessScore)
	}
	if first.DatePlan == nil || !first.DatePlan.Fallback || len(first.DatePlan.ConversationStarters) < dateplan.MinStarters {
		t.Fatalf("date plan: %+v", first.DatePlan)
	}

	f.clock.Advance(time.Hour)
	second, err := f.svc.GetReadiness(ctx, pair)
	if err != nil {
		t.Fatalf("GetReadiness: %v", err)
	}
	if f.decisions.saves != 1 || !second.GeneratedAt.Equal(first.GeneratedAt) {
		t.Fatalf("decision recomputed within ttl: saves=%d", f.decisions.saves)
	}
	if len(f.notifier.venues) != 1 {
		t.Fatalf("notifications: want=1 got=%d", len(f.notifier.venues))
	}
}

func TestNewGameInvalidatesDecision(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	f.play(2, 60)

	if _, err := f.svc.GetReadiness(ctx, pair); err != nil {
		t.Fatalf("GetReadiness: %v", err)
	}

	bus := games.NewEventBus(logger.NewNop())
	bus.Subscribe(f.svc.OnGameCompleted)
	f.play(3, 82)
	bus.Publish(games.CompletedEvent{SessionID: "x", GameType: games.NeverHaveIEver, Pair: pair, CompletedAt: f.clock.Now()})

	if f.cache.deletes != 1 {
		t.Fatalf("cache deletes: want=1 got=%d", f.cache.deletes)
	}
	res, err := f.svc.GetReadiness(ctx, pair)
	if err != nil {
		t.Fatalf("GetReadiness: %v", err)
	}
	if f.decisions.saves != 2 || res.GamesCount != 3 {
		t.Fatalf("decision after new game: saves=%d games=%d", f.decisions.saves, res.GamesCount)
	}
}

func TestDecisionExpiresAfterTTL(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	f.play(5, 82)

	if _, err := f.svc.GetReadiness(ctx, pair); err != nil {
		t.Fatalf("GetReadiness: %v", err)
	}
	f.clock.Advance(24 * time.Hour)

	status, err := f.svc.Status(ctx, pair)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Stale || status.Decision != DecisionReady {
		t.Fatalf("status: %+v", status)
	}

	res, err := f.svc.GetReadiness(ctx, pair)
	if err != nil {
		t.Fatalf("GetReadiness: %v", err)
	}
	if f.decisions.saves != 2 || !res.GeneratedAt.Equal(f.clock.Now()) {
		t.Fatalf("expired decision not recomputed: saves=%d", f.decisions.saves)
	}
	if len(f.notifier.venues) != 1 {
		t.Fatalf("plan notification repeated: %d", len(f.notifier.venues))
	}
}

func TestBlockedCoupleGetsNoPlan(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	f.play(5, 82)
	f.users.blocked = true

	if _, err := f.svc.GetDatePlan(ctx, pair); !errors.Is(err, ErrReadinessCheckRequired) {
		t.Fatalf("plan before check: want=%v got=%v", ErrReadinessCheckRequired, err)
	}

	res, err := f.svc.GetReadiness(ctx, pair)
	if err != nil {
		t.Fatalf("GetReadiness: %v", err)
	}
	if res.Decision != DecisionBlocked || res.DatePlan != nil || res.DatePlanAvailable {
		t.Fatalf("blocked decision: %+v", res)
	}
	if _, err := f.svc.GetDatePlan(ctx, pair); !errors.Is(err, ErrDatePlanNotAvailable) {
		t.Fatalf("plan for blocked couple: want=%v got=%v", ErrDatePlanNotAvailable, err)
	}
	if len(f.notifier.venues) != 0 {
		t.Fatalf("blocked couple notified")
	}
}

func TestGetDatePlanServesStoredPlan(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	f.play(5, 82)

	res, err := f.svc.Refresh(ctx, pair)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	plan, err := f.svc.GetDatePlan(ctx, pair)
	if err != nil {
		t.Fatalf("GetDatePlan: %v", err)
	}
	if plan.PrimaryVenue.Name != res.DatePlan.PrimaryVenue.Name || plan.Location.City != "Lagos" {
		t.Fatalf("plan: %+v", plan)
	}
	if f.decisions.saves != 1 {
		t.Fatalf("GetDatePlan recomputed: saves=%d", f.decisions.saves)
	}
}

func TestSubmitFeedback(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	helpful := true
	req := FeedbackRequest{Helpful: &helpful, WentOnDate: true, Notes: "lovely cafe"}

	if _, err := f.svc.SubmitFeedback(ctx, pair, 1, req); !errors.Is(err, ErrFeedbackWithoutDecision) {
		t.Fatalf("feedback without decision: want=%v got=%v", ErrFeedbackWithoutDecision, err)
	}

	f.play(5, 82)
	if _, err := f.svc.GetReadiness(ctx, pair); err != nil {
		t.Fatalf("GetReadiness: %v", err)
	}
	fb, err := f.svc.SubmitFeedback(ctx, pair, 2, req)
	if err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}
	if fb.ID != 1 || fb.Decision != DecisionReady || fb.UserID != 2 || !fb.WentOnDate {
		t.Fatalf("feedback: %+v", fb)
	}
}
