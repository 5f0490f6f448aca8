package compatibility

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/clock"
	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
	"github.com/imadgeboyega/kiekky-couples/internal/games/gamestest"
	"github.com/imadgeboyega/kiekky-couples/internal/llm"
	"github.com/imadgeboyega/kiekky-couples/internal/matches"
)

const narrativeReply = `{
	"executive_summary": "You two play well together.",
	"compatibility_narrative": "Lots of overlap.",
	"relationship_dynamic": "Balanced.",
	"communication_analysis": "Open.",
	"long_term_potential": {"score": 78, "assessment": "Promising", "factors": ["shared goals"]},
	"recommendations": {"date_ideas": ["cooking class"], "conversation_topics": ["travel"], "areas_to_explore": [], "watch_out_for": []},
	"verdict": {"headline": "Worth a date", "summary": "Go for it", "confidence": "medium"}
}`

type memoryAggregates struct {
	mu    sync.Mutex
	docs  map[matches.Pair]Aggregate
	saves int
}

func (m *memoryAggregates) Get(_ context.Context, p matches.Pair) (*Aggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	agg, ok := m.docs[p]
	if !ok {
		return nil, ErrAggregateNotFound
	}
	return &agg, nil
}

func (m *memoryAggregates) Save(_ context.Context, agg *Aggregate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[agg.Pair] = *agg
	m.saves++
	return nil
}

func (m *memoryAggregates) Delete(_ context.Context, p matches.Pair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, p)
	return nil
}

type serviceFixture struct {
	svc      *Service
	sessions *gamestest.Repository
	docs     *memoryAggregates
	fake     *llm.Fake
	clock    *clock.Manual
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		sessions: gamestest.NewRepository(),
		docs:     &memoryAggregates{docs: make(map[matches.Pair]Aggregate)},
		fake:     llm.NewFake(),
		clock:    clock.NewManual(t0),
	}
	f.svc = NewService(f.sessions, f.docs, NewLLMNarrator(f.fake), f.clock, 24*time.Hour, logger.NewNop())
	f.svc.async = func(fn func()) { fn() }
	return f
}

func (f *serviceFixture) complete(id string, gt games.GameType, score float64) {
	f.clock.Advance(time.Minute)
	f.sessions.Put(gamestest.CompletedSession(id, pair, view(gt, score, f.clock.Now())))
}

func TestNarrativeNeedsThreeGames(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	f.fake.Reply(narrativeReply)

	f.complete("wyr", games.WouldYouRather, 70)
	f.complete("db", games.DreamBoard, 80)
	agg, err := f.svc.Get(ctx, pair)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if agg.AIInsightsAvailable || f.fake.CallCount() != 0 {
		t.Fatalf("narrative requested with 2 games (calls=%d)", f.fake.CallCount())
	}

	f.complete("tt", games.TwoTruthsLie, 60)
	agg, err = f.svc.Get(ctx, pair)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !agg.AIInsightsAvailable || agg.AIInsights == nil || agg.AIInsights.Verdict.Headline != "Worth a date" {
		t.Fatalf("narrative missing: %+v", agg.AIInsights)
	}
	if f.fake.CallCount() != 1 || f.fake.Calls[0].Operation != "couple_narrative" {
		t.Fatalf("narrative calls: %+v", f.fake.Calls)
	}
}

func TestNarrativeFailureKeepsAggregate(t *testing.T) {
	f := newServiceFixture()
	f.fake.Fail(llm.ErrUpstream)
	f.complete("wyr", games.WouldYouRather, 70)
	f.complete("db", games.DreamBoard, 80)
	f.complete("tt", games.TwoTruthsLie, 60)

	agg, err := f.svc.Get(context.Background(), pair)
	if err != nil {
		t.Fatalf("Get should not fail with the model down: %v", err)
	}
	if agg.AIInsightsAvailable || agg.AIInsights != nil {
		t.Fatalf("failed narrative attached")
	}
	if agg.TotalGamesIncluded != 3 || agg.Overall.Score == nil {
		t.Fatalf("aggregate incomplete: %+v", agg.Overall)
	}
}

func TestMalformedNarrativeIsDropped(t *testing.T) {
	f := newServiceFixture()
	f.fake.Reply(`{"executive_summary": ""}`)
	f.complete("wyr", games.WouldYouRather, 70)
	f.complete("db", games.DreamBoard, 80)
	f.complete("tt", games.TwoTruthsLie, 60)

	agg, err := f.svc.Get(context.Background(), pair)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if agg.AIInsightsAvailable {
		t.Fatalf("empty narrative accepted")
	}
}

func TestGetServesFreshAggregate(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	f.complete("wyr", games.WouldYouRather, 70)

	first, err := f.svc.Get(ctx, pair)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	f.clock.Advance(time.Hour)
	second, err := f.svc.Get(ctx, pair)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if f.docs.saves != 1 || !second.LastGeneratedAt.Equal(first.LastGeneratedAt) {
		t.Fatalf("fresh aggregate rebuilt: saves=%d", f.docs.saves)
	}

	f.clock.Advance(24 * time.Hour)
	third, err := f.svc.Get(ctx, pair)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if f.docs.saves != 2 || !third.LastGeneratedAt.Equal(f.clock.Now()) {
		t.Fatalf("stale aggregate not rebuilt: saves=%d", f.docs.saves)
	}
}

func TestCompletionEventRebuilds(t *testing.T) {
	f := newServiceFixture()
	bus := games.NewEventBus(logger.NewNop())
	bus.Subscribe(f.svc.OnGameCompleted)

	f.complete("wyr", games.WouldYouRather, 70)
	bus.Publish(games.CompletedEvent{SessionID: "wyr", GameType: games.WouldYouRather, Pair: pair, CompletedAt: f.clock.Now()})

	agg, err := f.docs.Get(context.Background(), pair)
	if err != nil {
		t.Fatalf("aggregate not stored after event: %v", err)
	}
	if agg.TotalGamesIncluded != 1 || *agg.Dimensions[games.DimensionLifestyle].Score != 70 {
		t.Fatalf("aggregate after event: %+v", agg.Dimensions)
	}
}

func TestClearDropsAggregate(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	f.complete("wyr", games.WouldYouRather, 70)
	if _, err := f.svc.Refresh(ctx, pair); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if err := f.svc.Clear(ctx, pair); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := f.docs.Get(ctx, pair); !errors.Is(err, ErrAggregateNotFound) {
		t.Fatalf("after clear: want=%v got=%v", ErrAggregateNotFound, err)
	}
}
