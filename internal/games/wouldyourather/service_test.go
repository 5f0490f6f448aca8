package wouldyourather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/clock"
	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
	"github.com/imadgeboyega/kiekky-couples/internal/games/gamestest"
)

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func newTestService(t *testing.T) (*Service, *games.Service) {
	t.Helper()
	lifecycle := games.NewService(gamestest.NewRepository(), gamestest.Mutual{}, gamestest.NoBlocks{}, nil,
		games.NewEventBus(logger.NewNop()), clock.NewManual(time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)), logger.NewNop())
	svc, err := NewService(lifecycle, logger.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	svc.perm = identity
	lifecycle.Register(svc.Engine())
	return svc, lifecycle
}

func startGame(t *testing.T, lifecycle *games.Service) string {
	t.Helper()
	ctx := context.Background()
	s, err := lifecycle.Invite(ctx, 10, 20, games.WouldYouRather)
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if _, err := lifecycle.Accept(ctx, s.ID, 20); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	return s.ID
}

func allA(ids []string) map[string]string {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		out[id] = "a"
	}
	return out
}

func TestCatalogLoads(t *testing.T) {
	c, err := LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	ids := c.Draw(identity)
	if len(ids) != QuestionCount {
		t.Fatalf("Draw: want=%d got=%d", QuestionCount, len(ids))
	}
	perCat := map[string]int{}
	seen := map[string]bool{}
	for _, id := range ids {
		q, ok := c.Question(id)
		if !ok || seen[id] {
			t.Fatalf("Draw returned bad id %q", id)
		}
		seen[id] = true
		perCat[q.Category]++
	}
	for _, cat := range Categories {
		if perCat[cat] != perCategory {
			t.Fatalf("category %s: want=%d got=%d", cat, perCategory, perCat[cat])
		}
	}
}

func TestFullGame(t *testing.T) {
	svc, lifecycle := newTestService(t)
	ctx := context.Background()
	id := startGame(t, lifecycle)

	view, err := svc.View(ctx, id, 10)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	ids := make([]string, len(view.Questions))
	for i, q := range view.Questions {
		ids[i] = q.ID
	}

	p1 := allA(ids)
	p2 := allA(ids)
	p2["wyr-bud-01"] = "b"
	p2["wyr-bud-02"] = "b"

	if _, err := svc.SubmitChoices(ctx, id, 10, p1); err != nil {
		t.Fatalf("p1 choices: %v", err)
	}
	v, err := svc.SubmitChoices(ctx, id, 20, p2)
	if err != nil {
		t.Fatalf("p2 choices: %v", err)
	}
	if v.Status != string(games.StatusAnswering) {
		t.Fatalf("status: want=answering got=%s", v.Status)
	}
	for _, q := range v.Questions {
		if q.PartnerChoice != "" {
			t.Fatalf("partner choice leaked on %s", q.ID)
		}
	}

	if _, err := svc.SubmitPredictions(ctx, id, 10, allA(ids)); err != nil {
		t.Fatalf("p1 predictions: %v", err)
	}
	v, err = svc.SubmitPredictions(ctx, id, 20, p1)
	if err != nil {
		t.Fatalf("p2 predictions: %v", err)
	}
	if v.Status != string(games.StatusCompleted) || v.MatchPercentage == nil || *v.MatchPercentage != 80 {
		t.Fatalf("completed view: status=%s match=%v", v.Status, v.MatchPercentage)
	}
	if *v.YourPredictionHits != 10 {
		t.Fatalf("p2 prediction hits: want=10 got=%d", *v.YourPredictionHits)
	}

	sess, _ := lifecycle.Get(ctx, id, 10)
	res := sess.Result
	if res.CategoryScores["budget"] != 0 || res.CategoryScores["adventure"] != 100 {
		t.Fatalf("category scores: %v", res.CategoryScores)
	}
	if len(res.SharedInterests) != 8 {
		t.Fatalf("shared interests: want=8 got=%d", len(res.SharedInterests))
	}
	if len(res.DiscussionAreas) != 1 || res.DiscussionAreas[0].Category != "budget" {
		t.Fatalf("discussion areas: %+v", res.DiscussionAreas)
	}
	if len(res.ConversationStarters) != 2 {
		t.Fatalf("starters: want=2 got=%d", len(res.ConversationStarters))
	}
	for _, h := range res.HiddenAlignments {
		if h.SourceGame != games.WouldYouRather {
			t.Fatalf("hidden alignment untagged: %+v", h)
		}
	}
}

func TestSubmitValidation(t *testing.T) {
	svc, lifecycle := newTestService(t)
	ctx := context.Background()
	id := startGame(t, lifecycle)
	view, _ := svc.View(ctx, id, 10)
	ids := make([]string, len(view.Questions))
	for i, q := range view.Questions {
		ids[i] = q.ID
	}

	bad := allA(ids)
	bad[ids[0]] = "c"
	if _, err := svc.SubmitChoices(ctx, id, 10, bad); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("unknown option: want=%v got=%v", ErrUnknownOption, err)
	}
	short := allA(ids[:5])
	if _, err := svc.SubmitChoices(ctx, id, 10, short); !errors.Is(err, ErrIncompleteAnswers) {
		t.Fatalf("incomplete: want=%v got=%v", ErrIncompleteAnswers, err)
	}
	if _, err := svc.SubmitPredictions(ctx, id, 10, allA(ids)); !errors.Is(err, games.ErrNotInAnswerPhase) {
		t.Fatalf("predict in writing phase: want=%v got=%v", games.ErrNotInAnswerPhase, err)
	}
	if _, err := svc.SubmitChoices(ctx, id, 10, allA(ids)); err != nil {
		t.Fatalf("valid choices: %v", err)
	}
	if _, err := svc.SubmitChoices(ctx, id, 10, allA(ids)); !errors.Is(err, games.ErrAlreadySubmitted) {
		t.Fatalf("resubmit: want=%v got=%v", games.ErrAlreadySubmitted, err)
	}
}

func TestParseCatalogRejectsThinCategory(t *testing.T) {
	doc := []byte(`questions:
  - id: q1
    category: adventure
    prompt: x
    a: {key: a, text: one, tag: one}
    b: {key: b, text: two, tag: two}
`)
	if _, err := parseCatalog(doc); err == nil {
		t.Fatalf("parseCatalog: want error for missing categories")
	}
}
