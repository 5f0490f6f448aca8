package dreamboard

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

func newTestService(t *testing.T) (*Service, *games.Service, string) {
	t.Helper()
	lifecycle := games.NewService(gamestest.NewRepository(), gamestest.Mutual{}, gamestest.NoBlocks{}, nil,
		games.NewEventBus(logger.NewNop()), clock.NewManual(time.Date(2026, 6, 1, 20, 0, 0, 0, time.UTC)), logger.NewNop())
	svc, err := NewService(lifecycle, logger.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	lifecycle.Register(svc.Engine())

	ctx := context.Background()
	s, err := lifecycle.Invite(ctx, 5, 6, games.DreamBoard)
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if _, err := lifecycle.Accept(ctx, s.ID, 6); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	return svc, lifecycle, s.ID
}

// boardWith pins the card at index i in every category
func boardWith(c *Catalog, i int) map[string]string {
	out := make(map[string]string)
	for _, cat := range c.Categories {
		out[cat] = c.Cards(cat)[i].ID
	}
	return out
}

func reactAll(c *Catalog, r Reaction) map[string]Reaction {
	out := make(map[string]Reaction)
	for _, cat := range c.Categories {
		out[cat] = r
	}
	return out
}

func TestCategoryScore(t *testing.T) {
	cases := []struct {
		same bool
		a, b Reaction
		want float64
	}{
		{true, ReactionConcern, ReactionConcern, 100},
		{false, ReactionLove, ReactionLove, 85},
		{false, ReactionLove, ReactionConcern, 52.5},
		{false, ReactionOpen, ReactionOpen, 60},
		{false, ReactionConcern, ReactionConcern, 20},
	}
	for _, c := range cases {
		if got := CategoryScore(c.same, c.a, c.b); got != c.want {
			t.Fatalf("CategoryScore(%v,%s,%s): want=%v got=%v", c.same, c.a, c.b, c.want, got)
		}
	}
}

func TestFullGame(t *testing.T) {
	svc, lifecycle, id := newTestService(t)
	ctx := context.Background()
	c := svc.catalog

	mine := boardWith(c, 0)
	theirs := boardWith(c, 1)
	theirs["home"] = mine["home"]

	if _, err := svc.SubmitBoard(ctx, id, 5, mine); err != nil {
		t.Fatalf("p1 board: %v", err)
	}
	v, err := svc.SubmitBoard(ctx, id, 6, theirs)
	if err != nil {
		t.Fatalf("p2 board: %v", err)
	}
	if v.Status != string(games.StatusAnswering) || v.Categories[0].PartnerCard == nil {
		t.Fatalf("answering view: status=%s", v.Status)
	}

	p1 := reactAll(c, ReactionLove)
	p2 := reactAll(c, ReactionLove)
	p1["family"] = ReactionConcern
	p2["family"] = ReactionConcern
	p2["career"] = ReactionOpen

	if _, err := svc.SubmitReactions(ctx, id, 5, p1); err != nil {
		t.Fatalf("p1 reactions: %v", err)
	}
	v, err = svc.SubmitReactions(ctx, id, 6, p2)
	if err != nil {
		t.Fatalf("p2 reactions: %v", err)
	}

	// home 100, family 20, career 72.5, travel/lifestyle/finances 85 -> 447.5/6 = 74.58
	if v.Score == nil || *v.Score != 75 {
		t.Fatalf("score: want=75 got=%v", v.Score)
	}
	sess, _ := lifecycle.Get(ctx, id, 5)
	res := sess.Result
	if res.Dimension != games.DimensionFuture {
		t.Fatalf("dimension: got %s", res.Dimension)
	}
	if len(res.RedFlags) != 1 || res.RedFlags[0].Severity != games.SeveritySevere {
		t.Fatalf("red flags: %+v", res.RedFlags)
	}
	if len(res.Strengths) != 1 || res.Strengths[0].Category != "home" {
		t.Fatalf("strengths: %+v", res.Strengths)
	}
	if len(res.ConversationStarters) != len(c.Categories)-1 {
		t.Fatalf("starters: want=%d got=%d", len(c.Categories)-1, len(res.ConversationStarters))
	}
}

func TestBoardValidation(t *testing.T) {
	svc, _, id := newTestService(t)
	ctx := context.Background()
	c := svc.catalog

	board := boardWith(c, 0)
	board["home"] = c.Cards("family")[0].ID
	if _, err := svc.SubmitBoard(ctx, id, 5, board); !errors.Is(err, ErrUnknownCard) {
		t.Fatalf("wrong category card: want=%v got=%v", ErrUnknownCard, err)
	}
	delete(board, "home")
	if _, err := svc.SubmitBoard(ctx, id, 5, board); !errors.Is(err, ErrIncompleteBoard) {
		t.Fatalf("missing category: want=%v got=%v", ErrIncompleteBoard, err)
	}

	bad := reactAll(c, "meh")
	if _, err := svc.SubmitReactions(ctx, id, 5, bad); !errors.Is(err, ErrBadReaction) {
		t.Fatalf("bad reaction: want=%v got=%v", ErrBadReaction, err)
	}
	if _, err := svc.SubmitReactions(ctx, id, 5, reactAll(c, ReactionLove)); !errors.Is(err, games.ErrNotInAnswerPhase) {
		t.Fatalf("react before boards: want=%v got=%v", games.ErrNotInAnswerPhase, err)
	}
}
