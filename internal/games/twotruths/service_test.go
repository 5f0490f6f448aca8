package twotruths

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/clock"
	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
	"github.com/imadgeboyega/kiekky-couples/internal/games/gamestest"
)

func makeRounds(author string) []Round {
	rounds := make([]Round, RoundCount)
	for i := range rounds {
		lie := i % StatementsPerRound
		st := make([]Statement, StatementsPerRound)
		for j := range st {
			st[j] = Statement{Text: fmt.Sprintf("%s fact %d.%d", author, i, j), IsLie: j == lie}
		}
		rounds[i] = Round{Statements: st}
	}
	return rounds
}

// guessesFor spots the lie in the first `correct` rounds and misses the rest
func guessesFor(rounds []Round, correct int) []int {
	out := make([]int, len(rounds))
	for i, r := range rounds {
		lie := lieIndex(r)
		if i < correct {
			out[i] = lie
		} else {
			out[i] = (lie + 1) % StatementsPerRound
		}
	}
	return out
}

type fixture struct {
	svc       *Service
	lifecycle *games.Service
	events    []games.CompletedEvent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bus := games.NewEventBus(logger.NewNop())
	lifecycle := games.NewService(gamestest.NewRepository(), gamestest.Mutual{}, gamestest.NoBlocks{}, nil, bus,
		clock.NewManual(time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC)), logger.NewNop())
	f := &fixture{lifecycle: lifecycle, svc: NewService(lifecycle, logger.NewNop())}
	lifecycle.Register(f.svc.Engine())
	bus.Subscribe(func(e games.CompletedEvent) { f.events = append(f.events, e) })
	return f
}

func (f *fixture) acceptedSession(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	s, err := f.lifecycle.Invite(ctx, 1, 2, games.TwoTruthsLie)
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if _, err := f.lifecycle.Accept(ctx, s.ID, 2); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	return s.ID
}

func TestValidateRounds(t *testing.T) {
	good := makeRounds("a")
	if err := ValidateRounds(good); err != nil {
		t.Fatalf("valid rounds: %v", err)
	}
	if err := ValidateRounds(good[:9]); !errors.Is(err, ErrWrongRoundCount) {
		t.Fatalf("9 rounds: want=%v got=%v", ErrWrongRoundCount, err)
	}

	twoLies := makeRounds("a")
	twoLies[3].Statements[0].IsLie = true
	twoLies[3].Statements[1].IsLie = true
	if err := ValidateRounds(twoLies); !errors.Is(err, ErrLieCount) {
		t.Fatalf("two lies: want=%v got=%v", ErrLieCount, err)
	}

	noLie := makeRounds("a")
	for j := range noLie[0].Statements {
		noLie[0].Statements[j].IsLie = false
	}
	if err := ValidateRounds(noLie); !errors.Is(err, ErrLieCount) {
		t.Fatalf("no lie: want=%v got=%v", ErrLieCount, err)
	}

	blank := makeRounds("a")
	blank[1].Statements[2].Text = "  "
	if err := ValidateRounds(blank); !errors.Is(err, ErrBadRound) {
		t.Fatalf("blank statement: want=%v got=%v", ErrBadRound, err)
	}
}

func TestFullGameTie(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.acceptedSession(t)

	p1Rounds, p2Rounds := makeRounds("p1"), makeRounds("p2")

	v, err := f.svc.SubmitStatements(ctx, id, 1, p1Rounds)
	if err != nil {
		t.Fatalf("p1 statements: %v", err)
	}
	if v.Status != string(games.StatusAuthoring) || v.PartnerRounds != nil {
		t.Fatalf("after first submit: status=%s partner_rounds=%v", v.Status, v.PartnerRounds)
	}
	if _, err := f.svc.SubmitStatements(ctx, id, 1, p1Rounds); !errors.Is(err, games.ErrAlreadySubmitted) {
		t.Fatalf("resubmit: want=%v got=%v", games.ErrAlreadySubmitted, err)
	}
	if _, err := f.svc.SubmitGuesses(ctx, id, 1, guessesFor(p2Rounds, 7)); !errors.Is(err, games.ErrNotInAnswerPhase) {
		t.Fatalf("early guess: want=%v got=%v", games.ErrNotInAnswerPhase, err)
	}

	v, err = f.svc.SubmitStatements(ctx, id, 2, p2Rounds)
	if err != nil {
		t.Fatalf("p2 statements: %v", err)
	}
	if v.Status != string(games.StatusAnswering) {
		t.Fatalf("status: want=answering got=%s", v.Status)
	}
	for _, r := range v.PartnerRounds {
		if r.LieIndex != nil {
			t.Fatalf("lie leaked before completion")
		}
	}
	if _, err := f.svc.SubmitStatements(ctx, id, 2, p2Rounds); !errors.Is(err, games.ErrNotInWritingPhase) {
		t.Fatalf("write in answering: want=%v got=%v", games.ErrNotInWritingPhase, err)
	}

	if _, err := f.svc.SubmitGuesses(ctx, id, 1, guessesFor(p2Rounds, 7)); err != nil {
		t.Fatalf("p1 guesses: %v", err)
	}
	if _, err := f.svc.SubmitGuesses(ctx, id, 1, guessesFor(p2Rounds, 7)); !errors.Is(err, games.ErrAlreadySubmitted) {
		t.Fatalf("double guess: want=%v got=%v", games.ErrAlreadySubmitted, err)
	}
	v, err = f.svc.SubmitGuesses(ctx, id, 2, guessesFor(p1Rounds, 7))
	if err != nil {
		t.Fatalf("p2 guesses: %v", err)
	}

	if v.Status != string(games.StatusCompleted) {
		t.Fatalf("status: want=completed got=%s", v.Status)
	}
	if *v.InitiatorScore != 7 || *v.InviteeScore != 7 || v.Winner != WinnerTie {
		t.Fatalf("scores: initiator=%d invitee=%d winner=%s", *v.InitiatorScore, *v.InviteeScore, v.Winner)
	}
	if v.PartnerRounds[0].LieIndex == nil || !*v.PartnerRounds[0].Correct || *v.PartnerRounds[9].Correct {
		t.Fatalf("reveal after completion: %+v", v.PartnerRounds[0])
	}
	if len(f.events) != 1 || f.events[0].SessionID != id {
		t.Fatalf("completion events: got %+v", f.events)
	}

	sess, _ := f.lifecycle.Get(ctx, id, 1)
	if sess.Result == nil || sess.Result.Score != 70 || sess.Result.Dimension != games.DimensionIntuition {
		t.Fatalf("result: %+v", sess.Result)
	}
	for _, st := range sess.Result.ConversationStarters {
		if st.Prompt == "" || st.Topic == "" || st.SourceGame != games.TwoTruthsLie {
			t.Fatalf("starter incomplete: %+v", st)
		}
	}
}

func TestInitiatorWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.acceptedSession(t)
	p1Rounds, p2Rounds := makeRounds("p1"), makeRounds("p2")

	f.svc.SubmitStatements(ctx, id, 2, p2Rounds)
	f.svc.SubmitStatements(ctx, id, 1, p1Rounds)
	f.svc.SubmitGuesses(ctx, id, 2, guessesFor(p1Rounds, 5))
	v, err := f.svc.SubmitGuesses(ctx, id, 1, guessesFor(p2Rounds, 7))
	if err != nil {
		t.Fatalf("SubmitGuesses: %v", err)
	}
	if v.Winner != WinnerInitiator || *v.YourScore != 7 || *v.PartnerScore != 5 {
		t.Fatalf("winner=%s yours=%d partner=%d", v.Winner, *v.YourScore, *v.PartnerScore)
	}
}

func TestGuessValidation(t *testing.T) {
	if err := ValidateGuesses([]int{0, 1, 2, 0, 1, 2, 0, 1, 2, 3}); !errors.Is(err, ErrBadGuesses) {
		t.Fatalf("out of range: want=%v got=%v", ErrBadGuesses, err)
	}
	if err := ValidateGuesses([]int{0}); !errors.Is(err, ErrBadGuesses) {
		t.Fatalf("short: want=%v got=%v", ErrBadGuesses, err)
	}
}

func TestDecideWinner(t *testing.T) {
	cases := []struct {
		a, b int
		want string
	}{
		{7, 7, WinnerTie},
		{8, 7, WinnerInitiator},
		{3, 9, WinnerPartner},
		{0, 0, WinnerTie},
	}
	for _, c := range cases {
		if got := DecideWinner(c.a, c.b); got != c.want {
			t.Fatalf("DecideWinner(%d,%d): want=%s got=%s", c.a, c.b, c.want, got)
		}
	}
}

func TestNonParticipantCannotView(t *testing.T) {
	f := newFixture(t)
	id := f.acceptedSession(t)
	if _, err := f.svc.View(context.Background(), id, 99); err == nil {
		t.Fatalf("View by stranger: want error")
	}
}
