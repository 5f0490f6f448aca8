package spectrum

import (
	"testing"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/games"
)

func TestAlignmentThresholds(t *testing.T) {
	cases := []struct {
		gap  int
		want string
	}{
		{0, AlignmentPerfect},
		{10, AlignmentPerfect},
		{11, AlignmentHot},
		{20, AlignmentHot},
		{21, AlignmentGood},
		{35, AlignmentGood},
		{36, AlignmentWorthDiscussing},
		{50, AlignmentWorthDiscussing},
		{51, AlignmentDifferent},
		{70, AlignmentDifferent},
		{71, AlignmentOpposite},
		{100, AlignmentOpposite},
	}
	for _, tc := range cases {
		if got := Alignment(tc.gap); got != tc.want {
			t.Fatalf("Alignment(%d): want=%s got=%s", tc.gap, tc.want, got)
		}
	}
}

func answered(idx int, category string, p1, p2 *int) Round {
	r := Round{Index: idx, Category: category, InitiatorPosition: p1, InviteePosition: p2}
	reveal(&r, time.Unix(0, 0), TriggerTimer)
	return r
}

func pos(v int) *int { return &v }

func TestComputeResultsWeightsAnsweredCategories(t *testing.T) {
	rounds := []Round{
		answered(0, "desire_drive", pos(20), pos(30)),
		answered(1, "kinks_intensity", pos(10), pos(40)),
		answered(2, "communication", pos(50), nil),
		answered(3, "turn_ons", nil, pos(50)),
		answered(4, "turn_ons", nil, nil),
		{Index: 5, Category: "turn_ons"}, // never revealed
	}
	res := ComputeResults(rounds)

	if res.BothAnswered != 2 || res.Player2TimedOut != 1 || res.Player1TimedOut != 1 || res.BothTimedOut != 1 {
		t.Fatalf("counts: %+v", res)
	}
	// (90*0.10 + 70*0.25) / 0.35 = 75.7
	if res.CompatibilityScore == nil || *res.CompatibilityScore != 76 {
		t.Fatalf("score: want=76 got=%v", res.CompatibilityScore)
	}
	if res.AverageGap == nil || *res.AverageGap != 20 {
		t.Fatalf("average gap: want=20 got=%v", res.AverageGap)
	}
	if c := res.CategoryBreakdown["communication"].Compatibility; c != nil {
		t.Fatalf("communication has no full answers, got %d", *c)
	}
	if c := res.CategoryBreakdown["kinks_intensity"].Compatibility; c == nil || *c != 70 {
		t.Fatalf("kinks: want=70 got=%v", c)
	}
}

func TestComputeResultsWithoutAnswers(t *testing.T) {
	res := ComputeResults([]Round{answered(0, "turn_ons", nil, nil)})
	if res.CompatibilityScore != nil || res.AverageGap != nil {
		t.Fatalf("want null score and gap, got %v %v", res.CompatibilityScore, res.AverageGap)
	}
}

func TestBuildResultViewAllTimedOut(t *testing.T) {
	questions, err := LoadQuestions()
	if err != nil {
		t.Fatalf("LoadQuestions: %v", err)
	}
	rounds := make([]Round, len(questions))
	for i, q := range questions {
		rounds[i] = answered(i, q.Category, nil, nil)
	}
	rounds[0] = answered(0, questions[0].Category, pos(40), nil)

	view := BuildResultView(questions, rounds, ComputeResults(rounds), time.Unix(100, 0))
	if !view.Unscored {
		t.Fatalf("unscored: want=true got=%v", view.Unscored)
	}
	if len(view.CategoryScores) != 0 {
		t.Fatalf("category scores: want=0 got=%d", len(view.CategoryScores))
	}
}

func TestComputeResultsStaysInRange(t *testing.T) {
	for gap := 0; gap <= 100; gap += 7 {
		rounds := []Round{
			answered(0, "fantasy_roleplay", pos(0), pos(gap)),
			answered(1, "initiation_power", pos(100), pos(100-gap)),
		}
		res := ComputeResults(rounds)
		if s := *res.CompatibilityScore; s < 0 || s > 100 || s != 100-gap {
			t.Fatalf("gap %d: score %d", gap, s)
		}
	}
}

func TestBuildResultView(t *testing.T) {
	questions, err := LoadQuestions()
	if err != nil {
		t.Fatalf("LoadQuestions: %v", err)
	}
	rounds := make([]Round, len(questions))
	for i, q := range questions {
		rounds[i] = answered(i, q.Category, pos(50), pos(50))
	}
	// pull communication far apart
	for i, q := range questions {
		if q.Category == "communication" {
			rounds[i] = answered(i, q.Category, pos(0), pos(90))
		}
	}
	res := ComputeResults(rounds)
	view := BuildResultView(questions, rounds, res, time.Unix(100, 0))

	if len(view.RedFlags) != 1 {
		t.Fatalf("red flags: want=1 got=%d", len(view.RedFlags))
	}
	if len(view.ConversationStarters) != 3 {
		t.Fatalf("starters: want=3 got=%d", len(view.ConversationStarters))
	}
	if len(view.HiddenAlignments) == 0 {
		t.Fatalf("spice 3 agreement should surface hidden alignments")
	}
	if view.CategoryScores["communication"] != 10 {
		t.Fatalf("communication score: %v", view.CategoryScores["communication"])
	}
	if view.Unscored {
		t.Fatalf("scored session flagged unscored")
	}
	for _, s := range view.Strengths {
		if s.SourceGame != games.IntimacySpectrum {
			t.Fatalf("untagged strength %+v", s)
		}
	}
}

func TestQuestionsCatalog(t *testing.T) {
	questions, err := LoadQuestions()
	if err != nil {
		t.Fatalf("LoadQuestions: %v", err)
	}
	if len(questions) != QuestionCount {
		t.Fatalf("count: want=%d got=%d", QuestionCount, len(questions))
	}
	if questions[0].Spice != 1 || questions[QuestionCount-1].Spice != 3 {
		t.Fatalf("spice should run mild to spicy")
	}
	if _, err := parseQuestions([]byte("questions:\n  - {category: nope, spice: 1, prompt: x}\n")); err == nil {
		t.Fatalf("short catalog accepted")
	}
}
