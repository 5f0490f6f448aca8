// internal/games/twotruths/scoring.go

package twotruths

import (
	"fmt"
	"strings"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
)

var (
	ErrWrongRoundCount = apperr.Invalid("invalid_rounds", fmt.Sprintf("Exactly %d rounds are required", RoundCount))
	ErrBadRound        = apperr.Invalid("invalid_round", fmt.Sprintf("Each round needs %d non-empty statements", StatementsPerRound))
	ErrLieCount        = apperr.Invalid("invalid_lie_count", "Each round must have exactly one lie")
	ErrBadGuesses      = apperr.Invalid("invalid_guesses", fmt.Sprintf("Provide %d guesses between 0 and %d", RoundCount, StatementsPerRound-1))
)

// ValidateRounds enforces 10 rounds of three statements with exactly one lie each
func ValidateRounds(rounds []Round) error {
	if len(rounds) != RoundCount {
		return ErrWrongRoundCount
	}
	for i, r := range rounds {
		if len(r.Statements) != StatementsPerRound {
			return ErrBadRound.WithCause(fmt.Errorf("round %d", i))
		}
		lies := 0
		for _, st := range r.Statements {
			if strings.TrimSpace(st.Text) == "" {
				return ErrBadRound.WithCause(fmt.Errorf("round %d has an empty statement", i))
			}
			if st.IsLie {
				lies++
			}
		}
		if lies != 1 {
			return ErrLieCount.WithCause(fmt.Errorf("round %d has %d lies", i, lies))
		}
	}
	return nil
}

// ValidateGuesses checks one guess per round within statement bounds
func ValidateGuesses(guesses []int) error {
	if len(guesses) != RoundCount {
		return ErrBadGuesses
	}
	for _, g := range guesses {
		if g < 0 || g >= StatementsPerRound {
			return ErrBadGuesses
		}
	}
	return nil
}

func lieIndex(r Round) int {
	for i, st := range r.Statements {
		if st.IsLie {
			return i
		}
	}
	return -1
}

// ScoreGuesses counts rounds where the guess points at the author's lie
func ScoreGuesses(authored []Round, guesses []int) int {
	score := 0
	for i, g := range guesses {
		if i < len(authored) && lieIndex(authored[i]) == g {
			score++
		}
	}
	return score
}

// DecideWinner compares the two guessers' scores
func DecideWinner(initiatorScore, inviteeScore int) string {
	switch {
	case initiatorScore > inviteeScore:
		return WinnerInitiator
	case inviteeScore > initiatorScore:
		return WinnerPartner
	default:
		return WinnerTie
	}
}

// BuildResult turns a finished payload into the completion view.
// The 0..100 score is the share of lies spotted across both players.
func BuildResult(p *Payload, completedAt time.Time) *games.ResultView {
	initiator, invitee := 0, 0
	if p.Initiator.Score != nil {
		initiator = *p.Initiator.Score
	}
	if p.Invitee.Score != nil {
		invitee = *p.Invitee.Score
	}
	total := initiator + invitee
	score := float64(total) / float64(2*RoundCount) * 100

	view := games.NewResultView(games.TwoTruthsLie, completedAt, score)
	view.QuickSummary = fmt.Sprintf("You spotted %d of %d lies together", total, 2*RoundCount)

	switch {
	case total >= 16:
		view.Strengths = append(view.Strengths, games.InsightItem{Text: "You read each other remarkably well", Category: "intuition"})
	case total >= 12:
		view.Strengths = append(view.Strengths, games.InsightItem{Text: "You have a good sense of who the other person is", Category: "intuition"})
	case total <= 6:
		view.DiscussionAreas = append(view.DiscussionAreas, games.InsightItem{Text: "You still have a lot to learn about each other", Category: "intuition"})
	}
	if initiator == invitee {
		view.HiddenAlignments = append(view.HiddenAlignments, games.InsightItem{Text: "You are equally tuned in to each other", Category: "intuition"})
	} else if diff := initiator - invitee; diff >= 4 || diff <= -4 {
		view.DiscussionAreas = append(view.DiscussionAreas, games.InsightItem{Text: "One of you is much harder to read than the other", Category: "openness"})
	}

	view.ConversationStarters = append(view.ConversationStarters, surprisingTruths(p.Invitee.Rounds, p.Initiator.Guesses)...)
	view.ConversationStarters = append(view.ConversationStarters, surprisingTruths(p.Initiator.Rounds, p.Invitee.Guesses)...)
	if len(view.ConversationStarters) > 4 {
		view.ConversationStarters = view.ConversationStarters[:4]
	}
	return view.Tag()
}

// surprisingTruths are true statements the partner took for a lie
func surprisingTruths(authored []Round, guesses []int) []games.ConversationStarter {
	var out []games.ConversationStarter
	for i, g := range guesses {
		if i >= len(authored) || g < 0 || g >= len(authored[i].Statements) {
			continue
		}
		st := authored[i].Statements[g]
		if st.IsLie {
			continue
		}
		out = append(out, games.ConversationStarter{
			Prompt: fmt.Sprintf("\"%s\" turned out to be true. What's the story behind it?", st.Text),
			Topic:  "surprising_truths",
		})
	}
	return out
}
