// internal/games/wouldyourather/scoring.go

package wouldyourather

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
)

var (
	ErrUnknownOption     = apperr.Invalid("unknown_option", "Unknown question or option key")
	ErrIncompleteAnswers = apperr.Invalid("incomplete_answers", "Answer every question in this game")
)

// validateAnswers requires exactly one known option per session question
func validateAnswers(c *Catalog, questionIDs []string, answers map[string]string) error {
	if len(answers) != len(questionIDs) {
		return ErrIncompleteAnswers
	}
	for _, id := range questionIDs {
		key, ok := answers[id]
		if !ok {
			return ErrIncompleteAnswers
		}
		q, ok := c.Question(id)
		if !ok {
			return ErrUnknownOption.WithCause(fmt.Errorf("question %s", id))
		}
		if _, ok := q.Option(key); !ok {
			return ErrUnknownOption.WithCause(fmt.Errorf("option %q for %s", key, id))
		}
	}
	return nil
}

// countHits counts predictions that equal the partner's actual choices
func countHits(predictions, actual map[string]string) int {
	hits := 0
	for id, key := range predictions {
		if actual[id] == key {
			hits++
		}
	}
	return hits
}

// BuildResult scores the share of questions where both chose the same option
func BuildResult(c *Catalog, p *Payload, completedAt time.Time) *games.ResultView {
	matched := 0
	perCat := make(map[string][2]int) // matched, total
	var (
		shared   []string
		hidden   []games.InsightItem
		starters []games.ConversationStarter
	)

	for _, id := range p.QuestionIDs {
		q, ok := c.Question(id)
		if !ok {
			continue
		}
		mine, theirs := p.Initiator.Choices[id], p.Invitee.Choices[id]
		counts := perCat[q.Category]
		counts[1]++
		if mine == theirs {
			matched++
			counts[0]++
			if opt, ok := q.Option(mine); ok {
				shared = append(shared, opt.Tag)
				predictedBoth := p.Initiator.Predictions[id] == theirs && p.Invitee.Predictions[id] == mine
				if !predictedBoth {
					hidden = append(hidden, games.InsightItem{
						Text:     fmt.Sprintf("You'd both rather %s, even if you didn't expect it", opt.Text),
						Category: q.Category,
					})
				}
			}
		} else {
			a, _ := q.Option(mine)
			b, _ := q.Option(theirs)
			starters = append(starters, games.ConversationStarter{
				Prompt: fmt.Sprintf("%s: one of you picked %s, the other %s. Why?", q.Prompt, a.Text, b.Text),
				Topic:  q.Category,
			})
		}
		perCat[q.Category] = counts
	}

	total := len(p.QuestionIDs)
	score := 0.0
	if total > 0 {
		score = float64(matched) / float64(total) * 100
	}
	result := games.NewResultView(games.WouldYouRather, completedAt, score)
	result.QuickSummary = fmt.Sprintf("You made the same choice on %d of %d questions", matched, total)
	result.HiddenAlignments = hidden
	result.ConversationStarters = starters
	result.CategoryScores = make(map[string]float64, len(perCat))

	for _, cat := range Categories {
		counts, ok := perCat[cat]
		if !ok || counts[1] == 0 {
			continue
		}
		catScore := math.Round(float64(counts[0]) / float64(counts[1]) * 100)
		result.CategoryScores[cat] = catScore
		switch {
		case catScore == 100:
			result.Strengths = append(result.Strengths, games.InsightItem{
				Text: fmt.Sprintf("You see eye to eye on %s", cat), Category: cat,
			})
		case catScore == 0:
			result.DiscussionAreas = append(result.DiscussionAreas, games.InsightItem{
				Text: fmt.Sprintf("You want different things when it comes to %s", cat), Category: cat,
			})
		}
	}

	if p.Initiator.PredictionScore != nil && p.Invitee.PredictionScore != nil {
		hits := *p.Initiator.PredictionScore + *p.Invitee.PredictionScore
		if hits >= int(0.8*float64(2*total)) {
			result.Strengths = append(result.Strengths, games.InsightItem{Text: "You predicted each other's choices with ease", Category: "intuition"})
		}
	}

	sort.Strings(shared)
	result.SharedInterests = shared
	return result.Tag()
}
