// internal/games/dreamboard/scoring.go

package dreamboard

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
)

var (
	ErrUnknownCard     = apperr.Invalid("unknown_option", "Unknown card for this category")
	ErrIncompleteBoard = apperr.Invalid("incomplete_board", "Pin one card in every category")
	ErrBadReaction     = apperr.Invalid("invalid_reaction", "React with love, open or concern to every card")
)

func validateBoard(c *Catalog, board map[string]string) error {
	if len(board) != len(c.Categories) {
		return ErrIncompleteBoard
	}
	for _, cat := range c.Categories {
		id, ok := board[cat]
		if !ok {
			return ErrIncompleteBoard
		}
		card, ok := c.Card(id)
		if !ok || card.Category != cat {
			return ErrUnknownCard.WithCause(fmt.Errorf("card %q in %s", id, cat))
		}
	}
	return nil
}

func validateReactions(c *Catalog, reactions map[string]Reaction) error {
	if len(reactions) != len(c.Categories) {
		return ErrBadReaction
	}
	for _, cat := range c.Categories {
		if r, ok := reactions[cat]; !ok || !r.Valid() {
			return ErrBadReaction
		}
	}
	return nil
}

// CategoryScore is 100 for the same card, else the mean of the two reactions
func CategoryScore(sameCard bool, a, b Reaction) float64 {
	if sameCard {
		return SameCardScore
	}
	return (reactionScores[a] + reactionScores[b]) / 2
}

// severeCategories turn mutual concern into a severe flag
var severeCategories = map[string]bool{"family": true}

// BuildResult averages category scores and derives insights from the reactions
func BuildResult(c *Catalog, p *Payload, completedAt time.Time) *games.ResultView {
	categoryScores := make(map[string]float64, len(c.Categories))
	var (
		sum      float64
		shared   []string
		strong   []games.InsightItem
		discuss  []games.InsightItem
		hidden   []games.InsightItem
		starters []games.ConversationStarter
		flags    []games.RedFlag
	)

	for _, cat := range c.Categories {
		mineID, theirsID := p.Initiator.Board[cat], p.Invitee.Board[cat]
		mine, _ := c.Card(mineID)
		theirs, _ := c.Card(theirsID)
		// Initiator reacts to the invitee's card and vice versa
		toTheirs, toMine := p.Initiator.Reactions[cat], p.Invitee.Reactions[cat]

		same := mineID == theirsID
		score := CategoryScore(same, toTheirs, toMine)
		categoryScores[cat] = score
		sum += score

		switch {
		case same:
			strong = append(strong, games.InsightItem{Text: fmt.Sprintf("You both pinned \"%s\" for %s", mine.Title, cat), Category: cat})
			shared = append(shared, mine.Tag)
		case toTheirs == ReactionLove && toMine == ReactionLove:
			hidden = append(hidden, games.InsightItem{Text: fmt.Sprintf("Different %s dreams that excite you both", cat), Category: cat})
			shared = append(shared, mine.Tag, theirs.Tag)
		case toTheirs == ReactionConcern && toMine == ReactionConcern:
			severity := games.SeverityModerate
			if severeCategories[cat] {
				severity = games.SeveritySevere
			}
			flags = append(flags, games.RedFlag{
				Description: fmt.Sprintf("You both have concerns about each other's vision for %s", cat),
				Severity:    severity,
			})
			discuss = append(discuss, games.InsightItem{Text: fmt.Sprintf("Your pictures of %s are far apart", cat), Category: cat})
		case toTheirs == ReactionConcern || toMine == ReactionConcern:
			discuss = append(discuss, games.InsightItem{Text: fmt.Sprintf("One of you has reservations about %s", cat), Category: cat})
		}

		if !same {
			starters = append(starters, games.ConversationStarter{
				Prompt: fmt.Sprintf("One of you pinned \"%s\" and the other \"%s\". What does your ideal %s look like?", mine.Title, theirs.Title, cat),
				Topic:  cat,
			})
		}
	}

	overall := 0.0
	if len(c.Categories) > 0 {
		overall = math.Round(sum / float64(len(c.Categories)))
	}
	result := games.NewResultView(games.DreamBoard, completedAt, overall)
	result.QuickSummary = fmt.Sprintf("Your future visions line up at %.0f%%", overall)
	result.CategoryScores = categoryScores
	result.Strengths = strong
	result.DiscussionAreas = discuss
	result.HiddenAlignments = hidden
	result.ConversationStarters = starters
	result.RedFlags = flags

	sort.Strings(shared)
	result.SharedInterests = shared
	return result.Tag()
}
