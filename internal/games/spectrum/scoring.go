// internal/games/spectrum/scoring.go

package spectrum

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/games"
)

// CategoryWeights for the overall session score
var CategoryWeights = map[string]float64{
	"desire_drive":     0.10,
	"initiation_power": 0.15,
	"turn_ons":         0.15,
	"communication":    0.15,
	"fantasy_roleplay": 0.20,
	"kinks_intensity":  0.25,
}

// Alignment labels
const (
	AlignmentPerfect         = "perfect"
	AlignmentHot             = "hot"
	AlignmentGood            = "good"
	AlignmentWorthDiscussing = "worth_discussing"
	AlignmentDifferent       = "different"
	AlignmentOpposite        = "opposite"
	AlignmentTimeout         = "timeout"
)

// Alignment labels a gap between two positions
func Alignment(gap int) string {
	switch {
	case gap <= 10:
		return AlignmentPerfect
	case gap <= 20:
		return AlignmentHot
	case gap <= 35:
		return AlignmentGood
	case gap <= 50:
		return AlignmentWorthDiscussing
	case gap <= 70:
		return AlignmentDifferent
	default:
		return AlignmentOpposite
	}
}

// ValidPosition reports whether a slider value is in range
func ValidPosition(p int) bool {
	return p >= 0 && p <= 100
}

// reveal fills gap and alignment from the recorded positions
func reveal(r *Round, at time.Time, trigger string) {
	r.RevealedAt = &at
	r.Trigger = trigger
	if !r.bothAnswered() {
		r.Gap = nil
		r.Alignment = AlignmentTimeout
		return
	}
	gap := *r.InitiatorPosition - *r.InviteePosition
	if gap < 0 {
		gap = -gap
	}
	r.Gap = &gap
	r.Alignment = Alignment(gap)
}

// ComputeResults scores revealed rounds.
// Category compatibility is 100 - round(total_gap/both_answered); the session score is the
// weighted mean over categories with at least one fully answered round.
func ComputeResults(rounds []Round) *Results {
	res := &Results{CategoryBreakdown: make(map[string]CategoryResult, len(CategoryWeights))}
	totalGap := 0

	for _, r := range rounds {
		if r.RevealedAt == nil {
			continue
		}
		cat := res.CategoryBreakdown[r.Category]
		cat.Weight = CategoryWeights[r.Category]
		switch {
		case r.bothAnswered():
			res.BothAnswered++
			cat.BothAnswered++
			cat.TotalGap += *r.Gap
			totalGap += *r.Gap
		case r.InitiatorPosition == nil && r.InviteePosition == nil:
			res.BothTimedOut++
		case r.InitiatorPosition == nil:
			res.Player1TimedOut++
		default:
			res.Player2TimedOut++
		}
		res.CategoryBreakdown[r.Category] = cat
	}

	var weighted, weights float64
	for name, cat := range res.CategoryBreakdown {
		if cat.BothAnswered == 0 {
			continue
		}
		compat := 100 - int(math.Round(float64(cat.TotalGap)/float64(cat.BothAnswered)))
		compat = clampInt(compat, 0, 100)
		cat.Compatibility = &compat
		res.CategoryBreakdown[name] = cat
		weighted += float64(compat) * cat.Weight
		weights += cat.Weight
	}
	if weights > 0 {
		score := clampInt(int(math.Round(weighted/weights)), 0, 100)
		res.CompatibilityScore = &score
	}
	if res.BothAnswered > 0 {
		avg := math.Round(float64(totalGap)/float64(res.BothAnswered)*10) / 10
		res.AverageGap = &avg
	}
	return res
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func categoryLabel(c string) string {
	return strings.ReplaceAll(c, "_", " ")
}

// BuildResultView converts a scored session into the shared completion view
func BuildResultView(questions []Question, rounds []Round, res *Results, completedAt time.Time) *games.ResultView {
	score := 0.0
	if res.CompatibilityScore != nil {
		score = float64(*res.CompatibilityScore)
	}
	view := games.NewResultView(games.IntimacySpectrum, completedAt, score)
	view.QuickSummary = fmt.Sprintf("%.0f%% physical compatibility across %d shared answers", score, res.BothAnswered)
	if res.CompatibilityScore == nil {
		view.Unscored = true
		view.QuickSummary = "No rounds were answered by both of you, so there is nothing to score yet"
	}
	view.CategoryScores = make(map[string]float64)

	names := make([]string, 0, len(res.CategoryBreakdown))
	for name := range res.CategoryBreakdown {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cat := res.CategoryBreakdown[name]
		if cat.Compatibility == nil {
			continue
		}
		compat := *cat.Compatibility
		view.CategoryScores[name] = float64(compat)
		switch {
		case compat >= 80:
			view.Strengths = append(view.Strengths, games.InsightItem{Text: fmt.Sprintf("You're in sync on %s", categoryLabel(name)), Category: name})
		case compat <= 50:
			view.DiscussionAreas = append(view.DiscussionAreas, games.InsightItem{Text: fmt.Sprintf("You see %s quite differently", categoryLabel(name)), Category: name})
		}
		if name == "communication" && compat < 30 {
			view.RedFlags = append(view.RedFlags, games.RedFlag{
				Description: "Very different comfort levels talking about intimacy",
				Severity:    games.SeverityModerate,
			})
		}
	}

	var apart []Round
	for _, r := range rounds {
		if r.Gap == nil {
			continue
		}
		if *r.Gap <= 10 && r.Index < len(questions) && questions[r.Index].Spice == 3 {
			view.HiddenAlignments = append(view.HiddenAlignments, games.InsightItem{
				Text:     fmt.Sprintf("You answered almost identically on \"%s\"", questions[r.Index].Prompt),
				Category: r.Category,
			})
		}
		if *r.Gap > 35 {
			apart = append(apart, r)
		}
	}
	sort.SliceStable(apart, func(i, j int) bool { return *apart[i].Gap > *apart[j].Gap })
	for i, r := range apart {
		if i == 3 || r.Index >= len(questions) {
			break
		}
		view.ConversationStarters = append(view.ConversationStarters, games.ConversationStarter{
			Prompt: fmt.Sprintf("You landed far apart on \"%s\". What were you each picturing?", questions[r.Index].Prompt),
			Topic:  r.Category,
		})
	}
	return view.Tag()
}
