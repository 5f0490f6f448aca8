// internal/readiness/evaluate.go

package readiness

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/compatibility"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
	"github.com/imadgeboyega/kiekky-couples/internal/matches"
	"github.com/imadgeboyega/kiekky-couples/internal/psychometric"
)

// engagement score by games included in the aggregate; 6 and above is 100
var engagementScores = []float64{0, 30, 50, 70, 85, 95, 100}

// Inputs is the point-in-time snapshot the decider scores
type Inputs struct {
	Pair      matches.Pair
	Analyses  map[int64]*psychometric.Analysis
	Aggregate *compatibility.Aggregate
	// Match is nil when no match records exist
	Match          *matches.Signals
	Blocked        bool
	GamesInitiated int
	Now            time.Time
}

// Evaluate scores the couple and picks a decision. It does not produce a date plan.
func Evaluate(in Inputs) *Result {
	played := 0
	if in.Aggregate != nil {
		played = in.Aggregate.TotalGamesIncluded
	}

	res := &Result{
		Pair:        in.Pair,
		Blockers:    blockers(in),
		Cautions:    []Caution{},
		GamesCount:  played,
		GeneratedAt: in.Now,
		DataSources: DataSources{
			PsychometricUser1:   in.Analyses[in.Pair.Low] != nil,
			PsychometricUser2:   in.Analyses[in.Pair.High] != nil,
			CoupleCompatibility: in.Aggregate != nil && in.Aggregate.TotalGamesIncluded > 0,
			Match:               in.Match != nil,
		},
	}
	res.Components = components(in, played)

	raw := res.Components.Compatibility.Score*WeightCompatibility +
		res.Components.Engagement.Score*WeightEngagement +
		res.Components.RedFlags.Score*WeightRedFlags +
		res.Components.MutualInterest.Score*WeightMutualInterest
	res.ReadinessScore = int(math.Round(raw))

	res.Cautions = cautions(in, played, res.Components.MutualInterest.Score)
	res.Decision = decide(res.ReadinessScore, len(res.Blockers) > 0)
	res.Confidence = confidence(in.Aggregate, played)
	res.ImprovementPath = improvementPath(res.Decision, in.Aggregate, played)
	res.DatePlanAvailable = res.Decision.PlanEligible()
	return res
}

func decide(score int, blocked bool) Decision {
	switch {
	case blocked:
		return DecisionBlocked
	case score >= ReadyThreshold:
		return DecisionReady
	case score >= AlmostReadyThreshold:
		return DecisionAlmostReady
	case score >= CautionThreshold:
		return DecisionCaution
	default:
		return DecisionNotYet
	}
}

func weighted(score, weight float64) Component {
	return Component{Score: score, Weight: weight, WeightedScore: math.Round(score*weight*10) / 10}
}

func components(in Inputs, gamesIncluded int) Components {
	var c Components

	compat := 0.0
	if in.Aggregate != nil && in.Aggregate.Overall.Score != nil {
		compat = float64(*in.Aggregate.Overall.Score)
		c.Compatibility.Available = true
		c.Compatibility.Level = in.Aggregate.Overall.Level
	}
	c.Compatibility.Component = weighted(compat, WeightCompatibility)

	idx := gamesIncluded
	if idx >= len(engagementScores) {
		idx = len(engagementScores) - 1
	}
	c.Engagement.Component = weighted(engagementScores[idx], WeightEngagement)
	c.Engagement.GamesPlayed = gamesIncluded

	flags := 100.0
	for _, id := range []int64{in.Pair.Low, in.Pair.High} {
		a := in.Analyses[id]
		if a == nil {
			continue
		}
		for _, f := range a.RedFlags {
			switch {
			case f.IsCritical():
				flags -= 30
			case f.Severity == 3:
				flags -= 15
			default:
				flags -= 5
			}
			c.RedFlags.PsychometricFlags++
		}
	}
	if in.Aggregate != nil {
		c.RedFlags.CoupleFlags = len(in.Aggregate.RedFlags)
		flags -= 10 * float64(c.RedFlags.CoupleFlags)
	}
	c.RedFlags.Component = weighted(math.Max(0, flags), WeightRedFlags)

	mutual := 0.0
	if m := in.Match; m != nil {
		c.MutualInterest.MatchStatus = m.Status
		switch m.Status {
		case matches.StatusMutualLike:
			mutual += 50
		case matches.StatusRevealed, matches.StatusLiked:
			mutual += 30
		}
		switch {
		case m.LowMessaged && m.HighMessaged:
			mutual += 25
			c.MutualInterest.BothMessaged = true
		case m.LowMessaged || m.HighMessaged:
			mutual += 10
			c.MutualInterest.OneMessaged = true
		}
		if m.StartersUsed {
			mutual += 15
			c.MutualInterest.StartersUsed = true
		}
	}
	if in.GamesInitiated > 0 {
		mutual += 10
		c.MutualInterest.GamesInitiated = true
	}
	c.MutualInterest.Component = weighted(math.Min(100, mutual), WeightMutualInterest)
	return c
}

func blockers(in Inputs) []Blocker {
	out := []Blocker{}
	if in.Blocked {
		out = append(out, Blocker{
			Type:        BlockerBlockedUser,
			Description: "One of you has blocked the other",
			Severity:    games.SeverityCritical,
		})
	}

	a, b := in.Analyses[in.Pair.Low], in.Analyses[in.Pair.High]
	for _, c := range psychometric.DetectDealbreakerConflicts(a, b) {
		out = append(out, Blocker{
			Type:        BlockerDealbreaker,
			Description: c.Reason,
			Severity:    games.SeverityCritical,
			Category:    c.Category,
		})
	}

	for _, id := range []int64{in.Pair.Low, in.Pair.High} {
		an := in.Analyses[id]
		if an == nil {
			continue
		}
		for _, f := range an.RedFlags {
			if f.IsCritical() {
				out = append(out, Blocker{
					Type:        BlockerSevereFlag,
					Description: f.Description,
					Severity:    games.SeveritySevere,
					Category:    f.Category,
					UserID:      id,
				})
			}
		}
	}
	if in.Aggregate != nil {
		for _, f := range in.Aggregate.RedFlags {
			if f.IsSevere() {
				out = append(out, Blocker{
					Type:        BlockerSevereFlag,
					Description: f.Description,
					Severity:    f.Severity,
					Category:    string(f.SourceGame),
				})
			}
		}
	}

	for _, id := range []int64{in.Pair.Low, in.Pair.High} {
		if an := in.Analyses[id]; an != nil && an.AuthenticityScore < MinAuthenticity {
			out = append(out, Blocker{
				Type:        BlockerAuthenticity,
				Description: "Some answers look inconsistent, so we can't recommend a date yet",
				Severity:    games.SeveritySevere,
				UserID:      id,
			})
		}
	}
	return out
}

func cautions(in Inputs, gamesIncluded int, mutual float64) []Caution {
	out := []Caution{}
	if in.Aggregate != nil {
		for _, dim := range compatibility.Dimensions {
			d := in.Aggregate.Dimensions[dim]
			if !d.Available || d.Score == nil || *d.Score >= 50 {
				continue
			}
			severity := "low"
			if *d.Score < 35 {
				severity = "medium"
			}
			out = append(out, Caution{
				Type:             CautionLowDimension,
				Description:      fmt.Sprintf("Your %s score is %.0f", dim, *d.Score),
				Severity:         severity,
				RelatedDimension: dim,
			})
		}
	}

	for _, id := range []int64{in.Pair.Low, in.Pair.High} {
		an := in.Analyses[id]
		if an == nil {
			continue
		}
		for _, f := range an.RedFlags {
			if f.Severity == 2 || f.Severity == 3 {
				out = append(out, Caution{
					Type:        CautionModerateFlag,
					Description: f.Description,
					Severity:    "medium",
				})
			}
		}
	}

	if gamesIncluded < 3 {
		out = append(out, Caution{
			Type:        CautionIncomplete,
			Description: fmt.Sprintf("Only %d of 3 recommended games played", gamesIncluded),
			Severity:    "low",
		})
	}
	if mutual < 40 {
		out = append(out, Caution{
			Type:        CautionCommGap,
			Description: "You haven't interacted much yet",
			Severity:    "low",
		})
	}
	return out
}

func confidence(agg *compatibility.Aggregate, gamesIncluded int) string {
	level := ""
	if agg != nil {
		level = agg.Overall.Confidence
	}
	switch {
	case gamesIncluded >= 5 && level == compatibility.ConfidenceComprehensive:
		return ConfidenceHigh
	case gamesIncluded >= 3 && (level == compatibility.ConfidenceComprehensive || level == compatibility.ConfidenceGood):
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// improvementPath suggests games for missing or weak dimensions.
// Ready and blocked couples get no suggestions.
func improvementPath(d Decision, agg *compatibility.Aggregate, played int) ImprovementPath {
	path := ImprovementPath{SuggestedGames: []SuggestedGame{}}

	var est int
	switch d {
	case DecisionBlocked:
		return path
	case DecisionReady:
		path.EstimatedGamesToReady = &est
		return path
	case DecisionAlmostReady:
		est = max(1, 3-played)
	case DecisionCaution:
		est = max(2, 4-played)
	default:
		est = max(3, 4-played)
	}
	path.EstimatedGamesToReady = &est

	type gap struct {
		dim   string
		score float64
	}
	var gaps []gap
	for _, dim := range compatibility.Dimensions {
		var ds compatibility.DimensionScore
		if agg != nil {
			ds = agg.Dimensions[dim]
		}
		switch {
		case !ds.Available || ds.Score == nil:
			gaps = append(gaps, gap{dim: dim, score: -1})
		case *ds.Score < 50:
			gaps = append(gaps, gap{dim: dim, score: *ds.Score})
		}
	}
	// unplayed dimensions first, then weakest first
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].score < gaps[j].score })

	for _, g := range gaps {
		if len(path.SuggestedGames) == MaxSuggestedGames {
			break
		}
		gt, ok := games.GameForDimension(g.dim)
		if !ok {
			continue
		}
		reason := fmt.Sprintf("Explore your %s compatibility", g.dim)
		if g.score >= 0 {
			reason = fmt.Sprintf("Your %s score is %.0f, play again to dig deeper", g.dim, g.score)
		}
		path.SuggestedGames = append(path.SuggestedGames, SuggestedGame{
			GameType:  gt,
			Dimension: g.dim,
			Reason:    reason,
			Priority:  len(path.SuggestedGames) + 1,
		})
	}
	return path
}
