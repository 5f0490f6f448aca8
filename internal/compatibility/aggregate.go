// internal/compatibility/aggregate.go

package compatibility

import (
	"math"
	"strings"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/games"
	"github.com/imadgeboyega/kiekky-couples/internal/matches"
)

// Merge builds the aggregate from the latest finished session of each game type.
// Sessions without a result view are treated as not played.
func Merge(pair matches.Pair, latest map[games.GameType]*games.Session, now time.Time) *Aggregate {
	agg := &Aggregate{
		Pair:                 pair,
		GamesSnapshot:        make(map[games.GameType]GameSnapshot, len(games.AllGameTypes)),
		Dimensions:           make(map[string]DimensionScore, len(Dimensions)),
		Strengths:            []games.InsightItem{},
		DiscussionAreas:      []games.InsightItem{},
		ConversationStarters: []games.ConversationStarter{},
		RedFlags:             []games.RedFlag{},
		HiddenAlignments:     []games.InsightItem{},
		LastGeneratedAt:      now,
	}

	var ins insightSet
	for _, gt := range games.AllGameTypes {
		dim := DimensionScore{SourceGame: gt}
		s := latest[gt]
		if s == nil || s.Result == nil || !s.Status.IsFinished() {
			agg.GamesSnapshot[gt] = GameSnapshot{Included: false}
			agg.Dimensions[gt.Dimension()] = dim
			continue
		}

		view := s.Result
		var score *float64
		if !view.Unscored {
			v := view.Score
			score = &v
		}
		agg.GamesSnapshot[gt] = GameSnapshot{
			Included:     true,
			SessionID:    s.ID,
			CompletedAt:  s.CompletedAt,
			Score:        score,
			QuickSummary: view.QuickSummary,
		}
		agg.TotalGamesIncluded++
		// a played game with no scorable answers leaves its dimension unavailable
		dim.Score, dim.Available = score, score != nil
		agg.Dimensions[gt.Dimension()] = dim
		ins.add(gt, view)
	}

	agg.Overall = overall(agg.Dimensions, agg.TotalGamesIncluded)
	agg.Strengths = capItems(ins.strengths, MaxStrengths)
	agg.DiscussionAreas = capItems(ins.discussion, MaxDiscussionAreas)
	agg.HiddenAlignments = capItems(ins.hidden, MaxHiddenAlignments)
	if len(ins.starters) > MaxConversationStarters {
		ins.starters = ins.starters[:MaxConversationStarters]
	}
	agg.ConversationStarters = ins.starters
	if len(ins.flags) > MaxRedFlags {
		ins.flags = ins.flags[:MaxRedFlags]
	}
	agg.RedFlags = ins.flags
	return agg
}

func overall(dims map[string]DimensionScore, included int) Overall {
	var sum, weights float64
	for _, d := range Dimensions {
		ds := dims[d]
		if !ds.Available || ds.Score == nil {
			continue
		}
		sum += *ds.Score * DimensionWeights[d]
		weights += DimensionWeights[d]
	}

	o := Overall{Level: LevelExploring, Confidence: ConfidenceFor(included)}
	if weights == 0 {
		return o
	}
	score := int(math.Round(sum / weights))
	o.Score = &score
	o.Level = LevelFor(score)
	return o
}

// LevelFor maps an overall score to its level
func LevelFor(score int) string {
	switch {
	case score >= 85:
		return LevelExceptional
	case score >= 70:
		return LevelStrong
	case score >= 55:
		return LevelPromising
	default:
		return LevelExploring
	}
}

// ConfidenceFor depends only on the number of included games
func ConfidenceFor(included int) string {
	switch {
	case included >= 5:
		return ConfidenceComprehensive
	case included >= 3:
		return ConfidenceGood
	case included >= 2:
		return ConfidencePartial
	default:
		return ConfidenceMinimal
	}
}

// insightSet concatenates per-game lists, dropping exact repeats
type insightSet struct {
	strengths, discussion, hidden []games.InsightItem
	starters                      []games.ConversationStarter
	flags                         []games.RedFlag
	seen                          map[string]bool
}

func (s *insightSet) once(kind, text string) bool {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	key := kind + "\x00" + text
	if s.seen[key] {
		return false
	}
	s.seen[key] = true
	return true
}

func (s *insightSet) add(gt games.GameType, view *games.ResultView) {
	tag := func(items []games.InsightItem, kind string, dst *[]games.InsightItem) {
		for _, it := range items {
			if strings.TrimSpace(it.Text) == "" || !s.once(kind, it.Text) {
				continue
			}
			if it.SourceGame == "" {
				it.SourceGame = gt
			}
			*dst = append(*dst, it)
		}
	}
	tag(view.Strengths, "strength", &s.strengths)
	tag(view.DiscussionAreas, "discussion", &s.discussion)
	tag(view.HiddenAlignments, "hidden", &s.hidden)

	for _, c := range view.ConversationStarters {
		if strings.TrimSpace(c.Prompt) == "" || !s.once("starter", c.Prompt) {
			continue
		}
		if c.Topic == "" {
			c.Topic = gt.Dimension()
		}
		if c.SourceGame == "" {
			c.SourceGame = gt
		}
		s.starters = append(s.starters, c)
	}
	for _, f := range view.RedFlags {
		if !s.once("flag", f.Description) {
			continue
		}
		if f.SourceGame == "" {
			f.SourceGame = gt
		}
		s.flags = append(s.flags, f)
	}
}

func capItems(items []games.InsightItem, n int) []games.InsightItem {
	if items == nil {
		return []games.InsightItem{}
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

// latestCompletion is the newest completion time among the sessions
func latestCompletion(latest map[games.GameType]*games.Session) time.Time {
	var newest time.Time
	for _, s := range latest {
		if s != nil && s.CompletedAt != nil && s.CompletedAt.After(newest) {
			newest = *s.CompletedAt
		}
	}
	return newest
}

func countIncluded(latest map[games.GameType]*games.Session) int {
	n := 0
	for _, gt := range games.AllGameTypes {
		if s := latest[gt]; s != nil && s.Result != nil && s.Status.IsFinished() {
			n++
		}
	}
	return n
}

// IsStale reports whether agg no longer reflects the couple's games
func IsStale(agg *Aggregate, latest map[games.GameType]*games.Session, now time.Time, maxAge time.Duration) bool {
	if agg == nil {
		return true
	}
	if agg.TotalGamesIncluded != countIncluded(latest) {
		return true
	}
	if latestCompletion(latest).After(agg.LastGeneratedAt) {
		return true
	}
	return now.Sub(agg.LastGeneratedAt) >= maxAge
}
