// internal/psychometric/scoring.go

package psychometric

import (
	"math"
)

// OverallScore is the weighted mean of scored dimensions, with the weight of
// unscored dimensions redistributed. Nil when nothing is scored.
func OverallScore(scores DimensionScores) *float64 {
	var sum, weights float64
	for _, dim := range Dimensions {
		s := scores[dim]
		if s == nil {
			continue
		}
		w := DimensionWeights[dim]
		sum += *s * w
		weights += w
	}
	if weights == 0 {
		return nil
	}
	v := round1(sum / weights)
	return &v
}

// One-hot vocabularies, in vector order
var (
	attachmentStyles    = []string{"secure", "anxious", "avoidant", "disorganized"}
	loveLanguages       = []string{"words_of_affirmation", "acts_of_service", "receiving_gifts", "quality_time", "physical_touch"}
	conflictStyles      = []string{"collaborative", "compromising", "avoiding", "competing", "accommodating"}
	communicationStyles = []string{"direct", "diplomatic", "expressive", "reserved"}
	dealbreakerTypes    = []string{"kids", "religion", "location", "smoking", "drinking", "pets", "politics", "marriage", "finances", "career"}
)

// maxSeverityBudget is the summed severity that drives slot 12 to zero
const maxSeverityBudget = 20.0

// BuildVector derives the 50-slot compatibility vector.
//
//	0-5    dimension scores / 100 (0 when unscored)
//	6-7    overall and authenticity / 100
//	8-11   introversion, emotional intelligence, openness, conscientiousness / 100
//	12     1 - summed red flag severity / 20, clamped to [0,1]
//	13-16  attachment style
//	17-21  dominant love language
//	22-26  conflict style
//	27-30  communication style
//	31-35  secondary love language
//	36-45  dealbreaker types present
//	46-49  reserved
func BuildVector(a *Analysis) Vector {
	v := make([]float64, VectorLength)

	for i, dim := range Dimensions {
		if s := a.DimensionScores[dim]; s != nil {
			v[i] = unit(*s)
		}
	}
	if a.OverallScore != nil {
		v[6] = unit(*a.OverallScore)
	}
	v[7] = unit(a.AuthenticityScore)

	v[8] = unit(a.Profile.IntroversionScore)
	v[9] = unit(a.Profile.EmotionalIntelligence)
	v[10] = unit(a.Profile.Openness)
	v[11] = unit(a.Profile.Conscientiousness)

	var severity float64
	for _, f := range a.RedFlags {
		severity += float64(f.Severity)
	}
	v[12] = clamp(1-severity/maxSeverityBudget, 0, 1)

	offset := 13
	offset = oneHot(v, offset, attachmentStyles, a.Profile.AttachmentStyle)
	offset = oneHot(v, offset, loveLanguages, a.Profile.DominantLoveLanguage)
	offset = oneHot(v, offset, conflictStyles, a.Profile.ConflictStyle)
	offset = oneHot(v, offset, communicationStyles, a.Profile.CommunicationStyle)
	offset = oneHot(v, offset, loveLanguages, a.Profile.SecondaryLoveLanguage)
	for _, d := range a.Dealbreakers {
		for i, t := range dealbreakerTypes {
			if normalize(d.Type) == t {
				v[offset+i] = 1
			}
		}
	}

	return Vector{Values: v, Version: VectorVersion}
}

func oneHot(v []float64, offset int, vocab []string, value string) int {
	value = normalize(value)
	for i, item := range vocab {
		if item == value {
			v[offset+i] = 1
		}
	}
	return offset + len(vocab)
}

// ComputePreview estimates pairwise compatibility from two analyses.
// Each dimension scores 100 - |s1 - s2|; dimensions unscored on either side are skipped.
func ComputePreview(a, b *Analysis) *Preview {
	dims := make(map[Dimension]float64)
	var sum, weights float64
	for _, dim := range Dimensions {
		sa, sb := a.DimensionScores[dim], b.DimensionScores[dim]
		if sa == nil || sb == nil {
			continue
		}
		c := 100 - math.Abs(*sa-*sb)
		dims[dim] = round1(c)
		w := DimensionWeights[dim]
		sum += c * w
		weights += w
	}

	p := &Preview{DimensionScores: dims}
	if weights > 0 {
		p.Score = round1(sum / weights)
	}
	p.DealbreakerConflicts = DetectDealbreakerConflicts(a, b)
	if p.DealbreakerConflicts == nil {
		p.DealbreakerConflicts = []DealbreakerConflict{}
	}
	p.Compatible = len(p.DealbreakerConflicts) == 0
	return p
}

func unit(score float64) float64 {
	return clamp(score/100, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
