package psychometric

import (
	"reflect"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestOverallScoreRedistributesWeights(t *testing.T) {
	scores := DimensionScores{
		DimEmotionalIntimacy: f(80),
		DimLifeVision:        f(60),
		DimLifestyle:         nil,
	}
	// (80*.25 + 60*.20) / .45 = 71.11
	got := OverallScore(scores)
	if got == nil || *got != 71.1 {
		t.Fatalf("OverallScore: want=71.1 got=%v", got)
	}

	if got := OverallScore(DimensionScores{DimLifestyle: nil}); got != nil {
		t.Fatalf("OverallScore none: want=nil got=%v", *got)
	}
}

func sampleAnalysis() *Analysis {
	a := &Analysis{
		DimensionScores: DimensionScores{
			DimEmotionalIntimacy:     f(70),
			DimLifeVision:            f(90),
			DimConflictCommunication: f(50),
			DimLoveLanguages:         f(60),
			DimPhysicalSexual:        nil,
			DimLifestyle:             f(40),
		},
		AuthenticityScore: 85,
		Profile: Profile{
			AttachmentStyle:       "secure",
			ConflictStyle:         "collaborative",
			DominantLoveLanguage:  "quality_time",
			SecondaryLoveLanguage: "physical_touch",
			IntroversionScore:     30,
			EmotionalIntelligence: 75,
			CommunicationStyle:    "Direct",
			Openness:              65,
			Conscientiousness:     55,
		},
		RedFlags:     []RedFlag{{Category: "jealousy", Severity: 3, Description: "x"}, {Category: "anger", Severity: 2, Description: "y"}},
		Dealbreakers: []Dealbreaker{{Type: "kids", Value: "definitely_want"}, {Type: "smoking", Value: "never"}},
	}
	a.OverallScore = OverallScore(a.DimensionScores)
	return a
}

func TestBuildVectorLayout(t *testing.T) {
	a := sampleAnalysis()
	v := BuildVector(a)

	if len(v.Values) != VectorLength || v.Version != VectorVersion {
		t.Fatalf("vector: len=%d version=%d", len(v.Values), v.Version)
	}
	if v.Values[0] != 0.7 || v.Values[1] != 0.9 || v.Values[4] != 0 {
		t.Fatalf("dimension slots: got %v", v.Values[:6])
	}
	if v.Values[7] != 0.85 {
		t.Fatalf("authenticity slot: want=0.85 got=%v", v.Values[7])
	}
	// severity 5 of 20
	if v.Values[12] != 0.75 {
		t.Fatalf("red flag slot: want=0.75 got=%v", v.Values[12])
	}
	hot := map[int]bool{
		13: true, // secure
		20: true, // quality_time
		22: true, // collaborative
		27: true, // direct
		35: true, // secondary physical_touch
		36: true, // kids
		39: true, // smoking
	}
	for i := 13; i < VectorLength; i++ {
		want := 0.0
		if hot[i] {
			want = 1
		}
		if v.Values[i] != want {
			t.Fatalf("slot %d: want=%v got=%v", i, want, v.Values[i])
		}
	}
}

func TestBuildVectorDeterministic(t *testing.T) {
	a := sampleAnalysis()
	if !reflect.DeepEqual(BuildVector(a), BuildVector(a)) {
		t.Fatalf("BuildVector: same input produced different vectors")
	}
}

func TestBuildVectorSeverityClamped(t *testing.T) {
	a := &Analysis{}
	for i := 0; i < 6; i++ {
		a.RedFlags = append(a.RedFlags, RedFlag{Severity: 5})
	}
	if got := BuildVector(a).Values[12]; got != 0 {
		t.Fatalf("clamped severity: want=0 got=%v", got)
	}
}

func TestComputePreview(t *testing.T) {
	a := &Analysis{DimensionScores: DimensionScores{
		DimEmotionalIntimacy: f(80),
		DimLifeVision:        f(50),
		DimLifestyle:         f(90),
	}}
	b := &Analysis{DimensionScores: DimensionScores{
		DimEmotionalIntimacy: f(70),
		DimLifeVision:        f(70),
		DimLifestyle:         nil,
	}}

	p := ComputePreview(a, b)
	// (90*.25 + 80*.20) / .45 = 85.56
	if p.Score != 85.6 {
		t.Fatalf("preview score: want=85.6 got=%v", p.Score)
	}
	if _, ok := p.DimensionScores[DimLifestyle]; ok {
		t.Fatalf("preview: lifestyle should be skipped")
	}
	if !p.Compatible || len(p.DealbreakerConflicts) != 0 {
		t.Fatalf("preview: want compatible, got %+v", p.DealbreakerConflicts)
	}
}
