package psychometric

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/llm"
)

type memoryRepo struct {
	mu       sync.Mutex
	users    map[int64]bool
	answers  map[int64][]Answer
	orphaned map[int64]int
	analyses map[int64]*Analysis
	saves    int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		users:    map[int64]bool{},
		answers:  map[int64][]Answer{},
		orphaned: map[int64]int{},
		analyses: map[int64]*Analysis{},
	}
}

func (m *memoryRepo) ListAnswers(_ context.Context, userID int64) ([]Answer, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.answers[userID], m.orphaned[userID], nil
}

func (m *memoryRepo) CountAnswers(_ context.Context, userID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.answers[userID]), nil
}

func (m *memoryRepo) UserExists(_ context.Context, userID int64) (bool, error) {
	return m.users[userID], nil
}

func (m *memoryRepo) GetAnalysis(_ context.Context, userID int64) (*Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.analyses[userID]
	if !ok {
		return nil, ErrAnalysisNotFound
	}
	return a, nil
}

func (m *memoryRepo) GetAnalyses(_ context.Context, ids []int64) (map[int64]*Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[int64]*Analysis{}
	for _, id := range ids {
		if a, ok := m.analyses[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (m *memoryRepo) SaveAnalysis(_ context.Context, a *Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.analyses[a.UserID] = a
	return nil
}

func (m *memoryRepo) MarkNeedsReanalysis(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.analyses[userID]; ok {
		a.Metadata.NeedsReanalysis = true
	}
	return nil
}

func (m *memoryRepo) seedAnswers(userID int64, n int) {
	m.users[userID] = true
	for i := 0; i < n; i++ {
		m.answers[userID] = append(m.answers[userID], Answer{
			QuestionID: int64(i + 1),
			Dimension:  Dimensions[i%len(Dimensions)],
			Prompt:     fmt.Sprintf("question %d", i+1),
			Answer:     "answer",
		})
	}
}

type blockStub struct{ blocked bool }

func (b blockStub) IsBlockedEitherWay(context.Context, int64, int64) (bool, error) {
	return b.blocked, nil
}

const analyzerReply = `{
	"dimension_scores": {"emotional_intimacy": 80, "life_vision": 60, "conflict_communication": null,
		"love_languages": 120, "physical_sexual": 70, "lifestyle": 50},
	"authenticity_score": 88,
	"personality_profile": {"attachment_style": "secure", "dominant_love_language": "quality_time"},
	"red_flags": [{"category": "jealousy", "severity": 9, "description": "Possessive answers"},
		{"category": "noise", "severity": 2, "description": ""}],
	"dealbreakers": [{"type": "kids", "value": "definitely_want"}],
	"ai_summary": {"short_bio": "Warm and direct", "strengths": ["empathy"]}
}`

func newTestService(repo *memoryRepo, fake *llm.Fake) Service {
	return NewService(repo, NewLLMAnalyzer(fake), blockStub{}, 15, logger.NewNop())
}

func TestRequestAnalysisInsufficientAnswers(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedAnswers(1, 14)
	svc := newTestService(repo, llm.NewFake())

	_, err := svc.RequestAnalysis(context.Background(), 1, false)
	if !errors.Is(err, ErrInsufficientAnswers) {
		t.Fatalf("14 answers: want=%v got=%v", ErrInsufficientAnswers, err)
	}
	if apperr.KindOf(err) != apperr.KindInsufficientData {
		t.Fatalf("kind: want=%s got=%s", apperr.KindInsufficientData, apperr.KindOf(err))
	}
}

func TestRequestAnalysisUnknownUser(t *testing.T) {
	svc := newTestService(newMemoryRepo(), llm.NewFake())
	if _, err := svc.RequestAnalysis(context.Background(), 9, false); !errors.Is(err, apperr.ErrUserNotFound) {
		t.Fatalf("unknown user: want=%v got=%v", apperr.ErrUserNotFound, err)
	}
}

func TestRequestAnalysisComputesAndCaches(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedAnswers(1, 15)
	fake := llm.NewFake().Reply(analyzerReply)
	svc := newTestService(repo, fake)
	ctx := context.Background()

	a, err := svc.RequestAnalysis(ctx, 1, false)
	if err != nil {
		t.Fatalf("RequestAnalysis: %v", err)
	}
	if got := *a.DimensionScores[DimLoveLanguages]; got != 100 {
		t.Fatalf("clamped dimension: want=100 got=%v", got)
	}
	if a.DimensionScores[DimConflictCommunication] != nil {
		t.Fatalf("null dimension should stay nil")
	}
	if a.OverallScore == nil {
		t.Fatalf("overall score: want non-nil")
	}
	if len(a.RedFlags) != 1 || a.RedFlags[0].Severity != 5 {
		t.Fatalf("red flags: got %+v", a.RedFlags)
	}
	if a.Metadata.QuestionsAnalyzed != 15 || a.Metadata.NeedsReanalysis {
		t.Fatalf("metadata: got %+v", a.Metadata)
	}
	if len(a.CompatibilityVector.Values) != VectorLength {
		t.Fatalf("vector length: want=%d got=%d", VectorLength, len(a.CompatibilityVector.Values))
	}

	// second call returns the stored analysis without calling the model
	if _, err := svc.RequestAnalysis(ctx, 1, false); err != nil {
		t.Fatalf("second RequestAnalysis: %v", err)
	}
	if fake.CallCount() != 1 {
		t.Fatalf("llm calls: want=1 got=%d", fake.CallCount())
	}

	// new answers flag the analysis; it is recomputed
	if err := svc.MarkNeedsReanalysis(ctx, 1); err != nil {
		t.Fatalf("MarkNeedsReanalysis: %v", err)
	}
	fake.Reply(analyzerReply)
	if _, err := svc.RequestAnalysis(ctx, 1, false); err != nil {
		t.Fatalf("reanalysis: %v", err)
	}
	if fake.CallCount() != 2 || repo.saves != 2 {
		t.Fatalf("after reanalysis: calls=%d saves=%d", fake.CallCount(), repo.saves)
	}
}

func TestRequestAnalysisForce(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedAnswers(1, 20)
	fake := llm.NewFake().Reply(analyzerReply).Reply(analyzerReply)
	svc := newTestService(repo, fake)
	ctx := context.Background()

	if _, err := svc.RequestAnalysis(ctx, 1, false); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := svc.RequestAnalysis(ctx, 1, true); err != nil {
		t.Fatalf("forced: %v", err)
	}
	if fake.CallCount() != 2 {
		t.Fatalf("llm calls: want=2 got=%d", fake.CallCount())
	}
}

func TestRequestAnalysisExcludesOrphans(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedAnswers(1, 15)
	repo.orphaned[1] = 3
	fake := llm.NewFake().Reply(analyzerReply)
	svc := newTestService(repo, fake)

	a, err := svc.RequestAnalysis(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("RequestAnalysis: %v", err)
	}
	if a.Metadata.QuestionsAnalyzed != 15 {
		t.Fatalf("questions analyzed: want=15 got=%d", a.Metadata.QuestionsAnalyzed)
	}
}

func TestRequestAnalysisUpstreamFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.seedAnswers(1, 15)
	svc := newTestService(repo, llm.NewFake().Fail(llm.ErrUpstream))

	_, err := svc.RequestAnalysis(context.Background(), 1, false)
	if !errors.Is(err, ErrAnalysisFailed) {
		t.Fatalf("upstream: want=%v got=%v", ErrAnalysisFailed, err)
	}
	if repo.saves != 0 {
		t.Fatalf("saves: want=0 got=%d", repo.saves)
	}
}

func TestGetCompatibilityPreview(t *testing.T) {
	repo := newMemoryRepo()
	repo.analyses[1] = &Analysis{UserID: 1, DimensionScores: DimensionScores{DimLifestyle: f(60)},
		Dealbreakers: []Dealbreaker{{Type: "kids", Value: "definitely_want"}}}
	repo.analyses[2] = &Analysis{UserID: 2, DimensionScores: DimensionScores{DimLifestyle: f(70)},
		Dealbreakers: []Dealbreaker{{Type: "kids", Value: "probably_not"}}}
	svc := newTestService(repo, llm.NewFake())
	ctx := context.Background()

	p, err := svc.GetCompatibilityPreview(ctx, 1, 2)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if p.Score != 90 || p.Compatible {
		t.Fatalf("preview: score=%v compatible=%v", p.Score, p.Compatible)
	}

	if _, err := svc.GetCompatibilityPreview(ctx, 1, 3); !errors.Is(err, ErrPreviewUnavailable) {
		t.Fatalf("missing analysis: want=%v got=%v", ErrPreviewUnavailable, err)
	}

	blocked := NewService(repo, NewLLMAnalyzer(llm.NewFake()), blockStub{blocked: true}, 15, logger.NewNop())
	if _, err := blocked.GetCompatibilityPreview(ctx, 1, 2); !errors.Is(err, apperr.ErrUserBlocked) {
		t.Fatalf("blocked: want=%v got=%v", apperr.ErrUserBlocked, err)
	}
}

func TestGetRedFlagsEmpty(t *testing.T) {
	repo := newMemoryRepo()
	repo.analyses[1] = &Analysis{UserID: 1}
	svc := newTestService(repo, llm.NewFake())

	flags, err := svc.GetRedFlags(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetRedFlags: %v", err)
	}
	if flags == nil || len(flags) != 0 {
		t.Fatalf("flags: want empty slice got %v", flags)
	}
}
