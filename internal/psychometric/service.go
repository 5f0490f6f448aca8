// internal/psychometric/service.go

package psychometric

import (
	"context"
	"errors"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
)

var (
	ErrInsufficientAnswers = apperr.New(apperr.KindInsufficientData, "insufficient_answers", "Answer more questions before requesting an analysis")
	ErrAnalysisNotFound    = apperr.New(apperr.KindNotFound, "analysis_not_found", "No psychometric analysis yet")
	ErrPreviewUnavailable  = apperr.New(apperr.KindInsufficientData, "analysis_not_found", "Both users need a psychometric analysis")
	ErrAnalysisFailed      = apperr.New(apperr.KindUpstream, "analysis_failed", "Analysis could not be generated, please try again")
)

// DefaultMinQuestions is the number of answers required before analysis
const DefaultMinQuestions = 15

// BlockChecker reports block relations between users
type BlockChecker interface {
	IsBlockedEitherWay(ctx context.Context, a, b int64) (bool, error)
}

// Service is the psychometric analysis store
type Service interface {
	RequestAnalysis(ctx context.Context, userID int64, force bool) (*Analysis, error)
	GetAnalysis(ctx context.Context, userID int64) (*Analysis, error)
	GetRedFlags(ctx context.Context, userID int64) ([]RedFlag, error)
	GetCompatibilityPreview(ctx context.Context, userID, otherID int64) (*Preview, error)
	// GetAnalyses loads analyses for several users; missing users are absent from the map
	GetAnalyses(ctx context.Context, userIDs []int64) (map[int64]*Analysis, error)
	MarkNeedsReanalysis(ctx context.Context, userID int64) error
}

type service struct {
	repo         Repository
	analyzer     Analyzer
	blocks       BlockChecker
	minQuestions int
	group        singleflight.Group
	now          func() time.Time
	log          *logger.Logger
}

// NewService creates the psychometric service
func NewService(repo Repository, analyzer Analyzer, blocks BlockChecker, minQuestions int, log *logger.Logger) Service {
	if minQuestions <= 0 {
		minQuestions = DefaultMinQuestions
	}
	return &service{
		repo:         repo,
		analyzer:     analyzer,
		blocks:       blocks,
		minQuestions: minQuestions,
		now:          time.Now,
		log:          log.With("component", "psychometric"),
	}
}

func (s *service) RequestAnalysis(ctx context.Context, userID int64, force bool) (*Analysis, error) {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.ErrUserNotFound
	}

	answered, err := s.repo.CountAnswers(ctx, userID)
	if err != nil {
		return nil, err
	}
	if answered < s.minQuestions {
		return nil, ErrInsufficientAnswers
	}

	if !force {
		existing, err := s.repo.GetAnalysis(ctx, userID)
		switch {
		case err == nil && !existing.Metadata.NeedsReanalysis:
			return existing, nil
		case err != nil && !errors.Is(err, ErrAnalysisNotFound):
			return nil, err
		}
	}

	// concurrent requests for the same user share one analyzer call
	v, err, _ := s.group.Do(strconv.FormatInt(userID, 10), func() (interface{}, error) {
		return s.analyze(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Analysis), nil
}

func (s *service) analyze(ctx context.Context, userID int64) (*Analysis, error) {
	answers, orphaned, err := s.repo.ListAnswers(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orphaned > 0 {
		s.log.Warn("answers without question excluded", "user_id", userID, "orphaned_answers", orphaned)
	}
	if len(answers) < s.minQuestions {
		return nil, ErrInsufficientAnswers
	}

	started := s.now()
	analysis, err := s.analyzer.Analyze(ctx, userID, answers)
	if err != nil {
		s.log.Error("psychometric analysis failed", "user_id", userID, "error", err.Error())
		return nil, err
	}

	analysis.UserID = userID
	analysis.OverallScore = OverallScore(analysis.DimensionScores)
	analysis.Metadata = Metadata{
		QuestionsAnalyzed: len(answers),
		LastAnalyzedAt:    s.now().UTC(),
		NeedsReanalysis:   false,
	}
	analysis.CompatibilityVector = BuildVector(analysis)

	if err := s.repo.SaveAnalysis(ctx, analysis); err != nil {
		return nil, err
	}

	s.log.Info("psychometric analysis saved",
		"user_id", userID,
		"questions", len(answers),
		"red_flags", len(analysis.RedFlags),
		"duration_ms", s.now().Sub(started).Milliseconds(),
	)
	return analysis, nil
}

func (s *service) GetAnalysis(ctx context.Context, userID int64) (*Analysis, error) {
	return s.repo.GetAnalysis(ctx, userID)
}

func (s *service) GetRedFlags(ctx context.Context, userID int64) ([]RedFlag, error) {
	a, err := s.repo.GetAnalysis(ctx, userID)
	if err != nil {
		return nil, err
	}
	if a.RedFlags == nil {
		return []RedFlag{}, nil
	}
	return a.RedFlags, nil
}

func (s *service) GetCompatibilityPreview(ctx context.Context, userID, otherID int64) (*Preview, error) {
	if userID == otherID {
		return nil, apperr.Invalid("invalid_user", "Cannot preview compatibility with yourself")
	}
	if s.blocks != nil {
		blocked, err := s.blocks.IsBlockedEitherWay(ctx, userID, otherID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, apperr.ErrUserBlocked
		}
	}

	analyses, err := s.repo.GetAnalyses(ctx, []int64{userID, otherID})
	if err != nil {
		return nil, err
	}
	a, b := analyses[userID], analyses[otherID]
	if a == nil || b == nil {
		return nil, ErrPreviewUnavailable
	}
	return ComputePreview(a, b), nil
}

func (s *service) GetAnalyses(ctx context.Context, userIDs []int64) (map[int64]*Analysis, error) {
	return s.repo.GetAnalyses(ctx, userIDs)
}

func (s *service) MarkNeedsReanalysis(ctx context.Context, userID int64) error {
	return s.repo.MarkNeedsReanalysis(ctx, userID)
}
