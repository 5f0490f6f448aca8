// internal/games/dreamboard/service.go

package dreamboard

import (
	"context"
	"encoding/json"

	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
)

// Service plays Dream Board: pin a vision per life category, then react to the partner's board
type Service struct {
	games   *games.Service
	catalog *Catalog
	log     *logger.Logger
}

func NewService(lifecycle *games.Service, log *logger.Logger) (*Service, error) {
	catalog, err := LoadCatalog()
	if err != nil {
		return nil, err
	}
	return &Service{games: lifecycle, catalog: catalog, log: log.With("component", "dream_board")}, nil
}

func (s *Service) Engine() games.Engine {
	return games.Engine{
		GameType: games.DreamBoard,
		NewPayload: func() (json.RawMessage, error) {
			return json.Marshal(Payload{})
		},
	}
}

// SubmitBoard pins the caller's cards
func (s *Service) SubmitBoard(ctx context.Context, sessionID string, userID int64, board map[string]string) (*View, error) {
	if _, err := s.games.Get(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	if err := validateBoard(s.catalog, board); err != nil {
		return nil, err
	}

	now := s.games.Clock().Now()
	updated, err := s.games.Repository().Update(ctx, sessionID, func(sess *games.Session) error {
		if sess.Status != games.StatusAccepted && sess.Status != games.StatusAuthoring {
			return games.ErrNotInWritingPhase
		}
		var p Payload
		if err := sess.DecodePayload(&p); err != nil {
			return err
		}
		me := p.player(sess.IsInitiator(userID))
		if me.SubmittedAt != nil {
			return games.ErrAlreadySubmitted
		}
		me.Board = board
		me.SubmittedAt = &now

		if sess.Status == games.StatusAccepted {
			sess.Status = games.StatusAuthoring
			sess.StartedAt = &now
		}
		if p.Initiator.SubmittedAt != nil && p.Invitee.SubmittedAt != nil {
			sess.Status = games.StatusAnswering
		}
		return sess.EncodePayload(p)
	})
	if err != nil {
		return nil, err
	}
	games.RecordTransition(updated.GameType, updated.Status)
	return s.buildView(updated, userID)
}

// SubmitReactions records the caller's reactions to the partner's board.
// The second set completes the game.
func (s *Service) SubmitReactions(ctx context.Context, sessionID string, userID int64, reactions map[string]Reaction) (*View, error) {
	if _, err := s.games.Get(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	if err := validateReactions(s.catalog, reactions); err != nil {
		return nil, err
	}

	completed := false
	now := s.games.Clock().Now()
	updated, err := s.games.Repository().Update(ctx, sessionID, func(sess *games.Session) error {
		completed = false
		if sess.Status != games.StatusAnswering {
			return games.ErrNotInAnswerPhase
		}
		var p Payload
		if err := sess.DecodePayload(&p); err != nil {
			return err
		}
		me := p.player(sess.IsInitiator(userID))
		if me.ReactedAt != nil {
			return games.ErrAlreadySubmitted
		}
		me.Reactions = reactions
		me.ReactedAt = &now

		if p.Initiator.ReactedAt != nil && p.Invitee.ReactedAt != nil {
			sess.Status = games.StatusCompleted
			sess.CompletedAt = &now
			sess.Result = BuildResult(s.catalog, &p, now)
			completed = true
		}
		return sess.EncodePayload(p)
	})
	if err != nil {
		return nil, err
	}

	if completed {
		s.log.Info("dream board completed", "session_id", sessionID, "score", updated.Result.Score)
		s.games.Completed(updated)
	}
	return s.buildView(updated, userID)
}

func (s *Service) View(ctx context.Context, sessionID string, userID int64) (*View, error) {
	sess, err := s.games.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if sess.GameType != games.DreamBoard {
		return nil, games.ErrUnknownGameType
	}
	return s.buildView(sess, userID)
}

// buildView shows the partner's cards from answering on, and their reactions only once completed
func (s *Service) buildView(sess *games.Session, userID int64) (*View, error) {
	var p Payload
	if err := sess.DecodePayload(&p); err != nil {
		return nil, err
	}
	initiator := sess.IsInitiator(userID)
	me, partner := p.player(initiator), p.player(!initiator)
	finished := sess.Status.IsFinished()
	showPartner := finished || sess.Status == games.StatusAnswering

	v := &View{
		SessionID:          sess.ID,
		Status:             string(sess.Status),
		YouSubmitted:       me.SubmittedAt != nil,
		PartnerSubmitted:   partner.SubmittedAt != nil,
		YouReacted:         me.ReactedAt != nil,
		PartnerReacted:     partner.ReactedAt != nil,
		RestartRequestedBy: sess.RestartRequestedBy,
	}
	for _, cat := range s.catalog.Categories {
		cv := CategoryView{Category: cat, YourReaction: me.Reactions[cat]}
		if me.SubmittedAt == nil {
			cv.Options = s.catalog.Cards(cat)
		}
		if card, ok := s.catalog.Card(me.Board[cat]); ok {
			cv.YourCard = &card
		}
		if showPartner {
			if card, ok := s.catalog.Card(partner.Board[cat]); ok {
				cv.PartnerCard = &card
			}
		}
		if finished {
			cv.PartnerReaction = partner.Reactions[cat]
			if sess.Result != nil {
				if score, ok := sess.Result.CategoryScores[cat]; ok {
					cv.Score = &score
				}
			}
		}
		v.Categories = append(v.Categories, cv)
	}
	if finished && sess.Result != nil {
		score := sess.Result.Score
		v.Score = &score
	}
	return v, nil
}
