// internal/games/service.go
// Invitation, acceptance, cancellation and restart shared by every game

package games

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/common/clock"
	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/matches"
	notifications "github.com/imadgeboyega/kiekky-couples/internal/notification"
)

// DefaultInviteTTL applies to asynchronous games
const DefaultInviteTTL = 24 * time.Hour

// MatchChecker reports whether two users are a mutual match
type MatchChecker interface {
	AreMutual(ctx context.Context, a, b int64) (bool, error)
}

// BlockChecker reports block relations between users
type BlockChecker interface {
	IsBlockedEitherWay(ctx context.Context, a, b int64) (bool, error)
}

// Engine describes how one game type plugs into the shared lifecycle
type Engine struct {
	GameType  GameType
	InviteTTL time.Duration
	// AcceptedStatus is the status entered on accept: accepted, or starting for real-time games
	AcceptedStatus Status
	// NewPayload builds the initial game document
	NewPayload func() (json.RawMessage, error)
	// OnAccepted and OnCancelled run after the transition is committed
	OnAccepted  func(ctx context.Context, s *Session)
	OnCancelled func(ctx context.Context, s *Session)
}

// Service drives the lifecycle states common to all games
type Service struct {
	repo     Repository
	matches  MatchChecker
	blocks   BlockChecker
	notifier notifications.Notifier
	bus      *EventBus
	clock    clock.Clock
	engines  map[GameType]*Engine
	log      *logger.Logger
}

// NewService creates the lifecycle service. Engines are added with Register.
func NewService(repo Repository, matches MatchChecker, blocks BlockChecker, notifier notifications.Notifier, bus *EventBus, clk clock.Clock, log *logger.Logger) *Service {
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Service{
		repo:     repo,
		matches:  matches,
		blocks:   blocks,
		notifier: notifier,
		bus:      bus,
		clock:    clk,
		engines:  make(map[GameType]*Engine),
		log:      log.With("component", "games"),
	}
}

// Register adds an engine. Not safe to call after serving starts.
func (s *Service) Register(e Engine) {
	if e.InviteTTL <= 0 {
		e.InviteTTL = DefaultInviteTTL
	}
	if e.AcceptedStatus == "" {
		e.AcceptedStatus = StatusAccepted
	}
	s.engines[e.GameType] = &e
}

// Repository exposes the session store to engines
func (s *Service) Repository() Repository {
	return s.repo
}

// Clock exposes the service time source to engines
func (s *Service) Clock() clock.Clock {
	return s.clock
}

func (s *Service) engine(t GameType) (*Engine, error) {
	e, ok := s.engines[t]
	if !ok {
		return nil, ErrUnknownGameType
	}
	return e, nil
}

// Invite creates a pending session from inviter to invitee
func (s *Service) Invite(ctx context.Context, inviterID, inviteeID int64, gameType GameType) (*Session, error) {
	eng, err := s.engine(gameType)
	if err != nil {
		return nil, err
	}
	if inviterID == inviteeID {
		return nil, ErrCannotInviteSelf
	}
	if err := s.checkPair(ctx, inviterID, inviteeID); err != nil {
		return nil, err
	}

	payload, err := eng.NewPayload()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &Session{
		ID:                  uuid.NewString(),
		GameType:            gameType,
		Pair:                matches.NewPair(inviterID, inviteeID),
		InitiatorID:         inviterID,
		InviteeID:           inviteeID,
		Status:              StatusPendingAcceptance,
		InvitedAt:           now,
		InvitationExpiresAt: now.Add(eng.InviteTTL),
		Payload:             payload,
		UpdatedAt:           now,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	invitationsTotal.WithLabelValues(string(gameType)).Inc()
	s.log.Info("game invitation sent", "session_id", session.ID, "game_type", string(gameType), "inviter", inviterID)
	s.async(func(ctx context.Context) error {
		return s.notifier.GameInvitation(ctx, inviterID, inviteeID, string(gameType), session.ID, eng.InviteTTL)
	})
	return session, nil
}

func (s *Service) checkPair(ctx context.Context, a, b int64) error {
	if s.blocks != nil {
		blocked, err := s.blocks.IsBlockedEitherWay(ctx, a, b)
		if err != nil {
			return err
		}
		if blocked {
			return apperr.ErrUserBlocked
		}
	}
	mutual, err := s.matches.AreMutual(ctx, a, b)
	if err != nil {
		return err
	}
	if !mutual {
		return ErrMatchNotMutual
	}
	return nil
}

// Get returns a session the user participates in
func (s *Service) Get(ctx context.Context, sessionID string, userID int64) (*Session, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsParticipant(userID) {
		return nil, apperr.ErrNotParticipant
	}
	return session, nil
}

// Accept moves a pending invitation forward. Only the invitee may accept.
func (s *Service) Accept(ctx context.Context, sessionID string, userID int64) (*Session, error) {
	current, err := s.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	eng, err := s.engine(current.GameType)
	if err != nil {
		return nil, err
	}
	if current.Status == StatusPendingAcceptance && s.clock.Now().After(current.InvitationExpiresAt) {
		s.expire(ctx, sessionID)
		return nil, ErrInvitationExpired
	}

	updated, err := s.repo.Update(ctx, sessionID, func(sess *Session) error {
		if sess.InviteeID != userID {
			return ErrNotInvitee
		}
		if sess.Status == StatusExpired {
			return ErrInvitationExpired
		}
		if sess.Status != StatusPendingAcceptance {
			return ErrNotPending
		}
		now := s.clock.Now()
		if now.After(sess.InvitationExpiresAt) {
			return ErrInvitationExpired
		}
		sess.Status = eng.AcceptedStatus
		sess.AcceptedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	RecordTransition(updated.GameType, updated.Status)
	s.log.Info("game invitation accepted", "session_id", sessionID, "game_type", string(updated.GameType))
	if eng.OnAccepted != nil {
		eng.OnAccepted(ctx, updated)
	}
	return updated, nil
}

func (s *Service) expire(ctx context.Context, sessionID string) {
	_, err := s.repo.Update(ctx, sessionID, func(sess *Session) error {
		if sess.Status != StatusPendingAcceptance {
			return ErrNotPending
		}
		sess.Status = StatusExpired
		return nil
	})
	if err == nil {
		s.log.Debug("invitation expired on access", "session_id", sessionID)
	}
}

// Decline rejects a pending invitation. Only the invitee may decline.
func (s *Service) Decline(ctx context.Context, sessionID string, userID int64) (*Session, error) {
	if _, err := s.Get(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, sessionID, func(sess *Session) error {
		if sess.InviteeID != userID {
			return ErrNotInvitee
		}
		if sess.Status != StatusPendingAcceptance {
			return ErrNotPending
		}
		sess.Status = StatusDeclined
		return nil
	})
	if err != nil {
		return nil, err
	}
	RecordTransition(updated.GameType, StatusDeclined)
	return updated, nil
}

// Cancel ends any active session. Either participant may cancel.
func (s *Service) Cancel(ctx context.Context, sessionID string, userID int64) (*Session, error) {
	if _, err := s.Get(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, sessionID, func(sess *Session) error {
		if !CanTransition(sess.Status, StatusCancelled) {
			return ErrInvalidTransition
		}
		now := s.clock.Now()
		sess.Status = StatusCancelled
		sess.CancelledAt = &now
		sess.CancelledBy = &userID
		return nil
	})
	if err != nil {
		return nil, err
	}

	RecordTransition(updated.GameType, StatusCancelled)
	s.log.Info("game cancelled", "session_id", sessionID, "by", userID)
	if eng, ok := s.engines[updated.GameType]; ok && eng.OnCancelled != nil {
		eng.OnCancelled(ctx, updated)
	}
	return updated, nil
}

// RequestRestart asks the partner to play again. Only valid once the game has finished.
func (s *Service) RequestRestart(ctx context.Context, sessionID string, userID int64) (*Session, error) {
	if _, err := s.Get(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, sessionID, func(sess *Session) error {
		if !sess.Status.IsFinished() {
			return ErrNotCompleted
		}
		if sess.RestartRequestedBy != nil {
			return ErrRestartAlreadyPending
		}
		now := s.clock.Now()
		sess.RestartRequestedBy = &userID
		sess.RestartRequestedAt = &now
		return nil
	})
}

// AcceptRestart creates a fresh session linked to the finished one.
// The new session skips the invitation since both players already agreed.
func (s *Service) AcceptRestart(ctx context.Context, sessionID string, userID int64) (*Session, error) {
	original, err := s.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	eng, err := s.engine(original.GameType)
	if err != nil {
		return nil, err
	}
	if original.RestartRequestedBy == nil {
		return nil, ErrNoRestartPending
	}
	if *original.RestartRequestedBy == userID {
		return nil, ErrOwnRestartRequest
	}
	if err := s.checkPair(ctx, *original.RestartRequestedBy, userID); err != nil {
		return nil, err
	}

	payload, err := eng.NewPayload()
	if err != nil {
		return nil, err
	}
	requester := *original.RestartRequestedBy
	now := s.clock.Now()
	prev := original.ID
	next := &Session{
		ID:                  uuid.NewString(),
		GameType:            original.GameType,
		Pair:                original.Pair,
		InitiatorID:         requester,
		InviteeID:           userID,
		Status:              eng.AcceptedStatus,
		InvitedAt:           now,
		InvitationExpiresAt: now.Add(eng.InviteTTL),
		AcceptedAt:          &now,
		PreviousGameID:      &prev,
		RestartCount:        original.RestartCount + 1,
		Payload:             payload,
		UpdatedAt:           now,
	}
	if err := s.repo.Create(ctx, next); err != nil {
		return nil, err
	}

	// clear the request so it cannot be accepted twice
	if _, err := s.repo.Update(ctx, sessionID, func(sess *Session) error {
		sess.RestartRequestedBy = nil
		sess.RestartRequestedAt = nil
		return nil
	}); err != nil {
		s.log.Warn("failed to clear restart request", "session_id", sessionID, "error", err.Error())
	}

	s.log.Info("game restarted", "session_id", next.ID, "previous_game_id", prev, "restart_count", next.RestartCount)
	if eng.OnAccepted != nil {
		eng.OnAccepted(ctx, next)
	}
	return next, nil
}

// DeclineRestart clears a pending restart request
func (s *Service) DeclineRestart(ctx context.Context, sessionID string, userID int64) (*Session, error) {
	if _, err := s.Get(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, sessionID, func(sess *Session) error {
		if sess.RestartRequestedBy == nil {
			return ErrNoRestartPending
		}
		if *sess.RestartRequestedBy == userID {
			return ErrOwnRestartRequest
		}
		sess.RestartRequestedBy = nil
		sess.RestartRequestedAt = nil
		return nil
	})
}

// Completed publishes the completion of a committed session
func (s *Service) Completed(session *Session) {
	if session.Result == nil || session.CompletedAt == nil {
		return
	}
	RecordTransition(session.GameType, StatusCompleted)
	if !session.Result.Unscored {
		completionScores.WithLabelValues(string(session.GameType)).Observe(session.Result.Score)
	}

	if s.bus != nil {
		s.bus.Publish(CompletedEvent{
			SessionID:   session.ID,
			GameType:    session.GameType,
			Pair:        session.Pair,
			CompletedAt: *session.CompletedAt,
		})
	}
	s.async(func(ctx context.Context) error {
		return s.notifier.GameCompleted(ctx, session.InitiatorID, session.InviteeID, string(session.GameType), session.ID)
	})
}

// ExpirePending expires overdue invitations across all game types
func (s *Service) ExpirePending(ctx context.Context) (int, error) {
	expired, err := s.repo.ExpirePending(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	for _, sess := range expired {
		RecordTransition(sess.GameType, StatusExpired)
	}
	return len(expired), nil
}

// async runs a best-effort side effect off the request path
func (s *Service) async(fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.log.Warn("notification failed", "error", err.Error())
		}
	}()
}
