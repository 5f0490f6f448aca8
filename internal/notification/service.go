// internal/notification/service.go

package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/profile"
)

// Notifier tells users about game and date events
type Notifier interface {
	GameInvitation(ctx context.Context, inviterID, inviteeID int64, gameType, sessionID string, ttl time.Duration) error
	GameCompleted(ctx context.Context, userA, userB int64, gameType, sessionID string) error
	DatePlanReady(ctx context.Context, userA, userB int64, venue string) error
}

// Service delivers notifications over push, falling back to email
type Service struct {
	users profile.Repository
	push  PushService
	email EmailService
	log   *logger.Logger
}

// NewService creates a notifier. push and email may be nil.
func NewService(users profile.Repository, push PushService, email EmailService, log *logger.Logger) *Service {
	return &Service{users: users, push: push, email: email, log: log.With("component", "notifications")}
}

func (s *Service) GameInvitation(ctx context.Context, inviterID, inviteeID int64, gameType, sessionID string, ttl time.Duration) error {
	users, err := s.users.GetUsers(ctx, []int64{inviterID, inviteeID})
	if err != nil {
		return err
	}
	inviter, invitee := users[inviterID], users[inviteeID]
	if inviter == nil || invitee == nil {
		return errors.New("invitation participants not found")
	}

	data := map[string]string{
		"Inviter":   inviter.DisplayName,
		"Game":      gameLabel(gameType),
		"ExpiresIn": formatTTL(ttl),
	}
	return s.deliver(ctx, invitee, TypeGameInvitation, data, PriorityHigh, map[string]string{
		"type":       string(TypeGameInvitation),
		"session_id": sessionID,
		"game_type":  gameType,
	})
}

func (s *Service) GameCompleted(ctx context.Context, userA, userB int64, gameType, sessionID string) error {
	users, err := s.users.GetUsers(ctx, []int64{userA, userB})
	if err != nil {
		return err
	}
	extra := map[string]string{
		"type":       string(TypeGameCompleted),
		"session_id": sessionID,
		"game_type":  gameType,
	}
	var errs []error
	for _, pair := range [][2]int64{{userA, userB}, {userB, userA}} {
		recipient, partner := users[pair[0]], users[pair[1]]
		if recipient == nil || partner == nil {
			continue
		}
		data := map[string]string{"Game": gameLabel(gameType), "Partner": partner.DisplayName}
		if err := s.deliver(ctx, recipient, TypeGameCompleted, data, PriorityMedium, extra); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) DatePlanReady(ctx context.Context, userA, userB int64, venue string) error {
	users, err := s.users.GetUsers(ctx, []int64{userA, userB})
	if err != nil {
		return err
	}
	extra := map[string]string{"type": string(TypeDatePlanReady)}
	var errs []error
	for _, pair := range [][2]int64{{userA, userB}, {userB, userA}} {
		recipient, partner := users[pair[0]], users[pair[1]]
		if recipient == nil || partner == nil {
			continue
		}
		data := map[string]string{"Venue": venue, "Partner": partner.DisplayName}
		if err := s.deliver(ctx, recipient, TypeDatePlanReady, data, PriorityMedium, extra); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// deliver prefers push and falls back to email when the user has no device
func (s *Service) deliver(ctx context.Context, user *profile.User, notificationType NotificationType, data map[string]string, priority Priority, extra map[string]string) error {
	title, body, err := Render(notificationType, data)
	if err != nil {
		return err
	}

	if s.push != nil && user.PushToken != "" {
		err := s.push.SendPush(ctx, &PushNotification{
			Tokens:      []string{user.PushToken},
			Title:       title,
			Body:        body,
			Data:        extra,
			Sound:       "default",
			Priority:    priority,
			CollapseKey: string(notificationType),
		})
		if err == nil {
			return nil
		}
		s.log.Warn("push failed, trying email", "user_id", user.ID, "error", err.Error())
	}

	if s.email != nil && user.Email != nil && *user.Email != "" {
		return s.email.SendEmail(ctx, &EmailNotification{To: *user.Email, Subject: title, Body: body})
	}

	s.log.Debug("no delivery channel", "user_id", user.ID, "type", string(notificationType))
	return nil
}

func formatTTL(d time.Duration) string {
	if d >= time.Hour {
		return fmt.Sprintf("%d hours", int(d.Hours()))
	}
	return fmt.Sprintf("%d minutes", int(d.Minutes()))
}

// Nop discards every notification
type Nop struct{}

func (Nop) GameInvitation(context.Context, int64, int64, string, string, time.Duration) error {
	return nil
}
func (Nop) GameCompleted(context.Context, int64, int64, string, string) error { return nil }
func (Nop) DatePlanReady(context.Context, int64, int64, string) error         { return nil }
