package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/profile"
)

type stubUsers struct {
	users map[int64]*profile.User
}

func (s *stubUsers) GetUser(_ context.Context, id int64) (*profile.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("missing")
}

func (s *stubUsers) GetUsers(_ context.Context, ids []int64) (map[int64]*profile.User, error) {
	out := map[int64]*profile.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (s *stubUsers) IsBlockedEitherWay(context.Context, int64, int64) (bool, error) {
	return false, nil
}

type failingPush struct{}

func (failingPush) SendPush(context.Context, *PushNotification) error { return errors.New("fcm down") }

func newUsers() *stubUsers {
	email := "bola@example.com"
	return &stubUsers{users: map[int64]*profile.User{
		1: {ID: 1, DisplayName: "Ada", PushToken: "tok-1"},
		2: {ID: 2, DisplayName: "Bola", Email: &email},
	}}
}

func TestGameInvitationUsesPush(t *testing.T) {
	log := logger.NewNop()
	push := NewMockPushService(log)
	svc := NewService(newUsers(), push, NewMockEmailService(log), log)

	if err := svc.GameInvitation(context.Background(), 2, 1, "two_truths_lie", "s-1", 24*time.Hour); err != nil {
		t.Fatalf("GameInvitation: %v", err)
	}
	if len(push.Sent) != 1 {
		t.Fatalf("pushes: want=1 got=%d", len(push.Sent))
	}
	got := push.Sent[0]
	if !strings.Contains(got.Body, "Bola") || !strings.Contains(got.Body, "Two Truths and a Lie") || !strings.Contains(got.Body, "24 hours") {
		t.Fatalf("body: got %q", got.Body)
	}
	if got.Data["session_id"] != "s-1" {
		t.Fatalf("data session_id: want=s-1 got=%q", got.Data["session_id"])
	}
}

func TestDeliverFallsBackToEmail(t *testing.T) {
	log := logger.NewNop()
	email := NewMockEmailService(log)
	svc := NewService(newUsers(), failingPush{}, email, log)

	if err := svc.DatePlanReady(context.Background(), 1, 2, "Cafe Neo"); err != nil {
		t.Fatalf("DatePlanReady: %v", err)
	}
	// user 1 has a token but push fails and has no email; user 2 only has email
	if len(email.Sent) != 1 || email.Sent[0].To != "bola@example.com" {
		t.Fatalf("emails: got %+v", email.Sent)
	}
	if !strings.Contains(email.Sent[0].Body, "Cafe Neo") || !strings.Contains(email.Sent[0].Body, "Ada") {
		t.Fatalf("email body: got %q", email.Sent[0].Body)
	}
}

func TestRenderUnknownType(t *testing.T) {
	if _, _, err := Render("nope", nil); err == nil {
		t.Fatalf("Render unknown: want error")
	}
}

func TestFormatTTL(t *testing.T) {
	if got := formatTTL(5 * time.Minute); got != "5 minutes" {
		t.Fatalf("formatTTL: want=%q got=%q", "5 minutes", got)
	}
}
