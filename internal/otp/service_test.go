package otp

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	notifications "github.com/imadgeboyega/kiekky-couples/internal/notification"
)

type memoryStore struct {
	mu    sync.Mutex
	codes map[string]*Record
	sends map[string]int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{codes: map[string]*Record{}, sends: map[string]int{}}
}

func (m *memoryStore) Save(_ context.Context, phone string, purpose Purpose, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[codeKey(phone, purpose)] = &rec
	return nil
}

func (m *memoryStore) Load(_ context.Context, phone string, purpose Purpose) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.codes[codeKey(phone, purpose)]
	if !ok {
		return nil, ErrNoCode
	}
	cp := *rec
	return &cp, nil
}

func (m *memoryStore) IncrementAttempts(_ context.Context, phone string, purpose Purpose) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.codes[codeKey(phone, purpose)]
	rec.Attempts++
	return rec.Attempts, nil
}

func (m *memoryStore) Delete(_ context.Context, phone string, purpose Purpose) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, codeKey(phone, purpose))
	return nil
}

func (m *memoryStore) CountSend(_ context.Context, phone string, _ time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends[phone]++
	return m.sends[phone], nil
}

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

func sentCode(t *testing.T, sms *notifications.MockSMSService) string {
	t.Helper()
	last := sms.Last()
	if last == nil {
		t.Fatalf("no sms sent")
	}
	m := codePattern.FindStringSubmatch(last.Message)
	if m == nil {
		t.Fatalf("no code in %q", last.Message)
	}
	return m[1]
}

func newTestService() (*service, *memoryStore, *notifications.MockSMSService) {
	log := logger.NewNop()
	store := newMemoryStore()
	sms := notifications.NewMockSMSService(log)
	svc := NewService(store, sms, Config{}, log).(*service)
	return svc, store, sms
}

const phone = "+2348012345678"

func TestGenerateAndVerify(t *testing.T) {
	svc, store, sms := newTestService()
	ctx := context.Background()

	resp, err := svc.GenerateOTP(ctx, &SendOTPRequest{Phone: phone, Purpose: PurposeSignin})
	if err != nil {
		t.Fatalf("GenerateOTP: %v", err)
	}
	if !resp.Success {
		t.Fatalf("GenerateOTP: want success")
	}
	code := sentCode(t, sms)

	rec, _ := store.Load(ctx, phone, PurposeSignin)
	if rec.CodeHash == code {
		t.Fatalf("code stored in plain text")
	}

	if err := svc.VerifyOTP(ctx, &VerifyOTPRequest{Phone: phone, Code: code, Purpose: PurposeSignin}); err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	// consumed
	err = svc.VerifyOTP(ctx, &VerifyOTPRequest{Phone: phone, Code: code, Purpose: PurposeSignin})
	if !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("reuse: want=%v got=%v", ErrOTPExpired, err)
	}
}

func TestVerifyMaxAttempts(t *testing.T) {
	svc, _, sms := newTestService()
	ctx := context.Background()

	if _, err := svc.GenerateOTP(ctx, &SendOTPRequest{Phone: phone, Purpose: PurposeSignin}); err != nil {
		t.Fatalf("GenerateOTP: %v", err)
	}
	code := sentCode(t, sms)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	req := &VerifyOTPRequest{Phone: phone, Code: wrong, Purpose: PurposeSignin}
	if err := svc.VerifyOTP(ctx, req); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("attempt 1: want=%v got=%v", ErrOTPInvalid, err)
	}
	if err := svc.VerifyOTP(ctx, req); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("attempt 2: want=%v got=%v", ErrOTPInvalid, err)
	}
	if err := svc.VerifyOTP(ctx, req); !errors.Is(err, ErrOTPMaxAttempts) {
		t.Fatalf("attempt 3: want=%v got=%v", ErrOTPMaxAttempts, err)
	}
	// the right code no longer helps
	err := svc.VerifyOTP(ctx, &VerifyOTPRequest{Phone: phone, Code: code, Purpose: PurposeSignin})
	if !errors.Is(err, ErrOTPMaxAttempts) {
		t.Fatalf("after lockout: want=%v got=%v", ErrOTPMaxAttempts, err)
	}
}

func TestVerifyExpired(t *testing.T) {
	svc, _, sms := newTestService()
	ctx := context.Background()
	start := time.Now()
	svc.now = func() time.Time { return start }

	if _, err := svc.GenerateOTP(ctx, &SendOTPRequest{Phone: phone, Purpose: PurposePhoneVerify}); err != nil {
		t.Fatalf("GenerateOTP: %v", err)
	}
	code := sentCode(t, sms)

	svc.now = func() time.Time { return start.Add(10*time.Minute + time.Second) }
	err := svc.VerifyOTP(ctx, &VerifyOTPRequest{Phone: phone, Code: code, Purpose: PurposePhoneVerify})
	if !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("expired: want=%v got=%v", ErrOTPExpired, err)
	}
}

func TestGenerateRateLimited(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	req := &SendOTPRequest{Phone: phone, Purpose: PurposeSignin}
	for i := 0; i < 3; i++ {
		if _, err := svc.GenerateOTP(ctx, req); err != nil {
			t.Fatalf("send %d: %v", i+1, err)
		}
	}
	_, err := svc.GenerateOTP(ctx, req)
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("send 4: want=%v got=%v", ErrRateLimitExceeded, err)
	}
	if apperr.HTTPStatus(err) != 429 {
		t.Fatalf("status: want=429 got=%d", apperr.HTTPStatus(err))
	}
}

func TestGenerateCodeLength(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := generateCode(6)
		if err != nil {
			t.Fatalf("generateCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("len: want=6 got=%d (%q)", len(code), code)
		}
	}
}
