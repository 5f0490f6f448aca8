package spectrum

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/common/clock"
	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
	"github.com/imadgeboyega/kiekky-couples/internal/games/gamestest"
	"github.com/imadgeboyega/kiekky-couples/internal/llm"
	"github.com/imadgeboyega/kiekky-couples/internal/matches"
	"github.com/imadgeboyega/kiekky-couples/internal/storage"
)

type memoryVoiceNotes struct {
	mu    sync.Mutex
	notes map[string]VoiceNote
}

func newMemoryVoiceNotes() *memoryVoiceNotes {
	return &memoryVoiceNotes{notes: make(map[string]VoiceNote)}
}

func (m *memoryVoiceNotes) Create(_ context.Context, n *VoiceNote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[n.ID] = *n
	return nil
}

func (m *memoryVoiceNotes) Get(_ context.Context, id string) (*VoiceNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok {
		return nil, ErrVoiceNoteNotFound
	}
	return &n, nil
}

func (m *memoryVoiceNotes) ListForSession(_ context.Context, sessionID string) ([]*VoiceNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*VoiceNote
	for _, n := range m.notes {
		if n.SessionID == sessionID {
			n := n
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryVoiceNotes) UpdateTranscription(_ context.Context, id, transcript string, status TranscriptionStatus, retryable bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok {
		return ErrVoiceNoteNotFound
	}
	n.Transcript, n.TranscriptionStatus, n.TranscriptionRetryable = transcript, status, retryable
	m.notes[id] = n
	return nil
}

func (m *memoryVoiceNotes) MarkListened(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok {
		return ErrVoiceNoteNotFound
	}
	if n.ListenedAt == nil {
		n.ListenedAt = &at
		m.notes[id] = n
	}
	return nil
}

type voiceFixture struct {
	svc    *VoiceNoteService
	repo   *gamestest.Repository
	notes  *memoryVoiceNotes
	fake   *llm.Fake
	clock  *clock.Manual
	failTx bool
}

func newVoiceFixture(t *testing.T) *voiceFixture {
	t.Helper()
	f := &voiceFixture{
		repo:  gamestest.NewRepository(),
		notes: newMemoryVoiceNotes(),
		fake:  llm.NewFake(),
		clock: clock.NewManual(start),
	}
	f.fake.TranscribeFunc = func(req llm.TranscriptionRequest) (*llm.Transcription, error) {
		if f.failTx {
			return nil, llm.ErrUpstream
		}
		return &llm.Transcription{Text: "heard: " + req.Prompt}, nil
	}
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	lifecycle := games.NewService(f.repo, gamestest.Mutual{}, gamestest.NoBlocks{}, nil, games.NewEventBus(logger.NewNop()), f.clock, logger.NewNop())
	f.svc, err = NewVoiceNoteService(lifecycle, f.notes, store, f.fake, logger.NewNop())
	if err != nil {
		t.Fatalf("NewVoiceNoteService: %v", err)
	}
	f.svc.async = func(fn func()) { fn() }
	return f
}

func (f *voiceFixture) session(t *testing.T, status games.Status) string {
	t.Helper()
	s := &games.Session{
		ID:          "spectrum-1",
		GameType:    games.IntimacySpectrum,
		Pair:        matches.NewPair(1, 2),
		InitiatorID: 1,
		InviteeID:   2,
		Status:      status,
		InvitedAt:   start,
	}
	if err := s.EncodePayload(Payload{Phase: PhaseQuestion}); err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}
	f.repo.Put(s)
	return s.ID
}

func (f *voiceFixture) upload(sessionID string, userID int64, seconds float64) (*VoiceNote, error) {
	f.clock.Advance(time.Second)
	return f.svc.Upload(context.Background(), sessionID, userID, VoiceNoteUpload{
		QuestionIndex:   4,
		MimeType:        "audio/webm",
		DurationSeconds: seconds,
		Audio:           []byte("fake-opus-frames"),
	})
}

func TestVoiceNotesNeedFinishedGame(t *testing.T) {
	f := newVoiceFixture(t)
	id := f.session(t, games.StatusPlaying)

	if _, err := f.upload(id, 1, 10); !errors.Is(err, ErrVoiceNotesNotAllowed) {
		t.Fatalf("upload while playing: want=%v got=%v", ErrVoiceNotesNotAllowed, err)
	}
	if _, err := f.upload(id, 3, 10); !errors.Is(err, apperr.ErrNotParticipant) {
		t.Fatalf("outsider upload: want=%v got=%v", apperr.ErrNotParticipant, err)
	}
}

func TestVoiceNoteValidation(t *testing.T) {
	f := newVoiceFixture(t)
	id := f.session(t, games.StatusCompleted)

	if _, err := f.upload(id, 1, 61); !errors.Is(err, ErrVoiceNoteTooLong) {
		t.Fatalf("61s note: want=%v got=%v", ErrVoiceNoteTooLong, err)
	}
	_, err := f.svc.Upload(context.Background(), id, 1, VoiceNoteUpload{QuestionIndex: 30, MimeType: "audio/webm", DurationSeconds: 5, Audio: []byte("x")})
	if !errors.Is(err, ErrInvalidQuestionIndex) {
		t.Fatalf("index 30: want=%v got=%v", ErrInvalidQuestionIndex, err)
	}
	_, err = f.svc.Upload(context.Background(), id, 1, VoiceNoteUpload{QuestionIndex: 0, MimeType: "video/mp4", DurationSeconds: 5, Audio: []byte("x")})
	if !errors.Is(err, llm.ErrUnsupportedType) {
		t.Fatalf("video upload: want=%v got=%v", llm.ErrUnsupportedType, err)
	}
}

func TestUploadEntersDiscussionAndTranscribes(t *testing.T) {
	f := newVoiceFixture(t)
	id := f.session(t, games.StatusCompleted)

	note, err := f.upload(id, 1, 60)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if note.ReceiverID != 2 {
		t.Fatalf("receiver: want=2 got=%d", note.ReceiverID)
	}

	s, _ := f.repo.Get(context.Background(), id)
	if s.Status != games.StatusDiscussion {
		t.Fatalf("status: want=%s got=%s", games.StatusDiscussion, s.Status)
	}
	var p Payload
	if err := s.DecodePayload(&p); err != nil || p.VoiceNoteCount != 1 {
		t.Fatalf("voice note count: %d (%v)", p.VoiceNoteCount, err)
	}

	stored, _ := f.notes.Get(context.Background(), note.ID)
	questions, _ := LoadQuestions()
	if stored.TranscriptionStatus != TranscriptionCompleted || stored.Transcript != "heard: "+questions[4].Prompt {
		t.Fatalf("transcription: %s %q", stored.TranscriptionStatus, stored.Transcript)
	}

	body, contentType, err := f.svc.Download(context.Background(), note.ID, 2)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer body.Close()
	data, _ := io.ReadAll(body)
	if string(data) != "fake-opus-frames" || contentType == "" {
		t.Fatalf("download: %q %q", data, contentType)
	}
}

func TestVoiceNoteLimitPerGame(t *testing.T) {
	f := newVoiceFixture(t)
	id := f.session(t, games.StatusCompleted)

	for i := 0; i < MaxVoiceNotesPerGame; i++ {
		if _, err := f.upload(id, int64(1+i%2), 5); err != nil {
			t.Fatalf("upload %d: %v", i, err)
		}
	}
	if _, err := f.upload(id, 1, 5); !errors.Is(err, ErrVoiceNoteLimit) {
		t.Fatalf("11th note: want=%v got=%v", ErrVoiceNoteLimit, err)
	}
	notes, err := f.svc.List(context.Background(), id, 2)
	if err != nil || len(notes) != MaxVoiceNotesPerGame {
		t.Fatalf("List: want=%d got=%d (%v)", MaxVoiceNotesPerGame, len(notes), err)
	}
}

func TestTranscriptionRetry(t *testing.T) {
	f := newVoiceFixture(t)
	id := f.session(t, games.StatusCompleted)
	ctx := context.Background()

	f.failTx = true
	note, err := f.upload(id, 2, 8)
	if err != nil {
		t.Fatalf("upload should succeed when transcription fails: %v", err)
	}
	stored, _ := f.notes.Get(ctx, note.ID)
	if stored.TranscriptionStatus != TranscriptionFailed || !stored.TranscriptionRetryable {
		t.Fatalf("after failure: %s retryable=%v", stored.TranscriptionStatus, stored.TranscriptionRetryable)
	}

	if _, err := f.svc.RetryTranscription(ctx, note.ID, 1); !errors.Is(err, ErrTranscriptionFailed) {
		t.Fatalf("retry while upstream down: want=%v got=%v", ErrTranscriptionFailed, err)
	}

	f.failTx = false
	retried, err := f.svc.RetryTranscription(ctx, note.ID, 1)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if retried.TranscriptionStatus != TranscriptionCompleted || retried.Transcript == "" {
		t.Fatalf("retried note: %+v", retried)
	}
	if _, err := f.svc.RetryTranscription(ctx, note.ID, 1); !errors.Is(err, ErrNotRetryable) {
		t.Fatalf("second retry: want=%v got=%v", ErrNotRetryable, err)
	}
}

func TestMarkListenedReceiverOnly(t *testing.T) {
	f := newVoiceFixture(t)
	id := f.session(t, games.StatusCompleted)
	ctx := context.Background()

	note, err := f.upload(id, 1, 12)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := f.svc.MarkListened(ctx, note.ID, 1); !errors.Is(err, ErrNotReceiver) {
		t.Fatalf("sender mark: want=%v got=%v", ErrNotReceiver, err)
	}
	if _, err := f.svc.MarkListened(ctx, note.ID, 7); !errors.Is(err, apperr.ErrNotParticipant) {
		t.Fatalf("outsider mark: want=%v got=%v", apperr.ErrNotParticipant, err)
	}
	listened, err := f.svc.MarkListened(ctx, note.ID, 2)
	if err != nil {
		t.Fatalf("MarkListened: %v", err)
	}
	if listened.ListenedAt == nil || !listened.ListenedAt.Equal(f.clock.Now()) {
		t.Fatalf("listened_at: %v", listened.ListenedAt)
	}
}
