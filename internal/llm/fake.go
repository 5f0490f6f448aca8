package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// Fake is a scripted Client for tests and local development without an API key.
// Each GenerateJSON call consumes the next scripted reply; with none left it returns ErrUpstream.
type Fake struct {
	mu      sync.Mutex
	replies []fakeReply
	Calls   []JSONRequest

	TranscribeFunc func(req TranscriptionRequest) (*Transcription, error)
}

type fakeReply struct {
	body string
	err  error
}

// NewFake returns a fake with no scripted replies
func NewFake() *Fake {
	return &Fake{}
}

// Reply queues a JSON body for the next GenerateJSON call
func (f *Fake) Reply(body string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, fakeReply{body: body})
	return f
}

// Fail queues an error for the next GenerateJSON call
func (f *Fake) Fail(err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, fakeReply{err: err})
	return f
}

func (f *Fake) GenerateJSON(_ context.Context, req JSONRequest, out any) error {
	f.mu.Lock()
	f.Calls = append(f.Calls, req)
	if len(f.replies) == 0 {
		f.mu.Unlock()
		return ErrUpstream
	}
	next := f.replies[0]
	f.replies = f.replies[1:]
	f.mu.Unlock()

	if next.err != nil {
		return next.err
	}
	if err := json.Unmarshal([]byte(next.body), out); err != nil {
		return ErrMalformedResponse.WithCause(err)
	}
	return nil
}

func (f *Fake) Transcribe(_ context.Context, req TranscriptionRequest) (*Transcription, error) {
	if err := ValidateAudio(len(req.Audio), req.MimeType, req.DurationSeconds); err != nil {
		return nil, err
	}
	if f.TranscribeFunc != nil {
		return f.TranscribeFunc(req)
	}
	return nil, ErrUpstream
}

// CallCount returns how many GenerateJSON calls were made
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}
