package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
)

func testClient(url string) Client {
	return NewClient(Config{
		BaseURL:         url,
		APIKey:          "test-key",
		Model:           "test-model",
		TranscribeModel: "test-whisper",
		Temperature:     0.7,
		MaxRetries:      3,
		RetryBackoff:    time.Millisecond,
		Timeout:         5 * time.Second,
	}, logger.NewNop())
}

func chatBody(content string) string {
	return fmt.Sprintf(`{"choices":[{"message":{"content":%q}}]}`, content)
}

func TestGenerateJSONRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("authorization header: got %q", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"json_object"`) {
			t.Errorf("response_format missing: %s", body)
		}
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(chatBody(`{"score": 81}`)))
	}))
	defer srv.Close()

	var out struct {
		Score int `json:"score"`
	}
	if err := testClient(srv.URL).GenerateJSON(context.Background(), JSONRequest{Operation: "test"}, &out); err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if out.Score != 81 || calls.Load() != 3 {
		t.Fatalf("want score=81 calls=3 got score=%d calls=%d", out.Score, calls.Load())
	}
}

func TestGenerateJSONGivesUpAfterMaxTries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	var out map[string]any
	err := testClient(srv.URL).GenerateJSON(context.Background(), JSONRequest{}, &out)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("err: want=%v got=%v", ErrUpstream, err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls: want=3 got=%d", calls.Load())
	}
}

func TestGenerateJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	var out map[string]any
	if err := testClient(srv.URL).GenerateJSON(context.Background(), JSONRequest{}, &out); err == nil {
		t.Fatalf("want error got nil")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls: want=1 got=%d", calls.Load())
	}
}

func TestGenerateJSONMalformedContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatBody(`not json`)))
	}))
	defer srv.Close()

	var out map[string]any
	err := testClient(srv.URL).GenerateJSON(context.Background(), JSONRequest{}, &out)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err: want=%v got=%v", ErrMalformedResponse, err)
	}
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("prompt"); got != "What turns you on?" {
			t.Errorf("prompt: got %q", got)
		}
		w.Write([]byte(`{"text":"hello there"}`))
	}))
	defer srv.Close()

	out, err := testClient(srv.URL).Transcribe(context.Background(), TranscriptionRequest{
		Audio:           []byte("fake-audio"),
		Filename:        "note.m4a",
		MimeType:        "audio/x-m4a",
		DurationSeconds: 12,
		Prompt:          "What turns you on?",
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if out.Text != "hello there" {
		t.Fatalf("text: want=%q got=%q", "hello there", out.Text)
	}
}

func TestValidateAudio(t *testing.T) {
	cases := []struct {
		size     int
		mime     string
		duration float64
		want     error
	}{
		{10, "audio/mpeg", 30, nil},
		{10, "audio/ogg; codecs=opus", 30, nil},
		{0, "audio/mpeg", 1, ErrEmptyAudio},
		{MaxAudioBytes + 1, "audio/mpeg", 1, ErrAudioTooLarge},
		{10, "audio/mpeg", 181, ErrAudioTooLong},
		{10, "video/mp4", 1, ErrUnsupportedType},
	}
	for _, tc := range cases {
		err := ValidateAudio(tc.size, tc.mime, tc.duration)
		if tc.want == nil && err != nil {
			t.Fatalf("ValidateAudio(%d,%q,%v): want nil got %v", tc.size, tc.mime, tc.duration, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("ValidateAudio(%d,%q,%v): want %v got %v", tc.size, tc.mime, tc.duration, tc.want, err)
		}
	}
}

func TestFakeScript(t *testing.T) {
	f := NewFake().Reply(`{"ok":true}`).Fail(ErrUpstream)
	var out struct{ OK bool }
	if err := f.GenerateJSON(context.Background(), JSONRequest{}, &out); err != nil || !out.OK {
		t.Fatalf("first call: out=%v err=%v", out, err)
	}
	if err := f.GenerateJSON(context.Background(), JSONRequest{}, &out); !errors.Is(err, ErrUpstream) {
		t.Fatalf("second call: want ErrUpstream got %v", err)
	}
	if f.CallCount() != 2 {
		t.Fatalf("calls: want=2 got=%d", f.CallCount())
	}
}
