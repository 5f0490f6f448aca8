// internal/llm/transcribe.go

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
)

const (
	MaxAudioBytes           = 25 << 20
	MaxTranscriptionSeconds = 180
)

// AllowedAudioTypes is the MIME whitelist accepted for transcription
var AllowedAudioTypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/mp4":   true,
	"audio/x-m4a": true,
	"audio/wav":   true,
	"audio/x-wav": true,
	"audio/webm":  true,
	"audio/ogg":   true,
	"audio/opus":  true,
	"audio/x-caf": true,
}

var (
	ErrAudioTooLarge   = apperr.Invalid("audio_too_large", "Audio file exceeds 25MB")
	ErrAudioTooLong    = apperr.Invalid("audio_too_long", "Audio exceeds 180 seconds")
	ErrUnsupportedType = apperr.Invalid("unsupported_audio_type", "Unsupported audio format")
	ErrEmptyAudio      = apperr.Invalid("empty_audio", "Audio file is empty")
)

// TranscriptionRequest is one audio clip to transcribe
type TranscriptionRequest struct {
	Audio           []byte
	Filename        string
	MimeType        string
	DurationSeconds float64
	// Prompt is a short hint such as the question being answered
	Prompt string
}

// Transcription is the recognized text
type Transcription struct {
	Text     string  `json:"text"`
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// ValidateAudio checks size, duration and MIME type limits
func ValidateAudio(size int, mimeType string, durationSeconds float64) error {
	switch {
	case size == 0:
		return ErrEmptyAudio
	case size > MaxAudioBytes:
		return ErrAudioTooLarge
	case durationSeconds > MaxTranscriptionSeconds:
		return ErrAudioTooLong
	case !AllowedAudioTypes[normalizeMime(mimeType)]:
		return ErrUnsupportedType
	}
	return nil
}

func normalizeMime(m string) string {
	if i := strings.Index(m, ";"); i >= 0 {
		m = m[:i]
	}
	return strings.ToLower(strings.TrimSpace(m))
}

func (c *httpClient) Transcribe(ctx context.Context, req TranscriptionRequest) (*Transcription, error) {
	if err := ValidateAudio(len(req.Audio), req.MimeType, req.DurationSeconds); err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "llm.Transcribe",
		trace.WithAttributes(
			attribute.String("llm.model", c.cfg.TranscribeModel),
			attribute.Int("audio.bytes", len(req.Audio)),
		),
	)
	defer span.End()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, req.Filename))
	header.Set("Content-Type", normalizeMime(req.MimeType))
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create audio part: %w", err)
	}
	if _, err := part.Write(req.Audio); err != nil {
		return nil, fmt.Errorf("write audio part: %w", err)
	}
	_ = w.WriteField("model", c.cfg.TranscribeModel)
	_ = w.WriteField("response_format", "json")
	if req.Prompt != "" {
		_ = w.WriteField("prompt", req.Prompt)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}
	payload := buf.Bytes()
	contentType := w.FormDataContentType()

	start := time.Now()
	raw, err := c.doWithRetry(ctx, "transcription", func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/audio/transcriptions", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", contentType)
		return r, nil
	})
	if err != nil {
		observeRequest("transcription", "error", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "transcription failed")
		return nil, ErrUpstream.WithCause(err)
	}

	var out Transcription
	if err := json.Unmarshal(raw, &out); err != nil {
		observeRequest("transcription", "malformed", time.Since(start))
		return nil, ErrMalformedResponse.WithCause(err)
	}
	observeRequest("transcription", "ok", time.Since(start))
	return &out, nil
}
