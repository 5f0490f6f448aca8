package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func TestVoiceNoteKey(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	got := VoiceNoteKey(42, 7, at, ".M4A")
	want := "voice-notes/42-q7-1700000000123.m4a"
	if got != want {
		t.Fatalf("VoiceNoteKey: want=%q got=%q", want, got)
	}
	if got := VoiceNoteKey(1, 0, at, "mp3"); got != "voice-notes/1-q0-1700000000123.mp3" {
		t.Fatalf("VoiceNoteKey no dot: got %q", got)
	}
}

func TestExtensionForMime(t *testing.T) {
	cases := map[string]string{
		"audio/x-m4a":            ".m4a",
		"audio/ogg; codecs=opus": ".ogg",
		"audio/x-caf":            ".caf",
		"video/mp4":              "",
	}
	for in, want := range cases {
		if got := ExtensionForMime(in); got != want {
			t.Fatalf("ExtensionForMime(%q): want=%q got=%q", in, want, got)
		}
	}
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()
	key := "voice-notes/1-q2-3.m4a"

	if err := store.Put(ctx, key, []byte("audio"), "audio/x-m4a"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rc, ct, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "audio" || ct != "audio/x-m4a" {
		t.Fatalf("Get: body=%q type=%q", body, ct)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, err := store.Get(ctx, key); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("Get after delete: want=%v got=%v", ErrObjectNotFound, err)
	}
	if err := store.Put(ctx, "../escape", []byte("x"), "audio/mpeg"); err == nil {
		t.Fatalf("Put traversal: want error")
	}
}
