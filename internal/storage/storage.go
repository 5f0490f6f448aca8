// internal/storage/storage.go
// Private object storage for voice notes

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
)

var (
	ErrObjectNotFound = apperr.New(apperr.KindNotFound, "object_not_found", "file not found")
	ErrStorageFailed  = apperr.New(apperr.KindUpstream, "storage_failed", "file storage is unavailable")
)

// ObjectStore stores private blobs. There are no public URLs; reads go through the API.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}

// VoiceNoteKey builds voice-notes/{user_id}-q{n}-{ts}{ext}
func VoiceNoteKey(userID int64, questionIndex int, at time.Time, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("voice-notes/%d-q%d-%d%s", userID, questionIndex, at.UnixMilli(), strings.ToLower(ext))
}

// ExtensionForMime picks a file extension for an audio MIME type
func ExtensionForMime(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0])) {
	case "audio/mpeg":
		return ".mp3"
	case "audio/mp4", "audio/x-m4a":
		return ".m4a"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/webm":
		return ".webm"
	case "audio/ogg":
		return ".ogg"
	case "audio/opus":
		return ".opus"
	case "audio/x-caf":
		return ".caf"
	default:
		return ""
	}
}

// S3Store keeps objects in a private S3 bucket
type S3Store struct {
	client *s3.S3
	bucket string
}

// NewS3Store creates an S3-backed store
func NewS3Store(sess *session.Session, bucket string) *S3Store {
	return &S3Store{client: s3.New(sess), bucket: bucket}
}

func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		ACL:           aws.String(s3.ObjectCannedACLPrivate),
	})
	if err != nil {
		return ErrStorageFailed.WithCause(fmt.Errorf("put %s: %w", key, err))
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, "", ErrObjectNotFound
		}
		return nil, "", ErrStorageFailed.WithCause(err)
	}
	return out.Body, aws.StringValue(out.ContentType), nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return ErrStorageFailed.WithCause(err)
	}
	return nil
}

// LocalStore writes objects under a directory; used in development when USE_S3 is off
type LocalStore struct {
	dir string
}

// NewLocalStore creates the directory if needed
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (l *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if strings.Contains(key, "..") {
		return "", apperr.Invalid("invalid_key", "invalid object key")
	}
	return filepath.Join(l.dir, clean), nil
}

func (l *LocalStore) Put(_ context.Context, key string, body []byte, contentType string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return ErrStorageFailed.WithCause(err)
	}
	if err := os.WriteFile(p, body, 0o640); err != nil {
		return ErrStorageFailed.WithCause(err)
	}
	return os.WriteFile(p+".type", []byte(contentType), 0o640)
}

func (l *LocalStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	p, err := l.path(key)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(p)
	if os.IsNotExist(err) {
		return nil, "", ErrObjectNotFound
	}
	if err != nil {
		return nil, "", ErrStorageFailed.WithCause(err)
	}
	ct, _ := os.ReadFile(p + ".type")
	return f, string(ct), nil
}

func (l *LocalStore) Delete(_ context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	_ = os.Remove(p + ".type")
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return ErrStorageFailed.WithCause(err)
	}
	return nil
}
