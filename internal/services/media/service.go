package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrUnsupportedContent = errors.New("unsupported content type")
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type Storage interface {
	PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Config struct {
	UploadTTL   time.Duration
	DownloadTTL time.Duration
}

type Service struct {
	storage Storage
	cfg     Config
	newKey  func() string
}

type UploadTicket struct {
	ObjectKey string
	UploadURL string
	ExpiresIn time.Duration
}

func NewService(storage Storage, cfg Config) *Service {
	if cfg.UploadTTL <= 0 {
		cfg.UploadTTL = signedURLTTL
	}
	if cfg.DownloadTTL <= 0 {
		cfg.DownloadTTL = signedURLTTL
	}
	return &Service{
		storage: storage,
		cfg:     cfg,
		newKey:  uuid.NewString,
	}
}

// PrepareMessageImageUpload issues a presigned PUT for a chat image. The
// object key is server-generated so clients cannot overwrite each other.
func (s *Service) PrepareMessageImageUpload(ctx context.Context, userID int64, contentType string) (UploadTicket, error) {
	if userID <= 0 {
		return UploadTicket{}, ErrValidation
	}
	if s.storage == nil {
		return UploadTicket{}, fmt.Errorf("media storage is nil")
	}

	ext, ok := allowedImageTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return UploadTicket{}, ErrUnsupportedContent
	}

	key := path.Join("messages", strconv.FormatInt(userID, 10), s.newKey()+ext)
	uploadURL, err := s.storage.PresignPut(ctx, key, s.cfg.UploadTTL)
	if err != nil {
		return UploadTicket{}, err
	}

	return UploadTicket{
		ObjectKey: key,
		UploadURL: uploadURL,
		ExpiresIn: s.cfg.UploadTTL,
	}, nil
}

func (s *Service) PresignGet(ctx context.Context, objectKey string) (string, error) {
	if objectKey == "" {
		return "", ErrValidation
	}
	if s.storage == nil {
		return "", fmt.Errorf("media storage is nil")
	}
	return s.storage.PresignGet(ctx, objectKey, s.cfg.DownloadTTL)
}
