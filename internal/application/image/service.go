package image

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/go-market-api/internal/domain"
	"github.com/go-market-api/internal/pkg/id"
)

const presignTTL = 15 * time.Minute

type UploadInput struct {
	ListingID   string
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
	UploaderID  string
}

type Service interface {
	Upload(ctx context.Context, input UploadInput) (*domain.Image, error)
	URL(ctx context.Context, imageID string) (string, error)
	ListByListing(ctx context.Context, listingID string) ([]domain.Image, error)
	Delete(ctx context.Context, imageID, requesterID string, isAdmin bool) error
}

type imageStore interface {
	Put(ctx context.Context, img *domain.Image) error
	Get(ctx context.Context, imageID string) (*domain.Image, error)
	ListByListing(ctx context.Context, listingID string) ([]domain.Image, error)
	SoftDelete(ctx context.Context, imageID string) error
}

type listingStore interface {
	Get(ctx context.Context, listingID string) (*domain.Listing, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	repo        imageStore
	listingRepo listingStore
	objects     objectStore
}

type ServiceDeps struct {
	ImageRepo   imageStore
	ListingRepo listingStore
	ObjectStore objectStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:        deps.ImageRepo,
		listingRepo: deps.ListingRepo,
		objects:     deps.ObjectStore,
	}
}

// Upload stores a listing photo in S3 and records it. Only the seller may
// attach photos to a listing.
func (s *service) Upload(ctx context.Context, input UploadInput) (*domain.Image, error) {
	l, err := s.listingRepo.Get(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}
	if l.SellerID != input.UploaderID {
		return nil, fmt.Errorf("only the seller may add listing images: %w", domain.ErrForbidden)
	}
	if !strings.HasPrefix(input.ContentType, "image/") {
		return nil, fmt.Errorf("only image uploads are accepted: %w", domain.ErrBadRequest)
	}

	key := fmt.Sprintf("listings/%s/%s", input.ListingID, sanitizeFilename(input.Filename))
	hasher := sha256.New()
	tee := io.TeeReader(input.Reader, hasher)
	if _, err := s.objects.Upload(ctx, key, tee, input.ContentType); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	img := &domain.Image{
		ImageID:          id.New(),
		ListingID:        input.ListingID,
		Object:           key,
		Size:             input.Size,
		Type:             input.ContentType,
		Hash:             hex.EncodeToString(hasher.Sum(nil)),
		UploadedByUserID: input.UploaderID,
		Enable:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Put(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

// URL returns a short-lived presigned GET URL for the image object.
func (s *service) URL(ctx context.Context, imageID string) (string, error) {
	img, err := s.repo.Get(ctx, imageID)
	if err != nil {
		return "", err
	}
	if !img.Enable {
		return "", fmt.Errorf("image not found: %w", domain.ErrNotFound)
	}
	return s.objects.PresignedURL(ctx, img.Object, presignTTL)
}

func (s *service) ListByListing(ctx context.Context, listingID string) ([]domain.Image, error) {
	return s.repo.ListByListing(ctx, listingID)
}

func (s *service) Delete(ctx context.Context, imageID, requesterID string, isAdmin bool) error {
	img, err := s.repo.Get(ctx, imageID)
	if err != nil {
		return err
	}
	if !img.Enable {
		return fmt.Errorf("image not found: %w", domain.ErrNotFound)
	}
	if img.UploadedByUserID != requesterID && !isAdmin {
		return fmt.Errorf("access denied: %w", domain.ErrForbidden)
	}
	if err := s.objects.Delete(ctx, img.Object); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, imageID)
}

// sanitizeFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) to prevent path traversal in S3 keys.
func sanitizeFilename(name string) string {
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." {
		return result
	}
	return "_"
}
