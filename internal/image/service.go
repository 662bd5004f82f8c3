package image

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gallery/service/internal/policy"
	"github.com/gallery/service/internal/storage"
)

// allowedContentTypes is the set of MIME types uploads may declare.
var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// PresignRequest carries the caller-supplied metadata for a new upload.
type PresignRequest struct {
	ContentType string
	FileName    string
	Title       string
	Dimensions  *string
	FileSize    *int64
}

// PresignResult is the direct-write grant handed back to the caller.
type PresignResult struct {
	UploadURL string
	ImageID   string
}

// Service coordinates the two-phase upload: it issues time-limited
// direct-write grants against object storage and keeps each grant paired
// with a metadata record so the two never diverge.
type Service struct {
	store      Store
	objects    storage.Storage
	presignTTL time.Duration
}

// NewService creates an upload Service. presignTTL bounds how long an issued
// write grant stays valid.
func NewService(store Store, objects storage.Storage, presignTTL time.Duration) *Service {
	return &Service{store: store, objects: objects, presignTTL: presignTTL}
}

// Presign validates the request, creates a pending metadata record, and
// issues a presigned PUT URL scoped to exactly one storage key and content
// type. The record exists before the grant is returned; if either step fails
// the caller sees a plain error, never a partial result.
func (s *Service) Presign(ctx context.Context, owner string, req PresignRequest) (*PresignResult, error) {
	if req.FileName == "" {
		return nil, &ValidationError{Field: "fileName", Reason: "required"}
	}
	if req.ContentType == "" {
		return nil, &ValidationError{Field: "contentType", Reason: "required"}
	}
	if !allowedContentTypes[req.ContentType] {
		return nil, &ValidationError{Field: "contentType", Reason: "unsupported content type"}
	}

	imageID := uuid.NewString()
	key := fmt.Sprintf("uploads/%s/%s", imageID, sanitizeFileName(req.FileName))

	img := &Image{
		ImageID:          imageID,
		Owner:            owner,
		Title:            req.Title,
		OriginalFileName: req.FileName,
		Dimensions:       req.Dimensions,
		FileSize:         req.FileSize,
		StorageKey:       key,
		UploadTime:       time.Now().UTC(),
		Status:           StatusPending,
	}
	if err := s.store.Put(ctx, img); err != nil {
		return nil, fmt.Errorf("create image record: %w", err)
	}

	uploadURL, err := s.objects.PresignPut(ctx, key, req.ContentType, s.presignTTL)
	if err != nil {
		// The pending record stays behind; an unconfirmed record with no
		// object is a normal transient state.
		return nil, fmt.Errorf("issue upload grant: %w", err)
	}

	return &PresignResult{UploadURL: uploadURL, ImageID: imageID}, nil
}

// Confirm promotes a pending record to confirmed after the owner reports a
// completed direct write. Confirming an already-confirmed record is a no-op
// success; the public URL is computed once and never re-derived.
func (s *Service) Confirm(ctx context.Context, subject, imageID string) (*Image, error) {
	img, err := s.store.Get(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if img.Owner != subject {
		return nil, ErrForbidden
	}
	if img.Status == StatusConfirmed {
		return img, nil
	}

	publicURL := s.objects.PublicURL(img.StorageKey)
	if err := s.store.SetConfirmed(ctx, imageID, publicURL); err != nil {
		return nil, fmt.Errorf("confirm image %s: %w", imageID, err)
	}

	img.Status = StatusConfirmed
	img.PublicURL = publicURL
	return img, nil
}

// List returns the caller's own records, or every record when the caller
// holds the admin role, most recent upload first.
func (s *Service) List(ctx context.Context, subject string, groups []string) ([]Image, error) {
	var (
		items []Image
		err   error
	)
	if policy.HasRole(groups, policy.RoleAdmin) {
		items, err = s.store.ListAll(ctx)
	} else {
		items, err = s.store.ListByOwner(ctx, subject)
	}
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	if items == nil {
		items = []Image{}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].UploadTime.After(items[j].UploadTime)
	})
	return items, nil
}

// Delete removes the stored object and then the metadata record. Only the
// owner or an admin may delete. If the object removal fails the record is
// kept, so metadata never points at something we deliberately removed while
// claiming success.
func (s *Service) Delete(ctx context.Context, subject string, groups []string, imageID string) error {
	img, err := s.store.Get(ctx, imageID)
	if err != nil {
		return err
	}
	if !policy.CanManage(subject, groups, img.Owner) {
		return ErrForbidden
	}

	if err := s.objects.Delete(ctx, img.StorageKey); err != nil {
		return fmt.Errorf("delete object %s: %w", img.StorageKey, err)
	}
	if err := s.store.Delete(ctx, imageID); err != nil {
		return fmt.Errorf("delete image record %s: %w", imageID, err)
	}
	return nil
}

// sanitizeFileName strips path separators and control characters so the
// derived storage key cannot escape the upload prefix.
func sanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '/' || r == '\\' || r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" {
		return "file"
	}
	return out
}
