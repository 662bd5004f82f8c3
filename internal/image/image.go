// Package image implements the two-phase upload protocol and the metadata
// records behind the gallery: presigned direct-write grants, pending/confirmed
// lifecycle, listing, and deletion.
package image

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of an asset record.
type Status string

const (
	// StatusPending marks a record whose object may not have been written yet.
	StatusPending Status = "pending"
	// StatusConfirmed marks a record whose owner reported a completed upload.
	StatusConfirmed Status = "confirmed"
)

// Image is the metadata record for one uploaded object.
type Image struct {
	ImageID          string    `json:"imageId"`
	Owner            string    `json:"owner"`
	Title            string    `json:"title"`
	OriginalFileName string    `json:"originalFileName"`
	Dimensions       *string   `json:"dimensions,omitempty"`
	FileSize         *int64    `json:"fileSize,omitempty"`
	StorageKey       string    `json:"storageKey"`
	PublicURL        string    `json:"publicUrl"`
	UploadTime       time.Time `json:"uploadTime"`
	Status           Status    `json:"status"`
}

// ErrNotFound is returned when no record exists for an image ID.
var ErrNotFound = errors.New("image not found")

// ErrForbidden is returned when the caller is neither the record owner nor
// an admin.
var ErrForbidden = errors.New("forbidden")

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Store is the metadata persistence contract: one record per asset, keyed by
// image ID. Implementations need not guarantee list ordering; the service
// sorts for presentation.
type Store interface {
	Put(ctx context.Context, img *Image) error
	Get(ctx context.Context, imageID string) (*Image, error)
	ListByOwner(ctx context.Context, owner string) ([]Image, error)
	ListAll(ctx context.Context) ([]Image, error)
	// SetConfirmed transitions the record to confirmed and records its public
	// URL. The transition happens at most once; a record already confirmed
	// keeps its original URL.
	SetConfirmed(ctx context.Context, imageID, publicURL string) error
	Delete(ctx context.Context, imageID string) error
}
