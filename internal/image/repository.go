package image

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the Postgres-backed Store implementation. One row per asset,
// image_id primary key.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const imageColumns = `image_id, owner, title, original_file_name, dimensions,
	file_size, storage_key, public_url, upload_time, status`

// Put inserts a new asset record.
func (r *Repository) Put(ctx context.Context, img *Image) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO images
		   (image_id, owner, title, original_file_name, dimensions,
		    file_size, storage_key, public_url, upload_time, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		img.ImageID, img.Owner, img.Title, img.OriginalFileName, img.Dimensions,
		img.FileSize, img.StorageKey, img.PublicURL, img.UploadTime, img.Status,
	)
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

// Get fetches a record by image ID.
func (r *Repository) Get(ctx context.Context, imageID string) (*Image, error) {
	img := &Image{}
	err := r.db.QueryRow(ctx,
		`SELECT `+imageColumns+` FROM images WHERE image_id = $1`,
		imageID,
	).Scan(&img.ImageID, &img.Owner, &img.Title, &img.OriginalFileName,
		&img.Dimensions, &img.FileSize, &img.StorageKey, &img.PublicURL,
		&img.UploadTime, &img.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get image: %w", err)
	}
	return img, nil
}

// ListByOwner returns all records owned by the given subject.
func (r *Repository) ListByOwner(ctx context.Context, owner string) ([]Image, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+imageColumns+` FROM images WHERE owner = $1`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("list images by owner: %w", err)
	}
	defer rows.Close()
	return scanImages(rows)
}

// ListAll returns every record in the table.
func (r *Repository) ListAll(ctx context.Context) ([]Image, error) {
	rows, err := r.db.Query(ctx, `SELECT `+imageColumns+` FROM images`)
	if err != nil {
		return nil, fmt.Errorf("list all images: %w", err)
	}
	defer rows.Close()
	return scanImages(rows)
}

// SetConfirmed transitions the record to confirmed, keeping the first public
// URL written. The status guard makes concurrent confirms of the same ID
// settle on a single URL.
func (r *Repository) SetConfirmed(ctx context.Context, imageID, publicURL string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE images SET status = $2, public_url = $3
		 WHERE image_id = $1 AND status <> $2`,
		imageID, StatusConfirmed, publicURL,
	)
	if err != nil {
		return fmt.Errorf("confirm image: %w", err)
	}
	return nil
}

// Delete removes the record. Deleting a missing record is not an error.
func (r *Repository) Delete(ctx context.Context, imageID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM images WHERE image_id = $1`, imageID)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

func scanImages(rows pgx.Rows) ([]Image, error) {
	items := []Image{}
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ImageID, &img.Owner, &img.Title,
			&img.OriginalFileName, &img.Dimensions, &img.FileSize,
			&img.StorageKey, &img.PublicURL, &img.UploadTime, &img.Status); err != nil {
			return nil, fmt.Errorf("scan image row: %w", err)
		}
		items = append(items, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate image rows: %w", err)
	}
	return items, nil
}
