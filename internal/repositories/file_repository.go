package repositories

import (
	"context"

	"tierfs-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FileRepository struct {
	pool *pgxpool.Pool
}

func NewFileRepository(pool *pgxpool.Pool) *FileRepository {
	return &FileRepository{pool: pool}
}

// Create inserts a new file record.
func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO files (id, name, size_bytes, content_type)
		VALUES ($1, $2, $3, $4)`,
		file.ID, file.Name, file.SizeBytes, file.ContentType,
	)
	return err
}

// FindByID returns a file record, including soft-deleted ones. The
// consistency checker needs to see trashed files too: their storage
// objects still exist until the trash is purged.
func (r *FileRepository) FindByID(ctx context.Context, id string) (*models.File, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, size_bytes, content_type, created_at, updated_at, deleted_at
		FROM files
		WHERE id = $1`, id)

	file := &models.File{}
	err := row.Scan(&file.ID, &file.Name, &file.SizeBytes, &file.ContentType,
		&file.CreatedAt, &file.UpdatedAt, &file.DeletedAt)
	if err != nil {
		return nil, err
	}
	return file, nil
}

// List returns active (non-deleted) files, newest first.
func (r *FileRepository) List(ctx context.Context, limit, offset int) ([]models.File, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, size_bytes, content_type, created_at, updated_at, deleted_at
		FROM files
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		var f models.File
		if err := rows.Scan(&f.ID, &f.Name, &f.SizeBytes, &f.ContentType,
			&f.CreatedAt, &f.UpdatedAt, &f.DeletedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// UpdateSize corrects the recorded size after an upload completes.
func (r *FileRepository) UpdateSize(ctx context.Context, id string, sizeBytes int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE files SET size_bytes = $2, updated_at = NOW() WHERE id = $1`,
		id, sizeBytes)
	return err
}
