package repositories

import (
	"context"

	"tierfs-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StorageObjectRepository struct {
	pool *pgxpool.Pool
}

func NewStorageObjectRepository(pool *pgxpool.Pool) *StorageObjectRepository {
	return &StorageObjectRepository{pool: pool}
}

// Create records one physical copy of a file in a storage tier.
func (r *StorageObjectRepository) Create(ctx context.Context, obj *models.StorageObject) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO storage_objects (file_id, object_key, storage_type, availability_status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		obj.FileID, obj.ObjectKey, obj.StorageType, obj.AvailabilityStatus,
	).Scan(&obj.ID, &obj.CreatedAt)
}

// Page returns a deterministic window of storage objects for one tier,
// ordered by id so repeated reconciliation runs walk the catalog stably.
func (r *StorageObjectRepository) Page(ctx context.Context, storageType models.StorageType, limit, offset int) ([]models.StorageObject, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, file_id, object_key, storage_type, availability_status, created_at
		FROM storage_objects
		WHERE storage_type = $1
		ORDER BY id ASC
		LIMIT $2 OFFSET $3`, storageType, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStorageObjects(rows)
}

// Sample returns up to limit random storage objects for one tier. Random
// sampling lets the reconciler spot-check a huge catalog without paging
// through all of it.
func (r *StorageObjectRepository) Sample(ctx context.Context, storageType models.StorageType, limit int) ([]models.StorageObject, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, file_id, object_key, storage_type, availability_status, created_at
		FROM storage_objects
		WHERE storage_type = $1
		ORDER BY random()
		LIMIT $2`, storageType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStorageObjects(rows)
}

// FindByFileID returns all physical copies of a file across tiers.
func (r *StorageObjectRepository) FindByFileID(ctx context.Context, fileID string) ([]models.StorageObject, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, file_id, object_key, storage_type, availability_status, created_at
		FROM storage_objects
		WHERE file_id = $1
		ORDER BY id ASC`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStorageObjects(rows)
}

// FindUnreplicated returns available cache objects whose file has no NAS
// copy yet. Feeds the NAS sync worker.
func (r *StorageObjectRepository) FindUnreplicated(ctx context.Context, limit int) ([]models.StorageObject, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.file_id, c.object_key, c.storage_type, c.availability_status, c.created_at
		FROM storage_objects c
		LEFT JOIN storage_objects n
			ON n.file_id = c.file_id AND n.storage_type = 'NAS'
		JOIN files f ON f.id = c.file_id
		WHERE c.storage_type = 'CACHE'
		  AND c.availability_status = 'available'
		  AND n.id IS NULL
		  AND f.deleted_at IS NULL
		ORDER BY c.id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStorageObjects(rows)
}

// UpdateAvailability transitions an object's availability status.
func (r *StorageObjectRepository) UpdateAvailability(ctx context.Context, id int, status string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE storage_objects SET availability_status = $2 WHERE id = $1`,
		id, status)
	return err
}

// DeleteByFileID removes all storage object rows for a file. Called when a
// purge physically removed the copies.
func (r *StorageObjectRepository) DeleteByFileID(ctx context.Context, fileID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM storage_objects WHERE file_id = $1`, fileID)
	return err
}

// CountByType returns catalog sizes per tier for the dashboard.
func (r *StorageObjectRepository) CountByType(ctx context.Context) (map[models.StorageType]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT storage_type, COUNT(*)
		FROM storage_objects
		GROUP BY storage_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.StorageType]int64)
	for rows.Next() {
		var t models.StorageType
		var n int64
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

func scanStorageObjects(rows pgx.Rows) ([]models.StorageObject, error) {
	var objects []models.StorageObject
	for rows.Next() {
		var o models.StorageObject
		if err := rows.Scan(&o.ID, &o.FileID, &o.ObjectKey, &o.StorageType,
			&o.AvailabilityStatus, &o.CreatedAt); err != nil {
			return nil, err
		}
		objects = append(objects, o)
	}
	return objects, rows.Err()
}
