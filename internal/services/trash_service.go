package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"
)

// TrashService handles the trash bin for deleted files. Files are soft
// deleted into the trash and physically purged only on expiry, using the
// move/restore SQL functions so deletion stays atomic with the catalog.
type TrashService struct {
	db    *sql.DB
	files *FileService
}

func NewTrashService(db *sql.DB, files *FileService) *TrashService {
	return &TrashService{db: db, files: files}
}

// TrashItem represents a trashed file awaiting expiry or restore.
type TrashItem struct {
	ID               int        `json:"id"`
	FileID           string     `json:"file_id"`
	FileName         string     `json:"file_name"`
	SizeBytes        int64      `json:"size_bytes"`
	DeletedAt        time.Time  `json:"deleted_at"`
	DeletedByUserID  *int       `json:"deleted_by_user_id,omitempty"`
	DeleteReason     string     `json:"delete_reason,omitempty"`
	ExpiresAt        time.Time  `json:"expires_at"`
	RestoredAt       *time.Time `json:"restored_at,omitempty"`
	RestoredByUserID *int       `json:"restored_by_user_id,omitempty"`
}

// MoveToTrash soft deletes a file into the trash bin.
func (s *TrashService) MoveToTrash(ctx context.Context, fileID string, deletedByUserID *int, reason string) (int, error) {
	var trashID sql.NullInt32

	err := s.db.QueryRowContext(ctx,
		`SELECT move_file_to_trash($1, $2, $3)`,
		fileID, deletedByUserID, reason,
	).Scan(&trashID)
	if err != nil {
		return 0, fmt.Errorf("failed to move file to trash: %w", err)
	}

	if !trashID.Valid {
		return 0, fmt.Errorf("file not found or already in trash")
	}

	log.Printf("[Trash] Moved file %s to trash (trash_id: %d)", fileID, trashID.Int32)
	return int(trashID.Int32), nil
}

// RestoreFromTrash brings a trashed file back into the active catalog.
func (s *TrashService) RestoreFromTrash(ctx context.Context, trashID int, restoredByUserID *int) error {
	var success bool

	err := s.db.QueryRowContext(ctx,
		`SELECT restore_file_from_trash($1, $2)`,
		trashID, restoredByUserID,
	).Scan(&success)
	if err != nil {
		return fmt.Errorf("failed to restore from trash: %w", err)
	}

	if !success {
		return fmt.Errorf("restore failed: item not found in trash or already restored")
	}

	log.Printf("[Trash] Restored trash item #%d", trashID)
	return nil
}

// List returns active (non-restored, non-expired) trash items.
func (s *TrashService) List(ctx context.Context) ([]TrashItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.file_id, f.name, f.size_bytes, t.deleted_at, t.deleted_by_user_id,
		       COALESCE(t.delete_reason, ''), t.expires_at, t.restored_at, t.restored_by_user_id
		FROM file_trash t
		JOIN files f ON f.id = t.file_id
		WHERE t.restored_at IS NULL AND t.expires_at > NOW()
		ORDER BY t.deleted_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []TrashItem
	for rows.Next() {
		var item TrashItem
		if err := rows.Scan(&item.ID, &item.FileID, &item.FileName, &item.SizeBytes,
			&item.DeletedAt, &item.DeletedByUserID, &item.DeleteReason,
			&item.ExpiresAt, &item.RestoredAt, &item.RestoredByUserID); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Purge physically deletes one trashed file's copies and removes it from
// the catalog entirely.
func (s *TrashService) Purge(ctx context.Context, trashID int) error {
	var fileID string
	err := s.db.QueryRowContext(ctx,
		`SELECT file_id FROM file_trash WHERE id = $1 AND restored_at IS NULL`,
		trashID,
	).Scan(&fileID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("trash item #%d not found", trashID)
	}
	if err != nil {
		return err
	}

	if err := s.files.PurgeObjects(ctx, fileID); err != nil {
		return fmt.Errorf("purge storage objects: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM file_trash WHERE id = $1`, trashID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, fileID); err != nil {
		return err
	}

	log.Printf("[Trash] Purged trash item #%d (file %s)", trashID, fileID)
	return nil
}

// PurgeExpired removes all trash items past their expiry.
func (s *TrashService) PurgeExpired(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM file_trash WHERE restored_at IS NULL AND expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	purged := 0
	for _, id := range ids {
		if err := s.Purge(ctx, id); err != nil {
			log.Printf("[Trash] Failed to purge expired item #%d: %v", id, err)
			continue
		}
		purged++
	}
	return purged, nil
}
