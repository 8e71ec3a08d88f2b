package services

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"tierfs-backend/internal/models"
	"tierfs-backend/internal/repositories"
	"tierfs-backend/internal/storage"
)

// FileService owns the file catalog: uploads land on the cache tier and are
// replicated to the NAS by the sync worker; downloads fall back across tiers.
type FileService struct {
	files   *repositories.FileRepository
	objects *repositories.StorageObjectRepository
	cache   storage.Backend
	nas     storage.Backend // nil when the NAS tier is not configured
}

func NewFileService(
	files *repositories.FileRepository,
	objects *repositories.StorageObjectRepository,
	cache storage.Backend,
	nas storage.Backend,
) *FileService {
	return &FileService{
		files:   files,
		objects: objects,
		cache:   cache,
		nas:     nas,
	}
}

// Upload stores content on the cache tier and records the file plus its
// cache storage object. NAS replication happens asynchronously.
func (s *FileService) Upload(ctx context.Context, name, contentType string, reader io.Reader, size int64) (*models.File, error) {
	file := &models.File{
		ID:          uuid.NewString(),
		Name:        name,
		SizeBytes:   size,
		ContentType: contentType,
	}
	objectKey := fmt.Sprintf("files/%s/%s", file.ID, name)

	if err := s.cache.Upload(ctx, objectKey, reader, size); err != nil {
		return nil, fmt.Errorf("upload to cache: %w", err)
	}

	if err := s.files.Create(ctx, file); err != nil {
		// Best effort: don't leave an unrecorded object behind.
		s.cache.Delete(ctx, objectKey)
		return nil, fmt.Errorf("create file record: %w", err)
	}

	obj := &models.StorageObject{
		FileID:             file.ID,
		ObjectKey:          objectKey,
		StorageType:        models.StorageTypeCache,
		AvailabilityStatus: models.AvailabilityAvailable,
	}
	if err := s.objects.Create(ctx, obj); err != nil {
		return nil, fmt.Errorf("create storage object record: %w", err)
	}

	log.Printf("[Files] Uploaded %s (%d bytes) as %s", name, size, file.ID)
	return file, nil
}

// Download streams a file's content, preferring the cache tier and falling
// back to the NAS copy.
func (s *FileService) Download(ctx context.Context, fileID string) (io.ReadCloser, int64, *models.File, error) {
	file, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		return nil, 0, nil, err
	}

	objects, err := s.objects.FindByFileID(ctx, fileID)
	if err != nil {
		return nil, 0, nil, err
	}

	var lastErr error
	for _, tier := range []models.StorageType{models.StorageTypeCache, models.StorageTypeNAS} {
		backend := s.backendFor(tier)
		if backend == nil {
			continue
		}
		for _, obj := range objects {
			if obj.StorageType != tier || obj.AvailabilityStatus != models.AvailabilityAvailable {
				continue
			}
			reader, size, err := backend.Download(ctx, obj.ObjectKey)
			if err == nil {
				return reader, size, file, nil
			}
			lastErr = err
		}
	}

	if lastErr != nil {
		return nil, 0, nil, fmt.Errorf("no tier could serve file %s: %w", fileID, lastErr)
	}
	return nil, 0, nil, fmt.Errorf("no available copies of file %s", fileID)
}

// List returns the active file catalog.
func (s *FileService) List(ctx context.Context, limit, offset int) ([]models.File, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.files.List(ctx, limit, offset)
}

// PurgeObjects physically deletes all copies of a file and drops their
// catalog rows. Called when a trashed file expires or is purged by hand.
func (s *FileService) PurgeObjects(ctx context.Context, fileID string) error {
	objects, err := s.objects.FindByFileID(ctx, fileID)
	if err != nil {
		return err
	}

	for _, obj := range objects {
		backend := s.backendFor(obj.StorageType)
		if backend == nil {
			continue
		}
		if err := backend.Delete(ctx, obj.ObjectKey); err != nil {
			log.Printf("[Files] Failed to delete %s from %s: %v", obj.ObjectKey, obj.StorageType, err)
		}
	}

	return s.objects.DeleteByFileID(ctx, fileID)
}

func (s *FileService) backendFor(t models.StorageType) storage.Backend {
	switch t {
	case models.StorageTypeCache:
		return s.cache
	case models.StorageTypeNAS:
		return s.nas
	default:
		return nil
	}
}
