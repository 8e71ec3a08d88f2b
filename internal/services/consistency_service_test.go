package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tierfs-backend/internal/models"
	"tierfs-backend/internal/storage"
)

type fakeFileLookup struct {
	files map[string]*models.File
	errs  map[string]error
}

func (f *fakeFileLookup) FindByID(ctx context.Context, id string) (*models.File, error) {
	if err, ok := f.errs[id]; ok {
		return nil, err
	}
	if file, ok := f.files[id]; ok {
		return file, nil
	}
	return nil, pgx.ErrNoRows
}

type fakeObjectCatalog struct {
	byType map[models.StorageType][]models.StorageObject

	sampled         bool
	requestedOffset int
}

func (f *fakeObjectCatalog) Page(ctx context.Context, storageType models.StorageType, limit, offset int) ([]models.StorageObject, error) {
	f.requestedOffset = offset
	objects := f.byType[storageType]
	if offset >= len(objects) {
		return nil, nil
	}
	end := offset + limit
	if end > len(objects) {
		end = len(objects)
	}
	return objects[offset:end], nil
}

func (f *fakeObjectCatalog) Sample(ctx context.Context, storageType models.StorageType, limit int) ([]models.StorageObject, error) {
	f.sampled = true
	return f.Page(ctx, storageType, limit, 0)
}

// fakeBackend holds object sizes by key; keys absent from sizes do not exist.
type fakeBackend struct {
	sizes    map[string]int64
	statErr  map[string]error
	existErr map[string]error
}

func (f *fakeBackend) Upload(ctx context.Context, key string, reader io.Reader, size int64) error {
	return errors.New("not implemented")
}

func (f *fakeBackend) Download(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	return nil, 0, errors.New("not implemented")
}

func (f *fakeBackend) Delete(ctx context.Context, key string) error {
	return errors.New("not implemented")
}

func (f *fakeBackend) Exists(ctx context.Context, key string) (bool, error) {
	if err, ok := f.existErr[key]; ok {
		return false, err
	}
	_, ok := f.sizes[key]
	return ok, nil
}

func (f *fakeBackend) Stat(ctx context.Context, key string) (*storage.Object, error) {
	if err, ok := f.statErr[key]; ok {
		return nil, err
	}
	size, ok := f.sizes[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return &storage.Object{Key: key, Size: size, ModTime: time.Now()}, nil
}

func (f *fakeBackend) Name() string { return "fake" }

func cacheObject(id int, fileID, key string) models.StorageObject {
	return models.StorageObject{
		ID:                 id,
		FileID:             fileID,
		ObjectKey:          key,
		StorageType:        models.StorageTypeCache,
		AvailabilityStatus: models.AvailabilityAvailable,
	}
}

func cacheType() *models.StorageType {
	t := models.StorageTypeCache
	return &t
}

func TestCheckConsistencyTaxonomy(t *testing.T) {
	// Four objects in one batch, one per failure class plus one clean.
	files := &fakeFileLookup{
		files: map[string]*models.File{
			"f2": {ID: "f2", Name: "report.pdf", SizeBytes: 100},
			"f3": {ID: "f3", Name: "video.mp4", SizeBytes: 100},
			"f4": {ID: "f4", Name: "notes.txt", SizeBytes: 42},
		},
	}
	catalog := &fakeObjectCatalog{byType: map[models.StorageType][]models.StorageObject{
		models.StorageTypeCache: {
			cacheObject(1, "f1", "files/f1/ghost.bin"),
			cacheObject(2, "f2", "files/f2/report.pdf"),
			cacheObject(3, "f3", "files/f3/video.mp4"),
			cacheObject(4, "f4", "files/f4/notes.txt"),
		},
	}}
	backend := &fakeBackend{sizes: map[string]int64{
		"files/f1/ghost.bin": 10,
		"files/f3/video.mp4": 150,
		"files/f4/notes.txt": 42,
	}}
	service := NewConsistencyService(files, catalog, map[models.StorageType]storage.Backend{
		models.StorageTypeCache: backend,
	})

	result, err := service.CheckConsistency(context.Background(), CheckParams{
		StorageType: cacheType(),
	})
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalChecked)
	assert.Equal(t, 3, result.Inconsistencies)
	require.Len(t, result.Issues, 3)

	orphan := result.Issues[0]
	assert.Equal(t, models.IssueOrphan, orphan.IssueType)
	assert.Equal(t, "f1", orphan.FileID)
	assert.Equal(t, "Unknown", orphan.FileName)
	assert.Nil(t, orphan.DBSize)
	assert.Nil(t, orphan.ActualSize)
	require.NotNil(t, orphan.StorageObject)
	assert.Equal(t, "files/f1/ghost.bin", orphan.StorageObject.ObjectKey)

	dbOnly := result.Issues[1]
	assert.Equal(t, models.IssueDBOnly, dbOnly.IssueType)
	assert.Equal(t, "f2", dbOnly.FileID)
	assert.Equal(t, "report.pdf", dbOnly.FileName)

	mismatch := result.Issues[2]
	assert.Equal(t, models.IssueSizeMismatch, mismatch.IssueType)
	assert.Equal(t, "f3", mismatch.FileID)
	require.NotNil(t, mismatch.DBSize)
	require.NotNil(t, mismatch.ActualSize)
	assert.Equal(t, int64(100), *mismatch.DBSize)
	assert.Equal(t, int64(150), *mismatch.ActualSize)
}

func TestCheckConsistencyErrorDoesNotAbortBatch(t *testing.T) {
	files := &fakeFileLookup{
		files: map[string]*models.File{
			"f1": {ID: "f1", Name: "a.bin", SizeBytes: 10},
			"f2": {ID: "f2", Name: "b.bin", SizeBytes: 20},
		},
	}
	catalog := &fakeObjectCatalog{byType: map[models.StorageType][]models.StorageObject{
		models.StorageTypeCache: {
			cacheObject(1, "f1", "files/f1/a.bin"),
			cacheObject(2, "f2", "files/f2/b.bin"),
		},
	}}
	backend := &fakeBackend{
		sizes:    map[string]int64{"files/f1/a.bin": 10, "files/f2/b.bin": 20},
		existErr: map[string]error{"files/f1/a.bin": errors.New("connection reset")},
	}
	service := NewConsistencyService(files, catalog, map[models.StorageType]storage.Backend{
		models.StorageTypeCache: backend,
	})

	result, err := service.CheckConsistency(context.Background(), CheckParams{
		StorageType: cacheType(),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalChecked)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, models.IssueError, result.Issues[0].IssueType)
	assert.Equal(t, "f1", result.Issues[0].FileID)
	assert.Contains(t, result.Issues[0].Description, "connection reset")
}

func TestCheckConsistencyFileLookupFailure(t *testing.T) {
	files := &fakeFileLookup{
		errs: map[string]error{"f1": errors.New("db timeout")},
	}
	catalog := &fakeObjectCatalog{byType: map[models.StorageType][]models.StorageObject{
		models.StorageTypeCache: {cacheObject(1, "f1", "files/f1/a.bin")},
	}}
	service := NewConsistencyService(files, catalog, map[models.StorageType]storage.Backend{
		models.StorageTypeCache: &fakeBackend{},
	})

	result, err := service.CheckConsistency(context.Background(), CheckParams{
		StorageType: cacheType(),
	})
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, models.IssueError, result.Issues[0].IssueType)
	assert.Equal(t, "Unknown", result.Issues[0].FileName)
	assert.Contains(t, result.Issues[0].Description, "db timeout")
}

func TestCheckConsistencyMissingBackend(t *testing.T) {
	files := &fakeFileLookup{
		files: map[string]*models.File{"f1": {ID: "f1", Name: "a.bin", SizeBytes: 10}},
	}
	catalog := &fakeObjectCatalog{byType: map[models.StorageType][]models.StorageObject{
		models.StorageTypeNAS: {{
			ID: 1, FileID: "f1", ObjectKey: "files/f1/a.bin",
			StorageType: models.StorageTypeNAS, AvailabilityStatus: models.AvailabilityAvailable,
		}},
	}}
	nasType := models.StorageTypeNAS
	service := NewConsistencyService(files, catalog, map[models.StorageType]storage.Backend{
		models.StorageTypeCache: &fakeBackend{},
	})

	result, err := service.CheckConsistency(context.Background(), CheckParams{StorageType: &nasType})
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, models.IssueError, result.Issues[0].IssueType)
	assert.Contains(t, result.Issues[0].Description, "no backend configured")
}

func TestCheckConsistencyChecksBothTiersByDefault(t *testing.T) {
	files := &fakeFileLookup{
		files: map[string]*models.File{"f1": {ID: "f1", Name: "a.bin", SizeBytes: 10}},
	}
	catalog := &fakeObjectCatalog{byType: map[models.StorageType][]models.StorageObject{
		models.StorageTypeCache: {cacheObject(1, "f1", "files/f1/a.bin")},
		models.StorageTypeNAS: {{
			ID: 2, FileID: "f1", ObjectKey: "files/f1/a.bin",
			StorageType: models.StorageTypeNAS, AvailabilityStatus: models.AvailabilityAvailable,
		}},
	}}
	backend := &fakeBackend{sizes: map[string]int64{"files/f1/a.bin": 10}}
	service := NewConsistencyService(files, catalog, map[models.StorageType]storage.Backend{
		models.StorageTypeCache: backend,
		models.StorageTypeNAS:   backend,
	})

	result, err := service.CheckConsistency(context.Background(), CheckParams{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalChecked)
	assert.Empty(t, result.Issues)
	assert.Equal(t, 0, result.Inconsistencies)
}

func TestCheckConsistencyInvalidStorageType(t *testing.T) {
	service := NewConsistencyService(&fakeFileLookup{}, &fakeObjectCatalog{}, nil)
	bad := models.StorageType("GLACIER")

	_, err := service.CheckConsistency(context.Background(), CheckParams{StorageType: &bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GLACIER")
}

func TestCheckConsistencySampleIgnoresOffset(t *testing.T) {
	files := &fakeFileLookup{
		files: map[string]*models.File{"f1": {ID: "f1", Name: "a.bin", SizeBytes: 10}},
	}
	catalog := &fakeObjectCatalog{byType: map[models.StorageType][]models.StorageObject{
		models.StorageTypeCache: {cacheObject(1, "f1", "files/f1/a.bin")},
	}}
	backend := &fakeBackend{sizes: map[string]int64{"files/f1/a.bin": 10}}
	service := NewConsistencyService(files, catalog, map[models.StorageType]storage.Backend{
		models.StorageTypeCache: backend,
	})

	result, err := service.CheckConsistency(context.Background(), CheckParams{
		StorageType: cacheType(),
		Sample:      true,
		Offset:      50,
	})
	require.NoError(t, err)

	assert.True(t, catalog.sampled)
	assert.Equal(t, 0, catalog.requestedOffset)
	assert.Equal(t, 1, result.TotalChecked)
}
