package services

import (
	"context"
	"log"
	"sync"
	"time"

	"tierfs-backend/internal/models"
	"tierfs-backend/internal/repositories"
	"tierfs-backend/internal/storage"
)

// NASSyncService replicates cache-tier objects to the NAS tier in the
// background, so every file eventually has a durable copy.
type NASSyncService struct {
	objects *repositories.StorageObjectRepository
	cache   storage.Backend
	nas     storage.Backend

	workerCount  int
	pollInterval time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewNASSyncService(
	objects *repositories.StorageObjectRepository,
	cache storage.Backend,
	nas storage.Backend,
	workerCount int,
	pollInterval time.Duration,
) *NASSyncService {
	if workerCount <= 0 {
		workerCount = 3
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &NASSyncService{
		objects:      objects,
		cache:        cache,
		nas:          nas,
		workerCount:  workerCount,
		pollInterval: pollInterval,
		stopCh:       make(chan struct{}),
	}
}

// Start launches the replication workers.
func (s *NASSyncService) Start() {
	if s.nas == nil {
		log.Println("[NASSync] NAS tier not configured, replication disabled")
		return
	}

	log.Printf("[NASSync] Starting %d replication workers", s.workerCount)
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Stop gracefully shuts down all workers.
func (s *NASSyncService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
	log.Println("[NASSync] All workers stopped")
}

func (s *NASSyncService) worker(id int) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			log.Printf("[NASSync] Worker %d stopping", id)
			return
		case <-ticker.C:
			s.processOne(context.Background(), id)
		}
	}
}

func (s *NASSyncService) processOne(ctx context.Context, workerID int) {
	candidates, err := s.objects.FindUnreplicated(ctx, 1)
	if err != nil {
		log.Printf("[NASSync] Worker %d: fetch candidates: %v", workerID, err)
		return
	}
	if len(candidates) == 0 {
		return
	}
	obj := candidates[0]

	// Placeholder row first, so concurrent workers skip this file.
	nasObj := &models.StorageObject{
		FileID:             obj.FileID,
		ObjectKey:          obj.ObjectKey,
		StorageType:        models.StorageTypeNAS,
		AvailabilityStatus: models.AvailabilityPending,
	}
	if err := s.objects.Create(ctx, nasObj); err != nil {
		log.Printf("[NASSync] Worker %d: claim %s: %v", workerID, obj.ObjectKey, err)
		return
	}

	if err := storage.Copy(ctx, s.cache, obj.ObjectKey, s.nas, obj.ObjectKey); err != nil {
		log.Printf("[NASSync] Worker %d: replicate %s: %v", workerID, obj.ObjectKey, err)
		s.objects.UpdateAvailability(ctx, nasObj.ID, models.AvailabilityLost)
		return
	}

	if err := s.objects.UpdateAvailability(ctx, nasObj.ID, models.AvailabilityAvailable); err != nil {
		log.Printf("[NASSync] Worker %d: mark available %s: %v", workerID, obj.ObjectKey, err)
		return
	}

	log.Printf("[NASSync] Worker %d: replicated %s to NAS", workerID, obj.ObjectKey)
}
