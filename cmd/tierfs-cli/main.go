// Command tierfs-cli runs storage health checks from the command line,
// without going through the API server.
//
//	tierfs-cli probe
//	tierfs-cli consistency [-storage-type CACHE|NAS] [-limit N] [-offset N] [-sample]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"tierfs-backend/internal/config"
	"tierfs-backend/internal/db"
	"tierfs-backend/internal/models"
	"tierfs-backend/internal/nas"
	"tierfs-backend/internal/repositories"
	"tierfs-backend/internal/services"
	"tierfs-backend/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "probe":
		runProbe()
	case "consistency":
		runConsistency(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tierfs-cli probe | consistency [flags]")
	os.Exit(2)
}

func runProbe() {
	config.Load()
	probe := nas.NewProbe(config.MountPath)
	result := probe.CheckHealth(context.Background())
	printJSON(result)
	if result.Status == nas.StatusUnhealthy {
		os.Exit(1)
	}
}

func runConsistency(args []string) {
	fs := flag.NewFlagSet("consistency", flag.ExitOnError)
	storageType := fs.String("storage-type", "", "restrict to one tier (CACHE or NAS)")
	limit := fs.Int("limit", 100, "number of storage objects to check")
	offset := fs.Int("offset", 0, "page offset")
	sample := fs.Bool("sample", false, "check a random sample instead of a page")
	fs.Parse(args)

	cfg := config.Load()
	pool := db.Connect(cfg)
	defer pool.Close()

	backends := map[models.StorageType]storage.Backend{
		models.StorageTypeCache: storage.NewLocalBackend(cfg.Cache.Dir, "cache"),
	}
	if cfg.NAS.Enabled {
		nasBackend, err := storage.NewS3Backend(context.Background(),
			cfg.NAS.Endpoint, cfg.NAS.AccessKey, cfg.NAS.SecretKey,
			cfg.NAS.Bucket, "", "nas")
		if err != nil {
			log.Fatalf("Failed to configure NAS backend: %v", err)
		}
		backends[models.StorageTypeNAS] = nasBackend
	}

	service := services.NewConsistencyService(
		repositories.NewFileRepository(pool),
		repositories.NewStorageObjectRepository(pool),
		backends,
	)

	params := services.CheckParams{Limit: *limit, Offset: *offset, Sample: *sample}
	if *storageType != "" {
		st := models.StorageType(*storageType)
		params.StorageType = &st
	}

	result, err := service.CheckConsistency(context.Background(), params)
	if err != nil {
		log.Fatalf("Consistency check failed: %v", err)
	}
	printJSON(result)
	if result.Inconsistencies > 0 {
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
