package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gnana997/propspec/pkg/props"
)

// Progress receives scan progress. OnFileDone is called from worker
// goroutines.
type Progress interface {
	OnDiscovered(files int)
	OnFileDone(result FileResult)
}

// Scan discovers component files under rootDir and extracts their props.
// progress may be nil.
func Scan(
	ctx context.Context,
	ext *props.Extractor,
	rootDir string,
	cfg ScanConfig,
	opts props.Options,
	progress Progress,
	logger *slog.Logger,
) (*ScanResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	totalStart := time.Now()
	stats := ScanStats{}

	// Phase 1: File Discovery
	discoveryStart := time.Now()
	files, err := DiscoverFiles(rootDir, cfg)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	stats.FilesDiscovered = len(files)
	stats.DiscoveryTimeMs = time.Since(discoveryStart).Milliseconds()

	logger.Info("discovery complete", "files", len(files), "ms", stats.DiscoveryTimeMs)

	var onDone func(FileResult)
	if progress != nil {
		progress.OnDiscovered(len(files))
		onDone = progress.OnFileDone
	}

	if len(files) == 0 {
		stats.TotalTimeMs = time.Since(totalStart).Milliseconds()
		return &ScanResult{Stats: stats}, nil
	}

	// Phase 2: Extraction
	extractionStart := time.Now()
	results := ScanFiles(ctx, ext, files, opts, cfg.Workers, onDone, logger)
	for _, r := range results {
		if r.Err != nil {
			stats.FilesFailed++
			continue
		}
		stats.FilesExtracted++
		stats.PropsExtracted += len(r.Props)
	}
	stats.ExtractionTimeMs = time.Since(extractionStart).Milliseconds()

	logger.Info("extraction complete",
		"extracted", stats.FilesExtracted, "failed", stats.FilesFailed, "props", stats.PropsExtracted,
		"ms", stats.ExtractionTimeMs)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats.TotalTimeMs = time.Since(totalStart).Milliseconds()

	return &ScanResult{
		Files: results,
		Stats: stats,
	}, nil
}
