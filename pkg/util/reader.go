package util

import (
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/edsrzf/mmap-go"
)

// SourceReader reads component source files.
//
// Errors from the underlying file system are returned unchanged so callers
// can test them with errors.Is(err, fs.ErrNotExist) and friends.
type SourceReader interface {
	ReadSource(path string) ([]byte, error)
}

// MmapReader reads files through a read-only memory mapping and copies the
// mapped bytes out before unmapping. When mmap fails it falls back to
// os.ReadFile.
//
// Safe for concurrent use.
type MmapReader struct {
	logger *slog.Logger

	reads        atomic.Int64
	mmapFailures atomic.Int64
}

// ReaderStats tracks reader activity.
type ReaderStats struct {
	Reads        int64
	MmapFailures int64
}

// NewMmapReader creates a reader. A nil logger uses slog.Default().
func NewMmapReader(logger *slog.Logger) *MmapReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &MmapReader{logger: logger}
}

// ReadSource returns the full contents of path.
func (r *MmapReader) ReadSource(path string) ([]byte, error) {
	r.reads.Add(1)

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		return []byte{}, nil
	}

	mapped, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		r.mmapFailures.Add(1)
		r.logger.Warn("mmap failed, using fallback",
			"file", path,
			"size", stat.Size(),
			"error", err)
		return os.ReadFile(path)
	}

	data := make([]byte, len(mapped))
	copy(data, mapped)

	if err := mapped.Unmap(); err != nil {
		r.logger.Warn("failed to unmap file", "file", path, "error", err)
	}

	return data, nil
}

// Stats returns a snapshot of reader counters.
func (r *MmapReader) Stats() ReaderStats {
	return ReaderStats{
		Reads:        r.reads.Load(),
		MmapFailures: r.mmapFailures.Load(),
	}
}
