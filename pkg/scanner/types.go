package scanner

import "github.com/gnana997/propspec/pkg/props"

// ScanConfig configures file discovery and extraction.
type ScanConfig struct {
	// Include glob patterns for file matching.
	Include []string
	// Exclude glob patterns.
	Exclude []string
	// Workers is the number of concurrent extractions. Zero picks a size from
	// the CPU count.
	Workers int
}

// DefaultScanConfig returns the default configuration: every .svelte file
// outside dependency and build output directories.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Include: []string{
			"**/*.svelte",
		},
		Exclude: DefaultExcludes(),
	}
}

// DefaultExcludes returns the directories skipped by default.
func DefaultExcludes() []string {
	return []string{
		"node_modules/**",
		".svelte-kit/**",
		"dist/**",
		"build/**",
		".git/**",
		".propspec/**",
	}
}

// FileResult is the outcome of extracting one file.
type FileResult struct {
	Path  string       `json:"path"`
	Props []props.Prop `json:"props,omitempty"`
	// Err is set when the file could not be read, has no script block or
	// failed to parse. It does not stop the scan.
	Err error `json:"-"`
	// Error mirrors Err for JSON output.
	Error string `json:"error,omitempty"`
}

// ScanResult is the output of Scan.
type ScanResult struct {
	Files []FileResult
	Stats ScanStats
}

// ScanStats tracks scan performance metrics.
type ScanStats struct {
	FilesDiscovered  int   `json:"filesDiscovered"`
	FilesExtracted   int   `json:"filesExtracted"`
	FilesFailed      int   `json:"filesFailed"`
	PropsExtracted   int   `json:"propsExtracted"`
	DiscoveryTimeMs  int64 `json:"discoveryTimeMs"`
	ExtractionTimeMs int64 `json:"extractionTimeMs"`
	TotalTimeMs      int64 `json:"totalTimeMs"`
}
