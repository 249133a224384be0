package parser

import (
	"github.com/gnana997/propspec/pkg/util"
)

// getDefaultPoolSize returns the default pool size based on CPU count.
//
// This MUST match the scanner's worker count so that workers never block
// waiting for an available parser.
func getDefaultPoolSize() int {
	return util.GetOptimalPoolSize()
}

// getPoolSize returns override when positive, the CPU-based default otherwise.
func getPoolSize(override int) int {
	return util.GetOptimalPoolSizeWithOverride(override)
}
