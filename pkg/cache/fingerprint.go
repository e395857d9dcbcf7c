package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/vjranagit/apmfetch/pkg/types"
)

// Fingerprint generates a deterministic cache key from a query spec. Every
// field that affects the result participates: metric names, value names,
// period, and the numeric time bounds. The same function serves both the
// whole-range key and per-chunk keys (callers substitute the chunk bounds
// via QuerySpec.SubRange).
func Fingerprint(spec types.QuerySpec) string {
	data, _ := json.Marshal(map[string]interface{}{
		"metrics": spec.Metrics,
		"values":  spec.Values,
		"period":  int64(spec.Period.Seconds()),
		"start":   spec.Start.Unix(),
		"end":     spec.End.Unix(),
	})

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}
