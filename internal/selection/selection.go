// Package selection narrows the set of resolved paths that get emitted.
package selection

import (
	"strings"

	"github.com/phobologic/gfapath2fa/internal/model"
)

// SelectPaths returns the first maxPaths records.
// If maxPaths is <= 0 or >= len(records), all records are returned.
func SelectPaths(records []model.Record, maxPaths int) []model.Record {
	if maxPaths <= 0 || maxPaths >= len(records) {
		return records
	}
	return records[:maxPaths]
}

// FilterByName returns the records whose name contains substr
// (case-insensitive), keeping their order. An empty substr matches all.
func FilterByName(records []model.Record, substr string) []model.Record {
	if substr == "" {
		return records
	}
	lower := strings.ToLower(substr)

	var kept []model.Record
	for i := range records {
		if strings.Contains(strings.ToLower(records[i].Name), lower) {
			kept = append(kept, records[i])
		}
	}
	return kept
}
