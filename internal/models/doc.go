// Package models holds the console's entity types and their row mapping tables.
//
// JSON tags are the camelCase view names and must match the View names of each schema, so a
// PATCH body's keys can be used directly as a field mask.
package models

import "slices"

// covers reports whether a validation scoped to fields includes name. No fields means every field.
func covers(fields []string, name string) bool {
	return len(fields) == 0 || slices.Contains(fields, name)
}
