package library

import "context"

// StaticOverrides is an OverrideSource backed by a fixed map, used for
// config-file overrides and in tests.
type StaticOverrides map[string]string

// Lookup implements OverrideSource.
func (s StaticOverrides) Lookup(_ context.Context, libraryID string) (string, bool, error) {
	text, ok := s[libraryID]
	return text, ok, nil
}
