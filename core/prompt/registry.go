package prompt

import (
	"fmt"
	"sort"
	"sync"
)

// FragmentRegistry is an immutable keyed store of instruction fragments.
// It is populated once at construction and safe for unsynchronized concurrent
// reads; only the lazily memoized token estimates are guarded by a mutex.
type FragmentRegistry struct {
	fragments map[string]Fragment

	estimateMu sync.Mutex
	estimates  map[string]int
}

// NewFragmentRegistry builds a registry from the given fragments. Duplicate
// ids are a construction error.
func NewFragmentRegistry(fragments []Fragment) (*FragmentRegistry, error) {
	if len(fragments) == 0 {
		return nil, fmt.Errorf("fragment registry: %w", ErrEmptyRegistry)
	}

	byID := make(map[string]Fragment, len(fragments))
	for _, f := range fragments {
		if f.ID == "" {
			return nil, fmt.Errorf("fragment registry: fragment with empty id")
		}
		if _, exists := byID[f.ID]; exists {
			return nil, fmt.Errorf("fragment registry: %w: %s", ErrDuplicateID, f.ID)
		}
		byID[f.ID] = f
	}

	return &FragmentRegistry{
		fragments: byID,
		estimates: make(map[string]int, len(fragments)),
	}, nil
}

// Get returns the fragment for id or ErrFragmentNotFound.
func (r *FragmentRegistry) Get(id string) (Fragment, error) {
	f, ok := r.fragments[id]
	if !ok {
		return Fragment{}, fmt.Errorf("%w: %s", ErrFragmentNotFound, id)
	}
	return f, nil
}

// GetMany resolves ids in order, silently omitting any that do not resolve.
// Callers that need per-id failure use Get.
func (r *FragmentRegistry) GetMany(ids []string) []Fragment {
	result := make([]Fragment, 0, len(ids))
	for _, id := range ids {
		if f, ok := r.fragments[id]; ok {
			result = append(result, f)
		}
	}
	return result
}

// TokenEstimate returns the memoized token estimate for a fragment, computing
// it on first use. Content never changes after load, so the memo needs no
// invalidation.
func (r *FragmentRegistry) TokenEstimate(id string) (int, error) {
	f, ok := r.fragments[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrFragmentNotFound, id)
	}

	r.estimateMu.Lock()
	defer r.estimateMu.Unlock()

	if est, ok := r.estimates[id]; ok {
		return est, nil
	}
	est := estimateTokens(f.Content)
	r.estimates[id] = est
	return est, nil
}

// Len returns the number of fragments in the registry.
func (r *FragmentRegistry) Len() int {
	return len(r.fragments)
}

// IDs returns all fragment ids in sorted order.
func (r *FragmentRegistry) IDs() []string {
	ids := make([]string, 0, len(r.fragments))
	for id := range r.fragments {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
