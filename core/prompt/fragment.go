package prompt

// FragmentTier controls who may edit a fragment in the admin surface.
// It is metadata only and has no effect on assembly.
type FragmentTier int

const (
	// TierCore fragments are edited only by the platform team.
	TierCore FragmentTier = 1

	// TierGuarded fragments are edited by admins with review.
	TierGuarded FragmentTier = 2

	// TierOpen fragments are freely editable.
	TierOpen FragmentTier = 3
)

// Fragment is a reusable unit of instruction text. Fragments are immutable
// once loaded into a registry.
type Fragment struct {
	ID      string
	Name    string
	Tier    FragmentTier
	Content string
}

// estimateTokens derives a token estimate from content length, one token per
// four bytes rounded up, matching the provider-side character counter. The
// estimate is never stored independently of the content it was derived from.
func estimateTokens(content string) int {
	return (len(content) + 3) / 4
}
