package store

import (
	"context"

	"github.com/ecocampmy/campsite-chat-service/internal/models"
)

// Filter is the compiled search predicate built from extracted entities.
// Zero-value fields contribute no predicate; the three groups combine with
// logical AND.
type Filter struct {
	// State is matched by exact case-insensitive equality. Empty means no
	// state predicate; multi-state messages are redirected upstream and
	// never reach Search.
	State string
	// Attractions are matched as case-insensitive substrings of the tag
	// text, combined with AND when CombineAnd is set, otherwise OR.
	Attractions []string
	CombineAnd  bool
	// FreeOnly, when set, requires the fee text to contain "free admission".
	FreeOnly bool
}

// CampsiteStore is the read-only query interface the chatbot depends on.
// Implementations must return rows in a stable order; the Postgres store
// orders by ascending id (insertion order of the one-time import).
type CampsiteStore interface {
	ListAll(ctx context.Context) ([]models.CampSite, error)
	Search(ctx context.Context, f Filter, limit int) ([]models.CampSite, error)
}
