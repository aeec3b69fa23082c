package ports

import "context"

// HistoryStore persists the set of candidate ids already shown to each user.
type HistoryStore interface {
	// ReadHistory returns every candidate id shown to the user.
	// An unknown user has an empty history, not an error.
	ReadHistory(ctx context.Context, userID int64) ([]int64, error)

	// AppendHistory merges ids into the user's history.
	// Re-appending an id that is already present is a no-op.
	AppendHistory(ctx context.Context, userID int64, ids []int64) error

	// Provisioned reports whether the backing storage exists.
	Provisioned(ctx context.Context) (bool, error)

	// Provision creates the backing storage. It is idempotent.
	Provision(ctx context.Context) error
}

// HistoryLister is implemented by stores that can enumerate known users.
type HistoryLister interface {
	ListUsers(ctx context.Context) ([]int64, error)
}
