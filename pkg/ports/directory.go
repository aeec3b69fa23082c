package ports

import (
	"context"

	"github.com/aretw0/kinder/pkg/domain"
)

// Directory queries the external profile directory.
// Implementations report failures and never retry internally.
type Directory interface {
	// Search returns candidates matching the criteria, starting at offset.
	Search(ctx context.Context, criteria domain.Criteria, offset, count int) ([]domain.Candidate, error)

	// TopMedia returns up to count media items of the candidate, in directory order.
	TopMedia(ctx context.Context, candidateID int64, count int) ([]domain.MediaRef, error)
}
