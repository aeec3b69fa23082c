package memory

import (
	"context"
	"sync"

	"github.com/aretw0/kinder/pkg/domain"
)

// SearchCall records the arguments of a Directory.Search invocation.
type SearchCall struct {
	Criteria domain.Criteria
	Offset   int
	Count    int
}

// Directory implements ports.Directory over a fixed list of profiles.
// Search ignores the criteria and pages through the list, which makes it
// suitable for offline chat sessions and for scripting pipeline tests.
type Directory struct {
	mu         sync.Mutex
	profiles   []domain.Candidate
	media      map[int64][]domain.MediaRef
	searchErr  error
	mediaErr   error
	searches   []SearchCall
	mediaCalls int
}

// NewDirectory creates a directory serving profiles in the given order.
func NewDirectory(profiles []domain.Candidate, media map[int64][]domain.MediaRef) *Directory {
	if media == nil {
		media = make(map[int64][]domain.MediaRef)
	}
	return &Directory{
		profiles: append([]domain.Candidate(nil), profiles...),
		media:    media,
	}
}

// NewSampleDirectory creates a directory with n public profiles numbered from 1,
// every third one private, each with a few photos of varying popularity.
func NewSampleDirectory(n int) *Directory {
	profiles := make([]domain.Candidate, 0, n)
	media := make(map[int64][]domain.MediaRef, n)
	for i := 1; i <= n; i++ {
		id := int64(i)
		profiles = append(profiles, domain.Candidate{ID: id, IsPrivate: i%3 == 0})
		for j := 1; j <= 4; j++ {
			media[id] = append(media[id], domain.MediaRef{
				OwnerID:  id,
				ID:       int64(j),
				Likes:    (i*7 + j*13) % 50,
				Comments: j % 3,
			})
		}
	}
	return NewDirectory(profiles, media)
}

// SetSearchError makes every following Search fail with err (nil restores normal behavior).
func (d *Directory) SetSearchError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.searchErr = err
}

// SetMediaError makes every following TopMedia fail with err.
func (d *Directory) SetMediaError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mediaErr = err
}

// Search returns the profiles in [offset, offset+count).
func (d *Directory) Search(ctx context.Context, criteria domain.Criteria, offset, count int) ([]domain.Candidate, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.searches = append(d.searches, SearchCall{Criteria: criteria.Clone(), Offset: offset, Count: count})
	if d.searchErr != nil {
		return nil, d.searchErr
	}
	if offset >= len(d.profiles) {
		return []domain.Candidate{}, nil
	}
	end := min(offset+count, len(d.profiles))
	return append([]domain.Candidate(nil), d.profiles[offset:end]...), nil
}

// TopMedia returns up to count media items of the candidate in stored order.
func (d *Directory) TopMedia(ctx context.Context, candidateID int64, count int) ([]domain.MediaRef, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.mediaCalls++
	if d.mediaErr != nil {
		return nil, d.mediaErr
	}
	return append([]domain.MediaRef(nil), d.media[candidateID]...), nil
}

// Searches returns the recorded Search calls.
func (d *Directory) Searches() []SearchCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]SearchCall(nil), d.searches...)
}

// MediaCalls returns the number of TopMedia calls.
func (d *Directory) MediaCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mediaCalls
}
