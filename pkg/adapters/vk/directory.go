package vk

import (
	"context"

	"github.com/SevereCloud/vksdk/v3/api"
	"github.com/aretw0/kinder/pkg/domain"
)

// photosPageSize is the largest photos.getAll page.
const photosPageSize = 200

// Directory searches people with a user access token.
type Directory struct {
	client *Client
}

// NewDirectory creates a Directory. users.search requires a user token.
func NewDirectory(client *Client) *Directory {
	return &Directory{client: client}
}

// Search calls users.search with an exact age.
// Closed and deactivated profiles are reported as private.
func (d *Directory) Search(ctx context.Context, criteria domain.Criteria, offset, count int) ([]domain.Candidate, error) {
	if !criteria.Complete() {
		return nil, domain.ErrIncompleteCriteria
	}
	params := api.Params{
		"age_from": *criteria.Age,
		"age_to":   *criteria.Age,
		"sex":      *criteria.Gender,
		"city":     *criteria.City,
		"status":   *criteria.Status,
		"offset":   offset,
		"count":    count,
		"fields":   "photo_id",
	}

	var resp api.UsersSearchResponse
	err := d.client.call("users.search", func() (err error) {
		resp, err = d.client.api.UsersSearch(params.WithContext(ctx))
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Candidate, 0, len(resp.Items))
	for _, user := range resp.Items {
		out = append(out, domain.Candidate{
			ID:        int64(user.ID),
			IsPrivate: bool(user.IsClosed) || user.Deactivated != "",
		})
	}
	return out, nil
}

// TopMedia calls photos.getAll with counters and returns the photos in API order.
// Ranking is left to the caller; count is only a hint for the page size.
func (d *Directory) TopMedia(ctx context.Context, candidateID int64, count int) ([]domain.MediaRef, error) {
	params := api.Params{
		"owner_id": candidateID,
		"count":    photosPageSize,
	}

	var resp api.PhotosGetAllExtendedResponse
	err := d.client.call("photos.getAll", func() (err error) {
		resp, err = d.client.api.PhotosGetAllExtended(params.WithContext(ctx))
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.MediaRef, 0, len(resp.Items))
	for _, photo := range resp.Items {
		owner := int64(photo.OwnerID)
		if owner == 0 {
			owner = candidateID
		}
		out = append(out, domain.MediaRef{
			OwnerID:  owner,
			ID:       int64(photo.ID),
			Likes:    photo.Likes.Count,
			Comments: photo.Comments.Count,
		})
	}
	return out, nil
}
