package domain

import (
	"fmt"
	"strings"
)

// MediaRef references a photo owned by a candidate.
type MediaRef struct {
	OwnerID  int64 `json:"owner_id"`
	ID       int64 `json:"id"`
	Likes    int   `json:"likes"`
	Comments int   `json:"comments"`
}

// Popularity is the ranking score of a photo.
func (m MediaRef) Popularity() int {
	return m.Likes + m.Comments
}

// Attachment renders the platform attachment token, e.g. "photo1_42".
func (m MediaRef) Attachment() string {
	return fmt.Sprintf("photo%d_%d", m.OwnerID, m.ID)
}

// Attachments joins the tokens of refs with commas.
func Attachments(refs []MediaRef) string {
	tokens := make([]string, 0, len(refs))
	for _, ref := range refs {
		tokens = append(tokens, ref.Attachment())
	}
	return strings.Join(tokens, ",")
}

// Candidate is a profile returned by the directory search.
type Candidate struct {
	ID        int64      `json:"id"`
	IsPrivate bool       `json:"is_private"`
	Media     []MediaRef `json:"media,omitempty"`
}

// ProfileURL returns the public link to the candidate's page.
func (c Candidate) ProfileURL() string {
	return fmt.Sprintf("https://vk.com/id%d", c.ID)
}
