package models

import "time"

// File is the metadata row for one uploaded file. The bytes themselves
// live on disk at StoredPath; the row is inserted only after the bytes
// are fully written.
type File struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	OriginalName string     `json:"original_name"`
	StoredPath   string     `json:"-"`
	MimeType     string     `json:"mime_type"`
	SizeBytes    int64      `json:"size_bytes"`
	IsImage      bool       `json:"is_image"`
	LikeCount    int64      `json:"like_count"`
	DislikeCount int64      `json:"dislike_count"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Hidden reports whether the file is soft-deleted. Hidden files stay out
// of the public listing and reject votes but remain in the admin listing.
func (f *File) Hidden() bool {
	return f.DeletedAt != nil
}

type VoteCounts struct {
	LikeCount    int64 `json:"likeCount"`
	DislikeCount int64 `json:"dislikeCount"`
}

// Vote is a client-reported vote state for a file.
type Vote string

const (
	VoteLike    Vote = "like"
	VoteDislike Vote = "dislike"
	VoteNone    Vote = "none"
)

// Valid accepts the three vote states; the empty string is normalized to
// VoteNone by the DTO layer before it gets here.
func (v Vote) Valid() bool {
	switch v {
	case VoteLike, VoteDislike, VoteNone:
		return true
	}
	return false
}
