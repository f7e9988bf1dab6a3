package models

import "time"

// Post represents a row in the PostgreSQL posts table.
type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Published     bool      `json:"published"`
	CreatedAt     time.Time `json:"created_at"`
	OwnerID       string    `json:"owner_id"`
	AttachmentKey string    `json:"-"` // object-store key, empty when no attachment
}

// PostInput is the JSON body for POST /posts and PUT /posts/{id}.
// Published defaults to true when omitted.
type PostInput struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Published *bool  `json:"published"`
}

// PostWithVotes pairs a post with its aggregated vote count.
type PostWithVotes struct {
	Post  Post  `json:"post"`
	Votes int64 `json:"votes"`
}
