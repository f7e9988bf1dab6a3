package models

// Vote directions accepted by POST /votes.
const (
	VoteRetract = 0
	VoteCast    = 1
)

// Vote represents a row in the PostgreSQL votes table. The pair
// (PostID, UserID) is the primary key: one vote per user per post.
type Vote struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
}

// VoteRequest is the JSON body for POST /votes. Dir 1 casts a vote,
// 0 retracts an existing one.
type VoteRequest struct {
	PostID string `json:"post_id"`
	Dir    int    `json:"dir"`
}
