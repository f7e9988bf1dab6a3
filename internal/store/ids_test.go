package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/GRuizV/socialapi/internal/models"
)

// Ids that are not valid UUIDs can never name a row, so every lookup or
// mutation must report ErrNotFound without reaching the database. The
// nil pool proves no query is attempted.
func TestMalformedIDsAreNotFound(t *testing.T) {
	s := NewPostgresStore(nil)
	ctx := context.Background()
	valid := uuid.NewString()

	cases := []struct {
		name string
		err  func() error
	}{
		{"get post", func() error { _, err := s.GetPost(ctx, "abc"); return err }},
		{"get post with votes", func() error { _, err := s.GetPostWithVotes(ctx, "abc"); return err }},
		{"update post", func() error {
			_, err := s.UpdatePost(ctx, "abc", models.PostInput{Title: "t", Content: "c"})
			return err
		}},
		{"delete post", func() error { return s.DeletePost(ctx, "abc") }},
		{"set attachment key", func() error { return s.SetAttachmentKey(ctx, "abc", "k") }},
		{"get user by id", func() error { _, err := s.GetUserByID(ctx, "abc"); return err }},
		{"delete user", func() error { return s.DeleteUser(ctx, "abc") }},
		{"cast vote bad post", func() error { return s.CastVote(ctx, "abc", valid) }},
		{"cast vote bad user", func() error { return s.CastVote(ctx, valid, "abc") }},
		{"retract vote bad post", func() error { return s.RetractVote(ctx, "abc", valid) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.err(); !errors.Is(err, ErrNotFound) {
				t.Errorf("got %v, want ErrNotFound", err)
			}
		})
	}
}
