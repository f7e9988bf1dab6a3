package store

import (
	"context"
	"errors"
	"fmt"
)

// CastVote inserts a (post, user) vote row. The primary key rejects a
// second vote from the same user (ErrDuplicate) and the foreign key
// rejects a vote on a post that no longer exists, which callers see as
// ErrNotFound. Both checks happen atomically in the single INSERT, so a
// post deleted concurrently can never leave an orphaned vote.
func (s *PostgresStore) CastVote(ctx context.Context, postID, userID string) error {
	if invalidID(postID, userID) {
		return ErrNotFound
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO votes (post_id, user_id) VALUES ($1, $2)`, postID, userID)
	if err != nil {
		err = translate(err)
		if errors.Is(err, ErrMissingReferent) {
			return ErrNotFound
		}
		if errors.Is(err, ErrDuplicate) {
			return ErrDuplicate
		}
		return fmt.Errorf("cast vote: %w", err)
	}
	return nil
}

// RetractVote deletes the caller's vote on a post. ErrNotFound when no
// such vote exists.
func (s *PostgresStore) RetractVote(ctx context.Context, postID, userID string) error {
	if invalidID(postID, userID) {
		return ErrNotFound
	}
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM votes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("retract vote: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
