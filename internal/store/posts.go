package store

import (
	"context"
	"fmt"

	"github.com/GRuizV/socialapi/internal/models"
)

const postColumns = `p.id, p.title, p.content, p.published, p.created_at, p.owner_id, p.attachment_key`

func (s *PostgresStore) CreatePost(ctx context.Context, ownerID string, in models.PostInput) (*models.Post, error) {
	published := true
	if in.Published != nil {
		published = *in.Published
	}

	var p models.Post
	err := s.pool.QueryRow(ctx,
		`INSERT INTO posts (title, content, published, owner_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, title, content, published, created_at, owner_id, attachment_key`,
		in.Title, in.Content, published, ownerID,
	).Scan(&p.ID, &p.Title, &p.Content, &p.Published, &p.CreatedAt, &p.OwnerID, &p.AttachmentKey)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", translate(err))
	}
	return &p, nil
}

func (s *PostgresStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if invalidID(id) {
		return nil, ErrNotFound
	}
	var p models.Post
	err := s.pool.QueryRow(ctx,
		`SELECT `+postColumns+` FROM posts p WHERE p.id = $1`, id,
	).Scan(&p.ID, &p.Title, &p.Content, &p.Published, &p.CreatedAt, &p.OwnerID, &p.AttachmentKey)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// GetPostWithVotes returns one post together with its vote count, joining
// votes left-outer so zero-vote posts still appear.
func (s *PostgresStore) GetPostWithVotes(ctx context.Context, id string) (*models.PostWithVotes, error) {
	if invalidID(id) {
		return nil, ErrNotFound
	}
	var pv models.PostWithVotes
	err := s.pool.QueryRow(ctx,
		`SELECT `+postColumns+`, COUNT(v.post_id) AS votes
		 FROM posts p
		 LEFT JOIN votes v ON v.post_id = p.id
		 WHERE p.id = $1
		 GROUP BY p.id`, id,
	).Scan(&pv.Post.ID, &pv.Post.Title, &pv.Post.Content, &pv.Post.Published,
		&pv.Post.CreatedAt, &pv.Post.OwnerID, &pv.Post.AttachmentKey, &pv.Votes)
	if err != nil {
		return nil, translate(err)
	}
	return &pv, nil
}

// ListPostsWithVotes lists posts with their vote counts. search is a
// case-sensitive substring filter on the title; empty means no filter.
// Ordering by (created_at, id) keeps limit/offset pagination stable
// across repeated calls.
func (s *PostgresStore) ListPostsWithVotes(ctx context.Context, limit, offset int, search string) ([]models.PostWithVotes, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+postColumns+`, COUNT(v.post_id) AS votes
		 FROM posts p
		 LEFT JOIN votes v ON v.post_id = p.id
		 WHERE ($3 = '' OR p.title LIKE '%' || $3 || '%')
		 GROUP BY p.id
		 ORDER BY p.created_at, p.id
		 LIMIT $1 OFFSET $2`,
		limit, offset, search,
	)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	posts := []models.PostWithVotes{}
	for rows.Next() {
		var pv models.PostWithVotes
		if err := rows.Scan(&pv.Post.ID, &pv.Post.Title, &pv.Post.Content, &pv.Post.Published,
			&pv.Post.CreatedAt, &pv.Post.OwnerID, &pv.Post.AttachmentKey, &pv.Votes); err != nil {
			return nil, err
		}
		posts = append(posts, pv)
	}
	return posts, rows.Err()
}

// UpdatePost overwrites title, content and published. ErrNotFound covers
// both a post that never existed and one deleted since the caller's
// existence check.
func (s *PostgresStore) UpdatePost(ctx context.Context, id string, in models.PostInput) (*models.Post, error) {
	if invalidID(id) {
		return nil, ErrNotFound
	}
	published := true
	if in.Published != nil {
		published = *in.Published
	}

	var p models.Post
	err := s.pool.QueryRow(ctx,
		`UPDATE posts SET title = $2, content = $3, published = $4
		 WHERE id = $1
		 RETURNING id, title, content, published, created_at, owner_id, attachment_key`,
		id, in.Title, in.Content, published,
	).Scan(&p.ID, &p.Title, &p.Content, &p.Published, &p.CreatedAt, &p.OwnerID, &p.AttachmentKey)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *PostgresStore) DeletePost(ctx context.Context, id string) error {
	if invalidID(id) {
		return ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAttachmentKey records the object-store key of a post's attachment.
// An empty key clears it.
func (s *PostgresStore) SetAttachmentKey(ctx context.Context, id, key string) error {
	if invalidID(id) {
		return ErrNotFound
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE posts SET attachment_key = $2 WHERE id = $1`, id, key)
	if err != nil {
		return fmt.Errorf("set attachment key: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
