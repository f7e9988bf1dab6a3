package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GRuizV/socialapi/internal/models"
)

// setupTestStore connects to the database named by TEST_DATABASE_URL,
// migrates the schema and truncates all tables. Tests that need it are
// skipped when the variable is unset, so the default run stays
// hermetic; run against a disposable database to exercise the real SQL.
func setupTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	s := NewPostgresStore(pool)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE users, posts, votes`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return s
}

func TestListPostsWithVotesSQL(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	author, err := s.CreateUser(ctx, "author@example.com", "digest")
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	voter, err := s.CreateUser(ctx, "voter@example.com", "digest")
	if err != nil {
		t.Fatalf("create voter: %v", err)
	}

	titles := []string{"Go concurrency", "go gardening", "Cooking"}
	ids := map[string]string{}
	for _, title := range titles {
		p, err := s.CreatePost(ctx, author.ID, models.PostInput{Title: title, Content: "body"})
		if err != nil {
			t.Fatalf("create post %q: %v", title, err)
		}
		ids[title] = p.ID
	}
	if err := s.CastVote(ctx, ids["Go concurrency"], voter.ID); err != nil {
		t.Fatalf("cast vote: %v", err)
	}

	all, err := s.ListPostsWithVotes(ctx, 10, 0, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("list = %d posts, want 3", len(all))
	}
	// The left join must count votes without dropping zero-vote posts.
	for _, pv := range all {
		want := int64(0)
		if pv.Post.ID == ids["Go concurrency"] {
			want = 1
		}
		if pv.Votes != want {
			t.Errorf("%q votes = %d, want %d", pv.Post.Title, pv.Votes, want)
		}
	}

	// Adjacent limit/offset pages tile the full ordering without
	// overlap or gaps.
	for i := range all {
		page, err := s.ListPostsWithVotes(ctx, 1, i, "")
		if err != nil {
			t.Fatalf("page %d: %v", i, err)
		}
		if len(page) != 1 || page[0].Post.ID != all[i].Post.ID {
			t.Errorf("page %d = %+v, want post %q", i, page, all[i].Post.ID)
		}
	}

	// Title search is a case-sensitive substring match.
	found, err := s.ListPostsWithVotes(ctx, 10, 0, "Go")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].Post.Title != "Go concurrency" {
		t.Errorf("search \"Go\" = %+v, want only the capitalized title", found)
	}

	pv, err := s.GetPostWithVotes(ctx, ids["Go concurrency"])
	if err != nil {
		t.Fatalf("get with votes: %v", err)
	}
	if pv.Votes != 1 {
		t.Errorf("single post votes = %d, want 1", pv.Votes)
	}
}

func TestVoteConstraintsSQL(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	author, err := s.CreateUser(ctx, "author@example.com", "digest")
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	voter, err := s.CreateUser(ctx, "voter@example.com", "digest")
	if err != nil {
		t.Fatalf("create voter: %v", err)
	}
	p, err := s.CreatePost(ctx, author.ID, models.PostInput{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := s.CastVote(ctx, p.ID, voter.ID); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	// The primary key rejects a second vote from the same user.
	if err := s.CastVote(ctx, p.ID, voter.ID); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second vote: %v, want ErrDuplicate", err)
	}
	// The foreign key rejects votes on posts that don't exist.
	if err := s.CastVote(ctx, uuid.NewString(), voter.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("vote on missing post: %v, want ErrNotFound", err)
	}
	if err := s.RetractVote(ctx, p.ID, author.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("retract without vote: %v, want ErrNotFound", err)
	}

	if err := s.RetractVote(ctx, p.ID, voter.ID); err != nil {
		t.Fatalf("retract: %v", err)
	}
	pv, err := s.GetPostWithVotes(ctx, p.ID)
	if err != nil {
		t.Fatalf("get with votes: %v", err)
	}
	if pv.Votes != 0 {
		t.Errorf("votes after retract = %d, want 0", pv.Votes)
	}
}

func TestUserConstraintsSQL(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "dup@example.com", "digest")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.CreateUser(ctx, "dup@example.com", "digest"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate email: %v, want ErrDuplicate", err)
	}

	// Deleting a user cascades to posts and their votes.
	p, err := s.CreatePost(ctx, u.ID, models.PostInput{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := s.GetPost(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("post after owner deletion: %v, want ErrNotFound", err)
	}
	if err := s.DeleteUser(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: %v, want ErrNotFound", err)
	}

	if _, err := s.GetPost(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing post: %v, want ErrNotFound", err)
	}
	if _, err := s.UpdatePost(ctx, uuid.NewString(), models.PostInput{Title: "t", Content: "c"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing post: %v, want ErrNotFound", err)
	}
}
