package votes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GRuizV/socialapi/internal/middleware"
	"github.com/GRuizV/socialapi/internal/models"
	"github.com/GRuizV/socialapi/internal/store"
)

type fakeVoteStore struct {
	posts        map[string]*models.Post
	votes        map[string]map[string]bool
	getPostCalls int
}

func newFakeVoteStore(postIDs ...string) *fakeVoteStore {
	f := &fakeVoteStore{
		posts: map[string]*models.Post{},
		votes: map[string]map[string]bool{},
	}
	for _, id := range postIDs {
		f.posts[id] = &models.Post{ID: id, Title: "t", Content: "c", OwnerID: "owner"}
	}
	return f
}

func (f *fakeVoteStore) GetPost(_ context.Context, id string) (*models.Post, error) {
	f.getPostCalls++
	p, ok := f.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeVoteStore) CastVote(_ context.Context, postID, userID string) error {
	if _, ok := f.posts[postID]; !ok {
		return store.ErrNotFound
	}
	if f.votes[postID][userID] {
		return store.ErrDuplicate
	}
	if f.votes[postID] == nil {
		f.votes[postID] = map[string]bool{}
	}
	f.votes[postID][userID] = true
	return nil
}

func (f *fakeVoteStore) RetractVote(_ context.Context, postID, userID string) error {
	if !f.votes[postID][userID] {
		return store.ErrNotFound
	}
	delete(f.votes[postID], userID)
	return nil
}

func (f *fakeVoteStore) count(postID string) int {
	return len(f.votes[postID])
}

type noopTrail struct{}

func (noopTrail) Record(context.Context, string, string, string) error { return nil }

var voter = &models.User{ID: "u1", Email: "u1@x.com"}

func doVote(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/votes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUser(req.Context(), voter))
	w := httptest.NewRecorder()
	h.Vote(w, req)
	return w
}

func TestVoteInvalidDir(t *testing.T) {
	votes := newFakeVoteStore("p1")
	h := NewHandler(votes, noopTrail{})

	for _, body := range []string{
		`{"post_id":"p1","dir":2}`,
		`{"post_id":"p1","dir":-1}`,
	} {
		if w := doVote(h, body); w.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: status = %d, want 422", body, w.Code)
		}
	}
	// Validation happens before any storage access.
	if votes.getPostCalls != 0 {
		t.Errorf("storage touched %d times during validation failures", votes.getPostCalls)
	}
}

func TestVoteMissingPost(t *testing.T) {
	h := NewHandler(newFakeVoteStore(), noopTrail{})

	if w := doVote(h, `{"post_id":"ghost","dir":1}`); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestVoteTwiceConflicts(t *testing.T) {
	votes := newFakeVoteStore("p1")
	h := NewHandler(votes, noopTrail{})

	if w := doVote(h, `{"post_id":"p1","dir":1}`); w.Code != http.StatusCreated {
		t.Fatalf("first vote: status = %d, want 201. Body: %s", w.Code, w.Body.String())
	}
	if w := doVote(h, `{"post_id":"p1","dir":1}`); w.Code != http.StatusConflict {
		t.Errorf("second vote: status = %d, want 409", w.Code)
	}
	if votes.count("p1") != 1 {
		t.Errorf("vote count = %d after duplicate attempt, want 1", votes.count("p1"))
	}
}

func TestRetractWithoutVote(t *testing.T) {
	h := NewHandler(newFakeVoteStore("p1"), noopTrail{})

	if w := doVote(h, `{"post_id":"p1","dir":0}`); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestVoteLifecycle(t *testing.T) {
	votes := newFakeVoteStore("p1")
	h := NewHandler(votes, noopTrail{})

	if w := doVote(h, `{"post_id":"p1","dir":1}`); w.Code != http.StatusCreated {
		t.Fatalf("cast: status = %d, want 201", w.Code)
	}
	if w := doVote(h, `{"post_id":"p1","dir":0}`); w.Code != http.StatusCreated {
		t.Fatalf("retract: status = %d, want 201", w.Code)
	}
	if votes.count("p1") != 0 {
		t.Errorf("vote count = %d after retract, want 0", votes.count("p1"))
	}
	// Retracting again finds nothing.
	if w := doVote(h, `{"post_id":"p1","dir":0}`); w.Code != http.StatusNotFound {
		t.Errorf("second retract: status = %d, want 404", w.Code)
	}
}

func TestVoteBadBody(t *testing.T) {
	h := NewHandler(newFakeVoteStore("p1"), noopTrail{})

	if w := doVote(h, `{`); w.Code != http.StatusBadRequest {
		t.Errorf("malformed json: status = %d, want 400", w.Code)
	}
	if w := doVote(h, `{"dir":1}`); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing post_id: status = %d, want 422", w.Code)
	}
}
