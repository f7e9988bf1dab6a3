package posts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GRuizV/socialapi/internal/audit"
	"github.com/GRuizV/socialapi/internal/middleware"
	"github.com/GRuizV/socialapi/internal/models"
	"github.com/GRuizV/socialapi/internal/store"
)

const (
	defaultLimit  = 10
	defaultOffset = 0

	// maxAttachmentSize bounds PUT /posts/{id}/attachment bodies.
	maxAttachmentSize = 10 << 20
)

// PostStore defines the interface for post persistence.
type PostStore interface {
	CreatePost(ctx context.Context, ownerID string, in models.PostInput) (*models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	GetPostWithVotes(ctx context.Context, id string) (*models.PostWithVotes, error)
	ListPostsWithVotes(ctx context.Context, limit, offset int, search string) ([]models.PostWithVotes, error)
	UpdatePost(ctx context.Context, id string, in models.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	SetAttachmentKey(ctx context.Context, id, key string) error
}

// FileStore defines the interface for attachment storage. Implementations
// default an empty content type to application/octet-stream.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// AuditTrail records and lists mutation events.
type AuditTrail interface {
	Record(ctx context.Context, actorID, action, postID string) error
	ListByPost(ctx context.Context, postID string) ([]audit.Event, error)
}

// Handler holds the post HTTP handlers.
type Handler struct {
	posts PostStore
	files FileStore
	trail AuditTrail
}

func NewHandler(posts PostStore, files FileStore, trail AuditTrail) *Handler {
	return &Handler{posts: posts, files: files, trail: trail}
}

// List returns posts with vote counts. GET /posts?limit=&offset=&search=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultLimit)
	if err != nil || limit < 0 {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "limit must be a non-negative integer")
		return
	}
	offset, err := queryInt(r, "offset", defaultOffset)
	if err != nil || offset < 0 {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "offset must be a non-negative integer")
		return
	}
	search := r.URL.Query().Get("search")

	posts, err := h.posts.ListPostsWithVotes(r.Context(), limit, offset, search)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, posts)
}

// Create makes the caller the owner of a new post. POST /posts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())

	var in models.PostInput
	if err := middleware.ParseJSONBody(r, &in); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Title == "" || in.Content == "" {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "title and content are required")
		return
	}

	post, err := h.posts.CreatePost(r.Context(), caller.ID, in)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "could not create post")
		return
	}

	h.record(r.Context(), caller.ID, audit.ActionPostCreated, post.ID)
	middleware.JSONResponse(w, http.StatusCreated, post)
}

// Get returns one post with its vote count. GET /posts/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pv, err := h.posts.GetPostWithVotes(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "post '"+id+"' was not found")
			return
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, "database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, pv)
}

// Update overwrites an owned post. PUT /posts/{id}. Existence is checked
// before ownership: a missing post is 404 even for a non-owner.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller := middleware.UserFrom(r.Context())

	var in models.PostInput
	if err := middleware.ParseJSONBody(r, &in); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Title == "" || in.Content == "" {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "title and content are required")
		return
	}

	post, ok := h.ownedPost(w, r, id, caller)
	if !ok {
		return
	}

	updated, err := h.posts.UpdatePost(r.Context(), post.ID, in)
	if err != nil {
		// The row may have vanished between the check and the update.
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "post '"+id+"' doesn't exist")
			return
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, "could not update post")
		return
	}

	h.record(r.Context(), caller.ID, audit.ActionPostUpdated, id)
	middleware.JSONResponse(w, http.StatusOK, updated)
}

// Delete removes an owned post and its attachment. DELETE /posts/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller := middleware.UserFrom(r.Context())

	post, ok := h.ownedPost(w, r, id, caller)
	if !ok {
		return
	}

	if err := h.posts.DeletePost(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "post '"+id+"' doesn't exist")
			return
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, "could not delete post")
		return
	}

	if post.AttachmentKey != "" {
		if err := h.files.Remove(r.Context(), post.AttachmentKey); err != nil {
			slog.Warn("attachment cleanup failed", "post_id", id, "error", err)
		}
	}

	h.record(r.Context(), caller.ID, audit.ActionPostDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

// UploadAttachment stores the request body as the post's attachment.
// PUT /posts/{id}/attachment, owner only.
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller := middleware.UserFrom(r.Context())

	post, ok := h.ownedPost(w, r, id, caller)
	if !ok {
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxAttachmentSize+1))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "could not read request body")
		return
	}
	if len(data) == 0 {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "attachment body is empty")
		return
	}
	if len(data) > maxAttachmentSize {
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "attachment exceeds the size limit")
		return
	}

	key := store.AttachmentKey(post.OwnerID, post.ID)
	if err := h.files.Upload(r.Context(), key, data, r.Header.Get("Content-Type")); err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "could not store attachment")
		return
	}
	if err := h.posts.SetAttachmentKey(r.Context(), post.ID, key); err != nil {
		// The post vanished between the ownership check and the write;
		// don't leave the uploaded object orphaned.
		if rmErr := h.files.Remove(r.Context(), key); rmErr != nil {
			slog.Warn("attachment cleanup failed", "post_id", post.ID, "error", rmErr)
		}
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "post '"+id+"' doesn't exist")
			return
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, "could not store attachment")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "attachment stored"})
}

// DownloadAttachment streams a post's attachment. GET /posts/{id}/attachment.
func (h *Handler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := h.posts.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "post '"+id+"' was not found")
			return
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, "database error")
		return
	}
	if post.AttachmentKey == "" {
		middleware.ErrorResponse(w, http.StatusNotFound, "post '"+id+"' has no attachment")
		return
	}

	data, contentType, err := h.files.Download(r.Context(), post.AttachmentKey)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "could not fetch attachment")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// Activity lists a post's audit events, newest first.
// GET /posts/{id}/activity.
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.posts.GetPost(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "post '"+id+"' was not found")
			return
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, "database error")
		return
	}

	events, err := h.trail.ListByPost(r.Context(), id)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "could not list activity")
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	middleware.JSONResponse(w, http.StatusOK, events)
}

// ownedPost loads a post and enforces the mutation ordering policy:
// missing post reports 404 to everyone, an existing post owned by
// someone else reports 403. Writes the error response itself and
// returns ok=false when the caller may not proceed.
func (h *Handler) ownedPost(w http.ResponseWriter, r *http.Request, id string, caller *models.User) (*models.Post, bool) {
	post, err := h.posts.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "post '"+id+"' doesn't exist")
			return nil, false
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, "database error")
		return nil, false
	}
	if post.OwnerID != caller.ID {
		middleware.ErrorResponse(w, http.StatusForbidden, "only the owner of the post can alter it")
		return nil, false
	}
	return post, true
}

func (h *Handler) record(ctx context.Context, actorID, action, postID string) {
	if err := h.trail.Record(ctx, actorID, action, postID); err != nil {
		slog.Warn("audit record failed", "action", action, "post_id", postID, "error", err)
	}
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
