package votes

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/GRuizV/socialapi/internal/audit"
	"github.com/GRuizV/socialapi/internal/middleware"
	"github.com/GRuizV/socialapi/internal/models"
	"github.com/GRuizV/socialapi/internal/store"
)

// VoteStore is the vote persistence plus the post-existence probe the
// vote endpoint needs.
type VoteStore interface {
	GetPost(ctx context.Context, id string) (*models.Post, error)
	CastVote(ctx context.Context, postID, userID string) error
	RetractVote(ctx context.Context, postID, userID string) error
}

// AuditTrail records mutation events.
type AuditTrail interface {
	Record(ctx context.Context, actorID, action, postID string) error
}

// Handler holds the vote HTTP handler.
type Handler struct {
	votes VoteStore
	trail AuditTrail
}

func NewHandler(votes VoteStore, trail AuditTrail) *Handler {
	return &Handler{votes: votes, trail: trail}
}

// Vote casts or retracts a vote. POST /votes. dir=1 creates the vote
// (409 when it already exists), dir=0 removes it (404 when there is
// nothing to remove). Any other dir is rejected before storage is
// touched, and a nonexistent post is 404 before the vote state is
// consulted.
func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Dir != models.VoteCast && req.Dir != models.VoteRetract {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "dir must be 0 or 1")
		return
	}
	if req.PostID == "" {
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "post_id is required")
		return
	}

	if _, err := h.votes.GetPost(r.Context(), req.PostID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "post '"+req.PostID+"' does not exist")
			return
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, "database error")
		return
	}

	if req.Dir == models.VoteCast {
		err := h.votes.CastVote(r.Context(), req.PostID, caller.ID)
		switch {
		case errors.Is(err, store.ErrDuplicate):
			middleware.ErrorResponse(w, http.StatusConflict,
				"user '"+caller.ID+"' has already voted on post '"+req.PostID+"'")
			return
		case errors.Is(err, store.ErrNotFound):
			// Post deleted between the existence check and the insert.
			middleware.ErrorResponse(w, http.StatusNotFound, "post '"+req.PostID+"' does not exist")
			return
		case err != nil:
			middleware.ErrorResponse(w, http.StatusInternalServerError, "could not add vote")
			return
		}

		h.record(r.Context(), caller.ID, audit.ActionVoteCast, req.PostID)
		middleware.JSONResponse(w, http.StatusCreated, map[string]string{"message": "successfully added vote"})
		return
	}

	if err := h.votes.RetractVote(r.Context(), req.PostID, caller.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "the vote trying to be deleted does not exist")
			return
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, "could not delete vote")
		return
	}

	h.record(r.Context(), caller.ID, audit.ActionVoteRetracted, req.PostID)
	middleware.JSONResponse(w, http.StatusCreated, map[string]string{"message": "successfully deleted vote"})
}

func (h *Handler) record(ctx context.Context, actorID, action, postID string) {
	if err := h.trail.Record(ctx, actorID, action, postID); err != nil {
		slog.Warn("audit record failed", "action", action, "post_id", postID, "error", err)
	}
}
