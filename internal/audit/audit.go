// Package audit keeps an append-only trail of mutations in MongoDB.
// Recording never blocks a request: callers log failures and move on.
package audit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Actions recorded to the trail.
const (
	ActionPostCreated   = "post.created"
	ActionPostUpdated   = "post.updated"
	ActionPostDeleted   = "post.deleted"
	ActionVoteCast      = "vote.cast"
	ActionVoteRetracted = "vote.retracted"
)

// Event is one audit record.
type Event struct {
	ID      primitive.ObjectID `json:"id"       bson:"_id,omitempty"`
	ActorID string             `json:"actor_id" bson:"actor_id"`
	Action  string             `json:"action"   bson:"action"`
	PostID  string             `json:"post_id"  bson:"post_id"`
	At      time.Time          `json:"at"       bson:"at"`
}

// Trail handles audit event persistence in MongoDB.
type Trail struct {
	col *mongo.Collection
}

func NewTrail(db *mongo.Database) *Trail {
	return &Trail{col: db.Collection("audit_events")}
}

// Record appends one event.
func (t *Trail) Record(ctx context.Context, actorID, action, postID string) error {
	ev := Event{ActorID: actorID, Action: action, PostID: postID, At: time.Now()}
	if _, err := t.col.InsertOne(ctx, ev); err != nil {
		return fmt.Errorf("audit insert: %w", err)
	}
	return nil
}

// ListByPost returns a post's events, newest first.
func (t *Trail) ListByPost(ctx context.Context, postID string) ([]Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}})
	cur, err := t.col.Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
