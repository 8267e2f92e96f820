package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sign-identity/identity-api/internal/core/domain"
)

const collectionAudit = "audit_events"

// AuditRepository appends identity audit events. Write-only from the API's
// point of view; the trail is read out-of-band.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAudit)}
}

type mongoAuditEvent struct {
	Action    string    `bson:"action"`
	ActorID   string    `bson:"actor_id,omitempty"`
	SubjectID string    `bson:"subject_id,omitempty"`
	Timestamp time.Time `bson:"timestamp"`
	Detail    string    `bson:"detail,omitempty"`
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoAuditEvent{
		Action:    string(event.Action),
		ActorID:   event.ActorID,
		SubjectID: event.SubjectID,
		Timestamp: event.Timestamp,
		Detail:    event.Detail,
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// EnsureIndexes creates the lookup indexes for out-of-band audit queries.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "subject_id", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "action", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
