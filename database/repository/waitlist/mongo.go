package waitlistRepo

import (
	"context"
	"fmt"
	"time"

	"slotify/database"
	"slotify/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoWaitlistRepo implements WaitlistRepository using MongoDB.
type MongoWaitlistRepo struct {
	coll *mongo.Collection
}

// NewMongoWaitlistRepo creates a new instance of WaitlistRepository using MongoDB.
func NewMongoWaitlistRepo() WaitlistRepository {
	repo := &MongoWaitlistRepo{coll: database.Collection("waitlist_entries")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create waitlist indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates the lookup indexes plus the partial unique index that
// rejects duplicate active joins. Notified entries fall outside the partial
// filter, so a customer may rejoin after being notified.
func (r *MongoWaitlistRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{
				{Key: "customerId", Value: 1},
				{Key: "serviceOfferingId", Value: 1},
				{Key: "preferredDate", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.WaitlistActive}),
		},
		{
			Keys: bson.D{
				{Key: "serviceOfferingId", Value: 1},
				{Key: "preferredDate", Value: 1},
				{Key: "status", Value: 1},
			},
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new active entry.
func (r *MongoWaitlistRepo) Create(entry *models.WaitlistEntry) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	entry.Status = models.WaitlistActive
	entry.CreatedAt = time.Now()

	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create waitlist entry: %w", err)
	}
	return nil
}

// ListActive returns all active entries matching a freed slot.
func (r *MongoWaitlistRepo) ListActive(serviceOfferingID, date string) ([]models.WaitlistEntry, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	filter := bson.M{
		"serviceOfferingId": serviceOfferingID,
		"preferredDate":     date,
		"status":            models.WaitlistActive,
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list active waitlist entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.WaitlistEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode waitlist entries: %w", err)
	}
	return entries, nil
}

// MarkNotified flips an entry to notified only if it is still active.
func (r *MongoWaitlistRepo) MarkNotified(id string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{"id": id, "status": models.WaitlistActive}
	update := bson.M{"$set": bson.M{"status": models.WaitlistNotified, "notifiedAt": now}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark waitlist entry %s notified: %w", id, err)
	}
	return result.MatchedCount > 0, nil
}

// Delete removes an entry owned by the given customer.
func (r *MongoWaitlistRepo) Delete(id, customerID string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "customerId": customerID})
	if err != nil {
		return false, fmt.Errorf("failed to delete waitlist entry %s: %w", id, err)
	}
	return result.DeletedCount > 0, nil
}

// ListByCustomer returns all entries for a customer, newest first.
func (r *MongoWaitlistRepo) ListByCustomer(customerID string) ([]models.WaitlistEntry, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"customerId": customerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list waitlist entries for customer %s: %w", customerID, err)
	}
	defer cursor.Close(ctx)

	var entries []models.WaitlistEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode waitlist entries: %w", err)
	}
	return entries, nil
}
