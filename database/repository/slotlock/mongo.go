package slotlockRepo

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

// MongoSlotLockRepo implements SlotLockRepository using MongoDB.
type MongoSlotLockRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotLockRepo creates a new instance of SlotLockRepository using MongoDB.
func NewMongoSlotLockRepo() SlotLockRepository {
	repo := &MongoSlotLockRepo{coll: database.Collection("slot_locks")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create slot_locks indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// slotKeyFilter builds the identity filter for one slot key.
func slotKeyFilter(key models.SlotKey) bson.M {
	return bson.M{
		"serviceOfferingId": key.ServiceOfferingID,
		"date":              key.Date,
		"fromTime":          key.FromTime,
		"toTime":            key.ToTime,
	}
}

// ensureIndexes creates the uniqueness and lookup indexes. The unique index
// on the slot key tuple is what makes two concurrent acquires resolve to
// exactly one winner. The TTL index on expiresAt only reclaims storage;
// every query re-checks expiry itself.
func (r *MongoSlotLockRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "serviceOfferingId", Value: 1},
				{Key: "date", Value: 1},
				{Key: "fromTime", Value: 1},
				{Key: "toTime", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "holderId", Value: 1}}},
		{Keys: bson.D{{Key: "paymentRef", Value: 1}}},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Acquire performs the atomic conditional write at the core of the lock
// manager. The update filter matches the slot key only when the existing
// record is expired or already owned by the caller; a live foreign lock
// matches nothing, so the upsert attempts an insert and trips the unique
// index instead. Expiry is therefore evaluated inside the same atomic
// operation as the write.
func (r *MongoSlotLockRepo) Acquire(res *models.SlotReservation) (AcquireOutcome, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	filter := slotKeyFilter(res.SlotKey)
	filter["$or"] = bson.A{
		bson.M{"expiresAt": bson.M{"$lte": now}},
		bson.M{"holderId": res.HolderID},
	}

	// A re-lock without a payment ref keeps the one already attached; a
	// takeover from another holder never inherits the old ref.
	var refExpr interface{} = bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{"$holderId", res.HolderID}},
		bson.M{"$ifNull": bson.A{"$paymentRef", ""}},
		"",
	}}
	if res.PaymentRef != "" {
		refExpr = res.PaymentRef
	}

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"id":                res.ID,
			"serviceOfferingId": res.SlotKey.ServiceOfferingID,
			"date":              res.SlotKey.Date,
			"fromTime":          res.SlotKey.FromTime,
			"toTime":            res.SlotKey.ToTime,
			"holderId":          res.HolderID,
			"paymentRef":        refExpr,
			"createdAt":         res.CreatedAt,
			"expiresAt":         res.ExpiresAt,
		}}},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before)

	var prev models.SlotReservation
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&prev)
	switch {
	case err == mongo.ErrNoDocuments:
		// Upsert inserted a fresh record; the slot was free.
		return OutcomeGranted, nil
	case mongo.IsDuplicateKeyError(err):
		// A live reservation by a different holder blocked the insert.
		return "", ErrLockContended
	case err != nil:
		return "", fmt.Errorf("failed to acquire lock for slot %s: %w", res.SlotKey, err)
	}

	if prev.HolderID == res.HolderID && res.PaymentRef == "" {
		res.PaymentRef = prev.PaymentRef
	}
	if prev.HolderID == res.HolderID && prev.Live(now) {
		return OutcomeExtended, nil
	}
	// Replaced an expired record: a takeover, not an extension.
	return OutcomeGranted, nil
}

// Extend pushes out the expiry of the caller's live reservation in one
// conditional update. The live check sits in the filter, so an expired
// record can never be revived.
func (r *MongoSlotLockRepo) Extend(key models.SlotKey, holderID, paymentRef string, expiresAt time.Time) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := slotKeyFilter(key)
	filter["holderId"] = holderID
	filter["expiresAt"] = bson.M{"$gt": time.Now()}

	set := bson.M{"expiresAt": expiresAt}
	if paymentRef != "" {
		set["paymentRef"] = paymentRef
	}

	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to extend lock for slot %s: %w", key, err)
	}
	return result.MatchedCount > 0, nil
}

// GetBySlot returns the live reservation for a slot key, or nil when the slot
// is free. Expired records are filtered out in the query itself.
func (r *MongoSlotLockRepo) GetBySlot(key models.SlotKey) (*models.SlotReservation, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := slotKeyFilter(key)
	filter["expiresAt"] = bson.M{"$gt": time.Now()}

	var res models.SlotReservation
	if err := r.coll.FindOne(ctx, filter).Decode(&res); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch lock for slot %s: %w", key, err)
	}
	return &res, nil
}

// GetByPaymentRef returns the live reservation carrying the given payment
// correlation id, or nil.
func (r *MongoSlotLockRepo) GetByPaymentRef(ref string) (*models.SlotReservation, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"paymentRef": ref, "expiresAt": bson.M{"$gt": time.Now()}}

	var res models.SlotReservation
	if err := r.coll.FindOne(ctx, filter).Decode(&res); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch lock by payment ref %s: %w", ref, err)
	}
	return &res, nil
}

// ListByHolder returns all live reservations held by one customer.
func (r *MongoSlotLockRepo) ListByHolder(holderID string) ([]models.SlotReservation, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"holderId": holderID, "expiresAt": bson.M{"$gt": time.Now()}}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list locks for holder %s: %w", holderID, err)
	}
	defer cursor.Close(ctx)

	var locks []models.SlotReservation
	if err := cursor.All(ctx, &locks); err != nil {
		return nil, fmt.Errorf("failed to decode locks for holder %s: %w", holderID, err)
	}
	return locks, nil
}

// ListAll returns every reservation record, including not-yet-swept expired ones.
func (r *MongoSlotLockRepo) ListAll() ([]models.SlotReservation, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list locks: %w", err)
	}
	defer cursor.Close(ctx)

	var locks []models.SlotReservation
	if err := cursor.All(ctx, &locks); err != nil {
		return nil, fmt.Errorf("failed to decode locks: %w", err)
	}
	return locks, nil
}

// Delete removes the reservation for a slot key, restricted to holderID when given.
func (r *MongoSlotLockRepo) Delete(key models.SlotKey, holderID string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := slotKeyFilter(key)
	if holderID != "" {
		filter["holderId"] = holderID
	}
	result, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to delete lock for slot %s: %w", key, err)
	}
	return result.DeletedCount > 0, nil
}

// DeleteByPaymentRef removes the reservation matching a payment correlation id.
func (r *MongoSlotLockRepo) DeleteByPaymentRef(ref, holderID string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"paymentRef": ref}
	if holderID != "" {
		filter["holderId"] = holderID
	}
	result, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to delete lock by payment ref %s: %w", ref, err)
	}
	return result.DeletedCount > 0, nil
}

// DeleteByID removes a reservation by record id, regardless of holder.
func (r *MongoSlotLockRepo) DeleteByID(id string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete lock %s: %w", id, err)
	}
	return result.DeletedCount > 0, nil
}

// DeleteAllByHolder bulk-releases every reservation held by one customer.
func (r *MongoSlotLockRepo) DeleteAllByHolder(holderID string) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteMany(ctx, bson.M{"holderId": holderID})
	if err != nil {
		return 0, fmt.Errorf("failed to release locks for holder %s: %w", holderID, err)
	}
	return result.DeletedCount, nil
}

// DeleteExpired removes records past their expiry.
func (r *MongoSlotLockRepo) DeleteExpired() (int64, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": time.Now()}})
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired locks: %w", err)
	}
	return result.DeletedCount, nil
}
