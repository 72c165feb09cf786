package loyaltyRepo

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

// MongoLoyaltyRepo implements LoyaltyRepository using MongoDB.
type MongoLoyaltyRepo struct {
	coll *mongo.Collection
}

// NewMongoLoyaltyRepo creates a new instance of LoyaltyRepository using MongoDB.
func NewMongoLoyaltyRepo() LoyaltyRepository {
	repo := &MongoLoyaltyRepo{coll: database.Collection("loyalty_accounts")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create loyalty indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoLoyaltyRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "customerId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// newAccountFields is the $setOnInsert document for lazy account creation.
func newAccountFields(customerID string, now time.Time) bson.M {
	return bson.M{
		"customerId": customerID,
		"tier":       models.TierBronze,
		"createdAt":  now,
	}
}

// GetOrCreate returns the account, upserting an empty bronze one if absent.
func (r *MongoLoyaltyRepo) GetOrCreate(customerID string) (*models.LoyaltyAccount, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	update := bson.M{"$setOnInsert": newAccountFields(customerID, now)}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"history": 0})

	var acc models.LoyaltyAccount
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"customerId": customerID}, update, opts).Decode(&acc); err != nil {
		return nil, fmt.Errorf("failed to load loyalty account for %s: %w", customerID, err)
	}
	return &acc, nil
}

// Earn appends an earning entry, bumps the balances, and re-derives the tier
// in one atomic pipeline update. Tier is purely derived state; folding it into
// the same write means each update stores the tier matching its own
// totalEarned, so interleaved earnings can never leave a stale tier behind.
func (r *MongoLoyaltyRepo) Earn(customerID string, txn models.LoyaltyTransaction) (*models.LoyaltyAccount, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"customerId":    customerID,
			"points":        bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$points", 0}}, txn.Points}},
			"totalEarned":   bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$totalEarned", 0}}, txn.Points}},
			"totalRedeemed": bson.M{"$ifNull": bson.A{"$totalRedeemed", 0}},
			"history":       bson.M{"$concatArrays": bson.A{bson.M{"$ifNull": bson.A{"$history", bson.A{}}}, bson.A{bson.M{"$literal": txn}}}},
			"createdAt":     bson.M{"$ifNull": bson.A{"$createdAt", now}},
			"updatedAt":     now,
		}}},
		{{Key: "$set", Value: bson.M{
			"tier": bson.M{"$switch": bson.M{
				"branches": bson.A{
					bson.M{"case": bson.M{"$gte": bson.A{"$totalEarned", models.GoldThreshold}}, "then": models.TierGold},
					bson.M{"case": bson.M{"$gte": bson.A{"$totalEarned", models.SilverThreshold}}, "then": models.TierSilver},
				},
				"default": models.TierBronze,
			}},
		}}},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"history": 0})

	var acc models.LoyaltyAccount
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"customerId": customerID}, update, opts).Decode(&acc); err != nil {
		return nil, fmt.Errorf("failed to apply earning for %s: %w", customerID, err)
	}
	return &acc, nil
}

// Redeem applies a redemption with the balance guard inside the update filter,
// so two concurrent redemptions can never overdraw the account. Redemption
// leaves totalEarned alone, so the stored tier stays correct as-is.
func (r *MongoLoyaltyRepo) Redeem(customerID string, points int64, txn models.LoyaltyTransaction) (*models.LoyaltyAccount, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{"customerId": customerID, "points": bson.M{"$gte": points}}
	update := bson.M{
		"$push": bson.M{"history": txn},
		"$inc":  bson.M{"points": -points, "totalRedeemed": points},
		"$set":  bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"history": 0})

	var acc models.LoyaltyAccount
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&acc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInsufficientPoints
		}
		return nil, fmt.Errorf("failed to apply redemption for %s: %w", customerID, err)
	}
	return &acc, nil
}

// GetHistoryPage returns one page of history entries, newest first, using a
// $slice projection over the embedded array.
func (r *MongoLoyaltyRepo) GetHistoryPage(customerID string, page, limit int64) ([]models.LoyaltyTransaction, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	skip := (page - 1) * limit

	// History is appended chronologically; slice from the end for newest-first.
	// The array length rides along so a page past the end can be detected.
	opts := options.FindOne().SetProjection(bson.M{
		"history":     bson.M{"$slice": bson.A{-(skip + limit), limit}},
		"historySize": bson.M{"$size": bson.M{"$ifNull": bson.A{"$history", bson.A{}}}},
	})

	var doc struct {
		History     []models.LoyaltyTransaction `bson:"history"`
		HistorySize int64                       `bson:"historySize"`
	}
	if err := r.coll.FindOne(ctx, bson.M{"customerId": customerID}, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return []models.LoyaltyTransaction{}, nil
		}
		return nil, fmt.Errorf("failed to fetch loyalty history for %s: %w", customerID, err)
	}
	return pageWindow(doc.History, doc.HistorySize, skip), nil
}

// pageWindow trims a tail slice of the history down to the entries that belong
// to the requested page and reverses it so the newest entry comes first. Mongo
// clamps a negative $slice start to zero, so a page past the end of the array
// re-reads from the front; the trim drops those extra entries.
func pageWindow(history []models.LoyaltyTransaction, total, skip int64) []models.LoyaltyTransaction {
	remaining := total - skip
	if remaining <= 0 {
		return []models.LoyaltyTransaction{}
	}
	if remaining < int64(len(history)) {
		history = history[:remaining]
	}
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history
}
