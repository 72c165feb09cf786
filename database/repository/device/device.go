package deviceRepo

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

// DeviceRepository stores the push token registered by each customer's app.
type DeviceRepository interface {
	// UpsertToken records or refreshes the customer's FCM token.
	UpsertToken(customerID, fcmToken string) error
	// GetToken returns the customer's FCM token, or "" when none registered.
	GetToken(customerID string) (string, error)
}

// MongoDeviceRepo implements DeviceRepository using MongoDB.
type MongoDeviceRepo struct {
	coll *mongo.Collection
}

// NewMongoDeviceRepo creates a new instance of DeviceRepository using MongoDB.
func NewMongoDeviceRepo() DeviceRepository {
	repo := &MongoDeviceRepo{coll: database.Collection("customer_devices")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create customer_devices indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoDeviceRepo) ensureIndexes() error {
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

// UpsertToken records or refreshes the customer's FCM token.
func (r *MongoDeviceRepo) UpsertToken(customerID, fcmToken string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"fcmToken": fcmToken, "updatedAt": time.Now()}}
	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateOne(ctx, bson.M{"customerId": customerID}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert device token for %s: %w", customerID, err)
	}
	return nil
}

// GetToken returns the customer's FCM token, or "" when none registered.
func (r *MongoDeviceRepo) GetToken(customerID string) (string, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var device models.CustomerDevice
	if err := r.coll.FindOne(ctx, bson.M{"customerId": customerID}).Decode(&device); err != nil {
		if err == mongo.ErrNoDocuments {
			return "", nil
		}
		return "", fmt.Errorf("failed to fetch device token for %s: %w", customerID, err)
	}
	return device.FCMToken, nil
}
