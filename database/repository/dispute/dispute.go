package disputeRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"karigar/database"
	"karigar/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrAlreadyExists is returned when a dispute already exists for the booking.
// The unique index on booking_id enforces this even under concurrent inserts.
var ErrAlreadyExists = errors.New("a dispute already exists for this booking")

// DisputeRepository manages dispute side records. At most one dispute may
// exist per booking.
type DisputeRepository interface {
	Create(ctx context.Context, dispute *models.Dispute) error
	Delete(ctx context.Context, id string) error
	ExistsForBooking(ctx context.Context, bookingID string) (bool, error)
}

// MongoDisputeRepo implements DisputeRepository using MongoDB.
type MongoDisputeRepo struct {
	coll *mongo.Collection
}

// NewMongoDisputeRepo creates a DisputeRepository backed by the "disputes"
// collection.
func NewMongoDisputeRepo() DisputeRepository {
	repo := &MongoDisputeRepo{coll: database.DB().Collection("disputes")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// ensureIndexes creates the unique indexes the one-dispute-per-booking rule
// relies on.
func (r *MongoDisputeRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "booking_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create dispute indexes: %w", err)
	}
	return nil
}

func (r *MongoDisputeRepo) Create(ctx context.Context, dispute *models.Dispute) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, dispute); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create dispute: %w", err)
	}
	return nil
}

func (r *MongoDisputeRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("failed to delete dispute %s: %w", id, err)
	}
	return nil
}

func (r *MongoDisputeRepo) ExistsForBooking(ctx context.Context, bookingID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{"booking_id": bookingID})
	if err != nil {
		return false, fmt.Errorf("failed to check dispute for booking %s: %w", bookingID, err)
	}
	return count > 0, nil
}
