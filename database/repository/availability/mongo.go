package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"karigar/database"
	"karigar/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAvailabilityRepo implements AvailabilityRepository using MongoDB.
type MongoAvailabilityRepo struct {
	availColl   *mongo.Collection
	timeOffColl *mongo.Collection
}

// NewMongoAvailabilityRepo creates an AvailabilityRepository backed by the
// "provider_availability" and "provider_time_off" collections.
func NewMongoAvailabilityRepo() AvailabilityRepository {
	repo := &MongoAvailabilityRepo{
		availColl:   database.DB().Collection("provider_availability"),
		timeOffColl: database.DB().Collection("provider_time_off"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// ensureIndexes creates indexes for the per-provider lookups both
// collections serve.
func (r *MongoAvailabilityRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.availColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "provider_id", Value: 1}, {Key: "day_of_week", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create availability indexes: %w", err)
	}
	if _, err := r.timeOffColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "provider_id", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create time off indexes: %w", err)
	}
	return nil
}

// ReplaceWeekly deletes the provider's previous schedule and inserts the new
// one. A resubmitted weekly schedule always replaces wholesale.
func (r *MongoAvailabilityRepo) ReplaceWeekly(ctx context.Context, providerID string, entries []models.ProviderAvailability) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.availColl.DeleteMany(ctx, bson.M{"provider_id": providerID}); err != nil {
		return fmt.Errorf("failed to clear weekly availability for provider %s: %w", providerID, err)
	}
	if len(entries) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, e)
	}
	if _, err := r.availColl.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert weekly availability for provider %s: %w", providerID, err)
	}
	return nil
}

func (r *MongoAvailabilityRepo) GetWeekly(ctx context.Context, providerID string) ([]models.ProviderAvailability, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.availColl.Find(ctx, bson.M{"provider_id": providerID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weekly availability for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var entries []models.ProviderAvailability
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode weekly availability: %w", err)
	}
	return entries, nil
}

func (r *MongoAvailabilityRepo) AddTimeOff(ctx context.Context, timeOff *models.ProviderTimeOff) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.timeOffColl.InsertOne(ctx, timeOff); err != nil {
		return fmt.Errorf("failed to add time off: %w", err)
	}
	return nil
}

func (r *MongoAvailabilityRepo) DeleteTimeOff(ctx context.Context, providerID, timeOffID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.timeOffColl.DeleteOne(ctx, bson.M{"id": timeOffID, "provider_id": providerID})
	if err != nil {
		return fmt.Errorf("failed to delete time off %s: %w", timeOffID, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("time off %s not found for provider %s", timeOffID, providerID)
	}
	return nil
}

func (r *MongoAvailabilityRepo) TimeOffOverlapping(ctx context.Context, providerID string, from, to time.Time) ([]models.ProviderTimeOff, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Two intervals overlap unless one entirely precedes the other.
	filter := bson.M{
		"provider_id":    providerID,
		"start_datetime": bson.M{"$lt": to},
		"end_datetime":   bson.M{"$gt": from},
	}
	cursor, err := r.timeOffColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch time off for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var periods []models.ProviderTimeOff
	if err := cursor.All(ctx, &periods); err != nil {
		return nil, fmt.Errorf("failed to decode time off records: %w", err)
	}
	return periods, nil
}
