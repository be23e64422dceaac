package bookingRepo

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

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new BookingRepository backed by the
// "bookings" collection.
func NewMongoBookingRepo() BookingRepository {
	coll := database.DB().Collection("bookings")
	repo := &MongoBookingRepo{coll: coll}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", id, err)
	}
	return &booking, nil
}

// UpdateStatusIf performs the optimistic-concurrency transition: one
// FindOneAndUpdate conditioned on the current status. Two racing transitions
// with mutually exclusive guards cannot both match.
func (r *MongoBookingRepo) UpdateStatusIf(
	ctx context.Context,
	id string,
	from []models.BookingStatus,
	to models.BookingStatus,
	update StatusUpdate,
) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if update.ScheduledDatetime != nil {
		set["scheduled_datetime"] = *update.ScheduledDatetime
	}
	if update.CompletedAt != nil {
		set["completed_at"] = *update.CompletedAt
	}
	if update.CancelledAt != nil {
		set["cancelled_at"] = *update.CancelledAt
	}
	if update.CancelledBy != "" {
		set["cancelled_by"] = update.CancelledBy
	}
	if update.CancellationReason != "" {
		set["cancellation_reason"] = update.CancellationReason
	}
	if update.FinalPrice != nil {
		set["final_price"] = *update.FinalPrice
	}

	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to transition booking %s to %s: %w", id, to, err)
	}

	// Distinguish a lost guard from a missing booking.
	count, countErr := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if countErr != nil {
		return nil, fmt.Errorf("failed to check booking %s after conflict: %w", id, countErr)
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrStatusConflict
}

func (r *MongoBookingRepo) ActiveForProvider(ctx context.Context, providerID string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"provider_id": providerID,
		"status":      bson.M{"$in": models.ActiveStatuses},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active bookings for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode active bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) CompletedForCustomer(ctx context.Context, customerID string, limit int) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}
	filter := bson.M{
		"customer_id": customerID,
		"status":      models.StatusCompleted,
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "completed_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completed bookings for customer %s: %w", customerID, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode completed bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) CountByStatuses(
	ctx context.Context,
	providerID string,
	statuses []models.BookingStatus,
) (map[models.BookingStatus]int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"provider_id": providerID,
			"status":      bson.M{"$in": statuses},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Status models.BookingStatus `bson:"_id"`
		Count  int                  `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode booking counts: %w", err)
	}

	counts := make(map[models.BookingStatus]int, len(results))
	for _, res := range results {
		counts[res.Status] = res.Count
	}
	return counts, nil
}

func (r *MongoBookingRepo) AvgCompletedPrice(ctx context.Context, providerID string) (float64, error) {
	return r.avgFinalPrice(ctx, bson.M{
		"provider_id": providerID,
		"status":      models.StatusCompleted,
		"final_price": bson.M{"$gt": 0},
	})
}

func (r *MongoBookingRepo) AvgCompletedPriceByCategory(ctx context.Context, category string) (float64, error) {
	return r.avgFinalPrice(ctx, bson.M{
		"category":    category,
		"status":      models.StatusCompleted,
		"final_price": bson.M{"$gt": 0},
	})
}

func (r *MongoBookingRepo) avgFinalPrice(ctx context.Context, match bson.M) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":      nil,
			"avgPrice": bson.M{"$avg": "$final_price"},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate average price: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		AvgPrice float64 `bson:"avgPrice"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode average price: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].AvgPrice, nil
}
