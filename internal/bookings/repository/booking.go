package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "tutorhub/internal/bookings/errors"
	"tutorhub/pkg/config"
	mongotx "tutorhub/pkg/db/mongo"
	"tutorhub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindActiveByTeacherAndDate(ctx context.Context, teacherID string, date string) ([]*model.Booking, error)
	FindByTeacher(ctx context.Context, teacherID string, fromDate string, toDate string, limit int, offset int64) ([]*model.Booking, error)
	CountByTeacher(ctx context.Context, teacherID string, fromDate string, toDate string) (int64, error)
	UpdateStatus(ctx context.Context, id string, status string, cancelledBy string, reason string) error
	Move(ctx context.Context, id string, date string, timeOfDay string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining > timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

// Create inserts the booking, relying on the unique partial index over
// (teacher_id, date, time) for active documents to reject a concurrent
// booking of the same slot. The duplicate-key error maps to ErrSlotTaken.
func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Active = booking.Status == model.StatusPending || booking.Status == model.StatusConfirmed

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s %s %s", bookingserrors.ErrSlotTaken, booking.TeacherID, booking.Date, booking.Time)
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}

	var booking model.Booking
	err = r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindActiveByTeacherAndDate(ctx context.Context, teacherID string, date string) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"teacher_id": teacherID,
		"date":       date,
		"active":     true,
	}

	opts := options.Find().SetSort(bson.D{{Key: "time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func teacherRangeFilter(teacherID string, fromDate string, toDate string) bson.M {
	filter := bson.M{"teacher_id": teacherID}
	dateRange := bson.M{}
	if fromDate != "" {
		dateRange["$gte"] = fromDate
	}
	if toDate != "" {
		dateRange["$lte"] = toDate
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}
	return filter
}

func (r *mongoBookingRepository) FindByTeacher(ctx context.Context, teacherID string, fromDate string, toDate string, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, teacherRangeFilter(teacherID, fromDate, toDate), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) CountByTeacher(ctx context.Context, teacherID string, fromDate string, toDate string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, teacherRangeFilter(teacherID, fromDate, toDate))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// UpdateStatus sets the booking status, keeping the active flag in sync so
// terminal bookings release their slot in the unique index.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, status string, cancelledBy string, reason string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	set := bson.M{
		"status":     status,
		"active":     status == model.StatusPending || status == model.StatusConfirmed,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}
	if cancelledBy != "" {
		set["cancelled_by"] = cancelledBy
	}
	if reason != "" {
		set["cancellation_reason"] = reason
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
	}
	return nil
}

// Move mutates date and time in place. The same unique partial index that
// guards Create rejects a move onto an occupied slot, so the conflict check
// and the write stay one atomic operation.
func (r *mongoBookingRepository) Move(ctx context.Context, id string, date string, timeOfDay string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"date":       date,
			"time":       timeOfDay,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s %s", bookingserrors.ErrSlotTaken, date, timeOfDay)
		}
		return fmt.Errorf("failed to move booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
