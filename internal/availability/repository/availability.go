package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	availabilityerrors "tutorhub/internal/availability/errors"
	"tutorhub/pkg/config"
	mongotx "tutorhub/pkg/db/mongo"
	"tutorhub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Availability"
)

type mongoAvailabilityRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type AvailabilityRepository interface {
	FindByTeacherID(ctx context.Context, teacherID string) (*model.TeacherAvailability, error)
	Upsert(ctx context.Context, av *model.TeacherAvailability) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoAvailabilityRepository(cfg *config.Config) AvailabilityRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAvailabilityRepository{
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
func (r *mongoAvailabilityRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoAvailabilityRepository) FindByTeacherID(ctx context.Context, teacherID string) (*model.TeacherAvailability, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"teacher_id": teacherID}

	var av model.TeacherAvailability
	err := r.collection.FindOne(ctx, filter).Decode(&av)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: teacher %s", availabilityerrors.ErrNotFound, teacherID)
		}
		return nil, fmt.Errorf("failed to find availability: %w", err)
	}

	return &av, nil
}

// Upsert replaces the teacher's one live availability document, creating it
// when absent. The created_at of an existing document is preserved.
func (r *mongoAvailabilityRepository) Upsert(ctx context.Context, av *model.TeacherAvailability) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	if av.CreatedAt.IsZero() {
		av.CreatedAt = now
	}
	av.UpdatedAt = now

	filter := bson.M{"teacher_id": av.TeacherID}
	update := bson.M{
		"$set": bson.M{
			"weekly_schedule":             av.WeeklySchedule,
			"slot_duration_min":           av.SlotDurationMin,
			"buffer_time_min":             av.BufferTimeMin,
			"min_advance_booking_days":    av.MinAdvanceBookingDays,
			"max_advance_booking_days":    av.MaxAdvanceBookingDays,
			"allow_cancellation":          av.AllowCancellation,
			"cancellation_deadline_hours": av.CancellationDeadlineHours,
			"allow_rescheduling":          av.AllowRescheduling,
			"rescheduling_deadline_hours": av.ReschedulingDeadlineHours,
			"updated_at":                  av.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"teacher_id": av.TeacherID,
			"created_at": av.CreatedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	result, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert availability: %w", err)
	}

	if oid, ok := result.UpsertedID.(primitive.ObjectID); ok {
		av.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAvailabilityRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
