package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	notificationserrors "tutorhub/internal/notifications/errors"
	"tutorhub/pkg/config"
	"tutorhub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Notifications"
)

type mongoNotificationRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type NotificationRepository interface {
	Insert(ctx context.Context, record *model.NotificationRecord) error
	FindByID(ctx context.Context, id string) (*model.NotificationRecord, error)
	FindDue(ctx context.Context, now time.Time, limit int) ([]*model.NotificationRecord, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time, emailID string) error
	CancelByBooking(ctx context.Context, bookingID string) (int64, error)
}

func NewMongoNotificationRepository(cfg *config.Config) NotificationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoNotificationRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoNotificationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoNotificationRepository) Insert(ctx context.Context, record *model.NotificationRecord) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	record.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid.Hex()
	}
	return nil
}

func (r *mongoNotificationRepository) FindByID(ctx context.Context, id string) (*model.NotificationRecord, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", notificationserrors.ErrInvalidID, id)
	}

	var record model.NotificationRecord
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", notificationserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}

	return &record, nil
}

// FindDue selects a bounded page of unsent, uncancelled records whose fire
// time has arrived, oldest fire time first.
func (r *mongoNotificationRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*model.NotificationRecord, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"sent":          false,
		"cancelled":     false,
		"scheduled_for": bson.M{"$lte": now},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "scheduled_for", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query due notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*model.NotificationRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return records, nil
}

// MarkSent flips sent=false to sent=true. The filter includes sent=false,
// so the transition happens at most once; a second attempt reports
// ErrAlreadySent instead of overwriting the original send metadata.
func (r *mongoNotificationRepository) MarkSent(ctx context.Context, id string, sentAt time.Time, emailID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", notificationserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "sent": false}
	update := bson.M{
		"$set": bson.M{
			"sent":     true,
			"sent_at":  sentAt,
			"email_id": emailID,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", notificationserrors.ErrAlreadySent, id)
	}
	return nil
}

// CancelByBooking cancels every still-pending record of a booking. Records
// already sent keep their history; nothing is physically deleted.
func (r *mongoNotificationRepository) CancelByBooking(ctx context.Context, bookingID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"booking_id": bookingID,
		"sent":       false,
		"cancelled":  false,
	}
	update := bson.M{"$set": bson.M{"cancelled": true}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel notifications: %w", err)
	}
	return result.ModifiedCount, nil
}
