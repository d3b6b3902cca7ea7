package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tutorhub/internal/migrations/mongo/validators"
)

var (
	AvailabilityIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "teacher_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	// The unique partial index is the single authority on slot
	// conflict-freedom: two active bookings can never share a
	// (teacher_id, date, time) triple, while cancelled and completed
	// bookings stay out of the index and free their slot.
	BookingsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "teacher_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "time", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"active": true}),
		},
		{
			Keys: bson.D{
				{Key: "teacher_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "active", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "student_id", Value: 1},
				{Key: "date", Value: 1},
			},
		},
	}

	// Supports the dispatcher's due query and the per-booking cancel sweep.
	NotificationsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "sent", Value: 1},
				{Key: "cancelled", Value: 1},
				{Key: "scheduled_for", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "booking_id", Value: 1},
				{Key: "sent", Value: 1},
			},
		},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("Running TutorHub Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Availability": {
			Indexes:   AvailabilityIndexes,
			Validator: validators.AvailabilityValidator,
		},
		"Bookings": {
			Indexes:   BookingsIndexes,
			Validator: validators.BookingValidator,
		},
		"Notifications": {
			Indexes:   NotificationsIndexes,
			Validator: validators.NotificationValidator,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("Creating collection: %s\n", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else {
		fmt.Printf("Collection %s already exists, updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("Ensured indexes for %s\n", name)
	return nil
}
