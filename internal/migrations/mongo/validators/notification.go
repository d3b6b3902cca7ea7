package validators

import "go.mongodb.org/mongo-driver/bson"

var NotificationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"type",
			"booking_id",
			"user_id",
			"user_email",
			"scheduled_for",
			"sent",
			"cancelled",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"booking_confirmation",
					"reminder_24h",
					"reminder_same_day",
				},
			},

			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"user_email": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 254,
			},

			"scheduled_for": bson.M{
				"bsonType": "date",
			},

			"sent": bson.M{
				"bsonType": "bool",
			},

			"sent_at": bson.M{
				"bsonType": "date",
			},

			"email_id": bson.M{
				"bsonType": "string",
			},

			"cancelled": bson.M{
				"bsonType": "bool",
			},

			"data": bson.M{
				"bsonType": "object",
				"additionalProperties": bson.M{
					"bsonType": "string",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
