package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"teacher_id",
			"student_id",
			"teacher_name",
			"student_name",
			"student_email",
			"subject",
			"date",
			"time",
			"duration_min",
			"status",
			"active",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"teacher_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"student_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"teacher_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"student_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"student_email": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 254,
			},

			"subject": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{4}-[0-9]{2}-[0-9]{2}$",
			},

			"time": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"duration_min": bson.M{
				"bsonType": "int",
				"minimum":  5,
				"maximum":  480,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"cancelled",
					"completed",
				},
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"cancelled_by": bson.M{
				"bsonType": "string",
				"enum": []string{
					"student",
					"teacher",
					"system",
				},
			},

			"cancellation_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"active": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
