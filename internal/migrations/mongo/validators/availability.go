package validators

import "go.mongodb.org/mongo-driver/bson"

var intervalSchema = bson.M{
	"bsonType": "object",
	"required": []string{"start", "end"},
	"properties": bson.M{
		"start": bson.M{
			"bsonType": "string",
			"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
		},
		"end": bson.M{
			"bsonType": "string",
			"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
		},
	},
}

var AvailabilityValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"teacher_id",
			"weekly_schedule",
			"slot_duration_min",
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

			"weekly_schedule": bson.M{
				"bsonType": "object",
				"additionalProperties": bson.M{
					"bsonType": "array",
					"items":    intervalSchema,
				},
			},

			"slot_duration_min": bson.M{
				"bsonType": "int",
				"minimum":  5,
				"maximum":  480,
			},

			"buffer_time_min": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  480,
			},

			"min_advance_booking_days": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  365,
			},

			"max_advance_booking_days": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  365,
			},

			"allow_cancellation": bson.M{
				"bsonType": "bool",
			},

			"cancellation_deadline_hours": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  720,
			},

			"allow_rescheduling": bson.M{
				"bsonType": "bool",
			},

			"rescheduling_deadline_hours": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  720,
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
