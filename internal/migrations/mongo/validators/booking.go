package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"kind",
			"requester_id",
			"resource_id",
			"status",
			"window_start",
			"window_end",
			"renewal_count",
			"open",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"kind": bson.M{
				"bsonType": "string",
				"enum":     []string{"loan", "reservation"},
			},

			"requester_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},

			"resource_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"PENDING", "ACTIVE", "RENEWED", "FINISHED"},
			},

			"window_start": bson.M{
				"bsonType": "date",
			},

			"window_end": bson.M{
				"bsonType": "date",
			},

			"completed_at": bson.M{
				"bsonType": []string{"date", "null"},
			},

			"renewal_count": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"people_count": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"open": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
