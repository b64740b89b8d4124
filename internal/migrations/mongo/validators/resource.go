package validators

import "go.mongodb.org/mongo-driver/bson"

var ResourceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"kind", "name", "status"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"kind": bson.M{
				"bsonType": "string",
				"enum":     []string{"book", "room"},
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"AVAILABLE", "LENT", "RESERVED", "NOT_AVAILABLE"},
			},
			"min_occupancy": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"max_occupancy": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
		},
	},
}

var LeaseValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "owner", "expires_at"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"owner": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"expires_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var AuditValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"requester_id", "action", "object_id", "recorded_at"},
		"properties": bson.M{
			"requester_id": bson.M{"bsonType": "string"},
			"action":       bson.M{"bsonType": "string"},
			"object_id":    bson.M{"bsonType": "string"},
			"recorded_at":  bson.M{"bsonType": "date"},
		},
	},
}
