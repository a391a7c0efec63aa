package domain

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidID marks identifiers that fail the format contract. It is a
// client error distinct from "not found" and is mapped before any lookup.
var ErrInvalidID = errors.New("invalid id format")

// ParseID validates that raw is a 24-character lowercase hex ObjectID and
// parses it. Malformed input never reaches the storage layer.
func ParseID(raw string) (primitive.ObjectID, error) {
	if len(raw) != 24 {
		return primitive.NilObjectID, ErrInvalidID
	}
	for _, r := range raw {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return primitive.NilObjectID, ErrInvalidID
		}
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}
