package model

import "time"

// ReservationLock is a short-lived advisory lock keyed by the slot
// coordinates being reserved. A unique index on _id makes the second
// concurrent request fail with a duplicate key error.
type ReservationLock struct {
	ID        string    `json:"id" bson:"_id"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
