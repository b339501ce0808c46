package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Image struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID   `bson:"user_id" json:"user_id"`
	EventID    primitive.ObjectID   `bson:"event_id" json:"event_id"`
	URL        string               `bson:"url" json:"url"`
	Votes      int                  `bson:"votes" json:"votes"`
	VoteRecord []primitive.ObjectID `bson:"voterecord" json:"voterecord"` // one entry per voter
	CreatedAt  time.Time            `bson:"created_at" json:"created_at"`
}
