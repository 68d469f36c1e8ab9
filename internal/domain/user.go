package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is the persistent account document. Password is the bcrypt hash and
// never leaves the server.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
	GoogleID string             `bson:"googleId,omitempty" json:"-"`
	Rating   int                `bson:"rating" json:"rating"`
	Wins     int                `bson:"wins" json:"wins"`
	Losses   int                `bson:"losses" json:"losses"`
}
