package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mindmash/backend/internal/domain"
)

const startingRating = 1200

// winRatingDelta is the flat rating bump for a reported win.
const winRatingDelta = 15

// UserRepo is the account store backed by the users collection.
type UserRepo struct {
	collection *mongo.Collection
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{collection: db.Collection("users")}
}

// Create inserts a new account with the starting rating and returns its id.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash, googleID string) (*domain.User, error) {
	user := &domain.User{
		Username: username,
		Email:    email,
		Password: passwordHash,
		GoogleID: googleID,
		Rating:   startingRating,
	}

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %v", err)
	}
	user.ID = result.InsertedID.(primitive.ObjectID)
	return user, nil
}

// FindByEmail returns the user with the given email, or nil when absent.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByUsername returns the user with the given username, or nil when absent.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// FindByID returns the user with the given hex id, or nil when absent.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %v", id, err)
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %v", err)
	}
	return &user, nil
}

// LinkGoogleID attaches a Google account id to an existing user.
func (r *UserRepo) LinkGoogleID(ctx context.Context, email, googleID string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"googleId": googleID}})
	if err != nil {
		return fmt.Errorf("failed to link google id: %v", err)
	}
	return nil
}

// RecordWin bumps a user's wins and rating and returns the updated document.
func (r *UserRepo) RecordWin(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %v", id, err)
	}

	var user domain.User
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"wins": 1, "rating": winRatingDelta}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record win: %v", err)
	}
	return &user, nil
}

// Leaderboard returns the top users by rating, then wins.
func (r *UserRepo) Leaderboard(ctx context.Context, limit int) ([]domain.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "wins", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"password": 0})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %v", err)
	}
	defer cursor.Close(ctx)

	var users []domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %v", err)
	}
	return users, nil
}
