package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FriendshipRepository maintains the friend and pending-request sets stored on
// each user
type FriendshipRepository interface {
	SendRequest(ctx context.Context, senderID, targetID string) error
	AcceptRequest(ctx context.Context, userID, senderID string) error
	DeclineRequest(ctx context.Context, userID, senderID string) error
	RemoveFriend(ctx context.Context, userID, friendID string) error
}

// MongoFriendshipRepository implements FriendshipRepository on the users collection
type MongoFriendshipRepository struct {
	collection *mongo.Collection
}

// NewMongoFriendshipRepository creates a new MongoFriendshipRepository
func NewMongoFriendshipRepository(db *mongo.Database) *MongoFriendshipRepository {
	return &MongoFriendshipRepository{collection: db.Collection("users")}
}

// SendRequest adds senderID to the target's pending requests. Sending twice is
// a no-op. It fails with ErrAlreadyExists when the two are already friends.
func (r *MongoFriendshipRepository) SendRequest(ctx context.Context, senderID, targetID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"auth_id": targetID, "friends": bson.M{"$ne": senderID}},
		bson.M{"$addToSet": bson.M{"pending_requests": senderID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}
	if err := r.exists(ctx, targetID); err != nil {
		return err
	}
	return fmt.Errorf("friendship: %w", ErrAlreadyExists)
}

// AcceptRequest moves senderID from userID's pending requests into its friends
// and adds userID to the sender's friends. A request the sender had pending
// from userID is cleared too.
func (r *MongoFriendshipRepository) AcceptRequest(ctx context.Context, userID, senderID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"auth_id": userID, "pending_requests": senderID},
		bson.M{
			"$pull":     bson.M{"pending_requests": senderID},
			"$addToSet": bson.M{"friends": senderID},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("friend request: %w", ErrNotFound)
	}

	_, err = r.collection.UpdateOne(ctx,
		bson.M{"auth_id": senderID},
		bson.M{
			"$pull":     bson.M{"pending_requests": userID},
			"$addToSet": bson.M{"friends": userID},
		},
	)
	return err
}

// DeclineRequest drops senderID from userID's pending requests
func (r *MongoFriendshipRepository) DeclineRequest(ctx context.Context, userID, senderID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"auth_id": userID, "pending_requests": senderID},
		bson.M{"$pull": bson.M{"pending_requests": senderID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("friend request: %w", ErrNotFound)
	}
	return nil
}

// RemoveFriend ends a friendship on both sides
func (r *MongoFriendshipRepository) RemoveFriend(ctx context.Context, userID, friendID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"auth_id": userID, "friends": friendID},
		bson.M{"$pull": bson.M{"friends": friendID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("friendship: %w", ErrNotFound)
	}
	_, err = r.collection.UpdateOne(ctx,
		bson.M{"auth_id": friendID},
		bson.M{"$pull": bson.M{"friends": userID}},
	)
	return err
}

func (r *MongoFriendshipRepository) exists(ctx context.Context, authID string) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"auth_id": authID}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user: %w", ErrNotFound)
	}
	return nil
}
