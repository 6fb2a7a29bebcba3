package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// FollowRepository maintains the follower/following sets stored on each user
type FollowRepository interface {
	ToggleFollow(ctx context.Context, followerID, targetID string) (bool, error)
}

// MongoFollowRepository implements FollowRepository on the users collection
type MongoFollowRepository struct {
	collection *mongo.Collection
}

// NewMongoFollowRepository creates a new MongoFollowRepository
func NewMongoFollowRepository(db *mongo.Database) *MongoFollowRepository {
	return &MongoFollowRepository{collection: db.Collection("users")}
}

// ToggleFollow follows targetID if followerID is not yet a follower, otherwise
// unfollows. It reports the resulting state. Each side is a conditional
// single-document update, so concurrent toggles never duplicate an entry.
func (r *MongoFollowRepository) ToggleFollow(ctx context.Context, followerID, targetID string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"auth_id": targetID, "followers": bson.M{"$ne": followerID}},
		bson.M{"$addToSet": bson.M{"followers": followerID}},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 1 {
		_, err = r.collection.UpdateOne(ctx,
			bson.M{"auth_id": followerID},
			bson.M{"$addToSet": bson.M{"following": targetID}},
		)
		return true, err
	}

	res, err = r.collection.UpdateOne(ctx,
		bson.M{"auth_id": targetID, "followers": followerID},
		bson.M{"$pull": bson.M{"followers": followerID}},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, fmt.Errorf("user: %w", ErrNotFound)
	}
	_, err = r.collection.UpdateOne(ctx,
		bson.M{"auth_id": followerID},
		bson.M{"$pull": bson.M{"following": targetID}},
	)
	return false, err
}
