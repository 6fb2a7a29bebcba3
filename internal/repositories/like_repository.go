package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/onyxdrift/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LikeRepository defines the interface for post like operations
type LikeRepository interface {
	ToggleLike(ctx context.Context, postID, userID string) (*models.Post, error)
}

// MongoLikeRepository keeps likes as a set of user ids embedded in each post
type MongoLikeRepository struct {
	collection *mongo.Collection
}

// NewMongoLikeRepository creates a new MongoLikeRepository
func NewMongoLikeRepository(db *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{collection: db.Collection("posts")}
}

// ToggleLike adds userID to the post's like set, or removes it when already
// present, in a single pipeline update. The updated post is returned.
func (r *MongoLikeRepository) ToggleLike(ctx context.Context, postID, userID string) (*models.Post, error) {
	objID, err := objectID(postID)
	if err != nil {
		return nil, err
	}

	likes := bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}
	user := bson.A{bson.M{"$literal": userID}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"likes": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{bson.M{"$literal": userID}, likes}},
				bson.M{"$setDifference": bson.A{likes, user}},
				bson.M{"$concatArrays": bson.A{likes, user}},
			}},
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("post: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	post.Likes = nonNil(post.Likes)
	return &post, nil
}
