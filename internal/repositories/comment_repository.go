package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onyxdrift/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentRepository defines the interface for comments embedded in posts
type CommentRepository interface {
	AddComment(ctx context.Context, postID string, comment *models.Comment) (*models.Post, error)
	RemoveComment(ctx context.Context, postID, commentID, userID string) (*models.Post, error)
}

// MongoCommentRepository implements CommentRepository on the posts collection
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("posts")}
}

// AddComment appends a comment to a post and returns the updated post
func (r *MongoCommentRepository) AddComment(ctx context.Context, postID string, comment *models.Comment) (*models.Post, error) {
	objID, err := objectID(postID)
	if err != nil {
		return nil, err
	}
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID},
		bson.M{"$push": bson.M{"comments": comment}},
		opts,
	).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("post: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// RemoveComment deletes a comment. Only its author or the post author may do so.
func (r *MongoCommentRepository) RemoveComment(ctx context.Context, postID, commentID, userID string) (*models.Post, error) {
	pid, err := objectID(postID)
	if err != nil {
		return nil, err
	}
	cid, err := objectID(commentID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"_id":          pid,
		"comments._id": cid,
		"$or": bson.A{
			bson.M{"author_id": userID},
			bson.M{"comments": bson.M{"$elemMatch": bson.M{"_id": cid, "author_id": userID}}},
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$pull": bson.M{"comments": bson.M{"_id": cid}}}, opts).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		existing, ferr := findPost(ctx, r.collection, bson.M{"_id": pid})
		if ferr != nil {
			return nil, ferr
		}
		if _, ok := existing.FindComment(commentID); !ok {
			return nil, fmt.Errorf("comment: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("comment: %w", ErrForbidden)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}
