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

// PostFilter narrows a post listing. Empty fields match everything.
type PostFilter struct {
	AuthorID string
	PostType string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, filter PostFilter, skip, limit int64) ([]models.Post, error)
	UpdatePostText(ctx context.Context, id, authorID, text string) (*models.Post, error)
	DeletePost(ctx context.Context, id, authorID string) (*models.Post, error)
	IncrementViews(ctx context.Context, id string) (*models.Post, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the feed and author listing indexes
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "post_type", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	now := time.Now()
	post.ID = primitive.NewObjectID()
	post.Likes = nonNil(post.Likes)
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	if post.MediaType == "" {
		post.MediaType = models.MediaNone
	}
	if post.PostType == "" {
		post.PostType = models.PostTypePost
	}
	post.CreatedAt = now
	post.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return findPost(ctx, r.collection, bson.M{"_id": objID})
}

// ListPosts returns posts newest first
func (r *MongoPostRepository) ListPosts(ctx context.Context, filter PostFilter, skip, limit int64) ([]models.Post, error) {
	query := bson.M{}
	if filter.AuthorID != "" {
		query["author_id"] = filter.AuthorID
	}
	if filter.PostType != "" {
		query["post_type"] = filter.PostType
	}

	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePostText edits the text of a post owned by authorID
func (r *MongoPostRepository) UpdatePostText(ctx context.Context, id, authorID, text string) (*models.Post, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "author_id": authorID},
		bson.M{"$set": bson.M{"text": text, "updated_at": time.Now()}},
		opts,
	).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.ownershipError(ctx, objID)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes a post owned by authorID and returns what was removed
func (r *MongoPostRepository) DeletePost(ctx context.Context, id, authorID string) (*models.Post, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": objID, "author_id": authorID}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.ownershipError(ctx, objID)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// IncrementViews bumps the view counter of a post
func (r *MongoPostRepository) IncrementViews(ctx context.Context, id string) (*models.Post, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"views": 1}}, opts).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("post: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ownershipError tells a missing post apart from one owned by someone else
func (r *MongoPostRepository) ownershipError(ctx context.Context, id primitive.ObjectID) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("post: %w", ErrNotFound)
	}
	return fmt.Errorf("post: %w", ErrForbidden)
}

func findPost(ctx context.Context, collection *mongo.Collection, filter bson.M) (*models.Post, error) {
	var post models.Post
	err := collection.FindOne(ctx, filter).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("post: %w", ErrNotFound)
		}
		return nil, err
	}
	return &post, nil
}
