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

// StoryRepository defines the interface for story operations
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetActiveStories(ctx context.Context, now time.Time) ([]models.Story, error)
	DeleteStory(ctx context.Context, id, userID string) error
}

type storyRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
}

// NewStoryRepository creates a story repository whose stories live for ttl
func NewStoryRepository(db *mongo.Database, ttl time.Duration) *storyRepository {
	return &storyRepository{
		collection: db.Collection("stories"),
		ttl:        ttl,
	}
}

// EnsureIndexes installs the TTL index that lets MongoDB sweep expired stories
func (r *storyRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *storyRepository) CreateStory(ctx context.Context, story *models.Story) error {
	story.ID = primitive.NewObjectID()
	story.CreatedAt = time.Now()
	story.ExpiresAt = story.CreatedAt.Add(r.ttl)
	_, err := r.collection.InsertOne(ctx, story)
	return err
}

func (r *storyRepository) GetActiveStories(ctx context.Context, now time.Time) ([]models.Story, error) {
	filter := bson.M{"expires_at": bson.M{"$gt": now}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stories := []models.Story{}
	if err = cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

func (r *storyRepository) DeleteStory(ctx context.Context, id, userID string) error {
	objID, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 1 {
		return nil
	}

	var existing models.Story
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&existing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("story: %w", ErrNotFound)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("story: %w", ErrForbidden)
}
