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

// ConversationRepository defines the interface for chat threads
type ConversationRepository interface {
	GetOrCreateDirect(ctx context.Context, userID, otherID string) (*models.Conversation, error)
	CreateGroup(ctx context.Context, conv *models.Conversation) error
	GetConversationByID(ctx context.Context, id string) (*models.Conversation, error)
	ListForMember(ctx context.Context, userID string) ([]models.Conversation, error)
	UpdateLastMessage(ctx context.Context, id primitive.ObjectID, preview *models.MessagePreview) error
}

// MongoConversationRepository implements ConversationRepository for MongoDB
type MongoConversationRepository struct {
	collection *mongo.Collection
}

// NewMongoConversationRepository creates a new MongoConversationRepository
func NewMongoConversationRepository(db *mongo.Database) *MongoConversationRepository {
	return &MongoConversationRepository{collection: db.Collection("conversations")}
}

// EnsureIndexes makes the direct pair key unique and indexes membership
func (r *MongoConversationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "direct_key", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "members", Value: 1}, {Key: "updated_at", Value: -1}}},
	})
	return err
}

// GetOrCreateDirect returns the single direct conversation between two users,
// creating it on first use
func (r *MongoConversationRepository) GetOrCreateDirect(ctx context.Context, userID, otherID string) (*models.Conversation, error) {
	key := models.DirectKey(userID, otherID)
	now := time.Now()
	update := bson.M{"$setOnInsert": bson.M{
		"members":    bson.A{userID, otherID},
		"is_group":   false,
		"created_at": now,
		"updated_at": now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var conv models.Conversation
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"direct_key": key}, update, opts).Decode(&conv)
	if mongo.IsDuplicateKeyError(err) {
		// a concurrent upsert won the insert
		err = r.collection.FindOne(ctx, bson.M{"direct_key": key}).Decode(&conv)
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// CreateGroup inserts a group conversation
func (r *MongoConversationRepository) CreateGroup(ctx context.Context, conv *models.Conversation) error {
	now := time.Now()
	conv.ID = primitive.NewObjectID()
	conv.IsGroup = true
	conv.DirectKey = ""
	conv.CreatedAt = now
	conv.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, conv)
	return err
}

// GetConversationByID retrieves a conversation by ID
func (r *MongoConversationRepository) GetConversationByID(ctx context.Context, id string) (*models.Conversation, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var conv models.Conversation
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("conversation: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListForMember returns the user's conversations, most recently active first
func (r *MongoConversationRepository) ListForMember(ctx context.Context, userID string) ([]models.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"members": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	convs := []models.Conversation{}
	if err = cursor.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// UpdateLastMessage stores the preview shown in conversation lists
func (r *MongoConversationRepository) UpdateLastMessage(ctx context.Context, id primitive.ObjectID, preview *models.MessagePreview) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_message": preview, "updated_at": preview.SentAt}},
	)
	return err
}
