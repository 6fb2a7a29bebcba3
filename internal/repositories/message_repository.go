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

// MessageRepository defines the interface for direct, group and community messages
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListByConversation(ctx context.Context, conversationID primitive.ObjectID, skip, limit int64) ([]models.Message, error)
	ListByCommunity(ctx context.Context, communityID primitive.ObjectID, skip, limit int64) ([]models.Message, error)
	MarkSeen(ctx context.Context, messageID, userID string) (*models.Message, error)
	DeleteForEveryone(ctx context.Context, messageID, userID string) (*models.Message, error)
	Audience(ctx context.Context, msg *models.Message) ([]string, error)
}

// MongoMessageRepository implements MessageRepository for MongoDB
type MongoMessageRepository struct {
	collection    *mongo.Collection
	conversations *mongo.Collection
	communities   *mongo.Collection
	now           func() time.Time
}

// NewMongoMessageRepository creates a new MongoMessageRepository
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{
		collection:    db.Collection("messages"),
		conversations: db.Collection("conversations"),
		communities:   db.Collection("communities"),
		now:           time.Now,
	}
}

// EnsureIndexes creates the history indexes
func (r *MongoMessageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "community_id", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	return err
}

// CreateMessage persists a message. It must belong to exactly one conversation or community.
func (r *MongoMessageRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	if (msg.ConversationID == nil) == (msg.CommunityID == nil) {
		return errors.New("message must belong to exactly one conversation or community")
	}
	now := r.now()
	msg.ID = primitive.NewObjectID()
	if msg.MediaType == "" {
		msg.MediaType = models.MessageText
	}
	if msg.SeenBy == nil {
		msg.SeenBy = []models.SeenMarker{}
	}
	msg.CreatedAt = now
	msg.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, msg)
	return err
}

// ListByConversation returns a page of history in chronological order
func (r *MongoMessageRepository) ListByConversation(ctx context.Context, conversationID primitive.ObjectID, skip, limit int64) ([]models.Message, error) {
	return r.list(ctx, bson.M{"conversation_id": conversationID}, skip, limit)
}

// ListByCommunity returns a page of community chat in chronological order
func (r *MongoMessageRepository) ListByCommunity(ctx context.Context, communityID primitive.ObjectID, skip, limit int64) ([]models.Message, error) {
	return r.list(ctx, bson.M{"community_id": communityID}, skip, limit)
}

func (r *MongoMessageRepository) list(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetSkip(skip).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	msgs := []models.Message{}
	if err = cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkSeen records that userID has seen the message. Repeating it, or calling
// it as the sender, leaves the message unchanged. Only members of the message's
// conversation or community may mark it; anyone else gets ErrForbidden.
func (r *MongoMessageRepository) MarkSeen(ctx context.Context, messageID, userID string) (*models.Message, error) {
	objID, err := objectID(messageID)
	if err != nil {
		return nil, err
	}

	var current models.Message
	if err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&current); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("message: %w", ErrNotFound)
		}
		return nil, err
	}
	member, err := r.isMember(ctx, &current, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, fmt.Errorf("message: %w", ErrForbidden)
	}

	filter := bson.M{
		"_id":             objID,
		"sender_id":       bson.M{"$ne": userID},
		"seen_by.user_id": bson.M{"$ne": userID},
	}
	update := bson.M{"$push": bson.M{"seen_by": models.SeenMarker{UserID: userID, SeenAt: r.now()}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var msg models.Message
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// sender, already seen, or deleted in between
		err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&msg)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("message: %w", ErrNotFound)
		}
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// Audience returns the members of the conversation or community msg belongs to
func (r *MongoMessageRepository) Audience(ctx context.Context, msg *models.Message) ([]string, error) {
	coll, id := r.parent(msg)
	if coll == nil {
		return []string{}, nil
	}

	var doc struct {
		Members []string `bson:"members"`
	}
	opts := options.FindOne().SetProjection(bson.M{"members": 1})
	if err := coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []string{}, nil
		}
		return nil, err
	}
	return nonNil(doc.Members), nil
}

func (r *MongoMessageRepository) isMember(ctx context.Context, msg *models.Message, userID string) (bool, error) {
	coll, id := r.parent(msg)
	if coll == nil {
		return false, nil
	}
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id, "members": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoMessageRepository) parent(msg *models.Message) (*mongo.Collection, primitive.ObjectID) {
	switch {
	case msg.ConversationID != nil:
		return r.conversations, *msg.ConversationID
	case msg.CommunityID != nil:
		return r.communities, *msg.CommunityID
	}
	return nil, primitive.NilObjectID
}

// DeleteForEveryone removes a message on behalf of its sender and returns it
func (r *MongoMessageRepository) DeleteForEveryone(ctx context.Context, messageID, userID string) (*models.Message, error) {
	objID, err := objectID(messageID)
	if err != nil {
		return nil, err
	}

	var msg models.Message
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": objID, "sender_id": userID}).Decode(&msg)
	if err == nil {
		return &msg, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": objID}, options.Count().SetLimit(1))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("message: %w", ErrNotFound)
	}
	return nil, fmt.Errorf("message: %w", ErrForbidden)
}
