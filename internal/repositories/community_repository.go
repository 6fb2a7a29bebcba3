package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/onyxdrift/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommunityRepository defines the interface for community operations
type CommunityRepository interface {
	CreateCommunity(ctx context.Context, community *models.Community) error
	ListCommunities(ctx context.Context, query string, skip, limit int64) ([]models.Community, error)
	GetCommunityByID(ctx context.Context, id string) (*models.Community, error)
	ToggleMembership(ctx context.Context, id, userID string) (bool, *models.Community, error)
}

// MongoCommunityRepository implements CommunityRepository for MongoDB
type MongoCommunityRepository struct {
	collection *mongo.Collection
}

// NewMongoCommunityRepository creates a new MongoCommunityRepository
func NewMongoCommunityRepository(db *mongo.Database) *MongoCommunityRepository {
	return &MongoCommunityRepository{collection: db.Collection("communities")}
}

// EnsureIndexes makes name (case-insensitively) and slug unique
func (r *MongoCommunityRepository) EnsureIndexes(ctx context.Context) error {
	caseInsensitive := &options.Collation{Locale: "en", Strength: 2}
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(caseInsensitive)},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "members", Value: 1}}},
	})
	return err
}

// CreateCommunity inserts a community with its creator as first member and moderator
func (r *MongoCommunityRepository) CreateCommunity(ctx context.Context, community *models.Community) error {
	now := time.Now()
	community.ID = primitive.NewObjectID()
	community.Name = strings.TrimSpace(community.Name)
	community.Slug = models.Slugify(community.Name)
	community.Members = []string{community.Creator}
	community.Moderators = []string{community.Creator}
	if community.Privacy == "" {
		community.Privacy = models.PrivacyPublic
	}
	community.CreatedAt = now
	community.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, community); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("community %q: %w", community.Name, ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// ListCommunities returns communities whose name contains query, newest first
func (r *MongoCommunityRepository) ListCommunities(ctx context.Context, query string, skip, limit int64) ([]models.Community, error) {
	filter := bson.M{}
	if q := strings.TrimSpace(query); q != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetSkip(skip).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	communities := []models.Community{}
	if err = cursor.All(ctx, &communities); err != nil {
		return nil, err
	}
	return communities, nil
}

// GetCommunityByID retrieves a community by ID
func (r *MongoCommunityRepository) GetCommunityByID(ctx context.Context, id string) (*models.Community, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var community models.Community
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&community)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("community: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &community, nil
}

// ToggleMembership joins userID to the community, or leaves it when already a
// member. It reports whether the user is a member afterwards.
func (r *MongoCommunityRepository) ToggleMembership(ctx context.Context, id, userID string) (bool, *models.Community, error) {
	objID, err := objectID(id)
	if err != nil {
		return false, nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var community models.Community
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "members": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"members": userID}},
		opts,
	).Decode(&community)
	if err == nil {
		return true, &community, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil, err
	}

	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID, "members": userID},
		bson.M{"$pull": bson.M{"members": userID, "moderators": userID}},
		opts,
	).Decode(&community)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil, fmt.Errorf("community: %w", ErrNotFound)
	}
	if err != nil {
		return false, nil, err
	}
	return false, &community, nil
}
