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

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetByAuthID(ctx context.Context, authID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByAuthIDs(ctx context.Context, authIDs []string) ([]models.User, error)
	UpdateProfile(ctx context.Context, authID string, req *models.UpdateProfileRequest) (*models.User, error)
	UpdateSettings(ctx context.Context, authID string, req *models.UpdateSettingsRequest) (*models.User, error)
	Search(ctx context.Context, query, excludeID string, skip, limit int64) ([]models.User, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// EnsureIndexes creates the uniqueness constraints on auth id, email and nickname
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "auth_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "nickname", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
	return err
}

// CreateUser inserts a new user. A clash on any unique key yields ErrAlreadyExists.
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Followers = nonNil(user.Followers)
	user.Following = nonNil(user.Following)
	user.Friends = nonNil(user.Friends)
	user.PendingRequests = nonNil(user.PendingRequests)
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user: %w", ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// GetByAuthID retrieves a user by identity subject
func (r *MongoUserRepository) GetByAuthID(ctx context.Context, authID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"auth_id": authID})
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// GetByAuthIDs retrieves every user whose auth id is listed, sorted by name
func (r *MongoUserRepository) GetByAuthIDs(ctx context.Context, authIDs []string) ([]models.User, error) {
	users := []models.User{}
	if len(authIDs) == 0 {
		return users, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"auth_id": bson.M{"$in": authIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfile sets only the fields present in req and returns the updated user
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, authID string, req *models.UpdateProfileRequest) (*models.User, error) {
	set := bson.M{"updated_at": time.Now()}
	if req.Nickname != nil {
		set["nickname"] = *req.Nickname
	}
	if req.Avatar != nil {
		set["avatar"] = *req.Avatar
	}
	if req.CoverImg != nil {
		set["cover_img"] = *req.CoverImg
	}
	if req.Bio != nil {
		set["bio"] = *req.Bio
	}
	if req.Location != nil {
		set["location"] = *req.Location
	}
	if req.Workplace != nil {
		set["workplace"] = *req.Workplace
	}
	return r.updateOne(ctx, authID, bson.M{"$set": set})
}

// UpdateSettings sets the privacy flags present in req. Ghost mode hides the
// user from search.
func (r *MongoUserRepository) UpdateSettings(ctx context.Context, authID string, req *models.UpdateSettingsRequest) (*models.User, error) {
	set := bson.M{"updated_at": time.Now()}
	if req.GhostMode != nil {
		set["ghost_mode"] = *req.GhostMode
	}
	if req.AntiScreenshot != nil {
		set["anti_screenshot"] = *req.AntiScreenshot
	}
	return r.updateOne(ctx, authID, bson.M{"$set": set})
}

func (r *MongoUserRepository) updateOne(ctx context.Context, authID string, update bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"auth_id": authID}, update, opts).Decode(&user)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		case mongo.IsDuplicateKeyError(err):
			return nil, fmt.Errorf("nickname: %w", ErrAlreadyExists)
		}
		return nil, err
	}
	return &user, nil
}

// Search matches a case-insensitive prefix of name or nickname. The caller and
// ghost-mode users are never returned.
func (r *MongoUserRepository) Search(ctx context.Context, query, excludeID string, skip, limit int64) ([]models.User, error) {
	prefix := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(strings.TrimSpace(query)), Options: "i"}
	filter := bson.M{
		"auth_id":    bson.M{"$ne": excludeID},
		"ghost_mode": bson.M{"$ne": true},
		"$or": bson.A{
			bson.M{"name": prefix},
			bson.M{"nickname": prefix},
		},
	}
	opts := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetProjection(bson.M{"password": 0})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
