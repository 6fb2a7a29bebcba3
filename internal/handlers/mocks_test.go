package handlers

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onyxdrift/backend/internal/media"
	"github.com/onyxdrift/backend/internal/models"
	"github.com/onyxdrift/backend/internal/repositories"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserRepository) GetByAuthID(ctx context.Context, authID string) (*models.User, error) {
	args := m.Called(authID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByAuthIDs(ctx context.Context, authIDs []string) ([]models.User, error) {
	args := m.Called(authIDs)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, authID string, req *models.UpdateProfileRequest) (*models.User, error) {
	args := m.Called(authID, req)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) UpdateSettings(ctx context.Context, authID string, req *models.UpdateSettingsRequest) (*models.User, error) {
	args := m.Called(authID, req)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) Search(ctx context.Context, query, excludeID string, skip, limit int64) ([]models.User, error) {
	args := m.Called(query, excludeID, skip, limit)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return m.Called(post).Error(0)
}

func (m *MockPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	args := m.Called(id)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *MockPostRepository) ListPosts(ctx context.Context, filter repositories.PostFilter, skip, limit int64) ([]models.Post, error) {
	args := m.Called(filter, skip, limit)
	posts, _ := args.Get(0).([]models.Post)
	return posts, args.Error(1)
}

func (m *MockPostRepository) UpdatePostText(ctx context.Context, id, authorID, text string) (*models.Post, error) {
	args := m.Called(id, authorID, text)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *MockPostRepository) DeletePost(ctx context.Context, id, authorID string) (*models.Post, error) {
	args := m.Called(id, authorID)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *MockPostRepository) IncrementViews(ctx context.Context, id string) (*models.Post, error) {
	args := m.Called(id)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

type MockLikeRepository struct {
	mock.Mock
}

func (m *MockLikeRepository) ToggleLike(ctx context.Context, postID, userID string) (*models.Post, error) {
	args := m.Called(postID, userID)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) ToggleFollow(ctx context.Context, followerID, targetID string) (bool, error) {
	args := m.Called(followerID, targetID)
	return args.Bool(0), args.Error(1)
}

type MockFriendshipRepository struct {
	mock.Mock
}

func (m *MockFriendshipRepository) SendRequest(ctx context.Context, senderID, targetID string) error {
	return m.Called(senderID, targetID).Error(0)
}

func (m *MockFriendshipRepository) AcceptRequest(ctx context.Context, userID, senderID string) error {
	return m.Called(userID, senderID).Error(0)
}

func (m *MockFriendshipRepository) DeclineRequest(ctx context.Context, userID, senderID string) error {
	return m.Called(userID, senderID).Error(0)
}

func (m *MockFriendshipRepository) RemoveFriend(ctx context.Context, userID, friendID string) error {
	return m.Called(userID, friendID).Error(0)
}

type MockStoryRepository struct {
	mock.Mock
}

func (m *MockStoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	return m.Called(story).Error(0)
}

func (m *MockStoryRepository) GetActiveStories(ctx context.Context, now time.Time) ([]models.Story, error) {
	args := m.Called(now)
	stories, _ := args.Get(0).([]models.Story)
	return stories, args.Error(1)
}

func (m *MockStoryRepository) DeleteStory(ctx context.Context, id, userID string) error {
	return m.Called(id, userID).Error(0)
}

type MockCommunityRepository struct {
	mock.Mock
}

func (m *MockCommunityRepository) CreateCommunity(ctx context.Context, community *models.Community) error {
	return m.Called(community).Error(0)
}

func (m *MockCommunityRepository) ListCommunities(ctx context.Context, query string, skip, limit int64) ([]models.Community, error) {
	args := m.Called(query, skip, limit)
	communities, _ := args.Get(0).([]models.Community)
	return communities, args.Error(1)
}

func (m *MockCommunityRepository) GetCommunityByID(ctx context.Context, id string) (*models.Community, error) {
	args := m.Called(id)
	community, _ := args.Get(0).(*models.Community)
	return community, args.Error(1)
}

func (m *MockCommunityRepository) ToggleMembership(ctx context.Context, id, userID string) (bool, *models.Community, error) {
	args := m.Called(id, userID)
	community, _ := args.Get(1).(*models.Community)
	return args.Bool(0), community, args.Error(2)
}

type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) GetOrCreateDirect(ctx context.Context, userID, otherID string) (*models.Conversation, error) {
	args := m.Called(userID, otherID)
	conv, _ := args.Get(0).(*models.Conversation)
	return conv, args.Error(1)
}

func (m *MockConversationRepository) CreateGroup(ctx context.Context, conv *models.Conversation) error {
	return m.Called(conv).Error(0)
}

func (m *MockConversationRepository) GetConversationByID(ctx context.Context, id string) (*models.Conversation, error) {
	args := m.Called(id)
	conv, _ := args.Get(0).(*models.Conversation)
	return conv, args.Error(1)
}

func (m *MockConversationRepository) ListForMember(ctx context.Context, userID string) ([]models.Conversation, error) {
	args := m.Called(userID)
	convs, _ := args.Get(0).([]models.Conversation)
	return convs, args.Error(1)
}

func (m *MockConversationRepository) UpdateLastMessage(ctx context.Context, id primitive.ObjectID, preview *models.MessagePreview) error {
	return m.Called(id, preview).Error(0)
}

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	return m.Called(msg).Error(0)
}

func (m *MockMessageRepository) ListByConversation(ctx context.Context, conversationID primitive.ObjectID, skip, limit int64) ([]models.Message, error) {
	args := m.Called(conversationID, skip, limit)
	msgs, _ := args.Get(0).([]models.Message)
	return msgs, args.Error(1)
}

func (m *MockMessageRepository) ListByCommunity(ctx context.Context, communityID primitive.ObjectID, skip, limit int64) ([]models.Message, error) {
	args := m.Called(communityID, skip, limit)
	msgs, _ := args.Get(0).([]models.Message)
	return msgs, args.Error(1)
}

func (m *MockMessageRepository) MarkSeen(ctx context.Context, messageID, userID string) (*models.Message, error) {
	args := m.Called(messageID, userID)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func (m *MockMessageRepository) DeleteForEveryone(ctx context.Context, messageID, userID string) (*models.Message, error) {
	args := m.Called(messageID, userID)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func (m *MockMessageRepository) Audience(ctx context.Context, msg *models.Message) ([]string, error) {
	args := m.Called(msg)
	members, _ := args.Get(0).([]string)
	return members, args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	return m.Called(n).Error(0)
}

func (m *MockNotificationRepository) GetByRecipientID(ctx context.Context, recipientID string, page, limit int) ([]models.Notification, int64, error) {
	args := m.Called(recipientID, page, limit)
	ns, _ := args.Get(0).([]models.Notification)
	return ns, args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) GetGrouped(ctx context.Context, recipientID string, now time.Time) (*models.GroupedNotifications, error) {
	args := m.Called(recipientID, now)
	g, _ := args.Get(0).(*models.GroupedNotifications)
	return g, args.Error(1)
}

func (m *MockNotificationRepository) GetUnreadCount(ctx context.Context, recipientID string) (int64, error) {
	args := m.Called(recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, notificationID uint, recipientID string) error {
	return m.Called(notificationID, recipientID).Error(0)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) (int64, error) {
	args := m.Called(recipientID)
	return args.Get(0).(int64), args.Error(1)
}

type MockMediaStore struct {
	mock.Mock
}

func (m *MockMediaStore) Upload(ctx context.Context, file io.Reader, filename, contentType string) (*media.Result, error) {
	args := m.Called(filename)
	res, _ := args.Get(0).(*media.Result)
	return res, args.Error(1)
}

func (m *MockMediaStore) Destroy(ctx context.Context, publicID string) error {
	return m.Called(publicID).Error(0)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(subject, email, name string) (string, error) {
	args := m.Called(subject, email, name)
	return args.String(0), args.Error(1)
}

var (
	_ repositories.UserRepository         = (*MockUserRepository)(nil)
	_ repositories.PostRepository         = (*MockPostRepository)(nil)
	_ repositories.LikeRepository         = (*MockLikeRepository)(nil)
	_ repositories.FollowRepository       = (*MockFollowRepository)(nil)
	_ repositories.FriendshipRepository   = (*MockFriendshipRepository)(nil)
	_ repositories.StoryRepository        = (*MockStoryRepository)(nil)
	_ repositories.CommunityRepository    = (*MockCommunityRepository)(nil)
	_ repositories.ConversationRepository = (*MockConversationRepository)(nil)
	_ repositories.MessageRepository      = (*MockMessageRepository)(nil)
	_ repositories.NotificationRepository = (*MockNotificationRepository)(nil)
	_ MediaStore                          = (*MockMediaStore)(nil)
	_ TokenIssuer                         = (*MockTokenIssuer)(nil)
)
