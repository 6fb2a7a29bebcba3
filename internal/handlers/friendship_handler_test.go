package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/onyxdrift/backend/internal/models"
	"github.com/onyxdrift/backend/internal/repositories"
)

type friendshipFixture struct {
	friendships   *MockFriendshipRepository
	users         *MockUserRepository
	notifications *MockNotificationRepository
	pusher        *recordingNotifier
}

func newFriendshipAPI() (*echo.Echo, *friendshipFixture) {
	e, api := newTestAPI()
	f := &friendshipFixture{
		friendships:   new(MockFriendshipRepository),
		users:         new(MockUserRepository),
		notifications: new(MockNotificationRepository),
		pusher:        &recordingNotifier{},
	}
	sender := NewNotificationSender(f.notifications, f.pusher, zap.NewNop())
	NewFriendshipHandler(f.friendships, f.users, sender).RegisterFriendshipRoutes(api)
	return e, f
}

func TestFriendRequestToSelfIsRejected(t *testing.T) {
	e, f := newFriendshipAPI()

	rec := do(e, http.MethodPost, "/api/user/friend-request/alice", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot send a friend request to yourself", errorMessage(t, rec))
	f.friendships.AssertNotCalled(t, "SendRequest", mock.Anything, mock.Anything)
}

func TestFriendRequestNotifiesTarget(t *testing.T) {
	e, f := newFriendshipAPI()
	f.friendships.On("SendRequest", "alice", "bob").Return(nil)
	f.notifications.On("CreateNotification", mock.MatchedBy(func(n *models.Notification) bool {
		return n.Type == models.NotificationFriendRequest && n.RecipientID == "bob" && n.ActorID == "alice"
	})).Return(nil)

	rec := do(e, http.MethodPost, "/api/user/friend-request/bob", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, f.pusher.sent, 1)
	assert.Equal(t, "bob", f.pusher.sent[0].RecipientID)
	f.notifications.AssertExpectations(t)
}

func TestFriendRequestErrors(t *testing.T) {
	e, f := newFriendshipAPI()
	f.friendships.On("SendRequest", "alice", "ghost").Return(fmt.Errorf("user: %w", repositories.ErrNotFound))
	f.friendships.On("SendRequest", "alice", "bob").Return(fmt.Errorf("friendship: %w", repositories.ErrAlreadyExists))

	rec := do(e, http.MethodPost, "/api/user/friend-request/ghost", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/api/user/friend-request/bob", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You are already friends", errorMessage(t, rec))
	assert.Empty(t, f.pusher.sent)
}

func TestAcceptFriendRequest(t *testing.T) {
	e, f := newFriendshipAPI()
	f.friendships.On("AcceptRequest", "bob", "alice").Return(nil)
	f.friendships.On("AcceptRequest", "bob", "mallory").Return(fmt.Errorf("friend request: %w", repositories.ErrNotFound))
	f.notifications.On("CreateNotification", mock.MatchedBy(func(n *models.Notification) bool {
		return n.Type == models.NotificationFriendAccept && n.RecipientID == "alice"
	})).Return(nil)

	rec := do(e, http.MethodPost, "/api/user/friend-accept/alice", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPost, "/api/user/friend-accept/mallory", "bob", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Friend request not found", errorMessage(t, rec))
	assert.Len(t, f.pusher.sent, 1)
}

func TestDeclineAndUnfriend(t *testing.T) {
	e, f := newFriendshipAPI()
	f.friendships.On("DeclineRequest", "bob", "alice").Return(nil)
	f.friendships.On("RemoveFriend", "bob", "carol").Return(nil)
	f.friendships.On("RemoveFriend", "bob", "dave").Return(fmt.Errorf("friendship: %w", repositories.ErrNotFound))

	assert.Equal(t, http.StatusNoContent, do(e, http.MethodDelete, "/api/user/friend-request/alice", "bob", nil).Code)
	assert.Equal(t, http.StatusNoContent, do(e, http.MethodDelete, "/api/user/friends/carol", "bob", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodDelete, "/api/user/friends/dave", "bob", nil).Code)
}

func TestListFriendsAndRequests(t *testing.T) {
	e, f := newFriendshipAPI()
	f.users.On("GetByAuthID", "bob").Return(&models.User{
		AuthID:          "bob",
		Friends:         []string{"carol"},
		PendingRequests: []string{"alice"},
	}, nil)
	f.users.On("GetByAuthIDs", []string{"carol"}).Return([]models.User{{AuthID: "carol", Name: "Carol"}}, nil)
	f.users.On("GetByAuthIDs", []string{"alice"}).Return([]models.User{{AuthID: "alice", Name: "Alice"}}, nil)

	rec := do(e, http.MethodGet, "/api/user/friends", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var friends []models.UserCompact
	decode(t, rec, &friends)
	require.Len(t, friends, 1)
	assert.Equal(t, "Carol", friends[0].Name)

	rec = do(e, http.MethodGet, "/api/user/friend-requests", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []models.UserCompact
	decode(t, rec, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, "alice", pending[0].AuthID)
}
