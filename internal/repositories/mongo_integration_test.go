package repositories

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/onyxdrift/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// testDatabase connects to ONYX_TEST_MONGO_URI and hands out a throwaway database
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("ONYX_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("ONYX_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database(fmt.Sprintf("onyx_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func TestLikeToggleRoundTrip(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	posts := NewMongoPostRepository(db)
	likes := NewMongoLikeRepository(db)

	post := &models.Post{AuthorID: "alice", Text: "hello"}
	require.NoError(t, posts.CreatePost(ctx, post))

	liked, err := likes.ToggleLike(ctx, post.ID.Hex(), "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, liked.Likes)

	unliked, err := likes.ToggleLike(ctx, post.ID.Hex(), "bob")
	require.NoError(t, err)
	assert.Empty(t, unliked.Likes)
	assert.NotNil(t, unliked.Likes)
}

func TestPostOwnership(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	posts := NewMongoPostRepository(db)

	post := &models.Post{AuthorID: "alice", Text: "mine"}
	require.NoError(t, posts.CreatePost(ctx, post))

	_, err := posts.DeletePost(ctx, post.ID.Hex(), "mallory")
	assert.ErrorIs(t, err, ErrForbidden)

	still, err := posts.GetPostByID(ctx, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "mine", still.Text)

	_, err = posts.DeletePost(ctx, post.ID.Hex(), "alice")
	require.NoError(t, err)
	_, err = posts.DeletePost(ctx, post.ID.Hex(), "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFollowToggle(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	users := NewMongoUserRepository(db)
	follows := NewMongoFollowRepository(db)

	require.NoError(t, users.CreateUser(ctx, &models.User{AuthID: "a", Name: "A"}))
	require.NoError(t, users.CreateUser(ctx, &models.User{AuthID: "b", Name: "B"}))

	following, err := follows.ToggleFollow(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, following)

	b, err := users.GetByAuthID(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, b.Followers)

	following, err = follows.ToggleFollow(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, following)

	a, err := users.GetByAuthID(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, a.Following)

	_, err = follows.ToggleFollow(ctx, "a", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFriendRequestLifecycle(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	users := NewMongoUserRepository(db)
	friends := NewMongoFriendshipRepository(db)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, users.CreateUser(ctx, &models.User{AuthID: id, Name: id}))
	}

	require.NoError(t, friends.SendRequest(ctx, "a", "b"))
	require.NoError(t, friends.SendRequest(ctx, "a", "b"))
	b, err := users.GetByAuthID(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, b.PendingRequests)

	assert.ErrorIs(t, friends.AcceptRequest(ctx, "b", "c"), ErrNotFound)
	require.NoError(t, friends.AcceptRequest(ctx, "b", "a"))

	a, err := users.GetByAuthID(ctx, "a")
	require.NoError(t, err)
	b, err = users.GetByAuthID(ctx, "b")
	require.NoError(t, err)
	assert.True(t, a.IsFriend("b"))
	assert.True(t, b.IsFriend("a"))
	assert.Empty(t, b.PendingRequests)

	assert.ErrorIs(t, friends.SendRequest(ctx, "a", "b"), ErrAlreadyExists)
	assert.ErrorIs(t, friends.SendRequest(ctx, "a", "ghost"), ErrNotFound)

	require.NoError(t, friends.SendRequest(ctx, "c", "b"))
	require.NoError(t, friends.DeclineRequest(ctx, "b", "c"))
	assert.ErrorIs(t, friends.DeclineRequest(ctx, "b", "c"), ErrNotFound)

	require.NoError(t, friends.RemoveFriend(ctx, "a", "b"))
	b, err = users.GetByAuthID(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, b.Friends)
	assert.ErrorIs(t, friends.RemoveFriend(ctx, "a", "b"), ErrNotFound)
}

func TestCommunityNameIsUnique(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	communities := NewMongoCommunityRepository(db)
	require.NoError(t, communities.EnsureIndexes(ctx))

	require.NoError(t, communities.CreateCommunity(ctx, &models.Community{Name: "Tech", Creator: "a"}))
	err := communities.CreateCommunity(ctx, &models.Community{Name: "Tech", Creator: "b"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestActiveStoriesExcludeExpired(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	stories := NewStoryRepository(db, time.Hour)

	story := &models.Story{UserID: "a", MediaURL: "https://cdn.example.com/s.jpg"}
	require.NoError(t, stories.CreateStory(ctx, story))

	active, err := stories.GetActiveStories(ctx, story.ExpiresAt.Add(-time.Second))
	require.NoError(t, err)
	assert.Len(t, active, 1)

	active, err = stories.GetActiveStories(ctx, story.ExpiresAt)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestMessageSeenAndDelete(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	convs := NewMongoConversationRepository(db)
	messages := NewMongoMessageRepository(db)
	require.NoError(t, convs.EnsureIndexes(ctx))

	conv, err := convs.GetOrCreateDirect(ctx, "a", "b")
	require.NoError(t, err)
	again, err := convs.GetOrCreateDirect(ctx, "b", "a")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, again.ID)

	msg := &models.Message{ConversationID: &conv.ID, SenderID: "a", Text: "yo"}
	require.NoError(t, messages.CreateMessage(ctx, msg))

	seen, err := messages.MarkSeen(ctx, msg.ID.Hex(), "b")
	require.NoError(t, err)
	require.Len(t, seen.SeenBy, 1)

	seen, err = messages.MarkSeen(ctx, msg.ID.Hex(), "b")
	require.NoError(t, err)
	assert.Len(t, seen.SeenBy, 1)

	_, err = messages.MarkSeen(ctx, msg.ID.Hex(), "mallory")
	assert.ErrorIs(t, err, ErrForbidden)

	audience, err := messages.Audience(ctx, msg)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, audience)

	_, err = messages.DeleteForEveryone(ctx, msg.ID.Hex(), "b")
	assert.ErrorIs(t, err, ErrForbidden)

	deleted, err := messages.DeleteForEveryone(ctx, msg.ID.Hex(), "a")
	require.NoError(t, err)
	assert.Equal(t, msg.ID, deleted.ID)

	history, err := messages.ListByConversation(ctx, conv.ID, 0, 50)
	require.NoError(t, err)
	assert.Empty(t, history)

	unchanged, err := messages.MarkSeen(ctx, msg.ID.Hex(), "b")
	assert.Nil(t, unchanged)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommunityMessageSeenRequiresMembership(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	communities := NewMongoCommunityRepository(db)
	messages := NewMongoMessageRepository(db)

	community := &models.Community{Name: "night-owls", Creator: "a"}
	require.NoError(t, communities.CreateCommunity(ctx, community))
	joined, _, err := communities.ToggleMembership(ctx, community.ID.Hex(), "b")
	require.NoError(t, err)
	require.True(t, joined)

	msg := &models.Message{CommunityID: &community.ID, SenderID: "a", Text: "hello all"}
	require.NoError(t, messages.CreateMessage(ctx, msg))

	_, err = messages.MarkSeen(ctx, msg.ID.Hex(), "outsider")
	assert.ErrorIs(t, err, ErrForbidden)

	seen, err := messages.MarkSeen(ctx, msg.ID.Hex(), "b")
	require.NoError(t, err)
	assert.Len(t, seen.SeenBy, 1)
}

func TestCommentRemovalPermissions(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	posts := NewMongoPostRepository(db)
	comments := NewMongoCommentRepository(db)

	post := &models.Post{AuthorID: "alice", Text: "thread"}
	require.NoError(t, posts.CreatePost(ctx, post))

	withComment, err := comments.AddComment(ctx, post.ID.Hex(), &models.Comment{AuthorID: "bob", Text: "first"})
	require.NoError(t, err)
	require.Len(t, withComment.Comments, 1)
	commentID := withComment.Comments[0].ID.Hex()

	_, err = comments.RemoveComment(ctx, post.ID.Hex(), commentID, "mallory")
	assert.ErrorIs(t, err, ErrForbidden)

	// the post author may moderate comments on their post
	cleared, err := comments.RemoveComment(ctx, post.ID.Hex(), commentID, "alice")
	require.NoError(t, err)
	assert.Empty(t, cleared.Comments)
}

func TestSearchSkipsCallerAndGhosts(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	users := NewMongoUserRepository(db)

	for _, u := range []*models.User{
		{AuthID: "me", Name: "Nova Prime"},
		{AuthID: "n1", Name: "Nova Lane"},
		{AuthID: "n2", Name: "Nightshade", Nickname: "novablade"},
		{AuthID: "n3", Name: "Nova Ghost", GhostMode: true},
		{AuthID: "x", Name: "Zed"},
	} {
		require.NoError(t, users.CreateUser(ctx, u))
	}

	found, err := users.Search(ctx, "nova", "me", 0, 10)
	require.NoError(t, err)
	ids := make([]string, 0, len(found))
	for _, u := range found {
		ids = append(ids, u.AuthID)
	}
	assert.ElementsMatch(t, []string{"n1", "n2"}, ids)
}

func TestDirectConversationIsShared(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	convs := NewMongoConversationRepository(db)
	require.NoError(t, convs.EnsureIndexes(ctx))

	first, err := convs.GetOrCreateDirect(ctx, "alice", "bob")
	require.NoError(t, err)
	second, err := convs.GetOrCreateDirect(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.ElementsMatch(t, []string{"alice", "bob"}, second.Members)
}
