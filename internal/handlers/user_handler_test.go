package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onyxdrift/backend/internal/models"
)

func TestUpdateSettingsTogglesAntiScreenshot(t *testing.T) {
	e, api := newTestAPI()
	users := new(MockUserRepository)
	NewUserHandler(users, new(MockPostRepository)).RegisterProfileRoutes(api)

	users.On("UpdateSettings", "alice", mock.MatchedBy(func(req *models.UpdateSettingsRequest) bool {
		return req.GhostMode == nil && req.AntiScreenshot != nil && *req.AntiScreenshot
	})).Return(&models.User{AuthID: "alice", AntiScreenshot: true}, nil)

	rec := do(e, http.MethodPut, "/api/user/settings", "alice", map[string]bool{"anti_screenshot": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var user models.User
	decode(t, rec, &user)
	assert.True(t, user.AntiScreenshot)
	assert.False(t, user.GhostMode)
}

func TestUpdateSettingsCanTurnGhostModeOff(t *testing.T) {
	e, api := newTestAPI()
	users := new(MockUserRepository)
	NewUserHandler(users, new(MockPostRepository)).RegisterProfileRoutes(api)

	users.On("UpdateSettings", "alice", mock.MatchedBy(func(req *models.UpdateSettingsRequest) bool {
		return req.GhostMode != nil && !*req.GhostMode && req.AntiScreenshot == nil
	})).Return(&models.User{AuthID: "alice"}, nil)

	rec := do(e, http.MethodPut, "/api/user/settings", "alice", map[string]bool{"ghost_mode": false})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestUpdateSettingsNeedsOneFlag(t *testing.T) {
	e, api := newTestAPI()
	users := new(MockUserRepository)
	NewUserHandler(users, new(MockPostRepository)).RegisterProfileRoutes(api)

	rec := do(e, http.MethodPut, "/api/user/settings", "alice", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ghost_mode or anti_screenshot is required", errorMessage(t, rec))
	users.AssertNotCalled(t, "UpdateSettings", mock.Anything, mock.Anything)
}
