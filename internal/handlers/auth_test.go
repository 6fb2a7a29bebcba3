package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/onyxdrift/backend/internal/auth"
	"github.com/onyxdrift/backend/internal/models"
	"github.com/onyxdrift/backend/internal/repositories"
)

func newAuthAPI(users *MockUserRepository, tokens *MockTokenIssuer, identity auth.Verifier) *echo.Echo {
	e, _ := newTestAPI()
	NewAuthHandler(users, tokens, identity, zap.NewNop()).RegisterAuthRoutes(e.Group("/api/auth"))
	return e
}

func TestSignup(t *testing.T) {
	users := new(MockUserRepository)
	tokens := new(MockTokenIssuer)
	e := newAuthAPI(users, tokens, nil)

	users.On("GetByEmail", "neo@onyx.io").Return(nil, repositories.ErrNotFound)
	users.On("CreateUser", mock.MatchedBy(func(u *models.User) bool {
		return strings.HasPrefix(u.AuthID, "local|") && u.Name == "Neo" &&
			bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("redpill123")) == nil
	})).Return(nil)
	tokens.On("Issue", mock.AnythingOfType("string"), "neo@onyx.io", "Neo").Return("signed", nil)

	rec := do(e, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":     " Neo ",
		"email":    "neo@onyx.io",
		"password": "redpill123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body map[string]interface{}
	decode(t, rec, &body)
	assert.Equal(t, "signed", body["token"])
	assert.NotContains(t, rec.Body.String(), "password")
	users.AssertExpectations(t)
}

func TestSignupDuplicateEmail(t *testing.T) {
	users := new(MockUserRepository)
	e := newAuthAPI(users, new(MockTokenIssuer), nil)

	users.On("GetByEmail", "neo@onyx.io").Return(&models.User{AuthID: "local|1"}, nil)

	rec := do(e, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":     "Neo",
		"email":    "neo@onyx.io",
		"password": "redpill123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	users.AssertNotCalled(t, "CreateUser", mock.Anything)
}

func TestSignIn(t *testing.T) {
	users := new(MockUserRepository)
	tokens := new(MockTokenIssuer)
	e := newAuthAPI(users, tokens, nil)

	hash, err := bcrypt.GenerateFromPassword([]byte("redpill123"), bcrypt.MinCost)
	require.NoError(t, err)
	users.On("GetByEmail", "neo@onyx.io").Return(&models.User{AuthID: "local|1", Name: "Neo", Email: "neo@onyx.io", Password: string(hash)}, nil)
	users.On("GetByEmail", "ghost@onyx.io").Return(nil, repositories.ErrNotFound)
	tokens.On("Issue", "local|1", "neo@onyx.io", "Neo").Return("signed", nil)

	rec := do(e, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": "neo@onyx.io", "password": "redpill123"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": "neo@onyx.io", "password": "bluepill"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", errorMessage(t, rec))

	rec = do(e, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": "ghost@onyx.io", "password": "whatever"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", errorMessage(t, rec))
}

func TestFirebaseLoginCreatesUserOnce(t *testing.T) {
	users := new(MockUserRepository)
	tokens := new(MockTokenIssuer)
	e := newAuthAPI(users, tokens, userVerifier{})

	users.On("GetByAuthID", "trinity").Return(nil, repositories.ErrNotFound).Once()
	users.On("CreateUser", mock.MatchedBy(func(u *models.User) bool {
		return u.AuthID == "trinity" && u.Name == "trinity"
	})).Return(nil).Once()
	tokens.On("Issue", "trinity", "", "trinity").Return("signed", nil)

	rec := do(e, http.MethodPost, "/api/auth/firebase-login", "", map[string]string{"idToken": "token-trinity"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPost, "/api/auth/firebase-login", "", map[string]string{"idToken": "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	users.AssertExpectations(t)
}

func TestFirebaseLoginWithoutProvider(t *testing.T) {
	e := newAuthAPI(new(MockUserRepository), new(MockTokenIssuer), nil)
	rec := do(e, http.MethodPost, "/api/auth/firebase-login", "", map[string]string{"idToken": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
