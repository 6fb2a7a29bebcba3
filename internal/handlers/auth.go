package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/onyxdrift/backend/internal/auth"
	"github.com/onyxdrift/backend/internal/models"
	"github.com/onyxdrift/backend/internal/repositories"
)

// TokenIssuer signs the server's own session tokens
type TokenIssuer interface {
	Issue(subject, email, name string) (string, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	tokens         TokenIssuer
	identity       auth.Verifier
	log            *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. identity verifies identity-provider
// ID tokens and may be nil when no provider is configured.
func NewAuthHandler(userRepo repositories.UserRepository, tokens TokenIssuer, identity auth.Verifier, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		tokens:         tokens,
		identity:       identity,
		log:            log,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.CreateLocalUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	_, err := h.userRepository.GetByEmail(ctx, req.Email)
	if err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		AuthID:   "local|" + uuid.NewString(),
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
		}
		return err
	}

	token, err := h.tokens.Issue(user.AuthID, user.Email, user.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{Token: token, User: user})
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetByEmail(c.Request().Context(), req.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return err
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.tokens.Issue(user.AuthID, user.Email, user.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// FirebaseLogin verifies an identity-provider ID token, creates the user on
// first login and issues a local session token
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.identity == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Firebase login is not configured")
	}
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	id, err := h.identity.Verify(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	user, err := h.userRepository.GetByAuthID(ctx, id.Subject)
	if errors.Is(err, repositories.ErrNotFound) {
		user = &models.User{
			AuthID: id.Subject,
			Name:   displayName(id),
			Email:  id.Email,
			Avatar: id.Picture,
		}
		err = h.userRepository.CreateUser(ctx, user)
		if errors.Is(err, repositories.ErrAlreadyExists) {
			// a concurrent first login created it
			user, err = h.userRepository.GetByAuthID(ctx, id.Subject)
		}
		if err == nil {
			h.log.Info("user created on first login", zap.String("user_id", id.Subject))
		}
	}
	if err != nil {
		return err
	}

	token, err := h.tokens.Issue(user.AuthID, user.Email, user.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

func displayName(id *auth.Identity) string {
	if id.Name != "" {
		return id.Name
	}
	if at := strings.IndexByte(id.Email, '@'); at > 0 {
		return id.Email[:at]
	}
	return "Drifter"
}
