package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/onyxdrift/backend/internal/auth"
	"github.com/onyxdrift/backend/internal/middleware"
	"github.com/onyxdrift/backend/internal/models"
	"github.com/onyxdrift/backend/internal/validators"
)

// userVerifier accepts "token-<user>" and names the caller after the user id
type userVerifier struct{}

func (userVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	user := strings.TrimPrefix(token, "token-")
	if user == token || user == "" {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Identity{Subject: user, Name: user}, nil
}

// newTestAPI returns an echo instance wired like the server and its
// authenticated /api group
func newTestAPI() (*echo.Echo, *echo.Group) {
	e := echo.New()
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zap.NewNop())
	return e, e.Group("/api", middleware.BearerAuth(userVerifier{}))
}

func do(e *echo.Echo, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if user != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer token-"+user)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	decode(t, rec, &body)
	return body.Message
}

// recordingNotifier captures real-time pushes
type recordingNotifier struct {
	sent []*models.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notification *models.Notification) {
	n.sent = append(n.sent, notification)
}
