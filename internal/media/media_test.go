package media

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	args := m.Called(ctx, file, params)
	res, _ := args.Get(0).(*uploader.UploadResult)
	return res, args.Error(1)
}

func (m *mockAPI) Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	args := m.Called(ctx, params)
	res, _ := args.Get(0).(*uploader.DestroyResult)
	return res, args.Error(1)
}

func TestUploadMapsResult(t *testing.T) {
	api := new(mockAPI)
	store := newStore(api, zap.NewNop())
	body := strings.NewReader("png-bytes")

	api.On("Upload", mock.Anything, body, uploader.UploadParams{Folder: DefaultFolder, ResourceType: "auto"}).
		Return(&uploader.UploadResult{
			SecureURL:    "https://res.cloudinary.com/demo/image/upload/v1/onyx_drift_uploads/abc.png",
			PublicID:     "onyx_drift_uploads/abc",
			ResourceType: "image",
			Format:       "png",
			Bytes:        9,
		}, nil)

	res, err := store.Upload(context.Background(), body, "avatar.PNG", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "onyx_drift_uploads/abc", res.PublicID)
	assert.Equal(t, "image/png", res.FileType)
	assert.Equal(t, int64(9), res.Size)
	api.AssertExpectations(t)
}

func TestUploadRejectsFormat(t *testing.T) {
	api := new(mockAPI)
	store := newStore(api, zap.NewNop())

	_, err := store.Upload(context.Background(), strings.NewReader("x"), "run.exe", "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	api.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadWithoutCredentials(t *testing.T) {
	store, err := NewCloudinaryStore("", "", "", zap.NewNop())
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), strings.NewReader("x"), "a.png", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, store.Destroy(context.Background(), "abc"), ErrNotConfigured)
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	api := new(mockAPI)
	store := newStore(api, zap.NewNop())
	api.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	for i := 0; i < 5; i++ {
		_, err := store.Upload(context.Background(), strings.NewReader("x"), "a.png", "")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}

	_, err := store.Upload(context.Background(), strings.NewReader("x"), "a.png", "")
	assert.ErrorIs(t, err, ErrUnavailable)
	api.AssertNumberOfCalls(t, "Upload", 5)
}

func TestDestroyFallsBackToVideo(t *testing.T) {
	api := new(mockAPI)
	store := newStore(api, zap.NewNop())

	api.On("Destroy", mock.Anything, uploader.DestroyParams{PublicID: "onyx_drift_uploads/clip", ResourceType: "image"}).
		Return(&uploader.DestroyResult{Result: "not found"}, nil)
	api.On("Destroy", mock.Anything, uploader.DestroyParams{PublicID: "onyx_drift_uploads/clip", ResourceType: "video"}).
		Return(&uploader.DestroyResult{Result: "ok"}, nil)

	require.NoError(t, store.Destroy(context.Background(), "clip"))
	api.AssertExpectations(t)
}

func TestDestroyMissing(t *testing.T) {
	api := new(mockAPI)
	store := newStore(api, zap.NewNop())
	api.On("Destroy", mock.Anything, mock.Anything).Return(&uploader.DestroyResult{Result: "not found"}, nil)

	err := store.Destroy(context.Background(), "onyx_drift_uploads/gone")
	assert.ErrorIs(t, err, ErrNotFound)
	api.AssertNumberOfCalls(t, "Destroy", 3)
}
