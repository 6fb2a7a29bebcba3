// Package media stores uploaded files with Cloudinary.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/onyxdrift/backend/internal/metrics"
	"github.com/onyxdrift/backend/pkg/breaker"
)

// DefaultFolder is where uploads land in the media library
const DefaultFolder = "onyx_drift_uploads"

var (
	ErrNotConfigured     = errors.New("media storage is not configured")
	ErrUnavailable       = errors.New("media storage is temporarily unavailable")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNotFound          = errors.New("file not found")
)

var allowedFormats = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {},
	".mp4": {}, ".pdf": {},
	".mp3": {}, ".wav": {}, ".ogg": {}, ".m4a": {},
}

// Result describes a stored file
type Result struct {
	FilePath string `json:"file_path"`
	FileType string `json:"file_type"`
	PublicID string `json:"public_id"`
	Size     int64  `json:"size"`
}

// assetAPI is the part of the Cloudinary upload API in use
type assetAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// Store uploads and deletes files through Cloudinary behind a circuit breaker
type Store struct {
	api     assetAPI
	folder  string
	breaker *gobreaker.CircuitBreaker[any]
	log     *zap.Logger
}

// NewCloudinaryStore connects to Cloudinary. Missing credentials yield a Store
// whose calls fail with ErrNotConfigured.
func NewCloudinaryStore(cloudName, apiKey, apiSecret string, log *zap.Logger) (*Store, error) {
	log = log.Named("media")
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		log.Warn("cloudinary credentials missing, uploads disabled")
		return newStore(nil, log), nil
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return newStore(&cld.Upload, log), nil
}

func newStore(api assetAPI, log *zap.Logger) *Store {
	return &Store{
		api:     api,
		folder:  DefaultFolder,
		breaker: breaker.New[any]("cloudinary", breaker.Settings{}, log),
		log:     log,
	}
}

// CheckFormat rejects files whose extension is not accepted
func CheckFormat(filename string) error {
	if _, ok := allowedFormats[strings.ToLower(filepath.Ext(filename))]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	return nil
}

// Upload stores file and lets Cloudinary detect the resource type
func (s *Store) Upload(ctx context.Context, file io.Reader, filename, contentType string) (*Result, error) {
	if s.api == nil {
		return nil, ErrNotConfigured
	}
	if err := CheckFormat(filename); err != nil {
		return nil, err
	}

	out, err := s.breaker.Execute(func() (any, error) {
		res, err := s.api.Upload(ctx, file, uploader.UploadParams{
			Folder:       s.folder,
			ResourceType: "auto",
		})
		if err != nil {
			return nil, err
		}
		if res.Error.Message != "" {
			return nil, errors.New(res.Error.Message)
		}
		return res, nil
	})
	metrics.RecordExternal("cloudinary", "upload", err)
	if err != nil {
		return nil, s.wrap("upload", err)
	}

	res := out.(*uploader.UploadResult)
	fileType := contentType
	if fileType == "" {
		fileType = res.ResourceType + "/" + res.Format
	}
	return &Result{
		FilePath: res.SecureURL,
		FileType: fileType,
		PublicID: res.PublicID,
		Size:     int64(res.Bytes),
	}, nil
}

// Destroy deletes a stored file. Bare ids are resolved inside the upload folder.
func (s *Store) Destroy(ctx context.Context, publicID string) error {
	if s.api == nil {
		return ErrNotConfigured
	}
	if !strings.Contains(publicID, "/") {
		publicID = s.folder + "/" + publicID
	}

	out, err := s.breaker.Execute(func() (any, error) {
		// assets uploaded with resource type auto may be images or videos
		var last *uploader.DestroyResult
		for _, kind := range []string{"image", "video", "raw"} {
			res, err := s.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID, ResourceType: kind})
			if err != nil {
				return nil, err
			}
			if res.Error.Message != "" {
				return nil, errors.New(res.Error.Message)
			}
			last = res
			if res.Result == "ok" {
				break
			}
		}
		return last, nil
	})
	metrics.RecordExternal("cloudinary", "destroy", err)
	if err != nil {
		return s.wrap("destroy", err)
	}
	if res := out.(*uploader.DestroyResult); res.Result != "ok" {
		return fmt.Errorf("%w: %s", ErrNotFound, publicID)
	}
	return nil
}

func (s *Store) wrap(op string, err error) error {
	if breaker.IsOpen(err) {
		return ErrUnavailable
	}
	s.log.Error("cloudinary call failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("cloudinary %s: %w", op, err)
}
