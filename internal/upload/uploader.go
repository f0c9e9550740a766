// Package upload stores payment screenshots somewhere an admin can open them.
package upload

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"weekly-tourney/internal/config"
)

var ErrDisabled = errors.New("screenshot uploads are disabled")

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type Uploader interface {
	// Upload stores f under keyPrefix and returns its public URL.
	Upload(ctx context.Context, f File, keyPrefix string) (string, error)
}

func New(ctx context.Context, cfg config.Config) (Uploader, error) {
	switch cfg.Uploader {
	case "gcs":
		return NewGCS(ctx, cfg.GCSBucket, cfg.GoogleCredentialsFile)
	case "none":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown uploader: %s", cfg.Uploader)
	}
}

// Disabled refuses every upload; registrations then rely on manual checks.
type Disabled struct{}

func (Disabled) Upload(context.Context, File, string) (string, error) {
	return "", ErrDisabled
}

// objectName builds "<prefix>/<uuid><ext>", keeping the extension of the
// original file name when it has one.
func objectName(keyPrefix, fileName, contentType string) string {
	ext := strings.ToLower(path.Ext(fileName))
	if ext == "" {
		switch contentType {
		case "image/png":
			ext = ".png"
		case "image/webp":
			ext = ".webp"
		default:
			ext = ".jpg"
		}
	}
	return path.Join(strings.Trim(keyPrefix, "/"), uuid.NewString()+ext)
}
