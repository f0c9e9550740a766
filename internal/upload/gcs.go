package upload

import (
	"bytes"
	"context"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storagev1 "google.golang.org/api/storage/v1"
)

// GCS uploads into a Google Cloud Storage bucket with public-read objects.
type GCS struct {
	srv    *storagev1.Service
	bucket string
}

func NewGCS(ctx context.Context, bucket, credentialsFile string) (*GCS, error) {
	opts := []option.ClientOption{option.WithScopes(storagev1.DevstorageReadWriteScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	srv, err := storagev1.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage service: %w", err)
	}
	return &GCS{srv: srv, bucket: bucket}, nil
}

func (g *GCS) Upload(ctx context.Context, f File, keyPrefix string) (string, error) {
	obj := &storagev1.Object{
		Name:        objectName(keyPrefix, f.Name, f.ContentType),
		ContentType: f.ContentType,
	}
	out, err := g.srv.Objects.Insert(g.bucket, obj).
		Media(bytes.NewReader(f.Data), googleapi.ContentType(f.ContentType)).
		PredefinedAcl("publicRead").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", obj.Name, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, out.Name), nil
}
