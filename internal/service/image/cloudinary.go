package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// CloudinaryPublisher uploads portraits to a Cloudinary folder
type CloudinaryPublisher struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryPublisher(cfg CloudinaryConfig) (*CloudinaryPublisher, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryPublisher{cld: cld, folder: cfg.Folder}, nil
}

func (p *CloudinaryPublisher) Publish(ctx context.Context, name string, png []byte) (string, error) {
	result, err := p.cld.Upload.Upload(ctx, bytes.NewReader(png), uploader.UploadParams{
		Folder:    p.folder,
		PublicID:  name,
		Overwrite: api.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", errors.New(result.Error.Message))
	}
	return result.SecureURL, nil
}
