package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/newsdesk/newsroom/internal/domain"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore stores attachments in Cloudinary. PDFs and other non-media
// documents use the "raw" resource type.
type CloudinaryStore struct {
	client *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore builds a store from account credentials.
func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	client, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("configure cloudinary: %w", err)
	}
	return &CloudinaryStore{client: client, folder: folder}, nil
}

func (s *CloudinaryStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	resp, err := s.client.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: "raw",
	})
	if err != nil {
		return "", fmt.Errorf("upload attachment: %w", err)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("upload attachment: empty delivery URL (%s)", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, url string) error {
	publicID := publicIDFromURL(url)
	if publicID == "" {
		return fmt.Errorf("delete attachment: %w: unrecognized URL %q", domain.ErrNotFound, url)
	}
	resp, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "raw",
	})
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	if resp.Result == "not found" {
		return fmt.Errorf("delete attachment: %w", domain.ErrNotFound)
	}
	return nil
}

// publicIDFromURL extracts the public id from a Cloudinary delivery URL:
// everything after the version segment ("v12345"), minus the file extension.
func publicIDFromURL(url string) string {
	parts := strings.Split(url, "/")
	versionIndex := -1
	for i, part := range parts {
		if len(part) > 1 && part[0] == 'v' && isDigits(part[1:]) {
			versionIndex = i
			break
		}
	}
	if versionIndex == -1 || versionIndex == len(parts)-1 {
		return ""
	}
	publicID := strings.Join(parts[versionIndex+1:], "/")
	if dot := strings.LastIndex(publicID, "."); dot > 0 {
		publicID = publicID[:dot]
	}
	return publicID
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
