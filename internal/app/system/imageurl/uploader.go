// internal/app/system/imageurl/uploader.go
package imageurl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"
)

// Uploader posts image payloads to the image host's unsigned upload
// endpoint and returns the public display URL.
type Uploader struct {
	CloudName    string
	UploadPreset string
	HTTPClient   *http.Client
	Log          *zap.Logger
}

// NewUploader constructs an Uploader for the given cloud and preset.
func NewUploader(cloudName, uploadPreset string, logger *zap.Logger) *Uploader {
	return &Uploader{
		CloudName:    cloudName,
		UploadPreset: uploadPreset,
		HTTPClient:   http.DefaultClient,
		Log:          logger,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

// Upload sends the image bytes and returns the transformed display URL.
// The returned URL is opaque to callers; failures collapse to a single
// user-facing error with the cause logged.
func (u *Uploader) Upload(ctx context.Context, filename string, payload io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	if _, err := io.Copy(fw, payload); err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	if err := mw.WriteField("upload_preset", u.UploadPreset); err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", u.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.HTTPClient.Do(req)
	if err != nil {
		u.Log.Error("image upload request failed", zap.Error(err))
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		u.Log.Error("image upload response unreadable", zap.Error(err))
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	if parsed.SecureURL == "" {
		u.Log.Error("image upload returned no URL", zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("image upload failed: no URL returned")
	}

	return Transform(parsed.SecureURL, DisplayDefaults()), nil
}
