// Package drive uploads packaged runs to Google Drive.
package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"ResearchAgent/internal/config"
	"ResearchAgent/internal/ports"
)

// Uploader exchanges a stored refresh token for an access token and uploads
// a file with a Drive multipart request.
type Uploader struct {
	cfg    config.DriveConfig
	client *http.Client
	tokens oauth2.TokenSource
}

var _ ports.Uploader = (*Uploader)(nil)

// NewUploader builds an uploader; a nil client gets a 2 minute timeout.
// Access tokens are cached and refreshed when they expire.
func NewUploader(cfg config.DriveConfig, client *http.Client) *Uploader {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, client)

	return &Uploader{
		cfg:    cfg,
		client: client,
		tokens: oauthCfg.TokenSource(tokenCtx, &oauth2.Token{RefreshToken: cfg.RefreshToken}),
	}
}

// Configured reports whether OAuth credentials are present.
func (u *Uploader) Configured() bool {
	return u.cfg.ClientID != "" && u.cfg.ClientSecret != "" && u.cfg.RefreshToken != ""
}

// Upload sends path into the configured folder and returns the Drive file id.
func (u *Uploader) Upload(ctx context.Context, path string) (string, error) {
	if !u.Configured() {
		return "", fmt.Errorf("google drive credentials are not configured")
	}

	token, err := u.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("refresh access token: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	body, contentType, err := multipartBody(filepath.Base(path), u.cfg.FolderID, content)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.UploadURL+"?uploadType=multipart&fields=id", body)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	token.SetAuthHeader(req)
	req.Header.Set("Content-Type", contentType)

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("drive upload failed %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var file struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if file.ID == "" {
		return "", fmt.Errorf("drive upload returned no file id")
	}
	return file.ID, nil
}

func multipartBody(name, folderID string, content []byte) (io.Reader, string, error) {
	meta := map[string]any{"name": name}
	if folderID != "" {
		meta["parents"] = []string{folderID}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, "", fmt.Errorf("marshal metadata: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	metaPart, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"application/json; charset=UTF-8"}})
	if err != nil {
		return nil, "", fmt.Errorf("create metadata part: %w", err)
	}
	if _, err := metaPart.Write(metaJSON); err != nil {
		return nil, "", fmt.Errorf("write metadata part: %w", err)
	}

	mediaPart, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"application/zip"}})
	if err != nil {
		return nil, "", fmt.Errorf("create media part: %w", err)
	}
	if _, err := mediaPart.Write(content); err != nil {
		return nil, "", fmt.Errorf("write media part: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, "multipart/related; boundary=" + mw.Boundary(), nil
}
