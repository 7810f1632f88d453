package drive

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"ResearchAgent/internal/config"
)

func TestUploaderUpload(t *testing.T) {
	t.Parallel()

	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		tokenCalls.Add(1)
		if r.PostForm.Get("grant_type") != "refresh_token" || r.PostForm.Get("refresh_token") != "refresh" {
			t.Errorf("unexpected token form %v", r.PostForm)
		}
		if r.PostForm.Get("client_id") != "id" || r.PostForm.Get("client_secret") != "secret" {
			t.Errorf("expected client credentials in form, got %v", r.PostForm)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access" {
			t.Errorf("missing access token")
		}
		if r.URL.Query().Get("uploadType") != "multipart" {
			t.Errorf("unexpected upload type %q", r.URL.Query().Get("uploadType"))
		}
		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "multipart/related" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
			return
		}

		mr := multipart.NewReader(r.Body, params["boundary"])
		metaPart, err := mr.NextPart()
		if err != nil {
			t.Errorf("metadata part: %v", err)
			return
		}
		var meta struct {
			Name    string   `json:"name"`
			Parents []string `json:"parents"`
		}
		if err := json.NewDecoder(metaPart).Decode(&meta); err != nil {
			t.Errorf("decode metadata: %v", err)
		}
		if meta.Name != "research_2026-03-10.zip" || len(meta.Parents) != 1 || meta.Parents[0] != "folder" {
			t.Errorf("unexpected metadata %+v", meta)
		}

		mediaPart, err := mr.NextPart()
		if err != nil {
			t.Errorf("media part: %v", err)
			return
		}
		data, _ := io.ReadAll(mediaPart)
		if string(data) != "PK-zip" {
			t.Errorf("unexpected media %q", data)
		}
		_, _ = w.Write([]byte(`{"id":"file-123"}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	path := filepath.Join(t.TempDir(), "research_2026-03-10.zip")
	if err := os.WriteFile(path, []byte("PK-zip"), 0o644); err != nil {
		t.Fatalf("write zip: %v", err)
	}

	u := NewUploader(config.DriveConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RefreshToken: "refresh",
		FolderID:     "folder",
		TokenURL:     server.URL + "/token",
		UploadURL:    server.URL + "/upload",
	}, server.Client())

	id, err := u.Upload(context.Background(), path)
	if err != nil {
		t.Fatalf("Upload error: %v", err)
	}
	if id != "file-123" {
		t.Fatalf("unexpected file id %q", id)
	}

	if _, err := u.Upload(context.Background(), path); err != nil {
		t.Fatalf("second Upload error: %v", err)
	}
	if got := tokenCalls.Load(); got != 1 {
		t.Fatalf("expected cached access token, got %d token requests", got)
	}
}

func TestUploaderTokenFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	u := NewUploader(config.DriveConfig{
		ClientID: "id", ClientSecret: "secret", RefreshToken: "refresh",
		TokenURL: server.URL, UploadURL: server.URL,
	}, server.Client())

	if _, err := u.Upload(context.Background(), "unused.zip"); err == nil {
		t.Fatalf("expected token refresh error")
	}
}

func TestUploaderNotConfigured(t *testing.T) {
	t.Parallel()

	u := NewUploader(config.DriveConfig{}, nil)
	if u.Configured() {
		t.Fatalf("expected unconfigured uploader")
	}
	if _, err := u.Upload(context.Background(), "x.zip"); err == nil {
		t.Fatalf("expected error")
	}
}
