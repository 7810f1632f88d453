package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ResearchAgent/internal/domain"
)

func TestClientSummarize(t *testing.T) {
	t.Parallel()

	var got summarizeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/summarize" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"summary": "  compact summary \n"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "token", server.Client())
	summary, err := client.Summarize(context.Background(), domain.Candidate{
		Kind:     domain.KindPaper,
		Title:    "Planner",
		BodyText: "abstract",
		Paper:    domain.PaperFacet{Authors: []string{"A"}},
	})
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if summary != "compact summary" {
		t.Fatalf("unexpected summary %q", summary)
	}
	if got.Kind != "paper" || got.Title != "Planner" || got.Abstract != "abstract" || len(got.Authors) != 1 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestClientSummarizeStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", server.Client())
	if _, err := client.Summarize(context.Background(), domain.Candidate{Title: "x"}); err == nil {
		t.Fatalf("expected error on 500")
	}
}
