package compiler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(ts *httptest.Server) *Client {
	c := NewClient(ts.URL, "test-key")
	c.Client = ts.Client()
	return c
}

func TestValidateValidArtifact(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"valid": true})
	}))
	defer ts.Close()

	c := newTestClient(ts)
	resp, err := c.Validate(context.Background(), "Node Number,Node Type\n1,D\n")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !resp.Valid {
		t.Error("expected valid verdict")
	}
	if gotPath != "/v1/validate" {
		t.Errorf("path = %q, want /v1/validate", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotBody["artifact"] == "" {
		t.Error("artifact missing from request body")
	}

	errs, err := resp.ValidationErrors()
	if err != nil {
		t.Fatalf("ValidationErrors: %v", err)
	}
	if len(errs) != 0 {
		t.Errorf("valid verdict produced %d errors", len(errs))
	}
}

func TestValidateBrokenArtifact(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"valid": false,
			"errors": [
				{"node_num": 3, "err_msgs": [["routing", "nextNodes", "decision node must route somewhere"]]},
				{"node_num": 7, "err_msgs": [["content", "message node has no text"]]}
			]
		}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	resp, err := c.Validate(context.Background(), "artifact")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if resp.Valid {
		t.Fatal("expected broken verdict")
	}

	errs, err := resp.ValidationErrors()
	if err != nil {
		t.Fatalf("ValidationErrors: %v", err)
	}
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2", len(errs))
	}
	if errs[0].TargetNodeID != 3 || errs[0].Category != "routing" || errs[0].Field != "nextNodes" {
		t.Errorf("first error = %+v", errs[0])
	}
	if errs[1].TargetNodeID != 7 || errs[1].Category != "content" {
		t.Errorf("second error = %+v", errs[1])
	}
}

func TestValidateServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := newTestClient(ts)
	if _, err := c.Validate(context.Background(), "artifact"); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestValidateNoAPIKeyOmitsAuthHeader(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"valid": true})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "")
	c.Client = ts.Client()
	if _, err := c.Validate(context.Background(), "artifact"); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("auth header sent without key: %q", gotAuth)
	}
}
