package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nadzzz/curiousframe/internal/capture"
	"github.com/nadzzz/curiousframe/internal/config"
)

func completion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 0,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	}
}

func TestDetect(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion("Ball, french flag."))
	}))
	defer srv.Close()

	d := New(config.PerceptionConfig{OpenAI: config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/", Model: "gpt-4o-mini"}}, srv.Client())
	got, err := d.Detect(context.Background(), capture.Frame{Data: []byte("png"), Ext: "png"})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if got != "Ball, french flag" {
		t.Fatalf("got %q", got)
	}
	if body["model"] != "gpt-4o-mini" {
		t.Fatalf("model not sent: %v", body["model"])
	}
	raw, _ := json.Marshal(body["messages"])
	if !strings.Contains(string(raw), "data:image/png;base64,") {
		t.Fatalf("image part missing: %s", raw)
	}
}

func TestDetect_NoTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion("No target found."))
	}))
	defer srv.Close()

	d := New(config.PerceptionConfig{OpenAI: config.OpenAIConfig{APIKey: "k", BaseURL: srv.URL + "/", Model: "m"}}, srv.Client())
	got, err := d.Detect(context.Background(), capture.Frame{Data: []byte("jpeg")})
	if err != nil || got != "" {
		t.Fatalf("got %q, %v", got, err)
	}
	if _, err := d.Detect(context.Background(), capture.Frame{}); err == nil {
		t.Fatalf("expected error for empty frame")
	}
}
