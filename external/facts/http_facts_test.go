package facts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEnabled(t *testing.T) {
	if NewHTTPGenerator("", "", "model", 40).Enabled() {
		t.Fatal("expected generator without an API URL to be disabled")
	}
	if !NewHTTPGenerator("https://api.example.com", "key", "model", 40).Enabled() {
		t.Fatal("expected generator with an API URL to be enabled")
	}
}

func TestTrackFact_ParsesCompletion(t *testing.T) {
	var gotAuth string
	var gotReq completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(completionResponse{
			Choices: []struct {
				Message completionMessage `json:"message"`
			}{
				{Message: completionMessage{Role: "assistant", Content: "  It charted in 14 countries.  "}},
			},
		})
	}))
	defer server.Close()

	g := NewHTTPGenerator(server.URL, "sk-test", "test-model", 40)
	fact, err := g.TrackFact(context.Background(), "Song A", "Artist A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fact != "It charted in 14 countries." {
		t.Fatalf("unexpected fact: %q", fact)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected authorization header: %q", gotAuth)
	}
	if gotReq.Model != "test-model" {
		t.Fatalf("unexpected model: %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages: %+v", gotReq.Messages)
	}
}

func TestTrackFact_ErrorsOnNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	g := NewHTTPGenerator(server.URL, "bad-key", "test-model", 40)
	if _, err := g.TrackFact(context.Background(), "Song A", "Artist A"); err == nil {
		t.Fatal("expected error for unauthorized response")
	}
}

func TestTrackFact_ErrorsOnEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	g := NewHTTPGenerator(server.URL, "sk-test", "test-model", 40)
	if _, err := g.TrackFact(context.Background(), "Song A", "Artist A"); err == nil {
		t.Fatal("expected error for a response without choices")
	}
}

func TestTrackFact_ErrorsOnMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	g := NewHTTPGenerator(server.URL, "sk-test", "test-model", 40)
	if _, err := g.TrackFact(context.Background(), "Song A", "Artist A"); err == nil {
		t.Fatal("expected error for a malformed body")
	}
}

func TestTrackFact_ErrorsOnBlankFact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"   "}}]}`))
	}))
	defer server.Close()

	g := NewHTTPGenerator(server.URL, "sk-test", "test-model", 40)
	if _, err := g.TrackFact(context.Background(), "Song A", "Artist A"); err == nil {
		t.Fatal("expected error for a blank fact")
	}
}
