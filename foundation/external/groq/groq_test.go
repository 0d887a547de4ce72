package groq_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/undothis/Moodling-sub000/foundation/external/groq"
)

func TestComplete(t *testing.T) {
	t.Run("returns completion text", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("authorization = %q", got)
			}
			var req map[string]any
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Error(err)
			}
			if req["model"] != "test-model" {
				t.Errorf("model = %v", req["model"])
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]string{"content": `{"insights": []}`}},
				},
			})
		}))
		defer srv.Close()

		c := groq.NewWithEndpoint(srv.URL, "test-key", "test-model", 0.3)
		out, err := c.Complete(context.Background(), "system", "user")
		if err != nil {
			t.Fatal(err)
		}
		if out != `{"insights": []}` {
			t.Fatalf("completion = %q", out)
		}
	})

	t.Run("api error surfaces", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"message": "rate limited"},
			})
		}))
		defer srv.Close()

		c := groq.NewWithEndpoint(srv.URL, "test-key", "test-model", 0.3)
		if _, err := c.Complete(context.Background(), "s", "u"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("missing api key fails fast", func(t *testing.T) {
		t.Parallel()

		c := groq.New("", "test-model", 0.3)
		if _, err := c.Complete(context.Background(), "s", "u"); err == nil {
			t.Fatal("expected error")
		}
	})
}
