package ai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tidwall/gjson"
	"go.uber.org/zap/zaptest"
)

func newBytezTestServer(t *testing.T, status int, response string, got *[]byte) *BytezClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/models/v2/anthropic/claude-3-haiku-20240307" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Key test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		body, _ := io.ReadAll(r.Body)
		if got != nil {
			*got = body
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return NewBytezClient(srv.Client(), srv.URL+"/", "test-key", zaptest.NewLogger(t).Sugar())
}

const testModel = "anthropic/claude-3-haiku-20240307"

func TestBytezRunSendsMessages(t *testing.T) {
	var body []byte
	c := newBytezTestServer(t, http.StatusOK, `{"error":null,"output":"Hi there"}`, &body)

	msgs := []Message{
		{Role: RoleUser, Content: []Part{TextPart("Hello")}},
		{Role: RoleAssistant, Content: []Part{TextPart("Hi")}},
		{Role: RoleUser, Content: []Part{ImagePart("https://example.com/cat.png"), TextPart("What is it?")}},
	}
	out, err := c.Run(context.Background(), testModel, msgs)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if text, _ := out.Normalize(); text != "Hi there" {
		t.Errorf("output = %q, want %q", text, "Hi there")
	}

	if n := gjson.GetBytes(body, "messages.#").Int(); n != 3 {
		t.Fatalf("messages on the wire = %d, want 3", n)
	}
	checks := map[string]string{
		"messages.0.role":                  "user",
		"messages.0.content.0.type":        "text",
		"messages.0.content.0.text":        "Hello",
		"messages.1.role":                  "assistant",
		"messages.2.content.0.type":        "image",
		"messages.2.content.0.source.type": "url",
		"messages.2.content.0.source.url":  "https://example.com/cat.png",
		"messages.2.content.1.text":        "What is it?",
	}
	for path, want := range checks {
		if got := gjson.GetBytes(body, path).String(); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
}

func TestBytezRunObjectOutput(t *testing.T) {
	c := newBytezTestServer(t, http.StatusOK, `{"error":null,"output":{"role":"assistant","content":"structured"}}`, nil)

	out, err := c.Run(context.Background(), testModel, []Message{{Role: RoleUser, Content: []Part{TextPart("x")}}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if out.Kind != OutputObject {
		t.Errorf("Kind = %v, want OutputObject", out.Kind)
	}
	if text, _ := out.Normalize(); text != "structured" {
		t.Errorf("output = %q", text)
	}
}

func TestBytezRunUpstreamError(t *testing.T) {
	c := newBytezTestServer(t, http.StatusOK, `{"error":"model is loading","output":null}`, nil)

	_, err := c.Run(context.Background(), testModel, []Message{{Role: RoleUser, Content: []Part{TextPart("x")}}})
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if upErr.Details != "model is loading" {
		t.Errorf("Details = %v", upErr.Details)
	}
}

func TestBytezRunHTTPErrorWithoutJSON(t *testing.T) {
	c := newBytezTestServer(t, http.StatusBadGateway, `bad gateway`, nil)

	_, err := c.Run(context.Background(), testModel, []Message{{Role: RoleUser, Content: []Part{TextPart("x")}}})
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if upErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d", upErr.StatusCode)
	}
}

func TestBytezRunWithoutKey(t *testing.T) {
	c := NewBytezClient(nil, "http://127.0.0.1:1", "", zaptest.NewLogger(t).Sugar())
	_, err := c.Run(context.Background(), testModel, nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
}

func TestBytezEmbed(t *testing.T) {
	var body []byte
	c := newBytezTestServer(t, http.StatusOK, `{"error":null,"output":[0.1,0.2,0.3]}`, &body)

	raw, err := c.Embed(context.Background(), testModel, "bonjour")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if string(raw) != "[0.1,0.2,0.3]" {
		t.Errorf("Embed() = %s", raw)
	}
	if got := gjson.GetBytes(body, "text").String(); got != "bonjour" {
		t.Errorf("text = %q", got)
	}
}
