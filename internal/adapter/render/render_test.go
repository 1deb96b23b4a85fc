package render

import (
	"ChatGateway/internal/config"
	"ChatGateway/internal/service/conversation"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

var ts = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func TestPlainGenerate(t *testing.T) {
	r := New(config.StylePlain)
	body, err := r.Generate(conversation.GenerateResult{
		UID: "42", Prompt: "Hello", Response: "Hi there", MessageCount: 2, Exchanges: 1, Timestamp: ts,
	})
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("invalid JSON %s: %v", body, err)
	}
	want := map[string]any{
		"status": "success", "uid": "42", "prompt": "Hello", "response": "Hi there",
		"message_count": float64(2), "exchanges": float64(1), "timestamp": "2026-10-15T12:00:00Z",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
	if _, ok := got["image_url"]; ok {
		t.Error("image_url present without image")
	}
}

func TestPlainGenerateWithImage(t *testing.T) {
	body, err := New(config.StylePlain).Generate(conversation.GenerateResult{UID: "42", ImageURL: "https://example.com/a.png"})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(body, []byte(`"image_url":"https://example.com/a.png"`)) {
		t.Errorf("body = %s", body)
	}
}

func TestDecoratedGenerateKeepsKeyOrder(t *testing.T) {
	body, err := New(config.StyleDecorated).Generate(conversation.GenerateResult{
		UID: "42", Prompt: "Hello", Response: "Hi there", MessageCount: 4, Exchanges: 2, Timestamp: ts,
		ImageURL: "https://example.com/a.png",
	})
	if err != nil {
		t.Fatal(err)
	}
	keys := objectKeys(t, body)
	want := []string{
		"✅ " + Bold("Statut"),
		"👤 " + Bold("Utilisateur"),
		"📝 " + Bold("Votre question"),
		"🤖 " + Bold("Reponse du modele"),
		"💬 " + Bold("Messages dans la conversation"),
		"⏱️ " + Bold("Timestamp"),
		"🖼️ " + Bold("Image analysee"),
	}
	if strings.Join(keys, "|") != strings.Join(want, "|") {
		t.Fatalf("keys = %q\nwant  %q", keys, want)
	}

	var got map[string]string
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got["💬 "+Bold("Messages dans la conversation")] != "4 messages (2 échanges)" {
		t.Errorf("count = %q", got["💬 "+Bold("Messages dans la conversation")])
	}
	if got["🤖 "+Bold("Reponse du modele")] != "Hi there" {
		t.Errorf("response = %q", got["🤖 "+Bold("Reponse du modele")])
	}
}

func TestDecoratedEmbedKeepsRawOutput(t *testing.T) {
	body, err := New(config.StyleDecorated).Embed(conversation.EmbedResult{
		UID: "42", Prompt: "x", Model: "minilm", Output: json.RawMessage(`[0.1,0.2]`), Timestamp: ts,
	})
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("invalid JSON %s: %v", body, err)
	}
	out, ok := got["📊 "+Bold("Output")].([]any)
	if !ok || len(out) != 2 {
		t.Errorf("output = %v", got["📊 "+Bold("Output")])
	}
}

func TestDecoratedResetEscapesUID(t *testing.T) {
	body, err := New(config.StyleDecorated).Reset("a.b*c")
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]string
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("invalid JSON %s: %v", body, err)
	}
	if got["👤 "+Bold("Utilisateur")] != "a.b*c" {
		t.Errorf("uid = %q", got["👤 "+Bold("Utilisateur")])
	}
}

func TestEscapeKeyRoundTrip(t *testing.T) {
	o := newObject()
	o.set("v1.2 * weird?", "ok")
	body, err := o.bytes()
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != `{"v1.2 * weird?":"ok"}` {
		t.Errorf("body = %s", body)
	}
}

func TestBold(t *testing.T) {
	if got := Bold("Az9 é"); got != "𝗔𝘇𝟵 é" {
		t.Errorf("Bold() = %q", got)
	}
}

func objectKeys(t *testing.T, body []byte) []string {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(body))
	if _, err := dec.Token(); err != nil {
		t.Fatal(err)
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			t.Fatal(err)
		}
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			t.Fatal(err)
		}
	}
	return keys
}
